package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// HashAdminPassword hashes the admin password for storage in the environment.
// A cost outside bcrypt's valid range falls back to the library default.
func HashAdminPassword(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyAdminCredentials checks a login attempt against the configured admin
// account. Username comparison is constant time so the response does not leak
// which of the two fields was wrong.
func VerifyAdminCredentials(wantUser, passwordHash, gotUser, gotPassword string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(wantUser), []byte(gotUser)) == 1
	passOK := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(gotPassword)) == nil
	return userOK && passOK
}
