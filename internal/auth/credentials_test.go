package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVerifyAdminCredentials(t *testing.T) {
	hash, err := HashAdminPassword("s3cret", 4)
	require.NoError(t, err)

	require.True(t, VerifyAdminCredentials("admin", hash, "admin", "s3cret"))
	require.False(t, VerifyAdminCredentials("admin", hash, "admin", "wrong"))
	require.False(t, VerifyAdminCredentials("admin", hash, "root", "s3cret"))
}

func TestHashAdminPasswordClampsInvalidCost(t *testing.T) {
	hash, err := HashAdminPassword("s3cret", 99)
	require.NoError(t, err)
	require.True(t, VerifyAdminCredentials("admin", hash, "admin", "s3cret"))
}
