package dto

import "time"

// AuthLoginRequest is the admin login payload.
type AuthLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse carries an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TeamRequest creates a team.
type TeamRequest struct {
	Name    string `json:"name"`
	OwnerID int64  `json:"owner_id"`
}

// ManagerRequest creates a manager.
type ManagerRequest struct {
	Name          string  `json:"name"`
	CustomMessage string  `json:"custom_message"`
	Roles         []int64 `json:"roles"`
	Users         []int64 `json:"users"`
}

// ForumRequest binds a forum channel to a team.
type ForumRequest struct {
	TeamID           string `json:"team_id"`
	Name             string `json:"name"`
	ChannelID        int64  `json:"channel_id"`
	WebhookChannelID int64  `json:"webhook_channel_id"`
	TraceTag         string `json:"trace_tag"`
}

// PracticalTagRequest adds a time-bounded tag to a forum.
type PracticalTagRequest struct {
	TagID        int64     `json:"tag_id"`
	FromDateTime time.Time `json:"from_datetime"`
	EndDateTime  time.Time `json:"end_datetime"`
}

// TraceConfigRequest creates a trace tag window.
type TraceConfigRequest struct {
	TeamID            string    `json:"team_id"`
	GuildID           int64     `json:"guild_id"`
	Tag               string    `json:"tag"`
	FromDateTime      time.Time `json:"from_datetime"`
	EndDateTime       time.Time `json:"end_datetime"`
	CategoryChannelID *int64    `json:"category_channel_id,omitempty"`
	WebhookChannelID  int64     `json:"webhook_channel_id"`
	RolesAllowed      []int64   `json:"roles_allowed"`
	UsersAllowed      []int64   `json:"users_allowed"`
}

// AttachManagerRequest links an existing manager.
type AttachManagerRequest struct {
	ManagerID string `json:"manager_id"`
}
