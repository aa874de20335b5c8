package domain

import (
	"time"

	"github.com/google/uuid"
)

// TraceConfig is a named tag scoped to a guild and a time window. The
// allow-lists control who may open trace tickets with the tag; the manager
// set controls who administers them. CategoryChannelID optionally records the
// category the tag's channels live under; the allocator itself resolves
// categories by name.
type TraceConfig struct {
	ID                uuid.UUID
	TeamID            uuid.UUID
	GuildID           int64
	Tag               string
	FromDateTime      time.Time
	EndDateTime       time.Time
	CategoryChannelID *int64
	WebhookChannelID  int64
	RolesAllowed      []int64
	UsersAllowed      []int64
	Managers          []Manager
}

// ActiveAt reports whether the configuration window covers the given instant.
func (c TraceConfig) ActiveAt(now time.Time) bool {
	return !c.FromDateTime.After(now) && now.Before(c.EndDateTime)
}

// TraceTicket is a support request realized as a dedicated private channel
// under a capacity-managed category.
type TraceTicket struct {
	ID             uuid.UUID
	ConfigID       uuid.UUID
	GuildID        int64
	ChannelID      int64
	CategoryID     int64
	ChannelName    string
	VocalChannelID *int64
	CreatedBy      int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
	TakenAt        *time.Time
}
