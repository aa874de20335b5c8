package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team groups forums and trace configurations under one owner.
type Team struct {
	ID      uuid.UUID
	Name    string
	OwnerID int64
}

// Forum identifies a managed community forum channel.
type Forum struct {
	ID               uuid.UUID
	TeamID           uuid.UUID
	Name             string
	ChannelID        int64
	WebhookChannelID int64
	TraceTag         string
	Managers         []Manager
	PracticalTags    []PracticalTag
}

// PracticalTag is a forum tag valid only within [FromDateTime, EndDateTime).
type PracticalTag struct {
	ID           uuid.UUID
	ForumID      uuid.UUID
	TagID        int64
	FromDateTime time.Time
	EndDateTime  time.Time
}

// ActiveAt reports whether the tag window covers the given instant.
func (t PracticalTag) ActiveAt(now time.Time) bool {
	return !t.FromDateTime.After(now) && now.Before(t.EndDateTime)
}
