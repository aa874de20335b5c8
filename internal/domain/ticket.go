package domain

import (
	"time"

	"github.com/google/uuid"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusDeleted    TicketStatus = "DELETED"
)

// ReopenWindow is the fixed period after closure during which a resolved
// ticket may be reopened.
const ReopenWindow = 8 * time.Hour

// Ticket is the aggregate for a support request bound to a forum thread.
type Ticket struct {
	ID               int64
	ForumID          uuid.UUID
	GuildID          int64
	ThreadID         int64
	Name             string
	Status           TicketStatus
	CreatedBy        int64
	CreatedAt        time.Time
	TakenAt          *time.Time
	UpdatedAt        time.Time
	ClosedAt         *time.Time
	ReopenedTimes    int
	WebhookMessageID *int64
	Tags             []string
	Participants     []TicketParticipant
}

// TicketParticipant records the first time a manager engaged with a ticket.
// Uniqueness holds per (ticket, user).
type TicketParticipant struct {
	ID       uuid.UUID
	TicketID int64
	UserID   int64
	TakenAt  time.Time
}

// HasParticipant reports whether the user is already recorded on the ticket.
func (t *Ticket) HasParticipant(userID int64) bool {
	for _, p := range t.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// Active reports whether the ticket still accepts participation.
func (t *Ticket) Active() bool {
	return t.Status == TicketStatusOpen || t.Status == TicketStatusInProgress
}
