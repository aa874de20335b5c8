package events

import (
	"time"

	"github.com/threaddesk/threaddesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketParticipation EventType = "ticket_participation"
	EventTicketRenamed       EventType = "ticket_renamed"
	EventTicketTagsChanged   EventType = "ticket_tags_changed"
	EventTicketClosed        EventType = "ticket_closed"
	EventTicketReopened      EventType = "ticket_reopened"
	EventTraceTicketCreated  EventType = "trace_ticket_created"
	EventTraceTicketClosed   EventType = "trace_ticket_closed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketPayload is carried by every ticket lifecycle event. It holds the
// post-transition snapshot plus the routing the notifier needs.
type TicketPayload struct {
	Ticket           domain.Ticket    `json:"ticket"`
	OwnerID          int64            `json:"owner_id"`
	WebhookChannelID int64            `json:"webhook_channel_id"`
	CloseType        domain.CloseType `json:"close_type,omitempty"`
}

// TraceTicketPayload is carried by trace-ticket lifecycle events.
type TraceTicketPayload struct {
	Ticket           domain.TraceTicket `json:"ticket"`
	Tag              string             `json:"tag,omitempty"`
	Login            string             `json:"login,omitempty"`
	Question         string             `json:"question,omitempty"`
	WebhookChannelID int64              `json:"webhook_channel_id"`
}
