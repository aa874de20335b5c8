package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/events"
	"github.com/threaddesk/threaddesk/internal/platform"
	"github.com/threaddesk/threaddesk/internal/repository"
)

// NotifierService mirrors ticket lifecycles into webhook channels: one status
// card per ticket, posted on creation and edited in place on every later
// transition, plus a log entry per trace ticket.
type NotifierService struct {
	tickets repository.TicketRepository
	client  platform.Client
	logger  *zap.Logger
}

// NewNotifierService constructs the notifier.
func NewNotifierService(tickets repository.TicketRepository, client platform.Client, logger *zap.Logger) *NotifierService {
	return &NotifierService{tickets: tickets, client: client, logger: logger}
}

// RegisterHandlers subscribes the notifier to the lifecycle events.
func (s *NotifierService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventTicketCreated, s.onTicketCreated)
	for _, eventType := range []events.EventType{
		events.EventTicketParticipation,
		events.EventTicketRenamed,
		events.EventTicketTagsChanged,
		events.EventTicketClosed,
		events.EventTicketReopened,
	} {
		dispatcher.Subscribe(eventType, s.onTicketUpdated)
	}
	dispatcher.Subscribe(events.EventTraceTicketCreated, s.onTraceTicketCreated)
	dispatcher.Subscribe(events.EventTraceTicketClosed, s.onTraceTicketClosed)
}

func (s *NotifierService) onTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketPayload)
	if !ok || payload.WebhookChannelID == 0 {
		return nil
	}
	ticket := payload.Ticket
	sent, err := s.client.SendMessage(ctx, payload.WebhookChannelID, platform.Message{
		Embed: ticketSummaryEmbed(ticket),
		Buttons: []platform.Button{{
			URL:   platform.JumpURL(ticket.GuildID, ticket.ThreadID),
			Label: "Go to",
		}},
	})
	if err != nil {
		return err
	}
	ticket.WebhookMessageID = &sent.MessageID
	if err := s.tickets.Update(ctx, &ticket); err != nil {
		s.logger.Warn("status card reference persist failed",
			zap.Int64("ticket", ticket.ID), zap.Error(err))
	}
	return nil
}

func (s *NotifierService) onTicketUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketPayload)
	if !ok || payload.WebhookChannelID == 0 {
		return nil
	}
	ticket := payload.Ticket
	if ticket.WebhookMessageID == nil {
		s.logger.Debug("no status card to edit", zap.Int64("ticket", ticket.ID))
		return nil
	}
	return s.client.EditMessage(ctx, payload.WebhookChannelID, *ticket.WebhookMessageID, platform.Message{
		Embed: ticketSummaryEmbed(ticket),
		Buttons: []platform.Button{{
			URL:   platform.JumpURL(ticket.GuildID, ticket.ThreadID),
			Label: "Go to",
		}},
	})
}

func (s *NotifierService) onTraceTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TraceTicketPayload)
	if !ok || payload.WebhookChannelID == 0 {
		return nil
	}
	ticket := payload.Ticket
	_, err := s.client.SendMessage(ctx, payload.WebhookChannelID, platform.Message{
		Embed: traceLogEmbed(ticket, payload.Tag, payload.Login, payload.Question),
		Buttons: []platform.Button{{
			URL:   platform.JumpURL(ticket.GuildID, ticket.ChannelID),
			Label: "Go to",
		}},
	})
	return err
}

func (s *NotifierService) onTraceTicketClosed(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TraceTicketPayload)
	if !ok || payload.WebhookChannelID == 0 {
		return nil
	}
	ticket := payload.Ticket
	_, err := s.client.SendMessage(ctx, payload.WebhookChannelID, platform.Message{
		Content: fmt.Sprintf("Trace ticket **%s** closed; the message log follows as `log-%s`.",
			ticket.ChannelName, ticket.ChannelName),
	})
	return err
}
