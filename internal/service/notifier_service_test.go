package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/events"
)

func TestNotifierPostsAndEditsStatusCard(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tickets := newFakeTicketRepo()
	client := newFakeClient(selfID)
	dispatcher := events.NewInMemoryDispatcher()

	notifier := NewNotifierService(tickets, client, zap.NewNop())
	notifier.RegisterHandlers(dispatcher)

	ticket := &domain.Ticket{
		ForumID:   uuid.New(),
		GuildID:   guildID,
		ThreadID:  10,
		Status:    domain.TicketStatusOpen,
		CreatedBy: ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, tickets.CreateWithName(context.Background(), ticket, func(id int64) string {
		return DeriveName(id, "help")
	}))

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketCreated,
		Payload: events.TicketPayload{
			Ticket:           *ticket,
			OwnerID:          ownerID,
			WebhookChannelID: webhookChannelID,
		},
	}))

	msgs := client.messagesTo(webhookChannelID)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Embed)
	require.Equal(t, ticket.Name, msgs[0].Embed.Title)

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.WebhookMessageID, "card reference must be persisted")

	stored.Status = domain.TicketStatusInProgress
	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketParticipation,
		Payload: events.TicketPayload{
			Ticket:           *stored,
			OwnerID:          ownerID,
			WebhookChannelID: webhookChannelID,
		},
	}))

	require.Len(t, client.edits, 1)
	require.Equal(t, webhookChannelID, client.edits[0].ChannelID)
	require.Contains(t, client.edits[0].Message.Embed.Fields[0].Value, "In progress")
}

func TestNotifierSkipsEditWithoutCardReference(t *testing.T) {
	tickets := newFakeTicketRepo()
	client := newFakeClient(selfID)
	dispatcher := events.NewInMemoryDispatcher()

	notifier := NewNotifierService(tickets, client, zap.NewNop())
	notifier.RegisterHandlers(dispatcher)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTicketRenamed,
		Payload: events.TicketPayload{
			Ticket:           domain.Ticket{ID: 1, GuildID: guildID, ThreadID: 10},
			WebhookChannelID: webhookChannelID,
		},
	}))
	require.Empty(t, client.edits)
}

func TestNotifierLogsTraceTicketCreation(t *testing.T) {
	client := newFakeClient(selfID)
	dispatcher := events.NewInMemoryDispatcher()

	notifier := NewNotifierService(newFakeTicketRepo(), client, zap.NewNop())
	notifier.RegisterHandlers(dispatcher)

	require.NoError(t, dispatcher.Publish(context.Background(), events.Event{
		Type: events.EventTraceTicketCreated,
		Payload: events.TraceTicketPayload{
			Ticket: domain.TraceTicket{
				ID:          uuid.New(),
				GuildID:     traceGuildID,
				ChannelID:   55,
				ChannelName: "trace-jdoe",
				CreatedBy:   requesterID,
			},
			Tag:              "cpp-module",
			Login:            "jdoe",
			WebhookChannelID: 300,
		},
	}))

	msgs := client.messagesTo(300)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].Embed)
	require.Contains(t, msgs[0].Embed.Title, "trace-jdoe")
}
