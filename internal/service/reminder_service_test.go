package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
)

func TestSweepRemindsOnlyStaleOpenTickets(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	forums := newFakeForumRepo()
	forum := &domain.Forum{
		ID:               uuid.New(),
		Name:             "support",
		ChannelID:        forumChannelID,
		WebhookChannelID: webhookChannelID,
	}
	require.NoError(t, forums.Create(context.Background(), forum))

	tickets := newFakeTicketRepo()
	add := func(threadID int64, status domain.TicketStatus, age time.Duration) {
		ticket := &domain.Ticket{
			ForumID:   forum.ID,
			GuildID:   guildID,
			ThreadID:  threadID,
			Status:    status,
			CreatedBy: ownerID,
			CreatedAt: now.Add(-age),
			UpdatedAt: now.Add(-age),
		}
		require.NoError(t, tickets.CreateWithName(context.Background(), ticket, func(id int64) string {
			return DeriveName(id, "stale")
		}))
		if status != domain.TicketStatusOpen {
			ticket.Status = status
			require.NoError(t, tickets.Update(context.Background(), ticket))
		}
	}
	add(10, domain.TicketStatusOpen, 72*time.Hour)
	add(11, domain.TicketStatusOpen, time.Hour)
	add(12, domain.TicketStatusInProgress, 72*time.Hour)

	client := newFakeClient(selfID)
	svc := NewReminderService(tickets, forums, client, zap.NewNop(), 48*time.Hour)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Sweep(context.Background()))

	msgs := client.messagesTo(webhookChannelID)
	require.Len(t, msgs, 1, "one reminder per forum")
	require.NotNil(t, msgs[0].Embed)
	require.Contains(t, msgs[0].Embed.Description, "https://discord.com/channels/1/10")
	require.NotContains(t, msgs[0].Embed.Description, "channels/1/11", "fresh ticket must not be listed")
	require.NotContains(t, msgs[0].Embed.Description, "channels/1/12", "taken ticket must not be listed")
	require.Contains(t, msgs[0].Embed.Description, "3 day(s)")
}

func TestSweepNoStaleTicketsSendsNothing(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	client := newFakeClient(selfID)
	svc := NewReminderService(newFakeTicketRepo(), newFakeForumRepo(), client, zap.NewNop(), 0)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.Sweep(context.Background()))
	require.Empty(t, client.sent)
}
