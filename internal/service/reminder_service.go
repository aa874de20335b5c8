package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/platform"
	"github.com/threaddesk/threaddesk/internal/repository"
)

// DefaultReminderAge is how long a ticket may sit untaken before a reminder.
const DefaultReminderAge = 48 * time.Hour

// ReminderService sweeps for open tickets nobody has taken and nudges the
// forum's webhook channel.
type ReminderService struct {
	tickets repository.TicketRepository
	forums  repository.ForumRepository
	client  platform.Client
	logger  *zap.Logger
	age     time.Duration
	now     func() time.Time
}

// NewReminderService constructs the service; a non-positive age falls back to
// the default.
func NewReminderService(tickets repository.TicketRepository, forums repository.ForumRepository, client platform.Client, logger *zap.Logger, age time.Duration) *ReminderService {
	if age <= 0 {
		age = DefaultReminderAge
	}
	return &ReminderService{
		tickets: tickets,
		forums:  forums,
		client:  client,
		logger:  logger,
		age:     age,
		now:     time.Now,
	}
}

// Sweep posts one reminder per forum listing its stale open tickets.
func (s *ReminderService) Sweep(ctx context.Context) error {
	open, err := s.tickets.ListOpen(ctx)
	if err != nil {
		return err
	}
	now := s.now()

	stale := map[uuid.UUID][]domain.Ticket{}
	for _, ticket := range open {
		if ticket.CreatedAt.Add(s.age).Before(now) {
			stale[ticket.ForumID] = append(stale[ticket.ForumID], ticket)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	forumIDs := make([]uuid.UUID, 0, len(stale))
	for id := range stale {
		forumIDs = append(forumIDs, id)
	}
	sort.Slice(forumIDs, func(i, j int) bool { return forumIDs[i].String() < forumIDs[j].String() })

	for _, forumID := range forumIDs {
		forum, err := s.forums.GetByID(ctx, forumID)
		if err != nil {
			s.logger.Warn("reminder forum lookup failed", zap.String("forum", forumID.String()), zap.Error(err))
			continue
		}
		msg := reminderMessage(forum.Name, stale[forumID], now)
		if _, err := s.client.SendMessage(ctx, forum.WebhookChannelID, msg); err != nil {
			s.logger.Warn("reminder delivery failed",
				zap.Int64("channel", forum.WebhookChannelID), zap.Error(err))
			continue
		}
		s.logger.Info("reminder sent",
			zap.String("forum", forum.Name), zap.Int("tickets", len(stale[forumID])))
	}
	return nil
}

func reminderMessage(forumName string, tickets []domain.Ticket, now time.Time) platform.Message {
	var lines []string
	for _, ticket := range tickets {
		days := int(now.Sub(ticket.CreatedAt).Hours() / 24)
		lines = append(lines, fmt.Sprintf("- [%s](%s) — open for %d day(s)",
			ticket.Name, platform.JumpURL(ticket.GuildID, ticket.ThreadID), days))
	}
	return platform.Message{
		Embed: &platform.Embed{
			Title:       fmt.Sprintf("Untaken tickets in %s", forumName),
			Description: strings.Join(lines, "\n"),
			Color:       colorOrange,
			Timestamp:   now,
		},
	}
}
