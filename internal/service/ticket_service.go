package service

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/events"
	"github.com/threaddesk/threaddesk/internal/locking"
	"github.com/threaddesk/threaddesk/internal/platform"
	"github.com/threaddesk/threaddesk/internal/repository"
	apperrors "github.com/threaddesk/threaddesk/pkg/util"
)

// ButtonReopenTicket prefixes the reopen button id; the ticket id follows
// after a dash.
const ButtonReopenTicket = "reopen_ticket"

// tracePromptTTL bounds the one-shot guard for the trace-info prompt.
const tracePromptTTL = 30 * 24 * time.Hour

var ticketPrefixPattern = regexp.MustCompile(`^\[\d+\] - `)

// DeriveName builds the ticket display name: any previous "[id] - " prefix is
// stripped, the ticket id is prepended, and the result is capped at 100
// characters with a trailing ellipsis. The cap counts runes, not bytes, so a
// multibyte title never truncates mid-character.
func DeriveName(ticketID int64, title string) string {
	title = ticketPrefixPattern.ReplaceAllString(title, "")
	name := fmt.Sprintf("[%d] - %s", ticketID, title)
	if runes := []rune(name); len(runes) > 100 {
		name = string(runes[:97]) + "..."
	}
	return name
}

// ThreadInfo carries the thread attributes the lifecycle needs from the
// adapter.
type ThreadInfo struct {
	GuildID         int64
	ThreadID        int64
	ParentChannelID int64
	OwnerID         int64
	Title           string
	AppliedTags     []string
}

// TicketService governs the forum-ticket lifecycle.
type TicketService struct {
	tickets    repository.TicketRepository
	forums     repository.ForumRepository
	forum      *ForumService
	client     platform.Client
	dispatcher events.Dispatcher
	guard      locking.Locker
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	ForumRepo  repository.ForumRepository
	ForumSvc   *ForumService
	Client     platform.Client
	Dispatcher events.Dispatcher
	Guard      locking.Locker
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		forums:     deps.ForumRepo,
		forum:      deps.ForumSvc,
		client:     deps.Client,
		dispatcher: deps.Dispatcher,
		guard:      deps.Guard,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// CreateTicket reacts to a thread created under a managed forum. Threads of
// unmanaged channels are ignored.
func (s *TicketService) CreateTicket(ctx context.Context, thread ThreadInfo) error {
	forum, err := s.forums.GetByChannel(ctx, thread.ParentChannelID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}

	now := s.now()
	ticket := &domain.Ticket{
		ForumID:   forum.ID,
		GuildID:   thread.GuildID,
		ThreadID:  thread.ThreadID,
		Status:    domain.TicketStatusOpen,
		CreatedBy: thread.OwnerID,
		CreatedAt: now,
		UpdatedAt: now,
		Tags:      thread.AppliedTags,
	}
	if err := s.tickets.CreateWithName(ctx, ticket, func(id int64) string {
		return DeriveName(id, thread.Title)
	}); err != nil {
		return err
	}

	if err := s.client.RenameChannel(ctx, thread.ThreadID, ticket.Name); err != nil {
		s.logger.Warn("thread rename failed", zap.Int64("thread", thread.ThreadID), zap.Error(err))
	}
	s.analyzeTags(ctx, forum, thread.ThreadID, thread.OwnerID, thread.AppliedTags)

	s.publish(ctx, events.EventTicketCreated, events.TicketPayload{
		Ticket:           *ticket,
		OwnerID:          ticket.CreatedBy,
		WebhookChannelID: forum.WebhookChannelID,
	})
	s.logger.Info("ticket created",
		zap.Int64("ticket", ticket.ID), zap.Int64("thread", ticket.ThreadID), zap.String("name", ticket.Name))
	return nil
}

// RegisterParticipation records a manager engaging with an active ticket.
// Non-managers, inactive tickets, and unmanaged threads are silent no-ops.
// The first qualifying call takes the ticket in progress; each distinct
// manager is recorded once.
func (s *TicketService) RegisterParticipation(ctx context.Context, threadID int64, p domain.Principal) error {
	ticket, err := s.tickets.GetByThread(ctx, threadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if !ticket.Active() {
		return nil
	}
	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err != nil {
		return err
	}
	if !IsAuthorized(p, forum.Managers) {
		return nil
	}

	now := s.now()
	taken := false
	if ticket.TakenAt == nil {
		ticket.TakenAt = &now
		ticket.Status = domain.TicketStatusInProgress
		taken = true
	}
	var participant *domain.TicketParticipant
	if !ticket.HasParticipant(p.UserID) {
		participant = &domain.TicketParticipant{
			ID:       uuid.New(),
			TicketID: ticket.ID,
			UserID:   p.UserID,
			TakenAt:  now,
		}
	}
	ticket.UpdatedAt = now
	if err := s.tickets.SaveParticipation(ctx, ticket, participant); err != nil {
		return err
	}
	if participant != nil {
		ticket.Participants = append(ticket.Participants, *participant)
	}
	if taken {
		s.publish(ctx, events.EventTicketParticipation, events.TicketPayload{
			Ticket:           *ticket,
			OwnerID:          ticket.CreatedBy,
			WebhookChannelID: forum.WebhookChannelID,
		})
	}
	return nil
}

// RenameTicket renames a ticket on behalf of a manager.
func (s *TicketService) RenameTicket(ctx context.Context, threadID int64, p domain.Principal, newTitle string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByThread(ctx, threadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}
	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err != nil {
		return nil, err
	}
	if !IsAuthorized(p, forum.Managers) {
		return nil, apperrors.NewNotAuthorized("you are not allowed to rename this ticket")
	}

	ticket.Name = DeriveName(ticket.ID, newTitle)
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.client.RenameChannel(ctx, threadID, ticket.Name); err != nil {
		s.logger.Warn("thread rename failed", zap.Int64("thread", threadID), zap.Error(err))
	}
	s.publish(ctx, events.EventTicketRenamed, events.TicketPayload{
		Ticket:           *ticket,
		OwnerID:          ticket.CreatedBy,
		WebhookChannelID: forum.WebhookChannelID,
	})
	return ticket, nil
}

// CloseTicket closes an active ticket. DELETE archives the thread's messages
// to the forum log channel and removes the thread; other close types post an
// explanation and archive the thread in place. The owner is notified
// privately, with a reopen action attached only for RESOLVE.
func (s *TicketService) CloseTicket(ctx context.Context, threadID int64, p domain.Principal, closeType domain.CloseType, reason string) error {
	ticket, err := s.tickets.GetByThread(ctx, threadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("ticket")
		}
		return err
	}
	if !ticket.Active() {
		return apperrors.NewInvalidState("ticket is already closed")
	}
	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err != nil {
		return err
	}
	manager, ok := ResolveManager(p, forum.Managers)
	if !ok {
		return apperrors.NewNotAuthorized("you are not allowed to close this ticket")
	}

	now := s.now()
	ticket.Status = closeType.ToStatus()
	ticket.ClosedAt = &now
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return err
	}

	if closeType == domain.CloseDelete {
		// Bulk archival must not block the close; its failure does not roll
		// back the committed status change.
		go s.archiveAndDelete(threadID, forum.WebhookChannelID, ticket.Name)
	} else {
		if _, err := s.client.SendMessage(ctx, threadID, platform.Message{
			Embed: closeTicketEmbed(closeType, manager, reason),
		}); err != nil {
			s.logger.Warn("close message failed", zap.Int64("thread", threadID), zap.Error(err))
		}
		if err := s.client.SetArchivedLocked(ctx, threadID, true, true); err != nil {
			s.logger.Warn("thread archive failed", zap.Int64("thread", threadID), zap.Error(err))
		}
	}

	s.notifyOwnerClosed(ctx, ticket, closeType, reason)

	s.publish(ctx, events.EventTicketClosed, events.TicketPayload{
		Ticket:           *ticket,
		OwnerID:          ticket.CreatedBy,
		WebhookChannelID: forum.WebhookChannelID,
		CloseType:        closeType,
	})
	s.logger.Info("ticket closed",
		zap.Int64("ticket", ticket.ID), zap.String("type", string(closeType)), zap.Int64("by", p.UserID))
	return nil
}

func (s *TicketService) notifyOwnerClosed(ctx context.Context, ticket *domain.Ticket, closeType domain.CloseType, reason string) {
	buttons := []platform.Button{{
		URL:   platform.JumpURL(ticket.GuildID, ticket.ThreadID),
		Label: "Go to",
	}}
	if closeType == domain.CloseResolve {
		buttons = append(buttons, platform.Button{
			ID:    fmt.Sprintf("%s-%d", ButtonReopenTicket, ticket.ID),
			Label: "Reopen",
		})
	}
	if _, err := s.client.SendDirectMessage(ctx, ticket.CreatedBy, platform.Message{
		Embed:   privateCloseEmbed(ticket, closeType, reason),
		Buttons: buttons,
	}); err != nil {
		s.logger.Warn("owner notification failed", zap.Int64("ticket", ticket.ID), zap.Error(err))
	}
}

func (s *TicketService) archiveAndDelete(threadID, logChannelID int64, title string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := s.client.ArchiveMessages(ctx, threadID, logChannelID, title); err != nil {
		s.logger.Error("message archival failed", zap.Int64("thread", threadID), zap.Error(err))
		return
	}
	if err := s.client.DeleteChannel(ctx, threadID, "Ticket closed"); err != nil {
		s.logger.Error("thread deletion failed", zap.Int64("thread", threadID), zap.Error(err))
	}
}

// ReopenTicket transitions a closed ticket back to in-progress. Only tickets
// closed within the reopen window qualify.
func (s *TicketService) ReopenTicket(ctx context.Context, ticketID int64, p domain.Principal) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}
	if ticket.Status != domain.TicketStatusClosed {
		return nil, apperrors.NewInvalidState("only closed tickets can be reopened")
	}
	now := s.now()
	if ticket.ClosedAt == nil || now.After(ticket.ClosedAt.Add(domain.ReopenWindow)) {
		return nil, apperrors.NewInvalidState("the reopen window has expired")
	}

	ticket.Status = domain.TicketStatusInProgress
	ticket.ReopenedTimes++
	ticket.UpdatedAt = now
	ticket.ClosedAt = nil
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if err := s.client.SetArchivedLocked(ctx, ticket.ThreadID, false, false); err != nil {
		s.logger.Warn("thread unarchive failed", zap.Int64("thread", ticket.ThreadID), zap.Error(err))
	}
	if _, err := s.client.SendMessage(ctx, ticket.ThreadID, platform.Message{
		Content: fmt.Sprintf("Ticket reopened by %s", platform.Mention(p.UserID)),
	}); err != nil {
		s.logger.Warn("reopen notice failed", zap.Int64("thread", ticket.ThreadID), zap.Error(err))
	}

	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err == nil {
		s.publish(ctx, events.EventTicketReopened, events.TicketPayload{
			Ticket:           *ticket,
			OwnerID:          ticket.CreatedBy,
			WebhookChannelID: forum.WebhookChannelID,
		})
	}
	s.logger.Info("ticket reopened", zap.Int64("ticket", ticket.ID), zap.Int64("by", p.UserID))
	return ticket, nil
}

// HandleThreadDeleted reacts to the backing thread being removed externally.
// Already-closed tickets are left untouched; otherwise the ticket is marked
// deleted. The original take timestamp is preserved.
func (s *TicketService) HandleThreadDeleted(ctx context.Context, threadID int64) error {
	ticket, err := s.tickets.GetByThread(ctx, threadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil
	}
	now := s.now()
	ticket.Status = domain.TicketStatusDeleted
	ticket.ClosedAt = &now
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return err
	}
	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err == nil {
		s.publish(ctx, events.EventTicketClosed, events.TicketPayload{
			Ticket:           *ticket,
			OwnerID:          ticket.CreatedBy,
			WebhookChannelID: forum.WebhookChannelID,
			CloseType:        domain.CloseDelete,
		})
	}
	return nil
}

// HandleTagsChanged re-derives the persisted tag set from the channel's
// authoritative state and re-runs tag analysis on the newly added tags.
func (s *TicketService) HandleTagsChanged(ctx context.Context, threadID int64, appliedTags, addedTags []string) error {
	ticket, err := s.tickets.GetByThread(ctx, threadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err != nil {
		return err
	}

	ticket.Tags = appliedTags
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return err
	}
	s.analyzeTags(ctx, forum, threadID, ticket.CreatedBy, addedTags)

	s.publish(ctx, events.EventTicketTagsChanged, events.TicketPayload{
		Ticket:           *ticket,
		OwnerID:          ticket.CreatedBy,
		WebhookChannelID: forum.WebhookChannelID,
	})
	return nil
}

// HandleNameChanged enforces the derived display name when the thread is
// renamed out from under the ticket.
func (s *TicketService) HandleNameChanged(ctx context.Context, threadID int64, newName string) error {
	ticket, err := s.tickets.GetByThread(ctx, threadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	if newName == ticket.Name {
		return nil
	}
	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err != nil {
		return err
	}

	ticket.Name = DeriveName(ticket.ID, newName)
	ticket.UpdatedAt = s.now()
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return err
	}
	if err := s.client.RenameChannel(ctx, threadID, ticket.Name); err != nil {
		s.logger.Warn("thread rename failed", zap.Int64("thread", threadID), zap.Error(err))
	}
	s.publish(ctx, events.EventTicketRenamed, events.TicketPayload{
		Ticket:           *ticket,
		OwnerID:          ticket.CreatedBy,
		WebhookChannelID: forum.WebhookChannelID,
	})
	return nil
}

// HandleArchivedOrLocked reverts archive/lock actions not performed by the
// system itself, unless the actor is an authorized manager.
func (s *TicketService) HandleArchivedOrLocked(ctx context.Context, threadID int64, actor domain.Principal, archived, locked bool) error {
	if actor.UserID == s.client.SelfUserID() {
		return nil
	}
	ticket, err := s.tickets.GetByThread(ctx, threadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil
		}
		return err
	}
	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err != nil {
		return err
	}
	if IsAuthorized(actor, forum.Managers) {
		return nil
	}
	if !archived && !locked {
		return nil
	}

	if err := s.client.SetArchivedLocked(ctx, threadID, false, false); err != nil {
		s.logger.Warn("thread unarchive failed", zap.Int64("thread", threadID), zap.Error(err))
	}
	if _, err := s.client.SendMessage(ctx, threadID, platform.Message{
		Content: "Please don't archive or lock the ticket thread manually. It will be done automatically when the ticket is closed.",
	}); err != nil {
		s.logger.Warn("revert notice failed", zap.Int64("thread", threadID), zap.Error(err))
	}
	return nil
}

// AskForTitle posts a manager-requested prompt asking the owner to retitle
// the ticket.
func (s *TicketService) AskForTitle(ctx context.Context, threadID int64, p domain.Principal) error {
	ticket, err := s.tickets.GetByThread(ctx, threadID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("ticket")
		}
		return err
	}
	forum, err := s.forums.GetByID(ctx, ticket.ForumID)
	if err != nil {
		return err
	}
	if !IsAuthorized(p, forum.Managers) {
		return apperrors.NewNotAuthorized("you are not allowed to ask for a change of ticket title")
	}

	_, err = s.client.SendMessage(ctx, threadID, platform.Message{Embed: invalidTitleEmbed(ticket.Name)})
	return err
}

// LinkTicket resolves a ticket id to its deep link.
func (s *TicketService) LinkTicket(ctx context.Context, ticketID int64) (string, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return "", apperrors.NewNotFound("ticket")
		}
		return "", err
	}
	return platform.JumpURL(ticket.GuildID, ticket.ThreadID), nil
}

// analyzeTags prompts the thread owner for login and trace details the first
// time the forum's trace tag is applied.
func (s *TicketService) analyzeTags(ctx context.Context, forum *domain.Forum, threadID, ownerID int64, appliedTags []string) {
	if !s.forum.TraceTagApplied(forum, appliedTags) {
		return
	}
	if s.guard != nil && !s.guard.Once(ctx, fmt.Sprintf("trace-prompt:%d", threadID), tracePromptTTL) {
		return
	}
	if _, err := s.client.SendMessage(ctx, threadID, platform.Message{
		Content: fmt.Sprintf("Please specify your login and the tag of your trace below. %s", platform.Mention(ownerID)),
	}); err != nil {
		s.logger.Warn("trace prompt failed", zap.Int64("thread", threadID), zap.Error(err))
	}
}

func (s *TicketService) publish(ctx context.Context, eventType events.EventType, payload any) {
	if s.dispatcher == nil {
		return
	}
	err := s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: s.now(),
		Payload:   payload,
	})
	if err != nil {
		s.logger.Warn("event fan-out failed", zap.String("event", string(eventType)), zap.Error(err))
	}
}
