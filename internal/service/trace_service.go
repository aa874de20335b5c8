package service

import (
	"context"
	"fmt"
	"strings"
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

// ModalNewTraceTicket prefixes the trace modal id; the config id follows
// after a dash.
const ModalNewTraceTicket = "new_trace_ticket"

// Modal field ids.
const (
	FieldTraceLogin    = "login"
	FieldTraceQuestion = "question"
)

// maxCategoryChannels is the platform cap on children per category.
const maxCategoryChannels = 50

// maxChannelNameLength is the platform cap on channel names.
const maxChannelNameLength = 100

const (
	categoryLockAttempts = 3
	categoryLockRetry    = 100 * time.Millisecond
	categoryLockTTL      = 10 * time.Second
)

// TraceService provisions and manages category-based trace tickets.
type TraceService struct {
	tickets    repository.TraceTicketRepository
	configs    repository.TraceConfigRepository
	forum      *ForumService
	client     platform.Client
	dispatcher events.Dispatcher
	locker     locking.Locker
	logger     *zap.Logger
	now        func() time.Time
}

// TraceDependencies bundles collaborators for the trace service.
type TraceDependencies struct {
	TicketRepo repository.TraceTicketRepository
	ConfigRepo repository.TraceConfigRepository
	ForumSvc   *ForumService
	Client     platform.Client
	Dispatcher events.Dispatcher
	Locker     locking.Locker
	Logger     *zap.Logger
}

// NewTraceService constructs the service.
func NewTraceService(deps TraceDependencies) *TraceService {
	return &TraceService{
		tickets:    deps.TicketRepo,
		configs:    deps.ConfigRepo,
		forum:      deps.ForumSvc,
		client:     deps.Client,
		dispatcher: deps.Dispatcher,
		locker:     deps.Locker,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// TraceChannelName derives the channel name from the requester's login. The
// length cap counts runes so a multibyte login never truncates mid-character.
func TraceChannelName(login string) string {
	name := "trace-" + strings.ReplaceAll(login, ".", "_")
	if runes := []rune(name); len(runes) > maxChannelNameLength {
		name = string(runes[:maxChannelNameLength])
	}
	return name
}

// BeginTraceTicket validates the requested tag and presents the intake modal.
func (s *TraceService) BeginTraceTicket(ctx context.Context, interactionID string, guildID int64, p domain.Principal, tag string) error {
	config, err := s.forum.FindActiveConfig(ctx, guildID, tag, s.now())
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("trace tag; it does not exist or is not open")
		}
		return err
	}
	if !CanUseTag(p, *config) {
		return apperrors.NewNotAuthorized("you are not allowed to open trace tickets with this tag")
	}
	return s.client.PostModal(ctx, interactionID, platform.Modal{
		ID:    fmt.Sprintf("%s-%s", ModalNewTraceTicket, config.ID),
		Title: fmt.Sprintf("Trace ticket: %s", config.Tag),
		Fields: []platform.ModalField{
			{ID: FieldTraceLogin, Label: "Login", Placeholder: "your login", Required: true},
			{ID: FieldTraceQuestion, Label: "Question", Placeholder: "describe your problem", Paragraph: true},
		},
	})
}

// CreateFromModal provisions the trace channel once the modal is submitted.
// The allow-list is re-checked: the window or the lists may have changed while
// the modal was open.
func (s *TraceService) CreateFromModal(ctx context.Context, guildID int64, p domain.Principal, configID uuid.UUID, categoryName, login, question string) (*domain.TraceTicket, error) {
	config, err := s.configs.GetByID(ctx, configID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("trace configuration")
		}
		return nil, err
	}
	if !config.ActiveAt(s.now()) {
		return nil, apperrors.NewInvalidState("this trace tag is no longer open")
	}
	if !CanUseTag(p, *config) {
		return nil, apperrors.NewNotAuthorized("you are not allowed to open trace tickets with this tag")
	}

	categoryID, err := s.resolveOrCreateCategory(ctx, guildID, categoryName, config.Managers)
	if err != nil {
		return nil, err
	}

	channelName := TraceChannelName(login)
	channelID, err := s.client.CreateTextChannel(ctx, guildID, categoryID, channelName, []platform.Override{
		{UserID: p.UserID, Allow: platform.UserTextPermissions},
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket := &domain.TraceTicket{
		ID:          uuid.New(),
		ConfigID:    config.ID,
		GuildID:     guildID,
		ChannelID:   channelID,
		CategoryID:  categoryID,
		ChannelName: channelName,
		CreatedBy:   p.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		// The channel exists without a record; surface the inconsistency loudly.
		s.logger.Error("trace ticket persist failed after channel creation",
			zap.Int64("channel", channelID), zap.Error(err))
		return nil, err
	}

	if _, err := s.client.SendMessage(ctx, channelID, platform.Message{
		Content: platform.Mention(p.UserID),
		Embed:   traceRulesEmbed(config.Tag, login),
	}); err != nil {
		s.logger.Warn("trace rules message failed", zap.Int64("channel", channelID), zap.Error(err))
	}
	if question != "" {
		if _, err := s.client.SendMessage(ctx, channelID, platform.Message{
			Content: fmt.Sprintf("**Question:** %s", question),
		}); err != nil {
			s.logger.Warn("trace question message failed", zap.Int64("channel", channelID), zap.Error(err))
		}
	}

	s.publish(ctx, events.EventTraceTicketCreated, events.TraceTicketPayload{
		Ticket:           *ticket,
		Tag:              config.Tag,
		Login:            login,
		Question:         question,
		WebhookChannelID: config.WebhookChannelID,
	})
	s.logger.Info("trace ticket created",
		zap.String("ticket", ticket.ID.String()), zap.Int64("channel", channelID), zap.String("tag", config.Tag))
	return ticket, nil
}

// resolveOrCreateCategory returns the id of a category with spare capacity,
// creating a fresh one after the last when all are full. A short mutex
// serializes concurrent provisioning per (guild, name); if the lock cannot be
// taken the capacity check proceeds unguarded, accepting a soft cap overrun
// rather than failing the request.
func (s *TraceService) resolveOrCreateCategory(ctx context.Context, guildID int64, name string, managers []domain.Manager) (int64, error) {
	if s.locker != nil {
		key := fmt.Sprintf("trace:category:%d:%s", guildID, name)
		for attempt := 0; attempt < categoryLockAttempts; attempt++ {
			release, ok := s.locker.TryLock(ctx, key, categoryLockTTL)
			if ok {
				defer release()
				break
			}
			if attempt == categoryLockAttempts-1 {
				s.logger.Warn("category lock contended, proceeding unguarded", zap.String("key", key))
				break
			}
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(categoryLockRetry):
			}
		}
	}

	categories, err := s.client.CategoriesByName(ctx, guildID, name)
	if err != nil {
		return 0, err
	}
	maxPosition := 0
	for _, category := range categories {
		if category.ChannelCount < maxCategoryChannels {
			return category.ID, nil
		}
		if category.Position > maxPosition {
			maxPosition = category.Position
		}
	}

	overrides := []platform.Override{
		// The guild id doubles as the @everyone role id.
		{RoleID: guildID, Deny: []platform.Permission{platform.PermViewChannel}},
		{UserID: s.client.SelfUserID(), Allow: platform.ManagerPermissions},
	}
	for _, manager := range managers {
		for _, role := range manager.Roles {
			overrides = append(overrides, platform.Override{RoleID: role, Allow: platform.ManagerPermissions})
		}
		for _, user := range manager.Users {
			overrides = append(overrides, platform.Override{UserID: user, Allow: platform.ManagerPermissions})
		}
	}
	return s.client.CreateCategory(ctx, guildID, name, maxPosition+1, overrides)
}

// AssociateVocal creates the companion voice channel for a trace ticket. Only
// a config manager may do it, and only once per ticket.
func (s *TraceService) AssociateVocal(ctx context.Context, channelID int64, p domain.Principal) (*domain.TraceTicket, error) {
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("trace ticket; this is not a trace channel")
		}
		return nil, err
	}
	config, err := s.configs.GetByID(ctx, ticket.ConfigID)
	if err != nil {
		return nil, err
	}
	if !IsAuthorized(p, config.Managers) {
		return nil, apperrors.NewNotAuthorized("you are not allowed to manage this trace ticket")
	}
	if ticket.VocalChannelID != nil {
		return nil, apperrors.NewInvalidState("a voice channel is already associated with this trace ticket")
	}

	vocalID, err := s.client.CreateVoiceChannel(ctx, ticket.GuildID, ticket.CategoryID,
		"vocal-"+ticket.ChannelName, []platform.Override{
			{UserID: ticket.CreatedBy, Allow: platform.UserVoicePermissions, Deny: platform.UserVoiceDenied},
		})
	if err != nil {
		return nil, err
	}

	now := s.now()
	ticket.VocalChannelID = &vocalID
	if ticket.TakenAt == nil {
		ticket.TakenAt = &now
	}
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	if _, err := s.client.SendMessage(ctx, channelID, platform.Message{
		Content: fmt.Sprintf("Voice channel %s created. %s",
			platform.ChannelMention(vocalID), platform.Mention(ticket.CreatedBy)),
	}); err != nil {
		s.logger.Warn("vocal notice failed", zap.Int64("channel", channelID), zap.Error(err))
	}
	return ticket, nil
}

// CloseTraceTicket archives the channel's log and removes the trace channels.
func (s *TraceService) CloseTraceTicket(ctx context.Context, channelID int64, p domain.Principal) error {
	ticket, err := s.tickets.GetByChannel(ctx, channelID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("trace ticket; this is not a trace channel")
		}
		return err
	}
	config, err := s.configs.GetByID(ctx, ticket.ConfigID)
	if err != nil {
		return err
	}
	if !IsAuthorized(p, config.Managers) {
		return apperrors.NewNotAuthorized("you are not allowed to close this trace ticket")
	}
	if ticket.ClosedAt != nil {
		return apperrors.NewInvalidState("trace ticket is already closed")
	}

	now := s.now()
	ticket.ClosedAt = &now
	ticket.UpdatedAt = now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return err
	}

	go s.archiveAndRemove(ticket, config.WebhookChannelID)

	s.publish(ctx, events.EventTraceTicketClosed, events.TraceTicketPayload{
		Ticket:           *ticket,
		WebhookChannelID: config.WebhookChannelID,
	})
	s.logger.Info("trace ticket closed",
		zap.String("ticket", ticket.ID.String()), zap.Int64("by", p.UserID))
	return nil
}

func (s *TraceService) archiveAndRemove(ticket *domain.TraceTicket, logChannelID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := s.client.ArchiveMessages(ctx, ticket.ChannelID, logChannelID, "log-"+ticket.ChannelName); err != nil {
		s.logger.Error("trace archival failed", zap.Int64("channel", ticket.ChannelID), zap.Error(err))
		return
	}
	if err := s.client.DeleteChannel(ctx, ticket.ChannelID, "Trace ticket closed"); err != nil {
		s.logger.Error("trace channel deletion failed", zap.Int64("channel", ticket.ChannelID), zap.Error(err))
	}
	if ticket.VocalChannelID != nil {
		if err := s.client.DeleteChannel(ctx, *ticket.VocalChannelID, "Trace ticket closed"); err != nil {
			s.logger.Warn("vocal channel deletion failed", zap.Int64("channel", *ticket.VocalChannelID), zap.Error(err))
		}
	}
}

func (s *TraceService) publish(ctx context.Context, eventType events.EventType, payload any) {
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
