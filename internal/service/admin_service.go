package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/repository"
	apperrors "github.com/threaddesk/threaddesk/pkg/util"
)

// AdminService validates and persists the workflow configuration: teams,
// managers, forums, practical tags, and trace configurations. It backs the
// administrative HTTP API.
type AdminService struct {
	teams    repository.TeamRepository
	managers repository.ManagerRepository
	forums   repository.ForumRepository
	configs  repository.TraceConfigRepository
	logger   *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(teams repository.TeamRepository, managers repository.ManagerRepository, forums repository.ForumRepository, configs repository.TraceConfigRepository, logger *zap.Logger) *AdminService {
	return &AdminService{teams: teams, managers: managers, forums: forums, configs: configs, logger: logger}
}

// CreateTeam registers a team.
func (s *AdminService) CreateTeam(ctx context.Context, team *domain.Team) error {
	if strings.TrimSpace(team.Name) == "" {
		return apperrors.NewValidationError("team name is required", nil)
	}
	if team.OwnerID == 0 {
		return apperrors.NewValidationError("team owner is required", nil)
	}
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return apperrors.ToDomainError(err)
	}
	s.logger.Info("team created", zap.String("team", team.ID.String()), zap.String("name", team.Name))
	return nil
}

// ListTeams returns all teams.
func (s *AdminService) ListTeams(ctx context.Context) ([]domain.Team, error) {
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return teams, nil
}

// CreateManager registers a manager authorization unit.
func (s *AdminService) CreateManager(ctx context.Context, manager *domain.Manager) error {
	if strings.TrimSpace(manager.Name) == "" {
		return apperrors.NewValidationError("manager name is required", nil)
	}
	if len(manager.Roles) == 0 && len(manager.Users) == 0 {
		return apperrors.NewValidationError("manager needs at least one role or user", nil)
	}
	if manager.ID == uuid.Nil {
		manager.ID = uuid.New()
	}
	if err := s.managers.Create(ctx, manager); err != nil {
		return apperrors.ToDomainError(err)
	}
	s.logger.Info("manager created", zap.String("manager", manager.ID.String()), zap.String("name", manager.Name))
	return nil
}

// ListManagers returns all managers.
func (s *AdminService) ListManagers(ctx context.Context) ([]domain.Manager, error) {
	managers, err := s.managers.List(ctx)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return managers, nil
}

// CreateForum binds a forum channel to a team.
func (s *AdminService) CreateForum(ctx context.Context, forum *domain.Forum) error {
	if strings.TrimSpace(forum.Name) == "" {
		return apperrors.NewValidationError("forum name is required", nil)
	}
	if forum.ChannelID == 0 || forum.WebhookChannelID == 0 {
		return apperrors.NewValidationError("forum channel and webhook channel are required", nil)
	}
	if _, err := s.teams.GetByID(ctx, forum.TeamID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("team")
		}
		return apperrors.ToDomainError(err)
	}
	if forum.ID == uuid.Nil {
		forum.ID = uuid.New()
	}
	if err := s.forums.Create(ctx, forum); err != nil {
		return apperrors.ToDomainError(err)
	}
	s.logger.Info("forum created", zap.String("forum", forum.ID.String()), zap.Int64("channel", forum.ChannelID))
	return nil
}

// ListForums returns all forums with managers and practical tags attached.
func (s *AdminService) ListForums(ctx context.Context) ([]domain.Forum, error) {
	forums, err := s.forums.List(ctx)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return forums, nil
}

// AttachForumManager links an existing manager to a forum.
func (s *AdminService) AttachForumManager(ctx context.Context, forumID, managerID uuid.UUID) error {
	if _, err := s.forums.GetByID(ctx, forumID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("forum")
		}
		return apperrors.ToDomainError(err)
	}
	if _, err := s.managers.GetByID(ctx, managerID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("manager")
		}
		return apperrors.ToDomainError(err)
	}
	if err := s.forums.AttachManager(ctx, forumID, managerID); err != nil {
		return apperrors.ToDomainError(err)
	}
	return nil
}

// AddPracticalTag adds a time-bounded practical tag to a forum.
func (s *AdminService) AddPracticalTag(ctx context.Context, tag *domain.PracticalTag) error {
	if tag.TagID == 0 {
		return apperrors.NewValidationError("tag id is required", nil)
	}
	if !tag.FromDateTime.Before(tag.EndDateTime) {
		return apperrors.NewValidationError("tag window must start before it ends", nil)
	}
	if _, err := s.forums.GetByID(ctx, tag.ForumID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("forum")
		}
		return apperrors.ToDomainError(err)
	}
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	if err := s.forums.AddPracticalTag(ctx, tag); err != nil {
		return apperrors.ToDomainError(err)
	}
	return nil
}

// CreateTraceConfig registers a trace tag window.
func (s *AdminService) CreateTraceConfig(ctx context.Context, config *domain.TraceConfig) error {
	if strings.TrimSpace(config.Tag) == "" {
		return apperrors.NewValidationError("trace tag is required", nil)
	}
	if !config.FromDateTime.Before(config.EndDateTime) {
		return apperrors.NewValidationError("trace window must start before it ends", nil)
	}
	if config.GuildID == 0 || config.WebhookChannelID == 0 {
		return apperrors.NewValidationError("guild and webhook channel are required", nil)
	}
	if _, err := s.teams.GetByID(ctx, config.TeamID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("team")
		}
		return apperrors.ToDomainError(err)
	}
	if config.ID == uuid.Nil {
		config.ID = uuid.New()
	}
	if err := s.configs.Create(ctx, config); err != nil {
		return apperrors.ToDomainError(err)
	}
	s.logger.Info("trace config created",
		zap.String("config", config.ID.String()), zap.String("tag", config.Tag))
	return nil
}

// ListTraceConfigs returns all trace configurations for a guild.
func (s *AdminService) ListTraceConfigs(ctx context.Context, guildID int64) ([]domain.TraceConfig, error) {
	configs, err := s.configs.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, apperrors.ToDomainError(err)
	}
	return configs, nil
}

// AttachTraceConfigManager links an existing manager to a trace config.
func (s *AdminService) AttachTraceConfigManager(ctx context.Context, configID, managerID uuid.UUID) error {
	if _, err := s.configs.GetByID(ctx, configID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("trace configuration")
		}
		return apperrors.ToDomainError(err)
	}
	if _, err := s.managers.GetByID(ctx, managerID); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("manager")
		}
		return apperrors.ToDomainError(err)
	}
	if err := s.configs.AttachManager(ctx, configID, managerID); err != nil {
		return apperrors.ToDomainError(err)
	}
	return nil
}
