package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
	"github.com/threaddesk/threaddesk/internal/repository"
	apperrors "github.com/threaddesk/threaddesk/pkg/util"
)

// maxAutocompleteChoices is the platform cap on suggestion lists.
const maxAutocompleteChoices = 25

// ForumService resolves forum and trace-tag configuration.
type ForumService struct {
	forums  repository.ForumRepository
	configs repository.TraceConfigRepository
	logger  *zap.Logger
}

// NewForumService constructs the service.
func NewForumService(forums repository.ForumRepository, configs repository.TraceConfigRepository, logger *zap.Logger) *ForumService {
	return &ForumService{forums: forums, configs: configs, logger: logger}
}

// ForumByChannel loads the forum bound to the channel, or NOT_FOUND.
func (s *ForumService) ForumByChannel(ctx context.Context, channelID int64) (*domain.Forum, error) {
	forum, err := s.forums.GetByChannel(ctx, channelID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("forum")
		}
		return nil, err
	}
	return forum, nil
}

// FindActiveConfig resolves the trace configuration active for (guild, tag)
// at the given instant. At most one should exist by convention; under
// overlapping windows the earliest-starting one wins.
func (s *ForumService) FindActiveConfig(ctx context.Context, guildID int64, tag string, now time.Time) (*domain.TraceConfig, error) {
	configs, err := s.configs.FindByTag(ctx, guildID, tag)
	if err != nil {
		return nil, err
	}
	active := make([]domain.TraceConfig, 0, len(configs))
	for _, config := range configs {
		if config.ActiveAt(now) {
			active = append(active, config)
		}
	}
	if len(active) == 0 {
		return nil, apperrors.NewNotFound("trace configuration")
	}
	if len(active) > 1 {
		s.logger.Warn("multiple active trace configs for tag",
			zap.Int64("guild", guildID), zap.String("tag", tag), zap.Int("count", len(active)))
	}
	return &active[0], nil
}

// ListActiveTags returns the tags the principal may use right now, filtered
// by a case-insensitive substring query and capped at the platform choice
// limit. Used for autocomplete.
func (s *ForumService) ListActiveTags(ctx context.Context, guildID int64, p domain.Principal, query string, now time.Time) ([]string, error) {
	configs, err := s.configs.ListByGuild(ctx, guildID)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	seen := map[string]struct{}{}
	var tags []string
	for _, config := range configs {
		if !config.ActiveAt(now) || !CanUseTag(p, config) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(config.Tag), needle) {
			continue
		}
		if _, dup := seen[config.Tag]; dup {
			continue
		}
		seen[config.Tag] = struct{}{}
		tags = append(tags, config.Tag)
	}
	sort.Strings(tags)
	if len(tags) > maxAutocompleteChoices {
		tags = tags[:maxAutocompleteChoices]
	}
	return tags, nil
}

// ActivePracticalTags returns the forum's practical tags whose window covers
// the given instant.
func (s *ForumService) ActivePracticalTags(forum *domain.Forum, now time.Time) []domain.PracticalTag {
	var active []domain.PracticalTag
	for _, tag := range forum.PracticalTags {
		if tag.ActiveAt(now) {
			active = append(active, tag)
		}
	}
	return active
}

// TraceTagApplied reports whether the forum's designated trace tag appears
// among the applied tag names.
func (s *ForumService) TraceTagApplied(forum *domain.Forum, appliedTags []string) bool {
	if forum.TraceTag == "" {
		return false
	}
	for _, tag := range appliedTags {
		if strings.EqualFold(tag, forum.TraceTag) {
			return true
		}
	}
	return false
}
