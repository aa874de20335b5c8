package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
	apperrors "github.com/threaddesk/threaddesk/pkg/util"
)

func traceConfig(guildID int64, tag string, from, end time.Time, allowedRole int64) domain.TraceConfig {
	return domain.TraceConfig{
		ID:           uuid.New(),
		TeamID:       uuid.New(),
		GuildID:      guildID,
		Tag:          tag,
		FromDateTime: from,
		EndDateTime:  end,
		RolesAllowed: []int64{allowedRole},
	}
}

func TestTraceConfigActiveAtBoundaries(t *testing.T) {
	from := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	end := from.Add(24 * time.Hour)
	config := traceConfig(1, "x", from, end, 10)

	require.True(t, config.ActiveAt(from), "window start is inclusive")
	require.True(t, config.ActiveAt(end.Add(-time.Second)))
	require.False(t, config.ActiveAt(end), "window end is exclusive")
	require.False(t, config.ActiveAt(from.Add(-time.Second)))
}

func TestFindActiveConfigPrefersEarliestStart(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeTraceConfigRepo{}
	early := traceConfig(1, "x", now.Add(-2*time.Hour), now.Add(time.Hour), 10)
	late := traceConfig(1, "x", now.Add(-time.Hour), now.Add(time.Hour), 10)
	require.NoError(t, repo.Create(context.Background(), &late))
	require.NoError(t, repo.Create(context.Background(), &early))

	svc := NewForumService(newFakeForumRepo(), repo, zap.NewNop())
	config, err := svc.FindActiveConfig(context.Background(), 1, "x", now)
	require.NoError(t, err)
	require.Equal(t, early.ID, config.ID)
}

func TestFindActiveConfigIgnoresInactiveWindows(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeTraceConfigRepo{}
	past := traceConfig(1, "x", now.Add(-3*time.Hour), now.Add(-2*time.Hour), 10)
	require.NoError(t, repo.Create(context.Background(), &past))

	svc := NewForumService(newFakeForumRepo(), repo, zap.NewNop())
	_, err := svc.FindActiveConfig(context.Background(), 1, "x", now)
	require.True(t, apperrors.IsNotFound(err))
}

func TestListActiveTagsFiltersAndCaps(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeTraceConfigRepo{}
	for i := 0; i < 30; i++ {
		config := traceConfig(1, fmt.Sprintf("module-%02d", i), now.Add(-time.Hour), now.Add(time.Hour), 10)
		require.NoError(t, repo.Create(context.Background(), &config))
	}
	// Not allowed for the principal's roles.
	restricted := traceConfig(1, "restricted", now.Add(-time.Hour), now.Add(time.Hour), 99)
	require.NoError(t, repo.Create(context.Background(), &restricted))
	// Expired.
	expired := traceConfig(1, "expired", now.Add(-2*time.Hour), now.Add(-time.Hour), 10)
	require.NoError(t, repo.Create(context.Background(), &expired))

	svc := NewForumService(newFakeForumRepo(), repo, zap.NewNop())
	p := domain.Principal{UserID: 1, RoleIDs: []int64{10}}

	tags, err := svc.ListActiveTags(context.Background(), 1, p, "", now)
	require.NoError(t, err)
	require.Len(t, tags, maxAutocompleteChoices)
	require.NotContains(t, tags, "restricted")
	require.NotContains(t, tags, "expired")

	tags, err = svc.ListActiveTags(context.Background(), 1, p, "MODULE-05", now)
	require.NoError(t, err)
	require.Equal(t, []string{"module-05"}, tags)
}

func TestListActiveTagsDeduplicates(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	repo := &fakeTraceConfigRepo{}
	a := traceConfig(1, "same", now.Add(-2*time.Hour), now.Add(time.Hour), 10)
	b := traceConfig(1, "same", now.Add(-time.Hour), now.Add(2*time.Hour), 10)
	require.NoError(t, repo.Create(context.Background(), &a))
	require.NoError(t, repo.Create(context.Background(), &b))

	svc := NewForumService(newFakeForumRepo(), repo, zap.NewNop())
	tags, err := svc.ListActiveTags(context.Background(), 1, domain.Principal{UserID: 1, RoleIDs: []int64{10}}, "", now)
	require.NoError(t, err)
	require.Equal(t, []string{"same"}, tags)
}

func TestActivePracticalTags(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	forum := &domain.Forum{PracticalTags: []domain.PracticalTag{
		{TagID: 1, FromDateTime: now.Add(-time.Hour), EndDateTime: now.Add(time.Hour)},
		{TagID: 2, FromDateTime: now.Add(time.Hour), EndDateTime: now.Add(2 * time.Hour)},
	}}

	svc := NewForumService(newFakeForumRepo(), &fakeTraceConfigRepo{}, zap.NewNop())
	active := svc.ActivePracticalTags(forum, now)
	require.Len(t, active, 1)
	require.Equal(t, int64(1), active[0].TagID)
}

func TestTraceTagAppliedCaseInsensitive(t *testing.T) {
	svc := NewForumService(newFakeForumRepo(), &fakeTraceConfigRepo{}, zap.NewNop())
	forum := &domain.Forum{TraceTag: "trace"}

	require.True(t, svc.TraceTagApplied(forum, []string{"bug", "Trace"}))
	require.False(t, svc.TraceTagApplied(forum, []string{"bug"}))
	require.False(t, svc.TraceTagApplied(&domain.Forum{}, []string{"trace"}))
}
