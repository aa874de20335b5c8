package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/threaddesk/threaddesk/internal/domain"
	apperrors "github.com/threaddesk/threaddesk/pkg/util"
)

type adminFixture struct {
	svc     *AdminService
	teams   *fakeTeamRepo
	configs *fakeTraceConfigRepo
	teamID  uuid.UUID
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	teams := &fakeTeamRepo{}
	configs := &fakeTraceConfigRepo{}
	svc := NewAdminService(teams, &fakeManagerRepo{}, newFakeForumRepo(), configs, zap.NewNop())

	team := &domain.Team{Name: "support", OwnerID: ownerID}
	require.NoError(t, svc.CreateTeam(context.Background(), team))
	return &adminFixture{svc: svc, teams: teams, configs: configs, teamID: team.ID}
}

func TestCreateTraceConfigStoresCategoryBinding(t *testing.T) {
	f := newAdminFixture(t)
	category := int64(4200)
	config := &domain.TraceConfig{
		TeamID:            f.teamID,
		GuildID:           traceGuildID,
		Tag:               "cpp-module",
		FromDateTime:      time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDateTime:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CategoryChannelID: &category,
		WebhookChannelID:  300,
	}
	require.NoError(t, f.svc.CreateTraceConfig(context.Background(), config))

	stored, err := f.configs.GetByID(context.Background(), config.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CategoryChannelID)
	require.Equal(t, category, *stored.CategoryChannelID)
}

func TestCreateTraceConfigValidation(t *testing.T) {
	f := newAdminFixture(t)
	base := domain.TraceConfig{
		TeamID:           f.teamID,
		GuildID:          traceGuildID,
		Tag:              "cpp-module",
		FromDateTime:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		EndDateTime:      time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		WebhookChannelID: 300,
	}

	noTag := base
	noTag.Tag = " "
	require.Error(t, f.svc.CreateTraceConfig(context.Background(), &noTag))

	inverted := base
	inverted.FromDateTime, inverted.EndDateTime = inverted.EndDateTime, inverted.FromDateTime
	require.Error(t, f.svc.CreateTraceConfig(context.Background(), &inverted))

	orphan := base
	orphan.TeamID = uuid.New()
	err := f.svc.CreateTraceConfig(context.Background(), &orphan)
	require.True(t, apperrors.IsNotFound(err))
}
