package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threaddesk/threaddesk/internal/domain"
)

// TraceConfigRepository encapsulates trace configuration persistence.
type TraceConfigRepository interface {
	Create(ctx context.Context, config *domain.TraceConfig) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.TraceConfig, error)
	// FindByTag returns all configs for (guild, tag) ordered by window start;
	// the caller filters for the active one.
	FindByTag(ctx context.Context, guildID int64, tag string) ([]domain.TraceConfig, error)
	ListByGuild(ctx context.Context, guildID int64) ([]domain.TraceConfig, error)
	AttachManager(ctx context.Context, configID, managerID uuid.UUID) error
}

type traceConfigRepository struct {
	pool *pgxpool.Pool
}

// NewTraceConfigRepository instantiates repository.
func NewTraceConfigRepository(pool *pgxpool.Pool) TraceConfigRepository {
	return &traceConfigRepository{pool: pool}
}

const traceConfigColumns = `
        id, team_id, guild_id, tag, from_datetime, end_datetime,
        category_channel_id, webhook_channel_id, roles_allowed, users_allowed`

func (r *traceConfigRepository) Create(ctx context.Context, config *domain.TraceConfig) error {
	const query = `
        INSERT INTO trace_configs (id, team_id, guild_id, tag, from_datetime, end_datetime,
                                   category_channel_id, webhook_channel_id, roles_allowed, users_allowed)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	if config.ID == uuid.Nil {
		config.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, query,
		config.ID,
		config.TeamID,
		config.GuildID,
		config.Tag,
		config.FromDateTime,
		config.EndDateTime,
		config.CategoryChannelID,
		config.WebhookChannelID,
		config.RolesAllowed,
		config.UsersAllowed,
	)
	return err
}

func (r *traceConfigRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.TraceConfig, error) {
	var config domain.TraceConfig
	if err := scanTraceConfig(r.pool.QueryRow(ctx,
		`SELECT `+traceConfigColumns+` FROM trace_configs WHERE id=$1`, id), &config); err != nil {
		return nil, err
	}
	if err := r.loadManagers(ctx, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (r *traceConfigRepository) FindByTag(ctx context.Context, guildID int64, tag string) ([]domain.TraceConfig, error) {
	return r.list(ctx,
		`SELECT `+traceConfigColumns+` FROM trace_configs WHERE guild_id=$1 AND tag=$2 ORDER BY from_datetime`,
		guildID, tag)
}

func (r *traceConfigRepository) ListByGuild(ctx context.Context, guildID int64) ([]domain.TraceConfig, error) {
	return r.list(ctx,
		`SELECT `+traceConfigColumns+` FROM trace_configs WHERE guild_id=$1 ORDER BY tag, from_datetime`,
		guildID)
}

func (r *traceConfigRepository) list(ctx context.Context, query string, args ...any) ([]domain.TraceConfig, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TraceConfig
	for rows.Next() {
		var config domain.TraceConfig
		if err := scanTraceConfig(rows, &config); err != nil {
			return nil, err
		}
		result = append(result, config)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadManagers(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *traceConfigRepository) loadManagers(ctx context.Context, config *domain.TraceConfig) error {
	managers, err := listManagersFor(ctx, r.pool,
		`SELECT m.id, m.name, m.custom_message, m.roles, m.users
         FROM managers m JOIN trace_config_managers tm ON tm.manager_id = m.id
         WHERE tm.trace_config_id=$1 ORDER BY m.name`, config.ID)
	if err != nil {
		return err
	}
	config.Managers = managers
	return nil
}

func (r *traceConfigRepository) AttachManager(ctx context.Context, configID, managerID uuid.UUID) error {
	const query = `
        INSERT INTO trace_config_managers (trace_config_id, manager_id)
        VALUES ($1,$2) ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, configID, managerID)
	return err
}

func scanTraceConfig(row pgx.Row, config *domain.TraceConfig) error {
	return row.Scan(
		&config.ID,
		&config.TeamID,
		&config.GuildID,
		&config.Tag,
		&config.FromDateTime,
		&config.EndDateTime,
		&config.CategoryChannelID,
		&config.WebhookChannelID,
		&config.RolesAllowed,
		&config.UsersAllowed,
	)
}
