package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threaddesk/threaddesk/internal/domain"
)

// ForumRepository encapsulates forum configuration persistence. Loaded forums
// carry their manager set and practical tags.
type ForumRepository interface {
	Create(ctx context.Context, forum *domain.Forum) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Forum, error)
	GetByChannel(ctx context.Context, channelID int64) (*domain.Forum, error)
	List(ctx context.Context) ([]domain.Forum, error)
	AttachManager(ctx context.Context, forumID, managerID uuid.UUID) error
	AddPracticalTag(ctx context.Context, tag *domain.PracticalTag) error
}

type forumRepository struct {
	pool *pgxpool.Pool
}

// NewForumRepository instantiates repository.
func NewForumRepository(pool *pgxpool.Pool) ForumRepository {
	return &forumRepository{pool: pool}
}

func (r *forumRepository) Create(ctx context.Context, forum *domain.Forum) error {
	const query = `
        INSERT INTO forums (id, team_id, name, channel_id, webhook_channel_id, trace_tag)
        VALUES ($1,$2,$3,$4,$5,$6)`
	if forum.ID == uuid.Nil {
		forum.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, query,
		forum.ID, forum.TeamID, forum.Name, forum.ChannelID, forum.WebhookChannelID, forum.TraceTag)
	return err
}

const forumColumns = `id, team_id, name, channel_id, webhook_channel_id, trace_tag`

func (r *forumRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Forum, error) {
	return r.fetchSingle(ctx, `SELECT `+forumColumns+` FROM forums WHERE id=$1`, id)
}

func (r *forumRepository) GetByChannel(ctx context.Context, channelID int64) (*domain.Forum, error) {
	return r.fetchSingle(ctx, `SELECT `+forumColumns+` FROM forums WHERE channel_id=$1`, channelID)
}

func (r *forumRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Forum, error) {
	var forum domain.Forum
	if err := scanForum(r.pool.QueryRow(ctx, query, arg), &forum); err != nil {
		return nil, err
	}
	if err := r.loadAssociations(ctx, &forum); err != nil {
		return nil, err
	}
	return &forum, nil
}

func (r *forumRepository) List(ctx context.Context) ([]domain.Forum, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+forumColumns+` FROM forums ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Forum
	for rows.Next() {
		var forum domain.Forum
		if err := scanForum(rows, &forum); err != nil {
			return nil, err
		}
		result = append(result, forum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range result {
		if err := r.loadAssociations(ctx, &result[i]); err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (r *forumRepository) loadAssociations(ctx context.Context, forum *domain.Forum) error {
	managers, err := listManagersFor(ctx, r.pool,
		`SELECT m.id, m.name, m.custom_message, m.roles, m.users
         FROM managers m JOIN forum_managers fm ON fm.manager_id = m.id
         WHERE fm.forum_id=$1 ORDER BY m.name`, forum.ID)
	if err != nil {
		return err
	}
	forum.Managers = managers

	rows, err := r.pool.Query(ctx,
		`SELECT id, forum_id, tag_id, from_datetime, end_datetime
         FROM practical_tags WHERE forum_id=$1 ORDER BY from_datetime`, forum.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var tags []domain.PracticalTag
	for rows.Next() {
		var tag domain.PracticalTag
		if err := rows.Scan(&tag.ID, &tag.ForumID, &tag.TagID, &tag.FromDateTime, &tag.EndDateTime); err != nil {
			return err
		}
		tags = append(tags, tag)
	}
	forum.PracticalTags = tags
	return rows.Err()
}

func (r *forumRepository) AttachManager(ctx context.Context, forumID, managerID uuid.UUID) error {
	const query = `
        INSERT INTO forum_managers (forum_id, manager_id)
        VALUES ($1,$2) ON CONFLICT DO NOTHING`
	_, err := r.pool.Exec(ctx, query, forumID, managerID)
	return err
}

func (r *forumRepository) AddPracticalTag(ctx context.Context, tag *domain.PracticalTag) error {
	const query = `
        INSERT INTO practical_tags (id, forum_id, tag_id, from_datetime, end_datetime)
        VALUES ($1,$2,$3,$4,$5)`
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, query, tag.ID, tag.ForumID, tag.TagID, tag.FromDateTime, tag.EndDateTime)
	return err
}

func scanForum(row pgx.Row, forum *domain.Forum) error {
	return row.Scan(
		&forum.ID,
		&forum.TeamID,
		&forum.Name,
		&forum.ChannelID,
		&forum.WebhookChannelID,
		&forum.TraceTag,
	)
}

// listManagersFor runs a manager projection query shared by the forum and
// trace-config repositories.
func listManagersFor(ctx context.Context, pool *pgxpool.Pool, query string, arg any) ([]domain.Manager, error) {
	rows, err := pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Manager
	for rows.Next() {
		var m domain.Manager
		if err := rows.Scan(&m.ID, &m.Name, &m.CustomMessage, &m.Roles, &m.Users); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}
