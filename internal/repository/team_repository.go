package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threaddesk/threaddesk/internal/domain"
)

// TeamRepository encapsulates team persistence.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error)
	List(ctx context.Context) ([]domain.Team, error)
}

type teamRepository struct {
	pool *pgxpool.Pool
}

// NewTeamRepository instantiates repository.
func NewTeamRepository(pool *pgxpool.Pool) TeamRepository {
	return &teamRepository{pool: pool}
}

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO teams (id, name, owner_id) VALUES ($1,$2,$3)`,
		team.ID, team.Name, team.OwnerID)
	return err
}

func (r *teamRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Team, error) {
	var team domain.Team
	if err := r.pool.QueryRow(ctx, `SELECT id, name, owner_id FROM teams WHERE id=$1`, id).
		Scan(&team.ID, &team.Name, &team.OwnerID); err != nil {
		return nil, err
	}
	return &team, nil
}

func (r *teamRepository) List(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, owner_id FROM teams ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		var team domain.Team
		if err := rows.Scan(&team.ID, &team.Name, &team.OwnerID); err != nil {
			return nil, err
		}
		result = append(result, team)
	}
	return result, rows.Err()
}
