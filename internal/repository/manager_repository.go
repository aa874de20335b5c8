package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threaddesk/threaddesk/internal/domain"
)

// ManagerRepository encapsulates manager persistence. Managers are shared
// between forums and trace configurations and live independently of both.
type ManagerRepository interface {
	Create(ctx context.Context, manager *domain.Manager) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Manager, error)
	List(ctx context.Context) ([]domain.Manager, error)
}

type managerRepository struct {
	pool *pgxpool.Pool
}

// NewManagerRepository instantiates repository.
func NewManagerRepository(pool *pgxpool.Pool) ManagerRepository {
	return &managerRepository{pool: pool}
}

func (r *managerRepository) Create(ctx context.Context, manager *domain.Manager) error {
	const query = `
        INSERT INTO managers (id, name, custom_message, roles, users)
        VALUES ($1,$2,$3,$4,$5)`
	if manager.ID == uuid.Nil {
		manager.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, query,
		manager.ID, manager.Name, manager.CustomMessage, manager.Roles, manager.Users)
	return err
}

func (r *managerRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Manager, error) {
	const query = `SELECT id, name, custom_message, roles, users FROM managers WHERE id=$1`
	var m domain.Manager
	if err := r.pool.QueryRow(ctx, query, id).Scan(&m.ID, &m.Name, &m.CustomMessage, &m.Roles, &m.Users); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *managerRepository) List(ctx context.Context) ([]domain.Manager, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, custom_message, roles, users FROM managers ORDER BY name`)
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
