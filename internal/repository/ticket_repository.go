package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threaddesk/threaddesk/internal/domain"
)

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	// CreateWithName reserves a ticket identifier, derives the final display
	// name from it via nameFor, and commits both in one transaction.
	CreateWithName(ctx context.Context, ticket *domain.Ticket, nameFor func(id int64) string) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	GetByThread(ctx context.Context, threadID int64) (*domain.Ticket, error)
	Update(ctx context.Context, ticket *domain.Ticket) error
	// SaveParticipation persists the ticket mutation and, when participant is
	// non-nil, the new participant record atomically.
	SaveParticipation(ctx context.Context, ticket *domain.Ticket, participant *domain.TicketParticipant) error
	ListOpen(ctx context.Context) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) CreateWithName(ctx context.Context, ticket *domain.Ticket, nameFor func(id int64) string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insert = `
        INSERT INTO tickets (forum_id, guild_id, thread_id, name, status, created_by,
                             created_at, updated_at, reopened_times, tags)
        VALUES ($1,$2,$3,'',$4,$5,$6,$7,$8,$9)
        RETURNING id`
	if err := tx.QueryRow(ctx, insert,
		ticket.ForumID,
		ticket.GuildID,
		ticket.ThreadID,
		ticket.Status,
		ticket.CreatedBy,
		ticket.CreatedAt,
		ticket.UpdatedAt,
		ticket.ReopenedTimes,
		ticket.Tags,
	).Scan(&ticket.ID); err != nil {
		return err
	}

	ticket.Name = nameFor(ticket.ID)
	if _, err := tx.Exec(ctx, `UPDATE tickets SET name=$1 WHERE id=$2`, ticket.Name, ticket.ID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const ticketColumns = `
        id, forum_id, guild_id, thread_id, name, status, created_by,
        created_at, taken_at, updated_at, closed_at, reopened_times,
        webhook_message_id, tags`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id)
}

func (r *ticketRepository) GetByThread(ctx context.Context, threadID int64) (*domain.Ticket, error) {
	return r.fetchSingle(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE thread_id=$1`, threadID)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := scanTicket(r.pool.QueryRow(ctx, query, arg), &ticket); err != nil {
		return nil, err
	}
	participants, err := r.listParticipants(ctx, ticket.ID)
	if err != nil {
		return nil, err
	}
	ticket.Participants = participants
	return &ticket, nil
}

func (r *ticketRepository) listParticipants(ctx context.Context, ticketID int64) ([]domain.TicketParticipant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, ticket_id, user_id, taken_at FROM ticket_participants WHERE ticket_id=$1 ORDER BY taken_at`,
		ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketParticipant
	for rows.Next() {
		var p domain.TicketParticipant
		if err := rows.Scan(&p.ID, &p.TicketID, &p.UserID, &p.TakenAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

const ticketUpdate = `
        UPDATE tickets SET name=$1, status=$2, taken_at=$3, updated_at=$4, closed_at=$5,
            reopened_times=$6, webhook_message_id=$7, tags=$8
        WHERE id=$9`

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	cmd, err := r.pool.Exec(ctx, ticketUpdate,
		ticket.Name,
		ticket.Status,
		ticket.TakenAt,
		ticket.UpdatedAt,
		ticket.ClosedAt,
		ticket.ReopenedTimes,
		ticket.WebhookMessageID,
		ticket.Tags,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) SaveParticipation(ctx context.Context, ticket *domain.Ticket, participant *domain.TicketParticipant) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, ticketUpdate,
		ticket.Name,
		ticket.Status,
		ticket.TakenAt,
		ticket.UpdatedAt,
		ticket.ClosedAt,
		ticket.ReopenedTimes,
		ticket.WebhookMessageID,
		ticket.Tags,
		ticket.ID,
	); err != nil {
		return err
	}
	if participant != nil {
		const insert = `
            INSERT INTO ticket_participants (id, ticket_id, user_id, taken_at)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (ticket_id, user_id) DO NOTHING`
		if _, err := tx.Exec(ctx, insert, participant.ID, participant.TicketID, participant.UserID, participant.TakenAt); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ticketRepository) ListOpen(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE status=$1 ORDER BY created_at`,
		domain.TicketStatusOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	return row.Scan(
		&ticket.ID,
		&ticket.ForumID,
		&ticket.GuildID,
		&ticket.ThreadID,
		&ticket.Name,
		&ticket.Status,
		&ticket.CreatedBy,
		&ticket.CreatedAt,
		&ticket.TakenAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
		&ticket.ReopenedTimes,
		&ticket.WebhookMessageID,
		&ticket.Tags,
	)
}
