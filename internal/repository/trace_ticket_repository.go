package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/threaddesk/threaddesk/internal/domain"
)

// TraceTicketRepository encapsulates trace ticket persistence.
type TraceTicketRepository interface {
	Create(ctx context.Context, ticket *domain.TraceTicket) error
	GetByChannel(ctx context.Context, channelID int64) (*domain.TraceTicket, error)
	Update(ctx context.Context, ticket *domain.TraceTicket) error
}

type traceTicketRepository struct {
	pool *pgxpool.Pool
}

// NewTraceTicketRepository instantiates repository.
func NewTraceTicketRepository(pool *pgxpool.Pool) TraceTicketRepository {
	return &traceTicketRepository{pool: pool}
}

func (r *traceTicketRepository) Create(ctx context.Context, ticket *domain.TraceTicket) error {
	const query = `
        INSERT INTO trace_tickets (id, config_id, guild_id, channel_id, category_id, channel_name,
                                   created_by, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.ConfigID,
		ticket.GuildID,
		ticket.ChannelID,
		ticket.CategoryID,
		ticket.ChannelName,
		ticket.CreatedBy,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	)
	return err
}

func (r *traceTicketRepository) GetByChannel(ctx context.Context, channelID int64) (*domain.TraceTicket, error) {
	const query = `
        SELECT id, config_id, guild_id, channel_id, category_id, channel_name,
               vocal_channel_id, created_by, created_at, updated_at, closed_at, taken_at
        FROM trace_tickets WHERE channel_id=$1`
	var ticket domain.TraceTicket
	if err := r.pool.QueryRow(ctx, query, channelID).Scan(
		&ticket.ID,
		&ticket.ConfigID,
		&ticket.GuildID,
		&ticket.ChannelID,
		&ticket.CategoryID,
		&ticket.ChannelName,
		&ticket.VocalChannelID,
		&ticket.CreatedBy,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&ticket.ClosedAt,
		&ticket.TakenAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *traceTicketRepository) Update(ctx context.Context, ticket *domain.TraceTicket) error {
	const query = `
        UPDATE trace_tickets SET vocal_channel_id=$1, updated_at=$2, closed_at=$3, taken_at=$4
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.VocalChannelID,
		ticket.UpdatedAt,
		ticket.ClosedAt,
		ticket.TakenAt,
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
