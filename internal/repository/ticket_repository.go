package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// ErrStaleWrite signals that a compare-and-swap update lost against a
// concurrent writer.
var ErrStaleWrite = errors.New("ticket modified concurrently")

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Status      *domain.TicketStatus
	Priority    *domain.TicketPriority
	RequesterID *int64
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter, page, size int) ([]domain.Ticket, int64, error)
	// Update persists ticket fields guarded by the previous updated_at.
	// Returns ErrStaleWrite when a concurrent writer won, pgx.ErrNoRows
	// when the ticket is gone.
	Update(ctx context.Context, ticket *domain.Ticket, prevUpdatedAt time.Time) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, user_id, assigned_to)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`

	return withTimeout(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.RequesterID,
			ticket.AssigneeID,
		).Scan(&ticket.ID, &ticket.CreatedAt, &ticket.UpdatedAt)
	})
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	const query = `
        SELECT id, title, description, status, priority, user_id, assigned_to, created_at, updated_at
        FROM tickets WHERE id=$1`

	var ticket domain.Ticket
	err := withRetry(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query, id).Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.RequesterID,
			&ticket.AssigneeID,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		)
	})
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket, prevUpdatedAt time.Time) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4, assigned_to=$5, updated_at=NOW()
        WHERE id=$6 AND updated_at=$7
        RETURNING updated_at`

	return withTimeout(ctx, func(ctx context.Context) error {
		err := r.pool.QueryRow(ctx, query,
			ticket.Title,
			ticket.Description,
			ticket.Status,
			ticket.Priority,
			ticket.AssigneeID,
			ticket.ID,
			prevUpdatedAt,
		).Scan(&ticket.UpdatedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			// Distinguish a lost race from a missing row.
			var exists bool
			if checkErr := r.pool.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID,
			).Scan(&exists); checkErr != nil {
				return checkErr
			}
			if exists {
				return ErrStaleWrite
			}
			return pgx.ErrNoRows
		}
		return err
	})
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter, page, size int) ([]domain.Ticket, int64, error) {
	page, size = ClampPage(page, size)

	clauses := []string{"1=1"}
	args := []any{}

	if filter.RequesterID != nil {
		args = append(args, *filter.RequesterID)
		clauses = append(clauses, fmt.Sprintf("user_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, *filter.Priority)
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}

	where := strings.Join(clauses, " AND ")
	countQuery := "SELECT COUNT(*) FROM tickets WHERE " + where
	listQuery := fmt.Sprintf(`
        SELECT id, title, description, status, priority, user_id, assigned_to, created_at, updated_at
        FROM tickets WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		where, size, (page-1)*size)

	var total int64
	var result []domain.Ticket
	err := withRetry(ctx, func(ctx context.Context) error {
		if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
			return err
		}
		rows, err := r.pool.Query(ctx, listQuery, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		result = result[:0]
		for rows.Next() {
			var ticket domain.Ticket
			if err := rows.Scan(
				&ticket.ID,
				&ticket.Title,
				&ticket.Description,
				&ticket.Status,
				&ticket.Priority,
				&ticket.RequesterID,
				&ticket.AssigneeID,
				&ticket.CreatedAt,
				&ticket.UpdatedAt,
			); err != nil {
				return err
			}
			result = append(result, ticket)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}
