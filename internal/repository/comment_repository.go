package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// CommentRepository manages ticket comment threads.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_id, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`

	return withTimeout(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query,
			comment.TicketID,
			comment.AuthorID,
			comment.Content,
		).Scan(&comment.ID, &comment.CreatedAt)
	})
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, created_at
        FROM comments WHERE ticket_id=$1 ORDER BY created_at ASC`

	var result []domain.Comment
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query, ticketID)
		if err != nil {
			return err
		}
		defer rows.Close()

		result = result[:0]
		for rows.Next() {
			var comment domain.Comment
			if err := rows.Scan(
				&comment.ID,
				&comment.TicketID,
				&comment.AuthorID,
				&comment.Content,
				&comment.CreatedAt,
			); err != nil {
				return err
			}
			result = append(result, comment)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
