package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO attachments (ticket_id, uploader_id, filename, stored_path, mime_type, size_bytes)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at`

	return withTimeout(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query,
			attachment.TicketID,
			attachment.UploaderID,
			attachment.Filename,
			attachment.StoredPath,
			attachment.MimeType,
			attachment.SizeBytes,
		).Scan(&attachment.ID, &attachment.CreatedAt)
	})
}

func (r *attachmentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Attachment, error) {
	const query = `
        SELECT id, ticket_id, uploader_id, filename, stored_path, mime_type, size_bytes, created_at
        FROM attachments WHERE ticket_id=$1 ORDER BY created_at ASC`

	var result []domain.Attachment
	err := withRetry(ctx, func(ctx context.Context) error {
		rows, err := r.pool.Query(ctx, query, ticketID)
		if err != nil {
			return err
		}
		defer rows.Close()

		result = result[:0]
		for rows.Next() {
			var attachment domain.Attachment
			if err := rows.Scan(
				&attachment.ID,
				&attachment.TicketID,
				&attachment.UploaderID,
				&attachment.Filename,
				&attachment.StoredPath,
				&attachment.MimeType,
				&attachment.SizeBytes,
				&attachment.CreatedAt,
			); err != nil {
				return err
			}
			result = append(result, attachment)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
