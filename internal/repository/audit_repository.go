package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// AuditRepository stores the append-only audit trail.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	List(ctx context.Context, page, size int) ([]domain.AuditEntry, int64, error)
}

type auditRepository struct {
	pool *pgxpool.Pool
}

// NewAuditRepository builds repository.
func NewAuditRepository(pool *pgxpool.Pool) AuditRepository {
	return &auditRepository{pool: pool}
}

func (r *auditRepository) Create(ctx context.Context, entry *domain.AuditEntry) error {
	const query = `
        INSERT INTO audit_log (actor_id, action, entity, entity_id, details)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, ts`

	return withTimeout(ctx, func(ctx context.Context) error {
		return r.pool.QueryRow(ctx, query,
			entry.ActorID,
			entry.Action,
			entry.Entity,
			entry.EntityID,
			entry.Details,
		).Scan(&entry.ID, &entry.TS)
	})
}

func (r *auditRepository) List(ctx context.Context, page, size int) ([]domain.AuditEntry, int64, error) {
	page, size = ClampPage(page, size)

	const countQuery = `SELECT COUNT(*) FROM audit_log`
	const listQuery = `
        SELECT id, ts, actor_id, action, entity, entity_id, details
        FROM audit_log ORDER BY id DESC LIMIT $1 OFFSET $2`

	var total int64
	var result []domain.AuditEntry
	err := withRetry(ctx, func(ctx context.Context) error {
		if err := r.pool.QueryRow(ctx, countQuery).Scan(&total); err != nil {
			return err
		}
		rows, err := r.pool.Query(ctx, listQuery, size, (page-1)*size)
		if err != nil {
			return err
		}
		defer rows.Close()

		result = result[:0]
		for rows.Next() {
			var entry domain.AuditEntry
			if err := rows.Scan(
				&entry.ID,
				&entry.TS,
				&entry.ActorID,
				&entry.Action,
				&entry.Entity,
				&entry.EntityID,
				&entry.Details,
			); err != nil {
				return err
			}
			result = append(result, entry)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, 0, err
	}
	return result, total, nil
}
