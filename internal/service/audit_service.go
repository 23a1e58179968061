package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

const (
	auditAttempts = 3
	auditBackoff  = 100 * time.Millisecond
)

// AuditService is the append-only recorder for privileged actions. A
// mutation is not complete until its entry is durably recorded.
type AuditService struct {
	entries repository.AuditRepository
	logger  *zap.Logger
}

// NewAuditService builds the service.
func NewAuditService(entries repository.AuditRepository, logger *zap.Logger) *AuditService {
	return &AuditService{entries: entries, logger: logger}
}

// Record appends one entry, retrying with backoff on failure. The write
// outlives request cancellation: once the triggering mutation has
// committed, abandoning the entry would leave a silent gap. On
// exhaustion the gap is logged for out-of-band reconciliation and the
// caller sees a server error; the business mutation stays committed.
func (s *AuditService) Record(ctx context.Context, actorID int64, action domain.AuditAction, entity string, entityID int64, details string) error {
	entry := &domain.AuditEntry{
		ActorID:  actorID,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		Details:  details,
	}

	writeCtx := context.WithoutCancel(ctx)
	var err error
	backoff := auditBackoff
	for attempt := 1; attempt <= auditAttempts; attempt++ {
		if err = s.entries.Create(writeCtx, entry); err == nil {
			return nil
		}
		if attempt < auditAttempts {
			time.Sleep(backoff)
			backoff *= 2
		}
	}

	s.logger.Error("audit write failed; business mutation committed without entry",
		zap.Int64("actor_id", actorID),
		zap.String("action", string(action)),
		zap.String("entity", entity),
		zap.Int64("entity_id", entityID),
		zap.Error(err),
	)
	return apperrors.NewInternalError(err)
}

// List returns the audit trail, most recent first. Admin only.
func (s *AuditService) List(ctx context.Context, actor *domain.User, page, size int) ([]domain.AuditEntry, int64, error) {
	if !auth.Decide(actor.Role, auth.ActionAuditRead, 0, actor.ID) {
		return nil, 0, apperrors.NewForbidden("audit access requires admin role")
	}
	return s.entries.List(ctx, page, size)
}
