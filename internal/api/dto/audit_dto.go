package dto

import (
	"time"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// SetRoleRequest payload.
type SetRoleRequest struct {
	Role domain.Role `json:"role"`
}

// AuditEntryResponse represents one audit trail row.
type AuditEntryResponse struct {
	ID       int64              `json:"id"`
	TS       time.Time          `json:"ts"`
	ActorID  int64              `json:"actor_id"`
	Action   domain.AuditAction `json:"action"`
	Entity   string             `json:"entity"`
	EntityID int64              `json:"entity_id"`
	Details  string             `json:"details"`
}

// NewAuditEntryResponse maps a domain audit entry.
func NewAuditEntryResponse(entry *domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:       entry.ID,
		TS:       entry.TS,
		ActorID:  entry.ActorID,
		Action:   entry.Action,
		Entity:   entry.Entity,
		EntityID: entry.EntityID,
		Details:  entry.Details,
	}
}

// AuditPage is the paginated audit listing envelope.
type AuditPage struct {
	Items []AuditEntryResponse `json:"items"`
	Page  int                  `json:"page"`
	Size  int                  `json:"size"`
	Total int64                `json:"total"`
}
