package domain

import "time"

// AuditAction enumerates recorded privileged actions.
type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionAssign  AuditAction = "assign"
	AuditActionClose   AuditAction = "close"
	AuditActionSetRole AuditAction = "set_role"
	AuditActionAttach  AuditAction = "attach"
)

// AuditEntry is an immutable record of a privileged action.
type AuditEntry struct {
	ID       int64
	TS       time.Time
	ActorID  int64
	Action   AuditAction
	Entity   string
	EntityID int64
	Details  string
}
