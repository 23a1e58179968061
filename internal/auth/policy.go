package auth

import "github.com/opsdesk/helpdesk/internal/domain"

// Action enumerates operations gated by the authorization policy.
type Action string

const (
	ActionTicketCreate Action = "ticket.create"
	ActionTicketRead   Action = "ticket.read"
	ActionTicketUpdate Action = "ticket.update"
	ActionTicketAssign Action = "ticket.assign"
	ActionTicketClose  Action = "ticket.close"
	ActionComment      Action = "ticket.comment"
	ActionAttach       Action = "ticket.attach"
	ActionUserList     Action = "user.list"
	ActionRoleChange   Action = "user.role_change"
	ActionAuditRead    Action = "audit.read"
)

// Decide is the single authorization predicate. ownerID is the id of
// the user owning the target resource (the ticket requester); it is
// ignored for actions that have no owner. Decide is pure: state-based
// rules such as legal status transitions live in the workflow layer.
func Decide(role domain.Role, action Action, ownerID, actorID int64) bool {
	switch role {
	case domain.RoleAdmin:
		return true
	case domain.RoleTech:
		switch action {
		case ActionRoleChange, ActionAuditRead:
			return false
		default:
			return true
		}
	case domain.RoleUser:
		switch action {
		case ActionTicketCreate:
			return true
		case ActionTicketRead, ActionTicketUpdate, ActionComment, ActionAttach:
			return ownerID == actorID
		default:
			return false
		}
	}
	return false
}
