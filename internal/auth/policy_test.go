package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opsdesk/helpdesk/internal/domain"
)

func TestDecide(t *testing.T) {
	const owner, actor, stranger = int64(1), int64(1), int64(2)

	cases := []struct {
		name    string
		role    domain.Role
		action  Action
		ownerID int64
		actorID int64
		want    bool
	}{
		{"admin can change roles", domain.RoleAdmin, ActionRoleChange, 0, actor, true},
		{"admin can read audit", domain.RoleAdmin, ActionAuditRead, 0, actor, true},
		{"admin can touch foreign tickets", domain.RoleAdmin, ActionTicketUpdate, owner, stranger, true},

		{"tech can assign", domain.RoleTech, ActionTicketAssign, owner, stranger, true},
		{"tech can close", domain.RoleTech, ActionTicketClose, owner, stranger, true},
		{"tech can read any ticket", domain.RoleTech, ActionTicketRead, owner, stranger, true},
		{"tech cannot change roles", domain.RoleTech, ActionRoleChange, 0, actor, false},
		{"tech cannot read audit", domain.RoleTech, ActionAuditRead, 0, actor, false},

		{"user can create", domain.RoleUser, ActionTicketCreate, 0, actor, true},
		{"user can read own ticket", domain.RoleUser, ActionTicketRead, owner, actor, true},
		{"user can comment on own ticket", domain.RoleUser, ActionComment, owner, actor, true},
		{"user can attach to own ticket", domain.RoleUser, ActionAttach, owner, actor, true},
		{"user cannot read foreign ticket", domain.RoleUser, ActionTicketRead, owner, stranger, false},
		{"user cannot assign own ticket", domain.RoleUser, ActionTicketAssign, owner, actor, false},
		{"user cannot close own ticket", domain.RoleUser, ActionTicketClose, owner, actor, false},
		{"user cannot list users", domain.RoleUser, ActionUserList, 0, actor, false},
		{"user cannot read audit", domain.RoleUser, ActionAuditRead, 0, actor, false},

		{"unknown role denied everything", domain.Role("ghost"), ActionTicketRead, owner, actor, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.role, tc.action, tc.ownerID, tc.actorID))
		})
	}
}
