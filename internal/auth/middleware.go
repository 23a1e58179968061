package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User  *domain.User
	Token string
}

// Middleware resolves the session cookie and loads the principal.
type Middleware struct {
	sessions   *SessionManager
	users      repository.UserRepository
	cookieName string
}

// NewMiddleware constructs middleware.
func NewMiddleware(sessions *SessionManager, users repository.UserRepository, cookieName string) *Middleware {
	return &Middleware{sessions: sessions, users: users, cookieName: cookieName}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	token := c.Cookies(m.cookieName)
	if token == "" {
		return apperrors.NewUnauthenticated("authentication required")
	}

	userID, err := m.sessions.Resolve(c.UserContext(), token)
	if err != nil {
		return err
	}

	user, err := m.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("session expired or invalid")
		}
		return err
	}

	c.Locals(principalKey, &Principal{User: user, Token: token})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireStaff ensures the caller holds a tech or admin role.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if !principal.User.Role.IsStaff() {
			return apperrors.NewForbidden("staff role required")
		}
		return c.Next()
	}
}

// RequireAdmin ensures the caller is an admin.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("authentication required")
		}
		if principal.User.Role != domain.RoleAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}
