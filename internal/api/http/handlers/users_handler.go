package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/service"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// UsersHandler exposes the user directory and role administration.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List handles GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	actor := mustPrincipal(c)

	users, err := h.users.List(c.UserContext(), actor)
	if err != nil {
		return err
	}

	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(items)
}

// SetRole handles PUT /api/users/:id/role.
func (h *UsersHandler) SetRole(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.SetRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	user, err := h.users.ChangeRole(c.UserContext(), actor, id, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true, "user": dto.NewUserResponse(user)})
}
