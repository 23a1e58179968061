package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/config"
	"github.com/opsdesk/helpdesk/internal/service"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// AuthHandler exposes registration, session, and password reset endpoints.
type AuthHandler struct {
	auth       *service.AuthService
	cookieName string
	devMode    bool
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		auth:       authService,
		cookieName: cfg.Session.CookieName,
		devMode:    cfg.App.IsDevelopment(),
	}
}

// Register handles POST /api/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	if _, err := h.auth.Register(c.UserContext(), req.Username, req.Password); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"ok": true})
}

// Login handles POST /api/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	user, token, expiresAt, err := h.auth.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(user)})
}

// Logout handles POST /api/logout. Idempotent: logging out twice is fine.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if token := c.Cookies(h.cookieName); token != "" {
		if err := h.auth.Logout(c.UserContext(), token); err != nil {
			return err
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
	})
	return c.JSON(fiber.Map{"ok": true})
}

// Me handles GET /api/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return c.JSON(fiber.Map{"user": dto.NewUserResponse(principal.User)})
}

// RequestReset handles POST /api/password/request. The response shape
// is identical whether or not the username exists; dev builds echo the
// token so the flow can be exercised without a mailer.
func (h *AuthHandler) RequestReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}
	if req.Username == "" {
		return apperrors.NewInvalidInput("username required")
	}

	token, err := h.auth.RequestReset(c.UserContext(), req.Username)
	if err != nil {
		return err
	}

	resp := fiber.Map{"ok": true}
	if h.devMode && token != "" {
		resp["token"] = token
	}
	return c.JSON(resp)
}

// ConfirmReset handles POST /api/password/reset.
func (h *AuthHandler) ConfirmReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirm
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	if err := h.auth.RedeemReset(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"ok": true})
}
