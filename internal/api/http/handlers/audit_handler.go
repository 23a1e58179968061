package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/service"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// AuditHandler exposes audit trail readback.
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler constructs handler.
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{audit: audit}
}

// List handles GET /api/audit.
func (h *AuditHandler) List(c *fiber.Ctx) error {
	actor := mustPrincipal(c)

	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)
	if page < 1 || size < 1 {
		return apperrors.NewInvalidInput("page and size must be positive")
	}

	entries, total, err := h.audit.List(c.UserContext(), actor, page, size)
	if err != nil {
		return err
	}

	items := make([]dto.AuditEntryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, dto.NewAuditEntryResponse(&entries[i]))
	}
	return c.JSON(dto.AuditPage{
		Items: items,
		Page:  page,
		Size:  size,
		Total: total,
	})
}
