package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/service"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// TicketsHandler exposes the ticket lifecycle endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// List handles GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	actor := mustPrincipal(c)

	input := service.TicketListInput{
		Page: c.QueryInt("page", 1),
		Size: c.QueryInt("size", 20),
	}
	if input.Page < 1 || input.Size < 1 {
		return apperrors.NewInvalidInput("page and size must be positive")
	}
	if raw := c.Query("status"); raw != "" {
		status := domain.TicketStatus(raw)
		if !domain.ValidStatus(status) {
			return apperrors.NewInvalidInput("unknown status")
		}
		input.Status = &status
	}
	if raw := c.Query("priority"); raw != "" {
		priority := domain.TicketPriority(raw)
		if !domain.ValidPriority(priority) {
			return apperrors.NewInvalidInput("unknown priority")
		}
		input.Priority = &priority
	}

	tickets, total, err := h.tickets.List(c.UserContext(), actor, input)
	if err != nil {
		return err
	}

	now := time.Now()
	items := make([]dto.TicketResponse, 0, len(tickets))
	for i := range tickets {
		items = append(items, dto.NewTicketResponse(&tickets[i], now))
	}
	return c.JSON(dto.TicketPage{
		Items: items,
		Page:  input.Page,
		Size:  input.Size,
		Total: total,
	})
}

// Create handles POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	actor := mustPrincipal(c)

	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	ticket, err := h.tickets.Create(c.UserContext(), actor, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewTicketResponse(ticket, time.Now()))
}

// Get handles GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.Get(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket, time.Now()))
}

// Update handles PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	ticket, err := h.tickets.UpdateFields(c.UserContext(), actor, id, service.TicketUpdateInput{
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket, time.Now()))
}

// Assign handles PUT /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}
	if req.UserID == 0 {
		return apperrors.NewInvalidInput("user_id required")
	}

	ticket, err := h.tickets.Assign(c.UserContext(), actor, id, req.UserID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket, time.Now()))
}

// Close handles PUT /api/tickets/:id/close.
func (h *TicketsHandler) Close(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ticket, err := h.tickets.Close(c.UserContext(), actor, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewTicketResponse(ticket, time.Now()))
}

// mustPrincipal returns the authenticated user; routes using it always
// sit behind the auth middleware.
func mustPrincipal(c *fiber.Ctx) *domain.User {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		panic("handler reached without authenticated principal")
	}
	return principal.User
}

func parseID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, apperrors.NewInvalidInput("invalid id")
	}
	return id, nil
}
