package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// TicketService enforces the ticket state machine, assignment rules,
// and SLA evaluation.
type TicketService struct {
	tickets repository.TicketRepository
	users   repository.UserRepository
	audit   *AuditService
}

// TicketDependencies bundles requirements for ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	UserRepo   repository.UserRepository
	Audit      *AuditService
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Priority    domain.TicketPriority
}

// TicketUpdateInput describes a partial field update.
type TicketUpdateInput struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
}

// TicketListInput describes listing filters.
type TicketListInput struct {
	Status   *domain.TicketStatus
	Priority *domain.TicketPriority
	Page     int
	Size     int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets: deps.TicketRepo,
		users:   deps.UserRepo,
		audit:   deps.Audit,
	}
}

// staffTransitions holds the legal state machine edges for staff.
// Plain users are further restricted in UpdateFields.
var staffTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusOpen, domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {domain.TicketStatusOpen, domain.TicketStatusInProgress},
}

func legalTransition(current, next domain.TicketStatus) bool {
	if current == next {
		return true
	}
	for _, candidate := range staffTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// Create opens a new ticket for the actor. Critical priority is not
// offered at creation; it is reachable only through a later update.
func (s *TicketService) Create(ctx context.Context, actor *domain.User, input TicketCreateInput) (*domain.Ticket, error) {
	if !auth.Decide(actor.Role, auth.ActionTicketCreate, actor.ID, actor.ID) {
		return nil, apperrors.NewForbidden("not allowed to create tickets")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityNormal
	}

	switch {
	case title == "":
		return nil, apperrors.NewInvalidInput("title required")
	case len(title) > domain.MaxTitleLen:
		return nil, apperrors.NewInvalidInput("title too long")
	case description == "":
		return nil, apperrors.NewInvalidInput("description required")
	case len(description) > domain.MaxDescriptionLen:
		return nil, apperrors.NewInvalidInput("description too long")
	case priority == domain.TicketPriorityCritical || !domain.ValidPriority(priority):
		return nil, apperrors.NewInvalidInput("priority must be Low, Normal or High")
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		RequesterID: actor.ID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, actor.ID, domain.AuditActionCreate, "ticket", ticket.ID, "title="+title); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Get fetches a ticket the actor is allowed to see.
func (s *TicketService) Get(ctx context.Context, actor *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !auth.Decide(actor.Role, auth.ActionTicketRead, ticket.RequesterID, actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return ticket, nil
}

// List returns a page of tickets with the total count. Plain users only
// ever see their own tickets.
func (s *TicketService) List(ctx context.Context, actor *domain.User, input TicketListInput) ([]domain.Ticket, int64, error) {
	filter := repository.TicketFilter{
		Status:   input.Status,
		Priority: input.Priority,
	}
	if !actor.Role.IsStaff() {
		requesterID := actor.ID
		filter.RequesterID = &requesterID
	}
	return s.tickets.List(ctx, filter, input.Page, input.Size)
}

// UpdateFields applies a partial status/priority update. Staff may make
// any legal transition on any ticket; a plain user may only move their
// own unassigned ticket between Open and In Progress.
func (s *TicketService) UpdateFields(ctx context.Context, actor *domain.User, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !auth.Decide(actor.Role, auth.ActionTicketUpdate, ticket.RequesterID, actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if input.Status == nil && input.Priority == nil {
		return nil, apperrors.NewInvalidInput("nothing to update")
	}

	var changed []string

	if input.Priority != nil {
		if !actor.Role.IsStaff() {
			return nil, apperrors.NewForbidden("only staff may change priority")
		}
		if !domain.ValidPriority(*input.Priority) {
			return nil, apperrors.NewInvalidInput("unknown priority")
		}
		if *input.Priority != ticket.Priority {
			ticket.Priority = *input.Priority
			changed = append(changed, "priority="+string(ticket.Priority))
		}
	}

	if input.Status != nil {
		next := *input.Status
		if !domain.ValidStatus(next) {
			return nil, apperrors.NewInvalidInput("unknown status")
		}
		if !legalTransition(ticket.Status, next) {
			return nil, apperrors.NewInvalidTransition(string(ticket.Status), string(next))
		}
		if !actor.Role.IsStaff() {
			// Users may shuffle their own unassigned ticket between
			// Open and In Progress; Closed is staff territory on both
			// ends of the transition.
			if ticket.Status == domain.TicketStatusClosed || next == domain.TicketStatusClosed {
				return nil, apperrors.NewForbidden("only staff may close or reopen tickets")
			}
			if ticket.AssigneeID != nil {
				return nil, apperrors.NewForbidden("ticket is assigned; only staff may change its status")
			}
		}
		if next != ticket.Status {
			ticket.Status = next
			changed = append(changed, "status="+string(ticket.Status))
		}
	}

	if len(changed) == 0 {
		return ticket, nil
	}

	prev := ticket.UpdatedAt
	if err := s.tickets.Update(ctx, ticket, prev); err != nil {
		return nil, mapTicketErr(err)
	}
	if err := s.audit.Record(ctx, actor.ID, domain.AuditActionUpdate, "ticket", ticket.ID, strings.Join(changed, " ")); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Assign sets the ticket's assignee. Staff only; the assignee must hold
// a tech or admin role.
func (s *TicketService) Assign(ctx context.Context, actor *domain.User, id, assigneeID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !auth.Decide(actor.Role, auth.ActionTicketAssign, ticket.RequesterID, actor.ID) {
		return nil, apperrors.NewForbidden("only staff may assign tickets")
	}

	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewInvalidAssignee("assignee does not exist")
		}
		return nil, err
	}
	if !assignee.Role.IsStaff() {
		return nil, apperrors.NewInvalidAssignee("assignee must be tech or admin")
	}

	prev := ticket.UpdatedAt
	ticket.AssigneeID = &assignee.ID
	if err := s.tickets.Update(ctx, ticket, prev); err != nil {
		return nil, mapTicketErr(err)
	}
	if err := s.audit.Record(ctx, actor.ID, domain.AuditActionAssign, "ticket", ticket.ID, fmt.Sprintf("to=%d", assignee.ID)); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Close moves the ticket to Closed. Closing an already-closed ticket is
// a no-op: the current state comes back unchanged and no second audit
// entry is written.
func (s *TicketService) Close(ctx context.Context, actor *domain.User, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, mapTicketErr(err)
	}
	if !auth.Decide(actor.Role, auth.ActionTicketClose, ticket.RequesterID, actor.ID) {
		return nil, apperrors.NewForbidden("only staff may close tickets")
	}
	if ticket.Status == domain.TicketStatusClosed {
		return ticket, nil
	}

	prev := ticket.UpdatedAt
	ticket.Status = domain.TicketStatusClosed
	if err := s.tickets.Update(ctx, ticket, prev); err != nil {
		return nil, mapTicketErr(err)
	}
	if err := s.audit.Record(ctx, actor.ID, domain.AuditActionClose, "ticket", ticket.ID, ""); err != nil {
		return nil, err
	}
	return ticket, nil
}

func mapTicketErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound("ticket")
	case errors.Is(err, repository.ErrStaleWrite):
		return apperrors.NewConflict("ticket was modified concurrently; retry")
	default:
		return err
	}
}
