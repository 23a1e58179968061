package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	"github.com/opsdesk/helpdesk/internal/storage"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// ThreadService manages the comments and attachments hanging off a
// ticket.
type ThreadService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	blobs       *storage.BlobStore
	audit       *AuditService
}

// ThreadDependencies bundles requirements for thread service.
type ThreadDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	Blobs          *storage.BlobStore
	Audit          *AuditService
}

// NewThreadService constructs the service.
func NewThreadService(deps ThreadDependencies) *ThreadService {
	return &ThreadService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		blobs:       deps.Blobs,
		audit:       deps.Audit,
	}
}

// AddComment appends a comment to the ticket's thread.
func (s *ThreadService) AddComment(ctx context.Context, actor *domain.User, ticketID int64, content string) (*domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Decide(actor.Role, auth.ActionComment, ticket.RequesterID, actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewInvalidInput("comment content required")
	}

	comment := &domain.Comment{
		TicketID: ticket.ID,
		AuthorID: actor.ID,
		Content:  content,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns the thread in chronological order.
func (s *ThreadService) ListComments(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Decide(actor.Role, auth.ActionTicketRead, ticket.RequesterID, actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.comments.ListByTicket(ctx, ticket.ID)
}

// AddAttachment stores the blob and records its metadata. declaredSize
// is the client-advertised length; the store independently enforces the
// ceiling while streaming.
func (s *ThreadService) AddAttachment(ctx context.Context, actor *domain.User, ticketID int64, filename string, declaredSize int64, r io.Reader) (*domain.Attachment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Decide(actor.Role, auth.ActionAttach, ticket.RequesterID, actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if declaredSize > s.blobs.MaxBytes() {
		return nil, apperrors.NewPayloadTooLarge("attachment exceeds size limit")
	}

	stored, mimeType, size, err := s.blobs.Save(filename, r)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrTooLarge):
			return nil, apperrors.NewPayloadTooLarge("attachment exceeds size limit")
		case errors.Is(err, storage.ErrExtension):
			return nil, apperrors.NewInvalidInput("file type not allowed")
		default:
			return nil, err
		}
	}

	attachment := &domain.Attachment{
		TicketID:   ticket.ID,
		UploaderID: actor.ID,
		Filename:   strings.TrimSpace(filename),
		StoredPath: stored,
		MimeType:   mimeType,
		SizeBytes:  size,
	}
	if err := s.attachments.Create(ctx, attachment); err != nil {
		return nil, err
	}
	if err := s.audit.Record(ctx, actor.ID, domain.AuditActionAttach, "ticket", ticket.ID, attachment.Filename); err != nil {
		return nil, err
	}
	return attachment, nil
}

// ListAttachments returns attachment metadata in chronological order.
func (s *ThreadService) ListAttachments(ctx context.Context, actor *domain.User, ticketID int64) ([]domain.Attachment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !auth.Decide(actor.Role, auth.ActionTicketRead, ticket.RequesterID, actor.ID) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.attachments.ListByTicket(ctx, ticket.ID)
}

func (s *ThreadService) loadTicket(ctx context.Context, ticketID int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, err
	}
	return ticket, nil
}
