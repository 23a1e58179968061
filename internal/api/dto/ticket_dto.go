package dto

import (
	"time"

	"github.com/opsdesk/helpdesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority"`
}

// UpdateTicketRequest is a partial status/priority update.
type UpdateTicketRequest struct {
	Status   *domain.TicketStatus   `json:"status"`
	Priority *domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	UserID int64 `json:"user_id"`
}

// TicketResponse is the canonical post-mutation view of a ticket. SLA
// is derived from wall-clock time at render.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	UserID      int64                 `json:"user_id"`
	AssignedTo  *int64                `json:"assigned_to"`
	SLA         domain.SLAState       `json:"sla"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
}

// NewTicketResponse maps a domain ticket, computing its SLA state.
func NewTicketResponse(ticket *domain.Ticket, now time.Time) TicketResponse {
	return TicketResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		UserID:      ticket.RequesterID,
		AssignedTo:  ticket.AssigneeID,
		SLA:         ticket.SLA(now),
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
	}
}

// TicketPage is the standard paginated listing envelope.
type TicketPage struct {
	Items []TicketResponse `json:"items"`
	Page  int              `json:"page"`
	Size  int              `json:"size"`
	Total int64            `json:"total"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content string `json:"content"`
}

// CommentResponse represents a thread comment.
type CommentResponse struct {
	ID        int64     `json:"id"`
	TicketID  int64     `json:"ticket_id"`
	AuthorID  int64     `json:"author_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCommentResponse maps a domain comment.
func NewCommentResponse(comment *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        comment.ID,
		TicketID:  comment.TicketID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	UploaderID int64     `json:"uploader_id"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	MimeType   string    `json:"mime"`
	SizeBytes  int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewAttachmentResponse maps domain attachment metadata.
func NewAttachmentResponse(attachment *domain.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:         attachment.ID,
		TicketID:   attachment.TicketID,
		UploaderID: attachment.UploaderID,
		Filename:   attachment.Filename,
		Path:       attachment.StoredPath,
		MimeType:   attachment.MimeType,
		SizeBytes:  attachment.SizeBytes,
		CreatedAt:  attachment.CreatedAt,
	}
}
