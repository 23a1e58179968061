package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/opsdesk/helpdesk/internal/api/dto"
	"github.com/opsdesk/helpdesk/internal/service"
	"github.com/opsdesk/helpdesk/internal/storage"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

// ThreadHandler exposes comment and attachment endpoints.
type ThreadHandler struct {
	thread *service.ThreadService
	blobs  *storage.BlobStore
}

// NewThreadHandler constructs handler.
func NewThreadHandler(thread *service.ThreadService, blobs *storage.BlobStore) *ThreadHandler {
	return &ThreadHandler{thread: thread, blobs: blobs}
}

// ListComments handles GET /api/tickets/:id/comments.
func (h *ThreadHandler) ListComments(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	comments, err := h.thread.ListComments(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, dto.NewCommentResponse(&comments[i]))
	}
	return c.JSON(items)
}

// AddComment handles POST /api/tickets/:id/comments.
func (h *ThreadHandler) AddComment(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload")
	}

	comment, err := h.thread.AddComment(c.UserContext(), actor, id, req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCommentResponse(comment))
}

// ListAttachments handles GET /api/tickets/:id/attachments.
func (h *ThreadHandler) ListAttachments(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	attachments, err := h.thread.ListAttachments(c.UserContext(), actor, id)
	if err != nil {
		return err
	}

	items := make([]dto.AttachmentResponse, 0, len(attachments))
	for i := range attachments {
		items = append(items, dto.NewAttachmentResponse(&attachments[i]))
	}
	return c.JSON(items)
}

// AddAttachment handles POST /api/tickets/:id/attachments (multipart).
func (h *ThreadHandler) AddAttachment(c *fiber.Ctx) error {
	actor := mustPrincipal(c)
	id, err := parseID(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewInvalidInput("multipart field 'file' required")
	}
	if fileHeader.Filename == "" {
		return apperrors.NewInvalidInput("filename required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewInvalidInput("unreadable upload")
	}
	defer f.Close()

	attachment, err := h.thread.AddAttachment(c.UserContext(), actor, id, fileHeader.Filename, fileHeader.Size, f)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewAttachmentResponse(attachment))
}

// ServeUpload handles GET /uploads/:name for stored attachment bytes.
func (h *ThreadHandler) ServeUpload(c *fiber.Ctx) error {
	path, err := h.blobs.Resolve(c.Params("name"))
	if err != nil {
		return apperrors.NewNotFound("file")
	}
	return c.SendFile(path)
}
