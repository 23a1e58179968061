package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/storage"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

type threadFixture struct {
	svc         *ThreadService
	tickets     *fakeTicketRepo
	users       *fakeUserRepo
	comments    *fakeCommentRepo
	attachments *fakeAttachmentRepo
	audit       *fakeAuditRepo
}

func newThreadFixture(t *testing.T, maxBytes int64) *threadFixture {
	t.Helper()
	blobs, err := storage.NewBlobStore(t.TempDir(), maxBytes)
	require.NoError(t, err)

	tickets := newFakeTicketRepo()
	users := newFakeUserRepo()
	comments := &fakeCommentRepo{}
	attachments := &fakeAttachmentRepo{}
	audit := &fakeAuditRepo{}
	svc := NewThreadService(ThreadDependencies{
		TicketRepo:     tickets,
		CommentRepo:    comments,
		AttachmentRepo: attachments,
		Blobs:          blobs,
		Audit:          NewAuditService(audit, zap.NewNop()),
	})
	return &threadFixture{
		svc:         svc,
		tickets:     tickets,
		users:       users,
		comments:    comments,
		attachments: attachments,
		audit:       audit,
	}
}

func (f *threadFixture) seedTicket(t *testing.T, requester *domain.User) *domain.Ticket {
	t.Helper()
	ticket := &domain.Ticket{
		Title:       "broken keyboard",
		Description: "keys stopped responding",
		Status:      domain.TicketStatusOpen,
		Priority:    domain.TicketPriorityNormal,
		RequesterID: requester.ID,
	}
	require.NoError(t, f.tickets.Create(context.Background(), ticket))
	return ticket
}

func TestAddCommentTrimsAndStores(t *testing.T) {
	f := newThreadFixture(t, 1<<20)
	alice := f.users.add("alice", domain.RoleUser)
	ticket := f.seedTicket(t, alice)

	comment, err := f.svc.AddComment(context.Background(), alice, ticket.ID, "  tried turning it off and on  ")
	require.NoError(t, err)
	assert.Equal(t, "tried turning it off and on", comment.Content)
	assert.Equal(t, alice.ID, comment.AuthorID)

	listed, err := f.svc.ListComments(context.Background(), alice, ticket.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}

func TestAddCommentRejectsBlank(t *testing.T) {
	f := newThreadFixture(t, 1<<20)
	alice := f.users.add("alice", domain.RoleUser)
	ticket := f.seedTicket(t, alice)

	_, err := f.svc.AddComment(context.Background(), alice, ticket.ID, "   \n\t ")
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))
	assert.Empty(t, f.comments.comments)
}

func TestCommentForbiddenOnForeignTicket(t *testing.T) {
	f := newThreadFixture(t, 1<<20)
	alice := f.users.add("alice", domain.RoleUser)
	mallory := f.users.add("mallory", domain.RoleUser)
	ticket := f.seedTicket(t, alice)

	_, err := f.svc.AddComment(context.Background(), mallory, ticket.ID, "mine now")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, err = f.svc.ListComments(context.Background(), mallory, ticket.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAddAttachmentStoresBlobAndAudits(t *testing.T) {
	f := newThreadFixture(t, 1<<20)
	alice := f.users.add("alice", domain.RoleUser)
	ticket := f.seedTicket(t, alice)

	body := "panic: runtime error"
	att, err := f.svc.AddAttachment(context.Background(), alice, ticket.ID,
		"crash.log", int64(len(body)), strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "crash.log", att.Filename)
	assert.EqualValues(t, len(body), att.SizeBytes)
	assert.NotEqual(t, "crash.log", att.StoredPath)
	assert.True(t, strings.HasSuffix(att.StoredPath, "_crash.log"))

	entries := f.audit.byAction(domain.AuditActionAttach)
	require.Len(t, entries, 1)
	assert.Equal(t, "crash.log", entries[0].Details)
}

func TestAddAttachmentRejectsDeclaredOversize(t *testing.T) {
	f := newThreadFixture(t, 16)
	alice := f.users.add("alice", domain.RoleUser)
	ticket := f.seedTicket(t, alice)

	_, err := f.svc.AddAttachment(context.Background(), alice, ticket.ID,
		"big.log", 1024, strings.NewReader("small body"))
	assert.True(t, apperrors.IsCode(err, "PAYLOAD_TOO_LARGE"))
	assert.Empty(t, f.attachments.attachments)
}

func TestAddAttachmentRejectsActualOversize(t *testing.T) {
	f := newThreadFixture(t, 16)
	alice := f.users.add("alice", domain.RoleUser)
	ticket := f.seedTicket(t, alice)

	// Declared size lies; the store catches the overflow while copying.
	_, err := f.svc.AddAttachment(context.Background(), alice, ticket.ID,
		"big.log", 10, strings.NewReader(strings.Repeat("x", 64)))
	assert.True(t, apperrors.IsCode(err, "PAYLOAD_TOO_LARGE"))
}

func TestAddAttachmentRejectsDisallowedExtension(t *testing.T) {
	f := newThreadFixture(t, 1<<20)
	alice := f.users.add("alice", domain.RoleUser)
	ticket := f.seedTicket(t, alice)

	_, err := f.svc.AddAttachment(context.Background(), alice, ticket.ID,
		"payload.exe", 4, strings.NewReader("MZ.."))
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))
	assert.Empty(t, f.audit.entries)
}

func TestStaffCanCommentOnAnyTicket(t *testing.T) {
	f := newThreadFixture(t, 1<<20)
	alice := f.users.add("alice", domain.RoleUser)
	bob := f.users.add("bob", domain.RoleTech)
	ticket := f.seedTicket(t, alice)

	_, err := f.svc.AddComment(context.Background(), bob, ticket.ID, "looking into it")
	require.NoError(t, err)

	listed, err := f.svc.ListComments(context.Background(), alice, ticket.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, bob.ID, listed[0].AuthorID)
}

func TestThreadOperationsOnMissingTicket(t *testing.T) {
	f := newThreadFixture(t, 1<<20)
	alice := f.users.add("alice", domain.RoleUser)

	_, err := f.svc.AddComment(context.Background(), alice, 42, "hello")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))

	_, err = f.svc.ListAttachments(context.Background(), alice, 42)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
