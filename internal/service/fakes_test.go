package service

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
)

// In-memory fakes for the repository interfaces. Mutations bump
// UpdatedAt by a fixed step so compare-and-swap conflicts are
// reproducible.

type fakeUserRepo struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*domain.User), nextID: 1}
}

func (r *fakeUserRepo) add(username string, role domain.Role) *domain.User {
	user := &domain.User{
		ID:        r.nextID,
		Username:  username,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.users[user.ID] = user
	r.nextID++
	return user
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, existing := range r.users {
		if existing.Username == user.Username {
			return &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}
		}
	}
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	result := make([]domain.User, 0, len(r.users))
	for _, user := range r.users {
		result = append(result, *user)
	}
	return result, nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id int64, role domain.Role) error {
	user, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	user.Role = role
	return nil
}

type fakeTicketRepo struct {
	tickets map[int64]*domain.Ticket
	nextID  int64
	clock   time.Time
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[int64]*domain.Ticket),
		nextID:  1,
		clock:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *fakeTicketRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.nextID
	r.nextID++
	now := r.tick()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *ticket
	return &clone, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter, page, size int) ([]domain.Ticket, int64, error) {
	var all []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && ticket.Priority != *filter.Priority {
			continue
		}
		all = append(all, *ticket)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	page, size = repository.ClampPage(page, size)
	total := int64(len(all))
	offset := (page - 1) * size
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + size
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket, prevUpdatedAt time.Time) error {
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if !stored.UpdatedAt.Equal(prevUpdatedAt) {
		return repository.ErrStaleWrite
	}
	ticket.UpdatedAt = r.tick()
	clone := *ticket
	r.tickets[ticket.ID] = &clone
	return nil
}

type fakeAuditRepo struct {
	entries   []domain.AuditEntry
	failTimes int
}

func (r *fakeAuditRepo) Create(_ context.Context, entry *domain.AuditEntry) error {
	if r.failTimes > 0 {
		r.failTimes--
		return context.DeadlineExceeded
	}
	entry.ID = int64(len(r.entries) + 1)
	entry.TS = time.Now()
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, page, size int) ([]domain.AuditEntry, int64, error) {
	page, size = repository.ClampPage(page, size)
	newestFirst := make([]domain.AuditEntry, 0, len(r.entries))
	for i := len(r.entries) - 1; i >= 0; i-- {
		newestFirst = append(newestFirst, r.entries[i])
	}

	total := int64(len(newestFirst))
	offset := (page - 1) * size
	if offset >= len(newestFirst) {
		return nil, total, nil
	}
	end := offset + size
	if end > len(newestFirst) {
		end = len(newestFirst)
	}
	return newestFirst[offset:end], total, nil
}

func (r *fakeAuditRepo) byAction(action domain.AuditAction) []domain.AuditEntry {
	var result []domain.AuditEntry
	for _, entry := range r.entries {
		if entry.Action == action {
			result = append(result, entry)
		}
	}
	return result
}

type fakeResetRepo struct {
	users  *fakeUserRepo
	tokens map[string]*repository.PasswordResetToken
	nextID int64
	// failRedeems makes the next N Redeem calls fail after the token
	// check, mimicking a rolled-back transaction: the token stays live
	// and no hash is written.
	failRedeems int
}

func newFakeResetRepo(users *fakeUserRepo) *fakeResetRepo {
	return &fakeResetRepo{
		users:  users,
		tokens: make(map[string]*repository.PasswordResetToken),
		nextID: 1,
	}
}

func (r *fakeResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	token.ID = r.nextID
	r.nextID++
	token.CreatedAt = time.Now()
	clone := *token
	r.tokens[token.TokenID] = &clone
	return nil
}

func (r *fakeResetRepo) InvalidateForUser(_ context.Context, userID int64) error {
	now := time.Now()
	for _, token := range r.tokens {
		if token.UserID == userID && token.ConsumedAt == nil {
			consumed := now
			token.ConsumedAt = &consumed
		}
	}
	return nil
}

func (r *fakeResetRepo) Redeem(_ context.Context, tokenID, passwordHash string) (int64, error) {
	token, ok := r.tokens[tokenID]
	if !ok || token.ConsumedAt != nil || time.Now().After(token.ExpiresAt) {
		return 0, pgx.ErrNoRows
	}
	if r.failRedeems > 0 {
		r.failRedeems--
		return 0, context.DeadlineExceeded
	}
	user, ok := r.users.users[token.UserID]
	if !ok {
		return 0, pgx.ErrNoRows
	}
	now := time.Now()
	token.ConsumedAt = &now
	user.PasswordHash = passwordHash
	return token.UserID, nil
}

type fakeCommentRepo struct {
	comments []domain.Comment
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = int64(len(r.comments) + 1)
	comment.CreatedAt = time.Now()
	r.comments = append(r.comments, *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, comment := range r.comments {
		if comment.TicketID == ticketID {
			result = append(result, comment)
		}
	}
	return result, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
}

func (r *fakeAttachmentRepo) Create(_ context.Context, attachment *domain.Attachment) error {
	attachment.ID = int64(len(r.attachments) + 1)
	attachment.CreatedAt = time.Now()
	r.attachments = append(r.attachments, *attachment)
	return nil
}

func (r *fakeAttachmentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Attachment, error) {
	var result []domain.Attachment
	for _, attachment := range r.attachments {
		if attachment.TicketID == ticketID {
			result = append(result, attachment)
		}
	}
	return result, nil
}
