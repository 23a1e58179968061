package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opsdesk/helpdesk/internal/auth"
	"github.com/opsdesk/helpdesk/internal/config"
	"github.com/opsdesk/helpdesk/internal/domain"
	"github.com/opsdesk/helpdesk/internal/repository"
	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

const uniqueViolation = "23505"

// AuthService coordinates registration, login, and password reset.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	sessions   *auth.SessionManager
	resetMgr   *auth.ResetTokenManager
	bcryptCost int
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Sessions          *auth.SessionManager
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		sessions:   deps.Sessions,
		resetMgr:   auth.NewResetTokenManager(cfg.Auth.ResetTokenSecret, cfg.Auth.ResetTTL()),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Register creates a new account with the user role. It does not log
// the account in.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperrors.NewInvalidInput("username and password required")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.NewConflict("username already taken")
		}
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues a session. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, "", time.Time{}, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthenticated("invalid credentials")
	}

	token, expiresAt, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return user, token, expiresAt, nil
}

// Logout invalidates the session token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.sessions.Destroy(ctx, token)
}

// RequestReset issues a single-use reset token for an existing
// username. For unknown usernames it returns an empty token and no
// error, so the response shape never reveals whether an account exists.
// Any prior unconsumed token for the user is invalidated.
func (s *AuthService) RequestReset(ctx context.Context, username string) (string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	if err := s.resets.InvalidateForUser(ctx, user.ID); err != nil {
		return "", err
	}

	token, tokenID, expiresAt, err := s.resetMgr.Issue(user.ID)
	if err != nil {
		return "", err
	}
	record := &repository.PasswordResetToken{
		TokenID:   tokenID,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
	}
	if err := s.resets.Create(ctx, record); err != nil {
		return "", err
	}
	return token, nil
}

// RedeemReset consumes a reset token and replaces the password hash in
// a single transaction. Consumption is exactly-once: of concurrent
// redeemers, a single caller wins; everyone else gets an invalid-token
// error. A failed redemption leaves both the token and the hash
// untouched, so the caller can retry with the same token.
func (s *AuthService) RedeemReset(ctx context.Context, tokenStr, newPassword string) error {
	if tokenStr == "" || newPassword == "" {
		return apperrors.NewInvalidInput("token and password required")
	}

	tokenID, _, err := s.resetMgr.Verify(tokenStr)
	if err != nil {
		return apperrors.NewInvalidToken()
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	if _, err := s.resets.Redeem(ctx, tokenID, hash); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewInvalidToken()
		}
		return err
	}
	return nil
}
