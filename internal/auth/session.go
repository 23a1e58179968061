package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/opsdesk/helpdesk/pkg/util/errorutil"
)

const sessionKeyPrefix = "session:"

// SessionManager issues and resolves opaque session tokens backed by
// Redis. Tokens carry no claims; the key maps straight to a user id and
// expires at the absolute lifetime set at login.
type SessionManager struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionManager builds a manager over the given Redis client.
func NewSessionManager(client *redis.Client, ttl time.Duration) *SessionManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionManager{client: client, ttl: ttl}
}

// Issue creates a fresh session bound to the user id. Each call yields
// an independent token; concurrent sessions per user are permitted.
func (m *SessionManager) Issue(ctx context.Context, userID int64) (string, time.Time, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}
	expiresAt := time.Now().Add(m.ttl)
	if err := m.client.Set(ctx, sessionKeyPrefix+token, strconv.FormatInt(userID, 10), m.ttl).Err(); err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Resolve returns the user id bound to the token.
func (m *SessionManager) Resolve(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, apperrors.NewUnauthenticated("missing session")
	}
	val, err := m.client.Get(ctx, sessionKeyPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return 0, apperrors.NewUnauthenticated("session expired or invalid")
	}
	if err != nil {
		return 0, err
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, apperrors.NewUnauthenticated("session expired or invalid")
	}
	return userID, nil
}

// Destroy invalidates the token. Destroying an unknown token is not an
// error.
func (m *SessionManager) Destroy(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return m.client.Del(ctx, sessionKeyPrefix+token).Err()
}

// newSessionToken returns 256 bits of hex-encoded randomness.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
