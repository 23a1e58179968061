package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ResetTokenManager signs and verifies password reset tokens. The wire
// token is a short-lived HS256 JWT; single-use consumption is enforced
// separately against the stored token id, so a structurally valid token
// alone is never sufficient to reset a password.
type ResetTokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewResetTokenManager builds a new manager.
func NewResetTokenManager(secret string, ttl time.Duration) *ResetTokenManager {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ResetTokenManager{secret: []byte(secret), ttl: ttl}
}

// ResetClaims is the payload of a reset token.
type ResetClaims struct {
	jwt.RegisteredClaims
}

// Issue signs a reset token for the user and returns the token string,
// its unique id for storage, and the expiry.
func (m *ResetTokenManager) Issue(userID int64) (token, tokenID string, expiresAt time.Time, err error) {
	tokenID = uuid.NewString()
	expiresAt = time.Now().Add(m.ttl)
	claims := &ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return token, tokenID, expiresAt, nil
}

// Verify validates signature and expiry, returning the token id and the
// bound user id.
func (m *ResetTokenManager) Verify(tokenStr string) (tokenID string, userID int64, err error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &ResetClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil {
		return "", 0, err
	}
	claims, ok := parsed.Claims.(*ResetClaims)
	if !ok || !parsed.Valid || claims.ID == "" {
		return "", 0, errors.New("invalid token claims")
	}
	userID, err = strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return "", 0, errors.New("invalid token subject")
	}
	return claims.ID, userID, nil
}
