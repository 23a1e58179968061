package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetTokenRoundtrip(t *testing.T) {
	mgr := NewResetTokenManager("secret", 30*time.Minute)

	token, tokenID, expiresAt, err := mgr.Issue(42)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, tokenID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), expiresAt, 5*time.Second)

	gotID, userID, err := mgr.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, tokenID, gotID)
	assert.EqualValues(t, 42, userID)
}

func TestResetTokenUniquePerIssue(t *testing.T) {
	mgr := NewResetTokenManager("secret", time.Minute)

	_, firstID, _, err := mgr.Issue(1)
	require.NoError(t, err)
	_, secondID, _, err := mgr.Issue(1)
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)
}

func TestResetTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewResetTokenManager("secret-a", time.Minute)
	verifier := NewResetTokenManager("secret-b", time.Minute)

	token, _, _, err := issuer.Issue(7)
	require.NoError(t, err)

	_, _, err = verifier.Verify(token)
	assert.Error(t, err)
}

func TestResetTokenRejectsExpired(t *testing.T) {
	mgr := NewResetTokenManager("secret", time.Minute)
	mgr.ttl = -time.Minute

	token, _, _, err := mgr.Issue(7)
	require.NoError(t, err)

	_, _, err = mgr.Verify(token)
	assert.Error(t, err)
}

func TestResetTokenRejectsGarbage(t *testing.T) {
	mgr := NewResetTokenManager("secret", time.Minute)

	_, _, err := mgr.Verify("definitely.not.jwt")
	assert.Error(t, err)
	_, _, err = mgr.Verify("")
	assert.Error(t, err)
}
