package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", 24)
	sessionID, userID := uuid.New(), uuid.New()

	raw, err := svc.Generate(sessionID, userID)
	require.NoError(t, err)

	claims, err := svc.Validate(raw)
	require.NoError(t, err)
	require.Equal(t, sessionID, claims.SessionID)
	require.Equal(t, userID, claims.UserID)
}

func TestTokenLifetime(t *testing.T) {
	svc := NewTokenService("secret", 168)
	require.Equal(t, 168*time.Hour, svc.Lifetime())
}

func TestTokenValidateRejectsTampering(t *testing.T) {
	svc := NewTokenService("secret", 24)
	raw, err := svc.Generate(uuid.New(), uuid.New())
	require.NoError(t, err)

	_, err = svc.Validate(raw + "x")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.Validate("")
	require.ErrorIs(t, err, ErrInvalidToken)

	other := NewTokenService("different", 24)
	_, err = other.Validate(raw)
	require.ErrorIs(t, err, ErrInvalidToken)
}
