package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/lms-admin-api/internal/models"
	appErrors "github.com/noah-isme/lms-admin-api/pkg/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", TTL: time.Hour})

	token, expires, err := svc.IssueToken(trainerActor, "trainer.one")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, trainerActor, claims.Actor())
	assert.Equal(t, "trainer.one", claims.Username)
}

func TestTokenRejectsWrongSecretAndExpiry(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "other", TTL: time.Hour})
	token, _, err := issuer.IssueToken(adminActor, "")
	require.NoError(t, err)

	svc := NewTokenService(TokenConfig{Secret: "secret", TTL: time.Hour})
	_, err = svc.ValidateToken(token)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	expired := NewTokenService(TokenConfig{Secret: "secret", TTL: time.Minute})
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	stale, _, err := expired.IssueToken(adminActor, "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(stale)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestTokenRejectsUnknownRole(t *testing.T) {
	claims := models.JWTClaims{UserID: "u-1", Role: "JANITOR", RegisteredClaims: jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewTokenService(TokenConfig{Secret: "secret"}).ValidateToken(signed)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = NewTokenService(TokenConfig{Secret: "secret"}).ValidateToken("not-a-token")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}
