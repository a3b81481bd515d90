package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		Issuer:                "stockledger-test",
		AccessTokenExpiration: 15 * time.Minute,
	})
}

func TestNewJWTService(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "s"})
	assert.Equal(t, 12*time.Hour, svc.Expiration())

	svc = newTestJWTService()
	assert.Equal(t, 15*time.Minute, svc.Expiration())
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newTestJWTService()

	issued, err := svc.Generate("manager", 0)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", issued.TokenType)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), issued.ExpiresAt, 5*time.Second)

	claims, err := svc.Validate(issued.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "manager", claims.Subject)
	assert.Equal(t, "manager", claims.Operator)
	assert.Equal(t, "stockledger-test", claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestGenerate_Errors(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := NewJWTService(config.JWTConfig{}).Generate("manager", 0)
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("missing operator", func(t *testing.T) {
		_, err := newTestJWTService().Generate("", 0)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})
}

func TestValidate_Failures(t *testing.T) {
	svc := newTestJWTService()

	t.Run("expired", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		svc.now = func() time.Time { return past }
		issued, err := svc.Generate("manager", time.Minute)
		require.NoError(t, err)
		svc.now = time.Now

		_, err = svc.Validate(issued.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "another-secret-key-of-32-characters", Issuer: "stockledger-test"})
		issued, err := other.Generate("manager", 0)
		require.NoError(t, err)

		_, err = svc.Validate(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{Secret: "test-secret-key-at-least-32-chars", Issuer: "someone-else"})
		issued, err := other.Generate("manager", 0)
		require.NoError(t, err)

		_, err = svc.Validate(issued.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned token", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "manager", Issuer: "stockledger-test"},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Validate(signed)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Validate("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
