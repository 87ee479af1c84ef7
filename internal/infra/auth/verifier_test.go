package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"log/slog"
	"testing"
	"time"

	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeySource struct {
	key   *rsa.PublicKey
	calls int
}

func (s *staticKeySource) SigningKey(context.Context) (*rsa.PublicKey, error) {
	s.calls++

	return s.key, nil
}

func newSignedToken(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	require.NoError(t, err)

	return signed
}

func testVerifier(t *testing.T) (*rsa.PrivateKey, *staticKeySource, *jwtVerifier) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	source := &staticKeySource{key: &key.PublicKey}
	verifier := NewTokenVerifier(Params{
		Keys:   source,
		Logger: slog.New(slog.DiscardHandler),
	}).(*jwtVerifier)

	return key, source, verifier
}

func TestVerify(t *testing.T) {
	t.Run("valid token yields principal with realm roles", func(t *testing.T) {
		key, _, verifier := testVerifier(t)

		token := newSignedToken(t, key, jwt.MapClaims{
			"sub":          "acc-123",
			"email":        "user@example.com",
			"exp":          time.Now().Add(time.Minute).Unix(),
			"realm_access": map[string]any{"roles": []string{"user", "admin"}},
		})

		principal, err := verifier.Verify(context.Background(), token)

		require.NoError(t, err)
		assert.Equal(t, "acc-123", principal.Subject)
		assert.Equal(t, "user@example.com", principal.Email)
		assert.True(t, principal.HasRole(entity.RoleAdmin))
	})

	t.Run("falls back to flat roles claim", func(t *testing.T) {
		key, _, verifier := testVerifier(t)

		token := newSignedToken(t, key, jwt.MapClaims{
			"sub":   "acc-123",
			"exp":   time.Now().Add(time.Minute).Unix(),
			"roles": []string{"user"},
		})

		principal, err := verifier.Verify(context.Background(), token)

		require.NoError(t, err)
		assert.True(t, principal.HasRole(entity.RoleUser))
		assert.False(t, principal.HasRole(entity.RoleAdmin))
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		key, _, verifier := testVerifier(t)

		token := newSignedToken(t, key, jwt.MapClaims{
			"sub": "acc-123",
			"exp": time.Now().Add(-time.Minute).Unix(),
		})

		_, err := verifier.Verify(context.Background(), token)

		assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		_, _, verifier := testVerifier(t)

		otherKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		token := newSignedToken(t, otherKey, jwt.MapClaims{
			"sub": "acc-123",
			"exp": time.Now().Add(time.Minute).Unix(),
		})

		_, err = verifier.Verify(context.Background(), token)

		assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	})

	t.Run("HMAC token is rejected", func(t *testing.T) {
		_, _, verifier := testVerifier(t)

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": "acc-123",
			"exp": time.Now().Add(time.Minute).Unix(),
		})
		signed, err := token.SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = verifier.Verify(context.Background(), signed)

		assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, _, verifier := testVerifier(t)

		_, err := verifier.Verify(context.Background(), "not-a-token")

		assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	})

	t.Run("signing key is fetched once", func(t *testing.T) {
		key, source, verifier := testVerifier(t)

		token := newSignedToken(t, key, jwt.MapClaims{
			"sub": "acc-123",
			"exp": time.Now().Add(time.Minute).Unix(),
		})

		for range 3 {
			_, err := verifier.Verify(context.Background(), token)
			require.NoError(t, err)
		}

		assert.Equal(t, 1, source.calls)
	})
}
