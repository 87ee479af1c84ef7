// Package auth verifies inbound bearer tokens against the identity realm's
// RS256 signing key and projects their claims onto the domain principal.
package auth

import (
	"context"
	"crypto/rsa"
	"log/slog"
	"sync"

	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/domain/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// KeySource supplies the realm's current RSA signing key.
type KeySource interface {
	SigningKey(ctx context.Context) (*rsa.PublicKey, error)
}

// Params defines the dependencies for the token verifier.
type Params struct {
	fx.In

	Keys   KeySource
	Logger *slog.Logger
}

type jwtVerifier struct {
	keys   KeySource
	logger *slog.Logger

	mu  sync.RWMutex
	key *rsa.PublicKey
}

// NewTokenVerifier builds a verifier that lazily fetches and caches the
// realm key. The key is fetched once; a realm key rotation requires a
// process restart.
func NewTokenVerifier(params Params) service.TokenVerifier {
	return &jwtVerifier{
		keys:   params.Keys,
		logger: params.Logger,
	}
}

// Verify checks the token signature and temporal claims and returns the
// authenticated principal. Any defect in the token maps to invalid_token;
// the caller never learns which check failed.
func (v *jwtVerifier) Verify(ctx context.Context, accessToken string) (*entity.Principal, error) {
	key, err := v.signingKey(ctx)
	if err != nil {
		return nil, err
	}

	claims := &realmClaims{}
	_, err = jwt.ParseWithClaims(accessToken, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.Errorf("unexpected signing method %v", token.Header["alg"])
		}

		return key, nil
	})
	if err != nil {
		v.logger.Debug("Token verification failed", slog.Any("error", err))

		return nil, domainerrors.ErrInvalidToken.WrapMessage("token verification failed")
	}

	return claims.toPrincipal(), nil
}

func (v *jwtVerifier) signingKey(ctx context.Context) (*rsa.PublicKey, error) {
	v.mu.RLock()
	key := v.key
	v.mu.RUnlock()
	if key != nil {
		return key, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.key != nil {
		return v.key, nil
	}

	fetched, err := v.keys.SigningKey(ctx)
	if err != nil {
		return nil, err
	}
	v.key = fetched

	return fetched, nil
}
