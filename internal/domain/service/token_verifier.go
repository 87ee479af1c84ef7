package service

import (
	"context"

	"enroll/internal/domain/entity"
)

// TokenVerifier checks inbound bearer tokens issued by the identity provider
// and maps their claims to an internal principal. Verification is local
// (signature against the realm's published key); no network call per request.
type TokenVerifier interface {
	// Verify validates the token's signature and time claims and returns the
	// mapped principal, or ErrInvalidToken.
	Verify(ctx context.Context, accessToken string) (*entity.Principal, error)
}
