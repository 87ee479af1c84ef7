// Package service defines interfaces for collaborators that live outside
// the process boundary, keeping the use cases independent of transport
// details.
package service

import (
	"context"

	"enroll/internal/domain/entity"
)

// NewAccount carries the fields the identity provider needs to create a
// credential record. The password is handed straight to the provider and
// never stored locally.
type NewAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      entity.Role
}

// IdentityProvider abstracts an OIDC-capable external identity provider.
// Every method that reaches the provider is a network call with a configured
// timeout; timeouts and transport failures surface as ErrProviderUnavailable
// rather than hanging the caller.
type IdentityProvider interface {
	// CreateAccount creates an enabled, email-pre-verified account and
	// assigns the requested realm role. Account creation and role assignment
	// are two provider calls: when the role assignment fails after the
	// account exists, the error is a *domainerrors.PartialCreateError
	// carrying the orphaned account id so callers can compensate precisely.
	CreateAccount(ctx context.Context, acc NewAccount) (accountID string, err error)

	// Login performs a password grant and returns the issued tokens.
	Login(ctx context.Context, email, password string) (*entity.TokenBundle, error)

	// Refresh exchanges a refresh token for a fresh token bundle.
	Refresh(ctx context.Context, refreshToken string) (*entity.TokenBundle, error)

	// GetAccount fetches an account and its realm roles by provider id.
	GetAccount(ctx context.Context, accountID string) (*entity.Account, error)

	// ExistsByEmail reports whether the provider already holds an account
	// with the exact email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// DeleteAccount removes an account. It is idempotent: deleting an id
	// that was never fully created or is already gone succeeds, which is
	// what compensation needs.
	DeleteAccount(ctx context.Context, accountID string) error
}
