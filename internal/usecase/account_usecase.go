package usecase

import (
	"context"

	"enroll/internal/domain/entity"
)

// AccountUsecase exposes read access to provider-side accounts.
type AccountUsecase interface {
	// CurrentAccount resolves the account behind an authenticated principal.
	CurrentAccount(ctx context.Context, accountID string) (*entity.Account, error)

	// Exists reports whether an account with the given email is already
	// registered at the identity provider.
	Exists(ctx context.Context, email string) (bool, error)

	// DeleteAccount removes the provider-side account.
	DeleteAccount(ctx context.Context, accountID string) error
}
