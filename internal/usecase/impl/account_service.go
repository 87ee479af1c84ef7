package impl

import (
	"context"
	"log/slog"

	"enroll/internal/domain/entity"
	"enroll/internal/domain/service"
	"enroll/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService exposes provider-side account reads and deletes.
type accountService struct {
	provider service.IdentityProvider
	logger   *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	Provider service.IdentityProvider
	Logger   *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		provider: params.Provider,
		logger:   params.Logger,
	}
}

// CurrentAccount resolves the account behind an authenticated principal.
func (srv *accountService) CurrentAccount(ctx context.Context, accountID string) (*entity.Account, error) {
	account, err := srv.provider.GetAccount(ctx, accountID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch account")
	}

	return account, nil
}

// Exists reports whether the identity provider already holds an account
// for the email.
func (srv *accountService) Exists(ctx context.Context, email string) (bool, error) {
	exists, err := srv.provider.ExistsByEmail(ctx, email)
	if err != nil {
		return false, errors.Wrap(err, "failed to check account existence")
	}

	return exists, nil
}

// DeleteAccount removes the provider-side account. Profiles are deleted
// independently through their own endpoint.
func (srv *accountService) DeleteAccount(ctx context.Context, accountID string) error {
	if err := srv.provider.DeleteAccount(ctx, accountID); err != nil {
		return errors.Wrap(err, "failed to delete account")
	}
	srv.logger.Info("Identity account deleted", slog.String("accountID", accountID))

	return nil
}
