package impl

import (
	"context"
	"log/slog"

	"enroll/internal/domain/service"
	"enroll/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// tokenService forwards credential grants to the identity provider.
type tokenService struct {
	provider service.IdentityProvider
	logger   *slog.Logger
}

// TokenServiceParams holds dependencies for tokenService, injected by Fx.
type TokenServiceParams struct {
	fx.In

	Provider service.IdentityProvider
	Logger   *slog.Logger
}

// NewTokenService is the constructor for tokenService.
func NewTokenService(params TokenServiceParams) usecase.TokenUsecase {
	return &tokenService{
		provider: params.Provider,
		logger:   params.Logger,
	}
}

// Login forwards a password grant.
func (srv *tokenService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.TokenOutput, error) {
	tokens, err := srv.provider.Login(ctx, input.Email, input.Password)
	if err != nil {
		srv.logger.Warn("Login failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "login failed")
	}

	return &usecase.TokenOutput{Tokens: tokens}, nil
}

// Refresh forwards a refresh-token grant.
func (srv *tokenService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.TokenOutput, error) {
	tokens, err := srv.provider.Refresh(ctx, input.RefreshToken)
	if err != nil {
		srv.logger.Warn("Token refresh failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "token refresh failed")
	}

	return &usecase.TokenOutput{Tokens: tokens}, nil
}
