package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func createTestTokenService(t *testing.T) (usecase.TokenUsecase, *mockIdentityProvider) {
	t.Helper()

	provider := &mockIdentityProvider{}
	service := NewTokenService(TokenServiceParams{
		Provider: provider,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return service, provider
}

func TestTokenService_Login(t *testing.T) {
	t.Run("forwards the password grant", func(t *testing.T) {
		service, provider := createTestTokenService(t)
		provider.On("Login", mock.Anything, "alice@example.com", "pw123").
			Return(&entity.TokenBundle{AccessToken: "access", TokenType: "Bearer"}, nil)

		output, err := service.Login(context.Background(), &usecase.LoginInput{
			Email:    "alice@example.com",
			Password: "pw123",
		})

		require.NoError(t, err)
		assert.Equal(t, "access", output.Tokens.AccessToken)
	})

	t.Run("propagates invalid credentials", func(t *testing.T) {
		service, provider := createTestTokenService(t)
		provider.On("Login", mock.Anything, "alice@example.com", "wrong").
			Return(nil, domainerrors.ErrInvalidCredentials.WrapMessage("provider rejected the credentials"))

		_, err := service.Login(context.Background(), &usecase.LoginInput{
			Email:    "alice@example.com",
			Password: "wrong",
		})

		assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	})
}

func TestTokenService_Refresh(t *testing.T) {
	t.Run("forwards the refresh grant", func(t *testing.T) {
		service, provider := createTestTokenService(t)
		provider.On("Refresh", mock.Anything, "refresh-1").
			Return(&entity.TokenBundle{AccessToken: "access-2", RefreshToken: "refresh-2"}, nil)

		output, err := service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: "refresh-1"})

		require.NoError(t, err)
		assert.Equal(t, "access-2", output.Tokens.AccessToken)
	})

	t.Run("propagates invalid token", func(t *testing.T) {
		service, provider := createTestTokenService(t)
		provider.On("Refresh", mock.Anything, "expired").
			Return(nil, domainerrors.ErrInvalidToken.WrapMessage("provider rejected the refresh token"))

		_, err := service.Refresh(context.Background(), &usecase.RefreshInput{RefreshToken: "expired"})

		assert.ErrorIs(t, err, domainerrors.ErrInvalidToken)
	})
}

func TestAccountService_CurrentAccount(t *testing.T) {
	provider := &mockIdentityProvider{}
	service := NewAccountService(AccountServiceParams{
		Provider: provider,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	provider.On("GetAccount", mock.Anything, "acc-1").
		Return(&entity.Account{ID: "acc-1", Email: "alice@example.com", Roles: []string{"user"}}, nil)

	account, err := service.CurrentAccount(context.Background(), "acc-1")

	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", account.Email)
}

func TestAccountService_DeleteAccount(t *testing.T) {
	provider := &mockIdentityProvider{}
	service := NewAccountService(AccountServiceParams{
		Provider: provider,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	provider.On("DeleteAccount", mock.Anything, "acc-1").Return(nil)

	assert.NoError(t, service.DeleteAccount(context.Background(), "acc-1"))
}

func TestAccountService_Exists(t *testing.T) {
	provider := &mockIdentityProvider{}
	service := NewAccountService(AccountServiceParams{
		Provider: provider,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	provider.On("ExistsByEmail", mock.Anything, "alice@example.com").Return(true, nil)

	exists, err := service.Exists(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.True(t, exists)
}
