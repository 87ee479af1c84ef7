package usecase

import (
	"context"

	"enroll/internal/domain/entity"
)

// LoginInput defines the data required for a user to log in.
type LoginInput struct {
	Email    string
	Password string
}

// RefreshInput defines the data required to refresh an access token.
type RefreshInput struct {
	RefreshToken string
}

// TokenOutput returns the token bundle issued by the identity provider.
type TokenOutput struct {
	Tokens *entity.TokenBundle
}

// TokenUsecase forwards credential grants to the identity provider. It adds
// no logic of its own; it exists so the delivery layer never touches the
// provider contract directly.
type TokenUsecase interface {
	Login(ctx context.Context, input *LoginInput) (*TokenOutput, error)
	Refresh(ctx context.Context, input *RefreshInput) (*TokenOutput, error)
}
