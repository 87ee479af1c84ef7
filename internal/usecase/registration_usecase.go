// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"enroll/internal/domain/entity"
)

// --- Input DTOs ---

// AddressInput carries the optional postal address supplied at registration.
type AddressInput struct {
	Line      string
	ZipCode   string
	City      string
	State     string
	CountryID *int
}

// IndividualInput carries the optional KYC sub-record supplied at registration.
type IndividualInput struct {
	PassportNumber string
	PhoneNumber    string
}

// RegisterInput defines the data required to register a new user across the
// profile store and the identity provider.
type RegisterInput struct {
	Email                string
	Password             string
	PasswordConfirmation string
	FirstName            string
	LastName             string
	Role                 entity.Role
	Address              *AddressInput
	Individual           *IndividualInput
}

// --- Output DTOs ---

// RegisterOutput returns the committed registration result: the stored
// profile, the provider account id and the freshly issued tokens.
type RegisterOutput struct {
	Profile   *entity.UserProfile
	AccountID string
	Tokens    *entity.TokenBundle
}

// RegistrationUsecase drives the registration sequence across the profile
// store and the identity provider. A returned error guarantees that neither
// store holds a committed record for the email, unless the error reports an
// incomplete cleanup.
type RegistrationUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)
}
