package usecase

import (
	"context"

	"enroll/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateAddressInput carries partial address changes. Nil fields keep their
// stored values.
type UpdateAddressInput struct {
	Line      *string
	ZipCode   *string
	City      *string
	State     *string
	CountryID *int
}

// UpdateIndividualInput carries partial KYC-record changes. Nil fields keep
// their stored values.
type UpdateIndividualInput struct {
	PassportNumber *string
	PhoneNumber    *string
	Status         *entity.IndividualStatus
}

// UpdateProfileInput defines a partial profile update. Only non-nil fields
// are applied.
type UpdateProfileInput struct {
	FirstName  *string
	LastName   *string
	Filled     *bool
	Address    *UpdateAddressInput
	Individual *UpdateIndividualInput
}

// CreateProfileInput carries a direct profile creation, bypassing the
// registration flow. No credential is involved; the identity provider is
// not touched.
type CreateProfileInput struct {
	Email      string
	FirstName  string
	LastName   string
	Address    *AddressInput
	Individual *IndividualInput
}

// ProfileUsecase exposes CRUD over stored user profiles.
type ProfileUsecase interface {
	CreateProfile(ctx context.Context, input *CreateProfileInput) (*entity.UserProfile, error)
	GetProfile(ctx context.Context, id uuid.UUID) (*entity.UserProfile, error)
	GetProfileByEmail(ctx context.Context, email string) (*entity.UserProfile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input *UpdateProfileInput) (*entity.UserProfile, error)
	DeleteProfile(ctx context.Context, id uuid.UUID) error
}
