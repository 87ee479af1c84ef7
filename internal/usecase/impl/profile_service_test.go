package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/domain/repository"
	"enroll/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type profileFixtures struct {
	service     usecase.ProfileUsecase
	profileRepo *mockProfileRepository
	countryRepo *mockCountryRepository
}

func createTestProfileService(t *testing.T) profileFixtures {
	t.Helper()

	profileRepo := &mockProfileRepository{}
	countryRepo := &mockCountryRepository{}
	txManager := &mockTransactionManager{factory: &mockRepositoryFactory{
		profileRepo: profileRepo,
		countryRepo: countryRepo,
	}}

	service := NewProfileService(ProfileServiceParams{
		TxManager:   txManager,
		ProfileRepo: profileRepo,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})

	return profileFixtures{
		service:     service,
		profileRepo: profileRepo,
		countryRepo: countryRepo,
	}
}

func storedProfile() *entity.UserProfile {
	countryID := 250

	return &entity.UserProfile{
		ID:        profileID,
		Email:     "alice@example.com",
		FirstName: "Alice",
		LastName:  "Doe",
		Filled:    true,
		Address: &entity.Address{
			ID:        uuid.New(),
			Line:      "1 Rue de Rivoli",
			ZipCode:   "75001",
			City:      "Paris",
			State:     "IDF",
			CountryID: &countryID,
		},
		Individual: &entity.IndividualRecord{
			ID:             uuid.New(),
			PassportNumber: "X1234567",
			PhoneNumber:    "+33123456789",
			Status:         entity.IndividualStatusPending,
		},
	}
}

func TestProfileService_GetProfile(t *testing.T) {
	t.Run("returns profile with owned records", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("FindByID", mock.Anything, profileID).Return(storedProfile(), nil)

		profile, err := f.service.GetProfile(context.Background(), profileID)

		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", profile.Email)
		assert.NotNil(t, profile.Address)
		assert.NotNil(t, profile.Individual)
	})

	t.Run("maps missing profile to user not found", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("FindByID", mock.Anything, profileID).Return(nil, repository.ErrProfileNotFound)

		_, err := f.service.GetProfile(context.Background(), profileID)

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}

func TestProfileService_GetProfileByEmail(t *testing.T) {
	f := createTestProfileService(t)
	f.profileRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(storedProfile(), nil)

	profile, err := f.service.GetProfileByEmail(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.Equal(t, profileID, profile.ID)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	t.Run("applies only supplied fields", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("FindByID", mock.Anything, profileID).Return(storedProfile(), nil)
		f.profileRepo.On("Save", mock.Anything, mock.AnythingOfType("*entity.UserProfile")).Return(nil)

		firstName := "Alicia"
		updated, err := f.service.UpdateProfile(context.Background(), profileID, &usecase.UpdateProfileInput{
			FirstName: &firstName,
		})

		require.NoError(t, err)
		assert.Equal(t, "Alicia", updated.FirstName)
		// Unspecified fields keep their stored values.
		assert.Equal(t, "Doe", updated.LastName)
		assert.Equal(t, "Paris", updated.Address.City)
	})

	t.Run("valid country reference is applied", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("FindByID", mock.Anything, profileID).Return(storedProfile(), nil)
		f.profileRepo.On("Save", mock.Anything, mock.AnythingOfType("*entity.UserProfile")).Return(nil)
		f.countryRepo.On("FindByID", mock.Anything, 276).Return(&entity.Country{ID: 276, Name: "Germany"}, nil)

		newCountry := 276
		updated, err := f.service.UpdateProfile(context.Background(), profileID, &usecase.UpdateProfileInput{
			Address: &usecase.UpdateAddressInput{CountryID: &newCountry},
		})

		require.NoError(t, err)
		require.NotNil(t, updated.Address.CountryID)
		assert.Equal(t, 276, *updated.Address.CountryID)
	})

	t.Run("unknown country reference keeps the stored country", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("FindByID", mock.Anything, profileID).Return(storedProfile(), nil)
		f.profileRepo.On("Save", mock.Anything, mock.AnythingOfType("*entity.UserProfile")).Return(nil)
		f.countryRepo.On("FindByID", mock.Anything, 999).Return(nil, repository.ErrCountryNotFound)

		badCountry := 999
		updated, err := f.service.UpdateProfile(context.Background(), profileID, &usecase.UpdateProfileInput{
			Address: &usecase.UpdateAddressInput{CountryID: &badCountry},
		})

		require.NoError(t, err)
		require.NotNil(t, updated.Address.CountryID)
		assert.Equal(t, 250, *updated.Address.CountryID)
	})

	t.Run("creates missing sub-records on demand", func(t *testing.T) {
		f := createTestProfileService(t)
		bare := &entity.UserProfile{ID: profileID, Email: "bare@example.com"}
		f.profileRepo.On("FindByID", mock.Anything, profileID).Return(bare, nil)
		f.profileRepo.On("Save", mock.Anything, mock.AnythingOfType("*entity.UserProfile")).Return(nil)

		city := "Lyon"
		passport := "Y7654321"
		updated, err := f.service.UpdateProfile(context.Background(), profileID, &usecase.UpdateProfileInput{
			Address:    &usecase.UpdateAddressInput{City: &city},
			Individual: &usecase.UpdateIndividualInput{PassportNumber: &passport},
		})

		require.NoError(t, err)
		require.NotNil(t, updated.Address)
		assert.Equal(t, "Lyon", updated.Address.City)
		require.NotNil(t, updated.Individual)
		assert.Equal(t, entity.IndividualStatusPending, updated.Individual.Status)
	})

	t.Run("missing profile maps to user not found", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("FindByID", mock.Anything, profileID).Return(nil, repository.ErrProfileNotFound)

		_, err := f.service.UpdateProfile(context.Background(), profileID, &usecase.UpdateProfileInput{})

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
		f.profileRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestProfileService_DeleteProfile(t *testing.T) {
	t.Run("deletes existing profile", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("Delete", mock.Anything, profileID).Return(nil)

		assert.NoError(t, f.service.DeleteProfile(context.Background(), profileID))
	})

	t.Run("missing profile maps to user not found", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("Delete", mock.Anything, profileID).Return(repository.ErrProfileNotFound)

		err := f.service.DeleteProfile(context.Background(), profileID)

		assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
	})
}

func TestProfileService_CreateProfile(t *testing.T) {
	countryID := 250
	input := &usecase.CreateProfileInput{
		Email:     "bob@example.com",
		FirstName: "Bob",
		LastName:  "Stone",
		Address: &usecase.AddressInput{
			Line:      "2 Avenue Foch",
			ZipCode:   "75116",
			City:      "Paris",
			CountryID: &countryID,
		},
		Individual: &usecase.IndividualInput{
			PassportNumber: "Y7654321",
			PhoneNumber:    "+33987654321",
		},
	}

	t.Run("creates profile with owned records", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("Create", mock.Anything, mock.MatchedBy(func(p *entity.UserProfile) bool {
			return p.Email == "bob@example.com" && p.Address != nil && p.Individual != nil
		})).Return(nil)

		profile, err := f.service.CreateProfile(context.Background(), input)

		require.NoError(t, err)
		assert.True(t, profile.Filled)
		assert.Equal(t, entity.IndividualStatusPending, profile.Individual.Status)
	})

	t.Run("surfaces duplicate email from the store", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("Create", mock.Anything, mock.Anything).
			Return(domainerrors.ErrEmailExists.WrapMessage("duplicate"))

		_, err := f.service.CreateProfile(context.Background(), input)

		require.ErrorIs(t, err, domainerrors.ErrEmailExists)
	})

	t.Run("bare profile is not marked filled", func(t *testing.T) {
		f := createTestProfileService(t)
		f.profileRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		profile, err := f.service.CreateProfile(context.Background(), &usecase.CreateProfileInput{
			Email:     "carol@example.com",
			FirstName: "Carol",
			LastName:  "Reed",
		})

		require.NoError(t, err)
		assert.False(t, profile.Filled)
		assert.Nil(t, profile.Address)
	})
}
