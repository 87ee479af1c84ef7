package impl

import (
	"context"
	"log/slog"

	deliverycontext "enroll/internal/delivery/context"
	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/domain/repository"
	"enroll/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// profileService implements CRUD over stored user profiles.
type profileService struct {
	txManager   repository.TransactionManager
	profileRepo repository.ProfileRepository
	logger      *slog.Logger
}

// ProfileServiceParams holds dependencies for profileService, injected by Fx.
type ProfileServiceParams struct {
	fx.In

	TxManager   repository.TransactionManager
	ProfileRepo repository.ProfileRepository
	Logger      *slog.Logger
}

// NewProfileService is the constructor for profileService.
func NewProfileService(params ProfileServiceParams) usecase.ProfileUsecase {
	return &profileService{
		txManager:   params.TxManager,
		profileRepo: params.ProfileRepo,
		logger:      params.Logger,
	}
}

func (srv *profileService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateProfile writes a profile directly, without going through the
// registration flow. The identity provider is never touched; address,
// profile and KYC record commit in one local transaction.
func (srv *profileService) CreateProfile(ctx context.Context, input *usecase.CreateProfileInput) (*entity.UserProfile, error) {
	profile := buildProfile(input.Email, input.FirstName, input.LastName, input.Address, input.Individual)

	if err := srv.profileRepo.Create(ctx, profile); err != nil {
		return nil, errors.Wrap(err, "failed to create profile")
	}
	srv.log(ctx).Info("Profile created", slog.Any("profileID", profile.ID))

	return profile, nil
}

// GetProfile retrieves a single profile with its owned records resolved.
func (srv *profileService) GetProfile(ctx context.Context, id uuid.UUID) (*entity.UserProfile, error) {
	profile, err := srv.profileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("no profile with id " + id.String())
		}

		return nil, errors.Wrap(err, "failed to find profile by id")
	}

	return profile, nil
}

// GetProfileByEmail retrieves a single profile by email.
func (srv *profileService) GetProfileByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	profile, err := srv.profileRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, domainerrors.ErrUserNotFound.WrapMessage("no profile with email " + email)
		}

		return nil, errors.Wrap(err, "failed to find profile by email")
	}

	return profile, nil
}

// UpdateProfile applies a partial update: only non-nil input fields change
// the stored record. Load, merge and save run in one transaction so
// concurrent updates never interleave half-applied states.
func (srv *profileService) UpdateProfile(ctx context.Context, id uuid.UUID, input *usecase.UpdateProfileInput) (*entity.UserProfile, error) {
	var updated *entity.UserProfile

	err := srv.txManager.Execute(ctx, func(repos repository.RepositoryFactory) error {
		profileRepo := repos.ProfileRepo()

		profile, err := profileRepo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrProfileNotFound) {
				return domainerrors.ErrUserNotFound.WrapMessage("no profile with id " + id.String())
			}

			return errors.Wrap(err, "failed to load profile for update")
		}

		srv.applyProfileUpdate(ctx, repos, profile, input)

		if err := profileRepo.Save(ctx, profile); err != nil {
			return errors.Wrap(err, "failed to save updated profile")
		}
		updated = profile

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Profile updated", slog.Any("profileID", id))

	return updated, nil
}

func (srv *profileService) applyProfileUpdate(ctx context.Context, repos repository.RepositoryFactory, profile *entity.UserProfile, input *usecase.UpdateProfileInput) {
	if input.FirstName != nil {
		profile.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		profile.LastName = *input.LastName
	}
	if input.Filled != nil {
		profile.Filled = *input.Filled
	}

	if input.Address != nil {
		srv.applyAddressUpdate(ctx, repos, profile, input.Address)
	}

	if input.Individual != nil {
		applyIndividualUpdate(profile, input.Individual)
	}
}

func (srv *profileService) applyAddressUpdate(ctx context.Context, repos repository.RepositoryFactory, profile *entity.UserProfile, input *usecase.UpdateAddressInput) {
	if profile.Address == nil {
		profile.Address = &entity.Address{}
	}
	addr := profile.Address

	if input.Line != nil {
		addr.Line = *input.Line
	}
	if input.ZipCode != nil {
		addr.ZipCode = *input.ZipCode
	}
	if input.City != nil {
		addr.City = *input.City
	}
	if input.State != nil {
		addr.State = *input.State
	}

	if input.CountryID != nil {
		// Updates keep the stored country when the supplied id is unknown.
		// Lenient on purpose to match existing clients, but logged so a
		// caller bug does not pass silently.
		if _, err := repos.CountryRepo().FindByID(ctx, *input.CountryID); err != nil {
			srv.log(ctx).Warn("Ignoring unknown country reference in profile update",
				slog.Any("profileID", profile.ID),
				slog.Int("countryID", *input.CountryID),
				slog.Any("error", err))
		} else {
			addr.CountryID = input.CountryID
			addr.Country = nil
		}
	}
}

func applyIndividualUpdate(profile *entity.UserProfile, input *usecase.UpdateIndividualInput) {
	if profile.Individual == nil {
		profile.Individual = &entity.IndividualRecord{Status: entity.IndividualStatusPending}
	}
	individual := profile.Individual

	if input.PassportNumber != nil {
		individual.PassportNumber = *input.PassportNumber
	}
	if input.PhoneNumber != nil {
		individual.PhoneNumber = *input.PhoneNumber
	}
	if input.Status != nil && input.Status.IsValid() {
		individual.Status = *input.Status
	}
}

// DeleteProfile removes a profile and its owned records.
func (srv *profileService) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	if err := srv.profileRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return domainerrors.ErrUserNotFound.WrapMessage("no profile with id " + id.String())
		}

		return errors.Wrap(err, "failed to delete profile")
	}
	srv.log(ctx).Info("Profile deleted", slog.Any("profileID", id))

	return nil
}
