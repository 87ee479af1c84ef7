// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"

	deliverycontext "enroll/internal/delivery/context"
	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/domain/repository"
	"enroll/internal/domain/service"
	"enroll/internal/infra/metrics"
	"enroll/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// registrationService coordinates the registration sequence across the
// profile store and the identity provider. One invocation runs one attempt
// to a terminal state: committed, or failed with every forward step undone.
//
// Ordering: the profile row is written before the provider account because
// the local transaction is the cheap, reliable step; doing it first keeps
// the compensation window against the external provider as small as
// possible. Remote calls are never retried here; a retry that double-creates
// an account is worse than a clean failure.
type registrationService struct {
	profileRepo repository.ProfileRepository
	provider    service.IdentityProvider
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// RegistrationServiceParams holds dependencies for registrationService,
// injected by Fx.
type RegistrationServiceParams struct {
	fx.In

	ProfileRepo repository.ProfileRepository
	Provider    service.IdentityProvider
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// NewRegistrationService is the constructor for registrationService.
func NewRegistrationService(params RegistrationServiceParams) usecase.RegistrationUsecase {
	return &registrationService{
		profileRepo: params.ProfileRepo,
		provider:    params.Provider,
		metrics:     params.Metrics,
		logger:      params.Logger,
	}
}

func (srv *registrationService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the complete registration flow:
// validate → create profile → create identity account → login.
// Any failure after the profile commit triggers compensating deletes before
// the error is surfaced; the caller never sees success unless both stores
// committed and tokens were issued.
func (srv *registrationService) Register(ctx context.Context, input *usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	srv.log(ctx).Info("Starting registration", slog.String("email", input.Email), slog.Any("role", input.Role))

	if err := srv.validate(ctx, input); err != nil {
		srv.metrics.Registrations.WithLabelValues(metrics.OutcomeRejected).Inc()

		return nil, err
	}

	profile, err := srv.createProfile(ctx, input)
	if err != nil {
		srv.metrics.Registrations.WithLabelValues(metrics.OutcomeRejected).Inc()

		return nil, err
	}

	accountID, err := srv.createAccount(ctx, input)
	if err != nil {
		// The provider may have created the account before failing; a
		// PartialCreateError tells us which orphan to remove.
		orphanAccountID := ""
		var partial *domainerrors.PartialCreateError
		if errors.As(err, &partial) {
			orphanAccountID = partial.AccountID
		}

		return nil, srv.compensate(ctx, profile.ID, orphanAccountID, err)
	}

	tokens, err := srv.provider.Login(ctx, input.Email, input.Password)
	if err != nil {
		srv.log(ctx).Error("Login after registration failed",
			slog.String("email", input.Email),
			slog.String("accountID", accountID),
			slog.Any("error", err))

		return nil, srv.compensate(ctx, profile.ID, accountID, err)
	}

	srv.metrics.Registrations.WithLabelValues(metrics.OutcomeSuccess).Inc()
	srv.log(ctx).Info("Registration committed",
		slog.Any("profileID", profile.ID),
		slog.String("accountID", accountID))

	return &usecase.RegisterOutput{
		Profile:   profile,
		AccountID: accountID,
		Tokens:    tokens,
	}, nil
}

// validate rejects the attempt before any side effect: password gate first,
// then existence in either store. The pre-write existence check closes the
// window left by a prior crashed attempt; the store's unique constraint
// remains the authoritative backstop for concurrent duplicates.
func (srv *registrationService) validate(ctx context.Context, input *usecase.RegisterInput) error {
	if input.Password != input.PasswordConfirmation {
		srv.log(ctx).Warn("Password confirmation mismatch", slog.String("email", input.Email))

		return domainerrors.ErrPasswordMismatch.WrapMessage("registration rejected")
	}

	if !input.Role.IsValid() {
		return domainerrors.ErrInvalidRole.WrapMessage("registration rejected")
	}

	existsLocally, err := srv.profileRepo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return errors.Wrap(err, "failed to check email in profile store")
	}
	if existsLocally {
		return domainerrors.ErrEmailExists.WrapMessage("email already registered in profile store")
	}

	existsRemotely, err := srv.provider.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return errors.Wrap(err, "failed to check email at identity provider")
	}
	if existsRemotely {
		return domainerrors.ErrEmailExists.WrapMessage("email already registered at identity provider")
	}

	return nil
}

func (srv *registrationService) createProfile(ctx context.Context, input *usecase.RegisterInput) (*entity.UserProfile, error) {
	profile := buildProfileEntity(input)

	if err := srv.profileRepo.Create(ctx, profile); err != nil {
		srv.log(ctx).Warn("Profile creation failed", slog.String("email", input.Email), slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to create profile during registration")
	}

	return profile, nil
}

func (srv *registrationService) createAccount(ctx context.Context, input *usecase.RegisterInput) (string, error) {
	accountID, err := srv.provider.CreateAccount(ctx, service.NewAccount{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      input.Role,
	})
	if err != nil {
		srv.log(ctx).Error("Identity account creation failed",
			slog.String("email", input.Email),
			slog.Any("error", err))

		return "", err
	}

	return accountID, nil
}

// compensate undoes the committed forward steps and returns the error to
// surface. It runs on a context detached from the request's cancellation:
// a client disconnect must not abandon cleanup half-way. Each compensating
// call is issued at most once; records that are already gone count as
// cleaned up. When every compensating call succeeds the caller gets
// partial_failure; when one fails the caller gets compensation_incomplete
// carrying the orphan ids for out-of-band reconciliation.
func (srv *registrationService) compensate(ctx context.Context, profileID uuid.UUID, accountID string, cause error) error {
	compCtx := context.WithoutCancel(ctx)

	orphanProfile := ""
	orphanAccount := ""

	if accountID != "" {
		if err := srv.provider.DeleteAccount(compCtx, accountID); err != nil {
			orphanAccount = accountID
			srv.log(ctx).Error("Compensation failed to delete identity account",
				slog.String("accountID", accountID),
				slog.Any("error", err))
		}
	}

	if err := srv.profileRepo.Delete(compCtx, profileID); err != nil && !errors.Is(err, repository.ErrProfileNotFound) {
		orphanProfile = profileID.String()
		srv.log(ctx).Error("Compensation failed to delete profile",
			slog.Any("profileID", profileID),
			slog.Any("error", err))
	}

	if orphanProfile != "" || orphanAccount != "" {
		srv.metrics.Compensations.WithLabelValues(metrics.CompensationFailed).Inc()
		srv.metrics.Registrations.WithLabelValues(metrics.OutcomePartialFailure).Inc()

		return &domainerrors.CompensationError{
			ProfileID: orphanProfile,
			AccountID: orphanAccount,
			Cause:     domainerrors.ErrCompensationIncomplete.WrapMessage(cause.Error()),
		}
	}

	srv.metrics.Compensations.WithLabelValues(metrics.CompensationOK).Inc()
	srv.metrics.Registrations.WithLabelValues(metrics.OutcomeCompensated).Inc()
	srv.log(ctx).Info("Registration compensated", slog.Any("profileID", profileID))

	return errors.Wrap(domainerrors.ErrPartialFailure, cause.Error())
}

func buildProfileEntity(input *usecase.RegisterInput) *entity.UserProfile {
	return buildProfile(input.Email, input.FirstName, input.LastName, input.Address, input.Individual)
}

func buildProfile(email, firstName, lastName string, address *usecase.AddressInput, individual *usecase.IndividualInput) *entity.UserProfile {
	profile := &entity.UserProfile{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}

	if address != nil {
		profile.Address = &entity.Address{
			Line:      address.Line,
			ZipCode:   address.ZipCode,
			City:      address.City,
			State:     address.State,
			CountryID: address.CountryID,
		}
	}

	if individual != nil {
		profile.Individual = &entity.IndividualRecord{
			PassportNumber: individual.PassportNumber,
			PhoneNumber:    individual.PhoneNumber,
			Status:         entity.IndividualStatusPending,
		}
	}

	// A profile counts as filled once both optional sub-records arrived.
	profile.Filled = profile.Address != nil && profile.Individual != nil

	return profile
}
