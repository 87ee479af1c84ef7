package impl

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/domain/repository"
	"enroll/internal/domain/service"
	"enroll/internal/infra/metrics"
	"enroll/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// registrationFixtures holds all test dependencies for registration tests.
type registrationFixtures struct {
	service     usecase.RegistrationUsecase
	profileRepo *mockProfileRepository
	provider    *mockIdentityProvider
	metrics     *metrics.Metrics
}

func createTestRegistrationService(t *testing.T) registrationFixtures {
	t.Helper()

	profileRepo := &mockProfileRepository{}
	provider := &mockIdentityProvider{}
	m := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	service := NewRegistrationService(RegistrationServiceParams{
		ProfileRepo: profileRepo,
		Provider:    provider,
		Metrics:     m,
		Logger:      logger,
	})

	return registrationFixtures{
		service:     service,
		profileRepo: profileRepo,
		provider:    provider,
		metrics:     m,
	}
}

var profileID = uuid.MustParse("0190e1a0-0000-7000-8000-000000000001")

func validRegisterInput() *usecase.RegisterInput {
	countryID := 250

	return &usecase.RegisterInput{
		Email:                "alice@example.com",
		Password:             "pw123",
		PasswordConfirmation: "pw123",
		FirstName:            "Alice",
		LastName:             "Doe",
		Role:                 entity.RoleUser,
		Address: &usecase.AddressInput{
			Line:      "1 Rue de Rivoli",
			ZipCode:   "75001",
			City:      "Paris",
			State:     "IDF",
			CountryID: &countryID,
		},
		Individual: &usecase.IndividualInput{
			PassportNumber: "X1234567",
			PhoneNumber:    "+33123456789",
		},
	}
}

// expectNoDuplicates wires the pre-write existence checks to pass.
func (f registrationFixtures) expectNoDuplicates(email string) {
	f.profileRepo.On("ExistsByEmail", mock.Anything, email).Return(false, nil)
	f.provider.On("ExistsByEmail", mock.Anything, email).Return(false, nil)
}

// expectProfileCreated stamps the generated id onto the entity like the
// real store does.
func (f registrationFixtures) expectProfileCreated() {
	f.profileRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.UserProfile")).
		Run(func(args mock.Arguments) {
			profile := args.Get(1).(*entity.UserProfile)
			profile.ID = profileID
		}).
		Return(nil)
}

func (f registrationFixtures) outcomeCount(outcome string) float64 {
	return testutil.ToFloat64(f.metrics.Registrations.WithLabelValues(outcome))
}

func TestRegistrationService_Register_Success(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	f.expectNoDuplicates(input.Email)
	f.expectProfileCreated()
	f.provider.On("CreateAccount", mock.Anything, mock.MatchedBy(func(acc service.NewAccount) bool {
		return acc.Email == input.Email && acc.Role == entity.RoleUser
	})).Return("acc-1", nil)
	f.provider.On("Login", mock.Anything, input.Email, input.Password).Return(&entity.TokenBundle{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ExpiresIn:    300,
		TokenType:    "Bearer",
	}, nil)

	output, err := f.service.Register(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, profileID, output.Profile.ID)
	assert.Equal(t, "acc-1", output.AccountID)
	assert.Equal(t, "Bearer", output.Tokens.TokenType)
	assert.Positive(t, output.Tokens.ExpiresIn)
	assert.True(t, output.Profile.Filled)
	require.NotNil(t, output.Profile.Individual)
	assert.Equal(t, entity.IndividualStatusPending, output.Profile.Individual.Status)

	f.profileRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.provider.AssertNotCalled(t, "DeleteAccount", mock.Anything, mock.Anything)
	assert.Equal(t, float64(1), f.outcomeCount(metrics.OutcomeSuccess))
}

func TestRegistrationService_Register_PasswordMismatch(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()
	input.PasswordConfirmation = "pw124"

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrPasswordMismatch)
	// Neither store may be touched on a validation failure.
	f.profileRepo.AssertNumberOfCalls(t, "ExistsByEmail", 0)
	f.profileRepo.AssertNumberOfCalls(t, "Create", 0)
	f.provider.AssertNumberOfCalls(t, "ExistsByEmail", 0)
	f.provider.AssertNumberOfCalls(t, "CreateAccount", 0)
	assert.Equal(t, float64(1), f.outcomeCount(metrics.OutcomeRejected))
}

func TestRegistrationService_Register_InvalidRole(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()
	input.Role = entity.Role("superuser")

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidRole)
	f.profileRepo.AssertNumberOfCalls(t, "Create", 0)
}

func TestRegistrationService_Register_EmailExistsInProfileStore(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()
	input.Email = "bob@example.com"

	f.profileRepo.On("ExistsByEmail", mock.Anything, input.Email).Return(true, nil)

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrEmailExists)
	// The provider must not even be asked once the local store has the email.
	f.provider.AssertNumberOfCalls(t, "ExistsByEmail", 0)
	f.provider.AssertNumberOfCalls(t, "CreateAccount", 0)
	f.profileRepo.AssertNumberOfCalls(t, "Create", 0)
}

func TestRegistrationService_Register_EmailExistsAtProvider(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	f.profileRepo.On("ExistsByEmail", mock.Anything, input.Email).Return(false, nil)
	f.provider.On("ExistsByEmail", mock.Anything, input.Email).Return(true, nil)

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrEmailExists)
	f.profileRepo.AssertNumberOfCalls(t, "Create", 0)
}

func TestRegistrationService_Register_UniqueConstraintBackstop(t *testing.T) {
	// Two concurrent attempts can both pass the existence check; the store's
	// unique constraint rejects the second writer and the caller sees the
	// same conflict as a detected duplicate.
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	f.expectNoDuplicates(input.Email)
	f.profileRepo.On("Create", mock.Anything, mock.AnythingOfType("*entity.UserProfile")).
		Return(domainerrors.ErrEmailExists.WrapMessage("email already exists in profile store"))

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrEmailExists)
	f.provider.AssertNumberOfCalls(t, "CreateAccount", 0)
	assert.Equal(t, float64(1), f.outcomeCount(metrics.OutcomeRejected))
}

func TestRegistrationService_Register_CompensatesOnIdentityFailure(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	f.expectNoDuplicates(input.Email)
	f.expectProfileCreated()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything).
		Return("", domainerrors.ErrProviderUnavailable.WrapMessage("create account request failed"))
	f.profileRepo.On("Delete", mock.Anything, profileID).Return(nil)

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrPartialFailure)
	f.profileRepo.AssertNumberOfCalls(t, "Delete", 1)
	// No account was created, so none may be deleted.
	f.provider.AssertNotCalled(t, "DeleteAccount", mock.Anything, mock.Anything)
	assert.Equal(t, float64(1), f.outcomeCount(metrics.OutcomeCompensated))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Compensations.WithLabelValues(metrics.CompensationOK)))
}

func TestRegistrationService_Register_CompensatesOnPartialIdentityFailure(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	f.expectNoDuplicates(input.Email)
	f.expectProfileCreated()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything).
		Return("", &domainerrors.PartialCreateError{
			AccountID: "acc-1",
			Cause:     errors.New("role assignment failed"),
		})
	f.provider.On("DeleteAccount", mock.Anything, "acc-1").Return(nil)
	f.profileRepo.On("Delete", mock.Anything, profileID).Return(nil)

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrPartialFailure)
	f.provider.AssertNumberOfCalls(t, "DeleteAccount", 1)
	f.profileRepo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestRegistrationService_Register_CompensatesOnLoginFailure(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	f.expectNoDuplicates(input.Email)
	f.expectProfileCreated()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything).Return("acc-1", nil)
	f.provider.On("Login", mock.Anything, input.Email, input.Password).
		Return(nil, domainerrors.ErrInvalidCredentials.WrapMessage("provider rejected the credentials"))
	f.provider.On("DeleteAccount", mock.Anything, "acc-1").Return(nil)
	f.profileRepo.On("Delete", mock.Anything, profileID).Return(nil)

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrPartialFailure)
	f.provider.AssertNumberOfCalls(t, "DeleteAccount", 1)
	f.profileRepo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestRegistrationService_Register_CompensationToleratesMissingRecords(t *testing.T) {
	// A record that is already gone counts as cleaned up, not as a
	// compensation failure.
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	f.expectNoDuplicates(input.Email)
	f.expectProfileCreated()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything).
		Return("", &domainerrors.PartialCreateError{AccountID: "acc-1", Cause: errors.New("role assignment failed")})
	f.provider.On("DeleteAccount", mock.Anything, "acc-1").Return(nil)
	f.profileRepo.On("Delete", mock.Anything, profileID).Return(repository.ErrProfileNotFound)

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrPartialFailure)
	assert.NotErrorIs(t, err, domainerrors.ErrCompensationIncomplete)
	assert.Equal(t, float64(1), f.outcomeCount(metrics.OutcomeCompensated))
}

func TestRegistrationService_Register_ReportsIncompleteCompensation(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	f.expectNoDuplicates(input.Email)
	f.expectProfileCreated()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything).Return("acc-1", nil)
	f.provider.On("Login", mock.Anything, input.Email, input.Password).
		Return(nil, domainerrors.ErrProviderUnavailable.WrapMessage("token endpoint request failed"))
	f.provider.On("DeleteAccount", mock.Anything, "acc-1").
		Return(domainerrors.ErrProviderUnavailable.WrapMessage("delete account request failed"))
	f.profileRepo.On("Delete", mock.Anything, profileID).Return(nil)

	_, err := f.service.Register(context.Background(), input)

	assert.ErrorIs(t, err, domainerrors.ErrCompensationIncomplete)

	var compErr *domainerrors.CompensationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, "acc-1", compErr.AccountID)
	assert.Empty(t, compErr.ProfileID)

	assert.Equal(t, float64(1), f.outcomeCount(metrics.OutcomePartialFailure))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.Compensations.WithLabelValues(metrics.CompensationFailed)))
}

func TestRegistrationService_Register_CompensationOutlivesCancelledRequest(t *testing.T) {
	f := createTestRegistrationService(t)
	input := validRegisterInput()

	ctx, cancel := context.WithCancel(context.Background())

	f.expectNoDuplicates(input.Email)
	f.expectProfileCreated()
	f.provider.On("CreateAccount", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return("", domainerrors.ErrProviderUnavailable.WrapMessage("create account request failed"))
	f.profileRepo.On("Delete", mock.Anything, profileID).
		Run(func(args mock.Arguments) {
			compCtx := args.Get(0).(context.Context)
			assert.NoError(t, compCtx.Err())
		}).
		Return(nil)

	_, err := f.service.Register(ctx, input)

	assert.ErrorIs(t, err, domainerrors.ErrPartialFailure)
	f.profileRepo.AssertNumberOfCalls(t, "Delete", 1)
}
