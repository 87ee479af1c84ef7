package impl

import (
	"context"

	"enroll/internal/domain/entity"
	"enroll/internal/domain/repository"
	"enroll/internal/domain/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// mockProfileRepository is a testify mock for repository.ProfileRepository.
type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) Create(ctx context.Context, profile *entity.UserProfile) error {
	args := m.Called(ctx, profile)

	return args.Error(0)
}

func (m *mockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *mockProfileRepository) FindByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.UserProfile), args.Error(1)
}

func (m *mockProfileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)

	return args.Bool(0), args.Error(1)
}

func (m *mockProfileRepository) Save(ctx context.Context, profile *entity.UserProfile) error {
	args := m.Called(ctx, profile)

	return args.Error(0)
}

func (m *mockProfileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)

	return args.Error(0)
}

// mockCountryRepository is a testify mock for repository.CountryRepository.
type mockCountryRepository struct {
	mock.Mock
}

func (m *mockCountryRepository) FindByID(ctx context.Context, id int) (*entity.Country, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Country), args.Error(1)
}

// mockIdentityProvider is a testify mock for service.IdentityProvider.
type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) CreateAccount(ctx context.Context, acc service.NewAccount) (string, error) {
	args := m.Called(ctx, acc)

	return args.String(0), args.Error(1)
}

func (m *mockIdentityProvider) Login(ctx context.Context, email, password string) (*entity.TokenBundle, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.TokenBundle), args.Error(1)
}

func (m *mockIdentityProvider) Refresh(ctx context.Context, refreshToken string) (*entity.TokenBundle, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.TokenBundle), args.Error(1)
}

func (m *mockIdentityProvider) GetAccount(ctx context.Context, accountID string) (*entity.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *mockIdentityProvider) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)

	return args.Bool(0), args.Error(1)
}

func (m *mockIdentityProvider) DeleteAccount(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)

	return args.Error(0)
}

// mockRepositoryFactory hands out the mocks above as transaction-bound
// repositories.
type mockRepositoryFactory struct {
	profileRepo repository.ProfileRepository
	countryRepo repository.CountryRepository
}

func (f *mockRepositoryFactory) ProfileRepo() repository.ProfileRepository {
	return f.profileRepo
}

func (f *mockRepositoryFactory) CountryRepo() repository.CountryRepository {
	return f.countryRepo
}

// mockTransactionManager runs the transactional function against the mock
// factory without any real transaction.
type mockTransactionManager struct {
	factory *mockRepositoryFactory
}

func (m *mockTransactionManager) Execute(_ context.Context, fn func(repos repository.RepositoryFactory) error) error {
	return fn(m.factory)
}
