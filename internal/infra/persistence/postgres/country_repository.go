package postgres

import (
	"context"

	"enroll/internal/domain/entity"
	"enroll/internal/domain/repository"
	"enroll/internal/infra/persistence/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// countryRepository implements repository.CountryRepository using GORM.
// The countries table is lookup-only; there are no write methods.
type countryRepository struct {
	db *gorm.DB
}

// NewCountryRepository is the constructor for countryRepository.
func NewCountryRepository(db *gorm.DB) repository.CountryRepository {
	return &countryRepository{db: db}
}

// FindByID retrieves a country row by its integer id.
func (repo *countryRepository) FindByID(ctx context.Context, id int) (*entity.Country, error) {
	var countryM model.CountryModel

	err := repo.db.WithContext(ctx).First(&countryM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCountryNotFound
		}

		return nil, errors.Wrap(err, "failed to find country by id")
	}

	return toCountryDomain(&countryM), nil
}
