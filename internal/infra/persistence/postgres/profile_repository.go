package postgres

import (
	"context"

	"enroll/internal/domain/entity"
	domainerrors "enroll/internal/domain/errors"
	"enroll/internal/domain/repository"
	"enroll/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// profileRepository implements repository.ProfileRepository using GORM.
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository is the constructor for profileRepository. It returns
// the repository as a domain interface, adhering to dependency inversion.
func NewProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &profileRepository{db: db}
}

// Create persists the profile with its owned address and individual record
// in one local transaction: address first, then the profile referencing it,
// then the individual referencing the profile. All three commit or none do.
func (repo *profileRepository) Create(ctx context.Context, profile *entity.UserProfile) error {
	profileM := fromProfileDomain(profile)

	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if profileM.Address != nil {
			if err := tx.Create(profileM.Address).Error; err != nil {
				return err
			}
			profileM.AddressID = &profileM.Address.ID
		}

		if err := tx.Omit("Address", "Individual").Create(profileM).Error; err != nil {
			return err
		}

		if profileM.Individual != nil {
			profileM.Individual.ProfileID = profileM.ID
			if err := tx.Create(profileM.Individual).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrEmailExists.WrapMessage("email already exists in profile store")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrInvalidCountry.WrapMessage("address references an unknown country")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required profile information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create profile")
	}

	applyGenerated(profile, profileM)

	return nil
}

// FindByID retrieves a single profile, eagerly resolving the address with
// its country and the individual record so nothing lazy-loads across the
// store boundary.
func (repo *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.UserProfile, error) {
	var profileM model.ProfileModel

	err := repo.db.WithContext(ctx).
		Preload("Address.Country").
		Preload("Address").
		Preload("Individual").
		First(&profileM, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find profile by id")
	}

	return toProfileDomain(&profileM), nil
}

// FindByEmail retrieves a single profile by email, eagerly resolved.
func (repo *profileRepository) FindByEmail(ctx context.Context, email string) (*entity.UserProfile, error) {
	var profileM model.ProfileModel

	err := repo.db.WithContext(ctx).
		Preload("Address.Country").
		Preload("Address").
		Preload("Individual").
		First(&profileM, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProfileNotFound
		}

		return nil, errors.Wrap(err, "failed to find profile by email")
	}

	return toProfileDomain(&profileM), nil
}

// ExistsByEmail reports whether a profile row holds the email.
func (repo *profileRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64

	err := repo.db.WithContext(ctx).
		Model(&model.ProfileModel{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to count profiles by email")
	}

	return count > 0, nil
}

// Save writes back a modified profile including its owned records.
func (repo *profileRepository) Save(ctx context.Context, profile *entity.UserProfile) error {
	profileM := fromProfileDomain(profile)

	err := repo.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(profileM).Error
	if err != nil {
		if isUniqueConstraintViolation(err) {
			return domainerrors.ErrEmailExists.WrapMessage("email already exists in profile store")
		}
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrInvalidCountry.WrapMessage("address references an unknown country")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to save profile")
	}

	applyGenerated(profile, profileM)

	return nil
}

// Delete removes the individual record, then the profile, then the address,
// satisfying the foreign-key constraints. A profile without address or
// individual deletes fine; a missing profile yields ErrProfileNotFound so
// callers can decide whether absence matters to them.
func (repo *profileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	err := repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profileM model.ProfileModel
		if err := tx.First(&profileM, "id = ?", id).Error; err != nil {
			return err
		}

		if err := tx.Where("profile_id = ?", id).Delete(&model.IndividualModel{}).Error; err != nil {
			return err
		}

		if err := tx.Delete(&model.ProfileModel{}, "id = ?", id).Error; err != nil {
			return err
		}

		if profileM.AddressID != nil {
			if err := tx.Delete(&model.AddressModel{}, "id = ?", *profileM.AddressID).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.ErrProfileNotFound
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to delete profile")
	}

	return nil
}

// --- Mapper functions ---

// applyGenerated copies store-generated ids and timestamps back onto the
// domain entity after a write.
func applyGenerated(profile *entity.UserProfile, profileM *model.ProfileModel) {
	profile.ID = profileM.ID
	profile.CreatedAt = profileM.CreatedAt
	profile.UpdatedAt = profileM.UpdatedAt

	if profile.Address != nil && profileM.Address != nil {
		profile.Address.ID = profileM.Address.ID
		profile.Address.CreatedAt = profileM.Address.CreatedAt
		profile.Address.UpdatedAt = profileM.Address.UpdatedAt
	}
	if profile.Individual != nil && profileM.Individual != nil {
		profile.Individual.ID = profileM.Individual.ID
	}
}

// toProfileDomain converts a GORM ProfileModel to a domain UserProfile entity.
func toProfileDomain(data *model.ProfileModel) *entity.UserProfile {
	if data == nil {
		return nil
	}

	return &entity.UserProfile{
		ID:         data.ID,
		Email:      data.Email,
		FirstName:  data.FirstName,
		LastName:   data.LastName,
		Filled:     data.Filled,
		Address:    toAddressDomain(data.Address),
		Individual: toIndividualDomain(data.Individual),
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}
}

// fromProfileDomain converts a domain UserProfile entity to a GORM model.
func fromProfileDomain(data *entity.UserProfile) *model.ProfileModel {
	if data == nil {
		return nil
	}

	profileM := &model.ProfileModel{
		ID:         data.ID,
		Email:      data.Email,
		FirstName:  data.FirstName,
		LastName:   data.LastName,
		Filled:     data.Filled,
		Address:    fromAddressDomain(data.Address),
		Individual: fromIndividualDomain(data.Individual),
	}
	if profileM.Address != nil && profileM.Address.ID != uuid.Nil {
		profileM.AddressID = &profileM.Address.ID
	}
	if profileM.Individual != nil {
		profileM.Individual.ProfileID = data.ID
	}

	return profileM
}

func toAddressDomain(data *model.AddressModel) *entity.Address {
	if data == nil {
		return nil
	}

	return &entity.Address{
		ID:         data.ID,
		Line:       data.Line,
		ZipCode:    data.ZipCode,
		City:       data.City,
		State:      data.State,
		CountryID:  data.CountryID,
		Country:    toCountryDomain(data.Country),
		ArchivedAt: data.ArchivedAt,
		CreatedAt:  data.CreatedAt,
		UpdatedAt:  data.UpdatedAt,
	}
}

func fromAddressDomain(data *entity.Address) *model.AddressModel {
	if data == nil {
		return nil
	}

	return &model.AddressModel{
		ID:         data.ID,
		Line:       data.Line,
		ZipCode:    data.ZipCode,
		City:       data.City,
		State:      data.State,
		CountryID:  data.CountryID,
		ArchivedAt: data.ArchivedAt,
	}
}

func toIndividualDomain(data *model.IndividualModel) *entity.IndividualRecord {
	if data == nil {
		return nil
	}

	return &entity.IndividualRecord{
		ID:             data.ID,
		PassportNumber: data.PassportNumber,
		PhoneNumber:    data.PhoneNumber,
		VerifiedAt:     data.VerifiedAt,
		ArchivedAt:     data.ArchivedAt,
		Status:         entity.IndividualStatus(data.Status),
	}
}

func fromIndividualDomain(data *entity.IndividualRecord) *model.IndividualModel {
	if data == nil {
		return nil
	}

	return &model.IndividualModel{
		ID:             data.ID,
		PassportNumber: data.PassportNumber,
		PhoneNumber:    data.PhoneNumber,
		VerifiedAt:     data.VerifiedAt,
		ArchivedAt:     data.ArchivedAt,
		Status:         string(data.Status),
	}
}

func toCountryDomain(data *model.CountryModel) *entity.Country {
	if data == nil {
		return nil
	}

	return &entity.Country{
		ID:        data.ID,
		Name:      data.Name,
		Alpha2:    data.Alpha2,
		Alpha3:    data.Alpha3,
		Status:    data.Status,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}
