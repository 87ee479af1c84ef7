// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"enroll/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrProfileNotFound is a domain-specific error returned when a profile is not found.
var ErrProfileNotFound = errors.New("profile not found")

// ErrCountryNotFound is returned when a referenced country id does not exist.
var ErrCountryNotFound = errors.New("country not found")

// ProfileRepository defines the standard operations for profile persistence.
// Create is locally atomic: the address, profile and individual rows commit
// together or not at all. This is ordinary ACID scope inside the store, not
// the cross-store saga.
type ProfileRepository interface {
	// Create persists a new profile entity together with its owned address
	// and individual record. The entity is updated in place with generated
	// ids and timestamps.
	Create(ctx context.Context, profile *entity.UserProfile) error

	// FindByID retrieves a single profile with its address (and country) and
	// individual record eagerly resolved.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.UserProfile, error)

	// FindByEmail retrieves a single profile by email, eagerly resolved.
	FindByEmail(ctx context.Context, email string) (*entity.UserProfile, error)

	// ExistsByEmail reports whether a profile with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Save writes back a modified profile including its owned records.
	Save(ctx context.Context, profile *entity.UserProfile) error

	// Delete removes the profile and its owned individual record and address
	// in an order that satisfies the foreign-key constraints. Deleting an id
	// that no longer exists returns ErrProfileNotFound; compensating callers
	// treat that as already done.
	Delete(ctx context.Context, id uuid.UUID) error
}

// CountryRepository provides read access to the countries lookup table.
// Countries are seeded out-of-band and never written by this service.
type CountryRepository interface {
	// FindByID retrieves a country row, or ErrCountryNotFound.
	FindByID(ctx context.Context, id int) (*entity.Country, error)
}
