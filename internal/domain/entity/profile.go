// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// UserProfile is the person record owned by the local relational store.
// It carries the business-domain data for one registered individual; the
// matching credential lives in the external identity provider and is only
// referenced by email.
type UserProfile struct {
	ID         uuid.UUID         // Store-assigned identifier.
	Email      string            // Unique login email, shared with the identity provider.
	FirstName  string            // Given name.
	LastName   string            // Family name.
	Filled     bool              // True once the profile carries complete registration data.
	Address    *Address          // Optional postal address. Nil when never supplied.
	Individual *IndividualRecord // Optional KYC sub-record. Nil when never supplied.
	CreatedAt  time.Time         // Timestamp of profile creation.
	UpdatedAt  time.Time         // Timestamp of the last modification.
}

// Address is the postal address owned by exactly one profile.
type Address struct {
	ID         uuid.UUID // Store-assigned identifier.
	Line       string    // Free-text street address.
	ZipCode    string
	City       string
	State      string
	CountryID  *int      // Reference into the read-only countries lookup table. Nil when unknown.
	Country    *Country  // Resolved country row, populated on reads.
	ArchivedAt time.Time // Kept for parity with the archival process that sweeps stale addresses.
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// IndividualStatus is the lifecycle state of a KYC record.
type IndividualStatus string

const (
	IndividualStatusPending  IndividualStatus = "PENDING"
	IndividualStatusVerified IndividualStatus = "VERIFIED"
	IndividualStatusArchived IndividualStatus = "ARCHIVED"
)

// IsValid checks if the status is a known value.
func (s IndividualStatus) IsValid() bool {
	switch s {
	case IndividualStatusPending, IndividualStatusVerified, IndividualStatusArchived:
		return true
	default:
		return false
	}
}

// IndividualRecord holds the KYC data owned by exactly one profile.
type IndividualRecord struct {
	ID             uuid.UUID // Store-assigned identifier.
	PassportNumber string
	PhoneNumber    string
	VerifiedAt     time.Time
	ArchivedAt     time.Time
	Status         IndividualStatus
}

// Country is a lookup-only row. It is never created or mutated by this
// service; the table is seeded out-of-band.
type Country struct {
	ID        int
	Name      string
	Alpha2    string
	Alpha3    string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
