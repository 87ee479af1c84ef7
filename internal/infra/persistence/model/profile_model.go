// Package model holds the GORM-specific structs mirroring the relational
// schema. Domain entities never leak gorm tags; mapping happens in the
// postgres package.
package model

import (
	"time"

	"github.com/google/uuid"
)

// ProfileModel mirrors the 'user_profiles' table. PostgreSQL generates UUIDs
// via uuid_generate_v7().
type ProfileModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	FirstName string    `gorm:"type:varchar(100)"`
	LastName  string    `gorm:"type:varchar(100)"`
	Filled    bool      `gorm:"not null;default:false"`
	AddressID *uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time

	Address    *AddressModel    `gorm:"foreignKey:AddressID"`
	Individual *IndividualModel `gorm:"foreignKey:ProfileID"`
}

// TableName explicitly sets the table name for GORM.
func (ProfileModel) TableName() string {
	return "user_profiles"
}

// AddressModel mirrors the 'addresses' table.
type AddressModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Line       string    `gorm:"column:address;type:text"`
	ZipCode    string    `gorm:"type:varchar(32)"`
	City       string    `gorm:"type:varchar(128)"`
	State      string    `gorm:"type:varchar(128)"`
	CountryID  *int
	ArchivedAt time.Time `gorm:"not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Country *CountryModel `gorm:"foreignKey:CountryID"`
}

// TableName explicitly sets the table name for GORM.
func (AddressModel) TableName() string {
	return "addresses"
}

// IndividualModel mirrors the 'individuals' table. ProfileID references
// user_profiles.id.
type IndividualModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	ProfileID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	PassportNumber string    `gorm:"type:varchar(64)"`
	PhoneNumber    string    `gorm:"type:varchar(32)"`
	VerifiedAt     time.Time `gorm:"not null"`
	ArchivedAt     time.Time `gorm:"not null"`
	Status         string    `gorm:"type:varchar(16);not null"`
}

// TableName explicitly sets the table name for GORM.
func (IndividualModel) TableName() string {
	return "individuals"
}

// CountryModel mirrors the read-only 'countries' lookup table.
type CountryModel struct {
	ID        int    `gorm:"primary_key"`
	Name      string `gorm:"type:varchar(128);not null"`
	Alpha2    string `gorm:"type:char(2)"`
	Alpha3    string `gorm:"type:char(3)"`
	Status    string `gorm:"type:varchar(16)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (CountryModel) TableName() string {
	return "countries"
}
