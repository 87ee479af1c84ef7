package repository

import "context"

// TransactionManager defines the interface for managing database transactions.
// This allows the use case layer to compose multi-step reads and writes
// without depending on a specific DB driver like GORM.
type TransactionManager interface {
	// Execute runs a function within a database transaction. If the function
	// returns an error, the transaction is rolled back, otherwise committed.
	// All repository operations within the function use the same transaction.
	Execute(ctx context.Context, fn func(repos RepositoryFactory) error) error
}

// RepositoryFactory provides repository instances bound to one transaction.
type RepositoryFactory interface {
	// ProfileRepo returns a ProfileRepository bound to the current transaction.
	ProfileRepo() ProfileRepository

	// CountryRepo returns a CountryRepository bound to the current transaction.
	CountryRepo() CountryRepository
}
