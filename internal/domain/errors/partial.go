package errors

import "fmt"

// PartialCreateError reports that the identity provider created the account
// but a follow-up sub-step (role assignment) failed. It carries the orphaned
// account id so the orchestrator can compensate precisely instead of
// retrying blindly.
type PartialCreateError struct {
	AccountID string
	Cause     error
}

// Error implements the error interface.
func (e *PartialCreateError) Error() string {
	return fmt.Sprintf("identity account %s created but left incomplete: %v", e.AccountID, e.Cause)
}

// Unwrap exposes the underlying sub-step failure.
func (e *PartialCreateError) Unwrap() error {
	return e.Cause
}

// CompensationError carries the identifiers of records that compensation
// failed to remove. It is surfaced as compensation_incomplete so an operator
// process can reconcile the orphans later; it is never silently swallowed.
type CompensationError struct {
	ProfileID string // Profile store id left behind, empty when cleaned up.
	AccountID string // Identity provider id left behind, empty when cleaned up.
	Cause     error
}

// Error implements the error interface.
func (e *CompensationError) Error() string {
	return fmt.Sprintf("compensation incomplete (orphan profile=%q account=%q): %v",
		e.ProfileID, e.AccountID, e.Cause)
}

// Unwrap exposes the failing compensating call's error.
func (e *CompensationError) Unwrap() error {
	return e.Cause
}
