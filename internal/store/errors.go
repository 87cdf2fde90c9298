package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a word with the same text).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored or violates a foreign key or check constraint.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when a conditional update matched no rows
	// although the target exists.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed is returned when a database transaction fails to commit.
	ErrTransactionFailed = errors.New("transaction failed")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist in the store.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrConsonantNotFound indicates that the requested consonant does not exist.
	ErrConsonantNotFound = fmt.Errorf("%w: consonant", ErrNotFound)

	// ErrProgressNotFound indicates that no progress record exists for the owner and consonant.
	ErrProgressNotFound = fmt.Errorf("%w: user progress", ErrNotFound)

	// ErrActivityNotFound indicates that the requested activity does not exist.
	ErrActivityNotFound = fmt.Errorf("%w: activity", ErrNotFound)

	// ErrSessionNotFound indicates that the requested activity session does not exist.
	ErrSessionNotFound = fmt.Errorf("%w: activity session", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a user with the given email already exists.
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrLetterExists indicates that a consonant with the given letter already exists.
	ErrLetterExists = fmt.Errorf("%w: consonant letter", ErrDuplicate)

	// ErrWordExists indicates that a word with the given text already exists.
	ErrWordExists = fmt.Errorf("%w: word text", ErrDuplicate)

	// ErrSessionCompleted is returned by conditional session updates when the
	// session has already reached its terminal state.
	ErrSessionCompleted = fmt.Errorf("%w: activity session already completed", ErrUpdateFailed)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
// Entity-specific errors wrap ErrNotFound, so a single check covers them.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "word", "activity_session")
	Operation string // The operation that failed (e.g., "create", "upsert")
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf(
			"%s operation on %s failed: %s: %v",
			e.Operation,
			e.Entity,
			e.Message,
			e.Err,
		)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, e.Entity, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with the given entity, operation, message, and wrapped error.
func NewStoreError(entity, operation, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
