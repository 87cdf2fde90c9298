package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
)

// ConsonantStore persists the consonant catalog.
type ConsonantStore interface {
	// Create saves a new consonant.
	// Returns ErrLetterExists if the letter is already present.
	Create(ctx context.Context, consonant *domain.Consonant) error

	// CreateIfAbsent inserts the consonant unless its letter already exists.
	// It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, consonant *domain.Consonant) (bool, error)

	// GetByID returns ErrConsonantNotFound if the consonant does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Consonant, error)

	// GetByLetter looks a consonant up by its normalized letter.
	// Returns ErrConsonantNotFound if the letter does not exist.
	GetByLetter(ctx context.Context, letter string) (*domain.Consonant, error)

	// List returns all consonants ordered by letter.
	List(ctx context.Context) ([]*domain.Consonant, error)

	// WithTx returns a new ConsonantStore instance that uses the provided transaction.
	WithTx(tx DBTX) ConsonantStore
}
