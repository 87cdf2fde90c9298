package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
)

// WordFilter narrows a word listing. Zero values disable a filter.
type WordFilter struct {
	ConsonantID uuid.UUID
	// Syllables matches the exact syllable count.
	Syllables int
	// MaxDifficulty matches words at or below the given difficulty.
	MaxDifficulty int
	// Limit caps the number of rows returned.
	Limit int
}

// WordStore persists practice words.
type WordStore interface {
	// Create saves a new word.
	// Returns ErrWordExists if a word with the same text exists.
	// Returns ErrInvalidEntity if the consonant does not exist.
	Create(ctx context.Context, word *domain.Word) error

	// List returns the words matching filter ordered by text.
	List(ctx context.Context, filter WordFilter) ([]*domain.Word, error)

	// WithTx returns a new WordStore instance that uses the provided transaction.
	WithTx(tx DBTX) WordStore
}
