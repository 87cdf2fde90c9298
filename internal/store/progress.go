package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
)

// ProgressStore persists per-owner consonant progress.
// Records are keyed by (owner, consonant); see domain.Owner.Key.
type ProgressStore interface {
	// Get returns ErrProgressNotFound if the owner has no record for the consonant.
	Get(ctx context.Context, owner domain.Owner, consonantID uuid.UUID) (*domain.UserProgress, error)

	// ListByOwner returns the owner's records, most recently updated first.
	ListByOwner(ctx context.Context, owner domain.Owner) ([]*domain.UserProgress, error)

	// Upsert atomically inserts the record or overwrites the counters of the
	// existing (owner, consonant) record, and returns the stored row.
	Upsert(ctx context.Context, progress *domain.UserProgress) (*domain.UserProgress, error)

	// Reassign moves a record to a new owner.
	// Returns ErrProgressNotFound if the record does not exist.
	Reassign(ctx context.Context, id uuid.UUID, owner domain.Owner) error

	// Delete removes a record.
	// Returns ErrProgressNotFound if the record does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new ProgressStore instance that uses the provided transaction.
	WithTx(tx DBTX) ProgressStore
}
