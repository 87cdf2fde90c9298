package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
)

// ActivityStore persists activity templates.
type ActivityStore interface {
	// GetOrCreate atomically inserts the activity unless one with the same
	// (type, consonant, difficulty) exists, and returns the stored activity.
	GetOrCreate(ctx context.Context, activity *domain.Activity) (*domain.Activity, error)

	// GetByID returns ErrActivityNotFound if the activity does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)

	// WithTx returns a new ActivityStore instance that uses the provided transaction.
	WithTx(tx DBTX) ActivityStore
}
