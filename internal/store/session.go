package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
)

// ActivitySessionStore persists activity sessions.
//
// Loaded sessions carry their Activity and its Consonant.
type ActivitySessionStore interface {
	// CreatePending inserts the session unless the owner already has a pending
	// session for the same activity, and returns the pending session that is
	// stored. The returned ID differs from session.ID when one was reused.
	CreatePending(ctx context.Context, session *domain.ActivitySession) (*domain.ActivitySession, error)

	// GetByID returns ErrSessionNotFound if the session does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ActivitySession, error)

	// UpdateProgress writes the in-flight counters of a pending session.
	// Returns ErrSessionCompleted if the session is already completed and
	// ErrSessionNotFound if it does not exist.
	UpdateProgress(ctx context.Context, session *domain.ActivitySession) error

	// Complete writes the final state of a session only while it is pending.
	// Returns ErrSessionCompleted if another caller completed it first and
	// ErrSessionNotFound if it does not exist.
	Complete(ctx context.Context, session *domain.ActivitySession) error

	// ListCompleted returns the owner's completed sessions, newest completion first.
	ListCompleted(ctx context.Context, owner domain.Owner) ([]*domain.ActivitySession, error)

	// ListPending returns the owner's pending sessions, newest start first.
	ListPending(ctx context.Context, owner domain.Owner) ([]*domain.ActivitySession, error)

	// CountCompleted returns how many sessions the owner has completed.
	CountCompleted(ctx context.Context, owner domain.Owner) (int, error)

	// WithTx returns a new ActivitySessionStore instance that uses the provided transaction.
	WithTx(tx DBTX) ActivitySessionStore
}
