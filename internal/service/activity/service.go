// Package activity runs practice activities: it deduplicates Activity
// templates, drives the pending to completed lifecycle of activity sessions,
// mirrors session results into per-consonant progress and awards achievements.
package activity

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
)

// Defaults applied by Start.
const (
	DefaultActivityType = domain.ActivityConsonantPractice
	DefaultDifficulty   = 1
)

// StartRequest describes the activity a caller wants to practice.
// SessionID is the client session id and is required for anonymous callers.
type StartRequest struct {
	ConsonantID  uuid.UUID
	SessionID    string
	ActivityType domain.ActivityType
	Difficulty   int
}

// StartResult is the pending session of a started activity.
type StartResult struct {
	Session  *domain.ActivitySession
	Activity *domain.Activity
	// Resumed is true when an existing pending session was returned.
	Resumed bool
}

// ProgressStats are the derived statistics of an in-flight session.
type ProgressStats struct {
	CompletionPercentage int  `json:"completionPercentage"`
	IsCompleted          bool `json:"isCompleted"`
	WordsCorrect         int  `json:"wordsCorrect"`
	WordsTotal           int  `json:"wordsTotal"`
	Score                int  `json:"score"`
	TimeSpent            int  `json:"timeSpent"`
	TimeSpentMinutes     int  `json:"timeSpentMinutes"`
}

// ProgressResult is a session with its statistics.
type ProgressResult struct {
	Session *domain.ActivitySession
	Stats   ProgressStats
}

// CompleteResult is a completed session with its final statistics and the
// achievements it earned.
type CompleteResult struct {
	Session      *domain.ActivitySession
	Stats        domain.CompletionStats
	Achievements []domain.Achievement
}

// Service manages activity sessions.
//
// Every operation takes the caller's domain.Session. Sessions owned by an
// account can only be read or changed by that account; anonymous sessions
// are open to any caller.
type Service interface {
	// Start finds or creates the Activity for (type, consonant, difficulty) and
	// returns the caller's pending session for it, creating one if needed.
	//
	// Returns store.ErrConsonantNotFound when the consonant does not exist and a
	// *domain.ValidationError for an unknown type, an out of range difficulty or
	// a missing session id for anonymous callers.
	Start(ctx context.Context, caller domain.Session, req StartRequest) (*StartResult, error)

	// GetProgress returns a session and its statistics.
	//
	// Returns store.ErrSessionNotFound or service.ErrNotOwned.
	GetProgress(ctx context.Context, caller domain.Session, sessionID uuid.UUID) (*ProgressResult, error)

	// UpdateProgress records in-flight results of a pending session and
	// mirrors wordsCorrect/wordsTotal into the caller's progress for the
	// activity's consonant.
	//
	// Returns store.ErrSessionNotFound, service.ErrNotOwned or
	// service.ErrSessionCompleted.
	UpdateProgress(
		ctx context.Context,
		caller domain.Session,
		sessionID uuid.UUID,
		update domain.ProgressUpdate,
	) (*ProgressResult, error)

	// Complete freezes a pending session with its final results, mirrors them
	// into progress in the same transaction and evaluates achievements.
	//
	// Checks run in this order: store.ErrSessionNotFound,
	// service.ErrSessionCompleted, service.ErrNotOwned. Of two concurrent
	// completions exactly one succeeds; the other gets ErrSessionCompleted.
	Complete(
		ctx context.Context,
		caller domain.Session,
		sessionID uuid.UUID,
		result domain.CompletionResult,
	) (*CompleteResult, error)
}
