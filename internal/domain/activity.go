package domain

import (
	"maps"
	"time"

	"github.com/google/uuid"
)

// ActivityType identifies a kind of practice exercise.
type ActivityType string

// Activity types.
const (
	ActivityConsonantPractice ActivityType = "CONSONANT_PRACTICE"
	ActivitySyllableGame      ActivityType = "SYLLABLE_GAME"
	ActivityWordRecognition   ActivityType = "WORD_RECOGNITION"
)

// Valid reports whether t is a known activity type.
func (t ActivityType) Valid() bool {
	switch t {
	case ActivityConsonantPractice, ActivitySyllableGame, ActivityWordRecognition:
		return true
	default:
		return false
	}
}

// Metadata is a free-form JSON object attached to activities and sessions.
type Metadata map[string]any

// Activity is the (type, consonant, difficulty) template of an exercise.
type Activity struct {
	ID          uuid.UUID    `json:"id"`
	Type        ActivityType `json:"type"`
	ConsonantID uuid.UUID    `json:"consonantId"`
	Consonant   *Consonant   `json:"consonant,omitempty"`
	Difficulty  int          `json:"difficulty"`
	Metadata    Metadata     `json:"metadata"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// NewActivity creates a validated Activity for a consonant. The consonant's
// letter and name are recorded in the metadata.
func NewActivity(activityType ActivityType, consonant *Consonant, difficulty int) (*Activity, error) {
	if consonant == nil {
		return nil, NewValidationError("consonantId", "is required", nil)
	}
	a := &Activity{
		ID:          uuid.New(),
		Type:        activityType,
		ConsonantID: consonant.ID,
		Consonant:   consonant,
		Difficulty:  difficulty,
		Metadata: Metadata{
			"consonantLetter": consonant.Letter,
			"consonantName":   consonant.Name,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the activity's type, consonant and difficulty.
func (a *Activity) Validate() error {
	verr := &ValidationError{}
	if a.ID == uuid.Nil {
		verr.Add("id", "is required")
	}
	if !a.Type.Valid() {
		verr.Add("activityType", "must be one of CONSONANT_PRACTICE SYLLABLE_GAME WORD_RECOGNITION")
	}
	if a.ConsonantID == uuid.Nil {
		verr.Add("consonantId", "is required")
	}
	if a.Difficulty < MinDifficulty || a.Difficulty > MaxDifficulty {
		verr.Add("difficulty", "must be between 1 and 5")
	}
	return verr.OrNil()
}

// SessionStatus is the lifecycle state of an ActivitySession.
type SessionStatus string

// Session states. Completed is terminal.
const (
	SessionPending   SessionStatus = "PENDING"
	SessionCompleted SessionStatus = "COMPLETED"
)

// ActivitySession is one learner's attempt at an Activity. It is Pending
// until CompletedAt is set, after which its statistics are frozen.
type ActivitySession struct {
	ID           uuid.UUID  `json:"id"`
	UserID       *uuid.UUID `json:"userId"`
	SessionID    string     `json:"sessionId"`
	ActivityID   uuid.UUID  `json:"activityId"`
	Activity     *Activity  `json:"activity,omitempty"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	Score        int        `json:"score"`
	TimeSpent    int        `json:"timeSpent"`
	WordsCorrect int        `json:"wordsCorrect"`
	WordsTotal   int        `json:"wordsTotal"`
	Metadata     Metadata   `json:"metadata"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewActivitySession creates a Pending session for owner.
func NewActivitySession(owner Owner, activityID uuid.UUID, now time.Time) *ActivitySession {
	now = now.UTC()
	return &ActivitySession{
		ID:         uuid.New(),
		UserID:     owner.UserID,
		SessionID:  owner.SessionID,
		ActivityID: activityID,
		StartedAt:  now,
		Metadata:   Metadata{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Owner returns the session's owner.
func (s *ActivitySession) Owner() Owner {
	return Owner{UserID: s.UserID, SessionID: s.SessionID}
}

// Status returns the lifecycle state.
func (s *ActivitySession) Status() SessionStatus {
	if s.CompletedAt != nil {
		return SessionCompleted
	}
	return SessionPending
}

// IsCompleted reports whether the session reached its terminal state.
func (s *ActivitySession) IsCompleted() bool {
	return s.CompletedAt != nil
}

// AccessibleBy reports whether the caller may read or mutate the session.
// Sessions without an account owner are open to any caller.
func (s *ActivitySession) AccessibleBy(caller Session) bool {
	if s.UserID == nil || *s.UserID == uuid.Nil {
		return true
	}
	a, ok := AsAuthenticated(caller)
	return ok && a.UserID == *s.UserID
}

// ProgressUpdate is an in-flight progress report for a Pending session.
type ProgressUpdate struct {
	WordsCorrect int
	WordsTotal   int
	Score        *int
	TimeSpent    *int
	Metadata     Metadata
}

// ApplyProgress records an in-flight update. Score and TimeSpent are reset to
// zero when omitted and Metadata replaces any prior value.
func (s *ActivitySession) ApplyProgress(u ProgressUpdate, now time.Time) error {
	if s.IsCompleted() {
		return ErrSessionCompleted
	}
	s.WordsCorrect = u.WordsCorrect
	s.WordsTotal = u.WordsTotal
	s.Score = derefOrZero(u.Score)
	s.TimeSpent = derefOrZero(u.TimeSpent)
	s.Metadata = u.Metadata
	if s.Metadata == nil {
		s.Metadata = Metadata{}
	}
	s.UpdatedAt = now.UTC()
	return nil
}

// CompletionResult holds the final statistics of a session.
type CompletionResult struct {
	FinalScore   int
	TimeSpent    int
	WordsCorrect int
	WordsTotal   int
	Metadata     Metadata
}

// Complete moves the session to its terminal state, freezing the statistics
// and merging metadata as prior, then supplied, then completedAt.
func (s *ActivitySession) Complete(r CompletionResult, now time.Time) error {
	if s.IsCompleted() {
		return ErrSessionCompleted
	}
	now = now.UTC()
	s.CompletedAt = &now
	s.Score = r.FinalScore
	s.TimeSpent = r.TimeSpent
	s.WordsCorrect = r.WordsCorrect
	s.WordsTotal = r.WordsTotal
	s.Metadata = MergeMetadata(s.Metadata, r.Metadata, now)
	s.UpdatedAt = now
	return nil
}

// MergeMetadata returns a new map holding prior, then supplied, then the
// completion timestamp in RFC 3339 form with milliseconds.
func MergeMetadata(prior, supplied Metadata, completedAt time.Time) Metadata {
	merged := make(Metadata, len(prior)+len(supplied)+1)
	maps.Copy(merged, prior)
	maps.Copy(merged, supplied)
	merged["completedAt"] = completedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return merged
}

func derefOrZero(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}
