package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// UserProgress records how many words of a consonant an owner has completed.
// There is one record per (owner, consonant).
type UserProgress struct {
	ID             uuid.UUID  `json:"id"`
	UserID         *uuid.UUID `json:"userId"`
	SessionID      string     `json:"sessionId"`
	ConsonantID    uuid.UUID  `json:"consonantId"`
	WordsCompleted int        `json:"wordsCompleted"`
	TotalWords     int        `json:"totalWords"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewUserProgress creates a validated progress record for owner.
func NewUserProgress(owner Owner, consonantID uuid.UUID, wordsCompleted, totalWords int) (*UserProgress, error) {
	now := time.Now().UTC()
	p := &UserProgress{
		ID:             uuid.New(),
		UserID:         owner.UserID,
		SessionID:      owner.SessionID,
		ConsonantID:    consonantID,
		WordsCompleted: wordsCompleted,
		TotalWords:     totalWords,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Owner returns the owner of the record.
func (p *UserProgress) Owner() Owner {
	return Owner{UserID: p.UserID, SessionID: p.SessionID}
}

// Validate checks the record. wordsCompleted may exceed totalWords; callers
// own that invariant.
func (p *UserProgress) Validate() error {
	verr := &ValidationError{}
	if p.ID == uuid.Nil {
		verr.Add("id", "is required")
	}
	if p.ConsonantID == uuid.Nil {
		verr.Add("consonantId", "is required")
	}
	if !p.Owner().IsUser() && p.SessionID == "" {
		verr.Add("sessionId", "is required for anonymous progress")
	}
	if p.WordsCompleted < 0 {
		verr.Add("wordsCompleted", "must not be negative")
	}
	if p.TotalWords < 0 {
		verr.Add("totalWords", "must not be negative")
	}
	return verr.OrNil()
}

// CompletionPercentage returns wordsCompleted/totalWords as a rounded percentage.
func (p *UserProgress) CompletionPercentage() int {
	return Percentage(p.WordsCompleted, p.TotalWords)
}

// IsComplete reports whether every word has been completed.
func (p *UserProgress) IsComplete() bool {
	return p.TotalWords > 0 && p.WordsCompleted == p.TotalWords
}

// Percentage returns part/whole*100 rounded half away from zero, or 0 when whole is 0.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
