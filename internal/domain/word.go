package domain

import (
	"time"

	"github.com/google/uuid"
)

// Word bounds.
const (
	MinSyllables  = 1
	MaxSyllables  = 10
	MinDifficulty = 1
	MaxDifficulty = 5
)

// Word is a practice word belonging to a consonant.
type Word struct {
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text"`
	Syllables   int        `json:"syllables"`
	Difficulty  int        `json:"difficulty"`
	ConsonantID uuid.UUID  `json:"consonantId"`
	Consonant   *Consonant `json:"consonant,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// NewWord creates a validated Word with a fresh ID.
// A zero difficulty defaults to MinDifficulty.
func NewWord(text string, syllables, difficulty int, consonantID uuid.UUID) (*Word, error) {
	if difficulty == 0 {
		difficulty = MinDifficulty
	}
	now := time.Now().UTC()
	w := &Word{
		ID:          uuid.New(),
		Text:        text,
		Syllables:   syllables,
		Difficulty:  difficulty,
		ConsonantID: consonantID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks the word's text, syllable count, difficulty and consonant.
func (w *Word) Validate() error {
	verr := &ValidationError{}
	if w.ID == uuid.Nil {
		verr.Add("id", "is required")
	}
	if w.Text == "" {
		verr.Add("text", "is required")
	}
	if w.Syllables < MinSyllables || w.Syllables > MaxSyllables {
		verr.Add("syllables", "must be between 1 and 10")
	}
	if w.Difficulty < MinDifficulty || w.Difficulty > MaxDifficulty {
		verr.Add("difficulty", "must be between 1 and 5")
	}
	if w.ConsonantID == uuid.Nil {
		verr.Add("consonantId", "is required")
	}
	return verr.OrNil()
}
