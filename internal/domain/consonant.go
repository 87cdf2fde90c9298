package domain

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// spanishUpper upper-cases letters with Spanish casing rules (ñ -> Ñ).
var spanishUpper = cases.Upper(language.Spanish)

// Consonant is a single-letter phonics unit a learner practices.
type Consonant struct {
	ID        uuid.UUID `json:"id"`
	Letter    string    `json:"letter"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeLetter returns the canonical (upper-case) form of a consonant letter.
func NormalizeLetter(letter string) string {
	return spanishUpper.String(letter)
}

// NewConsonant creates a validated Consonant with a fresh ID.
// The letter is normalized to upper case.
func NewConsonant(letter, name string) (*Consonant, error) {
	now := time.Now().UTC()
	c := &Consonant{
		ID:        uuid.New(),
		Letter:    NormalizeLetter(letter),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks that the consonant has an ID, a single letter and a name.
func (c *Consonant) Validate() error {
	verr := &ValidationError{}
	if c.ID == uuid.Nil {
		verr.Add("id", "is required")
	}
	if utf8.RuneCountInString(c.Letter) != 1 {
		verr.Add("letter", "must be exactly one character")
	} else if r, _ := utf8.DecodeRuneInString(c.Letter); !unicode.IsLetter(r) {
		verr.Add("letter", "must be a letter")
	}
	if c.Name == "" {
		verr.Add("name", "is required")
	}
	return verr.OrNil()
}
