package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/service/wordengine"
)

// MockGenerator implements wordengine.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, opts wordengine.Options) ([]*domain.Word, error)

	// Default response values
	Words []*domain.Word
	Err   error

	// Call tracking for verification
	GenerateCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Generate was called
		Count int

		// Options contains all options passed to Generate calls
		Options []wordengine.Options
	}
}

var _ wordengine.Generator = (*MockGenerator)(nil)

// Generate implements the wordengine.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, opts wordengine.Options) ([]*domain.Word, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Options = append(m.GenerateCalls.Options, opts)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, opts)
	}
	return m.Words, m.Err
}

// NewMockGeneratorWithWords creates a MockGenerator that returns the specified words
func NewMockGeneratorWithWords(words []*domain.Word) *MockGenerator {
	return &MockGenerator{Words: words}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// NewMockGeneratorWithDefaultWords creates a MockGenerator with a few
// two-syllable words for the given consonant.
func NewMockGeneratorWithDefaultWords(consonant *domain.Consonant) *MockGenerator {
	words := make([]*domain.Word, 0, 3)
	for _, text := range []string{"bebé", "boca", "bota"} {
		w, _ := domain.NewWord(text, 2, 2, consonant.ID)
		w.Consonant = consonant
		words = append(words, w)
	}
	return &MockGenerator{Words: words}
}

// Reset resets the call tracking state
func (m *MockGenerator) Reset() {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()

	m.GenerateCalls.Count = 0
	m.GenerateCalls.Options = nil
}

// LastOptions returns the options of the most recent Generate call.
func (m *MockGenerator) LastOptions() (wordengine.Options, bool) {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()

	if len(m.GenerateCalls.Options) == 0 {
		return wordengine.Options{}, false
	}
	return m.GenerateCalls.Options[len(m.GenerateCalls.Options)-1], true
}
