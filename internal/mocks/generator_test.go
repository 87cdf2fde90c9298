package mocks_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/mocks"
	"github.com/phrazzld/silabas-api/internal/service/wordengine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerator(t *testing.T) {
	t.Parallel()

	consonant, err := domain.NewConsonant("B", "Be")
	require.NoError(t, err)

	t.Run("Default words", func(t *testing.T) {
		t.Parallel()

		mockGen := mocks.NewMockGeneratorWithDefaultWords(consonant)
		opts := wordengine.Options{ConsonantID: consonant.ID, SyllableCount: 2}

		words, err := mockGen.Generate(context.Background(), opts)

		assert.NoError(t, err)
		assert.Len(t, words, 3)
		for _, w := range words {
			assert.Equal(t, consonant.ID, w.ConsonantID)
			assert.Same(t, consonant, w.Consonant)
		}

		assert.Equal(t, 1, mockGen.GenerateCalls.Count)
		last, ok := mockGen.LastOptions()
		require.True(t, ok)
		assert.Equal(t, opts, last)
	})

	t.Run("Error case", func(t *testing.T) {
		t.Parallel()

		wantErr := errors.New("boom")
		mockGen := mocks.NewMockGeneratorWithError(wantErr)

		words, err := mockGen.Generate(context.Background(), wordengine.Options{})

		assert.ErrorIs(t, err, wantErr)
		assert.Nil(t, words)
	})

	t.Run("Custom function and reset", func(t *testing.T) {
		t.Parallel()

		mockGen := &mocks.MockGenerator{
			GenerateFn: func(ctx context.Context, opts wordengine.Options) ([]*domain.Word, error) {
				w, err := domain.NewWord("mamá", 2, 0, opts.ConsonantID)
				return []*domain.Word{w}, err
			},
		}

		words, err := mockGen.Generate(context.Background(), wordengine.Options{ConsonantID: consonant.ID})
		require.NoError(t, err)
		assert.Equal(t, "mamá", words[0].Text)
		assert.Equal(t, domain.MinDifficulty, words[0].Difficulty)

		mockGen.Reset()
		assert.Equal(t, 0, mockGen.GenerateCalls.Count)
		_, ok := mockGen.LastOptions()
		assert.False(t, ok)
	})
}
