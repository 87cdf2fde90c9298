package wordengine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryTexts(entries []Entry) []string {
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, e.Text)
	}
	return texts
}

func TestDefaultDictionaryCoversSeedLetters(t *testing.T) {
	for _, letter := range []string{"B", "C", "D", "F", "G", "L", "M", "N", "P", "R", "S", "T"} {
		groups, ok := DefaultDictionary[letter]
		require.True(t, ok, letter)
		assert.Len(t, groups, 3, letter)
	}
}

func TestCandidates(t *testing.T) {
	t.Run("lookup is case-insensitive", func(t *testing.T) {
		entries := DefaultDictionary.Candidates("b", 1, 0)
		assert.Equal(t, []string{"ba", "be", "bi", "bo", "bu"}, entryTexts(entries))
		for _, e := range entries {
			assert.Equal(t, 1, e.Syllables)
			assert.Equal(t, 1, e.Difficulty)
		}
	})

	t.Run("all groups in syllable order", func(t *testing.T) {
		entries := DefaultDictionary.Candidates("B", 0, 0)
		require.Len(t, entries, 15)
		assert.Equal(t, "ba", entries[0].Text)
		assert.Equal(t, 3, entries[14].Syllables)
	})

	t.Run("difficulty is an upper bound", func(t *testing.T) {
		entries := DefaultDictionary.Candidates("B", 0, 3)
		for _, e := range entries {
			assert.LessOrEqual(t, e.Difficulty, 3)
		}
		assert.NotContains(t, entryTexts(entries), "burbujas")
		assert.Contains(t, entryTexts(entries), "banana")
	})

	t.Run("unknown letter", func(t *testing.T) {
		assert.Empty(t, DefaultDictionary.Candidates("Ñ", 0, 0))
	})

	t.Run("missing syllable group", func(t *testing.T) {
		assert.Empty(t, DefaultDictionary.Candidates("B", 4, 0))
	})
}
