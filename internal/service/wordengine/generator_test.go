package wordengine

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/sqlstore"
	"github.com/phrazzld/silabas-api/internal/store"
	"github.com/phrazzld/silabas-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type generatorFixture struct {
	db        *sqlstore.DB
	words     *sqlstore.WordStore
	generator *generator
}

func newGeneratorFixture(t *testing.T) generatorFixture {
	t.Helper()
	db := testdb.Open(t)
	words := sqlstore.NewWordStore(db, nil)
	return generatorFixture{
		db:        db,
		words:     words,
		generator: newGenerator(sqlstore.NewConsonantStore(db, nil), words, DefaultDictionary, nil),
	}
}

func texts(words []*domain.Word) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		out = append(out, w.Text)
	}
	return out
}

func TestOptionsValidate(t *testing.T) {
	opts := Options{ConsonantID: uuid.New()}
	require.NoError(t, opts.Validate())
	assert.Equal(t, DefaultMaxWords, opts.MaxWords)

	tests := []struct {
		name  string
		opts  Options
		field string
	}{
		{"missing consonant", Options{MaxWords: 5}, "consonantId"},
		{"too many syllables", Options{ConsonantID: uuid.New(), SyllableCount: 6}, "syllableCount"},
		{"difficulty too high", Options{ConsonantID: uuid.New(), Difficulty: 6}, "difficulty"},
		{"too many words", Options{ConsonantID: uuid.New(), MaxWords: 16}, "maxWords"},
		{"negative words", Options{ConsonantID: uuid.New(), MaxWords: -1}, "maxWords"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			require.ErrorIs(t, err, domain.ErrValidation)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Fields[0].Field)
		})
	}
}

func TestGenerateBackfillsFromDictionary(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	b := testdb.SeedConsonant(t, f.db, "B", "Be")

	pool := map[string]bool{}
	for _, e := range DefaultDictionary.Candidates("B", 0, 0) {
		pool[e.Text] = true
	}

	words, err := f.generator.Generate(ctx, Options{ConsonantID: b.ID, MaxWords: 5})
	require.NoError(t, err)
	require.Len(t, words, 5)

	seen := map[string]bool{}
	for _, w := range words {
		assert.True(t, pool[w.Text], "%q is not a dictionary word", w.Text)
		assert.False(t, seen[w.Text], "duplicate %q", w.Text)
		seen[w.Text] = true
		assert.Equal(t, b.ID, w.ConsonantID)
		require.NotNil(t, w.Consonant)
		assert.Equal(t, "B", w.Consonant.Letter)
	}

	stored, err := f.words.List(ctx, store.WordFilter{ConsonantID: b.ID})
	require.NoError(t, err)
	assert.ElementsMatch(t, texts(words), texts(stored))

	// The next call tops the stock up to the full dictionary.
	words, err = f.generator.Generate(ctx, Options{ConsonantID: b.ID, MaxWords: 15})
	require.NoError(t, err)
	assert.Len(t, words, 15)

	stored, err = f.words.List(ctx, store.WordFilter{ConsonantID: b.ID})
	require.NoError(t, err)
	assert.Len(t, stored, 15)
}

func TestGenerateFilters(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	m := testdb.SeedConsonant(t, f.db, "M", "Eme")

	words, err := f.generator.Generate(ctx, Options{ConsonantID: m.ID, SyllableCount: 2})
	require.NoError(t, err)
	assert.Len(t, words, 5, "only five two-syllable words exist for M")
	for _, w := range words {
		assert.Equal(t, 2, w.Syllables)
	}

	words, err = f.generator.Generate(ctx, Options{ConsonantID: m.ID, Difficulty: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, words)
	for _, w := range words {
		assert.LessOrEqual(t, w.Difficulty, 3)
	}
	assert.NotContains(t, texts(words), "mariposa")
}

func TestGenerateWithoutDictionaryEntry(t *testing.T) {
	f := newGeneratorFixture(t)
	enie := testdb.SeedConsonant(t, f.db, "Ñ", "Eñe")

	words, err := f.generator.Generate(context.Background(), Options{ConsonantID: enie.ID})
	require.NoError(t, err)
	assert.Empty(t, words)
}

func TestGenerateUnknownConsonant(t *testing.T) {
	f := newGeneratorFixture(t)

	_, err := f.generator.Generate(context.Background(), Options{ConsonantID: uuid.New()})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGenerateRejectsInvalidOptions(t *testing.T) {
	f := newGeneratorFixture(t)

	_, err := f.generator.Generate(context.Background(), Options{})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGenerateSkipsTextsTakenByAnotherConsonant(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	b := testdb.SeedConsonant(t, f.db, "B", "Be")
	c := testdb.SeedConsonant(t, f.db, "C", "Ce")

	taken, err := domain.NewWord("ba", 1, 1, c.ID)
	require.NoError(t, err)
	require.NoError(t, f.words.Create(ctx, taken))

	words, err := f.generator.Generate(ctx, Options{ConsonantID: b.ID, SyllableCount: 1})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"be", "bi", "bo", "bu"}, texts(words))
}

func TestGenerateTruncatesPersistedWords(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	s := testdb.SeedConsonant(t, f.db, "S", "Ese")

	_, err := f.generator.Generate(ctx, Options{ConsonantID: s.ID})
	require.NoError(t, err)

	// Identity shuffle makes the truncation deterministic.
	f.generator.shuffle = func(ws []*domain.Word) []*domain.Word { return ws }
	words, err := f.generator.Generate(ctx, Options{ConsonantID: s.ID, MaxWords: 3})
	require.NoError(t, err)
	require.Len(t, words, 3)

	stored, err := f.words.List(ctx, store.WordFilter{ConsonantID: s.ID})
	require.NoError(t, err)
	assert.Equal(t, texts(stored[:3]), texts(words))
}

func TestGenerateBounds(t *testing.T) {
	f := newGeneratorFixture(t)
	ctx := context.Background()
	consonant := testdb.SeedConsonant(t, f.db, "T", "Te")

	properties := gopter.NewProperties(nil)
	properties.Property("respects maxWords, consonant and syllable filter", prop.ForAll(
		func(maxWords, syllables, difficulty int) bool {
			words, err := f.generator.Generate(ctx, Options{
				ConsonantID:   consonant.ID,
				SyllableCount: syllables,
				Difficulty:    difficulty,
				MaxWords:      maxWords,
			})
			if err != nil || len(words) > maxWords {
				return false
			}
			for _, w := range words {
				if w.ConsonantID != consonant.ID {
					return false
				}
				if syllables > 0 && w.Syllables != syllables {
					return false
				}
				if difficulty > 0 && w.Difficulty > difficulty {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, MaxWordsLimit),
		gen.IntRange(0, MaxSyllableCount),
		gen.IntRange(0, domain.MaxDifficulty),
	))
	properties.TestingRun(t)
}
