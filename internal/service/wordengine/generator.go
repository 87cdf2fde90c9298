package wordengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Generator option bounds.
const (
	DefaultMaxWords  = 15
	MaxWordsLimit    = 15
	MaxSyllableCount = 5
)

const tracerName = "github.com/phrazzld/silabas-api/internal/service/wordengine"

// Options selects the words to generate. Zero SyllableCount and Difficulty
// mean "any"; a zero MaxWords means DefaultMaxWords.
type Options struct {
	ConsonantID   uuid.UUID
	SyllableCount int
	Difficulty    int
	MaxWords      int
}

// Validate checks the options and applies defaults.
func (o *Options) Validate() error {
	if o.MaxWords == 0 {
		o.MaxWords = DefaultMaxWords
	}

	verr := &domain.ValidationError{}
	if o.ConsonantID == uuid.Nil {
		verr.Add("consonantId", "is required")
	}
	if o.SyllableCount < 0 || o.SyllableCount > MaxSyllableCount {
		verr.Add("syllableCount", "must be between 1 and 5")
	}
	if o.Difficulty < 0 || o.Difficulty > domain.MaxDifficulty {
		verr.Add("difficulty", "must be between 1 and 5")
	}
	if o.MaxWords < 1 || o.MaxWords > MaxWordsLimit {
		verr.Add("maxWords", "must be between 1 and 15")
	}
	return verr.OrNil()
}

// Generator returns shuffled word lists for a consonant, storing dictionary
// words when too few are persisted.
type Generator interface {
	Generate(ctx context.Context, opts Options) ([]*domain.Word, error)
}

type generator struct {
	consonants store.ConsonantStore
	words      store.WordStore
	dictionary Dictionary
	shuffle    func([]*domain.Word) []*domain.Word
	tracer     trace.Tracer
	logger     *slog.Logger
}

var _ Generator = (*generator)(nil)

// NewGenerator creates a Generator backed by DefaultDictionary.
func NewGenerator(
	consonants store.ConsonantStore,
	words store.WordStore,
	logger *slog.Logger,
) Generator {
	return newGenerator(consonants, words, DefaultDictionary, logger)
}

func newGenerator(
	consonants store.ConsonantStore,
	words store.WordStore,
	dictionary Dictionary,
	logger *slog.Logger,
) *generator {
	if consonants == nil || words == nil {
		panic("generator stores cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &generator{
		consonants: consonants,
		words:      words,
		dictionary: dictionary,
		shuffle:    Shuffle[*domain.Word],
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With(slog.String("component", "word_generator")),
	}
}

// Generate returns at most opts.MaxWords words of the consonant matching the
// filters, in random order. Persisted words come first in the candidate pool;
// the deficit is filled from the dictionary and each new word is stored.
// Words whose text already exists are skipped.
func (g *generator) Generate(ctx context.Context, opts Options) ([]*domain.Word, error) {
	ctx, span := g.tracer.Start(ctx, "wordengine.Generate")
	defer span.End()

	if err := opts.Validate(); err != nil {
		span.SetStatus(codes.Error, "invalid options")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("consonant.id", opts.ConsonantID.String()),
		attribute.Int("words.syllable_count", opts.SyllableCount),
		attribute.Int("words.difficulty", opts.Difficulty),
		attribute.Int("words.max", opts.MaxWords),
	)

	log := logger.FromContextOrDefault(ctx, g.logger).With(
		slog.String("consonant_id", opts.ConsonantID.String()))

	consonant, err := g.consonants.GetByID(ctx, opts.ConsonantID)
	if err != nil {
		if !errors.Is(err, store.ErrConsonantNotFound) {
			log.Error("failed to load consonant", slog.String("error", err.Error()))
			span.RecordError(err)
			span.SetStatus(codes.Error, "consonant lookup failed")
		}
		return nil, fmt.Errorf("failed to load consonant: %w", err)
	}

	words, err := g.words.List(ctx, store.WordFilter{
		ConsonantID:   consonant.ID,
		Syllables:     opts.SyllableCount,
		MaxDifficulty: opts.Difficulty,
	})
	if err != nil {
		log.Error("failed to list words", slog.String("error", err.Error()))
		span.RecordError(err)
		span.SetStatus(codes.Error, "word query failed")
		return nil, fmt.Errorf("failed to list words: %w", err)
	}
	persisted := len(words)

	if deficit := opts.MaxWords - persisted; deficit > 0 {
		added, err := g.backfill(ctx, log, consonant, words, opts, deficit)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "backfill failed")
			return nil, err
		}
		words = append(words, added...)
	}

	span.SetAttributes(
		attribute.Int("words.persisted", persisted),
		attribute.Int("words.synthesized", len(words)-persisted),
	)

	for _, w := range words {
		w.Consonant = consonant
	}

	words = g.shuffle(words)
	if len(words) > opts.MaxWords {
		words = words[:opts.MaxWords]
	}

	log.Debug("generated words",
		slog.Int("persisted", persisted),
		slog.Int("returned", len(words)))
	return words, nil
}

// backfill stores up to deficit dictionary words that are not already in
// existing and returns the ones it stored.
func (g *generator) backfill(
	ctx context.Context,
	log *slog.Logger,
	consonant *domain.Consonant,
	existing []*domain.Word,
	opts Options,
	deficit int,
) ([]*domain.Word, error) {
	known := make(map[string]struct{}, len(existing))
	for _, w := range existing {
		known[w.Text] = struct{}{}
	}

	candidates := Shuffle(g.dictionary.Candidates(consonant.Letter, opts.SyllableCount, opts.Difficulty))

	added := make([]*domain.Word, 0, deficit)
	for _, entry := range candidates {
		if len(added) == deficit {
			break
		}
		if _, ok := known[entry.Text]; ok {
			continue
		}

		word, err := domain.NewWord(entry.Text, entry.Syllables, entry.Difficulty, consonant.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid dictionary word %q: %w", entry.Text, err)
		}
		if err := g.words.Create(ctx, word); err != nil {
			if errors.Is(err, store.ErrWordExists) {
				log.Warn("skipping duplicate dictionary word", slog.String("text", entry.Text))
				continue
			}
			log.Error("failed to store dictionary word",
				slog.String("text", entry.Text),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("failed to store word: %w", err)
		}
		known[entry.Text] = struct{}{}
		added = append(added, word)
	}

	if len(added) > 0 {
		log.Info("stored dictionary words", slog.Int("count", len(added)))
	}
	return added, nil
}
