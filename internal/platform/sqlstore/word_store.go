package sqlstore

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/store"
)

// WordStore implements store.WordStore.
type WordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewWordStore creates a WordStore.
// If logger is nil, a default logger will be used.
func NewWordStore(db store.DBTX, logger *slog.Logger) *WordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WordStore{
		db:     db,
		logger: logger.With(slog.String("component", "word_store")),
	}
}

var _ store.WordStore = (*WordStore)(nil)

// WithTx implements store.WordStore.WithTx.
func (s *WordStore) WithTx(tx store.DBTX) store.WordStore {
	return &WordStore{db: tx, logger: s.logger}
}

// Create implements store.WordStore.Create.
// A duplicate text is reported as store.ErrWordExists and logged at debug
// level only, since callers synthesizing words expect occasional collisions.
func (s *WordStore) Create(ctx context.Context, w *domain.Word) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := w.Validate(); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO words (id, text, syllables, difficulty, consonant_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Text, w.Syllables, w.Difficulty, w.ConsonantID, utc(w.CreatedAt), utc(w.UpdatedAt),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("word already exists", slog.String("text", w.Text))
			return MapUniqueViolation(err, store.ErrWordExists)
		}
		log.Error("failed to create word",
			slog.String("error", err.Error()),
			slog.String("text", w.Text),
			slog.String("consonant_id", w.ConsonantID.String()))
		return MapError(err)
	}
	return nil
}

// List implements store.WordStore.List.
func (s *WordStore) List(ctx context.Context, filter store.WordFilter) ([]*domain.Word, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var (
		where []string
		args  []any
	)
	if filter.ConsonantID != uuid.Nil {
		where = append(where, "consonant_id = ?")
		args = append(args, filter.ConsonantID)
	}
	if filter.Syllables > 0 {
		where = append(where, "syllables = ?")
		args = append(args, filter.Syllables)
	}
	if filter.MaxDifficulty > 0 {
		where = append(where, "difficulty <= ?")
		args = append(args, filter.MaxDifficulty)
	}

	query := `SELECT id, text, syllables, difficulty, consonant_id, created_at, updated_at FROM words`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY text ASC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list words", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	words := []*domain.Word{}
	for rows.Next() {
		var w domain.Word
		if err := rows.Scan(
			&w.ID, &w.Text, &w.Syllables, &w.Difficulty, &w.ConsonantID, &w.CreatedAt, &w.UpdatedAt,
		); err != nil {
			log.Error("failed to scan word", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		w.CreatedAt = w.CreatedAt.UTC()
		w.UpdatedAt = w.UpdatedAt.UTC()
		words = append(words, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	log.Debug("words listed", slog.Int("count", len(words)))
	return words, nil
}
