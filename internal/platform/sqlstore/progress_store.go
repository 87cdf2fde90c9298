package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/store"
)

const progressColumns = `id, user_id, session_id, consonant_id, words_completed, total_words, created_at, updated_at`

// ProgressStore implements store.ProgressStore.
type ProgressStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewProgressStore creates a ProgressStore.
// If logger is nil, a default logger will be used.
func NewProgressStore(db store.DBTX, logger *slog.Logger) *ProgressStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProgressStore{
		db:     db,
		logger: logger.With(slog.String("component", "progress_store")),
	}
}

var _ store.ProgressStore = (*ProgressStore)(nil)

// WithTx implements store.ProgressStore.WithTx.
func (s *ProgressStore) WithTx(tx store.DBTX) store.ProgressStore {
	return &ProgressStore{db: tx, logger: s.logger}
}

// Get implements store.ProgressStore.Get.
func (s *ProgressStore) Get(
	ctx context.Context,
	owner domain.Owner,
	consonantID uuid.UUID,
) (*domain.UserProgress, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+progressColumns+` FROM user_progress WHERE owner_key = ? AND consonant_id = ?`,
		owner.Key(), consonantID)

	p, err := scanProgress(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get progress",
			slog.String("error", err.Error()),
			slog.String("consonant_id", consonantID.String()))
		return nil, MapError(err)
	}
	return p, nil
}

// ListByOwner implements store.ProgressStore.ListByOwner.
func (s *ProgressStore) ListByOwner(ctx context.Context, owner domain.Owner) ([]*domain.UserProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressColumns+` FROM user_progress WHERE owner_key = ? ORDER BY updated_at DESC, id ASC`,
		owner.Key())
	if err != nil {
		log.Error("failed to list progress", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	records := []*domain.UserProgress{}
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			log.Error("failed to scan progress", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		records = append(records, p)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return records, nil
}

// Upsert implements store.ProgressStore.Upsert.
// The conflict target is (owner_key, consonant_id), so concurrent writers
// for the same pair converge on one row holding the last write.
func (s *ProgressStore) Upsert(ctx context.Context, p *domain.UserProgress) (*domain.UserProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := p.Validate(); err != nil {
		return nil, err
	}

	owner := p.Owner()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_progress
			(id, owner_key, user_id, session_id, consonant_id, words_completed, total_words, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_key, consonant_id) DO UPDATE SET
			words_completed = excluded.words_completed,
			total_words = excluded.total_words,
			session_id = excluded.session_id,
			updated_at = excluded.updated_at`,
		p.ID, owner.Key(), ownerUserID(owner), p.SessionID, p.ConsonantID,
		p.WordsCompleted, p.TotalWords, utc(p.CreatedAt), utc(p.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to upsert progress",
			slog.String("error", err.Error()),
			slog.String("consonant_id", p.ConsonantID.String()))
		return nil, MapError(err)
	}

	log.Debug("progress saved",
		slog.String("consonant_id", p.ConsonantID.String()),
		slog.Int("words_completed", p.WordsCompleted),
		slog.Int("total_words", p.TotalWords))

	return s.Get(ctx, owner, p.ConsonantID)
}

// Reassign implements store.ProgressStore.Reassign.
func (s *ProgressStore) Reassign(ctx context.Context, id uuid.UUID, owner domain.Owner) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE user_progress
		SET owner_key = ?, user_id = ?
		WHERE id = ?`,
		owner.Key(), ownerUserID(owner), id,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to reassign progress",
			slog.String("error", err.Error()),
			slog.String("progress_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProgressNotFound)
}

// Delete implements store.ProgressStore.Delete.
func (s *ProgressStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM user_progress WHERE id = ?`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete progress",
			slog.String("error", err.Error()),
			slog.String("progress_id", id.String()))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrProgressNotFound)
}

func scanProgress(row rowScanner) (*domain.UserProgress, error) {
	var (
		p      domain.UserProgress
		userID uuid.NullUUID
	)
	if err := row.Scan(
		&p.ID, &userID, &p.SessionID, &p.ConsonantID,
		&p.WordsCompleted, &p.TotalWords, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	p.UserID = uuidPtr(userID)
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

