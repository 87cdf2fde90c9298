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

const activitySelect = `
	SELECT a.id, a.type, a.consonant_id, a.difficulty, a.metadata, a.created_at,
		c.id, c.letter, c.name, c.created_at, c.updated_at
	FROM activities a
	JOIN consonants c ON c.id = a.consonant_id`

// ActivityStore implements store.ActivityStore.
type ActivityStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewActivityStore creates an ActivityStore.
// If logger is nil, a default logger will be used.
func NewActivityStore(db store.DBTX, logger *slog.Logger) *ActivityStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivityStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_store")),
	}
}

var _ store.ActivityStore = (*ActivityStore)(nil)

// WithTx implements store.ActivityStore.WithTx.
func (s *ActivityStore) WithTx(tx store.DBTX) store.ActivityStore {
	return &ActivityStore{db: tx, logger: s.logger}
}

// GetOrCreate implements store.ActivityStore.GetOrCreate.
// The insert is ignored when the (type, consonant, difficulty) triple exists,
// so concurrent starts resolve to a single activity row.
func (s *ActivityStore) GetOrCreate(ctx context.Context, a *domain.Activity) (*domain.Activity, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		return nil, err
	}

	metadata, err := encodeMetadata(a.Metadata)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activities (id, type, consonant_id, difficulty, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (type, consonant_id, difficulty) DO NOTHING`,
		a.ID, string(a.Type), a.ConsonantID, a.Difficulty, metadata, utc(a.CreatedAt),
	)
	if err != nil {
		log.Error("failed to insert activity",
			slog.String("error", err.Error()),
			slog.String("activity_type", string(a.Type)),
			slog.String("consonant_id", a.ConsonantID.String()))
		return nil, MapError(err)
	}

	row := s.db.QueryRowContext(ctx,
		activitySelect+` WHERE a.type = ? AND a.consonant_id = ? AND a.difficulty = ?`,
		string(a.Type), a.ConsonantID, a.Difficulty)
	stored, err := scanActivity(row)
	if err != nil {
		log.Error("failed to load activity after insert",
			slog.String("error", err.Error()),
			slog.String("activity_type", string(a.Type)))
		return nil, MapError(err)
	}

	if stored.ID != a.ID {
		log.Debug("reusing existing activity", slog.String("activity_id", stored.ID.String()))
	}
	return stored, nil
}

// GetByID implements store.ActivityStore.GetByID.
func (s *ActivityStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	row := s.db.QueryRowContext(ctx, activitySelect+` WHERE a.id = ?`, id)
	a, err := scanActivity(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrActivityNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get activity",
			slog.String("error", err.Error()),
			slog.String("activity_id", id.String()))
		return nil, MapError(err)
	}
	return a, nil
}

// scanActivity reads the columns of activitySelect.
func scanActivity(row rowScanner) (*domain.Activity, error) {
	var (
		a        domain.Activity
		c        domain.Consonant
		typ      string
		metadata []byte
	)
	if err := row.Scan(
		&a.ID, &typ, &a.ConsonantID, &a.Difficulty, &metadata, &a.CreatedAt,
		&c.ID, &c.Letter, &c.Name, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	m, err := decodeMetadata(metadata)
	if err != nil {
		return nil, err
	}

	a.Type = domain.ActivityType(typ)
	a.Metadata = m
	a.CreatedAt = a.CreatedAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	a.Consonant = &c
	return &a, nil
}
