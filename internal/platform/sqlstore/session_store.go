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

const sessionSelect = `
	SELECT s.id, s.user_id, s.session_id, s.activity_id, s.started_at, s.completed_at,
		s.score, s.time_spent, s.words_correct, s.words_total, s.metadata, s.created_at, s.updated_at,
		a.id, a.type, a.consonant_id, a.difficulty, a.metadata, a.created_at,
		c.id, c.letter, c.name, c.created_at, c.updated_at
	FROM activity_sessions s
	JOIN activities a ON a.id = s.activity_id
	JOIN consonants c ON c.id = a.consonant_id`

// ActivitySessionStore implements store.ActivitySessionStore.
type ActivitySessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewActivitySessionStore creates an ActivitySessionStore.
// If logger is nil, a default logger will be used.
func NewActivitySessionStore(db store.DBTX, logger *slog.Logger) *ActivitySessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ActivitySessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "activity_session_store")),
	}
}

var _ store.ActivitySessionStore = (*ActivitySessionStore)(nil)

// WithTx implements store.ActivitySessionStore.WithTx.
func (s *ActivitySessionStore) WithTx(tx store.DBTX) store.ActivitySessionStore {
	return &ActivitySessionStore{db: tx, logger: s.logger}
}

// CreatePending implements store.ActivitySessionStore.CreatePending.
// The partial unique index on (owner_key, activity_id) WHERE completed_at IS NULL
// makes the insert a no-op when a pending session already exists.
func (s *ActivitySessionStore) CreatePending(
	ctx context.Context,
	session *domain.ActivitySession,
) (*domain.ActivitySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	metadata, err := encodeMetadata(session.Metadata)
	if err != nil {
		return nil, err
	}

	owner := session.Owner()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO activity_sessions
			(id, owner_key, user_id, session_id, activity_id, started_at, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (owner_key, activity_id) WHERE completed_at IS NULL DO NOTHING`,
		session.ID, owner.Key(), ownerUserID(owner), session.SessionID, session.ActivityID,
		utc(session.StartedAt), metadata, utc(session.CreatedAt), utc(session.UpdatedAt),
	)
	if err != nil {
		log.Error("failed to insert activity session",
			slog.String("error", err.Error()),
			slog.String("activity_id", session.ActivityID.String()))
		return nil, MapError(err)
	}

	row := s.db.QueryRowContext(ctx,
		sessionSelect+` WHERE s.owner_key = ? AND s.activity_id = ? AND s.completed_at IS NULL`,
		owner.Key(), session.ActivityID)
	stored, err := scanSession(row)
	if err != nil {
		log.Error("failed to load pending session",
			slog.String("error", err.Error()),
			slog.String("activity_id", session.ActivityID.String()))
		return nil, MapError(err)
	}
	return stored, nil
}

// GetByID implements store.ActivitySessionStore.GetByID.
func (s *ActivitySessionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActivitySession, error) {
	row := s.db.QueryRowContext(ctx, sessionSelect+` WHERE s.id = ?`, id)
	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get activity session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, MapError(err)
	}
	return session, nil
}

// UpdateProgress implements store.ActivitySessionStore.UpdateProgress.
func (s *ActivitySessionStore) UpdateProgress(ctx context.Context, session *domain.ActivitySession) error {
	metadata, err := encodeMetadata(session.Metadata)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE activity_sessions
		SET words_correct = ?, words_total = ?, score = ?, time_spent = ?, metadata = ?, updated_at = ?
		WHERE id = ? AND completed_at IS NULL`,
		session.WordsCorrect, session.WordsTotal, session.Score, session.TimeSpent,
		metadata, utc(session.UpdatedAt), session.ID,
	)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update session progress",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}
	return s.checkPendingWrite(ctx, result, session.ID)
}

// Complete implements store.ActivitySessionStore.Complete.
// The completed_at IS NULL guard makes completion a compare-and-set, so of
// two concurrent completions exactly one succeeds.
func (s *ActivitySessionStore) Complete(ctx context.Context, session *domain.ActivitySession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if session.CompletedAt == nil {
		return store.NewStoreError("activity_session", "complete", "completedAt is required", store.ErrInvalidEntity)
	}

	metadata, err := encodeMetadata(session.Metadata)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE activity_sessions
		SET completed_at = ?, score = ?, time_spent = ?, words_correct = ?, words_total = ?,
			metadata = ?, updated_at = ?
		WHERE id = ? AND completed_at IS NULL`,
		utc(*session.CompletedAt), session.Score, session.TimeSpent, session.WordsCorrect,
		session.WordsTotal, metadata, utc(session.UpdatedAt), session.ID,
	)
	if err != nil {
		log.Error("failed to complete session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return MapError(err)
	}
	if err := s.checkPendingWrite(ctx, result, session.ID); err != nil {
		return err
	}

	log.Info("activity session completed",
		slog.String("session_id", session.ID.String()),
		slog.Int("score", session.Score))
	return nil
}

// checkPendingWrite distinguishes a missing session from a completed one
// when a guarded update touched no rows.
func (s *ActivitySessionStore) checkPendingWrite(ctx context.Context, result sql.Result, id uuid.UUID) error {
	err := CheckRowsAffected(result, store.ErrSessionNotFound)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrSessionNotFound) {
		return err
	}

	var completedAt sql.NullTime
	err = s.db.QueryRowContext(ctx,
		`SELECT completed_at FROM activity_sessions WHERE id = ?`, id).Scan(&completedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrSessionNotFound
		}
		return MapError(err)
	}
	return store.ErrSessionCompleted
}

// ListCompleted implements store.ActivitySessionStore.ListCompleted.
func (s *ActivitySessionStore) ListCompleted(
	ctx context.Context,
	owner domain.Owner,
) ([]*domain.ActivitySession, error) {
	return s.list(ctx,
		sessionSelect+` WHERE s.owner_key = ? AND s.completed_at IS NOT NULL ORDER BY s.completed_at DESC, s.id ASC`,
		owner.Key())
}

// ListPending implements store.ActivitySessionStore.ListPending.
func (s *ActivitySessionStore) ListPending(
	ctx context.Context,
	owner domain.Owner,
) ([]*domain.ActivitySession, error) {
	return s.list(ctx,
		sessionSelect+` WHERE s.owner_key = ? AND s.completed_at IS NULL ORDER BY s.started_at DESC, s.id ASC`,
		owner.Key())
}

// CountCompleted implements store.ActivitySessionStore.CountCompleted.
func (s *ActivitySessionStore) CountCompleted(ctx context.Context, owner domain.Owner) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_sessions WHERE owner_key = ? AND completed_at IS NOT NULL`,
		owner.Key()).Scan(&n)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to count completed sessions",
			slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return n, nil
}

func (s *ActivitySessionStore) list(ctx context.Context, query string, args ...any) ([]*domain.ActivitySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list activity sessions", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	sessions := []*domain.ActivitySession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan activity session", slog.String("error", err.Error()))
			return nil, MapError(err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return sessions, nil
}

// scanSession reads the columns of sessionSelect.
func scanSession(row rowScanner) (*domain.ActivitySession, error) {
	var (
		s                domain.ActivitySession
		a                domain.Activity
		c                domain.Consonant
		userID           uuid.NullUUID
		completedAt      sql.NullTime
		sessionMetadata  []byte
		activityType     string
		activityMetadata []byte
	)
	if err := row.Scan(
		&s.ID, &userID, &s.SessionID, &s.ActivityID, &s.StartedAt, &completedAt,
		&s.Score, &s.TimeSpent, &s.WordsCorrect, &s.WordsTotal, &sessionMetadata, &s.CreatedAt, &s.UpdatedAt,
		&a.ID, &activityType, &a.ConsonantID, &a.Difficulty, &activityMetadata, &a.CreatedAt,
		&c.ID, &c.Letter, &c.Name, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if s.Metadata, err = decodeMetadata(sessionMetadata); err != nil {
		return nil, err
	}
	if a.Metadata, err = decodeMetadata(activityMetadata); err != nil {
		return nil, err
	}

	s.UserID = uuidPtr(userID)
	s.CompletedAt = timePtr(completedAt)
	s.StartedAt = s.StartedAt.UTC()
	s.CreatedAt = s.CreatedAt.UTC()
	s.UpdatedAt = s.UpdatedAt.UTC()
	a.Type = domain.ActivityType(activityType)
	a.CreatedAt = a.CreatedAt.UTC()
	c.CreatedAt = c.CreatedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	a.Consonant = &c
	s.Activity = &a
	return &s, nil
}
