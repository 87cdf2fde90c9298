package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/store"
)

// MigrationResult counts what happened to each anonymous progress record.
type MigrationResult struct {
	// Moved records had no account counterpart and now belong to the account.
	Moved int `json:"moved"`
	// Replaced records were newer than the account's and replaced it.
	Replaced int `json:"replaced"`
	// Discarded records were older than the account's and were deleted.
	Discarded int `json:"discarded"`
}

// ProgressService tracks per-consonant progress for accounts and anonymous sessions.
type ProgressService interface {
	// GetProgress returns the owner's record for a consonant, or store.ErrProgressNotFound.
	GetProgress(ctx context.Context, owner domain.Owner, consonantID uuid.UUID) (*domain.UserProgress, error)

	// ListProgress returns every record of the owner, most recently updated first.
	ListProgress(ctx context.Context, owner domain.Owner) ([]*domain.UserProgress, error)

	// SaveProgress creates or overwrites the owner's record for a consonant.
	// Concurrent saves for the same pair resolve to the last write.
	SaveProgress(
		ctx context.Context,
		owner domain.Owner,
		consonantID uuid.UUID,
		wordsCompleted, totalWords int,
	) (*domain.UserProgress, error)

	// MigrateAnonymousProgress moves the progress of an anonymous session to
	// the caller's account in one transaction. userID must be the caller.
	// When both hold a record for the same consonant, the most recently
	// updated one survives.
	MigrateAnonymousProgress(
		ctx context.Context,
		caller domain.Session,
		sessionID string,
		userID uuid.UUID,
	) (*MigrationResult, error)

	// Summary aggregates the progress and activity history of the caller, or
	// of sessionID for anonymous callers.
	Summary(ctx context.Context, caller domain.Session, sessionID string) (*Summary, error)
}

type progressServiceImpl struct {
	progress   store.ProgressStore
	sessions   store.ActivitySessionStore
	consonants store.ConsonantStore
	users      store.UserStore
	db         store.TxBeginner
	now        func() time.Time
	logger     *slog.Logger
}

var _ ProgressService = (*progressServiceImpl)(nil)

// NewProgressService creates a ProgressService.
func NewProgressService(
	progress store.ProgressStore,
	sessions store.ActivitySessionStore,
	consonants store.ConsonantStore,
	users store.UserStore,
	db store.TxBeginner,
	logger *slog.Logger,
) ProgressService {
	if progress == nil || sessions == nil || consonants == nil || users == nil || db == nil {
		panic("progress service dependencies cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &progressServiceImpl{
		progress:   progress,
		sessions:   sessions,
		consonants: consonants,
		users:      users,
		db:         db,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "progress_service")),
	}
}

func (s *progressServiceImpl) GetProgress(
	ctx context.Context,
	owner domain.Owner,
	consonantID uuid.UUID,
) (*domain.UserProgress, error) {
	p, err := s.progress.Get(ctx, owner, consonantID)
	if err != nil {
		if !errors.Is(err, store.ErrProgressNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to get progress",
				slog.String("error", err.Error()),
				slog.String("consonant_id", consonantID.String()))
			return nil, NewServiceError("progress", "get", err)
		}
		return nil, err
	}
	return p, nil
}

func (s *progressServiceImpl) ListProgress(
	ctx context.Context,
	owner domain.Owner,
) ([]*domain.UserProgress, error) {
	records, err := s.progress.ListByOwner(ctx, owner)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list progress",
			slog.String("error", err.Error()))
		return nil, NewServiceError("progress", "list", err)
	}
	return records, nil
}

func (s *progressServiceImpl) SaveProgress(
	ctx context.Context,
	owner domain.Owner,
	consonantID uuid.UUID,
	wordsCompleted, totalWords int,
) (*domain.UserProgress, error) {
	return saveProgress(ctx, s.progress, owner, consonantID, wordsCompleted, totalWords)
}

// saveProgress upserts through ps so callers inside a transaction can pass
// their transaction-bound store.
func saveProgress(
	ctx context.Context,
	ps store.ProgressStore,
	owner domain.Owner,
	consonantID uuid.UUID,
	wordsCompleted, totalWords int,
) (*domain.UserProgress, error) {
	record, err := domain.NewUserProgress(owner, consonantID, wordsCompleted, totalWords)
	if err != nil {
		return nil, err
	}
	saved, err := ps.Upsert(ctx, record)
	if err != nil {
		if errors.Is(err, store.ErrInvalidEntity) {
			return nil, domain.NewValidationError("consonantId", "does not exist", err)
		}
		return nil, NewServiceError("progress", "save", err)
	}
	return saved, nil
}

func (s *progressServiceImpl) MigrateAnonymousProgress(
	ctx context.Context,
	caller domain.Session,
	sessionID string,
	userID uuid.UUID,
) (*MigrationResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	authenticated, ok := domain.AsAuthenticated(caller)
	if !ok {
		return nil, ErrUnauthenticated
	}

	verr := &domain.ValidationError{}
	if strings.TrimSpace(sessionID) == "" {
		verr.Add("sessionId", "is required")
	}
	if userID == uuid.Nil {
		verr.Add("userId", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if authenticated.UserID != userID {
		log.Warn("refused progress migration into another account",
			slog.String("caller_id", authenticated.UserID.String()),
			slog.String("target_id", userID.String()))
		return nil, ErrNotOwned
	}

	anonymous := domain.SessionOwner(sessionID)
	account := domain.UserOwner(userID, sessionID)
	result := &MigrationResult{}

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		txProgress := s.progress.WithTx(tx)
		*result = MigrationResult{}

		records, err := txProgress.ListByOwner(ctx, anonymous)
		if err != nil {
			return err
		}

		for _, record := range records {
			existing, err := txProgress.Get(ctx, account, record.ConsonantID)
			switch {
			case errors.Is(err, store.ErrProgressNotFound):
				if err := txProgress.Reassign(ctx, record.ID, account); err != nil {
					return err
				}
				result.Moved++
			case err != nil:
				return err
			case record.UpdatedAt.After(existing.UpdatedAt):
				if err := txProgress.Delete(ctx, existing.ID); err != nil {
					return err
				}
				if err := txProgress.Reassign(ctx, record.ID, account); err != nil {
					return err
				}
				result.Replaced++
			default:
				if err := txProgress.Delete(ctx, record.ID); err != nil {
					return err
				}
				result.Discarded++
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to migrate anonymous progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, NewServiceError("progress", "migrate", err)
	}

	log.Info("migrated anonymous progress",
		slog.String("user_id", userID.String()),
		slog.Int("moved", result.Moved),
		slog.Int("replaced", result.Replaced),
		slog.Int("discarded", result.Discarded))
	return result, nil
}
