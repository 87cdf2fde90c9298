package activity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/service"
	"github.com/phrazzld/silabas-api/internal/store"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/phrazzld/silabas-api/internal/service/activity"

// Verify interface compliance at compile time
var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	consonants store.ConsonantStore
	activities store.ActivityStore
	sessions   store.ActivitySessionStore
	progress   store.ProgressStore
	db         store.TxBeginner
	now        func() time.Time
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewService creates an activity Service.
func NewService(
	consonants store.ConsonantStore,
	activities store.ActivityStore,
	sessions store.ActivitySessionStore,
	progress store.ProgressStore,
	db store.TxBeginner,
	logger *slog.Logger,
) Service {
	return newService(consonants, activities, sessions, progress, db, time.Now, logger)
}

func newService(
	consonants store.ConsonantStore,
	activities store.ActivityStore,
	sessions store.ActivitySessionStore,
	progress store.ProgressStore,
	db store.TxBeginner,
	now func() time.Time,
	logger *slog.Logger,
) *serviceImpl {
	if consonants == nil {
		panic("consonants cannot be nil")
	}
	if activities == nil {
		panic("activities cannot be nil")
	}
	if sessions == nil {
		panic("sessions cannot be nil")
	}
	if progress == nil {
		panic("progress cannot be nil")
	}
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		consonants: consonants,
		activities: activities,
		sessions:   sessions,
		progress:   progress,
		db:         db,
		now:        now,
		tracer:     otel.Tracer(tracerName),
		logger:     logger.With(slog.String("component", "activity_service")),
	}
}

// Start implements Service.Start.
func (s *serviceImpl) Start(
	ctx context.Context,
	caller domain.Session,
	req StartRequest,
) (*StartResult, error) {
	ctx, span := s.tracer.Start(ctx, "activity.Start")
	defer span.End()

	log := logger.FromContextOrDefault(ctx, s.logger)

	if req.ActivityType == "" {
		req.ActivityType = DefaultActivityType
	}
	if req.Difficulty == 0 {
		req.Difficulty = DefaultDifficulty
	}
	span.SetAttributes(
		attribute.String("consonant.id", req.ConsonantID.String()),
		attribute.String("activity.type", string(req.ActivityType)),
		attribute.Int("activity.difficulty", req.Difficulty),
	)

	owner, err := domain.ResolveOwner(caller, req.SessionID)
	if err != nil {
		return nil, err
	}
	if req.ConsonantID == uuid.Nil {
		return nil, domain.NewValidationError("consonantId", "is required", nil)
	}

	consonant, err := s.consonants.GetByID(ctx, req.ConsonantID)
	if err != nil {
		return nil, s.fail(span, log, "start", "failed to load consonant", err)
	}

	template, err := domain.NewActivity(req.ActivityType, consonant, req.Difficulty)
	if err != nil {
		return nil, err
	}
	act, err := s.activities.GetOrCreate(ctx, template)
	if err != nil {
		return nil, s.fail(span, log, "start", "failed to resolve activity", err)
	}
	act.Consonant = consonant

	candidate := domain.NewActivitySession(owner, act.ID, s.now())
	session, err := s.sessions.CreatePending(ctx, candidate)
	if err != nil {
		return nil, s.fail(span, log, "start", "failed to create pending session", err)
	}
	session.Activity = act

	resumed := session.ID != candidate.ID
	span.SetAttributes(
		attribute.String("activity_session.id", session.ID.String()),
		attribute.Bool("activity_session.resumed", resumed),
	)
	log.Info("activity session started",
		slog.String("session_id", session.ID.String()),
		slog.String("activity_id", act.ID.String()),
		slog.Bool("resumed", resumed))

	return &StartResult{Session: session, Activity: act, Resumed: resumed}, nil
}

// GetProgress implements Service.GetProgress.
func (s *serviceImpl) GetProgress(
	ctx context.Context,
	caller domain.Session,
	sessionID uuid.UUID,
) (*ProgressResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, err
		}
		log.Error("failed to load activity session",
			slog.String("error", err.Error()),
			slog.String("session_id", sessionID.String()))
		return nil, service.NewServiceError("activity", "get_progress", err)
	}
	if !session.AccessibleBy(caller) {
		return nil, service.ErrNotOwned
	}

	return &ProgressResult{Session: session, Stats: progressStats(session)}, nil
}

// UpdateProgress implements Service.UpdateProgress.
func (s *serviceImpl) UpdateProgress(
	ctx context.Context,
	caller domain.Session,
	sessionID uuid.UUID,
	update domain.ProgressUpdate,
) (*ProgressResult, error) {
	ctx, span := s.tracer.Start(ctx, "activity.UpdateProgress",
		trace.WithAttributes(attribute.String("activity_session.id", sessionID.String())))
	defer span.End()

	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateCounts(update.WordsCorrect, update.WordsTotal, update.Score, update.TimeSpent, "score"); err != nil {
		return nil, err
	}

	var session *domain.ActivitySession
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		txSessions := s.sessions.WithTx(tx)

		var err error
		session, err = txSessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if !session.AccessibleBy(caller) {
			return service.ErrNotOwned
		}
		if err := session.ApplyProgress(update, s.now()); err != nil {
			return err
		}
		if err := txSessions.UpdateProgress(ctx, session); err != nil {
			return err
		}
		return s.mirror(ctx, s.progress.WithTx(tx), caller, session)
	})
	if err != nil {
		return nil, s.fail(span, log, "update_progress", "failed to update session progress", err)
	}

	log.Debug("activity session progress updated",
		slog.String("session_id", session.ID.String()),
		slog.Int("words_correct", session.WordsCorrect),
		slog.Int("words_total", session.WordsTotal))

	return &ProgressResult{Session: session, Stats: progressStats(session)}, nil
}

// Complete implements Service.Complete.
func (s *serviceImpl) Complete(
	ctx context.Context,
	caller domain.Session,
	sessionID uuid.UUID,
	result domain.CompletionResult,
) (*CompleteResult, error) {
	ctx, span := s.tracer.Start(ctx, "activity.Complete",
		trace.WithAttributes(attribute.String("activity_session.id", sessionID.String())))
	defer span.End()

	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := validateCounts(result.WordsCorrect, result.WordsTotal, &result.FinalScore, &result.TimeSpent, "finalScore"); err != nil {
		return nil, err
	}

	var session *domain.ActivitySession
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx store.DBTX) error {
		txSessions := s.sessions.WithTx(tx)

		var err error
		session, err = txSessions.GetByID(ctx, sessionID)
		if err != nil {
			return err
		}
		if session.IsCompleted() {
			return service.ErrSessionCompleted
		}
		if !session.AccessibleBy(caller) {
			return service.ErrNotOwned
		}
		if err := session.Complete(result, s.now()); err != nil {
			return err
		}
		if err := txSessions.Complete(ctx, session); err != nil {
			return err
		}
		return s.mirror(ctx, s.progress.WithTx(tx), caller, session)
	})
	if err != nil {
		return nil, s.fail(span, log, "complete", "failed to complete session", err)
	}

	authenticated, isUser := domain.AsAuthenticated(caller)
	completedCount := 0
	if isUser {
		completedCount, err = s.sessions.CountCompleted(ctx, domain.UserOwner(authenticated.UserID, ""))
		if err != nil {
			// Completion is already committed; report it without the first-activity check.
			log.Error("failed to count completed sessions",
				slog.String("error", err.Error()),
				slog.String("user_id", authenticated.UserID.String()))
		}
	}
	achievements := domain.EvaluateAchievements(session, isUser, completedCount)

	span.SetAttributes(attribute.Int("activity_session.achievements", len(achievements)))
	log.Info("activity session completed",
		slog.String("session_id", session.ID.String()),
		slog.Int("score", session.Score),
		slog.Int("achievements", len(achievements)))

	return &CompleteResult{
		Session:      session,
		Stats:        domain.ComputeCompletionStats(session),
		Achievements: achievements,
	}, nil
}

// mirror copies the session's word counts into the progress record of the
// caller's account, or of the session's client id for anonymous callers.
func (s *serviceImpl) mirror(
	ctx context.Context,
	progress store.ProgressStore,
	caller domain.Session,
	session *domain.ActivitySession,
) error {
	if session.Activity == nil {
		return fmt.Errorf("activity session %s has no activity loaded", session.ID)
	}

	owner := domain.SessionOwner(session.SessionID)
	if a, ok := domain.AsAuthenticated(caller); ok {
		owner = domain.UserOwner(a.UserID, session.SessionID)
	}

	record, err := domain.NewUserProgress(owner, session.Activity.ConsonantID, session.WordsCorrect, session.WordsTotal)
	if err != nil {
		return err
	}
	_, err = progress.Upsert(ctx, record)
	return err
}

// fail translates store sentinels into service errors, logs unexpected
// failures and marks the span.
func (s *serviceImpl) fail(span trace.Span, log *slog.Logger, op, msg string, err error) error {
	switch {
	case errors.Is(err, store.ErrSessionCompleted), errors.Is(err, domain.ErrSessionCompleted):
		return service.ErrSessionCompleted
	case errors.Is(err, service.ErrNotOwned),
		errors.Is(err, store.ErrNotFound),
		errors.Is(err, domain.ErrValidation):
		return err
	}

	log.Error(msg, slog.String("error", err.Error()))
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	return service.NewServiceError("activity", op, err)
}

func progressStats(session *domain.ActivitySession) ProgressStats {
	pct := domain.Percentage(session.WordsCorrect, session.WordsTotal)
	return ProgressStats{
		CompletionPercentage: pct,
		IsCompleted:          pct == 100,
		WordsCorrect:         session.WordsCorrect,
		WordsTotal:           session.WordsTotal,
		Score:                session.Score,
		TimeSpent:            session.TimeSpent,
		TimeSpentMinutes:     int(math.Round(float64(session.TimeSpent) / 60)),
	}
}

func validateCounts(wordsCorrect, wordsTotal int, score, timeSpent *int, scoreField string) error {
	verr := &domain.ValidationError{}
	if wordsCorrect < 0 {
		verr.Add("wordsCorrect", "must not be negative")
	}
	if wordsTotal < 0 {
		verr.Add("wordsTotal", "must not be negative")
	}
	if score != nil && *score < 0 {
		verr.Add(scoreField, "must not be negative")
	}
	if timeSpent != nil && *timeSpent < 0 {
		verr.Add("timeSpent", "must not be negative")
	}
	return verr.OrNil()
}
