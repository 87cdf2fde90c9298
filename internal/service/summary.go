package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
)

// recentActivityLimit bounds Summary.RecentActivities.
const recentActivityLimit = 10

// Summary is the aggregate progress report of one owner.
type Summary struct {
	User              SummaryUser         `json:"user"`
	Stats             SummaryStats        `json:"stats"`
	ConsonantProgress []ConsonantProgress `json:"consonantProgress"`
	RecentActivities  []RecentActivity    `json:"recentActivities"`
	ActiveSessions    []ActiveSession     `json:"activeSessions"`
}

// SummaryUser describes the caller. Fields are nil for anonymous callers.
type SummaryUser struct {
	ID              *uuid.UUID `json:"id"`
	Name            *string    `json:"name"`
	Email           *string    `json:"email"`
	IsAuthenticated bool       `json:"isAuthenticated"`
}

// SummaryStats are totals across all consonants and completed sessions.
type SummaryStats struct {
	TotalWordsCompleted      int `json:"totalWordsCompleted"`
	TotalWords               int `json:"totalWords"`
	OverallProgress          int `json:"overallProgress"`
	ConsonantsStarted        int `json:"consonantsStarted"`
	ConsonantsCompleted      int `json:"consonantsCompleted"`
	TotalActivitiesCompleted int `json:"totalActivitiesCompleted"`
	TotalTimeSpent           int `json:"totalTimeSpent"`
	TotalTimeSpentMinutes    int `json:"totalTimeSpentMinutes"`
	TotalScore               int `json:"totalScore"`
	AverageAccuracy          int `json:"averageAccuracy"`
	CurrentStreak            int `json:"currentStreak"`
}

// ConsonantRef is the short form of a consonant embedded in session entries.
type ConsonantRef struct {
	Letter string `json:"letter"`
	Name   string `json:"name"`
}

// SummaryConsonant identifies the consonant of a ConsonantProgress entry.
type SummaryConsonant struct {
	ID     uuid.UUID `json:"id"`
	Letter string    `json:"letter"`
	Name   string    `json:"name"`
}

// ConsonantProgress is the per-consonant part of a Summary.
type ConsonantProgress struct {
	Consonant  SummaryConsonant   `json:"consonant"`
	Progress   ProgressSnapshot   `json:"progress"`
	Activities ActivityAggregates `json:"activities"`
}

// ProgressSnapshot is a progress record flattened for reporting.
type ProgressSnapshot struct {
	WordsCompleted       int        `json:"wordsCompleted"`
	TotalWords           int        `json:"totalWords"`
	CompletionPercentage int        `json:"completionPercentage"`
	LastUpdated          *time.Time `json:"lastUpdated"`
}

// ActivityAggregates summarize the completed sessions of one consonant.
type ActivityAggregates struct {
	Completed       int `json:"completed"`
	TotalScore      int `json:"totalScore"`
	TotalTimeSpent  int `json:"totalTimeSpent"`
	AverageAccuracy int `json:"averageAccuracy"`
}

// RecentActivity is a completed session in a Summary.
type RecentActivity struct {
	ID           uuid.UUID     `json:"id"`
	ActivityType string        `json:"activityType"`
	Consonant    *ConsonantRef `json:"consonant"`
	CompletedAt  *time.Time    `json:"completedAt"`
	Score        int           `json:"score"`
	Accuracy     int           `json:"accuracy"`
	TimeSpent    int           `json:"timeSpent"`
	WordsCorrect int           `json:"wordsCorrect"`
	WordsTotal   int           `json:"wordsTotal"`
}

// ActiveSession is a pending session in a Summary.
type ActiveSession struct {
	ID           uuid.UUID     `json:"id"`
	ActivityType string        `json:"activityType"`
	Consonant    *ConsonantRef `json:"consonant"`
	StartedAt    time.Time     `json:"startedAt"`
	WordsCorrect int           `json:"wordsCorrect"`
	WordsTotal   int           `json:"wordsTotal"`
	CurrentScore int           `json:"currentScore"`
}

func (s *progressServiceImpl) Summary(
	ctx context.Context,
	caller domain.Session,
	sessionID string,
) (*Summary, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	owner, err := domain.ResolveOwner(caller, sessionID)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	if owner.IsUser() {
		user, err := s.users.GetByID(ctx, *owner.UserID)
		if err != nil {
			log.Error("failed to load summary user",
				slog.String("error", err.Error()),
				slog.String("user_id", owner.UserID.String()))
			return nil, NewServiceError("progress", "summary", err)
		}
		summary.User = SummaryUser{
			ID:              &user.ID,
			Name:            &user.Name,
			Email:           &user.Email,
			IsAuthenticated: true,
		}
	}

	records, err := s.progress.ListByOwner(ctx, owner)
	if err != nil {
		return nil, s.summaryError(log, err)
	}
	completed, err := s.sessions.ListCompleted(ctx, owner)
	if err != nil {
		return nil, s.summaryError(log, err)
	}
	pending, err := s.sessions.ListPending(ctx, owner)
	if err != nil {
		return nil, s.summaryError(log, err)
	}
	consonants, err := s.consonants.List(ctx)
	if err != nil {
		return nil, s.summaryError(log, err)
	}

	summary.Stats = summarize(records, completed, s.now())
	summary.ConsonantProgress = consonantProgress(consonants, records, completed)

	summary.RecentActivities = make([]RecentActivity, 0, min(len(completed), recentActivityLimit))
	for _, session := range completed[:min(len(completed), recentActivityLimit)] {
		summary.RecentActivities = append(summary.RecentActivities, RecentActivity{
			ID:           session.ID,
			ActivityType: activityType(session),
			Consonant:    consonantRef(session),
			CompletedAt:  session.CompletedAt,
			Score:        session.Score,
			Accuracy:     domain.Percentage(session.WordsCorrect, session.WordsTotal),
			TimeSpent:    session.TimeSpent,
			WordsCorrect: session.WordsCorrect,
			WordsTotal:   session.WordsTotal,
		})
	}

	summary.ActiveSessions = make([]ActiveSession, 0, len(pending))
	for _, session := range pending {
		summary.ActiveSessions = append(summary.ActiveSessions, ActiveSession{
			ID:           session.ID,
			ActivityType: activityType(session),
			Consonant:    consonantRef(session),
			StartedAt:    session.StartedAt,
			WordsCorrect: session.WordsCorrect,
			WordsTotal:   session.WordsTotal,
			CurrentScore: session.Score,
		})
	}

	return summary, nil
}

func (s *progressServiceImpl) summaryError(log *slog.Logger, err error) error {
	log.Error("failed to build progress summary", slog.String("error", err.Error()))
	return NewServiceError("progress", "summary", err)
}

func summarize(
	records []*domain.UserProgress,
	completed []*domain.ActivitySession,
	now time.Time,
) SummaryStats {
	var stats SummaryStats
	for _, p := range records {
		stats.TotalWordsCompleted += p.WordsCompleted
		stats.TotalWords += p.TotalWords
		if p.IsComplete() {
			stats.ConsonantsCompleted++
		}
	}
	stats.OverallProgress = domain.Percentage(stats.TotalWordsCompleted, stats.TotalWords)
	stats.ConsonantsStarted = len(records)

	stats.TotalActivitiesCompleted = len(completed)
	for _, session := range completed {
		stats.TotalTimeSpent += session.TimeSpent
		stats.TotalScore += session.Score
	}
	stats.TotalTimeSpentMinutes = int(math.Round(float64(stats.TotalTimeSpent) / 60))
	stats.AverageAccuracy = averageAccuracy(completed)
	stats.CurrentStreak = currentStreak(completed, now)
	return stats
}

func consonantProgress(
	consonants []*domain.Consonant,
	records []*domain.UserProgress,
	completed []*domain.ActivitySession,
) []ConsonantProgress {
	byConsonant := make(map[uuid.UUID]*domain.UserProgress, len(records))
	for _, p := range records {
		byConsonant[p.ConsonantID] = p
	}
	sessionsByConsonant := make(map[uuid.UUID][]*domain.ActivitySession)
	for _, session := range completed {
		if session.Activity != nil {
			id := session.Activity.ConsonantID
			sessionsByConsonant[id] = append(sessionsByConsonant[id], session)
		}
	}

	out := make([]ConsonantProgress, 0, len(consonants))
	for _, c := range consonants {
		entry := ConsonantProgress{
			Consonant: SummaryConsonant{ID: c.ID, Letter: c.Letter, Name: c.Name},
		}
		if p, ok := byConsonant[c.ID]; ok {
			updated := p.UpdatedAt
			entry.Progress = ProgressSnapshot{
				WordsCompleted:       p.WordsCompleted,
				TotalWords:           p.TotalWords,
				CompletionPercentage: p.CompletionPercentage(),
				LastUpdated:          &updated,
			}
		}
		sessions := sessionsByConsonant[c.ID]
		entry.Activities.Completed = len(sessions)
		for _, session := range sessions {
			entry.Activities.TotalScore += session.Score
			entry.Activities.TotalTimeSpent += session.TimeSpent
		}
		entry.Activities.AverageAccuracy = averageAccuracy(sessions)
		out = append(out, entry)
	}
	return out
}

// averageAccuracy is the rounded mean of the unrounded per-session accuracies.
func averageAccuracy(sessions []*domain.ActivitySession) int {
	if len(sessions) == 0 {
		return 0
	}
	var sum float64
	for _, session := range sessions {
		if session.WordsTotal > 0 {
			sum += float64(session.WordsCorrect) / float64(session.WordsTotal) * 100
		}
	}
	return int(math.Round(sum / float64(len(sessions))))
}

// currentStreak is 1 when a session was completed today (UTC) and 2 when
// one was also completed yesterday.
func currentStreak(completed []*domain.ActivitySession, now time.Time) int {
	today := now.UTC().Truncate(24 * time.Hour)
	yesterday := today.AddDate(0, 0, -1)

	var hasToday, hasYesterday bool
	for _, session := range completed {
		if session.CompletedAt == nil {
			continue
		}
		day := session.CompletedAt.UTC().Truncate(24 * time.Hour)
		switch {
		case day.Equal(today):
			hasToday = true
		case day.Equal(yesterday):
			hasYesterday = true
		}
	}

	switch {
	case hasToday && hasYesterday:
		return 2
	case hasToday:
		return 1
	default:
		return 0
	}
}

func activityType(session *domain.ActivitySession) string {
	if session.Activity == nil {
		return "UNKNOWN"
	}
	return string(session.Activity.Type)
}

func consonantRef(session *domain.ActivitySession) *ConsonantRef {
	if session.Activity == nil || session.Activity.Consonant == nil {
		return nil
	}
	c := session.Activity.Consonant
	return &ConsonantRef{Letter: c.Letter, Name: c.Name}
}
