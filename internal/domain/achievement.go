package domain

import (
	"math"
)

// AchievementType identifies an achievement.
type AchievementType string

// Achievements awarded on session completion.
const (
	AchievementFirstActivity AchievementType = "FIRST_ACTIVITY"
	AchievementPerfectScore  AchievementType = "PERFECT_SCORE"
	AchievementSpeedReader   AchievementType = "SPEED_READER"
)

// Achievement thresholds.
const (
	perfectScoreMinWords   = 5
	speedReaderMinWords    = 10
	speedReaderMaxSeconds  = 30.0
	firstActivityCompleted = 1
)

// Achievement is a bonus earned by completing a session.
type Achievement struct {
	Type        AchievementType `json:"type"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Points      int             `json:"points"`
}

// CompletionStats are the derived statistics of a completed session.
type CompletionStats struct {
	CompletionPercentage int `json:"completionPercentage"`
	Accuracy             int `json:"accuracy"`
	WordsCorrect         int `json:"wordsCorrect"`
	WordsTotal           int `json:"wordsTotal"`
	FinalScore           int `json:"finalScore"`
	TimeSpent            int `json:"timeSpent"`
	TimeSpentMinutes     int `json:"timeSpentMinutes"`
	AverageTimePerWord   int `json:"averageTimePerWord"`
}

// ComputeCompletionStats derives the statistics reported for a completed session.
func ComputeCompletionStats(s *ActivitySession) CompletionStats {
	return CompletionStats{
		CompletionPercentage: Percentage(s.WordsCorrect, s.WordsTotal),
		Accuracy:             Percentage(s.WordsCorrect, s.WordsTotal),
		WordsCorrect:         s.WordsCorrect,
		WordsTotal:           s.WordsTotal,
		FinalScore:           s.Score,
		TimeSpent:            s.TimeSpent,
		TimeSpentMinutes:     int(math.Round(float64(s.TimeSpent) / 60)),
		AverageTimePerWord:   int(math.Round(averageTimePerWord(s))),
	}
}

// EvaluateAchievements returns the achievements earned by a completed session.
// completedCount is the caller's number of completed sessions including this
// one; it only counts for authenticated callers.
func EvaluateAchievements(s *ActivitySession, authenticated bool, completedCount int) []Achievement {
	achievements := []Achievement{}

	if authenticated && completedCount == firstActivityCompleted {
		achievements = append(achievements, Achievement{
			Type:        AchievementFirstActivity,
			Name:        "Primera Actividad",
			Description: "¡Has completado tu primera actividad!",
			Points:      50,
		})
	}

	if Percentage(s.WordsCorrect, s.WordsTotal) == 100 && s.WordsTotal >= perfectScoreMinWords {
		achievements = append(achievements, Achievement{
			Type:        AchievementPerfectScore,
			Name:        "Puntuación Perfecta",
			Description: "¡100% de precisión en una actividad!",
			Points:      100,
		})
	}

	if averageTimePerWord(s) < speedReaderMaxSeconds && s.WordsTotal >= speedReaderMinWords {
		achievements = append(achievements, Achievement{
			Type:        AchievementSpeedReader,
			Name:        "Lector Rápido",
			Description: "¡Menos de 30 segundos por palabra!",
			Points:      75,
		})
	}

	return achievements
}

func averageTimePerWord(s *ActivitySession) float64 {
	if s.WordsTotal <= 0 {
		return 0
	}
	return float64(s.TimeSpent) / float64(s.WordsTotal)
}
