package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/service/activity"
)

// Account requests and responses

// RegisterRequest defines the payload for the account registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID    uuid.UUID   `json:"id"`
	Email string      `json:"email"`
	Name  string      `json:"name"`
	Role  domain.Role `json:"role"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	User UserResponse `json:"user"`

	// Token is the JWT used for API authorization. It is also set as an
	// HttpOnly cookie.
	Token string `json:"token"`

	// ExpiresAt is the RFC 3339 timestamp when the token expires
	ExpiresAt string `json:"expiresAt"`
}

// SessionResponse describes the caller's current session.
type SessionResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user"`
}

func userToResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}

// Catalog requests

// CreateConsonantRequest defines the payload for adding a consonant.
type CreateConsonantRequest struct {
	Letter string `json:"letter" validate:"required"`
	Name   string `json:"name"   validate:"required,max=50"`
}

// Activity requests and responses

// StartActivityRequest defines the payload for starting an activity.
// ActivityType and Difficulty default to CONSONANT_PRACTICE and 1.
type StartActivityRequest struct {
	ConsonantID  string              `json:"consonantId"  validate:"required,uuid"`
	SessionID    string              `json:"sessionId"    validate:"max=200"`
	ActivityType domain.ActivityType `json:"activityType" validate:"omitempty,oneof=CONSONANT_PRACTICE SYLLABLE_GAME WORD_RECOGNITION"`
	Difficulty   int                 `json:"difficulty"   validate:"omitempty,min=1,max=5"`
}

// StartActivityResponse is returned when a session is started or resumed.
// SessionID is the id of the activity session, not the client session.
type StartActivityResponse struct {
	Success    bool      `json:"success"`
	SessionID  uuid.UUID `json:"sessionId"`
	ActivityID uuid.UUID `json:"activityId"`
	Resumed    bool      `json:"resumed"`
	Message    string    `json:"message"`
	StartedAt  time.Time `json:"startedAt"`
}

// UpdateProgressRequest defines the payload for reporting in-flight progress.
type UpdateProgressRequest struct {
	WordsCorrect *int            `json:"wordsCorrect" validate:"required,min=0"`
	WordsTotal   *int            `json:"wordsTotal"   validate:"required,min=0"`
	Score        *int            `json:"score"        validate:"omitempty,min=0"`
	TimeSpent    *int            `json:"timeSpent"    validate:"omitempty,min=0"`
	Metadata     domain.Metadata `json:"metadata"`
}

func (r UpdateProgressRequest) toDomain() domain.ProgressUpdate {
	return domain.ProgressUpdate{
		WordsCorrect: *r.WordsCorrect,
		WordsTotal:   *r.WordsTotal,
		Score:        r.Score,
		TimeSpent:    r.TimeSpent,
		Metadata:     r.Metadata,
	}
}

// ProgressResponse is a session with its in-flight statistics.
type ProgressResponse struct {
	Success bool                    `json:"success"`
	Session *domain.ActivitySession `json:"session"`
	Status  domain.SessionStatus    `json:"status"`
	Stats   activity.ProgressStats  `json:"stats"`
	Message string                  `json:"message,omitempty"`
}

// CompleteActivityRequest defines the payload for completing a session.
type CompleteActivityRequest struct {
	FinalScore   *int            `json:"finalScore"   validate:"required,min=0"`
	TimeSpent    *int            `json:"timeSpent"    validate:"required,min=0"`
	WordsCorrect *int            `json:"wordsCorrect" validate:"required,min=0"`
	WordsTotal   *int            `json:"wordsTotal"   validate:"required,min=0"`
	Metadata     domain.Metadata `json:"metadata"`
}

func (r CompleteActivityRequest) toDomain() domain.CompletionResult {
	return domain.CompletionResult{
		FinalScore:   *r.FinalScore,
		TimeSpent:    *r.TimeSpent,
		WordsCorrect: *r.WordsCorrect,
		WordsTotal:   *r.WordsTotal,
		Metadata:     r.Metadata,
	}
}

// CompleteActivityResponse is a completed session with final statistics and
// earned achievements.
type CompleteActivityResponse struct {
	Success      bool                    `json:"success"`
	Session      *domain.ActivitySession `json:"session"`
	Stats        domain.CompletionStats  `json:"stats"`
	Achievements []domain.Achievement    `json:"achievements"`
	Message      string                  `json:"message"`
}

// Progress requests and responses

// MigrateProgressRequest defines the payload for moving anonymous progress
// to the caller's account.
type MigrateProgressRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	UserID    string `json:"userId"    validate:"required,uuid"`
}

// MigrateProgressResponse reports the outcome of a migration.
type MigrateProgressResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Moved     int    `json:"moved"`
	Replaced  int    `json:"replaced"`
	Discarded int    `json:"discarded"`
}
