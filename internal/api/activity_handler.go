package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/service/activity"
)

// ActivityHandler handles activity session requests.
type ActivityHandler struct {
	activities activity.Service
	logger     *slog.Logger
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activities activity.Service, logger *slog.Logger) *ActivityHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ActivityHandler")
	}
	return &ActivityHandler{
		activities: activities,
		logger:     logger.With(slog.String("component", "activity_handler")),
	}
}

// Start handles POST /api/activities/start. An existing pending session for
// the same activity is returned instead of creating a new one.
func (h *ActivityHandler) Start(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req StartActivityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.activities.Start(r.Context(), shared.SessionFromContext(r.Context()), activity.StartRequest{
		ConsonantID:  uuid.MustParse(req.ConsonantID),
		SessionID:    req.SessionID,
		ActivityType: req.ActivityType,
		Difficulty:   req.Difficulty,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to start activity")
		return
	}

	message := "Activity session started"
	if result.Resumed {
		message = "Existing activity session found"
	}
	log.Debug(message,
		slog.String("session_id", result.Session.ID.String()),
		slog.String("activity_id", result.Activity.ID.String()))

	shared.RespondWithJSON(w, r, http.StatusOK, StartActivityResponse{
		Success:    true,
		SessionID:  result.Session.ID,
		ActivityID: result.Activity.ID,
		Resumed:    result.Resumed,
		Message:    message,
		StartedAt:  result.Session.StartedAt,
	})
}

// GetProgress handles GET /api/activities/{sessionId}/progress.
func (h *ActivityHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "sessionId", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	result, err := h.activities.GetProgress(r.Context(), shared.SessionFromContext(r.Context()), sessionID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load activity progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		Success: true,
		Session: result.Session,
		Status:  result.Session.Status(),
		Stats:   result.Stats,
	})
}

// UpdateProgress handles PUT /api/activities/{sessionId}/progress.
func (h *ActivityHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := handlePathUUID(w, r, "sessionId", logger.FromContextOrDefault(r.Context(), h.logger))
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.activities.UpdateProgress(
		r.Context(),
		shared.SessionFromContext(r.Context()),
		sessionID,
		req.toDomain(),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update activity progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ProgressResponse{
		Success: true,
		Session: result.Session,
		Status:  result.Session.Status(),
		Stats:   result.Stats,
		Message: "Progress updated",
	})
}

// Complete handles POST /api/activities/{sessionId}/complete.
func (h *ActivityHandler) Complete(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	sessionID, ok := handlePathUUID(w, r, "sessionId", log)
	if !ok {
		return
	}

	var req CompleteActivityRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.activities.Complete(
		r.Context(),
		shared.SessionFromContext(r.Context()),
		sessionID,
		req.toDomain(),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to complete activity")
		return
	}

	log.Info("activity completed",
		slog.String("session_id", sessionID.String()),
		slog.Int("achievements", len(result.Achievements)))

	shared.RespondWithJSON(w, r, http.StatusOK, CompleteActivityResponse{
		Success:      true,
		Session:      result.Session,
		Stats:        result.Stats,
		Achievements: result.Achievements,
		Message:      "Activity completed",
	})
}
