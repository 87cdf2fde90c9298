package api

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/service"
)

// ProgressHandler handles progress migration and summary requests.
type ProgressHandler struct {
	progress service.ProgressService
	logger   *slog.Logger
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progress service.ProgressService, logger *slog.Logger) *ProgressHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ProgressHandler")
	}
	return &ProgressHandler{
		progress: progress,
		logger:   logger.With(slog.String("component", "progress_handler")),
	}
}

// Migrate handles POST /api/migrate-progress. The caller must be
// authenticated as userId.
func (h *ProgressHandler) Migrate(w http.ResponseWriter, r *http.Request) {
	caller := shared.SessionFromContext(r.Context())
	if _, ok := domain.AsAuthenticated(caller); !ok {
		HandleAPIError(w, r, service.ErrUnauthenticated, "")
		return
	}

	var req MigrateProgressRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	result, err := h.progress.MigrateAnonymousProgress(
		r.Context(),
		caller,
		req.SessionID,
		uuid.MustParse(req.UserID),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to migrate progress")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, MigrateProgressResponse{
		Success:   true,
		Message:   "Progress migrated",
		Moved:     result.Moved,
		Replaced:  result.Replaced,
		Discarded: result.Discarded,
	})
}

// Summary handles GET /api/progress/summary. Anonymous callers identify
// themselves with the sessionId query parameter.
func (h *ProgressHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.progress.Summary(
		r.Context(),
		shared.SessionFromContext(r.Context()),
		r.URL.Query().Get("sessionId"),
	)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load progress summary")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, summary)
}
