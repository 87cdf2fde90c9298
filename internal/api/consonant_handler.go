package api

import (
	"log/slog"
	"net/http"

	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/service"
	"github.com/phrazzld/silabas-api/internal/service/wordengine"
)

// CatalogHandler serves the consonant catalog and generated word lists.
type CatalogHandler struct {
	consonants service.ConsonantService
	generator  wordengine.Generator
	logger     *slog.Logger
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(
	consonants service.ConsonantService,
	generator wordengine.Generator,
	logger *slog.Logger,
) *CatalogHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CatalogHandler")
	}
	return &CatalogHandler{
		consonants: consonants,
		generator:  generator,
		logger:     logger.With(slog.String("component", "catalog_handler")),
	}
}

// ListConsonants handles GET /api/consonants. Missing default consonants are
// seeded before listing.
func (h *CatalogHandler) ListConsonants(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	seeded, err := h.consonants.SeedConsonants(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load consonants")
		return
	}
	if seeded > 0 {
		log.Info("seeded default consonants", slog.Int("count", seeded))
	}

	consonants, err := h.consonants.ListConsonants(r.Context())
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load consonants")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, consonants)
}

// CreateConsonant handles POST /api/consonants. The router restricts it to
// administrators.
func (h *CatalogHandler) CreateConsonant(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateConsonantRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	consonant, err := h.consonants.CreateConsonant(r.Context(), req.Letter, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create consonant")
		return
	}

	log.Info("consonant created",
		slog.String("consonant_id", consonant.ID.String()),
		slog.String("letter", consonant.Letter))
	shared.RespondWithJSON(w, r, http.StatusCreated, consonant)
}

// GenerateWords handles GET /api/words.
//
// Query parameters: consonantId (required), syllableCount, difficulty and
// maxWords (optional integers).
func (h *CatalogHandler) GenerateWords(w http.ResponseWriter, r *http.Request) {
	verr := &domain.ValidationError{}
	opts := wordengine.Options{
		ConsonantID:   queryUUID(r, "consonantId", verr),
		SyllableCount: queryInt(r, "syllableCount", verr),
		Difficulty:    queryInt(r, "difficulty", verr),
		MaxWords:      queryInt(r, "maxWords", verr),
	}
	if err := verr.OrNil(); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	words, err := h.generator.Generate(r.Context(), opts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate words")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, words)
}
