package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/service"
	"github.com/phrazzld/silabas-api/internal/service/auth"
	"github.com/phrazzld/silabas-api/internal/store"
)

// AuthHandler handles account registration, login and session endpoints.
type AuthHandler struct {
	users        service.UserService
	jwtService   auth.JWTService
	cookieName   string
	cookieSecure bool
	now          func() time.Time
	logger       *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	users service.UserService,
	jwtService auth.JWTService,
	cfg config.AuthConfig,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		users:        users,
		jwtService:   jwtService,
		cookieName:   cfg.CookieName,
		cookieSecure: cfg.CookieSecure,
		now:          time.Now,
		logger:       logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.Register(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create account")
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := shared.ValidateRequest(&req); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
}

// Logout handles POST /api/auth/logout by expiring the session cookie.
// Bearer tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{"success": true})
}

// Session handles GET /api/auth/session and reports who the caller is.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	caller, ok := domain.AsAuthenticated(shared.SessionFromContext(r.Context()))
	if !ok {
		shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{})
		return
	}

	user, err := h.users.GetUser(r.Context(), caller.UserID)
	if errors.Is(err, store.ErrUserNotFound) {
		// A valid token for a deleted account
		log.Warn("session token refers to a missing account",
			slog.String("user_id", caller.UserID.String()))
		shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{})
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load session")
		return
	}

	resp := userToResponse(user)
	shared.RespondWithJSON(w, r, http.StatusOK, SessionResponse{
		Authenticated: true,
		User:          &resp,
	})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *domain.User) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID, user.Role)
	if err != nil {
		log.Error("failed to generate token",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	lifetime := h.jwtService.Lifetime()
	expiresAt := h.now().UTC().Add(lifetime)

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(lifetime.Seconds()),
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	shared.RespondWithJSON(w, r, status, AuthResponse{
		User:      userToResponse(user),
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	})
}
