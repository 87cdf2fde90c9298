package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/platform/logger"
	"github.com/phrazzld/silabas-api/internal/redact"
	"github.com/phrazzld/silabas-api/internal/service/auth"
)

// IdentityMiddleware resolves the caller's session once per request.
type IdentityMiddleware struct {
	jwtService auth.JWTService
	cookieName string
}

// NewIdentityMiddleware creates a new IdentityMiddleware. Tokens are read from
// the Authorization header or, failing that, from the named cookie.
func NewIdentityMiddleware(jwtService auth.JWTService, cookieName string) *IdentityMiddleware {
	return &IdentityMiddleware{
		jwtService: jwtService,
		cookieName: cookieName,
	}
}

// Resolve stores a domain.Session in the request context. Requests without a
// token, or with an invalid one, continue as Anonymous.
func (m *IdentityMiddleware) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var session domain.Session = domain.Anonymous{}

		if token := m.token(r); token != "" {
			claims, err := m.jwtService.ValidateToken(r.Context(), token)
			switch {
			case err == nil:
				session = claims.Session()
			case errors.Is(err, auth.ErrExpiredToken), errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid):
				logger.FromContext(r.Context()).Debug("ignoring unusable token",
					slog.String("reason", err.Error()))
			default:
				logger.FromContext(r.Context()).Error("failed to validate token",
					slog.String("error", redact.Error(err)))
			}
		}

		if a, ok := domain.AsAuthenticated(session); ok {
			ctx := logger.WithLogger(r.Context(),
				logger.FromContext(r.Context()).With(slog.String("user_id", a.UserID.String())))
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r.WithContext(shared.WithSession(r.Context(), session)))
	})
}

func (m *IdentityMiddleware) token(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if m.cookieName == "" {
		return ""
	}
	if cookie, err := r.Cookie(m.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireRole rejects callers that are not authenticated with one of roles.
// Anonymous callers get 401, other roles 403.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := domain.AsAuthenticated(shared.SessionFromContext(r.Context()))
			if !ok {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !hasRole(caller.Role, roles) {
				shared.RespondWithErrorAndLog(w, r, http.StatusForbidden, "Insufficient permissions",
					errors.New("role "+string(caller.Role)+" not permitted"), shared.WithElevatedLogLevel())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func hasRole(role domain.Role, allowed []domain.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
