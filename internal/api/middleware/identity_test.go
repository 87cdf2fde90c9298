package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/mocks"
	"github.com/phrazzld/silabas-api/internal/service/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCookie = "silabas_session"

func TestIdentityMiddleware_Resolve(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	valid := &auth.Claims{UserID: userID, Role: domain.RoleTeacher}

	tests := []struct {
		name        string
		authHeader  string
		cookie      string
		claims      *auth.Claims
		validateErr error
		want        domain.Session
	}{
		{
			name:       "bearer token",
			authHeader: "Bearer valid-token",
			claims:     valid,
			want:       domain.Authenticated{UserID: userID, Role: domain.RoleTeacher},
		},
		{
			name:       "lower case scheme",
			authHeader: "bearer valid-token",
			claims:     valid,
			want:       domain.Authenticated{UserID: userID, Role: domain.RoleTeacher},
		},
		{
			name:   "session cookie",
			cookie: "valid-token",
			claims: valid,
			want:   domain.Authenticated{UserID: userID, Role: domain.RoleTeacher},
		},
		{
			name: "no credentials",
			want: domain.Anonymous{},
		},
		{
			name:       "malformed header",
			authHeader: "InvalidFormat",
			claims:     valid,
			want:       domain.Anonymous{},
		},
		{
			name:        "expired token",
			authHeader:  "Bearer expired-token",
			validateErr: auth.ErrExpiredToken,
			want:        domain.Anonymous{},
		},
		{
			name:        "invalid cookie",
			cookie:      "garbage",
			validateErr: auth.ErrInvalidToken,
			want:        domain.Anonymous{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			jwtService := &mocks.MockJWTService{
				Claims:      tt.claims,
				ValidateErr: tt.validateErr,
			}
			identity := NewIdentityMiddleware(jwtService, testCookie)

			var captured domain.Session
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				captured = shared.SessionFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/consonants", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()

			identity.Resolve(next).ServeHTTP(rec, req)

			// Identity resolution never rejects a request
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, captured)
		})
	}
}

func TestIdentityMiddleware_HeaderWinsOverCookie(t *testing.T) {
	t.Parallel()

	var seen string
	jwtService := &mocks.MockJWTService{
		ValidateTokenFn: func(_ context.Context, token string) (*auth.Claims, error) {
			seen = token
			return &auth.Claims{UserID: uuid.New(), Role: domain.RoleUser}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: testCookie, Value: "cookie-token"})

	NewIdentityMiddleware(jwtService, testCookie).
		Resolve(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).
		ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "header-token", seen)
}

func TestRequireRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		session        domain.Session
		expectedStatus int
	}{
		{"anonymous", domain.Anonymous{}, http.StatusUnauthorized},
		{"user", domain.Authenticated{UserID: uuid.New(), Role: domain.RoleUser}, http.StatusForbidden},
		{"teacher", domain.Authenticated{UserID: uuid.New(), Role: domain.RoleTeacher}, http.StatusForbidden},
		{"admin", domain.Authenticated{UserID: uuid.New(), Role: domain.RoleAdmin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := RequireRole(domain.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/api/consonants", nil)
			req = req.WithContext(shared.WithSession(req.Context(), tt.session))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestIdentityMiddleware_SignedToken(t *testing.T) {
	t.Parallel()

	jwtService := auth.RequireTestJWTService(t)
	userID := uuid.New()

	var got domain.Session
	handler := NewIdentityMiddleware(jwtService, testCookie).Resolve(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = shared.SessionFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/api/progress/summary", nil)
	req.Header.Set("Authorization", auth.GenerateAuthHeaderForTestingT(t, jwtService, userID, domain.RoleAdmin))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, domain.Authenticated{UserID: userID, Role: domain.RoleAdmin}, got)

	// A token signed with another secret leaves the caller anonymous
	other, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "another-secret-that-is-also-32-chars",
		TokenLifetimeMinutes: 60,
		CookieName:           testCookie,
	})
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/progress/summary", nil)
	req.Header.Set("Authorization", auth.GenerateAuthHeaderForTestingT(t, other, userID, domain.RoleAdmin))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, domain.Anonymous{}, got)
}
