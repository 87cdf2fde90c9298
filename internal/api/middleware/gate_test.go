package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/api/shared"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRouteGate(t *testing.T) {
	t.Parallel()

	user := domain.Authenticated{UserID: uuid.New(), Role: domain.RoleUser}
	teacher := domain.Authenticated{UserID: uuid.New(), Role: domain.RoleTeacher}
	admin := domain.Authenticated{UserID: uuid.New(), Role: domain.RoleAdmin}

	tests := []struct {
		name     string
		path     string
		session  domain.Session
		status   int
		location string
	}{
		{"public page", "/", domain.Anonymous{}, http.StatusOK, ""},
		{"api is never gated", "/api/activities/start", domain.Anonymous{}, http.StatusOK, ""},
		{"prefix lookalike", "/activitiesx", domain.Anonymous{}, http.StatusOK, ""},
		{"anonymous activities", "/activities/abc", domain.Anonymous{}, http.StatusTemporaryRedirect, "/?redirect=%2Factivities%2Fabc"},
		{"anonymous progress", "/progress", domain.Anonymous{}, http.StatusTemporaryRedirect, "/?redirect=%2Fprogress"},
		{"anonymous profile", "/profile", domain.Anonymous{}, http.StatusTemporaryRedirect, "/?redirect=%2Fprofile"},
		{"user activities", "/activities/abc", user, http.StatusOK, ""},
		{"user admin", "/admin", user, http.StatusTemporaryRedirect, "/"},
		{"user teacher", "/teacher/classes", user, http.StatusTemporaryRedirect, "/"},
		{"teacher teacher", "/teacher/classes", teacher, http.StatusOK, ""},
		{"teacher admin", "/admin/users", teacher, http.StatusTemporaryRedirect, "/"},
		{"admin teacher", "/teacher", admin, http.StatusOK, ""},
		{"admin admin", "/admin/users", admin, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := RouteGate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req = req.WithContext(shared.WithSession(req.Context(), tt.session))
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}
