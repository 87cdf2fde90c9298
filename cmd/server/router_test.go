package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/silabas-api/internal/api"
	"github.com/phrazzld/silabas-api/internal/config"
	"github.com/phrazzld/silabas-api/internal/domain"
	"github.com/phrazzld/silabas-api/internal/service"
	"github.com/phrazzld/silabas-api/internal/service/auth"
	"github.com/phrazzld/silabas-api/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                   8080,
			LogLevel:               "error",
			ShutdownTimeoutSeconds: 1,
		},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			URL:          "file::memory:",
			MaxOpenConns: 1,
		},
		Auth:      auth.DefaultJWTConfig(),
		Telemetry: config.TelemetryConfig{ServiceName: "silabas-api-test"},
	}
}

// newTestApp wires the application against a migrated in-memory database.
func newTestApp(t *testing.T, cfg *config.Config) *application {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app, err := newApplication(cfg, testdb.Open(t), logger)
	require.NoError(t, err)
	return app
}

func doRequest(t *testing.T, h http.Handler, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeJSON[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out), rec.Body.String())
	return out
}

func TestHealthCheck(t *testing.T) {
	router := newTestApp(t, testConfig()).setupRouter()

	rec := doRequest(t, router, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestAnonymousActivityFlowAndMigration(t *testing.T) {
	app := newTestApp(t, testConfig())
	router := app.setupRouter()
	const clientID = "anon-e2e"

	// Listing seeds the default catalog
	rec := doRequest(t, router, http.MethodGet, "/api/consonants", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	consonants := decodeJSON[[]domain.Consonant](t, rec)
	require.NotEmpty(t, consonants)

	var b domain.Consonant
	for _, c := range consonants {
		if c.Letter == "B" {
			b = c
		}
	}
	require.NotEqual(t, uuid.Nil, b.ID, "catalog should contain B")

	rec = doRequest(t, router, http.MethodGet, "/api/words?consonantId="+b.ID.String()+"&maxWords=5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	words := decodeJSON[[]domain.Word](t, rec)
	require.NotEmpty(t, words)
	assert.LessOrEqual(t, len(words), 5)
	for _, w := range words {
		assert.Equal(t, b.ID, w.ConsonantID)
	}

	rec = doRequest(t, router, http.MethodPost, "/api/activities/start", map[string]any{
		"consonantId":  b.ID.String(),
		"sessionId":    clientID,
		"activityType": "SYLLABLE_GAME",
		"difficulty":   1,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	started := decodeJSON[api.StartActivityResponse](t, rec)
	assert.False(t, started.Resumed)
	sessionPath := "/api/activities/" + started.SessionID.String()

	// Starting again resumes the pending session
	rec = doRequest(t, router, http.MethodPost, "/api/activities/start", map[string]any{
		"consonantId":  b.ID.String(),
		"sessionId":    clientID,
		"activityType": "SYLLABLE_GAME",
		"difficulty":   1,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	resumed := decodeJSON[api.StartActivityResponse](t, rec)
	assert.True(t, resumed.Resumed)
	assert.Equal(t, started.SessionID, resumed.SessionID)

	rec = doRequest(t, router, http.MethodPut, sessionPath+"/progress", map[string]any{
		"wordsCorrect": 2,
		"wordsTotal":   5,
		"score":        20,
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodGet, sessionPath+"/progress", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	progress := decodeJSON[api.ProgressResponse](t, rec)
	assert.Equal(t, domain.SessionPending, progress.Status)
	assert.Equal(t, 2, progress.Session.WordsCorrect)

	// Ten words at twelve seconds each earn both score achievements
	complete := map[string]any{
		"finalScore":   100,
		"timeSpent":    120,
		"wordsCorrect": 10,
		"wordsTotal":   10,
	}
	rec = doRequest(t, router, http.MethodPost, sessionPath+"/complete", complete, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	completed := decodeJSON[api.CompleteActivityResponse](t, rec)
	assert.Equal(t, 100, completed.Stats.Accuracy)
	var types []domain.AchievementType
	for _, a := range completed.Achievements {
		types = append(types, a.Type)
	}
	assert.ElementsMatch(t, []domain.AchievementType{
		domain.AchievementPerfectScore,
		domain.AchievementSpeedReader,
	}, types)

	// A second completion is rejected and leaves the first result intact
	complete["finalScore"] = 1
	rec = doRequest(t, router, http.MethodPost, sessionPath+"/complete", complete, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/progress/summary?sessionId="+clientID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeJSON[service.Summary](t, rec)
	assert.False(t, summary.User.IsAuthenticated)
	assert.Equal(t, 1, summary.Stats.TotalActivitiesCompleted)
	assert.Equal(t, 100, summary.Stats.TotalScore)
	assert.Equal(t, 1, summary.Stats.ConsonantsCompleted)

	// Register and move the anonymous progress into the new account
	rec = doRequest(t, router, http.MethodPost, "/api/auth/register", map[string]any{
		"email":    "familia@example.com",
		"name":     "Familia",
		"password": "contraseña-segura",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decodeJSON[api.AuthResponse](t, rec)
	require.NotEmpty(t, registered.Token)

	migrate := map[string]any{"sessionId": clientID, "userId": registered.User.ID.String()}
	rec = doRequest(t, router, http.MethodPost, "/api/migrate-progress", migrate, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/migrate-progress", migrate, registered.Token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	migrated := decodeJSON[api.MigrateProgressResponse](t, rec)
	assert.Equal(t, 1, migrated.Moved)

	rec = doRequest(t, router, http.MethodGet, "/api/progress/summary", nil, registered.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	summary = decodeJSON[service.Summary](t, rec)
	assert.True(t, summary.User.IsAuthenticated)
	assert.Equal(t, 1, summary.Stats.ConsonantsStarted)
	assert.Equal(t, 10, summary.Stats.TotalWordsCompleted)

	rec = doRequest(t, router, http.MethodGet, "/api/progress/summary?sessionId="+clientID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary = decodeJSON[service.Summary](t, rec)
	assert.Equal(t, 0, summary.Stats.ConsonantsStarted)
}

func TestCreateConsonantRequiresAdmin(t *testing.T) {
	app := newTestApp(t, testConfig())
	router := app.setupRouter()
	body := map[string]any{"letter": "ñ", "name": "Eñe"}

	rec := doRequest(t, router, http.MethodPost, "/api/consonants", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	user := testdb.SeedUser(t, app.db, "user@example.com", domain.RoleUser)
	userToken, err := app.jwtService.GenerateToken(context.Background(), user.ID, user.Role)
	require.NoError(t, err)
	rec = doRequest(t, router, http.MethodPost, "/api/consonants", body, userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := testdb.SeedUser(t, app.db, "admin@example.com", domain.RoleAdmin)
	adminToken, err := app.jwtService.GenerateToken(context.Background(), admin.ID, admin.Role)
	require.NoError(t, err)
	rec = doRequest(t, router, http.MethodPost, "/api/consonants", body, adminToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeJSON[domain.Consonant](t, rec)
	assert.Equal(t, "Ñ", created.Letter)

	rec = doRequest(t, router, http.MethodPost, "/api/consonants", body, adminToken)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginSetsSessionCookie(t *testing.T) {
	cfg := testConfig()
	router := newTestApp(t, cfg).setupRouter()
	creds := map[string]any{"email": "tutor@example.com", "password": "password123"}

	rec := doRequest(t, router, http.MethodPost, "/api/auth/register", creds, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doRequest(t, router, http.MethodPost, "/api/auth/login", creds, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == cfg.Auth.CookieName {
			sessionCookie = c
		}
	}
	require.NotNil(t, sessionCookie)
	assert.True(t, sessionCookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(sessionCookie)
	sessionRec := httptest.NewRecorder()
	router.ServeHTTP(sessionRec, req)
	require.Equal(t, http.StatusOK, sessionRec.Code)
	session := decodeJSON[api.SessionResponse](t, sessionRec)
	assert.True(t, session.Authenticated)
	require.NotNil(t, session.User)
	assert.Equal(t, "tutor@example.com", session.User.Email)

	rec = doRequest(t, router, http.MethodPost, "/api/auth/login",
		map[string]any{"email": "tutor@example.com", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouteGateAndStaticFrontend(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>silabas</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log('hola')"), 0o600))

	cfg := testConfig()
	cfg.Server.StaticDir = dir
	app := newTestApp(t, cfg)
	router := app.setupRouter()

	rec := doRequest(t, router, http.MethodGet, "/app.js", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hola")

	rec = doRequest(t, router, http.MethodGet, "/juegos/silabas", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "silabas")

	rec = doRequest(t, router, http.MethodGet, "/activities", nil, "")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/?redirect=%2Factivities", rec.Header().Get("Location"))

	teacher := testdb.SeedUser(t, app.db, "teacher@example.com", domain.RoleTeacher)
	token, err := app.jwtService.GenerateToken(context.Background(), teacher.ID, teacher.Role)
	require.NoError(t, err)

	rec = doRequest(t, router, http.MethodGet, "/admin", nil, token)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = doRequest(t, router, http.MethodGet, "/teacher", nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, router, http.MethodGet, "/api/unknown", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
