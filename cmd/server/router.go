package main

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/silabas-api/internal/api"
	apiMiddleware "github.com/phrazzld/silabas-api/internal/api/middleware"
	"github.com/phrazzld/silabas-api/internal/domain"
)

// setupRouter creates the router with all middleware and routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	identity := apiMiddleware.NewIdentityMiddleware(app.jwtService, app.config.Auth.CookieName)
	r.Use(identity.Resolve)
	r.Use(apiMiddleware.RouteGate)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.config.Auth, app.logger)
	catalogHandler := api.NewCatalogHandler(app.consonantService, app.generator, app.logger)
	activityHandler := api.NewActivityHandler(app.activityService, app.logger)
	progressHandler := api.NewProgressHandler(app.progressService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		// Authentication endpoints
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/session", authHandler.Session)

		// Catalog endpoints
		r.Get("/consonants", catalogHandler.ListConsonants)
		r.With(apiMiddleware.RequireRole(domain.RoleAdmin)).
			Post("/consonants", catalogHandler.CreateConsonant)
		r.Get("/words", catalogHandler.GenerateWords)

		// Activity session endpoints
		r.Post("/activities/start", activityHandler.Start)
		r.Get("/activities/{sessionId}/progress", activityHandler.GetProgress)
		r.Put("/activities/{sessionId}/progress", activityHandler.UpdateProgress)
		r.Post("/activities/{sessionId}/complete", activityHandler.Complete)

		// Progress endpoints
		r.Post("/migrate-progress", progressHandler.Migrate)
		r.Get("/progress/summary", progressHandler.Summary)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	if dir := app.config.Server.StaticDir; dir != "" {
		r.Handle("/*", staticHandler(dir))
	}

	return r
}

// staticHandler serves files from dir, falling back to index.html for paths
// that do not name a file so client-side routes resolve.
func staticHandler(dir string) http.Handler {
	root := http.Dir(dir)
	files := http.FileServer(root)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f, err := root.Open(r.URL.Path)
		if err == nil {
			_ = f.Close()
			files.ServeHTTP(w, r)
			return
		}
		if !os.IsNotExist(err) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		r.URL.Path = "/"
		files.ServeHTTP(w, r)
	})
}
