package ui

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quizforge/app"
	"quizforge/internal"
)

// App represents the HTTP application
type App struct {
	router  *chi.Mux
	auth    *app.AuthService
	sources *app.SourceService
	quizzes *app.QuizService
	log     *internal.Logger
}

// NewApp creates a new HTTP application
func NewApp(auth *app.AuthService, sources *app.SourceService, quizzes *app.QuizService, log *internal.Logger) *App {
	a := &App{
		router:  chi.NewRouter(),
		auth:    auth,
		sources: sources,
		quizzes: quizzes,
		log:     log,
	}

	a.setupMiddleware()
	a.setupRoutes()

	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/logout", a.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(a.requireUser)

			r.Get("/auth/me", a.handleMe)

			r.Post("/sources/upload", a.handleSourceUpload)
			r.Post("/sources/topic", a.handleSourceTopic)
			r.Get("/sources", a.handleSourceList)
			r.Delete("/sources/{id}", a.handleSourceDelete)

			r.Post("/quizzes", a.handleQuizGenerate)
			r.Get("/quizzes/history", a.handleQuizHistory)
			r.Get("/quizzes/history/export", a.handleQuizHistoryExport)
			r.Get("/quizzes/{id}/attempt", a.handleQuizAttempt)
			r.Post("/quizzes/{id}/submit", a.handleQuizSubmit)
			r.Get("/quizzes/{id}/review", a.handleQuizReview)
		})
	})

	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Router exposes the configured handler for serving and for tests.
func (a *App) Router() http.Handler {
	return a.router
}

// Start runs the HTTP server on the given port.
func (a *App) Start(port string) error {
	a.log.Info("listening on :%s", port)
	return http.ListenAndServe(":"+port, a.router)
}
