package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lwozdev/10x-cards/internal/http/handlers"
	"github.com/lwozdev/10x-cards/internal/infra"
	"github.com/lwozdev/10x-cards/internal/middleware"
)

func NewRouter(cfg *infra.Config, app *handlers.App, logger infra.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORSOrigins),
		middleware.Locale(middleware.LocaleEnglish),
	)

	r.Get("/v1/healthz", app.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthJWT(cfg.JWTSecret))

		r.Route("/v1/generations", func(r chi.Router) {
			// Provider calls are the expensive path; keep the per-client cap.
			r.Use(middleware.RateLimit(cfg.RateLimitPerMin, time.Minute))
			r.Post("/", app.Generate)
			r.Post("/suggest-name", app.SuggestName)
		})

		r.Route("/v1/sets", func(r chi.Router) {
			r.Post("/", app.CreateSet)
			r.Get("/", app.ListSets)
			r.Get("/{id}", app.GetSet)
			r.Put("/{id}", app.UpdateSet)
			r.Delete("/{id}", app.DeleteSet)
		})
	})

	return r
}
