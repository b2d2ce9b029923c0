package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iago/model-select/internal/http/handlers"
	"github.com/iago/model-select/internal/http/middleware"
	"github.com/iago/model-select/internal/ratelimit"
)

type RouterDependencies struct {
	API         *handlers.API
	Logger      zerolog.Logger
	AuthToken   string
	CORSOrigins []string
	Limiter     ratelimit.Limiter
}

func NewRouter(deps RouterDependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover(deps.Logger))
	r.Use(middleware.Trace(deps.Logger))
	r.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   deps.CORSOrigins,
		AllowCredentials: true,
	}))

	r.NotFound(deps.API.NotFound)
	r.MethodNotAllowed(deps.API.MethodNotAllowed)

	r.Get("/", deps.API.Root)
	r.Get("/healthz", deps.API.Health)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.Limiter, deps.Logger))
		r.Use(middleware.Auth(deps.AuthToken))

		r.Post("/select-model", deps.API.SelectModel)
		r.Get("/tiers", deps.API.Tiers)

		// Override writes are only exposed behind a configured token.
		if deps.AuthToken != "" {
			r.Get("/overrides", deps.API.ListOverrides)
			r.Put("/overrides/{key}", deps.API.PutOverride)
		}
	})

	return r
}
