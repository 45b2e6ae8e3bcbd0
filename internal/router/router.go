package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-community/internal/config"
	"go-community/internal/handler"
	"go-community/internal/metrics"
	"go-community/internal/middleware"
	"go-community/internal/model"
)

type Handlers struct {
	Home   *handler.HomeHandler
	Data   *handler.DataHandler
	Auth   *handler.AuthHandler
	Health *handler.HealthHandler
}

// Deps are the request-scoped collaborators shared by every route.
type Deps struct {
	Interceptor *middleware.LoginTicketInterceptor
	Stats       middleware.StatsRecorder
	Metrics     *metrics.Metrics
}

func New(cfg *config.Config, deps Deps, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM, "/logout")
	gate := middleware.NewVersionGate(deps.Metrics)
	render := handler.NewRenderer(deps.Interceptor)
	adminOnly := middleware.RequireUserType(model.UserTypeAdmin)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging(deps.Metrics))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", h.Health.Health)
	if cfg.MetricsEnabled {
		r.Handle("/metrics", deps.Metrics.Handler())
	}

	r.Group(func(site chi.Router) {
		site.Use(rateLimitMiddleware.Handler)
		site.Use(deps.Interceptor.Handler)
		if deps.Stats != nil {
			site.Use(middleware.DataRecorder(deps.Stats))
		}
		site.Use(middleware.Timeout(cfg.RequestTimeout))

		site.Get("/", render.Page(h.Home.Index))
		site.Get("/index", render.Page(h.Home.Index))
		site.Get("/posts/{id}", render.Page(h.Home.Post))
		site.With(middleware.RequireLogin).Post("/posts", render.Page(h.Home.Publish))

		site.With(middleware.RequireLogin).Get("/api/me", h.Auth.Me)
		site.Post("/logout", render.Page(h.Auth.Logout))

		site.With(gate.Require(2), adminOnly).Get("/{version}/data", render.Page(h.Data.Page))
		site.With(gate.Require(2), adminOnly).Post("/{version}/data", render.Page(h.Data.Page))
		site.With(gate.Require(2), adminOnly).Post("/{version}/data/uv", render.Page(h.Data.UV))
		site.With(adminOnly).Post("/data/dau", render.Page(h.Data.DAU))
	})

	return r
}
