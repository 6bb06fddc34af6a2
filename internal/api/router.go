package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type RouterConfig struct {
	Handler   *Handler
	JWTSecret string
	PgPool    *pgxpool.Pool // nil in memory mode
	Redis     *redis.Client // nil when the date lock is disabled
	Env       string
	Version   string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	r.Post("/accounts", cfg.Handler.register)
	r.Post("/login", cfg.Handler.login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.JWTSecret))
		r.Post("/availabilities", cfg.Handler.publishAvailability)
		r.Post("/appointments", cfg.Handler.reserve)
		r.Get("/appointments", cfg.Handler.listAppointments)
		r.Delete("/appointments/{id}", cfg.Handler.cancel)
		r.Get("/schedule", cfg.Handler.searchSchedule)
		r.Post("/vaccines/{name}/doses", cfg.Handler.addDoses)
	})

	return r
}
