package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/videotranscriber/internal/api/handlers"
	"github.com/nikhilbhutani/videotranscriber/internal/api/middleware"
	"github.com/nikhilbhutani/videotranscriber/internal/auth"
	"github.com/nikhilbhutani/videotranscriber/internal/config"
	"github.com/nikhilbhutani/videotranscriber/internal/metrics"
)

type Router struct {
	mux         *chi.Mux
	cfg         *config.Config
	transcriber handlers.Transcriber
	metrics     *metrics.Metrics
	limiter     *middleware.RateLimiter
	info        map[string]string
}

// NewRouter wires the HTTP surface. info is reported by /readyz.
func NewRouter(cfg *config.Config, t handlers.Transcriber, m *metrics.Metrics, info map[string]string) *Router {
	return &Router{
		mux:         chi.NewRouter(),
		cfg:         cfg,
		transcriber: t,
		metrics:     m,
		info:        info,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics(rt.metrics))
	r.Use(middleware.CORS(rt.cfg.CORS.AllowedOrigins))

	// Health endpoints (no auth, no rate limit)
	health := handlers.NewHealthHandler(map[string]handlers.Check{
		"temp_dir": handlers.TempDirWritable(rt.cfg.Fetch.TempDir),
	}, rt.info)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)
	r.Method(http.MethodGet, "/metrics", rt.metrics.Handler())

	transcribeH := handlers.NewTranscribeHandler(rt.transcriber)
	r.Group(func(r chi.Router) {
		if rt.cfg.RateLimit.RPS > 0 {
			rt.limiter = middleware.NewRateLimiter(rt.cfg.RateLimit.RPS, rt.cfg.RateLimit.Burst)
			r.Use(rt.limiter.Limit)
		}
		if rt.cfg.Auth.JWTSecret != "" {
			r.Use(auth.NewJWTMiddleware(rt.cfg.Auth.JWTSecret).Authenticate)
		}
		r.Post("/transcribe", transcribeH.Transcribe)
	})

	return r
}

// Close stops background work started by Setup.
func (rt *Router) Close() {
	if rt.limiter != nil {
		rt.limiter.Stop()
	}
}
