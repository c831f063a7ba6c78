package http

import (
	"context"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bikeshare/internal/cache"
	"bikeshare/internal/log"
	"bikeshare/internal/middleware/ratelimit"
	"bikeshare/internal/middleware/security"
	"bikeshare/internal/middleware/trace"
	"bikeshare/internal/services"
	appweb "bikeshare/web"
)

const (
	// handlerTimeout bounds the work of a single dashboard request.
	handlerTimeout = 7 * time.Second

	staticMaxAge = 86400
)

// Options tune the optional parts of the server.
type Options struct {
	// RateLimitPerMinute limits /api/ requests per client. Zero disables it.
	RateLimitPerMinute int
	// CacheCleanupInterval is how often expired dashboards are dropped.
	CacheCleanupInterval time.Duration
}

// Server serves the dashboard page, its HTMX partial and the JSON API.
type Server struct {
	http.Server
	templates  *template.Template
	dashboards *services.DashboardService

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	caches   *cache.Manager

	startedAt    time.Time
	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
// A template parse failure is logged and surfaces through /readyz.
func NewServer(addr string, dashboards *services.DashboardService, opts Options) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		dashboards: dashboards,
		detector:   security.NewDetector(),
		caches:     cache.NewManager(),
		startedAt:  time.Now(),
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		slog.Error("Template parsing failed", "error", err)
	} else {
		s.templates = tmpl
	}

	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
	}

	s.caches.Register("dashboards", dashboards.Cache())
	if opts.CacheCleanupInterval > 0 {
		s.caches.StartCleanup(opts.CacheCleanupInterval)
	}

	if static, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(static)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(fileServer))
	} else {
		slog.Error("Static assets unavailable", "error", err)
	}

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/dashboard", s.handleDashboardPartial)
	mux.Handle("GET /api/dashboard", s.api(s.handleAPIDashboard))
	mux.Handle("GET /api/hourly", s.api(s.handleAPIHourly))
	mux.Handle("GET /api/weekday", s.api(s.handleAPIWeekday))
	mux.Handle("GET /api/summary", s.api(s.handleAPISummary))
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())

	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, func(r *http.Request) string {
		if _, pattern := mux.Handler(r); pattern != "" {
			return pattern
		}
		return "unmatched"
	})

	var handler http.Handler = mux
	handler = s.detector.Middleware(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = log.RequestIDMiddleware(func(r *http.Request) string {
		return trace.GetRequestID(r.Context())
	})(handler)
	handler = s.tracer.Middleware(handler)
	handler = log.Middleware(log.ForComponent(log.ComponentHTTP))(handler)
	s.Handler = handler

	return s
}

// api wraps an API handler with the per-client rate limiter when enabled.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	if s.limiter == nil {
		return h
	}
	return s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})(h)
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.caches.Stop()

		if s.limiter != nil {
			s.limiter.Stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
