package api

import (
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/puzpuzpuz/xsync/v4"

	"github.com/matzehuels/overflow/pkg/buildinfo"
	"github.com/matzehuels/overflow/pkg/cache"
	"github.com/matzehuels/overflow/pkg/observability"
	"github.com/matzehuels/overflow/pkg/scenario"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// Server is the HTTP fitting service. It implements http.Handler.
type Server struct {
	router   chi.Router
	store    scenario.Store
	cache    cache.Cache
	keyer    cache.Keyer
	logger   *log.Logger
	metrics  http.Handler
	version  string
	sessions *xsync.Map[string, *session]
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets where named scenarios are kept. The default is a
// scenario.MemoryStore.
func WithStore(st scenario.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithCache sets the result cache. The default caches nothing.
func WithCache(c cache.Cache) Option {
	return func(s *Server) { s.cache = c }
}

// WithKeyer sets how result cache keys are derived.
func WithKeyer(k cache.Keyer) Option {
	return func(s *Server) { s.keyer = k }
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// New creates a Server.
func New(opts ...Option) *Server {
	s := &Server{
		store:    scenario.NewMemoryStore(),
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		logger:   log.New(io.Discard),
		version:  buildinfo.Get().Version,
		sessions: xsync.NewMap[string, *session](),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Sessions returns the number of live sessions.
func (s *Server) Sessions() int {
	return s.sessions.Size()
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Post("/fit", s.handleFit)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", s.handleListScenarios)
			r.Get("/{name}", s.handleGetScenario)
			r.Put("/{name}", s.handlePutScenario)
			r.Delete("/{name}", s.handleDeleteScenario)
			r.Post("/{name}/run", s.handleRunScenario)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleCreateSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetSession)
				r.Delete("/", s.handleDeleteSession)
				r.Post("/items", s.handleAddItems)
				r.Delete("/items/{itemID}", s.handleRemoveItem)
				r.Post("/resize", s.handleResize)
			})
		})
	})
	return r
}

// logRequests logs every request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)

		observability.HTTP().OnResponse(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"elapsed", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"sessions": s.sessions.Size(),
	})
}
