package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"recipebook/interfaces/http/openapi"
	"recipebook/interfaces/http/rest/middleware"
	"recipebook/pkg/auth"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/observability"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig carries the HTTP settings of the router
type RouterConfig struct {
	CORSAllowedOrigins []string
	EnableCORS         bool
	EnableMetrics      bool
	ReadyTimeout       time.Duration
}

// Router creates and configures the HTTP router
type Router struct {
	dispatcher *openapi.Dispatcher
	store      Pinger
	metrics    *observability.Metrics
	limiter    *auth.TokenBucketLimiter
	errors     *pkgerrors.ErrorHandler
	config     RouterConfig
	logger     *zap.Logger
}

// NewRouter creates a new router instance. limiter may be nil to disable rate limiting.
func NewRouter(
	dispatcher *openapi.Dispatcher,
	store Pinger,
	metrics *observability.Metrics,
	limiter *auth.TokenBucketLimiter,
	errHandler *pkgerrors.ErrorHandler,
	config RouterConfig,
	logger *zap.Logger,
) *Router {
	if config.ReadyTimeout <= 0 {
		config.ReadyTimeout = 2 * time.Second
	}
	return &Router{
		dispatcher: dispatcher,
		store:      store,
		metrics:    metrics,
		limiter:    limiter,
		errors:     errHandler,
		config:     config,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(rt.errors.Middleware)
	router.Use(middleware.Logger(rt.logger))
	if rt.config.EnableMetrics {
		router.Use(rt.metrics.Middleware)
	}

	if rt.config.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   rt.config.CORSAllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID", "Location"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.Handle(w, r, pkgerrors.NewNotFoundError("route "+r.URL.Path))
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		rt.errors.Handle(w, r, pkgerrors.NewMethodNotAllowedError(r.Method, r.URL.Path))
	})

	// Health check
	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.config.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", rt.metrics.Handler())
	}
	router.Get("/api/openapi.yaml", serveDocument)

	router.Group(func(r chi.Router) {
		if rt.limiter != nil {
			r.Use(middleware.RateLimit(rt.limiter, rt.metrics, rt.errors, rt.logger))
		}
		r.Handle("/api/*", rt.dispatcher)
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	_ = common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready once the store answers a ping
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), rt.config.ReadyTimeout)
	defer cancel()

	if err := rt.store.Ping(ctx); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		rt.errors.Handle(w, req, pkgerrors.NewUnavailableError("store").WithCause(err))
		return
	}

	_ = common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func serveDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(openapi.Document())
}
