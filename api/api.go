// Package api serves the lookout HTTP API: annotation CRUD, index threshold
// rule editor support, and the entity list.
//
//	@title			lookout API
//	@version		1.0
//	@description	Observability annotations, index threshold rule editing and entity search over Elasticsearch
//
// @host		localhost:5601
// @BasePath	/
// @securityDefinitions.basic	BasicAuth
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
// @description				Bearer token issued by "lookout token" when auth.mode is jwt
package api

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"lookout/config"
	"lookout/core"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterEntry holds a rate limiter with last seen time
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AnnotationStorer interface for annotation storage
type AnnotationStorer interface {
	Create(ctx context.Context, ann core.Annotation) (*core.StoredAnnotation, error)
	Update(ctx context.Context, id string, ann core.Annotation) (*core.StoredAnnotation, error)
	GetByID(ctx context.Context, id string) (*core.StoredAnnotation, error)
	Delete(ctx context.Context, id string) (map[string]any, error)
	Find(ctx context.Context, params core.FindParams) (*core.FindResult, error)
	Permissions(ctx context.Context) (*core.AnnotationPermissions, error)
}

// FieldLookup interface for index pattern field lookups
type FieldLookup interface {
	Fields(ctx context.Context, indexPatterns []string) []core.Field
}

// IndexLookup interface for index name suggestions
type IndexLookup interface {
	Indices(ctx context.Context, pattern string) []string
}

// TimeSeriesQuerier interface for rule preview queries
type TimeSeriesQuerier interface {
	Query(ctx context.Context, params core.TimeSeriesParams) (*core.TimeSeriesResult, error)
}

// EntityLister interface for the entity store
type EntityLister interface {
	List(ctx context.Context, params core.EntityListParams) (*core.EntityListResult, error)
}

// Pinger interface for backend health checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the backends behind the API
type Services struct {
	Annotations AnnotationStorer
	Fields      FieldLookup
	Indices     IndexLookup
	TimeSeries  TimeSeriesQuerier
	Entities    EntityLister
	Health      Pinger
}

// API holds the HTTP router and its backends
type API struct {
	router   *mux.Router
	server   *http.Server
	services Services
	config   *config.Config
	logger   *zap.SugaredLogger
	validate *validator.Validate

	rateLimiters   map[string]*rateLimiterEntry
	rateLimitersMu sync.Mutex
	authFailures   map[string]*authFailureEntry
	authFailuresMu sync.Mutex

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewAPI creates a new API instance
func NewAPI(services Services, cfg *config.Config, logger *zap.SugaredLogger) *API {
	a := &API{
		router:       mux.NewRouter(),
		services:     services,
		config:       cfg,
		logger:       logger,
		validate:     validator.New(),
		rateLimiters: make(map[string]*rateLimiterEntry),
		authFailures: make(map[string]*authFailureEntry),
		stopCh:       make(chan struct{}),
	}
	a.setupRoutes()
	a.server = &http.Server{
		Addr:         net.JoinHostPort(cfg.API.Host, strconv.Itoa(cfg.API.Port)),
		Handler:      a.router,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}
	go a.cleanupRateLimiters()
	return a
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.requestIDMiddleware)
	a.router.Use(a.metricsMiddleware)
	a.router.Use(a.corsMiddleware)
	a.router.Use(a.rateLimitMiddleware)
	if a.config.Auth.Enabled {
		a.router.Use(a.authMiddleware)
	}

	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler())

	// Swagger UI
	a.router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	if a.services.Annotations != nil {
		a.registerAnnotationRoutes()
	}
	if a.services.Fields != nil && a.services.Indices != nil && a.services.TimeSeries != nil {
		a.registerRuleRoutes()
	}
	if a.services.Entities != nil {
		a.registerEntityRoutes()
	}
}

// Handler returns the root HTTP handler
func (a *API) Handler() http.Handler {
	return a.router
}

// Start starts the API server and blocks until it stops
func (a *API) Start() error {
	a.logger.Infow("API server listening", "addr", a.server.Addr, "tls", a.config.API.TLS)

	if a.config.API.TLS {
		return a.server.ListenAndServeTLS(a.config.API.CertFile, a.config.API.KeyFile)
	}
	return a.server.ListenAndServe()
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stopCh) })
	return a.server.Shutdown(ctx)
}

// maxBodyBytes caps request bodies
func (a *API) maxBodyBytes() int64 {
	if a.config.API.MaxBodyBytes > 0 {
		return a.config.API.MaxBodyBytes
	}
	return 1 << 20
}

// healthCheck reports whether Elasticsearch answers
func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	status := map[string]string{"status": "ok"}
	if a.services.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := a.services.Health.Ping(ctx); err != nil {
			a.logger.Warnw("Health check failed", "error", err)
			status["status"] = "degraded"
			status["elasticsearch"] = fmt.Sprintf("unreachable: %v", err)
			respondJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		status["elasticsearch"] = "ok"
	}
	respondJSON(w, http.StatusOK, status)
}
