package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/1CEs/xams-sub001/application/ports"
	"github.com/1CEs/xams-sub001/interfaces/http/rest/handlers"
	"github.com/1CEs/xams-sub001/interfaces/http/rest/middleware"
	pkgerrors "github.com/1CEs/xams-sub001/pkg/errors"
	"github.com/1CEs/xams-sub001/pkg/observability"
)

// Options toggles the optional parts of the router
type Options struct {
	EnableCORS     bool
	EnableMetrics  bool
	Debug          bool
	AllowedOrigins []string
}

// Router creates and configures the HTTP router
type Router struct {
	store   ports.BankStore
	metrics *observability.Metrics
	logger  *zap.Logger
	opts    Options
}

// NewRouter creates a new router instance
func NewRouter(
	store ports.BankStore,
	metrics *observability.Metrics,
	logger *zap.Logger,
	opts Options,
) *Router {
	return &Router{
		store:   store,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.opts.EnableMetrics && rt.metrics != nil {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.opts.EnableCORS {
		origins := rt.opts.AllowedOrigins
		if len(origins) == 0 {
			origins = []string{"http://localhost:3000"}
		}
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.opts.EnableMetrics && rt.metrics != nil {
		router.Handle("/metrics", rt.metrics.Handler())
	}

	errorHandler := pkgerrors.NewErrorHandler(rt.logger, rt.opts.Debug)
	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusNotFound, "route not found")
	})
	router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		errorHandler.HandleStatus(w, r, http.StatusMethodNotAllowed, "method not allowed")
	})

	router.Route("/api/v1", func(r chi.Router) {
		bankHandler := handlers.NewBankHandler(rt.store, errorHandler, rt.logger)

		r.Route("/banks", func(r chi.Router) {
			r.Get("/", bankHandler.ListForest)
			r.Post("/", bankHandler.CreateTopLevel)

			r.Get("/{bankID}", bankHandler.GetHierarchy)
			r.Put("/{bankID}", bankHandler.RenameTopLevel)
			r.Delete("/{bankID}", bankHandler.DeleteTopLevel)

			r.Post("/{parentID}/children", bankHandler.CreateChild)
			r.Put("/{parentID}/children/{bankID}", bankHandler.RenameChild)
			r.Delete("/{parentID}/children/{bankID}", bankHandler.DeleteChild)

			r.Post("/{rootID}/nested", bankHandler.CreateNested)
			r.Put("/{rootID}/nested/{bankID}", bankHandler.RenameNested)
			r.Delete("/{rootID}/nested/{bankID}", bankHandler.DeleteNested)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessOwner owns no banks; listing it proves the store answers without
// reading any trees.
const readinessOwner = "__readiness__"

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := rt.store.Forest(req.Context(), ports.ForestScope{OwnerID: readinessOwner}); err != nil {
		rt.logger.Warn("Readiness check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
