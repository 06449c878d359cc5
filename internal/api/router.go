// Package api exposes the calculation engine over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sells-group/basestation-calc/internal/metrics"
	"github.com/sells-group/basestation-calc/internal/model"
)

// MaxBodyBytes caps the size of a calculation request body.
const MaxBodyBytes = 1 << 20

// Calculator runs one calculation. calc.Service satisfies it.
type Calculator interface {
	Calculate(ctx context.Context, req model.CalculationRequest) (*model.CalculationResponse, error)
}

// Options configures the router.
type Options struct {
	// AllowedOrigins lists CORS origins. Empty means all origins.
	AllowedOrigins []string
	// RequestTimeout bounds each request. Zero disables the timeout.
	RequestTimeout time.Duration
}

// NewRouter builds the HTTP handler for the calculator API.
func NewRouter(calc Calculator, opts Options) http.Handler {
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(AccessLog)
	r.Use(Metrics)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Group(func(r chi.Router) {
		if opts.RequestTimeout > 0 {
			r.Use(middleware.Timeout(opts.RequestTimeout))
		}
		r.Post("/api/v1/calculate", handleCalculate(calc))
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, kindNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, kindNotFound, "method not allowed")
	})

	return r
}
