package catalog

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MiniCatalog/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string

	// RateLimit == 0 disables per-IP limiting.
	RateLimit  int
	RateWindow time.Duration

	CORSOrigins []string
	Development bool
}

// NewHandler wraps the catalog routes with the shared middleware stack,
// request tracing and, when a registry is given, Prometheus instrumentation.
func NewHandler(s *Server, deps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, deps)
	setupMetrics(r, deps)

	var apiMiddleware []func(http.Handler) http.Handler
	if deps.RateLimit > 0 {
		apiMiddleware = append(apiMiddleware, kit.RateLimit(deps.RateLimit, deps.RateWindow))
	}
	s.Routes(r, apiMiddleware...)

	return kit.Traced(deps.Service, r)
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
	r.Use(kit.SecureHeaders(deps.Development))
	r.Use(kit.CORS(deps.CORSOrigins))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewHTTPMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.RouteLabel))

	if !deps.MetricsEnabled {
		return
	}

	r.Handle("/metrics", kit.MetricsHandler(deps.Registry, deps.MetricsToken))
}
