// README: API gateway; holds the wired services and builds the gin engine.
package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ecotravel/internal/http/handlers"
	"ecotravel/internal/http/middleware"
	"ecotravel/internal/infra"
	"ecotravel/internal/metrics"
	"ecotravel/internal/modules/aiusage"
	"ecotravel/internal/modules/estimate"
)

// ServerDeps lists what the API needs. Usage, Verifier, Breaker and Metrics are optional.
type ServerDeps struct {
	Estimate       *estimate.Service
	Usage          *aiusage.Service
	Health         *handlers.HealthHandler
	Limiter        middleware.Limiter
	Breaker        *middleware.CircuitBreaker
	Verifier       infra.CallerVerifier
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
	AITimeout      time.Duration
	// TrustedProxies may supply X-Forwarded-For. Empty trusts none, so quotas and rate
	// limits key on the peer address.
	TrustedProxies []string
}

type Server struct {
	deps ServerDeps
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Limiter == nil {
		deps.Limiter = middleware.NewMemoryLimiter(20)
	}
	if deps.Health == nil {
		deps.Health = handlers.NewHealthHandler(nil, nil, deps.Estimate.Configured())
	}
	return &Server{deps: deps}
}

func (s *Server) Routes() http.Handler {
	r := gin.New()
	if err := r.SetTrustedProxies(s.deps.TrustedProxies); err != nil {
		s.deps.Logger.Error("invalid trusted proxies, trusting none", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}

	var observer middleware.HTTPObserver
	if s.deps.Metrics != nil {
		observer = s.deps.Metrics
	}
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(s.deps.Logger, observer),
		middleware.Recovery(s.deps.Logger),
	)

	registerRoutes(r, s.deps)
	return r
}
