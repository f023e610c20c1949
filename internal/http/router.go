// README: HTTP route registration.
package http

import (
	"github.com/gin-gonic/gin"

	"ecotravel/internal/http/handlers"
	"ecotravel/internal/http/middleware"
)

func registerRoutes(r *gin.Engine, deps ServerDeps) {
	r.GET("/health", deps.Health.Health)
	r.GET("/health/ready", deps.Health.Ready)
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Both AI-backed routes draw from the same per-client budget.
	rateLimit := middleware.RateLimit(deps.Limiter, deps.Logger)

	var breaker handlers.Breaker
	estimateChain := []gin.HandlerFunc{rateLimit}
	if deps.Breaker != nil {
		breaker = deps.Breaker
		estimateChain = append(estimateChain, middleware.CircuitBreakerMiddleware(deps.Breaker))
	}
	estimateHandler := handlers.NewEstimateHandler(deps.Estimate, breaker, deps.AITimeout)

	api := r.Group("/api/v1")
	api.Use(middleware.Identity(deps.Verifier))

	api.POST("/estimates", append(estimateChain, estimateHandler.Create)...)
	api.GET("/models", rateLimit, estimateHandler.Models)

	if deps.Usage != nil {
		usageHandler := handlers.NewUsageHandler(deps.Usage)
		api.GET("/usage", usageHandler.Get)
	}
}
