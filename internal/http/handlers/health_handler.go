package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db           *pgxpool.Pool
	redis        *redis.Client
	aiConfigured bool
}

// NewHealthHandler creates a health handler. db and redis may be nil when not configured.
func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client, aiConfigured bool) *HealthHandler {
	return &HealthHandler{db: db, redis: rdb, aiConfigured: aiConfigured}
}

type HealthResponse struct {
	Status       string            `json:"status"`
	Service      string            `json:"service"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}

// Health returns basic liveness.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Service: "ecotravel-api"})
}

// Ready checks every configured dependency.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deps := make(map[string]string)
	allHealthy := true

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			deps["database"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			deps["database"] = "healthy"
		}
	} else {
		deps["database"] = "not configured"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			deps["redis"] = "unhealthy: " + err.Error()
			allHealthy = false
		} else {
			deps["redis"] = "healthy"
		}
	} else {
		deps["redis"] = "not configured"
	}

	if h.aiConfigured {
		deps["ai"] = "configured"
	} else {
		deps["ai"] = "missing GOOGLE_API_KEY"
		allHealthy = false
	}

	status, code := "healthy", http.StatusOK
	if !allHealthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	c.JSON(code, HealthResponse{Status: status, Service: "ecotravel-api", Dependencies: deps})
}
