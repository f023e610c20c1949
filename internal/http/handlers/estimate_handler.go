// README: Estimate and model-listing endpoints.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ecotravel/internal/ai"
	"ecotravel/internal/http/middleware"
	"ecotravel/internal/modules/estimate"
)

// Breaker receives provider health outcomes from the estimate route.
type Breaker interface {
	RecordSuccess()
	RecordFailure()
}

type EstimateHandler struct {
	svc     *estimate.Service
	breaker Breaker
	timeout time.Duration
}

// NewEstimateHandler creates the handler. breaker may be nil; timeout bounds each request's AI work.
func NewEstimateHandler(svc *estimate.Service, breaker Breaker, timeout time.Duration) *EstimateHandler {
	return &EstimateHandler{svc: svc, breaker: breaker, timeout: timeout}
}

// Create handles POST /api/v1/estimates.
func (h *EstimateHandler) Create(c *gin.Context) {
	var req estimate.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.BadRequest(c, "invalid json")
		return
	}

	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()

	res, err := h.svc.Estimate(ctx, middleware.CallerUID(c), req)
	h.record(err)
	if err != nil {
		writeEstimateError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, res)
}

type modelsResponse struct {
	Models []ai.ModelCandidate `json:"models"`
}

// Models handles GET /api/v1/models.
func (h *EstimateHandler) Models(c *gin.Context) {
	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()

	models, err := h.svc.Models(ctx)
	if err != nil {
		writeEstimateError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, modelsResponse{Models: models})
}

func (h *EstimateHandler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *EstimateHandler) record(err error) {
	if h.breaker == nil {
		return
	}
	switch {
	case err == nil:
		h.breaker.RecordSuccess()
	case countsAgainstProvider(err):
		h.breaker.RecordFailure()
	}
}
