// README: Monthly AI allowance lookup for the calling client.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ecotravel/internal/http/middleware"
	"ecotravel/internal/modules/aiusage"
)

type UsageHandler struct {
	ai *aiusage.Service
}

func NewUsageHandler(aiSvc *aiusage.Service) *UsageHandler {
	return &UsageHandler{ai: aiSvc}
}

// Get handles GET /api/v1/usage.
func (h *UsageHandler) Get(c *gin.Context) {
	usage, err := h.ai.Usage(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		_ = c.Error(err)
		middleware.InternalError(c)
		return
	}
	writeJSON(c, http.StatusOK, usage)
}
