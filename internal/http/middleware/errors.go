// README: Structured error body shared by middleware and handlers.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is rendered under the "error" key of every failed response.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retry_after_ms,omitempty"`

	AvailableModels []string `json:"available_models,omitempty"`
	Raw             string   `json:"raw,omitempty"`
}

const (
	ErrCodeBadRequest           = "BAD_REQUEST"
	ErrCodeUnauthorized         = "UNAUTHORIZED"
	ErrCodeInternalError        = "INTERNAL_ERROR"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeInsufficientTokens   = "INSUFFICIENT_TOKENS"
	ErrCodeNotConfigured        = "AI_NOT_CONFIGURED"
	ErrCodeModelListing         = "MODEL_LISTING_FAILED"
	ErrCodeAIServiceUnavailable = "AI_SERVICE_UNAVAILABLE"
	ErrCodeMalformedResponse    = "MALFORMED_AI_RESPONSE"
	ErrCodeCircuitOpen          = "CIRCUIT_OPEN"
	ErrCodeTimeout              = "TIMEOUT"
)

// Respond aborts the request with body {"error": e}.
func Respond(c *gin.Context, status int, e APIError) {
	c.AbortWithStatusJSON(status, gin.H{"error": e})
}

func RespondError(c *gin.Context, status int, code, message string) {
	Respond(c, status, APIError{Code: code, Message: message})
}

func BadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func Unauthorized(c *gin.Context, message string) {
	RespondError(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func InternalError(c *gin.Context) {
	RespondError(c, http.StatusInternalServerError, ErrCodeInternalError, "internal error")
}
