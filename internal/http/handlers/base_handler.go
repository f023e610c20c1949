// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"ecotravel/internal/ai"
	"ecotravel/internal/http/middleware"
	"ecotravel/internal/modules/aiusage"
	"ecotravel/internal/modules/estimate"
)

const missingKeyMessage = "Google API key is not configured. Set GOOGLE_API_KEY in your .env file."

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

// writeEstimateError maps pipeline failures onto HTTP statuses and structured bodies.
func writeEstimateError(c *gin.Context, err error) {
	_ = c.Error(err)

	switch {
	case errors.Is(err, estimate.ErrBadRequest):
		middleware.BadRequest(c, err.Error())
		return
	case errors.Is(err, aiusage.ErrInsufficientTokens):
		middleware.RespondError(c, http.StatusTooManyRequests, middleware.ErrCodeInsufficientTokens,
			"monthly estimate allowance used up")
		return
	case errors.Is(err, context.DeadlineExceeded):
		middleware.RespondError(c, http.StatusGatewayTimeout, middleware.ErrCodeTimeout,
			"the AI service did not answer in time")
		return
	}

	switch ai.KindOf(err) {
	case ai.KindConfiguration:
		middleware.RespondError(c, http.StatusServiceUnavailable, middleware.ErrCodeNotConfigured, missingKeyMessage)
	case ai.KindListing:
		middleware.Respond(c, http.StatusBadGateway, middleware.APIError{
			Code:    middleware.ErrCodeModelListing,
			Message: "could not list AI models",
			Details: err.Error(),
		})
	case ai.KindExhausted:
		e := middleware.APIError{
			Code:    middleware.ErrCodeAIServiceUnavailable,
			Message: "no AI model produced a response",
			Details: err.Error(),
		}
		var acqErr *ai.AcquisitionError
		if errors.As(err, &acqErr) {
			e.AvailableModels = acqErr.Available
		}
		middleware.Respond(c, http.StatusBadGateway, e)
	case ai.KindMalformedResponse:
		e := middleware.APIError{
			Code:    middleware.ErrCodeMalformedResponse,
			Message: "the AI response could not be parsed",
			Details: err.Error(),
		}
		var malformed *ai.MalformedResponseError
		if errors.As(err, &malformed) {
			e.Raw = malformed.Raw
		}
		middleware.Respond(c, http.StatusBadGateway, e)
	default:
		middleware.InternalError(c)
	}
}

// countsAgainstProvider reports whether err says something about the AI provider's health.
func countsAgainstProvider(err error) bool {
	switch ai.KindOf(err) {
	case ai.KindListing, ai.KindExhausted, ai.KindTransient:
		return true
	}
	return false
}
