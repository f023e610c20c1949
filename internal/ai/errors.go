// README: Failure taxonomy for the AI pipeline; transport errors are classified once, at the boundary.
package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

// Kind identifies where in the pipeline a failure belongs and how it is recovered.
type Kind int

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindListing
	KindQuotaExceeded
	KindModelNotFound
	KindTransient
	KindExhausted
	KindMalformedResponse
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindListing:
		return "listing"
	case KindQuotaExceeded:
		return "quota_exceeded"
	case KindModelNotFound:
		return "model_not_found"
	case KindTransient:
		return "transient"
	case KindExhausted:
		return "exhausted_candidates"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unknown"
	}
}

// ErrMissingAPIKey is returned before any provider call when no credentials are configured.
var ErrMissingAPIKey = &ConfigError{Msg: "GOOGLE_API_KEY is not set"}

// ConfigError reports missing or unusable credentials.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "ai configuration: " + e.Msg }

// ProviderError is a single failed provider call, already classified.
type ProviderError struct {
	Kind  Kind
	Model string
	Err   error
}

func (e *ProviderError) Error() string {
	if e.Model == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Kind, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// AcquisitionError is the fatal outcome of Acquire.
type AcquisitionError struct {
	Kind Kind
	// Last is the last recorded per-attempt error, nil if none was recorded.
	Last error
	// Available lists the models the credentials can use, when the diagnostic listing succeeded.
	Available []string
}

func (e *AcquisitionError) Error() string {
	var b strings.Builder
	switch e.Kind {
	case KindListing:
		b.WriteString("failed to list models")
	default:
		b.WriteString("no response from any model")
	}
	if e.Last != nil {
		b.WriteString(": ")
		b.WriteString(e.Last.Error())
	}
	if len(e.Available) > 0 {
		b.WriteString("; available models: ")
		b.WriteString(strings.Join(e.Available, ", "))
	}
	return b.String()
}

func (e *AcquisitionError) Unwrap() error { return e.Last }

// MalformedResponseError carries the raw model output that could not be repaired.
type MalformedResponseError struct {
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed AI response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

// KindOf returns the taxonomy kind of err, or KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return KindConfiguration
	}
	var acqErr *AcquisitionError
	if errors.As(err, &acqErr) {
		return acqErr.Kind
	}
	var malformed *MalformedResponseError
	if errors.As(err, &malformed) {
		return KindMalformedResponse
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return provErr.Kind
	}
	return KindUnknown
}

// ClassifyProviderError wraps a raw SDK error into a ProviderError.
// Errors that are already classified are returned unchanged.
func ClassifyProviderError(model string, err error) error {
	if err == nil {
		return nil
	}
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		return err
	}
	return &ProviderError{Kind: kindFromStatus(err), Model: model, Err: err}
}

func kindFromStatus(err error) Kind {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if k := kindFromHTTP(apiErr.HTTPCode()); k != KindTransient {
			return k
		}
		if st := apiErr.GRPCStatus(); st != nil {
			return kindFromGRPC(st.Code())
		}
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return kindFromHTTP(gErr.Code)
	}
	return KindTransient
}

func kindFromHTTP(code int) Kind {
	switch code {
	case http.StatusTooManyRequests:
		return KindQuotaExceeded
	case http.StatusNotFound:
		return KindModelNotFound
	default:
		return KindTransient
	}
}

func kindFromGRPC(code codes.Code) Kind {
	switch code {
	case codes.ResourceExhausted:
		return KindQuotaExceeded
	case codes.NotFound:
		return KindModelNotFound
	default:
		return KindTransient
	}
}
