package estimate

import (
	"errors"
	"fmt"
	"strings"

	"ecotravel/internal/ai"
)

var ErrBadRequest = errors.New("bad request")

// MaxTravelers bounds the party size accepted from callers.
const MaxTravelers = 50

type TripRequest struct {
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Travelers   int    `json:"travelers"`
}

// Validate trims the city names in place and checks the request.
func (r *TripRequest) Validate() error {
	r.Origin = strings.TrimSpace(r.Origin)
	r.Destination = strings.TrimSpace(r.Destination)
	switch {
	case r.Origin == "":
		return fmt.Errorf("%w: origin is required", ErrBadRequest)
	case r.Destination == "":
		return fmt.Errorf("%w: destination is required", ErrBadRequest)
	case r.Travelers < 1 || r.Travelers > MaxTravelers:
		return fmt.Errorf("%w: travelers must be between 1 and %d", ErrBadRequest, MaxTravelers)
	}
	return nil
}

// Result is the presenter-ready outcome of one estimate.
type Result struct {
	Estimate *ai.EmissionEstimate `json:"estimate"`

	// Savings is car_vs_train_savings when the model supplied it, car minus train otherwise.
	Savings float64 `json:"car_vs_train_savings"`

	// Recommended is empty when the model's recommendation names no known mode.
	Recommended ai.Mode `json:"recommended_mode,omitempty"`

	Model    string `json:"model"`
	Attempts int    `json:"attempts"`

	Warnings []string `json:"warnings,omitempty"`

	// RouteDistanceKm is the road distance from Google Maps, when the cross-check ran.
	RouteDistanceKm *float64 `json:"route_distance_km,omitempty"`
}
