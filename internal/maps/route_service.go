package maps

import (
	"context"
	"errors"
	"fmt"

	"googlemaps.github.io/maps"
)

// ErrNoRoute is returned when the Directions API finds no drivable route.
var ErrNoRoute = errors.New("no route found")

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client *maps.Client
}

// NewRouteService creates a new RouteService with the given API Key.
func NewRouteService(apiKey string) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &RouteService{client: client}, nil
}

// RoadDistanceKm returns the driving distance from origin to destination in kilometres.
func (s *RouteService) RoadDistanceKm(ctx context.Context, origin, destination string) (float64, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("maps api error: %w", err)
	}
	return routeKm(routes)
}

func routeKm(routes []maps.Route) (float64, error) {
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return 0, ErrNoRoute
	}
	var meters int
	for _, leg := range routes[0].Legs {
		meters += leg.Distance.Meters
	}
	if meters <= 0 {
		return 0, ErrNoRoute
	}
	return float64(meters) / 1000, nil
}
