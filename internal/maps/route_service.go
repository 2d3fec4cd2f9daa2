// README: Google Maps Directions adapter used as the authoritative routing source.
package maps

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"

	"vanbook/internal/modules/distance"
)

var ErrNoRoute = errors.New("no route found")

// RouteService handles interactions with Google Maps API.
type RouteService struct {
	client  *maps.Client
	limiter *rate.Limiter
}

// NewRouteService creates a new RouteService with the given API Key.
// ratePerSec <= 0 disables the client-side quota guard.
func NewRouteService(apiKey string, ratePerSec float64) (*RouteService, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	s := &RouteService{client: client}
	if ratePerSec > 0 {
		burst := int(ratePerSec)
		if burst < 1 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(ratePerSec), burst)
	}
	return s, nil
}

// Route returns the driving distance and duration of the first leg between
// origin and destination. The limiter wait shares the caller's deadline.
func (s *RouteService) Route(ctx context.Context, origin, destination string) (distance.RouteResult, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return distance.RouteResult{}, fmt.Errorf("maps rate limit: %w", err)
		}
	}

	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
		Units:       maps.UnitsImperial,
		Language:    "en-GB",
		Region:      "uk",
	}

	routes, _, err := s.client.Directions(ctx, r)
	if err != nil {
		return distance.RouteResult{}, fmt.Errorf("maps api error: %w", err)
	}

	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return distance.RouteResult{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return distance.RouteResult{Meters: leg.Distance.Meters, Duration: leg.Duration}, nil
}
