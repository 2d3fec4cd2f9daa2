// README: Distance estimator; runs an ordered strategy chain and never fails.
package distance

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"vanbook/internal/metrics"
	"vanbook/internal/types"
)

const metersPerMile = 1609.344

// DefaultRouteTimeout bounds the optional external routing lookup.
const DefaultRouteTimeout = 3 * time.Second

// RouteResult is what an authoritative routing source reports for one leg.
type RouteResult struct {
	Meters   int           `json:"meters"`
	Duration time.Duration `json:"duration"`
}

// Router is an external routing collaborator. It may be slow or unavailable.
type Router interface {
	Route(ctx context.Context, origin, destination string) (RouteResult, error)
}

// strategy returns an estimate and true when it can answer for the query.
type strategy func(ctx context.Context, q query) (Estimate, bool)

type query struct {
	from, to endpoint
}

// endpoint is an address resolved against the gazetteer.
type endpoint struct {
	raw      string
	city     *City
	district string
	area     string
	region   *Region
	coord    Coord
	resolved bool
}

type Service struct {
	tables       *Tables
	router       Router
	routeTimeout time.Duration
	logger       *zap.Logger
	strategies   []strategy
}

type Option func(*Service)

// WithRouter enables the external routing lookup for pairs the table does not cover.
func WithRouter(r Router, timeout time.Duration) Option {
	return func(s *Service) {
		s.router = r
		if timeout > 0 {
			s.routeTimeout = timeout
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(tables *Tables, opts ...Option) *Service {
	s := &Service{
		tables:       tables,
		routeTimeout: DefaultRouteTimeout,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	// Verified table distances outrank every other source.
	s.strategies = []strategy{
		s.exactTable,
		s.externalRouting,
		s.geodesic,
		s.fallback,
	}
	return s
}

func (s *Service) Tables() *Tables {
	return s.tables
}

// Estimate returns the first answer of the strategy chain. It never returns
// an error: the last strategy always answers.
func (s *Service) Estimate(ctx context.Context, from, to string) Estimate {
	q := query{from: s.tables.resolve(from), to: s.tables.resolve(to)}
	for _, next := range s.strategies {
		if est, ok := next(ctx, q); ok {
			metrics.DistanceEstimates.WithLabelValues(string(est.Source)).Inc()
			return est
		}
	}
	// Unreachable while fallback is last in the chain.
	est, _ := s.fallback(ctx, q)
	return est
}

func (s *Service) externalRouting(ctx context.Context, q query) (Estimate, bool) {
	if s.router == nil || strings.TrimSpace(q.from.raw) == "" || strings.TrimSpace(q.to.raw) == "" {
		return Estimate{}, false
	}
	ctx, cancel := context.WithTimeout(ctx, s.routeTimeout)
	defer cancel()

	var (
		res RouteResult
		err error
	)
	// One retry inside the same deadline.
	for attempt := 0; attempt < 2; attempt++ {
		res, err = s.router.Route(ctx, q.from.raw, q.to.raw)
		if err == nil || ctx.Err() != nil {
			break
		}
	}
	if err != nil {
		outcome := "error"
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			outcome = "timeout"
		}
		metrics.RoutingLookups.WithLabelValues(outcome).Inc()
		s.logger.Warn("external routing unavailable, falling through",
			zap.String("outcome", outcome), zap.Error(err))
		return Estimate{}, false
	}
	if res.Meters <= 0 {
		metrics.RoutingLookups.WithLabelValues("empty").Inc()
		return Estimate{}, false
	}
	metrics.RoutingLookups.WithLabelValues("ok").Inc()

	miles := s.clampMiles(float64(res.Meters)/metersPerMile)
	return s.finish(q, miles, res.Duration.Minutes(), SourceExternalRouting, true), true
}

func (s *Service) exactTable(_ context.Context, q query) (Estimate, bool) {
	if q.from.city == nil || q.to.city == nil || q.from.city == q.to.city {
		return Estimate{}, false
	}
	miles, ok := s.tables.CityDistance(q.from.city.Name, q.to.city.Name)
	if !ok {
		return Estimate{}, false
	}
	return s.finish(q, types.RoundTo1(miles), -1, SourceExactTable, true), true
}

// geodesic places any unresolved end on the central-UK coordinate, so two
// unknown addresses degrade to the minimum distance rather than zero.
func (s *Service) geodesic(_ context.Context, q query) (Estimate, bool) {
	a, b := q.from, q.to
	if s.tables.CentralUK == (Coord{}) && (!a.resolved || !b.resolved) {
		return Estimate{}, false
	}
	source := SourceGeodesicApprox
	if !a.resolved || !b.resolved {
		source = SourceFallback
		if !a.resolved {
			a.coord = s.tables.CentralUK
		}
		if !b.resolved {
			b.coord = s.tables.CentralUK
		}
	}
	straight := haversineMiles(a.coord, b.coord)
	miles := s.clampMiles(straight*s.tables.windingFactor(straight, a, b))
	return s.finish(q, miles, -1, source, false), true
}

// fallback answers only when the gazetteer has no central coordinate.
func (s *Service) fallback(_ context.Context, q query) (Estimate, bool) {
	miles := types.RoundTo1(s.tables.FallbackMiles)
	s.logger.Info("chain exhausted, using fixed fallback estimate",
		zap.String("from", q.from.raw), zap.String("to", q.to.raw))
	return s.finish(q, miles, -1, SourceFallback, false), true
}

// clampMiles rounds to one decimal and enforces the non-zero minimum, which
// also covers two addresses in the same district.
func (s *Service) clampMiles(miles float64) float64 {
	miles = types.RoundTo1(miles)
	if miles < s.tables.MinimumMiles {
		return s.tables.MinimumMiles
	}
	return miles
}

func (s *Service) finish(q query, miles, drivingMinutes float64, source Source, exact bool) Estimate {
	minutes, ok := s.overrideMinutes(q)
	if !ok {
		minutes = s.tables.travelMinutes(miles, drivingMinutes, congestionMinutes(q.from, q.to))
	}
	return Estimate{
		DistanceMiles:    miles,
		EstimatedMinutes: minutes,
		Exact:            exact,
		Source:           source,
	}
}

// overrideMinutes checks verified times by district pair, then city pair.
func (s *Service) overrideMinutes(q query) (int, bool) {
	if m, ok := s.tables.timeOverride(q.from.district, q.to.district); ok {
		return m, true
	}
	if m, ok := s.tables.timeOverride(trimSubdistrict(q.from.district), trimSubdistrict(q.to.district)); ok {
		return m, true
	}
	if q.from.city != nil && q.to.city != nil {
		return s.tables.timeOverride(q.from.city.Name, q.to.city.Name)
	}
	return 0, false
}

// resolve maps an address to coordinates: district centroid, then the
// district without its sub-district letter, then area centroid, then city.
func (t *Tables) resolve(addr string) endpoint {
	e := endpoint{raw: addr}
	if c, ok := t.MatchCity(addr); ok {
		e.city = c
		e.region = t.regionNamed(c.Region)
	}
	if d := extractDistrict(addr); d != "" {
		area := areaOf(d)
		if coord, ok := t.Districts[d]; ok {
			e.coord, e.resolved = coord, true
		} else if coord, ok := t.Districts[trimSubdistrict(d)]; ok {
			e.coord, e.resolved = coord, true
		} else if coord, ok := t.Areas[area]; ok {
			e.coord, e.resolved = coord, true
		}
		if e.resolved {
			e.district, e.area = d, area
			if r := t.regionForArea(area); r != nil {
				e.region = r
			}
		}
	}
	if !e.resolved && e.city != nil {
		e.coord, e.resolved = e.city.Coord(), true
	}
	return e
}
