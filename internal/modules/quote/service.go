// README: Quote service runs estimator -> pricing engine and persists the snapshot.
package quote

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"vanbook/internal/metrics"
	"vanbook/internal/modules/distance"
	"vanbook/internal/modules/pricing"
	"vanbook/internal/types"
)

type Estimator interface {
	Estimate(ctx context.Context, from, to string) distance.Estimate
	Tables() *distance.Tables
}

type Service struct {
	estimator Estimator
	engine    *pricing.Engine
	store     Store
	logger    *zap.Logger
	validity  time.Duration
	now       func() time.Time
}

func NewService(estimator Estimator, engine *pricing.Engine, store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		estimator: estimator,
		engine:    engine,
		store:     store,
		logger:    logger,
		validity:  DefaultValidity,
		now:       time.Now,
	}
}

// Create prices a move once and stores the result. Zone and urban flags are
// derived from the addresses here, never taken from the caller.
func (s *Service) Create(ctx context.Context, req pricing.QuoteRequest) (*Quote, error) {
	est := s.estimator.Estimate(ctx, req.PickupAddress, req.DeliveryAddress)

	tables := s.estimator.Tables()
	req.InRegionalSurchargeZone = tables.InSurchargeZone(req.PickupAddress) || tables.InSurchargeZone(req.DeliveryAddress)
	req.Urban = tables.IsUrbanRoute(req.PickupAddress, req.DeliveryAddress)

	b, err := s.engine.BuildBreakdown(req, est)
	if err != nil {
		s.logger.Error("pricing invariant violated",
			zap.Error(err),
			zap.String("van_size", string(req.VanSize)),
			zap.Float64("distance_miles", est.DistanceMiles))
		return nil, fmt.Errorf("build breakdown: %w", err)
	}

	now := s.now().UTC()
	q := &Quote{
		ID:              types.NewID(),
		PickupAddress:   req.PickupAddress,
		DeliveryAddress: req.DeliveryAddress,
		VanSize:         req.VanSize,
		Urgency:         req.Urgency,
		MoveAt:          req.MoveAt,
		Estimate:        est,
		Breakdown:       b,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.validity),
	}
	if err := s.store.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("store quote: %w", err)
	}

	metrics.QuoteTotals.WithLabelValues(string(req.VanSize)).Observe(float64(b.TotalWithVAT) / 100)
	s.logger.Info("quote created",
		zap.String("quote_id", string(q.ID)),
		zap.String("source", string(est.Source)),
		zap.Float64("distance_miles", est.DistanceMiles),
		zap.Int64("total_with_vat", b.TotalWithVAT))
	return q, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Quote, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return s.store.Get(ctx, id)
}
