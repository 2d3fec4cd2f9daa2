// README: Quote store backed by PostgreSQL; the breakdown is kept verbatim as JSONB.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vanbook/internal/types"
)

var ErrNotFound = errors.New("quote not found")

type Store interface {
	Create(ctx context.Context, q *Quote) error
	Get(ctx context.Context, id types.ID) (*Quote, error)
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, q *Quote) error {
	estimate, err := json.Marshal(q.Estimate)
	if err != nil {
		return fmt.Errorf("marshal estimate: %w", err)
	}
	breakdown, err := json.Marshal(q.Breakdown)
	if err != nil {
		return fmt.Errorf("marshal breakdown: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO quotes (
			id, pickup_address, delivery_address, van_size, urgency, move_at,
			distance_miles, distance_source, subtotal, vat_amount, total_with_vat,
			platform_fee, driver_share, estimate, breakdown, created_at, expires_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17
		)`,
		string(q.ID), q.PickupAddress, q.DeliveryAddress, string(q.VanSize), string(q.Urgency), q.MoveAt,
		q.Estimate.DistanceMiles, string(q.Estimate.Source),
		q.Breakdown.Subtotal, q.Breakdown.VATAmount, q.Breakdown.TotalWithVAT,
		q.Breakdown.PlatformFee, q.Breakdown.DriverShare,
		estimate, breakdown, q.CreatedAt, q.ExpiresAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Quote, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, pickup_address, delivery_address, van_size, urgency, move_at,
		       estimate, breakdown, created_at, expires_at
		FROM quotes
		WHERE id = $1`, string(id),
	)

	var q Quote
	var estimate, breakdown []byte
	err := row.Scan(
		&q.ID, &q.PickupAddress, &q.DeliveryAddress, &q.VanSize, &q.Urgency, &q.MoveAt,
		&estimate, &breakdown, &q.CreatedAt, &q.ExpiresAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(estimate, &q.Estimate); err != nil {
		return nil, fmt.Errorf("unmarshal estimate: %w", err)
	}
	if err := json.Unmarshal(breakdown, &q.Breakdown); err != nil {
		return nil, fmt.Errorf("unmarshal breakdown: %w", err)
	}
	return &q, nil
}
