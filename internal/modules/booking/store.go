// README: Booking stores (PostgreSQL and in-memory) with optimistic status versioning.
package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vanbook/internal/types"
)

type Store interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id types.ID) (*Booking, error)
	// UpdateStatus applies only if status and version still match; false means a lost race.
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, intentID *string, reason *string) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, b *Booking) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO bookings (
			id, quote_id, customer_name, customer_email, customer_phone,
			status, status_version, amount_due, currency, created_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)`,
		string(b.ID),
		string(b.QuoteID),
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		string(b.Status),
		b.StatusVersion,
		b.AmountDue.Amount,
		b.AmountDue.Currency,
		b.CreatedAt,
	)
	return err
}

func (s *PGStore) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, quote_id, customer_name, customer_email, customer_phone,
		       status, status_version, amount_due, currency, payment_intent_id,
		       created_at, checkout_at, confirmed_at, cancelled_at, cancel_reason
		FROM bookings
		WHERE id = $1`, string(id),
	)

	var b Booking
	err := row.Scan(
		&b.ID, &b.QuoteID, &b.CustomerName, &b.CustomerEmail, &b.CustomerPhone,
		&b.Status, &b.StatusVersion, &b.AmountDue.Amount, &b.AmountDue.Currency, &b.PaymentIntentID,
		&b.CreatedAt, &b.CheckoutAt, &b.ConfirmedAt, &b.CancelledAt, &b.CancelReason,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PGStore) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, intentID *string, reason *string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE bookings
		SET status = $1,
		    status_version = status_version + 1,
		    payment_intent_id = COALESCE($2, payment_intent_id),
		    cancel_reason = COALESCE($3, cancel_reason),
		    checkout_at = CASE WHEN $1 = 'awaiting_capture' THEN NOW() ELSE checkout_at END,
		    confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
		    cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $4 AND status = $5 AND status_version = $6`,
		string(to),
		intentID,
		reason,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *PGStore) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO booking_state_events (
			booking_id, from_status, to_status, actor_type, created_at
		) VALUES ($1, $2, $3, $4, $5)`,
		string(e.BookingID),
		string(e.FromStatus),
		string(e.ToStatus),
		e.ActorType,
		e.CreatedAt,
	)
	return err
}

// MemoryStore keeps bookings in process; used for development and tests.
type MemoryStore struct {
	mu       sync.Mutex
	bookings map[types.ID]Booking
	events   []Event
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bookings: make(map[types.ID]Booking), now: time.Now}
}

func (m *MemoryStore) Create(_ context.Context, b *Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bookings[b.ID] = *b
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (*Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id types.ID, from, to Status, version int, intentID *string, reason *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok || b.Status != from || b.StatusVersion != version {
		return false, nil
	}
	now := m.now()
	b.Status = to
	b.StatusVersion++
	if intentID != nil {
		b.PaymentIntentID = intentID
	}
	if reason != nil {
		b.CancelReason = reason
	}
	switch to {
	case StatusAwaitingCapture:
		b.CheckoutAt = &now
	case StatusConfirmed:
		b.ConfirmedAt = &now
	case StatusCancelled:
		b.CancelledAt = &now
	}
	m.bookings[id] = b
	return true, nil
}

func (m *MemoryStore) AppendEvent(_ context.Context, e *Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.events) + 1)
	m.events = append(m.events, *e)
	return nil
}

// Events returns a copy of the recorded transitions.
func (m *MemoryStore) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
