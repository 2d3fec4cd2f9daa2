// README: Booking service implements the checkout state transitions on top of a stored quote.
package booking

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"

	"vanbook/internal/metrics"
	"vanbook/internal/modules/quote"
	"vanbook/internal/payment"
	"vanbook/internal/types"
)

var (
	ErrInvalidState = errors.New("invalid state transition")
	ErrNotFound     = errors.New("booking not found")
	ErrConflict     = errors.New("booking state conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrQuoteExpired = errors.New("quote expired")
	ErrNotPaid      = errors.New("payment not authorized")
)

type Quotes interface {
	Get(ctx context.Context, id types.ID) (*quote.Quote, error)
}

type Payments interface {
	CreateIntent(ctx context.Context, bookingID types.ID, amount types.Money) (payment.Intent, error)
	GetIntent(ctx context.Context, id string) (payment.Intent, error)
	CancelIntent(ctx context.Context, id string) error
}

// Publisher fans booking state events out to other services.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Service struct {
	store     Store
	quotes    Quotes
	payments  Payments
	publisher Publisher
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

func NewService(store Store, quotes Quotes, payments Payments, logger *zap.Logger, opts ...Option) *Service {
	if payments == nil {
		payments = payment.Disabled{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{store: store, quotes: quotes, payments: payments, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateCommand struct {
	QuoteID       types.ID
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type CancelCommand struct {
	BookingID types.ID
	ActorType string
	Reason    string
}

// Checkout is what the client needs to collect card details.
type Checkout struct {
	BookingID       types.ID    `json:"booking_id"`
	PaymentIntentID string      `json:"payment_intent_id"`
	ClientSecret    string      `json:"client_secret"`
	Amount          types.Money `json:"amount"`
}

func (s *Service) Create(ctx context.Context, cmd CreateCommand) (*Booking, error) {
	cmd.CustomerName = strings.TrimSpace(cmd.CustomerName)
	if cmd.QuoteID == "" || cmd.CustomerName == "" {
		return nil, ErrBadRequest
	}
	if _, err := mail.ParseAddress(cmd.CustomerEmail); err != nil {
		return nil, ErrBadRequest
	}
	q, err := s.quotes.Get(ctx, cmd.QuoteID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if q.Expired(now) {
		return nil, ErrQuoteExpired
	}

	b := &Booking{
		ID:            types.NewID(),
		QuoteID:       q.ID,
		CustomerName:  cmd.CustomerName,
		CustomerEmail: cmd.CustomerEmail,
		CustomerPhone: strings.TrimSpace(cmd.CustomerPhone),
		Status:        StatusPendingPayment,
		StatusVersion: 0,
		AmountDue:     q.Total(),
		CreatedAt:     now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	s.recordTransition(ctx, b.ID, StatusNone, StatusPendingPayment, "customer")
	return b, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Booking, error) {
	return s.store.Get(ctx, id)
}

// Checkout opens a payment intent for the stored amount and moves the booking
// to awaiting_capture. The price is never recomputed here.
func (s *Service) Checkout(ctx context.Context, id types.ID) (Checkout, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return Checkout{}, err
	}
	if !CanTransition(b.Status, StatusAwaitingCapture) {
		return Checkout{}, ErrInvalidState
	}
	intent, err := s.payments.CreateIntent(ctx, b.ID, b.AmountDue)
	if err != nil {
		return Checkout{}, err
	}
	ok, err := s.store.UpdateStatus(ctx, b.ID, b.Status, StatusAwaitingCapture, b.StatusVersion, &intent.ID, nil)
	if err != nil || !ok {
		// The booking moved on without this intent; do not leave it open.
		s.releaseIntent(ctx, b.ID, intent.ID)
		if err != nil {
			return Checkout{}, err
		}
		return Checkout{}, ErrConflict
	}
	s.recordTransition(ctx, b.ID, b.Status, StatusAwaitingCapture, "customer")
	return Checkout{
		BookingID:       b.ID,
		PaymentIntentID: intent.ID,
		ClientSecret:    intent.ClientSecret,
		Amount:          b.AmountDue,
	}, nil
}

// Confirm checks the payment provider and confirms the booking once funds
// are authorized.
func (s *Service) Confirm(ctx context.Context, id types.ID) (*Booking, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, StatusConfirmed) || b.PaymentIntentID == nil {
		return nil, ErrInvalidState
	}
	intent, err := s.payments.GetIntent(ctx, *b.PaymentIntentID)
	if err != nil {
		return nil, err
	}
	if !intent.Authorized() {
		return nil, ErrNotPaid
	}
	ok, err := s.store.UpdateStatus(ctx, b.ID, b.Status, StatusConfirmed, b.StatusVersion, nil, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrConflict
	}
	s.recordTransition(ctx, b.ID, b.Status, StatusConfirmed, "system")
	return s.store.Get(ctx, id)
}

func (s *Service) Cancel(ctx context.Context, cmd CancelCommand) error {
	b, err := s.store.Get(ctx, cmd.BookingID)
	if err != nil {
		return err
	}
	if !CanTransition(b.Status, StatusCancelled) {
		return ErrInvalidState
	}
	var reason *string
	if r := strings.TrimSpace(cmd.Reason); r != "" {
		reason = &r
	}
	ok, err := s.store.UpdateStatus(ctx, b.ID, b.Status, StatusCancelled, b.StatusVersion, nil, reason)
	if err != nil {
		return err
	}
	if !ok {
		return ErrConflict
	}
	if b.PaymentIntentID != nil {
		s.releaseIntent(ctx, b.ID, *b.PaymentIntentID)
	}
	actor := cmd.ActorType
	if actor == "" {
		actor = "customer"
	}
	s.recordTransition(ctx, b.ID, b.Status, StatusCancelled, actor)
	return nil
}

// releaseIntent cancels an intent best-effort; a held authorization lapses
// on its own if the provider call fails.
func (s *Service) releaseIntent(ctx context.Context, bookingID types.ID, intentID string) {
	if err := s.payments.CancelIntent(ctx, intentID); err != nil {
		s.logger.Warn("release payment intent failed",
			zap.String("booking_id", string(bookingID)),
			zap.String("payment_intent_id", intentID),
			zap.Error(err))
	}
}

func (s *Service) recordTransition(ctx context.Context, id types.ID, from, to Status, actor string) {
	metrics.BookingTransitions.WithLabelValues(string(from), string(to)).Inc()
	e := Event{
		BookingID:  id,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  actor,
		CreatedAt:  s.now(),
	}
	if err := s.store.AppendEvent(ctx, &e); err != nil {
		s.logger.Warn("append booking event failed", zap.String("booking_id", string(id)), zap.Error(err))
	}
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.Warn("publish booking event failed", zap.String("booking_id", string(id)), zap.Error(err))
	}
}
