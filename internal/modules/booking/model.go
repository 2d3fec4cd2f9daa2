// README: Booking aggregate and status definitions.
package booking

import (
	"time"

	"vanbook/internal/types"
)

type Status string

const (
	StatusNone            Status = "none"
	StatusPendingPayment  Status = "pending_payment"
	StatusAwaitingCapture Status = "awaiting_capture"
	StatusConfirmed       Status = "confirmed"
	StatusCancelled       Status = "cancelled"
)

// Booking is priced solely from its quote snapshot; AmountDue never changes.
type Booking struct {
	ID              types.ID    `json:"id"`
	QuoteID         types.ID    `json:"quote_id"`
	CustomerName    string      `json:"customer_name"`
	CustomerEmail   string      `json:"customer_email"`
	CustomerPhone   string      `json:"customer_phone"`
	Status          Status      `json:"status"`
	StatusVersion   int         `json:"status_version"`
	AmountDue       types.Money `json:"amount_due"`
	PaymentIntentID *string     `json:"payment_intent_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	CheckoutAt      *time.Time  `json:"checkout_at,omitempty"`
	ConfirmedAt     *time.Time  `json:"confirmed_at,omitempty"`
	CancelledAt     *time.Time  `json:"cancelled_at,omitempty"`
	CancelReason    *string     `json:"cancel_reason,omitempty"`
}

type Event struct {
	ID         int64     `json:"-"`
	BookingID  types.ID  `json:"booking_id"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	ActorType  string    `json:"actor_type"`
	CreatedAt  time.Time `json:"created_at"`
}

// AllowedTransitions represents the booking state flow as code.
var AllowedTransitions = map[Status][]Status{
	StatusPendingPayment:  {StatusAwaitingCapture, StatusCancelled},
	StatusAwaitingCapture: {StatusConfirmed, StatusCancelled},
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}
