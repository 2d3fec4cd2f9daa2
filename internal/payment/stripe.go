// README: Stripe payment intents for booking checkout; amounts are the quote's VAT-inclusive total.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"

	"vanbook/internal/types"
)

var ErrDisabled = errors.New("payments are not configured")

type Intent struct {
	ID           string `json:"payment_intent_id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// Authorized reports whether funds are held or already captured.
func (i Intent) Authorized() bool {
	return i.Status == string(stripe.PaymentIntentStatusRequiresCapture) ||
		i.Status == string(stripe.PaymentIntentStatusSucceeded)
}

type StripeGateway struct {
	api *client.API
}

func NewStripeGateway(secretKey string) *StripeGateway {
	return &StripeGateway{api: client.New(secretKey, nil)}
}

// CreateIntent opens a manual-capture intent. The booking id doubles as the
// idempotency key so a retried checkout reuses the same intent.
func (g *StripeGateway) CreateIntent(ctx context.Context, bookingID types.ID, amount types.Money) (Intent, error) {
	if amount.Amount <= 0 {
		return Intent{}, fmt.Errorf("invalid payment amount %d", amount.Amount)
	}
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amount.Amount),
		Currency:      stripe.String(strings.ToLower(amount.Currency)),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey("booking-checkout-" + string(bookingID))
	params.AddMetadata("booking_id", string(bookingID))

	pi, err := g.api.PaymentIntents.New(params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe create intent: %w", err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (Intent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := g.api.PaymentIntents.Get(id, params)
	if err != nil {
		return Intent{}, fmt.Errorf("stripe get intent: %w", err)
	}
	return toIntent(pi), nil
}

func (g *StripeGateway) CancelIntent(ctx context.Context, id string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := g.api.PaymentIntents.Cancel(id, params); err != nil {
		return fmt.Errorf("stripe cancel intent: %w", err)
	}
	return nil
}

func toIntent(pi *stripe.PaymentIntent) Intent {
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}
}

// Disabled is used when no Stripe key is configured.
type Disabled struct{}

func (Disabled) CreateIntent(context.Context, types.ID, types.Money) (Intent, error) {
	return Intent{}, ErrDisabled
}

func (Disabled) GetIntent(context.Context, string) (Intent, error) {
	return Intent{}, ErrDisabled
}

func (Disabled) CancelIntent(context.Context, string) error {
	return ErrDisabled
}
