// README: Persisted quote snapshot; the only basis for displayed and charged prices.
package quote

import (
	"time"

	"vanbook/internal/modules/distance"
	"vanbook/internal/modules/pricing"
	"vanbook/internal/types"
)

// DefaultValidity is how long a quote can be booked at its stored price.
const DefaultValidity = 7 * 24 * time.Hour

type Quote struct {
	ID              types.ID             `json:"id"`
	PickupAddress   string               `json:"pickup_address"`
	DeliveryAddress string               `json:"delivery_address"`
	VanSize         pricing.VanSize      `json:"van_size"`
	Urgency         pricing.UrgencyLevel `json:"urgency"`
	MoveAt          time.Time            `json:"move_at"`
	Estimate        distance.Estimate    `json:"estimate"`
	Breakdown       pricing.Breakdown    `json:"breakdown"`
	CreatedAt       time.Time            `json:"created_at"`
	ExpiresAt       time.Time            `json:"expires_at"`
}

func (q *Quote) Expired(now time.Time) bool {
	return !q.ExpiresAt.IsZero() && now.After(q.ExpiresAt)
}

// Total is the VAT-inclusive amount every display and checkout path uses.
func (q *Quote) Total() types.Money {
	return types.Money{Amount: q.Breakdown.TotalWithVAT, Currency: q.Breakdown.CurrencyCode}
}

// Simple is the short view of a quote; it reads the same breakdown as the
// detailed view so both show one price.
type Simple struct {
	QuoteID           types.ID  `json:"quote_id"`
	TotalWithVAT      int64     `json:"total_with_vat"`
	FormattedPrice    string    `json:"formatted_price"`
	FormattedDuration string    `json:"formatted_duration"`
	ExpiresAt         time.Time `json:"expires_at"`
}

func (q *Quote) Simple() Simple {
	return Simple{
		QuoteID:           q.ID,
		TotalWithVAT:      q.Breakdown.TotalWithVAT,
		FormattedPrice:    q.Breakdown.FormattedPrice,
		FormattedDuration: q.Breakdown.FormattedDuration,
		ExpiresAt:         q.ExpiresAt,
	}
}
