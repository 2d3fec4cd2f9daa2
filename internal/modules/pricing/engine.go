// README: Pricing rules engine; a pure function from request and distance estimate to breakdown.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"vanbook/internal/modules/distance"
	"vanbook/internal/types"
)

var (
	ErrNegativeCharge = errors.New("pricing: negative charge component")
	ErrSplitMismatch  = errors.New("pricing: commission split does not sum to total")
)

// Engine holds only the immutable rate card and is safe for concurrent use.
type Engine struct {
	rates *Rates
}

func NewEngine(rates *Rates) *Engine {
	return &Engine{rates: rates}
}

func (e *Engine) Rates() *Rates {
	return e.rates
}

// BuildBreakdown prices one move. Identical inputs give identical output.
// An error means the rate card produced an impossible price and must be fixed.
func (e *Engine) BuildBreakdown(req QuoteRequest, est distance.Estimate) (Breakdown, error) {
	r := e.rates
	van := r.van(req.VanSize)

	miles := math.Max(est.DistanceMiles, 0)
	charged := math.Max(miles, r.MinimumChargeMiles)

	// 1. distance, fuel embedded, scaled by van size
	fuel := charged * r.FuelPricePerLitre * r.LitresPerGallon / van.MPG
	distanceCharge := types.ToMinor((r.mileage(charged, req.Urban) + fuel) * van.SizeMultiplier)

	// 2-3. empty return leg and larger-van supplement
	returnJourney := roundMinor(float64(distanceCharge) * r.ReturnJourneyFactor)
	travel := distanceCharge + returnJourney
	vanSupplement := roundMinor(float64(travel) * (van.HourlyMultiplier - 1))

	// 4. helpers
	helpers := clampInt(req.Helpers, 0, r.MaxHelpers)
	hours := r.helperHours(req, est.EstimatedMinutes)
	helperFee := types.ToMinor(float64(helpers) * r.HelperHourlyRate * hours)

	// 5. floor access, most restrictive end
	tier := req.PickupFloor
	if req.DeliveryFloor.rank() > tier.rank() {
		tier = req.DeliveryFloor
	}
	floorFee := types.ToMinor(r.FloorFees[tier])
	liftCredit := tier.rank() > 0 && req.PickupLift && req.DeliveryLift
	if liftCredit {
		floorFee /= 2
	}

	// 6. percentage surcharges on the travel charge, added not compounded
	peakKind, peakPct := r.peakRate(req.MoveAt)
	urgencyPct := r.UrgencyPercent[req.Urgency]
	peak := types.PercentOf(travel, peakPct)
	urgency := types.PercentOf(travel, urgencyPct)

	// 7. regional
	var regional int64
	if req.InRegionalSurchargeZone {
		regional = types.ToMinor(r.RegionalSurcharge)
	}

	components := []int64{distanceCharge, returnJourney, vanSupplement, helperFee, floorFee, peak, urgency, regional}
	for _, c := range components {
		if c < 0 {
			return Breakdown{}, ErrNegativeCharge
		}
	}
	var running int64
	for _, c := range components {
		running += c
	}

	// 8-9. minimum floor, then ceiling to whole pounds
	var minimumAdj int64
	if floor := types.ToMinor(r.MinimumPrice); running < floor {
		minimumAdj = floor - running
		running = floor
	}
	subtotal := types.CeilToMajor(running)
	rounding := subtotal - running

	// 10-11. VAT and commission
	vat := types.PercentOf(subtotal, r.VATPercent)
	total := subtotal + vat
	platform := types.PercentOf(subtotal, r.PlatformFeePercent)
	driver := total - platform - vat
	if driver < 0 || vat < 0 || platform < 0 {
		return Breakdown{}, ErrNegativeCharge
	}
	if driver+platform+vat != total {
		return Breakdown{}, ErrSplitMismatch
	}

	symbol := types.Money{Currency: r.Currency}.Symbol()
	b := Breakdown{
		DistanceMiles:     miles,
		ChargedMiles:      charged,
		EstimatedMinutes:  est.EstimatedMinutes,
		HelperHours:       hours,
		Helpers:           helpers,
		DistanceCharge:    distanceCharge,
		FuelEstimate:      types.ToMinor(fuel),
		ReturnJourney:     returnJourney,
		VanSupplement:     vanSupplement,
		HelperFee:         helperFee,
		FloorFee:          floorFee,
		PeakSurcharge:     peak,
		UrgencySurcharge:  urgency,
		RegionalSurcharge: regional,
		MinimumAdjustment: minimumAdj,
		Rounding:          rounding,
		PeakPercent:       peakPct,
		UrgencyPercent:    urgencyPct,
		Subtotal:          subtotal,
		VATAmount:         vat,
		TotalWithVAT:      total,
		PlatformFee:       platform,
		DriverShare:       driver,
		Currency:          symbol,
		CurrencyCode:      r.Currency,
		FormattedPrice:    types.FormatMinor(symbol, total),
		FormattedDuration: types.FormatDuration(est.EstimatedMinutes),
	}

	// 12. ordered line items; zero optional items are omitted
	floorLabel := "Floor access (" + tier.Label() + ")"
	if liftCredit {
		floorLabel = "Floor access (" + tier.Label() + ", lift)"
	}
	b.Items = appendItems(nil,
		LineItem{fmt.Sprintf("Distance charge (%.1f miles)", charged), distanceCharge},
		LineItem{"Return journey", returnJourney},
		LineItem{req.VanSize.Label() + " supplement", vanSupplement},
		LineItem{fmt.Sprintf("Helpers (%d × %s h)", helpers, formatNumber(hours)), helperFee},
		LineItem{floorLabel, floorFee},
		LineItem{fmt.Sprintf("%s surcharge (%s%%)", peakKind.label(), formatNumber(peakPct)), peak},
		LineItem{fmt.Sprintf("%s urgency (%s%%)", req.Urgency.Label(), formatNumber(urgencyPct)), urgency},
		LineItem{"Congestion zone surcharge", regional},
		LineItem{"Minimum charge adjustment", minimumAdj},
		LineItem{"Rounding", rounding},
	)
	b.Items = append(b.Items, LineItem{fmt.Sprintf("VAT (%s%%)", formatNumber(r.VATPercent)), vat})
	return b, nil
}

// mileage prices miles at the flat urban rate or through the progressive
// standard bands.
func (r *Rates) mileage(miles float64, urban bool) float64 {
	if urban {
		return miles * r.UrbanRatePerMile
	}
	var cost, lower float64
	for _, b := range r.StandardBands {
		upper := b.UpToMiles
		if upper == 0 || miles < upper {
			upper = miles
		}
		if upper > lower {
			cost += (upper - lower) * b.PerMile
		}
		if upper >= miles {
			break
		}
		lower = upper
	}
	return cost
}

// helperHours uses the caller's hours, or derives them from travel plus the
// van's loading allowance, rounded up to the half hour with a one hour minimum.
func (r *Rates) helperHours(req QuoteRequest, minutes int) float64 {
	if req.EstimatedHours > 0 {
		return req.EstimatedHours
	}
	h := float64(minutes+r.LoadingMinutes(req.VanSize)) / 60
	h = math.Ceil(h*2) / 2
	return math.Max(h, 1)
}

func appendItems(items []LineItem, candidates ...LineItem) []LineItem {
	for _, it := range candidates {
		if it.Amount != 0 {
			items = append(items, it)
		}
	}
	return items
}

func roundMinor(v float64) int64 {
	return int64(math.Round(v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
