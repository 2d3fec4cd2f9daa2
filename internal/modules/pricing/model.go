// README: Quote request, enums, and the immutable price breakdown.
package pricing

import (
	"strings"
	"time"
)

type VanSize string

const (
	VanSmall  VanSize = "small"
	VanMedium VanSize = "medium"
	VanLarge  VanSize = "large"
	VanLuton  VanSize = "luton"
)

// ParseVanSize never fails; unknown input becomes medium.
func ParseVanSize(s string) VanSize {
	switch normalizeEnum(s) {
	case "small", "smallvan", "s":
		return VanSmall
	case "large", "largevan", "l":
		return VanLarge
	case "luton", "lutonvan", "xl":
		return VanLuton
	default:
		return VanMedium
	}
}

func (v VanSize) Label() string {
	switch v {
	case VanSmall:
		return "Small van"
	case VanLarge:
		return "Large van"
	case VanLuton:
		return "Luton van"
	default:
		return "Medium van"
	}
}

type FloorAccess string

const (
	FloorGround    FloorAccess = "ground"
	FloorFirst     FloorAccess = "first_floor"
	FloorSecond    FloorAccess = "second_floor"
	FloorThirdPlus FloorAccess = "third_floor_plus"
)

// ParseFloorAccess never fails; unknown input becomes ground.
func ParseFloorAccess(s string) FloorAccess {
	switch normalizeEnum(s) {
	case "first", "firstfloor", "1":
		return FloorFirst
	case "second", "secondfloor", "2":
		return FloorSecond
	case "third", "thirdfloor", "thirdfloorplus", "3", "3+":
		return FloorThirdPlus
	default:
		return FloorGround
	}
}

// rank orders tiers from least to most restrictive.
func (f FloorAccess) rank() int {
	switch f {
	case FloorFirst:
		return 1
	case FloorSecond:
		return 2
	case FloorThirdPlus:
		return 3
	default:
		return 0
	}
}

func (f FloorAccess) Label() string {
	switch f {
	case FloorFirst:
		return "First floor"
	case FloorSecond:
		return "Second floor"
	case FloorThirdPlus:
		return "Third floor or above"
	default:
		return "Ground floor"
	}
}

type UrgencyLevel string

const (
	UrgencyStandard UrgencyLevel = "standard"
	UrgencyPriority UrgencyLevel = "priority"
	UrgencyExpress  UrgencyLevel = "express"
)

// ParseUrgency never fails; unknown input becomes standard.
func ParseUrgency(s string) UrgencyLevel {
	switch normalizeEnum(s) {
	case "priority", "urgent":
		return UrgencyPriority
	case "express", "sameday":
		return UrgencyExpress
	default:
		return UrgencyStandard
	}
}

func (u UrgencyLevel) Label() string {
	switch u {
	case UrgencyPriority:
		return "Priority"
	case UrgencyExpress:
		return "Express"
	default:
		return "Standard"
	}
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}

type QuoteRequest struct {
	PickupAddress   string
	DeliveryAddress string
	VanSize         VanSize
	MoveAt          time.Time
	// EstimatedHours <= 0 derives helper hours from the travel estimate.
	EstimatedHours float64
	Helpers        int
	PickupFloor    FloorAccess
	DeliveryFloor  FloorAccess
	PickupLift     bool
	DeliveryLift   bool
	Urgency        UrgencyLevel

	InRegionalSurchargeZone bool
	Urban                   bool
}

type LineItem struct {
	Label  string `json:"label"`
	Amount int64  `json:"amount"`
}

// Breakdown is built once per quote and never recomputed. Amounts are pence.
type Breakdown struct {
	DistanceMiles    float64 `json:"distance_miles"`
	ChargedMiles     float64 `json:"charged_miles"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	HelperHours      float64 `json:"helper_hours"`
	Helpers          int     `json:"helpers"`

	DistanceCharge    int64 `json:"distance_charge"`
	FuelEstimate      int64 `json:"fuel_estimate"`
	ReturnJourney     int64 `json:"return_journey"`
	VanSupplement     int64 `json:"van_supplement"`
	HelperFee         int64 `json:"helper_fee"`
	FloorFee          int64 `json:"floor_fee"`
	PeakSurcharge     int64 `json:"peak_surcharge"`
	UrgencySurcharge  int64 `json:"urgency_surcharge"`
	RegionalSurcharge int64 `json:"regional_surcharge"`
	MinimumAdjustment int64 `json:"minimum_adjustment"`
	Rounding          int64 `json:"rounding"`

	PeakPercent    float64 `json:"peak_percent"`
	UrgencyPercent float64 `json:"urgency_percent"`

	Subtotal     int64 `json:"subtotal"`
	VATAmount    int64 `json:"vat_amount"`
	TotalWithVAT int64 `json:"total_with_vat"`
	PlatformFee  int64 `json:"platform_fee"`
	DriverShare  int64 `json:"driver_share"`

	Items             []LineItem `json:"items"`
	Currency          string     `json:"currency"`
	CurrencyCode      string     `json:"currency_code"`
	FormattedPrice    string     `json:"formatted_price"`
	FormattedDuration string     `json:"formatted_duration"`
}
