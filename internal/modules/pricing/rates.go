// README: Immutable rate card, embedded by default and validated on load.
package pricing

import (
	_ "embed"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"vanbook/internal/types"
)

//go:embed rates.yaml
var defaultRatesYAML []byte

type Band struct {
	UpToMiles float64 `yaml:"up_to_miles"`
	PerMile   float64 `yaml:"per_mile"`
}

type VanRates struct {
	SizeMultiplier   float64 `yaml:"size_multiplier"`
	HourlyMultiplier float64 `yaml:"hourly_multiplier"`
	MPG              float64 `yaml:"mpg"`
	LoadingMinutes   int     `yaml:"loading_minutes"`
}

type PeakRates struct {
	Timezone         string   `yaml:"timezone"`
	HolidayPercent   float64  `yaml:"holiday_percent"`
	WeekendPercent   float64  `yaml:"weekend_percent"`
	EveningPercent   float64  `yaml:"evening_percent"`
	EveningFromHour  int      `yaml:"evening_from_hour"`
	EveningUntilHour int      `yaml:"evening_until_hour"`
	Holidays         []string `yaml:"holidays"`
}

type Rates struct {
	Currency            string                   `yaml:"currency"`
	MinimumChargeMiles  float64                  `yaml:"minimum_charge_miles"`
	UrbanRatePerMile    float64                  `yaml:"urban_rate_per_mile"`
	StandardBands       []Band                   `yaml:"standard_bands"`
	FuelPricePerLitre   float64                  `yaml:"fuel_price_per_litre"`
	LitresPerGallon     float64                  `yaml:"litres_per_gallon"`
	ReturnJourneyFactor float64                  `yaml:"return_journey_factor"`
	Vans                map[VanSize]VanRates     `yaml:"vans"`
	HelperHourlyRate    float64                  `yaml:"helper_hourly_rate"`
	MaxHelpers          int                      `yaml:"max_helpers"`
	FloorFees           map[FloorAccess]float64  `yaml:"floor_fees"`
	Peak                PeakRates                `yaml:"peak"`
	UrgencyPercent      map[UrgencyLevel]float64 `yaml:"urgency_percent"`
	RegionalSurcharge   float64                  `yaml:"regional_surcharge"`
	MinimumPrice        float64                  `yaml:"minimum_price"`
	VATPercent          float64                  `yaml:"vat_percent"`
	PlatformFeePercent  float64                  `yaml:"platform_fee_percent"`

	loc      *time.Location
	holidays map[string]struct{}
}

// DefaultRates parses the embedded rate card.
func DefaultRates() (*Rates, error) {
	return ParseRates(defaultRatesYAML)
}

// LoadRates reads a rate card file; an empty path yields the embedded default.
func LoadRates(path string) (*Rates, error) {
	if path == "" {
		return DefaultRates()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates: %w", err)
	}
	return ParseRates(b)
}

func ParseRates(b []byte) (*Rates, error) {
	var r Rates
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse rates: %w", err)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *Rates) validate() error {
	if r.MinimumChargeMiles < 0 || r.UrbanRatePerMile < 0 || r.FuelPricePerLitre < 0 ||
		r.ReturnJourneyFactor < 0 || r.HelperHourlyRate < 0 || r.RegionalSurcharge < 0 ||
		r.MinimumPrice < 0 || r.VATPercent < 0 || r.PlatformFeePercent < 0 {
		return fmt.Errorf("rates: negative rate")
	}
	if r.PlatformFeePercent > 100 {
		return fmt.Errorf("rates: platform_fee_percent above 100")
	}
	if len(r.StandardBands) == 0 {
		return fmt.Errorf("rates: standard_bands required")
	}
	for i, b := range r.StandardBands {
		if b.PerMile < 0 {
			return fmt.Errorf("rates: standard band %d has negative rate", i)
		}
		if b.UpToMiles == 0 && i != len(r.StandardBands)-1 {
			return fmt.Errorf("rates: only the last standard band may be unbounded")
		}
		if i > 0 && b.UpToMiles != 0 && b.UpToMiles <= r.StandardBands[i-1].UpToMiles {
			return fmt.Errorf("rates: standard bands must be ascending")
		}
	}
	for tier, fee := range r.FloorFees {
		minor := types.ToMinor(fee)
		if minor < 0 {
			return fmt.Errorf("rates: floor fee %s is negative", tier)
		}
		// The lift credit halves the fee exactly.
		if minor%2 != 0 {
			return fmt.Errorf("rates: floor fee %s must be a whole even number of pence", tier)
		}
	}
	for _, v := range []VanSize{VanSmall, VanMedium, VanLarge, VanLuton} {
		vr, ok := r.Vans[v]
		if !ok {
			return fmt.Errorf("rates: van %s missing", v)
		}
		if vr.MPG <= 0 || vr.SizeMultiplier <= 0 {
			return fmt.Errorf("rates: van %s needs positive mpg and size_multiplier", v)
		}
	}
	if r.Currency == "" {
		r.Currency = "GBP"
	}
	if r.LitresPerGallon <= 0 {
		r.LitresPerGallon = 4.54609
	}

	tz := r.Peak.Timezone
	if tz == "" {
		tz = "Europe/London"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("rates: peak timezone: %w", err)
	}
	r.loc = loc
	r.holidays = make(map[string]struct{}, len(r.Peak.Holidays))
	for _, h := range r.Peak.Holidays {
		if _, err := time.Parse("01-02", h); err != nil {
			return fmt.Errorf("rates: holiday %q: want MM-DD", h)
		}
		r.holidays[h] = struct{}{}
	}
	return nil
}

func (r *Rates) van(v VanSize) VanRates {
	if vr, ok := r.Vans[v]; ok {
		return vr
	}
	return r.Vans[VanMedium]
}

// LoadingMinutes is the base loading allowance for a van class.
func (r *Rates) LoadingMinutes(v VanSize) int {
	return r.van(v).LoadingMinutes
}
