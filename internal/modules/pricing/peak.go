// README: Peak-time classification (holiday, weekend, evening); the highest rate wins.
package pricing

import "time"

type PeakKind string

const (
	PeakNone    PeakKind = "none"
	PeakHoliday PeakKind = "holiday"
	PeakWeekend PeakKind = "weekend"
	PeakEvening PeakKind = "evening"
)

func (k PeakKind) label() string {
	switch k {
	case PeakHoliday:
		return "Bank holiday"
	case PeakWeekend:
		return "Weekend"
	case PeakEvening:
		return "Evening"
	default:
		return ""
	}
}

// peakRate returns the single highest applicable peak rate for moveAt,
// evaluated in the rate card's timezone. A zero time is off-peak.
func (r *Rates) peakRate(moveAt time.Time) (PeakKind, float64) {
	if moveAt.IsZero() {
		return PeakNone, 0
	}
	local := moveAt.In(r.loc)
	p := r.Peak

	best, pct := PeakNone, 0.0
	consider := func(k PeakKind, v float64, applies bool) {
		if applies && v > pct {
			best, pct = k, v
		}
	}
	_, holiday := r.holidays[local.Format("01-02")]
	consider(PeakHoliday, p.HolidayPercent, holiday)
	wd := local.Weekday()
	consider(PeakWeekend, p.WeekendPercent, wd == time.Saturday || wd == time.Sunday)
	consider(PeakEvening, p.EveningPercent, r.isEvening(local.Hour()))
	return best, pct
}

// isEvening handles windows that wrap past midnight (18:00 until 08:00).
func (r *Rates) isEvening(hour int) bool {
	from, until := r.Peak.EveningFromHour, r.Peak.EveningUntilHour
	if from == until {
		return false
	}
	if from < until {
		return hour >= from && hour < until
	}
	return hour >= from || hour < until
}
