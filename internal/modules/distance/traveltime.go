// README: Heuristic travel-time model (speed bands, congestion, rest breaks, loading).
package distance

import "math"

// travelMinutes derives door-to-door minutes. drivingMinutes < 0 asks the
// speed-band model for the driving component.
func (t *Tables) travelMinutes(miles, drivingMinutes float64, congestion int) int {
	tm := t.Travel
	if drivingMinutes < 0 {
		drivingMinutes = miles / t.speedFor(miles) * 60
	}
	breaks := 0
	if tm.RestBreakEveryMinutes > 0 {
		breaks = int(drivingMinutes/float64(tm.RestBreakEveryMinutes)) * tm.RestBreakMinutes
	}
	total := drivingMinutes + float64(congestion+breaks+t.loadingFor(miles))
	return int(math.Ceil(total - 1e-9))
}

func (t *Tables) speedFor(miles float64) float64 {
	bands := t.Travel.SpeedBands
	for _, b := range bands {
		if b.UpToMiles == 0 || miles <= b.UpToMiles {
			return b.MPH
		}
	}
	return bands[len(bands)-1].MPH
}

func (t *Tables) loadingFor(miles float64) int {
	bands := t.Travel.LoadingBands
	for _, b := range bands {
		if b.BelowMiles == 0 || miles < b.BelowMiles {
			return b.Minutes
		}
	}
	if len(bands) == 0 {
		return 0
	}
	return bands[len(bands)-1].Minutes
}

func congestionMinutes(a, b endpoint) int {
	m := 0
	for _, e := range []endpoint{a, b} {
		if e.region != nil && e.region.CongestionMinutes > m {
			m = e.region.CongestionMinutes
		}
	}
	return m
}
