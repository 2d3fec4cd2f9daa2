// README: Pure geographic computation helpers.
package distance

import "math"

const earthRadiusMiles = 3958.8

// haversineMiles returns the great-circle distance in miles between two
// points specified in decimal degrees.
func haversineMiles(a, b Coord) float64 {
	dLat := degreesToRadians(b.Lat - a.Lat)
	dLng := degreesToRadians(b.Lng - a.Lng)

	rLat1 := degreesToRadians(a.Lat)
	rLat2 := degreesToRadians(b.Lat)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMiles * c
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// windingFactor converts straight-line miles to road miles. Short trips use
// the more winding of the two regions; long hauls blend linearly toward the
// motorway factor.
func (t *Tables) windingFactor(straight float64, a, b endpoint) float64 {
	regional := math.Max(t.regionWinding(a), t.regionWinding(b))
	lh := t.LongHaul
	if lh.Factor <= 0 || lh.ToMiles <= lh.FromMiles {
		return regional
	}
	switch {
	case straight <= lh.FromMiles:
		return regional
	case straight >= lh.ToMiles:
		return lh.Factor
	}
	frac := (straight - lh.FromMiles) / (lh.ToMiles - lh.FromMiles)
	return regional + (lh.Factor-regional)*frac
}

func (t *Tables) regionWinding(e endpoint) float64 {
	if e.region != nil && e.region.Winding > 0 {
		return e.region.Winding
	}
	return t.DefaultWinding
}
