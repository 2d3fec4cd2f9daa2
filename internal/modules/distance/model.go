// README: Distance estimate value object.
package distance

type Source string

const (
	SourceExactTable      Source = "exact_table"
	SourceGeodesicApprox  Source = "geodesic_approx"
	SourceExternalRouting Source = "external_routing"
	SourceFallback        Source = "fallback"
)

// Estimate is produced fresh per request and never mutated.
type Estimate struct {
	DistanceMiles    float64 `json:"distance_miles"`
	EstimatedMinutes int     `json:"estimated_minutes"`
	Exact            bool    `json:"exact"`
	Source           Source  `json:"source"`
}
