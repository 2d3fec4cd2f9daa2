package distance

import (
	"math"
	"testing"
)

func TestHaversineMiles_KnownDistances(t *testing.T) {
	tests := []struct {
		name      string
		a, b      Coord
		wantMiles float64
		tolerance float64
	}{
		{
			name:      "same point",
			a:         Coord{Lat: 51.5074, Lng: -0.1278},
			b:         Coord{Lat: 51.5074, Lng: -0.1278},
			wantMiles: 0,
			tolerance: 0.001,
		},
		{
			name:      "London to Birmingham (~101mi)",
			a:         Coord{Lat: 51.5074, Lng: -0.1278},
			b:         Coord{Lat: 52.4862, Lng: -1.8904},
			wantMiles: 101,
			tolerance: 3,
		},
		{
			name:      "London to Edinburgh (~332mi)",
			a:         Coord{Lat: 51.5074, Lng: -0.1278},
			b:         Coord{Lat: 55.9533, Lng: -3.1883},
			wantMiles: 332,
			tolerance: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := haversineMiles(tt.a, tt.b)
			if math.Abs(got-tt.wantMiles) > tt.tolerance {
				t.Errorf("haversineMiles() = %f, want %f (±%f)", got, tt.wantMiles, tt.tolerance)
			}
		})
	}
}

func TestHaversineMiles_Symmetry(t *testing.T) {
	a := Coord{Lat: 53.4808, Lng: -2.2426}
	b := Coord{Lat: 53.8008, Lng: -1.5491}
	d1 := haversineMiles(a, b)
	d2 := haversineMiles(b, a)
	if math.Abs(d1-d2) > 0.0001 {
		t.Errorf("haversine is not symmetric: %f vs %f", d1, d2)
	}
}

func TestWindingFactor(t *testing.T) {
	tables := mustTables(t)
	london := endpoint{region: tables.regionNamed("london")}
	metro := endpoint{region: tables.regionNamed("metro")}
	none := endpoint{}

	tests := []struct {
		name     string
		straight float64
		a, b     endpoint
		want     float64
	}{
		{"short default", 10, none, none, 1.25},
		{"short takes more winding end", 10, metro, london, 1.40},
		{"long haul", 200, london, london, 1.15},
		{"blend midpoint", 100, london, london, 1.275},
		{"blend start", 50, metro, none, 1.30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tables.windingFactor(tt.straight, tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("windingFactor() = %f, want %f", got, tt.want)
			}
		})
	}
}
