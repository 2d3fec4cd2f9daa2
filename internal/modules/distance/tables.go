// README: Immutable gazetteer (cities, postcode centroids, regions, zones) loaded once at start.
package distance

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTablesYAML []byte

type Coord struct {
	Lat float64 `yaml:"lat"`
	Lng float64 `yaml:"lng"`
}

type City struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Lat     float64  `yaml:"lat"`
	Lng     float64  `yaml:"lng"`
	Region  string   `yaml:"region"`
}

func (c City) Coord() Coord {
	return Coord{Lat: c.Lat, Lng: c.Lng}
}

type CityPair struct {
	From  string  `yaml:"from"`
	To    string  `yaml:"to"`
	Miles float64 `yaml:"miles"`
}

type TimeOverride struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Minutes int    `yaml:"minutes"`
}

type Region struct {
	Name              string   `yaml:"name"`
	Urban             bool     `yaml:"urban"`
	Winding           float64  `yaml:"winding"`
	CongestionMinutes int      `yaml:"congestion_minutes"`
	Areas             []string `yaml:"areas"`
}

type LongHaul struct {
	Factor    float64 `yaml:"factor"`
	FromMiles float64 `yaml:"from_miles"`
	ToMiles   float64 `yaml:"to_miles"`
}

// SpeedBand applies up to UpToMiles; zero means unbounded.
type SpeedBand struct {
	UpToMiles float64 `yaml:"up_to_miles"`
	MPH       float64 `yaml:"mph"`
}

// LoadingBand applies below BelowMiles; zero means unbounded.
type LoadingBand struct {
	BelowMiles float64 `yaml:"below_miles"`
	Minutes    int     `yaml:"minutes"`
}

type TravelModel struct {
	SpeedBands            []SpeedBand   `yaml:"speed_bands"`
	LoadingBands          []LoadingBand `yaml:"loading_bands"`
	RestBreakEveryMinutes int           `yaml:"rest_break_every_minutes"`
	RestBreakMinutes      int           `yaml:"rest_break_minutes"`
}

type Zone struct {
	Name      string   `yaml:"name"`
	Districts []string `yaml:"districts"`
	Keywords  []string `yaml:"keywords"`
}

// Tables is read-only after Load; share one instance across goroutines.
type Tables struct {
	MinimumMiles   float64          `yaml:"minimum_miles"`
	FallbackMiles  float64          `yaml:"fallback_miles"`
	CentralUK      Coord            `yaml:"central_uk"`
	DefaultWinding float64          `yaml:"default_winding"`
	LongHaul       LongHaul         `yaml:"long_haul"`
	Travel         TravelModel      `yaml:"travel"`
	Regions        []Region         `yaml:"regions"`
	Cities         []City           `yaml:"cities"`
	CityDistances  []CityPair       `yaml:"city_distances"`
	TimeOverrides  []TimeOverride   `yaml:"time_overrides"`
	SurchargeZone  Zone             `yaml:"surcharge_zone"`
	Districts      map[string]Coord `yaml:"districts"`
	Areas          map[string]Coord `yaml:"areas"`

	cityNames    []cityName
	pairMiles    map[string]float64
	pairMinutes  map[string]int
	regionByArea map[string]*Region
	regionByName map[string]*Region
	zoneDistrict map[string]struct{}
}

type cityName struct {
	needle string
	city   *City
}

// DefaultTables parses the embedded gazetteer.
func DefaultTables() (*Tables, error) {
	return ParseTables(defaultTablesYAML)
}

// LoadTables reads a gazetteer file; an empty path yields the embedded default.
func LoadTables(path string) (*Tables, error) {
	if path == "" {
		return DefaultTables()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tables: %w", err)
	}
	return ParseTables(b)
}

func ParseTables(b []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(b, &t); err != nil {
		return nil, fmt.Errorf("parse tables: %w", err)
	}
	if err := t.index(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Tables) index() error {
	if t.MinimumMiles <= 0 {
		return fmt.Errorf("tables: minimum_miles must be > 0")
	}
	if t.FallbackMiles <= 0 {
		return fmt.Errorf("tables: fallback_miles must be > 0")
	}
	if t.DefaultWinding < 1 {
		return fmt.Errorf("tables: default_winding must be >= 1")
	}
	if len(t.Travel.SpeedBands) == 0 {
		return fmt.Errorf("tables: travel.speed_bands required")
	}

	t.regionByArea = map[string]*Region{}
	t.regionByName = map[string]*Region{}
	for i := range t.Regions {
		r := &t.Regions[i]
		t.regionByName[r.Name] = r
		for _, a := range r.Areas {
			t.regionByArea[strings.ToUpper(a)] = r
		}
	}

	t.cityNames = t.cityNames[:0]
	known := map[string]bool{}
	for i := range t.Cities {
		c := &t.Cities[i]
		c.Name = strings.ToLower(c.Name)
		known[c.Name] = true
		t.cityNames = append(t.cityNames, cityName{needle: c.Name, city: c})
		for _, a := range c.Aliases {
			t.cityNames = append(t.cityNames, cityName{needle: strings.ToLower(a), city: c})
		}
	}
	// Longer needles first so "newcastle upon tyne" beats "newcastle" at the same position.
	sort.SliceStable(t.cityNames, func(i, j int) bool {
		return len(t.cityNames[i].needle) > len(t.cityNames[j].needle)
	})

	t.pairMiles = map[string]float64{}
	for _, p := range t.CityDistances {
		from, to := strings.ToLower(p.From), strings.ToLower(p.To)
		if !known[from] || !known[to] {
			return fmt.Errorf("tables: city distance %s-%s references unknown city", p.From, p.To)
		}
		if p.Miles <= 0 {
			return fmt.Errorf("tables: city distance %s-%s must be > 0", p.From, p.To)
		}
		t.pairMiles[pairKey(from, to)] = p.Miles
	}

	t.pairMinutes = map[string]int{}
	for _, o := range t.TimeOverrides {
		t.pairMinutes[pairKey(normalizeKey(o.From), normalizeKey(o.To))] = o.Minutes
	}

	t.zoneDistrict = map[string]struct{}{}
	for _, d := range t.SurchargeZone.Districts {
		t.zoneDistrict[strings.ToUpper(d)] = struct{}{}
	}
	upper := func(m map[string]Coord) map[string]Coord {
		out := make(map[string]Coord, len(m))
		for k, v := range m {
			out[strings.ToUpper(k)] = v
		}
		return out
	}
	t.Districts = upper(t.Districts)
	t.Areas = upper(t.Areas)
	return nil
}

// pairKey is order-independent so lookups are symmetric.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// normalizeKey upper-cases postcode districts and lower-cases city names.
func normalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if bareDistrictRe.MatchString(strings.ToUpper(s)) {
		return strings.ToUpper(s)
	}
	return strings.ToLower(s)
}

// MatchCity returns the canonical city named in addr. The right-most match
// wins because UK addresses end with the post town.
func (t *Tables) MatchCity(addr string) (*City, bool) {
	lower := strings.ToLower(addr)
	best, bestPos := (*City)(nil), -1
	for _, cn := range t.cityNames {
		pos := strings.LastIndex(lower, cn.needle)
		if pos < 0 || !wordBounded(lower, pos, len(cn.needle)) {
			continue
		}
		if pos > bestPos {
			best, bestPos = cn.city, pos
		}
	}
	return best, best != nil
}

func wordBounded(s string, pos, n int) bool {
	isLetter := func(b byte) bool { return b >= 'a' && b <= 'z' }
	if pos > 0 && isLetter(s[pos-1]) {
		return false
	}
	end := pos + n
	if end < len(s) && isLetter(s[end]) {
		return false
	}
	return true
}

// CityDistance returns the tabulated road miles between two canonical cities.
func (t *Tables) CityDistance(a, b string) (float64, bool) {
	m, ok := t.pairMiles[pairKey(strings.ToLower(a), strings.ToLower(b))]
	return m, ok
}

func (t *Tables) timeOverride(a, b string) (int, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	m, ok := t.pairMinutes[pairKey(a, b)]
	return m, ok
}

func (t *Tables) regionForArea(area string) *Region {
	return t.regionByArea[area]
}

func (t *Tables) regionNamed(name string) *Region {
	if name == "" {
		return nil
	}
	return t.regionByName[name]
}

// InSurchargeZone reports whether addr falls in the regional surcharge zone,
// either by postcode district or by a documented keyword substring.
func (t *Tables) InSurchargeZone(addr string) bool {
	if d := extractDistrict(addr); d != "" {
		if _, ok := t.zoneDistrict[d]; ok {
			return true
		}
		if _, ok := t.zoneDistrict[trimSubdistrict(d)]; ok {
			return true
		}
	}
	lower := strings.ToLower(addr)
	for _, kw := range t.SurchargeZone.Keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// IsUrbanRoute reports an intra-city move: both ends in the same canonical
// city, the same postcode area, or the same urban region.
func (t *Tables) IsUrbanRoute(from, to string) bool {
	a, b := t.resolve(from), t.resolve(to)
	switch {
	case a.city != nil && a.city == b.city:
		return true
	case a.area != "" && a.area == b.area:
		return true
	default:
		return a.region != nil && a.region == b.region && a.region.Urban
	}
}
