package pricing

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"vanbook/internal/modules/distance"
)

// Tuesday, off-peak.
var weekdayNoon = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func mustEngine(t *testing.T) *Engine {
	t.Helper()
	rates, err := DefaultRates()
	if err != nil {
		t.Fatalf("DefaultRates() error = %v", err)
	}
	return NewEngine(rates)
}

func TestBuildBreakdown_Scenarios(t *testing.T) {
	e := mustEngine(t)

	tests := []struct {
		name         string
		req          QuoteRequest
		est          distance.Estimate
		wantDistance int64
		wantSubtotal int64
		wantTotal    int64
		wantMinimum  int64
	}{
		{
			name: "small van within the congestion zone hits the minimum price",
			req: QuoteRequest{
				VanSize: VanSmall, MoveAt: weekdayNoon, Urgency: UrgencyStandard,
				Urban: true, InRegionalSurchargeZone: true,
			},
			est: distance.Estimate{DistanceMiles: 2.0, EstimatedMinutes: 45},
			// Charged 3.0mi: 3 * 2.50 + fuel 0.565 = 8.07
			// Return 4.04, regional 15.00 -> 27.11, minimum adds 32.89
			wantDistance: 807,
			wantSubtotal: 6000,
			wantTotal:    7200,
			wantMinimum:  3289,
		},
		{
			name: "medium van london to birmingham with one helper",
			req: QuoteRequest{
				VanSize: VanMedium, MoveAt: weekdayNoon, Helpers: 1,
				PickupFloor: FloorFirst, DeliveryFloor: FloorGround,
			},
			est: distance.Estimate{DistanceMiles: 126, EstimatedMinutes: 210, Exact: true, Source: distance.SourceExactTable},
			// Bands: 50 * 1.80 + 76 * 1.50 = 204.00, fuel 27.69 -> 231.69 * 1.25 = 289.61
			// Return 144.81, supplement 43.44, helper 4.5h * 25 = 112.50, floor 15.00
			// 605.36 -> 606.00
			wantDistance: 28961,
			wantSubtotal: 60600,
			wantTotal:    72720,
		},
		{
			name: "luton long haul on christmas day, express, two helpers",
			req: QuoteRequest{
				VanSize: VanLuton, MoveAt: time.Date(2026, 12, 25, 12, 0, 0, 0, time.UTC),
				Helpers: 2, PickupFloor: FloorThirdPlus, Urgency: UrgencyExpress,
			},
			est: distance.Estimate{DistanceMiles: 400, EstimatedMinutes: 600},
			// Travel 1209.31 + 604.66 = 1813.97; holiday 25% 453.49 and express 30% 544.19 on the same base
			wantDistance: 120931,
			wantSubtotal: 407200,
			wantTotal:    488640,
		},
		{
			name: "priority evening short hop",
			req: QuoteRequest{
				VanSize: VanMedium, MoveAt: time.Date(2026, 2, 10, 19, 0, 0, 0, time.UTC),
				Urgency: UrgencyPriority,
			},
			est:          distance.Estimate{DistanceMiles: 10, EstimatedMinutes: 73},
			wantDistance: 2525,
			wantSubtotal: 6000,
			wantTotal:    7200,
			wantMinimum:  886,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.BuildBreakdown(tt.req, tt.est)
			if err != nil {
				t.Fatalf("BuildBreakdown() error = %v", err)
			}
			if got.DistanceCharge != tt.wantDistance {
				t.Errorf("DistanceCharge = %d, want %d", got.DistanceCharge, tt.wantDistance)
			}
			if got.Subtotal != tt.wantSubtotal {
				t.Errorf("Subtotal = %d, want %d", got.Subtotal, tt.wantSubtotal)
			}
			if got.TotalWithVAT != tt.wantTotal {
				t.Errorf("TotalWithVAT = %d, want %d", got.TotalWithVAT, tt.wantTotal)
			}
			if got.MinimumAdjustment != tt.wantMinimum {
				t.Errorf("MinimumAdjustment = %d, want %d", got.MinimumAdjustment, tt.wantMinimum)
			}
		})
	}
}

func TestBuildBreakdown_LineItems(t *testing.T) {
	e := mustEngine(t)
	got, err := e.BuildBreakdown(QuoteRequest{
		VanSize: VanMedium, MoveAt: weekdayNoon, Helpers: 1, PickupFloor: FloorFirst,
	}, distance.Estimate{DistanceMiles: 126, EstimatedMinutes: 210})
	if err != nil {
		t.Fatalf("BuildBreakdown() error = %v", err)
	}

	want := []LineItem{
		{"Distance charge (126.0 miles)", 28961},
		{"Return journey", 14481},
		{"Medium van supplement", 4344},
		{"Helpers (1 × 4.5 h)", 11250},
		{"Floor access (First floor)", 1500},
		{"Rounding", 64},
		{"VAT (20%)", 12120},
	}
	if !reflect.DeepEqual(got.Items, want) {
		t.Errorf("Items = %+v, want %+v", got.Items, want)
	}
	if got.FormattedPrice != "£727.20" {
		t.Errorf("FormattedPrice = %q", got.FormattedPrice)
	}
	if got.FormattedDuration != "3 hours 30 min" {
		t.Errorf("FormattedDuration = %q", got.FormattedDuration)
	}
	if got.PeakSurcharge != 0 || got.UrgencySurcharge != 0 || got.RegionalSurcharge != 0 {
		t.Errorf("optional fields should be present as zero: %+v", got)
	}
}

func TestBuildBreakdown_AdditiveSurcharges(t *testing.T) {
	e := mustEngine(t)
	got, err := e.BuildBreakdown(QuoteRequest{
		VanSize: VanLuton, MoveAt: time.Date(2026, 12, 25, 12, 0, 0, 0, time.UTC),
		Helpers: 2, PickupFloor: FloorThirdPlus, Urgency: UrgencyExpress,
	}, distance.Estimate{DistanceMiles: 400, EstimatedMinutes: 600})
	if err != nil {
		t.Fatalf("BuildBreakdown() error = %v", err)
	}
	if got.PeakPercent != 25 || got.UrgencyPercent != 30 {
		t.Fatalf("percents = %v/%v, want 25/30", got.PeakPercent, got.UrgencyPercent)
	}
	base := got.DistanceCharge + got.ReturnJourney
	// 45349 + 54419; compounding would give 45349 + 54419 + 13605
	if got.PeakSurcharge != 45349 || got.UrgencySurcharge != 54419 {
		t.Errorf("surcharges = %d + %d on base %d", got.PeakSurcharge, got.UrgencySurcharge, base)
	}
	if got.Items[5].Label != "Bank holiday surcharge (25%)" || got.Items[6].Label != "Express urgency (30%)" {
		t.Errorf("unexpected surcharge labels: %+v", got.Items)
	}
}

func TestBuildBreakdown_Deterministic(t *testing.T) {
	e := mustEngine(t)
	req := QuoteRequest{
		VanSize: VanLarge, MoveAt: weekdayNoon, Helpers: 2, Urgency: UrgencyPriority,
		PickupFloor: FloorSecond, DeliveryFloor: FloorFirst, PickupLift: true,
	}
	est := distance.Estimate{DistanceMiles: 87.3, EstimatedMinutes: 205, Source: distance.SourceGeodesicApprox}

	first, err := e.BuildBreakdown(req, est)
	if err != nil {
		t.Fatalf("BuildBreakdown() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, _ := e.BuildBreakdown(req, est)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs:\n%+v\n%+v", i, first, again)
		}
	}
}

func TestBuildBreakdown_Invariants(t *testing.T) {
	e := mustEngine(t)
	vans := []VanSize{VanSmall, VanMedium, VanLarge, VanLuton}
	miles := []float64{0, 0.5, 2.9, 3, 12.3, 49.9, 50, 126, 400, 1000}
	urgencies := []UrgencyLevel{UrgencyStandard, UrgencyPriority, UrgencyExpress}
	floors := []FloorAccess{FloorGround, FloorFirst, FloorSecond, FloorThirdPlus}
	minimum := int64(6000)

	for _, v := range vans {
		for _, m := range miles {
			for _, u := range urgencies {
				for helpers := 0; helpers <= 2; helpers++ {
					for _, f := range floors {
						req := QuoteRequest{
							VanSize: v, MoveAt: weekdayNoon, Urgency: u, Helpers: helpers,
							PickupFloor: f, Urban: m < 5,
						}
						b, err := e.BuildBreakdown(req, distance.Estimate{DistanceMiles: m, EstimatedMinutes: int(m * 2)})
						if err != nil {
							t.Fatalf("BuildBreakdown(%+v) error = %v", req, err)
						}
						if b.DriverShare+b.PlatformFee+b.VATAmount != b.TotalWithVAT {
							t.Fatalf("split broken: %d + %d + %d != %d", b.DriverShare, b.PlatformFee, b.VATAmount, b.TotalWithVAT)
						}
						if b.Subtotal < minimum {
							t.Fatalf("subtotal %d below minimum", b.Subtotal)
						}
						if b.Subtotal%100 != 0 {
							t.Fatalf("subtotal %d not whole pounds", b.Subtotal)
						}
						var sum int64
						for _, it := range b.Items[:len(b.Items)-1] {
							sum += it.Amount
						}
						if sum != b.Subtotal {
							t.Fatalf("items sum %d != subtotal %d", sum, b.Subtotal)
						}
						if last := b.Items[len(b.Items)-1]; last.Amount != b.VATAmount {
							t.Fatalf("last item %+v is not VAT", last)
						}
					}
				}
			}
		}
	}
}

func TestDistanceCharge_Monotonic(t *testing.T) {
	e := mustEngine(t)
	for _, v := range []VanSize{VanSmall, VanMedium, VanLarge, VanLuton} {
		for _, urban := range []bool{true, false} {
			prev := int64(-1)
			for m := 0.0; m <= 500; m += 0.7 {
				b, err := e.BuildBreakdown(QuoteRequest{VanSize: v, Urban: urban}, distance.Estimate{DistanceMiles: m})
				if err != nil {
					t.Fatalf("BuildBreakdown() error = %v", err)
				}
				if b.DistanceCharge < prev {
					t.Fatalf("%s urban=%v: distance charge fell at %.1fmi: %d < %d", v, urban, m, b.DistanceCharge, prev)
				}
				prev = b.DistanceCharge
			}
		}
	}
}

func TestUrgency_Monotonic(t *testing.T) {
	e := mustEngine(t)
	for _, m := range []float64{1, 25, 126, 400} {
		prev := int64(-1)
		for _, u := range []UrgencyLevel{UrgencyStandard, UrgencyPriority, UrgencyExpress} {
			b, err := e.BuildBreakdown(QuoteRequest{VanSize: VanMedium, Urgency: u, MoveAt: weekdayNoon}, distance.Estimate{DistanceMiles: m})
			if err != nil {
				t.Fatalf("BuildBreakdown() error = %v", err)
			}
			if b.TotalWithVAT < prev {
				t.Errorf("%.0fmi %s: total %d < %d", m, u, b.TotalWithVAT, prev)
			}
			prev = b.TotalWithVAT
		}
	}
}

func TestFloorFee_LiftHalvesExactly(t *testing.T) {
	e := mustEngine(t)
	est := distance.Estimate{DistanceMiles: 20}
	for _, f := range []FloorAccess{FloorFirst, FloorSecond, FloorThirdPlus} {
		noLift, _ := e.BuildBreakdown(QuoteRequest{PickupFloor: f}, est)
		bothLifts, _ := e.BuildBreakdown(QuoteRequest{PickupFloor: f, PickupLift: true, DeliveryLift: true}, est)
		oneLift, _ := e.BuildBreakdown(QuoteRequest{PickupFloor: f, PickupLift: true}, est)

		if bothLifts.FloorFee*2 != noLift.FloorFee {
			t.Errorf("%s: lift fee %d is not half of %d", f, bothLifts.FloorFee, noLift.FloorFee)
		}
		if oneLift.FloorFee != noLift.FloorFee {
			t.Errorf("%s: lift at one end only should not discount", f)
		}
	}

	// The more restrictive end sets the tier.
	b, _ := e.BuildBreakdown(QuoteRequest{PickupFloor: FloorFirst, DeliveryFloor: FloorThirdPlus}, est)
	if b.FloorFee != 5000 {
		t.Errorf("FloorFee = %d, want 5000", b.FloorFee)
	}
}

func TestBuildBreakdown_NegativeDistanceClamps(t *testing.T) {
	e := mustEngine(t)
	neg, err := e.BuildBreakdown(QuoteRequest{VanSize: VanSmall}, distance.Estimate{DistanceMiles: -5})
	if err != nil {
		t.Fatalf("BuildBreakdown() error = %v", err)
	}
	zero, _ := e.BuildBreakdown(QuoteRequest{VanSize: VanSmall}, distance.Estimate{})
	if neg.DistanceMiles != 0 || neg.ChargedMiles != 3 {
		t.Errorf("miles = %v/%v, want 0/3", neg.DistanceMiles, neg.ChargedMiles)
	}
	if !reflect.DeepEqual(neg, zero) {
		t.Errorf("negative distance should price like zero")
	}
}

func TestBuildBreakdown_BadRateCard(t *testing.T) {
	rates, err := DefaultRates()
	if err != nil {
		t.Fatal(err)
	}
	vr := rates.Vans[VanMedium]
	vr.HourlyMultiplier = 0.9
	rates.Vans[VanMedium] = vr

	_, err = NewEngine(rates).BuildBreakdown(QuoteRequest{VanSize: VanMedium}, distance.Estimate{DistanceMiles: 30})
	if !errors.Is(err, ErrNegativeCharge) {
		t.Errorf("error = %v, want ErrNegativeCharge", err)
	}
}

func TestHelperHours(t *testing.T) {
	rates, _ := DefaultRates()
	tests := []struct {
		name    string
		req     QuoteRequest
		minutes int
		want    float64
	}{
		{"caller hours win", QuoteRequest{EstimatedHours: 3.25, VanSize: VanLuton}, 600, 3.25},
		// 210 + 45 = 255min -> 4.25h -> 4.5h
		{"derived rounds up to half hour", QuoteRequest{VanSize: VanMedium}, 210, 4.5},
		// 10 + 30 = 40min -> 1h minimum
		{"one hour minimum", QuoteRequest{VanSize: VanSmall}, 10, 1},
		{"exact half hour kept", QuoteRequest{VanSize: VanSmall}, 60, 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rates.helperHours(tt.req, tt.minutes); got != tt.want {
				t.Errorf("helperHours() = %v, want %v", got, tt.want)
			}
		})
	}
}
