// Package pricing - Pricing function invariant tests
// These tests prove the pricing invariants hold for every kind.
package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestFlatChargesOnceAnyMinuteExists(t *testing.T) {
	part := &types.TariffPart{Kind: types.PricingFlat, UnitAmount: dec("3.00")}

	if got := Flat(0, part); !got.IsZero() {
		t.Errorf("Flat(0) = %s, want 0", got)
	}
	for _, minutes := range []int{1, 60, 120, 540} {
		if got := Flat(minutes, part); !got.Equal(dec("3.00")) {
			t.Errorf("Flat(%d) = %s, want 3.00", minutes, got)
		}
	}
}

func TestLinearPartialStepsRoundUp(t *testing.T) {
	part := &types.TariffPart{Kind: types.PricingLinear, UnitAmount: dec("0.50"), StepMinutes: 12}

	cases := []struct {
		minutes int
		want    string
	}{
		{1, "0.50"},
		{12, "0.50"},
		{13, "1.00"},
		{24, "1.00"},
		{120, "5.00"},
	}
	for _, c := range cases {
		if got := Linear(c.minutes, part); !got.Equal(dec(c.want)) {
			t.Errorf("Linear(%d) = %s, want %s", c.minutes, got, c.want)
		}
	}
}

// TestLinearMonotonic proves price(minutes) never decreases and is
// constant within a step.
func TestLinearMonotonic(t *testing.T) {
	part := &types.TariffPart{Kind: types.PricingLinear, UnitAmount: dec("0.35"), StepMinutes: 15}

	prev := decimal.Zero
	for minutes := 1; minutes <= 600; minutes++ {
		got := Linear(minutes, part)
		if got.LessThan(prev) {
			t.Fatalf("Linear(%d) = %s < Linear(%d) = %s", minutes, got, minutes-1, prev)
		}
		if (minutes-1)/part.StepMinutes == minutes/part.StepMinutes && minutes%part.StepMinutes != 0 {
			// same step, price must not move
			if sameStep := Linear(minutes-1, part); minutes > 1 && !got.Equal(sameStep) && (minutes-1)%part.StepMinutes != 0 {
				t.Fatalf("price moved inside a step at minute %d: %s -> %s", minutes, sameStep, got)
			}
		}
		prev = got
	}
}

func TestSteppedSchedule(t *testing.T) {
	part := &types.TariffPart{
		Kind:        types.PricingStepped,
		StepMinutes: 60,
		Steps:       []decimal.Decimal{dec("1.00"), dec("3.00"), dec("5.00")},
	}

	cases := []struct {
		minutes int
		want    string
	}{
		{30, "1.00"},  // step 0
		{60, "3.00"},  // step 1
		{90, "3.00"},  // still step 1
		{150, "5.00"}, // floor(150/60)=2, capped at last step
	}
	for _, c := range cases {
		if got := Stepped(c.minutes, part); !got.Equal(dec(c.want)) {
			t.Errorf("Stepped(%d) = %s, want %s", c.minutes, got, c.want)
		}
	}
}

// TestSteppedDegeneratesToLinear proves the schedule continues at the
// last marginal amount past its defined range.
func TestSteppedDegeneratesToLinear(t *testing.T) {
	part := &types.TariffPart{
		Kind:        types.PricingStepped,
		StepMinutes: 60,
		Steps:       []decimal.Decimal{dec("1.00"), dec("3.00"), dec("5.00")},
	}

	// marginal of the last step is 5.00 - 3.00 = 2.00
	cases := []struct {
		minutes int
		want    string
	}{
		{180, "7.00"},  // step 3 = 5.00 + 1*2.00
		{250, "9.00"},  // step 4
		{300, "11.00"}, // step 5
	}
	for _, c := range cases {
		if got := Stepped(c.minutes, part); !got.Equal(dec(c.want)) {
			t.Errorf("Stepped(%d) = %s, want %s", c.minutes, got, c.want)
		}
	}
}

func TestSteppedSingleEntrySchedule(t *testing.T) {
	part := &types.TariffPart{
		Kind:        types.PricingStepped,
		StepMinutes: 30,
		Steps:       []decimal.Decimal{dec("2.00")},
	}

	// with one entry the marginal amount is the entry itself
	if got := Stepped(20, part); !got.Equal(dec("2.00")) {
		t.Errorf("Stepped(20) = %s, want 2.00", got)
	}
	if got := Stepped(65, part); !got.Equal(dec("6.00")) {
		t.Errorf("Stepped(65) = %s, want 6.00 (step 2)", got)
	}
}

func TestPriceChunkDispatch(t *testing.T) {
	flat := &types.TariffPart{Kind: types.PricingFlat, UnitAmount: dec("3.00")}
	got, err := PriceChunk(120, flat)
	if err != nil {
		t.Fatalf("PriceChunk(flat): %v", err)
	}
	if !got.Equal(dec("3.00")) {
		t.Errorf("PriceChunk(flat) = %s, want 3.00", got)
	}

	bad := &types.TariffPart{Kind: types.PricingKind(42)}
	if _, err := PriceChunk(10, bad); err == nil {
		t.Error("PriceChunk with unknown kind should fail")
	}
}

func TestZeroMinutesAlwaysFree(t *testing.T) {
	parts := []*types.TariffPart{
		{Kind: types.PricingFlat, UnitAmount: dec("3.00")},
		{Kind: types.PricingLinear, UnitAmount: dec("0.50"), StepMinutes: 10},
		{Kind: types.PricingStepped, StepMinutes: 60, Steps: []decimal.Decimal{dec("1.00")}},
	}
	for _, part := range parts {
		got, err := PriceChunk(0, part)
		if err != nil {
			t.Fatalf("PriceChunk(0, %s): %v", part.Kind, err)
		}
		if !got.IsZero() {
			t.Errorf("PriceChunk(0, %s) = %s, want 0", part.Kind, got)
		}
	}
}
