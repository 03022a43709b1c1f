// Package engine - Daily maximum clamping and VAT split
package engine

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
)

var cent = decimal.New(1, -2)
var hundred = decimal.NewFromInt(100)

// applyDailyCap clamps the structure's charge per zone-local calendar
// day to its daily maximum. The clamp is distributed proportionally
// over the day's line items, with leftover cents assigned
// largest-item-first so the outcome is deterministic.
func applyDailyCap(items []types.LineItem, st *types.TariffStructure, loc *time.Location) ([]types.LineItem, bool) {
	if st.DailyMax == nil || len(items) == 0 {
		return items, false
	}
	max := *st.DailyMax

	byDay := make(map[string][]int)
	var dayOrder []string
	for i, it := range items {
		day := it.Start.In(loc).Format("2006-01-02")
		if _, seen := byDay[day]; !seen {
			dayOrder = append(dayOrder, day)
		}
		byDay[day] = append(byDay[day], i)
	}

	capped := false
	for _, day := range dayOrder {
		idxs := byDay[day]
		sum := decimal.Zero
		for _, i := range idxs {
			sum = sum.Add(items[i].Amount)
		}
		if sum.LessThanOrEqual(max) {
			continue
		}
		capped = true
		clampDay(items, idxs, sum, max)
	}
	return items, capped
}

// clampDay scales each item down proportionally (rounded down to
// whole cents) and hands the remaining cents out largest-item-first
func clampDay(items []types.LineItem, idxs []int, sum, max decimal.Decimal) {
	distributed := decimal.Zero
	for _, i := range idxs {
		scaled := items[i].Amount.Mul(max).Div(sum).RoundDown(2)
		items[i].Amount = scaled
		distributed = distributed.Add(scaled)
	}

	// Largest item first; start time breaks ties.
	order := append([]int(nil), idxs...)
	sort.SliceStable(order, func(a, b int) bool {
		ia, ib := items[order[a]], items[order[b]]
		if !ia.Amount.Equal(ib.Amount) {
			return ia.Amount.GreaterThan(ib.Amount)
		}
		return ia.Start.Before(ib.Start)
	})

	residual := max.Sub(distributed)
	for k := 0; residual.GreaterThanOrEqual(cent); k++ {
		i := order[k%len(order)]
		items[i].Amount = items[i].Amount.Add(cent)
		residual = residual.Sub(cent)
	}
}

// vatPortion extracts the VAT share included in a gross amount
func vatPortion(gross, vatPercentage decimal.Decimal) decimal.Decimal {
	if vatPercentage.IsZero() || gross.IsZero() {
		return decimal.Zero
	}
	return gross.Mul(vatPercentage).Div(hundred.Add(vatPercentage)).Round(2)
}
