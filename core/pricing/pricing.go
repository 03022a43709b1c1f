// Package pricing - Pure pricing functions for tariff parts
// Each function is deterministic and side-effect free: amount is a
// function of (charged minutes, tariff part) and nothing else.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
)

// Flat returns the part's unit amount once any chargeable minute
// exists, regardless of duration.
func Flat(minutes int, part *types.TariffPart) decimal.Decimal {
	if minutes <= 0 {
		return decimal.Zero
	}
	return part.UnitAmount
}

// Linear charges the unit amount per started step: partial steps
// round up, favoring predictable billing over fractional cents.
func Linear(minutes int, part *types.TariffPart) decimal.Decimal {
	if minutes <= 0 || part.StepMinutes <= 0 {
		return decimal.Zero
	}
	steps := (minutes + part.StepMinutes - 1) / part.StepMinutes
	return part.UnitAmount.Mul(decimal.NewFromInt(int64(steps)))
}

// Stepped looks up the schedule entry for the elapsed step index,
// capped at the last defined step. Beyond the defined range the
// schedule degenerates to linear at the last marginal amount.
func Stepped(minutes int, part *types.TariffPart) decimal.Decimal {
	if minutes <= 0 || part.StepMinutes <= 0 || len(part.Steps) == 0 {
		return decimal.Zero
	}

	idx := minutes / part.StepMinutes
	last := len(part.Steps) - 1
	if idx <= last {
		return part.Steps[idx]
	}

	marginal := part.Steps[last]
	if last > 0 {
		marginal = part.Steps[last].Sub(part.Steps[last-1])
	}
	overshoot := decimal.NewFromInt(int64(idx - last))
	return part.Steps[last].Add(marginal.Mul(overshoot))
}

// PriceChunk dispatches on the part's pricing kind
func PriceChunk(minutes int, part *types.TariffPart) (decimal.Decimal, error) {
	switch part.Kind {
	case types.PricingFlat:
		return Flat(minutes, part), nil
	case types.PricingLinear:
		return Linear(minutes, part), nil
	case types.PricingStepped:
		return Stepped(minutes, part), nil
	default:
		return decimal.Zero, errors.Newf(errors.TypeInternal, "unknown pricing kind %d", part.Kind)
	}
}
