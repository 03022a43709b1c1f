// Package types - Calculation request and result types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationRequest asks for the parking cost of one zone and interval
type CalculationRequest struct {
	ZoneID ZoneID    `json:"zone_id"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// LineItem is the charge for one priced chunk of the interval. A
// chunk is always governed by a single tariff part.
type LineItem struct {
	// PartID is the tariff part that priced this chunk
	PartID string `json:"part_id"`

	// StructureID is the tariff structure the part belongs to
	StructureID string `json:"structure_id"`

	// Start and End bound the chunk
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// MinutesCharged is the chunk duration minus any grace applied
	MinutesCharged int `json:"minutes_charged"`

	// Amount is the charge for this chunk after any daily-cap clamp
	Amount decimal.Decimal `json:"amount"`
}

// CalculationResult is the itemized outcome of a calculation
type CalculationResult struct {
	// ZoneID the calculation was made for
	ZoneID ZoneID `json:"zone_id"`

	// Total is the summed, possibly capped amount
	Total decimal.Decimal `json:"total"`

	// VATAmount is the VAT portion included in Total
	VATAmount decimal.Decimal `json:"vat_amount"`

	// Currency of all amounts
	Currency Currency `json:"currency"`

	// LineItems in chronological order
	LineItems []LineItem `json:"line_items"`

	// CappedByDailyMax is set when any daily maximum clamped the total
	CappedByDailyMax bool `json:"capped_by_daily_max"`
}

// Minutes returns the requested interval length in whole minutes
func (r CalculationRequest) Minutes() int {
	return int(r.End.Sub(r.Start) / time.Minute)
}
