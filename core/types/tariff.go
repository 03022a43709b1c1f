// Package types - Tariff structure and tariff part model
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricingKind selects the pricing function of a tariff part
type PricingKind int

const (
	// PricingFlat charges the unit amount once any chargeable minute exists
	PricingFlat PricingKind = iota

	// PricingLinear charges the unit amount per started step
	PricingLinear

	// PricingStepped charges from a schedule indexed by elapsed step
	PricingStepped
)

// String returns the kind name
func (k PricingKind) String() string {
	switch k {
	case PricingFlat:
		return "flat"
	case PricingLinear:
		return "linear"
	case PricingStepped:
		return "stepped"
	default:
		return "unknown"
	}
}

// UsesSteps reports whether the kind requires a positive step size
func (k PricingKind) UsesSteps() bool {
	return k == PricingLinear || k == PricingStepped
}

// TariffPart is one atomic pricing rule: an applicability window plus
// a pricing function. Parts are matched first-in-order within a
// structure.
type TariffPart struct {
	// ID identifies the part within its structure
	ID string `json:"id"`

	// Order is the explicit first-match priority (lower wins)
	Order int `json:"order"`

	// ValidFrom and ValidTo bound the part itself; zero values mean
	// the part inherits its structure's validity
	ValidFrom time.Time  `json:"valid_from,omitempty"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`

	// Weekdays the part applies on
	Weekdays Weekdays `json:"weekdays"`

	// Window is the applicable time-of-day range
	Window TimeWindow `json:"window"`

	// Kind selects the pricing function
	Kind PricingKind `json:"kind"`

	// UnitAmount is the amount per step (linear), the fixed amount
	// (flat), or unused for stepped parts
	UnitAmount decimal.Decimal `json:"unit_amount"`

	// StepMinutes is the step size for linear and stepped pricing
	StepMinutes int `json:"step_minutes,omitempty"`

	// Steps is the stepped schedule: total amount per step index.
	// Beyond the last entry the schedule degenerates to linear at the
	// last marginal amount.
	Steps []decimal.Decimal `json:"steps,omitempty"`

	// FreeMinutes is the grace period granted at session start
	FreeMinutes int `json:"free_minutes,omitempty"`
}

// AppliesAt reports whether the part covers the given zone-local instant
func (p *TariffPart) AppliesAt(t time.Time) bool {
	if !p.ValidFrom.IsZero() && t.Before(p.ValidFrom) {
		return false
	}
	if p.ValidTo != nil && !t.Before(*p.ValidTo) {
		return false
	}
	if !p.Weekdays.Contains(t.Weekday()) {
		return false
	}
	return p.Window.Contains(MinuteOfDay(t))
}

// TariffStructure is a dated, zone-scoped bundle of tariff parts plus
// an optional daily maximum. Structures are immutable after load.
type TariffStructure struct {
	// ID identifies the structure (NPR fare calculation code)
	ID string `json:"id"`

	// ZoneID is the owning zone
	ZoneID ZoneID `json:"zone_id"`

	// ValidFrom and ValidTo bound the structure; nil ValidTo is open-ended
	ValidFrom time.Time  `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`

	// DailyMax caps the structure's charge per calendar day; nil = uncapped
	DailyMax *decimal.Decimal `json:"daily_max,omitempty"`

	// VATPercentage is the VAT rate included in all amounts
	VATPercentage decimal.Decimal `json:"vat_percentage"`

	// Parts in declared order (first match wins)
	Parts []TariffPart `json:"parts"`
}

// ActiveAt reports whether the structure is valid at the given instant
func (s *TariffStructure) ActiveAt(t time.Time) bool {
	if t.Before(s.ValidFrom) {
		return false
	}
	return s.ValidTo == nil || t.Before(*s.ValidTo)
}

// Overlaps reports whether the structure's validity intersects [start, end)
func (s *TariffStructure) Overlaps(start, end time.Time) bool {
	if !end.After(s.ValidFrom) {
		return false
	}
	return s.ValidTo == nil || start.Before(*s.ValidTo)
}

// Zone is a geographic parking-tariff area
type Zone struct {
	// ID is the stable zone identifier
	ID ZoneID `json:"id"`

	// Description is the human-readable zone name
	Description string `json:"description"`

	// UsageCategory classifies the zone (e.g. street parking, garage)
	UsageCategory string `json:"usage_category,omitempty"`

	// ValidFrom and ValidTo bound the zone itself
	ValidFrom time.Time  `json:"valid_from"`
	ValidTo   *time.Time `json:"valid_to,omitempty"`
}

// ActiveAt reports whether the zone is valid at the given instant
func (z *Zone) ActiveAt(t time.Time) bool {
	if t.Before(z.ValidFrom) {
		return false
	}
	return z.ValidTo == nil || t.Before(*z.ValidTo)
}
