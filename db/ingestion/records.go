// Package ingestion - Tariff dataset ingestion pipeline
// Strictly separated from calculation: parse → normalize → snapshot
package ingestion

// RawFarePart is one row of the NPR dataset: a single
// (zone, structure, part) tuple. Values are kept as written in the
// file; Normalize converts and validates them.
type RawFarePart struct {
	// Line is the 1-based source line, carried for error reporting
	Line int

	AreaManagerID       string
	FareCalculationCode string
	ZoneDescription     string
	UsageCategory       string

	StartDateStructure string // YYYYMMDD
	EndDateStructure   string // YYYYMMDD, empty or 99991231 = open-ended
	DailyMaxAmount     string // empty = no daily maximum
	VATPercentage      string

	FarePartID    string
	FarePartOrder string
	Weekdays      string // "all", "mon-fri", "sat,sun"
	WindowStart   string // HH:MM, empty with empty WindowEnd = all day
	WindowEnd     string
	PricingKind   string // flat | linear | stepped
	Amount        string
	StepSize      string // minutes
	StepSchedule  string // semicolon-separated amounts for stepped parts
	FreeMinutes   string
}

// columns is the required dataset header, in canonical order
var columns = []string{
	"AreaManagerId",
	"FareCalculationCode",
	"ZoneDescription",
	"UsageCategory",
	"StartDateStructure",
	"EndDateStructure",
	"DailyMaxAmount",
	"VatPercentage",
	"FarePartId",
	"FarePartOrder",
	"Weekdays",
	"WindowStart",
	"WindowEnd",
	"PricingKind",
	"AmountFarePart",
	"StepSizeFarePart",
	"StepSchedule",
	"FreeMinutes",
}
