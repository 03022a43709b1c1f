// Package api - request and response types
package api

import (
	"time"

	"github.com/ttttvvvv/ParkingCalculator/adapters/geocode"
)

// AddressQuery locates a parking zone through an address instead of a
// zone id
type AddressQuery struct {
	Postcode    string `json:"postcode"`
	HouseNumber string `json:"house_number"`
	Suffix      string `json:"suffix,omitempty"`
}

// CalculateRequest asks for the parking cost of an interval. Callers
// supply either a zone id or an address, not both.
type CalculateRequest struct {
	ZoneID  string        `json:"zone_id,omitempty"`
	Address *AddressQuery `json:"address,omitempty"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LineItemResponse is one priced chunk of the interval
type LineItemResponse struct {
	PartID         string    `json:"part_id"`
	StructureID    string    `json:"structure_id"`
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	MinutesCharged int       `json:"minutes_charged"`
	Amount         string    `json:"amount"`
}

// ResponseMetadata ties a response to the dataset and engine that
// produced it
type ResponseMetadata struct {
	RequestID       string `json:"request_id"`
	EngineVersion   string `json:"engine_version"`
	DatasetSnapshot string `json:"dataset_snapshot"`
	DurationMs      int64  `json:"duration_ms"`
}

// CalculateResponse is the itemized calculation outcome
type CalculateResponse struct {
	ZoneID   string             `json:"zone_id"`
	Address  *geocode.Address   `json:"address,omitempty"`
	Start    time.Time          `json:"start"`
	End      time.Time          `json:"end"`
	Total    string             `json:"total"`
	VAT      string             `json:"vat_amount"`
	Currency string             `json:"currency"`
	Capped   bool               `json:"capped_by_daily_max"`
	Items    []LineItemResponse `json:"line_items"`

	Metadata *ResponseMetadata `json:"metadata,omitempty"`
}

// ZoneResponse describes one zone of the active dataset
type ZoneResponse struct {
	ID            string     `json:"id"`
	Description   string     `json:"description"`
	UsageCategory string     `json:"usage_category,omitempty"`
	ValidFrom     time.Time  `json:"valid_from"`
	ValidTo       *time.Time `json:"valid_to,omitempty"`
}

// ZoneListResponse wraps a zone listing
type ZoneListResponse struct {
	Zones []ZoneResponse `json:"zones"`
	Count int            `json:"count"`
}

// TariffPartResponse describes one pricing rule of a structure
type TariffPartResponse struct {
	ID          string   `json:"id"`
	Order       int      `json:"order"`
	Weekdays    string   `json:"weekdays"`
	Window      string   `json:"window"`
	Kind        string   `json:"kind"`
	UnitAmount  string   `json:"unit_amount,omitempty"`
	StepMinutes int      `json:"step_minutes,omitempty"`
	Steps       []string `json:"steps,omitempty"`
	FreeMinutes int      `json:"free_minutes,omitempty"`
}

// TariffStructureResponse describes one dated tariff structure
type TariffStructureResponse struct {
	ID            string               `json:"id"`
	ValidFrom     time.Time            `json:"valid_from"`
	ValidTo       *time.Time           `json:"valid_to,omitempty"`
	DailyMax      string               `json:"daily_max,omitempty"`
	VATPercentage string               `json:"vat_percentage"`
	Parts         []TariffPartResponse `json:"parts"`
}

// TariffResponse is the full tariff of one zone
type TariffResponse struct {
	ZoneID     string                    `json:"zone_id"`
	Structures []TariffStructureResponse `json:"structures"`
}
