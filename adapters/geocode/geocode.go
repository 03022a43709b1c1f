// Package geocode resolves Dutch addresses to parking zone ids.
// The calculation engine never calls this package; the HTTP layer
// resolves an address first and passes the zone id on.
package geocode

import (
	"context"
	"strings"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
)

// Address is a resolved BAG address
type Address struct {
	Street      string `json:"street"`
	City        string `json:"city"`
	Postcode    string `json:"postcode"`
	HouseNumber string `json:"house_number"`
}

// Resolution is the outcome of a zone lookup
type Resolution struct {
	ZoneID  types.ZoneID `json:"zone_id"`
	Address *Address     `json:"address,omitempty"`
}

// Resolver maps an address to a parking zone id. Implementations fail
// with ADDRESS_NOT_FOUND or ZONE_NOT_MAPPED.
type Resolver interface {
	ResolveZone(ctx context.Context, postcode, houseNumber, suffix string) (*Resolution, error)
}

// NormalizePostcode uppercases and strips spaces: "1012 ab" -> "1012AB"
func NormalizePostcode(postcode string) string {
	return strings.ToUpper(strings.ReplaceAll(postcode, " ", ""))
}

// PostcodeDigits returns the numeric prefix of a normalized postcode
func PostcodeDigits(postcode string) string {
	p := NormalizePostcode(postcode)
	if len(p) < 4 {
		return p
	}
	return p[:4]
}
