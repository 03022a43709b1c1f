package geocode

import (
	"context"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
)

// AddressLookup resolves a Dutch postcode and house number to a verified address.
type AddressLookup interface {
	LookupAddress(ctx context.Context, postcode, houseNumber, suffix string) (*Address, error)
}

// ZoneMapping maps a four-digit postcode prefix to a parking zone.
type ZoneMapping map[string]types.ZoneID

// DefaultZoneMapping covers the areas the bundled dataset ships tariffs for.
// Deployments with zone geometry data replace this with their own table.
var DefaultZoneMapping = ZoneMapping{
	"1012": "14_TAR01",
	"1013": "14_TAR02",
	"1017": "14_TAR03",
	"1018": "17_TAR01",
	"3511": "34_TAR01",
	"3512": "34_TAR02",
}

// AddressResolver resolves addresses to parking zones by verifying the
// address against an address registry and then mapping its postcode
// prefix to a zone.
type AddressResolver struct {
	lookup  AddressLookup
	mapping ZoneMapping
}

func NewAddressResolver(lookup AddressLookup, mapping ZoneMapping) *AddressResolver {
	if mapping == nil {
		mapping = DefaultZoneMapping
	}
	return &AddressResolver{lookup: lookup, mapping: mapping}
}

func (r *AddressResolver) ResolveZone(ctx context.Context, postcode, houseNumber, suffix string) (*Resolution, error) {
	postcode = NormalizePostcode(postcode)
	addr, err := r.lookup.LookupAddress(ctx, postcode, houseNumber, suffix)
	if err != nil {
		return nil, err
	}

	prefix := PostcodeDigits(postcode)
	zoneID, ok := r.mapping[prefix]
	if !ok {
		return nil, errors.ZoneNotMapped(postcode)
	}

	return &Resolution{ZoneID: zoneID, Address: addr}, nil
}
