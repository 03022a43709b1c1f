// Package ingestion - Normalization of raw rows into domain entities
package ingestion

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
)

// NPR dataset date format; 99991231 marks an open end
const (
	dateLayout = "20060102"
	openEnd    = "99991231"
)

// Normalized holds the entities produced from one dataset
type Normalized struct {
	Zones      []*types.Zone
	Structures []*types.TariffStructure
}

// Normalize groups raw rows into zones and tariff structures. Row
// order within a structure becomes the part order when the dataset
// does not carry an explicit one, making first-match-wins explicit.
func Normalize(records []RawFarePart, loc *time.Location) (*Normalized, error) {
	out := &Normalized{}
	zoneSeen := make(map[types.ZoneID]bool)
	structures := make(map[string]*types.TariffStructure)
	var structureOrder []string

	for i := range records {
		rec := &records[i]

		zoneID, err := zoneIDOf(rec)
		if err != nil {
			return nil, err
		}

		validFrom, validTo, err := structureValidity(rec, loc)
		if err != nil {
			return nil, err
		}

		if !zoneSeen[zoneID] {
			zoneSeen[zoneID] = true
			out.Zones = append(out.Zones, &types.Zone{
				ID:            zoneID,
				Description:   rec.ZoneDescription,
				UsageCategory: rec.UsageCategory,
				ValidFrom:     validFrom,
			})
		}

		key := string(zoneID) + "|" + rec.StartDateStructure
		st, ok := structures[key]
		if !ok {
			st = &types.TariffStructure{
				ID:        rec.FareCalculationCode,
				ZoneID:    zoneID,
				ValidFrom: validFrom,
				ValidTo:   validTo,
			}
			if err := structureAmounts(rec, st); err != nil {
				return nil, err
			}
			structures[key] = st
			structureOrder = append(structureOrder, key)
		}

		part, err := normalizePart(rec, len(st.Parts))
		if err != nil {
			return nil, err
		}
		st.Parts = append(st.Parts, *part)
	}

	for _, key := range structureOrder {
		out.Structures = append(out.Structures, structures[key])
	}
	return out, nil
}

func zoneIDOf(rec *RawFarePart) (types.ZoneID, error) {
	area, err := strconv.Atoi(rec.AreaManagerID)
	if err != nil {
		return "", rowErr(rec, "bad AreaManagerId %q", rec.AreaManagerID)
	}
	if rec.FareCalculationCode == "" {
		return "", rowErr(rec, "empty FareCalculationCode")
	}
	return types.ZoneID(fmt.Sprintf("%d_%s", area, rec.FareCalculationCode)), nil
}

func structureValidity(rec *RawFarePart, loc *time.Location) (time.Time, *time.Time, error) {
	from, err := time.ParseInLocation(dateLayout, rec.StartDateStructure, loc)
	if err != nil {
		return time.Time{}, nil, rowErr(rec, "bad StartDateStructure %q", rec.StartDateStructure)
	}
	if rec.EndDateStructure == "" || rec.EndDateStructure == openEnd {
		return from, nil, nil
	}
	to, err := time.ParseInLocation(dateLayout, rec.EndDateStructure, loc)
	if err != nil {
		return time.Time{}, nil, rowErr(rec, "bad EndDateStructure %q", rec.EndDateStructure)
	}
	// end dates are inclusive in the dataset; validity runs to the
	// end of that day
	to = to.AddDate(0, 0, 1)
	return from, &to, nil
}

func structureAmounts(rec *RawFarePart, st *types.TariffStructure) error {
	if rec.DailyMaxAmount != "" {
		max, err := decimal.NewFromString(rec.DailyMaxAmount)
		if err != nil {
			return rowErr(rec, "bad DailyMaxAmount %q", rec.DailyMaxAmount)
		}
		st.DailyMax = &max
	}
	if rec.VATPercentage != "" {
		vat, err := decimal.NewFromString(rec.VATPercentage)
		if err != nil {
			return rowErr(rec, "bad VatPercentage %q", rec.VATPercentage)
		}
		st.VATPercentage = vat
	}
	return nil
}

func normalizePart(rec *RawFarePart, position int) (*types.TariffPart, error) {
	part := &types.TariffPart{ID: rec.FarePartID}
	if part.ID == "" {
		part.ID = fmt.Sprintf("%s-%d", rec.FareCalculationCode, position+1)
	}

	part.Order = position
	if rec.FarePartOrder != "" {
		order, err := strconv.Atoi(rec.FarePartOrder)
		if err != nil {
			return nil, rowErr(rec, "bad FarePartOrder %q", rec.FarePartOrder)
		}
		part.Order = order
	}

	weekdays, err := types.ParseWeekdays(rec.Weekdays)
	if err != nil {
		return nil, rowErr(rec, "%v", err)
	}
	part.Weekdays = weekdays

	if rec.WindowStart != "" || rec.WindowEnd != "" {
		start, err := types.ParseClockTime(rec.WindowStart)
		if err != nil {
			return nil, rowErr(rec, "%v", err)
		}
		end, err := types.ParseClockTime(rec.WindowEnd)
		if err != nil {
			return nil, rowErr(rec, "%v", err)
		}
		part.Window = types.TimeWindow{Start: start, End: end}
	}

	switch strings.ToLower(rec.PricingKind) {
	case "flat":
		part.Kind = types.PricingFlat
	case "linear":
		part.Kind = types.PricingLinear
	case "stepped":
		part.Kind = types.PricingStepped
	default:
		return nil, rowErr(rec, "unknown PricingKind %q", rec.PricingKind)
	}

	if rec.Amount != "" {
		amount, err := decimal.NewFromString(rec.Amount)
		if err != nil {
			return nil, rowErr(rec, "bad AmountFarePart %q", rec.Amount)
		}
		part.UnitAmount = amount
	}

	if rec.StepSize != "" {
		step, err := strconv.Atoi(rec.StepSize)
		if err != nil {
			return nil, rowErr(rec, "bad StepSizeFarePart %q", rec.StepSize)
		}
		part.StepMinutes = step
	}

	if rec.StepSchedule != "" {
		for _, s := range strings.Split(rec.StepSchedule, ";") {
			amount, err := decimal.NewFromString(strings.TrimSpace(s))
			if err != nil {
				return nil, rowErr(rec, "bad StepSchedule entry %q", s)
			}
			part.Steps = append(part.Steps, amount)
		}
	}

	if rec.FreeMinutes != "" {
		free, err := strconv.Atoi(rec.FreeMinutes)
		if err != nil {
			return nil, rowErr(rec, "bad FreeMinutes %q", rec.FreeMinutes)
		}
		part.FreeMinutes = free
	}

	return part, nil
}

func rowErr(rec *RawFarePart, format string, args ...interface{}) *errors.Error {
	msg := fmt.Sprintf(format, args...)
	return errors.Newf(errors.TypeMalformedTariffData, "line %d: %s", rec.Line, msg)
}
