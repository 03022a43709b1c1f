// Package ingestion - CSV parsing for the NPR dataset
package ingestion

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
)

// ParseCSV reads the dataset and returns one raw record per data row.
// Any malformed row aborts the parse with a descriptive error; the
// loader never produces partial entities.
func ParseCSV(r io.Reader) ([]RawFarePart, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New(errors.TypeMalformedTariffData, "dataset is empty")
	}
	if err != nil {
		return nil, errors.MalformedTariffData("reading dataset header", err)
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var records []RawFarePart
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, errors.Wrapf(errors.TypeMalformedTariffData, err, "line %d", line)
		}

		field := func(name string) string {
			return strings.TrimSpace(row[index[name]])
		}
		records = append(records, RawFarePart{
			Line:                line,
			AreaManagerID:       field("AreaManagerId"),
			FareCalculationCode: field("FareCalculationCode"),
			ZoneDescription:     field("ZoneDescription"),
			UsageCategory:       field("UsageCategory"),
			StartDateStructure:  field("StartDateStructure"),
			EndDateStructure:    field("EndDateStructure"),
			DailyMaxAmount:      field("DailyMaxAmount"),
			VATPercentage:       field("VatPercentage"),
			FarePartID:          field("FarePartId"),
			FarePartOrder:       field("FarePartOrder"),
			Weekdays:            field("Weekdays"),
			WindowStart:         field("WindowStart"),
			WindowEnd:           field("WindowEnd"),
			PricingKind:         field("PricingKind"),
			Amount:              field("AmountFarePart"),
			StepSize:            field("StepSizeFarePart"),
			StepSchedule:        field("StepSchedule"),
			FreeMinutes:         field("FreeMinutes"),
		})
	}

	if len(records) == 0 {
		return nil, errors.New(errors.TypeMalformedTariffData, "dataset has no data rows")
	}
	return records, nil
}

// headerIndex maps required column names to their position
func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range columns {
		if _, ok := index[name]; !ok {
			return nil, errors.Newf(errors.TypeMalformedTariffData,
				"dataset is missing column %q", name)
		}
	}
	return index, nil
}
