// Package api - conversion between engine results and response types
package api

import (
	"time"

	"github.com/ttttvvvv/ParkingCalculator/adapters/geocode"
	"github.com/ttttvvvv/ParkingCalculator/core/types"
)

func toCalculateResponse(result *types.CalculationResult, addr *geocode.Address, start, end time.Time) *CalculateResponse {
	items := make([]LineItemResponse, 0, len(result.LineItems))
	for _, it := range result.LineItems {
		items = append(items, LineItemResponse{
			PartID:         it.PartID,
			StructureID:    it.StructureID,
			Start:          it.Start,
			End:            it.End,
			MinutesCharged: it.MinutesCharged,
			Amount:         it.Amount.StringFixed(2),
		})
	}
	return &CalculateResponse{
		ZoneID:   string(result.ZoneID),
		Address:  addr,
		Start:    start,
		End:      end,
		Total:    result.Total.StringFixed(2),
		VAT:      result.VATAmount.StringFixed(2),
		Currency: string(result.Currency),
		Capped:   result.CappedByDailyMax,
		Items:    items,
	}
}

func toZoneList(zones []*types.Zone) *ZoneListResponse {
	out := make([]ZoneResponse, 0, len(zones))
	for _, z := range zones {
		out = append(out, ZoneResponse{
			ID:            string(z.ID),
			Description:   z.Description,
			UsageCategory: z.UsageCategory,
			ValidFrom:     z.ValidFrom,
			ValidTo:       z.ValidTo,
		})
	}
	return &ZoneListResponse{Zones: out, Count: len(out)}
}

func toTariffResponse(zoneID types.ZoneID, structures []*types.TariffStructure) *TariffResponse {
	out := make([]TariffStructureResponse, 0, len(structures))
	for _, st := range structures {
		parts := make([]TariffPartResponse, 0, len(st.Parts))
		for i := range st.Parts {
			p := &st.Parts[i]
			pr := TariffPartResponse{
				ID:          p.ID,
				Order:       p.Order,
				Weekdays:    p.Weekdays.String(),
				Window:      p.Window.String(),
				Kind:        p.Kind.String(),
				StepMinutes: p.StepMinutes,
				FreeMinutes: p.FreeMinutes,
			}
			if p.Kind == types.PricingStepped {
				pr.Steps = make([]string, 0, len(p.Steps))
				for _, s := range p.Steps {
					pr.Steps = append(pr.Steps, s.StringFixed(2))
				}
			} else {
				pr.UnitAmount = p.UnitAmount.StringFixed(2)
			}
			parts = append(parts, pr)
		}

		sr := TariffStructureResponse{
			ID:            st.ID,
			ValidFrom:     st.ValidFrom,
			ValidTo:       st.ValidTo,
			VATPercentage: st.VATPercentage.StringFixed(2),
			Parts:         parts,
		}
		if st.DailyMax != nil {
			sr.DailyMax = st.DailyMax.StringFixed(2)
		}
		out = append(out, sr)
	}
	return &TariffResponse{ZoneID: string(zoneID), Structures: out}
}
