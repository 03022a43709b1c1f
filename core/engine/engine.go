// Package engine provides the parking cost calculation engine.
// The engine is the primary API: HTTP and CLI are thin wrappers.
//
// A calculation walks the requested interval forward in chunks, each
// governed by exactly one tariff part of exactly one tariff structure,
// prices every chunk with a pure pricing function, applies the session
// grace period and per-structure daily maxima, and returns an
// itemized result.
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ttttvvvv/ParkingCalculator/core/pricing"
	"github.com/ttttvvvv/ParkingCalculator/core/registry"
	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
	"github.com/ttttvvvv/ParkingCalculator/internal/logging"
)

// Config configures the calculation engine
type Config struct {
	// MaxSpan rejects pathological intervals outright
	MaxSpan time.Duration

	// Location is the zone-local timezone used for weekday and
	// calendar-day boundaries
	Location *time.Location

	// Currency of all returned amounts
	Currency types.Currency
}

// Engine computes parking costs against the current registry snapshot.
// Calculations are synchronous, pure computations; concurrent requests
// share a snapshot without locking.
type Engine struct {
	registry *registry.Registry
	cfg      Config
}

// New creates an engine bound to a registry
func New(reg *registry.Registry, cfg Config) *Engine {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Currency == "" {
		cfg.Currency = types.CurrencyEUR
	}
	return &Engine{registry: reg, cfg: cfg}
}

// segment is a sub-interval priced against exactly one structure
type segment struct {
	structure *types.TariffStructure
	from, to  time.Time
}

// Calculate computes the itemized parking cost for one zone and interval.
// It fails with INVALID_INTERVAL, UNKNOWN_ZONE or NO_TARIFF_COVERAGE.
func (e *Engine) Calculate(ctx context.Context, req types.CalculationRequest) (*types.CalculationResult, error) {
	if req.End.Before(req.Start) {
		return nil, errors.InvalidInterval("end time must not be before start time")
	}
	if e.cfg.MaxSpan > 0 && req.End.Sub(req.Start) > e.cfg.MaxSpan {
		return nil, errors.Newf(errors.TypeInvalidInterval,
			"interval exceeds maximum span of %s", e.cfg.MaxSpan)
	}

	snap, err := e.registry.Current()
	if err != nil {
		return nil, err
	}

	// The tariff clock runs in the zone's local time at whole-minute
	// resolution.
	start := req.Start.In(e.cfg.Location).Truncate(time.Minute)
	end := req.End.In(e.cfg.Location).Truncate(time.Minute)

	if _, ok := snap.Zone(req.ZoneID); !ok {
		return nil, errors.UnknownZone(string(req.ZoneID))
	}

	result := &types.CalculationResult{
		ZoneID:    req.ZoneID,
		Total:     decimal.Zero,
		VATAmount: decimal.Zero,
		Currency:  e.cfg.Currency,
		LineItems: []types.LineItem{},
	}
	if !end.After(start) {
		return result, nil
	}

	structures, err := snap.FindStructures(req.ZoneID, start, end)
	if err != nil {
		return nil, err
	}
	if len(structures) == 0 {
		return nil, errors.NoTariffCoverage(string(req.ZoneID),
			"no tariff structure valid during the requested interval")
	}

	segments, err := splitByStructure(req.ZoneID, structures, start, end)
	if err != nil {
		return nil, err
	}

	grace := graceBudget{unset: true}
	for _, seg := range segments {
		items, err := e.priceSegment(seg, &grace)
		if err != nil {
			return nil, err
		}

		items, capped := applyDailyCap(items, seg.structure, e.cfg.Location)
		if capped {
			result.CappedByDailyMax = true
		}

		segTotal := decimal.Zero
		for _, it := range items {
			segTotal = segTotal.Add(it.Amount)
		}
		result.Total = result.Total.Add(segTotal)
		result.VATAmount = result.VATAmount.Add(vatPortion(segTotal, seg.structure.VATPercentage))
		result.LineItems = append(result.LineItems, items...)
	}

	logging.Debug("calculated parking cost",
		zap.String("zone_id", string(req.ZoneID)),
		zap.String("total", result.Total.String()),
		zap.Int("line_items", len(result.LineItems)),
		zap.Bool("capped", result.CappedByDailyMax))
	return result, nil
}

// splitByStructure decomposes [start, end) at structure validity
// boundaries so every sub-interval is priced against exactly one
// structure. A sub-interval with no active structure is a coverage gap.
func splitByStructure(zoneID types.ZoneID, structures []*types.TariffStructure, start, end time.Time) ([]segment, error) {
	var segments []segment
	t := start
	for t.Before(end) {
		var active *types.TariffStructure
		for _, st := range structures {
			if st.ActiveAt(t) {
				active = st
				break
			}
		}
		if active == nil {
			// no structure at t: either a gap before the next
			// structure starts, or past the last one
			return nil, errors.NoTariffCoverage(string(zoneID),
				"no tariff structure valid at "+t.Format(time.RFC3339))
		}

		segEnd := end
		if active.ValidTo != nil && active.ValidTo.Before(segEnd) {
			segEnd = *active.ValidTo
		}
		segments = append(segments, segment{structure: active, from: t, to: segEnd})
		t = segEnd
	}
	return segments, nil
}

// graceBudget tracks the session-level grace period. The grace is a
// property of the whole session: it is fixed by the first matched
// part and consumed across consecutive chunks until exhausted.
type graceBudget struct {
	unset     bool
	remaining int
}

func (g *graceBudget) consume(part *types.TariffPart, minutes int) int {
	if g.unset {
		g.remaining = part.FreeMinutes
		g.unset = false
	}
	if g.remaining <= 0 {
		return 0
	}
	used := min(g.remaining, minutes)
	g.remaining -= used
	return used
}

// priceSegment walks one structure's sub-interval in contiguous chunks
func (e *Engine) priceSegment(seg segment, grace *graceBudget) ([]types.LineItem, error) {
	var items []types.LineItem
	t := seg.from
	for t.Before(seg.to) {
		part := matchPart(seg.structure, t)
		if part == nil {
			return nil, errors.NoTariffCoverage(string(seg.structure.ZoneID),
				"no tariff part matches "+t.Format(time.RFC3339)).
				WithContext("structure_id", seg.structure.ID)
		}

		chunkEnd := chunkBoundary(t, part, e.cfg.Location)
		if seg.to.Before(chunkEnd) {
			chunkEnd = seg.to
		}

		minutes := int(chunkEnd.Sub(t) / time.Minute)
		charged := minutes - grace.consume(part, minutes)

		amount := decimal.Zero
		if charged > 0 {
			var err error
			amount, err = pricing.PriceChunk(charged, part)
			if err != nil {
				return nil, err
			}
		}

		items = append(items, types.LineItem{
			PartID:         part.ID,
			StructureID:    seg.structure.ID,
			Start:          t,
			End:            chunkEnd,
			MinutesCharged: charged,
			Amount:         amount,
		})
		t = chunkEnd
	}
	return items, nil
}

// matchPart selects the applicable part with the lowest order,
// falling back to declared position on ties
func matchPart(st *types.TariffStructure, t time.Time) *types.TariffPart {
	var best *types.TariffPart
	for i := range st.Parts {
		p := &st.Parts[i]
		if !p.AppliesAt(t) {
			continue
		}
		if best == nil || p.Order < best.Order {
			best = p
		}
	}
	return best
}

// chunkBoundary returns the earliest of the part's window end and the
// next midnight, so every chunk is governed by one unambiguous rule
func chunkBoundary(t time.Time, part *types.TariffPart, loc *time.Location) time.Time {
	minute := types.MinuteOfDay(t)
	endMinute := part.Window.EndBoundary(minute)
	// The boundary is a wall-clock instant, not an offset from midnight:
	// on DST transition days the two disagree, and window ends must stay
	// at their local times. endMinute == MinutesPerDay normalizes to the
	// next day's midnight.
	return time.Date(t.Year(), t.Month(), t.Day(), int(endMinute/60), int(endMinute%60), 0, 0, loc)
}
