// Package registry provides immutable zone/tariff snapshots with content hashing.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
)

// SnapshotID uniquely identifies a registry snapshot
type SnapshotID string

// Snapshot is IMMUTABLE after Build. It represents a point-in-time
// capture of the zone registry and all tariff structures. Concurrent
// calculations share a snapshot without locking.
type Snapshot struct {
	// Identity
	ID          SnapshotID
	ContentHash string // SHA-256 over all zones and structures
	CreatedAt   time.Time

	// Source describes where the dataset came from (file path, URL)
	Source string

	zones      map[types.ZoneID]*types.Zone
	structures map[types.ZoneID][]*types.TariffStructure

	zoneCount      int
	structureCount int
	partCount      int

	sealed bool
}

// ZoneCount returns the number of zones in the snapshot
func (s *Snapshot) ZoneCount() int { return s.zoneCount }

// StructureCount returns the number of tariff structures in the snapshot
func (s *Snapshot) StructureCount() int { return s.structureCount }

// PartCount returns the number of tariff parts in the snapshot
func (s *Snapshot) PartCount() int { return s.partCount }

// Zone returns the zone with the given id
func (s *Snapshot) Zone(id types.ZoneID) (*types.Zone, bool) {
	z, ok := s.zones[id]
	return z, ok
}

// Zones returns all zones sorted by id
func (s *Snapshot) Zones() []*types.Zone {
	out := make([]*types.Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// SearchZones returns zones whose id or description contains the term,
// case-insensitively, sorted by id
func (s *Snapshot) SearchZones(term string) []*types.Zone {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []*types.Zone
	for _, z := range s.zones {
		if strings.Contains(strings.ToLower(string(z.ID)), term) ||
			strings.Contains(strings.ToLower(z.Description), term) {
			out = append(out, z)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// FindStructures returns the structures of the zone whose validity
// covers any portion of [start, end), sorted by ValidFrom. An unknown
// zone is an error; a known zone with no valid structure returns an
// empty slice, which callers must treat as a coverage question, not a
// crash.
func (s *Snapshot) FindStructures(zoneID types.ZoneID, start, end time.Time) ([]*types.TariffStructure, error) {
	if _, ok := s.zones[zoneID]; !ok {
		return nil, errors.UnknownZone(string(zoneID))
	}
	var out []*types.TariffStructure
	for _, st := range s.structures[zoneID] {
		if st.Overlaps(start, end) {
			out = append(out, st)
		}
	}
	return out, nil
}

// StructuresForZone returns all structures of a zone sorted by
// ValidFrom, for introspection endpoints
func (s *Snapshot) StructuresForZone(zoneID types.ZoneID) ([]*types.TariffStructure, error) {
	if _, ok := s.zones[zoneID]; !ok {
		return nil, errors.UnknownZone(string(zoneID))
	}
	return s.structures[zoneID], nil
}

// SnapshotBuilder accumulates zones and structures, validates them,
// and produces a sealed snapshot. A builder is single-use.
type SnapshotBuilder struct {
	source     string
	zones      []*types.Zone
	structures []*types.TariffStructure
}

// NewSnapshotBuilder creates a new builder
func NewSnapshotBuilder(source string) *SnapshotBuilder {
	return &SnapshotBuilder{source: source}
}

// AddZone adds a zone to the snapshot
func (b *SnapshotBuilder) AddZone(z *types.Zone) *SnapshotBuilder {
	b.zones = append(b.zones, z)
	return b
}

// AddStructure adds a tariff structure to the snapshot
func (b *SnapshotBuilder) AddStructure(st *types.TariffStructure) *SnapshotBuilder {
	b.structures = append(b.structures, st)
	return b
}

// Build validates all entities and seals the snapshot. Any validation
// failure aborts the build with MALFORMED_TARIFF_DATA so a prior
// snapshot keeps serving.
func (b *SnapshotBuilder) Build() (*Snapshot, error) {
	snap := &Snapshot{
		ID:         SnapshotID(uuid.New().String()),
		CreatedAt:  time.Now().UTC(),
		Source:     b.source,
		zones:      make(map[types.ZoneID]*types.Zone, len(b.zones)),
		structures: make(map[types.ZoneID][]*types.TariffStructure),
	}

	for _, z := range b.zones {
		if err := validateZone(z); err != nil {
			return nil, err
		}
		if prev, ok := snap.zones[z.ID]; ok {
			if zoneValidityOverlaps(prev, z) {
				return nil, errors.Newf(errors.TypeMalformedTariffData,
					"zone %s has overlapping validity windows", z.ID)
			}
			// keep the currently valid definition, or the latest one
			if z.ValidFrom.After(prev.ValidFrom) {
				snap.zones[z.ID] = z
			}
			continue
		}
		snap.zones[z.ID] = z
	}

	for _, st := range b.structures {
		if err := validateStructure(st); err != nil {
			return nil, err
		}
		if _, ok := snap.zones[st.ZoneID]; !ok {
			return nil, errors.Newf(errors.TypeMalformedTariffData,
				"structure %s references unknown zone %s", st.ID, st.ZoneID)
		}
		snap.structures[st.ZoneID] = append(snap.structures[st.ZoneID], st)
		snap.structureCount++
		snap.partCount += len(st.Parts)
	}
	snap.zoneCount = len(snap.zones)

	for _, list := range snap.structures {
		sort.Slice(list, func(i, j int) bool {
			return list[i].ValidFrom.Before(list[j].ValidFrom)
		})
	}

	snap.ContentHash = b.contentHash()
	snap.sealed = true
	return snap, nil
}

// contentHash hashes a deterministic serialization of all entities
func (b *SnapshotBuilder) contentHash() string {
	entries := make([]string, 0, len(b.zones)+len(b.structures))
	for _, z := range b.zones {
		data, _ := json.Marshal(z)
		entries = append(entries, "zone:"+string(data))
	}
	for _, st := range b.structures {
		data, _ := json.Marshal(st)
		entries = append(entries, "structure:"+string(data))
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, e := range entries {
		h.Write([]byte(e))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func validateZone(z *types.Zone) error {
	if z.ID == "" {
		return errors.New(errors.TypeMalformedTariffData, "zone with empty id")
	}
	if z.ValidTo != nil && !z.ValidTo.After(z.ValidFrom) {
		return errors.Newf(errors.TypeMalformedTariffData,
			"zone %s has empty validity interval", z.ID)
	}
	return nil
}

func zoneValidityOverlaps(a, b *types.Zone) bool {
	aEnds := a.ValidTo
	bEnds := b.ValidTo
	if aEnds == nil && bEnds == nil {
		return true
	}
	if aEnds == nil {
		return bEnds.After(a.ValidFrom)
	}
	if bEnds == nil {
		return aEnds.After(b.ValidFrom)
	}
	return a.ValidFrom.Before(*bEnds) && b.ValidFrom.Before(*aEnds)
}

func validateStructure(st *types.TariffStructure) error {
	if st.ID == "" {
		return errors.Newf(errors.TypeMalformedTariffData,
			"structure for zone %s has empty id", st.ZoneID)
	}
	if st.ValidTo != nil && !st.ValidTo.After(st.ValidFrom) {
		return errors.Newf(errors.TypeMalformedTariffData,
			"structure %s has empty validity interval", st.ID)
	}
	if st.DailyMax != nil && st.DailyMax.IsNegative() {
		return errors.Newf(errors.TypeMalformedTariffData,
			"structure %s has negative daily maximum", st.ID)
	}
	if len(st.Parts) == 0 {
		return errors.Newf(errors.TypeMalformedTariffData,
			"structure %s has no tariff parts", st.ID)
	}

	for i := range st.Parts {
		if err := validatePart(st.ID, &st.Parts[i]); err != nil {
			return err
		}
	}

	// Overlapping (weekday, window) claims need a distinct order to
	// disambiguate first-match-wins. Equal-order overlaps are a data
	// defect and rejected outright.
	for i := range st.Parts {
		for j := i + 1; j < len(st.Parts); j++ {
			a, c := &st.Parts[i], &st.Parts[j]
			if a.Order != c.Order {
				continue
			}
			if a.Weekdays&c.Weekdays == 0 {
				continue
			}
			if windowsOverlap(a.Window, c.Window) && partValidityOverlaps(a, c) {
				return errors.Newf(errors.TypeMalformedTariffData,
					"structure %s: parts %s and %s overlap with equal order %d",
					st.ID, a.ID, c.ID, a.Order)
			}
		}
	}
	return nil
}

func validatePart(structureID string, p *types.TariffPart) error {
	if p.Kind.UsesSteps() && p.StepMinutes <= 0 {
		return errors.Newf(errors.TypeMalformedTariffData,
			"structure %s part %s: %s pricing requires a positive step size",
			structureID, p.ID, p.Kind)
	}
	if p.Kind == types.PricingStepped && len(p.Steps) == 0 {
		return errors.Newf(errors.TypeMalformedTariffData,
			"structure %s part %s: stepped pricing requires a schedule",
			structureID, p.ID)
	}
	if p.Weekdays.IsZero() {
		return errors.Newf(errors.TypeMalformedTariffData,
			"structure %s part %s: empty weekday set", structureID, p.ID)
	}
	if p.FreeMinutes < 0 {
		return errors.Newf(errors.TypeMalformedTariffData,
			"structure %s part %s: negative grace period", structureID, p.ID)
	}
	return nil
}

// windowsOverlap reports whether two time-of-day windows share any minute
func windowsOverlap(a, b types.TimeWindow) bool {
	if a.IsAllDay() || b.IsAllDay() {
		return true
	}
	for _, ra := range windowArms(a) {
		for _, rb := range windowArms(b) {
			if ra[0] < rb[1] && rb[0] < ra[1] {
				return true
			}
		}
	}
	return false
}

// windowArms splits a window into non-wrapping [start, end) minute ranges
func windowArms(w types.TimeWindow) [][2]int {
	if w.Start < w.End {
		return [][2]int{{int(w.Start), int(w.End)}}
	}
	return [][2]int{{int(w.Start), types.MinutesPerDay}, {0, int(w.End)}}
}

func partValidityOverlaps(a, b *types.TariffPart) bool {
	aOpen := a.ValidTo == nil
	bOpen := b.ValidTo == nil
	if !aOpen && !b.ValidFrom.Before(*a.ValidTo) {
		return false
	}
	if !bOpen && !a.ValidFrom.Before(*b.ValidTo) {
		return false
	}
	return true
}
