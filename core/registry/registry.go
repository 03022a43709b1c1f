// Package registry - Atomic snapshot registry
// The registry holds the current snapshot behind an atomic pointer.
// A refresh builds a new snapshot off to the side and publishes it in
// one swap; in-flight calculations keep the snapshot they started with.
package registry

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
	"github.com/ttttvvvv/ParkingCalculator/internal/logging"
)

// Registry is the single-writer, many-readers snapshot holder
type Registry struct {
	current atomic.Pointer[Snapshot]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{}
}

// Publish atomically replaces the current snapshot
func (r *Registry) Publish(snap *Snapshot) {
	prev := r.current.Swap(snap)
	fields := []zap.Field{
		zap.String("snapshot_id", string(snap.ID)),
		zap.String("content_hash", snap.ContentHash[:12]),
		zap.Int("zones", snap.ZoneCount()),
		zap.Int("structures", snap.StructureCount()),
		zap.Int("parts", snap.PartCount()),
	}
	if prev != nil {
		fields = append(fields, zap.String("replaced", string(prev.ID)))
	}
	logging.Info("published registry snapshot", fields...)
}

// Current returns the active snapshot, or an error when no dataset
// has been loaded yet
func (r *Registry) Current() (*Snapshot, error) {
	snap := r.current.Load()
	if snap == nil {
		return nil, errors.New(errors.TypeInternal, "no tariff dataset loaded")
	}
	return snap, nil
}

// Loaded reports whether a snapshot has been published
func (r *Registry) Loaded() bool {
	return r.current.Load() != nil
}
