// Package ingestion - Load pipeline
// A load parses and validates the whole dataset off to the side and
// publishes the resulting snapshot in one atomic swap. Any failure
// leaves the prior snapshot serving.
package ingestion

import (
	"context"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/ttttvvvv/ParkingCalculator/core/registry"
	"github.com/ttttvvvv/ParkingCalculator/internal/errors"
	"github.com/ttttvvvv/ParkingCalculator/internal/logging"
)

// Pipeline loads tariff datasets into a registry
type Pipeline struct {
	registry *registry.Registry
	loc      *time.Location
}

// NewPipeline creates a pipeline publishing into the given registry
func NewPipeline(reg *registry.Registry, loc *time.Location) *Pipeline {
	if loc == nil {
		loc = time.UTC
	}
	return &Pipeline{registry: reg, loc: loc}
}

// Run loads the dataset file and publishes the snapshot
func (p *Pipeline) Run(ctx context.Context, path string) (*registry.Snapshot, error) {
	start := time.Now()

	snap, err := p.build(ctx, path)
	if err != nil {
		logging.Error("dataset load failed; prior snapshot remains active",
			zap.String("path", path), zap.Error(err))
		return nil, err
	}

	p.registry.Publish(snap)
	logging.Info("dataset loaded",
		zap.String("path", path),
		zap.Int("zones", snap.ZoneCount()),
		zap.Int("structures", snap.StructureCount()),
		zap.Int("parts", snap.PartCount()),
		zap.Duration("took", time.Since(start)))
	return snap, nil
}

// Validate parses and validates the dataset without publishing
func (p *Pipeline) Validate(ctx context.Context, path string) (*registry.Snapshot, error) {
	return p.build(ctx, path)
}

func (p *Pipeline) build(ctx context.Context, path string) (*registry.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.MalformedTariffData("opening dataset", err)
	}
	defer f.Close()

	return p.buildFromReader(f, path)
}

func (p *Pipeline) buildFromReader(r io.Reader, source string) (*registry.Snapshot, error) {
	records, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}

	normalized, err := Normalize(records, p.loc)
	if err != nil {
		return nil, err
	}

	builder := registry.NewSnapshotBuilder(source)
	for _, z := range normalized.Zones {
		builder.AddZone(z)
	}
	for _, st := range normalized.Structures {
		builder.AddStructure(st)
	}
	return builder.Build()
}
