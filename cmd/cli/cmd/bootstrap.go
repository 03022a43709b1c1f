// Package cmd - shared wiring between commands
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ttttvvvv/ParkingCalculator/adapters/geocode"
	"github.com/ttttvvvv/ParkingCalculator/core/engine"
	"github.com/ttttvvvv/ParkingCalculator/core/registry"
	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/db/ingestion"
	"github.com/ttttvvvv/ParkingCalculator/internal/config"
)

// Version is the release version of the parkcalc binary
const Version = "1.0.0"

// loadDataset loads the configured NPR dataset into a fresh registry
func loadDataset(ctx context.Context) (*registry.Registry, *time.Location, error) {
	cfg := config.Get()
	loc, err := time.LoadLocation(cfg.Dataset.Timezone)
	if err != nil {
		return nil, nil, fmt.Errorf("loading timezone %q: %w", cfg.Dataset.Timezone, err)
	}

	reg := registry.NewRegistry()
	pipe := ingestion.NewPipeline(reg, loc)
	if _, err := pipe.Run(ctx, cfg.Dataset.Path); err != nil {
		return nil, nil, err
	}
	return reg, loc, nil
}

// newEngine builds the calculation engine from the active configuration
func newEngine(reg *registry.Registry, loc *time.Location) *engine.Engine {
	cfg := config.Get()
	return engine.New(reg, engine.Config{
		MaxSpan:  cfg.Calculation.MaxSpan(),
		Location: loc,
		Currency: types.Currency(cfg.Calculation.DefaultCurrency),
	})
}

// newResolver builds the address-to-zone resolver chain: BAG client,
// postcode mapping, optional cache
func newResolver() geocode.Resolver {
	cfg := config.Get()
	client := geocode.NewBAGClient(
		cfg.BAG.BaseURL,
		cfg.BAG.APIKey,
		time.Duration(cfg.BAG.TimeoutSeconds)*time.Second,
	)

	var resolver geocode.Resolver = geocode.NewAddressResolver(client, nil)
	if cfg.Cache.Enabled {
		var rdb *redis.Client
		if cfg.Cache.RedisAddr != "" {
			rdb = redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		}
		resolver = geocode.NewCachedResolver(resolver, rdb, cfg.Cache.TTL())
	}
	return resolver
}
