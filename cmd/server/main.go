// Package main - standalone entry point for the parking calculation server
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ttttvvvv/ParkingCalculator/api"
	"github.com/ttttvvvv/ParkingCalculator/core/engine"
	"github.com/ttttvvvv/ParkingCalculator/core/registry"
	"github.com/ttttvvvv/ParkingCalculator/core/types"
	"github.com/ttttvvvv/ParkingCalculator/db/ingestion"
	"github.com/ttttvvvv/ParkingCalculator/internal/config"
)

const version = "1.0.0"

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	dataset := flag.String("dataset", "", "Dataset CSV path (overrides config)")
	cfgPath := flag.String("config", "", "Config file path")
	flag.Parse()

	cfg := config.Get()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("loading config: %v", err)
		}
		config.Set(loaded)
		cfg = loaded
	}
	if *dataset != "" {
		cfg.Dataset.Path = *dataset
	}

	loc, err := time.LoadLocation(cfg.Dataset.Timezone)
	if err != nil {
		log.Fatalf("loading timezone: %v", err)
	}

	reg := registry.NewRegistry()
	pipe := ingestion.NewPipeline(reg, loc)
	if _, err := pipe.Run(context.Background(), cfg.Dataset.Path); err != nil {
		log.Fatalf("loading dataset: %v", err)
	}

	eng := engine.New(reg, engine.Config{
		MaxSpan:  cfg.Calculation.MaxSpan(),
		Location: loc,
		Currency: types.Currency(cfg.Calculation.DefaultCurrency),
	})
	apiServer := api.NewServer(eng, reg, nil, version)

	fmt.Printf("Parking calculation server v%s\n", version)
	fmt.Printf("   API: http://localhost%s\n", *addr)

	if err := http.ListenAndServe(*addr, apiServer); err != nil {
		log.Fatal(err)
	}
}
