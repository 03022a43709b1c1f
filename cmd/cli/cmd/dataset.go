// Package cmd - dataset command
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ttttvvvv/ParkingCalculator/core/registry"
	"github.com/ttttvvvv/ParkingCalculator/db/ingestion"
	"github.com/ttttvvvv/ParkingCalculator/internal/config"
)

// datasetCmd represents the dataset command
var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect and validate the tariff dataset",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// datasetValidateCmd validates a dataset file without serving it
var datasetValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Validate an NPR dataset file",
	Long: `Parse and validate a dataset file the same way the server does on
startup. The dataset is not published anywhere; the command only
reports whether it would load.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDatasetValidate,
}

func init() {
	datasetCmd.AddCommand(datasetValidateCmd)
}

func runDatasetValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	path := cfg.Dataset.Path
	if len(args) > 0 {
		path = args[0]
	}

	loc, err := time.LoadLocation(cfg.Dataset.Timezone)
	if err != nil {
		return fmt.Errorf("loading timezone %q: %w", cfg.Dataset.Timezone, err)
	}

	pipe := ingestion.NewPipeline(registry.NewRegistry(), loc)
	snap, err := pipe.Validate(ctx, path)
	if err != nil {
		return fmt.Errorf("dataset is invalid: %w", err)
	}

	fmt.Printf("Dataset %s is valid.\n", path)
	fmt.Printf("  zones:      %d\n", snap.ZoneCount())
	fmt.Printf("  structures: %d\n", snap.StructureCount())
	fmt.Printf("  parts:      %d\n", snap.PartCount())
	fmt.Printf("  hash:       %s\n", snap.ContentHash[:12])
	return nil
}
