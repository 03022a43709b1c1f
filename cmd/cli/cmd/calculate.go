// Package cmd - calculate command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
)

var (
	calcZone   string
	calcFrom   string
	calcTo     string
	calcFormat string
)

// timeLayouts accepted by --from and --to
var timeLayouts = []string{
	"2006-01-02 15:04",
	time.RFC3339,
}

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate",
	Short: "Calculate the parking cost for a zone and interval",
	Long: `Calculate the itemized parking cost for one parking session.

Times are interpreted in the configured tariff timezone unless an
explicit offset is given.

Examples:
  parkcalc calculate --zone 14_TAR01 --from "2024-01-15 10:00" --to "2024-01-15 12:30"
  parkcalc calculate --zone 14_TAR01 --from 2024-01-15T10:00:00+01:00 --to 2024-01-15T12:30:00+01:00 --format json`,
	RunE: runCalculate,
}

func init() {
	calculateCmd.Flags().StringVarP(&calcZone, "zone", "z", "", "parking zone id (required)")
	calculateCmd.Flags().StringVar(&calcFrom, "from", "", "session start time (required)")
	calculateCmd.Flags().StringVar(&calcTo, "to", "", "session end time (required)")
	calculateCmd.Flags().StringVarP(&calcFormat, "format", "f", "cli", "output format (cli, json)")
	calculateCmd.MarkFlagRequired("zone")
	calculateCmd.MarkFlagRequired("from")
	calculateCmd.MarkFlagRequired("to")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	reg, loc, err := loadDataset(ctx)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}

	start, err := parseTime(calcFrom, loc)
	if err != nil {
		return fmt.Errorf("parsing --from: %w", err)
	}
	end, err := parseTime(calcTo, loc)
	if err != nil {
		return fmt.Errorf("parsing --to: %w", err)
	}

	result, err := newEngine(reg, loc).Calculate(ctx, types.CalculationRequest{
		ZoneID: types.ZoneID(calcZone),
		Start:  start,
		End:    end,
	})
	if err != nil {
		return err
	}

	if calcFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printResult(result, loc)
	return nil
}

func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

func printResult(result *types.CalculationResult, loc *time.Location) {
	fmt.Println("┌──────────────────────────────────────────────────────────────────┐")
	fmt.Printf("│ PARKING COST %-51s │\n", result.ZoneID)
	fmt.Println("├──────────────────────────────────────────────────────────────────┤")

	for _, item := range result.LineItems {
		label := fmt.Sprintf("%s  %s - %s  (%d min)",
			item.PartID,
			item.Start.In(loc).Format("Mon 15:04"),
			item.End.In(loc).Format("Mon 15:04"),
			item.MinutesCharged)
		fmt.Printf("│ %-52s %11s │\n", truncate(label, 52), item.Amount.StringFixed(2))
	}

	fmt.Println("├──────────────────────────────────────────────────────────────────┤")
	fmt.Printf("│ %-52s %11s │\n", "TOTAL "+string(result.Currency), result.Total.StringFixed(2))
	fmt.Printf("│ %-52s %11s │\n", "of which VAT", result.VATAmount.StringFixed(2))
	fmt.Println("└──────────────────────────────────────────────────────────────────┘")

	if result.CappedByDailyMax {
		fmt.Println("\nA daily maximum capped part of this session.")
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
