// Package cmd - zones command
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttttvvvv/ParkingCalculator/core/types"
)

var zonesSearch string

// zonesCmd represents the zones command
var zonesCmd = &cobra.Command{
	Use:   "zones",
	Short: "List the zones of the tariff dataset",
	Long: `List all parking zones in the loaded dataset.

Examples:
  parkcalc zones
  parkcalc zones --search centrum
  parkcalc zones tariff 14_TAR01`,
	RunE: runZones,
}

// zonesTariffCmd prints the full tariff of one zone
var zonesTariffCmd = &cobra.Command{
	Use:   "tariff [zone-id]",
	Short: "Show the tariff structures of a zone",
	Args:  cobra.ExactArgs(1),
	RunE:  runZonesTariff,
}

func init() {
	zonesCmd.Flags().StringVarP(&zonesSearch, "search", "s", "", "filter zones by description")
	zonesCmd.AddCommand(zonesTariffCmd)
}

func runZones(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	reg, _, err := loadDataset(ctx)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	snap, err := reg.Current()
	if err != nil {
		return err
	}

	var zones []*types.Zone
	if zonesSearch != "" {
		zones = snap.SearchZones(zonesSearch)
	} else {
		zones = snap.Zones()
	}

	if len(zones) == 0 {
		fmt.Println("No zones found.")
		return nil
	}
	for _, z := range zones {
		fmt.Printf("%-14s %-40s %s\n", z.ID, z.Description, z.UsageCategory)
	}
	fmt.Printf("\n%d zones\n", len(zones))
	return nil
}

func runZonesTariff(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	zoneID := types.ZoneID(args[0])

	reg, loc, err := loadDataset(ctx)
	if err != nil {
		return fmt.Errorf("loading dataset: %w", err)
	}
	snap, err := reg.Current()
	if err != nil {
		return err
	}
	structures, err := snap.StructuresForZone(zoneID)
	if err != nil {
		return err
	}

	for _, st := range structures {
		validTo := "open"
		if st.ValidTo != nil {
			validTo = st.ValidTo.In(loc).Format("2006-01-02")
		}
		fmt.Printf("Structure %s  valid %s - %s  VAT %s%%\n",
			st.ID, st.ValidFrom.In(loc).Format("2006-01-02"), validTo,
			st.VATPercentage.StringFixed(0))
		if st.DailyMax != nil {
			fmt.Printf("  daily maximum %s\n", st.DailyMax.StringFixed(2))
		}
		for i := range st.Parts {
			p := &st.Parts[i]
			switch p.Kind {
			case types.PricingStepped:
				fmt.Printf("  %-12s %-12s %-12s stepped, %d steps of %d min\n",
					p.ID, p.Weekdays, p.Window, len(p.Steps), p.StepMinutes)
			case types.PricingLinear:
				fmt.Printf("  %-12s %-12s %-12s %s per %d min\n",
					p.ID, p.Weekdays, p.Window, p.UnitAmount.StringFixed(2), p.StepMinutes)
			default:
				fmt.Printf("  %-12s %-12s %-12s %s flat\n",
					p.ID, p.Weekdays, p.Window, p.UnitAmount.StringFixed(2))
			}
			if p.FreeMinutes > 0 {
				fmt.Printf("               first %d minutes free\n", p.FreeMinutes)
			}
		}
		fmt.Println()
	}
	return nil
}
