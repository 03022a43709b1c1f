// Package main is the entry point for the parkcalc CLI.
package main

import (
	"os"

	"github.com/ttttvvvv/ParkingCalculator/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
