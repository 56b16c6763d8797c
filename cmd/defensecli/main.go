// Command defensecli is the one human-facing surface the scheduling core
// ships: a thin Cobra CLI over the pure library, never where domain logic
// lives. It executes a single run of the core and prints the Result JSON,
// or lists the strategies the factory knows how to construct.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "defensecli",
	Short: "Operator CLI for the project-jury-classroom-timeslot scheduling core",
	Long: `defensecli drives the scheduling core's optimization engine directly,
without a server in front of it: point it at an input bundle and a
strategy name and it prints the run result as JSON.`,
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newStrategiesCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
