package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/noah-isme/defense-scheduler-core/internal/runner"
)

func newStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the strategy names and aliases the factory accepts",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := runner.Names()
			sort.Strings(names)
			aliases := runner.Aliases()

			out := cmd.OutOrStdout()
			for _, name := range names {
				fmt.Fprintln(out, name)
			}

			if len(aliases) > 0 {
				fmt.Fprintln(out, "\naliases:")
				aliasKeys := make([]string, 0, len(aliases))
				for alias := range aliases {
					aliasKeys = append(aliasKeys, alias)
				}
				sort.Strings(aliasKeys)
				for _, alias := range aliasKeys {
					fmt.Fprintf(out, "  %s -> %s\n", alias, aliases[alias])
				}
			}
			return nil
		},
	}
}
