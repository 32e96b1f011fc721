package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// calendar time zones resolve even on hosts without a zoneinfo database
	_ "time/tzdata"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "planner",
	Short: "Social post planner: calendar layout, rescheduling and submission",
	Long: `planner serves the calendar API over HTTP and gRPC.

Configuration comes from .env, the environment and an optional YAML file
(--config or PLANNER_CONFIG).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			return os.Setenv("PLANNER_CONFIG", configPath)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config overlay")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
