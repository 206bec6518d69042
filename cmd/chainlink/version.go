package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/storage/sqlite"
)

var (
	// Version is the current version of chainlink (overridden by ldflags at build time)
	Version = "0.4.0"
	// Build can be set via ldflags at compile time
	Build = "dev"
)

var versionCmd = &cobra.Command{
	Use:         "version",
	GroupID:     "setup",
	Short:       "Print version information",
	Annotations: map[string]string{noDBAnnotation: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			outputJSON(map[string]interface{}{
				"version":        Version,
				"build":          Build,
				"schema_version": sqlite.CurrentSchemaVersion,
			})
			return
		}
		fmt.Printf("chainlink version %s (%s), schema %d\n", Version, Build, sqlite.CurrentSchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
