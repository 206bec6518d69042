package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/config"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

// configView is what `chainlink config` reports.
type configView struct {
	ConfigFile    string `json:"config_file,omitempty"`
	DB            string `json:"db"`
	LockTimeout   string `json:"lock_timeout"`
	TemplatesFile string `json:"templates_file,omitempty"`
	ArchiveAfter  string `json:"archive_after"`
	EventsLog     bool   `json:"events_log"`
	// Project is the raw .chainlink/config.yaml, before env overrides.
	Project *config.LocalConfig `json:"project,omitempty"`
}

var configCmd = &cobra.Command{
	Use:         "config",
	GroupID:     "setup",
	Short:       "Show the effective configuration",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noDBAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		view := configView{
			ConfigFile:    config.ConfigFileUsed(),
			LockTimeout:   config.GetDuration("lock-timeout").String(),
			TemplatesFile: config.GetString("templates-file"),
			ArchiveAfter:  config.GetString("archive.after"),
			EventsLog:     config.GetBool("events-log"),
		}
		if p, err := resolveDBPath(); err == nil {
			view.DB = p
		}
		if dir, err := config.FindProjectDir(); err == nil {
			view.Project = config.LoadLocalConfig(dir)
		}

		if jsonOutput {
			outputJSON(view)
			return nil
		}
		configFile := view.ConfigFile
		if configFile == "" {
			configFile = ui.RenderMuted("(none, defaults and environment)")
		}
		db := view.DB
		if db == "" {
			db = ui.RenderMuted("(no project found)")
		}
		fmt.Printf("config file:    %s\n", configFile)
		fmt.Printf("db:             %s\n", db)
		fmt.Printf("lock-timeout:   %s\n", view.LockTimeout)
		fmt.Printf("templates-file: %s\n", view.TemplatesFile)
		fmt.Printf("archive.after:  %s\n", view.ArchiveAfter)
		fmt.Printf("events-log:     %t\n", view.EventsLog)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
