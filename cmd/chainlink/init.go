package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/config"
	"github.com/chainlink-tracker/chainlink/internal/storage/sqlite"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var initCmd = &cobra.Command{
	Use:         "init",
	GroupID:     "setup",
	Short:       "Initialize chainlink in the current directory",
	Long:        `Create .chainlink/ in the current directory with an empty, fully migrated database.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noDBAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := dbPath
		if path == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			path = filepath.Join(cwd, config.DirName, config.DBFileName)
		}

		existed := true
		if _, err := os.Stat(path); os.IsNotExist(err) {
			existed = false
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
		}

		// Opening migrates; an existing database is brought up to date.
		s, err := sqlite.New(rootCtx, path)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		if err := s.Close(); err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(map[string]interface{}{"path": path, "created": !existed})
			return nil
		}
		if existed {
			fmt.Printf("%s Already initialized at %s\n", ui.RenderWarn(ui.IconWarn), path)
			return nil
		}
		fmt.Printf("%s Initialized chainlink at %s\n", ui.RenderPass(ui.IconPass), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
