package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/config"
	"github.com/chainlink-tracker/chainlink/internal/debug"
	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/storage/sqlite"
	"github.com/chainlink-tracker/chainlink/internal/telemetry"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var (
	dbPath      string
	jsonOutput  bool
	noColor     bool
	verboseFlag bool
	quietFlag   bool

	store storage.Storage

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// noDBAnnotation marks commands that run without opening the store.
const noDBAnnotation = "chainlink/no-db"

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default: auto-discover .chainlink/issues.db)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.AddGroup(&cobra.Group{ID: "issues", Title: "Working With Issues:"})
	rootCmd.AddGroup(&cobra.Group{ID: "deps", Title: "Dependencies & Structure:"})
	rootCmd.AddGroup(&cobra.Group{ID: "work", Title: "Time, Sessions & Planning:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Configuration:"})
}

var rootCmd = &cobra.Command{
	Use:           "chainlink",
	Short:         "chainlink - local issue tracker with dependencies, timers and sessions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupSignalContext()
		applyVerbosityFlags(cmd)

		if err := telemetry.Init(rootCtx, "chainlink", Version); err != nil {
			debug.Logf("telemetry init failed: %v\n", err)
		}

		if cmd.Annotations[noDBAnnotation] == "true" {
			return nil
		}
		return openStore(rootCtx)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeStore()
	},
}

func setupSignalContext() {
	rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// applyVerbosityFlags merges flags over config and pushes the result into
// the debug and ui packages.
func applyVerbosityFlags(cmd *cobra.Command) {
	if !cmd.Flags().Changed("json") {
		jsonOutput = config.GetBool("json")
	}
	if !cmd.Flags().Changed("no-color") {
		noColor = config.GetBool("no-color")
	}
	debug.SetVerbose(verboseFlag)
	debug.SetQuiet(quietFlag)
	ui.Setup(noColor || jsonOutput)
}

func resolveDBPath() (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	return config.DBPath()
}

func openStore(ctx context.Context) error {
	path, err := resolveDBPath()
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("no database at %s; run 'chainlink init' first", path)
	}

	opts := sqlite.Options{LockTimeout: config.GetDuration("lock-timeout")}
	s, err := sqlite.NewWithOptions(ctx, path, opts)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	debug.Logf("opened store at %s\n", path)
	store = telemetry.WrapStorage(s)
	return nil
}

func closeStore() {
	if store != nil {
		if err := store.Close(); err != nil {
			WarnError("failed to close database: %v", err)
		}
		store = nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	telemetry.Shutdown(shutdownCtx)
	if rootCancel != nil {
		rootCancel()
	}
}

// logEvent appends to events.log next to the database when events-log is on.
func logEvent(code string, issueID int64, details string) {
	if !config.GetBool("events-log") || store == nil {
		return
	}
	debug.LogEvent(filepath.Dir(store.Path()), code, issueID, details)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// PersistentPostRun is skipped when RunE fails.
		closeStore()
		if jsonOutput {
			outputJSONError(err, errorCode(err))
		}
		FatalError("%v", err)
	}
}
