package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/types"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var sessionCmd = &cobra.Command{
	Use:     "session",
	GroupID: "work",
	Short:   "Session management",
	Long: `A session is a bounded work period. Ending one stores handoff notes that
the next 'session start' prints back.`,
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := rootCtx
		id, err := store.StartSession(ctx)
		if storage.IsConflict(err) {
			return fmt.Errorf("%w; end it with 'chainlink session end'", err)
		}
		if err != nil {
			return err
		}
		logEvent(eventSessionStart, 0, fmt.Sprintf("session %d", id))

		last, err := store.GetLastSession(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"id": id, "previous": last})
			return nil
		}
		fmt.Printf("%s Session #%d started\n", ui.RenderPass(ui.IconPass), id)
		if last != nil && last.HandoffNotes != nil && *last.HandoffNotes != "" {
			fmt.Printf("\n%s\n%s\n", ui.RenderCategory("Handoff from last session"), indentLines(*last.HandoffNotes, "  "))
		}
		return nil
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "end",
	Short: "End the current session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := rootCtx
		current, err := currentSessionOrError()
		if err != nil {
			return err
		}
		notes := optionalString(cmd, "notes")
		ended, err := store.EndSession(ctx, current.ID, notes)
		if err != nil {
			return err
		}
		if !ended {
			return fmt.Errorf("session #%d already ended", current.ID)
		}
		logEvent(eventSessionEnd, 0, fmt.Sprintf("session %d", current.ID))

		if jsonOutput {
			outputJSON(map[string]interface{}{"id": current.ID, "ended": true})
			return nil
		}
		fmt.Printf("%s Session #%d ended after %s\n", ui.RenderPass(ui.IconPass), current.ID,
			ui.FormatDuration(int64(time.Since(current.StartedAt).Seconds())))
		if notes != nil {
			fmt.Println("Handoff notes saved.")
		}
		return nil
	},
}

var sessionStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current session status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := rootCtx
		current, err := store.GetCurrentSession(ctx)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"session": current})
			return nil
		}
		if current == nil {
			fmt.Println("No active session. Start one with 'chainlink session start'.")
			return nil
		}
		fmt.Printf("Session #%d (started %s, %s ago)\n", current.ID, formatTimestamp(current.StartedAt),
			ui.FormatDuration(int64(time.Since(current.StartedAt).Seconds())))
		if current.ActiveIssueID != nil {
			issue, err := store.GetIssue(ctx, *current.ActiveIssueID)
			if err != nil {
				return err
			}
			if issue != nil {
				fmt.Printf("Working on: %s %s\n", ui.RenderID(issue.ID), issue.Title)
			}
		}
		return nil
	},
}

var sessionWorkCmd = &cobra.Command{
	Use:   "work <id>",
	Short: "Set the issue being worked on",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := rootCtx
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		current, err := currentSessionOrError()
		if err != nil {
			return err
		}
		if _, err := store.SetSessionIssue(ctx, current.ID, id); err != nil {
			return err
		}
		logEvent(eventSessionWork, id, fmt.Sprintf("session %d", current.ID))

		if jsonOutput {
			outputJSON(map[string]interface{}{"session_id": current.ID, "issue_id": id})
			return nil
		}
		fmt.Printf("%s Now working on %s\n", ui.RenderPass(ui.IconPass), ui.RenderID(id))
		return nil
	},
}

func currentSessionOrError() (*types.Session, error) {
	current, err := store.GetCurrentSession(rootCtx)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, fmt.Errorf("no active session; start one with 'chainlink session start'")
	}
	return current, nil
}

func init() {
	sessionEndCmd.Flags().StringP("notes", "n", "", "Handoff notes for the next session")
	sessionCmd.AddCommand(sessionStartCmd, sessionEndCmd, sessionStatusCmd, sessionWorkCmd)
	rootCmd.AddCommand(sessionCmd)
}
