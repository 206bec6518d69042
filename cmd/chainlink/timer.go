package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/storage"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

// Event codes written to events.log.
const (
	eventTimerStart   = "TIMER_START"
	eventTimerStop    = "TIMER_STOP"
	eventSessionStart = "SESSION_START"
	eventSessionEnd   = "SESSION_END"
	eventSessionWork  = "SESSION_WORK"
)

var startCmd = &cobra.Command{
	Use:     "start <id>",
	GroupID: "work",
	Short:   "Start the timer on an issue",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := store.StartTimer(rootCtx, id); err != nil {
			var conflict *storage.TimerConflictError
			if errors.As(err, &conflict) && !conflict.SameIssue {
				return fmt.Errorf("%w ('chainlink stop')", err)
			}
			return err
		}
		logEvent(eventTimerStart, id, "")

		if jsonOutput {
			state, err := store.GetTimerState(rootCtx)
			if err != nil {
				return err
			}
			outputJSON(state)
			return nil
		}
		fmt.Printf("%s Started timer for %s\n", ui.RenderPass(ui.IconPass), ui.RenderID(id))
		fmt.Println(ui.RenderMuted("Run 'chainlink stop' when done."))
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:     "stop",
	GroupID: "work",
	Short:   "Stop the running timer",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := store.StopTimer(rootCtx)
		if errors.Is(err, storage.ErrNoActiveTimer) {
			return fmt.Errorf("no timer running; start one with 'chainlink start <id>'")
		}
		if err != nil {
			return err
		}
		logEvent(eventTimerStop, res.IssueID, fmt.Sprintf("%ds", res.ElapsedSeconds))

		if jsonOutput {
			outputJSON(res)
			return nil
		}
		fmt.Printf("%s Stopped timer for %s\n", ui.RenderPass(ui.IconPass), ui.RenderID(res.IssueID))
		fmt.Printf("Time spent: %s\n", ui.FormatDuration(res.ElapsedSeconds))
		fmt.Printf("Total time on this issue: %s\n", ui.FormatDuration(res.TotalSeconds))
		return nil
	},
}

var timerCmd = &cobra.Command{
	Use:     "timer",
	GroupID: "work",
	Short:   "Show the running timer",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		state, err := store.GetTimerState(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(state)
			return nil
		}
		if !state.Running {
			fmt.Println("No timer running.")
			return nil
		}
		title := "(deleted)"
		if issue, err := store.GetIssue(rootCtx, state.IssueID); err == nil && issue != nil {
			title = issue.Title
		}
		fmt.Printf("Timer running: %s %s\n", ui.RenderID(state.IssueID), title)
		fmt.Printf("Elapsed: %s\n", ui.FormatDuration(state.ElapsedSeconds))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(startCmd, stopCmd, timerCmd)
}
