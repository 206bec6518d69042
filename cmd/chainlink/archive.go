package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/config"
	"github.com/chainlink-tracker/chainlink/internal/timeparsing"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var archiveCmd = &cobra.Command{
	Use:     "archive <id>",
	GroupID: "issues",
	Short:   "Archive a closed issue",
	Long: `Archived issues drop out of list, tree, ready and blocked. They count toward
milestone and subissue totals but not as closed.

  chainlink archive 12
  chainlink archive older-than 30d
  chainlink archive list
  chainlink unarchive 12`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ok, err := store.ArchiveIssue(rootCtx, id)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"id": id, "archived": ok})
			return nil
		}
		if ok {
			fmt.Printf("%s Archived issue %s\n", ui.RenderPass(ui.IconPass), ui.RenderID(id))
		} else {
			fmt.Printf("Issue #%d is already archived\n", id)
		}
		return nil
	},
}

var unarchiveCmd = &cobra.Command{
	Use:     "unarchive <id>",
	GroupID: "issues",
	Short:   "Return an archived issue to closed",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ok, err := store.UnarchiveIssue(rootCtx, id)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"id": id, "unarchived": ok})
			return nil
		}
		if !ok {
			return fmt.Errorf("issue #%d is not archived", id)
		}
		fmt.Printf("%s Unarchived issue %s (now closed)\n", ui.RenderPass(ui.IconPass), ui.RenderID(id))
		return nil
	},
}

var archiveListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived issues",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := store.ListArchivedIssues(rootCtx)
		if err != nil {
			return err
		}
		printIssueList(issues, "No archived issues.")
		return nil
	},
}

var archiveOlderCmd = &cobra.Command{
	Use:   "older-than [when]",
	Short: "Archive every issue closed before a cutoff",
	Long: `Archive closed issues whose closed_at lies before the cutoff.

The cutoff is a compact duration counted back from now (30d, 2w, 6m), a date
(2025-01-31) or a phrase ("2 weeks ago"). Without it the archive.after
config value is used (default 30d).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		expr := config.GetString("archive.after")
		if len(args) == 1 {
			expr = args[0]
		}
		cutoff, err := resolveCutoff(expr, time.Now())
		if err != nil {
			return err
		}
		n, err := store.ArchiveClosedBefore(rootCtx, cutoff)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"cutoff": cutoff, "archived": n})
			return nil
		}
		if n == 0 {
			fmt.Printf("No issues closed before %s.\n", formatTimestamp(cutoff))
			return nil
		}
		fmt.Printf("%s Archived %d issue(s) closed before %s\n", ui.RenderPass(ui.IconPass), n, formatTimestamp(cutoff))
		return nil
	},
}

func resolveCutoff(expr string, now time.Time) (time.Time, error) {
	if expr == "" {
		return time.Time{}, fmt.Errorf("no cutoff given and archive.after is empty")
	}
	return timeparsing.ParsePast(expr, now)
}

func init() {
	archiveCmd.AddCommand(archiveListCmd, archiveOlderCmd)
	rootCmd.AddCommand(archiveCmd, unarchiveCmd)
}
