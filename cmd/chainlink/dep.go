package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var blockCmd = &cobra.Command{
	Use:     "block <id> <blocker-id>",
	GroupID: "deps",
	Short:   "Mark an issue as blocked by another",
	Long: `Record that <blocker-id> must be closed before <id> is ready.

Example:
  chainlink block 4 2    # #4 waits on #2`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		blocked, blocker := ids[0], ids[1]
		added, err := store.AddDependency(rootCtx, blocked, blocker)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"blocked_id": blocked, "blocker_id": blocker, "added": added})
			return nil
		}
		if added {
			fmt.Printf("%s Issue #%d is now blocked by #%d\n", ui.RenderPass(ui.IconPass), blocked, blocker)
		} else {
			fmt.Printf("Issue #%d is already blocked by #%d\n", blocked, blocker)
		}
		return nil
	},
}

var unblockCmd = &cobra.Command{
	Use:     "unblock <id> <blocker-id>",
	GroupID: "deps",
	Short:   "Remove a blocking relationship",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		blocked, blocker := ids[0], ids[1]
		removed, err := store.RemoveDependency(rootCtx, blocked, blocker)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"blocked_id": blocked, "blocker_id": blocker, "removed": removed})
			return nil
		}
		if removed {
			fmt.Printf("%s Issue #%d is no longer blocked by #%d\n", ui.RenderPass(ui.IconPass), blocked, blocker)
		} else {
			fmt.Printf("No dependency found: #%d is not blocked by #%d\n", blocked, blocker)
		}
		return nil
	},
}

var blockedCmd = &cobra.Command{
	Use:     "blocked",
	GroupID: "deps",
	Short:   "List open issues waiting on an open blocker",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := store.GetBlockedIssues(rootCtx)
		if err != nil {
			return err
		}
		if jsonOutput || len(issues) == 0 {
			printIssueList(issues, "No blocked issues.")
			return nil
		}
		for _, issue := range issues {
			blockers, err := store.GetBlockers(rootCtx, issue.ID)
			if err != nil {
				return err
			}
			fmt.Printf("%s %s\n", formatIssueLine(issue), ui.RenderWarn("blocked by "+formatIDs(blockers)))
		}
		return nil
	},
}

var readyCmd = &cobra.Command{
	Use:     "ready",
	GroupID: "deps",
	Short:   "List issues ready to work on (no open blockers)",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		issues, err := store.GetReadyIssues(rootCtx)
		if err != nil {
			return err
		}
		printIssueList(issues, "No issues ready to work on.")
		return nil
	},
}

var relateCmd = &cobra.Command{
	Use:     "relate <id1> <id2>",
	GroupID: "deps",
	Short:   "Link two issues as related (no blocking)",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		added, err := store.AddRelation(rootCtx, ids[0], ids[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"issue_id": ids[0], "related_id": ids[1], "added": added})
			return nil
		}
		if added {
			fmt.Printf("%s Linked #%d and #%d\n", ui.RenderPass(ui.IconPass), ids[0], ids[1])
		} else {
			fmt.Printf("#%d and #%d are already related\n", ids[0], ids[1])
		}
		return nil
	},
}

var unrelateCmd = &cobra.Command{
	Use:     "unrelate <id1> <id2>",
	GroupID: "deps",
	Short:   "Remove a related link between two issues",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		removed, err := store.RemoveRelation(rootCtx, ids[0], ids[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"issue_id": ids[0], "related_id": ids[1], "removed": removed})
			return nil
		}
		if removed {
			fmt.Printf("%s Unlinked #%d and #%d\n", ui.RenderPass(ui.IconPass), ids[0], ids[1])
		} else {
			fmt.Printf("#%d and #%d are not related\n", ids[0], ids[1])
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(blockCmd, unblockCmd, blockedCmd, readyCmd, relateCmd, unrelateCmd)
}
