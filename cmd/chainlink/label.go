package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var labelCmd = &cobra.Command{
	Use:     "label <id> <label>",
	GroupID: "issues",
	Short:   "Add a label to an issue",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		added, err := store.AddLabel(rootCtx, id, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"issue_id": id, "label": args[1], "added": added})
			return nil
		}
		if added {
			fmt.Printf("%s Added label '%s' to #%d\n", ui.RenderPass(ui.IconPass), args[1], id)
		} else {
			fmt.Printf("Issue #%d already has label '%s'\n", id, args[1])
		}
		return nil
	},
}

var unlabelCmd = &cobra.Command{
	Use:     "unlabel <id> <label>",
	GroupID: "issues",
	Short:   "Remove a label from an issue",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		removed, err := store.RemoveLabel(rootCtx, id, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"issue_id": id, "label": args[1], "removed": removed})
			return nil
		}
		if removed {
			fmt.Printf("%s Removed label '%s' from #%d\n", ui.RenderPass(ui.IconPass), args[1], id)
		} else {
			fmt.Printf("Label '%s' not found on #%d\n", args[1], id)
		}
		return nil
	},
}

var commentCmd = &cobra.Command{
	Use:     "comment <id> <text>",
	GroupID: "issues",
	Short:   "Add a comment to an issue",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		commentID, err := store.AddComment(rootCtx, id, args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"id": commentID, "issue_id": id})
			return nil
		}
		fmt.Printf("%s Added comment to #%d\n", ui.RenderPass(ui.IconPass), id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(labelCmd, unlabelCmd, commentCmd)
}
