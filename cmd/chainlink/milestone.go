package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/types"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var milestoneCmd = &cobra.Command{
	Use:     "milestone",
	Aliases: []string{"ms"},
	GroupID: "work",
	Short:   "Group issues into milestones and track progress",
}

var milestoneCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a milestone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := store.CreateMilestone(rootCtx, args[0], optionalString(cmd, "description"))
		if err != nil {
			return err
		}
		if jsonOutput {
			m, err := store.GetMilestone(rootCtx, id)
			if err != nil {
				return err
			}
			outputJSON(m)
			return nil
		}
		fmt.Printf("%s Created milestone #%d: %s\n", ui.RenderPass(ui.IconPass), id, args[0])
		return nil
	},
}

// milestoneSummary is the --json shape of milestone list.
type milestoneSummary struct {
	*types.Milestone
	Progress *types.Progress `json:"progress"`
}

var milestoneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List milestones",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		status = strings.ToLower(status)
		if status != "" && status != types.StatusAll &&
			status != string(types.MilestoneOpen) && status != string(types.MilestoneClosed) {
			return fmt.Errorf("invalid status %q (want open, closed or all)", status)
		}

		milestones, err := store.ListMilestones(rootCtx, status)
		if err != nil {
			return err
		}
		summaries := make([]milestoneSummary, 0, len(milestones))
		for _, m := range milestones {
			p, err := store.GetMilestoneProgress(rootCtx, m.ID)
			if err != nil {
				return err
			}
			summaries = append(summaries, milestoneSummary{Milestone: m, Progress: p})
		}

		if jsonOutput {
			outputJSON(summaries)
			return nil
		}
		if len(summaries) == 0 {
			fmt.Println("No milestones found.")
			return nil
		}
		for _, s := range summaries {
			marker := "[ ]"
			if s.Status == types.MilestoneClosed {
				marker = ui.RenderPass("[x]")
			}
			fmt.Printf("#%-3d %s %s (%s)\n", s.ID, marker, s.Name, ui.RenderProgress(*s.Progress))
		}
		return nil
	},
}

var milestoneShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a milestone with its issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := rootCtx
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		m, err := store.GetMilestone(ctx, id)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("milestone #%d not found", id)
		}
		issues, err := store.GetMilestoneIssues(ctx, id)
		if err != nil {
			return err
		}
		progress, err := store.GetMilestoneProgress(ctx, id)
		if err != nil {
			return err
		}

		if jsonOutput {
			if issues == nil {
				issues = []*types.Issue{}
			}
			outputJSON(map[string]interface{}{"milestone": m, "progress": progress, "issues": issues})
			return nil
		}
		fmt.Printf("Milestone #%d: %s\n", m.ID, m.Name)
		fmt.Printf("Status: %s\n", m.Status)
		fmt.Printf("Created: %s\n", formatTimestamp(m.CreatedAt))
		if m.ClosedAt != nil {
			fmt.Printf("Closed: %s\n", formatTimestamp(*m.ClosedAt))
		}
		if m.Description != nil && *m.Description != "" {
			fmt.Printf("\n%s\n%s\n", ui.RenderCategory("Description"), indentLines(*m.Description, "  "))
		}
		fmt.Printf("\nProgress: %s issues closed\n", ui.RenderProgress(*progress))
		if len(issues) > 0 {
			fmt.Printf("\n%s\n", ui.RenderCategory("Issues"))
			for _, issue := range issues {
				fmt.Printf("  %s %s %s\n", treeMarker(issue.Status), ui.RenderID(issue.ID), issue.Title)
			}
		}
		return nil
	},
}

var milestoneAddCmd = &cobra.Command{
	Use:   "add <milestone-id> <issue-id>...",
	Short: "Add issues to a milestone",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		milestoneID := ids[0]
		added := []int64{}
		for _, issueID := range ids[1:] {
			ok, err := store.AddIssueToMilestone(rootCtx, milestoneID, issueID)
			if err != nil {
				return err
			}
			if ok {
				added = append(added, issueID)
			}
			if !jsonOutput {
				if ok {
					fmt.Printf("%s Added #%d to milestone #%d\n", ui.RenderPass(ui.IconPass), issueID, milestoneID)
				} else {
					fmt.Printf("Issue #%d already in milestone #%d\n", issueID, milestoneID)
				}
			}
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"milestone_id": milestoneID, "added": added})
		}
		return nil
	},
}

var milestoneRemoveCmd = &cobra.Command{
	Use:   "remove <milestone-id> <issue-id>",
	Short: "Remove an issue from a milestone",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		removed, err := store.RemoveIssueFromMilestone(rootCtx, ids[0], ids[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"milestone_id": ids[0], "issue_id": ids[1], "removed": removed})
			return nil
		}
		if removed {
			fmt.Printf("%s Removed #%d from milestone #%d\n", ui.RenderPass(ui.IconPass), ids[1], ids[0])
		} else {
			fmt.Printf("Issue #%d not in milestone #%d\n", ids[1], ids[0])
		}
		return nil
	},
}

var milestoneCloseCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a milestone",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMilestoneChange(args[0], store.CloseMilestone, "Closed", "not found or already closed")
	},
}

var milestoneDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a milestone (its issues are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMilestoneChange(args[0], store.DeleteMilestone, "Deleted", "not found")
	},
}

func runMilestoneChange(arg string, apply func(ctx context.Context, id int64) (bool, error), done, noop string) error {
	id, err := parseID(arg)
	if err != nil {
		return err
	}
	ok, err := apply(rootCtx, id)
	if err != nil {
		return err
	}
	if jsonOutput {
		outputJSON(map[string]interface{}{"id": id, "changed": ok})
		return nil
	}
	if !ok {
		fmt.Printf("Milestone #%d %s\n", id, noop)
		return nil
	}
	fmt.Printf("%s %s milestone #%d\n", ui.RenderPass(ui.IconPass), done, id)
	return nil
}

func init() {
	milestoneCreateCmd.Flags().StringP("description", "d", "", "Milestone description")
	milestoneListCmd.Flags().StringP("status", "s", "", "Filter by status (open, closed, all)")
	milestoneCmd.AddCommand(milestoneCreateCmd, milestoneListCmd, milestoneShowCmd,
		milestoneAddCmd, milestoneRemoveCmd, milestoneCloseCmd, milestoneDeleteCmd)
	rootCmd.AddCommand(milestoneCmd)
}
