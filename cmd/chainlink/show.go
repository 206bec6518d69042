package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/types"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

// issueDetails is the --json shape of show.
type issueDetails struct {
	*types.Issue
	Labels           []string         `json:"labels"`
	Comments         []*types.Comment `json:"comments"`
	BlockedBy        []int64          `json:"blocked_by"`
	Blocking         []int64          `json:"blocking"`
	Subissues        []*types.Issue   `json:"subissues"`
	Related          []*types.Issue   `json:"related"`
	TotalTimeSeconds int64            `json:"total_time_seconds"`
}

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "issues",
	Short:   "Show issue details",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := rootCtx
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		issue, err := store.GetIssue(ctx, id)
		if err != nil {
			return err
		}
		if issue == nil {
			return fmt.Errorf("issue #%d not found", id)
		}

		d := issueDetails{Issue: issue}
		if d.Labels, err = store.GetLabels(ctx, id); err != nil {
			return err
		}
		if d.Comments, err = store.GetComments(ctx, id); err != nil {
			return err
		}
		if d.BlockedBy, err = store.GetBlockers(ctx, id); err != nil {
			return err
		}
		if d.Blocking, err = store.GetBlocking(ctx, id); err != nil {
			return err
		}
		if d.Subissues, err = store.GetSubissues(ctx, id); err != nil {
			return err
		}
		if d.Related, err = store.GetRelatedIssues(ctx, id); err != nil {
			return err
		}
		if d.TotalTimeSeconds, err = store.GetTotalTime(ctx, id); err != nil {
			return err
		}

		if jsonOutput {
			outputJSON(d)
			return nil
		}
		full, _ := cmd.Flags().GetBool("full")
		printIssueDetails(&d, full)
		return nil
	},
}

func printIssueDetails(d *issueDetails, full bool) {
	fmt.Printf("Issue %s: %s\n", ui.RenderID(d.ID), d.Title)
	fmt.Printf("Status: %s\n", ui.RenderStatus(d.Status))
	fmt.Printf("Priority: %s\n", ui.RenderPriority(d.Priority))
	if d.ParentID != nil {
		fmt.Printf("Parent: #%d\n", *d.ParentID)
	}
	fmt.Printf("Created: %s\n", formatTimestamp(d.CreatedAt))
	fmt.Printf("Updated: %s\n", formatTimestamp(d.UpdatedAt))
	if d.ClosedAt != nil {
		fmt.Printf("Closed: %s\n", formatTimestamp(*d.ClosedAt))
	}
	if len(d.Labels) > 0 {
		fmt.Printf("Labels: %s\n", strings.Join(d.Labels, ", "))
	}
	if d.TotalTimeSeconds > 0 {
		fmt.Printf("Time spent: %s\n", ui.FormatDuration(d.TotalTimeSeconds))
	}

	if d.Description != nil && *d.Description != "" {
		desc := *d.Description
		if !full {
			desc = ui.TruncateLines(desc, ui.DefaultMaxLines, ui.DefaultContextLines)
		}
		fmt.Printf("\n%s\n%s\n", ui.RenderCategory("Description"), indentLines(ui.WrapText(desc, ui.TerminalWidth()-2), "  "))
	}

	if len(d.Comments) > 0 {
		fmt.Printf("\n%s\n", ui.RenderCategory("Comments"))
		for _, c := range d.Comments {
			content := c.Content
			if !full {
				content = ui.TruncateChars(content, ui.DefaultMaxChars, ui.DefaultContextChars)
			}
			fmt.Printf("  %s %s\n", ui.RenderMuted("["+c.CreatedAt.Local().Format("2006-01-02 15:04")+"]"), content)
		}
	}

	fmt.Println()
	fmt.Printf("Blocked by: %s\n", formatIDs(d.BlockedBy))
	fmt.Printf("Blocking: %s\n", formatIDs(d.Blocking))

	if len(d.Related) > 0 {
		fmt.Printf("\n%s\n", ui.RenderCategory("Related"))
		for _, r := range d.Related {
			fmt.Printf("  %s %s %s\n", ui.RenderID(r.ID), ui.RenderStatus(r.Status), r.Title)
		}
	}

	if len(d.Subissues) > 0 {
		fmt.Printf("\n%s\n", ui.RenderCategory("Subissues"))
		for _, sub := range d.Subissues {
			fmt.Printf("  %s %s %s - %s\n", ui.RenderID(sub.ID), ui.RenderStatus(sub.Status), ui.RenderPriority(sub.Priority), sub.Title)
		}
	}
}

func init() {
	showCmd.Flags().Bool("full", false, "Show long descriptions and comments without truncation")
	rootCmd.AddCommand(showCmd)
}
