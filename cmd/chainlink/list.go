package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/types"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "issues",
	Short:   "List issues",
	Long: `List issues, newest first.

--status takes open (the default), closed, archived or all.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, err := listFilterFromFlags(cmd)
		if err != nil {
			return err
		}
		issues, err := store.ListIssues(rootCtx, filter)
		if err != nil {
			return err
		}
		printIssueList(issues, "No issues found.")
		return nil
	},
}

func listFilterFromFlags(cmd *cobra.Command) (types.IssueFilter, error) {
	var filter types.IssueFilter

	status, _ := cmd.Flags().GetString("status")
	status = strings.ToLower(status)
	if status != "" && status != types.StatusAll && !types.Status(status).IsValid() {
		return filter, fmt.Errorf("invalid status %q (want open, closed, archived or all)", status)
	}
	filter.Status = status

	if cmd.Flags().Changed("label") {
		filter.Label, _ = cmd.Flags().GetString("label")
	}
	if cmd.Flags().Changed("priority") {
		p, _ := cmd.Flags().GetString("priority")
		priority, err := parsePriority(p)
		if err != nil {
			return filter, err
		}
		filter.Priority = priority
	}
	return filter, nil
}

var treeCmd = &cobra.Command{
	Use:     "tree",
	GroupID: "deps",
	Short:   "Show issues as a parent/subissue tree",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		nodes, err := store.GetTree(rootCtx, strings.ToLower(status))
		if err != nil {
			return err
		}
		if jsonOutput {
			if nodes == nil {
				nodes = []*types.TreeNode{}
			}
			outputJSON(nodes)
			return nil
		}
		if len(nodes) == 0 {
			fmt.Println("No issues found.")
			return nil
		}
		for i, n := range nodes {
			prefix := ""
			if n.Depth > 0 {
				connector := ui.TreeChild
				if isLastSibling(nodes, i) {
					connector = ui.TreeLast
				}
				prefix = strings.Repeat(ui.TreeIndent, n.Depth-1) + connector
			}
			fmt.Printf("%s%s %s %s %s\n", prefix, treeMarker(n.Issue.Status),
				ui.RenderID(n.Issue.ID), ui.RenderPriority(n.Issue.Priority), n.Issue.Title)
		}
		fmt.Println()
		fmt.Println(ui.RenderMuted("Legend: [ ] open, [x] closed"))
		return nil
	},
}

// isLastSibling reports whether no later node shares the depth of nodes[i]
// before the walk climbs above it.
func isLastSibling(nodes []*types.TreeNode, i int) bool {
	depth := nodes[i].Depth
	for _, n := range nodes[i+1:] {
		if n.Depth < depth {
			return true
		}
		if n.Depth == depth {
			return false
		}
	}
	return true
}

func init() {
	listCmd.Flags().StringP("status", "s", string(types.StatusOpen), "Filter by status (open, closed, archived, all)")
	listCmd.Flags().StringP("label", "l", "", "Filter by label")
	listCmd.Flags().StringP("priority", "p", "", "Filter by priority")
	treeCmd.Flags().StringP("status", "s", "", "Filter top-level issues by status (open, closed, all)")
	rootCmd.AddCommand(listCmd, treeCmd)
}
