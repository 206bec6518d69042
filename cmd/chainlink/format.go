package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/chainlink-tracker/chainlink/internal/types"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

const timestampLayout = "2006-01-02 15:04:05"

// formatIssueLine renders the one-line form used by list, ready and blocked.
func formatIssueLine(issue *types.Issue) string {
	title := ui.TruncateSimple(issue.Title, ui.TerminalWidth()-30)
	line := fmt.Sprintf("%-5s %-10s %-8s %s",
		fmt.Sprintf("#%d", issue.ID), "["+string(issue.Status)+"]", issue.Priority, title)
	if issue.ParentID != nil {
		line += ui.RenderMuted(fmt.Sprintf(" (sub of #%d)", *issue.ParentID))
	}
	return line
}

func printIssueList(issues []*types.Issue, empty string) {
	if jsonOutput {
		if issues == nil {
			issues = []*types.Issue{}
		}
		outputJSON(issues)
		return
	}
	if len(issues) == 0 {
		fmt.Println(empty)
		return
	}
	for _, issue := range issues {
		fmt.Println(formatIssueLine(issue))
	}
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format(timestampLayout)
}

// indentLines prefixes every line of text.
func indentLines(text, prefix string) string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

// treeMarker is the checkbox used by the tree view.
func treeMarker(s types.Status) string {
	if s.IsDone() {
		return ui.RenderPass("[x]")
	}
	return "[ ]"
}
