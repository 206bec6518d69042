package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/recommend"
	"github.com/chainlink-tracker/chainlink/internal/types"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

const previewWidth = 80

var nextCmd = &cobra.Command{
	Use:     "next",
	GroupID: "work",
	Short:   "Recommend the next issue to work on",
	Long: `Pick the best ready issue: higher priority first, with a bonus for parents
whose subissues are partly done. Subissues are only suggested when nothing
else is ready.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := recommend.Next(rootCtx, store)
		if err != nil {
			return err
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"recommendation": rec})
			return nil
		}
		if rec == nil {
			fmt.Println("No issues ready to work on.")
			fmt.Println(ui.RenderMuted("Use 'chainlink list' to see all issues or 'chainlink blocked' to see blocked issues."))
			return nil
		}
		printRecommendation(rec)
		return nil
	},
}

func printRecommendation(rec *types.Recommendation) {
	top := rec.Top.Issue
	fmt.Printf("Next: %s [%s] %s\n", ui.RenderID(top.ID), ui.RenderPriority(top.Priority), top.Title)
	if rec.Fallback && top.ParentID != nil {
		fmt.Printf("       (subissue of #%d)\n", *top.ParentID)
	}
	if p := rec.Top.Progress; p != nil {
		fmt.Printf("       Progress: %s subissues complete\n", ui.RenderProgress(*p))
	}
	if top.Description != nil && *top.Description != "" {
		fmt.Printf("       %s\n", ui.RenderMuted(ui.TruncateSimple(*top.Description, previewWidth)))
	}
	fmt.Println()
	fmt.Printf("Run: chainlink session work %d\n", top.ID)

	if len(rec.RunnersUp) > 0 {
		fmt.Printf("\n%s\n", ui.RenderCategory("Also ready"))
		for _, s := range rec.RunnersUp {
			progress := ""
			if s.Progress != nil {
				progress = " (" + s.Progress.String() + ")"
			}
			fmt.Printf("  %s [%s] %s%s\n", ui.RenderID(s.Issue.ID), s.Issue.Priority, s.Issue.Title, progress)
		}
	}
}

func init() {
	rootCmd.AddCommand(nextCmd)
}
