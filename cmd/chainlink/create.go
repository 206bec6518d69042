package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/config"
	"github.com/chainlink-tracker/chainlink/internal/templates"
	"github.com/chainlink-tracker/chainlink/internal/types"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	GroupID: "issues",
	Short:   "Create a new issue",
	Long: `Create a new open issue.

Templates (bug, feature, refactor, research, plus any from templates-file)
fill in priority, a label and a description skeleton:

  chainlink create "Crash on empty input" --template bug
  chainlink create "Faster startup" -p high -l perf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(cmd, nil, args[0])
	},
}

var subissueCmd = &cobra.Command{
	Use:     "subissue <parent-id> <title>",
	GroupID: "issues",
	Short:   "Create a subissue under a parent issue",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		parentID, err := parseID(args[0])
		if err != nil {
			return err
		}
		return runCreate(cmd, &parentID, args[1])
	},
}

func runCreate(cmd *cobra.Command, parentID *int64, title string) error {
	ctx := rootCtx

	priorityStr, _ := cmd.Flags().GetString("priority")
	priority, err := parsePriority(priorityStr)
	if err != nil {
		return err
	}
	description := optionalString(cmd, "description")
	labels, _ := cmd.Flags().GetStringSlice("label")

	if name, _ := cmd.Flags().GetString("template"); name != "" {
		tmpl, err := templates.Get(name, config.GetString("templates-file"))
		if err != nil {
			return err
		}
		description, priority = templates.Apply(tmpl, description, priority)
		if tmpl.Label != "" {
			labels = append(labels, tmpl.Label)
		}
	}

	var id int64
	if parentID != nil {
		id, err = store.CreateSubissue(ctx, *parentID, title, description, priority)
	} else {
		id, err = store.CreateIssue(ctx, title, description, priority)
	}
	if err != nil {
		return err
	}

	for _, label := range labels {
		if _, err := store.AddLabel(ctx, id, label); err != nil {
			WarnError("failed to add label %q to #%d: %v", label, id, err)
		}
	}

	if jsonOutput {
		issue, err := store.GetIssue(ctx, id)
		if err != nil {
			return err
		}
		outputJSON(issue)
		return nil
	}
	if parentID != nil {
		fmt.Printf("%s Created subissue %s under #%d\n", ui.RenderPass(ui.IconPass), ui.RenderID(id), *parentID)
	} else {
		fmt.Printf("%s Created issue %s\n", ui.RenderPass(ui.IconPass), ui.RenderID(id))
	}
	return nil
}

var templatesCmd = &cobra.Command{
	Use:         "templates",
	GroupID:     "setup",
	Short:       "List issue templates",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{noDBAnnotation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetString("templates-file")
		all, err := templates.All(path)
		if err != nil {
			return err
		}
		names, err := templates.Names(path)
		if err != nil {
			return err
		}
		if jsonOutput {
			list := make([]templates.Template, 0, len(names))
			for _, n := range names {
				list = append(list, all[n])
			}
			outputJSON(list)
			return nil
		}
		for _, n := range names {
			t := all[n]
			fmt.Printf("%-10s %-8s %s\n", t.Name, t.Priority, ui.RenderMuted(t.Label))
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{createCmd, subissueCmd} {
		c.Flags().StringP("description", "d", "", "Issue description")
		c.Flags().StringP("priority", "p", string(types.DefaultPriority), "Priority (low, medium, high, critical)")
		c.Flags().StringP("template", "t", "", "Apply a template (see 'chainlink templates')")
		c.Flags().StringSliceP("label", "l", nil, "Labels to attach (repeatable)")
		rootCmd.AddCommand(c)
	}
	rootCmd.AddCommand(templatesCmd)
}
