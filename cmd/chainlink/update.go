package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/chainlink-tracker/chainlink/internal/types"
	"github.com/chainlink-tracker/chainlink/internal/ui"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	GroupID: "issues",
	Short:   "Update an issue's title, description or priority",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		update := types.IssueUpdate{
			Title:       optionalString(cmd, "title"),
			Description: optionalString(cmd, "description"),
		}
		if p := optionalString(cmd, "priority"); p != nil {
			priority, err := parsePriority(*p)
			if err != nil {
				return err
			}
			update.Priority = &priority
		}
		if update.IsEmpty() {
			return fmt.Errorf("nothing to update; pass --title, --description or --priority")
		}

		ok, err := store.UpdateIssue(rootCtx, id, update)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("issue #%d not found", id)
		}
		if jsonOutput {
			issue, err := store.GetIssue(rootCtx, id)
			if err != nil {
				return err
			}
			outputJSON(issue)
			return nil
		}
		fmt.Printf("%s Updated issue %s\n", ui.RenderPass(ui.IconPass), ui.RenderID(id))
		return nil
	},
}

// statusChange runs one lifecycle transition per id and reports each.
type statusChange struct {
	apply func(id int64) (bool, error)
	done  string
	noop  string
	icon  string
}

func runStatusChange(args []string, sc statusChange) error {
	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	changed := []int64{}
	var firstErr error
	for _, id := range ids {
		ok, err := sc.apply(id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: #%d: %v\n", id, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if !ok {
			if !jsonOutput {
				fmt.Printf("Issue #%d %s\n", id, sc.noop)
			}
			continue
		}
		changed = append(changed, id)
		if !jsonOutput {
			fmt.Printf("%s %s issue %s\n", sc.icon, sc.done, ui.RenderID(id))
		}
	}
	if jsonOutput {
		outputJSON(map[string]interface{}{"changed": changed})
	}
	return firstErr
}

var closeCmd = &cobra.Command{
	Use:     "close <id>...",
	GroupID: "issues",
	Short:   "Close one or more issues",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(args, statusChange{
			apply: func(id int64) (bool, error) { return store.CloseIssue(rootCtx, id) },
			done:  "Closed",
			noop:  "is not open",
			icon:  ui.RenderPass(ui.IconPass),
		})
	},
}

var reopenCmd = &cobra.Command{
	Use:     "reopen <id>...",
	GroupID: "issues",
	Short:   "Reopen one or more closed issues",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStatusChange(args, statusChange{
			apply: func(id int64) (bool, error) { return store.ReopenIssue(rootCtx, id) },
			done:  "Reopened",
			noop:  "is already open",
			icon:  ui.RenderAccent("↻"),
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	GroupID: "issues",
	Short:   "Delete an issue and all of its subissues",
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

		force, _ := cmd.Flags().GetBool("force")
		if !force {
			if !ui.IsTerminal() || jsonOutput {
				return fmt.Errorf("refusing to delete #%d without confirmation; pass --force", id)
			}
			confirmed, err := confirmDelete(issue)
			if err != nil {
				return err
			}
			if !confirmed {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		ok, err := store.DeleteIssue(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("issue #%d not found", id)
		}
		if jsonOutput {
			outputJSON(map[string]interface{}{"deleted": id})
			return nil
		}
		fmt.Printf("%s Deleted issue %s\n", ui.RenderFail(ui.IconFail), ui.RenderID(id))
		return nil
	},
}

func confirmDelete(issue *types.Issue) (bool, error) {
	confirmed := false
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete #%d %q?", issue.ID, issue.Title)).
				Description("Subissues, labels, comments and time entries go with it.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(huh.ThemeDracula())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, fmt.Errorf("confirmation prompt: %w", err)
	}
	return confirmed, nil
}

func init() {
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().StringP("priority", "p", "", "New priority")
	deleteCmd.Flags().BoolP("force", "f", false, "Skip confirmation")
	rootCmd.AddCommand(updateCmd, closeCmd, reopenCmd, deleteCmd)
}
