package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pablasso/listo/internal/checklist"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all checklists",
	Args:  cobra.NoArgs,
	RunE:  withEnv(runList),
}

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a checklist and the progress of its current run",
	Args:  cobra.ExactArgs(1),
	RunE:  withEnv(runShow),
}

var createCmd = &cobra.Command{
	Use:   "create <name> [items...]",
	Short: "Create a checklist",
	Args:  cobra.MinimumNArgs(1),
	RunE:  withEnv(runCreate),
}

var deleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a checklist",
	Args:  cobra.ExactArgs(1),
	RunE:  withEnv(runDelete),
}

var renameCmd = &cobra.Command{
	Use:   "rename <name> <new-name>",
	Short: "Rename a checklist",
	Args:  cobra.ExactArgs(2),
	RunE:  withEnv(runRename),
}

func runList(cmd *cobra.Command, args []string, e *env) error {
	col, err := e.store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load checklists: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(col.Checklists) == 0 {
		fmt.Fprintln(out, "No checklists defined.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tITEMS\tSTATE\tPROGRESS\tLAST RUN")
	for i, c := range col.Checklists {
		name := c.Title()
		if i == col.LastUsedIndex {
			name += " *"
		}
		completed, skipped := c.Counts()
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			name,
			len(c.Items),
			formatState(c.ExecutionState),
			formatProgress(completed, skipped, len(c.Items)),
			formatAge(c.ExecutionStartedAt),
		)
	}
	return w.Flush()
}

func runShow(cmd *cobra.Command, args []string, e *env) error {
	col, err := e.store.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load checklists: %w", err)
	}
	idx, err := col.IndexOf(args[0])
	if err != nil {
		return err
	}
	c := col.Checklists[idx]

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s)\n", c.Title(), formatState(c.ExecutionState))
	for i, it := range c.Items {
		cursor := " "
		if c.ExecutionState == checklist.StateInProgress && i == c.ExecutionLastIndex {
			cursor = ">"
		}
		fmt.Fprintf(out, "%s %s %d. %s\n", cursor, itemMarker(it.ExecutionState), i+1, it.Name)
	}
	return nil
}

func runCreate(cmd *cobra.Command, args []string, e *env) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("checklist name must not be empty")
	}

	err := e.store.Update(cmd.Context(), func(col *checklist.Collection) error {
		if _, err := col.IndexOf(name); err == nil {
			return fmt.Errorf("checklist %q already exists", name)
		}
		col.Add(checklist.New(name, args[1:]...))
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created checklist %q with %d items.\n", name, len(args)-1)
	return nil
}

func runDelete(cmd *cobra.Command, args []string, e *env) error {
	err := updateNamed(cmd.Context(), e, args[0], func(col *checklist.Collection, idx int) error {
		return col.Remove(idx)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted checklist %q.\n", args[0])
	return nil
}

func runRename(cmd *cobra.Command, args []string, e *env) error {
	newName := strings.TrimSpace(args[1])
	if newName == "" {
		return fmt.Errorf("checklist name must not be empty")
	}

	err := updateNamed(cmd.Context(), e, args[0], func(col *checklist.Collection, idx int) error {
		if other, err := col.IndexOf(newName); err == nil && other != idx {
			return fmt.Errorf("checklist %q already exists", newName)
		}
		return col.Rename(idx, newName)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %q to %q.\n", args[0], newName)
	return nil
}

// updateNamed runs fn inside a store transaction with the index of the
// checklist called name.
func updateNamed(ctx context.Context, e *env, name string, fn func(col *checklist.Collection, idx int) error) error {
	return e.store.Update(ctx, func(col *checklist.Collection) error {
		idx, err := col.IndexOf(name)
		if err != nil {
			return err
		}
		return fn(col, idx)
	})
}

func formatState(s checklist.State) string {
	switch s {
	case checklist.StateInProgress:
		return "in progress"
	case checklist.StateComplete:
		return "complete"
	default:
		return "not started"
	}
}

func formatProgress(completed, skipped, total int) string {
	if skipped == 0 {
		return fmt.Sprintf("%d/%d", completed, total)
	}
	return fmt.Sprintf("%d/%d (%d skipped)", completed, total, skipped)
}

func itemMarker(s checklist.ItemState) string {
	switch s {
	case checklist.ItemCompleted:
		return "[x]"
	case checklist.ItemSkipped:
		return "[-]"
	case checklist.ItemAsked:
		return "[?]"
	default:
		return "[ ]"
	}
}

// formatAge returns a human-readable relative time string.
func formatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	duration := time.Since(t)
	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	days := hours / 24
	return fmt.Sprintf("%dd ago", days)
}
