package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pablasso/listo/internal/checklist"
	"github.com/spf13/cobra"
)

// itemCmd is the parent command for item editing.
var itemCmd = &cobra.Command{
	Use:   "item",
	Short: "Add or remove checklist items",
}

var itemAddCmd = &cobra.Command{
	Use:   "add <checklist> <text...>",
	Short: "Append an item to a checklist",
	Args:  cobra.MinimumNArgs(2),
	RunE:  withEnv(runItemAdd),
}

var itemEditCmd = &cobra.Command{
	Use:   "edit <checklist> <n> <text...>",
	Short: "Change the text of the n-th item (1-based)",
	Args:  cobra.MinimumNArgs(3),
	RunE:  withEnv(runItemEdit),
}

var itemRemoveCmd = &cobra.Command{
	Use:   "remove <checklist> <n>",
	Short: "Remove the n-th item (1-based) from a checklist",
	Args:  cobra.ExactArgs(2),
	RunE:  withEnv(runItemRemove),
}

func init() {
	itemCmd.AddCommand(itemAddCmd)
	itemCmd.AddCommand(itemEditCmd)
	itemCmd.AddCommand(itemRemoveCmd)
}

func runItemAdd(cmd *cobra.Command, args []string, e *env) error {
	text := strings.Join(args[1:], " ")
	err := updateNamed(cmd.Context(), e, args[0], func(col *checklist.Collection, idx int) error {
		return col.AddItem(idx, text)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %q to %q.\n", text, args[0])
	return nil
}

func runItemEdit(cmd *cobra.Command, args []string, e *env) error {
	n, err := itemNumber(args[1])
	if err != nil {
		return err
	}

	text := strings.Join(args[2:], " ")
	err = updateNamed(cmd.Context(), e, args[0], func(col *checklist.Collection, idx int) error {
		return col.EditItem(idx, n-1, text)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Item %d of %q is now %q.\n", n, args[0], text)
	return nil
}

func runItemRemove(cmd *cobra.Command, args []string, e *env) error {
	n, err := itemNumber(args[1])
	if err != nil {
		return err
	}

	var removed string
	err = updateNamed(cmd.Context(), e, args[0], func(col *checklist.Collection, idx int) error {
		items := col.Checklists[idx].Items
		if n > len(items) {
			return fmt.Errorf("item %d: %w", n, checklist.ErrIndexOutOfRange)
		}
		removed = items[n-1].Name
		return col.RemoveItem(idx, n-1)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed %q from %q.\n", removed, args[0])
	return nil
}

// itemNumber parses a 1-based item number.
func itemNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid item number %q", s)
	}
	return n, nil
}
