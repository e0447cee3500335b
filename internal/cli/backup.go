package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pablasso/listo/internal/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write all checklists to a JSON backup (use - for stdout)",
	Args:  cobra.ExactArgs(1),
	RunE:  withEnv(runExport),
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Append the checklists of a JSON backup",
	Args:  cobra.ExactArgs(1),
	RunE:  withEnv(runImport),
}

func runExport(cmd *cobra.Command, args []string, e *env) error {
	if args[0] == "-" {
		return store.Export(cmd.Context(), e.store, cmd.OutOrStdout())
	}

	// Atomic write: write to temp file then rename
	tmp, err := os.CreateTemp(filepath.Dir(args[0]), ".listo-export-*")
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := store.Export(cmd.Context(), e.store, tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}
	if err := os.Rename(tmp.Name(), args[0]); err != nil {
		return fmt.Errorf("failed to rename backup file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported checklists to %s.\n", args[0])
	return nil
}

func runImport(cmd *cobra.Command, args []string, e *env) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	n, err := store.Import(cmd.Context(), e.store, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d checklists.\n", n)
	return nil
}
