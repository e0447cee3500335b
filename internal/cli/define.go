package cli

import (
	"fmt"
	"os"

	"github.com/pablasso/listo/internal/checklist"
	"github.com/spf13/cobra"
)

var defineCmd = &cobra.Command{
	Use:   "define <file.yaml>",
	Short: "Create or replace checklists from a YAML file",
	Long: `Create or replace checklists from a YAML file of the form:

  checklists:
    - name: Groceries
      items: [Buy milk, Buy eggs]

A checklist whose name already exists gets the new items and its run is
reset.`,
	Args: cobra.ExactArgs(1),
	RunE: withEnv(runDefine),
}

func runDefine(cmd *cobra.Command, args []string, e *env) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open definitions: %w", err)
	}
	defer f.Close()

	defs, err := checklist.ParseDefinitions(f)
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No checklists defined in file.")
		return nil
	}

	var created, replaced int
	err = e.store.Update(cmd.Context(), func(col *checklist.Collection) error {
		created, replaced = 0, 0
		for _, def := range defs {
			idx, err := col.IndexOf(def.Name)
			if err != nil {
				col.Add(def)
				created++
				continue
			}
			def.ID = col.Checklists[idx].ID
			if err := col.Replace(idx, def); err != nil {
				return err
			}
			replaced++
		}
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created %d, replaced %d checklists.\n", created, replaced)
	return nil
}
