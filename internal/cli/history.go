package cli

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/pablasso/listo/internal/journal"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent checklist activity",
	Args:  cobra.NoArgs,
	RunE:  withEnv(runHistory),
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of events to show (0 for all)")
}

func runHistory(cmd *cobra.Command, args []string, e *env) error {
	events, err := e.journal.Recent(historyLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(events) == 0 {
		fmt.Fprintln(out, "No history yet.")
		return nil
	}

	loc, _ := e.cfg.Location()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tCHECKLIST\tDETAILS")
	for _, ev := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			ev.Timestamp.In(loc).Format("2006-01-02 15:04"),
			ev.Event,
			ev.Checklist,
			formatDetails(ev),
		)
	}
	return w.Flush()
}

// formatDetails renders event data as sorted key=value pairs.
func formatDetails(ev journal.Event) string {
	keys := make([]string, 0, len(ev.Data))
	for k := range ev.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, ev.Data[k]))
	}
	return strings.Join(parts, " ")
}
