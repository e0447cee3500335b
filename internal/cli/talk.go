package cli

import (
	"github.com/pablasso/listo/internal/tui"
	"github.com/spf13/cobra"
)

var talkCmd = &cobra.Command{
	Use:   "talk",
	Short: "Talk through checklists interactively",
	Args:  cobra.NoArgs,
	RunE:  withEnv(runTalk),
}

func runTalk(cmd *cobra.Command, args []string, e *env) error {
	next := loadContinuation(e.sessions, sessionName)

	next, err := tui.Run(cmd.Context(), e.skill(), next)
	if err != nil {
		return err
	}
	return saveContinuation(e.sessions, sessionName, next, "")
}
