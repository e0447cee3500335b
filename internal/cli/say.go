package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pablasso/listo/internal/intent"
	"github.com/pablasso/listo/internal/session"
	"github.com/pablasso/listo/internal/skill"
	"github.com/spf13/cobra"
)

var sessionName string

var sayCmd = &cobra.Command{
	Use:   "say <utterance...>",
	Short: "Say one thing to listo and hear the answer",
	Long: `Run one conversational turn. What listo offers next ("done", "skip",
"yes", ...) is remembered until the next call, so a checklist can be
worked through one invocation at a time:

  listo say start the groceries checklist
  listo say done`,
	Args: cobra.MinimumNArgs(1),
	RunE: withEnv(runSay),
}

func init() {
	sayCmd.Flags().StringVar(&sessionName, "session", session.DefaultName, "name of the conversation to continue")
	talkCmd.Flags().StringVar(&sessionName, "session", session.DefaultName, "name of the conversation to continue")
}

func runSay(cmd *cobra.Command, args []string, e *env) error {
	next := loadContinuation(e.sessions, sessionName)

	in := intent.Parse(strings.Join(args, " "))
	log.Debug("parsed utterance", "intent", in.Intent, "text", in.Text)

	out := e.skill().Handle(cmd.Context(), next, in)
	fmt.Fprintln(cmd.OutOrStdout(), out.Text)

	return saveContinuation(e.sessions, sessionName, out.Next, out.Text)
}

// loadContinuation returns what the previous turn offered, or nil when
// there is nothing to continue.
func loadContinuation(storage *session.Storage, name string) *skill.Continuation {
	sess, err := storage.Load(name)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("ignoring unreadable session", "session", name, "err", err)
		}
		return nil
	}
	return sess.Next
}

// saveContinuation remembers next for the following turn, or clears the
// session when the interaction ended.
func saveContinuation(storage *session.Storage, name string, next *skill.Continuation, reply string) error {
	if next == nil {
		if err := storage.Delete(name); err != nil {
			return fmt.Errorf("failed to clear session: %w", err)
		}
		return nil
	}
	if err := storage.Save(&session.Session{Name: name, Next: next, LastReply: reply}); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}
