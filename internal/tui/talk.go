// Package tui runs an interactive checklist conversation in the terminal.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pablasso/listo/internal/intent"
	"github.com/pablasso/listo/internal/skill"
	"github.com/pablasso/listo/internal/tui/styles"
)

const greeting = `Say "start the <name> checklist" to begin.`

// Responder answers one conversational turn.
type Responder interface {
	Handle(ctx context.Context, next *skill.Continuation, in skill.Input) skill.Output
}

type speaker int

const (
	speakerUser speaker = iota
	speakerAssistant
)

type line struct {
	who  speaker
	text string
	// finished marks a reply with no continuation
	finished bool
}

// replyMsg carries the answer to a submitted utterance.
type replyMsg struct {
	input  skill.Input
	output skill.Output
}

// Model is the Bubble Tea model for a talk session.
type Model struct {
	ctx       context.Context
	responder Responder

	input      textinput.Model
	transcript []line
	next       *skill.Continuation
	busy       bool
	quitting   bool

	width  int
	height int
}

// NewModel creates a talk session. next resumes a conversation left by a
// previous `listo say`.
func NewModel(ctx context.Context, responder Responder, next *skill.Continuation) Model {
	ti := textinput.New()
	ti.Placeholder = "Type what you would say... (Enter to send, Esc to quit)"
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.Focus()

	return Model{
		ctx:        ctx,
		responder:  responder,
		input:      ti,
		next:       next,
		transcript: []line{{who: speakerAssistant, text: greeting}},
	}
}

// Run starts the talk session and returns the continuation left when it
// ended.
func Run(ctx context.Context, responder Responder, next *skill.Continuation) (*skill.Continuation, error) {
	final, err := tea.NewProgram(NewModel(ctx, responder, next)).Run()
	if err != nil {
		return next, err
	}
	return final.(Model).Next(), nil
}

// Next returns what the last reply offered.
func (m Model) Next() *skill.Continuation {
	return m.next
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			return m.submit()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-6, 10)
		return m, nil

	case replyMsg:
		m.busy = false
		m.next = msg.output.Next
		m.transcript = append(m.transcript, line{
			who:      speakerAssistant,
			text:     msg.output.Text,
			finished: msg.output.Next == nil,
		})
		if msg.input.Intent == skill.IntentAbort && msg.output.Next == nil {
			m.quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.busy {
		return m, nil
	}
	m.input.Reset()
	m.busy = true
	m.transcript = append(m.transcript, line{who: speakerUser, text: text})

	in := intent.Parse(text)
	ctx, responder, next := m.ctx, m.responder, m.next
	return m, func() tea.Msg {
		return replyMsg{input: in, output: responder.Handle(ctx, next, in)}
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("listo"))
	b.WriteString("\n")

	lines := m.transcript
	if m.height > 0 {
		// title, hint and the input box take roughly six rows
		if room := m.height - 6; room > 0 && len(lines) > room {
			lines = lines[len(lines)-room:]
		}
	}
	for _, l := range lines {
		b.WriteString(renderLine(l))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.SubtleStyle.Render(m.hint()))
	b.WriteString("\n")
	b.WriteString(styles.BoxStyle.Render(m.input.View()))
	return b.String()
}

func (m Model) hint() string {
	if m.busy {
		return "..."
	}
	if m.next == nil {
		return "start a checklist by name"
	}
	switch m.next.Kind {
	case skill.KindConfirm:
		return "yes · no"
	default:
		return "done · skip · repeat · wait · start over · stop"
	}
}

func renderLine(l line) string {
	if l.who == speakerUser {
		return styles.UserStyle.Render("you: ") + l.text
	}
	text := l.text
	switch {
	case l.text == "Internal error.":
		text = styles.ErrorStyle.Render(text)
	case l.finished && strings.HasPrefix(l.text, "Checklist complete."):
		text = styles.SuccessStyle.Render(text)
	}
	return styles.AssistantStyle.Render("listo: ") + text
}
