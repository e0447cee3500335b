// Package skill runs the checklist conversation: each call is one turn,
// executed as a single store transaction.
package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pablasso/listo/internal/checklist"
	"github.com/pablasso/listo/internal/journal"
	"github.com/pablasso/listo/internal/store"
)

const (
	msgNoChecklists   = "You haven't defined any checklists."
	msgWhichChecklist = "I don't know which checklist you want."
	msgDeclined       = "Okay, I don't know which checklist you want."
	msgWait           = "Okay!"
	msgAbort          = "Okay, that's all for now."
	msgNotUnderstood  = "Sorry, I didn't understand that."
	msgInternalError  = "Internal error."
)

// errNoChange aborts a transaction that has nothing to write.
var errNoChange = errors.New("no change")

// Skill answers checklist turns.
type Skill struct {
	store         store.Store
	engine        *checklist.Engine
	journal       *journal.Journal
	minSimilarity float64
	logger        *log.Logger
}

// Option configures a Skill.
type Option func(*Skill)

// WithJournal records run events.
func WithJournal(j *journal.Journal) Option {
	return func(s *Skill) {
		s.journal = j
	}
}

// WithMinSimilarity sets how close a spoken name must be to a checklist
// name to start it without asking the user to confirm.
func WithMinSimilarity(min float64) Option {
	return func(s *Skill) {
		s.minSimilarity = min
	}
}

// WithLogger replaces the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Skill) {
		s.logger = l
	}
}

// New creates a skill over the given store.
func New(st store.Store, engine *checklist.Engine, opts ...Option) *Skill {
	s := &Skill{
		store:         st,
		engine:        engine,
		minSimilarity: 0.6,
		logger:        log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle routes one turn according to the continuation left by the
// previous turn. Asking to start a checklist always works; anything else
// must match what the previous turn offered.
func (s *Skill) Handle(ctx context.Context, next *Continuation, in Input) Output {
	if in.Intent == IntentStart {
		return s.Start(ctx, in.Text)
	}

	if next != nil {
		switch next.Kind {
		case KindConfirm:
			switch in.Intent {
			case IntentYes:
				return s.Confirm(ctx, next.ChecklistID, true)
			case IntentNo:
				return s.Confirm(ctx, next.ChecklistID, false)
			}
		case KindInteraction:
			switch in.Intent {
			case IntentComplete, IntentSkip, IntentQuery, IntentWait, IntentAbort, IntentReset:
				return s.Interact(ctx, next.ChecklistID, in.Intent)
			}
		}
	}

	return Output{Text: msgNotUnderstood, Next: next, KeepListening: next != nil}
}

// Start begins or resumes the checklist named by the user. An empty name
// picks the checklist used last. Names that are not close enough to any
// checklist produce a yes/no question instead.
func (s *Skill) Start(ctx context.Context, name string) Output {
	var (
		out    Output
		events []func() error
	)
	err := s.update(ctx, func(col *checklist.Collection) error {
		if len(col.Checklists) == 0 {
			out = final(msgNoChecklists)
			return errNoChange
		}

		var idx int
		if strings.TrimSpace(name) == "" {
			if !col.HasLastUsed() {
				out = final(msgWhichChecklist)
				return errNoChange
			}
			idx = col.LastUsedIndex
		} else {
			m, _ := checklist.FindByName(*col, name)
			if !m.Accepted(s.minSimilarity) {
				c := col.Checklists[m.Index]
				out = confirm(fmt.Sprintf("Do you want to start the %s checklist?", c.Title()), c.ID)
				return errNoChange
			}
			idx = m.Index
		}

		out, events = s.start(col, idx)
		return nil
	})
	if err != nil {
		return s.internalError(err)
	}
	s.record(events)
	return out
}

// Confirm answers the yes/no question asked by Start.
func (s *Skill) Confirm(ctx context.Context, id string, yes bool) Output {
	if !yes {
		return final(msgDeclined)
	}

	var (
		out    Output
		events []func() error
	)
	err := s.update(ctx, func(col *checklist.Collection) error {
		idx, err := col.IndexByID(id)
		if err != nil {
			return err
		}
		out, events = s.start(col, idx)
		return nil
	})
	if err != nil {
		return s.internalError(err)
	}
	s.record(events)
	return out
}

// Interact applies one intent to the running checklist with the given ID.
func (s *Skill) Interact(ctx context.Context, id string, intent Intent) Output {
	var (
		out    Output
		events []func() error
	)
	err := s.update(ctx, func(col *checklist.Collection) error {
		idx, err := col.IndexByID(id)
		if err != nil {
			return err
		}
		c := col.Checklists[idx]
		name := c.Title()

		var (
			reply checklist.Reply
			next  checklist.Checklist
		)
		switch intent {
		case IntentComplete, IntentSkip:
			state, logItem := checklist.ItemCompleted, s.journal.ItemCompleted
			if intent == IntentSkip {
				state, logItem = checklist.ItemSkipped, s.journal.ItemSkipped
			}
			cur := c.ExecutionLastIndex
			marked := s.engine.MarkCurrentItem(c, state)
			if marked.ExecutionLastIndex != cur {
				events = append(events, func() error { return logItem(name, cur) })
			}
			reply, next = s.engine.Advance(marked, false)
		case IntentQuery:
			reply, next = s.engine.Advance(c, false)
		case IntentReset:
			events = append(events, func() error { return s.journal.ChecklistReset(name) })
			reply, next = s.engine.Reset(c)
		case IntentWait:
			out = interaction(msgWait, id, false)
			return errNoChange
		case IntentAbort:
			cur := c.ExecutionLastIndex
			events = append(events, func() error { return s.journal.ChecklistAborted(name, cur) })
			out = final(msgAbort)
			return errNoChange
		default:
			return fmt.Errorf("unsupported intent %q", intent)
		}

		if reply.Finished {
			events = append(events, s.completedEvent(next))
		}
		col.Checklists[idx] = next
		out = fromReply(reply, id)
		return nil
	})
	if err != nil {
		return s.internalError(err)
	}
	s.record(events)
	return out
}

// start runs the engine's Start on checklist idx and remembers it as the
// last used one. Must be called inside a transaction.
func (s *Skill) start(col *checklist.Collection, idx int) (Output, []func() error) {
	c := col.Checklists[idx]
	reply, next := s.engine.Start(c, "")

	var events []func() error
	if c.ExecutionState != checklist.StateInProgress {
		name, items := next.Title(), len(next.Items)
		events = append(events, func() error { return s.journal.ChecklistStarted(name, items) })
	}
	if reply.Finished {
		events = append(events, s.completedEvent(next))
	}

	col.Checklists[idx] = next
	col.LastUsedIndex = idx
	return fromReply(reply, next.ID), events
}

func (s *Skill) completedEvent(c checklist.Checklist) func() error {
	name, items := c.Title(), len(c.Items)
	elapsed := c.ExecutionEndedAt.Sub(c.ExecutionStartedAt)
	return func() error { return s.journal.ChecklistCompleted(name, items, elapsed) }
}

// update runs fn as one transaction, treating errNoChange as success.
func (s *Skill) update(ctx context.Context, fn func(col *checklist.Collection) error) error {
	err := s.store.Update(ctx, fn)
	if errors.Is(err, errNoChange) {
		return nil
	}
	return err
}

// record writes journal events once their transaction has committed.
func (s *Skill) record(events []func() error) {
	if s.journal == nil {
		return
	}
	for _, ev := range events {
		if err := ev(); err != nil {
			s.logger.Warn("failed to write journal", "err", err)
		}
	}
}

func (s *Skill) internalError(err error) Output {
	s.logger.Error("checklist turn failed", "err", err)
	return final(msgInternalError)
}
