package checklist

import (
	"fmt"
	"strings"
	"time"
)

const (
	noDescription = "There's no description for it."
	resetIntro    = "Okay, let's start from the beginning. "
	timeLayout    = "3:04 PM"
)

// Reply is what the engine decided to say for one turn.
type Reply struct {
	Text string
	// Finished is set when the run reached the complete state and there is
	// nothing left to ask.
	Finished bool
}

// Engine advances checklist runs. It never mutates its arguments: every
// operation returns a new checklist value.
type Engine struct {
	now func() time.Time
	loc *time.Location
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLocation sets the zone used when speaking wall-clock times.
func WithLocation(loc *time.Location) Option {
	return func(e *Engine) {
		if loc != nil {
			e.loc = loc
		}
	}
}

// NewEngine creates an engine using the system clock and local time zone.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
		loc: time.Local,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Now returns the engine's current time.
func (e *Engine) Now() time.Time {
	return e.now()
}

// MarkCurrentItem sets the item at the execution cursor to state and moves
// the cursor forward. Marking an item with the state it already has does
// nothing, so repeated calls move the cursor once.
func (e *Engine) MarkCurrentItem(c Checklist, state ItemState) Checklist {
	idx := c.ExecutionLastIndex
	if idx < 0 || idx >= len(c.Items) || c.Items[idx].ExecutionState == state {
		return c
	}
	c = c.Clone()
	c.Items[idx].ExecutionState = state
	c.Items[idx].ExecutionLastChanged = e.now()
	c.ExecutionLastIndex++
	return c
}

// Advance moves the run to the next item that still needs an answer and
// returns the prompt for it. A run that is not in progress is restarted
// from the first item. When the end of the list is reached, skipped items
// are revisited before the run is declared complete.
func (e *Engine) Advance(c Checklist, verbose bool) (Reply, Checklist) {
	c = c.Clone()
	now := e.now()

	if c.ExecutionState != StateInProgress {
		c.ExecutionStartedAt = now
		c.ExecutionState = StateInProgress
		c.ExecutionLastIndex = 0
		for i := range c.Items {
			c.Items[i].ExecutionState = ItemNotAsked
			c.Items[i].ExecutionLastChanged = now
		}
	}

	current := max(c.ExecutionLastIndex, 0)
	for current < len(c.Items) && c.Items[current].ExecutionState == ItemCompleted {
		current++
	}

	if current >= len(c.Items) {
		pending := firstNotCompleted(c.Items)
		if pending < 0 {
			c.ExecutionEndedAt = now
			c.ExecutionLastIndex = current
			c.ExecutionState = StateComplete
			elapsed := now.Sub(c.ExecutionStartedAt)
			return Reply{
				Text:     fmt.Sprintf("Checklist complete. Time elapsed: %s.", RenderDuration(elapsed)),
				Finished: true,
			}, c
		}

		c.ask(pending, now)
		return Reply{
			Text: fmt.Sprintf("Let's circle back to item %d. %s", pending+1, describe(c.Items[pending].Name)),
		}, c
	}

	c.ask(current, now)
	name := c.Items[current].Name
	if verbose {
		return Reply{Text: fmt.Sprintf("Item %d. %s", current+1, describe(name))}, c
	}
	if strings.TrimSpace(name) == "" {
		return Reply{Text: fmt.Sprintf("Next is Item %d. %s", current+1, noDescription)}, c
	}
	return Reply{Text: name}, c
}

// Start introduces the checklist and asks the first pending item. A
// non-empty intro replaces the state dependent introduction.
func (e *Engine) Start(c Checklist, intro string) (Reply, Checklist) {
	text := intro
	if text == "" {
		switch c.ExecutionState {
		case StateInProgress:
			text = fmt.Sprintf("Let's continue with the checklist for %s, which you started at %s. ",
				c.Title(), e.clock(c.ExecutionStartedAt))
		case StateComplete:
			text = fmt.Sprintf("I'll restart the checklist for %s, which you last completed at %s. ",
				c.Title(), e.clock(c.ExecutionEndedAt))
		default:
			text = fmt.Sprintf("I'll start the checklist for %s. ", c.Title())
		}
	}

	if len(c.Items) == 1 {
		text += "There is 1 item in this checklist. "
	} else {
		text += fmt.Sprintf("There are %d items in this checklist. ", len(c.Items))
	}

	reply, next := e.Advance(c, true)
	reply.Text = text + reply.Text
	return reply, next
}

// Reset throws away the progress of the current run, item states
// included, and starts over.
func (e *Engine) Reset(c Checklist) (Reply, Checklist) {
	c = c.Clone()
	c.ExecutionState = StateNotStarted
	return e.Start(c, resetIntro)
}

func (e *Engine) clock(t time.Time) string {
	return t.In(e.loc).Format(timeLayout)
}

func (c *Checklist) ask(idx int, now time.Time) {
	c.ExecutionLastIndex = idx
	c.Items[idx].ExecutionState = ItemAsked
	c.Items[idx].ExecutionLastChanged = now
}

func firstNotCompleted(items []Item) int {
	for i := range items {
		if items[i].ExecutionState != ItemCompleted {
			return i
		}
	}
	return -1
}

func describe(name string) string {
	if strings.TrimSpace(name) == "" {
		return noDescription
	}
	return name
}

// RenderDuration speaks a duration using only its two largest units:
// days and hours, hours and minutes, minutes and seconds, or seconds.
func RenderDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int64(d / (24 * time.Hour))
	hours := int64(d / time.Hour)
	minutes := int64(d / time.Minute)
	seconds := int64(d / time.Second)

	switch {
	case days > 0:
		return fmt.Sprintf("%d days %d hours", days, hours%24)
	case hours > 0:
		return fmt.Sprintf("%d hours %d minutes", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%d minutes %d seconds", minutes, seconds%60)
	default:
		return fmt.Sprintf("%d seconds", seconds)
	}
}
