package checklist

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle of a whole checklist run.
type State string

// Checklist execution states
const (
	StateNotStarted State = "not_started"
	StateInProgress State = "in_progress"
	StateComplete   State = "complete"
)

// ItemState is the lifecycle of one item within a run.
type ItemState string

// Item execution states
const (
	ItemNotAsked  ItemState = "not_asked"
	ItemAsked     ItemState = "asked"
	ItemCompleted ItemState = "completed"
	ItemSkipped   ItemState = "skipped"
)

// Checklist is a named, ordered list of items together with the progress
// of its current (or last) run.
type Checklist struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Items              []Item    `json:"items"`
	ExecutionState     State     `json:"executionState"`
	ExecutionStartedAt time.Time `json:"executionStartedAt"`
	ExecutionEndedAt   time.Time `json:"executionEndedAt"`
	// ExecutionLastIndex is only meaningful while the run is in progress.
	ExecutionLastIndex int `json:"executionLastIndex"`
}

// Item is a single entry of a checklist.
type Item struct {
	Name                 string    `json:"name"`
	ExecutionState       ItemState `json:"executionState"`
	ExecutionLastChanged time.Time `json:"executionLastChanged"`
}

// New creates a checklist that has never been run.
func New(name string, items ...string) Checklist {
	c := Checklist{
		ID:             uuid.NewString(),
		Name:           name,
		Items:          make([]Item, 0, len(items)),
		ExecutionState: StateNotStarted,
	}
	for _, it := range items {
		c.Items = append(c.Items, Item{Name: it, ExecutionState: ItemNotAsked})
	}
	return c
}

// Clone returns a deep copy so callers can transform a checklist without
// aliasing the items slice of the original.
func (c Checklist) Clone() Checklist {
	out := c
	out.Items = make([]Item, len(c.Items))
	copy(out.Items, c.Items)
	return out
}

// Title is the name used when speaking about the checklist.
func (c Checklist) Title() string {
	if c.Name == "" {
		return "Unspecified"
	}
	return c.Name
}

// Counts returns how many items are completed and skipped.
func (c Checklist) Counts() (completed, skipped int) {
	for _, it := range c.Items {
		switch it.ExecutionState {
		case ItemCompleted:
			completed++
		case ItemSkipped:
			skipped++
		}
	}
	return completed, skipped
}

// Valid reports whether s is one of the known checklist states.
func (s State) Valid() bool {
	switch s {
	case StateNotStarted, StateInProgress, StateComplete:
		return true
	}
	return false
}

// Valid reports whether s is one of the known item states.
func (s ItemState) Valid() bool {
	switch s {
	case ItemNotAsked, ItemAsked, ItemCompleted, ItemSkipped:
		return true
	}
	return false
}

// Normalize fills in states left empty by hand-written data and rejects
// unknown ones.
func (c *Checklist) Normalize() error {
	if c.ExecutionState == "" {
		c.ExecutionState = StateNotStarted
	}
	if !c.ExecutionState.Valid() {
		return fmt.Errorf("checklist %q: unknown state %q", c.Name, c.ExecutionState)
	}
	for i := range c.Items {
		if c.Items[i].ExecutionState == "" {
			c.Items[i].ExecutionState = ItemNotAsked
		}
		if !c.Items[i].ExecutionState.Valid() {
			return fmt.Errorf("checklist %q item %d: unknown state %q", c.Name, i+1, c.Items[i].ExecutionState)
		}
	}
	if c.ExecutionState == StateInProgress && (c.ExecutionLastIndex < 0 || c.ExecutionLastIndex > len(c.Items)) {
		return fmt.Errorf("checklist %q: item index %d out of range", c.Name, c.ExecutionLastIndex)
	}
	return nil
}
