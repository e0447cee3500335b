// Package journal keeps a JSON Lines history of checklist runs.
package journal

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Event type constants for the journal.
const (
	EventChecklistStarted   = "checklist_started"
	EventChecklistCompleted = "checklist_completed"
	EventChecklistReset     = "checklist_reset"
	EventChecklistAborted   = "checklist_aborted"
	EventItemCompleted      = "item_completed"
	EventItemSkipped        = "item_skipped"
)

// Event represents a single journal entry.
type Event struct {
	Timestamp time.Time              `json:"timestamp"`
	Event     string                 `json:"event"`
	Checklist string                 `json:"checklist"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Journal appends events to a JSON Lines file.
type Journal struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// New creates a journal writing to path.
func New(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

// Log appends an event.
func (j *Journal) Log(event, checklistName string, data map[string]interface{}) error {
	entry := Event{
		Timestamp: j.now(),
		Event:     event,
		Checklist: checklistName,
		Data:      data,
	}

	jsonBytes, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	jsonBytes = append(jsonBytes, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(jsonBytes)
	return err
}

// ChecklistStarted logs a checklist_started event.
func (j *Journal) ChecklistStarted(name string, items int) error {
	return j.Log(EventChecklistStarted, name, map[string]interface{}{
		"items": items,
	})
}

// ItemCompleted logs an item_completed event.
func (j *Journal) ItemCompleted(name string, item int) error {
	return j.Log(EventItemCompleted, name, map[string]interface{}{
		"item": item + 1,
	})
}

// ItemSkipped logs an item_skipped event.
func (j *Journal) ItemSkipped(name string, item int) error {
	return j.Log(EventItemSkipped, name, map[string]interface{}{
		"item": item + 1,
	})
}

// ChecklistCompleted logs a checklist_completed event with the run length.
func (j *Journal) ChecklistCompleted(name string, items int, duration time.Duration) error {
	return j.Log(EventChecklistCompleted, name, map[string]interface{}{
		"items":       items,
		"duration_ms": duration.Milliseconds(),
	})
}

// ChecklistReset logs a checklist_reset event.
func (j *Journal) ChecklistReset(name string) error {
	return j.Log(EventChecklistReset, name, nil)
}

// ChecklistAborted logs a checklist_aborted event.
func (j *Journal) ChecklistAborted(name string, item int) error {
	return j.Log(EventChecklistAborted, name, map[string]interface{}{
		"item": item + 1,
	})
}

// Recent returns up to n of the latest events, oldest first. Lines that
// cannot be parsed are skipped.
func (j *Journal) Recent(n int) ([]Event, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer f.Close()

	var events []Event
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Event
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		events = append(events, e)
		if n > 0 && len(events) > n {
			events = events[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal: %w", err)
	}
	return events, nil
}
