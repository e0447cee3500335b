package checklist

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIndexOutOfRange is returned when an index does not address a
	// checklist or item.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrNotFound is returned when no checklist has the requested name.
	ErrNotFound = errors.New("checklist not found")
)

// Collection is every checklist the user has defined plus the one used
// most recently.
type Collection struct {
	Checklists []Checklist `json:"checklists"`
	// LastUsedIndex may point past the end when nothing has been used yet.
	LastUsedIndex int `json:"lastUsedIndex"`
}

// HasLastUsed reports whether LastUsedIndex addresses a checklist.
func (col *Collection) HasLastUsed() bool {
	return col.LastUsedIndex >= 0 && col.LastUsedIndex < len(col.Checklists)
}

// Get returns the checklist at i.
func (col *Collection) Get(i int) (Checklist, error) {
	if i < 0 || i >= len(col.Checklists) {
		return Checklist{}, fmt.Errorf("checklist %d: %w", i, ErrIndexOutOfRange)
	}
	return col.Checklists[i], nil
}

// IndexOf finds a checklist by exact, case-insensitive name.
func (col *Collection) IndexOf(name string) (int, error) {
	for i, c := range col.Checklists {
		if strings.EqualFold(strings.TrimSpace(c.Name), strings.TrimSpace(name)) {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// IndexByID finds a checklist by its stable ID.
func (col *Collection) IndexByID(id string) (int, error) {
	if id != "" {
		for i, c := range col.Checklists {
			if c.ID == id {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: id %q", ErrNotFound, id)
}

// Add appends a checklist and returns its index.
func (col *Collection) Add(c Checklist) int {
	col.Checklists = append(col.Checklists, c)
	return len(col.Checklists) - 1
}

// Replace overwrites the checklist at i.
func (col *Collection) Replace(i int, c Checklist) error {
	if i < 0 || i >= len(col.Checklists) {
		return fmt.Errorf("checklist %d: %w", i, ErrIndexOutOfRange)
	}
	col.Checklists[i] = c
	return nil
}

// Remove deletes the checklist at i. The last used index keeps pointing
// at the same checklist, or past the end if that checklist was removed.
func (col *Collection) Remove(i int) error {
	if i < 0 || i >= len(col.Checklists) {
		return fmt.Errorf("checklist %d: %w", i, ErrIndexOutOfRange)
	}
	col.Checklists = append(col.Checklists[:i:i], col.Checklists[i+1:]...)
	switch {
	case col.LastUsedIndex == i:
		col.LastUsedIndex = len(col.Checklists)
	case col.LastUsedIndex > i:
		col.LastUsedIndex--
	}
	return nil
}

// Rename changes the name of the checklist at i.
func (col *Collection) Rename(i int, name string) error {
	c, err := col.Get(i)
	if err != nil {
		return err
	}
	c.Name = name
	return col.Replace(i, c)
}

// AddItem appends an item to the checklist at i.
func (col *Collection) AddItem(i int, name string) error {
	c, err := col.Get(i)
	if err != nil {
		return err
	}
	c = c.Clone()
	c.Items = append(c.Items, Item{Name: name, ExecutionState: ItemNotAsked})
	return col.Replace(i, c)
}

// EditItem changes the text of item j of the checklist at i. Its progress
// is kept.
func (col *Collection) EditItem(i, j int, name string) error {
	c, err := col.Get(i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(c.Items) {
		return fmt.Errorf("item %d: %w", j, ErrIndexOutOfRange)
	}
	c = c.Clone()
	c.Items[j].Name = name
	return col.Replace(i, c)
}

// RemoveItem deletes item j from the checklist at i.
func (col *Collection) RemoveItem(i, j int) error {
	c, err := col.Get(i)
	if err != nil {
		return err
	}
	if j < 0 || j >= len(c.Items) {
		return fmt.Errorf("item %d: %w", j, ErrIndexOutOfRange)
	}
	items := make([]Item, 0, len(c.Items)-1)
	items = append(items, c.Items[:j]...)
	items = append(items, c.Items[j+1:]...)
	c.Items = items
	if c.ExecutionLastIndex > j {
		c.ExecutionLastIndex--
	}
	return col.Replace(i, c)
}
