package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pablasso/listo/internal/checklist"
)

// ErrInvalidBackup is returned when imported data cannot be used. The
// store is left untouched in that case.
var ErrInvalidBackup = errors.New("invalid checklist backup")

// Export writes the whole collection as human-readable JSON.
func Export(ctx context.Context, s Store, w io.Writer) error {
	col, err := s.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load checklists: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(col); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}

// Import appends the checklists of a JSON backup to the collection and
// returns how many were added. The imported last-used index is kept,
// shifted past the checklists that were already there.
func Import(ctx context.Context, s Store, r io.Reader) (int, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var loaded checklist.Collection
	if err := dec.Decode(&loaded); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if err := normalize(&loaded); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}

	err := s.Update(ctx, func(col *checklist.Collection) error {
		seen := make(map[string]bool, len(col.Checklists))
		for _, c := range col.Checklists {
			seen[c.ID] = true
		}

		col.LastUsedIndex = loaded.LastUsedIndex + len(col.Checklists)
		for _, c := range loaded.Checklists {
			if c.ID == "" || seen[c.ID] {
				c.ID = uuid.NewString()
			}
			seen[c.ID] = true
			col.Add(c)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(loaded.Checklists), nil
}
