// Package store persists the checklist collection. Every change is a
// whole-collection read-modify-write transaction: concurrent callers are
// serialized and a failed transaction writes nothing.
package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/pablasso/listo/internal/checklist"
	"github.com/pablasso/listo/internal/config"
)

const (
	jsonFileName   = "checklists.json"
	sqliteFileName = "checklists.db"
)

// Store is the persisted checklist collection.
type Store interface {
	// Load returns a snapshot of the collection.
	Load(ctx context.Context) (checklist.Collection, error)
	// Update applies fn to the current collection and saves the result.
	// Nothing is written if fn returns an error.
	Update(ctx context.Context, fn func(col *checklist.Collection) error) error
	Close() error
}

// Open creates the store selected by cfg inside cfg.DataDir.
func Open(cfg config.Config) (Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	switch cfg.Store.Backend {
	case config.BackendSQLite:
		return OpenSQLite(filepath.Join(cfg.DataDir, sqliteFileName))
	default:
		return NewFileStore(filepath.Join(cfg.DataDir, jsonFileName)), nil
	}
}

// emptyCollection is what a corrupted or missing store starts from.
func emptyCollection() checklist.Collection {
	return checklist.Collection{Checklists: []checklist.Checklist{}}
}

// recoverCorrupt logs why persisted data was discarded.
func recoverCorrupt(source string, err error) checklist.Collection {
	log.Warn("discarding corrupted checklist data", "source", source, "err", err)
	return emptyCollection()
}

// normalize validates every checklist loaded from disk. Checklists
// written without an ID get one derived from their position and name, so
// repeated reads agree on it until it is persisted.
func normalize(col *checklist.Collection) error {
	if col.Checklists == nil {
		col.Checklists = []checklist.Checklist{}
	}
	for i := range col.Checklists {
		c := &col.Checklists[i]
		if c.ID == "" {
			c.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("checklist:%d:%s", i, c.Name))).String()
		}
		if err := c.Normalize(); err != nil {
			return err
		}
	}
	return nil
}
