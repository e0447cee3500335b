package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/pablasso/listo/internal/checklist"
	"github.com/pablasso/listo/internal/config"
)

type backend struct {
	name string
	open func(t *testing.T, dir string) Store
}

var backends = []backend{
	{
		name: "json",
		open: func(t *testing.T, dir string) Store {
			return NewFileStore(filepath.Join(dir, jsonFileName))
		},
	},
	{
		name: "sqlite",
		open: func(t *testing.T, dir string) Store {
			s, err := OpenSQLite(filepath.Join(dir, sqliteFileName))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			return s
		},
	},
}

func forEachBackend(t *testing.T, fn func(t *testing.T, dir string, open func() Store)) {
	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			dir := t.TempDir()
			var opened []Store
			open := func() Store {
				s := b.open(t, dir)
				opened = append(opened, s)
				return s
			}
			t.Cleanup(func() {
				for _, s := range opened {
					s.Close()
				}
			})
			fn(t, dir, open)
		})
	}
}

func TestLoadEmpty(t *testing.T) {
	forEachBackend(t, func(t *testing.T, dir string, open func() Store) {
		col, err := open().Load(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(col.Checklists) != 0 || col.HasLastUsed() {
			t.Errorf("expected empty collection, got %+v", col)
		}
	})
}

func TestUpdatePersists(t *testing.T) {
	forEachBackend(t, func(t *testing.T, dir string, open func() Store) {
		ctx := context.Background()
		s := open()

		err := s.Update(ctx, func(col *checklist.Collection) error {
			c := checklist.New("Groceries", "Buy milk", "Walk dog")
			c.ExecutionState = checklist.StateInProgress
			c.ExecutionStartedAt = epoch
			c.ExecutionLastIndex = 1
			c.Items[0].ExecutionState = checklist.ItemCompleted
			c.Items[0].ExecutionLastChanged = epoch
			col.LastUsedIndex = col.Add(c)
			col.Add(checklist.New("Empty"))
			return nil
		})
		if err != nil {
			t.Fatalf("Update: %v", err)
		}

		col, err := open().Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(col.Checklists) != 2 || col.LastUsedIndex != 0 {
			t.Fatalf("got %+v", col)
		}
		c := col.Checklists[0]
		if c.Name != "Groceries" || c.ExecutionState != checklist.StateInProgress || c.ExecutionLastIndex != 1 {
			t.Errorf("checklist = %+v", c)
		}
		if !c.ExecutionStartedAt.Equal(epoch) || !c.Items[0].ExecutionLastChanged.Equal(epoch) {
			t.Errorf("timestamps not preserved: %v %v", c.ExecutionStartedAt, c.Items[0].ExecutionLastChanged)
		}
		if len(c.Items) != 2 || c.Items[1].Name != "Walk dog" || c.Items[0].ExecutionState != checklist.ItemCompleted {
			t.Errorf("items = %+v", c.Items)
		}
		if len(col.Checklists[1].Items) != 0 {
			t.Errorf("empty checklist got items %+v", col.Checklists[1].Items)
		}
	})
}

func TestUpdateFailureWritesNothing(t *testing.T) {
	forEachBackend(t, func(t *testing.T, dir string, open func() Store) {
		ctx := context.Background()
		s := open()
		seed(t, s, "Groceries")

		boom := errors.New("boom")
		err := s.Update(ctx, func(col *checklist.Collection) error {
			col.Add(checklist.New("Chores"))
			col.Checklists[0].Name = "Changed"
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("err = %v, want boom", err)
		}

		col, _ := s.Load(ctx)
		if len(col.Checklists) != 1 || col.Checklists[0].Name != "Groceries" {
			t.Errorf("collection changed: %+v", col)
		}
	})
}

func TestConcurrentUpdatesAreSerialized(t *testing.T) {
	forEachBackend(t, func(t *testing.T, dir string, open func() Store) {
		ctx := context.Background()
		stores := []Store{open(), open()}

		const writers = 20
		var wg sync.WaitGroup
		errs := make(chan error, writers)
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func(s Store) {
				defer wg.Done()
				errs <- s.Update(ctx, func(col *checklist.Collection) error {
					col.Add(checklist.New("list"))
					return nil
				})
			}(stores[i%len(stores)])
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
		}

		col, err := stores[0].Load(ctx)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if len(col.Checklists) != writers {
			t.Errorf("got %d checklists, want %d (lost updates)", len(col.Checklists), writers)
		}
	})
}

func TestFileStoreRecoversFromCorruption(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{{{"},
		{"unknown state", `{"checklists":[{"name":"a","executionState":"exploded","items":[]}]}`},
		{"cursor out of range", `{"checklists":[{"name":"a","executionState":"in_progress","executionLastIndex":7,"items":[]}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), jsonFileName)
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}

			s := NewFileStore(path)
			col, err := s.Load(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(col.Checklists) != 0 {
				t.Errorf("expected empty collection, got %+v", col)
			}

			// The next update starts from the empty collection.
			seed(t, s, "Fresh")
			col, _ = s.Load(context.Background())
			if len(col.Checklists) != 1 {
				t.Errorf("got %+v", col)
			}
		})
	}
}

func TestSQLiteStoreRecoversFromCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), sqliteFileName)
	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()
	seed(t, s, "Groceries")

	if _, err := s.db.Exec(`UPDATE checklists SET execution_started_at = 'yesterday'`); err != nil {
		t.Fatal(err)
	}

	col, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(col.Checklists) != 0 {
		t.Errorf("expected empty collection, got %+v", col)
	}
}

func TestOpen(t *testing.T) {
	for _, backendName := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(backendName, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "nested", "data")
			s, err := Open(config.Config{DataDir: dir, Store: config.StoreConfig{Backend: backendName}})
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer s.Close()
			seed(t, s, "Groceries")

			entries, err := os.ReadDir(dir)
			if err != nil || len(entries) == 0 {
				t.Errorf("expected files in %s: %v", dir, err)
			}
		})
	}
}
