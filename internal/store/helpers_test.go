package store

import (
	"context"
	"testing"
	"time"

	"github.com/pablasso/listo/internal/checklist"
)

var epoch = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func seed(t *testing.T, s Store, names ...string) {
	t.Helper()
	err := s.Update(context.Background(), func(col *checklist.Collection) error {
		for _, n := range names {
			col.Add(checklist.New(n, n+" item"))
		}
		return nil
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
}
