package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileLock(t *testing.T) {
	t.Run("acquire and release", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.lock")
		l := newFileLock(path)

		if err := l.Acquire(context.Background()); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("lock file missing: %v", err)
		}
		if string(data) != fmt.Sprintf("%d", os.Getpid()) {
			t.Errorf("lock content = %q", data)
		}

		if err := l.Release(); err != nil {
			t.Fatalf("Release: %v", err)
		}
		if err := l.Release(); err != nil {
			t.Errorf("second Release: %v", err)
		}
	})

	t.Run("waits for a live holder", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.lock")
		if err := os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		if err := newFileLock(path).Acquire(ctx); err == nil {
			t.Fatal("expected timeout while lock is held")
		}
	})

	t.Run("acquires after holder releases", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.lock")
		holder := newFileLock(path)
		if err := holder.Acquire(context.Background()); err != nil {
			t.Fatal(err)
		}
		go func() {
			time.Sleep(50 * time.Millisecond)
			holder.Release()
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := newFileLock(path).Acquire(ctx); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
	})

	t.Run("removes stale lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.lock")
		if err := os.WriteFile(path, []byte("999999999"), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := newFileLock(path).Acquire(ctx); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
	})

	t.Run("removes invalid lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.lock")
		if err := os.WriteFile(path, []byte("not-a-pid"), 0644); err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := newFileLock(path).Acquire(ctx); err != nil {
			t.Fatalf("Acquire: %v", err)
		}
	})

	t.Run("stale removal keeps a lock taken over meanwhile", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "x.lock")
		live := fmt.Sprintf("%d", os.Getpid())
		if err := os.WriteFile(path, []byte(live), 0644); err != nil {
			t.Fatal(err)
		}

		// The caller judged "999999999" stale, but the file now holds a
		// live owner.
		if err := newFileLock(path).removeStale("999999999"); err != nil {
			t.Fatalf("removeStale: %v", err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("live lock was removed: %v", err)
		}
		if string(data) != live {
			t.Errorf("lock content = %q, want %q", data, live)
		}
		assertOnlyLock(t, dir)
	})

	t.Run("stale removal deletes the observed lock", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "x.lock")
		if err := os.WriteFile(path, []byte("999999999"), 0644); err != nil {
			t.Fatal(err)
		}

		if err := newFileLock(path).removeStale("999999999"); err != nil {
			t.Fatalf("removeStale: %v", err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("stale lock still present: %v", err)
		}
		entries, _ := os.ReadDir(dir)
		if len(entries) != 0 {
			t.Errorf("leftover files: %v", entries)
		}
	})

	t.Run("stale removal of a missing lock", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "x.lock")
		if err := newFileLock(path).removeStale("1"); err != nil {
			t.Errorf("removeStale: %v", err)
		}
	})
}

func assertOnlyLock(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "x.lock" {
		t.Errorf("unexpected files: %v", entries)
	}
}
