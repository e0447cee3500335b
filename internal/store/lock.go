package store

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const lockPollInterval = 20 * time.Millisecond

// fileLock is a PID lock file that keeps other processes out of a store
// while a transaction runs. Locks left behind by dead processes are
// removed.
type fileLock struct {
	path string
}

func newFileLock(path string) *fileLock {
	return &fileLock{path: path}
}

// Acquire waits until the lock is free or ctx is done.
func (l *fileLock) Acquire(ctx context.Context) error {
	for {
		held, err := l.tryAcquire()
		if err != nil {
			return err
		}
		if !held {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to acquire store lock: %w", ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

// tryAcquire returns held=true when a live process owns the lock.
func (l *fileLock) tryAcquire() (held bool, err error) {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		_, writeErr := fmt.Fprintf(f, "%d", os.Getpid())
		f.Close()
		if writeErr != nil {
			os.Remove(l.path)
			return false, fmt.Errorf("failed to write lock file: %w", writeErr)
		}
		return false, nil
	}
	if !os.IsExist(err) {
		return false, fmt.Errorf("failed to create lock file: %w", err)
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Released between our create and read.
			return true, nil
		}
		return false, fmt.Errorf("failed to read existing lock file: %w", err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" && l.recentlyCreated() {
		// The owner has not written its PID yet.
		return true, nil
	}

	pid, parseErr := strconv.Atoi(content)
	if parseErr == nil && pid > 0 && processExists(pid) {
		return true, nil
	}

	// Invalid or stale. Remove it and let the next poll race for it.
	if err := l.removeStale(content); err != nil {
		return false, err
	}
	return true, nil
}

// removeStale deletes the lock file if it still holds the content that
// was judged stale. The file is moved aside first so the check and the
// delete see the same file. A lock that another process took over in the
// meantime is put back.
func (l *fileLock) removeStale(observed string) error {
	aside := fmt.Sprintf("%s.stale-%d-%d", l.path, os.Getpid(), time.Now().UnixNano())
	if err := os.Rename(l.path, aside); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to move stale lock file: %w", err)
	}
	defer os.Remove(aside)

	data, err := os.ReadFile(aside)
	if err != nil {
		return fmt.Errorf("failed to read stale lock file: %w", err)
	}
	if strings.TrimSpace(string(data)) == observed {
		return nil
	}

	// Link fails if a newer lock already exists, which then wins.
	if err := os.Link(aside, l.path); err != nil && !os.IsExist(err) {
		return fmt.Errorf("failed to restore lock file: %w", err)
	}
	return nil
}

// Release removes the lock file. Releasing twice is fine.
func (l *fileLock) Release() error {
	err := os.Remove(l.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	return nil
}

func (l *fileLock) recentlyCreated() bool {
	info, err := os.Stat(l.path)
	return err == nil && time.Since(info.ModTime()) < time.Second
}

// processExists checks if a process with the given PID is running.
// Signal 0 checks for existence without delivering anything.
func processExists(pid int) bool {
	if pid == os.Getpid() {
		return true
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
