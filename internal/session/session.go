package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pablasso/listo/internal/skill"
)

// DefaultName is the session used by `listo say`.
const DefaultName = "default"

// Session remembers what the previous turn offered so the next
// invocation can continue the conversation.
type Session struct {
	Name      string              `json:"name"`
	Next      *skill.Continuation `json:"next,omitempty"` // nil once the interaction ended
	LastReply string              `json:"lastReply"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

// Storage manages session persistence.
type Storage struct {
	dir string
}

// NewStorage creates a storage instance for the given sessions directory.
func NewStorage(sessionsDir string) *Storage {
	return &Storage{dir: sessionsDir}
}

// Save persists a session to disk with atomic writes.
func (s *Storage) Save(session *Session) error {
	session.UpdatedAt = time.Now()

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create sessions directory: %w", err)
	}

	filename := s.sessionFilename(session.Name)
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Atomic write: write to temp file then rename
	tmpFile := filename + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write session temp file: %w", err)
	}
	if err := os.Rename(tmpFile, filename); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename session temp file: %w", err)
	}
	return nil
}

// Load retrieves a session by name. A missing session returns an error
// satisfying os.IsNotExist.
func (s *Storage) Load(name string) (*Session, error) {
	data, err := os.ReadFile(s.sessionFilename(name))
	if err != nil {
		return nil, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &session, nil
}

// Delete removes a session file. Returns nil if the file doesn't exist (idempotent).
func (s *Storage) Delete(name string) error {
	err := os.Remove(s.sessionFilename(name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// sessionFilename returns the path for a session file.
// Format: <dir>/<name>.json
func (s *Storage) sessionFilename(name string) string {
	return filepath.Join(s.dir, name+".json")
}
