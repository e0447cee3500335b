package cli

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pablasso/listo/internal/checklist"
	"github.com/pablasso/listo/internal/config"
	"github.com/pablasso/listo/internal/testutil"
)

// writeConfig points listo at a fresh data directory and returns the
// config file path.
func writeConfig(t *testing.T, backend string) string {
	t.Helper()
	dir := testutil.SetupTestDir(t)
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf("data_dir = %q\n\n[store]\nbackend = %q\n", filepath.Join(dir, "data"), backend)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", cfgPath))
	err := rootCmd.Execute()
	return out.String(), err
}

func mustExecute(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := execute(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("listo %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestChecklistCommands(t *testing.T) {
	for _, backend := range []string{config.BackendJSON, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := writeConfig(t, backend)

			out := mustExecute(t, cfg, "list")
			if !strings.Contains(out, "No checklists defined.") {
				t.Errorf("list on empty store = %q", out)
			}

			mustExecute(t, cfg, "create", "Chores", "Walk dog", "Feed cat")
			if _, err := execute(t, cfg, "create", "chores"); err == nil {
				t.Error("expected duplicate create to fail")
			}

			mustExecute(t, cfg, "item", "add", "Chores", "Water", "plants")
			out = mustExecute(t, cfg, "show", "chores")
			for _, want := range []string{"Chores (not started)", "1. Walk dog", "3. Water plants"} {
				if !strings.Contains(out, want) {
					t.Errorf("show missing %q:\n%s", want, out)
				}
			}

			mustExecute(t, cfg, "item", "remove", "Chores", "2")
			out = mustExecute(t, cfg, "show", "Chores")
			if strings.Contains(out, "Feed cat") {
				t.Errorf("item not removed:\n%s", out)
			}

			_, err := execute(t, cfg, "item", "remove", "Chores", "9")
			if !errors.Is(err, checklist.ErrIndexOutOfRange) {
				t.Errorf("remove out of range err = %v", err)
			}

			mustExecute(t, cfg, "item", "edit", "Chores", "2", "Water", "the", "ferns")
			out = mustExecute(t, cfg, "show", "Chores")
			if !strings.Contains(out, "2. Water the ferns") || strings.Contains(out, "plants") {
				t.Errorf("item not edited:\n%s", out)
			}
			if _, err := execute(t, cfg, "item", "edit", "Chores", "0", "x"); err == nil {
				t.Error("expected item 0 to be rejected")
			}

			mustExecute(t, cfg, "rename", "Chores", "House")
			out = mustExecute(t, cfg, "list")
			if !strings.Contains(out, "House") || !strings.Contains(out, "0/2") {
				t.Errorf("list after rename:\n%s", out)
			}

			mustExecute(t, cfg, "delete", "house")
			_, err = execute(t, cfg, "show", "House")
			if !errors.Is(err, checklist.ErrNotFound) {
				t.Errorf("show deleted err = %v", err)
			}
		})
	}
}

func TestSayConversation(t *testing.T) {
	cfg := writeConfig(t, config.BackendJSON)
	mustExecute(t, cfg, "create", "Chores", "Walk dog", "Feed cat")

	out := mustExecute(t, cfg, "say", "start", "the", "chores", "checklist")
	if !strings.Contains(out, "I'll start the checklist for Chores.") || !strings.Contains(out, "Item 1. Walk dog") {
		t.Errorf("start reply = %q", out)
	}

	out = mustExecute(t, cfg, "say", "done")
	if strings.TrimSpace(out) != "Feed cat" {
		t.Errorf("done reply = %q, want Feed cat", out)
	}

	out = mustExecute(t, cfg, "say", "repeat")
	if strings.TrimSpace(out) != "Feed cat" {
		t.Errorf("repeat reply = %q", out)
	}

	out = mustExecute(t, cfg, "say", "done")
	if !strings.HasPrefix(strings.TrimSpace(out), "Checklist complete.") {
		t.Errorf("final reply = %q", out)
	}

	// the interaction ended, so "done" no longer means anything
	out = mustExecute(t, cfg, "say", "done")
	if strings.TrimSpace(out) != "Sorry, I didn't understand that." {
		t.Errorf("reply after completion = %q", out)
	}

	out = mustExecute(t, cfg, "history", "--limit", "0")
	for _, want := range []string{"checklist_started", "item_completed", "checklist_completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("history missing %s:\n%s", want, out)
		}
	}
}

func TestSayConfirmation(t *testing.T) {
	cfg := writeConfig(t, config.BackendJSON)
	mustExecute(t, cfg, "create", "Groceries", "Buy milk")

	out := mustExecute(t, cfg, "say", "start", "grocery", "shopping")
	if strings.TrimSpace(out) != "Do you want to start the Groceries checklist?" {
		t.Fatalf("reply = %q", out)
	}

	out = mustExecute(t, cfg, "say", "yes")
	if !strings.Contains(out, "Item 1. Buy milk") {
		t.Errorf("reply after yes = %q", out)
	}

	out = mustExecute(t, cfg, "say", "that's", "all")
	if strings.TrimSpace(out) != "Okay, that's all for now." {
		t.Errorf("abort reply = %q", out)
	}

	out = mustExecute(t, cfg, "say", "continue")
	if !strings.Contains(out, "Let's continue with the checklist for Groceries") {
		t.Errorf("resume reply = %q", out)
	}
}

func TestSayFollowsChecklistAfterDelete(t *testing.T) {
	cfg := writeConfig(t, config.BackendJSON)
	mustExecute(t, cfg, "create", "Alpha", "a1")
	mustExecute(t, cfg, "create", "Bravo", "b1", "b2")
	mustExecute(t, cfg, "create", "Charlie", "c1")

	mustExecute(t, cfg, "say", "start", "bravo")
	mustExecute(t, cfg, "delete", "Alpha")

	out := mustExecute(t, cfg, "say", "done")
	if strings.TrimSpace(out) != "b2" {
		t.Errorf("done reply = %q, want b2", out)
	}

	out = mustExecute(t, cfg, "show", "Charlie")
	if !strings.Contains(out, "Charlie (not started)") {
		t.Errorf("Charlie was touched:\n%s", out)
	}
}

func TestDefine(t *testing.T) {
	cfg := writeConfig(t, config.BackendJSON)
	mustExecute(t, cfg, "create", "Groceries", "Buy milk")

	defs := `checklists:
  - name: groceries
    items: [Buy eggs, Buy bread]
  - name: Morning
    items: [Stretch]
`
	if err := os.WriteFile("defs.yaml", []byte(defs), 0644); err != nil {
		t.Fatal(err)
	}

	out := mustExecute(t, cfg, "define", "defs.yaml")
	if !strings.Contains(out, "Created 1, replaced 1") {
		t.Errorf("define = %q", out)
	}

	out = mustExecute(t, cfg, "show", "Groceries")
	if strings.Contains(out, "Buy milk") || !strings.Contains(out, "2. Buy bread") {
		t.Errorf("groceries not replaced:\n%s", out)
	}
}

func TestExportImport(t *testing.T) {
	cfg := writeConfig(t, config.BackendJSON)
	mustExecute(t, cfg, "create", "Chores", "Walk dog")
	mustExecute(t, cfg, "export", "backup.json")

	if _, err := os.Stat("backup.json"); err != nil {
		t.Fatalf("backup not written: %v", err)
	}

	out := mustExecute(t, cfg, "import", "backup.json")
	if !strings.Contains(out, "Imported 1 checklists.") {
		t.Errorf("import = %q", out)
	}

	out = mustExecute(t, cfg, "export", "-")
	if strings.Count(out, `"name": "Chores"`) != 2 {
		t.Errorf("expected two Chores after import:\n%s", out)
	}

	os.WriteFile("bad.json", []byte(`{"checklists": 5}`), 0644)
	if _, err := execute(t, cfg, "import", "bad.json"); err == nil {
		t.Error("expected malformed backup to fail")
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := writeConfig(t, "postgres")
	if _, err := execute(t, cfg, "list"); err == nil {
		t.Error("expected unknown backend to fail")
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"just now for less than a minute", 30 * time.Second, "just now"},
		{"5 minutes ago", 5 * time.Minute, "5m ago"},
		{"5 hours ago", 5 * time.Hour, "5h ago"},
		{"3 days ago", 72 * time.Hour, "3d ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatAge(time.Now().Add(-tt.duration))
			if got != tt.want {
				t.Errorf("formatAge() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("never run", func(t *testing.T) {
		if got := formatAge(time.Time{}); got != "never" {
			t.Errorf("formatAge(zero) = %q", got)
		}
	})
}
