package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LISTO_CONFIG", "")

	c, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.DataDir != filepath.Join(home, ".local", "share", "listo") {
		t.Errorf("DataDir = %q", c.DataDir)
	}
	if c.Store.Backend != BackendJSON {
		t.Errorf("Backend = %q", c.Store.Backend)
	}
	if c.Lookup.MinSimilarity != 0.6 {
		t.Errorf("MinSimilarity = %v", c.Lookup.MinSimilarity)
	}
	if c.Log.Level != "info" {
		t.Errorf("Level = %q", c.Log.Level)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
data_dir = "/tmp/listo-test"
timezone = "UTC"

[store]
backend = "sqlite"

[lookup]
min_similarity = 0.8
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	t.Run("file values", func(t *testing.T) {
		c, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.DataDir != "/tmp/listo-test" || c.Store.Backend != BackendSQLite || c.Lookup.MinSimilarity != 0.8 {
			t.Errorf("got %+v", c)
		}
		loc, err := c.Location()
		if err != nil || loc.String() != "UTC" {
			t.Errorf("Location = %v, %v", loc, err)
		}
	})

	t.Run("env overrides file", func(t *testing.T) {
		t.Setenv("LISTO_LOOKUP_MIN_SIMILARITY", "0.5")
		t.Setenv("LISTO_STORE_BACKEND", "json")

		c, err := Load(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.Lookup.MinSimilarity != 0.5 || c.Store.Backend != BackendJSON {
			t.Errorf("got %+v", c)
		}
	})
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("LISTO_CONFIG", "")

	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"backend", "LISTO_STORE_BACKEND", "postgres"},
		{"similarity below range", "LISTO_LOOKUP_MIN_SIMILARITY", "-0.1"},
		{"similarity above range", "LISTO_LOOKUP_MIN_SIMILARITY", "1.5"},
		{"timezone", "LISTO_TIMEZONE", "Mars/Olympus"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.val)
			if _, err := Load(""); err == nil {
				t.Error("expected error")
			}
		})
	}

	t.Run("missing explicit file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error")
		}
	})
}
