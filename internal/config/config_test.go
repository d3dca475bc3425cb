package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// chdir changes to dir for the duration of the test, like t.Chdir
// (which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func TestDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if GetBool("json") {
		t.Error("json default = true, want false")
	}
	if got := GetDuration("lock-timeout"); got != 10*time.Second {
		t.Errorf("lock-timeout default = %v, want 10s", got)
	}
	if got := GetString("actor"); got != "" {
		t.Errorf("actor default = %q, want empty", got)
	}
}

func TestEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SPOOL_ACTOR", "env-agent")
	t.Setenv("SPOOL_LOCK_TIMEOUT", "3s")

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := GetString("actor"); got != "env-agent" {
		t.Errorf("actor = %q, want env-agent", got)
	}
	if got := GetDuration("lock-timeout"); got != 3*time.Second {
		t.Errorf("lock-timeout = %v, want 3s", got)
	}
}

func TestConfigFileDiscoveredByWalkingUp(t *testing.T) {
	root := t.TempDir()
	spoolDir := filepath.Join(root, ".spool")
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := "actor: file-agent\nformat-version: v1.0.0\n"
	if err := os.WriteFile(filepath.Join(spoolDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	// Run from a nested subdirectory; discovery walks up to root.
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	chdir(t, nested)

	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if got := GetString("actor"); got != "file-agent" {
		t.Errorf("actor = %q, want file-agent", got)
	}
	if got := GetString("format-version"); got != "v1.0.0" {
		t.Errorf("format-version = %q", got)
	}
	if ConfigFileUsed() == "" {
		t.Error("no config file recorded as used")
	}
}
