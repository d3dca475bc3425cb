package lockfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestAcquireRecordsHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	lock, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	holder, err := ReadHolder(path)
	if err != nil {
		t.Fatalf("ReadHolder: %v", err)
	}
	if holder.PID != os.Getpid() {
		t.Errorf("holder pid = %d, want %d", holder.PID, os.Getpid())
	}
	if holder.Hostname == "" {
		t.Error("holder hostname empty")
	}
	if holder.StartedAt.IsZero() {
		t.Error("holder started_at not set")
	}
	if !holder.Alive() {
		t.Error("own process reported dead")
	}
}

func TestTimeoutErrorNamesHolder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")

	lock, err := Acquire(path, time.Second)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer lock.Release()

	_, err = Acquire(path, 50*time.Millisecond)
	if err == nil {
		t.Fatal("second acquire succeeded while held")
	}
	if !strings.Contains(err.Error(), "held by pid") {
		t.Errorf("timeout error %q does not name the holder", err)
	}
}

func TestReadHolderMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.lock")
	if err := os.WriteFile(path, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadHolder(path); err == nil {
		t.Error("expected error for malformed holder")
	}
}

func TestDeadPIDNotAlive(t *testing.T) {
	hostname, err := os.Hostname()
	if err != nil {
		t.Skip("no hostname")
	}
	// PID beyond the default pid_max on Linux; certainly not running.
	holder := &Holder{PID: 1 << 30, Hostname: hostname}
	if holder.Alive() {
		t.Error("absurd pid reported alive")
	}

	remote := &Holder{PID: 1 << 30, Hostname: "some-other-host"}
	if !remote.Alive() {
		t.Error("remote holder must be assumed alive")
	}
}
