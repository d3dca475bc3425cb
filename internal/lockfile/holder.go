package lockfile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"
)

// Holder identifies the process that last acquired a lock file. A
// process blocked on the lock reads it to report who is in the way.
type Holder struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
}

func (h *Holder) String() string {
	return fmt.Sprintf("pid %d on %s since %s", h.PID, h.Hostname, h.StartedAt.Format(time.RFC3339))
}

// Alive reports whether the holder's process still exists. A holder
// on another host cannot be verified and is assumed alive; so is a
// local PID we lack permission to signal.
func (h *Holder) Alive() bool {
	currentHost, err := os.Hostname()
	if err != nil {
		return true
	}
	// FQDN vs short name
	if !strings.EqualFold(h.Hostname, currentHost) {
		return true
	}

	process, err := os.FindProcess(h.PID)
	if err != nil {
		return false
	}
	err = process.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}

// writeHolder records the current process in the held lock file.
// Failures are ignored; the metadata is advisory.
func writeHolder(f *os.File) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	data, err := json.Marshal(Holder{
		PID:       os.Getpid(),
		Hostname:  hostname,
		StartedAt: time.Now(),
	})
	if err != nil {
		return
	}
	if err := f.Truncate(0); err != nil {
		return
	}
	_, _ = f.WriteAt(append(data, '\n'), 0)
}

// ReadHolder reads the holder metadata from a lock file. The content
// may be empty or stale when no process currently holds the flock.
func ReadHolder(path string) (*Holder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var holder Holder
	if err := json.Unmarshal(data, &holder); err != nil {
		return nil, fmt.Errorf("malformed lock holder in %s: %w", path, err)
	}
	return &holder, nil
}
