// Package lockfile provides the cross-process advisory lock that
// serializes access to a data directory. Holding the flock is the
// only thing that matters for exclusion, so a crashed process
// releases the lock automatically when its descriptors close. The
// file's content is advisory holder metadata written on acquisition,
// used to report who holds the lock when acquisition times out.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// ErrTimeout is returned when the lock cannot be acquired within the
// deadline. The caller decides whether to retry.
var ErrTimeout = errors.New("timed out waiting for lock")

// retryInterval is the poll interval between non-blocking acquisition
// attempts.
const retryInterval = 25 * time.Millisecond

// Lock is a held exclusive lock on a lock file.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes an exclusive lock on path, waiting up to timeout.
// A timeout <= 0 means a single non-blocking attempt.
func Acquire(path string, timeout time.Duration) (*Lock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := flockExclusive(f)
		if err == nil {
			writeHolder(f)
			return &Lock{file: f, path: path}, nil
		}
		if !errors.Is(err, errLocked) {
			_ = f.Close()
			return nil, fmt.Errorf("lock %s: %w", path, err)
		}
		if !time.Now().Before(deadline) {
			_ = f.Close()
			if holder, err := ReadHolder(path); err == nil {
				return nil, fmt.Errorf("lock %s held by %s: %w", path, holder, ErrTimeout)
			}
			return nil, fmt.Errorf("lock %s: %w", path, ErrTimeout)
		}
		time.Sleep(retryInterval)
	}
}

// Release drops the lock. Safe to call once on every exit path.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := flockRelease(l.file)
	closeErr := l.file.Close()
	l.file = nil
	if err != nil {
		return err
	}
	return closeErr
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
