// Package storage persists issues, dependencies, and events as JSONL
// files in a data directory. Issues and dependencies are full
// snapshots rewritten wholesale on every save; events are an
// append-only log. Storage holds no state between calls — callers
// serialize access with the data directory's lock file.
package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spool-project/spool/internal/types"
)

const (
	issuesFile       = "issues.jsonl"
	dependenciesFile = "dependencies.jsonl"
	eventsFile       = "events.jsonl"
)

// maxLineBytes bounds a single JSONL record. Large descriptions fit
// comfortably; anything bigger is treated as corruption.
const maxLineBytes = 4 * 1024 * 1024

// Storage reads and writes the on-disk representation under one data
// directory.
type Storage struct {
	dir string
}

// New returns a Storage rooted at dir. The directory is created if it
// does not exist.
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Dir returns the data directory path.
func (s *Storage) Dir() string {
	return s.dir
}

// LoadIssues reads the full issue snapshot. A missing file loads as an
// empty slice; a malformed record is a fatal read error.
func (s *Storage) LoadIssues() ([]*types.Issue, error) {
	var issues []*types.Issue
	err := readJSONL(filepath.Join(s.dir, issuesFile), func(line []byte, lineno int) error {
		var issue types.Issue
		if err := json.Unmarshal(line, &issue); err != nil {
			return fmt.Errorf("issue record at line %d: %w", lineno, err)
		}
		issues = append(issues, &issue)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return issues, nil
}

// SaveIssues rewrites the full issue snapshot. Issues are written
// sorted by ID for stable diffs. The write goes through a temp file
// and rename so a crashed writer never leaves a torn snapshot.
func (s *Storage) SaveIssues(issues []*types.Issue) error {
	sorted := make([]*types.Issue, len(issues))
	copy(sorted, issues)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	records := make([]any, len(sorted))
	for i, issue := range sorted {
		records[i] = issue
	}
	return writeJSONL(filepath.Join(s.dir, issuesFile), records)
}

// LoadDependencies reads the full dependency snapshot.
func (s *Storage) LoadDependencies() ([]*types.Dependency, error) {
	var deps []*types.Dependency
	err := readJSONL(filepath.Join(s.dir, dependenciesFile), func(line []byte, lineno int) error {
		var dep types.Dependency
		if err := json.Unmarshal(line, &dep); err != nil {
			return fmt.Errorf("dependency record at line %d: %w", lineno, err)
		}
		deps = append(deps, &dep)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deps, nil
}

// SaveDependencies rewrites the full dependency snapshot, sorted by
// (from_id, to_id) for stable diffs.
func (s *Storage) SaveDependencies(deps []*types.Dependency) error {
	sorted := make([]*types.Dependency, len(deps))
	copy(sorted, deps)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].FromID != sorted[j].FromID {
			return sorted[i].FromID < sorted[j].FromID
		}
		return sorted[i].ToID < sorted[j].ToID
	})
	records := make([]any, len(sorted))
	for i, dep := range sorted {
		records[i] = dep
	}
	return writeJSONL(filepath.Join(s.dir, dependenciesFile), records)
}

// AppendEvent appends one event record to the log.
func (s *Storage) AppendEvent(event *types.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(s.dir, eventsFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open event log: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return f.Sync()
}

// LoadEvents reads all events in append order.
func (s *Storage) LoadEvents() ([]*types.Event, error) {
	var events []*types.Event
	err := readJSONL(filepath.Join(s.dir, eventsFile), func(line []byte, lineno int) error {
		var event types.Event
		if err := json.Unmarshal(line, &event); err != nil {
			return fmt.Errorf("event record at line %d: %w", lineno, err)
		}
		events = append(events, &event)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// readJSONL calls fn for each non-empty line of path. A missing file
// is not an error.
func readJSONL(path string, fn func(line []byte, lineno int) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open %s: %w", filepath.Base(path), err)
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line, lineno); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	return nil
}

// writeJSONL writes records to a temp file in the same directory and
// renames it into place.
func writeJSONL(path string, records []any) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	for _, record := range records {
		if err := enc.Encode(record); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("encode record: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
