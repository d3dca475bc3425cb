// Package tracker implements the issue engine: every operation
// acquires the data directory's cross-process lock, rebuilds the
// in-memory index from storage, mutates or queries it, persists any
// changed snapshot, and releases the lock. Audit events are appended
// after release so event emission can never roll back a persisted
// mutation.
package tracker

import (
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spool-project/spool/internal/debug"
	"github.com/spool-project/spool/internal/graph"
	"github.com/spool-project/spool/internal/index"
	"github.com/spool-project/spool/internal/lockfile"
	"github.com/spool-project/spool/internal/storage"
	"github.com/spool-project/spool/internal/types"
)

// DefaultLockTimeout bounds how long an operation waits for the data
// directory lock before reporting failure.
const DefaultLockTimeout = 10 * time.Second

const lockFileName = ".issues.lock"

const sessionResumeHint = "Resume one of these sessions to recover working context for this issue"

// Manager is the sole entry point to the issue store. It holds no
// issue state between operations; consistency across processes comes
// from the lock-load-mutate-persist cycle, not from caching.
type Manager struct {
	dataDir     string
	actor       string
	sessionID   string
	lockPath    string
	lockTimeout time.Duration
	store       *storage.Storage
}

// Option configures a Manager.
type Option func(*Manager)

// WithActor sets the actor recorded on emitted events.
func WithActor(actor string) Option {
	return func(m *Manager) {
		if actor != "" {
			m.actor = actor
		}
	}
}

// WithSessionID links emitted events to an external session.
func WithSessionID(sessionID string) Option {
	return func(m *Manager) { m.sessionID = sessionID }
}

// WithLockTimeout overrides the lock acquisition timeout.
func WithLockTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.lockTimeout = timeout
		}
	}
}

// New returns a Manager over the given data directory, creating the
// directory if needed.
func New(dataDir string, opts ...Option) (*Manager, error) {
	store, err := storage.New(dataDir)
	if err != nil {
		return nil, err
	}
	m := &Manager{
		dataDir:     dataDir,
		actor:       "system",
		lockPath:    filepath.Join(store.Dir(), lockFileName),
		lockTimeout: DefaultLockTimeout,
		store:       store,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// DataDir returns the data directory path.
func (m *Manager) DataDir() string {
	return m.dataDir
}

// loadIndex builds a fresh index from storage. Must be called with the
// lock held.
func (m *Manager) loadIndex() (*index.Index, error) {
	ix := index.New()
	issues, err := m.store.LoadIssues()
	if err != nil {
		return nil, err
	}
	for _, issue := range issues {
		ix.AddIssue(issue)
	}
	deps, err := m.store.LoadDependencies()
	if err != nil {
		return nil, err
	}
	for _, dep := range deps {
		ix.AddDependency(dep)
	}
	return ix, nil
}

// persist selects which snapshots a locked operation writes back.
type persist int

const (
	persistNothing persist = iota
	persistIssues
	persistDependencies
)

// withLock runs fn against a fresh index under the data directory
// lock, persisting the selected snapshot only when fn succeeds. The
// lock is released on every exit path.
func (m *Manager) withLock(save persist, fn func(ix *index.Index) error) error {
	lock, err := lockfile.Acquire(m.lockPath, m.lockTimeout)
	if err != nil {
		return fmt.Errorf("acquire issue lock: %w", err)
	}
	defer func() { _ = lock.Release() }()

	ix, err := m.loadIndex()
	if err != nil {
		return err
	}
	if err := fn(ix); err != nil {
		return err
	}
	switch save {
	case persistIssues:
		return m.store.SaveIssues(ix.Issues())
	case persistDependencies:
		return m.store.SaveDependencies(ix.GetAllDependencies())
	}
	return nil
}

// emitEvent appends an audit event outside the lock. The mutation is
// already persisted when this runs.
func (m *Manager) emitEvent(issueID string, eventType types.EventType, changes types.ChangeSet) error {
	event := &types.Event{
		ID:        uuid.NewString(),
		IssueID:   issueID,
		EventType: eventType,
		Actor:     m.actor,
		Changes:   changes,
		Timestamp: time.Now(),
		SessionID: m.sessionID,
	}
	if err := m.store.AppendEvent(event); err != nil {
		return fmt.Errorf("append %s event for %s: %w", eventType, issueID, err)
	}
	debug.Logf("event %s %s actor=%s session=%s\n", eventType, issueID, m.actor, m.sessionID)
	return nil
}

// CreateRequest carries the fields accepted when creating an issue.
// Zero-value Priority means P0; the CLI applies the default of 2
// before calling.
type CreateRequest struct {
	Title          string
	Description    string
	Priority       int
	IssueType      types.IssueType
	Assignee       string
	ParentID       string
	DiscoveredFrom string
	Metadata       map[string]any
}

// Create validates the request, inserts a new issue with a generated
// ID, and emits a created event carrying the full issue. New issues
// always start open.
func (m *Manager) Create(req CreateRequest) (*types.Issue, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if req.Priority < 0 || req.Priority > 4 {
		return nil, fmt.Errorf("%w: priority must be 0-4 (got %d)", ErrValidation, req.Priority)
	}
	issueType := req.IssueType
	if issueType == "" {
		issueType = types.TypeTask
	}
	if !issueType.IsValid() {
		return nil, fmt.Errorf("%w: invalid issue type %q", ErrValidation, issueType)
	}

	now := time.Now()
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	issue := &types.Issue{
		ID:             uuid.NewString(),
		Title:          req.Title,
		Description:    req.Description,
		Status:         types.StatusOpen,
		Priority:       req.Priority,
		IssueType:      issueType,
		Assignee:       req.Assignee,
		CreatedAt:      now,
		UpdatedAt:      now,
		ParentID:       req.ParentID,
		DiscoveredFrom: req.DiscoveredFrom,
		Metadata:       metadata,
	}

	err := m.withLock(persistIssues, func(ix *index.Index) error {
		ix.AddIssue(issue)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := m.emitEvent(issue.ID, types.EventCreated, types.IssueSnapshot{Issue: issue}); err != nil {
		return issue, err
	}
	return issue, nil
}

// Get returns the issue with the given ID, or nil if it does not
// exist. Takes the lock so the caller sees a consistent snapshot.
func (m *Manager) Get(id string) (*types.Issue, error) {
	var found *types.Issue
	err := m.withLock(persistNothing, func(ix *index.Index) error {
		if issue := ix.GetIssue(id); issue != nil {
			found = issue.Clone()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// UpdateRequest carries the optional fields of an update. Nil fields
// are left unchanged; Metadata is merged into the existing map rather
// than replacing it.
type UpdateRequest struct {
	Title         *string
	Description   *string
	Status        *string
	Priority      *int
	Assignee      *string
	BlockingNotes *string
	Metadata      map[string]any
}

// Update applies the supplied fields to an existing issue, recording
// an old/new delta per field in the emitted updated event. Status
// values pass through alias normalization before validation.
// UpdatedAt is refreshed even when no field changed value.
func (m *Manager) Update(id string, req UpdateRequest) (*types.Issue, error) {
	if req.Priority != nil && (*req.Priority < 0 || *req.Priority > 4) {
		return nil, fmt.Errorf("%w: priority must be 0-4 (got %d)", ErrValidation, *req.Priority)
	}
	var status types.Status
	if req.Status != nil {
		status = types.NormalizeStatus(*req.Status)
		if !status.IsValid() {
			return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, *req.Status)
		}
	}

	changes := types.FieldChanges{Fields: map[string]types.FieldDelta{}}
	var updated *types.Issue
	err := m.withLock(persistIssues, func(ix *index.Index) error {
		issue := ix.GetIssue(id)
		if issue == nil {
			return fmt.Errorf("issue %s: %w", id, ErrNotFound)
		}

		if req.Title != nil {
			changes.Fields["title"] = types.FieldDelta{Old: issue.Title, New: *req.Title}
			issue.Title = *req.Title
		}
		if req.Description != nil {
			changes.Fields["description"] = types.FieldDelta{Old: issue.Description, New: *req.Description}
			issue.Description = *req.Description
		}
		if req.Status != nil {
			changes.Fields["status"] = types.FieldDelta{Old: string(issue.Status), New: string(status)}
			issue.Status = status
		}
		if req.Priority != nil {
			changes.Fields["priority"] = types.FieldDelta{Old: issue.Priority, New: *req.Priority}
			issue.Priority = *req.Priority
		}
		if req.Assignee != nil {
			changes.Fields["assignee"] = types.FieldDelta{Old: issue.Assignee, New: *req.Assignee}
			issue.Assignee = *req.Assignee
		}
		if req.BlockingNotes != nil {
			changes.Fields["blocking_notes"] = types.FieldDelta{Old: issue.BlockingNotes, New: *req.BlockingNotes}
			issue.BlockingNotes = *req.BlockingNotes
		}
		if req.Metadata != nil {
			if issue.Metadata == nil {
				issue.Metadata = map[string]any{}
			}
			for k, v := range req.Metadata {
				issue.Metadata[k] = v
			}
			changes.Metadata = req.Metadata
		}

		issue.UpdatedAt = time.Now()
		updated = issue
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := m.emitEvent(id, types.EventUpdated, changes); err != nil {
		return updated, err
	}
	return updated, nil
}

// Close sets an issue's status to closed, stamping closed_at, and
// emits a closed event with the reason. An empty reason defaults to
// "Completed".
func (m *Manager) Close(id, reason string) (*types.Issue, error) {
	if reason == "" {
		reason = "Completed"
	}
	var closed *types.Issue
	err := m.withLock(persistIssues, func(ix *index.Index) error {
		issue := ix.GetIssue(id)
		if issue == nil {
			return fmt.Errorf("issue %s: %w", id, ErrNotFound)
		}
		now := time.Now()
		issue.Status = types.StatusClosed
		issue.ClosedAt = &now
		issue.UpdatedAt = now
		closed = issue
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := m.emitEvent(id, types.EventClosed, types.ReasonChange{Reason: reason}); err != nil {
		return closed, err
	}
	return closed, nil
}

// List returns issues passing the filter. No sort order is guaranteed.
func (m *Manager) List(filter types.IssueFilter) ([]*types.Issue, error) {
	var results []*types.Issue
	err := m.withLock(persistNothing, func(ix *index.Index) error {
		results = ix.ListIssues(filter)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AddDependency inserts the edge from -> to ("from is blocked by to")
// after checking both endpoints exist, the pair is not a duplicate,
// and the edge would not create a cycle.
func (m *Manager) AddDependency(fromID, toID string, depType types.DependencyType) (*types.Dependency, error) {
	if depType == "" {
		depType = types.DepBlocks
	}
	if !depType.IsValid() {
		return nil, fmt.Errorf("%w: invalid dependency type %q", ErrValidation, depType)
	}

	dep := &types.Dependency{
		FromID:    fromID,
		ToID:      toID,
		Type:      depType,
		CreatedAt: time.Now(),
	}
	err := m.withLock(persistDependencies, func(ix *index.Index) error {
		if ix.GetIssue(fromID) == nil {
			return fmt.Errorf("issue %s: %w", fromID, ErrNotFound)
		}
		if ix.GetIssue(toID) == nil {
			return fmt.Errorf("issue %s: %w", toID, ErrNotFound)
		}
		if ix.HasDependency(fromID, toID) {
			return fmt.Errorf("%w: dependency %s -> %s already exists", ErrValidation, fromID, toID)
		}
		if graph.DetectCycle(ix, fromID, toID) {
			return fmt.Errorf("%s -> %s: %w", fromID, toID, ErrCycle)
		}
		ix.AddDependency(dep)
		return nil
	})
	if err != nil {
		return nil, err
	}
	changes := types.EdgeChange{FromID: fromID, ToID: toID, DepType: depType}
	if err := m.emitEvent(fromID, types.EventDependencyAdded, changes); err != nil {
		return dep, err
	}
	return dep, nil
}

// RemoveDependency deletes the exact (from, to) edge. Changing an
// edge's type is remove plus re-add.
func (m *Manager) RemoveDependency(fromID, toID string) error {
	err := m.withLock(persistDependencies, func(ix *index.Index) error {
		if !ix.RemoveDependency(fromID, toID) {
			return fmt.Errorf("dependency %s -> %s: %w", fromID, toID, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return m.emitEvent(fromID, types.EventDependencyRemoved, types.EdgeChange{FromID: fromID, ToID: toID})
}

// GetDependencies returns the issues blocking the given issue.
// Blocker IDs that no longer resolve are skipped.
func (m *Manager) GetDependencies(id string) ([]*types.Issue, error) {
	return m.resolveNeighbors(id, func(ix *index.Index) []string {
		return ix.GetBlockers(id)
	})
}

// GetDependents returns the issues blocked by the given issue.
func (m *Manager) GetDependents(id string) ([]*types.Issue, error) {
	return m.resolveNeighbors(id, func(ix *index.Index) []string {
		return ix.GetDependents(id)
	})
}

func (m *Manager) resolveNeighbors(id string, ids func(ix *index.Index) []string) ([]*types.Issue, error) {
	var results []*types.Issue
	err := m.withLock(persistNothing, func(ix *index.Index) error {
		for _, neighborID := range ids(ix) {
			if issue := ix.GetIssue(neighborID); issue != nil {
				results = append(results, issue.Clone())
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ReadyIssues returns open issues with no unresolved blockers, sorted
// by priority then creation time. limit > 0 truncates the result.
func (m *Manager) ReadyIssues(limit int) ([]*types.Issue, error) {
	var ready []*types.Issue
	err := m.withLock(persistNothing, func(ix *index.Index) error {
		ready = graph.ReadyIssues(ix, limit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ready, nil
}

// BlockedIssues returns every issue with unresolved blockers, paired
// with those blockers.
func (m *Manager) BlockedIssues() ([]*types.BlockedIssue, error) {
	var blocked []*types.BlockedIssue
	err := m.withLock(persistNothing, func(ix *index.Index) error {
		blocked = graph.BlockedIssues(ix)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocked, nil
}

// Stats returns aggregate counts over one fresh index, including the
// derived ready and blocked-by-dependency totals.
func (m *Manager) Stats() (*types.Statistics, error) {
	stats := &types.Statistics{}
	err := m.withLock(persistNothing, func(ix *index.Index) error {
		stats.TotalIssues = ix.Len()
		for _, issue := range ix.Issues() {
			switch issue.Status {
			case types.StatusOpen:
				stats.OpenIssues++
			case types.StatusInProgress:
				stats.InProgressIssues++
			case types.StatusBlocked:
				stats.BlockedIssues++
			case types.StatusClosed:
				stats.ClosedIssues++
			case types.StatusCompleted:
				stats.CompletedIssues++
			}
		}
		stats.ReadyIssues = len(graph.ReadyIssues(ix, 0))
		stats.BlockedByDeps = len(graph.BlockedIssues(ix))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// IssueEvents returns all events for the issue in log-append order.
// Reads the log without taking the lock; very recent events from other
// processes may not be visible yet, which is acceptable for an audit
// trail.
func (m *Manager) IssueEvents(id string) ([]*types.Event, error) {
	all, err := m.store.LoadEvents()
	if err != nil {
		return nil, err
	}
	var matching []*types.Event
	for _, event := range all {
		if event.IssueID == id {
			matching = append(matching, event)
		}
	}
	return matching, nil
}

// IssueSessions aggregates the external sessions that have touched an
// issue: each session's ID together with the ordered event types it
// produced. Fails with ErrNotFound for an unknown issue.
func (m *Manager) IssueSessions(id string) (*types.SessionLinks, error) {
	err := m.withLock(persistNothing, func(ix *index.Index) error {
		if ix.GetIssue(id) == nil {
			return fmt.Errorf("issue %s: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	events, err := m.IssueEvents(id)
	if err != nil {
		return nil, err
	}

	bySession := make(map[string][]types.EventType)
	for _, event := range events {
		if event.SessionID == "" {
			continue
		}
		bySession[event.SessionID] = append(bySession[event.SessionID], event.EventType)
	}
	sessions := make([]string, 0, len(bySession))
	for sessionID := range bySession {
		sessions = append(sessions, sessionID)
	}
	sort.Strings(sessions)

	return &types.SessionLinks{
		IssueID:         id,
		LinkedSessions:  sessions,
		SessionCount:    len(sessions),
		EventsBySession: bySession,
		Hint:            sessionResumeHint,
	}, nil
}

// EmitSessionEnded records a session_ended event for the issue. Called
// opportunistically by session teardown hooks, so an unknown issue is
// silently ignored and never fails the caller.
func (m *Manager) EmitSessionEnded(id string) error {
	exists := false
	err := m.withLock(persistNothing, func(ix *index.Index) error {
		exists = ix.GetIssue(id) != nil
		return nil
	})
	if err != nil {
		return err
	}
	if !exists {
		debug.Logf("session_ended skipped, issue %s not found\n", id)
		return nil
	}
	return m.emitEvent(id, types.EventSessionEnded, types.ReasonChange{Reason: "session terminated"})
}
