package tracker

import (
	"errors"
	"testing"
	"time"

	"github.com/spool-project/spool/internal/types"
)

func setupManager(t *testing.T) *Manager {
	t.Helper()
	m, err := New(t.TempDir(), WithActor("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func mustCreate(t *testing.T, m *Manager, title string, priority int) *types.Issue {
	t.Helper()
	issue, err := m.Create(CreateRequest{Title: title, Priority: priority, IssueType: types.TypeTask})
	if err != nil {
		t.Fatalf("Create(%q): %v", title, err)
	}
	return issue
}

func TestCreateDefaultsAndEvent(t *testing.T) {
	m := setupManager(t)

	issue, err := m.Create(CreateRequest{Title: "First", Priority: 2})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if issue.ID == "" {
		t.Error("ID not generated")
	}
	if issue.Status != types.StatusOpen {
		t.Errorf("status = %s, want open", issue.Status)
	}
	if issue.IssueType != types.TypeTask {
		t.Errorf("issue type = %s, want task default", issue.IssueType)
	}
	if issue.CreatedAt.IsZero() || issue.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}

	events, err := m.IssueEvents(issue.ID)
	if err != nil {
		t.Fatalf("IssueEvents: %v", err)
	}
	if len(events) != 1 || events[0].EventType != types.EventCreated {
		t.Fatalf("events = %+v, want one created event", events)
	}
	snapshot, ok := events[0].Changes.(types.IssueSnapshot)
	if !ok {
		t.Fatalf("created changes = %T", events[0].Changes)
	}
	if snapshot.Issue.Title != "First" {
		t.Errorf("snapshot title = %q", snapshot.Issue.Title)
	}
}

func TestCreatePriorityValidation(t *testing.T) {
	m := setupManager(t)

	for priority := 0; priority <= 4; priority++ {
		if _, err := m.Create(CreateRequest{Title: "ok", Priority: priority}); err != nil {
			t.Errorf("priority %d rejected: %v", priority, err)
		}
	}
	for _, priority := range []int{-1, 5, 100} {
		_, err := m.Create(CreateRequest{Title: "bad", Priority: priority})
		if !errors.Is(err, ErrValidation) {
			t.Errorf("priority %d: expected ErrValidation, got %v", priority, err)
		}
	}
}

func TestCreateTypeValidation(t *testing.T) {
	m := setupManager(t)

	_, err := m.Create(CreateRequest{Title: "bad", Priority: 2, IssueType: "story"})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for bad type, got %v", err)
	}
	_, err = m.Create(CreateRequest{Priority: 2})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for empty title, got %v", err)
	}
}

func TestGetMissingIsNil(t *testing.T) {
	m := setupManager(t)

	issue, err := m.Get("nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if issue != nil {
		t.Errorf("Get(nope) = %+v, want nil", issue)
	}
}

func TestUpdateRecordsDeltas(t *testing.T) {
	m := setupManager(t)
	issue := mustCreate(t, m, "Original", 2)

	title := "Renamed"
	status := "in_progress"
	priority := 1
	updated, err := m.Update(issue.ID, UpdateRequest{
		Title:    &title,
		Status:   &status,
		Priority: &priority,
		Metadata: map[string]any{"branch": "fix/login"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "Renamed" || updated.Status != types.StatusInProgress || updated.Priority != 1 {
		t.Errorf("update not applied: %+v", updated)
	}
	if !updated.UpdatedAt.After(issue.UpdatedAt) && !updated.UpdatedAt.Equal(issue.UpdatedAt) {
		t.Error("updated_at not refreshed")
	}

	events, err := m.IssueEvents(issue.ID)
	if err != nil {
		t.Fatalf("IssueEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected created + updated events, got %d", len(events))
	}
	changes, ok := events[1].Changes.(types.FieldChanges)
	if !ok {
		t.Fatalf("updated changes = %T", events[1].Changes)
	}
	if delta := changes.Fields["title"]; delta.Old != "Original" || delta.New != "Renamed" {
		t.Errorf("title delta = %+v", delta)
	}
	if delta := changes.Fields["status"]; delta.Old != "open" || delta.New != "in_progress" {
		t.Errorf("status delta = %+v", delta)
	}
	if changes.Metadata["branch"] != "fix/login" {
		t.Errorf("metadata patch = %+v", changes.Metadata)
	}
}

func TestUpdateNormalizesStatusAliases(t *testing.T) {
	m := setupManager(t)
	issue := mustCreate(t, m, "Aliased", 2)

	done := "done"
	updated, err := m.Update(issue.ID, UpdateRequest{Status: &done})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != types.StatusCompleted {
		t.Errorf("status = %s, want completed", updated.Status)
	}

	waiting := "waiting"
	updated, err = m.Update(issue.ID, UpdateRequest{Status: &waiting})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != types.StatusPendingUserInput {
		t.Errorf("status = %s, want pending_user_input", updated.Status)
	}

	bogus := "bogus"
	if _, err := m.Update(issue.ID, UpdateRequest{Status: &bogus}); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for bogus status, got %v", err)
	}
}

func TestUpdateMergesMetadata(t *testing.T) {
	m := setupManager(t)
	issue, err := m.Create(CreateRequest{
		Title:    "Meta",
		Priority: 2,
		Metadata: map[string]any{"origin": "scan", "severity": "low"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := m.Update(issue.ID, UpdateRequest{Metadata: map[string]any{"severity": "high"}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Metadata["origin"] != "scan" {
		t.Error("existing metadata key lost on merge")
	}
	if updated.Metadata["severity"] != "high" {
		t.Errorf("merged key = %v", updated.Metadata["severity"])
	}
}

func TestUpdateUnknownIssue(t *testing.T) {
	m := setupManager(t)
	title := "x"
	if _, err := m.Update("missing", UpdateRequest{Title: &title}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCloseStampsAndEmitsReason(t *testing.T) {
	m := setupManager(t)
	issue := mustCreate(t, m, "Closable", 2)

	closed, err := m.Close(issue.ID, "fixed upstream")
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if closed.Status != types.StatusClosed {
		t.Errorf("status = %s", closed.Status)
	}
	if closed.ClosedAt == nil {
		t.Error("closed_at not stamped")
	}

	events, _ := m.IssueEvents(issue.ID)
	last := events[len(events)-1]
	if last.EventType != types.EventClosed {
		t.Fatalf("last event = %s", last.EventType)
	}
	reason, ok := last.Changes.(types.ReasonChange)
	if !ok || reason.Reason != "fixed upstream" {
		t.Errorf("closed changes = %+v", last.Changes)
	}

	if _, err := m.Close("missing", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	m := setupManager(t)
	mustCreate(t, m, "A", 1)
	b := mustCreate(t, m, "B", 2)
	if _, err := m.Close(b.ID, ""); err != nil {
		t.Fatalf("Close: %v", err)
	}

	open := types.StatusOpen
	issues, err := m.List(types.IssueFilter{Status: &open})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(issues) != 1 || issues[0].Title != "A" {
		t.Errorf("filtered list = %d issues", len(issues))
	}

	all, err := m.List(types.IssueFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("unfiltered list = %d issues, want 2", len(all))
	}
}

func TestRoundTripAcrossManagers(t *testing.T) {
	dir := t.TempDir()
	first, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var created []*types.Issue
	for _, title := range []string{"one", "two", "three"} {
		issue, err := first.Create(CreateRequest{Title: title, Priority: 2})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		created = append(created, issue)
	}
	if _, err := first.AddDependency(created[0].ID, created[1].ID, types.DepBlocks); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}
	if _, err := first.AddDependency(created[1].ID, created[2].ID, types.DepRelated); err != nil {
		t.Fatalf("AddDependency: %v", err)
	}

	// A second manager over the same directory sees identical state.
	second, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	issues, err := second.List(types.IssueFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(issues) != 3 {
		t.Fatalf("reloaded %d issues, want 3", len(issues))
	}
	blockers, err := second.GetDependencies(created[0].ID)
	if err != nil {
		t.Fatalf("GetDependencies: %v", err)
	}
	if len(blockers) != 1 || blockers[0].ID != created[1].ID {
		t.Errorf("blockers of %s = %v", created[0].ID, blockers)
	}
}

func TestInterleavedManagersDoNotLoseWrites(t *testing.T) {
	dir := t.TempDir()
	alpha, err := New(dir, WithActor("alpha"), WithLockTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	beta, err := New(dir, WithActor("beta"), WithLockTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Interleave creates from two independent managers sharing the
	// directory; each one must survive the other's full-snapshot
	// rewrites.
	for i := 0; i < 5; i++ {
		if _, err := alpha.Create(CreateRequest{Title: "from alpha", Priority: 2}); err != nil {
			t.Fatalf("alpha create %d: %v", i, err)
		}
		if _, err := beta.Create(CreateRequest{Title: "from beta", Priority: 2}); err != nil {
			t.Fatalf("beta create %d: %v", i, err)
		}
	}

	issues, err := alpha.List(types.IssueFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(issues) != 10 {
		t.Errorf("visible issues = %d, want 10 (no writes lost or duplicated)", len(issues))
	}
	seen := make(map[string]bool, len(issues))
	for _, issue := range issues {
		if seen[issue.ID] {
			t.Errorf("duplicate issue id %s", issue.ID)
		}
		seen[issue.ID] = true
	}
}
