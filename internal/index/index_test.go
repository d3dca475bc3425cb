package index

import (
	"testing"
	"time"

	"github.com/spool-project/spool/internal/types"
)

func issue(id string, status types.Status, priority int) *types.Issue {
	now := time.Now()
	return &types.Issue{
		ID:        id,
		Title:     "issue " + id,
		Status:    status,
		Priority:  priority,
		IssueType: types.TypeTask,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func dep(from, to string, depType types.DependencyType) *types.Dependency {
	return &types.Dependency{FromID: from, ToID: to, Type: depType, CreatedAt: time.Now()}
}

func TestGetIssue(t *testing.T) {
	ix := New()
	ix.AddIssue(issue("a", types.StatusOpen, 2))

	if got := ix.GetIssue("a"); got == nil || got.ID != "a" {
		t.Errorf("GetIssue(a) = %v", got)
	}
	if got := ix.GetIssue("missing"); got != nil {
		t.Errorf("GetIssue(missing) = %v, want nil", got)
	}
}

func TestListIssuesConjunctiveFilters(t *testing.T) {
	ix := New()
	ix.AddIssue(issue("a", types.StatusOpen, 1))
	ix.AddIssue(issue("b", types.StatusOpen, 2))
	ix.AddIssue(issue("c", types.StatusClosed, 1))

	open := types.StatusOpen
	p1 := 1

	if got := len(ix.ListIssues(types.IssueFilter{})); got != 3 {
		t.Errorf("unfiltered list = %d issues, want 3", got)
	}
	if got := len(ix.ListIssues(types.IssueFilter{Status: &open})); got != 2 {
		t.Errorf("status filter = %d issues, want 2", got)
	}
	if got := len(ix.ListIssues(types.IssueFilter{Status: &open, Priority: &p1})); got != 1 {
		t.Errorf("status+priority filter = %d issues, want 1", got)
	}
}

func TestAdjacency(t *testing.T) {
	ix := New()
	for _, id := range []string{"a", "b", "c"} {
		ix.AddIssue(issue(id, types.StatusOpen, 2))
	}
	ix.AddDependency(dep("a", "b", types.DepBlocks))
	ix.AddDependency(dep("a", "c", types.DepBlocks))
	ix.AddDependency(dep("b", "c", types.DepRelated))

	if got := ix.GetBlockers("a"); len(got) != 2 {
		t.Errorf("GetBlockers(a) = %v, want 2 entries", got)
	}
	if got := ix.GetDependents("c"); len(got) != 2 {
		t.Errorf("GetDependents(c) = %v, want 2 entries", got)
	}
	if !ix.HasDependency("a", "b") {
		t.Error("HasDependency(a, b) = false")
	}
	if ix.HasDependency("b", "a") {
		t.Error("HasDependency(b, a) = true, edges are directed")
	}
	if got := len(ix.GetAllDependencies()); got != 3 {
		t.Errorf("GetAllDependencies = %d edges, want 3", got)
	}
}

func TestRemoveDependency(t *testing.T) {
	ix := New()
	ix.AddIssue(issue("a", types.StatusOpen, 2))
	ix.AddIssue(issue("b", types.StatusOpen, 2))
	ix.AddDependency(dep("a", "b", types.DepBlocks))

	if !ix.RemoveDependency("a", "b") {
		t.Fatal("RemoveDependency returned false for existing edge")
	}
	if ix.RemoveDependency("a", "b") {
		t.Error("RemoveDependency returned true for missing edge")
	}
	if got := ix.GetBlockers("a"); len(got) != 0 {
		t.Errorf("blockers not cleaned up: %v", got)
	}
	if got := ix.GetDependents("b"); len(got) != 0 {
		t.Errorf("dependents not cleaned up: %v", got)
	}
}
