// Package index holds the transient in-memory graph view of the issue
// set. An Index is built fresh from storage at the start of every
// manager operation and discarded when the operation finishes; it is
// never shared across operations or processes.
package index

import (
	"github.com/spool-project/spool/internal/types"
)

type edgeKey struct {
	from, to string
}

// Index is an in-memory view of issues and their dependency edges,
// with adjacency derived in both directions.
type Index struct {
	issues map[string]*types.Issue
	edges  map[edgeKey]*types.Dependency

	// blockers[x] lists issues x is blocked by; dependents[x] lists
	// issues blocked by x.
	blockers   map[string][]string
	dependents map[string][]string
}

// New returns an empty index.
func New() *Index {
	return &Index{
		issues:     make(map[string]*types.Issue),
		edges:      make(map[edgeKey]*types.Dependency),
		blockers:   make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// AddIssue inserts or replaces an issue.
func (ix *Index) AddIssue(issue *types.Issue) {
	ix.issues[issue.ID] = issue
}

// GetIssue returns the issue with the given ID, or nil if absent.
func (ix *Index) GetIssue(id string) *types.Issue {
	return ix.issues[id]
}

// Len returns the number of issues in the index.
func (ix *Index) Len() int {
	return len(ix.issues)
}

// Issues returns all issues in no defined order.
func (ix *Index) Issues() []*types.Issue {
	issues := make([]*types.Issue, 0, len(ix.issues))
	for _, issue := range ix.issues {
		issues = append(issues, issue)
	}
	return issues
}

// ListIssues returns issues passing the filter, in no defined order.
func (ix *Index) ListIssues(filter types.IssueFilter) []*types.Issue {
	var results []*types.Issue
	for _, issue := range ix.issues {
		if filter.Matches(issue) {
			results = append(results, issue)
		}
	}
	return results
}

// AddDependency inserts an edge. A duplicate (from, to) pair replaces
// the existing edge; callers reject duplicates before insertion.
func (ix *Index) AddDependency(dep *types.Dependency) {
	key := edgeKey{dep.FromID, dep.ToID}
	if _, exists := ix.edges[key]; !exists {
		ix.blockers[dep.FromID] = append(ix.blockers[dep.FromID], dep.ToID)
		ix.dependents[dep.ToID] = append(ix.dependents[dep.ToID], dep.FromID)
	}
	ix.edges[key] = dep
}

// RemoveDependency removes the exact (from, to) edge. Returns false if
// the edge does not exist.
func (ix *Index) RemoveDependency(fromID, toID string) bool {
	key := edgeKey{fromID, toID}
	if _, exists := ix.edges[key]; !exists {
		return false
	}
	delete(ix.edges, key)
	ix.blockers[fromID] = remove(ix.blockers[fromID], toID)
	ix.dependents[toID] = remove(ix.dependents[toID], fromID)
	return true
}

// HasDependency reports whether the exact (from, to) edge exists.
func (ix *Index) HasDependency(fromID, toID string) bool {
	_, exists := ix.edges[edgeKey{fromID, toID}]
	return exists
}

// GetBlockers returns the IDs of issues the given issue is blocked by.
func (ix *Index) GetBlockers(id string) []string {
	return ix.blockers[id]
}

// GetDependents returns the IDs of issues blocked by the given issue.
func (ix *Index) GetDependents(id string) []string {
	return ix.dependents[id]
}

// GetAllDependencies returns every edge in no defined order.
func (ix *Index) GetAllDependencies() []*types.Dependency {
	deps := make([]*types.Dependency, 0, len(ix.edges))
	for _, dep := range ix.edges {
		deps = append(deps, dep)
	}
	return deps
}

func remove(ids []string, id string) []string {
	kept := ids[:0]
	for _, candidate := range ids {
		if candidate != id {
			kept = append(kept, candidate)
		}
	}
	return kept
}
