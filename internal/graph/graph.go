// Package graph implements the pure scheduling derivations over an
// index: cycle detection, ready work, and blocked issues.
package graph

import (
	"sort"

	"github.com/spool-project/spool/internal/index"
	"github.com/spool-project/spool/internal/types"
)

// DetectCycle reports whether adding the edge from -> to would create
// a cycle in the blocking graph. The edge is cycle-free iff to cannot
// already reach from through existing edges.
//
// All dependency types participate, matching the behavior of the
// stored graph; whether non-blocking types should affect scheduling is
// an open product question.
func DetectCycle(ix *index.Index, fromID, toID string) bool {
	if fromID == toID {
		return true
	}
	visited := map[string]bool{toID: true}
	frontier := []string{toID}
	for len(frontier) > 0 {
		current := frontier[0]
		frontier = frontier[1:]
		for _, next := range ix.GetBlockers(current) {
			if next == fromID {
				return true
			}
			if !visited[next] {
				visited[next] = true
				frontier = append(frontier, next)
			}
		}
	}
	return false
}

// unresolvedBlockers returns the full issues currently blocking id. A
// blocker is unresolved unless its status is closed or completed.
// Blocker IDs that no longer resolve to an issue are skipped.
func unresolvedBlockers(ix *index.Index, id string) []*types.Issue {
	var blockers []*types.Issue
	for _, blockerID := range ix.GetBlockers(id) {
		blocker := ix.GetIssue(blockerID)
		if blocker == nil {
			continue
		}
		if !blocker.Status.IsResolved() {
			blockers = append(blockers, blocker)
		}
	}
	return blockers
}

// ReadyIssues returns open issues with no unresolved blockers, sorted
// by priority ascending then creation time ascending. limit > 0
// truncates the sorted result; it never changes which issues qualify.
func ReadyIssues(ix *index.Index, limit int) []*types.Issue {
	var ready []*types.Issue
	for _, issue := range ix.Issues() {
		if issue.Status != types.StatusOpen {
			continue
		}
		if len(unresolvedBlockers(ix, issue.ID)) > 0 {
			continue
		}
		ready = append(ready, issue)
	}

	sort.Slice(ready, func(i, j int) bool {
		if ready[i].Priority != ready[j].Priority {
			return ready[i].Priority < ready[j].Priority
		}
		return ready[i].CreatedAt.Before(ready[j].CreatedAt)
	})

	if limit > 0 && len(ready) > limit {
		ready = ready[:limit]
	}
	return ready
}

// BlockedIssues returns every issue with at least one unresolved
// blocker, regardless of the issue's own status, paired with all of
// its unresolved blockers. Results are sorted by priority then
// creation time; blockers by creation time.
func BlockedIssues(ix *index.Index) []*types.BlockedIssue {
	var blocked []*types.BlockedIssue
	for _, issue := range ix.Issues() {
		blockers := unresolvedBlockers(ix, issue.ID)
		if len(blockers) == 0 {
			continue
		}
		sort.Slice(blockers, func(i, j int) bool {
			return blockers[i].CreatedAt.Before(blockers[j].CreatedAt)
		})
		blocked = append(blocked, &types.BlockedIssue{
			Issue:    issue,
			Blockers: blockers,
		})
	}

	sort.Slice(blocked, func(i, j int) bool {
		if blocked[i].Issue.Priority != blocked[j].Issue.Priority {
			return blocked[i].Issue.Priority < blocked[j].Issue.Priority
		}
		return blocked[i].Issue.CreatedAt.Before(blocked[j].Issue.CreatedAt)
	})
	return blocked
}
