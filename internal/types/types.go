package types

import (
	"fmt"
	"time"
)

// Issue represents a trackable work item
type Issue struct {
	ID             string         `json:"id"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Status         Status         `json:"status"`
	Priority       int            `json:"priority"`
	IssueType      IssueType      `json:"issue_type"`
	Assignee       string         `json:"assignee,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	ClosedAt       *time.Time     `json:"closed_at,omitempty"`
	ParentID       string         `json:"parent_id,omitempty"`
	DiscoveredFrom string         `json:"discovered_from,omitempty"`
	BlockingNotes  string         `json:"blocking_notes,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
}

// Validate checks if the issue has valid field values
func (i *Issue) Validate() error {
	if len(i.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if i.Priority < 0 || i.Priority > 4 {
		return fmt.Errorf("priority must be between 0 and 4 (got %d)", i.Priority)
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	if !i.IssueType.IsValid() {
		return fmt.Errorf("invalid issue type: %s", i.IssueType)
	}
	return nil
}

// Clone returns a deep copy of the issue so callers can mutate the
// result without touching shared index state.
func (i *Issue) Clone() *Issue {
	dup := *i
	if i.ClosedAt != nil {
		t := *i.ClosedAt
		dup.ClosedAt = &t
	}
	if i.Metadata != nil {
		dup.Metadata = make(map[string]any, len(i.Metadata))
		for k, v := range i.Metadata {
			dup.Metadata[k] = v
		}
	}
	return &dup
}

// Status represents the current state of an issue
type Status string

const (
	StatusOpen             Status = "open"
	StatusInProgress       Status = "in_progress"
	StatusBlocked          Status = "blocked"
	StatusClosed           Status = "closed"
	StatusCompleted        Status = "completed"
	StatusPendingUserInput Status = "pending_user_input"
)

// statusAliases maps legacy status names onto their canonical values.
// Kept for compatibility with tools that still write the old names.
var statusAliases = map[string]Status{
	"done":    StatusCompleted,
	"waiting": StatusPendingUserInput,
}

// NormalizeStatus resolves legacy aliases to canonical status values.
// Unknown strings pass through unchanged; callers validate with IsValid.
func NormalizeStatus(s string) Status {
	if canonical, ok := statusAliases[s]; ok {
		return canonical
	}
	return Status(s)
}

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusClosed,
		StatusCompleted, StatusPendingUserInput:
		return true
	}
	return false
}

// IsResolved reports whether an issue in this status no longer blocks
// its dependents.
func (s Status) IsResolved() bool {
	return s == StatusClosed || s == StatusCompleted
}

// IssueType categorizes the kind of work
type IssueType string

const (
	TypeBug     IssueType = "bug"
	TypeFeature IssueType = "feature"
	TypeTask    IssueType = "task"
	TypeEpic    IssueType = "epic"
	TypeChore   IssueType = "chore"
)

// IsValid checks if the issue type value is valid
func (t IssueType) IsValid() bool {
	switch t {
	case TypeBug, TypeFeature, TypeTask, TypeEpic, TypeChore:
		return true
	}
	return false
}

// Dependency represents a directed edge between issues. FromID is
// blocked by ToID.
type Dependency struct {
	FromID    string         `json:"from_id"`
	ToID      string         `json:"to_id"`
	Type      DependencyType `json:"dep_type"`
	CreatedAt time.Time      `json:"created_at"`
}

// DependencyType categorizes the relationship
type DependencyType string

const (
	DepBlocks         DependencyType = "blocks"
	DepRelated        DependencyType = "related"
	DepParentChild    DependencyType = "parent-child"
	DepDiscoveredFrom DependencyType = "discovered-from"
)

// IsValid checks if the dependency type value is valid
func (d DependencyType) IsValid() bool {
	switch d {
	case DepBlocks, DepRelated, DepParentChild, DepDiscoveredFrom:
		return true
	}
	return false
}

// BlockedIssue pairs an issue with the full set of issues currently
// blocking it.
type BlockedIssue struct {
	Issue    *Issue   `json:"issue"`
	Blockers []*Issue `json:"blockers"`
}

// SessionLinks describes which external sessions have touched an issue.
type SessionLinks struct {
	IssueID         string                 `json:"issue_id"`
	LinkedSessions  []string               `json:"linked_sessions"`
	SessionCount    int                    `json:"session_count"`
	EventsBySession map[string][]EventType `json:"events_by_session"`
	Hint            string                 `json:"hint"`
}

// Statistics provides aggregate metrics
type Statistics struct {
	TotalIssues      int `json:"total_issues"`
	OpenIssues       int `json:"open_issues"`
	InProgressIssues int `json:"in_progress_issues"`
	BlockedIssues    int `json:"blocked_issues"`
	ClosedIssues     int `json:"closed_issues"`
	CompletedIssues  int `json:"completed_issues"`
	ReadyIssues      int `json:"ready_issues"`
	BlockedByDeps    int `json:"blocked_by_deps"`
}

// IssueFilter is used to filter issue queries. Nil fields pass all
// issues; supplied fields are conjunctive.
type IssueFilter struct {
	Status    *Status
	Priority  *int
	IssueType *IssueType
	Assignee  *string
}

// Matches reports whether the issue passes every supplied filter field.
func (f IssueFilter) Matches(issue *Issue) bool {
	if f.Status != nil && issue.Status != *f.Status {
		return false
	}
	if f.Priority != nil && issue.Priority != *f.Priority {
		return false
	}
	if f.IssueType != nil && issue.IssueType != *f.IssueType {
		return false
	}
	if f.Assignee != nil && issue.Assignee != *f.Assignee {
		return false
	}
	return true
}
