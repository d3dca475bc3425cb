// Package spool provides a minimal public API for embedding the spool
// issue tracker in other programs.
//
// The tracker is multi-process safe over a shared data directory: any
// number of processes can hold their own Manager and mutate the same
// issue set through the directory's lock file. This package exports
// only the types and constructors needed for programmatic access; the
// spool CLI is the reference consumer.
package spool

import (
	"github.com/spool-project/spool/internal/tracker"
	"github.com/spool-project/spool/internal/types"
	"github.com/spool-project/spool/internal/utils"
)

// Core types for working with issues
type (
	Issue          = types.Issue
	Status         = types.Status
	IssueType      = types.IssueType
	Dependency     = types.Dependency
	DependencyType = types.DependencyType
	Event          = types.Event
	EventType      = types.EventType
	IssueFilter    = types.IssueFilter
	BlockedIssue   = types.BlockedIssue
	SessionLinks   = types.SessionLinks
	Statistics     = types.Statistics
)

// Status constants
const (
	StatusOpen             = types.StatusOpen
	StatusInProgress       = types.StatusInProgress
	StatusBlocked          = types.StatusBlocked
	StatusClosed           = types.StatusClosed
	StatusCompleted        = types.StatusCompleted
	StatusPendingUserInput = types.StatusPendingUserInput
)

// IssueType constants
const (
	TypeBug     = types.TypeBug
	TypeFeature = types.TypeFeature
	TypeTask    = types.TypeTask
	TypeEpic    = types.TypeEpic
	TypeChore   = types.TypeChore
)

// Dependency type constants
const (
	DepBlocks         = types.DepBlocks
	DepRelated        = types.DepRelated
	DepParentChild    = types.DepParentChild
	DepDiscoveredFrom = types.DepDiscoveredFrom
)

// Manager is the engine behind every operation: lock, fresh index,
// mutate, persist, emit event.
type Manager = tracker.Manager

// CreateRequest and UpdateRequest carry operation arguments.
type (
	CreateRequest = tracker.CreateRequest
	UpdateRequest = tracker.UpdateRequest
)

// Failure kinds for errors.Is classification.
var (
	ErrValidation = tracker.ErrValidation
	ErrNotFound   = tracker.ErrNotFound
	ErrCycle      = tracker.ErrCycle
)

// Manager options.
var (
	WithActor       = tracker.WithActor
	WithSessionID   = tracker.WithSessionID
	WithLockTimeout = tracker.WithLockTimeout
)

// NewManager opens a tracker over the given data directory, creating
// it if needed.
func NewManager(dataDir string, opts ...tracker.Option) (*Manager, error) {
	return tracker.New(dataDir, opts...)
}

// FindDataDir discovers the spool data directory using the standard
// search order: $SPOOL_DATA_DIR, then .spool/ in the current directory
// or an ancestor. Returns empty string if none is found.
func FindDataDir() string {
	return utils.FindDataDir()
}
