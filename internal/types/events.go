package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType categorizes audit trail events
type EventType string

const (
	EventCreated           EventType = "created"
	EventUpdated           EventType = "updated"
	EventClosed            EventType = "closed"
	EventDependencyAdded   EventType = "dependency_added"
	EventDependencyRemoved EventType = "dependency_removed"
	EventSessionEnded      EventType = "session_ended"
)

// Event is an immutable audit record of a single state change. Events
// are appended to the log and never mutated or deleted.
type Event struct {
	ID        string    `json:"id"`
	IssueID   string    `json:"issue_id"`
	EventType EventType `json:"event_type"`
	Actor     string    `json:"actor"`
	Changes   ChangeSet `json:"changes"`
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
}

// ChangeSet is the per-event-type change payload. Each event type
// carries a distinct variant; all variants marshal to the same
// map-shaped JSON the log format has always used.
type ChangeSet interface {
	changeSet()
}

// IssueSnapshot is the change payload of a "created" event: the full
// new issue.
type IssueSnapshot struct {
	Issue *Issue `json:"issue"`
}

// FieldDelta records an old/new pair for a single updated field.
type FieldDelta struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// FieldChanges is the change payload of an "updated" event: field name
// to old/new delta, plus the raw metadata patch that was merged in.
type FieldChanges struct {
	Fields   map[string]FieldDelta
	Metadata map[string]any
}

// EdgeChange is the change payload of dependency_added and
// dependency_removed events.
type EdgeChange struct {
	FromID  string         `json:"from_id"`
	ToID    string         `json:"to_id"`
	DepType DependencyType `json:"dep_type,omitempty"`
}

// ReasonChange is the change payload of closed and session_ended
// events.
type ReasonChange struct {
	Reason string `json:"reason"`
}

// RawChanges holds the payload of an event type this version does not
// know how to interpret. It round-trips unmodified.
type RawChanges map[string]any

func (IssueSnapshot) changeSet() {}
func (FieldChanges) changeSet()  {}
func (EdgeChange) changeSet()    {}
func (ReasonChange) changeSet()  {}
func (RawChanges) changeSet()    {}

// MarshalJSON flattens FieldChanges into the single map the log format
// uses: each field maps to {"old":...,"new":...}, and a metadata merge
// appears under "metadata" as the raw patch.
func (fc FieldChanges) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(fc.Fields)+1)
	for name, delta := range fc.Fields {
		flat[name] = delta
	}
	if fc.Metadata != nil {
		flat["metadata"] = fc.Metadata
	}
	return json.Marshal(flat)
}

// UnmarshalJSON rebuilds the tagged form from the flat map shape.
func (fc *FieldChanges) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	fc.Fields = make(map[string]FieldDelta, len(flat))
	for name, raw := range flat {
		if name == "metadata" {
			if err := json.Unmarshal(raw, &fc.Metadata); err != nil {
				return fmt.Errorf("metadata patch: %w", err)
			}
			continue
		}
		var delta FieldDelta
		if err := json.Unmarshal(raw, &delta); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		fc.Fields[name] = delta
	}
	return nil
}

// eventShadow mirrors Event with the changes payload left raw so the
// concrete variant can be chosen from the event type.
type eventShadow struct {
	ID        string          `json:"id"`
	IssueID   string          `json:"issue_id"`
	EventType EventType       `json:"event_type"`
	Actor     string          `json:"actor"`
	Changes   json.RawMessage `json:"changes"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
}

// UnmarshalJSON decodes the changes payload into the variant that
// matches the event type. Unknown event types keep their payload as
// RawChanges rather than failing the load.
func (e *Event) UnmarshalJSON(data []byte) error {
	var shadow eventShadow
	if err := json.Unmarshal(data, &shadow); err != nil {
		return err
	}
	e.ID = shadow.ID
	e.IssueID = shadow.IssueID
	e.EventType = shadow.EventType
	e.Actor = shadow.Actor
	e.Timestamp = shadow.Timestamp
	e.SessionID = shadow.SessionID

	if len(shadow.Changes) == 0 || string(shadow.Changes) == "null" {
		e.Changes = nil
		return nil
	}

	switch shadow.EventType {
	case EventCreated:
		var cs IssueSnapshot
		if err := json.Unmarshal(shadow.Changes, &cs); err != nil {
			return fmt.Errorf("created changes: %w", err)
		}
		e.Changes = cs
	case EventUpdated:
		var cs FieldChanges
		if err := json.Unmarshal(shadow.Changes, &cs); err != nil {
			return fmt.Errorf("updated changes: %w", err)
		}
		e.Changes = cs
	case EventDependencyAdded, EventDependencyRemoved:
		var cs EdgeChange
		if err := json.Unmarshal(shadow.Changes, &cs); err != nil {
			return fmt.Errorf("dependency changes: %w", err)
		}
		e.Changes = cs
	case EventClosed, EventSessionEnded:
		var cs ReasonChange
		if err := json.Unmarshal(shadow.Changes, &cs); err != nil {
			return fmt.Errorf("reason changes: %w", err)
		}
		e.Changes = cs
	default:
		var cs RawChanges
		if err := json.Unmarshal(shadow.Changes, &cs); err != nil {
			return fmt.Errorf("changes: %w", err)
		}
		e.Changes = cs
	}
	return nil
}
