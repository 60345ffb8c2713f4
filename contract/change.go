package contract

import "time"

type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
	EventAll    EventType = "*"
)

// ChangeEvent is one row change pushed by the realtime transport.
type ChangeEvent struct {
	Type     EventType
	Table    string
	New      Record
	Old      Record
	CommitAt time.Time
}

// ChangeFilter narrows a subscription server-side.
// The backend only supports a single equality condition, so Column/Value are optional.
type ChangeFilter struct {
	Table  string
	Event  EventType
	Column string
	Value  string
}

type ChangeHandler func(ChangeEvent)

// Accepts reports whether evt falls into the filter.
func (f ChangeFilter) Accepts(evt ChangeEvent) bool {
	if f.Table != "" && f.Table != evt.Table {
		return false
	}
	if f.Event != "" && f.Event != EventAll && f.Event != evt.Type {
		return false
	}
	if f.Column == "" {
		return true
	}
	row := evt.New
	if evt.Type == EventDelete {
		row = evt.Old
	}
	return row.String(f.Column) == f.Value
}

// Expression renders the filter the way the realtime protocol expects it, "column=eq.value".
func (f ChangeFilter) Expression() string {
	if f.Column == "" {
		return ""
	}
	return f.Column + "=eq." + f.Value
}
