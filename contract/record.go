package contract

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// TimeLayout is the fixed-width timestamp layout used in records,
// so that lexical order equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z07:00"

// Record is one row as exchanged with the backend.
type Record map[string]any

func (r Record) String(column string) string {
	v, ok := r[column]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// OptionalString returns nil for absent or null columns.
func (r Record) OptionalString(column string) *string {
	v, ok := r[column]
	if !ok || v == nil {
		return nil
	}
	return lo.ToPtr(r.String(column))
}

func (r Record) Bool(column string) bool {
	b, _ := r[column].(bool)
	return b
}

func (r Record) Int(column string) int {
	switch v := r[column].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func (r Record) Time(column string) time.Time {
	t, _ := ParseTime(r.String(column))
	return t
}

// OptionalTime returns nil for absent, null or unparsable columns.
func (r Record) OptionalTime(column string) *time.Time {
	s := r.OptionalString(column)
	if s == nil {
		return nil
	}
	t, err := ParseTime(*s)
	if err != nil {
		return nil
	}
	return &t
}

func (r Record) Map(column string) map[string]any {
	switch m := r[column].(type) {
	case map[string]any:
		return m
	case Record:
		return m
	default:
		return nil
	}
}

// Merge returns a shallow copy of r overwritten by the columns of patch.
func (r Record) Merge(patch Record) Record {
	return Record(lo.Assign(map[string]any(r), map[string]any(patch)))
}

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime accepts the record layout as well as plain RFC 3339 timestamps.
func ParseTime(s string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
