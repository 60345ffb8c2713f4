package contract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter_Matches(t *testing.T) {
	req := require.New(t)
	row := Record{"conversation_id": "c1", "sender_id": "alice", "read_at": nil}

	req.True(Where(Eq("conversation_id", "c1")).Matches(row))
	req.False(Where(Eq("conversation_id", "c2")).Matches(row))
	req.True(Where(Neq("sender_id", "bob"), IsNull("read_at")).Matches(row))
	req.False(Where(Neq("sender_id", "alice")).Matches(row))
	req.True(Where(In("sender_id", "bob", "alice")).Matches(row))
	req.False(Where(In("sender_id", "bob")).Matches(row))

	// Then an empty filter matches everything
	req.True(Filter(nil).Matches(row))
}

func TestFilter_NeqOnNullIsFalse(t *testing.T) {
	req := require.New(t)

	req.False(Where(Neq("read_at", "x")).Matches(Record{"read_at": nil}))
}

func TestCondition_Query(t *testing.T) {
	req := require.New(t)

	req.Equal("eq.42", Eq("id", 42).Query())
	req.Equal("neq.bob", Neq("sender_id", "bob").Query())
	req.Equal("is.null", IsNull("read_at").Query())
	req.Equal("in.(a,b)", In("id", "a", "b").Query())
}

func TestChangeFilter_Accepts(t *testing.T) {
	req := require.New(t)
	filter := ChangeFilter{Table: "messages", Event: EventAll, Column: "conversation_id", Value: "c1"}

	req.True(filter.Accepts(ChangeEvent{Type: EventInsert, Table: "messages", New: Record{"conversation_id": "c1"}}))
	req.False(filter.Accepts(ChangeEvent{Type: EventInsert, Table: "messages", New: Record{"conversation_id": "c2"}}))
	req.False(filter.Accepts(ChangeEvent{Type: EventInsert, Table: "notifications", New: Record{"conversation_id": "c1"}}))
	req.Equal("conversation_id=eq.c1", filter.Expression())

	insertsOnly := ChangeFilter{Table: "messages", Event: EventInsert}
	req.False(insertsOnly.Accepts(ChangeEvent{Type: EventUpdate, Table: "messages"}))
}

func TestRecord_MergeIsShallowCopy(t *testing.T) {
	req := require.New(t)
	original := Record{"id": "1", "content": "hi", "read_at": nil}

	merged := original.Merge(Record{"read_at": "2026-01-01T10:00:00.000000Z"})

	req.Nil(original["read_at"])
	req.Equal("hi", merged.String("content"))
	req.NotNil(merged.OptionalTime("read_at"))
}
