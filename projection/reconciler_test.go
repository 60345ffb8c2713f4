package projection

import (
	"log/slog"
	"testing"
	"time"

	"marketsync/contract"
	"marketsync/domain"

	"github.com/stretchr/testify/require"
)

var at = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func messageRecord(id, sender string, offset time.Duration) contract.Record {
	return contract.Record{
		"id":              id,
		"conversation_id": "c1",
		"sender_id":       sender,
		"content":         "Hello " + id,
		"created_at":      contract.FormatTime(at.Add(offset)),
		"read_at":         nil,
	}
}

func TestTimeline_ApplyInsert_AppendsLast(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(slog.Default(), "bob")
	timeline.Replace([]domain.Message{{ID: "m0", SenderID: "alice", CreatedAt: at}})

	// When an insert event is received
	before := timeline.Len()
	req.True(timeline.ApplyInsert(messageRecord("m1", "alice", time.Minute)))

	// Then the projection grows by exactly one and the record is last
	items := timeline.Items()
	req.Len(items, before+1)
	req.Equal("m1", items[len(items)-1].ID)
}

func TestTimeline_ApplyInsert_OwnEchoIsApplied(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(slog.Default(), "alice")

	// When the viewer's own message comes back through the realtime echo
	req.True(timeline.ApplyInsert(messageRecord("m1", "alice", 0)))

	// Then it shows up once and does not count as unread
	req.Equal(1, timeline.Len())
	req.Zero(timeline.Unread())
}

func TestTimeline_ApplyUpdate_UnknownIdIsDropped(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(slog.Default(), "bob")
	req.True(timeline.ApplyInsert(messageRecord("m1", "alice", 0)))
	before := timeline.Items()

	// When an update references an id not present
	applied := timeline.ApplyUpdate(contract.Record{"id": "ghost", "read_at": contract.FormatTime(at)})

	// Then the projection is unchanged
	req.False(applied)
	req.Equal(before, timeline.Items())
}

func TestTimeline_ApplyUpdate_ShallowMerge(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(slog.Default(), "bob")
	req.True(timeline.ApplyInsert(messageRecord("m1", "alice", 0)))
	req.True(timeline.ApplyInsert(messageRecord("m2", "alice", time.Minute)))
	req.Equal(2, timeline.Unread())

	// When a partial update carrying only the read timestamp arrives
	readAt := at.Add(time.Hour)
	req.True(timeline.ApplyUpdate(contract.Record{"id": "m1", "read_at": contract.FormatTime(readAt)}))

	// Then the message keeps its other fields and becomes read in place
	m1, ok := timeline.Find("m1")
	req.True(ok)
	req.Equal("Hello m1", m1.Content)
	req.Equal("alice", m1.SenderID)
	req.Equal(domain.MessageRead, m1.State())
	req.Equal(readAt, *m1.ReadAt)
	req.Equal("m1", timeline.Items()[0].ID)
	req.Equal(1, timeline.Unread())
}

func TestTimeline_ApplyInsert_UndecodableRecordIsDropped(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(slog.Default(), "bob")

	req.False(timeline.ApplyInsert(contract.Record{"content": "no id"}))
	req.Zero(timeline.Len())
}

func TestInbox_UnreadCount(t *testing.T) {
	req := require.New(t)
	inbox := NewInbox(slog.Default())

	req.True(inbox.ApplyInsert(contract.Record{"id": "n1", "user_id": "bob", "type": "message", "read": false}))
	req.True(inbox.ApplyInsert(contract.Record{"id": "n2", "user_id": "bob", "type": "application", "read": false}))
	req.Equal(2, inbox.Unread())

	req.True(inbox.ApplyUpdate(contract.Record{"id": "n1", "read": true}))
	req.Equal(1, inbox.Unread())

	n1, _ := inbox.Find("n1")
	req.Equal(domain.NotificationMessage, n1.Type)
}

func TestTimeline_Merge_KeepsLiveOnlyEntities(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline(slog.Default(), "bob")

	// Given two inserts applied before the snapshot lands
	req.True(timeline.ApplyInsert(messageRecord("m2", "alice", 2*time.Minute)))
	req.True(timeline.ApplyInsert(messageRecord("m3", "alice", 3*time.Minute)))

	// When a snapshot that already holds m2 is merged
	timeline.Merge([]domain.Message{
		{ID: "m1", SenderID: "alice", CreatedAt: at.Add(time.Minute)},
		{ID: "m2", SenderID: "alice", CreatedAt: at.Add(2 * time.Minute), Content: "from snapshot"},
	})

	// Then snapshot entities come first and the live-only m3 survives
	items := timeline.Items()
	req.Len(items, 3)
	req.Equal([]string{"m1", "m2", "m3"}, []string{items[0].ID, items[1].ID, items[2].ID})
	req.Equal("from snapshot", items[1].Content)
}
