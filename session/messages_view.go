// Package session holds the view-level consumers of the realtime layer: one
// object per open screen, each owning its projection and its subscription.
package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"marketsync/contract"
	"marketsync/domain"
	"marketsync/projection"
	"marketsync/realtime"
	"marketsync/services"

	"github.com/samber/lo"
)

// MessagesView shows the conversation the viewer has open.
type MessagesView struct {
	log       *slog.Logger
	viewer    domain.Viewer
	query     contract.Query
	manager   *realtime.Manager
	readState services.IReadStateService
	timeline  *projection.Timeline

	mu           sync.Mutex
	conversation string
	onChange     func()
	// closed refuses new background work once Close is waiting for it.
	closed bool

	// generation discards snapshots fetched for a conversation that is no longer open.
	generation atomic.Uint64
	background sync.WaitGroup
}

func NewMessagesView(log *slog.Logger, viewer domain.Viewer, query contract.Query, channels contract.IChannelRegistry,
	readState services.IReadStateService) *MessagesView {
	return &MessagesView{
		log:       log,
		viewer:    viewer,
		query:     query,
		manager:   realtime.NewManager(log, channels),
		readState: readState,
		timeline:  projection.NewTimeline(log, viewer.UserID),
	}
}

// OnChange registers a callback run after every projection change.
func (v *MessagesView) OnChange(fn func()) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = fn
}

func messagesScope(conversationID string) realtime.Scope {
	return realtime.Scope{
		Name:       "messages",
		Table:      domain.MessagesTable,
		Column:     "conversation_id",
		Value:      conversationID,
		ReadColumn: "read_at",
	}
}

// Open shows conversationID. Opening the conversation already shown only
// refreshes it. Unread messages of the other participant are marked read in
// the background; the view changes when the resulting updates come back.
func (v *MessagesView) Open(ctx context.Context, conversationID string) {
	v.mu.Lock()
	switched := v.conversation != conversationID
	v.conversation = conversationID
	v.closed = false
	v.mu.Unlock()

	gen := v.generation.Add(1)
	if switched {
		v.timeline.Replace(nil)
	}

	v.manager.Mount(ctx, messagesScope(conversationID), realtime.Handlers{
		Refresh: func(ctx context.Context) error {
			return v.refresh(ctx, gen, conversationID)
		},
		OnInsert: func(record contract.Record) {
			if !v.timeline.ApplyInsert(record) {
				return
			}
			if m, err := domain.MessageFromRecord(record); err == nil && m.UnreadFor(v.viewer.UserID) {
				v.inBackground(func() { v.readState.MarkAsRead(context.WithoutCancel(ctx), m.ID) })
			}
			v.changed()
		},
		OnUpdate: func(record contract.Record) {
			if v.timeline.ApplyUpdate(record) {
				v.changed()
			}
		},
		OnMarkAsRead: func(id string) {
			v.log.Debug("Message read", "conversation_id", conversationID, "message_id", id)
		},
	})

	v.inBackground(func() { v.readState.MarkConversationAsRead(context.WithoutCancel(ctx), conversationID) })
}

func (v *MessagesView) refresh(ctx context.Context, gen uint64, conversationID string) error {
	rows, err := v.query.Select(ctx, domain.MessagesTable,
		contract.Where(contract.Eq("conversation_id", conversationID)), contract.Asc("created_at"))
	if err != nil {
		return err
	}
	if v.generation.Load() != gen {
		v.log.Debug("Discarding snapshot of abandoned conversation", "conversation_id", conversationID)
		return nil
	}
	messages := lo.FilterMap(rows, func(r contract.Record, _ int) (domain.Message, bool) {
		m, err := domain.MessageFromRecord(r)
		return m, err == nil
	})
	v.timeline.Merge(messages)
	v.changed()
	return nil
}

// Close tears the subscription down and waits for background read-marking.
func (v *MessagesView) Close(ctx context.Context) {
	v.mu.Lock()
	v.closed = true
	v.mu.Unlock()
	v.generation.Add(1)
	v.manager.Unmount(ctx)
	v.background.Wait()
	v.mu.Lock()
	v.conversation = ""
	v.mu.Unlock()
}

func (v *MessagesView) Conversation() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.conversation
}

func (v *MessagesView) Messages() []domain.Message {
	return v.timeline.Items()
}

func (v *MessagesView) Unread() int {
	return v.timeline.Unread()
}

func (v *MessagesView) inBackground(fn func()) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.background.Add(1)
	v.mu.Unlock()
	go func() {
		defer v.background.Done()
		fn()
	}()
}

func (v *MessagesView) changed() {
	v.mu.Lock()
	fn := v.onChange
	v.mu.Unlock()
	if fn != nil {
		fn()
	}
}
