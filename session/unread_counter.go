package session

import (
	"context"
	"log/slog"
	"sync"

	"marketsync/contract"
	"marketsync/domain"
	"marketsync/realtime"

	"github.com/samber/lo"
)

// UnreadCounter counts the messages other participants sent to the viewer
// that the viewer has not read, across all of the viewer's conversations.
// Messages carry no recipient column, so the subscription covers the whole
// table and events are filtered here by conversation membership.
type UnreadCounter struct {
	log     *slog.Logger
	viewer  domain.Viewer
	query   contract.Query
	manager *realtime.Manager

	mu            sync.Mutex
	conversations map[string]bool
	unread        map[string]struct{}
	// live holds the state of every message applied while a refresh is in
	// flight, so the snapshot cannot undo it. Nil otherwise.
	live     map[string]bool
	onChange func(count int)
}

func NewUnreadCounter(log *slog.Logger, viewer domain.Viewer, query contract.Query, channels contract.IChannelRegistry) *UnreadCounter {
	return &UnreadCounter{
		log:           log,
		viewer:        viewer,
		query:         query,
		manager:       realtime.NewManager(log, channels),
		conversations: make(map[string]bool),
		unread:        make(map[string]struct{}),
	}
}

func (c *UnreadCounter) OnChange(fn func(count int)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

func (c *UnreadCounter) Start(ctx context.Context) {
	scope := realtime.Scope{Name: "unread", Table: domain.MessagesTable, Value: c.viewer.UserID, ReadColumn: "read_at"}
	c.manager.Mount(ctx, scope, realtime.Handlers{
		Refresh:  c.refresh,
		OnInsert: func(record contract.Record) { c.apply(ctx, record) },
		OnUpdate: func(record contract.Record) { c.apply(ctx, record) },
	})
}

func (c *UnreadCounter) Stop(ctx context.Context) {
	c.manager.Unmount(ctx)
}

func (c *UnreadCounter) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.unread)
}

func (c *UnreadCounter) refresh(ctx context.Context) error {
	c.mu.Lock()
	c.live = make(map[string]bool)
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.live = nil
		c.mu.Unlock()
	}()

	conversations := make(map[string]bool)
	for _, column := range []string{"client_id", "professional_id"} {
		rows, err := c.query.Select(ctx, domain.ConversationsTable, contract.Where(contract.Eq(column, c.viewer.UserID)), nil)
		if err != nil {
			return err
		}
		for _, r := range rows {
			conversations[r.String("id")] = true
		}
	}

	unread := make(map[string]struct{})
	if len(conversations) > 0 {
		ids := lo.Map(lo.Keys(conversations), func(id string, _ int) any { return id })
		rows, err := c.query.Select(ctx, domain.MessagesTable, contract.Where(
			contract.In("conversation_id", ids...),
			contract.Neq("sender_id", c.viewer.UserID),
			contract.IsNull("read_at"),
		), nil)
		if err != nil {
			return err
		}
		for _, r := range rows {
			unread[r.String("id")] = struct{}{}
		}
	}

	c.mu.Lock()
	for id, member := range c.conversations {
		if _, ok := conversations[id]; !ok {
			conversations[id] = member
		}
	}
	for id, isUnread := range c.live {
		if isUnread {
			unread[id] = struct{}{}
		} else {
			delete(unread, id)
		}
	}
	c.conversations = conversations
	c.unread = unread
	c.mu.Unlock()
	c.changed()
	return nil
}

// apply handles inserts and updates alike: the row's current state decides.
func (c *UnreadCounter) apply(ctx context.Context, record contract.Record) {
	m, err := domain.MessageFromRecord(record)
	if err != nil || !c.participates(ctx, m.ConversationID) {
		return
	}

	unread := m.UnreadFor(c.viewer.UserID)
	c.mu.Lock()
	if c.live != nil {
		c.live[m.ID] = unread
	}
	_, counted := c.unread[m.ID]
	if unread == counted {
		c.mu.Unlock()
		return
	}
	if unread {
		c.unread[m.ID] = struct{}{}
	} else {
		delete(c.unread, m.ID)
	}
	c.mu.Unlock()
	c.changed()
}

// participates resolves conversations created after the last refresh with a
// single lookup, remembered either way.
func (c *UnreadCounter) participates(ctx context.Context, conversationID string) bool {
	c.mu.Lock()
	member, known := c.conversations[conversationID]
	c.mu.Unlock()
	if known {
		return member
	}

	rows, err := c.query.Select(ctx, domain.ConversationsTable, contract.Where(contract.Eq("id", conversationID)), nil)
	if err != nil {
		c.log.Warn("Conversation lookup failed", "conversation_id", conversationID, "error", err)
		return false
	}
	member = lo.SomeBy(rows, func(r contract.Record) bool {
		conversation, err := domain.ConversationFromRecord(r)
		return err == nil && conversation.HasParticipant(c.viewer.UserID)
	})
	c.mu.Lock()
	c.conversations[conversationID] = member
	c.mu.Unlock()
	return member
}

func (c *UnreadCounter) changed() {
	c.mu.Lock()
	fn, count := c.onChange, len(c.unread)
	c.mu.Unlock()
	if fn != nil {
		fn(count)
	}
}
