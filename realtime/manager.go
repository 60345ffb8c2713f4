package realtime

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"marketsync/contract"
)

// Scope narrows a subscription to the rows of Table where Column equals Value.
// An empty Column subscribes to the whole table and relies on the caller to filter.
type Scope struct {
	Name       string
	Table      string
	Column     string
	Value      string
	ReadColumn string
}

// Key is the channel name of the scope, e.g. "messages:<conversation id>".
func (s Scope) Key() string {
	name := s.Name
	if name == "" {
		name = s.Table
	}
	return name + ":" + s.Value
}

func (s Scope) filter() contract.ChangeFilter {
	return contract.ChangeFilter{
		Table:  s.Table,
		Event:  contract.EventAll,
		Column: s.Column,
		Value:  s.Value,
	}
}

// Handlers receive the scope's change stream. Refresh fetches the current snapshot.
type Handlers struct {
	Refresh      func(ctx context.Context) error
	OnInsert     func(record contract.Record)
	OnUpdate     func(record contract.Record)
	OnMarkAsRead func(id string)
}

// Manager owns the lifecycle of one view's subscription: exactly one scope at a time,
// backed by the channel registry.
type Manager struct {
	mu         sync.Mutex
	log        *slog.Logger
	channels   contract.IChannelRegistry
	scope      Scope
	subscribed bool
	generation atomic.Uint64
}

func NewManager(log *slog.Logger, channels contract.IChannelRegistry) *Manager {
	return &Manager{log: log, channels: channels}
}

// Mount subscribes the view to scope. Mounting the scope that is already
// subscribed only refreshes the snapshot. Mounting a different scope tears the
// previous subscription down first; scopes are never multiplexed on one channel.
func (m *Manager) Mount(ctx context.Context, scope Scope, h Handlers) {
	m.mu.Lock()
	if !m.subscribed || m.scope != scope {
		// Events still draining from the old channel must already be stale.
		gen := m.generation.Add(1)
		if m.subscribed {
			m.channels.RemoveChannel(ctx, m.scope.Key())
		}
		m.scope = scope
		_, err := m.channels.CreateChannel(ctx, scope.Key(), scope.filter(), m.dispatch(gen, scope, h))
		m.subscribed = err == nil
		if err != nil {
			m.log.Warn("Realtime subscription failed, view has no live updates until remount",
				"channel", scope.Key(), "error", err)
		}
	}
	m.mu.Unlock()

	if h.Refresh == nil {
		return
	}
	if err := h.Refresh(ctx); err != nil {
		m.log.Warn("Snapshot fetch failed", "channel", scope.Key(), "error", err)
	}
}

// Unmount tears the subscription down unconditionally.
func (m *Manager) Unmount(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generation.Add(1)
	key := m.scope.Key()
	m.subscribed = false
	m.scope = Scope{}
	m.channels.RemoveChannel(ctx, key)
}

// Current returns the mounted scope, if any.
func (m *Manager) Current() (Scope, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scope, m.subscribed
}

// dispatch forwards events in transport order, without buffering. Events still
// in flight for an abandoned scope are dropped.
func (m *Manager) dispatch(gen uint64, scope Scope, h Handlers) contract.ChangeHandler {
	return func(evt contract.ChangeEvent) {
		if m.generation.Load() != gen {
			m.log.Debug("Dropping event of abandoned scope", "channel", scope.Key(), "type", evt.Type)
			return
		}
		switch evt.Type {
		case contract.EventInsert:
			if h.OnInsert != nil {
				h.OnInsert(evt.New)
			}
		case contract.EventUpdate:
			if h.OnUpdate != nil {
				h.OnUpdate(evt.New)
			}
			if h.OnMarkAsRead != nil && becameRead(scope.ReadColumn, evt) {
				h.OnMarkAsRead(evt.New.String("id"))
			}
		}
	}
}

// becameRead detects the unread → read transition of an update.
// The old image may be partial, so a missing old value counts as unread.
func becameRead(column string, evt contract.ChangeEvent) bool {
	if column == "" {
		return false
	}
	return truthy(evt.New[column]) && !truthy(evt.Old[column])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		return true
	}
}
