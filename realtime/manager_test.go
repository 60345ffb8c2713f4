package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"testing"

	"marketsync/contract"
	"marketsync/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func conversationScope(id string) Scope {
	return Scope{Table: "messages", Column: "conversation_id", Value: id, ReadColumn: "read_at"}
}

type recorder struct {
	refreshes int
	inserted  []contract.Record
	updated   []contract.Record
	read      []string
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		Refresh:      func(context.Context) error { r.refreshes++; return nil },
		OnInsert:     func(rec contract.Record) { r.inserted = append(r.inserted, rec) },
		OnUpdate:     func(rec contract.Record) { r.updated = append(r.updated, rec) },
		OnMarkAsRead: func(id string) { r.read = append(r.read, id) },
	}
}

func TestManager_MountSameScope_OnlyRefreshes(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	manager := NewManager(slog.Default(), NewRegistry(slog.Default(), transport).Owner())
	rec := &recorder{}

	// Then exactly one subscription is opened for three mounts
	transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).
		Return(newSubscription(ctrl, "messages:c1"), nil).Times(1)

	for i := 0; i < 3; i++ {
		manager.Mount(ctx, conversationScope("c1"), rec.handlers())
	}

	// And the snapshot was fetched on each mount
	req.Equal(3, rec.refreshes)
}

func TestManager_ScopeChange_TearsDownPrevious(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)
	manager := NewManager(slog.Default(), registry.Owner())
	rec := &recorder{}
	first := newSubscription(ctrl, "messages:c1")
	second := newSubscription(ctrl, "messages:c2")

	gomock.InOrder(
		transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).Return(first, nil),
		transport.EXPECT().Unsubscribe(gomock.Any(), first).Return(nil),
		transport.EXPECT().Subscribe(gomock.Any(), "messages:c2", gomock.Any(), gomock.Any()).Return(second, nil),
		transport.EXPECT().Unsubscribe(gomock.Any(), second).Return(nil),
	)

	manager.Mount(ctx, conversationScope("c1"), rec.handlers())
	manager.Mount(ctx, conversationScope("c2"), rec.handlers())
	req.Equal([]string{"messages:c2"}, registry.Keys())

	// When the view unmounts
	manager.Unmount(ctx)

	// Then nothing is left
	req.Zero(registry.Len())
	_, mounted := manager.Current()
	req.False(mounted)
}

func TestManager_DeliversEventsInTransportOrder(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	manager := NewManager(slog.Default(), NewRegistry(slog.Default(), transport).Owner())
	rec := &recorder{}

	var handler contract.ChangeHandler
	transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, filter contract.ChangeFilter, h contract.ChangeHandler) (contract.Subscription, error) {
			// Then the subscription is filtered server-side to the scope
			req.Equal("conversation_id=eq.c1", filter.Expression())
			handler = h
			return newSubscription(ctrl, key), nil
		})

	manager.Mount(ctx, conversationScope("c1"), rec.handlers())

	// When the transport delivers two inserts then a read update
	handler(contract.ChangeEvent{Type: contract.EventInsert, Table: "messages", New: contract.Record{"id": "m1"}})
	handler(contract.ChangeEvent{Type: contract.EventInsert, Table: "messages", New: contract.Record{"id": "m2"}})
	handler(contract.ChangeEvent{Type: contract.EventUpdate, Table: "messages",
		New: contract.Record{"id": "m1", "read_at": "2026-01-01T10:00:00.000000Z"}})
	handler(contract.ChangeEvent{Type: contract.EventUpdate, Table: "messages",
		New: contract.Record{"id": "m2", "content": "edited", "read_at": nil}})

	// Then callbacks see the same order
	req.Len(rec.inserted, 2)
	req.Equal("m1", rec.inserted[0].String("id"))
	req.Equal("m2", rec.inserted[1].String("id"))
	req.Len(rec.updated, 2)
	req.Equal([]string{"m1"}, rec.read)
}

func TestManager_DropsEventsOfAbandonedScope(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	manager := NewManager(slog.Default(), NewRegistry(slog.Default(), transport).Owner())
	rec := &recorder{}

	var stale contract.ChangeHandler
	transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, _ contract.ChangeFilter, h contract.ChangeHandler) (contract.Subscription, error) {
			stale = h
			return newSubscription(ctrl, key), nil
		})
	transport.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()).Return(nil)
	transport.EXPECT().Subscribe(gomock.Any(), "messages:c2", gomock.Any(), gomock.Any()).
		Return(newSubscription(ctrl, "messages:c2"), nil)

	manager.Mount(ctx, conversationScope("c1"), rec.handlers())
	manager.Mount(ctx, conversationScope("c2"), rec.handlers())

	// When an event of c1 arrives late
	stale(contract.ChangeEvent{Type: contract.EventInsert, New: contract.Record{"id": "late"}})

	// Then it is not applied
	req.Empty(rec.inserted)
}

func TestManager_FailedSubscribe_RetriedOnNextMount(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)
	manager := NewManager(slog.Default(), registry.Owner())
	rec := &recorder{}

	gomock.InOrder(
		transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("refused")),
		transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).
			Return(newSubscription(ctrl, "messages:c1"), nil),
	)

	// When the first subscribe fails, the snapshot is still loaded
	manager.Mount(ctx, conversationScope("c1"), rec.handlers())
	req.Equal(1, rec.refreshes)
	req.Zero(registry.Len())

	// Then the next mount of the same scope tries again
	manager.Mount(ctx, conversationScope("c1"), rec.handlers())
	req.Equal(1, registry.Len())
}

func TestManager_EventsDrainedDuringScopeChangeAreDropped(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	manager := NewManager(slog.Default(), NewRegistry(slog.Default(), transport).Owner())
	rec := &recorder{}
	first := newSubscription(ctrl, "messages:c1")

	var h1 contract.ChangeHandler
	transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ contract.ChangeFilter, h contract.ChangeHandler) (contract.Subscription, error) {
			h1 = h
			return first, nil
		})
	// Given the c1 channel still delivers while it is being torn down
	transport.EXPECT().Unsubscribe(gomock.Any(), first).
		DoAndReturn(func(context.Context, contract.Subscription) error {
			h1(contract.ChangeEvent{Type: contract.EventInsert, Table: "messages",
				New: contract.Record{"id": "old-c1", "conversation_id": "c1"}})
			h1(contract.ChangeEvent{Type: contract.EventUpdate, Table: "messages",
				New: contract.Record{"id": "old-c1", "read_at": "2026-01-01T10:00:00.000000Z"}})
			return nil
		})
	transport.EXPECT().Subscribe(gomock.Any(), "messages:c2", gomock.Any(), gomock.Any()).
		Return(newSubscription(ctrl, "messages:c2"), nil)

	manager.Mount(ctx, conversationScope("c1"), rec.handlers())

	// When the view moves to c2
	manager.Mount(ctx, conversationScope("c2"), rec.handlers())

	// Then nothing from c1 reaches the c2 callbacks
	req.Empty(rec.inserted)
	req.Empty(rec.updated)
	req.Empty(rec.read)
}
