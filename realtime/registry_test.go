package realtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"

	"marketsync/contract"
	"marketsync/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var messagesFilter = contract.ChangeFilter{Table: "messages", Event: contract.EventAll, Column: "conversation_id", Value: "c1"}

func newSubscription(ctrl *gomock.Controller, key string) *mocks.MockSubscription {
	sub := mocks.NewMockSubscription(ctrl)
	sub.EXPECT().Channel().Return(key).AnyTimes()
	return sub
}

func TestRegistry_CreateChannel_ReplacesPreviousHandle(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(log, transport)

	first := newSubscription(ctrl, "messages:c1")
	second := newSubscription(ctrl, "messages:c1")

	// Given a first channel is opened
	transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", messagesFilter, gomock.Any()).Return(first, nil)
	_, err := registry.CreateChannel(ctx, "messages:c1", messagesFilter, func(contract.ChangeEvent) {})
	req.NoError(err)

	// When the same key is requested again
	// Then the first handle is torn down before the new one is opened
	gomock.InOrder(
		transport.EXPECT().Unsubscribe(gomock.Any(), first).Return(nil),
		transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", messagesFilter, gomock.Any()).Return(second, nil),
	)
	sub, err := registry.CreateChannel(ctx, "messages:c1", messagesFilter, func(contract.ChangeEvent) {})
	req.NoError(err)
	req.Equal(second, sub)

	// And only one handle is live
	req.Equal(1, registry.Len())
}

func TestRegistry_RepeatedCreate_NeverAccumulates(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)

	live := 0
	transport.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, _ contract.ChangeFilter, _ contract.ChangeHandler) (contract.Subscription, error) {
			live++
			return newSubscription(ctrl, key), nil
		}).Times(10)
	transport.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, contract.Subscription) error {
			live--
			return nil
		}).Times(9)

	for i := 0; i < 10; i++ {
		_, err := registry.CreateChannel(ctx, "notifications:u1", contract.ChangeFilter{}, nil)
		req.NoError(err)
		// Then at most one handle is live after each call
		req.Equal(1, live)
		req.Equal(1, registry.Len())
	}
}

func TestRegistry_ConcurrentCreate_SameKey(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)

	var mu sync.Mutex
	live, maxLive := 0, 0
	transport.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, _ contract.ChangeFilter, _ contract.ChangeHandler) (contract.Subscription, error) {
			mu.Lock()
			defer mu.Unlock()
			live++
			maxLive = max(maxLive, live)
			return newSubscription(ctrl, key), nil
		}).Times(20)
	transport.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, contract.Subscription) error {
			mu.Lock()
			defer mu.Unlock()
			live--
			return nil
		}).Times(19)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = registry.CreateChannel(ctx, "messages:c1", messagesFilter, nil)
		}()
	}
	wg.Wait()

	req.Equal(1, maxLive)
	req.Equal(1, registry.Len())
	req.Empty(registry.keyLocks)
}

func TestRegistry_TeardownErrorIsSwallowed(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)
	sub := newSubscription(ctrl, "messages:c1")

	transport.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(sub, nil)
	transport.EXPECT().Unsubscribe(gomock.Any(), sub).Return(fmt.Errorf("socket closed"))

	_, err := registry.CreateChannel(ctx, "messages:c1", messagesFilter, nil)
	req.NoError(err)

	// When the transport fails to tear down
	registry.RemoveChannel(ctx, "messages:c1")

	// Then the handle is deregistered anyway
	req.False(registry.Live("messages:c1"))
}

func TestRegistry_RemoveChannel_UnknownKeyIsNoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)

	// No transport call is expected
	registry.RemoveChannel(context.Background(), "messages:unknown")
}

func TestRegistry_SubscribeError_LeavesNoHandle(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)

	transport.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("timeout"))

	_, err := registry.CreateChannel(context.Background(), "messages:c1", messagesFilter, nil)
	req.Error(err)
	req.Zero(registry.Len())
}

func TestChannelSet_CleanupOnlyReleasesOwnedChannels(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)
	viewA := registry.Owner()
	viewB := registry.Owner()

	subA := newSubscription(ctrl, "messages:c1")
	subB := newSubscription(ctrl, "notifications:u1")
	subA2 := newSubscription(ctrl, "messages:c1")

	transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).Return(subA, nil)
	transport.EXPECT().Subscribe(gomock.Any(), "notifications:u1", gomock.Any(), gomock.Any()).Return(subB, nil)
	_, err := viewA.CreateChannel(ctx, "messages:c1", messagesFilter, nil)
	req.NoError(err)
	_, err = viewB.CreateChannel(ctx, "notifications:u1", contract.ChangeFilter{}, nil)
	req.NoError(err)

	// Given view B takes over the messages channel
	transport.EXPECT().Unsubscribe(gomock.Any(), subA).Return(nil)
	transport.EXPECT().Subscribe(gomock.Any(), "messages:c1", gomock.Any(), gomock.Any()).Return(subA2, nil)
	_, err = viewB.CreateChannel(ctx, "messages:c1", messagesFilter, nil)
	req.NoError(err)

	// When view A is torn down
	viewA.Cleanup(ctx)

	// Then view B's channels are untouched
	req.Equal(2, registry.Len())

	// When view B is torn down, all its channels go
	transport.EXPECT().Unsubscribe(gomock.Any(), subA2).Return(nil)
	transport.EXPECT().Unsubscribe(gomock.Any(), subB).Return(nil)
	viewB.Cleanup(ctx)
	req.Zero(registry.Len())
}

func TestRegistry_KeyLocksAreReleased(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	transport := mocks.NewMockRealtime(ctrl)
	registry := NewRegistry(slog.Default(), transport)

	transport.EXPECT().Subscribe(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, key string, _ contract.ChangeFilter, _ contract.ChangeHandler) (contract.Subscription, error) {
			return newSubscription(ctrl, key), nil
		}).Times(50)
	transport.EXPECT().Unsubscribe(gomock.Any(), gomock.Any()).Return(nil).Times(50)

	// Given a long session visiting many conversations
	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("messages:c%d", i)
		_, err := registry.CreateChannel(ctx, key, messagesFilter, nil)
		req.NoError(err)
		if i%2 == 0 {
			registry.RemoveChannel(ctx, key)
		}
	}
	registry.RemoveChannel(ctx, "messages:never-opened")
	registry.Cleanup(ctx)

	// Then no per-key lock outlives its operation
	req.Zero(registry.Len())
	req.Empty(registry.keyLocks)
}
