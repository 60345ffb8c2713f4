// Package realtime keeps client-side subscriptions to the backend change stream
// consistent: one live channel per key, torn down before being replaced.
package realtime

import (
	"context"
	"log/slog"
	"sync"

	"marketsync/contract"
)

var _ contract.IChannelRegistry = (*Registry)(nil)

// Registry is the process-wide table of live channels, keyed by channel name.
// The transport refuses two live subscriptions under the same name, so
// CreateChannel always tears the previous handle down before opening a new one.
type Registry struct {
	mu        sync.Mutex
	log       *slog.Logger
	transport contract.Realtime
	channels  map[string]contract.Subscription
	keyLocks  map[string]*keyLock
}

func NewRegistry(log *slog.Logger, transport contract.Realtime) *Registry {
	return &Registry{
		log:       log,
		transport: transport,
		channels:  make(map[string]contract.Subscription),
		keyLocks:  make(map[string]*keyLock),
	}
}

// keyLock is dropped from the registry once nobody holds or waits for it.
type keyLock struct {
	mu   sync.Mutex
	refs int
}

// lockKey serializes operations on one key without blocking the other keys
// while the transport handshake is in flight.
func (r *Registry) lockKey(key string) func() {
	r.mu.Lock()
	l, ok := r.keyLocks[key]
	if !ok {
		l = &keyLock{}
		r.keyLocks[key] = l
	}
	l.refs++
	r.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		r.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(r.keyLocks, key)
		}
		r.mu.Unlock()
	}
}

// CreateChannel opens a subscription under key, replacing any live one.
// Teardown of the previous handle and creation of the new one happen under
// the same key lock, so no other caller observes two handles for key.
func (r *Registry) CreateChannel(ctx context.Context, key string, filter contract.ChangeFilter,
	handler contract.ChangeHandler) (contract.Subscription, error) {
	unlock := r.lockKey(key)
	defer unlock()

	if previous, ok := r.take(key); ok {
		r.log.Debug("Replacing live channel", "channel", key)
		r.teardown(ctx, previous)
	}

	sub, err := r.transport.Subscribe(ctx, key, filter, handler)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.channels[key] = sub
	r.mu.Unlock()
	return sub, nil
}

// RemoveChannel tears down the handle under key, no-op when absent.
func (r *Registry) RemoveChannel(ctx context.Context, key string) {
	unlock := r.lockKey(key)
	defer unlock()

	if sub, ok := r.take(key); ok {
		r.teardown(ctx, sub)
	}
}

// removeIf tears down the handle under key only if it is still sub.
func (r *Registry) removeIf(ctx context.Context, key string, sub contract.Subscription) {
	unlock := r.lockKey(key)
	defer unlock()

	r.mu.Lock()
	current, ok := r.channels[key]
	if !ok || current != sub {
		r.mu.Unlock()
		return
	}
	delete(r.channels, key)
	r.mu.Unlock()
	r.teardown(ctx, sub)
}

// Cleanup tears down every live channel.
func (r *Registry) Cleanup(ctx context.Context) {
	for _, key := range r.Keys() {
		r.RemoveChannel(ctx, key)
	}
}

// Live reports whether a handle is registered under key.
func (r *Registry) Live(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.channels[key]
	return ok
}

func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := make([]string, 0, len(r.channels))
	for key := range r.channels {
		keys = append(keys, key)
	}
	return keys
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}

func (r *Registry) take(key string) (contract.Subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.channels[key]
	if ok {
		delete(r.channels, key)
	}
	return sub, ok
}

// teardown is best-effort: a flaky transport must never block navigation.
func (r *Registry) teardown(ctx context.Context, sub contract.Subscription) {
	if err := r.transport.Unsubscribe(ctx, sub); err != nil {
		r.log.Warn("Channel teardown failed", "channel", sub.Channel(), "error", err)
	}
}

// Owner returns a view-scoped handle set backed by the registry.
func (r *Registry) Owner() *ChannelSet {
	return &ChannelSet{registry: r, owned: make(map[string]contract.Subscription)}
}

var _ contract.IChannelRegistry = (*ChannelSet)(nil)

// ChannelSet tracks the channels one view opened, so the view can release
// exactly its own channels on teardown.
type ChannelSet struct {
	mu       sync.Mutex
	registry *Registry
	owned    map[string]contract.Subscription
}

func (s *ChannelSet) CreateChannel(ctx context.Context, key string, filter contract.ChangeFilter,
	handler contract.ChangeHandler) (contract.Subscription, error) {
	sub, err := s.registry.CreateChannel(ctx, key, filter, handler)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.owned[key] = sub
	s.mu.Unlock()
	return sub, nil
}

func (s *ChannelSet) RemoveChannel(ctx context.Context, key string) {
	s.mu.Lock()
	sub, ok := s.owned[key]
	delete(s.owned, key)
	s.mu.Unlock()
	if ok {
		s.registry.removeIf(ctx, key, sub)
	}
}

// Cleanup releases every channel this set still owns. Channels replaced by
// another owner in the meantime are left alone.
func (s *ChannelSet) Cleanup(ctx context.Context) {
	s.mu.Lock()
	owned := s.owned
	s.owned = make(map[string]contract.Subscription)
	s.mu.Unlock()
	for key, sub := range owned {
		s.registry.removeIf(ctx, key, sub)
	}
}
