// Package runtime assembles the local backend: a Badger store, a realtime
// hub fed by the store's change feed, and the serverless functions.
package runtime

import (
	"context"
	"log/slog"
	"sync"

	"marketsync/contract"
	"marketsync/errors"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
)

const defaultQueueSize = 256

// Hub is the in-process change stream. Each client connection gets a
// HubClient implementing contract.Realtime; like the hosted transport, a
// client cannot hold two live subscriptions under the same channel name.
// Each subscription has its own queue and goroutine, so handlers of one
// channel run sequentially in publish order and a slow handler never delays
// the others.
type Hub struct {
	mu        sync.RWMutex
	log       *slog.Logger
	subs      map[string]*hubSubscription
	queueSize int
}

type hubSubscription struct {
	id      string
	channel string
	filter  contract.ChangeFilter
	handler contract.ChangeHandler
	queue   chan contract.ChangeEvent
	done    chan struct{}
	once    sync.Once
}

func (s *hubSubscription) Channel() string { return s.channel }

func (s *hubSubscription) close() {
	s.once.Do(func() { close(s.done) })
}

func (s *hubSubscription) deliver(log *slog.Logger) {
	for {
		select {
		case evt := <-s.queue:
			s.handler(evt)
		case <-s.done:
			if n := len(s.queue); n > 0 {
				log.Debug("Dropping undelivered events of closed channel", "channel", s.channel, "count", n)
			}
			return
		}
	}
}

func NewHub(log *slog.Logger, queueSize int) *Hub {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	return &Hub{log: log, subs: make(map[string]*hubSubscription), queueSize: queueSize}
}

// Client opens a connection with its own channel namespace.
func (h *Hub) Client() *HubClient {
	return &HubClient{hub: h, id: uuid.NewString()}
}

// HubClient is one connection to the hub.
type HubClient struct {
	hub *Hub
	id  string
}

func (c *HubClient) key(channel string) string {
	return c.id + "/" + channel
}

func (c *HubClient) Subscribe(ctx context.Context, channel string, filter contract.ChangeFilter,
	handler contract.ChangeHandler) (contract.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Backend(codes.Canceled, "subscribe %s: %v", channel, err)
	}
	h := c.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	key := c.key(channel)
	if _, exists := h.subs[key]; exists {
		return nil, errors.Backend(codes.AlreadyExists, "channel %s is already subscribed", channel)
	}
	sub := &hubSubscription{
		id:      uuid.NewString(),
		channel: channel,
		filter:  filter,
		handler: handler,
		queue:   make(chan contract.ChangeEvent, h.queueSize),
		done:    make(chan struct{}),
	}
	h.subs[key] = sub
	go sub.deliver(h.log)
	h.log.Debug("Channel subscribed", "channel", channel, "filter", filter.Expression())
	return sub, nil
}

func (c *HubClient) Unsubscribe(_ context.Context, sub contract.Subscription) error {
	h := c.hub
	h.mu.Lock()
	defer h.mu.Unlock()
	key := c.key(sub.Channel())
	current, ok := h.subs[key]
	if !ok {
		return errors.Backend(codes.NotFound, "channel %s is not subscribed", sub.Channel())
	}
	if theirs, ok := sub.(*hubSubscription); ok && theirs.id != current.id {
		return errors.Backend(codes.FailedPrecondition, "channel %s was replaced", sub.Channel())
	}
	delete(h.subs, key)
	current.close()
	h.log.Debug("Channel unsubscribed", "channel", sub.Channel())
	return nil
}

// Consume makes the hub a sink of the change fan-out.
func (h *Hub) Consume(evt contract.ChangeEvent) {
	h.Publish(evt)
}

// Publish queues evt on every subscription whose filter accepts it. It blocks
// while a queue is full rather than drop, since handlers rely on seeing every
// change of their scope.
func (h *Hub) Publish(evt contract.ChangeEvent) {
	h.mu.RLock()
	targets := make([]*hubSubscription, 0, len(h.subs))
	for _, sub := range h.subs {
		if sub.filter.Accepts(evt) {
			targets = append(targets, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.queue <- evt:
		case <-sub.done:
		}
	}
}

// Len is the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, sub := range h.subs {
		sub.close()
		delete(h.subs, key)
	}
}
