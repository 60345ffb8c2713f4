// Package projection builds local, eventually-consistent copies of backend rows
// from snapshots and change events. It does not talk to the backend.
package projection

import (
	"log/slog"
	"sync"

	"marketsync/contract"
)

type Entity interface {
	GetID() string
}

// Codec converts between backend records and projected entities.
type Codec[T Entity] struct {
	Decode func(contract.Record) (T, error)
	Encode func(T) contract.Record
}

// Projection is an ordered sequence of entities held by one view.
// Inserts append; updates patch in place; nothing is ever removed by an event.
type Projection[T Entity] struct {
	mu    sync.RWMutex
	log   *slog.Logger
	codec Codec[T]
	items []T
}

func New[T Entity](log *slog.Logger, codec Codec[T]) *Projection[T] {
	return &Projection[T]{log: log, codec: codec}
}

// Replace installs a freshly fetched snapshot.
func (p *Projection[T]) Replace(items []T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append([]T(nil), items...)
}

// Merge installs a snapshot while keeping entities applied live since the
// snapshot was requested. Entities present in both keep the snapshot copy;
// the others are appended after the snapshot in arrival order.
func (p *Projection[T]) Merge(snapshot []T) {
	p.mu.Lock()
	defer p.mu.Unlock()
	seen := make(map[string]struct{}, len(snapshot))
	merged := make([]T, 0, len(snapshot)+len(p.items))
	for _, item := range snapshot {
		seen[item.GetID()] = struct{}{}
		merged = append(merged, item)
	}
	for _, item := range p.items {
		if _, ok := seen[item.GetID()]; !ok {
			merged = append(merged, item)
		}
	}
	p.items = merged
}

// ApplyInsert appends the record at the end of the sequence.
// There is no de-duplication: one subscription per scope guarantees that a
// server-side insert is observed once, including the sender's own echo.
func (p *Projection[T]) ApplyInsert(record contract.Record) bool {
	item, err := p.codec.Decode(record)
	if err != nil {
		p.log.Warn("Dropping undecodable insert", "error", err)
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = append(p.items, item)
	return true
}

// ApplyUpdate shallow-merges record into the entity with the same id.
// Updates for unknown ids are dropped rather than turned into inserts, since
// an update payload may be partial.
func (p *Projection[T]) ApplyUpdate(record contract.Record) bool {
	id := record.String("id")
	p.mu.Lock()
	defer p.mu.Unlock()

	idx := p.indexOf(id)
	if idx < 0 {
		p.log.Debug("Dropping update of unknown entity", "id", id)
		return false
	}
	merged, err := p.codec.Decode(p.codec.Encode(p.items[idx]).Merge(record))
	if err != nil {
		p.log.Warn("Dropping undecodable update", "id", id, "error", err)
		return false
	}
	p.items[idx] = merged
	return true
}

func (p *Projection[T]) indexOf(id string) int {
	for i, item := range p.items {
		if item.GetID() == id {
			return i
		}
	}
	return -1
}

func (p *Projection[T]) Find(id string) (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if idx := p.indexOf(id); idx >= 0 {
		return p.items[idx], true
	}
	var zero T
	return zero, false
}

// Items returns a copy of the current sequence.
func (p *Projection[T]) Items() []T {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]T(nil), p.items...)
}

func (p *Projection[T]) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.items)
}

func (p *Projection[T]) Count(predicate func(T) bool) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	n := 0
	for _, item := range p.items {
		if predicate(item) {
			n++
		}
	}
	return n
}
