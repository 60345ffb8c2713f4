// Package storage is a Badger-backed stand-in for the hosted relational
// backend, used for local runs, simulations and end-to-end tests.
package storage

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"marketsync/contract"
	"marketsync/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
)

const rowPrefix = "row:"

// OpenDB opens Badger at path, or in memory when path is empty.
func OpenDB(path string) (*badger.DB, error) {
	options := badger.DefaultOptions(path).WithLoggingLevel(badger.ERROR)
	if path == "" {
		options = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	}
	return badger.Open(options)
}

// Store implements contract.Query. Rows live under "row:{table}:{id}" with
// time-ordered ids, so a prefix scan returns a table in insertion order.
// Every committed write is published on the change feed.
type Store struct {
	// mu serializes writes so that change events leave in commit order.
	mu      sync.Mutex
	db      *badger.DB
	log     *slog.Logger
	changes chan<- contract.ChangeEvent
	now     func() time.Time
}

func NewStore(db *badger.DB, log *slog.Logger, changes chan<- contract.ChangeEvent) *Store {
	return &Store{db: db, log: log, changes: changes, now: time.Now}
}

func tablePrefix(table string) []byte {
	return []byte(rowPrefix + table + ":")
}

func rowKey(table, id string) []byte {
	return []byte(rowPrefix + table + ":" + id)
}

func (s *Store) Select(ctx context.Context, table string, filter contract.Filter, order *contract.Order) ([]contract.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Backend(codes.Canceled, "select %s: %v", table, err)
	}
	var rows []contract.Record
	err := s.db.View(func(txn *badger.Txn) error {
		return scan(txn, table, func(_ []byte, r contract.Record) error {
			if filter.Matches(r) {
				rows = append(rows, r)
			}
			return nil
		})
	})
	if err != nil {
		return nil, errors.Backend(codes.Internal, "select %s: %v", table, err)
	}
	if order != nil {
		slices.SortStableFunc(rows, func(a, b contract.Record) int {
			c := compareValues(a[order.Column], b[order.Column])
			if !order.Ascending {
				return -c
			}
			return c
		})
	}
	return rows, nil
}

// Insert assigns id and created_at when missing and returns the stored row.
func (s *Store) Insert(ctx context.Context, table string, record contract.Record) (contract.Record, error) {
	row := contract.Record{}.Merge(record)
	if row.String("id") == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return nil, errors.Backend(codes.Internal, "insert %s: %v", table, err)
		}
		row["id"] = id.String()
	}
	now := s.now()
	if row.String("created_at") == "" {
		row["created_at"] = contract.FormatTime(now)
	}
	data, err := encodeRecord(row)
	if err != nil {
		return nil, errors.Backend(codes.InvalidArgument, "insert %s: %v", table, err)
	}
	stored, err := decodeRecord(data)
	if err != nil {
		return nil, errors.Backend(codes.Internal, "insert %s: %v", table, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	key := rowKey(table, row.String("id"))
	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return errors.Backend(codes.AlreadyExists, "%s %s already exists", table, row.String("id"))
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, data)
	})
	if err != nil {
		if errors.Code(err) == codes.AlreadyExists {
			return nil, err
		}
		return nil, errors.Backend(codes.Internal, "insert %s: %v", table, err)
	}

	s.publish(ctx, contract.ChangeEvent{Type: contract.EventInsert, Table: table, New: stored, Old: contract.Record{}, CommitAt: now})
	return stored, nil
}

// Update shallow-merges patch into every row matching filter.
// Matching no row is not an error.
func (s *Store) Update(ctx context.Context, table string, filter contract.Filter, patch contract.Record) error {
	if len(filter) == 0 {
		return errors.Backend(codes.InvalidArgument, "update %s without filter", table)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []contract.ChangeEvent
	now := s.now()
	err := s.db.Update(func(txn *badger.Txn) error {
		type write struct {
			key  []byte
			data []byte
		}
		var writes []write
		err := scan(txn, table, func(key []byte, old contract.Record) error {
			if !filter.Matches(old) {
				return nil
			}
			data, err := encodeRecord(old.Merge(patch))
			if err != nil {
				return err
			}
			updated, err := decodeRecord(data)
			if err != nil {
				return err
			}
			writes = append(writes, write{key: bytes.Clone(key), data: data})
			events = append(events, contract.ChangeEvent{Type: contract.EventUpdate, Table: table, New: updated, Old: old, CommitAt: now})
			return nil
		})
		if err != nil {
			return err
		}
		for _, w := range writes {
			if err := txn.Set(w.key, w.data); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Backend(codes.Internal, "update %s: %v", table, err)
	}

	for _, evt := range events {
		s.publish(ctx, evt)
	}
	s.log.Debug("Rows updated", "table", table, "count", len(events))
	return nil
}

// Tables lists the tables holding at least one row.
func (s *Store) Tables() ([]string, error) {
	seen := make(map[string]struct{})
	var tables []string
	err := s.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()
		prefix := []byte(rowPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			rest := bytes.TrimPrefix(it.Item().Key(), prefix)
			table, _, ok := bytes.Cut(rest, []byte(":"))
			if !ok {
				continue
			}
			if _, dup := seen[string(table)]; !dup {
				seen[string(table)] = struct{}{}
				tables = append(tables, string(table))
			}
		}
		return nil
	})
	return tables, err
}

func (s *Store) publish(ctx context.Context, evt contract.ChangeEvent) {
	if s.changes == nil {
		return
	}
	select {
	case s.changes <- evt:
	case <-ctx.Done():
		s.log.Warn("Change event lost", "table", evt.Table, "type", evt.Type, "error", ctx.Err())
	}
}

func scan(txn *badger.Txn, table string, fn func(key []byte, r contract.Record) error) error {
	prefix := tablePrefix(table)
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		var record contract.Record
		err := item.Value(func(value []byte) error {
			r, err := decodeRecord(value)
			record = r
			return err
		})
		if err != nil {
			return err
		}
		if err := fn(item.Key(), record); err != nil {
			return err
		}
	}
	return nil
}

// compareValues orders nulls first, then numbers, booleans and strings by value.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch x := a.(type) {
	case float64:
		if y, ok := b.(float64); ok {
			return cmp.Compare(x, y)
		}
	case bool:
		if y, ok := b.(bool); ok {
			switch {
			case x == y:
				return 0
			case !x:
				return -1
			default:
				return 1
			}
		}
	}
	return cmp.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
