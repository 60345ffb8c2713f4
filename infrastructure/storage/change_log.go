package storage

import (
	"fmt"
	"log/slog"

	"marketsync/contract"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const changePrefix = "chg:"

// ChangeLog is a sink keeping every committed change, for inspection.
type ChangeLog struct {
	db  *badger.DB
	log *slog.Logger
}

func NewChangeLog(db *badger.DB, log *slog.Logger) *ChangeLog {
	return &ChangeLog{db: db, log: log}
}

// Consume stores the event under "chg:{commit nanos}:{uuid}": the padded
// timestamp keeps keys chronological, the uuid separates same-nanosecond commits.
func (c *ChangeLog) Consume(evt contract.ChangeEvent) {
	key := fmt.Sprintf("%s%019d:%s", changePrefix, evt.CommitAt.UnixNano(), uuid.NewString())
	data, err := encodeRecord(contract.Record{
		"type":      string(evt.Type),
		"table":     evt.Table,
		"id":        evt.New.String("id"),
		"commit_at": contract.FormatTime(evt.CommitAt),
		"new":       evt.New,
	})
	if err != nil {
		c.log.Error("Change not logged", "table", evt.Table, "error", err)
		return
	}
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		c.log.Error("Change not logged", "table", evt.Table, "error", err)
	}
}

// Recent returns up to limit changes, newest first.
func (c *ChangeLog) Recent(limit int) ([]contract.Record, error) {
	var changes []contract.Record
	err := c.db.View(func(txn *badger.Txn) error {
		prefix := []byte(changePrefix)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(append(prefix, 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if limit > 0 && len(changes) == limit {
				break
			}
			err := it.Item().Value(func(value []byte) error {
				r, err := decodeRecord(value)
				if err == nil {
					changes = append(changes, r)
				}
				return err
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	return changes, err
}
