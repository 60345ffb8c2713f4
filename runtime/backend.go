package runtime

import (
	"context"
	"log/slog"
	"time"

	"marketsync/contract"
	"marketsync/infrastructure/storage"
	"marketsync/runtime/workers"

	"github.com/dgraph-io/badger/v4"
)

const (
	defaultMonitorInterval = 30 * time.Second
	saturationThreshold    = 0.8
)

type LocalOptions struct {
	// Path of the Badger directory; empty keeps everything in memory.
	Path            string
	QueueSize       int
	Secret          []byte
	CheckoutURL     string
	MonitorInterval time.Duration
}

// LocalBackend is a complete stand-in for the hosted backend.
type LocalBackend struct {
	DB        *badger.DB
	Store     *storage.Store
	Hub       *Hub
	Functions *Functions
	ChangeLog *storage.ChangeLog

	supervisor *workers.Supervisor
	cancel     context.CancelFunc
	done       chan struct{}
}

// StartLocalBackend opens the store and starts the change fan-out under supervision.
func StartLocalBackend(ctx context.Context, log *slog.Logger, opts LocalOptions) (*LocalBackend, error) {
	db, err := storage.OpenDB(opts.Path)
	if err != nil {
		return nil, err
	}
	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	changes := make(chan contract.ChangeEvent, queueSize)
	store := storage.NewStore(db, log, changes)
	hub := NewHub(log, queueSize)
	changeLog := storage.NewChangeLog(db, log)

	monitorInterval := opts.MonitorInterval
	if monitorInterval <= 0 {
		monitorInterval = defaultMonitorInterval
	}

	supervisor := workers.NewSupervisor(log)
	supervisor.Add(
		workers.NewChangeFanout(log, changes, hub, changeLog),
		workers.NewBackendMonitor(log, []workers.NamedChannel{{Name: "changes", Channel: changes}},
			hub.Len, monitorInterval, saturationThreshold),
	)

	runCtx, cancel := context.WithCancel(ctx)
	backend := &LocalBackend{
		DB:         db,
		Store:      store,
		Hub:        hub,
		Functions:  NewFunctions(log, store, opts.Secret, opts.CheckoutURL),
		ChangeLog:  changeLog,
		supervisor: supervisor,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go func() {
		defer close(backend.done)
		supervisor.Run(runCtx)
	}()
	log.Info("Local backend started", "path", opts.Path, "queue_size", queueSize)
	return backend, nil
}

// Realtime opens a new client connection to the hub.
func (b *LocalBackend) Realtime() contract.Realtime {
	return b.Hub.Client()
}

// Close stops the fan-out, ends every subscription and closes the database.
func (b *LocalBackend) Close() error {
	b.cancel()
	b.supervisor.Stop()
	<-b.done
	b.Hub.Close()
	return b.DB.Close()
}
