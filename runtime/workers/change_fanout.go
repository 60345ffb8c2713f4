package workers

import (
	"context"
	"log/slog"

	"marketsync/contract"
)

// ChangeFanout moves committed row changes from the store's feed to every
// sink, one event at a time, so that sinks observe commit order.
//
// Delivery is best effort: a panicking sink loses the event it panicked on
// and the supervisor restarts the worker.
type ChangeFanout struct {
	log     *slog.Logger
	changes <-chan contract.ChangeEvent
	sinks   []contract.ChangeSink
}

func NewChangeFanout(log *slog.Logger, changes <-chan contract.ChangeEvent, sinks ...contract.ChangeSink) *ChangeFanout {
	return &ChangeFanout{log: log, changes: changes, sinks: sinks}
}

func (w *ChangeFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt, ok := <-w.changes:
			if !ok {
				w.log.Debug("Change feed closed")
				return nil
			}
			w.Fanout(evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping change fan-out")
			return nil
		}
	}
}

// Fanout hands evt to each sink in registration order.
func (w *ChangeFanout) Fanout(evt contract.ChangeEvent) {
	for _, sink := range w.sinks {
		sink.Consume(evt)
	}
}
