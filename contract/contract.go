//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// Used for logging during supervision, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// Query is the relational side of the hosted backend.
// Every method is fallible with a structured error (see errors.Code).
type Query interface {
	Select(ctx context.Context, table string, filter Filter, order *Order) ([]Record, error)
	Insert(ctx context.Context, table string, record Record) (Record, error)
	Update(ctx context.Context, table string, filter Filter, patch Record) error
}

// Subscription is a transport-level handle bound to one channel name.
type Subscription interface {
	Channel() string
}

// Realtime is the change-stream side of the hosted backend.
// Handlers of one subscription are invoked sequentially, in transport order.
type Realtime interface {
	Subscribe(ctx context.Context, channel string, filter ChangeFilter, handler ChangeHandler) (Subscription, error)
	Unsubscribe(ctx context.Context, sub Subscription) error
}

// ChangeSink consumes committed row changes. Consume must not block for long.
type ChangeSink interface {
	Consume(evt ChangeEvent)
}

// FunctionInvoker calls a serverless function of the hosted backend.
type FunctionInvoker interface {
	Invoke(ctx context.Context, name string, body any, headers map[string]string) (Record, error)
}

// Toaster shows transient feedback to the user. Only user-initiated actions use it.
type Toaster interface {
	Success(message string)
	Error(message string)
}

// IChannelRegistry keeps at most one live subscription per channel key.
type IChannelRegistry interface {
	CreateChannel(ctx context.Context, key string, filter ChangeFilter, handler ChangeHandler) (Subscription, error)
	RemoveChannel(ctx context.Context, key string)
	Cleanup(ctx context.Context)
}
