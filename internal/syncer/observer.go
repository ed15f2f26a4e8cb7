package syncer

import (
	"log/slog"

	"github.com/mmynk/highlowbuffalo/internal/metrics"
)

// Op names an adapter operation.
type Op string

const (
	OpLoad   Op = "load"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
	OpReact  Op = "react"
	OpFlag   Op = "flag"
)

// State is where an operation is in its lifecycle.
type State string

const (
	StatePending   State = "pending"
	StateConfirmed State = "confirmed"
	StateFailed    State = "failed"
)

// Event reports one state transition. ID is empty for load and for a create
// that has not been confirmed yet.
type Event struct {
	Op    Op
	ID    string
	State State
	Err   error
}

// Observer receives every transition in order for a given operation.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// LogObserver logs transitions and counts them in metrics.SyncOperations.
type LogObserver struct {
	Logger *slog.Logger
}

func (o LogObserver) Observe(e Event) {
	metrics.SyncOperations.WithLabelValues(string(e.Op), string(e.State)).Inc()

	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch e.State {
	case StateFailed:
		logger.Warn("Sync operation failed", "op", e.Op, "reflection_id", e.ID, "error", e.Err)
	default:
		logger.Debug("Sync operation", "op", e.Op, "reflection_id", e.ID, "state", e.State)
	}
}
