package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrNoSubscribers is returned when an event has nobody to handle it.
var ErrNoSubscribers = errors.New("no handlers subscribed to event type")

// InMemoryEmitter dispatches events synchronously to handlers subscribed
// to the event's type.
type InMemoryEmitter struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	logger   *slog.Logger
}

// NewInMemoryEmitter creates an emitter with no subscriptions.
func NewInMemoryEmitter(logger *slog.Logger) *InMemoryEmitter {
	return &InMemoryEmitter{
		handlers: make(map[string][]Handler),
		logger:   logger.With("component", "event_emitter"),
	}
}

// Subscribe registers handler for events of eventType.
func (e *InMemoryEmitter) Subscribe(eventType string, handler Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[eventType] = append(e.handlers[eventType], handler)
	e.logger.Debug("subscribed handler",
		"event_type", eventType,
		"handler_count", len(e.handlers[eventType]))
}

// EmitEvent runs every handler subscribed to the event's type. All handlers
// run even when one fails; their errors are joined. An event nobody
// subscribed to fails with ErrNoSubscribers, since a generation request
// dropped on the floor would never finish.
func (e *InMemoryEmitter) EmitEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	e.mu.RLock()
	handlers := append([]Handler(nil), e.handlers[event.Type]...)
	e.mu.RUnlock()

	logger := e.logger.With("event_id", event.ID, "event_type", event.Type)
	if len(handlers) == 0 {
		logger.Warn("no handlers subscribed for event")
		return fmt.Errorf("%w: %s", ErrNoSubscribers, event.Type)
	}

	var errs []error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			logger.Error("handler failed to process event", "error", err, "handler_index", i)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ Emitter = (*InMemoryEmitter)(nil)
