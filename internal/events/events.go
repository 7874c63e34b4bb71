package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Sniplyy/VibeWall/internal/generation"
	"github.com/google/uuid"
)

// TypeGenerationRequested is published when a client asks for a generation.
const TypeGenerationRequested = "generation.requested"

// Event is a typed message with a JSON payload.
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewEvent serializes payload into a new event of the given type.
func NewEvent(eventType string, payload any) (*Event, error) {
	if eventType == "" {
		return nil, fmt.Errorf("event type cannot be empty")
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.New(),
		Type:      eventType,
		Payload:   data,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// UnmarshalPayload decodes the payload into v.
func (e *Event) UnmarshalPayload(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// GenerationRequested is the payload of TypeGenerationRequested.
type GenerationRequested struct {
	// TaskID is assigned by the publisher so it can answer the client
	// before the task exists.
	TaskID  uuid.UUID          `json:"task_id"`
	Request generation.Request `json:"request"`
	// Count is the number of image variations. Zero means the configured default.
	Count int `json:"count,omitempty"`
}

// NewGenerationRequested builds a TypeGenerationRequested event.
func NewGenerationRequested(payload GenerationRequested) (*Event, error) {
	if payload.TaskID == uuid.Nil {
		return nil, fmt.Errorf("task ID cannot be empty")
	}
	return NewEvent(TypeGenerationRequested, payload)
}

// Handler reacts to events.
type Handler interface {
	HandleEvent(ctx context.Context, event *Event) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, event *Event) error

// HandleEvent calls f.
func (f HandlerFunc) HandleEvent(ctx context.Context, event *Event) error {
	return f(ctx, event)
}

// Emitter publishes events.
type Emitter interface {
	EmitEvent(ctx context.Context, event *Event) error
}
