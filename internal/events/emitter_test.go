package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryEmitter(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("no subscribers", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		event, err := NewEvent("orphan", map[string]string{"key": "value"})
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.ErrorIs(t, err, ErrNoSubscribers)
	})

	t.Run("nil event", func(t *testing.T) {
		assert.Error(t, NewInMemoryEmitter(logger).EmitEvent(context.Background(), nil))
	})

	t.Run("dispatches by type", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		first := &recordingHandler{}
		second := &recordingHandler{}
		other := &recordingHandler{}
		emitter.Subscribe("wanted", first)
		emitter.Subscribe("wanted", second)
		emitter.Subscribe("other", other)

		event, err := NewEvent("wanted", map[string]string{"key": "value"})
		require.NoError(t, err)

		require.NoError(t, emitter.EmitEvent(context.Background(), event))
		assert.Equal(t, []*Event{event}, first.events)
		assert.Equal(t, []*Event{event}, second.events)
		assert.Empty(t, other.events)
	})

	t.Run("failing handler does not stop others", func(t *testing.T) {
		emitter := NewInMemoryEmitter(logger)
		failing := &recordingHandler{err: errors.New("handler error")}
		healthy := &recordingHandler{}
		emitter.Subscribe("wanted", failing)
		emitter.Subscribe("wanted", healthy)

		event, err := NewEvent("wanted", nil)
		require.NoError(t, err)

		err = emitter.EmitEvent(context.Background(), event)
		assert.EqualError(t, err, "handler error")
		assert.Len(t, failing.events, 1)
		assert.Len(t, healthy.events, 1)
	})
}
