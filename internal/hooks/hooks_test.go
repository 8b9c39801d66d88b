package hooks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/soyeahso/frontdesk/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testManager() *Manager {
	return NewManager(logging.New(nil, "silent"))
}

func noop(_ context.Context, _ Payload) error { return nil }

func TestManager_On_And_Emit(t *testing.T) {
	m := testManager()

	var got Payload
	m.On(EventTokenIssued, "test", func(_ context.Context, p Payload) error {
		got = p
		return nil
	})

	m.Emit(context.Background(), EventTokenIssued, map[string]any{"token": "T0711482"})
	assert.Equal(t, EventTokenIssued, got.Event)
	assert.Equal(t, "T0711482", got.Data["token"])
	assert.False(t, got.At.IsZero())
}

func TestManager_Emit_Order(t *testing.T) {
	m := testManager()

	var order []string
	m.On(EventTurnReceived, "first", func(_ context.Context, _ Payload) error {
		order = append(order, "first")
		return nil
	})
	m.On(EventTurnReceived, "second", func(_ context.Context, _ Payload) error {
		order = append(order, "second")
		return nil
	})

	m.Emit(context.Background(), EventTurnReceived, nil)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestManager_Emit_HandlerErrorAndPanic(t *testing.T) {
	m := testManager()

	var lastCalled bool
	m.On(EventUtterance, "failing", func(_ context.Context, _ Payload) error {
		return errors.New("handler broke")
	})
	m.On(EventUtterance, "panicking", func(_ context.Context, _ Payload) error {
		panic("boom")
	})
	m.On(EventUtterance, "last", func(_ context.Context, _ Payload) error {
		lastCalled = true
		return nil
	})

	m.Emit(context.Background(), EventUtterance, nil)
	assert.True(t, lastCalled)
}

func TestManager_Emit_NoHandlers(t *testing.T) {
	m := testManager()
	m.Emit(context.Background(), EventGatewayStop, nil)
	m.EmitAsync(context.Background(), EventGatewayStop, nil)
	m.Wait()
}

func TestManager_Off(t *testing.T) {
	m := testManager()

	var calls int
	m.On(EventTokenCleared, "removable", func(_ context.Context, _ Payload) error {
		calls++
		return nil
	})
	m.On(EventTokenCleared, "keep", noop)

	m.Emit(context.Background(), EventTokenCleared, nil)
	m.Off(EventTokenCleared, "removable")
	m.Emit(context.Background(), EventTokenCleared, nil)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, m.Count(EventTokenCleared))
}

func TestManager_EmitAsync_Wait(t *testing.T) {
	m := testManager()

	var count atomic.Int32
	slow := func(_ context.Context, _ Payload) error {
		time.Sleep(20 * time.Millisecond)
		count.Add(1)
		return nil
	}
	m.On(EventTokenRevealed, "a", slow)
	m.On(EventTokenRevealed, "b", slow)

	m.EmitAsync(context.Background(), EventTokenRevealed, nil)

	done := make(chan struct{})
	go func() { m.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handlers did not complete in time")
	}
	assert.Equal(t, int32(2), count.Load())
}

func TestManager_Count(t *testing.T) {
	m := testManager()

	assert.Equal(t, 0, m.Count(EventSessionStart))
	m.On(EventSessionStart, "h1", noop)
	m.On(EventSessionStart, "h2", noop)
	assert.Equal(t, 2, m.Count(EventSessionStart))
}

func TestManager_Events(t *testing.T) {
	m := testManager()

	m.On(EventGatewayStart, "h1", noop)
	m.On(EventTokenIssued, "h2", noop)

	events := m.Events()
	assert.Len(t, events, 2)
	assert.Contains(t, events, EventGatewayStart)
	assert.Contains(t, events, EventTokenIssued)
}

func TestAllEvents(t *testing.T) {
	require.Len(t, AllEvents, 10)
	assert.Contains(t, AllEvents, EventTokenIssued)
	assert.Contains(t, AllEvents, EventSpeechError)
}
