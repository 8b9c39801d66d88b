// Package hooks lets integrations observe kiosk lifecycle events such as
// turns, token issuance and reveals.
package hooks

import (
	"context"
	"sync"
	"time"

	"github.com/soyeahso/frontdesk/internal/logging"
)

// Event names a kiosk lifecycle point.
type Event string

const (
	EventSessionStart  Event = "session_start"
	EventSessionEnd    Event = "session_end"
	EventTurnReceived  Event = "turn_received"
	EventUtterance     Event = "utterance"
	EventTokenIssued   Event = "token_issued"
	EventTokenRevealed Event = "token_revealed"
	EventTokenCleared  Event = "token_cleared"
	EventSpeechError   Event = "speech_error"
	EventGatewayStart  Event = "gateway_start"
	EventGatewayStop   Event = "gateway_stop"
)

// AllEvents lists all known hook events.
var AllEvents = []Event{
	EventSessionStart,
	EventSessionEnd,
	EventTurnReceived,
	EventUtterance,
	EventTokenIssued,
	EventTokenRevealed,
	EventTokenCleared,
	EventSpeechError,
	EventGatewayStart,
	EventGatewayStop,
}

// Payload carries event data to hook handlers.
type Payload struct {
	Event Event          `json:"event"`
	At    time.Time      `json:"at"`
	Data  map[string]any `json:"data,omitempty"`
}

// Handler handles a hook event. A returned error is logged and does not
// stop other handlers.
type Handler func(ctx context.Context, p Payload) error

// Manager keeps hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[Event][]namedHandler
	pending  sync.WaitGroup
	log      *logging.Logger
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[Event][]namedHandler),
		log:      log.Sub("hooks"),
	}
}

// On registers a handler for the given event under name.
func (m *Manager) On(event Event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", string(event)).Str("handler", name).Msg("hook registered")
}

// Off removes all handlers with the given name from the event.
func (m *Manager) Off(event Event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handlers := m.handlers[event]
	filtered := make([]namedHandler, 0, len(handlers))
	for _, h := range handlers {
		if h.name != name {
			filtered = append(filtered, h)
		}
	}
	m.handlers[event] = filtered
}

func (m *Manager) snapshot(event Event) []namedHandler {
	m.mu.RLock()
	defer m.mu.RUnlock()
	handlers := make([]namedHandler, len(m.handlers[event]))
	copy(handlers, m.handlers[event])
	return handlers
}

// Emit calls every handler for event in registration order and returns when
// they are done.
func (m *Manager) Emit(ctx context.Context, event Event, data map[string]any) {
	handlers := m.snapshot(event)
	if len(handlers) == 0 {
		return
	}

	payload := Payload{Event: event, At: time.Now(), Data: data}
	for _, h := range handlers {
		m.run(ctx, h, payload)
	}
}

// EmitAsync calls every handler for event on its own goroutine and returns
// immediately. Wait blocks until they finish.
func (m *Manager) EmitAsync(ctx context.Context, event Event, data map[string]any) {
	handlers := m.snapshot(event)
	if len(handlers) == 0 {
		return
	}

	payload := Payload{Event: event, At: time.Now(), Data: data}
	m.pending.Add(len(handlers))
	for _, h := range handlers {
		go func() {
			defer m.pending.Done()
			m.run(ctx, h, payload)
		}()
	}
}

// Wait blocks until all handlers started by EmitAsync have returned.
func (m *Manager) Wait() {
	m.pending.Wait()
}

func (m *Manager) run(ctx context.Context, h namedHandler, p Payload) {
	defer func() {
		if r := recover(); r != nil {
			m.log.Error().
				Interface("panic", r).
				Str("event", string(p.Event)).
				Str("handler", h.name).
				Msg("hook handler panicked")
		}
	}()
	if err := h.handler(ctx, p); err != nil {
		m.log.Warn().
			Err(err).
			Str("event", string(p.Event)).
			Str("handler", h.name).
			Msg("hook handler error")
	}
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event Event) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the events that have at least one handler registered.
func (m *Manager) Events() []Event {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]Event, 0, len(m.handlers))
	for event, handlers := range m.handlers {
		if len(handlers) > 0 {
			events = append(events, event)
		}
	}
	return events
}
