package gateway

import (
	"context"
	"maps"

	"github.com/soyeahso/frontdesk/internal/hooks"
)

// kioskEvents maps kiosk hook events to the event names displays receive.
var kioskEvents = map[hooks.Event]string{
	hooks.EventUtterance:     EventUtterance,
	hooks.EventTokenIssued:   EventTokenIssued,
	hooks.EventTokenRevealed: EventTokenReveal,
	hooks.EventTokenCleared:  EventTokenCleared,
	hooks.EventSpeechError:   EventSpeechError,
}

const broadcastHook = "gateway.broadcast"

// subscribeKioskEvents forwards kiosk events to every connected client.
func (s *Server) subscribeKioskEvents() {
	if s.kiosk == nil {
		return
	}
	h := s.kiosk.Hooks()
	for ev, name := range kioskEvents {
		h.On(ev, broadcastHook, func(_ context.Context, p hooks.Payload) error {
			data := make(map[string]any, len(p.Data)+1)
			maps.Copy(data, p.Data)
			data["at"] = p.At.UnixMilli()
			s.clients.Broadcast(name, data, s.eventSeq.Add(1))
			return nil
		})
	}
}

// unsubscribeKioskEvents removes the broadcast hooks.
func (s *Server) unsubscribeKioskEvents() {
	if s.kiosk == nil {
		return
	}
	h := s.kiosk.Hooks()
	for ev := range kioskEvents {
		h.Off(ev, broadcastHook)
	}
}
