package gateway

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the display protocol this gateway speaks.
const ProtocolVersion = 1

// Frame types. Screens send req frames and get res frames back; kiosk
// activity reaches them as event frames.
const (
	FrameTypeRequest  = "req"
	FrameTypeResponse = "res"
	FrameTypeEvent    = "event"
)

// Events pushed to kiosk displays.
const (
	EventChallenge    = "connect.challenge"
	EventUtterance    = "bot.utterance"
	EventTokenIssued  = "token.issued"
	EventTokenReveal  = "token.reveal"
	EventTokenCleared = "token.cleared"
	EventSpeechError  = "speech.error"
)

// kioskEventNames is the event list advertised in hello-ok, in the order a
// display meets them during one patient's visit.
var kioskEventNames = []string{
	EventChallenge,
	EventUtterance,
	EventTokenIssued,
	EventTokenReveal,
	EventTokenCleared,
	EventSpeechError,
}

// ClientMode says what a connection is for. A display mirrors the
// conversation on the lobby screen; an operator is the front desk console
// and may also change settings.
type ClientMode string

const (
	ModeDisplay  ClientMode = "display"
	ModeOperator ClientMode = "operator"
)

// normalize defaults an empty mode to display and reports unknown modes.
func (m ClientMode) normalize() (ClientMode, bool) {
	switch m {
	case "":
		return ModeDisplay, true
	case ModeDisplay, ModeOperator:
		return m, true
	}
	return m, false
}

// Frame is one WebSocket message. Which fields are set depends on Type:
// ID, Method and Params for req; ID, OK and Payload or Error for res;
// Event, Payload and Seq for event. Seq grows with every kiosk event so a
// display can tell it missed one.
type Frame struct {
	Type string `json:"type"`

	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`

	OK      *bool           `json:"ok,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   *ErrorShape     `json:"error,omitempty"`

	Event string `json:"event,omitempty"`
	Seq   int64  `json:"seq,omitempty"`
}

// ErrorShape is the error body of a failed res frame. Code is one of
// invalid_params, forbidden, not_found, unavailable, internal,
// method_not_found, unauthorized, protocol_mismatch or protocol_error.
type ErrorShape struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ConnectParams is the first request on a new socket.
type ConnectParams struct {
	MinProtocol int          `json:"minProtocol"`
	MaxProtocol int          `json:"maxProtocol"`
	Client      ClientInfo   `json:"client"`
	Auth        *ConnectAuth `json:"auth,omitempty"`
}

// ClientInfo identifies the connecting screen or console. KioskID names
// the entrance a display stands at when one gateway serves several.
type ClientInfo struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"displayName,omitempty"`
	Version     string     `json:"version"`
	Platform    string     `json:"platform"`
	Mode        ClientMode `json:"mode"`
	KioskID     string     `json:"kioskId,omitempty"`
}

// ConnectAuth carries the gateway token or password, whichever the
// configured auth mode asks for.
type ConnectAuth struct {
	Token    string `json:"token,omitempty"`
	Password string `json:"password,omitempty"`
}

// HelloOK answers a successful connect. It tells the display which kiosk it
// is attached to and how long the bot pauses before each reply, so the
// screen can show a typing indicator of the right length.
type HelloOK struct {
	Protocol int          `json:"protocol"`
	Server   ServerInfo   `json:"server"`
	Features Features     `json:"features"`
	Policy   ServerPolicy `json:"policy"`
}

type ServerInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
	Kiosk   string `json:"kiosk,omitempty"`
	ConnID  string `json:"connId"`
}

// Features lists the RPC methods open to this client's mode and the kiosk
// events it will be sent.
type Features struct {
	Methods []string `json:"methods"`
	Events  []string `json:"events"`
}

// ServerPolicy carries the limits and timings a display should honour.
type ServerPolicy struct {
	MaxPayload     int `json:"maxPayload"`
	ReplyDelayMs   int `json:"replyDelayMs"`
	TickIntervalMs int `json:"tickIntervalMs"`
}

func encodePayload(what string, v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", what, err)
	}
	return raw, nil
}

func NewRequest(id, method string, params any) (Frame, error) {
	raw, err := encodePayload(method+" params", params)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeRequest, ID: id, Method: method, Params: raw}, nil
}

func NewResponse(id string, payload any) (Frame, error) {
	raw, err := encodePayload("response "+id, payload)
	if err != nil {
		return Frame{}, err
	}
	ok := true
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Payload: raw}, nil
}

func NewErrorResponse(id string, e ErrorShape) Frame {
	ok := false
	return Frame{Type: FrameTypeResponse, ID: id, OK: &ok, Error: &e}
}

// NewEvent builds an event frame. A nil payload is sent as JSON null.
func NewEvent(event string, payload any, seq int64) (Frame, error) {
	raw, err := encodePayload(event+" event", payload)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameTypeEvent, Event: event, Payload: raw, Seq: seq}, nil
}
