package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func marshalFrame(t *testing.T, f Frame) string {
	t.Helper()
	data, err := json.Marshal(f)
	require.NoError(t, err)
	return string(data)
}

func TestFrames_WireShape(t *testing.T) {
	req, err := NewRequest("r1", "turn.send", map[string]string{"text": "Dr. Sharma"})
	require.NoError(t, err)

	res, err := NewResponse("r1", map[string]string{"stage": "main_conversation"})
	require.NoError(t, err)

	ev, err := NewEvent(EventTokenReveal, map[string]string{"tokenNumber": "T0711482"}, 7)
	require.NoError(t, err)

	tests := []struct {
		name  string
		frame Frame
		want  string
	}{
		{"request", req, `{"type":"req","id":"r1","method":"turn.send","params":{"text":"Dr. Sharma"}}`},
		{"response", res, `{"type":"res","id":"r1","ok":true,"payload":{"stage":"main_conversation"}}`},
		{"error", NewErrorResponse("r2", ErrorShape{Code: "unavailable", Message: "kiosk is closed"}),
			`{"type":"res","id":"r2","ok":false,"error":{"code":"unavailable","message":"kiosk is closed"}}`},
		{"event", ev, `{"type":"event","event":"token.reveal","payload":{"tokenNumber":"T0711482"},"seq":7}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, marshalFrame(t, tt.frame))
		})
	}
}

func TestNewEvent_NilPayloadAndZeroSeq(t *testing.T) {
	ev, err := NewEvent(EventTokenCleared, nil, 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"event","event":"token.cleared","payload":null}`, marshalFrame(t, ev))
}

func TestNewEvent_UnencodablePayload(t *testing.T) {
	_, err := NewEvent(EventTokenIssued, map[string]any{"card": make(chan int)}, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token.issued")

	_, err = NewRequest("r4", "turn.send", func() {})
	assert.ErrorContains(t, err, "turn.send params")
}

func TestConnectParams_DisplayHandshake(t *testing.T) {
	raw := `{
		"minProtocol": 1, "maxProtocol": 1,
		"client": {"id": "lobby-screen", "version": "1.0", "platform": "web", "mode": "display", "kioskId": "main-entrance"},
		"auth": {"token": "secret"}
	}`
	var p ConnectParams
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	assert.Equal(t, ModeDisplay, p.Client.Mode)
	assert.Equal(t, "main-entrance", p.Client.KioskID)
	require.NotNil(t, p.Auth)
	assert.Equal(t, "secret", p.Auth.Token)

	p.Auth = nil
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"auth"`)
}

func TestHelloOK_AdvertisesKiosk(t *testing.T) {
	hello := HelloOK{
		Protocol: ProtocolVersion,
		Server:   ServerInfo{Version: "dev", Kiosk: "City Hospital", ConnID: "c1"},
		Features: Features{Methods: []string{"turn.send"}, Events: []string{EventUtterance}},
		Policy:   ServerPolicy{MaxPayload: maxPayload, ReplyDelayMs: 1000, TickIntervalMs: 30000},
	}
	data, err := json.Marshal(hello)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "City Hospital", decoded["server"].(map[string]any)["kiosk"])
	assert.Equal(t, float64(1000), decoded["policy"].(map[string]any)["replyDelayMs"])
	assert.Equal(t, []any{"bot.utterance"}, decoded["features"].(map[string]any)["events"])
}

func TestClientMode_Normalize(t *testing.T) {
	tests := []struct {
		in   ClientMode
		want ClientMode
		ok   bool
	}{
		{"", ModeDisplay, true},
		{ModeDisplay, ModeDisplay, true},
		{ModeOperator, ModeOperator, true},
		{"signage", "signage", false},
	}
	for _, tt := range tests {
		got, ok := tt.in.normalize()
		assert.Equal(t, tt.want, got, "mode %q", tt.in)
		assert.Equal(t, tt.ok, ok, "mode %q", tt.in)
	}
}
