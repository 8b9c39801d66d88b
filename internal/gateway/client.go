package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/soyeahso/frontdesk/internal/logging"
)

// writeTimeout bounds a single frame write so a stalled display cannot
// block broadcasts to the others.
const writeTimeout = 10 * time.Second

// Client is one authenticated screen: a lobby display mirroring the
// conversation, or the front desk console. Frames reach it both from its
// own request handlers and from the kiosk's broadcast hook.
type Client struct {
	ConnID      string
	Info        ClientInfo
	Socket      *websocket.Conn
	AuthResult  AuthResult
	ConnectedAt time.Time
	RemoteAddr  string

	mu     sync.Mutex
	closed bool
	log    *logging.Logger
}

// NewClient wraps a connection that has finished the connect handshake.
func NewClient(conn *websocket.Conn, info ClientInfo, authResult AuthResult, log *logging.Logger) *Client {
	return &Client{
		ConnID:      uuid.New().String(),
		Info:        info,
		Socket:      conn,
		AuthResult:  authResult,
		ConnectedAt: time.Now(),
		RemoteAddr:  conn.RemoteAddr().String(),
		log:         log,
	}
}

// IsOperator reports whether the client is a front desk console.
func (c *Client) IsOperator() bool {
	return c.Info.Mode == ModeOperator
}

// Send writes one frame. Writes are serialized because gorilla connections
// allow a single concurrent writer.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.Socket.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.Socket.WriteJSON(frame)
}

func (c *Client) SendEvent(event string, payload any, seq int64) error {
	f, err := NewEvent(event, payload, seq)
	if err != nil {
		return err
	}
	return c.Send(f)
}

func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

func (c *Client) RespondError(reqID string, errShape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, errShape))
}

// ReadFrame blocks for the next frame from the screen.
func (c *Client) ReadFrame() (Frame, error) {
	var f Frame
	err := c.Socket.ReadJSON(&f)
	return f, err
}

// Close closes the connection. Later sends fail with ErrClientClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.Socket.Close()
}

// ClientRegistry tracks the screens attached to the kiosk, keyed by
// connection ID.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     *logging.Logger
}

func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ConnID] = c
	r.log.Info().
		Str("connId", c.ConnID).
		Str("client", c.Info.ID).
		Str("mode", string(c.Info.Mode)).
		Str("kioskId", c.Info.KioskID).
		Msg("screen attached")
}

func (r *ClientRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[connID]; !ok {
		return
	}
	delete(r.clients, connID)
	r.log.Info().Str("connId", connID).Msg("screen detached")
}

func (r *ClientRegistry) Get(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[connID]
	return c, ok
}

func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CountMode returns how many attached screens are in mode.
func (r *ClientRegistry) CountMode(mode ClientMode) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, c := range r.clients {
		if c.Info.Mode == mode {
			n++
		}
	}
	return n
}

// Broadcast sends a kiosk event to every attached screen and returns how
// many received it. A screen that fails a write is skipped; its read loop
// notices the broken connection and detaches it.
func (r *ClientRegistry) Broadcast(event string, payload any, seq int64) int {
	frame, err := NewEvent(event, payload, seq)
	if err != nil {
		r.log.Error().Err(err).Str("event", event).Msg("encoding broadcast")
		return 0
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	sent := 0
	for _, c := range r.clients {
		if err := c.Send(frame); err != nil {
			r.log.Warn().Err(err).Str("connId", c.ConnID).Str("event", event).Msg("broadcast send failed")
			continue
		}
		sent++
	}
	r.log.Debug().Str("event", event).Int64("seq", seq).Int("screens", sent).Msg("kiosk event broadcast")
	return sent
}

// CloseAll detaches every screen, used on gateway shutdown.
func (r *ClientRegistry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.clients {
		c.Close()
		delete(r.clients, id)
	}
}
