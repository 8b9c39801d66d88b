package gateway

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/soyeahso/frontdesk/internal/config"
	"github.com/soyeahso/frontdesk/internal/dialogue"
	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/soyeahso/frontdesk/internal/kiosk"
	"github.com/soyeahso/frontdesk/internal/speech"
)

// safeConfigPrefixes lists config path prefixes that can be read and
// written via RPC. All other paths are denied by default (allowlist).
var safeConfigPrefixes = []string{
	"gateway.port",
	"gateway.bind",
	"gateway.customBindHost",
	"gateway.allowedOrigins",
	"logging",
	"dialogue",
	"speech",
	"directory",
	"metrics",
}

// operatorMethods can only be called from an operator console. Lobby
// displays are reachable by anyone standing at the kiosk.
var operatorMethods = map[string]bool{
	"config.set": true,
}

func isAllowedConfigPath(key string) bool {
	for _, prefix := range safeConfigPrefixes {
		if key == prefix || strings.HasPrefix(key, prefix+".") {
			return true
		}
	}
	return false
}

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	if s.gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	mux.Handle("GET /api/token", s.requireAuth(s.handleTokenGet))
	mux.Handle("GET /api/token/qr.png", s.requireAuth(s.handleTokenQR))

	mux.Handle("POST /api/chats", s.requireAuth(s.handleChatCreate))
	mux.Handle("POST /api/chats/{id}/messages", s.requireAuth(s.handleChatAppend))
	mux.Handle("GET /api/chats/{id}", s.requireAuth(s.handleChatGet))
	mux.Handle("PUT /api/chats/{id}/end", s.requireAuth(s.handleChatEnd))

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up all JSON-RPC method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("config.get", s.rpcConfigGet)
	s.Handle("config.set", s.rpcConfigSet)
	s.Handle("session.get", s.rpcSessionGet)
	s.Handle("turn.send", s.rpcTurnSend)
	s.Handle("token.get", s.rpcTokenGet)
	s.Handle("speech.cancel", s.rpcSpeechCancel)
	s.Handle("speech.error", s.rpcSpeechError)
}

func (s *Server) rpcHealth(rc *RequestContext) {
	h := HealthResponse{
		Status:   "ok",
		Version:  s.version,
		Kiosk:    s.cfg.Dialogue.KioskName,
		Clients:  s.clients.Count(),
		Displays: s.clients.CountMode(ModeDisplay),
		UptimeMs: s.uptime().Milliseconds(),
	}
	if s.kiosk != nil {
		h.Stage = string(s.kiosk.State().Stage)
	}
	rc.Respond(h)
}

type configGetParams struct {
	Key string `json:"key"`
}

func (s *Server) rpcConfigGet(rc *RequestContext) {
	var p configGetParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	path, ok := s.configPath(rc, p.Key, "access denied for config path: ")
	if !ok {
		return
	}

	s.mu.RLock()
	val, found := config.GetValueAtPath(s.configRaw, path)
	s.mu.RUnlock()

	if !found {
		rc.RespondError("not_found", "key not found: "+p.Key)
		return
	}
	rc.Respond(map[string]any{"key": p.Key, "value": val})
}

type configSetParams struct {
	Key   string `json:"key"`
	Value any    `json:"value"`
}

// rpcConfigSet applies an edit to the raw config after checking the section
// it touches, and saves it to the config file when one is set. The running
// kiosk keeps its settings until restart.
func (s *Server) rpcConfigSet(rc *RequestContext) {
	var p configSetParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	path, ok := s.configPath(rc, p.Key, "cannot modify config path: ")
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	edited := config.CloneRaw(s.configRaw)
	config.SetValueAtPath(edited, path, p.Value)
	if err := config.CheckSection(edited, path[0]); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	if s.configFile != "" {
		if err := config.SaveRaw(s.configFile, edited); err != nil {
			s.log.Error().Err(err).Str("key", p.Key).Msg("saving config")
			rc.RespondError("internal", "saving config: "+err.Error())
			return
		}
	}
	s.configRaw = edited
	s.log.Info().Str("key", p.Key).Bool("saved", s.configFile != "").Msg("config updated")

	rc.Respond(map[string]any{"key": p.Key, "value": p.Value, "saved": s.configFile != ""})
}

func (s *Server) configPath(rc *RequestContext, key, denied string) ([]string, bool) {
	if key == "" {
		rc.RespondError("invalid_params", "key is required")
		return nil, false
	}
	if !isAllowedConfigPath(key) {
		rc.RespondError("forbidden", denied+key)
		return nil, false
	}
	path, err := config.ParseConfigPath(key)
	if err != nil {
		rc.RespondError("invalid_params", err.Error())
		return nil, false
	}
	return path, true
}

// sessionView is the display-facing snapshot of the conversation.
type sessionView struct {
	Stage    domain.Stage          `json:"stage"`
	Patient  domain.PatientProfile `json:"patient"`
	Doctor   *domain.DoctorRecord  `json:"doctor,omitempty"`
	Token    *domain.TokenRecord   `json:"token,omitempty"`
	Messages []domain.Message      `json:"messages"`
	ChatID   string                `json:"chatId,omitempty"`
}

func (s *Server) sessionView() sessionView {
	st := s.kiosk.State()
	msgs := st.Messages
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return sessionView{
		Stage:    st.Stage,
		Patient:  st.Patient,
		Doctor:   st.SelectedDoctor,
		Token:    st.Token,
		Messages: msgs,
		ChatID:   s.kiosk.ChatID(),
	}
}

func (s *Server) rpcSessionGet(rc *RequestContext) {
	if !s.requireKiosk(rc) {
		return
	}
	rc.Respond(s.sessionView())
}

type turnSendParams struct {
	Text string `json:"text"`
}

// turnResult is the reply to turn.send.
type turnResult struct {
	Reply    string              `json:"reply"`
	Stage    domain.Stage        `json:"stage"`
	Intent   dialogue.Intent     `json:"intent,omitempty"`
	Token    *domain.TokenRecord `json:"token,omitempty"`
	Revealed bool                `json:"revealed,omitempty"`
}

func (s *Server) rpcTurnSend(rc *RequestContext) {
	if !s.requireKiosk(rc) {
		return
	}

	var p turnSendParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}

	turn, err := s.kiosk.Submit(rc.Ctx, p.Text)
	switch {
	case errors.Is(err, dialogue.ErrEmptyInput):
		rc.RespondError("invalid_params", "text is required")
		return
	case errors.Is(err, kiosk.ErrClosed):
		rc.RespondError("unavailable", "kiosk session closed")
		return
	case err != nil:
		rc.RespondError("internal", err.Error())
		return
	}

	rc.Respond(turnResult{
		Reply:    turn.Reply.Text,
		Stage:    turn.Reply.Stage,
		Intent:   turn.Reply.Intent,
		Token:    turn.State.Token,
		Revealed: turn.Reply.RevealToken,
	})
}

func (s *Server) rpcTokenGet(rc *RequestContext) {
	if !s.requireKiosk(rc) {
		return
	}
	rec, ok := s.kiosk.Token()
	if !ok {
		rc.RespondError("not_found", "no token issued")
		return
	}
	rc.Respond(map[string]any{"token": rec, "doctor": rec.Doctor.String()})
}

func (s *Server) rpcSpeechCancel(rc *RequestContext) {
	if !s.requireKiosk(rc) {
		return
	}
	s.kiosk.CancelSpeech()
	rc.Respond(map[string]any{"cancelled": true})
}

type speechErrorParams struct {
	Code    speech.ErrorCode `json:"code"`
	Message string           `json:"message,omitempty"`
}

// rpcSpeechError lets a browser display report a microphone failure so the
// kiosk apologises out loud.
func (s *Server) rpcSpeechError(rc *RequestContext) {
	if !s.requireKiosk(rc) {
		return
	}
	var p speechErrorParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	if p.Code == "" {
		rc.RespondError("invalid_params", "code is required")
		return
	}

	ce := &speech.CaptureError{Code: p.Code}
	if p.Message != "" {
		ce.Err = errors.New(p.Message)
	}
	s.kiosk.SpeechError(rc.Ctx, ce)
	rc.Respond(map[string]any{"code": p.Code, "at": time.Now().UnixMilli()})
}

func (s *Server) requireKiosk(rc *RequestContext) bool {
	if s.kiosk == nil {
		rc.RespondError("unavailable", "no kiosk attached")
		return false
	}
	return true
}
