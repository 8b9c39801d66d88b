package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/soyeahso/frontdesk/internal/presentation"
	"github.com/soyeahso/frontdesk/internal/store"
)

const msgChatNotFound = "Chat session not found"

// ChatStore is the chat log behind the /api/chats routes.
type ChatStore interface {
	CreateSession(ctx context.Context) (*store.ChatSession, error)
	AppendMessage(ctx context.Context, id string, role store.ChatRole, content string) (*store.ChatSession, error)
	AttachPatient(ctx context.Context, id string, p domain.PatientProfile) error
	GetSession(ctx context.Context, id string) (*store.ChatSession, error)
	EndSession(ctx context.Context, id string) (*store.ChatSession, error)
}

// requireAuth guards an HTTP route with the gateway credentials sent as a
// bearer token. Failures count towards the per-IP rate limit.
func (s *Server) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.authLimiter.allow(r.RemoteAddr) {
			writeError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		if res := AuthorizeRequest(s.auth, r); !res.OK {
			s.authLimiter.recordFailure(r.RemoteAddr)
			writeError(w, http.StatusUnauthorized, res.Reason)
			return
		}
		next(w, r)
	})
}

type chatCreateRequest struct {
	Patient *domain.PatientProfile `json:"patient,omitempty"`
}

func (s *Server) handleChatCreate(w http.ResponseWriter, r *http.Request) {
	if !s.chatsEnabled(w) {
		return
	}

	var req chatCreateRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Patient != nil && !req.Patient.Complete() {
		writeError(w, http.StatusBadRequest, "patient needs a name, an age between 1 and 120 and a gender")
		return
	}

	ctx := r.Context()
	sess, err := s.chats.CreateSession(ctx)
	if err != nil {
		s.chatFailure(w, err)
		return
	}
	if req.Patient != nil {
		if err := s.chats.AttachPatient(ctx, sess.ID, *req.Patient); err != nil {
			s.chatFailure(w, err)
			return
		}
		if sess, err = s.chats.GetSession(ctx, sess.ID); err != nil {
			s.chatFailure(w, err)
			return
		}
	}
	writeJSON(w, http.StatusCreated, sess)
}

type chatAppendRequest struct {
	Role    store.ChatRole `json:"role"`
	Content string         `json:"content"`
}

func (s *Server) handleChatAppend(w http.ResponseWriter, r *http.Request) {
	if !s.chatsEnabled(w) {
		return
	}

	var req chatAppendRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := s.chats.AppendMessage(r.Context(), r.PathValue("id"), req.Role, req.Content)
	if err != nil {
		s.chatFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleChatGet(w http.ResponseWriter, r *http.Request) {
	if !s.chatsEnabled(w) {
		return
	}
	sess, err := s.chats.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		s.chatFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleChatEnd(w http.ResponseWriter, r *http.Request) {
	if !s.chatsEnabled(w) {
		return
	}
	sess, err := s.chats.EndSession(r.Context(), r.PathValue("id"))
	if err != nil {
		s.chatFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) chatsEnabled(w http.ResponseWriter) bool {
	if s.chats == nil {
		writeError(w, http.StatusServiceUnavailable, "chat log disabled")
		return false
	}
	return true
}

func (s *Server) chatFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, msgChatNotFound)
	case errors.Is(err, store.ErrInvalidMessage):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("chat log request failed")
		writeError(w, http.StatusInternalServerError, "chat log unavailable")
	}
}

// decodeBody reads an optional JSON body into v. An empty body leaves v
// untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPayload))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("invalid JSON body")
	}
	return nil
}

// tokenView is the display payload for GET /api/token.
type tokenView struct {
	Token  domain.TokenRecord `json:"token"`
	Doctor string             `json:"doctor"`
	Card   string             `json:"card"`
	QR     string             `json:"qr"`
}

func (s *Server) handleTokenGet(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.currentToken(w)
	if !ok {
		return
	}
	payload, err := presentation.Payload(rec)
	if err != nil {
		s.log.Error().Err(err).Msg("encoding token payload")
		writeError(w, http.StatusInternalServerError, "token unavailable")
		return
	}
	writeJSON(w, http.StatusOK, tokenView{
		Token:  rec,
		Doctor: rec.Doctor.String(),
		Card:   presentation.Card(rec),
		QR:     payload,
	})
}

// handleTokenQR serves the QR code as a PNG download. ?size= sets the edge
// length in pixels (64-1024).
func (s *Server) handleTokenQR(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.currentToken(w)
	if !ok {
		return
	}

	size := presentation.DefaultPNGSize
	if v := r.URL.Query().Get("size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 64 || n > 1024 {
			writeError(w, http.StatusBadRequest, "size must be 64-1024")
			return
		}
		size = n
	}

	png, err := presentation.PNG(rec, size)
	if err != nil {
		s.log.Error().Err(err).Msg("rendering token qr")
		writeError(w, http.StatusInternalServerError, "token unavailable")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="`+presentation.FileName(rec)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Write(png)
}

func (s *Server) currentToken(w http.ResponseWriter) (domain.TokenRecord, bool) {
	if s.kiosk == nil {
		writeError(w, http.StatusServiceUnavailable, "no kiosk attached")
		return domain.TokenRecord{}, false
	}
	rec, ok := s.kiosk.Token()
	if !ok {
		writeError(w, http.StatusNotFound, "no token issued")
		return domain.TokenRecord{}, false
	}
	return rec, true
}
