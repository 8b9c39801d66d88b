// Package kiosk runs one intake conversation: it serializes turns, applies
// the reply delay, commits store effects and fans utterances out to the
// speech, presentation, hook, metrics and audit collaborators.
package kiosk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/soyeahso/frontdesk/internal/dialogue"
	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/soyeahso/frontdesk/internal/hooks"
	"github.com/soyeahso/frontdesk/internal/logging"
	"github.com/soyeahso/frontdesk/internal/metrics"
	"github.com/soyeahso/frontdesk/internal/presentation"
	"github.com/soyeahso/frontdesk/internal/speech"
	"github.com/soyeahso/frontdesk/internal/store"
)

// DefaultReplyDelay is the pause between a user message and the bot reply.
const DefaultReplyDelay = time.Second

// ErrClosed is returned by operations on a closed kiosk.
var ErrClosed = errors.New("kiosk closed")

// ChatLog is the audit sink the kiosk mirrors its transcript into.
type ChatLog interface {
	CreateSession(ctx context.Context) (*store.ChatSession, error)
	AppendMessage(ctx context.Context, id string, role store.ChatRole, content string) (*store.ChatSession, error)
	AttachPatient(ctx context.Context, id string, p domain.PatientProfile) error
	EndSession(ctx context.Context, id string) (*store.ChatSession, error)
}

// Turn is the outcome of Submit.
type Turn struct {
	Reply dialogue.Reply
	State domain.SessionState
}

// Kiosk owns the single active session.
type Kiosk struct {
	engine *dialogue.Engine
	tokens store.TokenStore
	log    *logging.Logger

	delay     time.Duration
	speaker   speech.Speaker
	presenter presentation.Presenter
	hooks     *hooks.Manager
	metrics   *metrics.KioskMetrics
	chatLog   ChatLog

	// turn admits one in-flight turn; later callers queue on it.
	turn chan struct{}

	mu     sync.RWMutex
	state  domain.SessionState
	closed bool
	chatID string
}

// Option configures a Kiosk.
type Option func(*Kiosk)

// WithReplyDelay sets the pause before each bot reply.
func WithReplyDelay(d time.Duration) Option {
	return func(k *Kiosk) { k.delay = d }
}

// WithSpeaker sets the speech output collaborator.
func WithSpeaker(s speech.Speaker) Option {
	return func(k *Kiosk) { k.speaker = s }
}

// WithPresenter sets the token presentation collaborator.
func WithPresenter(p presentation.Presenter) Option {
	return func(k *Kiosk) { k.presenter = p }
}

// WithHooks sets the hook manager lifecycle events are emitted on.
func WithHooks(h *hooks.Manager) Option {
	return func(k *Kiosk) { k.hooks = h }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.KioskMetrics) Option {
	return func(k *Kiosk) { k.metrics = m }
}

// WithChatLog mirrors the transcript into an audit log.
func WithChatLog(l ChatLog) Option {
	return func(k *Kiosk) { k.chatLog = l }
}

// New creates a kiosk at the greeting stage. Start resumes a stored token.
func New(engine *dialogue.Engine, tokens store.TokenStore, log *logging.Logger, opts ...Option) *Kiosk {
	k := &Kiosk{
		engine: engine,
		tokens: tokens,
		log:    log.Sub("kiosk"),
		delay:  DefaultReplyDelay,
		turn:   make(chan struct{}, 1),
		state:  domain.NewSessionState(),
	}
	for _, opt := range opts {
		opt(k)
	}
	if k.hooks == nil {
		k.hooks = hooks.NewManager(log)
	}
	return k
}

// Hooks returns the manager lifecycle events are emitted on.
func (k *Kiosk) Hooks() *hooks.Manager {
	return k.hooks
}

// Start resumes any stored token and speaks the opening greeting.
func (k *Kiosk) Start(ctx context.Context) (dialogue.ResumeOutcome, error) {
	if err := k.acquire(ctx); err != nil {
		return "", err
	}
	defer k.release()

	state, outcome := dialogue.Resume(ctx, k.tokens, k.engine.Directory(), k.log)
	k.metrics.ObserveResume(string(outcome))

	var chatID string
	if k.chatLog != nil {
		sess, err := k.chatLog.CreateSession(ctx)
		if err != nil {
			k.log.Warn().Err(err).Msg("chat log unavailable")
		} else {
			chatID = sess.ID
		}
	}

	k.mu.Lock()
	k.state = state
	k.chatID = chatID
	k.mu.Unlock()

	k.log.Info().Str("resume", string(outcome)).Str("stage", string(state.Stage)).Msg("session started")
	k.hooks.Emit(ctx, hooks.EventSessionStart, map[string]any{
		"resume": string(outcome),
		"stage":  string(state.Stage),
	})

	if state.Token != nil {
		k.tokenUpdated(ctx, *state.Token)
	}
	k.say(ctx, dialogue.Greeting)
	return outcome, nil
}

// Submit runs one turn. A turn submitted while another is in flight waits
// for it to finish. The user message is recorded before the reply delay
// and the bot reply after it. If ctx ends during the delay the reply is
// produced at once so the transcript never holds an unanswered message, and
// its store effects are still committed.
func (k *Kiosk) Submit(ctx context.Context, input string) (Turn, error) {
	if err := k.acquire(ctx); err != nil {
		return Turn{}, err
	}
	defer k.release()

	// Once admitted, the turn's record keeping outlives the caller. Only the
	// reply delay and the spoken reply stop early on cancellation.
	bg := context.WithoutCancel(ctx)

	began := time.Now()
	k.mu.Lock()
	prev := k.state
	accepted, err := k.engine.Accept(prev, input)
	if err != nil {
		k.mu.Unlock()
		return Turn{}, err
	}
	k.state = accepted
	chatID := k.chatID
	k.mu.Unlock()

	userMsg := accepted.Messages[len(accepted.Messages)-1]
	k.log.Debug().Str("stage", string(prev.Stage)).Msg("turn received")
	k.hooks.Emit(bg, hooks.EventTurnReceived, map[string]any{
		"stage": string(prev.Stage),
		"text":  userMsg.Text,
	})
	k.audit(bg, chatID, store.RoleUser, userMsg.Text)

	k.wait(ctx)

	next, reply := k.engine.Respond(accepted, input)
	k.commit(bg, chatID, prev, next, reply)

	k.mu.Lock()
	k.state = next
	k.mu.Unlock()

	if prev.Stage != reply.Stage {
		k.log.Debug().Str("from", string(prev.Stage)).Str("to", string(reply.Stage)).Msg("stage changed")
	}
	k.metrics.ObserveTurn(string(prev.Stage), prev.Stage != reply.Stage, time.Since(began).Seconds())
	k.audit(bg, chatID, store.RoleAssistant, reply.Text)
	k.say(ctx, reply.Text)

	return Turn{Reply: reply, State: next.Clone()}, nil
}

// SpeechError reports a speech capture failure to the patient. The session
// is left untouched so the patient can keep typing.
func (k *Kiosk) SpeechError(ctx context.Context, err error) {
	code := string(speech.CodeAudioCapture)
	var ce *speech.CaptureError
	if errors.As(err, &ce) {
		code = string(ce.Code)
	}

	apology := dialogue.MicFailureApology
	if speech.PermissionDenied(err) {
		apology = dialogue.MicPermissionApology
	}

	k.log.Warn().Err(err).Str("code", code).Msg("speech capture failed")
	k.metrics.ObserveSpeechFailure(code)
	k.hooks.Emit(ctx, hooks.EventSpeechError, map[string]any{"code": code})
	k.say(ctx, apology)
}

// Run feeds transcripts from l into Submit until the input ends or ctx is
// done.
func (k *Kiosk) Run(ctx context.Context, l speech.Listener) error {
	if err := l.Start(); err != nil {
		k.SpeechError(ctx, err)
		return err
	}
	defer l.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-l.Results():
			if !ok || errors.Is(res.Err, speech.ErrInputClosed) {
				return nil
			}
			if res.Err != nil {
				k.SpeechError(ctx, res.Err)
				continue
			}
			if _, err := k.Submit(ctx, res.Transcript); err != nil {
				if errors.Is(err, dialogue.ErrEmptyInput) {
					continue
				}
				return err
			}
		}
	}
}

// State returns a copy of the current session.
func (k *Kiosk) State() domain.SessionState {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.state.Clone()
}

// Token returns the current token, if one has been issued.
func (k *Kiosk) Token() (domain.TokenRecord, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.state.Token == nil {
		return domain.TokenRecord{}, false
	}
	return *k.state.Token, true
}

// ChatID returns the audit log session id, or "" when no chat log is kept.
func (k *Kiosk) ChatID() string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.chatID
}

// CancelSpeech stops the utterance being spoken, if any.
func (k *Kiosk) CancelSpeech() {
	if k.speaker != nil {
		k.speaker.Cancel()
	}
}

// Close waits for the in-flight turn, ends the audit session and rejects
// further turns.
func (k *Kiosk) Close(ctx context.Context) error {
	if err := k.acquire(ctx); err != nil {
		return err
	}
	defer k.release()

	k.mu.Lock()
	k.closed = true
	chatID := k.chatID
	k.mu.Unlock()

	k.CancelSpeech()
	if k.chatLog != nil && chatID != "" {
		if _, err := k.chatLog.EndSession(ctx, chatID); err != nil {
			k.log.Warn().Err(err).Msg("ending chat log session")
		}
	}
	k.hooks.Emit(ctx, hooks.EventSessionEnd, map[string]any{"chatId": chatID})
	k.hooks.Wait()
	k.log.Info().Msg("session closed")
	return nil
}

func (k *Kiosk) acquire(ctx context.Context) error {
	select {
	case k.turn <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	k.mu.RLock()
	closed := k.closed
	k.mu.RUnlock()
	if closed {
		<-k.turn
		return ErrClosed
	}
	return nil
}

func (k *Kiosk) release() {
	<-k.turn
}

func (k *Kiosk) wait(ctx context.Context) {
	if k.delay <= 0 {
		return
	}
	t := time.NewTimer(k.delay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
