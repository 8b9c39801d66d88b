// Package dialogue implements the intake conversation: a stage machine
// that collects the patient profile, resolves a doctor, issues a token and
// then answers follow-up questions.
package dialogue

import (
	"errors"
	"strings"
	"time"

	"github.com/soyeahso/frontdesk/internal/directory"
	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/soyeahso/frontdesk/internal/token"
)

// ErrEmptyInput is returned by Accept for input that is blank after trimming.
var ErrEmptyInput = errors.New("empty input")

// Reply is the bot side of a turn plus the side effects the caller must
// commit.
type Reply struct {
	Text string

	// Stage is the stage the session moved to.
	Stage domain.Stage

	// SaveToken is set when a token was issued and must be persisted.
	SaveToken *domain.TokenRecord

	// ClearStore asks the caller to empty the session store.
	ClearStore bool

	// RevealToken asks presentation to show the token card and QR code.
	RevealToken bool

	// Intent is set for turns handled in MAIN_CONVERSATION.
	Intent Intent

	// Match is set when a doctor reference was resolved.
	Match *directory.Match
}

// Engine runs turns against a SessionState. It holds no per-session data,
// so one Engine can serve any number of sessions.
type Engine struct {
	dir    *directory.Directory
	issuer *token.Issuer
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the transcript timestamp source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an engine over the given directory and token issuer.
func New(dir *directory.Directory, issuer *token.Issuer, opts ...Option) *Engine {
	e := &Engine{dir: dir, issuer: issuer, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Directory returns the doctor directory the engine resolves against.
func (e *Engine) Directory() *directory.Directory {
	return e.dir
}

// HandleTurn runs Accept and Respond back to back.
func (e *Engine) HandleTurn(s domain.SessionState, input string) (domain.SessionState, Reply, error) {
	next, err := e.Accept(s, input)
	if err != nil {
		return s, Reply{}, err
	}
	next, reply := e.Respond(next, input)
	return next, reply, nil
}

// Accept records the user's message. The returned state is the one Respond
// must be called with.
func (e *Engine) Accept(s domain.SessionState, input string) (domain.SessionState, error) {
	text := strings.TrimSpace(input)
	if text == "" {
		return s, ErrEmptyInput
	}
	next := s.Clone()
	next.Messages = append(next.Messages, domain.Message{
		Sender:    domain.SenderUser,
		Text:      text,
		Timestamp: e.now(),
	})
	return next, nil
}

// Respond computes the bot's answer to input for the current stage and
// appends it to the transcript. It never fails: invalid input produces a
// re-prompt.
func (e *Engine) Respond(s domain.SessionState, input string) (domain.SessionState, Reply) {
	next := s.Clone()
	input = strings.TrimSpace(input)

	var reply Reply
	switch next.Stage {
	case domain.StageGreeting:
		next.Stage = domain.StageAskName
		reply.Text = msgWelcome
	case domain.StageAskName:
		reply = e.onName(&next, input)
	case domain.StageAskAge:
		reply = e.onAge(&next, input)
	case domain.StageAskGender:
		reply = e.onGender(&next, input)
	case domain.StageAskDoctor:
		reply = e.onDoctor(&next, input)
	case domain.StageMainConversation:
		reply = e.onConversation(&next, input)
	default:
		next.ResetIntake(domain.StageAskName)
		reply.Text = msgUnknownStage
	}

	reply.Stage = next.Stage
	next.Messages = append(next.Messages, domain.Message{
		Sender:    domain.SenderBot,
		Text:      reply.Text,
		Timestamp: e.now(),
	})
	return next, reply
}

func (e *Engine) onName(s *domain.SessionState, input string) Reply {
	name, ok := domain.ParseName(input)
	if !ok {
		return Reply{Text: msgInvalidName}
	}
	s.Patient.Name = name
	s.Stage = domain.StageAskAge
	return Reply{Text: askAge(name)}
}

func (e *Engine) onAge(s *domain.SessionState, input string) Reply {
	age, ok := domain.ParseAge(input)
	if !ok {
		return Reply{Text: msgInvalidAge}
	}
	s.Patient.Age = age
	s.Stage = domain.StageAskGender
	return Reply{Text: msgAskGender}
}

func (e *Engine) onGender(s *domain.SessionState, input string) Reply {
	gender, ok := domain.ParseGender(input)
	if !ok {
		return Reply{Text: msgInvalidGender}
	}
	s.Patient.Gender = gender
	s.Stage = domain.StageAskDoctor
	return Reply{Text: askDoctor(e.dir.List())}
}

func (e *Engine) onDoctor(s *domain.SessionState, input string) Reply {
	match, ok := e.dir.Resolve(input)
	if !ok {
		return Reply{Text: noDoctorMatch(e.dir.List())}
	}

	rec, err := e.issuer.Issue(s.Patient, match.Doctor)
	if err != nil {
		// the draft lost a field somewhere; collect it again
		s.ResetIntake(domain.StageAskName)
		return Reply{Text: msgMissingProfile, Match: &match}
	}

	doctor := match.Doctor
	s.SelectedDoctor = &doctor
	s.Token = &rec
	s.Stage = domain.StageMainConversation
	return Reply{Text: tokenIssued(rec), SaveToken: &rec, Match: &match}
}

func (e *Engine) onConversation(s *domain.SessionState, input string) Reply {
	intent := Classify(input)
	switch intent {
	case IntentRevealToken:
		if s.Token == nil {
			s.ResetIntake(domain.StageGreeting)
			return Reply{Text: msgNoToken, Intent: intent}
		}
		return Reply{Text: msgReveal, RevealToken: true, Intent: intent}
	case IntentNewToken:
		s.ResetIntake(domain.StageAskName)
		return Reply{Text: msgStartOver, ClearStore: true, Intent: intent}
	}
	return Reply{Text: fallback(*s, input), Intent: intent}
}

// fallback answers free text that matched no intent rule.
func fallback(s domain.SessionState, input string) string {
	lower := strings.ToLower(input)
	name := s.Patient.Name
	switch {
	case s.Token != nil && strings.Contains(lower, "token"):
		return reciteToken(*s.Token)
	case s.Token != nil && strings.Contains(lower, "doctor"):
		return reciteDoctor(*s.Token)
	case strings.Contains(lower, "thank"):
		return welcomeBack(name)
	case strings.Contains(lower, "hello"), strings.Contains(lower, "hi"):
		return hello(name)
	}
	return clarify(input, name)
}
