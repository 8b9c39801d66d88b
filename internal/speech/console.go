package speech

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
	"unicode/utf8"
)

// ConsoleSpeaker "speaks" by writing utterances to a terminal. With pacing
// set, text is written rune by rune so Cancel can cut it short.
type ConsoleSpeaker struct {
	w      io.Writer
	prefix string
	voice  Voice
	pacing time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
}

// ConsoleOption configures a ConsoleSpeaker.
type ConsoleOption func(*ConsoleSpeaker)

// WithVoice sets the voice; its Rate scales the pacing.
func WithVoice(v Voice) ConsoleOption {
	return func(s *ConsoleSpeaker) { s.voice = v }
}

// WithPacing sets the per-rune delay at rate 1.
func WithPacing(d time.Duration) ConsoleOption {
	return func(s *ConsoleSpeaker) { s.pacing = d }
}

// NewConsoleSpeaker writes utterances to w, each line prefixed with prefix.
func NewConsoleSpeaker(w io.Writer, prefix string, opts ...ConsoleOption) *ConsoleSpeaker {
	s := &ConsoleSpeaker{w: w, prefix: prefix, voice: DefaultVoice}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Speak cancels any utterance in progress and writes text.
func (s *ConsoleSpeaker) Speak(ctx context.Context, text string) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	if _, err := fmt.Fprintf(s.w, "%s: ", s.prefix); err != nil {
		return err
	}

	delay := s.runeDelay()
	if delay <= 0 {
		_, err := fmt.Fprintln(s.w, text)
		return err
	}

	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if _, err := fmt.Fprint(s.w, string(r)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.w)
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	_, err := fmt.Fprintln(s.w)
	return err
}

// Cancel stops the utterance in progress, if any.
func (s *ConsoleSpeaker) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

func (s *ConsoleSpeaker) runeDelay() time.Duration {
	if s.pacing <= 0 || s.voice.Rate <= 0 {
		return s.pacing
	}
	return time.Duration(float64(s.pacing) / s.voice.Rate)
}
