// Package speech defines the kiosk's speech input and output collaborators
// and terminal implementations of both.
package speech

import (
	"context"
	"errors"
	"fmt"
)

// Voice holds speech synthesis parameters.
type Voice struct {
	Lang   string  `json:"lang" yaml:"lang"`
	Rate   float64 `json:"rate" yaml:"rate"`
	Pitch  float64 `json:"pitch" yaml:"pitch"`
	Volume float64 `json:"volume" yaml:"volume"`
}

// DefaultVoice is a slightly slowed English voice.
var DefaultVoice = Voice{Lang: "en-US", Rate: 0.9, Pitch: 1, Volume: 1}

// Speaker plays bot utterances. Cancel must be safe to call at any time,
// including when nothing is playing.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Cancel()
}

// Listener captures user speech. Start is a no-op while capture is already
// active. Transcripts and capture failures arrive on Results.
type Listener interface {
	Start() error
	Stop()
	Results() <-chan Result
}

// Result is one capture outcome: a final transcript or an error.
type Result struct {
	Transcript string
	Err        error
}

// ErrorCode classifies a capture failure.
type ErrorCode string

const (
	CodeNotAllowed   ErrorCode = "not-allowed"
	CodeAudioCapture ErrorCode = "audio-capture"
	CodeNoSpeech     ErrorCode = "no-speech"
	CodeNetwork      ErrorCode = "network"
	CodeAborted      ErrorCode = "aborted"
)

// ErrInputClosed is reported when the capture source reaches its end.
var ErrInputClosed = errors.New("speech input closed")

// CaptureError is a failure reported by a Listener.
type CaptureError struct {
	Code ErrorCode
	Err  error
}

func (e *CaptureError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("speech capture %s: %v", e.Code, e.Err)
	}
	return "speech capture " + string(e.Code)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// PermissionDenied reports whether err is a capture failure caused by
// missing microphone permission.
func PermissionDenied(err error) bool {
	var ce *CaptureError
	return errors.As(err, &ce) && ce.Code == CodeNotAllowed
}
