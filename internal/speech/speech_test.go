package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Speaker tests ---

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestConsoleSpeaker_Speak(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSpeaker(&buf, "Front Desk")

	require.NoError(t, s.Speak(context.Background(), "Hello there"))
	assert.Equal(t, "Front Desk: Hello there\n", buf.String())
}

func TestConsoleSpeaker_CancelIdle(t *testing.T) {
	s := NewConsoleSpeaker(io.Discard, "bot")
	s.Cancel()
	s.Cancel()
}

func TestConsoleSpeaker_CancelMidUtterance(t *testing.T) {
	buf := &syncBuffer{}
	s := NewConsoleSpeaker(buf, "bot", WithPacing(10*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- s.Speak(context.Background(), strings.Repeat("a", 500)) }()

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "a")
	}, 2*time.Second, 5*time.Millisecond)
	s.Cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("speak did not stop after cancel")
	}
	assert.Less(t, strings.Count(buf.String(), "a"), 500)
}

func TestConsoleSpeaker_RateScalesPacing(t *testing.T) {
	s := NewConsoleSpeaker(io.Discard, "bot", WithPacing(10*time.Millisecond), WithVoice(Voice{Rate: 0.5}))
	assert.Equal(t, 20*time.Millisecond, s.runeDelay())
}

func TestDefaultVoice(t *testing.T) {
	assert.Equal(t, 0.9, DefaultVoice.Rate)
	assert.Equal(t, 1.0, DefaultVoice.Pitch)
	assert.Equal(t, 1.0, DefaultVoice.Volume)
}

// --- Listener tests ---

func next(t *testing.T, l *LineListener) Result {
	t.Helper()
	select {
	case r := <-l.Results():
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}
	return Result{}
}

func TestLineListener_Transcripts(t *testing.T) {
	l := NewLineListener(strings.NewReader("Asha\n\n  30  \n"))
	require.NoError(t, l.Start())
	require.NoError(t, l.Start())

	assert.Equal(t, "Asha", next(t, l).Transcript)
	assert.Equal(t, "30", next(t, l).Transcript)

	end := next(t, l)
	assert.ErrorIs(t, end.Err, ErrInputClosed)
	assert.False(t, l.Active())
}

func TestLineListener_StoppedDropsLines(t *testing.T) {
	pr, pw := io.Pipe()
	l := NewLineListener(pr)
	require.NoError(t, l.Start())

	_, err := pw.Write([]byte("first\n"))
	require.NoError(t, err)
	assert.Equal(t, "first", next(t, l).Transcript)

	l.Stop()
	assert.False(t, l.Active())
	_, err = pw.Write([]byte("dropped\n"))
	require.NoError(t, err)

	pw.Close()
	assert.ErrorIs(t, next(t, l).Err, ErrInputClosed)
}

func TestLineListener_StopReleasesPendingTranscript(t *testing.T) {
	pr, pw := io.Pipe()
	l := NewLineListener(pr)
	require.NoError(t, l.Start())

	// "one" fills the buffer and "two" waits for a receiver that never comes
	_, err := pw.Write([]byte("one\n"))
	require.NoError(t, err)
	_, err = pw.Write([]byte("two\n"))
	require.NoError(t, err)

	l.Stop()

	written := make(chan error, 1)
	go func() {
		_, err := pw.Write([]byte("three\n"))
		written <- err
	}()
	select {
	case err := <-written:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reader still blocked after Stop")
	}
	pw.Close()

	var got []string
	timeout := time.After(2 * time.Second)
	for {
		select {
		case r, ok := <-l.Results():
			if !ok {
				assert.Equal(t, []string{"one"}, got)
				return
			}
			got = append(got, r.Transcript)
		case <-timeout:
			t.Fatal("results not closed after input ended")
		}
	}
}

func TestLineListener_NoSource(t *testing.T) {
	l := NewLineListener(nil)
	err := l.Start()
	var ce *CaptureError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CodeAudioCapture, ce.Code)
	assert.False(t, PermissionDenied(err))
}

func TestPermissionDenied(t *testing.T) {
	assert.True(t, PermissionDenied(&CaptureError{Code: CodeNotAllowed}))
	assert.False(t, PermissionDenied(errors.New("other")))
	assert.Contains(t, (&CaptureError{Code: CodeNotAllowed}).Error(), "not-allowed")
}
