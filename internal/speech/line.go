package speech

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
)

// LineListener treats each line read from r as a final transcript. Lines
// read while stopped are dropped.
type LineListener struct {
	r       io.Reader
	results chan Result

	mu      sync.Mutex
	active  bool
	started bool
	// done is closed by Stop to release a pending send.
	done chan struct{}
}

// NewLineListener reads transcripts from r.
func NewLineListener(r io.Reader) *LineListener {
	return &LineListener{r: r, results: make(chan Result, 1)}
}

// Start begins delivering transcripts. Calling it while active does nothing.
func (l *LineListener) Start() error {
	if l.r == nil {
		return &CaptureError{Code: CodeAudioCapture, Err: errors.New("no input source")}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.active {
		return nil
	}
	l.active = true
	if l.done == nil {
		l.done = make(chan struct{})
	}
	if !l.started {
		l.started = true
		go l.read()
	}
	return nil
}

// Stop pauses delivery. A result nobody has received yet is dropped.
func (l *LineListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = false
	if l.done != nil {
		close(l.done)
		l.done = nil
	}
}

// Active reports whether capture is running.
func (l *LineListener) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Results delivers transcripts. It is closed after the input ends.
func (l *LineListener) Results() <-chan Result {
	return l.results
}

func (l *LineListener) read() {
	defer close(l.results)

	sc := bufio.NewScanner(l.r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		l.mu.Lock()
		active, done := l.active, l.done
		l.mu.Unlock()
		if !active {
			continue
		}
		select {
		case l.results <- Result{Transcript: line}:
		case <-done:
		}
	}

	err := ErrInputClosed
	if scanErr := sc.Err(); scanErr != nil {
		err = &CaptureError{Code: CodeAborted, Err: scanErr}
	}
	l.mu.Lock()
	l.active = false
	done := l.done
	l.mu.Unlock()

	// after Stop the end of input is only kept if there is room for it
	if done == nil {
		select {
		case l.results <- Result{Err: err}:
		default:
		}
		return
	}
	select {
	case l.results <- Result{Err: err}:
	case <-done:
	}
}
