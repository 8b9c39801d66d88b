// Package presentation renders issued tokens as a text card and a QR code.
package presentation

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/skip2/go-qrcode"
	"github.com/soyeahso/frontdesk/internal/domain"
)

// DefaultPNGSize is the edge length of downloadable QR images, in pixels.
const DefaultPNGSize = 256

// Presenter shows token state to the patient. It owns no conversation logic.
type Presenter interface {
	// TokenUpdated is called when a token is issued or resumed. label is
	// the doctor as displayed, e.g. "Dr. Sharma (Cardiology)".
	TokenUpdated(rec domain.TokenRecord, label string)
	// Reveal shows the token card and QR code.
	Reveal(rec domain.TokenRecord) error
	// Cleared is called when the token is discarded.
	Cleared()
}

// Payload is the QR content for rec: the same JSON the session store keeps.
func Payload(rec domain.TokenRecord) (string, error) {
	data, err := domain.EncodeTokenRecord(rec)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// PNG renders rec's QR code as a size x size PNG.
func PNG(rec domain.TokenRecord, size int) ([]byte, error) {
	payload, err := Payload(rec)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultPNGSize
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encoding qr png: %w", err)
	}
	return png, nil
}

// TerminalQR renders rec's QR code with half-block characters.
func TerminalQR(rec domain.TokenRecord) (string, error) {
	payload, err := Payload(rec)
	if err != nil {
		return "", err
	}
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return "", fmt.Errorf("encoding qr: %w", err)
	}
	return q.ToSmallString(false), nil
}

// FileName is the download name for rec's QR image.
func FileName(rec domain.TokenRecord) string {
	return "patient-token-" + rec.Code + ".png"
}

// Card is the human-readable token card.
func Card(rec domain.TokenRecord) string {
	var b strings.Builder
	b.WriteString("HOSPITAL VISIT TOKEN\n")
	fmt.Fprintf(&b, "Token:    %s\n", rec.Code)
	fmt.Fprintf(&b, "Patient:  %s\n", rec.Patient.Name)
	fmt.Fprintf(&b, "Age:      %d\n", rec.Patient.Age)
	fmt.Fprintf(&b, "Gender:   %s\n", rec.Patient.Gender)
	fmt.Fprintf(&b, "Doctor:   %s\n", rec.Doctor.Name)
	fmt.Fprintf(&b, "Dept:     %s\n", rec.Doctor.Specialty)
	fmt.Fprintf(&b, "Issued:   %s\n", rec.IssuedAt.Local().Format("02 Jan 2006 15:04"))
	b.WriteString("Show this token at the reception desk.\n")
	return b.String()
}

// Terminal presents tokens on a text terminal.
type Terminal struct {
	w io.Writer

	mu      sync.Mutex
	current *domain.TokenRecord
	label   string
}

// NewTerminal writes token cards to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

func (t *Terminal) TokenUpdated(rec domain.TokenRecord, label string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = &rec
	t.label = label
	fmt.Fprintf(t.w, "[token %s for %s]\n", rec.Code, label)
}

func (t *Terminal) Reveal(rec domain.TokenRecord) error {
	qr, err := TerminalQR(rec)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	_, err = fmt.Fprintf(t.w, "\n%s\n%s\n", Card(rec), qr)
	return err
}

func (t *Terminal) Cleared() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = nil
	t.label = ""
}

// Current returns the token last shown and its doctor label.
func (t *Terminal) Current() (domain.TokenRecord, string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return domain.TokenRecord{}, "", false
	}
	return *t.current, t.label, true
}
