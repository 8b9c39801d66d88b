// Package token issues human-readable visit codes.
package token

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/soyeahso/frontdesk/internal/domain"
)

// ErrIncompleteProfile is returned when a token is requested for a patient
// whose intake has not been fully validated.
var ErrIncompleteProfile = errors.New("patient profile incomplete")

// randomSpan is the exclusive upper bound of the random suffix.
const randomSpan = 1000

// Issuer derives visit codes from the current date plus a random draw.
//
// Codes are not checked against earlier issues: two tokens issued on the
// same day coincide with probability 1/1000 per pair. The code is a
// reception-desk label, not a queue position.
type Issuer struct {
	now  func() time.Time
	intn func(n int) int
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) {
		i.now = now
	}
}

// WithRand overrides the random source. intn must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(i *Issuer) {
		i.intn = intn
	}
}

// NewIssuer creates an issuer using the wall clock and math/rand/v2.
func NewIssuer(opts ...Option) *Issuer {
	i := &Issuer{
		now:  time.Now,
		intn: rand.IntN,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Code formats a visit code for t with the given suffix:
// "T" + day(2) + month(2) + suffix(3), e.g. T0711482.
func Code(t time.Time, suffix int) string {
	return fmt.Sprintf("T%02d%02d%03d", t.Day(), int(t.Month()), suffix%randomSpan)
}

// Issue assembles a token record for the patient and doctor.
func (i *Issuer) Issue(patient domain.PatientProfile, doctor domain.DoctorRecord) (domain.TokenRecord, error) {
	if !patient.Complete() {
		return domain.TokenRecord{}, ErrIncompleteProfile
	}
	now := i.now()
	return domain.TokenRecord{
		Code:     Code(now, i.intn(randomSpan)),
		IssuedAt: now,
		Patient:  patient,
		Doctor:   doctor,
	}, nil
}
