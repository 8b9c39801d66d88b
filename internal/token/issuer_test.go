package token

import (
	"testing"
	"time"

	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	asha   = domain.PatientProfile{Name: "Asha", Age: 30, Gender: domain.GenderFemale}
	sharma = domain.DoctorRecord{Name: "Dr. Sharma", Specialty: "Cardiology"}
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestCode(t *testing.T) {
	tests := []struct {
		date   time.Time
		suffix int
		want   string
	}{
		{time.Date(2026, 11, 7, 0, 0, 0, 0, time.UTC), 482, "T0711482"},
		{time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), 0, "T0101000"},
		{time.Date(2026, 12, 31, 23, 59, 0, 0, time.UTC), 999, "T3112999"},
		{time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC), 7, "T0903007"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Code(tt.date, tt.suffix)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 8)
			assert.True(t, domain.ValidTokenCode(got))
		})
	}
}

func TestIssue(t *testing.T) {
	at := time.Date(2026, 11, 7, 9, 30, 0, 0, time.UTC)
	issuer := NewIssuer(
		WithClock(fixedClock(at)),
		WithRand(func(n int) int { return 482 }),
	)

	rec, err := issuer.Issue(asha, sharma)
	require.NoError(t, err)
	assert.Equal(t, "T0711482", rec.Code)
	assert.Equal(t, at, rec.IssuedAt)
	assert.Equal(t, asha, rec.Patient)
	assert.Equal(t, sharma, rec.Doctor)
}

func TestIssue_RandomBound(t *testing.T) {
	var gotN int
	issuer := NewIssuer(WithRand(func(n int) int {
		gotN = n
		return n - 1
	}))

	rec, err := issuer.Issue(asha, sharma)
	require.NoError(t, err)
	assert.Equal(t, 1000, gotN)
	assert.Equal(t, "999", rec.Code[5:])
}

func TestIssue_DefaultSourcesMatchPattern(t *testing.T) {
	issuer := NewIssuer()
	for i := 0; i < 200; i++ {
		rec, err := issuer.Issue(asha, sharma)
		require.NoError(t, err)
		assert.Regexp(t, `^T\d{2}\d{2}\d{3}$`, rec.Code)
	}
}

func TestIssue_IncompleteProfile(t *testing.T) {
	issuer := NewIssuer()

	tests := []struct {
		name    string
		patient domain.PatientProfile
	}{
		{"empty", domain.PatientProfile{}},
		{"no gender", domain.PatientProfile{Name: "Asha", Age: 30}},
		{"no age", domain.PatientProfile{Name: "Asha", Gender: domain.GenderFemale}},
		{"short name", domain.PatientProfile{Name: "A", Age: 30, Gender: domain.GenderFemale}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.Issue(tt.patient, sharma)
			assert.ErrorIs(t, err, ErrIncompleteProfile)
		})
	}
}
