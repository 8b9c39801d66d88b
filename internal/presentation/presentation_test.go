package presentation

import (
	"bytes"
	"image/png"
	"testing"
	"time"

	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecord() domain.TokenRecord {
	return domain.TokenRecord{
		Code:     "T0711482",
		IssuedAt: time.Date(2026, 11, 7, 9, 30, 0, 0, time.UTC),
		Patient:  domain.PatientProfile{Name: "Asha", Age: 30, Gender: domain.GenderFemale},
		Doctor:   domain.DoctorRecord{Name: "Dr. Sharma", Specialty: "Cardiology"},
	}
}

func TestPayload_IsStoredJSON(t *testing.T) {
	payload, err := Payload(testRecord())
	require.NoError(t, err)

	rec, err := domain.DecodeTokenRecord([]byte(payload))
	require.NoError(t, err)
	assert.Equal(t, "T0711482", rec.Code)
	assert.Equal(t, "Dr. Sharma", rec.Doctor.Name)
}

func TestPayload_RejectsInvalid(t *testing.T) {
	rec := testRecord()
	rec.Code = ""
	_, err := Payload(rec)
	assert.Error(t, err)
}

func TestPNG(t *testing.T) {
	data, err := PNG(testRecord(), 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultPNGSize, img.Bounds().Dx())
	assert.Equal(t, DefaultPNGSize, img.Bounds().Dy())
}

func TestTerminalQR(t *testing.T) {
	qr, err := TerminalQR(testRecord())
	require.NoError(t, err)
	assert.NotEmpty(t, qr)
	assert.Contains(t, qr, "\n")
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "patient-token-T0711482.png", FileName(testRecord()))
}

func TestCard(t *testing.T) {
	card := Card(testRecord())
	assert.Contains(t, card, "Token:    T0711482")
	assert.Contains(t, card, "Patient:  Asha")
	assert.Contains(t, card, "Age:      30")
	assert.Contains(t, card, "Doctor:   Dr. Sharma")
	assert.Contains(t, card, "Dept:     Cardiology")
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf)

	_, _, ok := term.Current()
	assert.False(t, ok)

	rec := testRecord()
	term.TokenUpdated(rec, rec.Doctor.String())
	got, label, ok := term.Current()
	require.True(t, ok)
	assert.Equal(t, rec.Code, got.Code)
	assert.Equal(t, "Dr. Sharma (Cardiology)", label)

	require.NoError(t, term.Reveal(rec))
	assert.Contains(t, buf.String(), "HOSPITAL VISIT TOKEN")

	term.Cleared()
	_, _, ok = term.Current()
	assert.False(t, ok)
}
