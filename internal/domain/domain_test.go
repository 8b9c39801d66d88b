package domain

import (
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Patient validation tests ---

func TestParseAge(t *testing.T) {
	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"1", 1, true},
		{"30", 30, true},
		{"120", 120, true},
		{" 45 ", 45, true},
		{"30 years", 30, true},
		{"0", 0, false},
		{"121", 0, false},
		{"-5", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"years 30", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseAge(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAge_WholeRange(t *testing.T) {
	for age := -10; age <= 130; age++ {
		got, ok := ParseAge(strconv.Itoa(age))
		if age >= MinAge && age <= MaxAge {
			assert.True(t, ok, "age %d should be accepted", age)
			assert.Equal(t, age, got)
		} else {
			assert.False(t, ok, "age %d should be rejected", age)
		}
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		input  string
		want   Gender
		wantOK bool
	}{
		{"male", GenderMale, true},
		{"Female", GenderFemale, true},
		{"OTHER", GenderOther, true},
		{" male ", GenderMale, true},
		{"m", "", false},
		{"woman", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseGender(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseName(t *testing.T) {
	name, ok := ParseName("  Asha ")
	assert.True(t, ok)
	assert.Equal(t, "Asha", name)

	_, ok = ParseName("A")
	assert.False(t, ok)

	_, ok = ParseName("   ")
	assert.False(t, ok)
}

func TestPatientProfileComplete(t *testing.T) {
	assert.False(t, PatientProfile{}.Complete())
	assert.False(t, PatientProfile{Name: "Asha", Age: 30}.Complete())
	assert.True(t, PatientProfile{Name: "Asha", Age: 30, Gender: GenderFemale}.Complete())
}

// --- Token record codec tests ---

func sampleRecord() TokenRecord {
	return TokenRecord{
		Code:     "T0711482",
		IssuedAt: time.Date(2026, 11, 7, 9, 30, 0, 0, time.UTC),
		Patient:  PatientProfile{Name: "Asha", Age: 30, Gender: GenderFemale},
		Doctor:   DoctorRecord{Name: "Dr. Sharma", Specialty: "Cardiology"},
	}
}

func TestTokenRecordJSON_Shape(t *testing.T) {
	data, err := EncodeTokenRecord(sampleRecord())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "T0711482", raw["tokenNumber"])
	assert.Equal(t, "2026-11-07T09:30:00Z", raw["timestamp"])

	patient := raw["patientInfo"].(map[string]any)
	assert.Equal(t, "30", patient["age"])
	assert.Equal(t, "female", patient["gender"])

	doctor := raw["doctorInfo"].(map[string]any)
	assert.Equal(t, "Dr. Sharma", doctor["name"])
	assert.Equal(t, "Cardiology", doctor["specialty"])
}

func TestDecodeTokenRecord(t *testing.T) {
	data, err := EncodeTokenRecord(sampleRecord())
	require.NoError(t, err)

	got, err := DecodeTokenRecord(data)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), got)
}

func TestDecodeTokenRecord_NumericAge(t *testing.T) {
	data := `{"tokenNumber":"T0711482","timestamp":"2026-11-07T09:30:00.000Z",
		"patientInfo":{"name":"Asha","age":30,"gender":"female"},
		"doctorInfo":{"name":"Dr. Sharma","specialty":"Cardiology"}}`

	got, err := DecodeTokenRecord([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, 30, got.Patient.Age)
}

func TestDecodeTokenRecord_Corrupt(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{{{`},
		{"empty object", `{}`},
		{"missing age", `{"tokenNumber":"T0711482","timestamp":"2026-11-07T09:30:00Z","patientInfo":{"name":"Asha","gender":"female"},"doctorInfo":{"name":"Dr. Sharma","specialty":"Cardiology"}}`},
		{"age out of range", `{"tokenNumber":"T0711482","timestamp":"2026-11-07T09:30:00Z","patientInfo":{"name":"Asha","age":"200","gender":"female"},"doctorInfo":{"name":"Dr. Sharma","specialty":"Cardiology"}}`},
		{"bad gender", `{"tokenNumber":"T0711482","timestamp":"2026-11-07T09:30:00Z","patientInfo":{"name":"Asha","age":"30","gender":"x"},"doctorInfo":{"name":"Dr. Sharma","specialty":"Cardiology"}}`},
		{"missing doctor", `{"tokenNumber":"T0711482","timestamp":"2026-11-07T09:30:00Z","patientInfo":{"name":"Asha","age":"30","gender":"female"}}`},
		{"bad code", `{"tokenNumber":"X1","timestamp":"2026-11-07T09:30:00Z","patientInfo":{"name":"Asha","age":"30","gender":"female"},"doctorInfo":{"name":"Dr. Sharma","specialty":"Cardiology"}}`},
		{"bad timestamp", `{"tokenNumber":"T0711482","timestamp":"yesterday","patientInfo":{"name":"Asha","age":"30","gender":"female"},"doctorInfo":{"name":"Dr. Sharma","specialty":"Cardiology"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeTokenRecord([]byte(tt.data))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrCorruptRecord)
		})
	}
}

func TestValidTokenCode(t *testing.T) {
	assert.True(t, ValidTokenCode("T0711482"))
	assert.True(t, ValidTokenCode("T3112000"))
	assert.False(t, ValidTokenCode("T071148"))
	assert.False(t, ValidTokenCode("t0711482"))
	assert.False(t, ValidTokenCode("T07114820"))
	assert.False(t, ValidTokenCode("T07a1482"))
}

// --- Session state tests ---

func TestSessionStateClone(t *testing.T) {
	rec := sampleRecord()
	s := SessionState{
		Stage:          StageMainConversation,
		Patient:        rec.Patient,
		SelectedDoctor: &rec.Doctor,
		Token:          &rec,
		Messages:       []Message{{Sender: SenderUser, Text: "hi"}},
	}

	c := s.Clone()
	c.Messages[0].Text = "changed"
	c.SelectedDoctor.Name = "Dr. Patel"
	c.Token.Code = "T0000000"

	assert.Equal(t, "hi", s.Messages[0].Text)
	assert.Equal(t, "Dr. Sharma", s.SelectedDoctor.Name)
	assert.Equal(t, "T0711482", s.Token.Code)
}

func TestSessionStateResetIntake(t *testing.T) {
	rec := sampleRecord()
	s := SessionState{
		Stage:          StageMainConversation,
		Patient:        rec.Patient,
		SelectedDoctor: &rec.Doctor,
		Token:          &rec,
		Messages:       []Message{{Sender: SenderUser, Text: "start over"}},
	}

	s.ResetIntake(StageAskName)
	assert.Equal(t, StageAskName, s.Stage)
	assert.Equal(t, PatientProfile{}, s.Patient)
	assert.Nil(t, s.SelectedDoctor)
	assert.Nil(t, s.Token)
	assert.Len(t, s.Messages, 1)
}

func TestStageIntake(t *testing.T) {
	assert.False(t, StageGreeting.Intake())
	assert.True(t, StageAskName.Intake())
	assert.True(t, StageAskDoctor.Intake())
	assert.False(t, StageMainConversation.Intake())
	assert.False(t, StageShowToken.Intake())
}

func TestDoctorRecordString(t *testing.T) {
	assert.Equal(t, "Dr. Sharma (Cardiology)", DoctorRecord{Name: "Dr. Sharma", Specialty: "Cardiology"}.String())
}

func TestEncodeTokenRecord_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *TokenRecord)
	}{
		{"bad code", func(r *TokenRecord) { r.Code = "X123" }},
		{"zero time", func(r *TokenRecord) { r.IssuedAt = time.Time{} }},
		{"no gender", func(r *TokenRecord) { r.Patient.Gender = "" }},
		{"age zero", func(r *TokenRecord) { r.Patient.Age = 0 }},
		{"no doctor", func(r *TokenRecord) { r.Doctor = DoctorRecord{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleRecord()
			tt.mutate(&rec)
			assert.Error(t, rec.Validate())
			_, err := EncodeTokenRecord(rec)
			assert.Error(t, err)
		})
	}
	assert.NoError(t, sampleRecord().Validate())
}
