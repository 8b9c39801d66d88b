package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrCorruptRecord is returned when persisted token data cannot be decoded
// or is missing required fields.
var ErrCorruptRecord = errors.New("corrupt token record")

// tokenCodePattern is "T" + day(2) + month(2) + random(3).
var tokenCodePattern = regexp.MustCompile(`^T\d{2}\d{2}\d{3}$`)

// ValidTokenCode reports whether code has the visit-code shape, e.g. T0711482.
func ValidTokenCode(code string) bool {
	return tokenCodePattern.MatchString(code)
}

// TokenRecord is an issued visit token bundled with the patient and doctor
// snapshot taken at issuance.
type TokenRecord struct {
	Code     string
	IssuedAt time.Time
	Patient  PatientProfile
	Doctor   DoctorRecord
}

// tokenRecordJSON is the persisted shape. Field names and the string-typed
// age match the records written by the browser kiosk so existing slots
// keep resuming.
type tokenRecordJSON struct {
	TokenNumber string           `json:"tokenNumber"`
	Timestamp   string           `json:"timestamp"`
	PatientInfo *patientInfoJSON `json:"patientInfo"`
	DoctorInfo  *doctorInfoJSON  `json:"doctorInfo"`
}

type patientInfoJSON struct {
	Name   string          `json:"name"`
	Age    json.RawMessage `json:"age"`
	Gender string          `json:"gender"`
}

type doctorInfoJSON struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// MarshalJSON encodes the record in its persisted shape.
func (r TokenRecord) MarshalJSON() ([]byte, error) {
	age, err := json.Marshal(strconv.Itoa(r.Patient.Age))
	if err != nil {
		return nil, err
	}
	return json.Marshal(tokenRecordJSON{
		TokenNumber: r.Code,
		Timestamp:   r.IssuedAt.UTC().Format(time.RFC3339Nano),
		PatientInfo: &patientInfoJSON{
			Name:   r.Patient.Name,
			Age:    age,
			Gender: string(r.Patient.Gender),
		},
		DoctorInfo: &doctorInfoJSON{
			Name:      r.Doctor.Name,
			Specialty: r.Doctor.Specialty,
		},
	})
}

// UnmarshalJSON decodes and validates a persisted record. Any structural
// problem is reported as ErrCorruptRecord.
func (r *TokenRecord) UnmarshalJSON(data []byte) error {
	var raw tokenRecordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if !ValidTokenCode(raw.TokenNumber) {
		return fmt.Errorf("%w: invalid token number %q", ErrCorruptRecord, raw.TokenNumber)
	}
	issuedAt, err := time.Parse(time.RFC3339Nano, raw.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: invalid timestamp: %v", ErrCorruptRecord, err)
	}
	if raw.PatientInfo == nil {
		return fmt.Errorf("%w: missing patientInfo", ErrCorruptRecord)
	}
	if raw.DoctorInfo == nil || raw.DoctorInfo.Name == "" || raw.DoctorInfo.Specialty == "" {
		return fmt.Errorf("%w: missing doctorInfo", ErrCorruptRecord)
	}

	age, err := decodeAge(raw.PatientInfo.Age)
	if err != nil {
		return fmt.Errorf("%w: patientInfo.age: %v", ErrCorruptRecord, err)
	}
	name, ok := ParseName(raw.PatientInfo.Name)
	if !ok {
		return fmt.Errorf("%w: invalid patientInfo.name", ErrCorruptRecord)
	}
	gender, ok := ParseGender(raw.PatientInfo.Gender)
	if !ok {
		return fmt.Errorf("%w: invalid patientInfo.gender %q", ErrCorruptRecord, raw.PatientInfo.Gender)
	}

	*r = TokenRecord{
		Code:     raw.TokenNumber,
		IssuedAt: issuedAt,
		Patient:  PatientProfile{Name: name, Age: age, Gender: gender},
		Doctor:   DoctorRecord{Name: raw.DoctorInfo.Name, Specialty: raw.DoctorInfo.Specialty},
	}
	return nil
}

// decodeAge accepts the age as a JSON string ("30") or number (30).
func decodeAge(raw json.RawMessage) (int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, err
		}
		s = n.String()
	}
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if !ValidAge(age) {
		return 0, fmt.Errorf("out of range: %d", age)
	}
	return age, nil
}

// Validate reports why r could not be resumed after a round trip, or nil.
func (r TokenRecord) Validate() error {
	switch {
	case !ValidTokenCode(r.Code):
		return fmt.Errorf("invalid token number %q", r.Code)
	case r.IssuedAt.IsZero():
		return errors.New("missing issue time")
	case !r.Patient.Complete():
		return errors.New("incomplete patient profile")
	case r.Doctor.Name == "" || r.Doctor.Specialty == "":
		return errors.New("missing doctor")
	}
	return nil
}

// EncodeTokenRecord serializes a record for a session store slot. Records
// that would not decode again are rejected.
func EncodeTokenRecord(r TokenRecord) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, fmt.Errorf("encoding token record: %w", err)
	}
	return json.Marshal(r)
}

// DecodeTokenRecord parses a session store slot.
func DecodeTokenRecord(data []byte) (TokenRecord, error) {
	var r TokenRecord
	if err := json.Unmarshal(data, &r); err != nil {
		if errors.Is(err, ErrCorruptRecord) {
			return TokenRecord{}, err
		}
		return TokenRecord{}, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	return r, nil
}
