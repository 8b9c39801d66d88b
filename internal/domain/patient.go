package domain

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Age bounds accepted at intake.
const (
	MinAge = 1
	MaxAge = 120
)

// MinNameLength is the shortest name accepted at intake, in characters.
const MinNameLength = 2

// Gender is the patient's self-reported gender.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists the accepted values in prompt order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// Valid reports whether g is one of the accepted literals.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// PatientProfile is the intake draft. Zero values mean "not collected yet".
type PatientProfile struct {
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

// Complete reports whether every field has been collected and is valid.
func (p PatientProfile) Complete() bool {
	return ValidName(p.Name) && ValidAge(p.Age) && p.Gender.Valid()
}

// ValidName reports whether name is long enough to accept.
func ValidName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= MinNameLength
}

// ValidAge reports whether age lies within [MinAge, MaxAge].
func ValidAge(age int) bool {
	return age >= MinAge && age <= MaxAge
}

// ParseName trims the input and validates it as a patient name.
func ParseName(input string) (string, bool) {
	name := strings.TrimSpace(input)
	if !ValidName(name) {
		return "", false
	}
	return name, true
}

// ParseAge reads a leading integer from the input ("30", "30 years") and
// validates its range. Input without leading digits is rejected.
func ParseAge(input string) (int, bool) {
	s := strings.TrimSpace(input)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	age, err := strconv.Atoi(s[:end])
	if err != nil || !ValidAge(age) {
		return 0, false
	}
	return age, true
}

// ParseGender matches the input case-insensitively against the accepted literals.
func ParseGender(input string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(input)))
	if !g.Valid() {
		return "", false
	}
	return g, true
}
