package domain

import "slices"

// SessionState is the whole conversation: stage, intake draft, selected
// doctor, issued token and transcript. It is owned by the dialogue engine
// and passed by value between turns.
type SessionState struct {
	Stage          Stage          `json:"stage"`
	Patient        PatientProfile `json:"patient"`
	SelectedDoctor *DoctorRecord  `json:"selectedDoctor,omitempty"`
	Token          *TokenRecord   `json:"token,omitempty"`
	Messages       []Message      `json:"messages,omitempty"`
}

// NewSessionState returns a session at the greeting stage with an empty log.
func NewSessionState() SessionState {
	return SessionState{Stage: StageGreeting}
}

// Clone returns a copy that shares no mutable memory with s.
func (s SessionState) Clone() SessionState {
	c := s
	c.Messages = slices.Clone(s.Messages)
	if s.SelectedDoctor != nil {
		d := *s.SelectedDoctor
		c.SelectedDoctor = &d
	}
	if s.Token != nil {
		t := *s.Token
		c.Token = &t
	}
	return c
}

// ResetIntake clears the draft, doctor and token and moves to stage.
// The transcript is kept.
func (s *SessionState) ResetIntake(stage Stage) {
	s.Stage = stage
	s.Patient = PatientProfile{}
	s.SelectedDoctor = nil
	s.Token = nil
}
