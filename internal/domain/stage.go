package domain

// Stage is the active step of the intake conversation.
type Stage string

const (
	StageGreeting         Stage = "greeting"
	StageAskName          Stage = "ask_name"
	StageAskAge           Stage = "ask_age"
	StageAskGender        Stage = "ask_gender"
	StageAskDoctor        Stage = "ask_doctor"
	StageMainConversation Stage = "main_conversation"

	// StageShowToken is kept for wire compatibility with older kiosk
	// transcripts. No transition enters it.
	StageShowToken Stage = "show_token"
)

// Intake reports whether the stage is one of the data-collection steps.
func (s Stage) Intake() bool {
	switch s {
	case StageAskName, StageAskAge, StageAskGender, StageAskDoctor:
		return true
	}
	return false
}
