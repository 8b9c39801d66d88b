package dialogue

import (
	"fmt"
	"strings"

	"github.com/soyeahso/frontdesk/internal/domain"
)

// Greeting is spoken when the kiosk comes up. It is not part of the
// transcript.
const Greeting = "Namaste! Welcome to our hospital. I'm your virtual assistant. How may I help you today?"

// Apologies for speech capture failures.
const (
	MicPermissionApology = "I need permission to use your microphone. Please enable it in your browser settings."
	MicFailureApology    = "I'm having trouble accessing the microphone. Please check your browser settings."
)

const (
	msgWelcome        = "Welcome to our hospital! To help you better, I need some information. May I know your name, please?"
	msgInvalidName    = "Please enter a valid name (at least 2 characters)."
	msgInvalidAge     = "Please enter a valid age between 1 and 120."
	msgAskGender      = "Thank you! And may I know your gender? (Male/Female/Other)"
	msgInvalidGender  = "Please enter a valid gender (Male/Female/Other)."
	msgMissingProfile = "I'm missing some of your information. Let's start over. May I know your name, please?"
	msgReveal         = "I've displayed your QR code. You can show this to the reception desk for quick check-in. You can also download it for later use."
	msgNoToken        = "I don't see your token information. Would you like to start over and generate a new token?"
	msgStartOver      = "I'll help you generate a new token. May I know your name, please?"
	msgUnknownStage   = "I'm not sure how to proceed. Let's start over. May I know your name, please?"
)

func askAge(name string) string {
	return fmt.Sprintf("Thank you, %s! Could you please tell me your age?", name)
}

func doctorList(doctors []domain.DoctorRecord) string {
	lines := make([]string, len(doctors))
	for i, d := range doctors {
		lines[i] = "• " + d.String()
	}
	return strings.Join(lines, "\n")
}

func askDoctor(doctors []domain.DoctorRecord) string {
	return "Thank you for providing your information. Here are our available doctors:\n\n" +
		doctorList(doctors) +
		"\n\nWhich doctor would you like to meet? You can refer to them by their name or specialty."
}

func noDoctorMatch(doctors []domain.DoctorRecord) string {
	return "I couldn't find an exact match. Here are our available doctors:\n\n" +
		doctorList(doctors) +
		"\n\nPlease select a doctor from the list above. You can refer to them by their name " +
		"(e.g., 'Dr. Sharma' or just 'Sharma') or specialty (e.g., 'Cardiology' or 'heart doctor')."
}

func tokenIssued(rec domain.TokenRecord) string {
	return fmt.Sprintf("Perfect! I have all the information I need:\n\n"+
		"• Name: %s\n• Age: %d\n• Gender: %s\n• Doctor: %s\n\n"+
		"Your token number is %s\n\n"+
		"I've generated a QR code for you. Would you like to see it now?",
		rec.Patient.Name, rec.Patient.Age, displayGender(rec.Patient.Gender), rec.Doctor, rec.Code)
}

func reciteToken(rec domain.TokenRecord) string {
	return fmt.Sprintf("Your token number is %s for %s. Please keep this for your reference.",
		rec.Code, rec.Doctor.Name)
}

func reciteDoctor(rec domain.TokenRecord) string {
	return fmt.Sprintf("You are scheduled to meet %s. Your token number is %s.", rec.Doctor, rec.Code)
}

func welcomeBack(name string) string {
	return fmt.Sprintf("You're welcome, %s! Is there anything else I can help you with?", name)
}

func hello(name string) string {
	return fmt.Sprintf("Hello %s! How can I assist you today?", name)
}

func clarify(input, name string) string {
	return fmt.Sprintf("I understand you're asking about %s, %s. Could you please provide more details about what you need?",
		input, name)
}

// displayGender capitalizes the stored literal for read-back.
func displayGender(g domain.Gender) string {
	s := string(g)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
