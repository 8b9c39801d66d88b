package dialogue

import "strings"

// Intent is the classification of a post-issuance utterance.
type Intent string

const (
	IntentRevealToken Intent = "reveal_token"
	IntentNewToken    Intent = "new_token"
	IntentFallback    Intent = "fallback"
)

type intentRule struct {
	intent   Intent
	keywords []string
}

// intentRules are tried in order. "new token" also contains "token", so a
// request for a new token is read as a reveal when a token exists.
var intentRules = []intentRule{
	{IntentRevealToken, []string{"qr", "code", "show", "token", "yes", "sure"}},
	{IntentNewToken, []string{"new token", "generate", "start over"}},
}

// Classify returns the first intent whose keywords occur in input,
// ignoring case.
func Classify(input string) Intent {
	lower := strings.ToLower(input)
	for _, r := range intentRules {
		if containsAny(lower, r.keywords) {
			return r.intent
		}
	}
	return IntentFallback
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
