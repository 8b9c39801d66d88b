package directory

import (
	"strings"

	"github.com/soyeahso/frontdesk/internal/domain"
)

// Tier names the matcher that resolved a reference.
type Tier string

const (
	TierNone        Tier = ""
	TierExactName   Tier = "exact_name"
	TierNameToken   Tier = "name_token"
	TierSpecialty   Tier = "specialty"
	TierPartialName Tier = "partial_name"
	TierKeyword     Tier = "keyword"
)

// Matcher is one step of the resolution cascade. Match receives normalized
// input and reports the first doctor it accepts.
type Matcher struct {
	Tier  Tier
	Match func(d *Directory, input string) (domain.DoctorRecord, bool)
}

// Match is the outcome of Resolve.
type Match struct {
	Doctor domain.DoctorRecord
	Tier   Tier
}

// DefaultMatchers returns the cascade in priority order. Reordering changes
// which doctor wins on ambiguous input.
func DefaultMatchers() []Matcher {
	return []Matcher{
		{Tier: TierExactName, Match: matchExactName},
		{Tier: TierNameToken, Match: matchNameToken},
		{Tier: TierSpecialty, Match: matchSpecialty},
		{Tier: TierPartialName, Match: matchPartialName},
		{Tier: TierKeyword, Match: matchKeyword},
	}
}

// Normalize lowercases s and drops everything outside [a-z0-9].
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Resolve maps free text to a doctor. Matchers run in order and the first
// hit wins. Input that normalizes to nothing never matches.
func (d *Directory) Resolve(input string) (Match, bool) {
	norm := Normalize(input)
	if norm == "" {
		return Match{}, false
	}
	for _, m := range d.matchers {
		if doc, ok := m.Match(d, norm); ok {
			return Match{Doctor: doc, Tier: m.Tier}, true
		}
	}
	return Match{}, false
}

func matchExactName(d *Directory, input string) (domain.DoctorRecord, bool) {
	for _, doc := range d.doctors {
		if Normalize(doc.Name) == input {
			return doc, true
		}
	}
	return domain.DoctorRecord{}, false
}

// matchNameToken compares against the first and last words of the name,
// so "Dr. Sharma" answers to "dr" and "sharma".
func matchNameToken(d *Directory, input string) (domain.DoctorRecord, bool) {
	for _, doc := range d.doctors {
		fields := strings.Fields(doc.Name)
		if len(fields) == 0 {
			continue
		}
		first := Normalize(fields[0])
		last := Normalize(fields[len(fields)-1])
		if first == input || last == input {
			return doc, true
		}
	}
	return domain.DoctorRecord{}, false
}

func matchSpecialty(d *Directory, input string) (domain.DoctorRecord, bool) {
	for _, doc := range d.doctors {
		if strings.Contains(Normalize(doc.Specialty), input) {
			return doc, true
		}
	}
	return domain.DoctorRecord{}, false
}

func matchPartialName(d *Directory, input string) (domain.DoctorRecord, bool) {
	for _, doc := range d.doctors {
		name := Normalize(doc.Name)
		if strings.Contains(name, input) || strings.Contains(input, name) {
			return doc, true
		}
	}
	return domain.DoctorRecord{}, false
}

func matchKeyword(d *Directory, input string) (domain.DoctorRecord, bool) {
	for _, kw := range d.keywords {
		if strings.Contains(input, Normalize(kw.Word)) {
			return d.BySpecialty(kw.Specialty)
		}
	}
	return domain.DoctorRecord{}, false
}
