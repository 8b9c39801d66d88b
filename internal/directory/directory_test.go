package directory

import (
	"testing"

	"github.com/soyeahso/frontdesk/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Dr. Sharma", "drsharma"},
		{"  General Medicine ", "generalmedicine"},
		{"heart-doctor!", "heartdoctor"},
		{"Room 12", "room12"},
		{"!!!", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestResolve(t *testing.T) {
	dir := Default()

	tests := []struct {
		input      string
		wantDoctor string
		wantTier   Tier
	}{
		{"Dr. Sharma", "Dr. Sharma", TierExactName},
		{"dr patel", "Dr. Patel", TierExactName},
		{"Sharma", "Dr. Sharma", TierNameToken},
		{"KUMAR", "Dr. Kumar", TierNameToken},
		{"dr", "Dr. Sharma", TierNameToken},
		{"Cardiology", "Dr. Sharma", TierSpecialty},
		{"neuro", "Dr. Patel", TierSpecialty},
		{"general", "Dr. Kumar", TierSpecialty},
		{"I want Dr. Gupta please", "Dr. Gupta", TierPartialName},
		{"drsin", "Dr. Singh", TierPartialName},
		{"heart doctor", "Dr. Sharma", TierKeyword},
		{"my skin itches", "Dr. Verma", TierKeyword},
		{"child specialist", "Dr. Singh", TierKeyword},
		{"broken bone", "Dr. Gupta", TierKeyword},
		{"brain", "Dr. Patel", TierKeyword},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			m, ok := dir.Resolve(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.wantDoctor, m.Doctor.Name)
			assert.Equal(t, tt.wantTier, m.Tier)
		})
	}
}

func TestResolve_NoMatch(t *testing.T) {
	dir := Default()

	for _, input := range []string{"xyz", "", "   ", "!!!", "dentist"} {
		t.Run(input, func(t *testing.T) {
			_, ok := dir.Resolve(input)
			assert.False(t, ok)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	dir := Default()
	first, ok := dir.Resolve("medicine")
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		again, ok := dir.Resolve("medicine")
		require.True(t, ok)
		assert.Equal(t, first, again)
	}
}

func TestResolve_PriorityOrder(t *testing.T) {
	// A doctor literally named after a specialty keyword: the name-token tier
	// must win over the specialty tier.
	dir := New([]domain.DoctorRecord{
		{Name: "Dr. Kumar", Specialty: "General Medicine"},
		{Name: "Dr. General", Specialty: "Dermatology"},
	}, nil)

	m, ok := dir.Resolve("general")
	require.True(t, ok)
	assert.Equal(t, "Dr. General", m.Doctor.Name)
	assert.Equal(t, TierNameToken, m.Tier)

	// Dropping the name-token tier hands the same input to the specialty tier.
	reordered := dir.WithMatchers(matchersWithout(TierNameToken)...)
	m, ok = reordered.Resolve("general")
	require.True(t, ok)
	assert.Equal(t, "Dr. Kumar", m.Doctor.Name)
	assert.Equal(t, TierSpecialty, m.Tier)
}

func matchersWithout(tier Tier) []Matcher {
	var out []Matcher
	for _, m := range DefaultMatchers() {
		if m.Tier != tier {
			out = append(out, m)
		}
	}
	return out
}

func TestMatchers_Independently(t *testing.T) {
	dir := Default()

	doc, ok := matchExactName(dir, "drverma")
	require.True(t, ok)
	assert.Equal(t, "Dr. Verma", doc.Name)

	_, ok = matchExactName(dir, "verma")
	assert.False(t, ok)

	doc, ok = matchNameToken(dir, "verma")
	require.True(t, ok)
	assert.Equal(t, "Dr. Verma", doc.Name)

	doc, ok = matchSpecialty(dir, "ortho")
	require.True(t, ok)
	assert.Equal(t, "Dr. Gupta", doc.Name)

	doc, ok = matchPartialName(dir, "pleasedrkumarthanks")
	require.True(t, ok)
	assert.Equal(t, "Dr. Kumar", doc.Name)

	_, ok = matchKeyword(dir, "xyz")
	assert.False(t, ok)
}

func TestKeyword_UnknownSpecialty(t *testing.T) {
	dir := New(
		[]domain.DoctorRecord{{Name: "Dr. Sharma", Specialty: "Cardiology"}},
		[]Keyword{{Word: "skin", Specialty: "Dermatology"}},
	)
	_, ok := dir.Resolve("skin rash")
	assert.False(t, ok)
}

func TestLookupAndContains(t *testing.T) {
	dir := Default()
	assert.Equal(t, 6, dir.Len())

	doc, ok := dir.Lookup("Dr. Singh")
	require.True(t, ok)
	assert.Equal(t, "Pediatrics", doc.Specialty)

	_, ok = dir.Lookup("Singh")
	assert.False(t, ok)

	assert.True(t, dir.Contains(domain.DoctorRecord{Name: "Dr. Singh", Specialty: "Pediatrics"}))
	assert.False(t, dir.Contains(domain.DoctorRecord{Name: "Dr. Singh", Specialty: "Cardiology"}))
}

func TestListIsCopy(t *testing.T) {
	dir := Default()
	list := dir.List()
	list[0].Name = "Dr. Nobody"

	assert.Equal(t, "Dr. Sharma", dir.List()[0].Name)
}
