// Package directory holds the physician registry and resolves free-text
// doctor references against it.
package directory

import (
	"slices"

	"github.com/soyeahso/frontdesk/internal/domain"
)

// Keyword maps a colloquial word to a specialty ("heart" -> Cardiology).
type Keyword struct {
	Word      string
	Specialty string
}

// Directory is an immutable, ordered physician registry.
type Directory struct {
	doctors  []domain.DoctorRecord
	keywords []Keyword
	matchers []Matcher
}

// defaultDoctors is the hospital's registry in display order.
var defaultDoctors = []domain.DoctorRecord{
	{Name: "Dr. Sharma", Specialty: "Cardiology"},
	{Name: "Dr. Patel", Specialty: "Neurology"},
	{Name: "Dr. Gupta", Specialty: "Orthopedics"},
	{Name: "Dr. Singh", Specialty: "Pediatrics"},
	{Name: "Dr. Verma", Specialty: "Dermatology"},
	{Name: "Dr. Kumar", Specialty: "General Medicine"},
}

// defaultKeywords is checked in order; the first keyword contained in the
// input wins.
var defaultKeywords = []Keyword{
	{Word: "cardio", Specialty: "Cardiology"},
	{Word: "heart", Specialty: "Cardiology"},
	{Word: "neuro", Specialty: "Neurology"},
	{Word: "brain", Specialty: "Neurology"},
	{Word: "ortho", Specialty: "Orthopedics"},
	{Word: "bone", Specialty: "Orthopedics"},
	{Word: "pediatric", Specialty: "Pediatrics"},
	{Word: "child", Specialty: "Pediatrics"},
	{Word: "derma", Specialty: "Dermatology"},
	{Word: "skin", Specialty: "Dermatology"},
	{Word: "general", Specialty: "General Medicine"},
	{Word: "medicine", Specialty: "General Medicine"},
}

// Default returns the hospital's six-doctor directory.
func Default() *Directory {
	return New(defaultDoctors, defaultKeywords)
}

// New builds a directory from the given doctors and keyword table using the
// standard matcher cascade.
func New(doctors []domain.DoctorRecord, keywords []Keyword) *Directory {
	return &Directory{
		doctors:  slices.Clone(doctors),
		keywords: slices.Clone(keywords),
		matchers: DefaultMatchers(),
	}
}

// WithMatchers returns a copy of d that resolves with the given cascade.
func (d *Directory) WithMatchers(matchers ...Matcher) *Directory {
	c := *d
	c.matchers = slices.Clone(matchers)
	return &c
}

// List returns the doctors in display order.
func (d *Directory) List() []domain.DoctorRecord {
	return slices.Clone(d.doctors)
}

// Keywords returns the specialty keyword table in match order.
func (d *Directory) Keywords() []Keyword {
	return slices.Clone(d.keywords)
}

// Len returns the number of doctors.
func (d *Directory) Len() int {
	return len(d.doctors)
}

// Lookup finds a doctor by exact display name.
func (d *Directory) Lookup(name string) (domain.DoctorRecord, bool) {
	for _, doc := range d.doctors {
		if doc.Name == name {
			return doc, true
		}
	}
	return domain.DoctorRecord{}, false
}

// Contains reports whether rec is listed with the same name and specialty.
func (d *Directory) Contains(rec domain.DoctorRecord) bool {
	got, ok := d.Lookup(rec.Name)
	return ok && got == rec
}

// BySpecialty returns the first doctor whose specialty equals specialty.
func (d *Directory) BySpecialty(specialty string) (domain.DoctorRecord, bool) {
	for _, doc := range d.doctors {
		if doc.Specialty == specialty {
			return doc, true
		}
	}
	return domain.DoctorRecord{}, false
}
