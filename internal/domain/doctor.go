package domain

import "fmt"

// DoctorRecord is a physician listed in the directory.
type DoctorRecord struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
}

// String renders the record as "Dr. Sharma (Cardiology)".
func (d DoctorRecord) String() string {
	return fmt.Sprintf("%s (%s)", d.Name, d.Specialty)
}
