package booking

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate accepts a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidInput)
	}
	return d, nil
}

// Vaccine tracks a shared pool of doses. Doses never goes negative.
type Vaccine struct {
	Name  string
	Doses int
}

// Availability is a slot a caregiver has opened on a date and not yet had
// claimed. A (date, caregiver) pair appears at most once.
type Availability struct {
	Caregiver string
	Date      time.Time
}

// Appointment links one patient, one caregiver, one vaccine dose and one
// date. Only its two participants may read or cancel it.
type Appointment struct {
	ID        int64
	Caregiver string
	Patient   string
	Vaccine   string
	Date      time.Time
}

// Schedule is the result of a schedule search: caregivers open on the
// searched date plus the full vaccine inventory.
type Schedule struct {
	Date       time.Time
	Caregivers []string
	Vaccines   []Vaccine
}
