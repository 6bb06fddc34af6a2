package booking

import (
	"context"
	"time"
)

// Datastore provides transactional access to the availability, vaccine and
// appointment relations. Every mutating engine operation runs inside a
// single WithTx call: if fn returns an error nothing it did is visible
// afterwards, which is what makes reserve and cancel all-or-nothing.
//
// Implementations must give transactions serializable-or-better isolation
// on the rows they touch, since several processes may share one backing
// store.
type Datastore interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the capability set available inside a transaction.
type Tx interface {
	// Availabilities. AvailableCaregivers returns usernames sorted
	// ascending so the claim order is deterministic.
	AvailableCaregivers(ctx context.Context, date time.Time) ([]string, error)
	HasAvailability(ctx context.Context, caregiver string, date time.Time) (bool, error)
	InsertAvailability(ctx context.Context, caregiver string, date time.Time) error
	DeleteAvailability(ctx context.Context, caregiver string, date time.Time) error

	// Vaccines. GetVaccine returns ErrVaccineNotFound for unseen names.
	GetVaccine(ctx context.Context, name string) (*Vaccine, error)
	InsertVaccine(ctx context.Context, v Vaccine) error
	SetVaccineDoses(ctx context.Context, name string, doses int) error
	ListVaccines(ctx context.Context) ([]Vaccine, error)

	// Appointments. GetAppointment returns ErrAppointmentNotFound when
	// the id is absent.
	MaxAppointmentID(ctx context.Context) (int64, error)
	InsertAppointment(ctx context.Context, a Appointment) error
	GetAppointment(ctx context.Context, id int64) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error
	AppointmentsByPatient(ctx context.Context, username string) ([]Appointment, error)
	AppointmentsByCaregiver(ctx context.Context, username string) ([]Appointment, error)
}
