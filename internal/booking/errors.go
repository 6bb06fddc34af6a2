package booking

import "errors"

var (
	ErrNotAuthenticated     = errors.New("not logged in")
	ErrAlreadyAuthenticated = errors.New("user already logged in")
	ErrWrongRole            = errors.New("operation not allowed for this role")

	ErrDuplicateSlot     = errors.New("availability already uploaded for that date")
	ErrNoAvailability    = errors.New("no available caregiver")
	ErrInsufficientDoses = errors.New("no available vaccine")
	ErrVaccineNotFound   = errors.New("vaccine not found")

	ErrAppointmentNotFound = errors.New("you have no such appointment")

	ErrInvalidInput = errors.New("invalid input")

	// ErrStorageUnavailable wraps datastore transport failures. It is the
	// only error kind a caller may retry.
	ErrStorageUnavailable = errors.New("datastore unavailable")
)
