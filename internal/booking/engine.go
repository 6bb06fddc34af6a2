package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/vaxsched/vaccine-scheduler/internal/account"
	redisclient "github.com/vaxsched/vaccine-scheduler/internal/redis"
)

// Engine orchestrates the availability board, the dose ledger and the
// appointment relation. Every mutating operation runs inside one datastore
// transaction, so a failure at any step leaves state exactly as it was
// before the call.
type Engine struct {
	store    Datastore
	accounts account.Store
	locker   redisclient.Locker
	board    AvailabilityBoard
	ledger   DoseLedger
}

func NewEngine(store Datastore, accounts account.Store, locker redisclient.Locker) *Engine {
	return &Engine{
		store:    store,
		accounts: accounts,
		locker:   locker,
	}
}

// Register creates an account after validating the password policy and
// checking the username is free.
func (e *Engine) Register(ctx context.Context, username, password string, role account.Role) error {
	if username == "" {
		return fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
	}
	if err := account.ValidatePassword(password); err != nil {
		return err
	}
	taken, err := e.accounts.Exists(ctx, username)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if taken {
		return account.ErrDuplicateUsername
	}
	salt, hash, err := account.HashPassword(password)
	if err != nil {
		return err
	}
	return e.accounts.Create(ctx, account.Account{
		Username: username,
		Salt:     salt,
		Hash:     hash,
		Role:     role,
	})
}

// Login authenticates the credentials and binds the identity to the
// session. An account of the wrong role fails the same way as a wrong
// password.
func (e *Engine) Login(ctx context.Context, sess *Session, role account.Role, username, password string) error {
	if sess.Authenticated() {
		return ErrAlreadyAuthenticated
	}
	a, err := e.accounts.Verify(ctx, username, password)
	if err != nil {
		return err
	}
	if a.Role != role {
		return account.ErrInvalidCredentials
	}
	return sess.LoginAs(a)
}

func (e *Engine) Logout(sess *Session) error {
	return sess.Logout()
}

// Reserve books the earliest available caregiver on the date for the
// session's patient and takes one dose of the vaccine. Claim, dose
// decrement and appointment insert commit together or not at all: if the
// vaccine has no stock the claimed slot is visible as available again as
// soon as the call returns.
func (e *Engine) Reserve(ctx context.Context, sess *Session, date time.Time, vaccineName string) (*Appointment, error) {
	if err := sess.require(account.RolePatient); err != nil {
		return nil, err
	}
	if vaccineName == "" {
		return nil, fmt.Errorf("%w: vaccine name must not be empty", ErrInvalidInput)
	}

	var appt *Appointment
	err := e.locker.WithDateLock(ctx, date.Format(DateLayout), func(ctx context.Context) error {
		return e.store.WithTx(ctx, func(tx Tx) error {
			caregiver, err := e.board.ClaimEarliest(ctx, tx, date)
			if err != nil {
				return err
			}
			if err := e.ledger.Decrease(ctx, tx, vaccineName, 1); err != nil {
				return err
			}
			// Ids follow the max+1 policy: dense and monotonic, never
			// reused after a cancellation frees a lower id.
			maxID, err := tx.MaxAppointmentID(ctx)
			if err != nil {
				return fmt.Errorf("assign appointment id: %w", err)
			}
			a := Appointment{
				ID:        maxID + 1,
				Caregiver: caregiver,
				Patient:   sess.Username(),
				Vaccine:   vaccineName,
				Date:      date,
			}
			if err := tx.InsertAppointment(ctx, a); err != nil {
				return fmt.Errorf("insert appointment: %w", err)
			}
			appt = &a
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel removes an appointment owned by the session identity, reopens the
// claimed slot and returns the dose to the pool. The other participant's
// appointments are invisible to this call.
func (e *Engine) Cancel(ctx context.Context, sess *Session, appointmentID int64) error {
	if err := sess.requireAny(); err != nil {
		return err
	}
	if appointmentID <= 0 {
		return fmt.Errorf("%w: appointment id must be positive", ErrInvalidInput)
	}

	return e.store.WithTx(ctx, func(tx Tx) error {
		a, err := tx.GetAppointment(ctx, appointmentID)
		if err != nil {
			return err
		}
		if !e.owns(sess, a) {
			return ErrAppointmentNotFound
		}
		if err := tx.DeleteAppointment(ctx, a.ID); err != nil {
			return fmt.Errorf("delete appointment: %w", err)
		}
		if err := e.board.Release(ctx, tx, a.Caregiver, a.Date); err != nil {
			return err
		}
		return e.ledger.Increase(ctx, tx, a.Vaccine, 1)
	})
}

func (e *Engine) owns(sess *Session, a *Appointment) bool {
	switch sess.Role() {
	case account.RolePatient:
		return a.Patient == sess.Username()
	case account.RoleCaregiver:
		return a.Caregiver == sess.Username()
	}
	return false
}

// PublishAvailability opens a slot for the session's caregiver on the date.
func (e *Engine) PublishAvailability(ctx context.Context, sess *Session, date time.Time) error {
	if err := sess.require(account.RoleCaregiver); err != nil {
		return err
	}
	return e.store.WithTx(ctx, func(tx Tx) error {
		return e.board.Publish(ctx, tx, sess.Username(), date)
	})
}

// AddDoses adds stock to a vaccine, creating it on first sight.
func (e *Engine) AddDoses(ctx context.Context, sess *Session, vaccineName string, count int) error {
	if err := sess.require(account.RoleCaregiver); err != nil {
		return err
	}
	if vaccineName == "" {
		return fmt.Errorf("%w: vaccine name must not be empty", ErrInvalidInput)
	}
	return e.store.WithTx(ctx, func(tx Tx) error {
		return e.ledger.Increase(ctx, tx, vaccineName, count)
	})
}

// ListAppointments returns the session identity's appointments ordered by
// id ascending.
func (e *Engine) ListAppointments(ctx context.Context, sess *Session) ([]Appointment, error) {
	if err := sess.requireAny(); err != nil {
		return nil, err
	}
	var out []Appointment
	err := e.store.WithTx(ctx, func(tx Tx) error {
		var err error
		if sess.Role() == account.RoleCaregiver {
			out, err = tx.AppointmentsByCaregiver(ctx, sess.Username())
		} else {
			out, err = tx.AppointmentsByPatient(ctx, sess.Username())
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SearchSchedule lists caregivers open on the exact date plus the whole
// vaccine inventory, regardless of the searched date or stock.
func (e *Engine) SearchSchedule(ctx context.Context, sess *Session, date time.Time) (*Schedule, error) {
	if err := sess.requireAny(); err != nil {
		return nil, err
	}
	sched := &Schedule{Date: date}
	err := e.store.WithTx(ctx, func(tx Tx) error {
		caregivers, err := tx.AvailableCaregivers(ctx, date)
		if err != nil {
			return err
		}
		vaccines, err := tx.ListVaccines(ctx)
		if err != nil {
			return err
		}
		sched.Caregivers = caregivers
		sched.Vaccines = vaccines
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sched, nil
}
