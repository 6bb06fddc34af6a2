package booking

import (
	"context"
	"errors"
	"fmt"
)

// DoseLedger owns the invariant that a vaccine's available dose count never
// goes negative. All methods run inside the caller's transaction, so the
// check and the write on a vaccine are one step.
type DoseLedger struct{}

// EnsureVaccine creates the vaccine with the given stock if it is unseen.
// An existing vaccine is left untouched.
func (DoseLedger) EnsureVaccine(ctx context.Context, tx Tx, name string, initialDoses int) error {
	if initialDoses < 0 {
		return fmt.Errorf("%w: dose count must not be negative", ErrInvalidInput)
	}
	_, err := tx.GetVaccine(ctx, name)
	if errors.Is(err, ErrVaccineNotFound) {
		return tx.InsertVaccine(ctx, Vaccine{Name: name, Doses: initialDoses})
	}
	return err
}

// Increase adds delta doses, creating the vaccine lazily with delta as its
// initial stock when the name is unseen.
func (DoseLedger) Increase(ctx context.Context, tx Tx, name string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("%w: dose count must be positive", ErrInvalidInput)
	}
	v, err := tx.GetVaccine(ctx, name)
	if errors.Is(err, ErrVaccineNotFound) {
		return tx.InsertVaccine(ctx, Vaccine{Name: name, Doses: delta})
	}
	if err != nil {
		return fmt.Errorf("load vaccine: %w", err)
	}
	return tx.SetVaccineDoses(ctx, name, v.Doses+delta)
}

// Decrease subtracts delta doses, failing with ErrInsufficientDoses when
// the vaccine is unseen or the remaining stock is too small.
func (DoseLedger) Decrease(ctx context.Context, tx Tx, name string, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("%w: dose count must be positive", ErrInvalidInput)
	}
	v, err := tx.GetVaccine(ctx, name)
	if errors.Is(err, ErrVaccineNotFound) {
		return ErrInsufficientDoses
	}
	if err != nil {
		return fmt.Errorf("load vaccine: %w", err)
	}
	if v.Doses < delta {
		return ErrInsufficientDoses
	}
	return tx.SetVaccineDoses(ctx, name, v.Doses-delta)
}
