package booking

import (
	"context"
	"fmt"
	"time"
)

// AvailabilityBoard owns the mapping from (date, caregiver) to open slots.
// All methods run inside the caller's transaction.
type AvailabilityBoard struct{}

// Publish opens a slot. A caregiver cannot publish the same date twice.
func (AvailabilityBoard) Publish(ctx context.Context, tx Tx, caregiver string, date time.Time) error {
	exists, err := tx.HasAvailability(ctx, caregiver, date)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}
	if exists {
		return ErrDuplicateSlot
	}
	if err := tx.InsertAvailability(ctx, caregiver, date); err != nil {
		return fmt.Errorf("insert availability: %w", err)
	}
	return nil
}

// ClaimEarliest removes the open slot whose caregiver username sorts
// lowest on the given date and returns that caregiver. The select and
// delete happen inside one transaction, so two concurrent claims can
// never take the same slot.
func (AvailabilityBoard) ClaimEarliest(ctx context.Context, tx Tx, date time.Time) (string, error) {
	names, err := tx.AvailableCaregivers(ctx, date)
	if err != nil {
		return "", fmt.Errorf("list availabilities: %w", err)
	}
	if len(names) == 0 {
		return "", ErrNoAvailability
	}
	caregiver := names[0]
	if err := tx.DeleteAvailability(ctx, caregiver, date); err != nil {
		return "", fmt.Errorf("claim availability: %w", err)
	}
	return caregiver, nil
}

// Release reopens a slot after a cancellation. The caller guarantees no
// row exists for the pair: the appointment being cancelled claimed it.
func (AvailabilityBoard) Release(ctx context.Context, tx Tx, caregiver string, date time.Time) error {
	if err := tx.InsertAvailability(ctx, caregiver, date); err != nil {
		return fmt.Errorf("release availability: %w", err)
	}
	return nil
}
