package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgDatastore runs every transaction at serializable isolation, which is
// what lets two terminals share one database without double-booking.
type PgDatastore struct {
	pool *pgxpool.Pool
}

func NewPgDatastore(pool *pgxpool.Pool) *PgDatastore {
	return &PgDatastore{pool: pool}
}

func (s *PgDatastore) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", ErrStorageUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(pgTx{tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrStorageUnavailable, err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t pgTx) AvailableCaregivers(ctx context.Context, date time.Time) ([]string, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT caregiver FROM availabilities
		WHERE date = $1
		ORDER BY caregiver ASC
	`, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (t pgTx) HasAvailability(ctx context.Context, caregiver string, date time.Time) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM availabilities WHERE caregiver = $1 AND date = $2)
	`, caregiver, date).Scan(&exists)
	return exists, err
}

func (t pgTx) InsertAvailability(ctx context.Context, caregiver string, date time.Time) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO availabilities (caregiver, date) VALUES ($1, $2)
	`, caregiver, date)
	return err
}

func (t pgTx) DeleteAvailability(ctx context.Context, caregiver string, date time.Time) error {
	_, err := t.tx.Exec(ctx, `
		DELETE FROM availabilities WHERE caregiver = $1 AND date = $2
	`, caregiver, date)
	return err
}

func (t pgTx) GetVaccine(ctx context.Context, name string) (*Vaccine, error) {
	var v Vaccine
	err := t.tx.QueryRow(ctx, `
		SELECT name, doses FROM vaccines WHERE name = $1
	`, name).Scan(&v.Name, &v.Doses)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVaccineNotFound
		}
		return nil, err
	}
	return &v, nil
}

func (t pgTx) InsertVaccine(ctx context.Context, v Vaccine) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO vaccines (name, doses) VALUES ($1, $2)
	`, v.Name, v.Doses)
	return err
}

func (t pgTx) SetVaccineDoses(ctx context.Context, name string, doses int) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE vaccines SET doses = $2 WHERE name = $1
	`, name, doses)
	return err
}

func (t pgTx) ListVaccines(ctx context.Context) ([]Vaccine, error) {
	rows, err := t.tx.Query(ctx, `
		SELECT name, doses FROM vaccines ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vaccine
	for rows.Next() {
		var v Vaccine
		if err := rows.Scan(&v.Name, &v.Doses); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (t pgTx) MaxAppointmentID(ctx context.Context) (int64, error) {
	var max int64
	err := t.tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(id), 0) FROM appointments
	`).Scan(&max)
	return max, err
}

func (t pgTx) InsertAppointment(ctx context.Context, a Appointment) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO appointments (id, caregiver, patient, vaccine, date)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ID, a.Caregiver, a.Patient, a.Vaccine, a.Date)
	return err
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.Caregiver, &a.Patient, &a.Vaccine, &a.Date)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (t pgTx) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT id, caregiver, patient, vaccine, date
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (t pgTx) DeleteAppointment(ctx context.Context, id int64) error {
	_, err := t.tx.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1
	`, id)
	return err
}

func (t pgTx) AppointmentsByPatient(ctx context.Context, username string) ([]Appointment, error) {
	return t.listAppointments(ctx, `
		SELECT id, caregiver, patient, vaccine, date
		FROM appointments
		WHERE patient = $1
		ORDER BY id ASC
	`, username)
}

func (t pgTx) AppointmentsByCaregiver(ctx context.Context, username string) ([]Appointment, error) {
	return t.listAppointments(ctx, `
		SELECT id, caregiver, patient, vaccine, date
		FROM appointments
		WHERE caregiver = $1
		ORDER BY id ASC
	`, username)
}

func (t pgTx) listAppointments(ctx context.Context, query, username string) ([]Appointment, error) {
	rows, err := t.tx.Query(ctx, query, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
