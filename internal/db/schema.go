package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	username TEXT PRIMARY KEY,
	salt     BYTEA NOT NULL,
	hash     BYTEA NOT NULL,
	role     TEXT NOT NULL CHECK (role IN ('patient', 'caregiver'))
);

CREATE TABLE IF NOT EXISTS vaccines (
	name  TEXT PRIMARY KEY,
	doses INT NOT NULL CHECK (doses >= 0)
);

CREATE TABLE IF NOT EXISTS availabilities (
	caregiver TEXT NOT NULL REFERENCES accounts (username),
	date      DATE NOT NULL,
	PRIMARY KEY (caregiver, date)
);

CREATE INDEX IF NOT EXISTS availabilities_date_idx ON availabilities (date, caregiver);

CREATE TABLE IF NOT EXISTS appointments (
	id        BIGINT PRIMARY KEY,
	caregiver TEXT NOT NULL REFERENCES accounts (username),
	patient   TEXT NOT NULL REFERENCES accounts (username),
	vaccine   TEXT NOT NULL REFERENCES vaccines (name),
	date      DATE NOT NULL
);

CREATE INDEX IF NOT EXISTS appointments_patient_idx ON appointments (patient);
CREATE INDEX IF NOT EXISTS appointments_caregiver_idx ON appointments (caregiver);
`

// Migrate applies the schema. Statements are idempotent so startup can run
// this unconditionally.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
