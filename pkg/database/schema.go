package database

import (
	"context"
	"fmt"
)

// CreateSchema creates the clinic tables and indexes. Safe to call on every
// startup; everything is IF NOT EXISTS.
//
// The unique index on (doctor_id, date, time) is the authoritative guard
// against double-booking: the application re-checks inside the insert/update
// transaction, but the index is what makes the invariant hold under
// concurrent requests.
func (db *DB) CreateSchema(ctx context.Context) error {
	db.logger.Info("Creating database schema...")

	statements := []string{
		createDoctorsTable,
		createServicesTable,
		createAppointmentsTable,
		createSlotUniqueIndex,
		createAppointmentsDateIndex,
		createAppointmentsDoctorIndex,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	db.logger.Info("Database schema ready")
	return nil
}

const (
	createDoctorsTable = `
		CREATE TABLE IF NOT EXISTS doctors (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			speciality TEXT NOT NULL DEFAULT '',
			percent INTEGER NOT NULL DEFAULT 0 CHECK (percent >= 0 AND percent <= 100),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`

	createServicesTable = `
		CREATE TABLE IF NOT EXISTS services (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL DEFAULT 0 CHECK (price >= 0),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`

	// date and time are plain text labels (YYYY-MM-DD, HH:MM); a slot is a
	// point in the doctor's day, not an interval.
	createAppointmentsTable = `
		CREATE TABLE IF NOT EXISTS appointments (
			id TEXT PRIMARY KEY,
			doctor_id TEXT NOT NULL,
			service_id TEXT NOT NULL DEFAULT '',
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			patient_name TEXT NOT NULL,
			phone TEXT NOT NULL DEFAULT '',
			price BIGINT NOT NULL DEFAULT 0 CHECK (price >= 0),
			status_visit TEXT NOT NULL DEFAULT 'scheduled',
			status_payment TEXT NOT NULL DEFAULT 'unpaid',
			payment_method TEXT NOT NULL DEFAULT 'none',
			note TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`

	createSlotUniqueIndex = `
		CREATE UNIQUE INDEX IF NOT EXISTS appointments_slot_key
		ON appointments (doctor_id, date, time);`

	createAppointmentsDateIndex = `
		CREATE INDEX IF NOT EXISTS appointments_date_idx
		ON appointments (date);`

	createAppointmentsDoctorIndex = `
		CREATE INDEX IF NOT EXISTS appointments_doctor_idx
		ON appointments (doctor_id);`
)
