package booking

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/Samandar90/Kamilovs-CRM/pkg/database"
	"github.com/Samandar90/Kamilovs-CRM/pkg/logger"
	"github.com/Samandar90/Kamilovs-CRM/pkg/monitoring"
	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// Repository is the storage contract for bookings and the catalog.
type Repository interface {
	CreateAppointment(ctx context.Context, apt *types.Appointment) error
	GetAppointmentByID(ctx context.Context, id string) (*types.Appointment, error)
	ListAppointments(ctx context.Context) ([]*types.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, updates *AppointmentUpdates) error
	DeleteAppointment(ctx context.Context, id string) error

	CreateDoctor(ctx context.Context, d *types.Doctor) error
	ListDoctors(ctx context.Context) ([]*types.Doctor, error)
	UpdateDoctor(ctx context.Context, id string, updates map[string]interface{}) error
	DeactivateDoctor(ctx context.Context, id string) error

	CreateService(ctx context.Context, s *types.Service) error
	ListServices(ctx context.Context) ([]*types.Service, error)
	UpdateService(ctx context.Context, id string, updates map[string]interface{}) error
	DeactivateService(ctx context.Context, id string) error
}

// AppointmentUpdates carries the fields of a partial appointment update. Nil
// means "leave unchanged".
type AppointmentUpdates struct {
	Date          *string
	Time          *string
	DoctorID      *string
	ServiceID     *string
	PatientName   *string
	Phone         *string
	Price         *int64
	StatusVisit   *types.VisitStatus
	StatusPayment *types.PaymentStatus
	PaymentMethod *types.PaymentMethod
	Note          *string
}

type postgresRepository struct {
	db     *database.DB
	logger *logger.Logger
}

// NewRepository creates a PostgreSQL-backed repository.
func NewRepository(db *database.DB, log *logger.Logger) Repository {
	return &postgresRepository{
		db:     db,
		logger: log,
	}
}

const appointmentColumns = `id, date, time, doctor_id, service_id, patient_name, phone, price, status_visit, status_payment, payment_method, note, created_at, updated_at`

// isUniqueViolation reports whether err is the unique-index violation raised
// when two writers race for the same slot.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// CreateAppointment inserts a new appointment. The slot is re-checked inside
// the transaction with a locking read, and the unique index on
// (doctor_id, date, time) remains the authoritative guard: two concurrent
// inserts for the same slot end with exactly one row and one conflict error.
func (r *postgresRepository) CreateAppointment(ctx context.Context, apt *types.Appointment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.NewInternalError(types.ErrCodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM appointments WHERE doctor_id = $1 AND date = $2 AND time = $3 FOR UPDATE`,
		apt.DoctorID, apt.Date, apt.Time,
	).Scan(&existingID)
	if err == nil {
		monitoring.BookingConflictsTotal.Inc()
		return types.NewConflictError(types.ErrCodeSlotTaken, "slot is already booked", map[string]interface{}{
			"doctorId": apt.DoctorID,
			"date":     apt.Date,
			"time":     apt.Time,
		})
	}
	if err != sql.ErrNoRows {
		return types.NewInternalError(types.ErrCodeInternal, "failed to check slot", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO appointments (
			id, date, time, doctor_id, service_id, patient_name, phone, price,
			status_visit, status_payment, payment_method, note, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		apt.ID, apt.Date, apt.Time, apt.DoctorID, apt.ServiceID, apt.PatientName, apt.Phone, apt.Price,
		string(apt.StatusVisit), string(apt.StatusPayment), string(apt.PaymentMethod), apt.Note,
		apt.CreatedAt, apt.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			monitoring.BookingConflictsTotal.Inc()
			return types.NewConflictError(types.ErrCodeSlotTaken, "slot is already booked", map[string]interface{}{
				"doctorId": apt.DoctorID,
				"date":     apt.Date,
				"time":     apt.Time,
			})
		}
		r.logger.WithFields(map[string]interface{}{"appointment_id": apt.ID, "error": err}).Error("Failed to create appointment")
		return types.NewInternalError(types.ErrCodeInternal, "failed to create appointment", err)
	}

	if err := tx.Commit(); err != nil {
		return types.NewInternalError(types.ErrCodeInternal, "failed to commit appointment", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"appointment_id": apt.ID,
		"doctor_id":      apt.DoctorID,
		"date":           apt.Date,
		"time":           apt.Time,
	}).Info("Created appointment")
	return nil
}

// GetAppointmentByID retrieves a single appointment.
func (r *postgresRepository) GetAppointmentByID(ctx context.Context, id string) (*types.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments WHERE id = $1`, appointmentColumns)

	apt, err := scanAppointment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("appointment not found: %s", id))
		}
		r.logger.WithFields(map[string]interface{}{"appointment_id": id, "error": err}).Error("Failed to get appointment")
		return nil, types.NewInternalError(types.ErrCodeInternal, "failed to get appointment", err)
	}
	return apt, nil
}

// ListAppointments returns every appointment ordered by date then time.
func (r *postgresRepository) ListAppointments(ctx context.Context) ([]*types.Appointment, error) {
	query := fmt.Sprintf(`SELECT %s FROM appointments ORDER BY date ASC, time ASC`, appointmentColumns)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to list appointments")
		return nil, types.NewInternalError(types.ErrCodeInternal, "failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*types.Appointment
	for rows.Next() {
		apt, err := scanAppointment(rows)
		if err != nil {
			return nil, types.NewInternalError(types.ErrCodeInternal, "failed to scan appointment", err)
		}
		appointments = append(appointments, apt)
	}
	if err = rows.Err(); err != nil {
		return nil, types.NewInternalError(types.ErrCodeInternal, "error iterating appointments", err)
	}
	return appointments, nil
}

// UpdateAppointment applies a partial update. Absent fields keep their stored
// values. A slot change that collides with another appointment surfaces as a
// conflict error from the unique index.
func (r *postgresRepository) UpdateAppointment(ctx context.Context, id string, updates *AppointmentUpdates) error {
	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	add := func(column string, value interface{}) {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", column, argIndex))
		args = append(args, value)
		argIndex++
	}

	if updates.Date != nil {
		add("date", *updates.Date)
	}
	if updates.Time != nil {
		add("time", *updates.Time)
	}
	if updates.DoctorID != nil {
		add("doctor_id", *updates.DoctorID)
	}
	if updates.ServiceID != nil {
		add("service_id", *updates.ServiceID)
	}
	if updates.PatientName != nil {
		add("patient_name", *updates.PatientName)
	}
	if updates.Phone != nil {
		add("phone", *updates.Phone)
	}
	if updates.Price != nil {
		add("price", *updates.Price)
	}
	if updates.StatusVisit != nil {
		add("status_visit", string(*updates.StatusVisit))
	}
	if updates.StatusPayment != nil {
		add("status_payment", string(*updates.StatusPayment))
	}
	if updates.PaymentMethod != nil {
		add("payment_method", string(*updates.PaymentMethod))
	}
	if updates.Note != nil {
		add("note", *updates.Note)
	}

	if len(setParts) == 0 {
		return types.NewValidationError(types.ErrCodeInvalidInput, "no updates provided", nil)
	}

	add("updated_at", time.Now().UTC())

	query := fmt.Sprintf("UPDATE appointments SET %s WHERE id = $%d", strings.Join(setParts, ", "), argIndex)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			monitoring.BookingConflictsTotal.Inc()
			return types.NewConflictError(types.ErrCodeSlotTaken, "slot is already booked", nil)
		}
		r.logger.WithFields(map[string]interface{}{"appointment_id": id, "error": err}).Error("Failed to update appointment")
		return types.NewInternalError(types.ErrCodeInternal, "failed to update appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return types.NewInternalError(types.ErrCodeInternal, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("appointment not found: %s", id))
	}

	r.logger.WithFields(map[string]interface{}{"appointment_id": id}).Info("Updated appointment")
	return nil
}

// DeleteAppointment removes an appointment permanently. Deleted bookings drop
// out of every report and patient history.
func (r *postgresRepository) DeleteAppointment(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"appointment_id": id, "error": err}).Error("Failed to delete appointment")
		return types.NewInternalError(types.ErrCodeInternal, "failed to delete appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return types.NewInternalError(types.ErrCodeInternal, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("appointment not found: %s", id))
	}

	r.logger.WithFields(map[string]interface{}{"appointment_id": id}).Info("Deleted appointment")
	return nil
}

// CreateDoctor inserts a roster entry.
func (r *postgresRepository) CreateDoctor(ctx context.Context, d *types.Doctor) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO doctors (id, name, speciality, percent, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.Name, d.Speciality, d.Percent, d.Active, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"doctor_id": d.ID, "error": err}).Error("Failed to create doctor")
		return types.NewInternalError(types.ErrCodeInternal, "failed to create doctor", err)
	}

	r.logger.WithFields(map[string]interface{}{"doctor_id": d.ID}).Info("Created doctor")
	return nil
}

// ListDoctors returns the full roster, active and inactive.
func (r *postgresRepository) ListDoctors(ctx context.Context) ([]*types.Doctor, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, speciality, percent, active, created_at, updated_at
		FROM doctors ORDER BY name ASC`)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to list doctors")
		return nil, types.NewInternalError(types.ErrCodeInternal, "failed to list doctors", err)
	}
	defer rows.Close()

	var doctors []*types.Doctor
	for rows.Next() {
		d := &types.Doctor{}
		if err := rows.Scan(&d.ID, &d.Name, &d.Speciality, &d.Percent, &d.Active, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, types.NewInternalError(types.ErrCodeInternal, "failed to scan doctor", err)
		}
		doctors = append(doctors, d)
	}
	if err = rows.Err(); err != nil {
		return nil, types.NewInternalError(types.ErrCodeInternal, "error iterating doctors", err)
	}
	return doctors, nil
}

// UpdateDoctor applies a partial update built by the service layer. The map
// keys are trusted column names, never client input.
func (r *postgresRepository) UpdateDoctor(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.updateByID(ctx, "doctors", "doctor", id, updates)
}

// DeactivateDoctor soft-deletes a doctor. Past bookings keep pointing at the
// row, so it never gets removed.
func (r *postgresRepository) DeactivateDoctor(ctx context.Context, id string) error {
	return r.updateByID(ctx, "doctors", "doctor", id, map[string]interface{}{"active": false})
}

// CreateService inserts a catalog entry.
func (r *postgresRepository) CreateService(ctx context.Context, s *types.Service) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO services (id, name, category, price, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.Name, s.Category, s.Price, s.Active, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"service_id": s.ID, "error": err}).Error("Failed to create service")
		return types.NewInternalError(types.ErrCodeInternal, "failed to create service", err)
	}

	r.logger.WithFields(map[string]interface{}{"service_id": s.ID}).Info("Created service")
	return nil
}

// ListServices returns the full catalog.
func (r *postgresRepository) ListServices(ctx context.Context) ([]*types.Service, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, category, price, active, created_at, updated_at
		FROM services ORDER BY name ASC`)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to list services")
		return nil, types.NewInternalError(types.ErrCodeInternal, "failed to list services", err)
	}
	defer rows.Close()

	var services []*types.Service
	for rows.Next() {
		s := &types.Service{}
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Price, &s.Active, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, types.NewInternalError(types.ErrCodeInternal, "failed to scan service", err)
		}
		services = append(services, s)
	}
	if err = rows.Err(); err != nil {
		return nil, types.NewInternalError(types.ErrCodeInternal, "error iterating services", err)
	}
	return services, nil
}

// UpdateService applies a partial update built by the service layer.
func (r *postgresRepository) UpdateService(ctx context.Context, id string, updates map[string]interface{}) error {
	return r.updateByID(ctx, "services", "service", id, updates)
}

// DeactivateService soft-deletes a catalog entry.
func (r *postgresRepository) DeactivateService(ctx context.Context, id string) error {
	return r.updateByID(ctx, "services", "service", id, map[string]interface{}{"active": false})
}

func (r *postgresRepository) updateByID(ctx context.Context, table, kind, id string, updates map[string]interface{}) error {
	setParts := []string{}
	args := []interface{}{}
	argIndex := 1

	for field, value := range updates {
		setParts = append(setParts, fmt.Sprintf("%s = $%d", field, argIndex))
		args = append(args, value)
		argIndex++
	}

	if len(setParts) == 0 {
		return types.NewValidationError(types.ErrCodeInvalidInput, "no updates provided", nil)
	}

	setParts = append(setParts, fmt.Sprintf("updated_at = $%d", argIndex))
	args = append(args, time.Now().UTC())
	argIndex++

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(setParts, ", "), argIndex)
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithFields(map[string]interface{}{"id": id, "error": err}).Error("Failed to update " + kind)
		return types.NewInternalError(types.ErrCodeInternal, "failed to update "+kind, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return types.NewInternalError(types.ErrCodeInternal, "failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return types.NewNotFoundError(types.ErrCodeNotFound, fmt.Sprintf("%s not found: %s", kind, id))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanAppointment reads one appointment row. Status columns written before
// strict validation may hold unknown values; they coerce to the documented
// defaults here, at the storage boundary, and nowhere else.
func scanAppointment(row rowScanner) (*types.Appointment, error) {
	apt := &types.Appointment{}
	var visit, payment, method string

	err := row.Scan(
		&apt.ID, &apt.Date, &apt.Time, &apt.DoctorID, &apt.ServiceID,
		&apt.PatientName, &apt.Phone, &apt.Price,
		&visit, &payment, &method, &apt.Note,
		&apt.CreatedAt, &apt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	apt.StatusVisit = types.CoerceVisitStatus(visit)
	apt.StatusPayment = types.CoercePaymentStatus(payment)
	apt.PaymentMethod = types.CoercePaymentMethod(method)
	return apt, nil
}
