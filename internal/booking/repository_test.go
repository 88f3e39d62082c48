package booking

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Samandar90/Kamilovs-CRM/pkg/database"
	"github.com/Samandar90/Kamilovs-CRM/pkg/logger"
	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

func setupTestRepository(t *testing.T) (*postgresRepository, sqlmock.Sqlmock, func()) {
	sqlDB, mockSQL, err := sqlmock.New()
	require.NoError(t, err)

	repo := &postgresRepository{
		db:     &database.DB{DB: sqlDB},
		logger: logger.New("debug"),
	}

	cleanup := func() {
		sqlDB.Close()
	}

	return repo, mockSQL, cleanup
}

func testAppointment() *types.Appointment {
	now := time.Now().UTC()
	return &types.Appointment{
		ID:            "apt-1",
		Date:          "2025-03-01",
		Time:          "09:00",
		DoctorID:      "doc-1",
		ServiceID:     "svc-1",
		PatientName:   "Anna Ivanova",
		Phone:         "+998901234567",
		Price:         150000,
		StatusVisit:   types.VisitScheduled,
		StatusPayment: types.PaymentUnpaid,
		PaymentMethod: types.MethodNone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestRepository_CreateAppointment(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	mockSQL.ExpectBegin()
	mockSQL.ExpectQuery("SELECT id FROM appointments").
		WithArgs("doc-1", "2025-03-01", "09:00").
		WillReturnError(sql.ErrNoRows)
	mockSQL.ExpectExec("INSERT INTO appointments").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mockSQL.ExpectCommit()

	err := repo.CreateAppointment(context.Background(), testAppointment())

	require.NoError(t, err)
	assert.NoError(t, mockSQL.ExpectationsWereMet())
}

func TestRepository_CreateAppointment_SlotTaken(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	mockSQL.ExpectBegin()
	mockSQL.ExpectQuery("SELECT id FROM appointments").
		WithArgs("doc-1", "2025-03-01", "09:00").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("existing-apt"))
	mockSQL.ExpectRollback()

	err := repo.CreateAppointment(context.Background(), testAppointment())

	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeConflict, types.TypeOf(err))
}

func TestRepository_CreateAppointment_RaceLostToUniqueIndex(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	mockSQL.ExpectBegin()
	mockSQL.ExpectQuery("SELECT id FROM appointments").
		WillReturnError(sql.ErrNoRows)
	mockSQL.ExpectExec("INSERT INTO appointments").
		WillReturnError(&pq.Error{Code: "23505"})
	mockSQL.ExpectRollback()

	err := repo.CreateAppointment(context.Background(), testAppointment())

	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeConflict, types.TypeOf(err))
}

func appointmentRows(apt *types.Appointment, visit, payment, method string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "date", "time", "doctor_id", "service_id", "patient_name", "phone", "price",
		"status_visit", "status_payment", "payment_method", "note", "created_at", "updated_at",
	}).AddRow(
		apt.ID, apt.Date, apt.Time, apt.DoctorID, apt.ServiceID, apt.PatientName, apt.Phone, apt.Price,
		visit, payment, method, apt.Note, apt.CreatedAt, apt.UpdatedAt,
	)
}

func TestRepository_GetAppointmentByID(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	expected := testAppointment()
	mockSQL.ExpectQuery("SELECT (.+) FROM appointments WHERE id").
		WithArgs("apt-1").
		WillReturnRows(appointmentRows(expected, "scheduled", "unpaid", "none"))

	apt, err := repo.GetAppointmentByID(context.Background(), "apt-1")

	require.NoError(t, err)
	assert.Equal(t, expected.ID, apt.ID)
	assert.Equal(t, types.VisitScheduled, apt.StatusVisit)
}

func TestRepository_GetAppointmentByID_NotFound(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	mockSQL.ExpectQuery("SELECT (.+) FROM appointments WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetAppointmentByID(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeNotFound, types.TypeOf(err))
}

// Rows written before strict validation may carry unknown status strings;
// reads map them onto the defaults.
func TestRepository_GetAppointmentByID_CoercesUnknownStatuses(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	expected := testAppointment()
	mockSQL.ExpectQuery("SELECT (.+) FROM appointments WHERE id").
		WithArgs("apt-1").
		WillReturnRows(appointmentRows(expected, "cancelled", "refunded", "crypto"))

	apt, err := repo.GetAppointmentByID(context.Background(), "apt-1")

	require.NoError(t, err)
	assert.Equal(t, types.VisitScheduled, apt.StatusVisit)
	assert.Equal(t, types.PaymentUnpaid, apt.StatusPayment)
	assert.Equal(t, types.MethodNone, apt.PaymentMethod)
}

func TestRepository_UpdateAppointment(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	visit := types.VisitDone
	mockSQL.ExpectExec("UPDATE appointments SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateAppointment(context.Background(), "apt-1", &AppointmentUpdates{StatusVisit: &visit})

	require.NoError(t, err)
	assert.NoError(t, mockSQL.ExpectationsWereMet())
}

func TestRepository_UpdateAppointment_NotFound(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	visit := types.VisitDone
	mockSQL.ExpectExec("UPDATE appointments SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAppointment(context.Background(), "missing", &AppointmentUpdates{StatusVisit: &visit})

	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeNotFound, types.TypeOf(err))
}

func TestRepository_UpdateAppointment_SlotCollision(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	newTime := "10:00"
	mockSQL.ExpectExec("UPDATE appointments SET").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.UpdateAppointment(context.Background(), "apt-1", &AppointmentUpdates{Time: &newTime})

	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeConflict, types.TypeOf(err))
}

func TestRepository_UpdateAppointment_NoFields(t *testing.T) {
	repo, _, cleanup := setupTestRepository(t)
	defer cleanup()

	err := repo.UpdateAppointment(context.Background(), "apt-1", &AppointmentUpdates{})

	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeValidation, types.TypeOf(err))
}

func TestRepository_DeleteAppointment(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	mockSQL.ExpectExec("DELETE FROM appointments").
		WithArgs("apt-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteAppointment(context.Background(), "apt-1"))
}

func TestRepository_DeleteAppointment_NotFound(t *testing.T) {
	repo, mockSQL, cleanup := setupTestRepository(t)
	defer cleanup()

	mockSQL.ExpectExec("DELETE FROM appointments").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteAppointment(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, types.ErrorTypeNotFound, types.TypeOf(err))
}
