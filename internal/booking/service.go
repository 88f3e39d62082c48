package booking

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Samandar90/Kamilovs-CRM/internal/patients"
	"github.com/Samandar90/Kamilovs-CRM/pkg/config"
	"github.com/Samandar90/Kamilovs-CRM/pkg/database"
	"github.com/Samandar90/Kamilovs-CRM/pkg/logger"
	"github.com/Samandar90/Kamilovs-CRM/pkg/monitoring"
	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

var (
	dateLabelRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timeLabelRe = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Service is the clinic application service: bookings, catalog, roster and
// the HTTP surface over them.
type Service struct {
	config     *config.Config
	logger     *logger.Logger
	repository Repository
	db         *database.DB
	server     *http.Server
	publisher  Publisher
	archive    patients.ArchiveStore
}

// New wires the service together: database, schema, repository, event
// publisher and the archived-patients store. Kafka and Redis are optional;
// the service degrades to a no-op publisher and an in-memory archive set
// rather than refusing to start.
func New(cfg *config.Config, log *logger.Logger) (*Service, error) {
	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.CreateSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	repository := NewRepository(db, log)

	var publisher Publisher
	if cfg.Kafka.Broker != "" {
		publisher, err = NewKafkaPublisher(cfg.Kafka)
		if err != nil {
			log.WithFields(map[string]interface{}{"error": err}).Warn("Kafka unavailable, appointment events disabled")
			publisher = NewNoopPublisher()
		}
	} else {
		publisher = NewNoopPublisher()
	}

	archive, err := patients.NewRedisArchiveStore(cfg.Redis)
	if err != nil {
		log.WithFields(map[string]interface{}{"error": err}).Warn("Redis unavailable, archive state will not survive restarts")
		archive = patients.NewMemoryArchiveStore()
	}

	return &Service{
		config:     cfg,
		logger:     log,
		repository: repository,
		db:         db,
		publisher:  publisher,
		archive:    archive,
	}, nil
}

// NewWithDependencies builds a service around injected dependencies.
func NewWithDependencies(cfg *config.Config, log *logger.Logger, repo Repository, pub Publisher, archive patients.ArchiveStore) *Service {
	return &Service{
		config:     cfg,
		logger:     log,
		repository: repo,
		publisher:  pub,
		archive:    archive,
	}
}

// CreateAppointment validates a booking request and stores it. The slot
// conflict check is enforced atomically by the repository; a stale client
// view of the calendar never produces a double booking.
func (s *Service) CreateAppointment(ctx context.Context, payload *types.AppointmentPayload) (*types.Appointment, error) {
	payload.Normalize()

	apt := &types.Appointment{
		StatusVisit:   types.VisitScheduled,
		StatusPayment: types.PaymentUnpaid,
		PaymentMethod: types.MethodNone,
	}

	if payload.Date == nil || !dateLabelRe.MatchString(*payload.Date) {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "date must be a YYYY-MM-DD label", nil)
	}
	apt.Date = *payload.Date

	if payload.Time == nil || !timeLabelRe.MatchString(*payload.Time) {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "time must be a HH:MM label", nil)
	}
	apt.Time = *payload.Time

	if payload.DoctorID == nil || payload.DoctorID.String() == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "doctorId is required", nil)
	}
	apt.DoctorID = payload.DoctorID.String()

	if payload.PatientName == nil || strings.TrimSpace(*payload.PatientName) == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "patientName is required", nil)
	}
	apt.PatientName = patients.NormalizeName(*payload.PatientName)

	if payload.ServiceID != nil {
		apt.ServiceID = payload.ServiceID.String()
	}
	if payload.Phone != nil {
		apt.Phone = patients.NormalizePhone(*payload.Phone)
	}
	if payload.Price != nil {
		if *payload.Price < 0 {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "price must not be negative", nil)
		}
		apt.Price = *payload.Price
	}
	if payload.Note != nil {
		apt.Note = *payload.Note
	}

	if payload.StatusVisit != nil {
		v, err := types.ParseVisitStatus(*payload.StatusVisit)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, err.Error(), nil)
		}
		apt.StatusVisit = v
	}
	if payload.StatusPayment != nil {
		p, err := types.ParsePaymentStatus(*payload.StatusPayment)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, err.Error(), nil)
		}
		apt.StatusPayment = p
	}
	if payload.PaymentMethod != nil {
		m, err := types.ParsePaymentMethod(*payload.PaymentMethod)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, err.Error(), nil)
		}
		apt.PaymentMethod = m
	}

	apt.ID = uuid.New().String()
	now := time.Now().UTC()
	apt.CreatedAt = now
	apt.UpdatedAt = now

	if err := s.repository.CreateAppointment(ctx, apt); err != nil {
		return nil, err
	}

	s.publish(ctx, EventAppointmentCreated, apt)
	return apt, nil
}

// GetAppointment retrieves one appointment.
func (s *Service) GetAppointment(ctx context.Context, id string) (*types.Appointment, error) {
	return s.repository.GetAppointmentByID(ctx, id)
}

// ListAppointments returns every appointment. Range and search filtering
// happen in memory on top of this list so every view agrees on the data.
func (s *Service) ListAppointments(ctx context.Context) ([]*types.Appointment, error) {
	return s.repository.ListAppointments(ctx)
}

// UpdateAppointment applies a partial update. Absent fields keep their stored
// values; present fields are validated exactly like on create.
func (s *Service) UpdateAppointment(ctx context.Context, id string, payload *types.AppointmentPayload) (*types.Appointment, error) {
	payload.Normalize()

	updates := &AppointmentUpdates{}

	if payload.Date != nil {
		if !dateLabelRe.MatchString(*payload.Date) {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "date must be a YYYY-MM-DD label", nil)
		}
		updates.Date = payload.Date
	}
	if payload.Time != nil {
		if !timeLabelRe.MatchString(*payload.Time) {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "time must be a HH:MM label", nil)
		}
		updates.Time = payload.Time
	}
	if payload.DoctorID != nil {
		if payload.DoctorID.String() == "" {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "doctorId must not be empty", nil)
		}
		doctorID := payload.DoctorID.String()
		updates.DoctorID = &doctorID
	}
	if payload.ServiceID != nil {
		serviceID := payload.ServiceID.String()
		updates.ServiceID = &serviceID
	}
	if payload.PatientName != nil {
		name := patients.NormalizeName(*payload.PatientName)
		if name == "" {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "patientName must not be empty", nil)
		}
		updates.PatientName = &name
	}
	if payload.Phone != nil {
		phone := patients.NormalizePhone(*payload.Phone)
		updates.Phone = &phone
	}
	if payload.Price != nil {
		if *payload.Price < 0 {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "price must not be negative", nil)
		}
		updates.Price = payload.Price
	}
	if payload.Note != nil {
		updates.Note = payload.Note
	}
	if payload.StatusVisit != nil {
		v, err := types.ParseVisitStatus(*payload.StatusVisit)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, err.Error(), nil)
		}
		updates.StatusVisit = &v
	}
	if payload.StatusPayment != nil {
		p, err := types.ParsePaymentStatus(*payload.StatusPayment)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, err.Error(), nil)
		}
		updates.StatusPayment = &p
	}
	if payload.PaymentMethod != nil {
		m, err := types.ParsePaymentMethod(*payload.PaymentMethod)
		if err != nil {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, err.Error(), nil)
		}
		updates.PaymentMethod = &m
	}

	// Reschedules get a friendly conflict check against the current calendar
	// before the write; the unique index remains the authoritative guard if a
	// concurrent booking slips in between.
	if updates.Date != nil || updates.Time != nil || updates.DoctorID != nil {
		existing, err := s.repository.GetAppointmentByID(ctx, id)
		if err != nil {
			return nil, err
		}

		slot := existing.Slot()
		if updates.Date != nil {
			slot.Date = *updates.Date
		}
		if updates.Time != nil {
			slot.Time = *updates.Time
		}
		if updates.DoctorID != nil {
			slot.DoctorID = *updates.DoctorID
		}

		all, err := s.repository.ListAppointments(ctx)
		if err != nil {
			return nil, err
		}
		if HasSlotConflict(all, slot, id) {
			monitoring.BookingConflictsTotal.Inc()
			return nil, types.NewConflictError(types.ErrCodeSlotTaken, "slot is already booked", map[string]interface{}{
				"doctorId": slot.DoctorID,
				"date":     slot.Date,
				"time":     slot.Time,
			})
		}
	}

	if err := s.repository.UpdateAppointment(ctx, id, updates); err != nil {
		return nil, err
	}

	apt, err := s.repository.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, EventAppointmentUpdated, apt)
	return apt, nil
}

// DeleteAppointment removes an appointment permanently.
func (s *Service) DeleteAppointment(ctx context.Context, id string) error {
	apt, err := s.repository.GetAppointmentByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repository.DeleteAppointment(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, EventAppointmentDeleted, apt)
	return nil
}

// ToggleVisitStatus advances the visit cycle by one step:
// scheduled -> done -> no_show -> scheduled.
func (s *Service) ToggleVisitStatus(ctx context.Context, id string) (*types.Appointment, error) {
	apt, err := s.repository.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := apt.StatusVisit.Next()
	if err := s.repository.UpdateAppointment(ctx, id, &AppointmentUpdates{StatusVisit: &next}); err != nil {
		return nil, err
	}
	apt.StatusVisit = next

	s.publish(ctx, EventAppointmentUpdated, apt)
	return apt, nil
}

// TogglePaymentStatus advances the payment cycle by one step:
// unpaid -> partial -> paid -> unpaid.
func (s *Service) TogglePaymentStatus(ctx context.Context, id string) (*types.Appointment, error) {
	apt, err := s.repository.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := apt.StatusPayment.Next()
	if err := s.repository.UpdateAppointment(ctx, id, &AppointmentUpdates{StatusPayment: &next}); err != nil {
		return nil, err
	}
	apt.StatusPayment = next

	s.publish(ctx, EventAppointmentUpdated, apt)
	return apt, nil
}

// CreateDoctor adds a roster entry.
func (s *Service) CreateDoctor(ctx context.Context, payload *types.DoctorPayload) (*types.Doctor, error) {
	payload.Normalize()

	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "name is required", nil)
	}

	d := &types.Doctor{
		ID:     uuid.New().String(),
		Name:   strings.TrimSpace(*payload.Name),
		Active: true,
	}
	if payload.Speciality != nil {
		d.Speciality = strings.TrimSpace(*payload.Speciality)
	}
	if payload.Percent != nil {
		percent, err := validatePercent(*payload.Percent)
		if err != nil {
			return nil, err
		}
		d.Percent = percent
	}
	if payload.Active != nil {
		d.Active = *payload.Active
	}

	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	if err := s.repository.CreateDoctor(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// ListDoctors returns the full roster.
func (s *Service) ListDoctors(ctx context.Context) ([]*types.Doctor, error) {
	return s.repository.ListDoctors(ctx)
}

// UpdateDoctor applies a partial roster update.
func (s *Service) UpdateDoctor(ctx context.Context, id string, payload *types.DoctorPayload) error {
	payload.Normalize()

	updates := map[string]interface{}{}
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return types.NewValidationError(types.ErrCodeInvalidInput, "name must not be empty", nil)
		}
		updates["name"] = name
	}
	if payload.Speciality != nil {
		updates["speciality"] = strings.TrimSpace(*payload.Speciality)
	}
	if payload.Percent != nil {
		percent, err := validatePercent(*payload.Percent)
		if err != nil {
			return err
		}
		updates["percent"] = percent
	}
	if payload.Active != nil {
		updates["active"] = *payload.Active
	}

	return s.repository.UpdateDoctor(ctx, id, updates)
}

// DeactivateDoctor hides a doctor from new bookings without touching history.
func (s *Service) DeactivateDoctor(ctx context.Context, id string) error {
	return s.repository.DeactivateDoctor(ctx, id)
}

// CreateService adds a catalog entry.
func (s *Service) CreateService(ctx context.Context, payload *types.ServicePayload) (*types.Service, error) {
	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		return nil, types.NewValidationError(types.ErrCodeInvalidInput, "name is required", nil)
	}

	svc := &types.Service{
		ID:     uuid.New().String(),
		Name:   strings.TrimSpace(*payload.Name),
		Active: true,
	}
	if payload.Category != nil {
		svc.Category = strings.TrimSpace(*payload.Category)
	}
	if payload.Price != nil {
		if *payload.Price < 0 {
			return nil, types.NewValidationError(types.ErrCodeInvalidInput, "price must not be negative", nil)
		}
		svc.Price = *payload.Price
	}
	if payload.Active != nil {
		svc.Active = *payload.Active
	}

	now := time.Now().UTC()
	svc.CreatedAt = now
	svc.UpdatedAt = now

	if err := s.repository.CreateService(ctx, svc); err != nil {
		return nil, err
	}
	return svc, nil
}

// ListServices returns the full catalog.
func (s *Service) ListServices(ctx context.Context) ([]*types.Service, error) {
	return s.repository.ListServices(ctx)
}

// UpdateService applies a partial catalog update.
func (s *Service) UpdateService(ctx context.Context, id string, payload *types.ServicePayload) error {
	updates := map[string]interface{}{}
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			return types.NewValidationError(types.ErrCodeInvalidInput, "name must not be empty", nil)
		}
		updates["name"] = name
	}
	if payload.Category != nil {
		updates["category"] = strings.TrimSpace(*payload.Category)
	}
	if payload.Price != nil {
		if *payload.Price < 0 {
			return types.NewValidationError(types.ErrCodeInvalidInput, "price must not be negative", nil)
		}
		updates["price"] = *payload.Price
	}
	if payload.Active != nil {
		updates["active"] = *payload.Active
	}

	return s.repository.UpdateService(ctx, id, updates)
}

// DeactivateService hides a catalog entry from new bookings.
func (s *Service) DeactivateService(ctx context.Context, id string) error {
	return s.repository.DeactivateService(ctx, id)
}

// Archive marks a patient key as archived.
func (s *Service) ArchivePatient(ctx context.Context, key string) error {
	if key == "" {
		return types.NewValidationError(types.ErrCodeInvalidInput, "patient key is required", nil)
	}
	return s.archive.Archive(ctx, key)
}

// RestorePatient clears a patient key's archived mark.
func (s *Service) RestorePatient(ctx context.Context, key string) error {
	if key == "" {
		return types.NewValidationError(types.ErrCodeInvalidInput, "patient key is required", nil)
	}
	return s.archive.Restore(ctx, key)
}

// ArchivedPatients returns the set of archived patient keys.
func (s *Service) ArchivedPatients(ctx context.Context) (map[string]bool, error) {
	return s.archive.Archived(ctx)
}

// DeletePatientHistory removes every appointment belonging to a patient key.
// This is the roster's hard delete: the patient disappears because their
// bookings do.
func (s *Service) DeletePatientHistory(ctx context.Context, key string) (int, error) {
	if key == "" {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput, "patient key is required", nil)
	}

	all, err := s.repository.ListAppointments(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, a := range all {
		if patients.DeriveKey(a.PatientName, a.Phone) != key {
			continue
		}
		if err := s.repository.DeleteAppointment(ctx, a.ID); err != nil {
			return deleted, err
		}
		s.publish(ctx, EventAppointmentDeleted, a)
		deleted++
	}

	if err := s.archive.Restore(ctx, key); err != nil {
		s.logger.WithFields(map[string]interface{}{"error": err}).Warn("Failed to clear archive mark for deleted patient")
	}
	return deleted, nil
}

func validatePercent(percent float64) (int, error) {
	if percent < 0 || percent > 100 {
		return 0, types.NewValidationError(types.ErrCodeInvalidInput, "percent must be between 0 and 100", nil)
	}
	return int(math.Round(percent)), nil
}

// publish sends a lifecycle event without letting a broker failure bleed into
// the booking response.
func (s *Service) publish(ctx context.Context, eventType string, apt *types.Appointment) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	event := AppointmentEvent{Type: eventType, Appointment: apt, At: time.Now().UTC()}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"event_type":     eventType,
			"appointment_id": apt.ID,
			"error":          err,
		}).Warn("Failed to publish appointment event")
	}
}

// Start runs the HTTP server until Stop is called.
func (s *Service) Start() error {
	router := s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.config.Server.IdleTimeout) * time.Second,
	}

	s.logger.WithFields(map[string]interface{}{"addr": s.server.Addr}).Info("Starting clinic server")
	return s.server.ListenAndServe()
}

// Stop shuts the server down gracefully and releases external connections.
func (s *Service) Stop(ctx context.Context) error {
	s.logger.Info("Stopping clinic server")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	if err := s.publisher.Close(); err != nil {
		s.logger.WithFields(map[string]interface{}{"error": err}).Warn("Failed to close event publisher")
	}
	if err := s.archive.Close(); err != nil {
		s.logger.WithFields(map[string]interface{}{"error": err}).Warn("Failed to close archive store")
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
