package booking

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Samandar90/Kamilovs-CRM/internal/analytics"
	"github.com/Samandar90/Kamilovs-CRM/internal/auth"
	"github.com/Samandar90/Kamilovs-CRM/internal/patients"
	"github.com/Samandar90/Kamilovs-CRM/pkg/monitoring"
	"github.com/Samandar90/Kamilovs-CRM/pkg/types"
)

// setupRoutes configures the full HTTP surface. Everything under /api except
// the login endpoint requires a valid token.
func (s *Service) setupRoutes() *mux.Router {
	router := mux.NewRouter()
	authn := auth.New(s.config.Auth, s.logger)

	router.Use(monitoring.Middleware)
	router.Use(s.loggingMiddleware)
	router.Use(authn.Middleware)

	router.HandleFunc("/health", s.healthCheckHandler).Methods("GET")
	router.Handle("/metrics", monitoring.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/login", s.loginHandler(authn)).Methods("POST")

	api.HandleFunc("/appointments", s.createAppointmentHandler).Methods("POST")
	api.HandleFunc("/appointments", s.listAppointmentsHandler).Methods("GET")
	api.HandleFunc("/appointments/export", s.exportAppointmentsHandler).Methods("GET")
	api.HandleFunc("/appointments/{id}", s.getAppointmentHandler).Methods("GET")
	api.HandleFunc("/appointments/{id}", s.updateAppointmentHandler).Methods("PUT")
	api.HandleFunc("/appointments/{id}", s.deleteAppointmentHandler).Methods("DELETE")
	api.HandleFunc("/appointments/{id}/visit-status", s.toggleVisitStatusHandler).Methods("POST")
	api.HandleFunc("/appointments/{id}/payment-status", s.togglePaymentStatusHandler).Methods("POST")

	api.HandleFunc("/doctors", s.createDoctorHandler).Methods("POST")
	api.HandleFunc("/doctors", s.listDoctorsHandler).Methods("GET")
	api.HandleFunc("/doctors/{id}", s.updateDoctorHandler).Methods("PUT")
	api.HandleFunc("/doctors/{id}", s.deactivateDoctorHandler).Methods("DELETE")

	api.HandleFunc("/services", s.createServiceHandler).Methods("POST")
	api.HandleFunc("/services", s.listServicesHandler).Methods("GET")
	api.HandleFunc("/services/{id}", s.updateServiceHandler).Methods("PUT")
	api.HandleFunc("/services/{id}", s.deactivateServiceHandler).Methods("DELETE")

	api.HandleFunc("/patients", s.listPatientsHandler).Methods("GET")
	api.HandleFunc("/patients/archive", s.archivePatientHandler).Methods("POST")
	api.HandleFunc("/patients/restore", s.restorePatientHandler).Methods("POST")
	api.HandleFunc("/patients/delete", s.deletePatientHandler).Methods("POST")

	api.HandleFunc("/dashboard", s.dashboardHandler).Methods("GET")
	api.HandleFunc("/analytics/health", s.clinicHealthHandler).Methods("GET")
	api.HandleFunc("/analytics/timeline", s.timelineHandler).Methods("GET")
	api.HandleFunc("/analytics/doctor-load", s.doctorLoadHandler).Methods("GET")
	api.HandleFunc("/reports/day", s.dayReportHandler).Methods("GET")
	api.HandleFunc("/reports/month", s.monthReportHandler).Methods("GET")
	api.HandleFunc("/reports/year", s.yearReportHandler).Methods("GET")

	s.logger.Info("Clinic server routes configured")
	return router
}

func (s *Service) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.WithFields(map[string]interface{}{
			"method":      r.Method,
			"path":        r.URL.Path,
			"duration_ms": time.Since(start).Milliseconds(),
		}).Debug("Handled request")
	})
}

func (s *Service) loginHandler(authn *auth.Authenticator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
			return
		}

		token, err := authn.Login(req.Username, req.Password)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"error": map[string]string{"code": types.ErrCodeUnauthorized, "message": "invalid credentials"},
			})
			return
		}

		s.writeJSONResponse(w, http.StatusOK, map[string]string{"token": token})
	}
}

func (s *Service) createAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	var payload types.AppointmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	apt, err := s.CreateAppointment(r.Context(), &payload)
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusCreated, apt)
}

func (s *Service) getAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	apt, err := s.GetAppointment(r.Context(), id)
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, apt)
}

// listAppointmentsHandler returns appointments, optionally filtered by date
// range, doctor and patient search, ordered by date then time.
func (s *Service) listAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	filtered := analytics.FilterByRange(all, parseRangeFilter(r))
	analytics.SortBySchedule(filtered)

	s.writeJSONResponse(w, http.StatusOK, filtered)
}

func (s *Service) updateAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload types.AppointmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	apt, err := s.UpdateAppointment(r.Context(), id, &payload)
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, apt)
}

func (s *Service) deleteAppointmentHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.DeleteAppointment(r.Context(), id); err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Appointment deleted"})
}

func (s *Service) toggleVisitStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	apt, err := s.ToggleVisitStatus(r.Context(), id)
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, apt)
}

func (s *Service) togglePaymentStatusHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	apt, err := s.TogglePaymentStatus(r.Context(), id)
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, apt)
}

// exportAppointmentsHandler streams the filtered range as a CSV download.
func (s *Service) exportAppointmentsHandler(w http.ResponseWriter, r *http.Request) {
	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}
	doctors, err := s.ListDoctors(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}
	services, err := s.ListServices(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	filtered := analytics.FilterByRange(all, parseRangeFilter(r))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=appointments-%s.csv", time.Now().Format("2006-01-02")))

	if err := analytics.WriteRangeCSV(w, filtered, doctors, services); err != nil {
		s.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to write CSV export")
	}
}

func (s *Service) createDoctorHandler(w http.ResponseWriter, r *http.Request) {
	var payload types.DoctorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	d, err := s.CreateDoctor(r.Context(), &payload)
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusCreated, d)
}

func (s *Service) listDoctorsHandler(w http.ResponseWriter, r *http.Request) {
	doctors, err := s.ListDoctors(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, doctors)
}

func (s *Service) updateDoctorHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload types.DoctorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	if err := s.UpdateDoctor(r.Context(), id, &payload); err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Doctor updated"})
}

func (s *Service) deactivateDoctorHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.DeactivateDoctor(r.Context(), id); err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Doctor deactivated"})
}

func (s *Service) createServiceHandler(w http.ResponseWriter, r *http.Request) {
	var payload types.ServicePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	svc, err := s.CreateService(r.Context(), &payload)
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusCreated, svc)
}

func (s *Service) listServicesHandler(w http.ResponseWriter, r *http.Request) {
	services, err := s.ListServices(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, services)
}

func (s *Service) updateServiceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var payload types.ServicePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	if err := s.UpdateService(r.Context(), id, &payload); err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Service updated"})
}

func (s *Service) deactivateServiceHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := s.DeactivateService(r.Context(), id); err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Service deactivated"})
}

// listPatientsHandler returns the derived patient roster. Archived patients
// are hidden unless ?archived=true.
func (s *Service) listPatientsHandler(w http.ResponseWriter, r *http.Request) {
	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	archived, err := s.ArchivedPatients(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	summaries := patients.BuildSummaries(all, archived, time.Now().Format("2006-01-02"))

	if r.URL.Query().Get("archived") != "true" {
		visible := summaries[:0]
		for _, p := range summaries {
			if !p.Archived {
				visible = append(visible, p)
			}
		}
		summaries = visible
	}

	s.writeJSONResponse(w, http.StatusOK, summaries)
}

type patientKeyRequest struct {
	Key string `json:"key"`
}

func (s *Service) archivePatientHandler(w http.ResponseWriter, r *http.Request) {
	var req patientKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	if err := s.ArchivePatient(r.Context(), req.Key); err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Patient archived"})
}

func (s *Service) restorePatientHandler(w http.ResponseWriter, r *http.Request) {
	var req patientKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	if err := s.RestorePatient(r.Context(), req.Key); err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]string{"message": "Patient restored"})
}

func (s *Service) deletePatientHandler(w http.ResponseWriter, r *http.Request) {
	var req patientKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeErrorResponse(w, types.NewValidationError(types.ErrCodeInvalidInput, "invalid request body", nil))
		return
	}

	deleted, err := s.DeletePatientHistory(r.Context(), req.Key)
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, map[string]interface{}{"message": "Patient history deleted", "deleted": deleted})
}

// dashboardHandler returns the home screen: today's counts and revenue, the
// clinic health score and the daily timeline.
func (s *Service) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	today := time.Now().Format("2006-01-02")
	todays := analytics.FilterByRange(all, analytics.RangeFilter{
		From:     today,
		To:       today,
		DoctorID: r.URL.Query().Get("doctorId"),
	})

	var done int
	for _, a := range todays {
		if a.StatusVisit == types.VisitDone {
			done++
		}
	}

	s.writeJSONResponse(w, http.StatusOK, analytics.Dashboard{
		TodayTotal:   len(todays),
		TodayDone:    done,
		TodayRevenue: analytics.SumRevenue(todays),
		Health:       analytics.ComputeHealth(all),
		Timeline:     analytics.BuildTimeline(todays),
	})
}

func (s *Service) clinicHealthHandler(w http.ResponseWriter, r *http.Request) {
	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, analytics.ComputeHealth(all))
}

// timelineHandler returns the slot grid for one day, today by default.
func (s *Service) timelineHandler(w http.ResponseWriter, r *http.Request) {
	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	todays := analytics.FilterByRange(all, analytics.RangeFilter{
		From:     date,
		To:       date,
		DoctorID: r.URL.Query().Get("doctorId"),
	})

	s.writeJSONResponse(w, http.StatusOK, analytics.BuildTimeline(todays))
}

func (s *Service) doctorLoadHandler(w http.ResponseWriter, r *http.Request) {
	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}
	doctors, err := s.ListDoctors(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	filtered := analytics.FilterByRange(all, parseRangeFilter(r))

	s.writeJSONResponse(w, http.StatusOK, analytics.BuildDoctorLoad(doctors, filtered))
}

func (s *Service) dayReportHandler(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, analytics.DailyRevenue(all, date))
}

func (s *Service) monthReportHandler(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, analytics.MonthlyRevenue(all, month))
}

func (s *Service) yearReportHandler(w http.ResponseWriter, r *http.Request) {
	year := r.URL.Query().Get("year")
	if year == "" {
		year = time.Now().Format("2006")
	}

	all, err := s.ListAppointments(r.Context())
	if err != nil {
		s.writeErrorResponse(w, err)
		return
	}

	s.writeJSONResponse(w, http.StatusOK, analytics.YearlyRevenue(all, year))
}

func (s *Service) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK

	if s.db != nil {
		if err := s.db.Health(); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
	}

	s.writeJSONResponse(w, code, map[string]string{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func parseRangeFilter(r *http.Request) analytics.RangeFilter {
	q := r.URL.Query()
	return analytics.RangeFilter{
		From:     q.Get("from"),
		To:       q.Get("to"),
		DoctorID: q.Get("doctorId"),
		Search:   q.Get("q"),
	}
}

func (s *Service) writeJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.WithFields(map[string]interface{}{"error": err}).Error("Failed to encode response")
	}
}

// writeErrorResponse maps application errors to HTTP statuses. Plain errors
// read as internal; their details stay in the log, not the response.
func (s *Service) writeErrorResponse(w http.ResponseWriter, err error) {
	ce, ok := err.(*types.ClinicError)
	if !ok {
		s.logger.WithFields(map[string]interface{}{"error": err}).Error("Unexpected error")
		ce = types.NewInternalError(types.ErrCodeInternal, "internal error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(ce.HTTPStatus())
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    ce.Code,
			"message": ce.Message,
			"details": ce.Details,
		},
	})
}
