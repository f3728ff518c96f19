package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"medisched/internal/domain"
)

// SchedulingEngine is the in-process boundary consumed by the HTTP layer.
type SchedulingEngine interface {
	AddSlots(ctx context.Context, doctorID string, times []time.Time) error
	AvailableSlots(doctorID string) []domain.Slot
	Book(ctx context.Context, patientID, doctorID string, at time.Time, apptType string) (domain.Appointment, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, to domain.Status) error
	Reschedule(ctx context.Context, id uuid.UUID, newTime time.Time) error

	Get(id uuid.UUID) (domain.Appointment, bool)
	ListAll() []domain.Appointment
	ByDoctor(doctorID string) []domain.Appointment
	ByPatient(patientID string) []domain.Appointment
	ByStatus(status domain.Status) []domain.Appointment
	ByDate(day time.Time) []domain.Appointment
	ByDoctorAndStatus(doctorID string, status domain.Status) []domain.Appointment
	UpcomingForDoctor(doctorID string) []domain.Appointment
	ReschedulableAppointments(patientID string) []domain.Appointment
	AvailableSlotsForReschedule(id uuid.UUID) []domain.Slot
	Statistics() domain.Statistics
}

// NewRouter wires the scheduling endpoints used by the doctor, patient and
// admin frontends.
func NewRouter(engine SchedulingEngine, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "api"))

	h := &handlers{engine: engine, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.health)

	r.Route("/doctors/{doctorID}", func(r chi.Router) {
		r.Get("/slots", h.listAvailableSlots)
		r.Post("/slots", h.addSlots)
		r.Get("/appointments", h.listDoctorAppointments)
		r.Get("/appointments/upcoming", h.listUpcomingForDoctor)
	})

	r.Route("/patients/{patientID}", func(r chi.Router) {
		r.Get("/appointments", h.listPatientAppointments)
		r.Get("/appointments/reschedulable", h.listReschedulable)
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Post("/", h.bookAppointment)
		r.Get("/", h.listAppointments)
		r.Get("/{id}", h.getAppointment)
		r.Post("/{id}/cancel", h.cancelAppointment)
		r.Post("/{id}/status", h.setStatus)
		r.Post("/{id}/reschedule", h.reschedule)
		r.Get("/{id}/reschedule-options", h.rescheduleOptions)
	})

	r.Get("/stats", h.statistics)

	return r
}
