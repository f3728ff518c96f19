package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"medisched/internal/domain"
	"medisched/internal/service/scheduling"
	"medisched/internal/store"
)

type handlers struct {
	engine SchedulingEngine
	log    *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) addSlots(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")

	var req AddSlotsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if len(req.Times) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_times", "at least one time is required")
		return
	}

	times := make([]time.Time, 0, len(req.Times))
	for _, raw := range req.Times {
		t, err := parseTime(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_times", err.Error())
			return
		}
		times = append(times, t)
	}

	if err := h.engine.AddSlots(r.Context(), doctorID, times); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AddSlotsResponse{Added: len(times)})
}

func (h *handlers) listAvailableSlots(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	writeJSON(w, http.StatusOK, toSlotResponses(h.engine.AvailableSlots(doctorID)))
}

func (h *handlers) bookAppointment(w http.ResponseWriter, r *http.Request) {
	var req BookAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	if req.PatientID == "" || req.DoctorID == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "patient_id and doctor_id are required")
		return
	}
	at, err := parseTime(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
		return
	}

	appt, err := h.engine.Book(r.Context(), req.PatientID, req.DoctorID, at, req.Type)
	if err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
}

func (h *handlers) getAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.appointmentID(w, r)
	if !ok {
		return
	}
	appt, found := h.engine.Get(id)
	if !found {
		writeError(w, http.StatusNotFound, "appointment_not_found", "no appointment with that id")
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *handlers) cancelAppointment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.appointmentID(w, r)
	if !ok {
		return
	}
	if err := h.engine.Cancel(r.Context(), id); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.StatusCancelled)})
}

func (h *handlers) setStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.appointmentID(w, r)
	if !ok {
		return
	}
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
		return
	}
	if err := h.engine.SetStatus(r.Context(), id, status); err != nil {
		h.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (h *handlers) reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.appointmentID(w, r)
	if !ok {
		return
	}
	var req RescheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
		return
	}
	at, err := parseTime(req.Time)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_time", err.Error())
		return
	}
	if err := h.engine.Reschedule(r.Context(), id, at); err != nil {
		h.writeEngineError(w, err)
		return
	}
	appt, _ := h.engine.Get(id)
	writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
}

func (h *handlers) rescheduleOptions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.appointmentID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSlotResponses(h.engine.AvailableSlotsForReschedule(id)))
}

func (h *handlers) listAppointments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	switch {
	case q.Get("patient_id") != "":
		writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.ByPatient(q.Get("patient_id"))))
	case q.Get("status") != "":
		status, err := domain.ParseStatus(q.Get("status"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.ByStatus(status)))
	case q.Get("date") != "":
		day, err := time.ParseInLocation("2006-01-02", q.Get("date"), time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.ByDate(day)))
	default:
		writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.ListAll()))
	}
}

func (h *handlers) listDoctorAppointments(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.ByDoctorAndStatus(doctorID, status)))
		return
	}
	writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.ByDoctor(doctorID)))
}

func (h *handlers) listUpcomingForDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID := chi.URLParam(r, "doctorID")
	writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.UpcomingForDoctor(doctorID)))
}

func (h *handlers) listPatientAppointments(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.ByPatient(patientID)))
}

func (h *handlers) listReschedulable(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	writeJSON(w, http.StatusOK, toAppointmentResponses(h.engine.ReschedulableAppointments(patientID)))
}

func (h *handlers) statistics(w http.ResponseWriter, _ *http.Request) {
	stats := h.engine.Statistics()
	resp := StatisticsResponse{
		Total:    stats.Total,
		ByStatus: make(map[string]int, len(stats.ByStatus)),
		ByDoctor: stats.ByDoctor,
		Today:    stats.Today,
	}
	for status, n := range stats.ByStatus {
		resp.ByStatus[string(status)] = n
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) appointmentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *handlers) writeEngineError(w http.ResponseWriter, err error) {
	var pErr *store.PersistenceError
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, scheduling.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", err.Error())
	case errors.Is(err, scheduling.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())
	case errors.Is(err, store.ErrDuplicateID):
		writeError(w, http.StatusConflict, "duplicate_identifier", err.Error())
	case errors.As(err, &pErr):
		h.log.Error("persistence failure", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "persistence_failure", "storage write failed, operation rolled back")
	default:
		h.log.Error("unexpected engine error", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// parseTime accepts RFC 3339 or a naive local timestamp without offset, the
// format the clinic frontends submit.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02T15:04:05", raw, time.Local)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, ErrorResponse{Error: code, Details: details})
}
