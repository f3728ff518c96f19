package api

import (
	"time"

	"github.com/google/uuid"

	"medisched/internal/domain"
)

type AddSlotsRequest struct {
	Times []string `json:"times"`
}

type AddSlotsResponse struct {
	Added int `json:"added"`
}

type BookAppointmentRequest struct {
	PatientID string `json:"patient_id"`
	DoctorID  string `json:"doctor_id"`
	Time      string `json:"time"`
	Type      string `json:"type"`
}

type SetStatusRequest struct {
	Status string `json:"status"`
}

type RescheduleRequest struct {
	Time string `json:"time"`
}

type SlotResponse struct {
	DoctorID  string    `json:"doctor_id"`
	StartTime time.Time `json:"start_time"`
	Available bool      `json:"available"`
}

type AppointmentResponse struct {
	ID          uuid.UUID `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	ScheduledAt time.Time `json:"scheduled_at"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
}

type StatisticsResponse struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByDoctor map[string]int `json:"by_doctor"`
	Today    int            `json:"today"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toSlotResponse(s domain.Slot) SlotResponse {
	return SlotResponse{DoctorID: s.DoctorID, StartTime: s.StartTime, Available: s.Available}
}

func toSlotResponses(slots []domain.Slot) []SlotResponse {
	out := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, toSlotResponse(s))
	}
	return out
}

func toAppointmentResponse(a domain.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientID:   a.PatientID,
		DoctorID:    a.DoctorID,
		ScheduledAt: a.ScheduledAt,
		Type:        a.Type,
		Status:      string(a.Status),
	}
}

func toAppointmentResponses(appts []domain.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}
