package scheduling

import (
	"time"

	"github.com/google/uuid"

	"medisched/internal/domain"
)

// Get returns the appointment with the given identifier.
func (e *Engine) Get(id uuid.UUID) (domain.Appointment, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appts.Get(id)
}

// ListAll returns every appointment ascending by scheduled time.
func (e *Engine) ListAll() []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appts.ListAll()
}

func (e *Engine) ByDoctor(doctorID string) []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appts.ListWhere(func(a domain.Appointment) bool {
		return a.DoctorID == doctorID
	})
}

func (e *Engine) ByPatient(patientID string) []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appts.ListWhere(func(a domain.Appointment) bool {
		return a.PatientID == patientID
	})
}

func (e *Engine) ByStatus(status domain.Status) []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appts.ListWhere(func(a domain.Appointment) bool {
		return a.Status == status
	})
}

// ByDate returns the appointments scheduled on the civil date of day.
func (e *Engine) ByDate(day time.Time) []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appts.ListWhere(func(a domain.Appointment) bool {
		return sameDay(a.ScheduledAt, day)
	})
}

func (e *Engine) ByDoctorAndStatus(doctorID string, status domain.Status) []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.appts.ListWhere(func(a domain.Appointment) bool {
		return a.DoctorID == doctorID && a.Status == status
	})
}

// UpcomingForDoctor returns the doctor's future non-cancelled appointments.
func (e *Engine) UpcomingForDoctor(doctorID string) []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	now := e.now()
	return e.appts.ListWhere(func(a domain.Appointment) bool {
		return a.DoctorID == doctorID && a.ScheduledAt.After(now) && a.Status != domain.StatusCancelled
	})
}

// ReschedulableAppointments returns the patient's future appointments that
// have not reached a terminal state.
func (e *Engine) ReschedulableAppointments(patientID string) []domain.Appointment {
	e.mu.RLock()
	defer e.mu.RUnlock()
	now := e.now()
	return e.appts.ListWhere(func(a domain.Appointment) bool {
		return a.PatientID == patientID && !a.Status.Terminal() && a.ScheduledAt.After(now)
	})
}

// IsReschedulable reports whether the appointment exists, is not terminal,
// and is still in the future.
func (e *Engine) IsReschedulable(id uuid.UUID) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	appt, ok := e.appts.Get(id)
	return ok && !appt.Status.Terminal() && appt.ScheduledAt.After(e.now())
}

// AvailableSlotsForReschedule returns the new-slot choices for an
// appointment: same doctor, available, in the future, and never the
// appointment's current instant. Unknown appointments yield an empty slice.
func (e *Engine) AvailableSlotsForReschedule(id uuid.UUID) []domain.Slot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	appt, ok := e.appts.Get(id)
	if !ok {
		return []domain.Slot{}
	}
	candidates := e.slots.ListAvailable(appt.DoctorID, e.now())
	out := make([]domain.Slot, 0, len(candidates))
	for _, slot := range candidates {
		if slot.StartTime.Equal(appt.ScheduledAt) {
			continue
		}
		out = append(out, slot)
	}
	return out
}

// ValidateReschedule reports whether moving the appointment to newTime would
// be accepted: the appointment is reschedulable, the instant is in the
// future, and the doctor has an available slot there.
func (e *Engine) ValidateReschedule(id uuid.UUID, newTime time.Time) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	appt, ok := e.appts.Get(id)
	if !ok {
		return false
	}
	now := e.now()
	if appt.Status.Terminal() || !appt.ScheduledAt.After(now) || !newTime.After(now) {
		return false
	}
	_, ok = e.slots.FindAvailable(appt.DoctorID, newTime)
	return ok
}

// Statistics scans the full appointment set; counts are always consistent
// with the store at call time since nothing incremental is maintained.
func (e *Engine) Statistics() domain.Statistics {
	e.mu.RLock()
	defer e.mu.RUnlock()

	stats := domain.Statistics{
		ByStatus: make(map[domain.Status]int, len(domain.Statuses)),
		ByDoctor: make(map[string]int),
	}
	for _, status := range domain.Statuses {
		stats.ByStatus[status] = 0
	}

	today := e.now()
	for _, appt := range e.appts.ListAll() {
		stats.Total++
		stats.ByStatus[appt.Status]++
		stats.ByDoctor[appt.DoctorID]++
		if sameDay(appt.ScheduledAt, today) {
			stats.Today++
		}
	}
	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
