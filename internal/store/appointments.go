package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"medisched/internal/domain"
)

// AppointmentStore is the durable record of every appointment regardless of
// status. Like SlotStore it keeps an in-memory working set with write-through
// persistence and rollback on a failed save, and relies on the scheduling
// engine for serialization.
type AppointmentStore struct {
	records AppointmentRecords
	appts   []domain.Appointment
}

// NewAppointmentStore loads the durable snapshot and returns a ready store.
func NewAppointmentStore(ctx context.Context, records AppointmentRecords) (*AppointmentStore, error) {
	appts, err := records.LoadAll(ctx)
	if err != nil {
		return nil, persistenceError("load appointments", err)
	}
	return &AppointmentStore{records: records, appts: appts}, nil
}

// Insert adds a new appointment. The identifier must be unique.
func (s *AppointmentStore) Insert(ctx context.Context, appt domain.Appointment) error {
	for _, existing := range s.appts {
		if existing.ID == appt.ID {
			return fmt.Errorf("%w: appointment %s", ErrDuplicateID, appt.ID)
		}
	}
	next := make([]domain.Appointment, len(s.appts), len(s.appts)+1)
	copy(next, s.appts)
	next = append(next, appt)
	return s.commit(ctx, "insert appointment", next)
}

// Update replaces the stored record with the same identifier.
func (s *AppointmentStore) Update(ctx context.Context, appt domain.Appointment) error {
	idx := -1
	for i, existing := range s.appts {
		if existing.ID == appt.ID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: appointment %s", ErrNotFound, appt.ID)
	}
	next := make([]domain.Appointment, len(s.appts))
	copy(next, s.appts)
	next[idx] = appt
	return s.commit(ctx, "update appointment", next)
}

// Get returns the appointment with the given identifier.
func (s *AppointmentStore) Get(id uuid.UUID) (domain.Appointment, bool) {
	for _, appt := range s.appts {
		if appt.ID == id {
			return appt, true
		}
	}
	return domain.Appointment{}, false
}

// ListAll returns every appointment ascending by scheduled time.
func (s *AppointmentStore) ListAll() []domain.Appointment {
	return s.ListWhere(func(domain.Appointment) bool { return true })
}

// ListWhere returns the appointments matching the predicate, ascending by
// scheduled time. The result is a copy the caller owns.
func (s *AppointmentStore) ListWhere(keep func(domain.Appointment) bool) []domain.Appointment {
	out := make([]domain.Appointment, 0)
	for _, appt := range s.appts {
		if keep(appt) {
			out = append(out, appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out
}

// Len reports the number of stored appointments.
func (s *AppointmentStore) Len() int {
	return len(s.appts)
}

func (s *AppointmentStore) commit(ctx context.Context, op string, next []domain.Appointment) error {
	if err := s.records.SaveAll(ctx, next); err != nil {
		return persistenceError(op, err)
	}
	s.appts = next
	return nil
}
