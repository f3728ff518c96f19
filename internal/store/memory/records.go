// Package memory provides in-process record stores. They back the demo
// storage driver and the unit tests, and can inject save failures to
// exercise write-through rollback paths.
package memory

import (
	"context"

	"medisched/internal/domain"
)

type SlotRecords struct {
	slots []domain.Slot

	// FailNextSave, when set, makes the next SaveAll return that error
	// without persisting, then clears itself.
	FailNextSave error

	// Saves counts successful SaveAll calls.
	Saves int
}

func NewSlotRecords(initial []domain.Slot) *SlotRecords {
	slots := make([]domain.Slot, len(initial))
	copy(slots, initial)
	return &SlotRecords{slots: slots}
}

func (r *SlotRecords) LoadAll(_ context.Context) ([]domain.Slot, error) {
	out := make([]domain.Slot, len(r.slots))
	copy(out, r.slots)
	return out, nil
}

func (r *SlotRecords) SaveAll(_ context.Context, slots []domain.Slot) error {
	if err := r.FailNextSave; err != nil {
		r.FailNextSave = nil
		return err
	}
	next := make([]domain.Slot, len(slots))
	copy(next, slots)
	r.slots = next
	r.Saves++
	return nil
}

type AppointmentRecords struct {
	appts []domain.Appointment

	FailNextSave error
	Saves        int
}

func NewAppointmentRecords(initial []domain.Appointment) *AppointmentRecords {
	appts := make([]domain.Appointment, len(initial))
	copy(appts, initial)
	return &AppointmentRecords{appts: appts}
}

func (r *AppointmentRecords) LoadAll(_ context.Context) ([]domain.Appointment, error) {
	out := make([]domain.Appointment, len(r.appts))
	copy(out, r.appts)
	return out, nil
}

func (r *AppointmentRecords) SaveAll(_ context.Context, appts []domain.Appointment) error {
	if err := r.FailNextSave; err != nil {
		r.FailNextSave = nil
		return err
	}
	next := make([]domain.Appointment, len(appts))
	copy(next, appts)
	r.appts = next
	r.Saves++
	return nil
}
