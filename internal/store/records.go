package store

import (
	"context"

	"medisched/internal/domain"
)

// SlotRecords is the durable storage collaborator for slots. SaveAll must
// persist the full snapshot atomically: either every record lands or the
// previous durable state survives intact.
type SlotRecords interface {
	LoadAll(ctx context.Context) ([]domain.Slot, error)
	SaveAll(ctx context.Context, slots []domain.Slot) error
}

// AppointmentRecords is the durable storage collaborator for appointments,
// with the same all-or-nothing SaveAll contract as SlotRecords.
type AppointmentRecords interface {
	LoadAll(ctx context.Context) ([]domain.Appointment, error)
	SaveAll(ctx context.Context, appts []domain.Appointment) error
}
