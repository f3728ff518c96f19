package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"medisched/internal/domain"
)

type slotRow struct {
	bun.BaseModel `bun:"table:appointment_slots"`

	Position  int64     `bun:"position,autoincrement"`
	DoctorID  string    `bun:"doctor_id,notnull"`
	StartTime time.Time `bun:"start_time,notnull"`
	Available bool      `bun:"available,notnull"`
}

type appointmentRow struct {
	bun.BaseModel `bun:"table:appointments"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	PatientID   string    `bun:"patient_id,notnull"`
	DoctorID    string    `bun:"doctor_id,notnull"`
	ScheduledAt time.Time `bun:"scheduled_at,notnull"`
	Type        string    `bun:"type,notnull"`
	Status      string    `bun:"status,notnull"`
}

// SlotRecords stores the slot snapshot in the appointment_slots table. The
// position column preserves insertion order across reloads, which matters
// because availability flips target the first matching record.
type SlotRecords struct {
	db *bun.DB
}

func NewSlotRecords(db *bun.DB) *SlotRecords {
	return &SlotRecords{db: db}
}

func (r *SlotRecords) LoadAll(ctx context.Context) ([]domain.Slot, error) {
	var rows []slotRow
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("position ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Slot, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Slot{
			DoctorID:  row.DoctorID,
			StartTime: row.StartTime,
			Available: row.Available,
		})
	}
	return out, nil
}

func (r *SlotRecords) SaveAll(ctx context.Context, slots []domain.Slot) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*slotRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		rows := make([]slotRow, 0, len(slots))
		for _, s := range slots {
			rows = append(rows, slotRow{
				DoctorID:  s.DoctorID,
				StartTime: s.StartTime,
				Available: s.Available,
			})
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
}

// AppointmentRecords stores the appointment snapshot in the appointments
// table.
type AppointmentRecords struct {
	db *bun.DB
}

func NewAppointmentRecords(db *bun.DB) *AppointmentRecords {
	return &AppointmentRecords{db: db}
}

func (r *AppointmentRecords) LoadAll(ctx context.Context) ([]domain.Appointment, error) {
	var rows []appointmentRow
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("scheduled_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Appointment, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.Appointment{
			ID:          row.ID,
			PatientID:   row.PatientID,
			DoctorID:    row.DoctorID,
			ScheduledAt: row.ScheduledAt,
			Type:        row.Type,
			Status:      domain.Status(row.Status),
		})
	}
	return out, nil
}

func (r *AppointmentRecords) SaveAll(ctx context.Context, appts []domain.Appointment) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*appointmentRow)(nil)).Where("TRUE").Exec(ctx); err != nil {
			return err
		}
		if len(appts) == 0 {
			return nil
		}
		rows := make([]appointmentRow, 0, len(appts))
		for _, a := range appts {
			rows = append(rows, appointmentRow{
				ID:          a.ID,
				PatientID:   a.PatientID,
				DoctorID:    a.DoctorID,
				ScheduledAt: a.ScheduledAt,
				Type:        a.Type,
				Status:      string(a.Status),
			})
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
}
