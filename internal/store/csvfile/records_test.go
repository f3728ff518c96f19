package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"medisched/internal/domain"
)

func TestSlotRecordsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := NewSlotRecords(dir)
	ctx := context.Background()

	// Missing file means an empty snapshot, not an error.
	got, err := r.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll on missing file error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %v", got)
	}

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	slots := []domain.Slot{
		{DoctorID: "D1", StartTime: base, Available: true},
		{DoctorID: "D1", StartTime: base.Add(time.Hour), Available: false},
		{DoctorID: "D1", StartTime: base, Available: true},
	}
	if err := r.SaveAll(ctx, slots); err != nil {
		t.Fatalf("SaveAll error: %v", err)
	}

	got, err = r.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(got) != len(slots) {
		t.Fatalf("len = %d, want %d (duplicates must survive)", len(got), len(slots))
	}
	for i := range slots {
		if got[i].DoctorID != slots[i].DoctorID ||
			!got[i].StartTime.Equal(slots[i].StartTime) ||
			got[i].Available != slots[i].Available {
			t.Fatalf("slot %d = %+v, want %+v", i, got[i], slots[i])
		}
	}
}

func TestAppointmentRecordsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := NewAppointmentRecords(dir)
	ctx := context.Background()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("uuid.NewV7 error: %v", err)
	}
	appts := []domain.Appointment{{
		ID:          id,
		PatientID:   "P1",
		DoctorID:    "D1",
		ScheduledAt: time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local),
		Type:        "Consultation",
		Status:      domain.StatusConfirmed,
	}}
	if err := r.SaveAll(ctx, appts); err != nil {
		t.Fatalf("SaveAll error: %v", err)
	}

	got, err := r.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != id || got[0].Status != domain.StatusConfirmed ||
		!got[0].ScheduledAt.Equal(appts[0].ScheduledAt) || got[0].Type != "Consultation" {
		t.Fatalf("appointment = %+v", got[0])
	}
}

func TestLoadAllSkipsMalformedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appointments.csv")
	content := "AppointmentId,PatientId,DoctorId,DateTime,Type,Status\n" +
		"not-a-uuid,P1,D1,2025-03-01T09:00:00,Consultation,REQUESTED\n" +
		"short,row\n" +
		uuid.NewString() + ",P2,D1,2025-03-01T10:00:00,X-ray,CONFIRMED\n" +
		uuid.NewString() + ",P3,D1,bad-time,X-ray,CONFIRMED\n" +
		uuid.NewString() + ",P4,D1,2025-03-01T11:00:00,X-ray,NOSTATUS\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	got, err := NewAppointmentRecords(dir).LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(got) != 1 || got[0].PatientID != "P2" {
		t.Fatalf("got %v, want only the P2 row", got)
	}
}

func TestSaveAllReplacesPreviousSnapshot(t *testing.T) {
	dir := t.TempDir()
	r := NewSlotRecords(dir)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)
	if err := r.SaveAll(ctx, []domain.Slot{{DoctorID: "D1", StartTime: base, Available: true}}); err != nil {
		t.Fatalf("SaveAll error: %v", err)
	}
	if err := r.SaveAll(ctx, nil); err != nil {
		t.Fatalf("SaveAll empty error: %v", err)
	}

	got, err := r.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("snapshot not replaced: %v", got)
	}
}
