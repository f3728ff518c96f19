package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"medisched/internal/domain"
	"medisched/internal/store/memory"
)

func newSlotStore(t *testing.T, initial []domain.Slot) (*SlotStore, *memory.SlotRecords) {
	t.Helper()
	records := memory.NewSlotRecords(initial)
	s, err := NewSlotStore(context.Background(), records)
	if err != nil {
		t.Fatalf("NewSlotStore error: %v", err)
	}
	return s, records
}

func TestSlotStoreListAvailable_FiltersAndSorts(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, _ := newSlotStore(t, []domain.Slot{
		{DoctorID: "D1", StartTime: base.Add(2 * time.Hour), Available: true},
		{DoctorID: "D1", StartTime: base, Available: true},
		{DoctorID: "D1", StartTime: base.Add(time.Hour), Available: false},
		{DoctorID: "D2", StartTime: base, Available: true},
		{DoctorID: "D1", StartTime: base.Add(-time.Hour), Available: true},
	})

	got := s.ListAvailable("D1", base.Add(-30*time.Minute))
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(got), got)
	}
	if !got[0].StartTime.Equal(base) || !got[1].StartTime.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestSlotStoreListAvailable_StrictlyAfter(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, _ := newSlotStore(t, []domain.Slot{
		{DoctorID: "D1", StartTime: base, Available: true},
	})

	if got := s.ListAvailable("D1", base); len(got) != 0 {
		t.Fatalf("slot at the boundary instant should be excluded, got %v", got)
	}
}

func TestSlotStoreAdd_DoesNotDeduplicate(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, records := newSlotStore(t, nil)

	if err := s.Add(context.Background(), "D1", []time.Time{base, base}); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if got := s.Snapshot(); len(got) != 2 {
		t.Fatalf("expected 2 independent records for the same instant, got %d", len(got))
	}
	if records.Saves != 1 {
		t.Fatalf("saves = %d, want 1", records.Saves)
	}
}

func TestSlotStoreAdd_EmptyIsNoop(t *testing.T) {
	s, records := newSlotStore(t, nil)
	if err := s.Add(context.Background(), "D1", nil); err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if records.Saves != 0 {
		t.Fatalf("empty add should not write through")
	}
}

func TestSlotStoreMarkAvailable_Idempotent(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, records := newSlotStore(t, []domain.Slot{
		{DoctorID: "D1", StartTime: base, Available: true},
	})
	ctx := context.Background()

	// Already available: no-op, still succeeds.
	if err := s.MarkAvailable(ctx, "D1", base); err != nil {
		t.Fatalf("MarkAvailable error: %v", err)
	}
	// No matching slot: no-op, still succeeds.
	if err := s.MarkUnavailable(ctx, "D9", base); err != nil {
		t.Fatalf("MarkUnavailable on missing slot error: %v", err)
	}
	if records.Saves != 0 {
		t.Fatalf("no-op marks should not write through, saves = %d", records.Saves)
	}

	if err := s.MarkUnavailable(ctx, "D1", base); err != nil {
		t.Fatalf("MarkUnavailable error: %v", err)
	}
	slot, ok := s.Find("D1", base)
	if !ok || slot.Available {
		t.Fatalf("slot = %+v, ok = %v; want unavailable", slot, ok)
	}
}

func TestSlotStoreMarkUnavailable_FlipsOnlyFirstDuplicate(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, _ := newSlotStore(t, []domain.Slot{
		{DoctorID: "D1", StartTime: base, Available: true},
		{DoctorID: "D1", StartTime: base, Available: true},
	})

	if err := s.MarkUnavailable(context.Background(), "D1", base); err != nil {
		t.Fatalf("MarkUnavailable error: %v", err)
	}
	snap := s.Snapshot()
	if snap[0].Available || !snap[1].Available {
		t.Fatalf("expected only the first duplicate flipped, got %v", snap)
	}
}

func TestSlotStoreWriteThroughFailure_RollsBack(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	s, records := newSlotStore(t, []domain.Slot{
		{DoctorID: "D1", StartTime: base, Available: true},
	})

	records.FailNextSave = errors.New("disk full")
	err := s.MarkUnavailable(context.Background(), "D1", base)
	if err == nil {
		t.Fatalf("expected error")
	}
	var pErr *PersistenceError
	if !errors.As(err, &pErr) {
		t.Fatalf("error type = %T, want *PersistenceError", err)
	}

	slot, ok := s.Find("D1", base)
	if !ok || !slot.Available {
		t.Fatalf("in-memory state mutated despite failed save: %+v", slot)
	}

	// The store recovers once the record store does.
	if err := s.MarkUnavailable(context.Background(), "D1", base); err != nil {
		t.Fatalf("MarkUnavailable after recovery error: %v", err)
	}
}
