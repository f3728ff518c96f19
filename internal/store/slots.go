package store

import (
	"context"
	"sort"
	"time"

	"medisched/internal/domain"
)

// SlotStore tracks per-doctor bookable instants and their availability flag.
// The working set lives in memory and every mutation is written through to
// the records collaborator before it becomes visible; a failed write-through
// leaves the working set untouched.
//
// SlotStore is not safe for unsynchronized concurrent use. The scheduling
// engine is the sole writer and serializes access.
type SlotStore struct {
	records SlotRecords
	slots   []domain.Slot
}

// NewSlotStore loads the durable snapshot and returns a ready store.
func NewSlotStore(ctx context.Context, records SlotRecords) (*SlotStore, error) {
	slots, err := records.LoadAll(ctx)
	if err != nil {
		return nil, persistenceError("load slots", err)
	}
	return &SlotStore{records: records, slots: slots}, nil
}

// ListAvailable returns the doctor's available slots strictly after the given
// instant, ascending by start time. The result is a copy the caller owns.
func (s *SlotStore) ListAvailable(doctorID string, after time.Time) []domain.Slot {
	out := make([]domain.Slot, 0)
	for _, slot := range s.slots {
		if slot.DoctorID == doctorID && slot.Available && slot.StartTime.After(after) {
			out = append(out, slot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out
}

// Find returns the first slot matching the (doctor, instant) pair.
func (s *SlotStore) Find(doctorID string, at time.Time) (domain.Slot, bool) {
	for _, slot := range s.slots {
		if slot.Matches(doctorID, at) {
			return slot, true
		}
	}
	return domain.Slot{}, false
}

// FindAvailable returns the first available slot matching the pair. With
// duplicate records this may differ from Find.
func (s *SlotStore) FindAvailable(doctorID string, at time.Time) (domain.Slot, bool) {
	for _, slot := range s.slots {
		if slot.Matches(doctorID, at) && slot.Available {
			return slot, true
		}
	}
	return domain.Slot{}, false
}

// Add appends one slot per time, available by default. It does not
// deduplicate against existing records: submitting the same instant twice
// yields two independent slot records, and readers tolerate that.
func (s *SlotStore) Add(ctx context.Context, doctorID string, times []time.Time) error {
	if len(times) == 0 {
		return nil
	}
	next := make([]domain.Slot, len(s.slots), len(s.slots)+len(times))
	copy(next, s.slots)
	for _, t := range times {
		next = append(next, domain.Slot{DoctorID: doctorID, StartTime: t, Available: true})
	}
	return s.commit(ctx, "add slots", next)
}

// MarkAvailable flips the first matching unavailable slot to available. A
// missing slot, or one already carrying the requested flag, is a successful
// no-op that writes nothing.
func (s *SlotStore) MarkAvailable(ctx context.Context, doctorID string, at time.Time) error {
	return s.setAvailable(ctx, doctorID, at, true)
}

// MarkUnavailable flips the first matching available slot to unavailable,
// with the same no-op semantics as MarkAvailable.
func (s *SlotStore) MarkUnavailable(ctx context.Context, doctorID string, at time.Time) error {
	return s.setAvailable(ctx, doctorID, at, false)
}

// setAvailable targets the first matching record whose flag differs, so that
// duplicate records for the same pair are consumed one at a time rather than
// the first record absorbing every flip.
func (s *SlotStore) setAvailable(ctx context.Context, doctorID string, at time.Time, available bool) error {
	idx := -1
	for i, slot := range s.slots {
		if slot.Matches(doctorID, at) && slot.Available != available {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	next := make([]domain.Slot, len(s.slots))
	copy(next, s.slots)
	next[idx].Available = available
	return s.commit(ctx, "update slot availability", next)
}

// Snapshot returns a copy of every slot record, in insertion order.
func (s *SlotStore) Snapshot() []domain.Slot {
	out := make([]domain.Slot, len(s.slots))
	copy(out, s.slots)
	return out
}

func (s *SlotStore) commit(ctx context.Context, op string, next []domain.Slot) error {
	if err := s.records.SaveAll(ctx, next); err != nil {
		return persistenceError(op, err)
	}
	s.slots = next
	return nil
}
