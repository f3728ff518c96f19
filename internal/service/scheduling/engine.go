// Package scheduling implements the appointment lifecycle engine. It is the
// sole writer of the slot and appointment stores and the sole enforcer of
// the rule that a slot is unavailable exactly while a live appointment
// occupies it.
package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"medisched/internal/domain"
	"medisched/internal/store"
)

var (
	ErrSlotUnavailable   = errors.New("slot unavailable")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// OutcomeRecorder receives the completion signal that feeds the external
// outcome-record workflow (consultation notes, prescriptions). It is invoked
// after the COMPLETED transition has been persisted.
type OutcomeRecorder interface {
	AppointmentCompleted(ctx context.Context, appt domain.Appointment)
}

// OutcomeFunc adapts a function to the OutcomeRecorder interface.
type OutcomeFunc func(ctx context.Context, appt domain.Appointment)

func (f OutcomeFunc) AppointmentCompleted(ctx context.Context, appt domain.Appointment) {
	f(ctx, appt)
}

// Engine coordinates the slot and appointment stores. Mutating operations
// take the write lock around their whole read-check-write-persist sequence;
// queries share the read lock and return snapshots the caller owns.
type Engine struct {
	mu      sync.RWMutex
	slots   *store.SlotStore
	appts   *store.AppointmentStore
	log     *slog.Logger
	outcome OutcomeRecorder
	now     func() time.Time
}

func NewEngine(slots *store.SlotStore, appts *store.AppointmentStore, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "scheduling.engine"))
	e := &Engine{
		slots: slots,
		appts: appts,
		log:   log,
		now:   time.Now,
	}
	e.outcome = OutcomeFunc(func(_ context.Context, appt domain.Appointment) {
		log.Info("appointment completed, outcome record due",
			slog.String("appointment_id", appt.ID.String()),
			slog.String("patient_id", appt.PatientID),
			slog.String("doctor_id", appt.DoctorID),
		)
	})
	return e
}

// SetOutcomeRecorder replaces the completion signal target. Call before the
// engine is shared between goroutines.
func (e *Engine) SetOutcomeRecorder(r OutcomeRecorder) {
	if r != nil {
		e.outcome = r
	}
}

// AddSlots registers new availability for a doctor, one slot per time,
// available by default. Duplicate instants are not rejected.
func (e *Engine) AddSlots(ctx context.Context, doctorID string, times []time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.slots.Add(ctx, doctorID, times); err != nil {
		e.log.Error("add slots failed", slog.Any("err", err), slog.String("doctor_id", doctorID))
		return err
	}
	e.log.Info("slots added", slog.String("doctor_id", doctorID), slog.Int("count", len(times)))
	return nil
}

// AvailableSlots returns the doctor's bookable future slots, ascending.
func (e *Engine) AvailableSlots(doctorID string) []domain.Slot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.slots.ListAvailable(doctorID, e.now())
}

// Book reserves an exact available slot at (doctorID, at) and creates the
// appointment in REQUESTED. Booking never creates new slots.
func (e *Engine) Book(ctx context.Context, patientID, doctorID string, at time.Time, apptType string) (domain.Appointment, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.slots.FindAvailable(doctorID, at); !ok {
		return domain.Appointment{}, fmt.Errorf("%w: doctor %s at %s", ErrSlotUnavailable, doctorID, at.Format(time.RFC3339))
	}
	// Duplicate slot records can leave a second available record for an
	// occupied instant; the occupancy check keeps one live appointment per
	// (doctor, instant) regardless.
	if e.occupied(doctorID, at) {
		return domain.Appointment{}, fmt.Errorf("%w: doctor %s at %s", ErrSlotUnavailable, doctorID, at.Format(time.RFC3339))
	}

	id, err := uuid.NewV7()
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("generate appointment id: %w", err)
	}
	appt := domain.Appointment{
		ID:          id,
		PatientID:   patientID,
		DoctorID:    doctorID,
		ScheduledAt: at,
		Type:        apptType,
		Status:      domain.StatusRequested,
	}

	if err := e.slots.MarkUnavailable(ctx, doctorID, at); err != nil {
		e.log.Error("book failed persisting slot", slog.Any("err", err), slog.String("doctor_id", doctorID))
		return domain.Appointment{}, err
	}
	if err := e.appts.Insert(ctx, appt); err != nil {
		e.log.Error("book failed persisting appointment", slog.Any("err", err), slog.String("appointment_id", id.String()))
		e.compensate(ctx, "reopen slot after failed booking", func() error {
			return e.slots.MarkAvailable(ctx, doctorID, at)
		})
		return domain.Appointment{}, err
	}

	e.log.Info("appointment booked",
		slog.String("appointment_id", id.String()),
		slog.String("patient_id", patientID),
		slog.String("doctor_id", doctorID),
		slog.Time("scheduled_at", at),
	)
	return appt, nil
}

// Cancel moves a REQUESTED or CONFIRMED appointment to CANCELLED and frees
// its slot. Cancelling an already terminal appointment is rejected.
func (e *Engine) Cancel(ctx context.Context, id uuid.UUID) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setStatusLocked(ctx, id, domain.StatusCancelled)
}

// SetStatus applies a status transition per the lifecycle state machine.
// Moving to CANCELLED frees the appointment's slot; no other transition
// touches slot availability.
func (e *Engine) SetStatus(ctx context.Context, id uuid.UUID, to domain.Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.setStatusLocked(ctx, id, to)
}

func (e *Engine) setStatusLocked(ctx context.Context, id uuid.UUID, to domain.Status) error {
	appt, ok := e.appts.Get(id)
	if !ok {
		return fmt.Errorf("%w: appointment %s", store.ErrNotFound, id)
	}
	if !to.Valid() || !domain.CanTransition(appt.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, appt.Status, to)
	}

	from := appt.Status
	appt.Status = to
	if err := e.appts.Update(ctx, appt); err != nil {
		e.log.Error("status update failed", slog.Any("err", err), slog.String("appointment_id", id.String()))
		return err
	}

	if to == domain.StatusCancelled {
		if err := e.slots.MarkAvailable(ctx, appt.DoctorID, appt.ScheduledAt); err != nil {
			e.log.Error("cancel failed freeing slot", slog.Any("err", err), slog.String("appointment_id", id.String()))
			appt.Status = from
			e.compensate(ctx, "revert status after failed slot release", func() error {
				return e.appts.Update(ctx, appt)
			})
			return err
		}
	}

	e.log.Info("appointment status changed",
		slog.String("appointment_id", id.String()),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)

	if to == domain.StatusCompleted && e.outcome != nil {
		e.outcome.AppointmentCompleted(ctx, appt)
	}
	return nil
}

// Reschedule moves a live appointment to a new available slot with the same
// doctor. The old slot is freed, the new one occupied, and a CONFIRMED
// appointment drops back to REQUESTED for re-confirmation.
func (e *Engine) Reschedule(ctx context.Context, id uuid.UUID, newTime time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	appt, ok := e.appts.Get(id)
	if !ok {
		return fmt.Errorf("%w: appointment %s", store.ErrNotFound, id)
	}
	if appt.Status.Terminal() {
		return fmt.Errorf("%w: reschedule from %s", ErrInvalidTransition, appt.Status)
	}
	if _, ok := e.slots.FindAvailable(appt.DoctorID, newTime); !ok {
		return fmt.Errorf("%w: doctor %s at %s", ErrSlotUnavailable, appt.DoctorID, newTime.Format(time.RFC3339))
	}
	if e.occupied(appt.DoctorID, newTime) {
		return fmt.Errorf("%w: doctor %s at %s", ErrSlotUnavailable, appt.DoctorID, newTime.Format(time.RFC3339))
	}

	oldTime := appt.ScheduledAt
	prev := appt
	appt.ScheduledAt = newTime
	if appt.Status == domain.StatusConfirmed {
		appt.Status = domain.StatusRequested
	}

	if err := e.slots.MarkUnavailable(ctx, appt.DoctorID, newTime); err != nil {
		e.log.Error("reschedule failed occupying new slot", slog.Any("err", err), slog.String("appointment_id", id.String()))
		return err
	}
	if err := e.appts.Update(ctx, appt); err != nil {
		e.log.Error("reschedule failed persisting appointment", slog.Any("err", err), slog.String("appointment_id", id.String()))
		e.compensate(ctx, "reopen new slot after failed reschedule", func() error {
			return e.slots.MarkAvailable(ctx, appt.DoctorID, newTime)
		})
		return err
	}
	if err := e.slots.MarkAvailable(ctx, appt.DoctorID, oldTime); err != nil {
		e.log.Error("reschedule failed freeing old slot", slog.Any("err", err), slog.String("appointment_id", id.String()))
		e.compensate(ctx, "revert appointment after failed slot release", func() error {
			return e.appts.Update(ctx, prev)
		})
		e.compensate(ctx, "reopen new slot after failed reschedule", func() error {
			return e.slots.MarkAvailable(ctx, appt.DoctorID, newTime)
		})
		return err
	}

	e.log.Info("appointment rescheduled",
		slog.String("appointment_id", id.String()),
		slog.Time("from", oldTime),
		slog.Time("to", newTime),
		slog.String("status", string(appt.Status)),
	)
	return nil
}

// occupied reports whether a non-cancelled appointment already references
// the (doctor, instant) pair. Callers hold the lock.
func (e *Engine) occupied(doctorID string, at time.Time) bool {
	live := e.appts.ListWhere(func(a domain.Appointment) bool {
		return a.DoctorID == doctorID && a.ScheduledAt.Equal(at) && a.Status != domain.StatusCancelled
	})
	return len(live) > 0
}

// compensate runs a rollback step after a failed write-through. A failing
// compensation leaves the stores diverged and is logged for the operator.
func (e *Engine) compensate(_ context.Context, what string, fn func() error) {
	if err := fn(); err != nil {
		e.log.Error("compensation failed, stores may be inconsistent",
			slog.String("step", what),
			slog.Any("err", err),
		)
	}
}
