package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusRequested, StatusConfirmed, StatusCancelled, StatusCompleted}

// transitions is the closed set of permitted status moves. Anything not
// listed here is rejected; CANCELLED and COMPLETED have no outgoing edges.
var transitions = map[Status][]Status{
	StatusRequested: {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
	StatusCancelled: {},
	StatusCompleted: {},
}

func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToUpper(strings.TrimSpace(s))) {
	case StatusRequested:
		return StatusRequested, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCancelled:
		return StatusCancelled, nil
	case StatusCompleted:
		return StatusCompleted, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransition reports whether the state machine permits moving from -> to.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Appointment links a patient and a doctor to a specific instant, with a
// free-form type classification and a lifecycle status. Appointments are
// never deleted; CANCELLED and COMPLETED records are kept for history.
type Appointment struct {
	ID          uuid.UUID
	PatientID   string
	DoctorID    string
	ScheduledAt time.Time
	Type        string
	Status      Status
}

// Slot is a single bookable (doctor, instant) pair. Identity is the pair
// itself; there is no separate slot ID. Duplicate records for the same pair
// may exist and callers must tolerate them.
type Slot struct {
	DoctorID  string
	StartTime time.Time
	Available bool
}

// Matches reports whether the slot is the given (doctor, instant) pair.
func (s Slot) Matches(doctorID string, at time.Time) bool {
	return s.DoctorID == doctorID && s.StartTime.Equal(at)
}

// Statistics is a point-in-time aggregate over the full appointment set.
type Statistics struct {
	Total    int
	ByStatus map[Status]int
	ByDoctor map[string]int
	Today    int
}
