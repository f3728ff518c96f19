package csvfile

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"medisched/internal/domain"
)

var appointmentsHeader = []string{"AppointmentId", "PatientId", "DoctorId", "DateTime", "Type", "Status"}

type AppointmentRecords struct {
	path string
}

// NewAppointmentRecords stores the appointment snapshot at
// <dataDir>/appointments.csv.
func NewAppointmentRecords(dataDir string) *AppointmentRecords {
	return &AppointmentRecords{path: filepath.Join(dataDir, appointmentsFile)}
}

func (r *AppointmentRecords) LoadAll(_ context.Context) ([]domain.Appointment, error) {
	rows, err := readRows(r.path, 6)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Appointment, 0, len(rows))
	for _, row := range rows {
		id, err := uuid.Parse(row[0])
		if err != nil {
			continue
		}
		at, err := parseTime(row[3])
		if err != nil {
			continue
		}
		status, err := domain.ParseStatus(row[5])
		if err != nil {
			continue
		}
		out = append(out, domain.Appointment{
			ID:          id,
			PatientID:   row[1],
			DoctorID:    row[2],
			ScheduledAt: at,
			Type:        row[4],
			Status:      status,
		})
	}
	return out, nil
}

func (r *AppointmentRecords) SaveAll(_ context.Context, appts []domain.Appointment) error {
	rows := make([][]string, 0, len(appts))
	for _, a := range appts {
		rows = append(rows, []string{
			a.ID.String(),
			a.PatientID,
			a.DoctorID,
			a.ScheduledAt.Format(timeLayout),
			a.Type,
			string(a.Status),
		})
	}
	return writeRows(r.path, appointmentsHeader, rows)
}
