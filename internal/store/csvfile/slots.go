package csvfile

import (
	"context"
	"path/filepath"
	"strconv"

	"medisched/internal/domain"
)

var slotsHeader = []string{"DoctorId", "StartTime", "IsAvailable"}

type SlotRecords struct {
	path string
}

// NewSlotRecords stores the slot snapshot at <dataDir>/appointment_slots.csv.
func NewSlotRecords(dataDir string) *SlotRecords {
	return &SlotRecords{path: filepath.Join(dataDir, slotsFile)}
}

func (r *SlotRecords) LoadAll(_ context.Context) ([]domain.Slot, error) {
	rows, err := readRows(r.path, 3)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Slot, 0, len(rows))
	for _, row := range rows {
		start, err := parseTime(row[1])
		if err != nil {
			continue
		}
		available, err := strconv.ParseBool(row[2])
		if err != nil {
			continue
		}
		out = append(out, domain.Slot{
			DoctorID:  row[0],
			StartTime: start,
			Available: available,
		})
	}
	return out, nil
}

func (r *SlotRecords) SaveAll(_ context.Context, slots []domain.Slot) error {
	rows := make([][]string, 0, len(slots))
	for _, s := range slots {
		rows = append(rows, []string{
			s.DoctorID,
			s.StartTime.Format(timeLayout),
			strconv.FormatBool(s.Available),
		})
	}
	return writeRows(r.path, slotsHeader, rows)
}
