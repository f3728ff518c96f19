// Package csvfile persists slot and appointment snapshots as CSV files,
// the layout the clinic's data directory has always used. Saves go through
// a temp file and rename so a crash mid-write cannot truncate a snapshot.
package csvfile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const timeLayout = "2006-01-02T15:04:05"

const (
	slotsFile        = "appointment_slots.csv"
	appointmentsFile = "appointments.csv"
)

func readRows(path string, wantFields int) ([][]string, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		if header {
			header = false
			continue
		}
		// Short or malformed rows are skipped rather than failing the
		// whole load, matching how the data files have been handled.
		if len(record) < wantFields {
			continue
		}
		rows = append(rows, record)
	}
}

func writeRows(path string, header []string, rows [][]string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		tmp.Close()
		return err
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func parseTime(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, raw, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", raw, err)
	}
	return t, nil
}
