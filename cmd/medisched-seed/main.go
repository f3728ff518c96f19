// Command medisched-seed fills the configured storage with demo doctors,
// availability and appointments, driving everything through the scheduling
// engine so the seeded data respects the same invariants as live traffic.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"medisched/internal/config"
	"medisched/internal/domain"
	"medisched/internal/service/scheduling"
	"medisched/internal/store"
	"medisched/internal/store/csvfile"
)

var appointmentTypes = []string{
	"Consultation",
	"Follow-up",
	"X-ray",
	"Blood Test",
	"Vaccination",
	"Physiotherapy",
}

func main() {
	doctors := flag.Int("doctors", 5, "number of doctors to seed")
	patients := flag.Int("patients", 20, "number of patients to seed")
	days := flag.Int("days", 5, "days of availability per doctor")
	seed := flag.Int64("seed", 0, "PRNG seed, 0 for random")
	flag.Parse()

	log := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(slog.String("service", "medisched-seed"))

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if cfg.StorageDriver != config.StorageFile {
		log.Error("seed only supports the file storage driver", slog.String("driver", cfg.StorageDriver))
		os.Exit(1)
	}

	if *seed != 0 {
		_ = gofakeit.Seed(*seed)
	}

	ctx := context.Background()
	slots, err := store.NewSlotStore(ctx, csvfile.NewSlotRecords(cfg.DataDir))
	if err != nil {
		log.Error("slot store load failed", slog.Any("err", err))
		os.Exit(1)
	}
	appts, err := store.NewAppointmentStore(ctx, csvfile.NewAppointmentRecords(cfg.DataDir))
	if err != nil {
		log.Error("appointment store load failed", slog.Any("err", err))
		os.Exit(1)
	}
	engine := scheduling.NewEngine(slots, appts, log)

	if err := run(ctx, engine, *doctors, *patients, *days); err != nil {
		log.Error("seed failed", slog.Any("err", err))
		os.Exit(1)
	}

	stats := engine.Statistics()
	log.Info("seed complete",
		slog.String("data_dir", cfg.DataDir),
		slog.Int("appointments", stats.Total),
	)
}

func run(ctx context.Context, engine *scheduling.Engine, doctors, patients, days int) error {
	doctorIDs := make([]string, 0, doctors)
	for i := range doctors {
		doctorIDs = append(doctorIDs, fmt.Sprintf("D%03d", i+1))
	}
	patientIDs := make([]string, 0, patients)
	for i := range patients {
		patientIDs = append(patientIDs, fmt.Sprintf("P%03d", i+1))
	}

	// Hourly slots 09:00-16:00, starting tomorrow.
	dayStart := time.Now().Add(24 * time.Hour).Truncate(24 * time.Hour).Add(9 * time.Hour)
	for _, doctorID := range doctorIDs {
		var times []time.Time
		for day := range days {
			for hour := range 8 {
				times = append(times, dayStart.AddDate(0, 0, day).Add(time.Duration(hour)*time.Hour))
			}
		}
		if err := engine.AddSlots(ctx, doctorID, times); err != nil {
			return fmt.Errorf("add slots for %s: %w", doctorID, err)
		}
	}

	// Book roughly a third of the open slots and walk a spread of them
	// through the lifecycle.
	for _, doctorID := range doctorIDs {
		for _, slot := range engine.AvailableSlots(doctorID) {
			if gofakeit.Number(0, 2) != 0 {
				continue
			}
			patientID := patientIDs[gofakeit.Number(0, len(patientIDs)-1)]
			apptType := appointmentTypes[gofakeit.Number(0, len(appointmentTypes)-1)]

			appt, err := engine.Book(ctx, patientID, doctorID, slot.StartTime, apptType)
			if err != nil {
				return fmt.Errorf("book %s at %s: %w", doctorID, slot.StartTime, err)
			}

			switch gofakeit.Number(0, 3) {
			case 0: // stays REQUESTED
			case 1:
				if err := engine.SetStatus(ctx, appt.ID, domain.StatusConfirmed); err != nil {
					return err
				}
			case 2:
				if err := engine.Cancel(ctx, appt.ID); err != nil {
					return err
				}
			case 3:
				if err := engine.SetStatus(ctx, appt.ID, domain.StatusConfirmed); err != nil {
					return err
				}
				if err := engine.SetStatus(ctx, appt.ID, domain.StatusCompleted); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
