package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/uptrace/bun"

	"medisched/internal/api"
	"medisched/internal/config"
	"medisched/internal/service/scheduling"
	"medisched/internal/store"
	"medisched/internal/store/csvfile"
	"medisched/internal/store/memory"
	"medisched/internal/store/postgres"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "medisched-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "medisched-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr()),
		slog.String("storage_driver", cfg.StorageDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slotRecords, apptRecords, cleanup, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Error("storage open failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer cleanup()

	slots, err := store.NewSlotStore(ctx, slotRecords)
	if err != nil {
		log.Error("slot store load failed", slog.Any("err", err))
		os.Exit(1)
	}
	appts, err := store.NewAppointmentStore(ctx, apptRecords)
	if err != nil {
		log.Error("appointment store load failed", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("stores loaded",
		slog.Int("slots", len(slots.Snapshot())),
		slog.Int("appointments", appts.Len()),
	)

	engine := scheduling.NewEngine(slots, appts, log)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      api.NewRouter(engine, log),
		ReadTimeout:  cfg.HTTPRequestTimeout,
		WriteTimeout: cfg.HTTPRequestTimeout,
		IdleTimeout:  time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr()))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdown(log, srv, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func openStorage(ctx context.Context, cfg config.Config, log *slog.Logger) (store.SlotRecords, store.AppointmentRecords, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		return memory.NewSlotRecords(nil), memory.NewAppointmentRecords(nil), func() {}, nil

	case config.StorageFile:
		log.Info("using file storage", slog.String("data_dir", cfg.DataDir))
		return csvfile.NewSlotRecords(cfg.DataDir), csvfile.NewAppointmentRecords(cfg.DataDir), func() {}, nil

	case config.StoragePostgres:
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		db, err := postgres.Open(cfg.DatabaseURL, postgres.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
			ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			_ = postgres.Close(db)
			return nil, nil, nil, err
		}
		cleanup := closeDB(db, log)
		return postgres.NewSlotRecords(db), postgres.NewAppointmentRecords(db), cleanup, nil
	}
	return nil, nil, nil, errors.New("unknown storage driver " + cfg.StorageDriver)
}

func closeDB(db *bun.DB, log *slog.Logger) func() {
	return func() {
		if err := postgres.Close(db); err != nil {
			log.Warn("database close failed", slog.Any("err", err))
		}
	}
}

func shutdown(log *slog.Logger, srv *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("graceful shutdown failed; forcing close", slog.Any("err", err))
		_ = srv.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
