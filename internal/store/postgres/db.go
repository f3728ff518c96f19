// Package postgres persists slot and appointment snapshots in PostgreSQL
// through bun. Each SaveAll replaces the full table contents inside one
// transaction, which gives the stores their all-or-nothing write-through.
package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func Open(databaseURL string, pool PoolConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return bun.NewDB(sqlDB, pgdialect.New()), nil
}

func Close(db *bun.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

// EnsureSchema creates the snapshot tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS appointment_slots (
			position   bigserial,
			doctor_id  text        NOT NULL,
			start_time timestamptz NOT NULL,
			available  boolean     NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS appointments (
			id           uuid        PRIMARY KEY,
			patient_id   text        NOT NULL,
			doctor_id    text        NOT NULL,
			scheduled_at timestamptz NOT NULL,
			type         text        NOT NULL,
			status       text        NOT NULL
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
