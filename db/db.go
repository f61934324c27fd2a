package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// ErrSchemaIncomplete is returned when the database is reachable but lacks
// tables the engine reads or writes. Apply db/schema.sql and restart.
var ErrSchemaIncomplete = errors.New("database schema incomplete")

// EngineTables are the tables the bracket and schedule engine needs.
var EngineTables = []string{
	"tournaments",
	"categories",
	"registrations",
	"category_groups",
	"court_schedules",
}

// Options tune the connection pool and startup checks.
type Options struct {
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	StartupTimeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxOpenConns < 1 {
		o.MaxOpenConns = 25
	}
	if o.ConnMaxLifetime <= 0 {
		o.ConnMaxLifetime = 5 * time.Minute
	}
	if o.StartupTimeout <= 0 {
		o.StartupTimeout = 5 * time.Second
	}
	return o
}

// Connect opens a pooled PostgreSQL handle, pings it and verifies that the
// engine tables exist, all within the startup timeout.
func Connect(dsn string, opts Options) (*sql.DB, error) {
	opts = opts.withDefaults()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database handle: %w", err)
	}

	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxOpenConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), opts.StartupTimeout)
	defer cancel()

	startErr := db.PingContext(ctx)
	if startErr != nil {
		startErr = fmt.Errorf("failed to ping database within %v: %w", opts.StartupTimeout, startErr)
	} else {
		startErr = VerifySchema(ctx, func(ctx context.Context, table string) (bool, error) {
			var found sql.NullString
			if err := db.QueryRowContext(ctx, `SELECT to_regclass($1)::text`, table).Scan(&found); err != nil {
				return false, err
			}
			return found.Valid, nil
		})
	}
	if startErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, errors.Join(startErr, fmt.Errorf("failed to close database handle: %w", closeErr))
		}
		return nil, startErr
	}

	return db, nil
}

// VerifySchema checks every engine table with exists and reports the missing
// ones together.
func VerifySchema(ctx context.Context, exists func(ctx context.Context, table string) (bool, error)) error {
	var missing []string
	for _, table := range EngineTables {
		ok, err := exists(ctx, table)
		if err != nil {
			return fmt.Errorf("failed to look up table %s: %w", table, err)
		}
		if !ok {
			missing = append(missing, table)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaIncomplete, strings.Join(missing, ", "))
	}
	return nil
}
