package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

var (
	ErrScheduleNotFound        = errors.New("schedule not found")
	ErrScheduleVersionConflict = errors.New("schedule was modified by another request")
)

// StoredSchedule is one persisted day document. Document is kept as raw JSON
// so legacy shapes reach the parser untouched.
type StoredSchedule struct {
	TournamentID int
	ScheduleDate string
	Document     []byte
	Version      int
	UpdatedAt    time.Time
}

type ScheduleRepository interface {
	Get(ctx context.Context, exec SQLExecutor, tournamentID int, date string) (*StoredSchedule, error)
	ListDates(ctx context.Context, tournamentID int) ([]string, error)
	// Save writes a document if the stored version still equals expectedVersion
	// (0 for a day that has no document yet) and returns the new version.
	Save(ctx context.Context, exec SQLExecutor, tournamentID int, date string, document []byte, expectedVersion int) (int, error)
}

type postgresScheduleRepository struct {
	db *sql.DB
}

func NewPostgresScheduleRepository(db *sql.DB) ScheduleRepository {
	return &postgresScheduleRepository{db: db}
}

func (r *postgresScheduleRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresScheduleRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID int, date string) (*StoredSchedule, error) {
	query := `
		SELECT tournament_id, schedule_date, document, version, updated_at
		FROM court_schedules
		WHERE tournament_id = $1 AND schedule_date = $2`

	s := &StoredSchedule{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, date).Scan(
		&s.TournamentID, &s.ScheduleDate, &s.Document, &s.Version, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, fmt.Errorf("failed to get schedule %d/%s: %w", tournamentID, date, err)
	}
	return s, nil
}

func (r *postgresScheduleRepository) ListDates(ctx context.Context, tournamentID int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT schedule_date FROM court_schedules WHERE tournament_id = $1 ORDER BY schedule_date`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedule dates for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	dates := make([]string, 0)
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan schedule date: %w", err)
		}
		dates = append(dates, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating schedule dates: %w", err)
	}
	return dates, nil
}

func (r *postgresScheduleRepository) Save(ctx context.Context, exec SQLExecutor, tournamentID int, date string, document []byte, expectedVersion int) (int, error) {
	executor := r.getExecutor(exec)
	newVersion := expectedVersion + 1

	if expectedVersion == 0 {
		query := `
			INSERT INTO court_schedules (tournament_id, schedule_date, document, version, updated_at)
			VALUES ($1, $2, $3, $4, NOW())
			ON CONFLICT (tournament_id, schedule_date) DO NOTHING`
		result, err := executor.ExecContext(ctx, query, tournamentID, date, document, newVersion)
		if err != nil {
			return 0, handleScheduleError(err)
		}
		if err := checkAffectedRows(result, ErrScheduleVersionConflict); err != nil {
			return 0, err
		}
		return newVersion, nil
	}

	query := `
		UPDATE court_schedules
		SET document = $1, version = $2, updated_at = NOW()
		WHERE tournament_id = $3 AND schedule_date = $4 AND version = $5`
	result, err := executor.ExecContext(ctx, query, document, newVersion, tournamentID, date, expectedVersion)
	if err != nil {
		return 0, handleScheduleError(err)
	}
	if err := checkAffectedRows(result, ErrScheduleVersionConflict); err != nil {
		return 0, err
	}
	return newVersion, nil
}

func handleScheduleError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok {
		switch pqErr.Code {
		case "23503":
			return ErrTournamentNotFound
		case "23505":
			return ErrScheduleVersionConflict
		}
	}
	return fmt.Errorf("failed to save schedule: %w", err)
}
