package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/repositories"
	"github.com/dastin1501/PPL-Referee/schedule"
)

const dateLayout = "2006-01-02"

// Transactor runs fn inside one database transaction. fn's error, or a
// panic, rolls it back.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error
}

type sqlTransactor struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewSQLTransactor(db *sql.DB, logger *slog.Logger) Transactor {
	return &sqlTransactor{db: db, logger: logger}
}

func (t *sqlTransactor) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) (txErr error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				t.logger.ErrorContext(ctx, "rollback failed", slog.Any("error", rbErr), slog.Any("cause", txErr))
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	return fn(tx)
}

// handleRepositoryError translates repository errors into service errors.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrGroupNotFound):
		return ErrGroupNotFound
	case errors.Is(err, repositories.ErrScheduleNotFound):
		return ErrNotFound
	case errors.Is(err, repositories.ErrScheduleVersionConflict):
		return ErrScheduleConflict
	}
	return err
}

// handleGridError marks grid mutation failures as validation errors while
// keeping the grid's own sentinel reachable through errors.Is.
func handleGridError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, schedule.ErrVenueOutOfRange),
		errors.Is(err, schedule.ErrCellOutOfRange),
		errors.Is(err, schedule.ErrSlotOutOfRange),
		errors.Is(err, schedule.ErrLastVenue),
		errors.Is(err, schedule.ErrInvalidSlotSeries),
		errors.Is(err, schedule.ErrMatchRequired):
		return fmt.Errorf("%w: %w", ErrValidationFailed, err)
	case errors.Is(err, schedule.ErrMatchNotFound):
		return fmt.Errorf("%w: %w", ErrMatchNotFound, err)
	}
	return err
}

func validateDate(date string, allowed []string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return fmt.Errorf("%w: schedule date %q must be YYYY-MM-DD", ErrValidationFailed, date)
	}
	if len(allowed) == 0 {
		return nil
	}
	for _, d := range allowed {
		if d == date {
			return nil
		}
	}
	return fmt.Errorf("%w: %s is not a tournament date", ErrValidationFailed, date)
}

func roomFor(tournamentID int) string {
	return brackets.RoomForTournament(strconv.Itoa(tournamentID))
}
