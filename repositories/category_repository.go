package repositories

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Category, error)
	GetByID(ctx context.Context, tournamentID int, categoryID string) (*models.Category, error)
	// LockEliminationOverlay reads a category's elimination overlay and locks
	// the row until exec's transaction ends.
	LockEliminationOverlay(ctx context.Context, exec SQLExecutor, categoryID string) (map[string]models.MatchRecord, error)
	UpdateEliminationOverlay(ctx context.Context, exec SQLExecutor, categoryID string, overlay map[string]models.MatchRecord) error
}

type postgresCategoryRepository struct {
	db *sql.DB
}

func NewPostgresCategoryRepository(db *sql.DB) CategoryRepository {
	return &postgresCategoryRepository{db: db}
}

func (r *postgresCategoryRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const categoryColumns = `
	id, tournament_id, division, COALESCE(age_category, ''), COALESCE(skill_level, ''),
	COALESCE(tier, 0), bracket_size, games_per_match, points_submitted, elimination_overlay`

func (r *postgresCategoryRepository) scanCategory(rowScanner interface{ Scan(...interface{}) error }) (*models.Category, error) {
	c := &models.Category{}
	var overlay []byte
	err := rowScanner.Scan(
		&c.ID, &c.TournamentID, &c.Division, &c.AgeCategory, &c.SkillLevel,
		&c.Tier, &c.BracketSize, &c.GamesPerMatch, &c.PointsSubmitted, &overlay,
	)
	if err != nil {
		return nil, err
	}
	c.EliminationOverlay, err = decodeEliminationOverlay(overlay)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// decodeEliminationOverlay accepts the keyed object form and the older list
// of records identified by code or round title.
func decodeEliminationOverlay(raw []byte) (map[string]models.MatchRecord, error) {
	if bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		var records []models.MatchRecord
		if err := decodeJSONB(raw, &records, "elimination_overlay"); err != nil {
			return nil, err
		}
		return brackets.LegacyEliminationOverlay(records), nil
	}
	var overlay map[string]models.MatchRecord
	if err := decodeJSONB(raw, &overlay, "elimination_overlay"); err != nil {
		return nil, err
	}
	return overlay, nil
}

func (r *postgresCategoryRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE tournament_id = $1
		ORDER BY position, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	categories := make([]*models.Category, 0)
	for rows.Next() {
		c, err := r.scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category rows: %w", err)
	}
	return categories, nil
}

func (r *postgresCategoryRepository) GetByID(ctx context.Context, tournamentID int, categoryID string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + `
		FROM categories
		WHERE tournament_id = $1 AND id = $2`

	c, err := r.scanCategory(r.db.QueryRowContext(ctx, query, tournamentID, categoryID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category %s: %w", categoryID, err)
	}
	return c, nil
}

func (r *postgresCategoryRepository) UpdateEliminationOverlay(ctx context.Context, exec SQLExecutor, categoryID string, overlay map[string]models.MatchRecord) error {
	data, err := encodeJSONB(overlay, "elimination_overlay")
	if err != nil {
		return err
	}
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE categories SET elimination_overlay = $1 WHERE id = $2`, data, categoryID)
	if err != nil {
		return fmt.Errorf("failed to update elimination overlay of category %s: %w", categoryID, err)
	}
	return checkAffectedRows(result, ErrCategoryNotFound)
}

func (r *postgresCategoryRepository) LockEliminationOverlay(ctx context.Context, exec SQLExecutor, categoryID string) (map[string]models.MatchRecord, error) {
	var raw []byte
	err := r.getExecutor(exec).QueryRowContext(ctx,
		`SELECT elimination_overlay FROM categories WHERE id = $1 FOR UPDATE`, categoryID).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to lock elimination overlay of category %s: %w", categoryID, err)
	}
	return decodeEliminationOverlay(raw)
}
