package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dastin1501/PPL-Referee/models"
	"github.com/lib/pq"
)

var ErrGroupNotFound = errors.New("group not found")

// GroupRepository persists the per-group overlay: standings and the keyed
// match records. Group membership itself is never stored; it is recomputed
// from registrations.
type GroupRepository interface {
	ListByCategory(ctx context.Context, exec SQLExecutor, categoryID string) ([]*models.Group, error)
	ListByTournament(ctx context.Context, tournamentID int) (map[string][]*models.Group, error)
	LockByCategory(ctx context.Context, exec SQLExecutor, categoryID string) ([]*models.Group, error)
	Upsert(ctx context.Context, exec SQLExecutor, categoryID string, group *models.Group) error
}

type postgresGroupRepository struct {
	db *sql.DB
}

func NewPostgresGroupRepository(db *sql.DB) GroupRepository {
	return &postgresGroupRepository{db: db}
}

func (r *postgresGroupRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresGroupRepository) scanGroup(rowScanner interface{ Scan(...interface{}) error }) (string, *models.Group, error) {
	var (
		categoryID         string
		g                  models.Group
		standings, matches []byte
	)
	if err := rowScanner.Scan(&categoryID, &g.ID, &g.Letter, &g.Name, &standings, &matches); err != nil {
		return "", nil, err
	}
	if err := decodeJSONB(standings, &g.Standings, "standings"); err != nil {
		return "", nil, err
	}
	if err := decodeJSONB(matches, &g.Matches, "matches"); err != nil {
		return "", nil, err
	}
	if g.Matches == nil {
		g.Matches = make(map[string]models.MatchRecord)
	}
	return categoryID, &g, nil
}

func (r *postgresGroupRepository) queryGroups(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) (map[string][]*models.Group, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]*models.Group)
	for rows.Next() {
		categoryID, g, err := r.scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		out[categoryID] = append(out[categoryID], g)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group rows: %w", err)
	}
	return out, nil
}

func (r *postgresGroupRepository) ListByCategory(ctx context.Context, exec SQLExecutor, categoryID string) ([]*models.Group, error) {
	query := `
		SELECT category_id, group_id, letter, name, standings, matches
		FROM category_groups
		WHERE category_id = $1
		ORDER BY letter`
	groups, err := r.queryGroups(ctx, r.getExecutor(exec), query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of category %s: %w", categoryID, err)
	}
	return groups[categoryID], nil
}

func (r *postgresGroupRepository) ListByTournament(ctx context.Context, tournamentID int) (map[string][]*models.Group, error) {
	query := `
		SELECT g.category_id, g.group_id, g.letter, g.name, g.standings, g.matches
		FROM category_groups g
		JOIN categories c ON c.id = g.category_id
		WHERE c.tournament_id = $1
		ORDER BY g.category_id, g.letter`
	groups, err := r.queryGroups(ctx, r.db, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of tournament %d: %w", tournamentID, err)
	}
	return groups, nil
}

// LockByCategory reads a category's groups FOR UPDATE; exec should be a transaction.
func (r *postgresGroupRepository) LockByCategory(ctx context.Context, exec SQLExecutor, categoryID string) ([]*models.Group, error) {
	query := `
		SELECT category_id, group_id, letter, name, standings, matches
		FROM category_groups
		WHERE category_id = $1
		ORDER BY letter
		FOR UPDATE`
	groups, err := r.queryGroups(ctx, r.getExecutor(exec), query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock groups of category %s: %w", categoryID, err)
	}
	return groups[categoryID], nil
}

func (r *postgresGroupRepository) Upsert(ctx context.Context, exec SQLExecutor, categoryID string, g *models.Group) error {
	standings, err := encodeJSONB(g.Standings, "standings")
	if err != nil {
		return err
	}
	matches, err := encodeJSONB(g.Matches, "matches")
	if err != nil {
		return err
	}
	query := `
		INSERT INTO category_groups (category_id, group_id, letter, name, standings, matches, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (category_id, group_id) DO UPDATE
		SET letter = EXCLUDED.letter,
		    name = EXCLUDED.name,
		    standings = EXCLUDED.standings,
		    matches = EXCLUDED.matches,
		    updated_at = NOW()`
	_, err = r.getExecutor(exec).ExecContext(ctx, query, categoryID, g.ID, g.Letter, g.Name, standings, matches)
	if err != nil {
		return handleGroupError(err)
	}
	return nil
}

func handleGroupError(err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrCategoryNotFound
	}
	return fmt.Errorf("failed to upsert group: %w", err)
}
