package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dastin1501/PPL-Referee/models"
)

// RegistrationRepository reads registrations; writing them belongs to the
// registration flow, not the bracket engine.
type RegistrationRepository interface {
	ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error)
}

type postgresRegistrationRepository struct {
	db *sql.DB
}

func NewPostgresRegistrationRepository(db *sql.DB) RegistrationRepository {
	return &postgresRegistrationRepository{db: db}
}

func (r *postgresRegistrationRepository) ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error) {
	query := `
		SELECT id, tournament_id, COALESCE(category_id, ''), COALESCE(category_ref, ''), status,
		       COALESCE(player_name, ''), COALESCE(team_name, ''), player, partner, team_members, created_at
		FROM registrations
		WHERE tournament_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	regs := make([]models.Registration, 0)
	for rows.Next() {
		var (
			reg                     models.Registration
			player, partner, others []byte
		)
		if err := rows.Scan(
			&reg.ID, &reg.TournamentID, &reg.CategoryID, &reg.CategoryRef, &reg.Status,
			&reg.PlayerName, &reg.TeamName, &player, &partner, &others, &reg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan registration row: %w", err)
		}
		if err := decodeJSONB(player, &reg.Player, "player"); err != nil {
			return nil, err
		}
		if err := decodeJSONB(partner, &reg.Partner, "partner"); err != nil {
			return nil, err
		}
		if err := decodeJSONB(others, &reg.TeamMembers, "team_members"); err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating registration rows: %w", err)
	}
	return regs, nil
}
