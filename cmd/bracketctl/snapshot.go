package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/models"
)

// snapshot is an offline export of one tournament: categories with their
// persisted overlays, registrations and persisted group state per category.
type snapshot struct {
	Tournament    models.Tournament          `json:"tournament"`
	Categories    []*models.Category         `json:"categories"`
	Registrations []models.Registration      `json:"registrations"`
	Groups        map[string][]*models.Group `json:"groups"`
}

func readSnapshot(path string) (*snapshot, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open snapshot: %w", err)
		}
		defer f.Close()
		r = f
	}
	var s snapshot
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &s, nil
}

// build rebuilds every category and the unified match list in category order.
func (s *snapshot) build(ctx context.Context) ([]*models.Category, []*models.ScheduledMatch, error) {
	var (
		cats    []*models.Category
		matches []*models.ScheduledMatch
	)
	for _, cat := range s.Categories {
		cat.TournamentDates = s.Tournament.Dates
		built := brackets.BuildCategory(cat, s.Registrations, s.Groups[cat.ID])
		m, err := brackets.UnifiedMatches(ctx, built)
		if err != nil {
			return nil, nil, fmt.Errorf("category %s: %w", cat.ID, err)
		}
		cats = append(cats, built)
		matches = append(matches, m...)
	}
	return cats, matches, nil
}

func writeOutput(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
