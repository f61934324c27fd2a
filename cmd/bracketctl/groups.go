package main

import (
	"github.com/dastin1501/PPL-Referee/models"
	"github.com/spf13/cobra"
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Args:  cobra.ExactArgs(0),
	Short: "Print groups and elimination matches of every category",
}

type categoryView struct {
	ID                 string                     `json:"id"`
	Label              string                     `json:"label"`
	BracketSize        int                        `json:"bracket_size"`
	Groups             []*models.Group            `json:"groups"`
	EliminationMatches []*models.EliminationMatch `json:"elimination_matches"`
}

func init() {
	p := groupsCmd.Flags()
	file := p.StringP(
		"file", "f", "-",
		"tournament snapshot file (- for stdin)")

	groupsCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		snap, err := readSnapshot(*file)
		if err != nil {
			return err
		}
		cats, _, err := snap.build(cmd.Context())
		if err != nil {
			return err
		}
		out := make([]categoryView, 0, len(cats))
		for _, c := range cats {
			out = append(out, categoryView{
				ID:                 c.ID,
				Label:              c.Label(),
				BracketSize:        c.BracketSize,
				Groups:             c.Groups,
				EliminationMatches: c.EliminationMatches,
			})
		}
		return writeOutput(cmd.OutOrStdout(), out)
	}
}
