package main

import (
	"github.com/dastin1501/PPL-Referee/schedule"
	"github.com/spf13/cobra"
)

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Args:  cobra.ExactArgs(0),
	Short: "Print the unified match list of a tournament snapshot",
}

func init() {
	p := matchesCmd.Flags()
	file := p.StringP(
		"file", "f", "-",
		"tournament snapshot file (- for stdin)")
	category := p.StringP(
		"category", "c", schedule.FilterAll,
		"category label filter")
	stage := p.StringP(
		"stage", "s", schedule.FilterAll,
		"stage filter")
	search := p.StringP(
		"query", "q", "",
		"free-text search over players, seeds and labels")

	matchesCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		snap, err := readSnapshot(*file)
		if err != nil {
			return err
		}
		_, matches, err := snap.build(cmd.Context())
		if err != nil {
			return err
		}
		filtered := schedule.FilterMatches(matches, schedule.MatchFilter{
			Category: *category,
			Stage:    *stage,
			Search:   *search,
		})
		return writeOutput(cmd.OutOrStdout(), filtered)
	}
}
