package main

import (
	"github.com/dastin1501/PPL-Referee/schedule"
	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Args:  cobra.ExactArgs(0),
	Short: "Preview a series of consecutive time slots",
}

func init() {
	p := slotsCmd.Flags()
	start := p.String(
		"start", "09:00",
		"start time of the first slot (HH:MM)")
	duration := p.IntP(
		"duration", "d", 30,
		"slot length in minutes")
	count := p.IntP(
		"count", "n", 4,
		"number of slots")

	slotsCmd.RunE = func(cmd *cobra.Command, _args []string) error {
		grid := schedule.NewGrid("", schedule.Defaults{})
		slots, err := grid.AddSlotSeries(0, *start, *duration, *count)
		if err != nil {
			return err
		}
		return writeOutput(cmd.OutOrStdout(), slots)
	}
}
