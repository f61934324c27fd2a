package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Version: "indev",
	Use:     "bracketctl",
	Short:   "Builds brackets, match lists and slot series from a tournament snapshot",
}

func main() {
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(slotsCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
