package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "bet-recommender",
	Short: "Sports betting recommendation engine",
	Long: `Recommendation scoring engine for pre-match sports betting.

The engine polls a fixtures and odds feed, fetches probability outputs from
registered prediction models, enforces per-league model authorization, and
combines each fixture's ensemble consensus with bookmaker odds into a single
scored, staked recommendation per fixture.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	// Flags can be added here if needed
}
