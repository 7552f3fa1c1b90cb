package cmd

import (
	"fmt"

	"github.com/mselser95/bet-recommender/internal/app"
	"github.com/mselser95/bet-recommender/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the recommendation engine",
	Long: `Starts the recommendation engine, which will:
1. Poll the feed API for upcoming fixtures and their odds
2. Subscribe to the live odds stream (when configured)
3. Fetch model outputs for each tracked fixture
4. Score fixtures and publish recommendations over HTTP and storage

Use --single-fixture to score only one fixture for debugging.`,
	RunE: runEngine,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("single-fixture", "s", "", "Score only a single fixture by ID (for debugging)")
}

func runEngine(cmd *cobra.Command, args []string) error {
	// Load config
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Create logger
	logger, err := config.NewLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// Get flags
	singleFixture, _ := cmd.Flags().GetString("single-fixture")

	// Create app with options
	opts := &app.Options{
		SingleFixture: singleFixture,
	}

	application, err := app.New(cfg, logger, opts)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	// Run app
	err = application.Run()
	if err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
