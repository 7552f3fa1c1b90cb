package cmd

import (
	"fmt"
	"strings"

	"github.com/mselser95/bet-recommender/internal/models"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the registered prediction models",
	Long: `Prints the model registry: every registered model with its ensemble
weight and the leagues it is authorized to score.

Use --league to show only the models authorized for one league.`,
	RunE: runModels,
}

//nolint:gochecknoglobals // Cobra flags
var (
	modelsRegistryPath string
	modelsLeague       string
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().StringVarP(&modelsRegistryPath, "registry", "r", "models.json", "Path to the model registry file")
	modelsCmd.Flags().StringVarP(&modelsLeague, "league", "l", "", "Show only models authorized for this league")
}

func runModels(cmd *cobra.Command, args []string) error {
	registry, err := models.LoadRegistry(modelsRegistryPath, zap.NewNop())
	if err != nil {
		return fmt.Errorf("load model registry: %w", err)
	}

	entries := registry.All()
	if modelsLeague != "" {
		entries = registry.ForLeague(modelsLeague)
	}

	if len(entries) == 0 {
		fmt.Println("No models registered")
		return nil
	}

	fmt.Printf("%-30s %8s  %s\n", "MODEL", "WEIGHT", "LEAGUES")
	for _, model := range entries {
		fmt.Printf("%-30s %8.2f  %s\n", model.ID, model.Weight, strings.Join(model.Leagues, ", "))
	}
	fmt.Printf("\n%d model(s)\n", len(entries))

	return nil
}
