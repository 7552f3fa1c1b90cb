package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/joho/godotenv"
	"github.com/mselser95/bet-recommender/internal/engine"
	"github.com/mselser95/bet-recommender/internal/models"
	"github.com/mselser95/bet-recommender/internal/storage"
	"github.com/mselser95/bet-recommender/pkg/config"
	"github.com/mselser95/bet-recommender/pkg/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

//nolint:gochecknoglobals // Cobra boilerplate
var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a single fixture from a request file",
	Long: `Runs one fixture through the scoring pipeline without starting the
service. The input file carries the fixture, its model outputs and odds
quotes, and optionally a bankroll:

  {
    "fixture": {"id": "...", "home_team": "...", "away_team": "...", "league": "..."},
    "model_outputs": [{"model_id": "...", "market": "1x2", "leagues": [...], "probabilities": {...}}],
    "quotes": [{"market": "1x2", "bookmaker": "...", "odds": {...}}],
    "bankroll": {"balance": 1000, "currency": "EUR", "risk_profile": "balanced"}
  }

With --registry, ensemble weights come from the model registry file;
otherwise all models weigh equally.`,
	RunE: runScore,
}

//nolint:gochecknoglobals // Cobra flags
var (
	scoreInputPath    string
	scoreRegistryPath string
	scoreJSONOutput   bool
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVarP(&scoreInputPath, "input", "i", "", "Path to the score request JSON file")
	scoreCmd.Flags().StringVarP(&scoreRegistryPath, "registry", "r", "", "Optional model registry file for ensemble weights")
	scoreCmd.Flags().BoolVar(&scoreJSONOutput, "json", false, "Print the result as JSON instead of the console report")
	_ = scoreCmd.MarkFlagRequired("input")
}

// scoreRequest mirrors the POST /api/score body.
type scoreRequest struct {
	Fixture  *types.Fixture       `json:"fixture"`
	Outputs  []*types.ModelOutput `json:"model_outputs"`
	Quotes   []*types.OddsQuote   `json:"quotes"`
	Bankroll *types.BankrollState `json:"bankroll,omitempty"`
}

type scoreResult struct {
	Recommendation *engine.Recommendation   `json:"recommendation,omitempty"`
	Rejections     []*engine.RejectionEvent `json:"rejections,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()

	request, err := loadScoreRequest(scoreInputPath)
	if err != nil {
		return err
	}

	var weights map[string]float64
	if scoreRegistryPath != "" {
		registry, regErr := models.LoadRegistry(scoreRegistryPath, logger)
		if regErr != nil {
			return fmt.Errorf("load model registry: %w", regErr)
		}
		weights = registry.Weights()
	}

	builder := newBuilderFromConfig(cfg, logger, weights)

	quotes := freshestQuotes(request.Fixture.ID, request.Quotes)

	rec, rejections, err := builder.Build(request.Fixture, request.Outputs, quotes, request.Bankroll)
	if err != nil {
		return fmt.Errorf("score fixture: %w", err)
	}

	if scoreJSONOutput {
		return printScoreJSON(rec, rejections)
	}

	console := storage.NewConsoleStorage(logger)
	for _, rejection := range rejections {
		_ = console.StoreRejection(cmd.Context(), rejection)
	}
	if rec == nil {
		fmt.Printf("No recommendation: fixture %s produced no usable signal\n", request.Fixture.ID)
		return nil
	}
	return console.StoreRecommendation(cmd.Context(), rec)
}

// loadScoreRequest reads and validates a score request file.
func loadScoreRequest(path string) (*scoreRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}

	var request scoreRequest
	err = json.Unmarshal(data, &request)
	if err != nil {
		return nil, fmt.Errorf("parse request file: %w", err)
	}

	if request.Fixture == nil {
		return nil, fmt.Errorf("request file is missing the fixture")
	}
	if request.Fixture.ID == "" || request.Fixture.League == "" {
		return nil, fmt.Errorf("fixture must carry an id and a league")
	}
	if len(request.Outputs) == 0 {
		return nil, fmt.Errorf("request file carries no model outputs")
	}
	if len(request.Quotes) == 0 {
		return nil, fmt.Errorf("request file carries no quotes")
	}

	return &request, nil
}

// freshestQuotes keeps the newest quote per market and stamps the fixture ID.
func freshestQuotes(fixtureID string, all []*types.OddsQuote) map[types.MarketType]*types.OddsQuote {
	quotes := make(map[types.MarketType]*types.OddsQuote, len(all))
	for _, quote := range all {
		quote.FixtureID = fixtureID
		existing, ok := quotes[quote.Market]
		if !ok || quote.Newer(existing) {
			quotes[quote.Market] = quote
		}
	}
	return quotes
}

func newBuilderFromConfig(cfg *config.Config, logger *zap.Logger, weights map[string]float64) *engine.Builder {
	return engine.NewBuilder(engine.BuilderConfig{
		Guard: engine.NewGuard(logger),
		Evaluator: engine.NewEvaluator(engine.EvaluatorConfig{
			EVWeight:  cfg.EngineEVWeight,
			GapWeight: cfg.EngineGapWeight,
			Logger:    logger,
		}),
		Aggregator: engine.NewAggregator(engine.AggregatorConfig{
			HighVariance:   cfg.EngineHighVariance,
			MediumVariance: cfg.EngineMediumVariance,
			Logger:         logger,
		}),
		Selector: engine.NewSelector(engine.SelectorConfig{
			MinGap:      cfg.EngineMinGap,
			SafeGap:     cfg.EngineSafeGap,
			SafeEVFloor: cfg.EngineSafeEVFloor,
			ValueEV:     cfg.EngineValueEV,
			Logger:      logger,
		}),
		Sizer: engine.NewSizer(engine.SizerConfig{
			PerBetCapPct: cfg.StakePerBetCapPct,
			Multipliers: map[types.RiskProfile]float64{
				types.RiskConservative: cfg.StakeConservativeMult,
				types.RiskBalanced:     cfg.StakeBalancedMult,
				types.RiskAggressive:   cfg.StakeAggressiveMult,
			},
			Logger: logger,
		}),
		Weights: weights,
		Logger:  logger,
	})
}

func printScoreJSON(rec *engine.Recommendation, rejections []*engine.RejectionEvent) error {
	out, err := json.MarshalIndent(scoreResult{
		Recommendation: rec,
		Rejections:     rejections,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
