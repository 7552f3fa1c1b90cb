package engine

import (
	"time"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Default policy values used across tests. They mirror the production
// defaults in pkg/config.
const (
	testMinGap      = 0.05
	testSafeGap     = 0.25
	testSafeEVFloor = -0.02
	testValueEV     = 0.05
)

// NewTestBuilder wires a builder with default policy and a fixed clock.
// Exported so cmd and httpserver tests can reuse the wiring.
func NewTestBuilder(weights map[string]float64) *Builder {
	logger := zap.NewNop()

	return NewBuilder(BuilderConfig{
		Guard: NewGuard(logger),
		Evaluator: NewEvaluator(EvaluatorConfig{
			EVWeight:  0.6,
			GapWeight: 0.4,
			Logger:    logger,
		}),
		Aggregator: NewAggregator(AggregatorConfig{
			HighVariance:   0.01,
			MediumVariance: 0.05,
			Logger:         logger,
		}),
		Selector: NewSelector(SelectorConfig{
			MinGap:      testMinGap,
			SafeGap:     testSafeGap,
			SafeEVFloor: testSafeEVFloor,
			ValueEV:     testValueEV,
			Logger:      logger,
		}),
		Sizer: NewSizer(SizerConfig{
			PerBetCapPct: 0.05,
			Multipliers: map[types.RiskProfile]float64{
				types.RiskConservative: 0.25,
				types.RiskBalanced:     0.50,
				types.RiskAggressive:   0.75,
			},
			Logger: logger,
		}),
		Weights: weights,
		Logger:  logger,
		Now:     func() time.Time { return time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC) },
	})
}

// CreateTestFixture creates a La Liga fixture for tests.
func CreateTestFixture(id string) *types.Fixture {
	return &types.Fixture{
		ID:        id,
		HomeTeam:  "Real Madrid",
		AwayTeam:  "Sevilla",
		League:    "La Liga",
		KickoffAt: time.Date(2026, 3, 15, 20, 0, 0, 0, time.UTC),
	}
}

// CreateTestOutput creates a 1X2 model output authorized for La Liga.
func CreateTestOutput(modelID string, fixtureID string, home, draw, away float64) *types.ModelOutput {
	return &types.ModelOutput{
		ModelID:   modelID,
		FixtureID: fixtureID,
		Market:    types.MarketMatchWinner,
		Leagues:   []string{"la liga", "spanish la liga", "primera division"},
		Probabilities: map[string]float64{
			types.OutcomeHome: home,
			types.OutcomeDraw: draw,
			types.OutcomeAway: away,
		},
	}
}

// CreateTestQuote creates a 1X2 odds quote.
func CreateTestQuote(fixtureID string, home, draw, away float64) *types.OddsQuote {
	return &types.OddsQuote{
		FixtureID: fixtureID,
		Market:    types.MarketMatchWinner,
		Bookmaker: "pinnacle",
		Odds: map[string]float64{
			types.OutcomeHome: home,
			types.OutcomeDraw: draw,
			types.OutcomeAway: away,
		},
		CapturedAt: time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC),
	}
}
