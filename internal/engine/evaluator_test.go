package engine

import (
	"errors"
	"math"
	"testing"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(EvaluatorConfig{
		EVWeight:  0.6,
		GapWeight: 0.4,
		Logger:    zap.NewNop(),
	})
}

func TestValidateProbabilities(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		name      string
		market    types.MarketType
		probs     map[string]float64
		expectErr bool
	}{
		{
			name:   "valid-1x2",
			market: types.MarketMatchWinner,
			probs:  map[string]float64{"home": 0.55, "draw": 0.25, "away": 0.20},
		},
		{
			name:   "within-tolerance-renormalized",
			market: types.MarketMatchWinner,
			probs:  map[string]float64{"home": 0.55, "draw": 0.25, "away": 0.205},
		},
		{
			name:      "sum-outside-tolerance",
			market:    types.MarketMatchWinner,
			probs:     map[string]float64{"home": 0.60, "draw": 0.30, "away": 0.30},
			expectErr: true,
		},
		{
			name:      "probability-above-one",
			market:    types.MarketBTTS,
			probs:     map[string]float64{"yes": 1.2, "no": -0.2},
			expectErr: true,
		},
		{
			name:      "negative-probability",
			market:    types.MarketBTTS,
			probs:     map[string]float64{"yes": 1.0, "no": -0.001},
			expectErr: true,
		},
		{
			name:      "unknown-outcome",
			market:    types.MarketMatchWinner,
			probs:     map[string]float64{"home": 0.5, "tie": 0.5},
			expectErr: true,
		},
		{
			name:      "empty-distribution",
			market:    types.MarketMatchWinner,
			probs:     map[string]float64{},
			expectErr: true,
		},
		{
			name:   "binary-complementary",
			market: types.MarketOverUnder25,
			probs:  map[string]float64{"over": 0.62, "under": 0.38},
		},
		{
			name:   "double-chance-not-sum-constrained",
			market: types.MarketDoubleChance,
			probs:  map[string]float64{"1x": 0.80, "12": 0.75, "x2": 0.45},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			normalized, err := e.ValidateProbabilities("model-a", tt.market, tt.probs)

			if tt.expectErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				var probErr *types.ProbabilityError
				if !errors.As(err, &probErr) {
					t.Errorf("expected ProbabilityError, got %T", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.market.Closed() {
				sum := 0.0
				for _, p := range normalized {
					sum += p
				}
				if math.Abs(sum-1.0) > 1e-9 {
					t.Errorf("normalized sum = %.12f, want 1.0", sum)
				}
			}
		})
	}
}

func TestEvaluate_ExpectedValue(t *testing.T) {
	e := newTestEvaluator()

	// probability 0.5, odds 2.20 -> EV = 0.10
	eval, err := e.Evaluate(types.MarketOverUnder25,
		map[string]float64{"over": 0.5, "under": 0.5},
		map[string]float64{"over": 2.20, "under": 1.70})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eval.ExpectedValue == nil {
		t.Fatal("expected non-nil EV")
	}
	if math.Abs(*eval.ExpectedValue-0.10) > 1e-9 {
		t.Errorf("EV = %.6f, want 0.10", *eval.ExpectedValue)
	}
}

func TestEvaluate_ArgmaxAndGap(t *testing.T) {
	e := newTestEvaluator()

	eval, err := e.Evaluate(types.MarketMatchWinner,
		map[string]float64{"home": 0.55, "draw": 0.25, "away": 0.20},
		map[string]float64{"home": 1.90, "draw": 3.40, "away": 4.20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eval.Outcome != types.OutcomeHome {
		t.Errorf("outcome = %q, want home", eval.Outcome)
	}
	if math.Abs(eval.ProbabilityGap-0.30) > 1e-9 {
		t.Errorf("gap = %.6f, want 0.30", eval.ProbabilityGap)
	}
	if math.Abs(*eval.ExpectedValue-0.045) > 1e-9 {
		t.Errorf("EV = %.6f, want 0.045", *eval.ExpectedValue)
	}
}

func TestEvaluate_TieBreakDeterministic(t *testing.T) {
	e := newTestEvaluator()

	// home=0.40, draw=0.40, away=0.20 -> "home" by canonical order
	eval, err := e.Evaluate(types.MarketMatchWinner,
		map[string]float64{"home": 0.40, "draw": 0.40, "away": 0.20},
		map[string]float64{"home": 2.50, "draw": 2.50, "away": 5.00})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if eval.Outcome != types.OutcomeHome {
		t.Errorf("tie-break outcome = %q, want home", eval.Outcome)
	}
	if eval.ProbabilityGap != 0 {
		t.Errorf("tied top outcomes must have gap 0, got %.6f", eval.ProbabilityGap)
	}
}

func TestEvaluate_MissingOdds(t *testing.T) {
	e := newTestEvaluator()

	eval, err := e.Evaluate(types.MarketBTTS,
		map[string]float64{"yes": 0.70, "no": 0.30},
		map[string]float64{"no": 3.00}) // no quote for predicted outcome
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !eval.NoMarket {
		t.Error("expected NoMarket flag")
	}
	if eval.ExpectedValue != nil {
		t.Error("EV must be nil when no quote covers the predicted outcome")
	}
}

func TestEvaluate_InvalidOdds(t *testing.T) {
	e := newTestEvaluator()

	tests := []struct {
		name string
		odds float64
	}{
		{"odds-below-one", 0.95},
		{"odds-exactly-one", 1.0},
		{"odds-zero", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Evaluate(types.MarketBTTS,
				map[string]float64{"yes": 0.70, "no": 0.30},
				map[string]float64{"yes": tt.odds})
			if err == nil {
				t.Fatal("expected error for invalid odds")
			}
			var oddsErr *types.OddsError
			if !errors.As(err, &oddsErr) {
				t.Errorf("expected OddsError, got %T", err)
			}
		})
	}
}

func TestScore_Monotonicity(t *testing.T) {
	e := newTestEvaluator()

	// Monotonic increasing in EV at fixed gap.
	if !(e.score(0.10, 0.2) > e.score(0.05, 0.2)) {
		t.Error("score not monotonic in EV")
	}

	// Monotonic increasing in gap at fixed EV.
	if !(e.score(0.05, 0.3) > e.score(0.05, 0.1)) {
		t.Error("score not monotonic in gap")
	}

	// EV clamped to [-1, 1].
	if e.score(5.0, 0) != e.score(1.0, 0) {
		t.Error("EV not clamped at 1")
	}
	if e.score(-5.0, 0) != e.score(-1.0, 0) {
		t.Error("EV not clamped at -1")
	}
}
