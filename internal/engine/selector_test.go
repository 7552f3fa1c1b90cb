package engine

import (
	"testing"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

func newTestSelector() *Selector {
	return NewSelector(SelectorConfig{
		MinGap:      testMinGap,
		SafeGap:     testSafeGap,
		SafeEVFloor: testSafeEVFloor,
		ValueEV:     testValueEV,
		Logger:      zap.NewNop(),
	})
}

func candidate(market types.MarketType, outcome string, prob, gap, ev, score float64) Candidate {
	return Candidate{
		Evaluation: &Evaluation{
			Market:         market,
			Outcome:        outcome,
			Probability:    prob,
			ProbabilityGap: gap,
			ExpectedValue:  &ev,
			Score:          score,
		},
		Ensemble: &EnsembleResult{
			Market:     market,
			TopOutcome: outcome,
			ModelCount: 2,
			Agreement:  AgreementHigh,
			Confidence: prob,
		},
	}
}

func noQuoteCandidate(market types.MarketType) Candidate {
	return Candidate{
		Evaluation: &Evaluation{Market: market, NoMarket: true},
		Ensemble:   &EnsembleResult{Market: market},
	}
}

func TestSelectBest_RanksByScore(t *testing.T) {
	s := newTestSelector()

	candidates := map[types.MarketType]Candidate{
		types.MarketMatchWinner: candidate(types.MarketMatchWinner, "home", 0.55, 0.30, 0.045, 14.7),
		types.MarketBTTS:        candidate(types.MarketBTTS, "yes", 0.65, 0.30, 0.11, 18.6),
	}

	selection, ok := s.SelectBest(candidates)
	if !ok {
		t.Fatal("expected a selection")
	}

	if selection.Market != types.MarketBTTS {
		t.Errorf("selected %s, want btts (higher score)", selection.Market)
	}
}

func TestSelectBest_TieBreaks(t *testing.T) {
	s := newTestSelector()

	t.Run("ev-breaks-score-tie", func(t *testing.T) {
		candidates := map[types.MarketType]Candidate{
			types.MarketBTTS:        candidate(types.MarketBTTS, "yes", 0.60, 0.20, 0.08, 12.0),
			types.MarketOverUnder25: candidate(types.MarketOverUnder25, "over", 0.60, 0.20, 0.10, 12.0),
		}

		selection, ok := s.SelectBest(candidates)
		if !ok {
			t.Fatal("expected a selection")
		}
		if selection.Market != types.MarketOverUnder25 {
			t.Errorf("selected %s, want over_under_2.5 (higher EV)", selection.Market)
		}
	})

	t.Run("market-priority-breaks-full-tie", func(t *testing.T) {
		candidates := map[types.MarketType]Candidate{
			types.MarketBTTS:        candidate(types.MarketBTTS, "yes", 0.60, 0.20, 0.08, 12.0),
			types.MarketMatchWinner: candidate(types.MarketMatchWinner, "home", 0.60, 0.20, 0.08, 12.0),
		}

		selection, ok := s.SelectBest(candidates)
		if !ok {
			t.Fatal("expected a selection")
		}
		if selection.Market != types.MarketMatchWinner {
			t.Errorf("selected %s, want 1x2 (market priority)", selection.Market)
		}
	})
}

func TestSelectBest_FiltersNoise(t *testing.T) {
	s := newTestSelector()

	t.Run("below-min-gap-never-selected", func(t *testing.T) {
		candidates := map[types.MarketType]Candidate{
			types.MarketMatchWinner: candidate(types.MarketMatchWinner, "home", 0.36, 0.02, 0.20, 14.0),
		}

		if _, ok := s.SelectBest(candidates); ok {
			t.Error("market below min gap must not be selected")
		}
	})

	t.Run("no-quote-filtered", func(t *testing.T) {
		candidates := map[types.MarketType]Candidate{
			types.MarketBTTS: noQuoteCandidate(types.MarketBTTS),
		}

		if _, ok := s.SelectBest(candidates); ok {
			t.Error("market without a quote must not be selected")
		}
	})

	t.Run("empty-input-valid-empty-outcome", func(t *testing.T) {
		if _, ok := s.SelectBest(nil); ok {
			t.Error("empty candidate map must yield no selection")
		}
	})
}

func TestClassify(t *testing.T) {
	s := newTestSelector()

	tests := []struct {
		name  string
		gap   float64
		ev    float64
		track Track
	}{
		{"wide-gap-near-breakeven-safe", 0.30, -0.01, TrackSafe},
		{"wide-gap-positive-ev-safe", 0.40, 0.03, TrackSafe},
		{"narrow-gap-strong-edge-value", 0.08, 0.12, TrackValue},
		{"signal-but-neither-speculative", 0.10, 0.01, TrackSpeculative},
		{"wide-gap-deep-negative-ev-speculative", 0.30, -0.10, TrackSpeculative},
		// Negative EV is never classified "value".
		{"negative-ev-never-value", 0.06, -0.05, TrackSpeculative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := tt.ev
			eval := &Evaluation{ProbabilityGap: tt.gap, ExpectedValue: &ev}

			if track := s.classify(eval); track != tt.track {
				t.Errorf("classify(gap=%.2f, ev=%.2f) = %s, want %s", tt.gap, tt.ev, track, tt.track)
			}
		})
	}
}
