package engine

import (
	"sort"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Track classifies the character of a recommendation's risk/reward profile.
type Track string

const (
	TrackSafe        Track = "safe"
	TrackValue       Track = "value"
	TrackSpeculative Track = "speculative"
)

// Candidate pairs a market's evaluation with its ensemble result.
type Candidate struct {
	Evaluation *Evaluation
	Ensemble   *EnsembleResult
}

// Selection is the chosen market plus its track classification.
type Selection struct {
	Market     types.MarketType
	Track      Track
	Evaluation *Evaluation
	Ensemble   *EnsembleResult
}

// SelectorConfig holds selection and classification policy. The thresholds
// are tunable; the classification rules themselves are the contract:
// negative expected value is never "value", and nothing below MinGap is
// ever selected.
type SelectorConfig struct {
	MinGap      float64 // minimum probability gap to count as signal
	SafeGap     float64 // gap at or above this qualifies for "safe"
	SafeEVFloor float64 // minimum EV (may be slightly negative) for "safe"
	ValueEV     float64 // EV at or above this qualifies for "value"
	Logger      *zap.Logger
}

// Selector picks the best market across a fixture's evaluations by a
// deterministic ranking rule.
type Selector struct {
	config SelectorConfig
	logger *zap.Logger
}

// NewSelector creates a new market selector.
func NewSelector(cfg SelectorConfig) *Selector {
	return &Selector{
		config: cfg,
		logger: cfg.Logger,
	}
}

// SelectBest filters out no-quote and no-signal markets, ranks the rest by
// score descending (ties: expected value descending, then fixed market
// priority), and classifies the winner into a track. The second return is
// false when no market survives filtering: a valid empty outcome, not an
// error, so callers never get forced into a low-quality pick.
func (s *Selector) SelectBest(candidates map[types.MarketType]Candidate) (*Selection, bool) {
	usable := make([]Candidate, 0, len(candidates))

	for market, cand := range candidates {
		if cand.Evaluation == nil || cand.Evaluation.ExpectedValue == nil {
			SelectionsFilteredTotal.WithLabelValues("no_market").Inc()
			continue
		}
		if cand.Evaluation.ProbabilityGap < s.config.MinGap {
			SelectionsFilteredTotal.WithLabelValues("below_min_gap").Inc()
			s.logger.Debug("market-filtered-no-signal",
				zap.String("market", string(market)),
				zap.Float64("gap", cand.Evaluation.ProbabilityGap),
				zap.Float64("min-gap", s.config.MinGap))
			continue
		}
		usable = append(usable, cand)
	}

	if len(usable) == 0 {
		return nil, false
	}

	sort.Slice(usable, func(i, j int) bool {
		a, b := usable[i].Evaluation, usable[j].Evaluation
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if *a.ExpectedValue != *b.ExpectedValue {
			return *a.ExpectedValue > *b.ExpectedValue
		}
		return a.Market.Priority() < b.Market.Priority()
	})

	best := usable[0]
	track := s.classify(best.Evaluation)
	TrackAssignedTotal.WithLabelValues(string(track)).Inc()

	return &Selection{
		Market:     best.Evaluation.Market,
		Track:      track,
		Evaluation: best.Evaluation,
		Ensemble:   best.Ensemble,
	}, true
}

// classify assigns the bet track. Safe is confidence-led (wide gap, near
// break-even or better); value is edge-led (positive EV regardless of gap);
// everything else that carried signal is speculative.
func (s *Selector) classify(eval *Evaluation) Track {
	ev := *eval.ExpectedValue

	if eval.ProbabilityGap >= s.config.SafeGap && ev >= s.config.SafeEVFloor {
		return TrackSafe
	}
	if ev >= s.config.ValueEV && ev > 0 {
		return TrackValue
	}
	return TrackSpeculative
}
