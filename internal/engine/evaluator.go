package engine

import (
	"math"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// ProbabilitySumTolerance is the maximum deviation from 1.0 accepted for a
// closed market's probability distribution. Distributions within tolerance
// are renormalized; anything further off is rejected outright.
const ProbabilitySumTolerance = 0.01

// Evaluation is the per-market verdict: predicted outcome, its edge against
// the quoted odds, and a 0-100 score combining edge and signal strength.
// ExpectedValue is nil when no quote covers the predicted outcome; such
// evaluations carry NoMarket=true instead of a fabricated number.
type Evaluation struct {
	Market         types.MarketType `json:"market"`
	Outcome        string           `json:"outcome"`
	Probability    float64          `json:"probability"`
	ProbabilityGap float64          `json:"probability_gap"`
	Odds           float64          `json:"odds,omitempty"`
	ExpectedValue  *float64         `json:"expected_value,omitempty"`
	NoMarket       bool             `json:"no_market,omitempty"`
	Score          float64          `json:"score"`
}

// EvaluatorConfig holds market evaluation policy. The weights are tunable;
// the contract is that the score is monotonic increasing in both expected
// value and probability gap.
type EvaluatorConfig struct {
	EVWeight  float64
	GapWeight float64
	Logger    *zap.Logger
}

// Evaluator scores a single market from a probability vector and odds.
type Evaluator struct {
	config EvaluatorConfig
	logger *zap.Logger
}

// NewEvaluator creates a new market evaluator.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	return &Evaluator{
		config: cfg,
		logger: cfg.Logger,
	}
}

// ValidateProbabilities checks and normalizes a market probability vector.
// Every probability must lie in [0,1] and cover a known outcome. For closed
// markets the sum must be within ProbabilitySumTolerance of 1; the returned
// map is renormalized so it sums to exactly 1. Violations return a
// *types.ProbabilityError.
func (e *Evaluator) ValidateProbabilities(modelID string, market types.MarketType, probs map[string]float64) (map[string]float64, error) {
	if len(probs) == 0 {
		return nil, &types.ProbabilityError{ModelID: modelID, Market: market, Reason: "empty distribution"}
	}

	order := market.OutcomeOrder()
	known := make(map[string]bool, len(order))
	for _, outcome := range order {
		known[outcome] = true
	}

	sum := 0.0
	for outcome, p := range probs {
		if !known[outcome] {
			return nil, &types.ProbabilityError{
				ModelID: modelID,
				Market:  market,
				Reason:  "unknown outcome " + outcome,
			}
		}
		if p < 0 || p > 1 || math.IsNaN(p) {
			return nil, &types.ProbabilityError{
				ModelID: modelID,
				Market:  market,
				Reason:  "probability out of [0,1] for outcome " + outcome,
			}
		}
		sum += p
	}

	if !market.Closed() {
		// Open markets (double chance) have overlapping outcomes; pass through.
		return cloneProbs(probs), nil
	}

	if math.Abs(sum-1.0) > ProbabilitySumTolerance {
		return nil, &types.ProbabilityError{
			ModelID: modelID,
			Market:  market,
			Reason:  "sum outside tolerance",
			Sum:     sum,
		}
	}

	normalized := make(map[string]float64, len(probs))
	for outcome, p := range probs {
		normalized[outcome] = p / sum
	}

	return normalized, nil
}

// Evaluate computes the market evaluation for one probability vector against
// one odds quote. A nil quote (market not offered) yields an evaluation with
// a nil expected value and NoMarket set. Odds <= 1.0 for the predicted
// outcome return a *types.OddsError.
func (e *Evaluator) Evaluate(market types.MarketType, probs map[string]float64, odds map[string]float64) (*Evaluation, error) {
	outcome, top, second := argmax(market, probs)
	gap := top - second

	eval := &Evaluation{
		Market:         market,
		Outcome:        outcome,
		Probability:    top,
		ProbabilityGap: gap,
	}

	price, quoted := odds[outcome]
	if !quoted {
		eval.NoMarket = true
		MarketsWithoutQuoteTotal.WithLabelValues(string(market)).Inc()

		e.logger.Debug("no-odds-for-predicted-outcome",
			zap.String("market", string(market)),
			zap.String("outcome", outcome))

		return eval, nil
	}

	if price <= 1.0 || math.IsNaN(price) {
		return nil, &types.OddsError{Market: market, Outcome: outcome, Odds: price}
	}

	ev := top*price - 1.0
	eval.Odds = price
	eval.ExpectedValue = &ev
	eval.Score = e.score(ev, gap)

	MarketsEvaluatedTotal.WithLabelValues(string(market)).Inc()
	ExpectedValueObserved.Observe(ev)

	return eval, nil
}

// score maps expected value and probability gap onto 0-100. Both inputs are
// weighted after clamping EV to [-1, 1]; the gap is already in [0, 1].
func (e *Evaluator) score(ev float64, gap float64) float64 {
	clampedEV := math.Max(-1, math.Min(1, ev))
	return 100*clampedEV*e.config.EVWeight + 100*gap*e.config.GapWeight
}

// argmax returns the highest-probability outcome, its probability, and the
// second-highest probability. Ties break by the market's canonical outcome
// order so the result is deterministic.
func argmax(market types.MarketType, probs map[string]float64) (string, float64, float64) {
	var (
		best       string
		top        = math.Inf(-1)
		second     = 0.0
		haveSecond bool
	)

	for _, outcome := range market.OutcomeOrder() {
		p, ok := probs[outcome]
		if !ok {
			continue
		}
		if p > top {
			if best != "" {
				second = top
				haveSecond = true
			}
			best = outcome
			top = p
		} else if !haveSecond || p > second {
			second = p
			haveSecond = true
		}
	}

	if !haveSecond {
		second = 0
	}

	return best, top, second
}

func cloneProbs(probs map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(probs))
	for outcome, p := range probs {
		out[outcome] = p
	}
	return out
}
