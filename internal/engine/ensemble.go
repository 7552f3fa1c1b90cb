package engine

import (
	"fmt"
	"math"

	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Agreement labels derived from the variance of model top-outcome estimates.
const (
	AgreementSingleModel = "single-model"
	AgreementHigh        = "high"
	AgreementMedium      = "medium"
	AgreementLow         = "low"
)

// EnsembleResult is the consensus view of one market across models.
type EnsembleResult struct {
	Market     types.MarketType   `json:"market"`
	Consensus  map[string]float64 `json:"consensus"` // outcome -> consensus probability
	TopOutcome string             `json:"top_outcome"`
	ModelCount int                `json:"model_count"`
	Variance   float64            `json:"variance"`
	Agreement  string             `json:"agreement"`
	Confidence float64            `json:"confidence"`
}

// AggregatorConfig holds ensemble policy. The variance thresholds are
// tunable; the contract is that higher variance never yields a stronger
// agreement label or a higher confidence.
type AggregatorConfig struct {
	HighVariance   float64 // below this: "high" agreement
	MediumVariance float64 // below this: "medium" agreement
	Logger         *zap.Logger
}

// Aggregator combines multiple models' outputs for the same market into a
// consensus probability, a dispersion measure, and an ensemble confidence.
type Aggregator struct {
	config AggregatorConfig
	logger *zap.Logger
}

// NewAggregator creates a new ensemble aggregator.
func NewAggregator(cfg AggregatorConfig) *Aggregator {
	return &Aggregator{
		config: cfg,
		logger: cfg.Logger,
	}
}

// Aggregate combines validated per-model probability vectors for one market.
// Weights are looked up by model ID; missing entries default to 1. Weights
// must be >= 0 and are normalized internally, so they need not sum to 1.
// At least one output is required.
func (a *Aggregator) Aggregate(market types.MarketType, outputs []*types.ModelOutput, weights map[string]float64) (*EnsembleResult, error) {
	if len(outputs) == 0 {
		return nil, fmt.Errorf("aggregate %s: no model outputs", market)
	}

	modelWeights := make([]float64, len(outputs))
	totalWeight := 0.0

	for i, output := range outputs {
		w := 1.0
		if weights != nil {
			if custom, ok := weights[output.ModelID]; ok {
				if custom < 0 {
					return nil, fmt.Errorf("aggregate %s: negative weight for model %s", market, output.ModelID)
				}
				w = custom
			}
		}
		modelWeights[i] = w
		totalWeight += w
	}

	if totalWeight == 0 {
		return nil, fmt.Errorf("aggregate %s: all model weights are zero", market)
	}

	// Weighted mean per outcome.
	consensus := make(map[string]float64)
	for i, output := range outputs {
		for outcome, p := range output.Probabilities {
			consensus[outcome] += p * modelWeights[i] / totalWeight
		}
	}

	top, _, _ := argmax(market, consensus)

	// Dispersion signal: variance of each model's estimate for the consensus
	// top outcome. Unweighted on purpose; it measures disagreement between
	// models, not their trusted blend.
	variance := topOutcomeVariance(outputs, top)

	result := &EnsembleResult{
		Market:     market,
		Consensus:  consensus,
		TopOutcome: top,
		ModelCount: len(outputs),
		Variance:   variance,
		Agreement:  a.agreementLabel(len(outputs), variance),
		Confidence: confidence(consensus[top], variance),
	}

	EnsembleModelCount.Observe(float64(len(outputs)))
	EnsembleVariance.Observe(variance)

	a.logger.Debug("ensemble-aggregated",
		zap.String("market", string(market)),
		zap.String("top-outcome", top),
		zap.Int("model-count", len(outputs)),
		zap.Float64("variance", variance),
		zap.String("agreement", result.Agreement))

	return result, nil
}

// agreementLabel maps model count and variance onto an agreement label. A
// lone model is labelled "single-model" rather than "high" so callers never
// mistake absence of disagreement for consensus.
func (a *Aggregator) agreementLabel(modelCount int, variance float64) string {
	if modelCount == 1 {
		return AgreementSingleModel
	}

	switch {
	case variance < a.config.HighVariance:
		return AgreementHigh
	case variance < a.config.MediumVariance:
		return AgreementMedium
	default:
		return AgreementLow
	}
}

// confidence down-weights the consensus top probability by model
// disagreement: higher variance always means lower confidence.
func confidence(topProb float64, variance float64) float64 {
	c := topProb * (1.0 - variance)
	return math.Max(0, math.Min(1, c))
}

// topOutcomeVariance computes the population variance of each model's
// probability estimate for the given outcome.
func topOutcomeVariance(outputs []*types.ModelOutput, outcome string) float64 {
	if len(outputs) <= 1 {
		return 0
	}

	mean := 0.0
	for _, output := range outputs {
		mean += output.Probabilities[outcome]
	}
	mean /= float64(len(outputs))

	variance := 0.0
	for _, output := range outputs {
		d := output.Probabilities[outcome] - mean
		variance += d * d
	}

	return variance / float64(len(outputs))
}
