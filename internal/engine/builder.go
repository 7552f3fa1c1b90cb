package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mselser95/bet-recommender/pkg/types"
	"go.uber.org/zap"
)

// Builder orchestrates the full pipeline for one fixture: league guard,
// per-model validation, per-market ensemble aggregation, market selection,
// and stake sizing. It is pure over its inputs: no I/O, no shared state, so
// concurrent Build calls for different fixtures are safe and identical
// inputs yield identical scored fields.
type Builder struct {
	guard      *Guard
	evaluator  *Evaluator
	aggregator *Aggregator
	selector   *Selector
	sizer      *Sizer
	weights    map[string]float64
	logger     *zap.Logger
	now        func() time.Time
}

// BuilderConfig holds builder dependencies and per-model ensemble weights.
// Now is injectable for deterministic timestamps in tests; it defaults to
// time.Now.
type BuilderConfig struct {
	Guard      *Guard
	Evaluator  *Evaluator
	Aggregator *Aggregator
	Selector   *Selector
	Sizer      *Sizer
	Weights    map[string]float64
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewBuilder creates a new recommendation builder.
func NewBuilder(cfg BuilderConfig) *Builder {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Builder{
		guard:      cfg.Guard,
		evaluator:  cfg.Evaluator,
		aggregator: cfg.Aggregator,
		selector:   cfg.Selector,
		sizer:      cfg.Sizer,
		weights:    cfg.Weights,
		logger:     cfg.Logger,
		now:        now,
	}
}

// Build scores one fixture. Failures are scoped to the smallest unit: a
// cross-league model is skipped and audited, an invalid distribution
// excludes that model output, an invalid quote drops that market. Only a
// fixture with zero usable (model, market) combinations yields a nil
// recommendation, which callers must treat as a valid empty outcome.
// A nil bankroll degrades gracefully: the recommendation carries no stake.
func (b *Builder) Build(
	fixture *types.Fixture,
	outputs []*types.ModelOutput,
	quotes map[types.MarketType]*types.OddsQuote,
	bankroll *types.BankrollState,
) (*Recommendation, []*RejectionEvent, error) {
	start := time.Now()
	defer func() {
		BuildDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	authorized, rejections := b.partitionByLeague(fixture, outputs)
	if len(authorized) == 0 {
		EmptyRecommendationsTotal.WithLabelValues("no_authorized_model").Inc()
		b.logger.Info("no-authorized-model-for-fixture",
			zap.String("fixture-id", fixture.ID),
			zap.String("league", fixture.League),
			zap.Int("rejected-count", len(rejections)))
		return nil, rejections, nil
	}

	candidates := b.evaluateMarkets(fixture, authorized, quotes)
	if len(candidates) == 0 {
		EmptyRecommendationsTotal.WithLabelValues("no_usable_market").Inc()
		return nil, rejections, nil
	}

	selection, ok := b.selector.SelectBest(candidates)
	if !ok {
		EmptyRecommendationsTotal.WithLabelValues("no_signal").Inc()
		b.logger.Info("no-signal-market-for-fixture",
			zap.String("fixture-id", fixture.ID),
			zap.Int("market-count", len(candidates)))
		return nil, rejections, nil
	}

	rec := &Recommendation{
		ID:          uuid.New().String(),
		FixtureID:   fixture.ID,
		Fixture:     fixture.Name(),
		League:      fixture.League,
		Market:      selection.Market,
		Track:       selection.Track,
		Outcome:     selection.Evaluation.Outcome,
		Evaluation:  selection.Evaluation,
		Ensemble:    selection.Ensemble,
		Confidence:  selection.Ensemble.Confidence,
		GeneratedAt: b.now(),
	}

	if bankroll != nil {
		rec.Stake = b.sizer.Size(
			selection.Ensemble.Confidence,
			*selection.Evaluation.ExpectedValue,
			bankroll,
			selection.Ensemble.Agreement,
		)
	}

	rec.Explanation = b.explain(fixture, rec)

	RecommendationsBuiltTotal.WithLabelValues(string(selection.Track)).Inc()

	b.logger.Info("recommendation-built",
		zap.String("recommendation-id", rec.ID),
		zap.String("fixture-id", fixture.ID),
		zap.String("market", string(rec.Market)),
		zap.String("outcome", rec.Outcome),
		zap.String("track", string(rec.Track)),
		zap.Float64("confidence", rec.Confidence))

	return rec, rejections, nil
}

// partitionByLeague runs the league guard over every model output and splits
// them into authorized outputs and rejection audit events.
func (b *Builder) partitionByLeague(fixture *types.Fixture, outputs []*types.ModelOutput) ([]*types.ModelOutput, []*RejectionEvent) {
	authorized := make([]*types.ModelOutput, 0, len(outputs))
	var rejections []*RejectionEvent
	seen := make(map[string]bool)

	for _, output := range outputs {
		err := b.guard.Authorize(output, fixture)
		if err == nil {
			authorized = append(authorized, output)
			continue
		}

		var crossLeague *types.CrossLeagueError
		if errors.As(err, &crossLeague) && !seen[output.ModelID] {
			// One audit event per (model, fixture) pair even when the model
			// submitted outputs for several markets.
			seen[output.ModelID] = true
			rejections = append(rejections, &RejectionEvent{
				ID:            uuid.New().String(),
				ModelID:       crossLeague.ModelID,
				FixtureID:     crossLeague.FixtureID,
				FixtureLeague: crossLeague.FixtureLeague,
				Authorized:    crossLeague.Authorized,
				RejectedAt:    b.now(),
			})
		}
	}

	return authorized, rejections
}

// evaluateMarkets groups outputs by market, validates each model's
// distribution, aggregates the survivors, and evaluates the consensus
// against the freshest quote for that market.
func (b *Builder) evaluateMarkets(
	fixture *types.Fixture,
	outputs []*types.ModelOutput,
	quotes map[types.MarketType]*types.OddsQuote,
) map[types.MarketType]Candidate {
	byMarket := make(map[types.MarketType][]*types.ModelOutput)

	for _, output := range outputs {
		if !output.Market.Valid() {
			ModelOutputsExcludedTotal.WithLabelValues("unknown_market").Inc()
			continue
		}

		normalized, err := b.evaluator.ValidateProbabilities(output.ModelID, output.Market, output.Probabilities)
		if err != nil {
			ModelOutputsExcludedTotal.WithLabelValues("invalid_distribution").Inc()
			b.logger.Warn("model-output-excluded",
				zap.String("model-id", output.ModelID),
				zap.String("fixture-id", fixture.ID),
				zap.String("market", string(output.Market)),
				zap.Error(err))
			continue
		}

		validated := *output
		validated.Probabilities = normalized
		byMarket[output.Market] = append(byMarket[output.Market], &validated)
	}

	candidates := make(map[types.MarketType]Candidate, len(byMarket))

	for market, marketOutputs := range byMarket {
		ensemble, err := b.aggregator.Aggregate(market, marketOutputs, b.weights)
		if err != nil {
			b.logger.Warn("ensemble-aggregation-failed",
				zap.String("fixture-id", fixture.ID),
				zap.String("market", string(market)),
				zap.Error(err))
			continue
		}

		var odds map[string]float64
		if quote := quotes[market]; quote != nil {
			odds = quote.Odds
		}

		eval, err := b.evaluator.Evaluate(market, ensemble.Consensus, odds)
		if err != nil {
			// Invalid odds drop this market only; other markets proceed.
			MarketsDroppedTotal.WithLabelValues("invalid_odds").Inc()
			b.logger.Warn("market-evaluation-failed",
				zap.String("fixture-id", fixture.ID),
				zap.String("market", string(market)),
				zap.Error(err))
			continue
		}

		candidates[market] = Candidate{Evaluation: eval, Ensemble: ensemble}
	}

	return candidates
}

// explain renders the natural-language explanation for a recommendation.
func (b *Builder) explain(fixture *types.Fixture, rec *Recommendation) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s (%s): %s on the %s market at %.1f%% consensus probability",
		fixture.Name(), fixture.League, strings.ToUpper(rec.Outcome), rec.Market,
		rec.Evaluation.Probability*100)

	if rec.Evaluation.ExpectedValue != nil {
		fmt.Fprintf(&sb, ", %.1f%% edge at odds %.2f", *rec.Evaluation.ExpectedValue*100, rec.Evaluation.Odds)
	}

	if rec.Ensemble.ModelCount == 1 {
		sb.WriteString(". Based on a single model")
	} else {
		fmt.Fprintf(&sb, ". %d models with %s agreement", rec.Ensemble.ModelCount, rec.Ensemble.Agreement)
	}

	fmt.Fprintf(&sb, "; classified as a %s bet.", rec.Track)

	return sb.String()
}
