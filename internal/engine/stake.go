package engine

import (
	"math"

	"github.com/mselser95/bet-recommender/pkg/types"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StakeRecommendation is the sized bet for one recommendation. Amount is
// rounded to the currency's minor unit. A zero stake with warnings is a
// valid outcome; the engine never blocks, it reports and lets the caller
// enforce hard stops.
type StakeRecommendation struct {
	Amount            float64           `json:"amount"`
	Percent           float64           `json:"percent"` // fraction of bankroll, [0, cap]
	Currency          string            `json:"currency"`
	RiskProfile       types.RiskProfile `json:"risk_profile"`
	DailyLimitReached bool              `json:"is_daily_limit_reached"`
	Warnings          []string          `json:"warnings"`
}

// SizerConfig holds staking policy. Multipliers map risk profiles to scalars
// in (0, 1]; the mapping must be monotone (aggressive >= balanced >=
// conservative). PerBetCapPct caps any single stake as a fraction of the
// bankroll.
type SizerConfig struct {
	PerBetCapPct float64
	Multipliers  map[types.RiskProfile]float64
	Logger       *zap.Logger
}

// Sizer computes recommended stakes from confidence, edge and bankroll
// context using a fractional-edge (Kelly-like) rule.
type Sizer struct {
	config SizerConfig
	logger *zap.Logger
}

// NewSizer creates a new stake sizer.
func NewSizer(cfg SizerConfig) *Sizer {
	return &Sizer{
		config: cfg,
		logger: cfg.Logger,
	}
}

// Size computes the stake for a recommendation. The raw fraction is
// max(0, EV) x confidence x risk multiplier, clamped to [0, PerBetCapPct].
// When the daily loss limit is already consumed the stake is zero with a
// warning, regardless of edge. Warnings are always populated for zero EV,
// capped stakes, reached limits and low model agreement.
func (s *Sizer) Size(confidence float64, expectedValue float64, bankroll *types.BankrollState, agreement string) *StakeRecommendation {
	rec := &StakeRecommendation{
		Currency:    bankroll.Currency,
		RiskProfile: bankroll.Profile,
		Warnings:    []string{},
	}

	if agreement == AgreementLow {
		rec.Warnings = append(rec.Warnings, "low model agreement: ensemble members disagree on this outcome")
	}

	if bankroll.DailyLimitReached() {
		rec.DailyLimitReached = true
		rec.Warnings = append(rec.Warnings, "daily loss limit reached: no further stakes recommended today")
		StakesZeroTotal.WithLabelValues("daily_limit").Inc()
		return rec
	}

	edge := math.Max(0, expectedValue)
	if edge == 0 {
		rec.Warnings = append(rec.Warnings, "no positive expected value: flat or negative edge on this market")
		StakesZeroTotal.WithLabelValues("no_edge").Inc()
		return rec
	}

	fraction := edge * confidence * s.multiplier(bankroll.Profile)
	if fraction > s.config.PerBetCapPct {
		fraction = s.config.PerBetCapPct
		rec.Warnings = append(rec.Warnings, "stake capped by per-bet ceiling")
		StakesCappedTotal.Inc()
	}

	rec.Percent = fraction
	rec.Amount = roundToMinorUnit(fraction*bankroll.Balance, bankroll.Currency)

	StakePercentObserved.Observe(fraction)

	s.logger.Debug("stake-sized",
		zap.Float64("confidence", confidence),
		zap.Float64("expected-value", expectedValue),
		zap.Float64("fraction", fraction),
		zap.Float64("amount", rec.Amount),
		zap.String("risk-profile", string(bankroll.Profile)))

	return rec
}

// multiplier maps a risk profile onto its staking scalar. Unknown profiles
// fall back to the most conservative configured multiplier.
func (s *Sizer) multiplier(profile types.RiskProfile) float64 {
	if m, ok := s.config.Multipliers[profile]; ok {
		return m
	}

	fallback := math.Inf(1)
	for _, m := range s.config.Multipliers {
		if m < fallback {
			fallback = m
		}
	}
	if math.IsInf(fallback, 1) {
		return 0
	}
	return fallback
}

// minorUnitExponents lists currencies whose minor unit is not 2 decimals.
//
//nolint:gochecknoglobals // Static currency table
var minorUnitExponents = map[string]int32{
	"JPY": 0,
	"KRW": 0,
	"BHD": 3,
	"KWD": 3,
}

// roundToMinorUnit rounds an amount to the currency's minor unit using
// decimal arithmetic to avoid float drift on the cent boundary.
func roundToMinorUnit(amount float64, currency string) float64 {
	exponent := int32(2)
	if e, ok := minorUnitExponents[currency]; ok {
		exponent = e
	}

	rounded, _ := decimal.NewFromFloat(amount).Round(exponent).Float64()
	return rounded
}
