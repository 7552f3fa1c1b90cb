package types

// MarketType identifies a betting market on a fixture.
type MarketType string

const (
	// MarketMatchWinner is the classic 1X2 market (home/draw/away).
	MarketMatchWinner MarketType = "1x2"

	// MarketDoubleChance covers two of the three 1X2 outcomes per selection.
	MarketDoubleChance MarketType = "double_chance"

	// MarketOverUnder25 is the over/under 2.5 goals market.
	MarketOverUnder25 MarketType = "over_under_2.5"

	// MarketBTTS is the both-teams-to-score market.
	MarketBTTS MarketType = "btts"
)

// Match winner outcomes.
const (
	OutcomeHome = "home"
	OutcomeDraw = "draw"
	OutcomeAway = "away"
)

// Double chance outcomes.
const (
	OutcomeHomeOrDraw = "1x"
	OutcomeHomeOrAway = "12"
	OutcomeDrawOrAway = "x2"
)

// Over/under outcomes.
const (
	OutcomeOver  = "over"
	OutcomeUnder = "under"
)

// BTTS outcomes.
const (
	OutcomeYes = "yes"
	OutcomeNo  = "no"
)

// AllMarkets lists every supported market in priority order.
//
//nolint:gochecknoglobals // Fixed market catalogue
var AllMarkets = []MarketType{
	MarketMatchWinner,
	MarketDoubleChance,
	MarketOverUnder25,
	MarketBTTS,
}

// Valid reports whether m is a supported market type.
func (m MarketType) Valid() bool {
	switch m {
	case MarketMatchWinner, MarketDoubleChance, MarketOverUnder25, MarketBTTS:
		return true
	default:
		return false
	}
}

// Closed reports whether the market's outcomes are mutually exclusive and
// exhaustive, i.e. probabilities must sum to 1. Double chance selections
// overlap (each covers two 1X2 outcomes), so it is the one open market.
func (m MarketType) Closed() bool {
	return m != MarketDoubleChance
}

// OutcomeOrder returns the canonical outcome order for the market.
// The order doubles as the deterministic tie-break when two outcomes
// carry the same probability.
func (m MarketType) OutcomeOrder() []string {
	switch m {
	case MarketMatchWinner:
		return []string{OutcomeHome, OutcomeDraw, OutcomeAway}
	case MarketDoubleChance:
		return []string{OutcomeHomeOrDraw, OutcomeHomeOrAway, OutcomeDrawOrAway}
	case MarketOverUnder25:
		return []string{OutcomeOver, OutcomeUnder}
	case MarketBTTS:
		return []string{OutcomeYes, OutcomeNo}
	default:
		return nil
	}
}

// Priority returns the market's rank for deterministic selection tie-breaks.
// Lower is stronger: 1X2 > double chance > over/under > BTTS.
func (m MarketType) Priority() int {
	switch m {
	case MarketMatchWinner:
		return 0
	case MarketDoubleChance:
		return 1
	case MarketOverUnder25:
		return 2
	case MarketBTTS:
		return 3
	default:
		return 100
	}
}
