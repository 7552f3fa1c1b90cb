package types

import "time"

// OddsQuote is a bookmaker snapshot of decimal odds for one market on one
// fixture. Multiple quotes per (fixture, market) may coexist; the engine
// consumes the freshest one unless a snapshot is pinned.
type OddsQuote struct {
	FixtureID  string             `json:"fixture_id"`
	Market     MarketType         `json:"market"`
	Bookmaker  string             `json:"bookmaker"`
	Odds       map[string]float64 `json:"odds"` // outcome -> decimal odds
	CapturedAt time.Time          `json:"captured_at"`
}

// Newer reports whether q was captured after other. A nil other is always
// older.
func (q *OddsQuote) Newer(other *OddsQuote) bool {
	if other == nil {
		return true
	}
	return q.CapturedAt.After(other.CapturedAt)
}

// Clone returns a deep copy of the quote.
func (q *OddsQuote) Clone() *OddsQuote {
	odds := make(map[string]float64, len(q.Odds))
	for outcome, price := range q.Odds {
		odds[outcome] = price
	}

	clone := *q
	clone.Odds = odds
	return &clone
}
