package types

import "strings"

// ModelOutput is one trained model's probability vector for one market on one
// fixture. The authorized league aliases travel with the output so the league
// guard can be enforced centrally, not trusted to each model.
type ModelOutput struct {
	ModelID       string             `json:"model_id"`
	FixtureID     string             `json:"fixture_id"`
	Market        MarketType         `json:"market"`
	Leagues       []string           `json:"leagues"`       // authorized league aliases
	Probabilities map[string]float64 `json:"probabilities"` // outcome -> probability
}

// AuthorizedFor reports whether league is in the model's authorized alias set.
// Matching is case-insensitive exact membership; no substring or fuzzy
// matching, so "la liga" never authorizes "liga mx".
func (m *ModelOutput) AuthorizedFor(league string) bool {
	needle := NormalizeLeague(league)
	for _, alias := range m.Leagues {
		if NormalizeLeague(alias) == needle {
			return true
		}
	}
	return false
}

// NormalizeLeague canonicalizes a league tag for comparison.
func NormalizeLeague(league string) string {
	return strings.ToLower(strings.TrimSpace(league))
}
