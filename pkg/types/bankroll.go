package types

// RiskProfile is a user's configured appetite for variance.
type RiskProfile string

const (
	RiskConservative RiskProfile = "conservative"
	RiskBalanced     RiskProfile = "balanced"
	RiskAggressive   RiskProfile = "aggressive"
)

// Valid reports whether p is a known risk profile.
func (p RiskProfile) Valid() bool {
	switch p {
	case RiskConservative, RiskBalanced, RiskAggressive:
		return true
	default:
		return false
	}
}

// BankrollState is a snapshot of a user's bankroll used by the stake sizer.
// A nil DailyLossLimit means no daily limit is configured.
type BankrollState struct {
	Balance         float64     `json:"balance"`
	Currency        string      `json:"currency"`
	TotalProfitLoss float64     `json:"total_profit_loss"`
	DailyLossAmount float64     `json:"daily_loss_amount"`
	DailyLossLimit  *float64    `json:"daily_loss_limit,omitempty"`
	Profile         RiskProfile `json:"risk_profile"`
}

// DailyLimitReached reports whether the running daily loss has consumed the
// configured limit. Always false when no limit is set.
func (b *BankrollState) DailyLimitReached() bool {
	if b.DailyLossLimit == nil {
		return false
	}
	return b.DailyLossAmount >= *b.DailyLossLimit
}
