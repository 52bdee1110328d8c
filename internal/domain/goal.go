package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SavingsGoal tracks progress toward a target amount.
type SavingsGoal struct {
	ID           string          `json:"id,omitempty"`
	UserID       string          `json:"user_id"`
	Name         string          `json:"name"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	SavedAmount  decimal.Decimal `json:"saved_amount"`
	Deadline     string          `json:"deadline,omitempty"` // yyyy-MM-dd
	CreatedAt    time.Time       `json:"created_at"`
}

// Progress returns the saved/target ratio in [0, 1]. A zero target
// reports 0 rather than dividing by zero.
func (g *SavingsGoal) Progress() decimal.Decimal {
	if g.TargetAmount.IsZero() {
		return decimal.Zero
	}
	ratio := g.SavedAmount.Div(g.TargetAmount)
	one := decimal.NewFromInt(1)
	if ratio.GreaterThan(one) {
		return one
	}
	return ratio
}
