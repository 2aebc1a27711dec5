package account

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the persisted per-player record. Money fields are 2-place decimals.
type Profile struct {
	PlayerID         string          `json:"playerId"`
	Username         string          `json:"username,omitempty"`
	PasswordHash     string          `json:"-"`
	Guest            bool            `json:"guest,omitempty"`
	Balance          decimal.Decimal `json:"balance"`
	CumulativeProfit decimal.Decimal `json:"cumulativeProfit"`
	TotalWagered     decimal.Decimal `json:"totalWagered"`
	TotalLost        decimal.Decimal `json:"totalLost"`
	WinCount         int             `json:"winCount"`
	LossCount        int             `json:"lossCount"`
	PushCount        int             `json:"pushCount"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// NewProfile returns a fresh profile holding the starting balance.
func NewProfile(playerID string, balance decimal.Decimal) Profile {
	now := time.Now().UTC()
	return Profile{
		PlayerID:         playerID,
		Balance:          Round(balance),
		CumulativeProfit: decimal.Zero,
		TotalWagered:     decimal.Zero,
		TotalLost:        decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Round rounds a currency amount to 2 places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Games returns the number of settled rounds recorded on the profile.
func (p Profile) Games() int {
	return p.WinCount + p.LossCount + p.PushCount
}
