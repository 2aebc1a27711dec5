// Package profile persists player profiles and handles registration and login.
package profile

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Ashenafi-pixel/minicasino/account"
)

var (
	ErrNotFound      = errors.New("profile: not found")
	ErrUsernameTaken = errors.New("profile: username already taken")
)

// Store is the persistence boundary for profiles. One backend serves a deployment.
type Store interface {
	Load(ctx context.Context, playerID string) (account.Profile, error)
	FindByUsername(ctx context.Context, username string) (account.Profile, error)
	// Create inserts a new profile. ErrUsernameTaken when a non-empty username exists.
	Create(ctx context.Context, p account.Profile) error
	// Save upserts the profile by player id.
	Save(ctx context.Context, p account.Profile) error
	Close() error
}

// record is the serialised form of a profile. Money is kept as fixed 2dp strings.
type record struct {
	PlayerID         string    `json:"playerId"`
	Username         string    `json:"username,omitempty"`
	PasswordHash     string    `json:"passwordHash,omitempty"`
	Guest            bool      `json:"guest,omitempty"`
	Balance          string    `json:"balance"`
	CumulativeProfit string    `json:"cumulativeProfit"`
	TotalWagered     string    `json:"totalWagered"`
	TotalLost        string    `json:"totalLost"`
	WinCount         int       `json:"winCount"`
	LossCount        int       `json:"lossCount"`
	PushCount        int       `json:"pushCount"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func toRecord(p account.Profile) record {
	return record{
		PlayerID:         p.PlayerID,
		Username:         p.Username,
		PasswordHash:     p.PasswordHash,
		Guest:            p.Guest,
		Balance:          p.Balance.StringFixed(2),
		CumulativeProfit: p.CumulativeProfit.StringFixed(2),
		TotalWagered:     p.TotalWagered.StringFixed(2),
		TotalLost:        p.TotalLost.StringFixed(2),
		WinCount:         p.WinCount,
		LossCount:        p.LossCount,
		PushCount:        p.PushCount,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func (r record) profile() (account.Profile, error) {
	money := make([]decimal.Decimal, 4)
	for i, s := range []string{r.Balance, r.CumulativeProfit, r.TotalWagered, r.TotalLost} {
		if s == "" {
			money[i] = decimal.Zero
			continue
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return account.Profile{}, err
		}
		money[i] = d
	}
	return account.Profile{
		PlayerID:         r.PlayerID,
		Username:         r.Username,
		PasswordHash:     r.PasswordHash,
		Guest:            r.Guest,
		Balance:          money[0],
		CumulativeProfit: money[1],
		TotalWagered:     money[2],
		TotalLost:        money[3],
		WinCount:         r.WinCount,
		LossCount:        r.LossCount,
		PushCount:        r.PushCount,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}, nil
}
