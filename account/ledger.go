package account

import (
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrInsufficientFunds = errors.New("account: insufficient funds")
	ErrInvalidAmount     = errors.New("account: invalid amount")
)

// Result is the recorded outcome of one settled round.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
	ResultPush Result = "push"
)

// Ledger holds one player's balance and running statistics.
// The balance never goes negative: a debit larger than the balance is rejected whole.
type Ledger struct {
	mu sync.Mutex
	p  Profile
}

func NewLedger(p Profile) *Ledger {
	if p.Balance.IsNegative() {
		p.Balance = decimal.Zero
	}
	p.Balance = Round(p.Balance)
	return &Ledger{p: p}
}

func (l *Ledger) PlayerID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.PlayerID
}

func (l *Ledger) Balance() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p.Balance
}

// Debit takes a stake: balance -= amount, totalWagered += amount.
func (l *Ledger) Debit(amount decimal.Decimal) error {
	amount = Round(amount)
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if amount.GreaterThan(l.p.Balance) {
		return ErrInsufficientFunds
	}
	l.p.Balance = l.p.Balance.Sub(amount)
	l.p.TotalWagered = l.p.TotalWagered.Add(amount)
	l.touch()
	return nil
}

// Credit adds a payout or refund to the balance. Zero is a no-op.
func (l *Ledger) Credit(amount decimal.Decimal) error {
	amount = Round(amount)
	if amount.IsNegative() {
		return ErrInvalidAmount
	}
	if amount.IsZero() {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p.Balance = l.p.Balance.Add(amount)
	l.touch()
	return nil
}

// Refund returns a stake that was never played and backs it out of totalWagered.
func (l *Ledger) Refund(amount decimal.Decimal) error {
	amount = Round(amount)
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.p.Balance = l.p.Balance.Add(amount)
	l.p.TotalWagered = l.p.TotalWagered.Sub(amount)
	if l.p.TotalWagered.IsNegative() {
		l.p.TotalWagered = decimal.Zero
	}
	l.touch()
	return nil
}

// RecordOutcome books one settled round. net is the signed profit change.
func (l *Ledger) RecordOutcome(result Result, wager, net decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch result {
	case ResultWin:
		l.p.WinCount++
	case ResultLoss:
		l.p.LossCount++
		l.p.TotalLost = l.p.TotalLost.Add(Round(wager))
	case ResultPush:
		l.p.PushCount++
	}
	l.p.CumulativeProfit = l.p.CumulativeProfit.Add(Round(net))
	l.touch()
}

// Profile returns a copy of the current field set for persistence.
func (l *Ledger) Profile() Profile {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.p
}

// touch stamps the update time. Caller must hold l.mu.
func (l *Ledger) touch() {
	l.p.UpdatedAt = time.Now().UTC()
}
