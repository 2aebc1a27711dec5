package crash

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ashenafi-pixel/minicasino/account"
)

var (
	ErrInvalidBet             = errors.New("crash: invalid bet")
	ErrInvalidStateTransition = errors.New("crash: invalid state transition")
	ErrWatchOnly              = errors.New("crash: action not allowed on a watch-only round")
	ErrNotWatchOnly           = errors.New("crash: skip is only allowed on a watch-only round")
	ErrInvalidAutoCashOut     = errors.New("crash: auto cash-out target must be above 1.00")
)

type State string

const (
	StateIdle    State = "idle"
	StateArmed   State = "armed"
	StateRunning State = "running"
	StateSettled State = "settled"
)

type Outcome string

const (
	OutcomeCashedOut Outcome = "cashed_out"
	OutcomeCrashed   Outcome = "crashed"
)

type Settlement struct {
	RoundID    string          `json:"roundId"`
	Outcome    Outcome         `json:"outcome"`
	WatchOnly  bool            `json:"watchOnly"`
	Auto       bool            `json:"auto,omitempty"` // settled by the auto cash-out target
	Bet        decimal.Decimal `json:"bet"`
	Multiplier decimal.Decimal `json:"multiplier"` // cash-out multiplier, or the crash point on a crash
	CrashPoint decimal.Decimal `json:"crashPoint"`
	Payout     decimal.Decimal `json:"payout"`
	Net        decimal.Decimal `json:"net"`
	Steps      int             `json:"steps"`
	SettledAt  time.Time       `json:"settledAt"`
}

// Snapshot is the observable round state. CrashPoint stays nil until the round settles.
type Snapshot struct {
	RoundID     string           `json:"roundId,omitempty"`
	State       State            `json:"state"`
	WatchOnly   bool             `json:"watchOnly"`
	Bet         decimal.Decimal  `json:"bet"`
	Step        int              `json:"step"`
	Multiplier  decimal.Decimal  `json:"multiplier"`
	AutoCashOut *decimal.Decimal `json:"autoCashOut,omitempty"`
	CrashPoint  *decimal.Decimal `json:"crashPoint,omitempty"`
	Balance     decimal.Decimal  `json:"balance"`
	Settlement  *Settlement      `json:"settlement,omitempty"`
}

// Engine runs one player's rocket rounds. Tick, CashOut and SkipToCrash share one
// mutex, so whichever reaches the lock first decides the round.
type Engine struct {
	mu             sync.Mutex
	ledger         *account.Ledger
	sampler        *Sampler
	state          State
	roundID        string
	watchOnly      bool
	bet            decimal.Decimal
	step           int
	multiplier     decimal.Decimal
	crashPoint     decimal.Decimal
	autoCashOut    decimal.Decimal
	last           *Settlement
	onRoundSettled func(Settlement)
}

func NewEngine(ledger *account.Ledger, sampler *Sampler) *Engine {
	if sampler == nil {
		sampler = NewSampler(nil, DefaultMaxMultiplier, DefaultSkew)
	}
	return &Engine{
		ledger:         ledger,
		sampler:        sampler,
		state:          StateIdle,
		bet:            decimal.Zero,
		multiplier:     one,
		autoCashOut:    decimal.Zero,
		onRoundSettled: func(Settlement) {},
	}
}

// OnRoundSettled registers the settlement listener. It runs after the engine lock is released.
func (e *Engine) OnRoundSettled(fn func(Settlement)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fn == nil {
		fn = func(Settlement) {}
	}
	e.onRoundSettled = fn
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// SetAutoCashOut sets the multiplier at which a staked round cashes out by itself.
// A zero target disables it. The target carries over to later rounds.
func (e *Engine) SetAutoCashOut(target decimal.Decimal) (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		target, err := autoCashOutTarget(target)
		if err != nil {
			return nil, err
		}
		e.autoCashOut = target
		return nil, nil
	})
}

func autoCashOutTarget(target decimal.Decimal) (decimal.Decimal, error) {
	target = account.Round(target)
	if !target.IsZero() && !target.GreaterThan(one) {
		return decimal.Zero, ErrInvalidAutoCashOut
	}
	return target, nil
}

// Arm starts a round. Staked rounds debit bet; watch-only rounds ignore it.
// A crash point of 1.00 settles the round before any tick.
func (e *Engine) Arm(bet decimal.Decimal, watchOnly bool) (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		return e.armLocked(bet, watchOnly)
	})
}

// ArmWithAutoCashOut arms a round with a new auto cash-out target. A failed arm
// leaves the stored target unchanged.
func (e *Engine) ArmWithAutoCashOut(bet decimal.Decimal, watchOnly bool, target decimal.Decimal) (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		target, err := autoCashOutTarget(target)
		if err != nil {
			return nil, err
		}
		prev := e.autoCashOut
		e.autoCashOut = target
		s, err := e.armLocked(bet, watchOnly)
		if err != nil {
			e.autoCashOut = prev
		}
		return s, err
	})
}

func (e *Engine) armLocked(bet decimal.Decimal, watchOnly bool) (*Settlement, error) {
	if e.state != StateIdle {
		return nil, ErrInvalidStateTransition
	}
	if watchOnly {
		bet = decimal.Zero
	} else {
		bet = account.Round(bet)
		if !bet.IsPositive() {
			return nil, ErrInvalidBet
		}
		if err := e.ledger.Debit(bet); err != nil {
			return nil, err
		}
	}

	e.state = StateArmed
	e.roundID = uuid.New().String()
	e.watchOnly = watchOnly
	e.bet = bet
	e.step = 0
	e.multiplier = one
	e.crashPoint = e.sampler.Sample()
	e.state = StateRunning

	if !e.crashPoint.GreaterThan(one) {
		return e.crashLocked(), nil
	}
	return nil, nil
}

// Tick advances the multiplier by one step. Reaching the crash point clamps the
// multiplier to it and crashes; otherwise a reached auto cash-out target settles.
func (e *Engine) Tick() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StateRunning {
			return nil, ErrInvalidStateTransition
		}
		e.step++
		m := Multiplier(e.step)
		if !m.LessThan(e.crashPoint) {
			return e.crashLocked(), nil
		}
		e.multiplier = m
		if !e.watchOnly && e.autoCashOut.IsPositive() && !m.LessThan(e.autoCashOut) {
			s := e.cashOutLocked()
			s.Auto = true
			return s, nil
		}
		return nil, nil
	})
}

// CashOut settles a staked round at the current multiplier.
func (e *Engine) CashOut() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StateRunning {
			return nil, ErrInvalidStateTransition
		}
		if e.watchOnly {
			return nil, ErrWatchOnly
		}
		return e.cashOutLocked(), nil
	})
}

// SkipToCrash ends a watch-only round at its crash point.
func (e *Engine) SkipToCrash() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StateRunning {
			return nil, ErrInvalidStateTransition
		}
		if !e.watchOnly {
			return nil, ErrNotWatchOnly
		}
		return e.crashLocked(), nil
	})
}

// Forfeit ends a running round at its crash point. A staked bet is lost.
func (e *Engine) Forfeit() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StateRunning {
			return nil, ErrInvalidStateTransition
		}
		return e.crashLocked(), nil
	})
}

// Reset returns a settled engine to idle. It is a no-op while idle.
func (e *Engine) Reset() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		switch e.state {
		case StateIdle:
			return nil, nil
		case StateSettled:
			e.state = StateIdle
			e.roundID = ""
			e.watchOnly = false
			e.bet = decimal.Zero
			e.step = 0
			e.multiplier = one
			e.crashPoint = decimal.Zero
			return nil, nil
		}
		return nil, ErrInvalidStateTransition
	})
}

func (e *Engine) do(fn func() (*Settlement, error)) (Snapshot, error) {
	e.mu.Lock()
	s, err := fn()
	snap := e.snapshotLocked()
	notify := e.onRoundSettled
	e.mu.Unlock()

	if s != nil {
		notify(*s)
	}
	return snap, err
}

func (e *Engine) crashLocked() *Settlement {
	e.multiplier = e.crashPoint
	net := decimal.Zero
	if !e.watchOnly {
		net = e.bet.Neg()
		e.ledger.RecordOutcome(account.ResultLoss, e.bet, net)
	}
	return e.settleLocked(OutcomeCrashed, decimal.Zero, net)
}

func (e *Engine) cashOutLocked() *Settlement {
	payout := account.Round(e.bet.Mul(e.multiplier))
	net := payout.Sub(e.bet)
	// payout is never negative, Credit cannot fail
	_ = e.ledger.Credit(payout)
	e.ledger.RecordOutcome(account.ResultWin, e.bet, net)
	return e.settleLocked(OutcomeCashedOut, payout, net)
}

func (e *Engine) settleLocked(outcome Outcome, payout, net decimal.Decimal) *Settlement {
	e.state = StateSettled
	s := &Settlement{
		RoundID:    e.roundID,
		Outcome:    outcome,
		WatchOnly:  e.watchOnly,
		Bet:        e.bet,
		Multiplier: e.multiplier,
		CrashPoint: e.crashPoint,
		Payout:     payout,
		Net:        net,
		Steps:      e.step,
		SettledAt:  time.Now().UTC(),
	}
	e.last = s
	return s
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		RoundID:    e.roundID,
		State:      e.state,
		WatchOnly:  e.watchOnly,
		Bet:        e.bet,
		Step:       e.step,
		Multiplier: e.multiplier,
		Balance:    e.ledger.Balance(),
	}
	if e.autoCashOut.IsPositive() {
		target := e.autoCashOut
		snap.AutoCashOut = &target
	}
	if e.state == StateSettled {
		cp := e.crashPoint
		snap.CrashPoint = &cp
		if e.last != nil {
			s := *e.last
			snap.Settlement = &s
		}
	}
	return snap
}
