package blackjack

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Ashenafi-pixel/minicasino/account"
	"github.com/Ashenafi-pixel/minicasino/cards"
)

var (
	ErrInvalidBet             = errors.New("blackjack: invalid bet")
	ErrInvalidStateTransition = errors.New("blackjack: invalid state transition")
)

// DealerStandTotal is the total at which the dealer stops drawing (all 17s, soft or hard).
const DealerStandTotal = 17

var (
	blackjackProfit = decimal.RequireFromString("1.5")
	two             = decimal.NewFromInt(2)
)

type State string

const (
	StateBetting    State = "betting"
	StateDealing    State = "dealing"
	StatePlayerTurn State = "player_turn"
	StateDealerTurn State = "dealer_turn"
	StateSettled    State = "settled"
)

type Outcome string

const (
	OutcomeBlackjack Outcome = "blackjack"
	OutcomePlayerWin Outcome = "player_win"
	OutcomeDealerWin Outcome = "dealer_win"
	OutcomePush      Outcome = "push"
)

// Result maps a blackjack outcome to the ledger's win/loss/push bookkeeping.
func (o Outcome) Result() account.Result {
	switch o {
	case OutcomeBlackjack, OutcomePlayerWin:
		return account.ResultWin
	case OutcomeDealerWin:
		return account.ResultLoss
	}
	return account.ResultPush
}

// Settlement is the terminal result of one hand.
type Settlement struct {
	RoundID     string          `json:"roundId"`
	Outcome     Outcome         `json:"outcome"`
	Bet         decimal.Decimal `json:"bet"`
	Payout      decimal.Decimal `json:"payout"` // total credited back to the balance
	Net         decimal.Decimal `json:"net"`    // signed profit change
	PlayerHand  []string        `json:"playerHand"`
	DealerHand  []string        `json:"dealerHand"`
	PlayerValue int             `json:"playerValue"`
	DealerValue int             `json:"dealerValue"`
	DealerDrew  int             `json:"dealerDrew"` // cards drawn during the dealer turn
	SettledAt   time.Time       `json:"settledAt"`
}

// Snapshot is the observable state of the engine. The dealer hole card is
// masked until the dealer turn.
type Snapshot struct {
	RoundID     string          `json:"roundId,omitempty"`
	State       State           `json:"state"`
	Bet         decimal.Decimal `json:"bet"`
	PlayerHand  []string        `json:"playerHand"`
	PlayerValue int             `json:"playerValue"`
	PlayerSoft  bool            `json:"playerSoft"`
	DealerHand  []string        `json:"dealerHand"`
	DealerValue int             `json:"dealerValue"`
	HoleHidden  bool            `json:"holeHidden"`
	Balance     decimal.Decimal `json:"balance"`
	Settlement  *Settlement     `json:"settlement,omitempty"`
}

// HiddenCard replaces the dealer hole card in snapshots.
const HiddenCard = "??"

// Engine drives one player's blackjack hands from bet to settlement.
type Engine struct {
	mu             sync.Mutex
	ledger         *account.Ledger
	shoe           *cards.Shoe
	state          State
	roundID        string
	bet            decimal.Decimal
	player         Hand
	dealer         Hand
	dealerDrew     int
	last           *Settlement
	onRoundSettled func(Settlement)
}

func NewEngine(ledger *account.Ledger, shoe *cards.Shoe) *Engine {
	if shoe == nil {
		shoe = cards.NewShoe(nil)
	}
	return &Engine{
		ledger:         ledger,
		shoe:           shoe,
		state:          StateBetting,
		bet:            decimal.Zero,
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

// Busy reports whether a stake is on the table (bet placed or hand in play).
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state == StatePlayerTurn || e.state == StateDealerTurn || e.state == StateDealing ||
		(e.state == StateBetting && e.bet.IsPositive())
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// PlaceBet stakes amount on the next hand. Repeated calls stack onto the current bet.
func (e *Engine) PlaceBet(amount decimal.Decimal) (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StateBetting {
			return nil, ErrInvalidStateTransition
		}
		amount = account.Round(amount)
		if !amount.IsPositive() {
			return nil, ErrInvalidBet
		}
		if err := e.ledger.Debit(amount); err != nil {
			return nil, err
		}
		if e.roundID == "" {
			e.roundID = uuid.New().String()
		}
		e.bet = e.bet.Add(amount)
		return nil, nil
	})
}

// ClearBet refunds the stacked bet before the deal.
func (e *Engine) ClearBet() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StateBetting {
			return nil, ErrInvalidStateTransition
		}
		if !e.bet.IsPositive() {
			return nil, nil
		}
		if err := e.ledger.Refund(e.bet); err != nil {
			return nil, err
		}
		e.bet = decimal.Zero
		return nil, nil
	})
}

// Start deals player, player, dealer, dealer. A natural blackjack settles at once.
func (e *Engine) Start() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StateBetting {
			return nil, ErrInvalidStateTransition
		}
		if !e.bet.IsPositive() {
			return nil, fmt.Errorf("%w: no bet placed", ErrInvalidStateTransition)
		}
		e.state = StateDealing
		e.player = Hand{e.shoe.Draw(), e.shoe.Draw()}
		e.dealer = Hand{e.shoe.Draw(), e.shoe.Draw()}

		if IsBlackjack(e.player) {
			return e.settleLocked(OutcomeBlackjack)
		}
		e.state = StatePlayerTurn
		return nil, nil
	})
}

// Hit draws one card for the player. A bust settles immediately; 21 stands automatically.
func (e *Engine) Hit() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StatePlayerTurn {
			return nil, ErrInvalidStateTransition
		}
		e.player = append(e.player, e.shoe.Draw())
		switch v := Value(e.player); {
		case v > BlackjackTotal:
			return e.settleLocked(OutcomeDealerWin)
		case v == BlackjackTotal:
			return e.dealerTurnLocked()
		}
		return nil, nil
	})
}

func (e *Engine) Stand() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StatePlayerTurn {
			return nil, ErrInvalidStateTransition
		}
		return e.dealerTurnLocked()
	})
}

// Forfeit abandons a dealt hand. It settles as a dealer win without drawing
// for the dealer.
func (e *Engine) Forfeit() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		if e.state != StatePlayerTurn {
			return nil, ErrInvalidStateTransition
		}
		return e.settleLocked(OutcomeDealerWin)
	})
}

// Reset starts a new hand after settlement. It is a no-op while already betting.
func (e *Engine) Reset() (Snapshot, error) {
	return e.do(func() (*Settlement, error) {
		switch e.state {
		case StateBetting:
			return nil, nil
		case StateSettled:
			e.state = StateBetting
			e.roundID = ""
			e.bet = decimal.Zero
			e.player = nil
			e.dealer = nil
			e.dealerDrew = 0
			return nil, nil
		}
		return nil, ErrInvalidStateTransition
	})
}

// do runs fn under the engine lock and notifies the settlement listener after unlocking.
// A failed operation leaves the engine unchanged.
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

func (e *Engine) dealerTurnLocked() (*Settlement, error) {
	e.state = StateDealerTurn
	for Value(e.dealer) < DealerStandTotal {
		e.dealer = append(e.dealer, e.shoe.Draw())
		e.dealerDrew++
	}

	player, dealer := Value(e.player), Value(e.dealer)
	switch {
	case dealer > BlackjackTotal || player > dealer:
		return e.settleLocked(OutcomePlayerWin)
	case dealer > player:
		return e.settleLocked(OutcomeDealerWin)
	}
	return e.settleLocked(OutcomePush)
}

func (e *Engine) settleLocked(outcome Outcome) (*Settlement, error) {
	bet := e.bet
	var payout, net decimal.Decimal
	switch outcome {
	case OutcomeBlackjack:
		net = bet.Mul(blackjackProfit)
		payout = bet.Add(net)
	case OutcomePlayerWin:
		payout = bet.Mul(two)
		net = bet
	case OutcomeDealerWin:
		payout = decimal.Zero
		net = bet.Neg()
	default:
		payout = bet
		net = decimal.Zero
	}
	payout, net = account.Round(payout), account.Round(net)

	if err := e.ledger.Credit(payout); err != nil {
		return nil, err
	}
	e.ledger.RecordOutcome(outcome.Result(), bet, net)
	e.state = StateSettled

	s := &Settlement{
		RoundID:     e.roundID,
		Outcome:     outcome,
		Bet:         bet,
		Payout:      payout,
		Net:         net,
		PlayerHand:  e.player.Codes(),
		DealerHand:  e.dealer.Codes(),
		PlayerValue: Value(e.player),
		DealerValue: Value(e.dealer),
		DealerDrew:  e.dealerDrew,
		SettledAt:   time.Now().UTC(),
	}
	e.last = s
	return s, nil
}

func (e *Engine) snapshotLocked() Snapshot {
	snap := Snapshot{
		RoundID:     e.roundID,
		State:       e.state,
		Bet:         e.bet,
		PlayerHand:  e.player.Codes(),
		PlayerValue: Value(e.player),
		PlayerSoft:  IsSoft(e.player),
		DealerHand:  e.dealer.Codes(),
		DealerValue: Value(e.dealer),
		Balance:     e.ledger.Balance(),
	}
	if (e.state == StatePlayerTurn || e.state == StateDealing) && len(e.dealer) > 1 {
		snap.HoleHidden = true
		snap.DealerHand = []string{e.dealer[0].String(), HiddenCard}
		snap.DealerValue = Value(e.dealer[:1])
	}
	if e.state == StateSettled && e.last != nil {
		s := *e.last
		snap.Settlement = &s
	}
	return snap
}
