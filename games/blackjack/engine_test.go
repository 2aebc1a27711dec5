package blackjack

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ashenafi-pixel/minicasino/account"
	"github.com/Ashenafi-pixel/minicasino/cards"
	"github.com/Ashenafi-pixel/minicasino/rng"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// newTable returns an engine whose shoe deals the given codes next, in order.
func newTable(t *testing.T, balance string, deal string) (*Engine, *account.Ledger) {
	t.Helper()
	shoe := cards.NewShoe(rng.NewSeeded(7))
	var top []cards.Card
	for _, code := range strings.Fields(deal) {
		top = append(top, cards.MustParse(code))
	}
	require.NoError(t, shoe.Stack(top...))
	ledger := account.NewLedger(account.NewProfile("p1", dec(balance)))
	return NewEngine(ledger, shoe), ledger
}

func TestEngine_NaturalBlackjackPaysThreeToTwo(t *testing.T) {
	// player A K, dealer 9 7
	e, ledger := newTable(t, "1000", "As Kd 9h 7c")
	var settled []Settlement
	e.OnRoundSettled(func(s Settlement) { settled = append(settled, s) })

	_, err := e.PlaceBet(dec("100"))
	require.NoError(t, err)
	snap, err := e.Start()
	require.NoError(t, err)

	assert.Equal(t, StateSettled, snap.State)
	require.NotNil(t, snap.Settlement)
	assert.Equal(t, OutcomeBlackjack, snap.Settlement.Outcome)
	assert.Equal(t, "250.00", snap.Settlement.Payout.StringFixed(2))
	assert.Equal(t, "1150.00", ledger.Balance().StringFixed(2))

	p := ledger.Profile()
	assert.Equal(t, "150.00", p.CumulativeProfit.StringFixed(2))
	assert.Equal(t, "100.00", p.TotalWagered.StringFixed(2))
	assert.Equal(t, 1, p.WinCount)
	require.Len(t, settled, 1)
	assert.Equal(t, snap.RoundID, settled[0].RoundID)
}

func TestEngine_PlayerBustSettlesWithoutDealerDraw(t *testing.T) {
	// player 10 9, dealer K 5, player hits 5
	e, ledger := newTable(t, "1000", "10s 9d Kh 5c 5s")
	_, err := e.PlaceBet(dec("50"))
	require.NoError(t, err)
	_, err = e.Start()
	require.NoError(t, err)

	snap, err := e.Hit()
	require.NoError(t, err)
	assert.Equal(t, StateSettled, snap.State)
	assert.Equal(t, 24, snap.PlayerValue)
	assert.Equal(t, OutcomeDealerWin, snap.Settlement.Outcome)
	assert.Equal(t, 0, snap.Settlement.DealerDrew)
	assert.Equal(t, []string{"Kh", "5c"}, snap.DealerHand)
	assert.Equal(t, "950.00", ledger.Balance().StringFixed(2))

	p := ledger.Profile()
	assert.Equal(t, "-50.00", p.CumulativeProfit.StringFixed(2))
	assert.Equal(t, "50.00", p.TotalLost.StringFixed(2))
	assert.Equal(t, 1, p.LossCount)
}

func TestEngine_DealerDrawsToSeventeen(t *testing.T) {
	// player 10 10, dealer K 6, dealer draws 2 to 18
	e, ledger := newTable(t, "1000", "10s 10d Kh 6c 2s 9h")
	_, err := e.PlaceBet(dec("10"))
	require.NoError(t, err)
	_, err = e.Start()
	require.NoError(t, err)

	snap, err := e.Stand()
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Settlement.DealerDrew)
	assert.Equal(t, 18, snap.DealerValue)
	assert.Equal(t, OutcomePlayerWin, snap.Settlement.Outcome)
	assert.Equal(t, "1010.00", ledger.Balance().StringFixed(2))
}

func TestEngine_DealerStandsOnSeventeen(t *testing.T) {
	e, _ := newTable(t, "1000", "10s 8d Kh 7c 2s")
	_, err := e.PlaceBet(dec("10"))
	require.NoError(t, err)
	_, err = e.Start()
	require.NoError(t, err)

	snap, err := e.Stand()
	require.NoError(t, err)
	assert.Equal(t, 0, snap.Settlement.DealerDrew)
	assert.Equal(t, OutcomePlayerWin, snap.Settlement.Outcome)
}

func TestEngine_PushRefundsBet(t *testing.T) {
	e, ledger := newTable(t, "1000", "10s 8d Kh 8c")
	_, err := e.PlaceBet(dec("25"))
	require.NoError(t, err)
	_, err = e.Start()
	require.NoError(t, err)

	snap, err := e.Stand()
	require.NoError(t, err)
	assert.Equal(t, OutcomePush, snap.Settlement.Outcome)
	assert.Equal(t, "1000.00", ledger.Balance().StringFixed(2))
	p := ledger.Profile()
	assert.True(t, p.CumulativeProfit.IsZero())
	assert.Equal(t, 1, p.PushCount)
}

func TestEngine_HitToTwentyOneStandsAutomatically(t *testing.T) {
	// player 5 6, dealer 10 8, hit K gives 21
	e, _ := newTable(t, "1000", "5s 6d 10h 8c Ks")
	_, err := e.PlaceBet(dec("10"))
	require.NoError(t, err)
	_, err = e.Start()
	require.NoError(t, err)

	snap, err := e.Hit()
	require.NoError(t, err)
	assert.Equal(t, StateSettled, snap.State)
	assert.Equal(t, OutcomePlayerWin, snap.Settlement.Outcome)
}

func TestEngine_HoleCardHiddenDuringPlayerTurn(t *testing.T) {
	e, _ := newTable(t, "1000", "10s 6d 9h Kc")
	_, err := e.PlaceBet(dec("10"))
	require.NoError(t, err)
	snap, err := e.Start()
	require.NoError(t, err)

	assert.Equal(t, StatePlayerTurn, snap.State)
	assert.True(t, snap.HoleHidden)
	assert.Equal(t, []string{"9h", HiddenCard}, snap.DealerHand)
	assert.Equal(t, 9, snap.DealerValue)
}

func TestEngine_BetsStackAndClear(t *testing.T) {
	e, ledger := newTable(t, "100", "")
	_, err := e.PlaceBet(dec("30"))
	require.NoError(t, err)
	snap, err := e.PlaceBet(dec("20.005"))
	require.NoError(t, err)
	assert.Equal(t, "50.01", snap.Bet.StringFixed(2))
	assert.True(t, e.Busy())

	snap, err = e.ClearBet()
	require.NoError(t, err)
	assert.True(t, snap.Bet.IsZero())
	assert.Equal(t, "100.00", ledger.Balance().StringFixed(2))
	assert.True(t, ledger.Profile().TotalWagered.IsZero())
	assert.False(t, e.Busy())
}

func TestEngine_RejectsInvalidBets(t *testing.T) {
	e, ledger := newTable(t, "100", "")

	_, err := e.PlaceBet(dec("0"))
	assert.ErrorIs(t, err, ErrInvalidBet)
	_, err = e.PlaceBet(dec("-5"))
	assert.ErrorIs(t, err, ErrInvalidBet)
	_, err = e.PlaceBet(dec("100.01"))
	assert.ErrorIs(t, err, account.ErrInsufficientFunds)

	assert.Equal(t, "100.00", ledger.Balance().StringFixed(2))
	assert.Equal(t, StateBetting, e.State())
}

func TestEngine_InvalidTransitionsHaveNoEffect(t *testing.T) {
	e, ledger := newTable(t, "1000", "10s 6d 9h Kc")

	_, err := e.Start()
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.Hit()
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.Stand()
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = e.PlaceBet(dec("10"))
	require.NoError(t, err)
	_, err = e.Start()
	require.NoError(t, err)

	before := e.Snapshot()
	_, err = e.PlaceBet(dec("10"))
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.ClearBet()
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.Start()
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	_, err = e.Reset()
	assert.ErrorIs(t, err, ErrInvalidStateTransition)
	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, "990.00", ledger.Balance().StringFixed(2))
}

func TestEngine_ResetIsIdempotent(t *testing.T) {
	e, _ := newTable(t, "1000", "10s 8d Kh 7c")
	_, err := e.PlaceBet(dec("10"))
	require.NoError(t, err)
	_, err = e.Start()
	require.NoError(t, err)
	_, err = e.Stand()
	require.NoError(t, err)

	first, err := e.Reset()
	require.NoError(t, err)
	second, err := e.Reset()
	require.NoError(t, err)

	assert.Equal(t, StateBetting, first.State)
	assert.Equal(t, first, second)
	assert.Empty(t, first.PlayerHand)
	assert.Empty(t, first.RoundID)
}

func TestEngine_ForfeitSettlesAsDealerWin(t *testing.T) {
	// player 10 8, dealer K 6; the dealer does not draw on a forfeit
	e, ledger := newTable(t, "1000", "10s 8d Kh 6c")
	_, err := e.Forfeit()
	assert.ErrorIs(t, err, ErrInvalidStateTransition)

	_, err = e.PlaceBet(dec("30"))
	require.NoError(t, err)
	_, err = e.Start()
	require.NoError(t, err)

	snap, err := e.Forfeit()
	require.NoError(t, err)
	assert.Equal(t, StateSettled, snap.State)
	assert.Equal(t, OutcomeDealerWin, snap.Settlement.Outcome)
	assert.Equal(t, 0, snap.Settlement.DealerDrew)
	assert.Equal(t, "970.00", ledger.Balance().StringFixed(2))
	assert.Equal(t, 1, ledger.Profile().LossCount)
}
