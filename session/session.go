// Package session ties one player's ledger to both round engines and to the
// stores, event bus and metrics that observe them.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/minicasino/account"
	"github.com/Ashenafi-pixel/minicasino/cards"
	"github.com/Ashenafi-pixel/minicasino/events"
	"github.com/Ashenafi-pixel/minicasino/games/blackjack"
	"github.com/Ashenafi-pixel/minicasino/games/crash"
	"github.com/Ashenafi-pixel/minicasino/monitoring"
	"github.com/Ashenafi-pixel/minicasino/profile"
	"github.com/Ashenafi-pixel/minicasino/rng"
	"github.com/Ashenafi-pixel/minicasino/round"
)

// ErrRoundInFlight is returned when a staked round is started while the other game holds one.
var ErrRoundInFlight = errors.New("session: another round is in flight")

const persistTimeout = 5 * time.Second

// Deps are the collaborators shared by every session.
type Deps struct {
	Store     profile.Store
	Results   *round.ResultsStore
	History   *round.HistoryStore
	Publisher events.Publisher
	Metrics   *monitoring.Metrics
	Logger    *zap.Logger
	Source    rng.Source

	CrashMax  float64
	CrashSkew float64
	CrashTick time.Duration
}

func (d Deps) withDefaults() Deps {
	if d.Publisher == nil {
		d.Publisher = events.Nop{}
	}
	if d.Metrics == nil {
		d.Metrics = monitoring.New()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Source == nil {
		d.Source = rng.NewSecure()
	}
	if d.CrashTick <= 0 {
		d.CrashTick = crash.TickInterval
	}
	return d
}

type Session struct {
	mu        sync.Mutex // serialises round starts across the two games
	persistMu sync.Mutex
	deps      Deps
	logger    *zap.Logger
	playerID  string
	ledger    *account.Ledger
	shoe      *cards.Shoe
	blackjack *blackjack.Engine
	crash     *crash.Engine
	runner    *crash.Runner
}

// New opens a session on a loaded profile.
func New(p account.Profile, deps Deps) *Session {
	deps = deps.withDefaults()
	ledger := account.NewLedger(p)
	shoe := cards.NewShoe(deps.Source)
	rocket := crash.NewEngine(ledger, crash.NewSampler(deps.Source, deps.CrashMax, deps.CrashSkew))

	s := &Session{
		deps:      deps,
		logger:    deps.Logger.With(zap.String("player_id", p.PlayerID)),
		playerID:  p.PlayerID,
		ledger:    ledger,
		shoe:      shoe,
		blackjack: blackjack.NewEngine(ledger, shoe),
		crash:     rocket,
		runner:    crash.NewRunner(rocket, deps.CrashTick),
	}
	s.blackjack.OnRoundSettled(s.onBlackjackSettled)
	s.crash.OnRoundSettled(s.onCrashSettled)
	s.runner.OnTick(func(crash.Snapshot) { deps.Metrics.CrashTicks.Inc() })
	return s
}

func (s *Session) PlayerID() string {
	return s.playerID
}

func (s *Session) Profile() account.Profile {
	return s.ledger.Profile()
}

// Shoe exposes the blackjack shoe, mainly so tests can stack it.
func (s *Session) Shoe() *cards.Shoe {
	return s.shoe
}

// Close stops the crash ticker, refunds an undealt blackjack bet and saves
// the profile one last time. A hand or rocket already in play is settled as a
// loss, so it reaches the round log and the event bus like any other round.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runner.Stop()
	if s.crash.State() == crash.StateRunning {
		if _, err := s.crash.Forfeit(); err != nil {
			s.logger.Warn("crash round not forfeited", zap.Error(err))
		}
	}
	switch s.blackjack.State() {
	case blackjack.StateBetting:
		_, _ = s.blackjack.ClearBet()
	case blackjack.StatePlayerTurn:
		if _, err := s.blackjack.Forfeit(); err != nil {
			s.logger.Warn("blackjack hand not forfeited", zap.Error(err))
		}
	}
	s.persist()
}

// persist saves the current profile. Failures are logged and counted; the
// in-memory ledger stays authoritative.
func (s *Session) persist() {
	if s.deps.Store == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := s.deps.Store.Save(ctx, s.ledger.Profile()); err != nil {
		s.deps.Metrics.PersistFailures.Inc()
		s.logger.Error("profile save failed", zap.Error(err))
	}
}

func (s *Session) crashStaked() bool {
	snap := s.crash.Snapshot()
	return snap.State == crash.StateRunning && !snap.WatchOnly
}

// Blackjack

func (s *Session) Blackjack() blackjack.Snapshot {
	return s.blackjack.Snapshot()
}

func (s *Session) PlaceBet(amount decimal.Decimal) (blackjack.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.crashStaked() {
		return s.blackjack.Snapshot(), ErrRoundInFlight
	}
	snap, err := s.blackjack.PlaceBet(amount)
	if err == nil {
		s.persist()
	}
	return snap, err
}

func (s *Session) ClearBet() (blackjack.Snapshot, error) {
	snap, err := s.blackjack.ClearBet()
	if err == nil {
		s.persist()
	}
	return snap, err
}

func (s *Session) Start() (blackjack.Snapshot, error) {
	return s.blackjack.Start()
}

func (s *Session) Hit() (blackjack.Snapshot, error) {
	return s.blackjack.Hit()
}

func (s *Session) Stand() (blackjack.Snapshot, error) {
	return s.blackjack.Stand()
}

func (s *Session) ResetBlackjack() (blackjack.Snapshot, error) {
	return s.blackjack.Reset()
}

// Crash

func (s *Session) Crash() crash.Snapshot {
	return s.crash.Snapshot()
}

// Arm starts a crash round and its ticker. A non-nil autoCashOut replaces the
// stored target when the round starts.
func (s *Session) Arm(bet decimal.Decimal, watchOnly bool, autoCashOut *decimal.Decimal) (crash.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !watchOnly && s.blackjack.Busy() {
		return s.crash.Snapshot(), ErrRoundInFlight
	}
	if s.crash.State() != crash.StateIdle {
		return s.crash.Snapshot(), crash.ErrInvalidStateTransition
	}
	var (
		snap crash.Snapshot
		err  error
	)
	if autoCashOut != nil {
		snap, err = s.crash.ArmWithAutoCashOut(bet, watchOnly, *autoCashOut)
	} else {
		snap, err = s.crash.Arm(bet, watchOnly)
	}
	if err != nil {
		return snap, err
	}
	if !watchOnly {
		s.persist()
	}
	if snap.State == crash.StateRunning {
		if err := s.runner.Start(); err != nil {
			s.logger.Error("crash ticker failed to start", zap.String("round_id", snap.RoundID), zap.Error(err))
		}
	}
	return snap, nil
}

func (s *Session) CashOut() (crash.Snapshot, error) {
	return s.crash.CashOut()
}

func (s *Session) SkipToCrash() (crash.Snapshot, error) {
	return s.crash.SkipToCrash()
}

func (s *Session) ResetCrash() (crash.Snapshot, error) {
	return s.crash.Reset()
}

func (s *Session) SetAutoCashOut(target decimal.Decimal) (crash.Snapshot, error) {
	return s.crash.SetAutoCashOut(target)
}

func (s *Session) CrashHistory() round.CrashHistory {
	if s.deps.History == nil {
		return round.CrashHistory{Recent: []decimal.Decimal{}, Highest: decimal.Zero}
	}
	return s.deps.History.Get(s.playerID)
}

// ErrRoundNotFound is returned by Result for unknown ids and for other players' rounds.
var ErrRoundNotFound = errors.New("session: round not found")

// Result returns one of the player's settled rounds.
func (s *Session) Result(roundID string) (*round.Result, error) {
	if s.deps.Results == nil {
		return nil, ErrRoundNotFound
	}
	r, err := s.deps.Results.GetByRoundID(roundID)
	if err != nil {
		return nil, err
	}
	if r == nil || r.PlayerID != s.playerID {
		return nil, ErrRoundNotFound
	}
	return r, nil
}

// Results returns the player's settled rounds, newest first.
func (s *Session) Results(limit int) ([]*round.Result, error) {
	if s.deps.Results == nil {
		return []*round.Result{}, nil
	}
	return s.deps.Results.ListByPlayer(s.playerID, limit)
}
