package session

import (
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/minicasino/events"
	"github.com/Ashenafi-pixel/minicasino/games/blackjack"
	"github.com/Ashenafi-pixel/minicasino/games/crash"
	"github.com/Ashenafi-pixel/minicasino/round"
)

func (s *Session) onBlackjackSettled(st blackjack.Settlement) {
	s.persist()
	balance := s.ledger.Balance()

	s.record(&round.Result{
		RoundID:      st.RoundID,
		PlayerID:     s.playerID,
		Game:         round.GameBlackjack,
		Outcome:      string(st.Outcome),
		Bet:          st.Bet,
		Payout:       st.Payout,
		BalanceDelta: st.Net,
		Balance:      balance,
		PlayerHand:   st.PlayerHand,
		DealerHand:   st.DealerHand,
		SettledAt:    st.SettledAt,
	})
	s.publish(events.RoundSettled{
		RoundID:   st.RoundID,
		PlayerID:  s.playerID,
		Game:      round.GameBlackjack,
		Outcome:   string(st.Outcome),
		Bet:       st.Bet,
		Payout:    st.Payout,
		Net:       st.Net,
		Balance:   balance,
		SettledAt: st.SettledAt,
	})
	s.deps.Metrics.ObserveRound(round.GameBlackjack, string(st.Outcome), st.Bet, st.Payout)
	s.logger.Info("blackjack round settled",
		zap.String("round_id", st.RoundID),
		zap.String("game", round.GameBlackjack),
		zap.String("outcome", string(st.Outcome)),
		zap.String("net", st.Net.StringFixed(2)),
	)
}

// onCrashSettled may run on the ticker goroutine.
func (s *Session) onCrashSettled(st crash.Settlement) {
	s.runner.Stop()
	if !st.WatchOnly {
		s.persist()
	}
	balance := s.ledger.Balance()
	point, multiplier := st.CrashPoint, st.Multiplier

	if s.deps.History != nil {
		if _, err := s.deps.History.Record(s.playerID, point); err != nil {
			s.logger.Error("crash history save failed", zap.String("round_id", st.RoundID), zap.Error(err))
		}
	}
	s.record(&round.Result{
		RoundID:      st.RoundID,
		PlayerID:     s.playerID,
		Game:         round.GameCrash,
		Outcome:      string(st.Outcome),
		Bet:          st.Bet,
		Payout:       st.Payout,
		BalanceDelta: st.Net,
		Balance:      balance,
		WatchOnly:    st.WatchOnly,
		CrashPoint:   &point,
		Multiplier:   &multiplier,
		SettledAt:    st.SettledAt,
	})
	s.publish(events.RoundSettled{
		RoundID:    st.RoundID,
		PlayerID:   s.playerID,
		Game:       round.GameCrash,
		Outcome:    string(st.Outcome),
		WatchOnly:  st.WatchOnly,
		Bet:        st.Bet,
		Payout:     st.Payout,
		Net:        st.Net,
		Balance:    balance,
		CrashPoint: &point,
		SettledAt:  st.SettledAt,
	})
	s.deps.Metrics.ObserveRound(round.GameCrash, string(st.Outcome), st.Bet, st.Payout)
	s.deps.Metrics.ObserveCrashPoint(point)
	s.logger.Info("crash round settled",
		zap.String("round_id", st.RoundID),
		zap.String("game", round.GameCrash),
		zap.String("outcome", string(st.Outcome)),
		zap.String("crash_point", point.StringFixed(2)),
		zap.Bool("auto", st.Auto),
		zap.Bool("watch_only", st.WatchOnly),
	)
}

func (s *Session) record(r *round.Result) {
	if s.deps.Results == nil {
		return
	}
	if err := s.deps.Results.Append(r); err != nil {
		s.logger.Error("round result append failed", zap.String("round_id", r.RoundID), zap.Error(err))
	}
}

func (s *Session) publish(ev events.RoundSettled) {
	if err := s.deps.Publisher.PublishRoundSettled(ev); err != nil {
		s.logger.Warn("settlement event not published", zap.String("round_id", ev.RoundID), zap.Error(err))
	}
}
