// Command crashsim plays crash rounds against the real engine with an auto
// cash-out target and reports the crash-point distribution and return to player.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/Ashenafi-pixel/minicasino/account"
	"github.com/Ashenafi-pixel/minicasino/games/crash"
	"github.com/Ashenafi-pixel/minicasino/rng"
)

type stats struct {
	Rounds   int
	Wins     int
	Instant  int // crash point 1.00
	Wagered  decimal.Decimal
	Returned decimal.Decimal
	Highest  decimal.Decimal
	Below2   int
}

func (s stats) RTP() float64 {
	if s.Wagered.IsZero() {
		return 0
	}
	return s.Returned.Div(s.Wagered).InexactFloat64()
}

func main() {
	rounds := flag.Int("rounds", 100000, "Number of rounds to play")
	target := flag.String("target", "2.00", "Auto cash-out multiplier")
	max := flag.Float64("max", crash.DefaultMaxMultiplier, "Highest crash point")
	skew := flag.Float64("skew", crash.DefaultSkew, "Sampler skew exponent k")
	seed := flag.Int64("seed", 0, "Seed for a reproducible run (0 uses crypto/rand)")
	flag.Parse()

	t, err := decimal.NewFromString(*target)
	if err != nil || !t.GreaterThan(decimal.NewFromInt(1)) {
		fmt.Fprintln(os.Stderr, "-target must be a number above 1.00")
		os.Exit(1)
	}
	if *rounds <= 0 {
		fmt.Fprintln(os.Stderr, "-rounds must be positive")
		os.Exit(1)
	}

	var src rng.Source = rng.NewSecure()
	if *seed != 0 {
		src = rng.NewSeeded(*seed)
	}
	st, err := run(crash.NewSampler(src, *max, *skew), *rounds, t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}
	report(os.Stdout, st, t)
}

// run plays rounds of 1.00 each, ticking until the engine settles.
func run(sampler *crash.Sampler, rounds int, target decimal.Decimal) (stats, error) {
	bet := decimal.NewFromInt(1)
	ledger := account.NewLedger(account.NewProfile("crashsim", bet.Mul(decimal.NewFromInt(int64(rounds)))))
	engine := crash.NewEngine(ledger, sampler)
	if _, err := engine.SetAutoCashOut(target); err != nil {
		return stats{}, err
	}

	st := stats{Wagered: decimal.Zero, Returned: decimal.Zero, Highest: decimal.Zero}
	two := decimal.NewFromInt(2)
	for i := 0; i < rounds; i++ {
		snap, err := engine.Arm(bet, false)
		if err != nil {
			return st, err
		}
		for snap.State == crash.StateRunning {
			if snap, err = engine.Tick(); err != nil {
				return st, err
			}
		}
		s := snap.Settlement
		st.Rounds++
		st.Wagered = st.Wagered.Add(s.Bet)
		st.Returned = st.Returned.Add(s.Payout)
		if s.Outcome == crash.OutcomeCashedOut {
			st.Wins++
		}
		if s.Steps == 0 && s.Outcome == crash.OutcomeCrashed {
			st.Instant++
		}
		if s.CrashPoint.LessThan(two) {
			st.Below2++
		}
		if s.CrashPoint.GreaterThan(st.Highest) {
			st.Highest = s.CrashPoint
		}
		if _, err := engine.Reset(); err != nil {
			return st, err
		}
	}
	return st, nil
}

func report(w io.Writer, st stats, target decimal.Decimal) {
	n := float64(st.Rounds)
	fmt.Fprintf(w, "rounds:          %d\n", st.Rounds)
	fmt.Fprintf(w, "auto cash-out:   %s\n", target.StringFixed(2))
	fmt.Fprintf(w, "win rate:        %.4f\n", float64(st.Wins)/n)
	fmt.Fprintf(w, "instant crashes: %.4f\n", float64(st.Instant)/n)
	fmt.Fprintf(w, "crash < 2.00:    %.4f\n", float64(st.Below2)/n)
	fmt.Fprintf(w, "highest crash:   %s\n", st.Highest.StringFixed(2))
	fmt.Fprintf(w, "RTP:             %.4f\n", st.RTP())
}
