package crash

import (
	"time"

	"github.com/shopspring/decimal"
)

// StepSize is the multiplier growth per tick: 1.00 + step*0.05.
const StepSize = "0.05"

// TickInterval is the default pause between ticks.
const TickInterval = 300 * time.Millisecond

var (
	one      = decimal.NewFromInt(1)
	stepSize = decimal.RequireFromString(StepSize)
)

// Multiplier returns the multiplier at step (e.g. step 2 -> 1.10).
func Multiplier(step int) decimal.Decimal {
	if step < 0 {
		step = 0
	}
	return one.Add(stepSize.Mul(decimal.NewFromInt(int64(step))))
}
