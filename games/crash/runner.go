package crash

import (
	"sync"
	"time"

	"github.com/weedbox/timebank"
)

// Runner ticks an engine on a fixed interval until the round settles.
type Runner struct {
	mu       sync.Mutex
	engine   *Engine
	interval time.Duration
	tb       *timebank.TimeBank
	gen      int
	onTick   func(Snapshot)
}

func NewRunner(engine *Engine, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = TickInterval
	}
	return &Runner{
		engine:   engine,
		interval: interval,
		onTick:   func(Snapshot) {},
	}
}

// OnTick registers a listener for every successful tick, including the settling one.
func (r *Runner) OnTick(fn func(Snapshot)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fn == nil {
		fn = func(Snapshot) {}
	}
	r.onTick = fn
}

// Start schedules ticks for the engine's running round. Calling Start again
// replaces the previous schedule.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
	r.gen++
	return r.scheduleLocked(r.gen)
}

// Stop cancels the pending tick.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
	r.gen++
}

func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tb != nil
}

func (r *Runner) cancelLocked() {
	if r.tb != nil {
		r.tb.Cancel()
		r.tb = nil
	}
}

// scheduleLocked arms a fresh timebank per tick so the callback never
// re-enters the timebank that fired it.
func (r *Runner) scheduleLocked(gen int) error {
	tb := timebank.NewTimeBank()
	r.tb = tb
	return tb.NewTask(r.interval, func(isCancelled bool) {
		if isCancelled {
			return
		}
		r.fire(gen)
	})
}

func (r *Runner) fire(gen int) {
	r.mu.Lock()
	if gen != r.gen {
		r.mu.Unlock()
		return
	}
	notify := r.onTick
	r.mu.Unlock()

	snap, err := r.engine.Tick()
	if err == nil {
		notify(snap)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return
	}
	if err != nil || snap.State != StateRunning {
		r.tb = nil
		return
	}
	_ = r.scheduleLocked(gen)
}
