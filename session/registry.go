package session

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/thoas/go-funk"
	"go.uber.org/zap"

	"github.com/Ashenafi-pixel/minicasino/profile"
)

// Registry holds the open session of every connected player.
type Registry struct {
	mu              sync.RWMutex
	sessions        map[string]*Session
	deps            Deps
	startingBalance decimal.Decimal
}

// NewRegistry returns a Registry. Unknown player ids get a profile holding startingBalance.
func NewRegistry(deps Deps, startingBalance decimal.Decimal) *Registry {
	return &Registry{
		sessions:        make(map[string]*Session),
		deps:            deps.withDefaults(),
		startingBalance: startingBalance,
	}
}

// Open returns the player's session, loading the profile on first use.
func (r *Registry) Open(ctx context.Context, playerID string) (*Session, error) {
	if s, ok := r.Get(playerID); ok {
		return s, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[playerID]; ok {
		return s, nil
	}
	if r.deps.Store == nil {
		return nil, profile.ErrNotFound
	}
	p, err := profile.LoadOrCreate(ctx, r.deps.Store, playerID, r.startingBalance)
	if err != nil {
		return nil, err
	}
	s := New(p, r.deps)
	r.sessions[playerID] = s
	r.deps.Metrics.ActiveSessions.Inc()
	r.deps.Logger.Info("session opened", zap.String("player_id", playerID))
	return s, nil
}

func (r *Registry) Get(playerID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[playerID]
	return s, ok
}

// Close saves and drops the player's session.
func (r *Registry) Close(playerID string) {
	r.mu.Lock()
	s, ok := r.sessions[playerID]
	delete(r.sessions, playerID)
	r.mu.Unlock()
	if !ok {
		return
	}
	s.Close()
	r.deps.Metrics.ActiveSessions.Dec()
}

func (r *Registry) CloseAll() {
	for _, id := range r.ListPlayers() {
		r.Close(id)
	}
}

func (r *Registry) ListPlayers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := funk.Keys(r.sessions).([]string)
	sort.Strings(out)
	return out
}
