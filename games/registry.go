package games

import (
	"sort"
	"sync"
)

// Game describes one playable game in the lobby.
type Game struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	WatchOnly   bool   `json:"watchOnly"` // can be played without a stake
}

type Registry struct {
	mu    sync.RWMutex
	games map[string]Game
}

func NewRegistry() *Registry {
	return &Registry{games: make(map[string]Game)}
}

// Default returns the registry of built-in games.
func Default() *Registry {
	r := NewRegistry()
	r.Register(Game{
		ID:          "blackjack",
		Name:        "Blackjack",
		Description: "Single-deck blackjack against a dealer who stands on 17. Blackjack pays 3:2.",
	})
	r.Register(Game{
		ID:          "crash",
		Name:        "Rocket Crash",
		Description: "Cash out before the rocket crashes. Watch a round without betting.",
		WatchOnly:   true,
	})
	return r
}

func (r *Registry) Register(g Game) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[g.ID] = g
}

func (r *Registry) Get(id string) (Game, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.games[id]
	return g, ok
}

// List returns every game sorted by id.
func (r *Registry) List() []Game {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Game, 0, len(r.games))
	for _, g := range r.games {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
