package round

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

const (
	GameBlackjack = "blackjack"
	GameCrash     = "crash"
)

// Result records one settled round for audit.
// Hands are set for blackjack, CrashPoint and Multiplier for crash.
type Result struct {
	RoundID      string           `json:"roundId"`
	PlayerID     string           `json:"playerId"`
	Game         string           `json:"game"`
	Outcome      string           `json:"outcome"`
	Bet          decimal.Decimal  `json:"bet"`
	Payout       decimal.Decimal  `json:"payout"`
	BalanceDelta decimal.Decimal  `json:"balanceDelta"`
	Balance      decimal.Decimal  `json:"balance"` // after settlement
	WatchOnly    bool             `json:"watchOnly,omitempty"`
	PlayerHand   []string         `json:"playerHand,omitempty"`
	DealerHand   []string         `json:"dealerHand,omitempty"`
	CrashPoint   *decimal.Decimal `json:"crashPoint,omitempty"`
	Multiplier   *decimal.Decimal `json:"multiplier,omitempty"`
	SettledAt    time.Time        `json:"settledAt"`
}

// ResultsStore appends settled round results to data/round_results.json.
type ResultsStore struct {
	mu      sync.Mutex
	dataDir string
}

func NewResultsStore(dataDir string) *ResultsStore {
	if dataDir == "" {
		dataDir = "data"
	}
	return &ResultsStore{dataDir: dataDir}
}

func (rs *ResultsStore) path() string {
	return filepath.Join(rs.dataDir, "round_results.json")
}

func (rs *ResultsStore) ensureDir() error {
	return os.MkdirAll(rs.dataDir, 0755)
}

func (rs *ResultsStore) readLocked() ([]*Result, error) {
	data, err := os.ReadFile(rs.path())
	if os.IsNotExist(err) {
		return []*Result{}, nil
	}
	if err != nil {
		return nil, err
	}
	var list []*Result
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Append adds a settled round result to the JSON array on disk.
func (rs *ResultsStore) Append(r *Result) error {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	if err := rs.ensureDir(); err != nil {
		return err
	}
	list, err := rs.readLocked()
	if err != nil {
		// the existing log is left untouched
		return fmt.Errorf("round: read results log: %w", err)
	}
	list = append(list, r)
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(rs.path(), data, 0644)
}

// GetByRoundID returns a settled result by round ID, or nil when absent.
func (rs *ResultsStore) GetByRoundID(roundID string) (*Result, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	list, err := rs.readLocked()
	if err != nil {
		return nil, err
	}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].RoundID == roundID {
			return list[i], nil
		}
	}
	return nil, nil
}

// ListByPlayer returns up to limit results for playerID, newest first.
// A non-positive limit returns all of them.
func (rs *ResultsStore) ListByPlayer(playerID string, limit int) ([]*Result, error) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	list, err := rs.readLocked()
	if err != nil {
		return nil, err
	}
	out := []*Result{}
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].PlayerID != playerID {
			continue
		}
		out = append(out, list[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
