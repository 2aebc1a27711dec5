package round

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/shopspring/decimal"
)

// RecentCrashes is how many past crash points a history keeps.
const RecentCrashes = 3

// CrashHistory is one player's recent crash points, newest first, and the highest seen.
type CrashHistory struct {
	Recent  []decimal.Decimal `json:"recent"`
	Highest decimal.Decimal   `json:"highest"`
}

func (h CrashHistory) clone() CrashHistory {
	out := CrashHistory{Recent: make([]decimal.Decimal, len(h.Recent)), Highest: h.Highest}
	copy(out.Recent, h.Recent)
	return out
}

// HistoryStore persists crash histories of all players to data/crash_history.json.
type HistoryStore struct {
	mu        sync.Mutex
	histories map[string]*CrashHistory
	dataDir   string
}

func NewHistoryStore(dataDir string) *HistoryStore {
	if dataDir == "" {
		dataDir = "data"
	}
	s := &HistoryStore{
		histories: make(map[string]*CrashHistory),
		dataDir:   dataDir,
	}
	s.load()
	return s
}

func (s *HistoryStore) path() string {
	return filepath.Join(s.dataDir, "crash_history.json")
}

func (s *HistoryStore) ensureDir() error {
	return os.MkdirAll(s.dataDir, 0755)
}

func (s *HistoryStore) load() {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path())
	if err != nil {
		return
	}
	var m map[string]*CrashHistory
	if err := json.Unmarshal(data, &m); err != nil {
		return
	}
	for id, h := range m {
		if id != "" && h != nil {
			s.histories[id] = h
		}
	}
}

func (s *HistoryStore) save() error {
	data, err := json.MarshalIndent(s.histories, "", "  ")
	if err != nil {
		return err
	}
	if err := s.ensureDir(); err != nil {
		return err
	}
	return os.WriteFile(s.path(), data, 0644)
}

// Record pushes a revealed crash point onto the player's history.
// The in-memory history is updated even when saving fails.
func (s *HistoryStore) Record(playerID string, point decimal.Decimal) (CrashHistory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[playerID]
	if !ok {
		h = &CrashHistory{Recent: []decimal.Decimal{}, Highest: decimal.Zero}
		s.histories[playerID] = h
	}
	h.Recent = append([]decimal.Decimal{point}, h.Recent...)
	if len(h.Recent) > RecentCrashes {
		h.Recent = h.Recent[:RecentCrashes]
	}
	if point.GreaterThan(h.Highest) {
		h.Highest = point
	}
	return h.clone(), s.save()
}

func (s *HistoryStore) Get(playerID string) CrashHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.histories[playerID]
	if !ok {
		return CrashHistory{Recent: []decimal.Decimal{}, Highest: decimal.Zero}
	}
	return h.clone()
}
