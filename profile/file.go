package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Ashenafi-pixel/minicasino/account"
)

// FileStore keeps every profile in memory and rewrites data/profiles.json on each change.
type FileStore struct {
	mu      sync.Mutex
	records map[string]record
	dataDir string
}

func NewFileStore(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		dataDir = "data"
	}
	s := &FileStore{
		records: make(map[string]record),
		dataDir: dataDir,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *FileStore) path() string {
	return filepath.Join(s.dataDir, "profiles.json")
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var list []record
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("profile: parse %s: %w", s.path(), err)
	}
	for _, r := range list {
		if r.PlayerID != "" {
			s.records[r.PlayerID] = r
		}
	}
	return nil
}

func (s *FileStore) saveLocked() error {
	list := make([]record, 0, len(s.records))
	for _, r := range s.records {
		list = append(list, r)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.dataDir, 0755); err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

func (s *FileStore) Load(_ context.Context, playerID string) (account.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[playerID]
	if !ok {
		return account.Profile{}, ErrNotFound
	}
	return r.profile()
}

func (s *FileStore) FindByUsername(_ context.Context, username string) (account.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if username != "" && r.Username == username {
			return r.profile()
		}
	}
	return account.Profile{}, ErrNotFound
}

func (s *FileStore) Create(_ context.Context, p account.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[p.PlayerID]; ok {
		return fmt.Errorf("profile: player %s already exists", p.PlayerID)
	}
	if p.Username != "" {
		for _, r := range s.records {
			if r.Username == p.Username {
				return ErrUsernameTaken
			}
		}
	}
	s.records[p.PlayerID] = toRecord(p)
	return s.saveLocked()
}

func (s *FileStore) Save(_ context.Context, p account.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[p.PlayerID] = toRecord(p)
	return s.saveLocked()
}

func (s *FileStore) Close() error {
	return nil
}
