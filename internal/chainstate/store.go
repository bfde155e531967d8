// Package chainstate tracks, per chain, the highest block number and hash
// chainlake has successfully written, so a resumed worker or tailer can
// validate that the next range links onto what was last persisted. The
// store is a single JSON document, rewritten atomically on every update.
package chainstate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// State is the last-known canonical position for one chain.
type State struct {
	LastBlockNumber uint64 `json:"last_block_number"`
	LastBlockHash   string `json:"last_block_hash"`
	UpdatedAt       string `json:"updated_at"`
}

// Store is a chain-state set backed by a JSON file on disk, keyed by
// decimal chain ID. Single-writer-per-chain; the store itself applies no
// extra locking beyond what's needed to keep one process's reads and writes
// internally consistent.
type Store struct {
	mu     sync.Mutex
	path   string
	states map[string]State
}

// Open loads chain state from path. A missing file is treated as empty.
func Open(path string) (*Store, error) {
	s := &Store{path: path, states: make(map[string]State)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read chain state %s: %w", path, err)
	}

	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.states); err != nil {
		return nil, fmt.Errorf("parse chain state %s: %w", path, err)
	}

	return s, nil
}

// Get returns the last-known state for chainID and whether it exists.
func (s *Store) Get(chainID uint64) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.states[chainKey(chainID)]
	return st, ok
}

// Update sets the state for chainID and persists atomically.
func (s *Store) Update(chainID uint64, st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[chainKey(chainID)] = st
	return s.persistLocked()
}

func chainKey(chainID uint64) string {
	return fmt.Sprintf("%d", chainID)
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.states, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal chain state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create chain state dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".chainstate-*.tmp")
	if err != nil {
		return fmt.Errorf("create chain state temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write chain state temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close chain state temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename chain state temp file into place: %w", err)
	}

	return nil
}
