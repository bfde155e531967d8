// Package checkpoint tracks which block ranges have been fully fetched and
// written, so a resumed worker run can skip them. The store is a single
// JSON document, rewritten atomically on every mutation.
package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/chainlake/chainlake/internal/planner"
)

// Store is a checkpoint set backed by a JSON file on disk. Safe for
// concurrent use by a single process; not safe for concurrent writers across
// processes sharing the same path.
type Store struct {
	mu   sync.Mutex
	path string
	done map[string]bool
}

// Open loads the checkpoint set from path. A missing file is treated as an
// empty set.
func Open(path string) (*Store, error) {
	s := &Store{path: path, done: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read checkpoint store %s: %w", path, err)
	}

	if len(data) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(data, &s.done); err != nil {
		return nil, fmt.Errorf("parse checkpoint store %s: %w", path, err)
	}

	return s, nil
}

func key(r planner.Range) string {
	return fmt.Sprintf("%d:%d:%d", r.ChainID, r.StartBlock, r.EndBlock)
}

// IsDone reports whether r has already been marked done.
func (s *Store) IsDone(r planner.Range) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done[key(r)]
}

// MarkDone marks every range in rs as done and persists the store
// atomically (write to a temp file, then rename over the target path) so a
// crash mid-write never leaves a corrupt or partially-written checkpoint
// file behind.
func (s *Store) MarkDone(rs []planner.Range) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rs {
		s.done[key(r)] = true
	}

	return s.persistLocked()
}

func (s *Store) persistLocked() error {
	data, err := json.MarshalIndent(s.done, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write checkpoint temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close checkpoint temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename checkpoint temp file into place: %w", err)
	}

	return nil
}
