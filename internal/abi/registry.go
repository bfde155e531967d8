// Package abi loads contract event ABIs from disk and resolves, per
// protocol and optionally per block number or version, which ABI
// definition a log should be decoded against.
package abi

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Registry resolves protocol event ABIs out of a directory of
// <name>.json files, optionally guided by a registry.json mapping
// protocol to an ordered list of versioned entries.
type Registry struct {
	dir string

	mu      sync.Mutex
	cache   map[string]*ContractABI
	entries map[string][]RegistryEntry
}

// NewRegistry opens dir, reading registry.json if present. A missing
// registry.json is treated as no versioned entries for any protocol.
func NewRegistry(dir string) (*Registry, error) {
	r := &Registry{dir: dir, cache: make(map[string]*ContractABI)}

	data, err := os.ReadFile(filepath.Join(dir, "registry.json"))
	switch {
	case err == nil:
		var raw map[string][]RegistryEntry
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse registry.json: %w", err)
		}
		r.entries = raw
	case os.IsNotExist(err):
		r.entries = map[string][]RegistryEntry{}
	default:
		return nil, fmt.Errorf("read registry.json: %w", err)
	}

	return r, nil
}

// Load reads and memoizes <dir>/<name>.json.
func (r *Registry) Load(name string) (*ContractABI, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(name)
}

func (r *Registry) loadLocked(name string) (*ContractABI, error) {
	if cached, ok := r.cache[name]; ok {
		return cached, nil
	}

	data, err := os.ReadFile(filepath.Join(r.dir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("read abi %s: %w", name, err)
	}

	var parsed ContractABI
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse abi %s: %w", name, err)
	}

	r.cache[name] = &parsed
	return &parsed, nil
}

// EventTopic computes topic0 for event: keccak256("Name(type1,type2,...)").
func EventTopic(event EventABI) common.Hash {
	types := make([]string, len(event.Inputs))
	for i, in := range event.Inputs {
		types[i] = in.Type
	}
	signature := fmt.Sprintf("%s(%s)", event.Name, strings.Join(types, ","))
	return crypto.Keccak256Hash([]byte(signature))
}

// GetEvent resolves protocol's eventName to an ABI entry:
//  1. if version is set and matches a registry entry, use it;
//  2. else if blockNumber is set, use the entry with the largest
//     start_block <= blockNumber;
//  3. else use the entry with the largest start_block;
//  4. if the protocol has no registry entries at all, fall back to an
//     unversioned Load(protocol).
func (r *Registry) GetEvent(protocol, eventName string, blockNumber *uint64, version *string) (*EventABI, error) {
	r.mu.Lock()
	entries := append([]RegistryEntry(nil), r.entries[protocol]...)
	r.mu.Unlock()

	if len(entries) == 0 {
		doc, err := r.Load(protocol)
		if err != nil {
			return nil, err
		}
		return findEvent(doc, eventName)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].StartBlock < entries[j].StartBlock })

	var chosen *RegistryEntry
	if version != nil {
		for i := range entries {
			if entries[i].Version == *version {
				chosen = &entries[i]
				break
			}
		}
	}
	if chosen == nil && blockNumber != nil {
		for i := range entries {
			if entries[i].StartBlock > *blockNumber {
				break
			}
			chosen = &entries[i]
		}
	}
	if chosen == nil {
		chosen = &entries[len(entries)-1]
	}

	doc, err := r.Load(chosen.ABI)
	if err != nil {
		return nil, err
	}
	return findEvent(doc, eventName)
}

func findEvent(doc *ContractABI, eventName string) (*EventABI, error) {
	for i := range doc.Events {
		if doc.Events[i].Name == eventName {
			return &doc.Events[i], nil
		}
	}
	return nil, fmt.Errorf("event %s not found in abi", eventName)
}
