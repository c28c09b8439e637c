package models

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
)

// SupportedPair is one allowed conversion route. Pairs are direction-agnostic:
// storing ETH/BTC also allows BTC→ETH.
type SupportedPair struct {
	FromAsset string `json:"fromAsset"`
	ToAsset   string `json:"toAsset"`
}

// NormalizeAsset uppercases an asset symbol. Idempotent.
func NormalizeAsset(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// AssetRegistry holds the supported pairs. The backing JSON file is the
// durable source of truth; the in-memory list is a cache. Every mutation
// rewrites the whole file before the call returns, under the registry lock,
// so concurrent admin mutations cannot interleave their read-modify-write.
type AssetRegistry struct {
	mu    sync.RWMutex
	path  string
	pairs []SupportedPair
}

// LoadAssetRegistry reads the pair list from a JSON array file.
func LoadAssetRegistry(path string) (*AssetRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read assets file: %w", err)
	}
	var pairs []SupportedPair
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse assets file: %w", err)
	}
	for i := range pairs {
		pairs[i].FromAsset = NormalizeAsset(pairs[i].FromAsset)
		pairs[i].ToAsset = NormalizeAsset(pairs[i].ToAsset)
	}
	return &AssetRegistry{path: path, pairs: pairs}, nil
}

// Supports reports whether a conversion route is allowed, in either stored
// direction.
func (r *AssetRegistry) Supports(from, to string) bool {
	from, to = NormalizeAsset(from), NormalizeAsset(to)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexOf(from, to) >= 0
}

// Pairs returns a copy of the current pair list.
func (r *AssetRegistry) Pairs() []SupportedPair {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]SupportedPair, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// Add appends pairs that are not already present (in either direction) and
// persists the registry. It returns the pairs actually added and those
// skipped as duplicates.
func (r *AssetRegistry) Add(pairs []SupportedPair) (added, duplicates []SupportedPair, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pairs {
		p.FromAsset = NormalizeAsset(p.FromAsset)
		p.ToAsset = NormalizeAsset(p.ToAsset)
		if r.indexOf(p.FromAsset, p.ToAsset) >= 0 || containsPair(added, p) {
			duplicates = append(duplicates, p)
			continue
		}
		added = append(added, p)
	}
	if len(added) == 0 {
		return added, duplicates, nil
	}
	r.pairs = append(r.pairs, added...)
	if err := r.save(); err != nil {
		r.pairs = r.pairs[:len(r.pairs)-len(added)]
		return nil, duplicates, err
	}
	return added, duplicates, nil
}

// Remove deletes pairs matching in either direction and persists the
// registry. It returns the pairs removed and those that were not present.
func (r *AssetRegistry) Remove(pairs []SupportedPair) (removed, missing []SupportedPair, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Work on a copy: deleting in place would shift elements of the live
	// slice's backing array and break the rollback below.
	kept := append([]SupportedPair(nil), r.pairs...)
	for _, p := range pairs {
		p.FromAsset = NormalizeAsset(p.FromAsset)
		p.ToAsset = NormalizeAsset(p.ToAsset)
		idx := indexOfPair(kept, p.FromAsset, p.ToAsset)
		if idx < 0 {
			missing = append(missing, p)
			continue
		}
		removed = append(removed, kept[idx])
		kept = append(kept[:idx], kept[idx+1:]...)
	}
	if len(removed) == 0 {
		return removed, missing, nil
	}
	old := r.pairs
	r.pairs = kept
	if err := r.save(); err != nil {
		r.pairs = old
		return nil, missing, err
	}
	return removed, missing, nil
}

// save rewrites the whole backing file. Caller holds the write lock.
func (r *AssetRegistry) save() error {
	content, err := json.MarshalIndent(r.pairs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal pairs: %w", err)
	}
	if err := os.WriteFile(r.path, content, 0644); err != nil {
		return fmt.Errorf("failed to write assets file: %w", err)
	}
	return nil
}

func (r *AssetRegistry) indexOf(from, to string) int {
	return indexOfPair(r.pairs, from, to)
}

func indexOfPair(pairs []SupportedPair, from, to string) int {
	for i, p := range pairs {
		if (p.FromAsset == from && p.ToAsset == to) || (p.FromAsset == to && p.ToAsset == from) {
			return i
		}
	}
	return -1
}

func containsPair(pairs []SupportedPair, q SupportedPair) bool {
	return indexOfPair(pairs, q.FromAsset, q.ToAsset) >= 0
}
