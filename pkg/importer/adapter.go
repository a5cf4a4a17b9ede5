// Package importer fetches the published data files the registries are built
// from, and tracks source URLs and fetch status in a small SQLite database.
package importer

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Adapter downloads one source file and installs it under the data directory.
type Adapter interface {
	// ID returns the unique identifier of this adapter (e.g. "ivd-sequences").
	ID() string
	// File returns the installed file name under the data directory.
	File() string
	// Description returns a human-readable description.
	Description() string
	// DefaultURL returns the default source URL used for seeding the database.
	DefaultURL() string
	// License returns the license identifier for this source.
	License() string
	// Import downloads from sourceURL, validates the result by parsing it,
	// and writes the data file plus a manifest.yaml entry into outputDir.
	Import(ctx context.Context, sourceURL, outputDir string) error
}

var (
	registryMu sync.RWMutex
	adapters   = make(map[string]Adapter)
)

// Register adds an adapter to the global registry.
func Register(a Adapter) {
	registryMu.Lock()
	defer registryMu.Unlock()
	adapters[a.ID()] = a
}

// Get returns a registered adapter by ID, or an error if not found.
func Get(id string) (Adapter, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	a, ok := adapters[id]
	if !ok {
		return nil, fmt.Errorf("unknown import source: %q", id)
	}
	return a, nil
}

// All returns all registered adapters sorted by ID.
func All() []Adapter {
	registryMu.RLock()
	defer registryMu.RUnlock()
	result := make([]Adapter, 0, len(adapters))
	for _, a := range adapters {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID() < result[j].ID() })
	return result
}
