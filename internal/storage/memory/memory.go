// Package memory stores vehicle records in memory and exports them to JSON
// files on flush. Useful for tests and standalone runs without a database.
package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/tilesim/vehicle/internal/config"
	"github.com/tilesim/vehicle/pkg/core"
)

// Backend keeps the latest snapshot per vehicle in a map.
type Backend struct {
	cfg      config.MemoryConfig
	vehicles map[string]core.VehicleRecord
	mu       sync.RWMutex
}

// New creates a new memory backend.
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{
		cfg:      cfg,
		vehicles: make(map[string]core.VehicleRecord),
	}
}

// Init initializes the backend.
func (b *Backend) Init() error {
	if b.cfg.OutputDir != "" {
		if err := os.MkdirAll(b.cfg.OutputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	return nil
}

// Close flushes remaining state.
func (b *Backend) Close() error {
	return b.Flush()
}

// SaveVehicle stores the latest snapshot for a vehicle.
func (b *Backend) SaveVehicle(rec core.VehicleRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.vehicles[rec.ID] = rec
	return nil
}

// Flush writes one JSON file per vehicle into the output directory.
func (b *Backend) Flush() error {
	if b.cfg.OutputDir == "" {
		return nil
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, rec := range b.vehicles {
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode vehicle %s: %w", id, err)
		}
		path := filepath.Join(b.cfg.OutputDir, id+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return nil
}

// LoadVehicles returns held snapshots plus any JSON files in the output
// directory not already in memory. An unreadable file fails only that
// vehicle.
func (b *Backend) LoadVehicles() ([]core.VehicleRecord, error) {
	b.mu.RLock()
	out := make([]core.VehicleRecord, 0, len(b.vehicles))
	seen := make(map[string]bool, len(b.vehicles))
	for id, rec := range b.vehicles {
		out = append(out, rec)
		seen[id] = true
	}
	b.mu.RUnlock()

	if b.cfg.OutputDir != "" {
		files, err := os.ReadDir(b.cfg.OutputDir)
		if err == nil {
			for _, f := range files {
				if f.IsDir() || filepath.Ext(f.Name()) != ".json" {
					continue
				}
				data, err := os.ReadFile(filepath.Join(b.cfg.OutputDir, f.Name()))
				if err != nil {
					continue
				}
				var rec core.VehicleRecord
				if err := json.Unmarshal(data, &rec); err != nil {
					continue
				}
				if !seen[rec.ID] {
					out = append(out, rec)
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// DeleteVehicle drops a stored vehicle and its exported file.
func (b *Backend) DeleteVehicle(id string) error {
	b.mu.Lock()
	delete(b.vehicles, id)
	b.mu.Unlock()

	if b.cfg.OutputDir != "" {
		path := filepath.Join(b.cfg.OutputDir, id+".json")
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
