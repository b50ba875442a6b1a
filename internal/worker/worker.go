// Package worker persists the running simulation in the background:
// vehicle snapshots are taken on an interval and handed to the storage
// backend.
package worker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tilesim/vehicle/internal/storage"
	"github.com/tilesim/vehicle/internal/world"
)

// Dependencies holds all dependencies for the worker manager.
type Dependencies struct {
	World    *world.World
	Backend  storage.Backend
	Log      zerolog.Logger
	Interval time.Duration
}

// Manager snapshots vehicles to storage on a schedule.
type Manager struct {
	deps      Dependencies
	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
	lastWrite time.Duration
}

// NewManager creates a new worker manager.
func NewManager(deps Dependencies) *Manager {
	if deps.Interval <= 0 {
		deps.Interval = 5 * time.Second
	}
	return &Manager{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// SnapshotAll records every registered vehicle into the backend queue.
func (m *Manager) SnapshotAll() int {
	start := time.Now()
	n := 0
	for _, v := range m.deps.World.Vehicles() {
		m.deps.Backend.SaveVehicle(v.ToRecord())
		n++
	}
	m.mu.Lock()
	m.lastWrite = time.Since(start)
	m.mu.Unlock()
	return n
}

// GetLastWriteDuration returns the duration of the last snapshot cycle.
func (m *Manager) GetLastWriteDuration() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastWrite
}

// Start launches the background snapshot goroutine.
func (m *Manager) Start() {
	m.mu.Lock()
	if m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = true
	m.stopChan = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer func() {
			m.mu.Lock()
			m.isRunning = false
			m.mu.Unlock()
		}()

		ticker := time.NewTicker(m.deps.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopChan:
				return
			case <-ticker.C:
				n := m.SnapshotAll()
				m.deps.Log.Debug().Int("vehicles", n).Msg("snapshot cycle complete")
			}
		}
	}()
}

// Stop halts the goroutine and flushes a final snapshot.
func (m *Manager) Stop() {
	m.mu.Lock()
	running := m.isRunning
	if running {
		close(m.stopChan)
	}
	m.mu.Unlock()

	m.SnapshotAll()
	if err := m.deps.Backend.Flush(); err != nil {
		m.deps.Log.Error().Err(err).Msg("final snapshot flush failed")
	}
}
