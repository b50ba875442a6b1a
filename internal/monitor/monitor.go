// Package monitor periodically reports simulation health: vehicle counts,
// pending world events and collected metrics, written to a status file and
// the log.
package monitor

import (
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tilesim/vehicle/internal/otel"
	"github.com/tilesim/vehicle/internal/world"
)

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	World      *world.World
	Otel       *otel.Provider
	Log        zerolog.Logger
	StatusPath string
	Interval   time.Duration
}

// Status is one snapshot of the simulation.
type Status struct {
	Time          time.Time `json:"time"`
	Turn          int       `json:"turn"`
	Vehicles      int       `json:"vehicles"`
	PendingEvents int       `json:"pending_events"`
	MetricScopes  int       `json:"metric_scopes"`
}

// Service manages status monitoring.
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
}

// NewService creates a new monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = time.Second
	}
	return &Service{
		deps:     deps,
		stopChan: make(chan struct{}),
	}
}

// IsRunning returns whether the status monitor is running.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Snapshot gathers the current simulation status.
func (s *Service) Snapshot(ctx context.Context) Status {
	st := Status{
		Time:          time.Now(),
		Turn:          s.deps.World.Turn(),
		Vehicles:      len(s.deps.World.Vehicles()),
		PendingEvents: s.deps.World.Env().Events.Len(),
	}
	if s.deps.Otel != nil && s.deps.Otel.Enabled() {
		if rm, err := s.deps.Otel.Collect(ctx); err == nil {
			st.MetricScopes = len(rm.ScopeMetrics)
		}
	}
	return st
}

// Start starts the status monitor goroutine.
func (s *Service) Start() error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		s.deps.Log.Debug().Msg("starting status monitor goroutine")

		var statusFile *os.File
		if s.deps.StatusPath != "" {
			var err error
			statusFile, err = os.Create(s.deps.StatusPath)
			if err != nil {
				s.deps.Log.Error().Err(err).Msg("error creating status file")
			} else {
				defer statusFile.Close()
			}
		}

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				st := s.Snapshot(context.Background())
				s.deps.Log.Debug().
					Int("turn", st.Turn).
					Int("vehicles", st.Vehicles).
					Int("pendingEvents", st.PendingEvents).
					Msg("simulation status")

				if statusFile != nil {
					data, err := json.MarshalIndent(st, "", "  ")
					if err != nil {
						continue
					}
					statusFile.Truncate(0)
					statusFile.Seek(0, 0)
					statusFile.Write(append(data, '\n'))
				}
			}
		}
	}()

	return nil
}

// Stop stops the status monitor.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
	}
}
