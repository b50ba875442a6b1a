// Package gormstorage implements the storage.Backend interface on GORM with
// an internal write queue and a background writer goroutine. The SQLite and
// PostgreSQL backends wrap it; only connection setup differs between them.
package gormstorage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tilesim/vehicle/internal/queue"
	"github.com/tilesim/vehicle/pkg/core"
)

// VehicleRow is the persisted form of one vehicle: identity columns for
// querying, the full record as a JSON document.
type VehicleRow struct {
	RefID     string `gorm:"primaryKey;column:ref_id"`
	Name      string
	Type      string
	Velocity  int
	State     datatypes.JSON
	UpdatedAt time.Time
}

// TableName keeps the table name stable across dialects.
func (VehicleRow) TableName() string { return "vehicles" }

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB  *gorm.DB
	Log zerolog.Logger
}

// Backend implements storage.Backend using GORM with queue-based batch
// writes.
type Backend struct {
	deps     Dependencies
	saves    *queue.Queue[core.VehicleRecord]
	stopChan chan struct{}
	dbReady  bool
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	return &Backend{
		deps:  deps,
		saves: queue.New[core.VehicleRecord](),
	}
}

// DB exposes the underlying connection for wrapper backends.
func (b *Backend) DB() *gorm.DB { return b.deps.DB }

// Init runs schema migration and starts the background writer.
func (b *Backend) Init() error {
	b.stopChan = make(chan struct{})

	if b.deps.DB == nil {
		return fmt.Errorf("no database connection provided")
	}
	if err := b.deps.DB.AutoMigrate(&VehicleRow{}); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	b.dbReady = true

	go b.writerLoop()
	return nil
}

// Close flushes pending snapshots and stops the writer goroutine.
func (b *Backend) Close() error {
	if b.stopChan != nil {
		close(b.stopChan)
	}
	return b.Flush()
}

// SaveVehicle queues a snapshot; the writer goroutine batches it to the DB.
func (b *Backend) SaveVehicle(rec core.VehicleRecord) error {
	b.saves.Push(rec)
	return nil
}

// Flush writes every queued snapshot in one transaction. Failed batches are
// requeued for the next cycle.
func (b *Backend) Flush() error {
	if b.saves.Empty() {
		return nil
	}
	recs := b.saves.Drain()

	rows := make([]VehicleRow, 0, len(recs))
	for _, rec := range recs {
		state, err := json.Marshal(rec)
		if err != nil {
			b.deps.Log.Error().Err(err).Str("vehicle", rec.ID).
				Msg("cannot encode vehicle state")
			continue
		}
		rows = append(rows, VehicleRow{
			RefID:     rec.ID,
			Name:      rec.Name,
			Type:      rec.Type,
			Velocity:  rec.Velocity,
			State:     state,
			UpdatedAt: time.Now(),
		})
	}
	if len(rows) == 0 {
		return nil
	}

	tx := b.deps.DB.Begin()
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ref_id"}},
		UpdateAll: true,
	}).Create(&rows).Error
	if err != nil {
		tx.Rollback()
		b.saves.Push(recs...)
		return fmt.Errorf("failed to write vehicle batch: %w", err)
	}
	return tx.Commit().Error
}

// LoadVehicles decodes every stored vehicle. A row whose JSON state does not
// decode is logged and skipped so one corrupt vehicle never blocks the rest.
func (b *Backend) LoadVehicles() ([]core.VehicleRecord, error) {
	var rows []VehicleRow
	if err := b.deps.DB.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}

	out := make([]core.VehicleRecord, 0, len(rows))
	for _, row := range rows {
		var rec core.VehicleRecord
		if err := json.Unmarshal(row.State, &rec); err != nil {
			b.deps.Log.Error().Err(err).Str("vehicle", row.RefID).
				Msg("skipping corrupt vehicle record")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// DeleteVehicle removes a stored vehicle.
func (b *Backend) DeleteVehicle(id string) error {
	return b.deps.DB.Delete(&VehicleRow{}, "ref_id = ?", id).Error
}

// writerLoop periodically drains the save queue into the database.
func (b *Backend) writerLoop() {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if !b.dbReady {
				continue
			}
			if err := b.Flush(); err != nil {
				b.deps.Log.Error().Err(err).Msg("vehicle batch write failed")
			}
		}
	}
}
