package storage

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tilesim/vehicle/internal/config"
	"github.com/tilesim/vehicle/internal/storage/memory"
	"github.com/tilesim/vehicle/internal/storage/postgres"
	sqlitestorage "github.com/tilesim/vehicle/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, log zerolog.Logger) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(cfg.Postgres, log)
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpPath:     cfg.Sqlite.DumpPath,
			DumpInterval: time.Duration(cfg.Sqlite.DumpIntervalSec) * time.Second,
		}, log)
	case "memory":
		return memory.New(cfg.Memory), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
