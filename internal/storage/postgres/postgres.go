// Package postgres implements the storage.Backend interface on a PostgreSQL
// connection, delegating everything but connection setup to the shared GORM
// backend.
package postgres

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tilesim/vehicle/internal/config"
	"github.com/tilesim/vehicle/internal/database"
	gormstorage "github.com/tilesim/vehicle/internal/storage/gorm"
)

// Backend wraps the GORM backend over a PostgreSQL connection.
type Backend struct {
	*gormstorage.Backend
}

// New creates a new PostgreSQL storage backend.
func New(cfg config.PostgresConfig, log zerolog.Logger) (*Backend, error) {
	db, err := database.GetPostgresDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return &Backend{
		Backend: gormstorage.New(gormstorage.Dependencies{DB: db, Log: log}),
	}, nil
}
