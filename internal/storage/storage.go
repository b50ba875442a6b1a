package storage

import "github.com/tilesim/vehicle/pkg/core"

// Backend is the interface all storage implementations must satisfy.
// Vehicles are persisted as whole records; derived state is rebuilt on load,
// never stored.
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// SaveVehicle queues one vehicle snapshot for persistence.
	SaveVehicle(rec core.VehicleRecord) error

	// Flush forces queued snapshots to durable storage.
	Flush() error

	// LoadVehicles returns every stored vehicle. A corrupt record fails only
	// that vehicle, not the whole load.
	LoadVehicles() ([]core.VehicleRecord, error)

	// DeleteVehicle removes a stored vehicle by identity.
	DeleteVehicle(id string) error
}
