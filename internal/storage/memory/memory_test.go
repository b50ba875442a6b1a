package memory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilesim/vehicle/internal/config"
	"github.com/tilesim/vehicle/pkg/core"
)

func TestSaveFlushLoad(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.Init())

	rec := core.VehicleRecord{ID: "veh-1", Name: "cart", Type: "cart", Velocity: 300}
	require.NoError(t, b.SaveVehicle(rec))
	require.NoError(t, b.Flush())

	data, err := os.ReadFile(filepath.Join(dir, "veh-1.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cart"`)

	recs, err := b.LoadVehicles()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "veh-1", recs[0].ID)
	assert.Equal(t, 300, recs[0].Velocity)
}

func TestLoadVehicles_SkipsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.Init())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{oops"), 0o644))
	require.NoError(t, b.SaveVehicle(core.VehicleRecord{ID: "veh-ok"}))

	recs, err := b.LoadVehicles()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "veh-ok", recs[0].ID)
}

func TestDeleteVehicle_RemovesFile(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir})
	require.NoError(t, b.Init())

	require.NoError(t, b.SaveVehicle(core.VehicleRecord{ID: "veh-1"}))
	require.NoError(t, b.Flush())
	require.NoError(t, b.DeleteVehicle("veh-1"))

	_, err := os.Stat(filepath.Join(dir, "veh-1.json"))
	assert.True(t, os.IsNotExist(err))

	recs, err := b.LoadVehicles()
	require.NoError(t, err)
	assert.Empty(t, recs)
}
