package gormstorage

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilesim/vehicle/internal/database"
	"github.com/tilesim/vehicle/pkg/core"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDB("")
	require.NoError(t, err)

	b := New(Dependencies{DB: db, Log: zerolog.Nop()})
	require.NoError(t, b.Init())
	// The shared in-memory DB survives across connections in one process.
	require.NoError(t, db.Exec("DELETE FROM vehicles").Error)
	t.Cleanup(func() { b.Close() })
	return b
}

func sampleRecord(id string) core.VehicleRecord {
	return core.VehicleRecord{
		ID:       id,
		Name:     "runabout",
		Type:     "runabout",
		Velocity: 1200,
		FaceDir:  90,
		EngineOn: true,
		Parts: []core.PartRecord{
			{Type: "frame", Mount: core.Point{X: 0, Y: 0}, Base: core.ItemRecord{Type: "frame"}},
			{Type: "engine_v6", Mount: core.Point{X: 0, Y: 0}, Base: core.ItemRecord{Type: "engine_v6", Damage: 1}},
		},
		Tags: []string{"convertible"},
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.SaveVehicle(sampleRecord("veh-1")))
	require.NoError(t, b.SaveVehicle(sampleRecord("veh-2")))
	require.NoError(t, b.Flush())

	recs, err := b.LoadVehicles()
	require.NoError(t, err)
	require.Len(t, recs, 2)

	byID := map[string]core.VehicleRecord{}
	for _, r := range recs {
		byID[r.ID] = r
	}
	got := byID["veh-1"]
	assert.Equal(t, "runabout", got.Name)
	assert.Equal(t, 1200, got.Velocity)
	assert.Equal(t, 90, got.FaceDir)
	assert.True(t, got.EngineOn)
	require.Len(t, got.Parts, 2)
	assert.Equal(t, "engine_v6", got.Parts[1].Type)
	assert.Equal(t, 1, got.Parts[1].Base.Damage)
}

func TestSaveVehicle_UpsertsByID(t *testing.T) {
	b := newTestBackend(t)

	rec := sampleRecord("veh-1")
	require.NoError(t, b.SaveVehicle(rec))
	require.NoError(t, b.Flush())

	rec.Velocity = 0
	rec.EngineOn = false
	require.NoError(t, b.SaveVehicle(rec))
	require.NoError(t, b.Flush())

	recs, err := b.LoadVehicles()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 0, recs[0].Velocity)
	assert.False(t, recs[0].EngineOn)
}

func TestLoadVehicles_SkipsCorruptRow(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.SaveVehicle(sampleRecord("veh-ok")))
	require.NoError(t, b.Flush())

	// Introduce a row whose state blob is not valid JSON.
	require.NoError(t, b.DB().Exec(
		`INSERT INTO vehicles (ref_id, name, type, velocity, state) VALUES (?, ?, ?, ?, ?)`,
		"veh-bad", "junk", "junk", 0, []byte("{not json"),
	).Error)

	recs, err := b.LoadVehicles()
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "veh-ok", recs[0].ID)
}

func TestDeleteVehicle(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.SaveVehicle(sampleRecord("veh-1")))
	require.NoError(t, b.Flush())
	require.NoError(t, b.DeleteVehicle("veh-1"))

	recs, err := b.LoadVehicles()
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestFlush_EmptyQueueIsNoop(t *testing.T) {
	b := newTestBackend(t)
	assert.NoError(t, b.Flush())
}
