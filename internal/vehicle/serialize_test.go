package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

func TestSerialize_Roundtrip(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	// Dirty up the state so the roundtrip carries more than defaults.
	v.SmX, v.SmY = 4, 7
	v.PosX, v.PosY = 3, 9
	v.Velocity = 1200
	v.CruiseVelocity = 2000
	v.Skidding = true
	v.StartEngines()
	v.SetLabel(0, 0, "driver seat")
	v.Tag("convertible")
	trunk := findPartOfType(t, v, "trunk")
	// Cargo reloads from its type template, so use matching dimensions.
	require.NoError(t, v.AddItem(trunk, item.New("toolbox", 1000, 250, 4)))
	wheel := findPartOfType(t, v, "wheel")
	v.Part(wheel).Base.ModDamage(30)
	require.True(t, v.RemovePart(findPartOfType(t, v, "headlight")))

	rec := v.ToRecord()
	got, err := FromRecord(env, testRegistry(t), rec)
	require.NoError(t, err)

	// The reloaded vehicle serializes to the identical record.
	assert.Equal(t, rec, got.ToRecord())

	// And behaves the same where it counts.
	assert.Equal(t, v.PartCount(), got.PartCount())
	assert.Equal(t, v.TotalMass(), got.TotalMass())
	assert.Equal(t, v.FuelLeft(parttype.FuelGasoline, false, false),
		got.FuelLeft(parttype.FuelGasoline, false, false))
	assert.Equal(t, v.GlobalPos(), got.GlobalPos())
	assert.True(t, got.EngineOn)
	assert.Equal(t, "driver seat", got.GetLabel(0, 0))
	assert.True(t, got.HasTag("convertible"))
	assert.Equal(t, 30, got.Part(wheel).Base.Damage)
}

func TestSerialize_RemovedPartsSurviveUntilCleanup(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)
	hl := findPartOfType(t, v, "headlight")
	require.True(t, v.RemovePart(hl))

	got, err := FromRecord(env, testRegistry(t), v.ToRecord())
	require.NoError(t, err)

	assert.Equal(t, v.Parts(), got.Parts())
	assert.Equal(t, 18, got.PartCount())
	got.PartRemovalCleanup()
	assert.Equal(t, 18, got.Parts())
}

func TestFromRecord_UnknownPartType(t *testing.T) {
	env, _, _ := newTestEnv(t)
	rec := core.VehicleRecord{
		ID:   "wreck",
		Name: "wreck",
		Parts: []core.PartRecord{
			{Type: "frame", Mount: core.Point{}},
			{Type: "flux_capacitor", Mount: core.Point{}},
		},
	}
	_, err := FromRecord(env, testRegistry(t), rec)
	assert.ErrorIs(t, err, ErrUnknownPartType)
}

func TestSerialize_CrewZeroRoundTrip(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)
	seat := findPartOfType(t, v, "seat")
	require.True(t, v.BoardPart(seat, 0))

	got, err := FromRecord(env, testRegistry(t), v.ToRecord())
	require.NoError(t, err)

	// Crew key 0 is a valid assignment and must survive the trip.
	assert.Equal(t, 0, got.Part(seat).CrewID)
	assert.True(t, got.Part(seat).HasFlag(PassengerFlag))

	got.UnboardPart(seat)
	rt, err := FromRecord(env, testRegistry(t), got.ToRecord())
	require.NoError(t, err)
	assert.Equal(t, noCrew, rt.Part(seat).CrewID)
	assert.False(t, rt.Part(seat).HasFlag(PassengerFlag))
}
