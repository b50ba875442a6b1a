package world

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/internal/vehicle"
	"github.com/tilesim/vehicle/pkg/core"
)

type testCreature struct {
	name    string
	mass    int
	alive   bool
	hurtFor int
}

func (c *testCreature) Name() string  { return c.name }
func (c *testCreature) Mass() int     { return c.mass }
func (c *testCreature) Alive() bool   { return c.alive }
func (c *testCreature) Hurt(dmg int)  { c.hurtFor += dmg }
func (c *testCreature) Strength() int { return 8 }

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w := New(parttype.Builtin(zerolog.Nop()), zerolog.Nop())
	w.Env().Rand = rand.New(rand.NewSource(42))
	return w
}

func TestSpawnVehicle(t *testing.T) {
	w := newTestWorld(t)

	v, err := w.SpawnVehicle("runabout", core.Tripoint{X: 60, Y: 60}, 0, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, core.Tripoint{X: 60, Y: 60}, v.GlobalPos())
	assert.Equal(t, 19, v.PartCount())

	got, ok := w.Vehicle(v.ID)
	require.True(t, ok)
	assert.Same(t, v, got)
	assert.Len(t, w.Vehicles(), 1)

	_, err = w.SpawnVehicle("hovercraft", core.Tripoint{}, 0, 50, 0)
	assert.Error(t, err)
}

func TestRemoveVehicle(t *testing.T) {
	w := newTestWorld(t)
	v, err := w.SpawnVehicle("runabout", core.Tripoint{X: 60, Y: 60}, 0, 50, 0)
	require.NoError(t, err)

	w.RemoveVehicle(v.ID)
	assert.Empty(t, w.Vehicles())
	_, ok := w.Vehicle(v.ID)
	assert.False(t, ok)
}

func TestTerrainDefaults(t *testing.T) {
	w := newTestWorld(t)
	p := core.Tripoint{X: 3, Y: 3}

	// Unset tiles are open pavement.
	assert.True(t, w.Passable(p))
	assert.True(t, w.HasFloor(p))
	assert.False(t, w.Liquid(p))
	assert.Zero(t, w.BashStrength(p))
	assert.Equal(t, 1.0, w.Traction(p))
	assert.False(t, w.Bash(p, 1000))
}

func TestTerrainBash(t *testing.T) {
	w := newTestWorld(t)
	p := core.Tripoint{X: 3, Y: 3}
	w.SetTile(p, Tile{Impassable: true, BashStrength: 100})

	assert.False(t, w.Passable(p))
	assert.False(t, w.Bash(p, 50))
	assert.False(t, w.Passable(p))

	assert.True(t, w.Bash(p, 150))
	assert.True(t, w.Passable(p))
	assert.Zero(t, w.BashStrength(p))
}

func TestVehicleAt(t *testing.T) {
	w := newTestWorld(t)
	v, err := w.SpawnVehicle("runabout", core.Tripoint{X: 60, Y: 60}, 0, 50, 0)
	require.NoError(t, err)

	got, pi, ok := w.VehicleAt(core.Tripoint{X: 61, Y: 60})
	require.True(t, ok)
	assert.Same(t, v, got)
	assert.GreaterOrEqual(t, pi, 0)

	_, _, ok = w.VehicleAt(core.Tripoint{X: 65, Y: 60})
	assert.False(t, ok)
}

func TestCreatureRegistry(t *testing.T) {
	w := newTestWorld(t)
	pos := core.Tripoint{X: 5, Y: 5}
	cr := &testCreature{name: "dog", mass: 30000, alive: true}
	w.PlaceCreature(pos, cr)

	got, ok := w.CreatureAt(pos)
	require.True(t, ok)
	assert.Equal(t, "dog", got.Name())

	// Corpses stop registering.
	cr.alive = false
	_, ok = w.CreatureAt(pos)
	assert.False(t, ok)

	w.RegisterCrew(3, cr)
	crew, ok := w.Crew(3)
	require.True(t, ok)
	assert.Equal(t, "dog", crew.Name())
}

func TestStep_CruisingVehicleMoves(t *testing.T) {
	w := newTestWorld(t)
	v, err := w.SpawnVehicle("runabout", core.Tripoint{X: 60, Y: 60}, 0, 100, 0)
	require.NoError(t, err)
	require.True(t, v.StartEngines())
	v.CruiseThrust(3000)

	for i := 0; i < 10; i++ {
		w.Step()
	}

	assert.Equal(t, 10, w.Turn())
	assert.Greater(t, v.Velocity, 0)
	assert.Greater(t, v.GlobalPos().X, 60)
	assert.Equal(t, 60, v.GlobalPos().Y)
}

func TestStep_WallStopsVehicle(t *testing.T) {
	w := newTestWorld(t)
	v, err := w.SpawnVehicle("runabout", core.Tripoint{X: 60, Y: 60}, 0, 50, 0)
	require.NoError(t, err)
	for y := 58; y <= 62; y++ {
		w.SetTile(core.Tripoint{X: 63, Y: y}, Tile{Impassable: true})
	}
	v.Velocity = 2000

	w.Step()

	// One clear tile gained, then the wall throws the vehicle back.
	assert.Equal(t, 61, v.GlobalPos().X)
	assert.Less(t, v.Velocity, 0)
}

func TestStep_FuelSpillLandsOnTile(t *testing.T) {
	w := newTestWorld(t)
	pos := core.Tripoint{X: 8, Y: 8}
	w.Env().Events.Push(vehicle.WorldEvent{
		Kind:   vehicle.EventFuelSpill,
		Pos:    pos,
		Fuel:   parttype.FuelGasoline,
		Amount: 120,
	})

	w.Step()

	tl := w.tile(pos)
	require.NotNil(t, tl)
	require.Len(t, tl.Items, 1)
	assert.Equal(t, "spilled_gasoline", tl.Items[0].Type)
	assert.Equal(t, 120, tl.Items[0].Charges)
}

func TestStep_AreaDamage(t *testing.T) {
	w := newTestWorld(t)
	v, err := w.SpawnVehicle("runabout", core.Tripoint{X: 70, Y: 59}, 0, 50, 0)
	require.NoError(t, err)
	near := &testCreature{name: "bystander", mass: 70000, alive: true}
	far := &testCreature{name: "onlooker", mass: 70000, alive: true}
	w.PlaceCreature(core.Tripoint{X: 72, Y: 61}, near)
	w.PlaceCreature(core.Tripoint{X: 80, Y: 60}, far)

	hpBefore := 0
	for i := 0; i < v.Parts(); i++ {
		hpBefore += v.Part(i).HP()
	}

	w.Env().Events.Push(vehicle.WorldEvent{
		Kind:   vehicle.EventAreaDamage,
		Pos:    core.Tripoint{X: 72, Y: 60},
		Amount: 30,
		Radius: 1,
	})
	w.Step()

	assert.Equal(t, 30, near.hurtFor)
	assert.Zero(t, far.hurtFor)

	hpAfter := 0
	for i := 0; i < v.Parts(); i++ {
		hpAfter += v.Part(i).HP()
	}
	assert.Less(t, hpAfter, hpBefore)
}
