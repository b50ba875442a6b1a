package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

func TestTotalMass_TracksContentsAndCargo(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	base := v.TotalMass()
	require.Greater(t, base, 0)

	// Draining fuel sheds the per-charge mass.
	drained := v.Drain(parttype.FuelGasoline, 500)
	require.Equal(t, 500, drained)
	assert.Equal(t, base-500*5, v.TotalMass())

	// Cargo weighs in.
	trunk := findPartOfType(t, v, "trunk")
	require.NoError(t, v.AddItem(trunk, item.Item{Type: "crowbar", Mass: 2000, Volume: 1500, MaxDamage: 4}))
	assert.Equal(t, base-500*5+2000, v.TotalMass())
}

func TestTotalMass_IgnoresRemovedParts(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	before := v.TotalMass()
	wheel := findPartOfType(t, v, "wheel")
	wheelMass := v.Part(wheel).Base.TotalMass()

	require.True(t, v.RemovePart(wheel))
	assert.Equal(t, before-wheelMass, v.TotalMass())
}

func TestBoarding_AddsPassengerMass(t *testing.T) {
	env, _, res := newTestEnv(t)
	v := newRunabout(t, env)

	res.crew[7] = &fakeCreature{name: "driver", mass: 80000, alive: true, strength: 10}
	seat := findPartOfType(t, v, "seat")

	before := v.TotalMass()
	require.True(t, v.BoardPart(seat, 7))
	assert.Equal(t, before+passengerMass, v.TotalMass())

	// The seat is taken now.
	assert.False(t, v.BoardPart(seat, 8))

	got, ok := v.Passenger(seat)
	require.True(t, ok)
	assert.Equal(t, "driver", got.Name())

	v.UnboardPart(seat)
	assert.Equal(t, before, v.TotalMass())
	_, ok = v.Passenger(seat)
	assert.False(t, ok)
}

func TestCenterOfMass_BalancesEqualFrames(t *testing.T) {
	env, _, _ := newTestEnv(t)
	reg := testRegistry(t)
	v := New(env, reg, "beam")

	for _, x := range []int{0, 2} {
		_, err := v.InstallPart(core.Point{X: x}, "frame", v.baseItemFor(mustFind(t, reg, "frame")))
		require.NoError(t, err)
	}

	assert.Equal(t, core.Point{X: 1}, v.CenterOfMass(false))
}

func TestPivotPoint_WheelCentroidThenFallback(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	// Four equal wheels at x = +/-1, y = +/-1 center the pivot.
	assert.Equal(t, core.Point{}, v.PivotPoint())

	// Break all wheels: the pivot falls back to the center of mass.
	for _, i := range v.Wheels() {
		v.Part(i).Base.ModDamage(v.Part(i).Base.MaxDamage)
	}
	v.InvalidateMass()
	assert.Equal(t, v.CenterOfMass(false), v.PivotPoint())
}

func TestInvalidateMass_RefreshesLazily(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	m1 := v.TotalMass()
	tank := v.Part(findPartOfType(t, v, "tank_gas"))
	tank.AmmoConsume(100)

	// Stale until invalidated.
	assert.Equal(t, m1, v.TotalMass())
	v.InvalidateMass()
	assert.Equal(t, m1-100*5, v.TotalMass())
}
