package vehicle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// newArmedRunabout mounts a machine gun on the runabout's roof.
func newArmedRunabout(t *testing.T, env *Env) (*Vehicle, int) {
	t.Helper()
	v := newRunabout(t, env)
	ti, err := v.InstallPart(core.Point{}, "turret_mg", v.baseItemFor(mustFind(t, v.registry, "turret_mg")))
	require.NoError(t, err)
	return v, ti
}

func TestTurretStatus_Transitions(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v, ti := newArmedRunabout(t, env)

	// A seat is not a turret.
	seat := findPartOfType(t, v, "seat")
	assert.Equal(t, TurretInvalid, v.TurretQuery(seat).Status())

	tq := v.TurretQuery(ti)
	assert.Equal(t, TurretNoAmmo, tq.Status())

	require.Equal(t, 50, v.Part(ti).AmmoSet("ammo_762", 50))
	assert.Equal(t, TurretReady, tq.Status())

	// Each shot draws battery charge; an empty network blocks firing.
	v.Drain(parttype.FuelBattery, 9000)
	assert.Equal(t, TurretNoPower, tq.Status())

	v.Part(ti).Base.ModDamage(v.Part(ti).Base.MaxDamage)
	assert.Equal(t, TurretInvalid, tq.Status())
	assert.Equal(t, "invalid", tq.Status().String())
}

func TestTurretFire_ConsumesAmmoAndPower(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v, ti := newArmedRunabout(t, env)
	v.Part(ti).AmmoSet("ammo_762", 50)

	tq := v.TurretQuery(ti)
	assert.Equal(t, 3, tq.Fire(3))
	assert.Equal(t, 47, v.Part(ti).AmmoRemaining())
	assert.Equal(t, 220, v.FuelLeft(parttype.FuelBattery, false, false))

	evs := env.Events.Drain()
	require.Len(t, evs, 1)
	assert.Equal(t, EventNoise, evs[0].Kind)
	assert.Equal(t, 60, evs[0].Amount)
}

func TestTurretFire_ClampsToFireRate(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v, ti := newArmedRunabout(t, env)
	v.Part(ti).AmmoSet("ammo_762", 50)

	assert.Equal(t, 5, v.TurretQuery(ti).Fire(20))
	assert.Equal(t, 45, v.Part(ti).AmmoRemaining())
}

func TestTurretFire_ExhaustsMagazine(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v, ti := newArmedRunabout(t, env)
	v.Part(ti).AmmoSet("ammo_762", 2)

	assert.Equal(t, 2, v.TurretQuery(ti).Fire(5))
	assert.Equal(t, TurretNoAmmo, v.TurretQuery(ti).Status())
}

func TestTurret_TankFed(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)
	fi, err := v.InstallPart(core.Point{X: 1}, "turret_flamethrower",
		v.baseItemFor(mustFind(t, v.registry, "turret_flamethrower")))
	require.NoError(t, err)

	tq := v.TurretQuery(fi)
	assert.Equal(t, []string{parttype.FuelGasoline}, tq.AmmoOptions())
	assert.True(t, tq.AmmoSelect(parttype.FuelGasoline))
	assert.False(t, tq.AmmoSelect("water"))
	assert.Equal(t, TurretReady, tq.Status())

	assert.Equal(t, 2, tq.Fire(2))
	assert.Equal(t, 1498, v.FuelLeft(parttype.FuelGasoline, false, false))
	assert.Equal(t, 210, v.FuelLeft(parttype.FuelBattery, false, false))
}

func TestAutomaticFireTurret(t *testing.T) {
	env, _, res := newTestEnv(t)
	v, ti := newArmedRunabout(t, env)
	v.Part(ti).AmmoSet("ammo_762", 50)
	v.Part(ti).Enabled = true

	cr := &fakeCreature{name: "zombie", mass: 60000, alive: true}
	pos := core.Tripoint{X: 5, Y: 5}
	res.creatures[pos] = cr
	v.TurretQuery(ti).SetTarget(pos)

	assert.Equal(t, 5, v.AutomaticFireTurret(ti))
	assert.Equal(t, 50, cr.hurtFor)
	assert.Equal(t, 45, v.Part(ti).AmmoRemaining())
}

func TestAutomaticFireTurret_HoldsFire(t *testing.T) {
	env, _, res := newTestEnv(t)
	v, ti := newArmedRunabout(t, env)
	v.Part(ti).AmmoSet("ammo_762", 50)

	cr := &fakeCreature{name: "zombie", mass: 60000, alive: true}
	pos := core.Tripoint{X: 5, Y: 5}
	res.creatures[pos] = cr
	v.TurretQuery(ti).SetTarget(pos)

	// Disabled turrets never fire on their own.
	assert.Zero(t, v.AutomaticFireTurret(ti))

	// A dead target clears the firing solution.
	v.Part(ti).Enabled = true
	cr.alive = false
	assert.Zero(t, v.AutomaticFireTurret(ti))
	assert.Equal(t, core.Tripoint{}, v.Part(ti).Target)

	// A target beyond range is dropped too.
	far := core.Tripoint{X: 30}
	res.creatures[far] = &fakeCreature{name: "runner", mass: 60000, alive: true}
	v.TurretQuery(ti).SetTarget(far)
	assert.Zero(t, v.AutomaticFireTurret(ti))
	assert.Equal(t, core.Tripoint{}, v.Part(ti).Target)
	assert.Equal(t, 50, v.Part(ti).AmmoRemaining())
}
