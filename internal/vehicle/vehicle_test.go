package vehicle

import (
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// fakeTerrain is flat pavement unless a tile is overridden.
type fakeTerrain struct {
	impassable map[core.Tripoint]bool
	noFloor    map[core.Tripoint]bool
	liquid     map[core.Tripoint]bool
	bashable   map[core.Tripoint]int
	traction   map[core.Tripoint]float64
	bashed     []core.Tripoint
}

func newFakeTerrain() *fakeTerrain {
	return &fakeTerrain{
		impassable: make(map[core.Tripoint]bool),
		noFloor:    make(map[core.Tripoint]bool),
		liquid:     make(map[core.Tripoint]bool),
		bashable:   make(map[core.Tripoint]int),
		traction:   make(map[core.Tripoint]float64),
	}
}

func (t *fakeTerrain) Passable(p core.Tripoint) bool    { return !t.impassable[p] }
func (t *fakeTerrain) HasFloor(p core.Tripoint) bool    { return !t.noFloor[p] }
func (t *fakeTerrain) Liquid(p core.Tripoint) bool      { return t.liquid[p] }
func (t *fakeTerrain) BashStrength(p core.Tripoint) int { return t.bashable[p] }

func (t *fakeTerrain) Bash(p core.Tripoint, strength int) bool {
	t.bashed = append(t.bashed, p)
	if strength >= t.bashable[p] && t.bashable[p] > 0 {
		t.bashable[p] = 0
		t.impassable[p] = false
		return true
	}
	return false
}

func (t *fakeTerrain) Traction(p core.Tripoint) float64 {
	if tr, ok := t.traction[p]; ok {
		return tr
	}
	return 1.0
}

type fakeCreature struct {
	name     string
	mass     int
	alive    bool
	hurtFor  int
	strength int
}

func (c *fakeCreature) Name() string  { return c.name }
func (c *fakeCreature) Mass() int     { return c.mass }
func (c *fakeCreature) Alive() bool   { return c.alive }
func (c *fakeCreature) Hurt(dmg int)  { c.hurtFor += dmg }
func (c *fakeCreature) Strength() int { return c.strength }

type fakeResolver struct {
	vehicles  map[core.Tripoint]*Vehicle
	creatures map[core.Tripoint]*fakeCreature
	crew      map[int]*fakeCreature
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{
		vehicles:  make(map[core.Tripoint]*Vehicle),
		creatures: make(map[core.Tripoint]*fakeCreature),
		crew:      make(map[int]*fakeCreature),
	}
}

func (r *fakeResolver) VehicleAt(p core.Tripoint) (*Vehicle, int, bool) {
	if v, ok := r.vehicles[p]; ok {
		return v, 0, true
	}
	return nil, -1, false
}

func (r *fakeResolver) CreatureAt(p core.Tripoint) (Creature, bool) {
	if c, ok := r.creatures[p]; ok && c.alive {
		return c, true
	}
	return nil, false
}

func (r *fakeResolver) Crew(id int) (Creature, bool) {
	c, ok := r.crew[id]
	return c, ok
}

func newTestEnv(t *testing.T) (*Env, *fakeTerrain, *fakeResolver) {
	t.Helper()
	ter := newFakeTerrain()
	res := newFakeResolver()
	env := NewEnv(ter, res, zerolog.Nop())
	env.Rand = rand.New(rand.NewSource(42))
	return env, ter, res
}

func testRegistry(t *testing.T) *parttype.Registry {
	t.Helper()
	return parttype.Builtin(zerolog.Nop())
}

// newRunabout spawns the builtin prototype at 50% fuel, no wear.
func newRunabout(t *testing.T, env *Env) *Vehicle {
	t.Helper()
	v, err := FromPrototype(env, testRegistry(t), "runabout", 50, 0)
	require.NoError(t, err)
	return v
}

func findPartOfType(t *testing.T, v *Vehicle, typeID string) int {
	t.Helper()
	for i := 0; i < v.Parts(); i++ {
		p := v.Part(i)
		if !p.Removed && p.Type == typeID {
			return i
		}
	}
	t.Fatalf("no %q part installed", typeID)
	return -1
}

func TestFromPrototype_BuildsRunabout(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	assert.Equal(t, "runabout", v.Type)
	assert.Equal(t, 19, v.PartCount())
	assert.Len(t, v.Engines(), 1)
	assert.Len(t, v.Wheels(), 4)
	assert.Empty(t, v.Turrets())

	// 50% prototype fuel overrides preset charges.
	tank := v.Part(findPartOfType(t, v, "tank_gas"))
	assert.Equal(t, 1500, tank.AmmoRemaining())
	assert.Equal(t, parttype.FuelGasoline, tank.AmmoCurrent())
	bat := v.Part(findPartOfType(t, v, "storage_battery"))
	assert.Equal(t, 250, bat.AmmoRemaining())
}

func TestFromPrototype_UnknownPrototype(t *testing.T) {
	env, _, _ := newTestEnv(t)
	_, err := FromPrototype(env, testRegistry(t), "does_not_exist", 50, 0)
	assert.ErrorIs(t, err, ErrUnknownPartType)
}

func TestInstallPart_MountRules(t *testing.T) {
	env, _, _ := newTestEnv(t)
	reg := testRegistry(t)
	v := New(env, reg, "bench")

	// Nothing mounts before a structural part is there.
	_, err := v.InstallPart(core.Point{}, "seat", v.baseItemFor(mustFind(t, reg, "seat")))
	assert.ErrorIs(t, err, ErrMountConflict)

	_, err = v.InstallPart(core.Point{}, "frame", v.baseItemFor(mustFind(t, reg, "frame")))
	require.NoError(t, err)

	// Only one structural part per mount.
	_, err = v.InstallPart(core.Point{}, "frame", v.baseItemFor(mustFind(t, reg, "frame")))
	assert.ErrorIs(t, err, ErrMountConflict)

	si, err := v.InstallPart(core.Point{}, "seat", v.baseItemFor(mustFind(t, reg, "seat")))
	require.NoError(t, err)

	// The location slot is now taken.
	_, err = v.InstallPart(core.Point{}, "seat", v.baseItemFor(mustFind(t, reg, "seat")))
	assert.ErrorIs(t, err, ErrMountConflict)

	// Footprint-exempt fixtures ignore slot conflicts.
	_, err = v.InstallPart(core.Point{}, "headlight", v.baseItemFor(mustFind(t, reg, "headlight")))
	assert.NoError(t, err)

	_, err = v.InstallPart(core.Point{}, "no_such_type", v.baseItemFor(mustFind(t, reg, "frame")))
	assert.ErrorIs(t, err, ErrUnknownPartType)

	assert.True(t, v.Part(si).IsSeat())
}

func mustFind(t *testing.T, reg *parttype.Registry, id string) *parttype.PartType {
	t.Helper()
	pt, ok := reg.Find(id)
	require.True(t, ok, "part type %q missing", id)
	return pt
}

func TestRemovePart_TombstoneThenCleanup(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	total := v.Parts()
	wheel := findPartOfType(t, v, "wheel")

	require.True(t, v.RemovePart(wheel))
	assert.False(t, v.RemovePart(wheel), "double removal must fail")

	// The slot survives the turn; only the live count drops.
	assert.Equal(t, total, v.Parts())
	assert.Equal(t, total-1, v.PartCount())
	assert.True(t, v.Part(wheel).Removed)
	assert.Len(t, v.Wheels(), 3)

	v.PartRemovalCleanup()
	assert.Equal(t, total-1, v.Parts())
	assert.Equal(t, total-1, v.PartCount())
}

func TestCanUnmount_StructuralCarryingOthers(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	// The engine's frame still carries the engine.
	engine := findPartOfType(t, v, "engine_v6")
	frame := v.structuralPartAt(v.Part(engine).Mount)
	require.GreaterOrEqual(t, frame, 0)
	assert.ErrorIs(t, v.CanUnmount(frame), ErrMountConflict)

	// Non-structural parts come off freely.
	assert.NoError(t, v.CanUnmount(engine))
}

func TestPartRemovalCleanup_RecentersOrigin(t *testing.T) {
	env, _, _ := newTestEnv(t)
	reg := testRegistry(t)
	v := New(env, reg, "two-frames")

	f0, err := v.InstallPart(core.Point{}, "frame", v.baseItemFor(mustFind(t, reg, "frame")))
	require.NoError(t, err)
	_, err = v.InstallPart(core.Point{X: 1}, "frame", v.baseItemFor(mustFind(t, reg, "frame")))
	require.NoError(t, err)

	require.True(t, v.RemovePart(f0))
	v.PartRemovalCleanup()

	// The surviving frame was shifted to the origin; the anchor moved the
	// other way so its absolute tile is unchanged.
	assert.Equal(t, core.Point{}, v.Part(0).Mount)
	assert.Equal(t, 1, v.PosX)
}

func TestOccupiedPoints_DeduplicatesTiles(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	// 7 mount coordinates, several parts each.
	assert.Len(t, v.OccupiedPoints(), 7)
}

func TestLabels(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	v.SetLabel(0, 0, "driver seat")
	assert.Equal(t, "driver seat", v.GetLabel(0, 0))
	assert.Equal(t, "", v.GetLabel(5, 5))

	v.SetLabel(0, 0, "")
	assert.Equal(t, "", v.GetLabel(0, 0))
}

func TestShedLooseParts(t *testing.T) {
	env, _, _ := newTestEnv(t)
	reg := testRegistry(t)
	v := New(env, reg, "rig")

	_, err := v.InstallPart(core.Point{}, "frame", v.baseItemFor(mustFind(t, reg, "frame")))
	require.NoError(t, err)
	cable, err := v.InstallPart(core.Point{}, "power_cable", v.baseItemFor(mustFind(t, reg, "power_cable")))
	require.NoError(t, err)

	v.ShedLooseParts()

	assert.True(t, v.Part(cable).Removed)
	events := env.Events.Drain()
	require.Len(t, events, 1)
	assert.Equal(t, EventDebris, events[0].Kind)
	assert.Equal(t, "power_cable", events[0].Item.Type)
}

func TestTags(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)

	assert.False(t, v.HasTag("convertible"))
	v.Tag("convertible")
	assert.True(t, v.HasTag("convertible"))
}

func TestPartBase(t *testing.T) {
	env, _, _ := newTestEnv(t)
	v := newRunabout(t, env)
	wheel := findPartOfType(t, v, "wheel")

	base := v.PartBase(wheel)
	assert.Equal(t, "wheel", base.Type)
	assert.Equal(t, wheel, v.FindPart(base))

	assert.Equal(t, item.Item{}, v.PartBase(-1))
	require.True(t, v.RemovePart(wheel))
	assert.Equal(t, item.Item{}, v.PartBase(wheel))
}
