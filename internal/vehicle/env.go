package vehicle

import (
	"math/rand"

	"github.com/rs/zerolog"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/queue"
	"github.com/tilesim/vehicle/pkg/core"
)

// Terrain is the world query surface the engine needs for collision and
// dynamics. How tiles are stored is the implementer's concern.
type Terrain interface {
	// Passable reports whether a vehicle tile may enter the coordinate.
	Passable(p core.Tripoint) bool
	// HasFloor reports whether the coordinate has supporting ground.
	HasFloor(p core.Tripoint) bool
	// Liquid reports deep liquid at the coordinate.
	Liquid(p core.Tripoint) bool
	// BashStrength is the resistance of destructible terrain at the
	// coordinate, 0 for terrain that cannot be bashed through.
	BashStrength(p core.Tripoint) int
	// Bash applies destructive force and reports whether the terrain gave
	// way. Never invoked in detect-only collision mode.
	Bash(p core.Tripoint, strength int) bool
	// Traction is the surface grip under a wheel, 1.0 on ideal pavement.
	Traction(p core.Tripoint) float64
}

// Creature is a monster, NPC or player the vehicle can collide with or that
// can crew a part.
type Creature interface {
	Name() string
	Mass() int // grams
	Alive() bool
	Hurt(dmg int)
	// Strength feeds muscle-powered engines.
	Strength() int
}

// Resolver looks up entities by identity or position. Targets are always
// re-resolved through it; a vanished referent simply reports not-found.
type Resolver interface {
	// VehicleAt returns the vehicle occupying an absolute coordinate along
	// with the obstructing part index. Loads dormant vehicles if needed.
	VehicleAt(p core.Tripoint) (*Vehicle, int, bool)
	// CreatureAt returns the creature standing at an absolute coordinate.
	CreatureAt(p core.Tripoint) (Creature, bool)
	// Crew resolves an assigned crew identifier.
	Crew(id int) (Creature, bool)
}

// WorldEventKind classifies deferred world mutations produced mid-turn.
type WorldEventKind int

const (
	// EventDebris spawns an item on the ground.
	EventDebris WorldEventKind = iota
	// EventAreaDamage applies damage in a radius (fuel explosions).
	EventAreaDamage
	// EventFuelSpill pours liquid on the ground.
	EventFuelSpill
	// EventNoise emits sound at a location.
	EventNoise
)

// WorldEvent is a world mutation the engine cannot apply itself; the world
// loop drains these after each vehicle update.
type WorldEvent struct {
	Kind   WorldEventKind
	Pos    core.Tripoint
	Item   item.Item
	Amount int
	Radius int
	Fuel   string
}

// Env bundles the external collaborators a vehicle operates against. One Env
// is shared by all vehicles of a world.
type Env struct {
	Terrain  Terrain
	Resolver Resolver
	Log      zerolog.Logger
	Tunables Tunables
	Metrics  *Metrics

	// Rand drives skid recovery, fuel ignition and prototype randomization.
	// Tests inject a seeded source.
	Rand *rand.Rand

	// Events collects deferred world mutations for the world loop to drain.
	Events *queue.Queue[WorldEvent]
}

// NewEnv wires an environment with defaults for the optional pieces.
func NewEnv(t Terrain, r Resolver, log zerolog.Logger) *Env {
	return &Env{
		Terrain:  t,
		Resolver: r,
		Log:      log,
		Tunables: DefaultTunables(),
		Metrics:  NopMetrics(),
		Rand:     rand.New(rand.NewSource(rand.Int63())),
		Events:   queue.New[WorldEvent](),
	}
}

// Tunables are the balance constants of the physics and damage model. All of
// them are overridable from configuration.
type Tunables struct {
	// BreakoffFraction: one hit dealing more than this fraction of a part's
	// maximum durability, against a part at or below half health, breaks the
	// part off entirely instead of merely breaking it.
	BreakoffFraction float64

	// CollisionConstant scales collision impulse into damage.
	CollisionConstant int

	// ScatterDistance is how far debris lands from a destroyed part.
	ScatterDistance int

	// TransferLossPercent is charge lost per power-cable hop.
	TransferLossPercent int

	// FrictionBase, AeroBase and MassBase anchor the dimensionless dynamics
	// coefficients; see the corresponding K methods.
	FrictionBase float64
	AeroBase     float64
	MassBase     float64

	// SafeFraction and OptimalFraction derive safe/optimal velocity from
	// maximum velocity.
	SafeFraction    float64
	OptimalFraction float64

	// FuelUsagePerPower converts engine output (watts) into charges per
	// turn at coeff 100.
	FuelUsagePerPower float64
}

// DefaultTunables returns the shipped balance values.
func DefaultTunables() Tunables {
	return Tunables{
		BreakoffFraction:    0.6,
		CollisionConstant:   200,
		ScatterDistance:     3,
		TransferLossPercent: 10,
		FrictionBase:        1000.0,
		AeroBase:            200.0,
		MassBase:            100.0,
		SafeFraction:        0.7,
		OptimalFraction:     0.5,
		FuelUsagePerPower:   0.01,
	}
}
