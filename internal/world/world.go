// Package world hosts the simulation: a tile grid implementing the terrain
// queries the vehicle engine needs, a vehicle registry implementing entity
// resolution, and the turn loop that moves vehicles and applies the world
// events their updates emit.
package world

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/internal/vehicle"
	"github.com/tilesim/vehicle/pkg/core"
)

// submapSize matches the vehicle engine's submap edge length.
const submapSize = 12

// Tile is one grid cell. The zero value is open pavement, so only
// interesting tiles are stored.
type Tile struct {
	Impassable   bool
	NoFloor      bool
	Liquid       bool
	BashStrength int
	Traction     float64
	Items        []item.Item
}

// World owns terrain, vehicles and creatures, and runs the turn loop.
type World struct {
	log      zerolog.Logger
	registry *parttype.Registry
	env      *vehicle.Env

	tiles     map[core.Tripoint]*Tile
	vehicles  map[string]*vehicle.Vehicle
	order     []string
	creatures map[core.Tripoint]vehicle.Creature
	crew      map[int]vehicle.Creature

	turn int
}

// New creates an empty world bound to a part registry.
func New(reg *parttype.Registry, log zerolog.Logger) *World {
	w := &World{
		log:       log,
		registry:  reg,
		tiles:     make(map[core.Tripoint]*Tile),
		vehicles:  make(map[string]*vehicle.Vehicle),
		creatures: make(map[core.Tripoint]vehicle.Creature),
		crew:      make(map[int]vehicle.Creature),
	}
	w.env = vehicle.NewEnv(w, w, log)
	return w
}

// Env is the environment vehicles in this world are bound to.
func (w *World) Env() *vehicle.Env { return w.env }

// SetTile places terrain at a coordinate.
func (w *World) SetTile(p core.Tripoint, t Tile) {
	cp := t
	w.tiles[p] = &cp
}

func (w *World) tile(p core.Tripoint) *Tile {
	return w.tiles[p]
}

// Passable reports whether a vehicle tile may enter the coordinate.
func (w *World) Passable(p core.Tripoint) bool {
	t := w.tile(p)
	return t == nil || !t.Impassable
}

// HasFloor reports supporting ground at the coordinate.
func (w *World) HasFloor(p core.Tripoint) bool {
	t := w.tile(p)
	return t == nil || !t.NoFloor
}

// Liquid reports deep liquid at the coordinate.
func (w *World) Liquid(p core.Tripoint) bool {
	t := w.tile(p)
	return t != nil && t.Liquid
}

// BashStrength is the resistance of destructible terrain, 0 when the tile
// cannot be bashed through.
func (w *World) BashStrength(p core.Tripoint) int {
	t := w.tile(p)
	if t == nil {
		return 0
	}
	return t.BashStrength
}

// Bash applies destructive force and reports whether the terrain gave way.
func (w *World) Bash(p core.Tripoint, strength int) bool {
	t := w.tile(p)
	if t == nil || t.BashStrength == 0 {
		return false
	}
	if strength < t.BashStrength {
		return false
	}
	t.Impassable = false
	t.BashStrength = 0
	return true
}

// Traction is the surface grip at the coordinate, 1.0 by default.
func (w *World) Traction(p core.Tripoint) float64 {
	t := w.tile(p)
	if t == nil || t.Traction == 0 {
		return 1.0
	}
	return t.Traction
}

// VehicleAt returns the vehicle occupying an absolute coordinate along with
// the obstructing part index.
func (w *World) VehicleAt(p core.Tripoint) (*vehicle.Vehicle, int, bool) {
	for _, id := range w.order {
		v := w.vehicles[id]
		if pi := v.GlobalPartAt(p); pi >= 0 {
			return v, pi, true
		}
	}
	return nil, -1, false
}

// CreatureAt returns the creature standing at an absolute coordinate.
func (w *World) CreatureAt(p core.Tripoint) (vehicle.Creature, bool) {
	c, ok := w.creatures[p]
	if !ok || !c.Alive() {
		return nil, false
	}
	return c, true
}

// Crew resolves an assigned crew identifier.
func (w *World) Crew(id int) (vehicle.Creature, bool) {
	c, ok := w.crew[id]
	return c, ok
}

// RegisterCrew adds a creature to the crew registry under the given id.
func (w *World) RegisterCrew(id int, c vehicle.Creature) {
	w.crew[id] = c
}

// PlaceCreature puts a creature on a tile.
func (w *World) PlaceCreature(p core.Tripoint, c vehicle.Creature) {
	w.creatures[p] = c
}

// AddVehicle registers an existing vehicle with the world.
func (w *World) AddVehicle(v *vehicle.Vehicle) {
	if _, ok := w.vehicles[v.ID]; !ok {
		w.order = append(w.order, v.ID)
	}
	w.vehicles[v.ID] = v
}

// SpawnVehicle instantiates a prototype at the given position and facing.
func (w *World) SpawnVehicle(protoID string, pos core.Tripoint, facing, initFuel, initStatus int) (*vehicle.Vehicle, error) {
	v, err := vehicle.FromPrototype(w.env, w.registry, protoID, initFuel, initStatus)
	if err != nil {
		return nil, fmt.Errorf("spawn %q: %w", protoID, err)
	}
	v.SmX, v.SmY, v.SmZ = pos.X/submapSize, pos.Y/submapSize, pos.Z
	v.PosX, v.PosY = pos.X%submapSize, pos.Y%submapSize
	v.SetFacing(facing)
	w.AddVehicle(v)
	w.log.Info().Str("vehicle", v.Name).Stringer("pos", pos).Msg("vehicle spawned")
	return v, nil
}

// RemoveVehicle drops a vehicle from the world.
func (w *World) RemoveVehicle(id string) {
	if _, ok := w.vehicles[id]; !ok {
		return
	}
	delete(w.vehicles, id)
	for i, oid := range w.order {
		if oid == id {
			w.order = append(w.order[:i], w.order[i+1:]...)
			break
		}
	}
}

// Vehicle returns a registered vehicle by id.
func (w *World) Vehicle(id string) (*vehicle.Vehicle, bool) {
	v, ok := w.vehicles[id]
	return v, ok
}

// Vehicles returns all registered vehicles in registration order.
func (w *World) Vehicles() []*vehicle.Vehicle {
	out := make([]*vehicle.Vehicle, 0, len(w.order))
	for _, id := range w.order {
		out = append(out, w.vehicles[id])
	}
	return out
}

// Turn is the number of completed simulation turns.
func (w *World) Turn() int { return w.turn }

// Step advances the simulation one turn: each vehicle settles its books,
// chases its cruise target, moves, fires automatic turrets and compacts
// removed parts, then the emitted world events are applied.
func (w *World) Step() {
	w.turn++
	for _, id := range w.order {
		v := w.vehicles[id]
		v.GainMoves()

		if v.EngineOn && v.CruiseVelocity != v.Velocity {
			thd := 1
			if v.CruiseVelocity < v.Velocity {
				thd = -1
			}
			v.Thrust(thd)
		}

		w.moveVehicle(v)

		for _, ti := range v.Turrets() {
			v.AutomaticFireTurret(ti)
		}

		v.PartRemovalCleanup()
	}
	w.drainEvents()
}

// moveVehicle advances a vehicle along its movement vector, one tile at a
// time, resolving collisions as they come up.
func (w *World) moveVehicle(v *vehicle.Vehicle) {
	if v.Velocity == 0 {
		return
	}
	v.ApplyTurn()
	v.PossiblyRecoverFromSkid()

	tiles := absInt(v.Velocity) / 1000
	if tiles == 0 {
		// Slow crawl still creeps forward now and then.
		v.OfTurnCarry += float64(absInt(v.Velocity)) / 1000.0
		if v.OfTurnCarry >= 1.0 {
			v.OfTurnCarry -= 1.0
			tiles = 1
		}
	}
	for ; tiles > 0 && v.Velocity != 0; tiles-- {
		dp := v.MoveStep()
		if dp == (core.Tripoint{}) {
			break
		}

		colls := v.Collision(dp, false)
		if len(colls) > 0 && v.Velocity == 0 {
			break
		}
		if len(colls) > 0 {
			continue
		}

		w.displace(v, dp)
		v.ShedLooseParts()
	}
}

// displace shifts the vehicle's anchor by dp, renormalizing into submap
// coordinates.
func (w *World) displace(v *vehicle.Vehicle, dp core.Tripoint) {
	v.PosX += dp.X
	v.PosY += dp.Y
	smx, smy := v.SmX, v.SmY
	for v.PosX >= submapSize {
		v.PosX -= submapSize
		smx++
	}
	for v.PosX < 0 {
		v.PosX += submapSize
		smx--
	}
	for v.PosY >= submapSize {
		v.PosY -= submapSize
		smy++
	}
	for v.PosY < 0 {
		v.PosY += submapSize
		smy--
	}
	v.SetSubmapMoved(smx, smy)
}

// drainEvents applies deferred world mutations emitted during the turn.
func (w *World) drainEvents() {
	for _, ev := range w.env.Events.Drain() {
		switch ev.Kind {
		case vehicle.EventDebris:
			w.dropItem(ev.Pos, ev.Item)
		case vehicle.EventFuelSpill:
			w.dropItem(ev.Pos, item.Item{
				Type: "spilled_" + ev.Fuel, Charges: ev.Amount, MaxDamage: 1,
			})
		case vehicle.EventAreaDamage:
			w.applyAreaDamage(ev.Pos, ev.Amount, ev.Radius)
		case vehicle.EventNoise:
			w.log.Debug().Stringer("pos", ev.Pos).Int("volume", ev.Amount).Msg("noise")
		}
	}
}

func (w *World) dropItem(p core.Tripoint, it item.Item) {
	t := w.tile(p)
	if t == nil {
		t = &Tile{}
		w.tiles[p] = t
	}
	t.Items = append(t.Items, it)
}

// applyAreaDamage hits creatures and vehicle parts inside the radius.
func (w *World) applyAreaDamage(center core.Tripoint, amount, radius int) {
	for pos, c := range w.creatures {
		if c.Alive() && chebyshev(pos, center) <= radius {
			c.Hurt(amount)
		}
	}
	for _, id := range w.order {
		v := w.vehicles[id]
		if pi := v.GlobalPartAt(center); pi >= 0 {
			continue // source vehicle already damaged itself
		}
		for _, pos := range v.OccupiedPoints() {
			if chebyshev(pos, center) <= radius {
				if pi := v.GlobalPartAt(pos); pi >= 0 {
					v.Damage(pi, amount, vehicle.DamageHeat, false)
				}
			}
		}
	}
}

func chebyshev(a, b core.Tripoint) int {
	dx := absInt(a.X - b.X)
	dy := absInt(a.Y - b.Y)
	if dy > dx {
		dx = dy
	}
	return dx
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
