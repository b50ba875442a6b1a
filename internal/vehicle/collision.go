package vehicle

import (
	"math"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// CollisionKind classifies what a vehicle part ran into.
type CollisionKind int

const (
	CollNone CollisionKind = iota
	// CollVehicle is an impact with another (or the same, when articulated)
	// vehicle.
	CollVehicle
	// CollBody is an impact with a creature.
	CollBody
	// CollBashable is destructible terrain.
	CollBashable
	// CollOther is terrain that cannot give way.
	CollOther
)

// DamageType selects the armor channel used when reducing incoming damage.
type DamageType int

const (
	DamageBash DamageType = iota
	DamageCut
	DamageHeat
)

// Collision describes one impact found while projecting the vehicle's
// displacement.
type Collision struct {
	Kind       CollisionKind
	Part       int
	Pos        core.Tripoint
	Target     *Vehicle
	TargetPart int
	Creature   Creature
	// Imp is the impulse delivered, zero in detect-only mode.
	Imp int
}

// mphCentiToMS converts internal velocity units to meters per second.
const mphCentiToMS = 0.0044704

// Collision projects every exposed tile of the vehicle along dp and reports
// the impacts. With justDetect set the call is pure: no damage is dealt, no
// velocity changes, and detection stops at the first hit. Without it every
// impact is fully resolved in order.
func (v *Vehicle) Collision(dp core.Tripoint, justDetect bool) []Collision {
	var out []Collision
	seen := make(map[core.Point]bool)
	// Tiles are visited in part-index order so repeated calls see the same
	// impact sequence.
	for i := range v.parts {
		if v.parts[i].Removed {
			continue
		}
		mount := v.parts[i].Mount
		sp := v.structuralPartAt(mount)
		if sp < 0 {
			continue
		}
		p := &v.parts[sp]
		if p.info.FootprintExempt() {
			continue
		}
		if seen[mount] {
			continue
		}
		seen[mount] = true
		dest := v.GlobalPartPos(sp).Add(dp)
		c := v.PartCollision(sp, dest, justDetect)
		if c.Kind == CollNone {
			continue
		}
		out = append(out, c)
		if justDetect {
			return out
		}
	}
	return out
}

// PartCollision checks and, unless justDetect is set, resolves the impact of
// one part arriving at dest.
func (v *Vehicle) PartCollision(part int, dest core.Tripoint, justDetect bool) Collision {
	c := Collision{Kind: CollNone, Part: part, Pos: dest, TargetPart: -1}

	if ov, op, ok := v.env.Resolver.VehicleAt(dest); ok && ov != v {
		c.Kind = CollVehicle
		c.Target = ov
		c.TargetPart = op
	} else if cr, ok := v.env.Resolver.CreatureAt(dest); ok {
		c.Kind = CollBody
		c.Creature = cr
	} else if !v.env.Terrain.Passable(dest) {
		if v.env.Terrain.BashStrength(dest) > 0 {
			c.Kind = CollBashable
		} else {
			c.Kind = CollOther
		}
	}
	if c.Kind == CollNone || justDetect {
		return c
	}
	v.resolveCollision(&c)
	return c
}

// collisionFactor is the coefficient of restitution: gentle bumps are near
// elastic, hard impacts mostly inelastic.
func collisionFactor(deltaV float64) float64 {
	av := math.Abs(deltaV)
	if av < 30.0 {
		return 1.0 - av/30.0*0.9
	}
	return 0.1
}

func (v *Vehicle) resolveCollision(c *Collision) {
	mass1 := float64(v.TotalMass()) / 1000.0
	vel1 := float64(v.Velocity) * mphCentiToMS

	var mass2, vel2 float64
	switch c.Kind {
	case CollVehicle:
		mass2 = float64(c.Target.TotalMass()) / 1000.0
		vel2 = float64(c.Target.Velocity) * mphCentiToMS *
			c.Target.MoveVec().dot(v.MoveVec())
	case CollBody:
		mass2 = float64(c.Creature.Mass()) / 1000.0
		vel2 = 0
	default:
		// Terrain does not move.
		mass2 = mass1 * 10.0
		vel2 = 0
	}
	if mass2 <= 0 {
		mass2 = 1.0
	}

	deltaV := vel1 - vel2
	k := collisionFactor(deltaV)

	// Energy dissipated by the inelastic fraction of the impact.
	mu := mass1 * mass2 / (mass1 + mass2)
	energy := 0.5 * mu * deltaV * deltaV * (1.0 - k)
	imp := int(energy) / v.env.Tunables.CollisionConstant * 100
	c.Imp = imp

	v.env.Metrics.countCollision()
	v.env.Log.Debug().
		Str("vehicle", v.Name).
		Int("part", c.Part).
		Int("kind", int(c.Kind)).
		Int("imp", imp).
		Msg("collision")
	v.env.Events.Push(WorldEvent{Kind: EventNoise, Pos: c.Pos, Amount: imp / 10})

	switch c.Kind {
	case CollVehicle:
		v.Damage(c.Part, imp, DamageBash, false)
		c.Target.Damage(c.TargetPart, imp, DamageBash, false)
		// Momentum exchange with restitution.
		u1 := ((mass1-k*mass2)*vel1 + (1.0+k)*mass2*vel2) / (mass1 + mass2)
		u2 := ((mass2-k*mass1)*vel2 + (1.0+k)*mass1*vel1) / (mass1 + mass2)
		v.Velocity = int(u1 / mphCentiToMS)
		c.Target.Velocity = int(u2 / mphCentiToMS)
		c.Target.Skidding = c.Target.Skidding || absInt(c.Target.Velocity) > 500
	case CollBody:
		c.Creature.Hurt(imp)
		// Bodies slow the vehicle by their mass share.
		v.Velocity = int(vel1 * mass1 / (mass1 + mass2) / mphCentiToMS)
		v.Damage(c.Part, imp/4, DamageBash, false)
	case CollBashable:
		if v.env.Terrain.Bash(c.Pos, imp) {
			// Smashed through; lose some speed to the wreckage.
			v.Velocity = v.Velocity * 3 / 4
		} else {
			v.Velocity = -int(float64(v.Velocity) * k / 2.0)
		}
		v.Damage(c.Part, imp/2, DamageBash, false)
	case CollOther:
		v.Damage(c.Part, imp, DamageBash, false)
		v.Velocity = -int(float64(v.Velocity) * k / 2.0)
		v.Skidding = v.env.Rand.Float64() < 0.5
	}
}

// Damage deals dmg of the given type to the stack at a part's mount point.
// Armor at the mount absorbs first unless the hit is aimed at the exact
// part. Returns the damage that overflowed past the stack.
func (v *Vehicle) Damage(part int, dmg int, dt DamageType, aimed bool) int {
	if dmg <= 0 {
		return dmg
	}
	p := v.Part(part)
	if p == nil || p.Removed {
		return dmg
	}
	target := part
	if !aimed {
		// An armor plate on the tile shields everything behind it.
		if ap := v.PartWithFeatureAt(p.Mount, parttype.FlagArmor, true); ap >= 0 && ap != part {
			target = ap
		}
	}
	overflow := v.damageDirect(target, dmg, dt)
	if overflow > 0 && target != part && !v.parts[part].Removed {
		overflow = v.damageDirect(part, overflow, dt)
	}
	return overflow
}

// DamageAll spreads between dmg1 and dmg2 damage over every part, attenuated
// by distance from the impact mount. Fuel tank explosions and shock waves
// use this.
func (v *Vehicle) DamageAll(dmg1, dmg2 int, dt DamageType, center core.Point) {
	if dmg2 < dmg1 {
		dmg1, dmg2 = dmg2, dmg1
	}
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		dist := absInt(p.Mount.X-center.X) + absInt(p.Mount.Y-center.Y)
		if dist > 2 {
			continue
		}
		dmg := dmg1
		if dmg2 > dmg1 {
			dmg += v.env.Rand.Intn(dmg2 - dmg1 + 1)
		}
		dmg /= dist + 1
		if dmg > 0 {
			v.damageDirect(i, dmg, dt)
		}
	}
}

// Smash pre-damages every part by a random share of its durability, the
// wear carried by vehicles spawned as wrecks. Parts can break outright but
// are never torn off.
func (v *Vehicle) Smash() {
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() {
			continue
		}
		dur := p.info.Durability
		if dur <= 0 {
			continue
		}
		// 10% to 120% of durability.
		loss := (v.env.Rand.Intn(12) + 1) * dur / 10
		units := loss * p.Base.MaxDamage / dur
		if units <= 0 {
			units = 1
		}
		if p.Base.ModDamage(units) {
			v.onPartBroken(i)
		}
	}
	v.InvalidateMass()
}

// damageDirect applies dmg to one specific part after armor reduction,
// handling break-off, destruction side effects and fuel ignition.
func (v *Vehicle) damageDirect(part int, dmg int, dt DamageType) int {
	p := &v.parts[part]
	if p.Removed {
		return dmg
	}
	dmg -= v.partArmor(part, dt)
	if dmg <= 0 {
		return 0
	}

	dur := p.info.Durability
	if dur <= 0 {
		dur = 1
	}

	// A heavy single hit on an already weakened part tears it off whole.
	tun := v.env.Tunables
	if float64(dmg) > tun.BreakoffFraction*float64(dur) && p.HP() <= dur/2 {
		v.breakOff(part)
		return dmg - dur
	}

	hpBefore := p.HP()
	units := dmg * p.Base.MaxDamage / dur
	if units <= 0 {
		units = 1
	}
	broke := p.Base.ModDamage(units)
	v.InvalidateMass()

	overflow := dmg - hpBefore
	if overflow < 0 {
		overflow = 0
	}
	if broke {
		v.onPartBroken(part)
	}
	if p.IsTank() && p.Base.Charges > 0 {
		v.explodeFuel(part, dt)
	}
	return overflow
}

// partArmor is the flat reduction the part's material offers against a
// damage channel.
func (v *Vehicle) partArmor(part int, dt DamageType) int {
	p := &v.parts[part]
	switch dt {
	case DamageCut:
		return p.info.DamageCut
	case DamageBash:
		return p.info.DamageBash
	default:
		return 0
	}
}

// onPartBroken handles a part crossing into broken: contents spill, the slot
// stays occupied but dead.
func (v *Vehicle) onPartBroken(part int) {
	p := &v.parts[part]
	v.env.Metrics.countPartBroken()
	v.env.Log.Info().
		Str("vehicle", v.Name).
		Str("part", p.Name()).
		Msg("part broken")

	pos := v.GlobalPartPos(part)
	if p.IsTank() && p.Base.Charges > 0 {
		v.env.Events.Push(WorldEvent{
			Kind:   EventFuelSpill,
			Pos:    pos,
			Fuel:   p.AmmoCurrent(),
			Amount: p.Base.Charges,
		})
		p.AmmoUnset()
	}
	for _, it := range p.DrainCargo() {
		v.env.Events.Push(WorldEvent{Kind: EventDebris, Pos: pos, Item: it})
	}
	p.Enabled = false
	// Broken parts drop out of every capability cache.
	v.refresh()
}

// breakOff removes a part violently, scattering its break-down items near
// the wreck. Breaking the last structural piece of a tile sheds everything
// mounted there.
func (v *Vehicle) breakOff(part int) {
	p := &v.parts[part]
	pos := v.GlobalPartPos(part)
	scatter := v.env.Tunables.ScatterDistance

	shed := []int{part}
	if p.info.Structural() {
		for _, i := range v.partsAt(p.Mount) {
			if i != part {
				shed = append(shed, i)
			}
		}
	}
	for _, i := range shed {
		sp := &v.parts[i]
		dest := pos
		if scatter > 0 {
			dest = pos.Add(core.Tripoint{
				X: v.env.Rand.Intn(2*scatter+1) - scatter,
				Y: v.env.Rand.Intn(2*scatter+1) - scatter,
			})
		}
		for _, bi := range sp.info.BreakItems {
			n := bi.Count
			if n <= 0 {
				n = 1
			}
			for ; n > 0; n-- {
				v.env.Events.Push(WorldEvent{
					Kind: EventDebris,
					Pos:  dest,
					Item: v.breakItem(bi.Type),
				})
			}
		}
		for _, it := range sp.DrainCargo() {
			v.env.Events.Push(WorldEvent{Kind: EventDebris, Pos: dest, Item: it})
		}
		v.env.Metrics.countPartBroken()
		sp.Removed = true
		v.removedCount++
	}
	v.env.Log.Info().
		Str("vehicle", v.Name).
		Str("part", p.Name()).
		Int("shed", len(shed)).
		Msg("part broken off")
	v.InvalidateMass()
	v.refresh()
}

func (v *Vehicle) breakItem(id string) item.Item {
	return item.Item{Type: id, Mass: 1000, Volume: 250, MaxDamage: 4}
}

// explodeFuel rolls for ignition of a damaged tank's contents. Explosive
// fuels may detonate, damaging the whole vehicle and emitting an area
// damage event.
func (v *Vehicle) explodeFuel(part int, dt DamageType) {
	p := &v.parts[part]
	f, ok := parttype.FuelByID(p.AmmoCurrent())
	if !ok || f.Explosiveness <= 0 {
		return
	}
	chance := float64(f.Explosiveness) / 100.0
	if dt == DamageHeat {
		chance *= 2
	}
	if v.env.Rand.Float64() >= chance {
		return
	}
	charges := p.Base.Charges
	pos := v.GlobalPartPos(part)
	p.AmmoUnset()
	v.env.Log.Warn().
		Str("vehicle", v.Name).
		Str("fuel", f.ID).
		Int("charges", charges).
		Msg("fuel tank exploded")
	v.env.Events.Push(WorldEvent{
		Kind:   EventAreaDamage,
		Pos:    pos,
		Amount: charges / 20,
		Radius: 1 + charges/5000,
	})
	v.DamageAll(charges/50, charges/20, DamageHeat, p.Mount)
}

// SmashSecuritySystem is a hotwire gone wrong: it destroys the security
// unit, and on a bad roll the controls with it.
func (v *Vehicle) SmashSecuritySystem() {
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || !p.info.HasFlag(parttype.FlagSecurity) {
			continue
		}
		v.damageDirect(i, p.info.Durability*2, DamageBash)
		if v.env.Rand.Float64() < 0.25 {
			if cs := v.AllPartsWithFeature(parttype.FlagControls, true); len(cs) > 0 {
				c := cs[0]
				v.damageDirect(c, v.parts[c].info.Durability*2, DamageBash)
			}
		}
		v.AlarmOn = false
		v.Locked = false
		return
	}
}
