package vehicle

import (
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// TurretStatus is the result of interrogating a mounted weapon. It is never
// stored; every query re-derives it from current part, ammo and power state.
type TurretStatus int

const (
	// TurretInvalid: the part is not a working turret.
	TurretInvalid TurretStatus = iota
	// TurretNoAmmo: nothing loaded and nothing compatible to draw.
	TurretNoAmmo
	// TurretNoPower: ammo present but the network cannot pay the shot cost.
	TurretNoPower
	// TurretReady: the turret can fire now.
	TurretReady
)

func (s TurretStatus) String() string {
	switch s {
	case TurretNoAmmo:
		return "no_ammo"
	case TurretNoPower:
		return "no_power"
	case TurretReady:
		return "ready"
	default:
		return "invalid"
	}
}

// Turret is a short-lived binding of a vehicle and one of its turret parts.
// Obtain one through TurretQuery; holding it across part removal is safe
// because every method revalidates.
type Turret struct {
	v    *Vehicle
	part int
}

// TurretQuery binds a turret accessor to part i. The binding is cheap and
// meant to be re-acquired per use.
func (v *Vehicle) TurretQuery(i int) Turret {
	return Turret{v: v, part: i}
}

func (t Turret) valid() bool {
	p := t.v.Part(t.part)
	return p != nil && !p.Removed && !p.IsBroken() && p.IsTurret()
}

// Part returns the bound part index.
func (t Turret) Part() int { return t.part }

// Status re-evaluates the turret's readiness.
func (t Turret) Status() TurretStatus {
	if !t.valid() {
		return TurretInvalid
	}
	p := &t.v.parts[t.part]
	if t.ammoAvailable() <= 0 {
		return TurretNoAmmo
	}
	if cost := shotEnergy(p); cost > 0 && t.v.FuelLeft(parttype.FuelBattery, true, true) < cost {
		return TurretNoPower
	}
	return TurretReady
}

// shotEnergy is the battery charge one shot draws, zero for pure ballistic
// weapons.
func shotEnergy(p *Part) int {
	if p.info.EPower < 0 {
		return -p.info.EPower
	}
	return 0
}

// ammoAvailable counts rounds the turret can fire right now from its own
// magazine, or from the vehicle's tanks for tank-fed weapons.
func (t Turret) ammoAvailable() int {
	p := &t.v.parts[t.part]
	if p.info.HasFlag(parttype.FlagUseTanks) {
		best := 0
		for _, opt := range t.AmmoOptions() {
			if n := t.v.FuelLeft(opt, false, false); n > best {
				best = n
			}
		}
		return best
	}
	return p.Base.Charges
}

// AmmoOptions lists the ammo types the turret could use, from its magazine
// or, for tank-fed weapons, from fuels present in the vehicle's tanks.
func (t Turret) AmmoOptions() []string {
	if !t.valid() {
		return nil
	}
	p := &t.v.parts[t.part]
	if !p.info.HasFlag(parttype.FlagUseTanks) {
		if p.info.AmmoType == "" {
			return nil
		}
		return []string{p.info.AmmoType}
	}
	seen := make(map[string]bool)
	var out []string
	for i := range t.v.parts {
		tp := &t.v.parts[i]
		if tp.Removed || !tp.IsTank() || tp.Base.Charges == 0 {
			continue
		}
		f, ok := parttype.FuelByID(tp.AmmoCurrent())
		if !ok || f.Explosiveness == 0 {
			continue
		}
		if !seen[f.ID] {
			seen[f.ID] = true
			out = append(out, f.ID)
		}
	}
	return out
}

// AmmoSelect sets the preferred ammo for a tank-fed turret. Fails when the
// choice is not among the current options.
func (t Turret) AmmoSelect(ammo string) bool {
	if !t.valid() {
		return false
	}
	for _, opt := range t.AmmoOptions() {
		if opt == ammo {
			t.v.parts[t.part].AmmoPref = ammo
			return true
		}
	}
	return false
}

// ammoInUse resolves the ammo a shot will consume, honoring the preference
// when it is still available.
func (t Turret) ammoInUse() string {
	p := &t.v.parts[t.part]
	opts := t.AmmoOptions()
	for _, opt := range opts {
		if opt == p.AmmoPref {
			return opt
		}
	}
	if len(opts) > 0 {
		return opts[0]
	}
	return ""
}

// Fire discharges up to shots rounds, consuming ammo and battery power per
// round. Returns the number actually fired.
func (t Turret) Fire(shots int) int {
	if shots <= 0 || t.Status() != TurretReady {
		return 0
	}
	p := &t.v.parts[t.part]
	if p.info.TurretRate > 0 && shots > p.info.TurretRate {
		shots = p.info.TurretRate
	}
	if avail := t.ammoAvailable(); shots > avail {
		shots = avail
	}
	cost := shotEnergy(p)
	fired := 0
	for ; fired < shots; fired++ {
		if cost > 0 && t.v.Discharge(cost, true, true) > 0 {
			break
		}
		if p.info.HasFlag(parttype.FlagUseTanks) {
			if t.v.Drain(t.ammoInUse(), 1) < 1 {
				break
			}
		} else if p.AmmoConsume(1) < 1 {
			break
		}
	}
	if fired > 0 {
		t.v.env.Metrics.countShots(fired)
		pos := t.v.GlobalPartPos(t.part)
		t.v.env.Events.Push(WorldEvent{Kind: EventNoise, Pos: pos, Amount: 20 * fired})
		t.v.env.Log.Debug().
			Str("vehicle", t.v.Name).
			Str("turret", p.Name()).
			Int("shots", fired).
			Msg("turret fired")
		t.v.InvalidateMass()
	}
	return fired
}

// SetTarget stores a firing solution as absolute positions. Targets are
// weak: they are re-resolved against the world on every use.
func (t Turret) SetTarget(target core.Tripoint) {
	if !t.valid() {
		return
	}
	p := &t.v.parts[t.part]
	p.Target = target
	p.TargetOrigin = t.v.GlobalPartPos(t.part)
}

// ClearTarget drops the stored firing solution.
func (t Turret) ClearTarget() {
	if p := t.v.Part(t.part); p != nil {
		p.Target = core.Tripoint{}
		p.TargetOrigin = core.Tripoint{}
	}
}

// AutomaticFireTurret runs one autonomous firing cycle for an enabled
// turret: re-resolve the stored target, verify something alive is still
// there and in range, then fire a burst. Returns shots fired.
func (v *Vehicle) AutomaticFireTurret(i int) int {
	t := v.TurretQuery(i)
	if !t.valid() || !v.parts[i].Enabled {
		return 0
	}
	p := &v.parts[i]
	if p.Target == (core.Tripoint{}) && p.TargetOrigin == (core.Tripoint{}) {
		return 0
	}
	cr, ok := v.env.Resolver.CreatureAt(p.Target)
	if !ok || !cr.Alive() {
		t.ClearTarget()
		return 0
	}
	pos := v.GlobalPartPos(i)
	if chebyshev(pos, p.Target) > p.info.TurretRange {
		t.ClearTarget()
		return 0
	}
	fired := t.Fire(p.info.TurretRate)
	if fired > 0 {
		cr.Hurt(fired * 10)
	}
	return fired
}

func chebyshev(a, b core.Tripoint) int {
	dx := absInt(a.X - b.X)
	dy := absInt(a.Y - b.Y)
	if dy > dx {
		dx = dy
	}
	return dx
}
