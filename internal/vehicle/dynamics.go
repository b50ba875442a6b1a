package vehicle

import (
	"math"

	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// Velocity is handled as mph x100 internally; these anchor the conversion of
// engine power into speed and acceleration.
const (
	maxVelFactor     = 1100.0
	accelFactor      = 300.0
	bigAeroPenalty   = 15.0
	smallAeroPenalty = 3.0
)

type vec2 struct{ x, y float64 }

func dirVec(deg int) vec2 {
	rad := float64(deg) * math.Pi / 180.0
	return vec2{x: math.Cos(rad), y: math.Sin(rad)}
}

func (a vec2) dot(b vec2) float64 { return a.x*b.x + a.y*b.y }

// FaceDir is the current facing in degrees.
func (v *Vehicle) FaceDir() int { return v.faceDir }

// MoveDir is the travel direction; it diverges from facing while skidding.
func (v *Vehicle) MoveDir() int { return v.moveDir }

// TurnDir is the direction the next move will rotate the vehicle to.
func (v *Vehicle) TurnDir() int { return v.turnDir }

// FaceVec is the unit facing vector.
func (v *Vehicle) FaceVec() vec2 { return dirVec(v.faceDir) }

// MoveVec is the unit movement vector.
func (v *Vehicle) MoveVec() vec2 { return dirVec(v.moveDir) }

// MoveStep is the tile displacement of one movement step, reversed when
// driving backwards.
func (v *Vehicle) MoveStep() core.Tripoint {
	mv := dirVec(v.moveDir)
	dp := core.Tripoint{X: stepSign(mv.x), Y: stepSign(mv.y)}
	if v.Velocity < 0 {
		dp.X, dp.Y = -dp.X, -dp.Y
	}
	return dp
}

func stepSign(f float64) int {
	switch {
	case f > 0.5:
		return 1
	case f < -0.5:
		return -1
	default:
		return 0
	}
}

// WheelArea sums contact area under working wheels, or flotation area when
// boat is set.
func (v *Vehicle) WheelArea(boat bool) float64 {
	total := 0.0
	if boat {
		for _, i := range v.floating {
			if !v.parts[i].Removed && !v.parts[i].IsBroken() {
				total += floatArea
			}
		}
		return total
	}
	for _, i := range v.wheelCache {
		total += float64(v.parts[i].WheelArea())
	}
	return total
}

// floatArea is the effective contact area of one flotation hull part.
const floatArea = 120.0

// KFriction is the wheel rolling-resistance coefficient in (0.0, 1.0], an
// inverse function of total wheel contact area.
func (v *Vehicle) KFriction() float64 {
	fr0 := v.env.Tunables.FrictionBase
	return fr0 / (fr0 + v.WheelArea(false))
}

// KAerodynamics penalizes frontal cross-section, sampled by casting rays
// front-to-back along each occupied column: a ray blocked by an obstacle
// part costs a large penalty, a ray through open structure a small one.
func (v *Vehicle) KAerodynamics() float64 {
	type span struct {
		maxX    int
		blocked bool
		seen    bool
	}
	columns := make(map[int]*span)
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		col, ok := columns[p.Mount.Y]
		if !ok {
			col = &span{maxX: p.Mount.X}
			columns[p.Mount.Y] = col
		}
		col.seen = true
		if p.Mount.X > col.maxX {
			col.maxX = p.Mount.X
		}
		if p.info.HasFlag(parttype.FlagObstacle) && !p.IsBroken() && !p.Open {
			col.blocked = true
		}
	}
	frontal := 0.0
	for _, col := range columns {
		if !col.seen {
			continue
		}
		if col.blocked {
			frontal += bigAeroPenalty
		} else {
			frontal += smallAeroPenalty
		}
	}
	ae0 := v.env.Tunables.AeroBase
	return ae0 / (ae0 + frontal)
}

// KMass relates vehicle mass to wheel contact area; heavy vehicles on small
// wheels accelerate and brake poorly.
func (v *Vehicle) KMass() float64 {
	wa := v.WheelArea(false)
	if v.isFloating() {
		wa = v.WheelArea(true)
	}
	if wa <= 0 {
		return 0.0
	}
	massKg := float64(v.TotalMass()) / 1000.0
	mb := v.env.Tunables.MassBase
	return mb / (mb + massKg/wa)
}

// KDynamics is the combined dynamics coefficient scaling both top speed and
// acceleration.
func (v *Vehicle) KDynamics() float64 {
	return v.KAerodynamics() * v.KFriction()
}

// wheelTractionArea samples the surface under each working wheel and sums
// grip-weighted contact area.
func (v *Vehicle) wheelTractionArea() float64 {
	total := 0.0
	for _, i := range v.wheelCache {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() {
			continue
		}
		pos := v.GlobalPartPos(i)
		total += float64(p.WheelArea()) * v.env.Terrain.Traction(pos)
	}
	return total
}

// KTraction is the environment grip coefficient: 1.0 on ideal surface,
// approaching 0 as wheels lose contact quality.
func (v *Vehicle) KTraction() float64 {
	wa := v.WheelArea(false)
	if wa <= 0 {
		return 0.1
	}
	k := v.wheelTractionArea() / wa
	if k > 1.0 {
		k = 1.0
	}
	if k < 0.0 {
		k = 0.0
	}
	return k
}

// Drag is extra resistance from protruding components other than wheels.
func (v *Vehicle) Drag() float64 { return float64(v.extraDrag) }

// isFloating reports whether the hull sits in deep liquid.
func (v *Vehicle) isFloating() bool {
	pts := v.OccupiedPoints()
	if len(pts) == 0 {
		return false
	}
	wet := 0
	for _, p := range pts {
		if v.env.Terrain.Liquid(p) {
			wet++
		}
	}
	return wet*2 > len(pts)
}

// SufficientWheelConfig reports enough wheels (or flotation) to move at all.
func (v *Vehicle) SufficientWheelConfig(floating bool) bool {
	if floating {
		return len(v.liveFloats()) > 0
	}
	live := 0
	for _, i := range v.wheelCache {
		if !v.parts[i].Removed && !v.parts[i].IsBroken() {
			live++
		}
	}
	return live >= 2 || (live == 1 && v.PartCount() == 1)
}

// BalancedWheelConfig requires the center of mass inside the wheelbase span.
func (v *Vehicle) BalancedWheelConfig(floating bool) bool {
	idxs := v.wheelCache
	if floating {
		idxs = v.floating
	}
	minX, maxX := math.MaxInt32, math.MinInt32
	minY, maxY := math.MaxInt32, math.MinInt32
	for _, i := range idxs {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() {
			continue
		}
		if p.Mount.X < minX {
			minX = p.Mount.X
		}
		if p.Mount.X > maxX {
			maxX = p.Mount.X
		}
		if p.Mount.Y < minY {
			minY = p.Mount.Y
		}
		if p.Mount.Y > maxY {
			maxY = p.Mount.Y
		}
	}
	com := v.CenterOfMass(false)
	return com.X >= minX && com.X <= maxX && com.Y >= minY && com.Y <= maxY
}

// ValidWheelConfig combines sufficiency and balance.
func (v *Vehicle) ValidWheelConfig(floating bool) bool {
	return v.SufficientWheelConfig(floating) && v.BalancedWheelConfig(floating)
}

func (v *Vehicle) liveFloats() []int {
	var out []int
	for _, i := range v.floating {
		if !v.parts[i].Removed && !v.parts[i].IsBroken() {
			out = append(out, i)
		}
	}
	return out
}

// SteeringEffectiveness is 1.0 with intact steering, proportionally less as
// steerable wheels break, and negative when no steering is installed.
func (v *Vehicle) SteeringEffectiveness() float64 {
	if len(v.steering) == 0 {
		return -1.0
	}
	working := 0
	for _, i := range v.steering {
		if !v.parts[i].Removed && !v.parts[i].IsBroken() {
			working++
		}
	}
	return float64(working) / float64(len(v.steering))
}

// HandlingDifficulty approximates the driving skill needed to avoid
// fumbling: rises with speed and mass, falls with traction and steering.
func (v *Vehicle) HandlingDifficulty() float64 {
	velMPH := math.Abs(float64(v.Velocity)) / 100.0
	steer := v.SteeringEffectiveness()
	if steer < 0 {
		steer = 0
	}
	kt := v.KTraction()
	if kt <= 0 {
		kt = 0.1
	}
	return velMPH / 15.0 / kt * (1.5 - steer)
}

// CurrentEngine returns the index of the engine propelling the vehicle: the
// first enabled, unbroken, fueled engine. Returns -1 when none qualifies.
func (v *Vehicle) CurrentEngine() int {
	for _, e := range v.engines {
		p := &v.parts[e]
		if p.Removed || p.IsBroken() || !p.Enabled {
			continue
		}
		if v.engineFueled(e) {
			return e
		}
	}
	return -1
}

// engineFueled checks the engine's fuel type is available somewhere the
// engine can draw from.
func (v *Vehicle) engineFueled(e int) bool {
	ft := v.parts[e].info.FuelType
	if ft == "" {
		return true
	}
	recurse := ft == parttype.FuelBattery
	return v.FuelLeft(ft, recurse, true) > 0
}

// MaxVelocity is the speed ceiling (mph x100) using the given engine.
func (v *Vehicle) MaxVelocity(e int) int {
	p := v.Part(e)
	if p == nil || !p.IsEngine() {
		return 0
	}
	massKg := float64(v.TotalMass()) / 1000.0
	if massKg <= 0 {
		return 0
	}
	power := float64(p.Power(true))
	vel := math.Sqrt(power*v.KDynamics()/massKg) * maxVelFactor / 10.0
	vel -= v.Drag() * 100.0
	if vel < 0 {
		vel = 0
	}
	return int(vel)
}

// SafeVelocity is the highest speed that avoids engine damage.
func (v *Vehicle) SafeVelocity(e int) int {
	return int(float64(v.MaxVelocity(e)) * v.env.Tunables.SafeFraction)
}

// OptimalVelocity is the most fuel-efficient speed.
func (v *Vehicle) OptimalVelocity(e int) int {
	return int(float64(v.MaxVelocity(e)) * v.env.Tunables.OptimalFraction)
}

// RPM is the engine's current rotational speed, zero when not running.
func (v *Vehicle) RPM(e int) int {
	p := v.Part(e)
	if p == nil || !v.EngineOn || p.IsBroken() || !p.Enabled {
		return 0
	}
	f, ok := parttype.FuelByID(p.info.FuelType)
	if !ok || f.OptimalRPM == 0 {
		return 0
	}
	safe := v.SafeVelocity(e)
	if safe <= 0 {
		return f.OptimalRPM
	}
	return int(float64(f.OptimalRPM) * math.Abs(float64(v.Velocity)) / float64(safe))
}

// Gear is the discrete gear for geared engines, zero for gearless drive.
func (v *Vehicle) Gear(e int) int {
	p := v.Part(e)
	if p == nil {
		return 0
	}
	if ft := p.info.FuelType; ft == parttype.FuelBattery || ft == parttype.FuelMuscle {
		return 0
	}
	max := v.MaxVelocity(e)
	if max <= 0 || v.Velocity == 0 {
		return 0
	}
	g := absInt(v.Velocity)*5/max + 1
	if g > 5 {
		g = 5
	}
	return g
}

// Overspeed reports the engine running past its redline.
func (v *Vehicle) Overspeed(e int) bool {
	p := v.Part(e)
	if p == nil {
		return false
	}
	f, ok := parttype.FuelByID(p.info.FuelType)
	if !ok || f.OptimalRPM == 0 {
		return false
	}
	return v.RPM(e) > f.OptimalRPM*6/5
}

// FrictionLoad is the power (watts) needed to hold current speed against
// rolling and air resistance.
func (v *Vehicle) FrictionLoad() int {
	velMPH := math.Abs(float64(v.Velocity)) / 100.0
	massKg := float64(v.TotalMass()) / 1000.0
	loss := (1.0 - v.KDynamics()) * velMPH * massKg / 10.0
	return int(loss * 100.0)
}

// Acceleration is the per-turn velocity gain (mph x100) the engine can
// deliver against the current friction load.
func (v *Vehicle) Acceleration(e int) int {
	p := v.Part(e)
	if p == nil || !p.IsEngine() {
		return 0
	}
	massKg := float64(v.TotalMass()) / 1000.0
	if massKg <= 0 {
		return 0
	}
	usable := float64(p.Power(true) - v.FrictionLoad())
	if usable <= 0 {
		return 0
	}
	accel := usable * v.KDynamics() * v.KTraction() / massKg * accelFactor / 100.0
	return int(accel)
}

// ForwardVelocity is the component of velocity along the facing.
func (v *Vehicle) ForwardVelocity() float64 {
	return float64(v.Velocity) * v.MoveVec().dot(v.FaceVec())
}

// Thrust accelerates (+1) or brakes (-1) the vehicle, consuming fuel in
// proportion to engine load.
func (v *Vehicle) Thrust(thd int) {
	if thd == 0 {
		return
	}
	if v.Velocity == 0 && thd < 0 {
		return
	}
	sameDir := (v.Velocity >= 0) == (thd > 0)
	if !sameDir || v.Velocity == 0 {
		// Braking or pulling away from rest: traction-limited retardation.
		brake := int(float64(brakeBase) * v.KTraction() * v.KMass())
		if v.Velocity != 0 && !sameDir {
			if absInt(v.Velocity) <= brake {
				v.Velocity = 0
			} else if v.Velocity > 0 {
				v.Velocity -= brake
			} else {
				v.Velocity += brake
			}
			return
		}
	}
	e := v.CurrentEngine()
	if e < 0 {
		return
	}
	accel := v.Acceleration(e)
	if accel <= 0 {
		return
	}
	max := v.MaxVelocity(e)
	v.Velocity += thd * accel
	if v.Velocity > max {
		v.Velocity = max
	}
	if v.Velocity < -max/4 {
		v.Velocity = -max / 4
	}
	load := 1.0
	if safe := v.SafeVelocity(e); safe > 0 {
		load = math.Min(1.0, math.Abs(float64(v.Velocity))/float64(safe))
	}
	v.consumeFuel(e, load)
	if v.Overspeed(e) {
		// Running past redline chips away at the engine.
		v.parts[e].Base.ModDamage(1)
		v.InvalidateMass()
	}
}

// brakeBase is the retardation (mph x100) of healthy brakes per turn.
const brakeBase = 800

// consumeFuel burns the engine's fuel for one turn at the given load
// fraction. Electric engines pull from the whole connected network.
func (v *Vehicle) consumeFuel(e int, load float64) {
	p := &v.parts[e]
	ft := p.info.FuelType
	if ft == "" || ft == parttype.FuelMuscle {
		return
	}
	f, ok := parttype.FuelByID(ft)
	if !ok {
		return
	}
	qty := int(float64(p.info.Power) * load * v.env.Tunables.FuelUsagePerPower *
		float64(f.Coeff) / 100.0 / p.Efficiency(v.RPM(e)))
	if qty <= 0 {
		qty = 1
	}
	if ft == parttype.FuelBattery {
		v.Discharge(qty, true, true)
		return
	}
	v.Drain(ft, qty)
}

// CruiseThrust adjusts the cruise-control target by amount (mph x100),
// clamped to what the current engine can sustain.
func (v *Vehicle) CruiseThrust(amount int) {
	e := v.CurrentEngine()
	if e < 0 {
		return
	}
	v.CruiseVelocity += amount
	max := v.MaxVelocity(e)
	if v.CruiseVelocity > max {
		v.CruiseVelocity = max
	}
	if v.CruiseVelocity < -max/4 {
		v.CruiseVelocity = -max / 4
	}
}

// Turn rotates the pending turn direction by deg (negative left, positive
// right). Sharp turns at speed on poor traction start a skid.
func (v *Vehicle) Turn(deg int) {
	if deg == 0 || v.SteeringEffectiveness() < 0 {
		return
	}
	v.LastTurn = deg
	v.turnDir = normalizeDir(v.turnDir + deg)
	if absInt(deg) >= 30 && absInt(v.Velocity) > 1000 && v.KTraction() < 0.7 {
		if v.env.Rand.Float64() > v.KTraction() {
			v.Skidding = true
		}
	}
}

// PossiblyRecoverFromSkid runs the per-turn probabilistic recovery check:
// the closer the movement vector is back to the facing, the better the odds.
func (v *Vehicle) PossiblyRecoverFromSkid() {
	if !v.Skidding {
		return
	}
	dot := v.MoveVec().dot(v.FaceVec())
	chance := 0.1 + 0.5*math.Max(0, dot)*v.KTraction()
	if v.env.Rand.Float64() < chance {
		v.Skidding = false
		v.moveDir = v.faceDir
		return
	}
	// Still sliding: bleed speed.
	v.Velocity = v.Velocity * 9 / 10
}

// Stop zeroes all motion.
func (v *Vehicle) Stop() {
	v.Velocity = 0
	v.CruiseVelocity = 0
	v.Skidding = false
	v.moveDir = v.faceDir
}

// ApplyTurn commits the pending turn direction to the facing (and the
// movement vector unless skidding), then reprojects mounts for the new
// orientation.
func (v *Vehicle) ApplyTurn() {
	if v.turnDir == v.faceDir {
		return
	}
	v.faceDir = v.turnDir
	if !v.Skidding {
		v.moveDir = v.faceDir
	}
	v.precalcMounts(1, v.faceDir, v.PivotPoint())
	v.advancePrecalc()
	v.occupiedDirty = true
	v.insidesDirty = true
}

// advancePrecalc promotes next-turn offsets to current, as the world does
// after displacing the vehicle.
func (v *Vehicle) advancePrecalc() {
	for i := range v.parts {
		v.parts[i].precalc[0] = v.parts[i].precalc[1]
	}
	v.pivotAnchor[0] = v.pivotAnchor[1]
	v.pivotRotation[0] = v.pivotRotation[1]
}

// SetFacing orients a freshly placed vehicle.
func (v *Vehicle) SetFacing(deg int) {
	v.faceDir = normalizeDir(deg)
	v.moveDir = v.faceDir
	v.turnDir = v.faceDir
	v.precalcMounts(0, v.faceDir, v.PivotPoint())
	v.occupiedDirty = true
	v.insidesDirty = true
}

func normalizeDir(deg int) int {
	deg %= 360
	if deg < 0 {
		deg += 360
	}
	return deg
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
