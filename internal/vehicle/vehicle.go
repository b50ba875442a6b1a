// Package vehicle implements a composite, mobile, multi-part object in a
// tile-based world: its part store, derived spatial and category indices,
// mass and pivot caches, fuel and electrical accounting (including power
// sharing across cable-connected vehicles), driving dynamics, the collision
// and damage pipeline, and mounted turrets.
//
// The engine is single-threaded and turn-based: a vehicle is mutated only by
// the orchestrating turn update and by explicit API calls, and callers must
// serialize access if they ever parallelize.
package vehicle

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// Domain failures surfaced as values; none of these abort the caller.
var (
	ErrUnknownPartType = errors.New("unknown part type")
	ErrMountConflict   = errors.New("mount conflict")
	ErrInvalidPart     = errors.New("invalid part index")
)

// submapSize is the edge length of one submap in tiles.
const submapSize = 12

// Vehicle is an ordered sequence of parts plus movement state and cached
// derived quantities. Parts are addressed by index; removal tombstones the
// slot and PartRemovalCleanup compacts at a defined boundary so indices stay
// valid within a turn.
type Vehicle struct {
	ID   string
	Name string
	Type string

	env      *Env
	registry *parttype.Registry

	parts        []Part
	removedCount int

	// Derived indices, pure functions of the part list. Rebuilt wholesale by
	// refresh; never patched incrementally because category membership can
	// change as a side effect of damage.
	relativeParts map[core.Point][]int
	engines       []int
	alternators   []int
	reactors      []int
	solarPanels   []int
	funnels       []int
	wheelCache    []int
	steering      []int
	floating      []int
	loosePartsIdx []int
	speciality    []int
	turretsIdx    []int

	labels map[core.Point]string
	tags   map[string]struct{}

	// Position anchor: tile inside the owning submap plus submap identity.
	PosX, PosY    int
	SmX, SmY, SmZ int

	// faceDir is where the vehicle points, moveDir where it travels (they
	// diverge while skidding), turnDir where the next move will rotate it.
	faceDir, moveDir, turnDir int

	// Velocity is mph x100 internally; unit conversion is a boundary concern.
	Velocity         int
	CruiseVelocity   int
	VerticalVelocity int

	LastTurn    int
	OfTurn      float64
	OfTurnCarry float64

	EngineOn   bool
	TrackingOn bool
	Locked     bool
	AlarmOn    bool
	CameraOn   bool
	Skidding   bool
	Falling    bool

	checkEnvEffects bool

	insidesDirty bool

	occupiedDirty  bool
	occupiedPoints []core.Tripoint

	pivotAnchor   [2]core.Point
	pivotRotation [2]int

	// Lazily recomputed derived scalars, each guarded by its own dirty flag.
	// InvalidateMass is the single entry point that marks them stale.
	massDirty            bool
	massCache            int
	centerPrecalcDirty   bool
	centerPrecalc        core.Point
	centerNoPrecalcDirty bool
	centerNoPrecalc      core.Point
	pivotDirty           bool
	pivotCache           core.Point

	extraDrag int
}

// New creates an empty vehicle bound to an environment and part registry.
func New(env *Env, reg *parttype.Registry, name string) *Vehicle {
	return &Vehicle{
		ID:                   uuid.NewString(),
		Name:                 name,
		env:                  env,
		registry:             reg,
		relativeParts:        make(map[core.Point][]int),
		labels:               make(map[core.Point]string),
		tags:                 make(map[string]struct{}),
		insidesDirty:         true,
		occupiedDirty:        true,
		massDirty:            true,
		pivotDirty:           true,
		centerPrecalcDirty:   true,
		centerNoPrecalcDirty: true,
	}
}

// FromPrototype instantiates a named prototype. initFuel is the tank fill
// percentage (negative randomizes), initStatus < 0 randomizes light wear,
// 0 spawns undamaged, > 0 spawns a smashed wreck. Unmountable prototype
// entries are reported to the diagnostic log and skipped; construction never
// aborts the whole vehicle.
func FromPrototype(env *Env, reg *parttype.Registry, protoID string, initFuel, initStatus int) (*Vehicle, error) {
	proto, ok := reg.Prototype(protoID)
	if !ok {
		return nil, fmt.Errorf("prototype %q: %w", protoID, ErrUnknownPartType)
	}
	v := New(env, reg, proto.Name)
	v.Type = proto.ID
	for _, pp := range proto.Parts {
		pt, ok := reg.Find(pp.Type)
		if !ok {
			env.Log.Warn().Str("vehicle", proto.ID).Str("part", pp.Type).
				Msg("prototype references unknown part type")
			continue
		}
		idx, err := v.InstallPart(pp.Mount, pp.Type, v.baseItemFor(pt))
		if err != nil {
			env.Log.Warn().Err(err).Str("vehicle", proto.ID).Str("part", pp.Type).
				Stringer("mount", pp.Mount).Msg("prototype part cannot be mounted")
			continue
		}
		if pp.Charges > 0 {
			v.parts[idx].AmmoSet(defaultContents(pt), pp.Charges)
		}
	}
	v.initState(initFuel, initStatus)
	v.refresh()
	return v, nil
}

// baseItemFor builds the underlying item for a fresh part.
func (v *Vehicle) baseItemFor(pt *parttype.PartType) item.Item {
	return item.New(pt.ID, pt.ItemMass, pt.ItemVolume, pt.Durability)
}

// defaultContents is the fuel/ammo type a prototype preset charges into a
// part.
func defaultContents(pt *parttype.PartType) string {
	switch {
	case pt.HasFlag(parttype.FlagBattery):
		return parttype.FuelBattery
	case pt.AmmoType != "":
		return pt.AmmoType
	default:
		return pt.FuelType
	}
}

// initState applies fuel and wear randomization to a freshly built vehicle.
func (v *Vehicle) initState(initFuel, initStatus int) {
	rng := v.env.Rand
	for i := range v.parts {
		p := &v.parts[i]
		if p.IsTank() || p.IsBattery() {
			pct := initFuel
			if pct < 0 {
				pct = rng.Intn(101)
			}
			if pct > 100 {
				pct = 100
			}
			qty := p.info.Capacity * pct / 100
			if qty > 0 {
				p.AmmoSet(defaultContents(p.info), qty)
			} else {
				p.AmmoUnset()
			}
		}
		if initStatus < 0 {
			// Light random wear, never past half durability.
			wear := rng.Intn(p.info.Durability/2 + 1)
			p.Base.ModDamage(wear)
		}
	}
	if initStatus > 0 {
		v.Smash()
	}
	v.InvalidateMass()
}

// Env exposes the bound environment (world queries, log, tunables).
func (v *Vehicle) Env() *Env { return v.env }

// Parts returns the current part count including tombstoned slots.
func (v *Vehicle) Parts() int { return len(v.parts) }

// PartCount is the number of live (non-removed) parts.
func (v *Vehicle) PartCount() int { return len(v.parts) - v.removedCount }

// Part returns the part at index i, or nil for out-of-range indices.
func (v *Vehicle) Part(i int) *Part {
	if i < 0 || i >= len(v.parts) {
		return nil
	}
	return &v.parts[i]
}

// Tag adds a vehicle property tag.
func (v *Vehicle) Tag(tag string) { v.tags[tag] = struct{}{} }

// HasTag reports a vehicle property tag.
func (v *Vehicle) HasTag(tag string) bool {
	_, ok := v.tags[tag]
	return ok
}

// CanMount validates mount rules: every mount coordinate needs exactly one
// structural base part, and at most one unbroken part per location slot
// unless the part has no meaningful footprint.
func (v *Vehicle) CanMount(mount core.Point, pt *parttype.PartType) error {
	structural := v.structuralPartAt(mount) >= 0
	if pt.Structural() {
		if structural {
			return fmt.Errorf("%w: structural part already at %s", ErrMountConflict, mount)
		}
		return nil
	}
	if !structural {
		return fmt.Errorf("%w: no structural part at %s", ErrMountConflict, mount)
	}
	if pt.FootprintExempt() {
		return nil
	}
	for _, i := range v.partsAt(mount) {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() {
			continue
		}
		if p.info.Location == pt.Location {
			return fmt.Errorf("%w: %s slot at %s taken by %s",
				ErrMountConflict, pt.Location, mount, p.Type)
		}
	}
	return nil
}

// InstallPart mounts a new part and returns its index. The base item carries
// durability state; pass a fresh item for factory-new parts.
func (v *Vehicle) InstallPart(mount core.Point, typeID string, base item.Item) (int, error) {
	pt, ok := v.registry.Find(typeID)
	if !ok {
		return -1, fmt.Errorf("%q: %w", typeID, ErrUnknownPartType)
	}
	if err := v.CanMount(mount, pt); err != nil {
		return -1, err
	}
	v.parts = append(v.parts, newPart(pt, mount, base))
	idx := len(v.parts) - 1
	v.InvalidateMass()
	v.refresh()
	return idx, nil
}

// CanUnmount reports whether the part may be removed: a structural part only
// when nothing else remains at its mount point.
func (v *Vehicle) CanUnmount(i int) error {
	p := v.Part(i)
	if p == nil || p.Removed {
		return ErrInvalidPart
	}
	if p.info.Structural() {
		for _, j := range v.partsAt(p.Mount) {
			if j != i && !v.parts[j].Removed {
				return fmt.Errorf("%w: structural part at %s still carries others",
					ErrMountConflict, p.Mount)
			}
		}
	}
	return nil
}

// RemovePart tombstones the part. The slot survives until the next
// PartRemovalCleanup so indices computed this turn remain valid. Returns
// false for invalid or already removed indices.
func (v *Vehicle) RemovePart(i int) bool {
	p := v.Part(i)
	if p == nil || p.Removed {
		return false
	}
	p.Removed = true
	p.UnsetCrew()
	p.RemoveFlag(PassengerFlag)
	v.removedCount++
	v.InvalidateMass()
	v.refresh()
	return true
}

// PartRemovalCleanup compacts tombstoned slots. Must run once per mutation
// batch before any index-dependent query crosses the turn boundary.
func (v *Vehicle) PartRemovalCleanup() {
	if v.removedCount == 0 {
		return
	}
	kept := make([]Part, 0, len(v.parts)-v.removedCount)
	for i := range v.parts {
		if !v.parts[i].Removed {
			kept = append(kept, v.parts[i])
		}
	}
	v.parts = kept
	v.removedCount = 0
	v.InvalidateMass()
	v.refresh()
	v.shiftIfNeeded()
}

// refresh rebuilds every derived index from the part store. Always a full
// rebuild: partial updates are disallowed because category membership can
// change as a side effect of damage.
func (v *Vehicle) refresh() {
	v.relativeParts = make(map[core.Point][]int, len(v.parts))
	v.engines = v.engines[:0]
	v.alternators = v.alternators[:0]
	v.reactors = v.reactors[:0]
	v.solarPanels = v.solarPanels[:0]
	v.funnels = v.funnels[:0]
	v.wheelCache = v.wheelCache[:0]
	v.steering = v.steering[:0]
	v.floating = v.floating[:0]
	v.loosePartsIdx = v.loosePartsIdx[:0]
	v.speciality = v.speciality[:0]
	v.turretsIdx = v.turretsIdx[:0]
	v.extraDrag = 0

	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		v.relativeParts[p.Mount] = append(v.relativeParts[p.Mount], i)
		info := p.info
		if info.HasFlag(parttype.FlagEngine) {
			v.engines = append(v.engines, i)
		}
		if info.HasFlag(parttype.FlagAlternator) {
			v.alternators = append(v.alternators, i)
		}
		if info.HasFlag(parttype.FlagReactor) {
			v.reactors = append(v.reactors, i)
		}
		if info.HasFlag(parttype.FlagSolarPanel) {
			v.solarPanels = append(v.solarPanels, i)
		}
		if info.HasFlag(parttype.FlagFunnel) {
			v.funnels = append(v.funnels, i)
		}
		if info.HasFlag(parttype.FlagWheel) {
			v.wheelCache = append(v.wheelCache, i)
		}
		if info.HasFlag(parttype.FlagSteerable) {
			v.steering = append(v.steering, i)
		}
		if info.HasFlag(parttype.FlagFloats) {
			v.floating = append(v.floating, i)
		}
		if info.HasFlag(parttype.FlagUnmountOnMove) {
			v.loosePartsIdx = append(v.loosePartsIdx, i)
		}
		if info.HasFlag(parttype.FlagTurret) {
			v.turretsIdx = append(v.turretsIdx, i)
		}
		if info.HasFlag(parttype.FlagSecurity) || info.HasFlag(parttype.FlagTracker) ||
			info.HasFlag(parttype.FlagCamera) {
			v.speciality = append(v.speciality, i)
		}
		if info.HasFlag(parttype.FlagProtrusion) {
			v.extraDrag += 5
		}
	}

	v.precalcMounts(0, v.faceDir, v.PivotPoint())
	v.insidesDirty = true
	v.occupiedDirty = true
}

// structuralPartAt returns the index of the structure-slot part at the mount
// coordinate, or -1.
func (v *Vehicle) structuralPartAt(mount core.Point) int {
	for _, i := range v.partsAt(mount) {
		if !v.parts[i].Removed && v.parts[i].info.Structural() {
			return i
		}
	}
	return -1
}

// partsAt is the raw index list for a mount coordinate, tombstones included.
func (v *Vehicle) partsAt(mount core.Point) []int {
	return v.relativeParts[mount]
}

// rotatePoint rotates a mount-space offset by dir degrees.
func rotatePoint(dir int, p core.Point) core.Point {
	rad := float64(dir) * math.Pi / 180.0
	c, s := math.Cos(rad), math.Sin(rad)
	x := float64(p.X)*c - float64(p.Y)*s
	y := float64(p.X)*s + float64(p.Y)*c
	return core.Point{X: int(math.Round(x)), Y: int(math.Round(y))}
}

// CoordTranslate translates a mount coordinate to a tile offset from the
// vehicle anchor using the current facing and pivot.
func (v *Vehicle) CoordTranslate(p core.Point) core.Point {
	return rotatePoint(v.faceDir, p.Sub(v.PivotPoint()))
}

// precalcMounts fills precalc[idir] for every part: mount coordinates
// rotated by dir around the given pivot, which always maps the pivot to
// (0,0).
func (v *Vehicle) precalcMounts(idir, dir int, pivot core.Point) {
	if idir < 0 || idir > 1 {
		idir = 0
	}
	for i := range v.parts {
		p := &v.parts[i]
		p.precalc[idir] = rotatePoint(dir, p.Mount.Sub(pivot))
	}
	v.pivotAnchor[idir] = pivot
	v.pivotRotation[idir] = dir
}

// GlobalPos is the anchor tile in absolute world coordinates.
func (v *Vehicle) GlobalPos() core.Tripoint {
	return core.Tripoint{
		X: v.SmX*submapSize + v.PosX,
		Y: v.SmY*submapSize + v.PosY,
		Z: v.SmZ,
	}
}

// GlobalPartPos is the absolute tile a part currently occupies.
func (v *Vehicle) GlobalPartPos(i int) core.Tripoint {
	p := v.Part(i)
	if p == nil {
		return v.GlobalPos()
	}
	g := v.GlobalPos()
	return core.Tripoint{X: g.X + p.precalc[0].X, Y: g.Y + p.precalc[0].Y, Z: g.Z}
}

// SetSubmapMoved updates the submap identity after the world displaces the
// vehicle.
func (v *Vehicle) SetSubmapMoved(x, y int) {
	v.SmX = x
	v.SmY = y
	v.occupiedDirty = true
}

// OccupiedPoints returns the set of absolute tiles covered by live parts,
// refreshed lazily.
func (v *Vehicle) OccupiedPoints() []core.Tripoint {
	if v.occupiedDirty {
		seen := make(map[core.Tripoint]struct{}, len(v.parts))
		v.occupiedPoints = v.occupiedPoints[:0]
		for i := range v.parts {
			if v.parts[i].Removed {
				continue
			}
			pos := v.GlobalPartPos(i)
			if _, dup := seen[pos]; dup {
				continue
			}
			seen[pos] = struct{}{}
			v.occupiedPoints = append(v.occupiedPoints, pos)
		}
		v.occupiedDirty = false
	}
	return v.occupiedPoints
}

// GetLabel returns the label at a mount coordinate, empty when unset.
func (v *Vehicle) GetLabel(x, y int) string {
	return v.labels[core.Point{X: x, Y: y}]
}

// SetLabel stores a label at a mount coordinate; empty text removes it.
func (v *Vehicle) SetLabel(x, y int, text string) {
	pt := core.Point{X: x, Y: y}
	if text == "" {
		delete(v.labels, pt)
		return
	}
	v.labels[pt] = text
}

// FindPart returns the index of the part whose base item matches, or -1.
func (v *Vehicle) FindPart(it item.Item) int {
	for i := range v.parts {
		if v.parts[i].Removed {
			continue
		}
		if v.parts[i].Base.Type == it.Type && v.parts[i].Base.Damage == it.Damage {
			return i
		}
	}
	return -1
}

// PartBase returns the base item handle of part i. Out-of-range and removed
// indices yield a zero item.
func (v *Vehicle) PartBase(i int) item.Item {
	p := v.Part(i)
	if p == nil || p.Removed {
		return item.Item{}
	}
	return p.Base
}

// IndexOfPart maps a part pointer back to its index, or -1 if the part does
// not belong to this vehicle. Removed parts resolve only when includeRemoved
// is set.
func (v *Vehicle) IndexOfPart(p *Part, includeRemoved bool) int {
	for i := range v.parts {
		if &v.parts[i] == p {
			if p.Removed && !includeRemoved {
				return -1
			}
			return i
		}
	}
	return -1
}

// shiftIfNeeded recenters mounts when the origin part is gone so that some
// live part sits at mount (0,0).
func (v *Vehicle) shiftIfNeeded() bool {
	if len(v.parts) == 0 {
		return false
	}
	if idxs := v.partsAt(core.Point{}); len(idxs) > 0 {
		for _, i := range idxs {
			if !v.parts[i].Removed {
				return false
			}
		}
	}
	// Shift everything so the first live part becomes the origin.
	for i := range v.parts {
		if v.parts[i].Removed {
			continue
		}
		delta := v.parts[i].Mount
		v.shiftParts(delta)
		return true
	}
	return false
}

// shiftParts moves all mount coordinates by -delta and the anchor by the
// rotated delta, keeping absolute part positions unchanged.
func (v *Vehicle) shiftParts(delta core.Point) {
	rotated := rotatePoint(v.faceDir, delta)
	v.PosX += rotated.X
	v.PosY += rotated.Y
	for i := range v.parts {
		v.parts[i].Mount = v.parts[i].Mount.Sub(delta)
	}
	shifted := make(map[core.Point]string, len(v.labels))
	for pt, text := range v.labels {
		shifted[pt.Sub(delta)] = text
	}
	v.labels = shifted
	v.InvalidateMass()
	v.refresh()
}

// ShedLooseParts drops every part flagged to unmount on movement (trailing
// cables and the like) as debris at its current tile.
func (v *Vehicle) ShedLooseParts() {
	shed := false
	for _, i := range v.loosePartsIdx {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		v.env.Events.Push(WorldEvent{
			Kind: EventDebris,
			Pos:  v.GlobalPartPos(i),
			Item: p.PropertiesToItem(),
		})
		p.Removed = true
		v.removedCount++
		shed = true
	}
	if shed {
		v.InvalidateMass()
		v.refresh()
	}
}
