package vehicle

import (
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// PartsAtRelative returns the live part indices at a mount coordinate, in
// installation order.
func (v *Vehicle) PartsAtRelative(mount core.Point) []int {
	var out []int
	for _, i := range v.partsAt(mount) {
		if !v.parts[i].Removed {
			out = append(out, i)
		}
	}
	return out
}

// PartWithFeature finds a part sharing part i's mount that carries the flag.
// With unbroken set, broken parts are skipped; "active" filtering is always
// a query-time predicate, never a stored index. Returns -1 when absent.
func (v *Vehicle) PartWithFeature(i int, flag string, unbroken bool) int {
	p := v.Part(i)
	if p == nil || p.Removed {
		return -1
	}
	return v.PartWithFeatureAt(p.Mount, flag, unbroken)
}

// PartWithFeatureAt is PartWithFeature keyed by mount coordinate.
func (v *Vehicle) PartWithFeatureAt(mount core.Point, flag string, unbroken bool) int {
	for _, i := range v.partsAt(mount) {
		p := &v.parts[i]
		if p.Removed || (unbroken && p.IsBroken()) {
			continue
		}
		if p.info.HasFlag(flag) {
			return i
		}
	}
	return -1
}

// AllPartsWithFeature returns indices of every live part carrying the flag.
func (v *Vehicle) AllPartsWithFeature(flag string, unbroken bool) []int {
	var out []int
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || (unbroken && p.IsBroken()) {
			continue
		}
		if p.info.HasFlag(flag) {
			out = append(out, i)
		}
	}
	return out
}

// AllPartsAtLocation returns indices of every live part in a location slot.
func (v *Vehicle) AllPartsAtLocation(location string) []int {
	var out []int
	for i := range v.parts {
		p := &v.parts[i]
		if !p.Removed && p.info.Location == location {
			out = append(out, i)
		}
	}
	return out
}

// HasPart reports at least one live unbroken part matching the predicate.
func (v *Vehicle) HasPart(match func(*Part) bool) bool {
	for i := range v.parts {
		p := &v.parts[i]
		if !p.Removed && !p.IsBroken() && match(p) {
			return true
		}
	}
	return false
}

// HasPartFlag reports at least one live unbroken part with the flag,
// optionally requiring it to be enabled.
func (v *Vehicle) HasPartFlag(flag string, enabled bool) bool {
	return v.HasPart(func(p *Part) bool {
		return p.info.HasFlag(flag) && (!enabled || p.Enabled)
	})
}

// PartFlag reports whether part i carries the type flag.
func (v *Vehicle) PartFlag(i int, flag string) bool {
	p := v.Part(i)
	return p != nil && !p.Removed && p.info.HasFlag(flag)
}

// ObstacleAtPart returns the obstructing part index sharing part i's mount.
// Open doors and broken parts never obstruct. Returns -1 when clear.
func (v *Vehicle) ObstacleAtPart(i int) int {
	idx := v.PartWithFeatureAt(v.parts[i].Mount, parttype.FlagObstacle, true)
	if idx < 0 {
		return -1
	}
	if v.parts[idx].Open {
		return -1
	}
	return idx
}

// PartAt returns the obstructing part at a tile offset from the anchor
// (current facing), or -1.
func (v *Vehicle) PartAt(offset core.Point) int {
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || p.precalc[0] != offset {
			continue
		}
		if ob := v.ObstacleAtPart(i); ob >= 0 {
			return ob
		}
	}
	return -1
}

// livePartAt returns the first live part whose tile sits at the given
// offset from the anchor, obstructing or not, or -1. Open doors still
// resolve here.
func (v *Vehicle) livePartAt(offset core.Point) int {
	for i := range v.parts {
		p := &v.parts[i]
		if !p.Removed && p.precalc[0] == offset {
			return i
		}
	}
	return -1
}

// GlobalPartAt returns the obstructing part at an absolute coordinate.
func (v *Vehicle) GlobalPartAt(p core.Tripoint) int {
	g := v.GlobalPos()
	return v.PartAt(core.Point{X: p.X - g.X, Y: p.Y - g.Y})
}

// PartDisplayedAt picks the topmost live part at a mount coordinate for
// display: the last installed non-internal part, falling back to the last
// part outright.
func (v *Vehicle) PartDisplayedAt(mount core.Point) int {
	idxs := v.PartsAtRelative(mount)
	if len(idxs) == 0 {
		return -1
	}
	for k := len(idxs) - 1; k >= 0; k-- {
		if !v.parts[idxs[k]].info.HasFlag(parttype.FlagInternal) {
			return idxs[k]
		}
	}
	return idxs[len(idxs)-1]
}

// RoofAtPart returns the roof part covering part i's mount, or -1.
func (v *Vehicle) RoofAtPart(i int) int {
	p := v.Part(i)
	if p == nil {
		return -1
	}
	return v.PartWithFeatureAt(p.Mount, parttype.FlagRoof, true)
}

// BoardedParts lists indices of parts currently carrying passengers.
func (v *Vehicle) BoardedParts() []int {
	var out []int
	for i := range v.parts {
		p := &v.parts[i]
		if !p.Removed && p.HasFlag(PassengerFlag) {
			out = append(out, i)
		}
	}
	return out
}

// Engines returns the engine category index list.
func (v *Vehicle) Engines() []int { return v.engines }

// Wheels returns the wheel category index list.
func (v *Vehicle) Wheels() []int { return v.wheelCache }

// Reactors returns the reactor category index list.
func (v *Vehicle) Reactors() []int { return v.reactors }

// Turrets lists live non-broken turret parts.
func (v *Vehicle) Turrets() []int {
	var out []int
	for _, i := range v.turretsIdx {
		if !v.parts[i].Removed && !v.parts[i].IsBroken() {
			out = append(out, i)
		}
	}
	return out
}

// Lights lists live unbroken light parts, only enabled ones when active is
// set.
func (v *Vehicle) Lights(active bool) []int {
	var out []int
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() || !p.IsLight() {
			continue
		}
		if active && !p.Enabled {
			continue
		}
		out = append(out, i)
	}
	return out
}
