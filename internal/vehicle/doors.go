package vehicle

import (
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// OpenablePart reports whether part i can be opened or closed at all.
func (v *Vehicle) OpenablePart(i int) bool {
	p := v.Part(i)
	return p != nil && !p.Removed && !p.IsBroken() &&
		p.info.HasFlag(parttype.FlagOpenable)
}

// Open opens part i and everything else at the same mount that opens with
// it, then invalidates coverage.
func (v *Vehicle) Open(i int) bool {
	if !v.OpenablePart(i) {
		return false
	}
	v.openOrClose(i, true)
	return true
}

// Close closes part i.
func (v *Vehicle) Close(i int) bool {
	if !v.OpenablePart(i) {
		return false
	}
	v.openOrClose(i, false)
	return true
}

func (v *Vehicle) openOrClose(i int, open bool) {
	mount := v.parts[i].Mount
	for _, j := range v.partsAt(mount) {
		p := &v.parts[j]
		if p.Removed || p.IsBroken() || !p.info.HasFlag(parttype.FlagOpenable) {
			continue
		}
		p.Open = open
	}
	v.insidesDirty = true
}

// NextPartToOpen finds a closed openable part at the mount under the given
// offset. With insideOnly set, parts that can only be opened from inside are
// skipped.
func (v *Vehicle) NextPartToOpen(offset core.Point, insideOnly bool) int {
	pi := v.livePartAt(offset)
	if pi < 0 {
		return -1
	}
	for _, j := range v.partsAt(v.parts[pi].Mount) {
		p := &v.parts[j]
		if p.Removed || p.IsBroken() || p.Open {
			continue
		}
		if !p.info.HasFlag(parttype.FlagOpenable) {
			continue
		}
		if insideOnly && p.info.HasFlag(parttype.FlagOpenInside) {
			continue
		}
		return j
	}
	return -1
}

// NextPartToClose finds an open openable part at the mount under the given
// offset.
func (v *Vehicle) NextPartToClose(offset core.Point, insideOnly bool) int {
	pi := v.livePartAt(offset)
	if pi < 0 {
		return -1
	}
	idxs := v.partsAt(v.parts[pi].Mount)
	// Scan outermost first so the last installed door closes first.
	for n := len(idxs) - 1; n >= 0; n-- {
		p := &v.parts[idxs[n]]
		if p.Removed || p.IsBroken() || !p.Open {
			continue
		}
		if !p.info.HasFlag(parttype.FlagOpenable) {
			continue
		}
		if insideOnly && p.info.HasFlag(parttype.FlagOpenInside) {
			continue
		}
		return idxs[n]
	}
	return -1
}

// OpenAllAt opens every openable part at the mount under the given offset,
// multi-tile curtains included.
func (v *Vehicle) OpenAllAt(offset core.Point) {
	pi := v.livePartAt(offset)
	if pi < 0 {
		return
	}
	v.openOrClose(pi, true)
}

// RefreshInsides recomputes per-part coverage: a part is inside when its
// tile has a roof and every adjacent tile either belongs to the vehicle
// with an obstructing, closed part toward it or is covered itself.
func (v *Vehicle) RefreshInsides() {
	v.insidesDirty = false
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		if v.RoofAtPart(i) < 0 {
			p.Inside = false
			continue
		}
		p.Inside = true
		for _, d := range [4]core.Point{{X: 1}, {X: -1}, {Y: 1}, {Y: -1}} {
			near := p.Mount.Add(d)
			covered := false
			for _, j := range v.partsAt(near) {
				np := &v.parts[j]
				if np.Removed || np.IsBroken() {
					continue
				}
				if np.info.HasFlag(parttype.FlagRoof) ||
					(np.info.HasFlag(parttype.FlagObstacle) && !np.Open) {
					covered = true
					break
				}
			}
			if !covered {
				p.Inside = false
				break
			}
		}
	}
}

// IsInside reports whether the tile of part i is enclosed, recomputing
// coverage if stale.
func (v *Vehicle) IsInside(i int) bool {
	if v.insidesDirty {
		v.RefreshInsides()
	}
	p := v.Part(i)
	return p != nil && !p.Removed && p.Inside
}
