package vehicle

import "github.com/tilesim/vehicle/pkg/core"

// passengerMass is the assumed mass of one boarded occupant in grams.
const passengerMass = 81500

// InvalidateMass marks the mass, center-of-mass and pivot caches dirty.
// Every mutating operation (install, remove, damage, cargo change, boarding)
// funnels through here so the invalidation set stays auditable.
func (v *Vehicle) InvalidateMass() {
	v.massDirty = true
	v.centerPrecalcDirty = true
	v.centerNoPrecalcDirty = true
	v.pivotDirty = true
}

// TotalMass is the mass in grams of all live parts, their contents, cargo
// and passengers. Cached behind a dirty flag; iterating every part is
// expensive.
func (v *Vehicle) TotalMass() int {
	if v.massDirty {
		v.refreshMass()
	}
	return v.massCache
}

// CenterOfMass returns the mass center in precalculated (rotated) tile
// offsets when precalc is set, otherwise in raw mount coordinates.
func (v *Vehicle) CenterOfMass(precalc bool) core.Point {
	if precalc {
		if v.centerPrecalcDirty {
			v.calcMassCenter(true)
		}
		return v.centerPrecalc
	}
	if v.centerNoPrecalcDirty {
		v.calcMassCenter(false)
	}
	return v.centerNoPrecalc
}

func (v *Vehicle) refreshMass() {
	total := 0
	for i := range v.parts {
		total += v.partMass(i)
	}
	v.massCache = total
	v.massDirty = false
}

// partMass is the contribution of one part: base item with charges, cargo,
// and any passenger. Removed parts weigh nothing.
func (v *Vehicle) partMass(i int) int {
	p := &v.parts[i]
	if p.Removed {
		return 0
	}
	m := p.Base.TotalMass()
	for _, it := range p.items {
		m += it.TotalMass()
	}
	if p.HasFlag(PassengerFlag) {
		m += passengerMass
	}
	return m
}

func (v *Vehicle) calcMassCenter(precalc bool) {
	var xf, yf float64
	total := 0
	for i := range v.parts {
		m := v.partMass(i)
		if m == 0 {
			continue
		}
		var pt core.Point
		if precalc {
			pt = v.parts[i].precalc[0]
		} else {
			pt = v.parts[i].Mount
		}
		xf += float64(pt.X) * float64(m)
		yf += float64(pt.Y) * float64(m)
		total += m
	}
	var center core.Point
	if total > 0 {
		center = core.Point{
			X: int(xf / float64(total)),
			Y: int(yf / float64(total)),
		}
	}
	if precalc {
		v.centerPrecalc = center
		v.centerPrecalcDirty = false
	} else {
		v.centerNoPrecalc = center
		v.centerNoPrecalcDirty = false
	}
}

// PivotPoint is the rotation pivot in unrotated mount coordinates: the
// centroid of working wheels when the wheel configuration can carry the
// vehicle, otherwise the center of mass. Refreshed lazily.
func (v *Vehicle) PivotPoint() core.Point {
	if v.pivotDirty {
		v.refreshPivot()
	}
	return v.pivotCache
}

func (v *Vehicle) refreshPivot() {
	v.pivotDirty = false
	working := 0
	var sx, sy, weight int
	for _, i := range v.wheelCache {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() {
			continue
		}
		a := p.WheelArea()
		sx += p.Mount.X * a
		sy += p.Mount.Y * a
		weight += a
		working++
	}
	if working >= 2 && weight > 0 {
		v.pivotCache = core.Point{X: sx / weight, Y: sy / weight}
		return
	}
	v.pivotCache = v.CenterOfMass(false)
}

// PivotDisplacement is the offset introduced between the last-turn pivot
// anchor and the pending one; movement code subtracts it so a shifting pivot
// does not teleport the hull.
func (v *Vehicle) PivotDisplacement() core.Point {
	last := rotatePoint(v.pivotRotation[0], v.pivotAnchor[1].Sub(v.pivotAnchor[0]))
	return last
}
