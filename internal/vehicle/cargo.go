package vehicle

import (
	"errors"

	"github.com/tilesim/vehicle/internal/item"
)

// ErrCargoFull is returned when a cargo part cannot take the item.
var ErrCargoFull = errors.New("cargo space full")

// MaxVolume is the cargo capacity of part i in milliliters, zero for parts
// that hold no cargo.
func (v *Vehicle) MaxVolume(i int) int {
	p := v.Part(i)
	if p == nil || p.Removed || p.IsBroken() {
		return 0
	}
	return p.info.CargoVolume
}

// StoredVolume is the volume currently occupied in part i.
func (v *Vehicle) StoredVolume(i int) int {
	p := v.Part(i)
	if p == nil {
		return 0
	}
	total := 0
	for _, it := range p.CargoItems() {
		total += it.Volume
	}
	return total
}

// FreeVolume is the remaining capacity of part i.
func (v *Vehicle) FreeVolume(i int) int {
	return v.MaxVolume(i) - v.StoredVolume(i)
}

// AddItem stows an item in cargo part i. Fails when the part holds no
// cargo, is broken, or lacks volume or item slots.
func (v *Vehicle) AddItem(i int, it item.Item) error {
	p := v.Part(i)
	if p == nil || p.Removed || p.IsBroken() || p.info.CargoVolume == 0 {
		return ErrInvalidPart
	}
	if it.Volume > v.FreeVolume(i) {
		return ErrCargoFull
	}
	if max := p.info.CargoItems; max > 0 && len(p.CargoItems()) >= max {
		return ErrCargoFull
	}
	p.AddCargo(it)
	v.InvalidateMass()
	return nil
}

// AddCharges merges charges into an existing stack of the same item type, or
// stows a new stack. Returns the charges accepted.
func (v *Vehicle) AddCharges(i int, it item.Item) int {
	p := v.Part(i)
	if p == nil || p.Removed || p.IsBroken() || p.info.CargoVolume == 0 {
		return 0
	}
	for n, stored := range p.CargoItems() {
		if stored.Type == it.Type && stored.Damage == it.Damage {
			p.MergeCargoCharges(n, it.Charges)
			v.InvalidateMass()
			return it.Charges
		}
	}
	if err := v.AddItem(i, it); err != nil {
		return 0
	}
	return it.Charges
}

// RemoveItem takes the n-th item out of cargo part i.
func (v *Vehicle) RemoveItem(i, n int) (item.Item, bool) {
	p := v.Part(i)
	if p == nil {
		return item.Item{}, false
	}
	it, ok := p.RemoveCargo(n)
	if ok {
		v.InvalidateMass()
	}
	return it, ok
}

// Items returns the cargo of part i. The slice is the part's backing store;
// callers must not mutate it.
func (v *Vehicle) Items(i int) []item.Item {
	p := v.Part(i)
	if p == nil {
		return nil
	}
	return p.CargoItems()
}
