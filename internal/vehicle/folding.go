package vehicle

import (
	"errors"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// ErrNotFoldable is returned when any live part lacks the folding flag.
var ErrNotFoldable = errors.New("vehicle is not foldable")

// IsFoldable reports whether every live part folds, which makes the whole
// vehicle packable into a carried item.
func (v *Vehicle) IsFoldable() bool {
	if v.PartCount() == 0 {
		return false
	}
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		if !p.info.HasFlag(parttype.FlagFoldable) {
			return false
		}
	}
	return true
}

// FoldUp packs the vehicle into an item plus the state record needed to
// unfold it later. Cargo must be emptied first.
func (v *Vehicle) FoldUp() (item.Item, core.VehicleRecord, error) {
	if !v.IsFoldable() {
		return item.Item{}, core.VehicleRecord{}, ErrNotFoldable
	}
	for i := range v.parts {
		if !v.parts[i].Removed && len(v.parts[i].CargoItems()) > 0 {
			return item.Item{}, core.VehicleRecord{},
				errors.New("cargo must be unloaded before folding")
		}
	}
	volume := 0
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		fv := p.info.FoldedVolume
		if fv == 0 {
			fv = p.info.ItemVolume
		}
		volume += fv
	}
	it := item.Item{
		Type:      "folded_" + v.Type,
		Mass:      v.TotalMass(),
		Volume:    volume,
		MaxDamage: 4,
	}
	return it, v.ToRecord(), nil
}

// Unfold rebuilds a folded vehicle from its stored record.
func Unfold(env *Env, reg *parttype.Registry, rec core.VehicleRecord) (*Vehicle, error) {
	return FromRecord(env, reg, rec)
}
