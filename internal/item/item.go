package item

import "github.com/tilesim/vehicle/pkg/core"

// Item is a single item instance: the base item of a vehicle part, a unit of
// cargo, or the liquid/charge contents of a tank. Mass is grams, volume is
// milliliters. Damage runs [0, MaxDamage]; an item at MaxDamage is broken.
type Item struct {
	Type      string
	Mass      int
	Volume    int
	Damage    int
	MaxDamage int
	Charges   int
}

// New returns an undamaged item.
func New(typ string, mass, volume, maxDamage int) Item {
	return Item{Type: typ, Mass: mass, Volume: volume, MaxDamage: maxDamage}
}

// WithCharges returns a copy of the item holding the given charge count.
func (it Item) WithCharges(qty int) Item {
	it.Charges = qty
	return it
}

// TotalMass is the item's own mass; charge-carrying items weigh a fixed
// amount per charge on top of the container.
func (it Item) TotalMass() int {
	return it.Mass + it.Charges*chargeMass
}

// Broken reports whether the item has taken its maximum damage.
func (it Item) Broken() bool {
	return it.Damage >= it.MaxDamage
}

// ModDamage adjusts damage by qty (negative repairs), clamped to
// [0, MaxDamage], and reports whether the item became broken as a result.
func (it *Item) ModDamage(qty int) bool {
	was := it.Broken()
	it.Damage += qty
	if it.Damage < 0 {
		it.Damage = 0
	}
	if it.Damage > it.MaxDamage {
		it.Damage = it.MaxDamage
	}
	return !was && it.Broken()
}

// HealthFraction is remaining durability in [0.0, 1.0]. Items with no
// durability rating count as intact.
func (it Item) HealthFraction() float64 {
	if it.MaxDamage <= 0 {
		return 1.0
	}
	return float64(it.MaxDamage-it.Damage) / float64(it.MaxDamage)
}

// 5 g per charge keeps fuel and ammo mass visible in the vehicle total
// without tracking per-type charge weights.
const chargeMass = 5

// ToRecord converts the item for persistence.
func (it Item) ToRecord() core.ItemRecord {
	return core.ItemRecord{Type: it.Type, Damage: it.Damage, Charges: it.Charges}
}

// FromRecord restores an item, taking mass/volume/durability from the
// template since only mutable state is persisted.
func FromRecord(rec core.ItemRecord, template Item) Item {
	template.Type = rec.Type
	template.Damage = rec.Damage
	template.Charges = rec.Charges
	if template.Damage > template.MaxDamage {
		template.Damage = template.MaxDamage
	}
	return template
}
