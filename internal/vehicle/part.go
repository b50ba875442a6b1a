package vehicle

import (
	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// Bit flags stored on a part instance.
const (
	// PassengerFlag marks a part currently carrying a passenger.
	PassengerFlag = 1
)

// noCrew is the CrewID of an unassigned seat or turret.
const noCrew = -1

// Part is one physical component mounted on a vehicle. Parts are addressed
// by index into Vehicle.parts; a removed part keeps its slot until
// PartRemovalCleanup so indices computed earlier in the turn stay valid.
type Part struct {
	// Type identifies the part definition in the registry.
	Type string

	// Mount point: X is the forward/backward axis, Y is left/right.
	Mount core.Point

	// Mount translated for the current facing [0] and the pending turn
	// direction [1], relative to the pivot.
	precalc [2]core.Point

	// Base is the underlying item; its damage tracks part health and its
	// charges hold tank/battery/magazine contents.
	Base item.Item

	// ammoCurrent is the fuel or ammo type currently loaded, empty when the
	// part holds nothing.
	ammoCurrent string

	// AmmoPref is the preferred type when several are compatible.
	AmmoPref string

	// items is per-part cargo.
	items []item.Item

	// CrewID is the assigned crew member, noCrew when unassigned. Resolved
	// through the world's crew registry, never held as a pointer.
	CrewID int

	Blood     int
	Inside    bool // tile is covered; use Vehicle.IsInside, not this field
	Removed   bool // tombstone, swept by PartRemovalCleanup
	Enabled   bool
	Open      bool
	Direction int

	flags int

	// Target holds absolute coordinates used by turrets and power cables:
	// the aimed point and the target vehicle's origin tile.
	Target       core.Tripoint
	TargetOrigin core.Tripoint

	// Resolved part definition, cached on construction and after load.
	info *parttype.PartType
}

// newPart builds a part of the given type with the supplied base item.
func newPart(pt *parttype.PartType, mount core.Point, base item.Item) Part {
	return Part{
		Type:    pt.ID,
		Mount:   mount,
		Base:    base,
		CrewID:  noCrew,
		info:    pt,
		precalc: [2]core.Point{{X: -1, Y: -1}, {X: -1, Y: -1}},
	}
}

// Info returns the static definition for this part's type.
func (p *Part) Info() *parttype.PartType {
	return p.info
}

// HasFlag reports whether the given instance bit flag is set.
func (p *Part) HasFlag(flag int) bool { return p.flags&flag != 0 }

// SetFlag sets an instance bit flag.
func (p *Part) SetFlag(flag int) { p.flags |= flag }

// RemoveFlag clears an instance bit flag.
func (p *Part) RemoveFlag(flag int) { p.flags &^= flag }

// HP is current health in [0, durability].
func (p *Part) HP() int {
	return int(p.Base.HealthFraction() * float64(p.info.Durability))
}

// IsBroken reports zero health. Broken parts provide no capability but still
// occupy their mount and obstruct collisions until removed.
func (p *Part) IsBroken() bool { return p.Base.Broken() }

// Name is the display name including status.
func (p *Part) Name() string {
	if p.IsBroken() {
		return "broken " + p.info.Name
	}
	return p.info.Name
}

// AmmoCurrent returns the fuel/charge/ammo type currently contained, or the
// empty string if the part holds nothing.
func (p *Part) AmmoCurrent() string {
	if p.Base.Charges <= 0 {
		return ""
	}
	return p.ammoCurrent
}

// AmmoCapacity is the maximum charges the part can contain.
func (p *Part) AmmoCapacity() int { return p.info.Capacity }

// AmmoRemaining is the charges currently contained.
func (p *Part) AmmoRemaining() int { return p.Base.Charges }

// ammoCompatible reports whether the part can contain the given type.
func (p *Part) ammoCompatible(ammo string) bool {
	switch {
	case p.info.HasFlag(parttype.FlagBattery):
		return ammo == parttype.FuelBattery
	case p.info.HasFlag(parttype.FlagFuelTank):
		// Tanks hold any liquid fuel but never mixed contents.
		if _, ok := parttype.FuelByID(ammo); !ok {
			return false
		}
		if ammo == parttype.FuelBattery || ammo == parttype.FuelMuscle {
			return false
		}
		return p.Base.Charges == 0 || p.ammoCurrent == ammo
	case p.info.HasFlag(parttype.FlagReactor):
		return ammo == p.info.FuelType
	case p.info.AmmoType != "":
		return ammo == p.info.AmmoType
	default:
		return false
	}
}

// AmmoSet replaces contents with qty charges of the given type, capped by
// capacity; qty < 0 fills to capacity. Returns charges actually set, or -1
// if the type is not compatible with this part.
func (p *Part) AmmoSet(ammo string, qty int) int {
	if !p.ammoCompatible(ammo) {
		return -1
	}
	if qty < 0 || qty > p.info.Capacity {
		qty = p.info.Capacity
	}
	p.ammoCurrent = ammo
	p.Base.Charges = qty
	return qty
}

// AmmoUnset removes all contents.
func (p *Part) AmmoUnset() {
	p.ammoCurrent = ""
	p.Base.Charges = 0
}

// AmmoConsume removes up to qty charges and returns the amount consumed.
func (p *Part) AmmoConsume(qty int) int {
	if qty < 0 {
		return 0
	}
	if qty > p.Base.Charges {
		qty = p.Base.Charges
	}
	p.Base.Charges -= qty
	if p.Base.Charges == 0 {
		p.ammoCurrent = ""
	}
	return qty
}

// FillWith adds up to qty charges of the given fuel, returning the amount
// accepted. Fails (returns 0) on type mismatch or a broken part.
func (p *Part) FillWith(ammo string, qty int) int {
	if p.IsBroken() || qty <= 0 || !p.ammoCompatible(ammo) {
		return 0
	}
	space := p.info.Capacity - p.Base.Charges
	if qty > space {
		qty = space
	}
	if qty == 0 {
		return 0
	}
	p.ammoCurrent = ammo
	p.Base.Charges += qty
	return qty
}

// DrainContents removes up to qty charges (negative drains everything) and
// returns the content type with the amount drained.
func (p *Part) DrainContents(qty int) (string, int) {
	if p.Base.Charges == 0 {
		return "", 0
	}
	typ := p.ammoCurrent
	if qty < 0 || qty > p.Base.Charges {
		qty = p.Base.Charges
	}
	p.Base.Charges -= qty
	if p.Base.Charges == 0 {
		p.ammoCurrent = ""
	}
	return typ, qty
}

// CargoItems is the part's stowed cargo. The slice is the backing store.
func (p *Part) CargoItems() []item.Item { return p.items }

// AddCargo stows an item without capacity checks; the vehicle enforces
// volume and slot limits.
func (p *Part) AddCargo(it item.Item) { p.items = append(p.items, it) }

// MergeCargoCharges adds charges onto the n-th cargo stack.
func (p *Part) MergeCargoCharges(n, charges int) {
	if n >= 0 && n < len(p.items) {
		p.items[n].Charges += charges
	}
}

// RemoveCargo takes the n-th cargo item out.
func (p *Part) RemoveCargo(n int) (item.Item, bool) {
	if n < 0 || n >= len(p.items) {
		return item.Item{}, false
	}
	it := p.items[n]
	p.items = append(p.items[:n], p.items[n+1:]...)
	return it, true
}

// DrainCargo removes and returns everything stowed in the part.
func (p *Part) DrainCargo() []item.Item {
	out := p.items
	p.items = nil
	return out
}

// WheelArea is contact patch area in square inches, 0 for non-wheels and
// broken wheels.
func (p *Part) WheelArea() int {
	if p.IsBroken() {
		return 0
	}
	return p.info.WheelArea()
}

// Efficiency is the fraction (0.0, 1.0] of fuel energy an engine converts to
// output at the given rotational speed. Non-engines rate 0.
func (p *Part) Efficiency(rpm int) float64 {
	if !p.IsEngine() {
		return 0
	}
	f, ok := parttype.FuelByID(p.info.FuelType)
	if !ok || f.OptimalRPM == 0 {
		return 1.0
	}
	diff := rpm - f.OptimalRPM
	if diff < 0 {
		diff = -diff
	}
	eff := 1.0 - float64(diff)/float64(2*f.OptimalRPM)
	if eff < 0.1 {
		eff = 0.1
	}
	if eff > 1.0 {
		eff = 1.0
	}
	return eff
}

// Power is effective output in watts, scaled by damage unless effects is
// false. Broken parts produce nothing.
func (p *Part) Power(effects bool) int {
	if p.IsBroken() {
		return 0
	}
	if !effects {
		return p.info.Power
	}
	return int(float64(p.info.Power) * p.Base.HealthFraction())
}

// EPower is the electrical balance in watts: positive generates, negative
// draws. Disabled consumers and broken parts contribute nothing.
func (p *Part) EPower() int {
	if p.IsBroken() {
		return 0
	}
	e := p.info.EPower
	if e < 0 && !p.Enabled {
		return 0
	}
	return e
}

// SetCrew assigns a crew member to a seat or turret.
func (p *Part) SetCrew(id int) bool {
	if p.IsBroken() || !(p.IsSeat() || p.IsTurret()) {
		return false
	}
	p.CrewID = id
	return true
}

// UnsetCrew removes any assigned crew member.
func (p *Part) UnsetCrew() { p.CrewID = noCrew }

// Capability predicates. A part provides zero or more capabilities; some are
// mutually exclusive, e.g. a part cannot be both a fuel tank and a battery.

func (p *Part) IsEngine() bool     { return p.info.HasFlag(parttype.FlagEngine) }
func (p *Part) IsAlternator() bool { return p.info.HasFlag(parttype.FlagAlternator) }
func (p *Part) IsLight() bool      { return p.info.HasFlag(parttype.FlagLight) }
func (p *Part) IsTank() bool       { return p.info.HasFlag(parttype.FlagFuelTank) }
func (p *Part) IsBattery() bool    { return p.info.HasFlag(parttype.FlagBattery) }
func (p *Part) IsReactor() bool    { return p.info.HasFlag(parttype.FlagReactor) }
func (p *Part) IsTurret() bool     { return p.info.HasFlag(parttype.FlagTurret) }
func (p *Part) IsSeat() bool       { return p.info.HasFlag(parttype.FlagSeat) }
func (p *Part) IsWheel() bool      { return p.info.HasFlag(parttype.FlagWheel) }

// PropertiesToItem converts the part back into its item form, carrying over
// damage and any contents the item type can hold.
func (p *Part) PropertiesToItem() item.Item {
	it := p.Base
	return it
}

// ToRecord converts the part for persistence.
func (p *Part) ToRecord() core.PartRecord {
	rec := core.PartRecord{
		Type:         p.Type,
		Mount:        p.Mount,
		Base:         p.Base.ToRecord(),
		AmmoPref:     p.AmmoPref,
		AmmoCurrent:  p.ammoCurrent,
		Enabled:      p.Enabled,
		Open:         p.Open,
		Removed:      p.Removed,
		Passenger:    p.HasFlag(PassengerFlag),
		Blood:        p.Blood,
		Direction:    p.Direction,
		CrewID:       p.CrewID,
		Target:       p.Target,
		TargetOrigin: p.TargetOrigin,
	}
	for _, it := range p.items {
		rec.Items = append(rec.Items, it.ToRecord())
	}
	return rec
}
