// Package parttype holds the static, read-only definitions the engine
// resolves part identifiers against: part types (capability flags, base
// durability, power figures, footprint), fuel types, and vehicle prototypes.
// The simulation core never mutates anything in this package.
package parttype

// Capability and behavior flags. A part type carries zero or more of these;
// some are mutually exclusive (a part cannot be both a tank and a battery).
const (
	FlagEngine        = "ENGINE"
	FlagAlternator    = "ALTERNATOR"
	FlagWheel         = "WHEEL"
	FlagSteerable     = "STEERABLE"
	FlagTurret        = "TURRET"
	FlagUseTanks      = "USE_TANKS" // turret draws liquid ammo from tanks
	FlagFuelTank      = "FUEL_TANK"
	FlagBattery       = "BATTERY"
	FlagReactor       = "REACTOR"
	FlagSolarPanel    = "SOLAR_PANEL"
	FlagFunnel        = "FUNNEL"
	FlagPowerTransfer = "POWER_TRANSFER"
	FlagCargo         = "CARGO"
	FlagSeat          = "SEAT"
	FlagBoardable     = "BOARDABLE"
	FlagBelt          = "SEATBELT"
	FlagDoor          = "DOOR"
	FlagOpenable      = "OPENABLE"
	FlagOpenInside    = "OPENCLOSE_INSIDE"
	FlagRoof          = "ROOF"
	FlagObstacle      = "OBSTACLE"
	FlagProtrusion    = "PROTRUSION"
	FlagArmor         = "ARMOR"
	FlagSecurity      = "SECURITY"
	FlagAlarm         = "ALARM"
	FlagHorn          = "HORN"
	FlagLight         = "LIGHT"
	FlagTracker       = "TRACKED"
	FlagCamera        = "CAMERA"
	FlagControls      = "CONTROLS"
	FlagMuscle        = "MUSCLE"
	FlagFloats        = "FLOATS"
	FlagUnmountOnMove = "UNMOUNT_ON_MOVE"
	FlagFoldable      = "FOLDABLE"
	FlagNoFootprint   = "NO_FOOTPRINT" // small fixtures exempt from mount conflicts
	FlagInternal      = "INTERNAL"     // mounted inside another part, never an obstacle
)

// LocationStructure is the location slot every mount point must have exactly
// one unremoved part in.
const LocationStructure = "structure"

// BreakItem describes debris spawned when a part of this type breaks off.
type BreakItem struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// PartType is the static definition shared by all parts of one type.
type PartType struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"` // empty for parts without a footprint

	Durability int `json:"durability"`
	ItemMass   int `json:"item_mass"`   // grams
	ItemVolume int `json:"item_volume"` // milliliters

	Power  int `json:"power"`  // engine output, watts
	EPower int `json:"epower"` // electrical balance, watts; negative draws

	FuelType string `json:"fuel_type"` // consumed (engines) or stored (tanks)
	Capacity int    `json:"capacity"`  // tank/battery/magazine charges

	CargoVolume int `json:"cargo_volume"` // milliliters, 0 = not cargo
	CargoItems  int `json:"cargo_items"`  // max item count, 0 = default

	WheelDiameter int `json:"wheel_diameter"` // inches
	WheelWidth    int `json:"wheel_width"`    // inches

	FoldedVolume int `json:"folded_volume"`

	AmmoType    string `json:"ammo_type"`    // turret magazine ammo
	TurretRange int    `json:"turret_range"` // tiles
	TurretRate  int    `json:"turret_rate"`  // max shots per trigger pull

	DamageMod  int `json:"damage_mod"`  // collision damage multiplier, percent
	DamageCut  int `json:"damage_cut"`  // armor against cutting damage
	DamageBash int `json:"damage_bash"` // armor against bashing damage

	BreakItems []BreakItem `json:"break_items,omitempty"`

	Flags []string `json:"flags"`

	flagSet map[string]struct{}
}

// HasFlag reports whether the part type carries the given flag.
func (pt *PartType) HasFlag(flag string) bool {
	if pt.flagSet == nil {
		pt.flagSet = make(map[string]struct{}, len(pt.Flags))
		for _, f := range pt.Flags {
			pt.flagSet[f] = struct{}{}
		}
	}
	_, ok := pt.flagSet[flag]
	return ok
}

// Structural reports whether this part occupies the structure slot of its
// mount point.
func (pt *PartType) Structural() bool {
	return pt.Location == LocationStructure
}

// FootprintExempt reports whether the part is too small to conflict with
// other parts in the same location slot.
func (pt *PartType) FootprintExempt() bool {
	return pt.Location == "" || pt.HasFlag(FlagNoFootprint)
}

// WheelArea is diameter times width in square inches, or 0 for non-wheels.
func (pt *PartType) WheelArea() int {
	if !pt.HasFlag(FlagWheel) {
		return 0
	}
	return pt.WheelDiameter * pt.WheelWidth
}
