package parttype

import (
	"github.com/rs/zerolog"

	"github.com/tilesim/vehicle/pkg/core"
)

// Builtin returns a registry preloaded with a compact set of part types and
// one prototype. It backs the demo CLI and the test suites; production data
// is loaded from JSON via LoadDir.
func Builtin(log zerolog.Logger) *Registry {
	r := NewRegistry(log)
	for _, pt := range builtinTypes {
		if err := r.Register(pt); err != nil {
			r.log.Warn().Err(err).Msg("builtin part type rejected")
		}
	}
	for _, p := range builtinProtos {
		if err := r.RegisterPrototype(p); err != nil {
			r.log.Warn().Err(err).Msg("builtin prototype rejected")
		}
	}
	return r
}

var builtinTypes = []PartType{
	{
		ID: "frame", Name: "steel frame", Location: LocationStructure,
		Durability: 400, ItemMass: 20000, ItemVolume: 6000,
		DamageBash: 5,
		Flags:      []string{FlagObstacle},
	},
	{
		ID: "board", Name: "steel board", Location: LocationStructure,
		Durability: 320, ItemMass: 16000, ItemVolume: 5000,
		DamageBash: 4,
		Flags:      []string{FlagObstacle, FlagRoof},
	},
	{
		ID: "engine_v6", Name: "V6 engine", Location: "engine_block",
		Durability: 200, ItemMass: 80000, ItemVolume: 40000,
		Power: 93000, EPower: -50, FuelType: FuelGasoline,
		Flags: []string{FlagEngine, FlagInternal},
	},
	{
		ID: "engine_electric", Name: "electric motor", Location: "engine_block",
		Durability: 150, ItemMass: 25000, ItemVolume: 12000,
		Power: 40000, FuelType: FuelBattery,
		Flags: []string{FlagEngine, FlagInternal},
	},
	{
		ID: "foot_pedals", Name: "foot pedals", Location: "engine_block",
		Durability: 50, ItemMass: 3000, ItemVolume: 2000,
		Power: 350, FuelType: FuelMuscle,
		Flags: []string{FlagEngine, FlagMuscle, FlagInternal},
	},
	{
		ID: "alternator", Name: "car alternator", Location: "parts",
		Durability: 80, ItemMass: 6000, ItemVolume: 3000,
		EPower: 480,
		Flags:  []string{FlagAlternator, FlagInternal},
	},
	{
		ID: "wheel", Name: "wheel", Location: "under",
		Durability: 120, ItemMass: 10000, ItemVolume: 9000,
		WheelDiameter: 24, WheelWidth: 9,
		Flags: []string{FlagWheel},
	},
	{
		ID: "wheel_steerable", Name: "steerable wheel", Location: "under",
		Durability: 120, ItemMass: 10500, ItemVolume: 9000,
		WheelDiameter: 24, WheelWidth: 9,
		Flags: []string{FlagWheel, FlagSteerable},
	},
	{
		ID: "tank_gas", Name: "gasoline tank", Location: "fuel_source",
		Durability: 120, ItemMass: 10000, ItemVolume: 15000,
		FuelType: FuelGasoline, Capacity: 3000,
		Flags: []string{FlagFuelTank, FlagInternal},
	},
	{
		ID: "storage_battery", Name: "storage battery", Location: "fuel_source",
		Durability: 100, ItemMass: 25000, ItemVolume: 12000,
		FuelType: FuelBattery, Capacity: 500,
		Flags: []string{FlagBattery, FlagInternal},
	},
	{
		ID: "minireactor", Name: "minireactor", Location: "fuel_source",
		Durability: 300, ItemMass: 40000, ItemVolume: 15000,
		FuelType: FuelPlutonium, Capacity: 100, EPower: 0,
		Flags: []string{FlagReactor, FlagInternal},
	},
	{
		ID: "solar_panel", Name: "solar panel", Location: "roof",
		Durability: 30, ItemMass: 6000, ItemVolume: 7000,
		EPower: 30,
		Flags:  []string{FlagSolarPanel},
	},
	{
		ID: "seat", Name: "seat", Location: "anywhere",
		Durability: 80, ItemMass: 8000, ItemVolume: 10000,
		Flags:       []string{FlagSeat, FlagBoardable, FlagBelt, FlagCargo},
		CargoVolume: 5000,
	},
	{
		ID: "trunk", Name: "trunk", Location: "cargo",
		Durability: 100, ItemMass: 5000, ItemVolume: 4000,
		CargoVolume: 60000, CargoItems: 64,
		Flags: []string{FlagCargo},
	},
	{
		ID: "door", Name: "door", Location: "parts",
		Durability: 140, ItemMass: 12000, ItemVolume: 8000,
		Flags: []string{FlagDoor, FlagOpenable, FlagObstacle, FlagBoardable},
	},
	{
		ID: "turret_mg", Name: "mounted machine gun", Location: "roof",
		Durability: 120, ItemMass: 12000, ItemVolume: 8000,
		AmmoType: "ammo_762", Capacity: 200, TurretRange: 20, TurretRate: 5,
		EPower: -10,
		Flags:  []string{FlagTurret},
	},
	{
		ID: "turret_flamethrower", Name: "mounted flamethrower", Location: "roof",
		Durability: 100, ItemMass: 10000, ItemVolume: 8000,
		FuelType: FuelGasoline, TurretRange: 6, TurretRate: 3,
		EPower: -20,
		Flags:  []string{FlagTurret, FlagUseTanks},
	},
	{
		ID: "power_cable", Name: "jumper cable", Location: "",
		Durability: 20, ItemMass: 1500, ItemVolume: 1000,
		Flags: []string{FlagPowerTransfer, FlagNoFootprint, FlagUnmountOnMove},
	},
	{
		ID: "headlight", Name: "headlight", Location: "",
		Durability: 20, ItemMass: 800, ItemVolume: 500,
		EPower: -12,
		Flags:  []string{FlagLight, FlagNoFootprint},
	},
	{
		ID: "vehicle_alarm", Name: "vehicle alarm", Location: "",
		Durability: 40, ItemMass: 1000, ItemVolume: 500,
		EPower: -1,
		Flags:  []string{FlagAlarm, FlagSecurity, FlagNoFootprint},
	},
	{
		ID: "controls", Name: "vehicle controls", Location: "parts",
		Durability: 80, ItemMass: 3000, ItemVolume: 2000,
		Flags: []string{FlagControls, FlagInternal},
	},
	{
		ID: "plating", Name: "armor plating", Location: "armor",
		Durability: 400, ItemMass: 30000, ItemVolume: 5000,
		DamageBash: 20, DamageCut: 25,
		Flags: []string{FlagArmor, FlagInternal},
	},
}

var builtinProtos = []Prototype{
	{
		ID:   "runabout",
		Name: "runabout",
		Parts: []ProtoPart{
			{Mount: core.Point{X: 1, Y: 0}, Type: "frame"},
			{Mount: core.Point{X: 1, Y: 0}, Type: "engine_v6"},
			{Mount: core.Point{X: 1, Y: 0}, Type: "alternator"},
			{Mount: core.Point{X: 1, Y: 0}, Type: "headlight"},
			{Mount: core.Point{X: 0, Y: 0}, Type: "frame"},
			{Mount: core.Point{X: 0, Y: 0}, Type: "seat"},
			{Mount: core.Point{X: 0, Y: 0}, Type: "controls"},
			{Mount: core.Point{X: 0, Y: 0}, Type: "storage_battery", Charges: 300},
			{Mount: core.Point{X: -1, Y: 0}, Type: "frame"},
			{Mount: core.Point{X: -1, Y: 0}, Type: "tank_gas", Charges: 1500},
			{Mount: core.Point{X: -1, Y: 0}, Type: "trunk"},
			{Mount: core.Point{X: 1, Y: -1}, Type: "frame"},
			{Mount: core.Point{X: 1, Y: -1}, Type: "wheel_steerable"},
			{Mount: core.Point{X: 1, Y: 1}, Type: "frame"},
			{Mount: core.Point{X: 1, Y: 1}, Type: "wheel_steerable"},
			{Mount: core.Point{X: -1, Y: -1}, Type: "frame"},
			{Mount: core.Point{X: -1, Y: -1}, Type: "wheel"},
			{Mount: core.Point{X: -1, Y: 1}, Type: "frame"},
			{Mount: core.Point{X: -1, Y: 1}, Type: "wheel"},
		},
	},
}
