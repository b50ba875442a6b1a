package parttype

// Fuel identifiers used across the engine. Battery charge is treated as a
// fuel type so tanks, batteries and turret magazines share one ledger.
const (
	FuelGasoline  = "gasoline"
	FuelDiesel    = "diesel"
	FuelBattery   = "battery"
	FuelPlasma    = "plasma"
	FuelPlutonium = "plutonium"
	FuelMuscle    = "muscle"
	FuelWater     = "water"
)

// Fuel describes one fuel type. Coeff scales charges consumed per unit of
// engine output; Explosiveness drives tank ignition on heavy damage, zero
// means the fuel cannot ignite. ReactorYield is battery charge produced per
// charge consumed when a reactor converts it.
type Fuel struct {
	ID            string
	Coeff         int
	Explosiveness int
	ReactorYield  int
	OptimalRPM    int
}

var fuels = map[string]Fuel{
	FuelGasoline:  {ID: FuelGasoline, Coeff: 100, Explosiveness: 15, OptimalRPM: 3600},
	FuelDiesel:    {ID: FuelDiesel, Coeff: 100, Explosiveness: 4, OptimalRPM: 2800},
	FuelBattery:   {ID: FuelBattery, Coeff: 1, OptimalRPM: 6000},
	FuelPlasma:    {ID: FuelPlasma, Coeff: 100, Explosiveness: 20, OptimalRPM: 9000},
	FuelPlutonium: {ID: FuelPlutonium, Coeff: 1, ReactorYield: 100},
	FuelMuscle:    {ID: FuelMuscle, Coeff: 0, OptimalRPM: 90},
	FuelWater:     {ID: FuelWater, Coeff: 0},
}

// FuelByID resolves a fuel type; unknown identifiers report ok == false.
func FuelByID(id string) (Fuel, bool) {
	f, ok := fuels[id]
	return f, ok
}

// Fuels returns all known fuel types in unspecified order.
func Fuels() []Fuel {
	out := make([]Fuel, 0, len(fuels))
	for _, f := range fuels {
		out = append(out, f)
	}
	return out
}
