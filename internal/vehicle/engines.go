package vehicle

import (
	"github.com/tilesim/vehicle/internal/parttype"
)

// HasEngineType reports an installed engine burning the given fuel,
// optionally requiring it enabled.
func (v *Vehicle) HasEngineType(fuel string, enabled bool) bool {
	for _, e := range v.engines {
		p := &v.parts[e]
		if p.Removed || p.info.FuelType != fuel {
			continue
		}
		if !enabled || p.Enabled {
			return true
		}
	}
	return false
}

// ToggleEngine enables or disables one engine for the drive train. Broken
// engines cannot be enabled.
func (v *Vehicle) ToggleEngine(e int, on bool) bool {
	p := v.Part(e)
	if p == nil || p.Removed || !p.IsEngine() {
		return false
	}
	if on && p.IsBroken() {
		return false
	}
	p.Enabled = on
	return true
}

// StartEngine attempts to start one engine: it must be intact and fueled,
// and a worn engine may refuse with a backfire. Returns whether the engine
// caught.
func (v *Vehicle) StartEngine(e int) bool {
	p := v.Part(e)
	if p == nil || p.Removed || !p.IsEngine() || p.IsBroken() {
		return false
	}
	if !v.engineFueled(e) {
		v.env.Log.Debug().Str("vehicle", v.Name).Str("engine", p.Name()).
			Msg("engine out of fuel")
		return false
	}
	if p.info.FuelType == parttype.FuelMuscle {
		p.Enabled = true
		return true
	}
	health := p.Base.HealthFraction()
	if health < 1.0 && v.env.Rand.Float64() > health {
		v.backfire(e)
		return false
	}
	p.Enabled = true
	v.env.Log.Debug().Str("vehicle", v.Name).Str("engine", p.Name()).
		Msg("engine started")
	return true
}

// StartEngines starts every installed engine and flips the master switch if
// at least one caught.
func (v *Vehicle) StartEngines() bool {
	any := false
	for _, e := range v.engines {
		if v.StartEngine(e) {
			any = true
		}
	}
	v.EngineOn = any
	return any
}

// StopEngines kills the drive train.
func (v *Vehicle) StopEngines() {
	v.EngineOn = false
	for _, e := range v.engines {
		if !v.parts[e].Removed {
			v.parts[e].Enabled = false
		}
	}
}

// backfire is the loud bang of a worn engine refusing to start.
func (v *Vehicle) backfire(e int) {
	v.env.Events.Push(WorldEvent{
		Kind:   EventNoise,
		Pos:    v.GlobalPartPos(e),
		Amount: 40,
	})
	v.env.Log.Debug().Str("vehicle", v.Name).Str("engine", v.parts[e].Name()).
		Msg("engine backfired")
}

// TotalPower sums effective output of enabled engines minus the alternator
// load they carry.
func (v *Vehicle) TotalPower() int {
	total := 0
	for _, e := range v.engines {
		p := &v.parts[e]
		if !p.Removed && p.Enabled {
			total += p.Power(true)
		}
	}
	for _, a := range v.alternators {
		p := &v.parts[a]
		if !p.Removed && !p.IsBroken() {
			total -= p.info.Power
		}
	}
	return total
}
