package vehicle

import (
	"github.com/tilesim/vehicle/internal/parttype"
)

// epowerToCharge converts watts of electrical balance into battery charge
// per turn.
const epowerToCharge = 10

// GainMoves begins the vehicle's turn: it budgets movement from velocity,
// runs environmental checks, settles the electrical and fuel books, ticks
// the alarm and leaks damaged containers. The order is fixed; later stages
// observe the effects of earlier ones.
func (v *Vehicle) GainMoves() {
	if v.Velocity != 0 || v.Falling {
		v.OfTurn = 1.0 + v.OfTurnCarry
		v.checkEnvEffects = true
	} else {
		v.OfTurn = 0
	}
	v.OfTurnCarry = 0

	if v.checkEnvEffects {
		v.checkFalling()
		v.checkEnvEffects = false
	}

	v.idle()

	if v.AlarmOn {
		v.env.Events.Push(WorldEvent{Kind: EventNoise, Pos: v.GlobalPos(), Amount: 45})
		if v.env.Rand.Intn(8) == 0 {
			v.AlarmOn = false
		}
	}

	v.slowLeak()

	v.env.Metrics.countTurn()
}

// checkFalling compares supported tiles against the hull and starts or ends
// a fall. Landing after a fall slams the whole frame.
func (v *Vehicle) checkFalling() {
	pts := v.OccupiedPoints()
	if len(pts) == 0 {
		return
	}
	supported := 0
	for _, p := range pts {
		if v.env.Terrain.HasFloor(p) {
			supported++
		}
	}
	if supported*2 < len(pts) {
		v.Falling = true
		v.VerticalVelocity -= 980
		return
	}
	if v.Falling {
		v.Falling = false
		impact := -v.VerticalVelocity / 100
		v.VerticalVelocity = 0
		if impact > 0 {
			v.env.Log.Info().Str("vehicle", v.Name).Int("impact", impact).
				Msg("vehicle crashed down")
			v.DamageAll(impact/2, impact, DamageBash, v.CenterOfMass(false))
			v.env.Events.Push(WorldEvent{Kind: EventNoise, Pos: v.GlobalPos(), Amount: impact})
		}
	}
}

// idle settles one turn of fuel and electrical accounting: stall engines
// that ran dry, burn idle fuel, then balance generation against draw,
// spilling surplus into batteries and covering deficit from them (and the
// reactors behind them). An uncoverable deficit shuts the consumers down.
func (v *Vehicle) idle() {
	if v.EngineOn {
		e := v.CurrentEngine()
		if e < 0 {
			v.EngineOn = false
			v.env.Log.Info().Str("vehicle", v.Name).Msg("engine stalled")
		} else if v.Velocity == 0 {
			v.consumeFuel(e, 0.1)
		}
	}

	epower := v.NetEPower()
	switch {
	case epower > 0:
		if amount := epower / epowerToCharge; amount > 0 {
			v.ChargeBattery(amount, true)
		}
	case epower < 0:
		amount := -epower / epowerToCharge
		if amount == 0 {
			amount = 1
		}
		if unmet := v.Discharge(amount, true, true); unmet > 0 {
			v.shutdownConsumers()
		}
	}
}

// shutdownConsumers disables every electrical drain when the network cannot
// cover it.
func (v *Vehicle) shutdownConsumers() {
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || !p.Enabled {
			continue
		}
		if p.info.EPower < 0 {
			p.Enabled = false
		}
	}
	v.CameraOn = false
	v.env.Log.Warn().Str("vehicle", v.Name).Msg("power exhausted, systems down")
}

// slowLeak bleeds contents out of badly damaged tanks and batteries. Liquids
// reach the ground under the part; battery charge just dissipates.
func (v *Vehicle) slowLeak() {
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || p.Base.Charges == 0 {
			continue
		}
		if !p.IsTank() && !p.IsBattery() {
			continue
		}
		if p.HP() > p.info.Durability/2 {
			continue
		}
		qty := p.Base.Charges / 50
		if qty == 0 {
			qty = 1
		}
		typ, drained := p.DrainContents(qty)
		if drained == 0 {
			continue
		}
		if p.IsTank() {
			v.env.Events.Push(WorldEvent{
				Kind:   EventFuelSpill,
				Pos:    v.GlobalPartPos(i),
				Fuel:   typ,
				Amount: drained,
			})
		}
		v.InvalidateMass()
	}
}

// UpdateTime applies slow ambient effects: solar charging scaled by
// sunlight in [0, 1], and funnels catching rain into water tanks.
func (v *Vehicle) UpdateTime(sunlight float64, raining bool) {
	if sunlight > 0 {
		watts := 0
		for _, i := range v.solarPanels {
			p := &v.parts[i]
			if !p.Removed && !p.IsBroken() {
				watts += p.info.EPower
			}
		}
		if amount := int(float64(watts) * sunlight / epowerToCharge); amount > 0 {
			v.ChargeBattery(amount, true)
		}
	}
	if raining {
		caught := 0
		for _, i := range v.funnels {
			p := &v.parts[i]
			if !p.Removed && !p.IsBroken() {
				caught += 10
			}
		}
		stored := 0
		for i := range v.parts {
			if caught <= 0 {
				break
			}
			p := &v.parts[i]
			if p.Removed || !p.IsTank() {
				continue
			}
			got := p.FillWith(parttype.FuelWater, caught)
			caught -= got
			stored += got
		}
		if stored > 0 {
			v.InvalidateMass()
		}
	}
}
