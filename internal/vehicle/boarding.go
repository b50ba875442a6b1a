package vehicle

import (
	"github.com/tilesim/vehicle/internal/parttype"
)

// BoardPart seats a creature on a boardable part. The creature itself is
// kept by the world's crew registry; the part only stores the identifier.
func (v *Vehicle) BoardPart(i, crewID int) bool {
	p := v.Part(i)
	if p == nil || p.Removed || p.IsBroken() {
		return false
	}
	if !p.info.HasFlag(parttype.FlagBoardable) {
		return false
	}
	if p.HasFlag(PassengerFlag) {
		return false
	}
	p.SetFlag(PassengerFlag)
	p.CrewID = crewID
	v.InvalidateMass()
	return true
}

// UnboardPart removes the passenger from part i.
func (v *Vehicle) UnboardPart(i int) {
	p := v.Part(i)
	if p == nil {
		return
	}
	p.RemoveFlag(PassengerFlag)
	p.CrewID = noCrew
	v.InvalidateMass()
}

// Passenger resolves the creature seated on part i through the world.
func (v *Vehicle) Passenger(i int) (Creature, bool) {
	p := v.Part(i)
	if p == nil || !p.HasFlag(PassengerFlag) || p.CrewID == noCrew {
		return nil, false
	}
	return v.env.Resolver.Crew(p.CrewID)
}

// SecurityTriggered runs the anti-theft check when an unauthorized actor
// takes the controls of a locked vehicle.
func (v *Vehicle) SecurityTriggered() bool {
	if !v.Locked {
		return false
	}
	for _, i := range v.speciality {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() {
			continue
		}
		if p.info.HasFlag(parttype.FlagSecurity) || p.info.HasFlag(parttype.FlagAlarm) {
			v.AlarmOn = true
			v.env.Events.Push(WorldEvent{Kind: EventNoise, Pos: v.GlobalPos(), Amount: 45})
			v.env.Log.Info().Str("vehicle", v.Name).Msg("vehicle alarm triggered")
			return true
		}
	}
	return false
}
