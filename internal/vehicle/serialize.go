package vehicle

import (
	"fmt"
	"sort"

	"github.com/tilesim/vehicle/internal/item"
	"github.com/tilesim/vehicle/internal/parttype"
	"github.com/tilesim/vehicle/pkg/core"
)

// ToRecord captures the vehicle's full persistent state. Derived data is
// left out on purpose; FromRecord rebuilds it.
func (v *Vehicle) ToRecord() core.VehicleRecord {
	rec := core.VehicleRecord{
		ID:               v.ID,
		Name:             v.Name,
		Type:             v.Type,
		PosX:             v.PosX,
		PosY:             v.PosY,
		SmX:              v.SmX,
		SmY:              v.SmY,
		SmZ:              v.SmZ,
		FaceDir:          v.faceDir,
		MoveDir:          v.moveDir,
		TurnDir:          v.turnDir,
		Velocity:         v.Velocity,
		CruiseVelocity:   v.CruiseVelocity,
		VerticalVelocity: v.VerticalVelocity,
		LastTurn:         v.LastTurn,
		OfTurnCarry:      v.OfTurnCarry,
		EngineOn:         v.EngineOn,
		TrackingOn:       v.TrackingOn,
		Locked:           v.Locked,
		AlarmOn:          v.AlarmOn,
		CameraOn:         v.CameraOn,
		Skidding:         v.Skidding,
	}
	for i := range v.parts {
		rec.Parts = append(rec.Parts, v.parts[i].ToRecord())
	}
	for pt, text := range v.labels {
		rec.Labels = append(rec.Labels, core.LabelRecord{X: pt.X, Y: pt.Y, Text: text})
	}
	sort.Slice(rec.Labels, func(a, b int) bool {
		if rec.Labels[a].X != rec.Labels[b].X {
			return rec.Labels[a].X < rec.Labels[b].X
		}
		return rec.Labels[a].Y < rec.Labels[b].Y
	})
	for tag := range v.tags {
		rec.Tags = append(rec.Tags, tag)
	}
	sort.Strings(rec.Tags)
	return rec
}

// FromRecord rebuilds a vehicle from persisted state. Parts referencing
// unknown types fail the whole load; every derived index and cache is
// recomputed rather than trusted from disk.
func FromRecord(env *Env, reg *parttype.Registry, rec core.VehicleRecord) (*Vehicle, error) {
	v := New(env, reg, rec.Name)
	v.ID = rec.ID
	v.Type = rec.Type
	v.PosX, v.PosY = rec.PosX, rec.PosY
	v.SmX, v.SmY, v.SmZ = rec.SmX, rec.SmY, rec.SmZ
	v.faceDir = normalizeDir(rec.FaceDir)
	v.moveDir = normalizeDir(rec.MoveDir)
	v.turnDir = normalizeDir(rec.TurnDir)
	v.Velocity = rec.Velocity
	v.CruiseVelocity = rec.CruiseVelocity
	v.VerticalVelocity = rec.VerticalVelocity
	v.LastTurn = rec.LastTurn
	v.OfTurnCarry = rec.OfTurnCarry
	v.EngineOn = rec.EngineOn
	v.TrackingOn = rec.TrackingOn
	v.Locked = rec.Locked
	v.AlarmOn = rec.AlarmOn
	v.CameraOn = rec.CameraOn
	v.Skidding = rec.Skidding

	for _, pr := range rec.Parts {
		pt, ok := reg.Find(pr.Type)
		if !ok {
			return nil, fmt.Errorf("vehicle %q part %q: %w", rec.ID, pr.Type, ErrUnknownPartType)
		}
		template := item.New(pr.Type, pt.ItemMass, pt.ItemVolume, pt.Durability)
		p := newPart(pt, pr.Mount, item.FromRecord(pr.Base, template))
		p.ammoCurrent = pr.AmmoCurrent
		p.AmmoPref = pr.AmmoPref
		p.Enabled = pr.Enabled
		p.Open = pr.Open
		p.Removed = pr.Removed
		p.Blood = pr.Blood
		p.Direction = pr.Direction
		p.CrewID = pr.CrewID
		p.Target = pr.Target
		p.TargetOrigin = pr.TargetOrigin
		if pr.Passenger {
			p.SetFlag(PassengerFlag)
		}
		for _, ir := range pr.Items {
			p.items = append(p.items, item.FromRecord(ir, item.Item{
				Type: ir.Type, Mass: 1000, Volume: 250, MaxDamage: 4,
			}))
		}
		if p.Removed {
			v.removedCount++
		}
		v.parts = append(v.parts, p)
	}
	for _, lr := range rec.Labels {
		v.labels[core.Point{X: lr.X, Y: lr.Y}] = lr.Text
	}
	for _, tag := range rec.Tags {
		v.tags[tag] = struct{}{}
	}
	v.InvalidateMass()
	v.refresh()
	return v, nil
}
