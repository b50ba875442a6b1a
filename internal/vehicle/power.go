package vehicle

import (
	"sort"

	"github.com/dominikbraun/graph"

	"github.com/tilesim/vehicle/internal/parttype"
)

// vehicleHash keys traversal vertices by vehicle identity.
func vehicleHash(v *Vehicle) string { return v.ID }

// connectedNeighbors resolves the vehicles reachable over one live
// power-transfer part. Targets are weak references: a cable whose far end no
// longer resolves simply contributes nothing.
func (v *Vehicle) connectedNeighbors() []*Vehicle {
	var out []*Vehicle
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() || !p.info.HasFlag(parttype.FlagPowerTransfer) {
			continue
		}
		n, _, ok := v.env.Resolver.VehicleAt(p.TargetOrigin)
		if !ok || n == nil || n.ID == v.ID {
			continue
		}
		out = append(out, n)
	}
	return out
}

// traverseVehicleGraph walks the component of vehicles connected by
// power-transfer parts, starting from v (which counts as already visited).
// The visitor is invoked once per other vehicle with the running amount and
// the per-hop loss percentage; its return value becomes the running amount
// for the next hop, and returning zero halts traversal immediately. The
// final running amount is returned. The visited set makes cycles safe, and
// dormant neighbors are pulled in lazily through the resolver.
func (v *Vehicle) traverseVehicleGraph(amount int, visitor func(n *Vehicle, amount, loss int) int) int {
	neighbors := v.connectedNeighbors()
	if len(neighbors) == 0 || amount == 0 {
		return amount
	}

	g := graph.New(vehicleHash)
	_ = g.AddVertex(v)
	pending := []*Vehicle{v}
	seen := map[string]*Vehicle{v.ID: v}
	for len(pending) > 0 {
		cur := pending[0]
		pending = pending[1:]
		for _, n := range cur.connectedNeighbors() {
			if _, dup := seen[n.ID]; !dup {
				seen[n.ID] = n
				_ = g.AddVertex(n)
				pending = append(pending, n)
			}
			// Duplicate edges (cycles) are rejected by the graph; that is
			// exactly the visited-set behavior traversal needs.
			_ = g.AddEdge(cur.ID, n.ID)
		}
	}

	running := amount
	// Loss is clamped below 100 so grossing a request up never divides by
	// zero.
	loss := v.env.Tunables.TransferLossPercent
	if loss < 0 {
		loss = 0
	} else if loss > 99 {
		loss = 99
	}
	_ = graph.BFS(g, v.ID, func(id string) bool {
		if id == v.ID {
			return false
		}
		running = visitor(seen[id], running, loss)
		return running == 0
	})
	return running
}

// fuelLeftLocal sums matching tank/battery/magazine contents of this vehicle
// only. With reactor set, battery queries also count charge obtainable by
// converting reactor fuel.
func (v *Vehicle) fuelLeftLocal(ftype string, reactor bool) int {
	total := 0
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() {
			continue
		}
		if p.AmmoCurrent() == ftype && !p.IsReactor() {
			total += p.AmmoRemaining()
		}
	}
	if ftype == parttype.FuelMuscle {
		// Muscle power exists only while someone is aboard a pedal/crank
		// part's tile.
		for _, e := range v.engines {
			p := &v.parts[e]
			if p.Removed || p.IsBroken() || !p.info.HasFlag(parttype.FlagMuscle) {
				continue
			}
			if b := v.PartWithFeatureAt(p.Mount, parttype.FlagBoardable, true); b >= 0 &&
				v.parts[b].HasFlag(PassengerFlag) {
				pool := musclePoolPerTurn
				if cr, ok := v.env.Resolver.Crew(v.parts[b].CrewID); ok && cr.Alive() {
					pool = cr.Strength()
				}
				total += pool
			}
		}
	}
	if reactor && ftype == parttype.FuelBattery {
		for _, r := range v.reactors {
			p := &v.parts[r]
			if p.Removed || p.IsBroken() || !p.Enabled {
				continue
			}
			f, ok := parttype.FuelByID(p.info.FuelType)
			if ok && f.ReactorYield > 0 {
				total += p.AmmoRemaining() * f.ReactorYield
			}
		}
	}
	return total
}

// musclePoolPerTurn is the charge a rider of unresolved strength can put
// through pedals in one turn.
const musclePoolPerTurn = 10

// FuelLeft reports how much of a fuel type is available. With recurse set,
// battery queries extend across power-linked vehicles; with reactor set they
// include reactor-convertible capacity.
func (v *Vehicle) FuelLeft(ftype string, recurse, reactor bool) int {
	fl := v.fuelLeftLocal(ftype, reactor)
	if recurse && ftype == parttype.FuelBattery {
		// The walk halts on a zero running amount, so the sum rides one
		// above its true value for the duration.
		fl = v.traverseVehicleGraph(fl+1, func(n *Vehicle, amount, _ int) int {
			return amount + n.fuelLeftLocal(ftype, reactor)
		}) - 1
	}
	return fl
}

// FuelCapacity is the total charges of the given type the vehicle could
// hold.
func (v *Vehicle) FuelCapacity(ftype string) int {
	total := 0
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() {
			continue
		}
		if p.ammoCompatible(ftype) || p.AmmoCurrent() == ftype {
			total += p.info.Capacity
		}
	}
	return total
}

// FuelsLeft sums every fuel present in tanks and batteries. The aggregate is
// derived; the per-part ledgers stay authoritative. Empty tanks contribute
// nothing, so every reported value is positive.
func (v *Vehicle) FuelsLeft() map[string]int {
	out := make(map[string]int)
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed || p.IsBroken() || p.IsReactor() {
			continue
		}
		if ft := p.AmmoCurrent(); ft != "" && (p.IsTank() || p.IsBattery()) {
			out[ft] += p.AmmoRemaining()
		}
	}
	return out
}

// PrintableFuelTypes lists the fuels present, sorted for stable display.
func (v *Vehicle) PrintableFuelTypes() []string {
	seen := v.FuelsLeft()
	out := make([]string, 0, len(seen))
	for ft := range seen {
		out = append(out, ft)
	}
	sort.Strings(out)
	return out
}

// Drain removes up to amount charges of a fuel type from this vehicle's
// tanks and batteries, returning the amount actually drained.
func (v *Vehicle) Drain(ftype string, amount int) int {
	if ftype == parttype.FuelBattery {
		wanted := amount
		unmet := v.Discharge(amount, false, false)
		return wanted - unmet
	}
	drained := 0
	for i := range v.parts {
		if drained >= amount {
			break
		}
		p := &v.parts[i]
		if p.Removed || p.AmmoCurrent() != ftype || p.IsReactor() {
			continue
		}
		_, got := p.DrainContents(amount - drained)
		drained += got
	}
	if drained > 0 {
		v.InvalidateMass()
	}
	return drained
}

// ChargeBattery stores amount charge into local batteries first and then, if
// recurse is set, into power-linked vehicles. Returns the charge left over.
func (v *Vehicle) ChargeBattery(amount int, recurse bool) int {
	for i := range v.parts {
		if amount <= 0 {
			break
		}
		p := &v.parts[i]
		if p.Removed || !p.IsBattery() {
			continue
		}
		amount -= p.FillWith(parttype.FuelBattery, amount)
	}
	if recurse && amount > 0 {
		amount = v.traverseVehicleGraph(amount, func(n *Vehicle, amt, loss int) int {
			deliverable := amt - amt*loss/100
			leftover := n.ChargeBattery(deliverable, false)
			// Charge lost on the wire is gone either way.
			return leftover
		})
	}
	v.InvalidateMass()
	return amount
}

// Discharge obtains electrical power: local batteries first, then active
// reactors when reactor is set, then power-linked vehicles when recurse is
// set. Returns the unmet remainder, 0 on full success.
func (v *Vehicle) Discharge(amount int, recurse, reactor bool) int {
	for i := range v.parts {
		if amount <= 0 {
			break
		}
		p := &v.parts[i]
		if p.Removed || !p.IsBattery() {
			continue
		}
		if p.AmmoCurrent() == parttype.FuelBattery {
			amount -= p.AmmoConsume(amount)
		}
	}
	if reactor && amount > 0 {
		amount = v.engageReactors(amount)
	}
	if recurse && amount > 0 {
		amount = v.traverseVehicleGraph(amount, func(n *Vehicle, remaining, loss int) int {
			// Gross the request up so line loss lands on the supplier side.
			request := (remaining*100 + (100 - loss - 1)) / (100 - loss)
			unmet := n.Discharge(request, false, reactor)
			supplied := (request - unmet) * (100 - loss) / 100
			if supplied >= remaining {
				return 0
			}
			return remaining - supplied
		})
	}
	v.InvalidateMass()
	return amount
}

// engageReactors converts reactor fuel into charge until the demand is met
// or fuel runs out; surplus from the last converted unit tops up batteries.
func (v *Vehicle) engageReactors(amount int) int {
	for _, r := range v.reactors {
		if amount <= 0 {
			break
		}
		p := &v.parts[r]
		if p.Removed || p.IsBroken() || !p.Enabled {
			continue
		}
		f, ok := parttype.FuelByID(p.info.FuelType)
		if !ok || f.ReactorYield <= 0 {
			continue
		}
		need := (amount + f.ReactorYield - 1) / f.ReactorYield
		consumed := p.AmmoConsume(need)
		produced := consumed * f.ReactorYield
		if produced > amount {
			v.ChargeBattery(produced-amount, false)
			produced = amount
		}
		amount -= produced
	}
	return amount
}

// PowerUsage is the watts drawn by all enabled electrical consumers.
func (v *Vehicle) PowerUsage() int {
	usage := 0
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		if e := p.EPower(); e < 0 {
			usage -= e
		}
	}
	return usage
}

// NetEPower is the electrical balance in watts across generators and
// enabled consumers.
func (v *Vehicle) NetEPower() int {
	net := 0
	for i := range v.parts {
		p := &v.parts[i]
		if p.Removed {
			continue
		}
		e := p.EPower()
		if p.IsAlternator() && !v.EngineOn {
			continue
		}
		net += e
	}
	return net
}
