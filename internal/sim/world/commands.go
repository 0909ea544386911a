package world

import "vectorrts.dev/internal/protocol"

// applyCommand mutates behaviors and queues at the tick boundary.
// Invalid targets and empty selections are silent no-ops; anything
// that costs resources is validated here and rejected with an event,
// leaving state untouched.
func (w *World) applyCommand(p *Player, cmd protocol.CommandReq) {
	switch cmd.Kind {
	case protocol.CmdMove:
		if cmd.Point == nil {
			return
		}
		for _, u := range w.ownedUnits(p, cmd.UnitIDs) {
			u.SetBehavior(w, &MoveBehavior{Target: Vec2{cmd.Point[0], cmd.Point[1]}})
		}

	case protocol.CmdGather:
		r := w.resources[cmd.TargetID]
		if r == nil || r.Amount <= 0 {
			w.anomalies.BadTargets++
			return
		}
		for _, u := range w.ownedUnits(p, cmd.UnitIDs) {
			if u.Stats.CarryCap <= 0 {
				continue // not a harvester
			}
			u.SetBehavior(w, NewGatherBehavior(r.ID))
		}

	case protocol.CmdAttack:
		t, ok := w.lookupTarget(cmd.TargetID)
		if !ok || t.team == p.Team {
			w.anomalies.BadTargets++
			return
		}
		for _, u := range w.ownedUnits(p, cmd.UnitIDs) {
			u.SetBehavior(w, &AttackBehavior{TargetID: cmd.TargetID})
		}

	case protocol.CmdHoldPosition:
		for _, u := range w.ownedUnits(p, cmd.UnitIDs) {
			u.Vel = Vec2{}
			u.SetBehavior(w, &HoldPositionBehavior{})
		}

	case protocol.CmdAttackMove:
		if cmd.Point == nil {
			return
		}
		for _, u := range w.ownedUnits(p, cmd.UnitIDs) {
			u.SetBehavior(w, &AttackMoveBehavior{Target: Vec2{cmd.Point[0], cmd.Point[1]}})
		}

	case protocol.CmdPatrol:
		if cmd.Point == nil {
			return
		}
		pt := Vec2{cmd.Point[0], cmd.Point[1]}
		for _, u := range w.ownedUnits(p, cmd.UnitIDs) {
			// With one point the unit patrols from where it stands.
			a, b := u.Pos, pt
			if cmd.PointB != nil {
				a, b = pt, Vec2{cmd.PointB[0], cmd.PointB[1]}
			}
			u.SetBehavior(w, &PatrolBehavior{PointA: a, PointB: b, towardB: true})
		}

	case protocol.CmdStop:
		for _, u := range w.ownedUnits(p, cmd.UnitIDs) {
			u.Vel = Vec2{}
			u.SetBehavior(w, &IdleBehavior{})
		}

	case protocol.CmdSetRally:
		b := w.buildings[cmd.BuildingID]
		if b == nil || b.Team != p.Team || cmd.Point == nil {
			w.anomalies.BadTargets++
			return
		}
		rally := Vec2{cmd.Point[0], cmd.Point[1]}
		b.Rally = &rally

	case protocol.CmdBuild:
		w.applyBuild(p, cmd)

	case protocol.CmdProduce:
		w.applyProduce(p, cmd)

	case protocol.CmdSelect:
		for _, u := range w.ownedUnits(p, cmd.UnitIDs) {
			u.Selected = cmd.Selected
		}
		if b := w.buildings[cmd.BuildingID]; b != nil && b.Team == p.Team {
			b.Selected = cmd.Selected
		}

	default:
		w.reject(cmd, protocol.ErrBadRequest)
	}
}

// ownedUnits filters a selection down to the player's living units,
// preserving request order.
func (w *World) ownedUnits(p *Player, ids []string) []*Unit {
	out := make([]*Unit, 0, len(ids))
	for _, id := range ids {
		u := w.units[id]
		if u == nil || !u.Alive() || u.Team != p.Team {
			continue
		}
		out = append(out, u)
	}
	return out
}

func (w *World) reject(cmd protocol.CommandReq, code string) {
	w.addEvent(Eventf("COMMAND_REJECTED", "id", cmd.ID, "kind", cmd.Kind, "code", code))
}

func (w *World) applyBuild(p *Player, cmd protocol.CommandReq) {
	stats, ok := w.cfg.Buildings[cmd.BuildingType]
	if !ok || cmd.BuildingType == BuildingCommandCenter || cmd.Point == nil {
		w.reject(cmd, protocol.ErrBadRequest)
		return
	}
	if w.stockpiles[p.Team] < stats.Cost {
		w.reject(cmd, protocol.ErrNoResource)
		return
	}
	pos := Vec2{cmd.Point[0], cmd.Point[1]}
	probe := Entity{Pos: pos, Size: stats.Size}
	for _, other := range w.sortedBuildings() {
		if intersectAABB(&probe, &other.Entity) {
			w.reject(cmd, protocol.ErrBlocked)
			return
		}
	}
	for _, r := range w.sortedResources() {
		if intersectAABB(&probe, &r.Entity) {
			w.reject(cmd, protocol.ErrBlocked)
			return
		}
	}
	w.stockpiles[p.Team] -= stats.Cost
	b := &Building{
		Entity: Entity{ID: w.newBuildingID(), Team: p.Team, Pos: pos, Size: stats.Size},
		Type:   cmd.BuildingType,
		Stats:  stats,
		Health: stats.Health,
	}
	w.buildings[b.ID] = b
	w.addEvent(Eventf("BUILDING_PLACED", "id", b.ID, "entity_type", b.Type, "team", b.Team))
}

// producerFor maps a unit type to the building type that trains it.
func producerFor(unitType string) string {
	switch unitType {
	case UnitWorker:
		return BuildingCommandCenter
	case UnitRaider, UnitArcher:
		return BuildingBarracks
	}
	return ""
}

func (w *World) applyProduce(p *Player, cmd protocol.CommandReq) {
	b := w.buildings[cmd.BuildingID]
	if b == nil || b.Team != p.Team {
		w.reject(cmd, protocol.ErrInvalidTarget)
		return
	}
	stats, ok := w.cfg.Units[cmd.UnitType]
	if !ok || producerFor(cmd.UnitType) != b.Type {
		w.reject(cmd, protocol.ErrBadRequest)
		return
	}
	// Cost is paid at enqueue; spawning later consumes nothing.
	if w.stockpiles[p.Team] < stats.Cost {
		w.reject(cmd, protocol.ErrNoResource)
		return
	}
	w.stockpiles[p.Team] -= stats.Cost
	b.Queue = append(b.Queue, ProductionItem{UnitType: cmd.UnitType, Remaining: stats.BuildSeconds})
}
