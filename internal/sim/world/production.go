package world

// spawnRing is the fixed cycle of directions fresh units step out to.
// Cycling a fixed ring keeps spawn placement free of randomness.
var spawnRing = []Vec2{
	{1, 0}, {0.7071, 0.7071}, {0, 1}, {-0.7071, 0.7071},
	{-1, 0}, {-0.7071, -0.7071}, {0, -1}, {0.7071, -0.7071},
}

// updateBuildings advances production queues and turret fire, in ID
// order. Queue items were already paid for at enqueue.
func (w *World) updateBuildings(dt float64) {
	for _, b := range w.sortedBuildings() {
		if !b.Alive() {
			continue
		}
		if len(b.Queue) > 0 {
			b.Queue[0].Remaining -= dt
			if b.Queue[0].Remaining <= 0 {
				item := b.Queue[0]
				b.Queue = b.Queue[1:]
				w.spawnProduced(b, item.UnitType)
			}
		}
		if b.Stats.Damage > 0 {
			w.updateTurret(b, dt)
		}
	}
}

func (w *World) spawnProduced(b *Building, unitType string) {
	stats, ok := w.cfg.Units[unitType]
	if !ok {
		return
	}
	dir := spawnRing[w.spawnCursor%len(spawnRing)]
	w.spawnCursor++
	d := b.Size/2 + stats.Size/2 + 5
	pos := b.Pos.Add(dir.Mul(d))

	u := w.spawnUnit(unitType, b.Team, pos)
	if u == nil {
		return
	}
	if b.Rally != nil {
		u.SetBehavior(w, &MoveBehavior{Target: *b.Rally})
	}
	w.addEvent(Eventf("UNIT_SPAWNED", "id", u.ID, "entity_type", unitType, "team", b.Team, "building", b.ID))
}

// spawnUnit creates a unit from its stat table. Shared by production,
// scenario setup and the debug seams.
func (w *World) spawnUnit(unitType string, team int, pos Vec2) *Unit {
	stats, ok := w.cfg.Units[unitType]
	if !ok {
		return nil
	}
	u := &Unit{
		Entity: Entity{ID: w.newUnitID(), Team: team, Pos: pos, Size: stats.Size},
		Type:   unitType,
		Stats:  stats,
		Health: stats.Health,
	}
	u.behavior = &IdleBehavior{}
	w.units[u.ID] = u
	return u
}

// updateTurret acquires the nearest enemy in range and fires on
// cooldown. The target is dropped the moment it leaves range or dies.
func (w *World) updateTurret(b *Building, dt float64) {
	if b.Cooldown > 0 {
		b.Cooldown -= dt
	}
	if b.TargetID != "" {
		t, ok := w.lookupTarget(b.TargetID)
		if !ok || t.team == b.Team || edgeDist(b.Pos, t.pos, t.size) > b.Stats.Range {
			b.TargetID = ""
		}
	}
	if b.TargetID == "" {
		b.TargetID = w.nearestEnemyID(b.Team, b.Pos, b.Stats.Range)
	}
	if b.TargetID == "" || b.Cooldown > 0 {
		return
	}
	w.damageTarget(b.TargetID, b.Stats.Damage)
	b.Cooldown = b.Stats.Cooldown
}
