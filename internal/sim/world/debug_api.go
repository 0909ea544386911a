package world

// Debug seams for tests and admin tooling. They mutate state directly
// and are NOT safe to call concurrently with Run(). Prefer using them
// only in tests that drive the world via StepOnce(), from a single
// goroutine.

func (w *World) DebugSpawnUnit(unitType string, team int, pos Vec2) string {
	u := w.spawnUnit(unitType, team, pos)
	if u == nil {
		return ""
	}
	return u.ID
}

func (w *World) DebugSpawnBuilding(buildingType string, team int, pos Vec2) string {
	stats, ok := w.cfg.Buildings[buildingType]
	if !ok {
		return ""
	}
	b := &Building{
		Entity: Entity{ID: w.newBuildingID(), Team: team, Pos: pos, Size: stats.Size},
		Type:   buildingType,
		Stats:  stats,
		Health: stats.Health,
	}
	w.buildings[b.ID] = b
	return b.ID
}

// DebugSpawnResource overrides the configured slot count so scenarios
// can force slot contention.
func (w *World) DebugSpawnResource(pos Vec2, amount, slots int) string {
	if slots <= 0 {
		slots = w.cfg.Resource.Slots
	}
	return w.addResource(pos, amount, slots).ID
}

func (w *World) DebugSetStockpile(team, amount int) {
	w.stockpiles[team] = amount
}

func (w *World) DebugSetPos(id string, pos Vec2) bool {
	if u := w.units[id]; u != nil {
		u.Pos = pos
		u.Vel = Vec2{}
		return true
	}
	return false
}

func (w *World) DebugSetHealth(id string, hp float64) bool {
	if u := w.units[id]; u != nil {
		u.Health = hp
		return true
	}
	if b := w.buildings[id]; b != nil {
		b.Health = hp
		return true
	}
	return false
}

// DebugArmGameOver enables the command-center loss condition on a
// hand-built world, as SetupSkirmish does for real matches.
func (w *World) DebugArmGameOver() { w.competitive = true }

// DebugStateDigest returns the current world digest for the given tick
// label. Intended for black-box determinism tests in sibling packages.
func (w *World) DebugStateDigest(nowTick uint64) string {
	return w.stateDigest(nowTick)
}
