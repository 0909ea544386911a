package world

// SetupSkirmish lays out the standard two-base map: one command
// center, a barracks, four workers and five raiders per team, and a
// mineral line behind each base. Offsets are fixed so the layout is
// identical run to run, mirrored for team 1. Arms game-over checks.
func (w *World) SetupSkirmish() {
	workerOffsets := []Vec2{{-50, -50}, {50, -50}, {-50, 50}, {50, 50}}
	raiderOffsets := []Vec2{{80, 0}, {110, -30}, {110, 30}, {140, -15}, {140, 15}}
	mineralOffsets := []Vec2{{-150, -100}, {-180, -50}, {-200, 0}, {-180, 50}, {-150, 100}}

	for team := 0; team < 2; team++ {
		mirror := 1.0
		base := Vec2{w.cfg.WorldW * 0.2, w.cfg.WorldH * 0.5}
		if team == 1 {
			mirror = -1.0
			base = Vec2{w.cfg.WorldW * 0.8, w.cfg.WorldH * 0.5}
		}
		flip := func(v Vec2) Vec2 { return Vec2{v[0] * mirror, v[1]} }

		ccStats := w.cfg.Buildings[BuildingCommandCenter]
		cc := &Building{
			Entity: Entity{ID: w.newBuildingID(), Team: team, Pos: base, Size: ccStats.Size},
			Type:   BuildingCommandCenter,
			Stats:  ccStats,
			Health: ccStats.Health,
		}
		w.buildings[cc.ID] = cc

		brStats := w.cfg.Buildings[BuildingBarracks]
		brPos := base.Add(flip(Vec2{150, 0}))
		br := &Building{
			Entity: Entity{ID: w.newBuildingID(), Team: team, Pos: brPos, Size: brStats.Size},
			Type:   BuildingBarracks,
			Stats:  brStats,
			Health: brStats.Health,
		}
		w.buildings[br.ID] = br

		for _, off := range workerOffsets {
			w.spawnUnit(UnitWorker, team, base.Add(flip(off)))
		}
		for _, off := range raiderOffsets {
			w.spawnUnit(UnitRaider, team, brPos.Add(flip(off)))
		}
		for _, off := range mineralOffsets {
			w.addResource(base.Add(flip(off)), w.cfg.Resource.Amount, w.cfg.Resource.Slots)
		}
	}
	w.competitive = true
}

func (w *World) addResource(pos Vec2, amount, slots int) *Resource {
	r := &Resource{
		Entity: Entity{ID: w.newResourceID(), Team: NoTeam, Pos: pos, Size: w.cfg.Resource.Size},
		Type:   ResourceTypeMineral,
		Amount: amount,
	}
	offsets := slotOffsets(slots, r.Size)
	r.Slots = make([]Slot, slots)
	for i := range r.Slots {
		r.Slots[i].Offset = offsets[i]
	}
	w.resources[r.ID] = r
	return r
}
