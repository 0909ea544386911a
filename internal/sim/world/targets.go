package world

// targetRef is a resolved weak reference. Behaviors keep only entity
// IDs; each use goes through lookupTarget so a destroyed entity is a
// normal branch, never a dangling pointer.
type targetRef struct {
	pos  Vec2
	size float64
	team int
}

func (w *World) lookupTarget(id string) (targetRef, bool) {
	if u := w.units[id]; u != nil && u.Alive() {
		return targetRef{pos: u.Pos, size: u.Size, team: u.Team}, true
	}
	if b := w.buildings[id]; b != nil && b.Alive() {
		return targetRef{pos: b.Pos, size: b.Size, team: b.Team}, true
	}
	return targetRef{}, false
}

func (w *World) damageTarget(id string, dmg float64) {
	if u := w.units[id]; u != nil && u.Alive() {
		u.Health -= dmg
		return
	}
	if b := w.buildings[id]; b != nil && b.Alive() {
		b.Health -= dmg
	}
}

// nearestEnemyID finds the closest living enemy unit or building whose
// edge is within radius of pos. Ties break on ID so scans stay
// deterministic across runs.
func (w *World) nearestEnemyID(team int, pos Vec2, radius float64) string {
	bestID := ""
	bestD := 0.0
	consider := func(id string, d float64) {
		if d > radius {
			return
		}
		if bestID == "" || d < bestD {
			bestID, bestD = id, d
		}
	}
	for _, u := range w.sortedUnits() {
		if u.Team == team || !u.Alive() {
			continue
		}
		consider(u.ID, edgeDist(pos, u.Pos, u.Size))
	}
	for _, b := range w.sortedBuildings() {
		if b.Team == team || !b.Alive() {
			continue
		}
		consider(b.ID, edgeDist(pos, b.Pos, b.Size))
	}
	return bestID
}

func (w *World) nearestCommandCenter(team int, pos Vec2) *Building {
	var best *Building
	bestD := 0.0
	for _, b := range w.sortedBuildings() {
		if b.Team != team || b.Type != BuildingCommandCenter || !b.Alive() {
			continue
		}
		d := dist(pos, b.Pos)
		if best == nil || d < bestD {
			best, bestD = b, d
		}
	}
	return best
}

func (w *World) nearestLiveResource(pos Vec2) *Resource {
	var best *Resource
	bestD := 0.0
	for _, r := range w.sortedResources() {
		if r.Amount <= 0 {
			continue
		}
		d := dist(pos, r.Pos)
		if best == nil || d < bestD {
			best, bestD = r, d
		}
	}
	return best
}
