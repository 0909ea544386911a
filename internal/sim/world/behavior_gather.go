package world

// Gather phases.
const (
	gatherMovingToResource = "MOVING_TO_RESOURCE"
	gatherHarvesting       = "HARVESTING"
	gatherReturning        = "RETURNING"
	gatherDepositing       = "DEPOSITING"
)

// GatherBehavior runs the harvest loop: walk to a free slot on the
// resource, harvest for a fixed duration, carry the load back to the
// nearest own command center, deposit, repeat until the resource is
// gone. The slot is held only while harvesting.
type GatherBehavior struct {
	ResourceID string

	phase    string
	assigned int // slot index we are walking to
	claimed  int // slot index we hold, -1 when none
	timer    float64
}

func NewGatherBehavior(resourceID string) *GatherBehavior {
	return &GatherBehavior{ResourceID: resourceID, phase: gatherMovingToResource, assigned: -1, claimed: -1}
}

func (b *GatherBehavior) Kind() string { return BehaviorGather }

func (b *GatherBehavior) Phase() string { return b.phase }

func (b *GatherBehavior) Update(w *World, u *Unit, dt float64) {
	switch b.phase {
	case gatherMovingToResource:
		b.updateMoving(w, u, dt)
	case gatherHarvesting:
		b.updateHarvesting(w, u, dt)
	case gatherReturning:
		b.updateReturning(w, u, dt)
	case gatherDepositing:
		b.updateDepositing(w, u)
	default:
		b.phase = gatherMovingToResource
	}
}

func (b *GatherBehavior) updateMoving(w *World, u *Unit, dt float64) {
	r := w.resources[b.ResourceID]
	if r == nil || r.Amount <= 0 {
		b.reseekOrFinish(w, u)
		return
	}
	if b.assigned < 0 || b.assigned >= len(r.Slots) ||
		(r.Slots[b.assigned].OccupiedBy != "" && r.Slots[b.assigned].OccupiedBy != u.ID) {
		b.assigned = r.freeSlot()
		if b.assigned < 0 {
			// All slots busy; wait at the rim.
			w.moveToward(u, r.Pos, dt)
			return
		}
	}
	if w.moveToward(u, r.SlotPos(b.assigned), dt) {
		s := &r.Slots[b.assigned]
		if s.OccupiedBy != "" && s.OccupiedBy != u.ID {
			// Lost the race for this slot; pick another next tick.
			b.assigned = -1
			return
		}
		s.OccupiedBy = u.ID
		b.claimed = b.assigned
		b.phase = gatherHarvesting
		b.timer = 0
	}
}

func (b *GatherBehavior) updateHarvesting(w *World, u *Unit, dt float64) {
	r := w.resources[b.ResourceID]
	if r == nil || r.Amount <= 0 {
		b.releaseSlot(w, u)
		b.reseekOrFinish(w, u)
		return
	}
	b.timer += dt
	if b.timer < w.cfg.Resource.HarvestSeconds {
		return
	}
	take := w.cfg.Resource.HarvestAmount
	if limit := u.Stats.CarryCap; limit > 0 && take > limit-u.Carrying {
		take = limit - u.Carrying
	}
	if take > r.Amount {
		take = r.Amount
	}
	r.Amount -= take
	u.Carrying += take
	if r.Amount <= 0 {
		w.addEvent(Eventf("RESOURCE_DEPLETED", "id", r.ID))
	}
	b.releaseSlot(w, u)
	b.phase = gatherReturning
}

func (b *GatherBehavior) updateReturning(w *World, u *Unit, dt float64) {
	cc := w.nearestCommandCenter(u.Team, u.Pos)
	if cc == nil {
		u.SetBehavior(w, &IdleBehavior{})
		return
	}
	if b.withinDeposit(u, cc) {
		b.phase = gatherDepositing
		return
	}
	w.moveToward(u, cc.Pos, dt)
	if b.withinDeposit(u, cc) {
		b.phase = gatherDepositing
	}
}

// updateDepositing transfers the whole load in a single tick.
func (b *GatherBehavior) updateDepositing(w *World, u *Unit) {
	if u.Carrying > 0 {
		w.stockpiles[u.Team] += u.Carrying
		w.addEvent(Eventf("DEPOSIT", "unit", u.ID, "team", u.Team, "amount", u.Carrying))
		u.Carrying = 0
	}
	if r := w.resources[b.ResourceID]; r != nil && r.Amount > 0 {
		b.phase = gatherMovingToResource
		b.assigned = -1
		return
	}
	b.reseekOrFinish(w, u)
}

func (b *GatherBehavior) withinDeposit(u *Unit, cc *Building) bool {
	return dist(u.Pos, cc.Pos) < cc.Size/2+u.Size/2+10
}

// reseekOrFinish retargets the nearest live resource, delivering any
// carried load first, and goes idle when nothing is left to mine.
func (b *GatherBehavior) reseekOrFinish(w *World, u *Unit) {
	if u.Carrying > 0 && b.phase != gatherReturning && b.phase != gatherDepositing {
		b.phase = gatherReturning
		return
	}
	if next := w.nearestLiveResource(u.Pos); next != nil {
		b.ResourceID = next.ID
		b.phase = gatherMovingToResource
		b.assigned = -1
		return
	}
	u.SetBehavior(w, &IdleBehavior{})
}

func (b *GatherBehavior) releaseSlot(w *World, u *Unit) {
	if b.claimed < 0 {
		return
	}
	if r := w.resources[b.ResourceID]; r != nil {
		r.releaseSlotsOf(u.ID)
	}
	b.claimed = -1
	b.assigned = -1
}

// Exit returns the slot no matter where the unit is headed next.
func (b *GatherBehavior) Exit(w *World, u *Unit) {
	b.releaseSlot(w, u)
}
