package world

// AttackBehavior pursues a single target until it dies, whatever the
// distance. Invalid targets drop the unit back to Idle.
type AttackBehavior struct {
	TargetID string
}

func (b *AttackBehavior) Kind() string { return BehaviorAttack }

func (b *AttackBehavior) Update(w *World, u *Unit, dt float64) {
	if !w.engageTarget(u, b.TargetID, dt) {
		u.SetBehavior(w, &IdleBehavior{})
	}
}

func (b *AttackBehavior) Exit(w *World, u *Unit) {}

// HoldPositionBehavior never moves. It fires at the nearest enemy
// inside weapon range, nothing more.
type HoldPositionBehavior struct{}

func (b *HoldPositionBehavior) Kind() string { return BehaviorHold }

func (b *HoldPositionBehavior) Update(w *World, u *Unit, dt float64) {
	if u.Stats.Damage <= 0 {
		return
	}
	id := w.nearestEnemyID(u.Team, u.Pos, u.Stats.Range)
	if id == "" {
		return
	}
	t, ok := w.lookupTarget(id)
	if !ok {
		return
	}
	if u.Cooldown <= 0 && edgeDist(u.Pos, t.pos, t.size) <= u.Stats.Range {
		w.damageTarget(id, u.Stats.Damage)
		u.Cooldown = u.Stats.Cooldown
	}
}

func (b *HoldPositionBehavior) Exit(w *World, u *Unit) {}

// AttackMoveBehavior walks to a destination but diverts onto any enemy
// entering the aggro radius, resuming the walk once the enemy is dead
// or has left that radius.
type AttackMoveBehavior struct {
	Target Vec2

	engagedID string
}

func (b *AttackMoveBehavior) Kind() string { return BehaviorAttackMove }

func (b *AttackMoveBehavior) Update(w *World, u *Unit, dt float64) {
	if b.engagedID != "" {
		if w.withinAggro(u, b.engagedID) && w.engageTarget(u, b.engagedID, dt) {
			return
		}
		b.engagedID = ""
	}
	if u.Stats.AggroRange > 0 {
		if id := w.nearestEnemyID(u.Team, u.Pos, u.Stats.AggroRange); id != "" {
			b.engagedID = id
			w.engageTarget(u, id, dt)
			return
		}
	}
	if w.moveToward(u, b.Target, dt) {
		u.SetBehavior(w, &IdleBehavior{})
	}
}

func (b *AttackMoveBehavior) Exit(w *World, u *Unit) {}

// PatrolBehavior shuttles between two points with the same aggro rules
// as AttackMove; the current leg is kept across combat so the unit
// resumes where it left off.
type PatrolBehavior struct {
	PointA Vec2
	PointB Vec2

	towardB   bool
	engagedID string
}

func (b *PatrolBehavior) Kind() string { return BehaviorPatrol }

func (b *PatrolBehavior) Update(w *World, u *Unit, dt float64) {
	if b.engagedID != "" {
		if w.withinAggro(u, b.engagedID) && w.engageTarget(u, b.engagedID, dt) {
			return
		}
		b.engagedID = ""
	}
	if u.Stats.AggroRange > 0 {
		if id := w.nearestEnemyID(u.Team, u.Pos, u.Stats.AggroRange); id != "" {
			b.engagedID = id
			w.engageTarget(u, id, dt)
			return
		}
	}
	target := b.PointA
	if b.towardB {
		target = b.PointB
	}
	if w.moveToward(u, target, dt) {
		b.towardB = !b.towardB
	}
}

func (b *PatrolBehavior) Exit(w *World, u *Unit) {}

// engageTarget closes on the target and hits it when in range and off
// cooldown. Returns false once the target is gone; the caller decides
// what comes next. Melee and ranged differ only in their constants.
func (w *World) engageTarget(u *Unit, targetID string, dt float64) bool {
	t, ok := w.lookupTarget(targetID)
	if !ok || t.team == u.Team {
		return false
	}
	if edgeDist(u.Pos, t.pos, t.size) <= u.Stats.Range {
		w.drift(u, dt)
		if u.Cooldown <= 0 && u.Stats.Damage > 0 {
			w.damageTarget(targetID, u.Stats.Damage)
			u.Cooldown = u.Stats.Cooldown
		}
		return true
	}
	w.moveToward(u, t.pos, dt)
	return true
}

// withinAggro reports whether the target's edge is still inside the
// unit's aggro radius. AttackMove and Patrol drop a chase past it; an
// explicit Attack order never does.
func (w *World) withinAggro(u *Unit, targetID string) bool {
	t, ok := w.lookupTarget(targetID)
	if !ok {
		return false
	}
	return edgeDist(u.Pos, t.pos, t.size) <= u.Stats.AggroRange
}

func edgeDist(from, center Vec2, size float64) float64 {
	d := dist(from, center) - size/2
	if d < 0 {
		return 0
	}
	return d
}
