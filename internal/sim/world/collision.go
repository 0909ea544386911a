package world

// resolveCollisions separates overlapping AABBs after the behavior
// pass. Units push each other apart split by inverse mass; buildings
// never move, the unit takes the whole correction. Resources do not
// collide at all, workers must overlap them to harvest.
func (w *World) resolveCollisions() {
	units := w.sortedUnits()

	grid := newSpatialGrid(w.cfg.CollisionCell)
	for _, u := range units {
		min, max := u.aabb()
		grid.insert(u.ID, min, max)
	}

	for _, u := range units {
		if !u.Alive() {
			continue
		}
		min, max := u.aabb()
		for _, otherID := range grid.query(min, max) {
			if otherID <= u.ID {
				continue // each pair once
			}
			o := w.units[otherID]
			if o == nil || !o.Alive() {
				continue
			}
			w.separateUnits(u, o)
		}
	}

	// Unit-building overlaps. Buildings are few; test against all.
	for _, u := range units {
		if !u.Alive() {
			continue
		}
		for _, b := range w.sortedBuildings() {
			if !b.Alive() {
				continue
			}
			w.pushUnitOut(u, b)
		}
		w.clampToBounds(u)
	}
}

// intersectAABB reports whether the two boxes overlap.
func intersectAABB(a, b *Entity) bool {
	amin, amax := a.aabb()
	bmin, bmax := b.aabb()
	return amax[0] > bmin[0] && bmax[0] > amin[0] &&
		amax[1] > bmin[1] && bmax[1] > amin[1]
}

// mtvAABB returns, per axis, the minimum translation that moves a
// clear of b and the direction a has to travel. The escape distance
// along an axis is min(bmax-amin, amax-bmin), NOT the overlap-interval
// length; the two differ when one box contains the other along that
// axis. Ties push toward +axis so exact overlaps resolve the same way
// every run.
func mtvAABB(a, b *Entity) (push, dir [2]float64, ok bool) {
	amin, amax := a.aabb()
	bmin, bmax := b.aabb()
	for axis := 0; axis < 2; axis++ {
		if amax[axis] <= bmin[axis] || bmax[axis] <= amin[axis] {
			return push, dir, false
		}
		plus := bmax[axis] - amin[axis]
		minus := amax[axis] - bmin[axis]
		if plus <= minus {
			push[axis], dir[axis] = plus, 1
		} else {
			push[axis], dir[axis] = minus, -1
		}
	}
	return push, dir, true
}

// separateUnits pushes both units along the axis of least translation,
// split by inverse mass so heavier units give less ground. Restitution
// damps the velocity exchange along that axis.
func (w *World) separateUnits(a, b *Unit) {
	push, dirs, ok := mtvAABB(&a.Entity, &b.Entity)
	if !ok {
		return
	}
	invA := invMass(a.Stats.Mass)
	invB := invMass(b.Stats.Mass)
	if invA+invB == 0 {
		return
	}
	axis := 0
	if push[1] < push[0] {
		axis = 1
	}
	dir := dirs[axis]
	shareA := invA / (invA + invB)
	shareB := invB / (invA + invB)
	a.Pos[axis] += dir * push[axis] * shareA
	b.Pos[axis] -= dir * push[axis] * shareB

	// Kill approach velocity along the axis, bounce by restitution.
	rel := a.Vel[axis] - b.Vel[axis]
	if rel*dir < 0 {
		a.Vel[axis] -= rel * shareA * (1 + w.cfg.Restitution) / 2
		b.Vel[axis] += rel * shareB * (1 + w.cfg.Restitution) / 2
	}
}

// pushUnitOut moves the unit fully out of a building along the axis of
// least translation. The building is immovable.
func (w *World) pushUnitOut(u *Unit, b *Building) {
	push, dirs, ok := mtvAABB(&u.Entity, &b.Entity)
	if !ok {
		return
	}
	axis := 0
	if push[1] < push[0] {
		axis = 1
	}
	dir := dirs[axis]
	u.Pos[axis] += dir * push[axis]
	// Cancel velocity pressing into the building.
	if u.Vel[axis]*dir < 0 {
		u.Vel[axis] *= -w.cfg.Restitution
	}
}

func invMass(m float64) float64 {
	if m <= 0 {
		return 0
	}
	return 1 / m
}
