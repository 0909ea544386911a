package world

import "math"

// arrivedSpeedEps keeps "arrived" from reporting true while the unit
// is still sliding through the threshold at speed.
const arrivedSpeedEps = 5.0

// steeringMassRef is the mass at which the full steering force still
// applies; heavier bodies get a mass-derived acceleration cap.
const steeringMassRef = 20.0

// moveToward steers u toward target for one step and reports whether
// the unit has arrived (inside the arrival threshold and nearly
// stopped). Every movement-driven behavior goes through here; none of
// them integrate positions on their own.
func (w *World) moveToward(u *Unit, target Vec2, dt float64) bool {
	if dt > w.cfg.MaxStepSeconds {
		dt = w.cfg.MaxStepSeconds
	}
	if dt <= 0 {
		return dist(u.Pos, target) < w.cfg.ArrivalThreshold && u.Vel.Len() < arrivedSpeedEps
	}

	to := target.Sub(u.Pos)
	d := to.Len()

	if d >= w.cfg.ArrivalThreshold {
		dir := safeNormalize(to)
		// Steering force integrates straight into velocity; units above
		// the reference mass accelerate proportionally slower.
		accelMag := w.cfg.SteeringForce
		if u.Stats.Mass > steeringMassRef {
			accelMag = w.cfg.SteeringForce * steeringMassRef / u.Stats.Mass
		}
		u.Vel = u.Vel.Add(dir.Mul(accelMag * dt))
	}

	// Exponential friction, normalized so decay is frame-rate independent.
	u.Vel = u.Vel.Mul(math.Pow(w.cfg.Friction, dt*60))

	// Arrival damping: scale speed down with remaining distance so the
	// unit settles instead of orbiting the target.
	if d < w.cfg.SlowdownRadius {
		factor := d / w.cfg.SlowdownRadius
		u.Vel = u.Vel.Mul(factor)
	}

	maxSpeed := u.Stats.Speed * w.cfg.MaxSpeedMultiplier
	u.Vel = clampLen(u.Vel, maxSpeed)

	next := u.Pos.Add(u.Vel.Mul(dt))
	if !finite(next) {
		u.Vel = Vec2{}
		w.anomalies.NaNResets++
	} else {
		u.Pos = next
	}
	w.clampToBounds(u)

	if dist(u.Pos, target) < w.cfg.ArrivalThreshold && u.Vel.Len() < arrivedSpeedEps {
		u.Vel = Vec2{}
		return true
	}
	return false
}

// drift integrates leftover velocity for units that are not steering
// anywhere this tick (knockback from separation, stopping units).
func (w *World) drift(u *Unit, dt float64) {
	if dt > w.cfg.MaxStepSeconds {
		dt = w.cfg.MaxStepSeconds
	}
	if dt <= 0 || (u.Vel[0] == 0 && u.Vel[1] == 0) {
		return
	}
	u.Vel = u.Vel.Mul(math.Pow(w.cfg.Friction, dt*60))
	if u.Vel.Len() < 0.1 {
		u.Vel = Vec2{}
		return
	}
	next := u.Pos.Add(u.Vel.Mul(dt))
	if !finite(next) {
		u.Vel = Vec2{}
		w.anomalies.NaNResets++
		return
	}
	u.Pos = next
	w.clampToBounds(u)
}

func (w *World) clampToBounds(u *Unit) {
	h := u.Size / 2
	if u.Pos[0] < h {
		u.Pos[0] = h
	}
	if u.Pos[0] > w.cfg.WorldW-h {
		u.Pos[0] = w.cfg.WorldW - h
	}
	if u.Pos[1] < h {
		u.Pos[1] = h
	}
	if u.Pos[1] > w.cfg.WorldH-h {
		u.Pos[1] = w.cfg.WorldH - h
	}
}
