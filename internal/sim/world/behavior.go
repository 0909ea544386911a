package world

// Behavior kinds reported in snapshots.
const (
	BehaviorIdle       = "IDLE"
	BehaviorMove       = "MOVE"
	BehaviorGather     = "GATHER"
	BehaviorAttack     = "ATTACK"
	BehaviorHold       = "HOLD_POSITION"
	BehaviorAttackMove = "ATTACK_MOVE"
	BehaviorPatrol     = "PATROL"
)

// Behavior is the single active order of a unit. Update runs once per
// tick from the orchestrator; Exit runs on every transition out,
// whatever the destination, so transient claims (gather slots) are
// always returned.
type Behavior interface {
	Kind() string
	Update(w *World, u *Unit, dt float64)
	Exit(w *World, u *Unit)
}

// IdleBehavior does nothing. Unlike HoldPosition it does not scan for
// enemies; an idle unit only reacts to commands.
type IdleBehavior struct{}

func (b *IdleBehavior) Kind() string { return BehaviorIdle }

func (b *IdleBehavior) Update(w *World, u *Unit, dt float64) {
	w.drift(u, dt)
}

func (b *IdleBehavior) Exit(w *World, u *Unit) {}

// MoveBehavior steers to a fixed point and goes idle on arrival.
type MoveBehavior struct {
	Target Vec2
}

func (b *MoveBehavior) Kind() string { return BehaviorMove }

func (b *MoveBehavior) Update(w *World, u *Unit, dt float64) {
	if w.moveToward(u, b.Target, dt) {
		u.SetBehavior(w, &IdleBehavior{})
	}
}

func (b *MoveBehavior) Exit(w *World, u *Unit) {}
