package world

import "fmt"

// Entity kinds on the wire and in snapshots.
const (
	KindUnit     = "UNIT"
	KindBuilding = "BUILDING"
	KindResource = "RESOURCE"
)

// Unit types.
const (
	UnitWorker = "WORKER"
	UnitRaider = "RAIDER"
	UnitArcher = "ARCHER"
)

// Building types.
const (
	BuildingCommandCenter = "COMMAND_CENTER"
	BuildingBarracks      = "BARRACKS"
	BuildingTurret        = "TURRET"
)

// ResourceTypeMineral is the only resource flavor for now.
const ResourceTypeMineral = "MINERAL"

// NoTeam marks entities owned by nobody (resources).
const NoTeam = -1

// Entity carries the fields shared by units, buildings and resources.
// Pos is the center; Size is the side of the square AABB.
type Entity struct {
	ID   string
	Team int
	Pos  Vec2
	Size float64
}

func (e *Entity) aabb() (min, max Vec2) {
	h := e.Size / 2
	return Vec2{e.Pos[0] - h, e.Pos[1] - h}, Vec2{e.Pos[0] + h, e.Pos[1] + h}
}

type Unit struct {
	Entity
	Type     string
	Stats    UnitStats
	Health   float64
	Vel      Vec2
	Carrying int
	Cooldown float64 // seconds until the next attack is allowed
	Selected bool
	behavior Behavior
}

// SetBehavior swaps the active behavior wholesale. The outgoing
// behavior's Exit always runs first so slot claims never leak.
func (u *Unit) SetBehavior(w *World, b Behavior) {
	if u.behavior != nil {
		u.behavior.Exit(w, u)
	}
	if b == nil {
		b = &IdleBehavior{}
	}
	u.behavior = b
}

func (u *Unit) Behavior() Behavior { return u.behavior }

func (u *Unit) Alive() bool { return u.Health > 0 }

type Building struct {
	Entity
	Type     string
	Stats    BuildingStats
	Health   float64
	Rally    *Vec2
	Queue    []ProductionItem
	Cooldown float64 // turret fire cooldown
	TargetID string  // turret's current target
	Selected bool
}

func (b *Building) Alive() bool { return b.Health > 0 }

type ProductionItem struct {
	UnitType  string
	Remaining float64 // build seconds left
}

type Resource struct {
	Entity
	Type   string
	Amount int
	Slots  []Slot
}

// Slot is a fixed harvesting position on a resource. Offset is
// relative to the resource center; OccupiedBy is a unit ID or empty.
type Slot struct {
	Offset     Vec2
	OccupiedBy string
}

func (r *Resource) SlotPos(i int) Vec2 {
	return r.Pos.Add(r.Slots[i].Offset)
}

// freeSlot returns the lowest-index unclaimed slot, or -1.
func (r *Resource) freeSlot() int {
	for i := range r.Slots {
		if r.Slots[i].OccupiedBy == "" {
			return i
		}
	}
	return -1
}

func (r *Resource) releaseSlotsOf(unitID string) {
	for i := range r.Slots {
		if r.Slots[i].OccupiedBy == unitID {
			r.Slots[i].OccupiedBy = ""
		}
	}
}

func (w *World) newUnitID() string {
	n := w.nextUnitNum.Add(1)
	return fmt.Sprintf("U%06d", n)
}

func (w *World) newBuildingID() string {
	n := w.nextBuildingNum.Add(1)
	return fmt.Sprintf("B%06d", n)
}

func (w *World) newResourceID() string {
	n := w.nextResourceNum.Add(1)
	return fmt.Sprintf("R%06d", n)
}

// slotOffsets places n harvesting positions just outside a resource of
// the given size: top, right, bottom, left, then corners for larger n.
func slotOffsets(n int, size float64) []Vec2 {
	d := size * 0.75
	ring := []Vec2{
		{0, -d}, {d, 0}, {0, d}, {-d, 0},
		{d, -d}, {d, d}, {-d, d}, {-d, -d},
	}
	out := make([]Vec2, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ring[i%len(ring)])
	}
	return out
}
