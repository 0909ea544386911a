package world

import "testing"

func overlaps(a, b *Entity) bool { return intersectAABB(a, b) }

func TestSeparateUnits_ResolvesOverlapByInverseMass(t *testing.T) {
	w := New(testConfig())
	light := w.spawnUnit(UnitWorker, 0, Vec2{100, 100}) // mass 15
	heavy := w.spawnUnit(UnitArcher, 0, Vec2{110, 100}) // mass 20

	lightBefore, heavyBefore := light.Pos, heavy.Pos
	w.resolveCollisions()

	if overlaps(&light.Entity, &heavy.Entity) {
		t.Fatalf("still overlapping after resolve: %v vs %v", light.Pos, heavy.Pos)
	}
	lightMoved := dist(lightBefore, light.Pos)
	heavyMoved := dist(heavyBefore, heavy.Pos)
	if lightMoved <= heavyMoved {
		t.Errorf("lighter unit moved %.2f, heavier %.2f; want lighter to give more ground", lightMoved, heavyMoved)
	}
}

// A small box whose span sits entirely inside a bigger one needs a
// push longer than the overlap-interval length to get clear.
func TestSeparateUnits_ContainedSpanFullySeparates(t *testing.T) {
	w := New(testConfig())
	small := w.spawnUnit(UnitWorker, 0, Vec2{100, 100}) // size 15, x-span inside the archer's
	big := w.spawnUnit(UnitArcher, 0, Vec2{101, 100})   // size 20

	w.resolveCollisions()

	if overlaps(&small.Entity, &big.Entity) {
		t.Fatalf("contained unit still overlapping after resolve: %v vs %v", small.Pos, big.Pos)
	}
}

func TestSeparateUnits_ExactOverlapUsesFallbackAxis(t *testing.T) {
	w := New(testConfig())
	a := w.spawnUnit(UnitWorker, 0, Vec2{200, 200})
	b := w.spawnUnit(UnitWorker, 1, Vec2{200, 200})

	w.resolveCollisions()

	if a.Pos == b.Pos {
		t.Fatalf("exact overlap not separated: both at %v", a.Pos)
	}
	if overlaps(&a.Entity, &b.Entity) {
		t.Errorf("still overlapping after fallback separation")
	}
}

func TestPushUnitOut_BuildingDoesNotMove(t *testing.T) {
	w := New(testConfig())
	w.DebugSpawnBuilding(BuildingCommandCenter, 0, Vec2{500, 500})
	u := w.spawnUnit(UnitWorker, 0, Vec2{520, 500})

	b := w.sortedBuildings()[0]
	bBefore := b.Pos
	w.resolveCollisions()

	if b.Pos != bBefore {
		t.Errorf("building moved from %v to %v", bBefore, b.Pos)
	}
	if overlaps(&u.Entity, &b.Entity) {
		t.Errorf("unit still inside building: %v", u.Pos)
	}
}

func TestResolveCollisions_IgnoresResources(t *testing.T) {
	w := New(testConfig())
	w.addResource(Vec2{300, 300}, 500, 4)
	u := w.spawnUnit(UnitWorker, 0, Vec2{300, 300})

	w.resolveCollisions()

	if u.Pos != (Vec2{300, 300}) {
		t.Errorf("worker pushed off a resource it must be able to overlap: %v", u.Pos)
	}
}

func TestGrid_QueryReturnsEachIDOnce(t *testing.T) {
	g := newSpatialGrid(100)
	g.insert("A", Vec2{90, 90}, Vec2{210, 210}) // spans 4 cells
	g.insert("B", Vec2{500, 500}, Vec2{510, 510})

	got := g.query(Vec2{0, 0}, Vec2{300, 300})
	if len(got) != 1 || got[0] != "A" {
		t.Fatalf("query = %v, want [A]", got)
	}
}
