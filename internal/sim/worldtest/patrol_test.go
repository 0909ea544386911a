package worldtest

import (
	"testing"

	"vectorrts.dev/internal/protocol"
)

func TestPatrol_AlternatesBetweenEndpoints(t *testing.T) {
	h := NewHarness(t, testConfig(), "p1")
	raider := h.W.DebugSpawnUnit("RAIDER", 0, vec(500, 500))

	h.Step(protocol.CommandReq{
		Kind:    protocol.CmdPatrol,
		UnitIDs: []string{raider},
		Point:   &[2]float64{500, 500},
		PointB:  &[2]float64{700, 500},
	})

	reachedB, cameBack := false, false
	for i := 0; i < 900; i++ {
		e := h.MustEntity(raider)
		if e.Behavior != "PATROL" {
			t.Fatalf("behavior = %s during patrol", e.Behavior)
		}
		if !reachedB && abs(e.Pos[0]-700) < 25 {
			reachedB = true
		}
		if reachedB && abs(e.Pos[0]-500) < 25 {
			cameBack = true
			break
		}
		h.StepNoop()
	}
	if !reachedB || !cameBack {
		t.Fatalf("patrol did not complete a lap: reachedB=%v cameBack=%v", reachedB, cameBack)
	}
}

func TestPatrol_EngagesThenResumes(t *testing.T) {
	h := NewHarness(t, testConfig(), "p1")
	raider := h.W.DebugSpawnUnit("RAIDER", 0, vec(500, 500))
	intruder := h.W.DebugSpawnUnit("WORKER", 1, vec(600, 560)) // near the patrol line

	h.Step(protocol.CommandReq{
		Kind:    protocol.CmdPatrol,
		UnitIDs: []string{raider},
		Point:   &[2]float64{500, 500},
		PointB:  &[2]float64{700, 500},
	})

	killed := false
	for i := 0; i < 600; i++ {
		if _, ok := h.Entity(intruder); !ok {
			killed = true
			break
		}
		h.StepNoop()
	}
	if !killed {
		t.Fatalf("patrol never engaged the intruder")
	}
	// Back on the route afterwards.
	sawRoute := false
	for i := 0; i < 600; i++ {
		e := h.MustEntity(raider)
		if e.Behavior != "PATROL" {
			t.Fatalf("behavior = %s after combat, want PATROL", e.Behavior)
		}
		if abs(e.Pos[1]-500) < 25 && e.Pos[0] > 480 && e.Pos[0] < 720 {
			sawRoute = true
			break
		}
		h.StepNoop()
	}
	if !sawRoute {
		t.Fatalf("patrol did not resume its route")
	}
}

// An intruder that escapes the aggro radius is let go; the patrol
// picks its route back up rather than chasing across the map.
func TestPatrol_DropsTargetThatFleesAggro(t *testing.T) {
	h := NewHarness(t, testConfig(), "p1")
	raider := h.W.DebugSpawnUnit("RAIDER", 0, vec(500, 500))
	intruder := h.W.DebugSpawnUnit("WORKER", 1, vec(600, 560))

	h.Step(protocol.CommandReq{
		Kind:    protocol.CmdPatrol,
		UnitIDs: []string{raider},
		Point:   &[2]float64{500, 500},
		PointB:  &[2]float64{700, 500},
	})

	engaged := false
	for i := 0; i < 300; i++ {
		h.StepNoop()
		if h.MustEntity(intruder).Health < 50 {
			engaged = true
			break
		}
	}
	if !engaged {
		t.Fatalf("patrol never engaged the intruder")
	}

	// Out of aggro range 150; the chase must stop here.
	if !h.W.DebugSetPos(intruder, vec(2500, 2800)) {
		t.Fatalf("DebugSetPos failed")
	}
	hpFled := h.MustEntity(intruder).Health

	sawRoute := false
	for i := 0; i < 600; i++ {
		h.StepNoop()
		e := h.MustEntity(raider)
		if e.Behavior != "PATROL" {
			t.Fatalf("behavior = %s after the intruder fled, want PATROL", e.Behavior)
		}
		if abs(e.Pos[1]-500) < 25 && e.Pos[0] > 480 && e.Pos[0] < 720 {
			sawRoute = true
			break
		}
	}
	if !sawRoute {
		t.Fatalf("patrol chased the fled intruder instead of resuming its route")
	}
	h.StepN(60)
	if got := h.MustEntity(intruder).Health; got != hpFled {
		t.Errorf("fled intruder took damage: %.0f -> %.0f", hpFled, got)
	}
}
