package worldtest

import (
	"testing"

	"vectorrts.dev/internal/protocol"
)

func TestCommand_Move_ArrivesAndGoesIdle(t *testing.T) {
	h := NewHarness(t, testConfig(), "p1")
	id := h.W.DebugSpawnUnit("WORKER", 0, vec(500, 500))

	h.Step(protocol.CommandReq{
		Kind:    protocol.CmdMove,
		UnitIDs: []string{id},
		Point:   &[2]float64{800, 500},
	})

	for i := 0; i < 300; i++ {
		if h.MustEntity(id).Behavior == "IDLE" {
			break
		}
		h.StepNoop()
	}
	e := h.MustEntity(id)
	if e.Behavior != "IDLE" {
		t.Fatalf("unit never went idle; behavior=%s pos=%v", e.Behavior, e.Pos)
	}
	if dx := e.Pos[0] - 800; dx > 25 || dx < -25 {
		t.Errorf("stopped at %v, want near (800,500)", e.Pos)
	}
}

func TestCommand_Stop_ReplacesBehavior(t *testing.T) {
	h := NewHarness(t, testConfig(), "p1")
	id := h.W.DebugSpawnUnit("WORKER", 0, vec(500, 500))

	h.Step(protocol.CommandReq{Kind: protocol.CmdMove, UnitIDs: []string{id}, Point: &[2]float64{2000, 500}})
	if got := h.MustEntity(id).Behavior; got != "MOVE" {
		t.Fatalf("behavior = %s, want MOVE", got)
	}
	h.Step(protocol.CommandReq{Kind: protocol.CmdStop, UnitIDs: []string{id}})
	if got := h.MustEntity(id).Behavior; got != "IDLE" {
		t.Fatalf("behavior = %s after STOP, want IDLE", got)
	}
	pos := h.MustEntity(id).Pos
	h.StepN(30)
	after := h.MustEntity(id).Pos
	if d := abs(after[0]-pos[0]) + abs(after[1]-pos[1]); d > 15 {
		t.Errorf("stopped unit slid %.1f units", d)
	}
}

func TestCommand_Move_ForeignUnitsIgnored(t *testing.T) {
	h := NewHarness(t, testConfig(), "p1")
	enemy := h.W.DebugSpawnUnit("WORKER", 1, vec(600, 600))

	h.Step(protocol.CommandReq{Kind: protocol.CmdMove, UnitIDs: []string{enemy}, Point: &[2]float64{900, 600}})
	if got := h.MustEntity(enemy).Behavior; got != "IDLE" {
		t.Fatalf("enemy unit obeyed foreign order; behavior=%s", got)
	}
}

func TestCommand_Move_EmptySelectionIsNoop(t *testing.T) {
	h := NewHarness(t, testConfig(), "p1")
	before := h.StepNoop()
	after := h.Step(protocol.CommandReq{Kind: protocol.CmdMove, Point: &[2]float64{900, 600}})
	if len(after.Entities) != len(before.Entities) {
		t.Fatalf("empty selection changed the world")
	}
	if hasEvent(after, "COMMAND_REJECTED") {
		t.Errorf("empty selection must no-op silently, got rejection")
	}
}

func TestCommand_Select_TogglesFlag(t *testing.T) {
	h := NewHarness(t, testConfig(), "p1")
	id := h.W.DebugSpawnUnit("WORKER", 0, vec(500, 500))

	h.Step(protocol.CommandReq{Kind: protocol.CmdSelect, UnitIDs: []string{id}, Selected: true})
	if !h.MustEntity(id).Selected {
		t.Fatalf("unit not selected after SELECT")
	}
	h.Step(protocol.CommandReq{Kind: protocol.CmdSelect, UnitIDs: []string{id}, Selected: false})
	if h.MustEntity(id).Selected {
		t.Fatalf("unit still selected after deselect")
	}
}

func vec(x, y float64) [2]float64 { return [2]float64{x, y} }

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
