package worldtest

import (
	"encoding/json"
	"strconv"
	"testing"

	"vectorrts.dev/internal/protocol"
	world "vectorrts.dev/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via
// exported APIs:
// - Join() issues JoinRequest via StepOnce()
// - Step()/StepFor() issues COMMAND batches via StepOnce()
// - Per-player Out channels carry STATE JSON
// - Debug* seams provide deterministic preconditions
//
// It intentionally avoids touching world internals so tests can live
// outside the world package.
type Harness struct {
	T *testing.T
	W *world.World

	DefaultPlayerID string

	sessions map[string]*session
}

// Dt is the fixed step used by every harness tick.
const Dt = 1.0 / 30.0

type session struct {
	PlayerID  string
	Out       chan []byte
	lastState protocol.StateMsg
}

func NewHarness(t *testing.T, cfg world.Config, playerName string) *Harness {
	t.Helper()
	h := &Harness{
		T:        t,
		W:        world.New(cfg),
		sessions: map[string]*session{},
	}
	h.DefaultPlayerID = h.Join(playerName, 0, true)
	return h
}

func (h *Harness) Join(name string, team int, debug bool) string {
	h.T.Helper()
	out := make(chan []byte, 16)
	resp := make(chan world.JoinResponse, 1)
	_, _ = h.W.StepOnce(Dt, []world.JoinRequest{{
		Name:  name,
		Team:  team,
		Debug: debug,
		Out:   out,
		Resp:  resp,
	}}, nil, nil)
	jr := <-resp
	if jr.Welcome.PlayerID == "" {
		h.T.Fatalf("join returned empty player id")
	}
	s := &session{PlayerID: jr.Welcome.PlayerID, Out: out}
	h.sessions[s.PlayerID] = s
	h.drainAll()
	return s.PlayerID
}

func (h *Harness) LastState() protocol.StateMsg {
	return h.LastStateFor(h.DefaultPlayerID)
}

func (h *Harness) LastStateFor(playerID string) protocol.StateMsg {
	h.T.Helper()
	s := h.sessions[playerID]
	if s == nil {
		h.T.Fatalf("unknown player id: %q", playerID)
	}
	return s.lastState
}

func (h *Harness) Step(cmds ...protocol.CommandReq) protocol.StateMsg {
	return h.StepFor(h.DefaultPlayerID, cmds...)
}

func (h *Harness) StepFor(playerID string, cmds ...protocol.CommandReq) protocol.StateMsg {
	h.T.Helper()
	_, _ = h.W.StepOnce(Dt, nil, nil, []world.CommandEnvelope{{
		PlayerID: playerID,
		Commands: cmds,
	}})
	h.drainAll()
	return h.LastStateFor(playerID)
}

func (h *Harness) StepNoop() protocol.StateMsg {
	h.T.Helper()
	_, _ = h.W.StepOnce(Dt, nil, nil, nil)
	h.drainAll()
	return h.LastState()
}

func (h *Harness) StepN(n int) protocol.StateMsg {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.StepNoop()
	}
	return h.LastState()
}

// Entity finds an entity in the default player's last snapshot.
func (h *Harness) Entity(id string) (protocol.EntityState, bool) {
	for _, e := range h.LastState().Entities {
		if e.ID == id {
			return e, true
		}
	}
	return protocol.EntityState{}, false
}

func (h *Harness) MustEntity(id string) protocol.EntityState {
	h.T.Helper()
	e, ok := h.Entity(id)
	if !ok {
		h.T.Fatalf("entity %s not in snapshot; entities=%v", id, h.LastState().Entities)
	}
	return e
}

func (h *Harness) Stockpile(team int) int {
	h.T.Helper()
	st := h.LastState()
	return st.Stockpiles[teamKey(team)]
}

func teamKey(team int) string {
	return strconv.Itoa(team)
}

func hasEvent(st protocol.StateMsg, typ string) bool {
	for _, e := range st.Events {
		if e["type"] == typ {
			return true
		}
	}
	return false
}

func rejectionCode(st protocol.StateMsg, cmdID string) string {
	for _, e := range st.Events {
		if e["type"] == "COMMAND_REJECTED" && e["id"] == cmdID {
			code, _ := e["code"].(string)
			return code
		}
	}
	return ""
}

func (h *Harness) drainAll() {
	h.T.Helper()
	for _, s := range h.sessions {
		h.drainOne(s)
	}
}

func (h *Harness) drainOne(s *session) {
	h.T.Helper()
	var last []byte
	for {
		select {
		case b := <-s.Out:
			last = b
			continue
		default:
		}
		break
	}
	if len(last) == 0 {
		return
	}
	var st protocol.StateMsg
	if err := json.Unmarshal(last, &st); err != nil {
		h.T.Fatalf("unmarshal STATE: %v", err)
	}
	s.lastState = st
}

// testConfig mirrors configs/tuning.yaml so tests need no file IO.
func testConfig() world.Config {
	return world.Config{
		ID:                "test",
		Teams:             2,
		StartingStockpile: 200,
		Units: map[string]world.UnitStats{
			"WORKER": {Size: 15, Health: 50, Speed: 100, Mass: 15, CarryCap: 10, Cost: 50, BuildSeconds: 5},
			"RAIDER": {Size: 15, Health: 30, Speed: 150, Mass: 15, Damage: 10, Range: 50, Cooldown: 0.5, AggroRange: 150, Cost: 75, BuildSeconds: 6},
			"ARCHER": {Size: 20, Health: 70, Speed: 80, Mass: 20, Damage: 15, Range: 150, Cooldown: 1, AggroRange: 200, Cost: 100, BuildSeconds: 7},
		},
		Buildings: map[string]world.BuildingStats{
			"COMMAND_CENTER": {Size: 60, Health: 1000},
			"BARRACKS":       {Size: 50, Health: 500, Cost: 150},
			"TURRET":         {Size: 40, Health: 250, Cost: 100, Damage: 10, Range: 150, Cooldown: 1},
		},
	}
}
