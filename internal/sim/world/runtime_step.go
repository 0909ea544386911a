package world

import (
	"encoding/json"
	"math"
	"sort"
	"time"
)

func (w *World) stepInternal(dt float64, joins []JoinRequest, leaves []string, commands []CommandEnvelope) {
	stepStart := time.Now()
	nowTick := w.tick.Load()
	w.events = w.events[:0]

	// (1) Clamp dt. A stalled caller must not destabilize the
	// integrator; a bad dt is corrected, never propagated.
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 || dt > w.cfg.MaxStepSeconds {
		if dt > w.cfg.MaxStepSeconds || math.IsNaN(dt) || math.IsInf(dt, 0) {
			w.anomalies.DtClamps++
		}
		dt = w.cfg.MaxStepSeconds
	}

	// Apply leaves and joins deterministically at the tick boundary.
	recordedLeaves := make([]string, 0, len(leaves))
	for _, id := range leaves {
		if _, ok := w.players[id]; ok {
			w.handleLeave(id)
			recordedLeaves = append(recordedLeaves, id)
		}
	}
	recordedJoins := make([]RecordedJoin, 0, len(joins))
	for _, req := range joins {
		resp := w.joinPlayer(req)
		if req.Resp != nil {
			req.Resp <- resp
		}
		recordedJoins = append(recordedJoins, RecordedJoin{
			PlayerID: resp.Welcome.PlayerID,
			Name:     req.Name,
			Team:     resp.Welcome.Team,
		})
	}

	// (2) Apply commands in server receive order, whole batches at a
	// time. Never mid-tick: behaviors below see a settled command set.
	recorded := make([]RecordedCommand, 0, len(commands))
	for _, env := range commands {
		p := w.players[env.PlayerID]
		if p == nil {
			continue
		}
		recorded = append(recorded, RecordedCommand{PlayerID: env.PlayerID, Commands: env.Commands})
		for _, cmd := range env.Commands {
			w.applyCommand(p, cmd)
		}
	}

	if !w.gameOver {
		// (3) Behaviors over ID-sorted living units. Behaviors see
		// pre-collision positions; the separation pass runs after.
		for _, u := range w.sortedUnits() {
			if !u.Alive() {
				continue
			}
			if u.Cooldown > 0 {
				u.Cooldown -= dt
			}
			u.Behavior().Update(w, u, dt)
		}

		// (4) Collision resolution.
		w.resolveCollisions()

		// (5) Buildings: production queues and turret fire.
		w.updateBuildings(dt)

		// (6) Reap the dead and the mined-out.
		w.reap()

		// (7) Game over once a team runs out of command centers.
		w.checkGameOver(nowTick)
	}

	// Snapshot fan-out to connected clients.
	for _, id := range w.sortedPlayerIDs() {
		cl := w.clients[id]
		if cl == nil {
			continue
		}
		st := w.buildState(nowTick, w.players[id])
		b, err := json.Marshal(st)
		if err != nil {
			continue
		}
		sendLatest(cl.Out, b)
	}

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{
			Tick:     nowTick,
			Joins:    recordedJoins,
			Leaves:   recordedLeaves,
			Commands: recorded,
			Digest:   digest,
		})
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)
	w.metrics.Store(WorldMetrics{
		Tick:      nextTick,
		Units:     len(w.units),
		Buildings: len(w.buildings),
		Resources: len(w.resources),
		Players:   len(w.players),
		StepMS:    stepMS,
		Anomalies: w.anomalies,
	})
}

func (w *World) sortedPlayerIDs() []string {
	out := make([]string, 0, len(w.players))
	for id := range w.players {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// reap removes dead units/buildings and exhausted resources, releasing
// every reference other entities may still hold on them.
func (w *World) reap() {
	for _, u := range w.sortedUnits() {
		if u.Alive() {
			continue
		}
		u.SetBehavior(w, &IdleBehavior{}) // runs Exit, returns any slot
		for _, r := range w.resources {
			r.releaseSlotsOf(u.ID)
		}
		delete(w.units, u.ID)
		w.addEvent(Eventf("ENTITY_DIED", "id", u.ID, "entity_type", u.Type, "team", u.Team))
	}
	for _, b := range w.sortedBuildings() {
		if b.Alive() {
			continue
		}
		delete(w.buildings, b.ID)
		w.addEvent(Eventf("ENTITY_DIED", "id", b.ID, "entity_type", b.Type, "team", b.Team))
	}
	for _, r := range w.sortedResources() {
		if r.Amount > 0 {
			continue
		}
		delete(w.resources, r.ID)
	}
}

// checkGameOver only runs once a scenario armed it; sandbox worlds
// built through the debug seams never end on their own.
func (w *World) checkGameOver(nowTick uint64) {
	if w.gameOver || !w.competitive {
		return
	}
	ccs := map[int]int{}
	for _, b := range w.buildings {
		if b.Type == BuildingCommandCenter && b.Alive() {
			ccs[b.Team]++
		}
	}
	alive := []int{}
	anyLost := false
	for _, t := range w.sortedTeams() {
		if ccs[t] > 0 {
			alive = append(alive, t)
		} else {
			anyLost = true
		}
	}
	if !anyLost {
		return
	}
	w.gameOver = true
	w.winner = NoTeam
	if len(alive) == 1 {
		w.winner = alive[0]
	}
	w.addEvent(Eventf("GAME_OVER", "winner", w.winner))
	if w.resultSink != nil {
		w.resultSink(MatchResult{WorldID: w.cfg.ID, Tick: nowTick, Winner: w.winner})
	}
}
