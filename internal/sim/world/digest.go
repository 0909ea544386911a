package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
)

// stateDigest hashes the full simulation state in a fixed order.
// Replays compare these per tick to prove two runs never diverged.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte
	wu64 := func(v uint64) {
		binary.LittleEndian.PutUint64(tmp[:], v)
		h.Write(tmp[:])
	}
	wf64 := func(v float64) { wu64(math.Float64bits(v)) }
	wi := func(v int) { wu64(uint64(int64(v))) }

	wu64(nowTick)
	for _, t := range w.sortedTeams() {
		wi(t)
		wi(w.stockpiles[t])
	}
	for _, u := range w.sortedUnits() {
		h.Write([]byte(u.ID))
		h.Write([]byte(u.Type))
		wi(u.Team)
		wf64(u.Pos[0])
		wf64(u.Pos[1])
		wf64(u.Vel[0])
		wf64(u.Vel[1])
		wf64(u.Health)
		wf64(u.Cooldown)
		wi(u.Carrying)
		h.Write([]byte(u.Behavior().Kind()))
	}
	for _, b := range w.sortedBuildings() {
		h.Write([]byte(b.ID))
		h.Write([]byte(b.Type))
		wi(b.Team)
		wf64(b.Pos[0])
		wf64(b.Pos[1])
		wf64(b.Health)
		wf64(b.Cooldown)
		h.Write([]byte(b.TargetID))
		wi(len(b.Queue))
		for _, item := range b.Queue {
			h.Write([]byte(item.UnitType))
			wf64(item.Remaining)
		}
		if b.Rally != nil {
			wf64((*b.Rally)[0])
			wf64((*b.Rally)[1])
		}
	}
	for _, r := range w.sortedResources() {
		h.Write([]byte(r.ID))
		wf64(r.Pos[0])
		wf64(r.Pos[1])
		wi(r.Amount)
		for i := range r.Slots {
			h.Write([]byte(r.Slots[i].OccupiedBy))
		}
	}
	if w.gameOver {
		wi(w.winner)
	}
	return hex.EncodeToString(h.Sum(nil))
}
