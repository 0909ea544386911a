package world

import (
	"fmt"

	"vectorrts.dev/internal/protocol"
)

// buildState renders the full post-tick snapshot for one session.
// Entities come out in ID order so two clients always see the same
// listing.
func (w *World) buildState(tick uint64, p *Player) protocol.StateMsg {
	debug := p != nil && p.Debug

	st := protocol.StateMsg{
		Type:            protocol.TypeState,
		ProtocolVersion: protocol.Version,
		Tick:            tick,
		Stockpiles:      map[string]int{},
		GameOver:        w.gameOver,
		Winner:          w.winner,
	}
	for _, t := range w.sortedTeams() {
		st.Stockpiles[fmt.Sprintf("%d", t)] = w.stockpiles[t]
	}

	for _, u := range w.sortedUnits() {
		es := protocol.EntityState{
			ID:        u.ID,
			Kind:      KindUnit,
			Type:      u.Type,
			Team:      u.Team,
			Pos:       [2]float64{u.Pos[0], u.Pos[1]},
			Size:      u.Size,
			Health:    u.Health,
			MaxHealth: u.Stats.Health,
			Behavior:  u.Behavior().Kind(),
			Carrying:  u.Carrying,
			Selected:  u.Selected,
		}
		if debug {
			es.Debug = unitDebug(u)
		}
		st.Entities = append(st.Entities, es)
	}
	for _, b := range w.sortedBuildings() {
		es := protocol.EntityState{
			ID:        b.ID,
			Kind:      KindBuilding,
			Type:      b.Type,
			Team:      b.Team,
			Pos:       [2]float64{b.Pos[0], b.Pos[1]},
			Size:      b.Size,
			Health:    b.Health,
			MaxHealth: b.Stats.Health,
			QueueLen:  len(b.Queue),
			Selected:  b.Selected,
		}
		if b.Rally != nil {
			es.Rally = &[2]float64{(*b.Rally)[0], (*b.Rally)[1]}
		}
		st.Entities = append(st.Entities, es)
	}
	for _, r := range w.sortedResources() {
		es := protocol.EntityState{
			ID:     r.ID,
			Kind:   KindResource,
			Type:   r.Type,
			Team:   NoTeam,
			Pos:    [2]float64{r.Pos[0], r.Pos[1]},
			Size:   r.Size,
			Amount: r.Amount,
		}
		if debug {
			slots := make([]string, len(r.Slots))
			for i := range r.Slots {
				slots[i] = r.Slots[i].OccupiedBy
			}
			es.Debug = &protocol.EntityDebug{Slots: slots}
		}
		st.Entities = append(st.Entities, es)
	}

	if len(w.events) > 0 {
		st.Events = append(st.Events, w.events...)
	}
	return st
}

func unitDebug(u *Unit) *protocol.EntityDebug {
	d := &protocol.EntityDebug{}
	switch b := u.Behavior().(type) {
	case *MoveBehavior:
		d.MoveTarget = &[2]float64{b.Target[0], b.Target[1]}
	case *AttackMoveBehavior:
		d.MoveTarget = &[2]float64{b.Target[0], b.Target[1]}
	case *GatherBehavior:
		d.Phase = b.Phase()
	case *PatrolBehavior:
		t := b.PointA
		if b.towardB {
			t = b.PointB
		}
		d.MoveTarget = &[2]float64{t[0], t[1]}
	}
	return d
}

// BuildStateFor exposes a snapshot for a given debug preference
// without a session, for replay tooling.
func (w *World) BuildStateFor(debug bool) protocol.StateMsg {
	return w.buildState(w.tick.Load(), &Player{Debug: debug})
}
