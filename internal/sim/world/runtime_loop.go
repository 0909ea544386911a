package world

import (
	"context"
	"fmt"
	"time"

	"vectorrts.dev/internal/protocol"
)

func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	dt := interval.Seconds()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var pendingCommands []CommandEnvelope
	var pendingJoins []JoinRequest
	var pendingLeaves []string

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.join:
			pendingJoins = append(pendingJoins, req)
		case id := <-w.leave:
			pendingLeaves = append(pendingLeaves, id)
		case env := <-w.inbox:
			pendingCommands = append(pendingCommands, env)
		case <-ticker.C:
			w.stepInternal(dt, pendingJoins, pendingLeaves, pendingCommands)
			pendingJoins = pendingJoins[:0]
			pendingLeaves = pendingLeaves[:0]
			pendingCommands = pendingCommands[:0]
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// StepOnce advances the world by a single tick with the same ordering
// semantics as the server loop. Used by replays and tests.
func (w *World) StepOnce(dt float64, joins []JoinRequest, leaves []string, commands []CommandEnvelope) (tick uint64, digest string) {
	tick = w.tick.Load()
	w.stepInternal(dt, joins, leaves, commands)
	return tick, w.stateDigest(tick)
}

func (w *World) joinPlayer(req JoinRequest) JoinResponse {
	team := req.Team
	if team < 0 || team >= w.cfg.Teams {
		team = int(w.nextPlayerNum.Load()) % w.cfg.Teams
	}
	id := fmt.Sprintf("P%06d", w.nextPlayerNum.Add(1))
	p := &Player{ID: id, Name: req.Name, Team: team, Debug: req.Debug}
	w.players[id] = p
	if req.Out != nil {
		w.clients[id] = &clientState{Out: req.Out}
	}
	return JoinResponse{Welcome: protocol.WelcomeMsg{
		Type:            protocol.TypeWelcome,
		ProtocolVersion: protocol.Version,
		PlayerID:        id,
		Team:            team,
		WorldParams: protocol.WorldParams{
			TickRateHz:   w.cfg.TickRateHz,
			WorldW:       w.cfg.WorldW,
			WorldH:       w.cfg.WorldH,
			TuningDigest: w.cfg.TuningDigest,
		},
	}}
}

func (w *World) handleLeave(playerID string) {
	delete(w.clients, playerID)
	delete(w.players, playerID)
}

func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	// Drop one.
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
