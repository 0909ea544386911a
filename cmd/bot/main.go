package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"vectorrts.dev/internal/protocol"
)

// A scripted opponent. It speaks the same protocol a human client
// would: gather with workers, keep production queues busy, and throw
// attack waves at the enemy command center.
func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "bot", "player name")
		team     = flag.Int("team", 1, "requested team")
		waveSize = flag.Int("wave", 6, "army size that triggers an attack wave")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
		Team:            *team,
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	b := &bot{conn: conn, log: logger, waveSize: *waveSize}

	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			b.playerID = w.PlayerID
			b.team = w.Team
			logger.Printf("WELCOME player_id=%s team=%d tick_rate=%d", w.PlayerID, w.Team, w.WorldParams.TickRateHz)

		case protocol.TypeState:
			var st protocol.StateMsg
			if err := json.Unmarshal(msg, &st); err != nil {
				continue
			}
			b.handleState(&st)

		case protocol.TypeError:
			var em protocol.ErrorMsg
			if err := json.Unmarshal(msg, &em); err != nil {
				continue
			}
			logger.Printf("server error: %s %s", em.Code, em.Message)
		}
	}
}

type bot struct {
	conn     *websocket.Conn
	log      *log.Logger
	playerID string
	team     int
	waveSize int

	cmdSeq   int
	attacked bool
}

// handleState reacts once a second; orders are idempotent enough that
// re-issuing them is harmless.
func (b *bot) handleState(st *protocol.StateMsg) {
	if b.playerID == "" || st.GameOver {
		if st.GameOver {
			b.log.Printf("game over, winner=%d", st.Winner)
		}
		return
	}
	if st.Tick%30 != 0 {
		return
	}

	var (
		idleWorkers []string
		army        []string
		ownCC       *protocol.EntityState
		ownBarracks *protocol.EntityState
		enemyCC     *protocol.EntityState
		resources   []protocol.EntityState
	)
	for i := range st.Entities {
		e := &st.Entities[i]
		switch e.Kind {
		case "RESOURCE":
			resources = append(resources, *e)
		case "BUILDING":
			switch {
			case e.Type == "COMMAND_CENTER" && e.Team == b.team:
				ownCC = e
			case e.Type == "COMMAND_CENTER" && e.Team != b.team:
				enemyCC = e
			case e.Type == "BARRACKS" && e.Team == b.team:
				ownBarracks = e
			}
		case "UNIT":
			if e.Team != b.team {
				continue
			}
			if e.Type == "WORKER" {
				if e.Behavior == "IDLE" {
					idleWorkers = append(idleWorkers, e.ID)
				}
			} else if e.Behavior == "IDLE" || e.Behavior == "HOLD_POSITION" {
				army = append(army, e.ID)
			}
		}
	}

	stock := st.Stockpiles[fmt.Sprintf("%d", b.team)]
	var cmds []protocol.CommandReq

	// Idle workers mine the closest resource.
	if len(idleWorkers) > 0 && len(resources) > 0 && ownCC != nil {
		cmds = append(cmds, protocol.CommandReq{
			ID:       b.nextID("gather"),
			Kind:     protocol.CmdGather,
			UnitIDs:  idleWorkers,
			TargetID: nearestResource(resources, ownCC.Pos),
		})
	}

	// Keep the queues busy.
	if ownCC != nil && ownCC.QueueLen == 0 && stock >= 50 {
		cmds = append(cmds, protocol.CommandReq{
			ID:         b.nextID("produce"),
			Kind:       protocol.CmdProduce,
			BuildingID: ownCC.ID,
			UnitType:   "WORKER",
		})
		stock -= 50
	}
	if ownBarracks != nil && ownBarracks.QueueLen == 0 && stock >= 75 {
		cmds = append(cmds, protocol.CommandReq{
			ID:         b.nextID("produce"),
			Kind:       protocol.CmdProduce,
			BuildingID: ownBarracks.ID,
			UnitType:   "RAIDER",
		})
	}

	// Attack wave once the army is big enough.
	if enemyCC != nil && len(army) >= b.waveSize {
		cmds = append(cmds, protocol.CommandReq{
			ID:      b.nextID("wave"),
			Kind:    protocol.CmdAttackMove,
			UnitIDs: army,
			Point:   &[2]float64{enemyCC.Pos[0], enemyCC.Pos[1]},
		})
		if !b.attacked {
			b.log.Printf("attack wave of %d at tick %d", len(army), st.Tick)
			b.attacked = true
		}
	}

	if len(cmds) == 0 {
		return
	}
	_ = b.conn.WriteJSON(protocol.CommandMsg{
		Type:            protocol.TypeCommand,
		ProtocolVersion: protocol.Version,
		Commands:        cmds,
	})
}

func (b *bot) nextID(tag string) string {
	b.cmdSeq++
	return fmt.Sprintf("%s_%d", tag, b.cmdSeq)
}

func nearestResource(resources []protocol.EntityState, from [2]float64) string {
	best := ""
	bestD := math.MaxFloat64
	for _, r := range resources {
		dx, dy := r.Pos[0]-from[0], r.Pos[1]-from[1]
		if d := dx*dx + dy*dy; d < bestD {
			bestD = d
			best = r.ID
		}
	}
	return best
}
