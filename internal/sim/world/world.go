package world

import (
	"sort"
	"sync/atomic"

	"vectorrts.dev/internal/protocol"
)

type JoinRequest struct {
	Name  string
	Team  int
	Debug bool
	Out   chan []byte
	Resp  chan JoinResponse
}

type JoinResponse struct {
	Welcome protocol.WelcomeMsg
}

// CommandEnvelope is one COMMAND message attributed to a session.
type CommandEnvelope struct {
	PlayerID string
	Commands []protocol.CommandReq
}

type Player struct {
	ID    string
	Name  string
	Team  int
	Debug bool
}

// MatchResult is handed to the result sink exactly once, at game over.
type MatchResult struct {
	WorldID string
	Tick    uint64
	Winner  int
}

type TickLogger interface {
	WriteTick(entry TickLogEntry) error
}

type TickLogEntry struct {
	Tick     uint64            `json:"tick"`
	Joins    []RecordedJoin    `json:"joins,omitempty"`
	Leaves   []string          `json:"leaves,omitempty"`
	Commands []RecordedCommand `json:"commands,omitempty"`
	Digest   string            `json:"digest"`
}

type RecordedJoin struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Team     int    `json:"team"`
}

type RecordedCommand struct {
	PlayerID string                `json:"player_id"`
	Commands []protocol.CommandReq `json:"commands"`
}

// Anomalies counts defensive corrections made inside ticks. The loop
// never logs; callers read these through Metrics.
type Anomalies struct {
	NaNResets  uint64
	DtClamps   uint64
	BadTargets uint64
}

type WorldMetrics struct {
	Tick      uint64
	Units     int
	Buildings int
	Resources int
	Players   int
	StepMS    float64
	Anomalies Anomalies
}

type clientState struct {
	Out chan []byte
}

// World is a single-threaded authoritative simulation. All state must
// be accessed only from the world loop goroutine; tests drive it
// through StepOnce instead.
type World struct {
	cfg Config

	tick atomic.Uint64

	units      map[string]*Unit
	buildings  map[string]*Building
	resources  map[string]*Resource
	stockpiles map[int]int

	players map[string]*Player
	clients map[string]*clientState

	events []protocol.Event

	inbox chan CommandEnvelope
	join  chan JoinRequest
	leave chan string
	stop  chan struct{}

	nextUnitNum     atomic.Uint64
	nextBuildingNum atomic.Uint64
	nextResourceNum atomic.Uint64
	nextPlayerNum   atomic.Uint64

	spawnCursor int // index into the spawn ring, per-world

	tickLogger TickLogger
	resultSink func(MatchResult)

	anomalies Anomalies
	metrics   atomic.Value // WorldMetrics

	competitive bool // game-over evaluation armed by scenario setup
	gameOver    bool
	winner      int
}

func New(cfg Config) *World {
	cfg.applyDefaults()
	w := &World{
		cfg:        cfg,
		units:      map[string]*Unit{},
		buildings:  map[string]*Building{},
		resources:  map[string]*Resource{},
		stockpiles: map[int]int{},
		players:    map[string]*Player{},
		clients:    map[string]*clientState{},
		inbox:      make(chan CommandEnvelope, 1024),
		join:       make(chan JoinRequest, 64),
		leave:      make(chan string, 64),
		stop:       make(chan struct{}),
		winner:     NoTeam,
	}
	for t := 0; t < cfg.Teams; t++ {
		w.stockpiles[t] = cfg.StartingStockpile
	}
	return w
}

func (w *World) SetTickLogger(l TickLogger)         { w.tickLogger = l }
func (w *World) SetResultSink(fn func(MatchResult)) { w.resultSink = fn }

func (w *World) Inbox() chan<- CommandEnvelope { return w.inbox }
func (w *World) Join() chan<- JoinRequest      { return w.join }
func (w *World) Leave() chan<- string          { return w.leave }

func (w *World) ID() string {
	if w == nil {
		return ""
	}
	return w.cfg.ID
}

func (w *World) TickRateHz() int {
	if w == nil {
		return 0
	}
	return w.cfg.TickRateHz
}

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Metrics() WorldMetrics {
	if m, ok := w.metrics.Load().(WorldMetrics); ok {
		return m
	}
	return WorldMetrics{}
}

func (w *World) addEvent(ev protocol.Event) {
	w.events = append(w.events, ev)
}

// Eventf builds an event from a type tag and key/value pairs.
func Eventf(typ string, kv ...any) protocol.Event {
	ev := protocol.Event{"type": typ}
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			ev[k] = kv[i+1]
		}
	}
	return ev
}

func (w *World) sortedUnits() []*Unit {
	out := make([]*Unit, 0, len(w.units))
	for _, u := range w.units {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) sortedBuildings() []*Building {
	out := make([]*Building, 0, len(w.buildings))
	for _, b := range w.buildings {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) sortedResources() []*Resource {
	out := make([]*Resource, 0, len(w.resources))
	for _, r := range w.resources {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (w *World) sortedTeams() []int {
	out := make([]int, 0, len(w.stockpiles))
	for t := range w.stockpiles {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}
