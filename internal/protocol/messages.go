package protocol

// Command kinds accepted inside a COMMAND message.
const (
	CmdMove         = "MOVE"
	CmdGather       = "GATHER"
	CmdAttack       = "ATTACK"
	CmdHoldPosition = "HOLD_POSITION"
	CmdAttackMove   = "ATTACK_MOVE"
	CmdPatrol       = "PATROL"
	CmdStop         = "STOP"
	CmdSetRally     = "SET_RALLY"
	CmdBuild        = "BUILD"
	CmdProduce      = "PRODUCE"
	CmdSelect       = "SELECT"
)

// HELLO (client -> server)
type HelloMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	PlayerName      string `json:"player_name"`
	// Team is a request; the server assigns the final team in WELCOME.
	Team  int  `json:"team,omitempty"`
	Debug bool `json:"debug,omitempty"`
}

// WELCOME (server -> client)
type WelcomeMsg struct {
	Type            string      `json:"type"`
	ProtocolVersion string      `json:"protocol_version"`
	PlayerID        string      `json:"player_id"`
	Team            int         `json:"team"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	TickRateHz   int     `json:"tick_rate_hz"`
	WorldW       float64 `json:"world_w"`
	WorldH       float64 `json:"world_h"`
	TuningDigest string  `json:"tuning_digest,omitempty"`
}

// COMMAND (client -> server): a batch of orders applied at the next
// tick boundary, in order.
type CommandMsg struct {
	Type            string       `json:"type"`
	ProtocolVersion string       `json:"protocol_version"`
	Commands        []CommandReq `json:"commands"`
}

// CommandReq carries one order. Which fields matter depends on Kind;
// unused fields are ignored, not rejected.
type CommandReq struct {
	ID           string      `json:"id,omitempty"`
	Kind         string      `json:"kind"`
	UnitIDs      []string    `json:"unit_ids,omitempty"`
	TargetID     string      `json:"target_id,omitempty"`
	Point        *[2]float64 `json:"point,omitempty"`
	PointB       *[2]float64 `json:"point_b,omitempty"`
	BuildingID   string      `json:"building_id,omitempty"`
	UnitType     string      `json:"unit_type,omitempty"`
	BuildingType string      `json:"building_type,omitempty"`
	Selected     bool        `json:"selected,omitempty"`
}

// STATE (server -> client): full snapshot after a tick.
type StateMsg struct {
	Type            string         `json:"type"`
	ProtocolVersion string         `json:"protocol_version"`
	Tick            uint64         `json:"tick"`
	Stockpiles      map[string]int `json:"stockpiles"`
	GameOver        bool           `json:"game_over"`
	Winner          int            `json:"winner"`
	Entities        []EntityState  `json:"entities"`
	Events          []Event        `json:"events,omitempty"`
	Digest          string         `json:"digest,omitempty"`
}

type EntityState struct {
	ID        string       `json:"id"`
	Kind      string       `json:"kind"` // UNIT | BUILDING | RESOURCE
	Type      string       `json:"entity_type"`
	Team      int          `json:"team"`
	Pos       [2]float64   `json:"pos"`
	Size      float64      `json:"size"`
	Health    float64      `json:"health,omitempty"`
	MaxHealth float64      `json:"max_health,omitempty"`
	Behavior  string       `json:"behavior,omitempty"`
	Carrying  int          `json:"carrying,omitempty"`
	Amount    int          `json:"amount,omitempty"`
	QueueLen  int          `json:"queue_len,omitempty"`
	Rally     *[2]float64  `json:"rally,omitempty"`
	Selected  bool         `json:"selected,omitempty"`
	Debug     *EntityDebug `json:"debug,omitempty"`
}

// EntityDebug is only populated for sessions that asked for debug
// visualization in HELLO.
type EntityDebug struct {
	Phase      string      `json:"phase,omitempty"`
	MoveTarget *[2]float64 `json:"move_target,omitempty"`
	Slots      []string    `json:"slots,omitempty"`
}

// ERROR (server -> client): transport-level rejection of a malformed
// message. Command-level failures travel as COMMAND_REJECTED events in
// STATE instead.
type ErrorMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Code            string `json:"code"`
	Message         string `json:"message,omitempty"`
}

// Event is intentionally schemaless; "type" is always present.
type Event map[string]any
