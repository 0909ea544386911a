package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz     int     `yaml:"tick_rate_hz"`
	MaxStepSeconds float64 `yaml:"max_step_seconds"`

	WorldW            float64 `yaml:"world_w"`
	WorldH            float64 `yaml:"world_h"`
	StartingStockpile int     `yaml:"starting_stockpile"`

	Physics   Physics                  `yaml:"physics"`
	Units     map[string]UnitStats     `yaml:"units"`
	Buildings map[string]BuildingStats `yaml:"buildings"`
	Resource  ResourceStats            `yaml:"resource"`

	// Digest is the sha256 of the raw file, filled in by Load.
	Digest string `yaml:"-"`
}

type Physics struct {
	Friction           float64 `yaml:"friction"`
	Restitution        float64 `yaml:"restitution"`
	SteeringForce      float64 `yaml:"steering_force"`
	MaxSpeedMultiplier float64 `yaml:"max_speed_multiplier"`
	ArrivalThreshold   float64 `yaml:"arrival_threshold"`
	SlowdownRadius     float64 `yaml:"slowdown_radius"`
	CollisionCell      float64 `yaml:"collision_cell"`
}

type UnitStats struct {
	Size         float64 `yaml:"size"`
	Health       float64 `yaml:"health"`
	Speed        float64 `yaml:"speed"`
	Mass         float64 `yaml:"mass"`
	CarryCap     int     `yaml:"carry_capacity"`
	Damage       float64 `yaml:"damage"`
	Range        float64 `yaml:"range"`
	Cooldown     float64 `yaml:"cooldown"`
	AggroRange   float64 `yaml:"aggro_range"`
	Cost         int     `yaml:"cost"`
	BuildSeconds float64 `yaml:"build_seconds"`
}

type BuildingStats struct {
	Size     float64 `yaml:"size"`
	Health   float64 `yaml:"health"`
	Cost     int     `yaml:"cost"`
	Damage   float64 `yaml:"damage"`
	Range    float64 `yaml:"range"`
	Cooldown float64 `yaml:"cooldown"`
}

type ResourceStats struct {
	Size           float64 `yaml:"size"`
	Amount         int     `yaml:"amount"`
	HarvestAmount  int     `yaml:"harvest_amount"`
	HarvestSeconds float64 `yaml:"harvest_seconds"`
	Slots          int     `yaml:"slots"`
}

func Load(path string) (Tuning, error) {
	var t Tuning
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	sum := sha256.Sum256(raw)
	t.Digest = hex.EncodeToString(sum[:])
	return t, nil
}
