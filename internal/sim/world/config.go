package world

import "vectorrts.dev/internal/sim/tuning"

type Config struct {
	ID             string
	TickRateHz     int
	MaxStepSeconds float64

	WorldW            float64
	WorldH            float64
	Teams             int
	StartingStockpile int

	Friction           float64
	Restitution        float64
	SteeringForce      float64
	MaxSpeedMultiplier float64
	ArrivalThreshold   float64
	SlowdownRadius     float64
	CollisionCell      float64

	Units     map[string]UnitStats
	Buildings map[string]BuildingStats
	Resource  ResourceStats

	TuningDigest string
}

type UnitStats struct {
	Size         float64
	Health       float64
	Speed        float64
	Mass         float64
	CarryCap     int
	Damage       float64
	Range        float64
	Cooldown     float64
	AggroRange   float64
	Cost         int
	BuildSeconds float64
}

type BuildingStats struct {
	Size     float64
	Health   float64
	Cost     int
	Damage   float64
	Range    float64
	Cooldown float64
}

type ResourceStats struct {
	Size           float64
	Amount         int
	HarvestAmount  int
	HarvestSeconds float64
	Slots          int
}

func (c *Config) applyDefaults() {
	if c.TickRateHz <= 0 {
		c.TickRateHz = 30
	}
	if c.MaxStepSeconds <= 0 {
		c.MaxStepSeconds = 1.0 / 30.0
	}
	if c.WorldW <= 0 {
		c.WorldW = 4000
	}
	if c.WorldH <= 0 {
		c.WorldH = 3000
	}
	if c.Teams <= 0 {
		c.Teams = 2
	}
	if c.StartingStockpile < 0 {
		c.StartingStockpile = 0
	}
	if c.Friction <= 0 || c.Friction >= 1 {
		c.Friction = 0.95
	}
	if c.Restitution < 0 || c.Restitution > 1 {
		c.Restitution = 0.5
	}
	if c.SteeringForce <= 0 {
		c.SteeringForce = 1000
	}
	if c.MaxSpeedMultiplier <= 0 {
		c.MaxSpeedMultiplier = 1.2
	}
	if c.ArrivalThreshold <= 0 {
		c.ArrivalThreshold = 20
	}
	if c.SlowdownRadius <= 0 {
		c.SlowdownRadius = 50
	}
	if c.CollisionCell <= 0 {
		c.CollisionCell = 120
	}
	if c.Units == nil {
		c.Units = map[string]UnitStats{}
	}
	if c.Buildings == nil {
		c.Buildings = map[string]BuildingStats{}
	}
	if c.Resource.Size <= 0 {
		c.Resource.Size = 30
	}
	if c.Resource.Amount <= 0 {
		c.Resource.Amount = 500
	}
	if c.Resource.HarvestAmount <= 0 {
		c.Resource.HarvestAmount = 10
	}
	if c.Resource.HarvestSeconds <= 0 {
		c.Resource.HarvestSeconds = 1.5
	}
	if c.Resource.Slots <= 0 {
		c.Resource.Slots = 4
	}
}

// ConfigFromTuning maps the loaded stat tables into a world config.
func ConfigFromTuning(id string, t tuning.Tuning) Config {
	c := Config{
		ID:                 id,
		TickRateHz:         t.TickRateHz,
		MaxStepSeconds:     t.MaxStepSeconds,
		WorldW:             t.WorldW,
		WorldH:             t.WorldH,
		StartingStockpile:  t.StartingStockpile,
		Friction:           t.Physics.Friction,
		Restitution:        t.Physics.Restitution,
		SteeringForce:      t.Physics.SteeringForce,
		MaxSpeedMultiplier: t.Physics.MaxSpeedMultiplier,
		ArrivalThreshold:   t.Physics.ArrivalThreshold,
		SlowdownRadius:     t.Physics.SlowdownRadius,
		CollisionCell:      t.Physics.CollisionCell,
		Resource: ResourceStats{
			Size:           t.Resource.Size,
			Amount:         t.Resource.Amount,
			HarvestAmount:  t.Resource.HarvestAmount,
			HarvestSeconds: t.Resource.HarvestSeconds,
			Slots:          t.Resource.Slots,
		},
		TuningDigest: t.Digest,
	}
	c.Units = make(map[string]UnitStats, len(t.Units))
	for name, u := range t.Units {
		mass := u.Mass
		if mass <= 0 {
			mass = u.Size
		}
		c.Units[name] = UnitStats{
			Size:         u.Size,
			Health:       u.Health,
			Speed:        u.Speed,
			Mass:         mass,
			CarryCap:     u.CarryCap,
			Damage:       u.Damage,
			Range:        u.Range,
			Cooldown:     u.Cooldown,
			AggroRange:   u.AggroRange,
			Cost:         u.Cost,
			BuildSeconds: u.BuildSeconds,
		}
	}
	c.Buildings = make(map[string]BuildingStats, len(t.Buildings))
	for name, b := range t.Buildings {
		c.Buildings[name] = BuildingStats(b)
	}
	return c
}
