package physics

import (
	"time"
)

// Closeness shapes the extra repulsion between nodes of the same kind:
// Base + max(floor, 1 - d/Radius) * Range. Closer pairs repel harder.
type Closeness struct {
	Base   float64 `toml:"base" json:"base"`
	Range  float64 `toml:"range" json:"range"`
	Radius float64 `toml:"radius" json:"radius"`
}

// factor returns the closeness multiplier at distance d
func (c Closeness) factor(d, floor float64) float64 {
	proximity := 1.0
	if c.Radius > 0 {
		proximity = 1 - d/c.Radius
	}
	if proximity < floor {
		proximity = floor
	}
	return c.Base + proximity*c.Range
}

// Config holds the physics parameters. It is read at construction time;
// changing it means building a new Engine.
type Config struct {
	Repulsion       float64 `toml:"repulsion" json:"repulsion"`               // Coulomb-like repulsion magnitude
	Attraction      float64 `toml:"attraction" json:"attraction"`             // base spring constant
	SpringLength    float64 `toml:"spring_length" json:"springLength"`        // spring rest length
	Damping         float64 `toml:"damping" json:"damping"`                   // velocity multiplier per step
	Gravity         float64 `toml:"gravity" json:"gravity"`                   // pull toward the origin
	MaxVelocity     float64 `toml:"max_velocity" json:"maxVelocity"`          // speed cap, units/s
	DragSpringBoost float64 `toml:"drag_spring_boost" json:"dragSpringBoost"` // spring multiplier next to a pinned node

	// Tuning constants
	MixedSpringBoost   float64   `toml:"mixed_spring_boost" json:"mixedSpringBoost"`
	MainSpringBoost    float64   `toml:"main_spring_boost" json:"mainSpringBoost"`
	GravityRadius      float64   `toml:"gravity_radius" json:"gravityRadius"`
	CategoryCutoff     float64   `toml:"category_cutoff" json:"categoryCutoff"`
	CommunityCutoff    float64   `toml:"community_cutoff" json:"communityCutoff"`
	MixedCutoff        float64   `toml:"mixed_cutoff" json:"mixedCutoff"`
	MinSeparation      float64   `toml:"min_separation" json:"minSeparation"`
	OverlapBoost       float64   `toml:"overlap_boost" json:"overlapBoost"`
	MaxForceRatio      float64   `toml:"max_force_ratio" json:"maxForceRatio"`
	ClosenessFloor     float64   `toml:"closeness_floor" json:"closenessFloor"`
	CategoryCloseness  Closeness `toml:"category_closeness" json:"categoryCloseness"`
	CommunityCloseness Closeness `toml:"community_closeness" json:"communityCloseness"`

	// Scheduling
	MaxStepMillis          float64 `toml:"max_step_ms" json:"maxStepMs"`
	TargetFPS              float64 `toml:"target_fps" json:"targetFps"`
	StabilizationThreshold float64 `toml:"stabilization_threshold" json:"stabilizationThreshold"`
}

// DefaultConfig returns the tuned parameters used by the catalog view
func DefaultConfig() Config {
	return Config{
		Repulsion:       15000,
		Attraction:      0.8,
		SpringLength:    150,
		Damping:         0.9,
		Gravity:         0.02,
		MaxVelocity:     300,
		DragSpringBoost: 2.0,

		MixedSpringBoost:   1.2,
		MainSpringBoost:    1.5,
		GravityRadius:      600,
		CategoryCutoff:     2500,
		CommunityCutoff:    1000,
		MixedCutoff:        1200,
		MinSeparation:      50,
		OverlapBoost:       3,
		MaxForceRatio:      0.1,
		ClosenessFloor:     0.1,
		CategoryCloseness:  Closeness{Base: 15, Range: 35, Radius: 1500},
		CommunityCloseness: Closeness{Base: 7.5, Range: 17.5, Radius: 800},

		MaxStepMillis:          32,
		TargetFPS:              60,
		StabilizationThreshold: 0.5,
	}
}

// MaxStep is the cap applied to a single step's delta time
func (c *Config) MaxStep() time.Duration {
	return time.Duration(c.MaxStepMillis * float64(time.Millisecond))
}

// FrameInterval is the minimum wall-clock time between applied steps
func (c *Config) FrameInterval() time.Duration {
	if c.TargetFPS <= 0 {
		return 0
	}
	return time.Duration(float64(time.Second) / c.TargetFPS)
}

// ticksPerFrame is how many host ticks fire per frame interval. Tick drops
// the extras, so a frame landing just short of the interval delays the
// step by a fraction of a frame instead of a whole one.
const ticksPerFrame = 8

// TickInterval is the period for a host ticker driving Tick. It falls
// back to 60 frames per second when TargetFPS is unset.
func (c *Config) TickInterval() time.Duration {
	interval := c.FrameInterval()
	if interval <= 0 {
		interval = time.Second / 60
	}
	return interval / ticksPerFrame
}
