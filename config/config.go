// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Arena     ArenaConfig     `yaml:"arena"`
	Tag       TagConfig       `yaml:"tag"`
	Agents    []AgentConfig   `yaml:"agents"`
	Steering  SteeringConfig  `yaml:"steering"`
	Memory    MemoryConfig    `yaml:"memory"`
	Stuck     StuckConfig     `yaml:"stuck"`
	Mutation  MutationConfig  `yaml:"mutation"`
	Intent    IntentConfig    `yaml:"intent"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// PhysicsConfig holds fixed-timestep parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"` // seconds per physics step
}

// ArenaConfig describes the square play area and its static obstacles.
// One table, consumed identically by steering and stuck recovery.
type ArenaConfig struct {
	HalfExtent   float64          `yaml:"half_extent"`
	CornerMargin float64          `yaml:"corner_margin"` // distance to both walls that counts as cornered
	Obstacles    []ObstacleConfig `yaml:"obstacles"`
}

// ObstacleConfig is one static obstacle, circular or rectangular.
type ObstacleConfig struct {
	Name   string  `yaml:"name"`
	Shape  string  `yaml:"shape"` // "circle" or "rect"
	X      float64 `yaml:"x"`
	Z      float64 `yaml:"z"`
	Radius float64 `yaml:"radius"`
	HalfW  float64 `yaml:"half_w"`
	HalfD  float64 `yaml:"half_d"`
}

// TagConfig holds the tag rules.
type TagConfig struct {
	Distance      float64 `yaml:"distance"`       // tag range, strict inequality
	Cooldown      float64 `yaml:"cooldown"`       // tagger immunity seconds
	TauntDuration float64 `yaml:"taunt_duration"` // post-tag celebration seconds
}

// AgentConfig is one agent personality. The simulation requires exactly
// five entries.
type AgentConfig struct {
	Name          string   `yaml:"name"`
	Color         string   `yaml:"color"`
	BaseSpeed     float64  `yaml:"base_speed"`
	PanicDistance float64  `yaml:"panic_distance"`
	Aggression    float64  `yaml:"aggression"`
	Risk          float64  `yaml:"risk"`
	Playfulness   float64  `yaml:"playfulness"`
	GeneBias      GeneBias `yaml:"gene_bias"`
}

// GeneBias seeds an agent's starting traits.
type GeneBias struct {
	Dash  float64 `yaml:"dash"`
	Wings float64 `yaml:"wings"`
	Juke  float64 `yaml:"juke"`
}

// SteeringConfig holds the force-composition weights.
type SteeringConfig struct {
	SeekWeight       float64 `yaml:"seek_weight"`
	IntentWeightHunt float64 `yaml:"intent_weight_hunt"`
	IntentWeightFlee float64 `yaml:"intent_weight_flee"`
	IntentWeightRoam float64 `yaml:"intent_weight_roam"`
	FleeScatter      float64 `yaml:"flee_scatter"`
	WanderStrength   float64 `yaml:"wander_strength"`
	WanderFreq       float64 `yaml:"wander_freq"`
	MemoryBiasWeight float64 `yaml:"memory_bias_weight"`
	SprintBoost      float64 `yaml:"sprint_boost"`

	SeparationRadius float64 `yaml:"separation_radius"`
	SeparationWeight float64 `yaml:"separation_weight"`
	SeparationCap    float64 `yaml:"separation_cap"`

	AvoidRadius   float64 `yaml:"avoid_radius"`
	AvoidWeight   float64 `yaml:"avoid_weight"`
	AvoidMinForce float64 `yaml:"avoid_min_force"`

	ContainWeight float64 `yaml:"contain_weight"`
	MaxSpeedScale float64 `yaml:"max_speed_scale"`

	HoverAltitude float64 `yaml:"hover_altitude"`
	HoverGain     float64 `yaml:"hover_gain"`
	HoverOsc      float64 `yaml:"hover_osc"`
	DescendRate   float64 `yaml:"descend_rate"`
}

// MemoryConfig holds the spatial learning parameters.
type MemoryConfig struct {
	GridSize        int     `yaml:"grid_size"`
	TrailLength     int     `yaml:"trail_length"`
	SampleInterval  float64 `yaml:"sample_interval"`
	DecayInterval   float64 `yaml:"decay_interval"`
	DecayFactor     float64 `yaml:"decay_factor"`
	ConfidenceFloor float64 `yaml:"confidence_floor"`
	LessonsPerGen   int     `yaml:"lessons_per_gen"`
	NeighborRadius  int     `yaml:"neighbor_radius"`
}

// StuckConfig holds the stuck-escalation thresholds and scoring weights.
type StuckConfig struct {
	MinDisplacement float64 `yaml:"min_displacement"`
	MinIntent       float64 `yaml:"min_intent"`

	DiagnoseAfter int `yaml:"diagnose_after"`
	EscapeAfter   int `yaml:"escape_after"`
	RelocateAfter int `yaml:"relocate_after"`

	EscapeSamples  int     `yaml:"escape_samples"`
	EscapeDistance float64 `yaml:"escape_distance"`
	EscapeSpeed    float64 `yaml:"escape_speed"`

	ClearanceCap       float64 `yaml:"clearance_cap"`
	InBoundsBonus      float64 `yaml:"in_bounds_bonus"`
	CenterPull         float64 `yaml:"center_pull"`
	AgentPenalty       float64 `yaml:"agent_penalty"`
	AgentPenaltyRadius float64 `yaml:"agent_penalty_radius"`

	RelocateGrid  int     `yaml:"relocate_grid"`
	TravelPenalty float64 `yaml:"travel_penalty"`
}

// MutationConfig holds gene mutation parameters.
type MutationConfig struct {
	TaggedSigma        float64 `yaml:"tagged_sigma"`
	TaggedBias         float64 `yaml:"tagged_bias"`
	ReinforceAmount    float64 `yaml:"reinforce_amount"`
	BackgroundSigma    float64 `yaml:"background_sigma"`
	BackgroundInterval float64 `yaml:"background_interval"` // seconds between universal mutations
}

// IntentConfig holds the external intent boundary settings.
type IntentConfig struct {
	Enabled     bool    `yaml:"enabled"`
	URL         string  `yaml:"url"`      // websocket endpoint of the intent bridge
	Cadence     float64 `yaml:"cadence"`  // seconds between snapshots
	Timeout     float64 `yaml:"timeout"`  // read deadline per exchange
	PosQuantize float64 `yaml:"quantize"` // position quantization step in the snapshot
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded
// defaults if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate rejects configurations the simulation cannot run with.
func (c *Config) validate() error {
	if len(c.Agents) != 5 {
		return fmt.Errorf("config: exactly 5 agents required, got %d", len(c.Agents))
	}
	if c.Physics.DT <= 0 {
		return fmt.Errorf("config: physics.dt must be positive")
	}
	if c.Arena.HalfExtent <= 0 {
		return fmt.Errorf("config: arena.half_extent must be positive")
	}
	if c.Memory.GridSize <= 0 {
		return fmt.Errorf("config: memory.grid_size must be positive")
	}
	if c.Memory.TrailLength <= 0 {
		return fmt.Errorf("config: memory.trail_length must be positive")
	}
	if c.Stuck.EscapeSamples <= 0 {
		return fmt.Errorf("config: stuck.escape_samples must be positive")
	}
	for i, o := range c.Arena.Obstacles {
		switch o.Shape {
		case "circle":
			if o.Radius <= 0 {
				return fmt.Errorf("config: obstacle %d (%s): circle needs a positive radius", i, o.Name)
			}
		case "rect":
			if o.HalfW <= 0 || o.HalfD <= 0 {
				return fmt.Errorf("config: obstacle %d (%s): rect needs positive half extents", i, o.Name)
			}
		default:
			return fmt.Errorf("config: obstacle %d (%s): unknown shape %q", i, o.Name, o.Shape)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
