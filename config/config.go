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
	Screen    ScreenConfig    `yaml:"screen"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Dummy     DummyConfig     `yaml:"dummy"`
	Laser     LaserConfig     `yaml:"laser"`
	Debris    DebrisConfig    `yaml:"debris"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// PhysicsConfig holds simulation physics parameters.
// Units are pixels; gravity is expressed in px/s^2 with Y pointing up.
type PhysicsConfig struct {
	DT                 float64 `yaml:"dt"`
	GravityY           float64 `yaml:"gravity_y"`
	VelocityIterations int     `yaml:"velocity_iterations"`
	PositionIterations int     `yaml:"position_iterations"`
	GroundY            float64 `yaml:"ground_y"`
	GroundHalfSpan     float64 `yaml:"ground_half_span"`
	GroundFriction     float64 `yaml:"ground_friction"`
	GroundRestitution  float64 `yaml:"ground_restitution"`
}

// DummyConfig holds agent body geometry and actuation parameters.
type DummyConfig struct {
	StartX        float64 `yaml:"start_x"`
	StartY        float64 `yaml:"start_y"`
	SpawnJitterY  float64 `yaml:"spawn_jitter_y"`
	TrunkWidth    float64 `yaml:"trunk_width"`
	TrunkHeight   float64 `yaml:"trunk_height"`
	TrunkMass     float64 `yaml:"trunk_mass"`
	HeadSize      float64 `yaml:"head_size"`
	HeadMass      float64 `yaml:"head_mass"`
	ArmWidth      float64 `yaml:"arm_width"`
	ArmLength     float64 `yaml:"arm_length"`
	UpperLegWidth float64 `yaml:"upper_leg_width"`
	UpperLegLen   float64 `yaml:"upper_leg_len"`
	LowerLegWidth float64 `yaml:"lower_leg_width"`
	LowerLegLen   float64 `yaml:"lower_leg_len"`
	LimbMass      float64 `yaml:"limb_mass"`
	LimbFriction  float64 `yaml:"limb_friction"`

	MotorRate       float64 `yaml:"motor_rate"`       // max target angular velocity, rad/s
	MotorMaxTorque  float64 `yaml:"motor_max_torque"` // motor torque cap
	VelocityCeiling float64 `yaml:"velocity_ceiling"` // joint speed normalization, rad/s
}

// LaserConfig holds the advancing hazard parameters.
type LaserConfig struct {
	StartX float64 `yaml:"start_x"`
	Speed  float64 `yaml:"speed"` // px/s, sweeping left to right
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// DebrisConfig holds death-burst particle parameters.
type DebrisConfig struct {
	Count    int     `yaml:"count"`
	Radius   float64 `yaml:"radius"`
	MinSpeed float64 `yaml:"min_speed"`
	MaxSpeed float64 `yaml:"max_speed"`
	MaxSpin  float64 `yaml:"max_spin"`
	CleanupY float64 `yaml:"cleanup_y"` // particles below this are culled
}

// EvolutionConfig holds generation evaluation parameters.
type EvolutionConfig struct {
	NEATConfig         string `yaml:"neat_config"`
	Generations        int    `yaml:"generations"`
	MaxTicksPerAgent   int    `yaml:"max_ticks_per_agent"` // isolated-path safety ceiling
	CheckpointInterval int    `yaml:"checkpoint_interval"`
	CheckpointPrefix   string `yaml:"checkpoint_prefix"`
}

// TelemetryConfig holds stats output parameters.
type TelemetryConfig struct {
	HallOfFameSize int `yaml:"hall_of_fame_size"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	InvDT    float64 // 1/dt, used for motor load readings
	ScreenW  float32
	ScreenH  float32
	NumInput int // sensor vector width fed to the network
	NumMotor int // motor command vector width
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
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

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
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
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()

	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.InvDT = 1.0 / c.Physics.DT
	c.Derived.ScreenW = float32(c.Screen.Width)
	c.Derived.ScreenH = float32(c.Screen.Height)
	// 6 joint angles + 7 segment orientations + 6 joint speeds
	// + 6 motor loads + 4 contact flags
	c.Derived.NumInput = 29
	c.Derived.NumMotor = 6
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
