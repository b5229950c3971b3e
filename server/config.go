package main

import (
	_ "embed"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment overrides, applied after the YAML layers
const (
	EnvConfigPath = "CELLCLASH_CONFIG"
	EnvAddr       = "CELLCLASH_ADDR"
	EnvStaticDir  = "CELLCLASH_STATIC_DIR"
	EnvLogLevel   = "CELLCLASH_LOG_LEVEL"

	WebSocketPath   = "/ws/{code}"
	LeaderboardSize = 10
	RoomCodeLength  = 6
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable of the server and the simulation.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	World   WorldConfig   `yaml:"world"`
	Rooms   RoomsConfig   `yaml:"rooms"`
	Blob    BlobConfig    `yaml:"blob"`
	Physics PhysicsConfig `yaml:"physics"`
	Engulf  EngulfConfig  `yaml:"engulf"`
	Split   SplitConfig   `yaml:"split"`
	Virus   VirusConfig   `yaml:"virus"`
	Bots    BotsConfig    `yaml:"bots"`
	Players PlayersConfig `yaml:"players"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	StaticDir         string        `yaml:"static_dir"`
	BroadcastHz       int           `yaml:"broadcast_hz"`
	RoomIdleTimeout   time.Duration `yaml:"room_idle_timeout"`
	RoomSweepInterval time.Duration `yaml:"room_sweep_interval"`
	MaxRooms          int           `yaml:"max_rooms"`
}

// WorldConfig describes the square play field and its static population.
type WorldConfig struct {
	Size           float64 `yaml:"size"`      // side length, world spans [0, Size] on both axes
	TickRate       int     `yaml:"tick_rate"` // ticks per second
	PelletTarget   int     `yaml:"pellet_target"`
	PelletRadius   float64 `yaml:"pellet_radius"`
	PelletMaxValue int     `yaml:"pellet_max_value"`
	VirusCount     int     `yaml:"virus_count"`
	VirusRadius    float64 `yaml:"virus_radius"`
	SpawnMargin    float64 `yaml:"spawn_margin"` // new agents are kept this far from the edges
}

// TickDuration is the fixed simulation step in seconds.
func (w WorldConfig) TickDuration() float64 {
	return 1.0 / float64(w.TickRate)
}

// IntRange is an inclusive clamp range. Default is used when a caller
// does not ask for a value at all.
type IntRange struct {
	Min     int `yaml:"min"`
	Max     int `yaml:"max"`
	Default int `yaml:"default"`
}

func (r IntRange) Clamp(v int) int {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

type FloatRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Lerp maps t in [0,1] onto the range.
func (r FloatRange) Lerp(t float64) float64 {
	return r.Min + (r.Max-r.Min)*t
}

type RoomsConfig struct {
	MaxPlayers IntRange `yaml:"max_players"`
	Bots       IntRange `yaml:"bots"`
}

// BlobConfig holds floors, growth and starting sizes.
type BlobConfig struct {
	MinRadius          float64    `yaml:"min_radius"`
	MinMass            float64    `yaml:"min_mass"`
	SoftMassCap        float64    `yaml:"soft_mass_cap"`
	MinGrowthFraction  float64    `yaml:"min_growth_fraction"`
	RadiusGrowthFactor float64    `yaml:"radius_growth_factor"` // radius gained per unit of applied mass
	HumanStartMass     float64    `yaml:"human_start_mass"`
	HumanStartRadius   float64    `yaml:"human_start_radius"`
	BotStartMass       FloatRange `yaml:"bot_start_mass"`
	BotStartRadius     FloatRange `yaml:"bot_start_radius"`
}

// PhysicsConfig rates are per second.
type PhysicsConfig struct {
	BaseSpeed           float64 `yaml:"base_speed"`
	SpeedSizeFactor     float64 `yaml:"speed_size_factor"`
	MinSpeedFactor      float64 `yaml:"min_speed_factor"`
	BoostMultiplier     float64 `yaml:"boost_multiplier"`
	KnockbackDecay      float64 `yaml:"knockback_decay"`
	HumanDecayRate      float64 `yaml:"human_decay_rate"`
	BotDecayRate        float64 `yaml:"bot_decay_rate"`
	RadiusDecayFraction float64 `yaml:"radius_decay_fraction"`
	BoostMassCost       float64 `yaml:"boost_mass_cost"`
	BoostRadiusCost     float64 `yaml:"boost_radius_cost"`
}

type EngulfConfig struct {
	MarginRatio     float64 `yaml:"margin_ratio"`
	OverlapFactor   float64 `yaml:"overlap_factor"`
	MinGainFraction float64 `yaml:"min_gain_fraction"`
	MaxGainFraction float64 `yaml:"max_gain_fraction"`
}

type SplitConfig struct {
	MinRadiusMultiple float64 `yaml:"min_radius_multiple"`
	RadiusFactor      float64 `yaml:"radius_factor"`
	Impulse           float64 `yaml:"impulse"`
	Gap               float64 `yaml:"gap"`
}

type VirusConfig struct {
	PopRadius     float64    `yaml:"pop_radius"`
	Fragments     int        `yaml:"fragments"`
	FragmentSpeed FloatRange `yaml:"fragment_speed"`
	BounceImpulse float64    `yaml:"bounce_impulse"`
}

type BotsConfig struct {
	PerceptionRadius float64 `yaml:"perception_radius"`
	ThreatRatio      float64 `yaml:"threat_ratio"`
	PreyRatio        float64 `yaml:"prey_ratio"`
	ChaseBoostChance float64 `yaml:"chase_boost_chance"`
}

type PlayersConfig struct {
	InactivityTimeout time.Duration `yaml:"inactivity_timeout"`
	NameMaxLen        int           `yaml:"name_max_len"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig parses the embedded defaults.
func DefaultConfig() (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, errors.Wrap(err, "parse embedded defaults")
	}
	return cfg, nil
}

// LoadConfig overlays the YAML file at path (if any) on the defaults,
// applies environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg, err := DefaultConfig()
	if err != nil {
		return nil, err
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv(EnvStaticDir); v != "" {
		cfg.Server.StaticDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the simulation cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.World.Size <= 0:
		return errors.New("world.size must be positive")
	case c.World.TickRate <= 0:
		return errors.New("world.tick_rate must be positive")
	case 2*(c.World.SpawnMargin+c.maxSpawnRadius()) >= c.World.Size:
		return errors.New("world.spawn_margin leaves no spawn area")
	case c.World.PelletTarget < 0 || c.World.VirusCount < 0:
		return errors.New("world populations must not be negative")
	case c.World.PelletMaxValue < 1:
		return errors.New("world.pellet_max_value must be at least 1")
	case c.Rooms.MaxPlayers.Min > c.Rooms.MaxPlayers.Max || c.Rooms.Bots.Min > c.Rooms.Bots.Max:
		return errors.New("rooms ranges are inverted")
	case c.Blob.MinRadius <= 0 || c.Blob.MinMass <= 0:
		return errors.New("blob floors must be positive")
	case c.Blob.SoftMassCap <= 0:
		return errors.New("blob.soft_mass_cap must be positive")
	case c.Blob.BotStartMass.Min > c.Blob.BotStartMass.Max || c.Blob.BotStartRadius.Min > c.Blob.BotStartRadius.Max:
		return errors.New("blob bot start ranges are inverted")
	case c.Engulf.MarginRatio <= 1:
		return errors.New("engulf.margin_ratio must exceed 1")
	case c.Engulf.MinGainFraction > c.Engulf.MaxGainFraction:
		return errors.New("engulf gain band is inverted")
	case c.Bots.ThreatRatio <= 1 || c.Bots.PreyRatio <= 1:
		return errors.New("bots ratios must exceed 1")
	case c.Virus.Fragments < 2:
		return errors.New("virus.fragments must be at least 2")
	case c.Virus.FragmentSpeed.Min > c.Virus.FragmentSpeed.Max:
		return errors.New("virus.fragment_speed range is inverted")
	case c.Physics.BoostMultiplier <= 1:
		return errors.New("physics.boost_multiplier must exceed 1")
	case c.Server.BroadcastHz <= 0:
		return errors.New("server.broadcast_hz must be positive")
	}
	return nil
}

// maxSpawnRadius is the largest radius anything is inset by when it is
// placed at a random position.
func (c *Config) maxSpawnRadius() float64 {
	return math.Max(c.World.VirusRadius, math.Max(c.Blob.HumanStartRadius, c.Blob.BotStartRadius.Max))
}
