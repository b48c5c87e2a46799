// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/flock/device"
	"github.com/pthm-cable/flock/grid"
	"github.com/pthm-cable/flock/params"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig    `yaml:"screen"`
	World      WorldConfig     `yaml:"world"`
	Grid       GridConfig      `yaml:"grid"`
	Frame      FrameConfig     `yaml:"frame"`
	Device     DeviceConfig    `yaml:"device"`
	Simulation params.Params   `yaml:"simulation"`
	Telemetry  TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TargetFPS int    `yaml:"target_fps"`
	Title     string `yaml:"title"`
}

// WorldConfig holds the simulation box corners.
type WorldConfig struct {
	Min []float64 `yaml:"min"` // 3 components
	Max []float64 `yaml:"max"` // 3 components
}

// GridConfig holds spatial grid parameters.
type GridConfig struct {
	MaxCellCount int `yaml:"max_cell_count"` // <= 0 disables the budget
}

// FrameConfig holds host-side frame timing.
type FrameConfig struct {
	MaxDT   float64 `yaml:"max_dt"`   // clamp for measured frame time
	FixedDT float64 `yaml:"fixed_dt"` // step used in headless mode
}

// DeviceConfig holds compute device parameters.
type DeviceConfig struct {
	Workers          int    `yaml:"workers"` // 0 = GOMAXPROCS
	MaxWorkgroupSize int    `yaml:"max_workgroup_size"`
	MemoryLimitMB    int    `yaml:"memory_limit_mb"` // 0 = unlimited
	FeatureLevel     string `yaml:"feature_level"`   // "major.minor"
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // simulated seconds
	PerfCollectorWindow int     `yaml:"perf_collector_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Bounds       grid.Bounds
	FeatureLevel device.FeatureLevel
	MaxDT32      float32
	FixedDT32    float32
	MemoryLimit  int64 // bytes
	ScreenW32    float32
	ScreenH32    float32
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
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
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

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the loaded values and calculates derived ones.
// The simulation record is clamped in place.
func (c *Config) computeDerived() error {
	lo, err := vec3(c.World.Min)
	if err != nil {
		return fmt.Errorf("world.min: %w", err)
	}
	hi, err := vec3(c.World.Max)
	if err != nil {
		return fmt.Errorf("world.max: %w", err)
	}
	for i := range lo {
		if hi[i] <= lo[i] {
			return fmt.Errorf("world: max %v must exceed min %v on every axis", c.World.Max, c.World.Min)
		}
	}
	c.Derived.Bounds = grid.NewBounds(lo, hi)

	level, err := device.ParseFeatureLevel(c.Device.FeatureLevel)
	if err != nil {
		return fmt.Errorf("device.feature_level: %w", err)
	}
	c.Derived.FeatureLevel = level
	c.Derived.MemoryLimit = int64(c.Device.MemoryLimitMB) << 20

	if c.Frame.MaxDT <= 0 {
		return fmt.Errorf("frame.max_dt must be positive, got %v", c.Frame.MaxDT)
	}
	if c.Frame.FixedDT <= 0 {
		return fmt.Errorf("frame.fixed_dt must be positive, got %v", c.Frame.FixedDT)
	}
	c.Derived.MaxDT32 = float32(c.Frame.MaxDT)
	c.Derived.FixedDT32 = float32(c.Frame.FixedDT)
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Simulation = params.Clamp(c.Simulation)
	return nil
}

func vec3(v []float64) ([3]float32, error) {
	if len(v) != 3 {
		return [3]float32{}, fmt.Errorf("want 3 components, got %d", len(v))
	}
	return [3]float32{float32(v[0]), float32(v[1]), float32(v[2])}, nil
}

// DeviceOptions converts the device section.
func (c *Config) DeviceOptions() device.Options {
	return device.Options{
		Workers:          c.Device.Workers,
		MaxWorkgroupSize: c.Device.MaxWorkgroupSize,
		MemoryLimit:      c.Derived.MemoryLimit,
		FeatureLevel:     c.Derived.FeatureLevel,
	}
}

// ClampDT applies the host-side frame time clamp.
func (c *Config) ClampDT(dt float32) float32 {
	return min(max(dt, 0), c.Derived.MaxDT32)
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
