// Package config loads the scene configuration.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/gekko3d/leaffall/leaves"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable of the scene.
type Config struct {
	Window    WindowConfig    `yaml:"window"`
	Camera    CameraConfig    `yaml:"camera"`
	Leaves    LeavesConfig    `yaml:"leaves"`
	Material  MaterialConfig  `yaml:"material"`
	Atlas     AtlasConfig     `yaml:"atlas"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

type CameraConfig struct {
	Position   [3]float32 `yaml:"position"`
	Target     [3]float32 `yaml:"target"`
	FovY       float32    `yaml:"fov_y"` // degrees
	Near       float32    `yaml:"near"`
	Far        float32    `yaml:"far"`
	OrbitSpeed float32    `yaml:"orbit_speed"` // rad/s around the target, 0 = fixed
}

// LeavesConfig describes the leaf groups. One group is built per entry of
// Variants, each with Count leaves.
type LeavesConfig struct {
	Count        int     `yaml:"count"`
	Radius       float32 `yaml:"radius"`
	Segments     int     `yaml:"segments"`
	Variants     []int   `yaml:"variants"`
	GroupSpacing float32 `yaml:"group_spacing"` // x distance between neighbouring groups
	BoundsMode   string  `yaml:"bounds_mode"`
	Seed         int64   `yaml:"seed"` // 0 seeds from the clock

	DriftSpeed float32 `yaml:"drift_speed"`
	FallSpeed  float32 `yaml:"fall_speed"`

	WindSpeed     float32 `yaml:"wind_speed"`
	Epsilon       float32 `yaml:"epsilon"`
	SpawnY        float32 `yaml:"spawn_y"`
	SpawnDepthMin float32 `yaml:"spawn_depth_min"`
	SpawnDepthMax float32 `yaml:"spawn_depth_max"`
}

type MaterialConfig struct {
	Color             [3]float32 `yaml:"color"`
	Metalness         float32    `yaml:"metalness"`
	Roughness         float32    `yaml:"roughness"`
	DisplacementScale float32    `yaml:"displacement_scale"`
	DisplacementBias  float32    `yaml:"displacement_bias"`
	AlphaTest         float32    `yaml:"alpha_test"`
	EnvIntensity      float32    `yaml:"env_intensity"`
}

// AtlasConfig names the four maps of the shared leaf sheet.
type AtlasConfig struct {
	Dir          string `yaml:"dir"`
	Color        string `yaml:"color"`
	Displacement string `yaml:"displacement"`
	Normal       string `yaml:"normal"`
	Opacity      string `yaml:"opacity"`
	Resolution   int    `yaml:"resolution"`
}

type TelemetryConfig struct {
	Window   int    `yaml:"window"`    // frames per rolling window
	LogEvery int    `yaml:"log_every"` // frames between summary log lines, 0 = off
	CSVPath  string `yaml:"csv_path"`  // per-frame CSV output, empty = off
}

// Default returns the embedded defaults.
func Default() *Config {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load reads the defaults and overlays the YAML file at path, if any.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := cfg.Merge(data); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Merge overlays a YAML document on top of the current values. Keys absent
// from data keep their current value.
func (c *Config) Merge(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	return nil
}

// Validate rejects values the leaf pools cannot be built with. Bad atlas
// variants and segment counts are refused rather than clamped.
func (c *Config) Validate() error {
	var errs []error
	l := c.Leaves
	if l.Count <= 0 {
		errs = append(errs, fmt.Errorf("leaves.count: %w", leaves.ErrInvalidCount))
	}
	if !(l.Radius > 0) {
		errs = append(errs, fmt.Errorf("leaves.radius: %w", leaves.ErrInvalidRadius))
	}
	if l.Segments < 1 {
		errs = append(errs, fmt.Errorf("leaves.segments: %w", leaves.ErrInvalidSegments))
	}
	if len(l.Variants) == 0 {
		errs = append(errs, errors.New("leaves.variants: at least one variant is required"))
	}
	for i, v := range l.Variants {
		if !leaves.ValidVariant(v) {
			errs = append(errs, fmt.Errorf("leaves.variants[%d]: %w: %d", i, leaves.ErrInvalidVariant, v))
		}
	}
	if l.WindSpeed < 0 {
		errs = append(errs, fmt.Errorf("leaves.wind_speed: must be >= 0, got %v", l.WindSpeed))
	}
	if mode, err := c.BoundsMode(); err != nil {
		errs = append(errs, fmt.Errorf("leaves.bounds_mode: %w", err))
	} else if err := mode.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("leaves: %w", err))
	}

	cam := c.Camera
	if !(cam.Near > 0) || !(cam.Far > cam.Near) {
		errs = append(errs, fmt.Errorf("camera: need 0 < near < far, got near=%v far=%v", cam.Near, cam.Far))
	}
	if !(cam.FovY > 0 && cam.FovY < 180) {
		errs = append(errs, fmt.Errorf("camera.fov_y: must be in (0, 180), got %v", cam.FovY))
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window: invalid size %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Atlas.Resolution <= 0 {
		errs = append(errs, fmt.Errorf("atlas.resolution: must be > 0, got %d", c.Atlas.Resolution))
	}
	if c.Telemetry.Window < 1 {
		errs = append(errs, fmt.Errorf("telemetry.window: must be >= 1, got %d", c.Telemetry.Window))
	}
	return errors.Join(errs...)
}

// BoundsMode builds the leaves bounds strategy named by leaves.bounds_mode.
func (c *Config) BoundsMode() (leaves.BoundsMode, error) {
	kind, err := leaves.ParseBoundsKind(c.Leaves.BoundsMode)
	if err != nil {
		return nil, err
	}
	l := c.Leaves
	switch kind {
	case leaves.KindFrustumRelative:
		return leaves.FrustumRelative{
			Epsilon:   l.Epsilon,
			WindSpeed: l.WindSpeed,
			SpawnY:    l.SpawnY,
			DepthMin:  l.SpawnDepthMin,
			DepthMax:  l.SpawnDepthMax,
		}, nil
	default:
		return leaves.RadialFloor{
			Radius:     l.Radius,
			DriftSpeed: l.DriftSpeed,
			FallSpeed:  l.FallSpeed,
		}, nil
	}
}
