package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration. The mapstructure tags bind viper's
// snake_case keys to the fields during Unmarshal.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Physics  PhysicsConfig  `mapstructure:"physics"`
	Camera   CameraConfig   `mapstructure:"camera"`
	Gesture  GestureConfig  `mapstructure:"gesture"`
	UI       UIConfig       `mapstructure:"ui"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// PhysicsConfig holds force-layout tuning.
type PhysicsConfig struct {
	CenterStrength      float64 `mapstructure:"center_strength"`
	RepulsionStrength   float64 `mapstructure:"repulsion_strength"`
	CenterBoost         float64 `mapstructure:"center_boost"`
	CollisionIterations int     `mapstructure:"collision_iterations"`
	VelocityDecay       float64 `mapstructure:"velocity_decay"`
	AlphaDecay          float64 `mapstructure:"alpha_decay"`
	HaloMargin          float64 `mapstructure:"halo_margin"`
	MinRadius           float64 `mapstructure:"min_radius"`
	MaxRadius           float64 `mapstructure:"max_radius"`
}

// CameraConfig holds viewport-fit tuning.
type CameraConfig struct {
	Padding      float64 `mapstructure:"padding"`
	HardMinScale float64 `mapstructure:"hard_min_scale"`
	MaxScale     float64 `mapstructure:"max_scale"`
	LerpFactor   float64 `mapstructure:"lerp_factor"`
}

// GestureConfig holds pointer tuning.
type GestureConfig struct {
	DragThresholdPx float64 `mapstructure:"drag_threshold_px"`
	PopThresholdMs  int     `mapstructure:"pop_threshold_ms"`
	DwellMs         int     `mapstructure:"dwell_ms"`
	MagneticBlend   float64 `mapstructure:"magnetic_blend"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Board         string  `mapstructure:"board"`
	ShowCompleted bool    `mapstructure:"show_completed"`
	ThemePath     string  `mapstructure:"theme_path"`
	CenterRadius  float64 `mapstructure:"center_radius"`
}

// PopThreshold returns the long-press commit duration.
func (g GestureConfig) PopThreshold() time.Duration {
	return time.Duration(g.PopThresholdMs) * time.Millisecond
}

// Dwell returns the drop-zone arming duration.
func (g GestureConfig) Dwell() time.Duration {
	return time.Duration(g.DwellMs) * time.Millisecond
}

// Load reads configuration from file and env. Env var overrides use prefix BUBBLEBOARD_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "bubbleboard", "bubbleboard.db"))
	v.SetDefault("physics.center_strength", 0.03)
	v.SetDefault("physics.repulsion_strength", 8.0)
	v.SetDefault("physics.center_boost", 4.0)
	v.SetDefault("physics.collision_iterations", 40)
	v.SetDefault("physics.velocity_decay", 0.6)
	v.SetDefault("physics.alpha_decay", 0.08)
	v.SetDefault("physics.halo_margin", 10.0)
	v.SetDefault("physics.min_radius", 30.0)
	v.SetDefault("physics.max_radius", 120.0)
	v.SetDefault("camera.padding", 48.0)
	v.SetDefault("camera.hard_min_scale", 0.25)
	v.SetDefault("camera.max_scale", 2.5)
	v.SetDefault("camera.lerp_factor", 0.1)
	v.SetDefault("gesture.drag_threshold_px", 10.0)
	v.SetDefault("gesture.pop_threshold_ms", 550)
	v.SetDefault("gesture.dwell_ms", 350)
	v.SetDefault("gesture.magnetic_blend", 0.5)
	v.SetDefault("ui.board", "default")
	v.SetDefault("ui.show_completed", false)
	v.SetDefault("ui.theme_path", "")
	v.SetDefault("ui.center_radius", 50.0)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("BUBBLEBOARD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "bubbleboard"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BUBBLEBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if needed.
// Used by the settings surface to persist non-sensitive preferences.
func Save(cfg Config) error {
	path := os.Getenv("BUBBLEBOARD_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "bubbleboard", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("database.path", cfg.Database.Path)
	v.Set("physics.center_strength", cfg.Physics.CenterStrength)
	v.Set("physics.repulsion_strength", cfg.Physics.RepulsionStrength)
	v.Set("physics.center_boost", cfg.Physics.CenterBoost)
	v.Set("physics.collision_iterations", cfg.Physics.CollisionIterations)
	v.Set("physics.velocity_decay", cfg.Physics.VelocityDecay)
	v.Set("physics.alpha_decay", cfg.Physics.AlphaDecay)
	v.Set("physics.halo_margin", cfg.Physics.HaloMargin)
	v.Set("physics.min_radius", cfg.Physics.MinRadius)
	v.Set("physics.max_radius", cfg.Physics.MaxRadius)
	v.Set("camera.padding", cfg.Camera.Padding)
	v.Set("camera.hard_min_scale", cfg.Camera.HardMinScale)
	v.Set("camera.max_scale", cfg.Camera.MaxScale)
	v.Set("camera.lerp_factor", cfg.Camera.LerpFactor)
	v.Set("gesture.drag_threshold_px", cfg.Gesture.DragThresholdPx)
	v.Set("gesture.pop_threshold_ms", cfg.Gesture.PopThresholdMs)
	v.Set("gesture.dwell_ms", cfg.Gesture.DwellMs)
	v.Set("gesture.magnetic_blend", cfg.Gesture.MagneticBlend)
	v.Set("ui.board", cfg.UI.Board)
	v.Set("ui.show_completed", cfg.UI.ShowCompleted)
	v.Set("ui.theme_path", cfg.UI.ThemePath)
	v.Set("ui.center_radius", cfg.UI.CenterRadius)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
