package chime

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pelletier/go-toml/v2"

	"github.com/phanxgames/chime/physics"
)

// Config holds the settings of an application built on Screen. Unset
// fields in a TOML file keep their DefaultConfig values.
type Config struct {
	Window  WindowConfig `toml:"window"`
	Camera  CameraConfig `toml:"camera"`
	Render  RenderConfig `toml:"render"`
	Physics PhysicsWorld `toml:"physics"`
	VR      VRConfig     `toml:"vr"`
	Debug   bool         `toml:"debug"`
	Log     LogConfig    `toml:"log"`
}

// WindowConfig sizes the desktop window.
type WindowConfig struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

// CameraConfig places the desktop camera.
type CameraConfig struct {
	// FOV is the vertical field of view in radians.
	FOV      float32    `toml:"fov"`
	Near     float32    `toml:"near"`
	Far      float32    `toml:"far"`
	Position [3]float32 `toml:"position"`
}

// RenderConfig tunes the renderer.
type RenderConfig struct {
	LineCapacity int  `toml:"line_capacity"`
	Grid         bool `toml:"grid"`
	GridFloor    bool `toml:"grid_floor"`
}

// PhysicsWorld configures the reference physics world.
type PhysicsWorld struct {
	Gravity   [3]float32 `toml:"gravity"`
	Ground    bool       `toml:"ground"`
	DebugDraw bool       `toml:"debug_draw"`
}

// VRConfig enables the headset.
type VRConfig struct {
	Enabled bool    `toml:"enabled"`
	Near    float32 `toml:"near"`
	Far     float32 `toml:"far"`
}

// LogConfig selects the log level: debug, info, warn or error.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns the settings used when no file is given.
func DefaultConfig() Config {
	return Config{
		Window:  WindowConfig{Title: "chime", Width: 1280, Height: 720, Resizable: true},
		Camera:  CameraConfig{FOV: 1.0, Near: 0.1, Far: 1000, Position: [3]float32{1, 2, 2}},
		Render:  RenderConfig{LineCapacity: DefaultLineCapacity, Grid: true, GridFloor: true},
		Physics: PhysicsWorld{Gravity: [3]float32{0, -9.81, 0}, Ground: true},
		VR:      VRConfig{Enabled: true, Near: EyeNear, Far: EyeFar},
		Log:     LogConfig{Level: "info"},
	}
}

// ParseConfig decodes TOML data over DefaultConfig. Unknown keys are
// rejected.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("chime: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads and parses the TOML file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("chime: load config: %w", err)
	}
	return ParseConfig(data)
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch {
	case c.Window.Width <= 0 || c.Window.Height <= 0:
		return fmt.Errorf("chime: invalid window size %dx%d", c.Window.Width, c.Window.Height)
	case c.Camera.FOV <= 0:
		return fmt.Errorf("chime: invalid camera fov %v", c.Camera.FOV)
	case c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near:
		return fmt.Errorf("chime: invalid camera clip planes %v..%v", c.Camera.Near, c.Camera.Far)
	case c.VR.Near <= 0 || c.VR.Far <= c.VR.Near:
		return fmt.Errorf("chime: invalid vr clip planes %v..%v", c.VR.Near, c.VR.Far)
	case c.Render.LineCapacity < 0:
		return fmt.Errorf("chime: invalid line capacity %d", c.Render.LineCapacity)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("chime: invalid log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}

// WorldConfig returns the physics world settings.
func (c Config) WorldConfig() physics.WorldConfig {
	w := physics.DefaultWorldConfig()
	w.Gravity = mgl32.Vec3(c.Physics.Gravity)
	w.Ground = c.Physics.Ground
	return w
}
