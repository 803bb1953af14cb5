package config

import (
	"errors"
	"fmt"
	"image/color"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/milk9111/twobd/common"
)

var ErrInvalidConfig = errors.New("config: invalid")

const (
	LayoutSingle = "single"
	LayoutQuad   = "quad"
)

// Viewer actions that are not entity behaviours.
const (
	ActionNextScene    = "next_scene"
	ActionWireframe    = "wireframe"
	ActionLayout       = "layout"
	ActionCamForward   = "camera_forward"
	ActionCamBack      = "camera_back"
	ActionCamLeft      = "camera_left"
	ActionCamRight     = "camera_right"
	ActionCamUp        = "camera_up"
	ActionCamDown      = "camera_down"
	ActionCamPitchUp   = "camera_pitch_up"
	ActionCamPitchDown = "camera_pitch_down"
	ActionCamYawLeft   = "camera_yaw_left"
	ActionCamYawRight  = "camera_yaw_right"
	ActionView1        = "view_1"
	ActionView2        = "view_2"
	ActionView3        = "view_3"
	ActionView4        = "view_4"
)

type Config struct {
	Window  WindowConfig  `toml:"window"`
	Logging LoggingConfig `toml:"logging"`
	Scenes  ScenesConfig  `toml:"scenes"`
	Render  RenderConfig  `toml:"render"`
	Physics PhysicsConfig `toml:"physics"`
	Camera  CameraConfig  `toml:"camera"`
	Input   InputConfig   `toml:"input"`
}

type WindowConfig struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`  // debug, info, warn, error
	Format string `toml:"format"` // console or json
}

type ScenesConfig struct {
	Startup   string `toml:"startup"`
	Dir       string `toml:"dir"`        // level yaml on disk, overrides the embedded set
	AssetsDir string `toml:"assets_dir"` // models on disk, overrides the embedded set
	HotReload bool   `toml:"hot_reload"`
	Seed      uint64 `toml:"seed"`
}

type RenderConfig struct {
	Clear        string `toml:"clear"`
	Border       string `toml:"border"`
	ActiveBorder string `toml:"active_border"`
	BorderWidth  int    `toml:"border_width"`
	Layout       string `toml:"layout"`
	Wireframe    bool   `toml:"wireframe"`
}

type PhysicsConfig struct {
	Gravity float64 `toml:"gravity"` // along Y
}

type CameraConfig struct {
	MoveSpeed   float32 `toml:"move_speed"`   // units per second
	RotateSpeed float32 `toml:"rotate_speed"` // radians per second
}

// InputConfig binds action names to ebiten key names ("W", "ArrowUp", "Tab").
type InputConfig struct {
	Bindings map[string][]string `toml:"bindings"`
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if cfg.Input.Bindings == nil {
		cfg.Input.Bindings = map[string][]string{}
	}
	for action, keys := range defaults().Input.Bindings {
		if _, ok := cfg.Input.Bindings[action]; !ok {
			cfg.Input.Bindings[action] = keys
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Render.Layout != LayoutSingle && c.Render.Layout != LayoutQuad {
		return fmt.Errorf("%w: render layout %q", ErrInvalidConfig, c.Render.Layout)
	}
	if c.Render.BorderWidth < 0 {
		return fmt.Errorf("%w: border width %d", ErrInvalidConfig, c.Render.BorderWidth)
	}
	for _, s := range []string{c.Render.Clear, c.Render.Border, c.Render.ActiveBorder} {
		if _, err := common.ParseColor(s); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func (r RenderConfig) ClearColor() color.Color        { return mustColor(r.Clear) }
func (r RenderConfig) BorderColor() color.Color       { return mustColor(r.Border) }
func (r RenderConfig) ActiveBorderColor() color.Color { return mustColor(r.ActiveBorder) }

// mustColor is only used on validated configs.
func mustColor(s string) color.Color {
	c, err := common.ParseColor(s)
	if err != nil {
		return color.Black
	}
	return c
}

func defaults() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "twobd",
			Width:  1280,
			Height: 720,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Scenes: ScenesConfig{
			Startup:   "Test",
			Dir:       "levels",
			AssetsDir: "assets",
			HotReload: true,
			Seed:      1,
		},
		Render: RenderConfig{
			Clear:        "#1a1a26",
			Border:       "dimgray",
			ActiveBorder: "gold",
			BorderWidth:  2,
			Layout:       LayoutQuad,
			Wireframe:    true,
		},
		Physics: PhysicsConfig{
			Gravity: -9.81,
		},
		Camera: CameraConfig{
			MoveSpeed:   5,
			RotateSpeed: 1.5,
		},
		Input: InputConfig{
			Bindings: map[string][]string{
				"forward":    {"I"},
				"back":       {"K"},
				"left":       {"J"},
				"right":      {"L"},
				"turn_left":  {"U"},
				"turn_right": {"O"},

				ActionCamForward:   {"W"},
				ActionCamBack:      {"S"},
				ActionCamLeft:      {"A"},
				ActionCamRight:     {"D"},
				ActionCamUp:        {"E"},
				ActionCamDown:      {"Q"},
				ActionCamPitchUp:   {"ArrowUp"},
				ActionCamPitchDown: {"ArrowDown"},
				ActionCamYawLeft:   {"ArrowLeft"},
				ActionCamYawRight:  {"ArrowRight"},

				ActionNextScene: {"Tab"},
				ActionWireframe: {"F"},
				ActionLayout:    {"V"},
				ActionView1:     {"Digit1"},
				ActionView2:     {"Digit2"},
				ActionView3:     {"Digit3"},
				ActionView4:     {"Digit4"},
			},
		},
	}
}
