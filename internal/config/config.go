// Package config loads the application settings from a YAML file and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/Carmen-Shannon/oxy-dpr/engine/readout/progressbar"
	"github.com/Carmen-Shannon/oxy-dpr/engine/resolution"
	"gopkg.in/yaml.v3"
)

// Present modes accepted in the window section.
const (
	PresentVSync    = "vsync"
	PresentUncapped = "uncapped"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid value")

// Config is the full application configuration.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Resolution ResolutionConfig `yaml:"resolution"`
	Scene      SceneConfig      `yaml:"scene"`
	Display    DisplayConfig    `yaml:"display"`
	Textures   TextureConfig    `yaml:"textures"`
	Profiling  bool             `yaml:"profiling"`
}

// WindowConfig sizes the window and picks how frames are presented. FrameLimit caps the render
// loop in frames per second; 0 leaves it to the present mode.
type WindowConfig struct {
	Title       string  `yaml:"title"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	MinWidth    int     `yaml:"min_width"`
	MinHeight   int     `yaml:"min_height"`
	PresentMode string  `yaml:"present_mode"`
	FrameLimit  float64 `yaml:"frame_limit"`
	MSAA        bool    `yaml:"msaa"`
	Software    bool    `yaml:"software"`
}

// ResolutionConfig is the controller policy. Budget is in megapixels or "Infinity".
type ResolutionConfig struct {
	Budget   string `yaml:"budget"`
	TrackDPR bool   `yaml:"track_dpr"`
}

// SceneConfig holds the demo scene switches.
type SceneConfig struct {
	Autorotate bool `yaml:"autorotate"`
}

// DisplayConfig selects which readout displays are attached.
type DisplayConfig struct {
	HUD      bool    `yaml:"hud"`
	Console  bool    `yaml:"console"`
	Title    bool    `yaml:"title"`
	BarMaxMP float64 `yaml:"bar_max_mp"`
}

// TextureConfig points at optional texture files. Empty paths use the generated textures.
type TextureConfig struct {
	UVMap string `yaml:"uv_map"`
	Grid  string `yaml:"grid"`
}

// Default returns the configuration used when no file or flag says otherwise.
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:       "oxy-dpr",
			Width:       1280,
			Height:      720,
			MinWidth:    320,
			MinHeight:   200,
			PresentMode: PresentVSync,
			MSAA:        true,
		},
		Resolution: ResolutionConfig{
			Budget:   "Infinity",
			TrackDPR: true,
		},
		Scene: SceneConfig{
			Autorotate: true,
		},
		Display: DisplayConfig{
			HUD:      true,
			Title:    true,
			BarMaxMP: progressbar.DefaultMaxMegapixels,
		},
	}
}

// Parse decodes YAML over the defaults and validates the result. Keys missing from data keep
// their default values.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the merged configuration
//   - error: a decode error, or ErrInvalidConfig (wrapped) if a value is out of range
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Load reads and parses the file at path. An empty path yields the defaults.
//
// Parameters:
//   - path: the YAML file, or ""
//
// Returns:
//   - Config: the loaded configuration
//   - error: error if the file cannot be read or is invalid
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every field that has a restricted range.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height))
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		errs = append(errs, fmt.Errorf("%w: minimum window size %dx%d", ErrInvalidConfig, c.Window.MinWidth, c.Window.MinHeight))
	}
	if c.Window.FrameLimit < 0 || math.IsNaN(c.Window.FrameLimit) || math.IsInf(c.Window.FrameLimit, 0) {
		errs = append(errs, fmt.Errorf("%w: frame_limit %v", ErrInvalidConfig, c.Window.FrameLimit))
	}
	switch strings.ToLower(c.Window.PresentMode) {
	case PresentVSync, PresentUncapped:
	default:
		errs = append(errs, fmt.Errorf("%w: present_mode %q", ErrInvalidConfig, c.Window.PresentMode))
	}
	if _, err := resolution.ParseBudget(c.Resolution.Budget); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalidConfig, err))
	}
	if c.Display.BarMaxMP <= 0 {
		errs = append(errs, fmt.Errorf("%w: bar_max_mp %v", ErrInvalidConfig, c.Display.BarMaxMP))
	}
	return errors.Join(errs...)
}

// Budget returns the parsed pixel budget. Invalid text yields Unbounded; Validate reports it.
func (c Config) Budget() resolution.Budget {
	b, err := resolution.ParseBudget(c.Resolution.Budget)
	if err != nil {
		return resolution.Unbounded
	}
	return b
}

// Policy returns the controller policy described by the resolution section.
func (c Config) Policy() resolution.Policy {
	return resolution.Policy{
		TrackDPRChanges: c.Resolution.TrackDPR,
		MaxPixels:       c.Budget(),
	}
}

// Uncapped reports whether frames should be presented without waiting for vertical blank.
func (c Config) Uncapped() bool {
	return strings.EqualFold(c.Window.PresentMode, PresentUncapped)
}

// Flags binds command-line flags that override a loaded configuration.
type Flags struct {
	fs   *flag.FlagSet
	path string

	budget     string
	trackDPR   bool
	autorotate bool
	hud        bool
	console    bool
	profiling  bool
	uncapped   bool
	software   bool
	frameLimit float64
	width      int
	height     int
}

// NewFlags registers the flags on fs. Defaults shown in usage are the built-in defaults.
//
// Parameters:
//   - fs: the flag set to register on, usually flag.CommandLine
//
// Returns:
//   - *Flags: the bound flags
func NewFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}
	fs.StringVar(&f.path, "config", "", "YAML config file; edits are applied while running")
	fs.StringVar(&f.budget, "budget", d.Resolution.Budget, "maximum rendered megapixels, or Infinity")
	fs.BoolVar(&f.trackDPR, "track-dpr", d.Resolution.TrackDPR, "follow device pixel ratio changes")
	fs.BoolVar(&f.autorotate, "autorotate", d.Scene.Autorotate, "spin the cube")
	fs.BoolVar(&f.hud, "hud", d.Display.HUD, "draw the readout panel over the scene")
	fs.BoolVar(&f.console, "console", d.Display.Console, "print the readout panel to stdout")
	fs.BoolVar(&f.profiling, "profile", d.Profiling, "log frame rate and memory statistics")
	fs.BoolVar(&f.uncapped, "uncapped", false, "present without vsync")
	fs.BoolVar(&f.software, "software", d.Window.Software, "render on the software fallback adapter")
	fs.Float64Var(&f.frameLimit, "frame-limit", d.Window.FrameLimit, "maximum rendered frames per second, 0 for none")
	fs.IntVar(&f.width, "width", d.Window.Width, "initial window width")
	fs.IntVar(&f.height, "height", d.Window.Height, "initial window height")
	return f
}

// Path returns the -config value.
func (f *Flags) Path() string {
	return f.path
}

// Apply copies every flag that was set on the command line into cfg and validates the result.
//
// Parameters:
//   - cfg: the configuration to override
//
// Returns:
//   - Config: cfg with the explicit flags applied
//   - error: ErrInvalidConfig (wrapped) if an override is out of range
func (f *Flags) Apply(cfg Config) (Config, error) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "budget":
			cfg.Resolution.Budget = f.budget
		case "track-dpr":
			cfg.Resolution.TrackDPR = f.trackDPR
		case "autorotate":
			cfg.Scene.Autorotate = f.autorotate
		case "hud":
			cfg.Display.HUD = f.hud
		case "console":
			cfg.Display.Console = f.console
		case "profile":
			cfg.Profiling = f.profiling
		case "uncapped":
			if f.uncapped {
				cfg.Window.PresentMode = PresentUncapped
			} else {
				cfg.Window.PresentMode = PresentVSync
			}
		case "software":
			cfg.Window.Software = f.software
		case "frame-limit":
			cfg.Window.FrameLimit = f.frameLimit
		case "width":
			cfg.Window.Width = f.width
		case "height":
			cfg.Window.Height = f.height
		}
	})
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
