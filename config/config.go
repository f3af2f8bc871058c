// Package config loads the TOML configuration shared by every command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/TFMV/communitygraph/physics"
	"github.com/TFMV/communitygraph/render"
	"github.com/TFMV/communitygraph/server"
)

// Duration wraps time.Duration so it can be written as "5s" in TOML
type Duration struct {
	time.Duration
}

// DurationFrom avoids unkeyed Duration literals
func DurationFrom(d time.Duration) Duration {
	return Duration{d}
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full configuration file
type Config struct {
	Physics   physics.Config  `toml:"physics"`
	Placement PlacementConfig `toml:"placement"`
	Server    ServerConfig    `toml:"server"`
	Render    RenderConfig    `toml:"render"`
	Watch     WatchConfig     `toml:"watch"`
	Log       LogConfig       `toml:"log"`
}

// PlacementConfig controls where nodes entering the layout start
type PlacementConfig struct {
	Mode      string  `toml:"mode"` // "noise" or "random"
	Seed      int64   `toml:"seed"`
	MinRadius float64 `toml:"min_radius"`
	Spread    float64 `toml:"spread"`
}

type ServerConfig struct {
	Addr            string   `toml:"addr"`
	ReadTimeout     Duration `toml:"read_timeout"`
	WriteTimeout    Duration `toml:"write_timeout"`
	IdleTimeout     Duration `toml:"idle_timeout"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
	AllowedOrigins  []string `toml:"allowed_origins"`
}

// RenderConfig holds the defaults for static output
type RenderConfig struct {
	Format     string  `toml:"format"`
	Width      float64 `toml:"width"`
	Height     float64 `toml:"height"`
	Padding    float64 `toml:"padding"`
	Background string  `toml:"background"`
	Labels     bool    `toml:"labels"`
	Iterations int     `toml:"iterations"`
}

// WatchConfig controls dataset hot reload
type WatchConfig struct {
	Enabled  bool     `toml:"enabled"`
	Debounce Duration `toml:"debounce"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is present
func Default() *Config {
	srv := server.DefaultConfig()
	opts := render.NewDefaultOptions("svg")
	return &Config{
		Physics: physics.DefaultConfig(),
		Placement: PlacementConfig{
			Mode:      "noise",
			Seed:      1,
			MinRadius: physics.DefaultRing.MinRadius,
			Spread:    physics.DefaultRing.Spread,
		},
		Server: ServerConfig{
			Addr:            srv.Addr,
			ReadTimeout:     DurationFrom(srv.ReadTimeout),
			WriteTimeout:    DurationFrom(srv.WriteTimeout),
			IdleTimeout:     DurationFrom(srv.IdleTimeout),
			ShutdownTimeout: DurationFrom(srv.ShutdownTimeout),
		},
		Render: RenderConfig{
			Format:     opts.Format,
			Width:      opts.Width,
			Height:     opts.Height,
			Padding:    opts.Padding,
			Background: opts.Background,
			Labels:     opts.ShowLabels,
			Iterations: 500,
		},
		Watch: WatchConfig{Enabled: true, Debounce: DurationFrom(100 * time.Millisecond)},
		Log:   LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults. An empty path or a missing file yields
// the defaults; a malformed file is an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config: %w", err)
	}

	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as TOML
func Save(path string, cfg *Config) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate rejects values that leave the layout or server unusable
func (c *Config) Validate() error {
	var errs []error
	p := c.Physics

	if p.SpringLength <= 0 {
		errs = append(errs, errors.New("physics.spring_length must be positive"))
	}
	if p.Damping <= 0 || p.Damping > 1 {
		errs = append(errs, errors.New("physics.damping must be in (0, 1]"))
	}
	if p.MaxVelocity <= 0 {
		errs = append(errs, errors.New("physics.max_velocity must be positive"))
	}
	if p.MaxStepMillis <= 0 {
		errs = append(errs, errors.New("physics.max_step_ms must be positive"))
	}
	if p.TargetFPS < 0 {
		errs = append(errs, errors.New("physics.target_fps must not be negative"))
	}
	switch c.Placement.Mode {
	case "noise", "random":
	default:
		errs = append(errs, fmt.Errorf("placement.mode %q must be noise or random", c.Placement.Mode))
	}
	if c.Placement.MinRadius < 0 || c.Placement.Spread < 0 {
		errs = append(errs, errors.New("placement radii must not be negative"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if _, err := render.GetRenderer(c.Render.Format); err != nil {
		errs = append(errs, fmt.Errorf("render.format: %w", err))
	}
	if c.Render.Width <= 0 || c.Render.Height <= 0 {
		errs = append(errs, errors.New("render width and height must be positive"))
	}
	if c.Watch.Debounce.Duration < 0 {
		errs = append(errs, errors.New("watch.debounce must not be negative"))
	}
	return errors.Join(errs...)
}

// Placer builds the placer described by the placement section
func (c *Config) Placer() physics.Placer {
	ring := physics.Ring{MinRadius: c.Placement.MinRadius, Spread: c.Placement.Spread}
	if c.Placement.Mode == "random" {
		return physics.NewRandomPlacer(ring, c.Placement.Seed)
	}
	return physics.NewNoisePlacer(ring, c.Placement.Seed)
}

// ServerConfig converts the server section, with render defaults attached
func (c *Config) ServerConfig() server.Config {
	return server.Config{
		Addr:            c.Server.Addr,
		ReadTimeout:     c.Server.ReadTimeout.Duration,
		WriteTimeout:    c.Server.WriteTimeout.Duration,
		IdleTimeout:     c.Server.IdleTimeout.Duration,
		ShutdownTimeout: c.Server.ShutdownTimeout.Duration,
		AllowedOrigins:  c.Server.AllowedOrigins,
		Render:          *c.RenderOptions(c.Render.Format),
	}
}

// RenderOptions returns output options for format with the render section
// applied. An empty format uses the configured one.
func (c *Config) RenderOptions(format string) *render.OutputOptions {
	if format == "" {
		format = c.Render.Format
	}
	opts := render.NewDefaultOptions(format)
	opts.Width = c.Render.Width
	opts.Height = c.Render.Height
	opts.Padding = c.Render.Padding
	opts.Background = c.Render.Background
	opts.ShowLabels = c.Render.Labels
	return opts
}
