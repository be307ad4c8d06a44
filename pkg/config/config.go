// Package config loads the stagegraph configuration file.
//
// The file is TOML with one table per concern:
//
//	[geometry]    connector shape constants
//	[dimensions]  spacing between nodes and around groups
//	[viewport]    zoom limits and the re-route delay
//	[cache]       result cache backend
//	[server]      HTTP API listener
//
// A file only needs the keys it changes. Values are merged over [Default]
// so that omitted and zero-valued keys keep their defaults; keys the
// decoder does not know are rejected with [ErrUnknownKey].
package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stagegraph/pkg/cache"
	"github.com/matzehuels/stagegraph/pkg/errors"
	"github.com/matzehuels/stagegraph/pkg/layout"
	"github.com/matzehuels/stagegraph/pkg/route"
	"github.com/matzehuels/stagegraph/pkg/viewport"
)

// AppName names the configuration and cache directories.
const AppName = "stagegraph"

// ErrUnknownKey is returned for keys that match no configuration field.
var ErrUnknownKey = stderrors.New("unknown configuration key")

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the complete configuration.
type Config struct {
	Geometry   Geometry   `toml:"geometry"`
	Dimensions Dimensions `toml:"dimensions"`
	Viewport   Viewport   `toml:"viewport"`
	Cache      Cache      `toml:"cache"`
	Server     Server     `toml:"server"`
}

// Geometry mirrors [route.Geometry].
type Geometry struct {
	CurveRadius       float64 `toml:"curve_radius"`
	FanInOffset       float64 `toml:"fan_in_offset"`
	FanInGroupOffsetY float64 `toml:"fan_in_group_offset_y"`
	FanOutRailOffset  float64 `toml:"fan_out_rail_offset"`
	NextGroupOffsetY  float64 `toml:"next_group_offset_y"`
	InGroupOffsetY    float64 `toml:"in_group_offset_y"`
	JoinOffsetX       float64 `toml:"join_offset_x"`
}

// Dimensions mirrors [layout.Spacing].
type Dimensions struct {
	NodeGap           float64 `toml:"node_gap"`
	ParallelGap       float64 `toml:"parallel_gap"`
	GroupPadHeight    float64 `toml:"group_pad_height"`
	GroupPadWidth     float64 `toml:"group_pad_width"`
	MatrixExtraHeight float64 `toml:"matrix_extra_height"`
	MatrixExtraWidth  float64 `toml:"matrix_extra_width"`
}

// Viewport holds zoom limits and how long data changes wait before the
// links are routed again.
type Viewport struct {
	DefaultScale float64       `toml:"default_scale"`
	MinScale     float64       `toml:"min_scale"`
	MaxScale     float64       `toml:"max_scale"`
	ZoomStep     float64       `toml:"zoom_step"`
	WheelFactor  float64       `toml:"wheel_factor"`
	RerouteDelay time.Duration `toml:"reroute_delay"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend string            `toml:"backend"`
	Dir     string            `toml:"dir"`
	Redis   cache.RedisConfig `toml:"redis"`
}

// Server configures the HTTP API.
type Server struct {
	Addr         string        `toml:"addr"`
	ReadTimeout  time.Duration `toml:"read_timeout"`
	WriteTimeout time.Duration `toml:"write_timeout"`
	MaxBodyBytes int64         `toml:"max_body_bytes"`
}

// Default returns the built-in configuration.
func Default() Config {
	g := route.DefaultGeometry()
	sp := layout.DefaultSpacing()
	vp := viewport.DefaultOptions()
	return Config{
		Geometry: Geometry{
			CurveRadius:       g.CurveRadius,
			FanInOffset:       g.FanInOffset,
			FanInGroupOffsetY: g.FanInGroupOffsetY,
			FanOutRailOffset:  g.FanOutRailOffset,
			NextGroupOffsetY:  g.NextGroupOffsetY,
			InGroupOffsetY:    g.InGroupOffsetY,
			JoinOffsetX:       g.JoinOffsetX,
		},
		Dimensions: Dimensions{
			NodeGap:           sp.NodeGap,
			ParallelGap:       sp.ParallelGap,
			GroupPadHeight:    sp.GroupPadHeight,
			GroupPadWidth:     sp.GroupPadWidth,
			MatrixExtraHeight: sp.MatrixExtraHeight,
			MatrixExtraWidth:  sp.MatrixExtraWidth,
		},
		Viewport: Viewport{
			DefaultScale: vp.DefaultScale,
			MinScale:     vp.MinScale,
			MaxScale:     vp.MaxScale,
			ZoomStep:     vp.ZoomStep,
			WheelFactor:  vp.WheelFactor,
			RerouteDelay: viewport.DefaultDelay,
		},
		Cache: Cache{
			Backend: BackendFile,
			Redis: cache.RedisConfig{
				Addr:        "localhost:6379",
				Prefix:      AppName + ":",
				DialTimeout: 5 * time.Second,
			},
		},
		Server: Server{
			Addr:         ":8080",
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			MaxBodyBytes: 4 << 20,
		},
	}
}

// Load reads the file at path and merges it over the defaults. An empty
// path reads [DefaultPath] and falls back to the defaults when that file
// does not exist; an explicit path must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && stderrors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			return Config{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file not found: %s", path)
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes TOML data and merges it over the defaults.
func Parse(data []byte) (Config, error) {
	var file Config
	md, err := toml.Decode(string(data), &file)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig,
			fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", ")), "decode config")
	}

	cfg := Default()
	if err := mergo.Merge(&cfg, file, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("merge config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	v := c.Viewport
	switch {
	case v.MinScale <= 0:
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.min_scale must be positive")
	case v.MaxScale < v.MinScale:
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.max_scale %v is below min_scale %v", v.MaxScale, v.MinScale)
	case v.DefaultScale < v.MinScale || v.DefaultScale > v.MaxScale:
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.default_scale %v is outside [%v, %v]", v.DefaultScale, v.MinScale, v.MaxScale)
	case v.WheelFactor <= 1:
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.wheel_factor must be greater than 1")
	case v.RerouteDelay < 0:
		return errors.New(errors.ErrCodeInvalidConfig, "viewport.reroute_delay must not be negative")
	}
	if c.Geometry.CurveRadius < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "geometry.curve_radius must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend %q (must be one of: file, redis, none)", c.Cache.Backend)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	return nil
}

// RouteGeometry returns the geometry section as router geometry.
func (c Config) RouteGeometry() route.Geometry {
	g := c.Geometry
	return route.Geometry{
		CurveRadius:       g.CurveRadius,
		FanInOffset:       g.FanInOffset,
		FanInGroupOffsetY: g.FanInGroupOffsetY,
		FanOutRailOffset:  g.FanOutRailOffset,
		NextGroupOffsetY:  g.NextGroupOffsetY,
		InGroupOffsetY:    g.InGroupOffsetY,
		JoinOffsetX:       g.JoinOffsetX,
	}
}

// Spacing returns the dimensions section as aggregator spacing.
func (c Config) Spacing() layout.Spacing {
	d := c.Dimensions
	return layout.Spacing{
		NodeGap:           d.NodeGap,
		ParallelGap:       d.ParallelGap,
		GroupPadHeight:    d.GroupPadHeight,
		GroupPadWidth:     d.GroupPadWidth,
		MatrixExtraHeight: d.MatrixExtraHeight,
		MatrixExtraWidth:  d.MatrixExtraWidth,
	}
}

// ViewportOptions returns the viewport section as controller options.
func (c Config) ViewportOptions() viewport.Options {
	v := c.Viewport
	return viewport.Options{
		DefaultScale: v.DefaultScale,
		MinScale:     v.MinScale,
		MaxScale:     v.MaxScale,
		ZoomStep:     v.ZoomStep,
		WheelFactor:  v.WheelFactor,
	}
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/stagegraph/config.toml, falling back
// to ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the configured cache directory, or the XDG cache
// directory (~/.cache/stagegraph/) when none is set.
func (c Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
