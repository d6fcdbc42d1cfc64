// Package config loads photowall settings from a TOML or YAML file.
//
// A missing file is not an error: [LoadFrom] returns [Default] so the tool
// works out of the box. The format is chosen by extension; ".yaml" and
// ".yml" use YAML, everything else TOML.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	perrors "github.com/matzehuels/photowall/pkg/errors"
	"github.com/matzehuels/photowall/pkg/gallery"
)

// Config is the on-disk configuration.
type Config struct {
	Layout LayoutConfig `toml:"layout" yaml:"layout" json:"layout"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache" json:"cache"`
	Scan   ScanConfig   `toml:"scan" yaml:"scan" json:"scan"`
	Server ServerConfig `toml:"server" yaml:"server" json:"server"`
}

// LayoutConfig mirrors gallery.Config with text-friendly types.
type LayoutConfig struct {
	TargetLength        int     `toml:"target_length" yaml:"target_length" json:"target_length"`
	MinTargetLength     int     `toml:"min_target_length" yaml:"min_target_length" json:"min_target_length"`
	Spacing             float64 `toml:"spacing" yaml:"spacing" json:"spacing"`
	Orientation         string  `toml:"orientation" yaml:"orientation" json:"orientation"`
	ConvergentScrolling bool    `toml:"convergent_scrolling" yaml:"convergent_scrolling" json:"convergent_scrolling"`
}

type CacheConfig struct {
	Dir      string `toml:"dir,omitempty" yaml:"dir,omitempty" json:"dir,omitempty"`
	RedisURL string `toml:"redis_url,omitempty" yaml:"redis_url,omitempty" json:"redis_url,omitempty"`
	TTL      string `toml:"ttl" yaml:"ttl" json:"ttl"` // e.g. "720h"
}

type ScanConfig struct {
	MaxDepth int `toml:"max_depth" yaml:"max_depth" json:"max_depth"` // 0 = unlimited
	Workers  int `toml:"workers" yaml:"workers" json:"workers"`
}

type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" json:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	g := gallery.DefaultConfig()
	return Config{
		Layout: LayoutConfig{
			TargetLength:    g.TargetLength,
			MinTargetLength: g.MinTargetLength,
			Spacing:         g.Spacing,
			Orientation:     g.Orientation.String(),
		},
		Cache:  CacheConfig{TTL: "720h"},
		Scan:   ScanConfig{Workers: runtime.NumCPU()},
		Server: ServerConfig{Addr: "127.0.0.1:8080"},
	}
}

// Normalize trims and lowercases text fields and fills zero values with
// defaults.
func (c *Config) Normalize() {
	def := Default()
	c.Layout.Orientation = strings.ToLower(strings.TrimSpace(c.Layout.Orientation))
	if c.Layout.Orientation == "" {
		c.Layout.Orientation = def.Layout.Orientation
	}
	if c.Layout.TargetLength == 0 {
		c.Layout.TargetLength = def.Layout.TargetLength
	}
	if c.Layout.MinTargetLength == 0 {
		c.Layout.MinTargetLength = def.Layout.MinTargetLength
	}
	c.Cache.Dir = expandPath(strings.TrimSpace(c.Cache.Dir))
	c.Cache.RedisURL = strings.TrimSpace(c.Cache.RedisURL)
	if strings.TrimSpace(c.Cache.TTL) == "" {
		c.Cache.TTL = def.Cache.TTL
	}
	if c.Scan.Workers <= 0 {
		c.Scan.Workers = def.Scan.Workers
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = def.Server.Addr
	}
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	if _, err := gallery.ParseOrientation(c.Layout.Orientation); err != nil {
		return err
	}
	if c.Layout.MinTargetLength < 1 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "min_target_length must be at least 1, got %d", c.Layout.MinTargetLength)
	}
	if c.Scan.MaxDepth < 0 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "scan.max_depth must not be negative")
	}
	if _, err := c.Cache.Lifetime(); err != nil {
		return err
	}
	return nil
}

// Gallery converts the layout section into an engine configuration.
func (c Config) Gallery() (gallery.Config, error) {
	o, err := gallery.ParseOrientation(c.Layout.Orientation)
	if err != nil {
		return gallery.Config{}, err
	}
	return gallery.Config{
		TargetLength:        c.Layout.TargetLength,
		MinTargetLength:     c.Layout.MinTargetLength,
		Spacing:             c.Layout.Spacing,
		Orientation:         o,
		ConvergentScrolling: c.Layout.ConvergentScrolling,
	}.Floored(), nil
}

// SetGallery stores an engine configuration back into the layout section.
func (c *Config) SetGallery(g gallery.Config) {
	c.Layout = LayoutConfig{
		TargetLength:        g.TargetLength,
		MinTargetLength:     g.MinTargetLength,
		Spacing:             g.Spacing,
		Orientation:         g.Orientation.String(),
		ConvergentScrolling: g.ConvergentScrolling,
	}
}

// Lifetime parses the TTL string.
func (c CacheConfig) Lifetime() (time.Duration, error) {
	d, err := time.ParseDuration(c.TTL)
	if err != nil || d < 0 {
		return 0, perrors.New(perrors.ErrCodeInvalidConfig, "invalid cache.ttl %q", c.TTL)
	}
	return d, nil
}

// =============================================================================
// Files
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/photowall/config.toml, falling back
// to ~/.config when the variable is unset.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "photowall", "config.toml")
}

// Load reads the configuration from DefaultPath.
func Load() (Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom returns Default() if path doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "reading config")
	}

	if isYAML(path) {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parsing %s", filepath.Base(path))
		}
	} else {
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return cfg, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "parsing %s", filepath.Base(path))
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return cfg, perrors.New(perrors.ErrCodeInvalidConfig, "unknown key %q in %s", undecoded[0].String(), filepath.Base(path))
		}
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg in the format implied by the extension, creating parent
// directories.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidPath, err, "create config dir")
	}
	var buf bytes.Buffer
	var err error
	if isYAML(path) {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		err = enc.Encode(cfg)
	} else {
		err = toml.NewEncoder(&buf).Encode(cfg)
	}
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "encode config")
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// =============================================================================
// Key access
// =============================================================================

// Keys lists the dotted keys accepted by Get and Set.
var Keys = []string{
	"layout.target_length",
	"layout.min_target_length",
	"layout.spacing",
	"layout.orientation",
	"layout.convergent_scrolling",
	"cache.dir",
	"cache.redis_url",
	"cache.ttl",
	"scan.max_depth",
	"scan.workers",
	"server.addr",
}

// Get returns the value of a dotted key as text.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "layout.target_length":
		return strconv.Itoa(c.Layout.TargetLength), nil
	case "layout.min_target_length":
		return strconv.Itoa(c.Layout.MinTargetLength), nil
	case "layout.spacing":
		return strconv.FormatFloat(c.Layout.Spacing, 'g', -1, 64), nil
	case "layout.orientation":
		return c.Layout.Orientation, nil
	case "layout.convergent_scrolling":
		return strconv.FormatBool(c.Layout.ConvergentScrolling), nil
	case "cache.dir":
		return c.Cache.Dir, nil
	case "cache.redis_url":
		return c.Cache.RedisURL, nil
	case "cache.ttl":
		return c.Cache.TTL, nil
	case "scan.max_depth":
		return strconv.Itoa(c.Scan.MaxDepth), nil
	case "scan.workers":
		return strconv.Itoa(c.Scan.Workers), nil
	case "server.addr":
		return c.Server.Addr, nil
	}
	return "", unknownKey(key)
}

// Set parses value into the field named by a dotted key and revalidates.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "layout.target_length":
		c.Layout.TargetLength, err = strconv.Atoi(value)
	case "layout.min_target_length":
		c.Layout.MinTargetLength, err = strconv.Atoi(value)
	case "layout.spacing":
		c.Layout.Spacing, err = strconv.ParseFloat(value, 64)
	case "layout.orientation":
		c.Layout.Orientation = value
	case "layout.convergent_scrolling":
		c.Layout.ConvergentScrolling, err = strconv.ParseBool(value)
	case "cache.dir":
		c.Cache.Dir = value
	case "cache.redis_url":
		c.Cache.RedisURL = value
	case "cache.ttl":
		c.Cache.TTL = value
	case "scan.max_depth":
		c.Scan.MaxDepth, err = strconv.Atoi(value)
	case "scan.workers":
		c.Scan.Workers, err = strconv.Atoi(value)
	case "server.addr":
		c.Server.Addr = value
	default:
		return unknownKey(key)
	}
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "invalid value %q for %s", value, key)
	}
	c.Normalize()
	return c.Validate()
}

func unknownKey(key string) error {
	return perrors.New(perrors.ErrCodeInvalidConfig, "unknown key %q (valid: %s)", key, strings.Join(Keys, ", "))
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// String renders the configuration as TOML for display.
func (c Config) String() string {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return "# " + err.Error() + "\n"
	}
	return buf.String()
}
