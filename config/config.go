// Package config loads the optional YAML file that seeds a session.
package config

import (
	"bytes"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gdamore/tcell/v2"
	"gopkg.in/yaml.v3"

	"ztop/view"
)

// EnvConfig names an environment variable holding the config file path.
const EnvConfig = "ZTOP_CONFIG"

// DefaultInterval is the sampling interval when nothing else sets one.
const DefaultInterval = time.Second

// ErrInvalid marks a config file or value that fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config represents everything the config file can set. Command line flags
// override it field by field.
type Config struct {
	Interval Duration      `yaml:"interval"`
	Auto     bool          `yaml:"auto"`
	Children bool          `yaml:"children"`
	Depth    int           `yaml:"depth"`
	Filter   string        `yaml:"filter"`
	Sort     string        `yaml:"sort"`
	Reverse  bool          `yaml:"reverse"`
	Pools    []string      `yaml:"pools"`
	Logging  LoggingConfig `yaml:"logging"`
	UI       UIConfig      `yaml:"ui"`

	LoadedFrom string `yaml:"-"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// UIConfig holds table colors, as tcell color names or #rrggbb.
type UIConfig struct {
	HeaderColor   string `yaml:"header_color"`
	SelectedColor string `yaml:"selected_color"`
}

// Duration accepts either plain seconds ("0.5", 2) or a Go duration ("250ms").
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := ParseInterval(value.Value)
	if err != nil {
		return errors.Wrapf(err, "line %d", value.Line)
	}
	*d = Duration(parsed)
	return nil
}

// ParseInterval reads a sampling interval as float seconds or a Go duration.
// Seconds beyond what a time.Duration holds are rejected.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(secs) {
		if ns := secs * float64(time.Second); math.Abs(ns) < math.MaxInt64 {
			return time.Duration(ns), nil
		}
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, errors.WithHint(
			errors.Mark(errors.Newf("bad interval %q", s), ErrInvalid),
			"use seconds like 0.5 or a duration like 250ms",
		)
	}
	return d, nil
}

// Default is the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Interval: Duration(DefaultInterval),
		Logging:  LoggingConfig{Level: "info"},
	}
}

// Load reads and validates a YAML config file. Unset keys keep their defaults.
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Mark(errors.Wrapf(err, "failed to parse config file %s", filename), ErrInvalid)
	}
	cfg.LoadedFrom = filename
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return cfg, nil
}

// Locate picks the config file: the explicit path, then $ZTOP_CONFIG, then the
// per-user default. required is false only for the per-user default, which may
// be absent.
func Locate(explicit string, getenv func(string) string) (path string, required bool) {
	if explicit != "" {
		return explicit, true
	}
	if p := getenv(EnvConfig); p != "" {
		return p, true
	}
	dir := getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home := getenv("HOME")
		if home == "" {
			return "", false
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "ztop", "config.yaml"), false
}

// LoadDefault loads the file Locate picks, falling back to Default when the
// per-user file does not exist.
func LoadDefault(explicit string, getenv func(string) string) (*Config, error) {
	path, required := Locate(explicit, getenv)
	if path == "" {
		return Default(), nil
	}
	if !required {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
	}
	return Load(path)
}

// Validate checks values the YAML types alone do not constrain.
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return invalid("interval must be positive, got %s", time.Duration(c.Interval))
	}
	if c.Depth < 0 {
		return invalid("depth must not be negative, got %d", c.Depth)
	}
	if c.Filter != "" {
		if _, err := regexp.Compile(c.Filter); err != nil {
			return errors.Mark(errors.Wrap(err, "filter"), ErrInvalid)
		}
	}
	if c.Sort != "" {
		if _, err := view.ParseColumn(c.Sort); err != nil {
			return errors.Mark(err, ErrInvalid)
		}
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "error", "warn", "info", "debug":
	default:
		return errors.WithHint(invalid("unknown logging.level %q", c.Logging.Level), "use error, warn, info or debug")
	}
	for key, name := range map[string]string{
		"ui.header_color":   c.UI.HeaderColor,
		"ui.selected_color": c.UI.SelectedColor,
	} {
		if _, err := ParseColor(name); err != nil {
			return errors.Wrap(err, key)
		}
	}
	return nil
}

// ParseColor resolves a color name. Empty means the terminal default.
func ParseColor(name string) (tcell.Color, error) {
	if name == "" || strings.EqualFold(name, "default") {
		return tcell.ColorDefault, nil
	}
	c := tcell.GetColor(strings.ToLower(name))
	if c == tcell.ColorDefault {
		return c, invalid("unknown color %q", name)
	}
	return c, nil
}

func invalid(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalid)
}
