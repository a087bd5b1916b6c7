package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/marcin-skalski/gitfleet/internal/model"
)

type Config struct {
	ScanPaths       []string       `yaml:"scan_paths"`
	ExcludePatterns []string       `yaml:"exclude_patterns"`
	ExcludePaths    []string       `yaml:"exclude_paths"`
	MainBranches    []string       `yaml:"main_branches"`
	AutoPull        AutoPullConfig `yaml:"auto_pull"`
	Output          OutputConfig   `yaml:"output"`
	Watch           WatchConfig    `yaml:"watch"`
	LogFile         string         `yaml:"log_file"`
	Log             LogConfig      `yaml:"log"`
}

type AutoPullConfig struct {
	Enabled      *bool    `yaml:"enabled,omitempty"`
	RequireClean *bool    `yaml:"require_clean,omitempty"`
	SkipPatterns []string `yaml:"skip_patterns"`
}

// Policy flattens the raw auto-pull section into the value the
// reconciliation code consumes. Safe to call only after setDefaults.
func (a AutoPullConfig) Policy() model.AutoPullPolicy {
	return model.AutoPullPolicy{
		Enabled:      boolValue(a.Enabled, true),
		RequireClean: boolValue(a.RequireClean, true),
		SkipPatterns: a.SkipPatterns,
	}
}

type OutputConfig struct {
	ShowClean *bool  `yaml:"show_clean,omitempty"`
	Color     *bool  `yaml:"color,omitempty"`
	Verbosity string `yaml:"verbosity"`
}

func (o OutputConfig) ShowCleanEnabled() bool { return boolValue(o.ShowClean, true) }

func (o OutputConfig) ColorEnabled() bool { return boolValue(o.Color, true) }

type WatchConfig struct {
	Interval    time.Duration `yaml:"-"`
	RawInterval string        `yaml:"interval"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Find returns the first existing config file in the search order: working
// directory first, then ~/.config/gitfleet. Empty when none exists.
func Find() string {
	for _, path := range searchPaths("gitfleet.yml", "gitfleet.yaml", "config.yml", "config.yaml") {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// searchPaths builds the lookup order for a pair of working-directory names
// followed by a pair of names under the user config directory.
func searchPaths(cwdYml, cwdYaml, userYml, userYaml string) []string {
	paths := []string{cwdYml, cwdYaml}
	if home, err := os.UserHomeDir(); err == nil {
		dir := filepath.Join(home, ".config", "gitfleet")
		paths = append(paths, filepath.Join(dir, userYml), filepath.Join(dir, userYaml))
	}
	return paths
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file exists.
// Single-repository commands still need main-branch names and output
// settings to do their job.
func Default() *Config {
	var cfg Config
	// The zero config takes pure defaults; the interval parse cannot fail.
	_ = cfg.setDefaults()
	return &cfg
}

func (c *Config) setDefaults() error {
	if len(c.MainBranches) == 0 {
		c.MainBranches = []string{"main", "master"}
	}

	if c.AutoPull.Enabled == nil {
		c.AutoPull.Enabled = boolPtr(true)
	}
	if c.AutoPull.RequireClean == nil {
		c.AutoPull.RequireClean = boolPtr(true)
	}

	if c.Output.ShowClean == nil {
		c.Output.ShowClean = boolPtr(true)
	}
	if c.Output.Color == nil {
		c.Output.Color = boolPtr(true)
	}
	if c.Output.Verbosity == "" {
		c.Output.Verbosity = "normal"
	}

	if c.Watch.RawInterval == "" {
		c.Watch.RawInterval = "2m"
	}
	interval, err := time.ParseDuration(c.Watch.RawInterval)
	if err != nil {
		return fmt.Errorf("parse watch.interval %q: %w", c.Watch.RawInterval, err)
	}
	if interval <= 0 {
		return fmt.Errorf("watch.interval must be positive, got %s", c.Watch.RawInterval)
	}
	c.Watch.Interval = interval

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.LogFile == "" {
		c.LogFile = defaultLogFile()
	}

	for i, p := range c.ScanPaths {
		c.ScanPaths[i] = ExpandPath(p)
	}
	for i, p := range c.ExcludePaths {
		c.ExcludePaths[i] = ExpandPath(p)
	}

	return nil
}

func (c *Config) validate() error {
	switch c.Output.Verbosity {
	case "quiet", "normal", "verbose":
	default:
		return fmt.Errorf("invalid output.verbosity %q (quiet|normal|verbose)", c.Output.Verbosity)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level %q (debug|info|warn|error)", c.Log.Level)
	}
	return nil
}

// ExpandPath resolves a leading ~ against the home directory and makes the
// path absolute. Paths that cannot be resolved come back cleaned rather
// than failing: a bad entry should surface as "not found" downstream, not
// abort config loading.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gitfleet", "gitfleet.log")
	}
	return filepath.Join(home, ".local", "state", "gitfleet", "gitfleet.log")
}

func boolPtr(v bool) *bool { return &v }

func boolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
