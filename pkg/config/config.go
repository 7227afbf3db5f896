package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// FileName is the tool configuration looked up next to the project.
const FileName = "jscr.toml"

type Config struct {
	Runtime Runtime `toml:"runtime"`
	Watch   Watch   `toml:"watch"`
	Metrics Metrics `toml:"metrics"`
	Deps    Deps    `toml:"deps"`
	Log     Log     `toml:"log"`
}

type Runtime struct {
	LenientArithmetic bool `toml:"lenient_arithmetic"`
	MaxCallDepth      int  `toml:"max_call_depth"`
}

type Watch struct {
	Debounce     time.Duration `toml:"debounce"`
	ExcludeDirs  []string      `toml:"exclude_dirs"`
	ExcludeFiles []string      `toml:"exclude_files"`
}

type Metrics struct {
	// Addr, when set, serves Prometheus metrics while programs run.
	Addr string `toml:"addr"`
}

type Deps struct {
	CacheDir string `toml:"cache_dir"`
}

type Log struct {
	Level string `toml:"level"`
}

// Default returns the configuration used when no jscr.toml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if _, err := cfg.LogLevel(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if cfg.Runtime.MaxCallDepth < 0 {
		return nil, fmt.Errorf("config: %s: runtime.max_call_depth must not be negative", path)
	}
	return &cfg, nil
}

// LoadDir loads dir/jscr.toml, falling back to Default when the file does
// not exist.
func LoadDir(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

func (c *Config) applyDefaults() {
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 300 * time.Millisecond
	}
	if len(c.Watch.ExcludeDirs) == 0 {
		c.Watch.ExcludeDirs = []string{".git", ".jscr"}
	}
	if c.Deps.CacheDir == "" {
		c.Deps.CacheDir = filepath.Join(".jscr", "deps")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// LogLevel parses Log.Level ("debug", "info", "warn", "error").
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.Log.Level)
	}
	return level, nil
}
