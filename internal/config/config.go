package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Default values.
const (
	DefaultMaxUndoEntries = 1000
	DefaultLogLevel       = "info"
	DefaultCallLimit      = 1_000_000
	DefaultScriptTimeout  = 5 * time.Second
)

// Config holds all structedit settings.
type Config struct {
	Editor     EditorConfig     `yaml:"editor"`
	WhiteSpace WhiteSpaceConfig `yaml:"whitespace"`
	Log        LogConfig        `yaml:"log"`
	Script     ScriptConfig     `yaml:"script"`
}

// EditorConfig contains editing settings.
type EditorConfig struct {
	MaxUndoEntries int  `yaml:"max_undo_entries"`
	ReadOnly       bool `yaml:"read_only"`
}

// WhiteSpaceConfig contains whitespace handling settings.
type WhiteSpaceConfig struct {
	// Preserve lists elements whose whitespace is significant.
	Preserve []string `yaml:"preserve"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// ScriptConfig contains edit-script settings.
type ScriptConfig struct {
	// CallLimit bounds the document API calls one script may make.
	// Zero means unlimited.
	CallLimit int `yaml:"call_limit"`

	// Timeout bounds the run time of one script. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			MaxUndoEntries: DefaultMaxUndoEntries,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Script: ScriptConfig{
			CallLimit: DefaultCallLimit,
			Timeout:   DefaultScriptTimeout,
		},
	}
}

// Option configures loading.
type Option func(*loadOptions)

type loadOptions struct {
	fs     FileSystem
	lookup LookupFunc
}

// WithFileSystem reads configuration files from fsys.
func WithFileSystem(fsys FileSystem) Option {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithLookup reads environment variables through lookup.
func WithLookup(lookup LookupFunc) Option {
	return func(o *loadOptions) {
		o.lookup = lookup
	}
}

// Load builds a configuration from the defaults, the file at path (if path
// is not empty and the file exists) and the environment.
func Load(path string, opts ...Option) (*Config, error) {
	o := loadOptions{fs: OSFS{}, lookup: os.LookupEnv}
	for _, opt := range opts {
		opt(&o)
	}

	settings := make(map[string]any)
	source := "defaults"
	if path != "" {
		m, err := loadFile(o.fs, path)
		if err != nil {
			return nil, err
		}
		settings = DeepMerge(settings, m)
		source = path
	}
	settings = DeepMerge(settings, loadEnv(o.lookup))

	cfg := Default()
	if err := decode(source, settings, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings.
func (c *Config) Validate() error {
	if c.Editor.MaxUndoEntries <= 0 {
		return &ValidationError{
			Path:    "editor.max_undo_entries",
			Message: fmt.Sprintf("must be positive, got %d", c.Editor.MaxUndoEntries),
		}
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Script.CallLimit < 0 {
		return &ValidationError{
			Path:    "script.call_limit",
			Message: fmt.Sprintf("must not be negative, got %d", c.Script.CallLimit),
		}
	}
	if c.Script.Timeout < 0 {
		return &ValidationError{
			Path:    "script.timeout",
			Message: fmt.Sprintf("must not be negative, got %v", c.Script.Timeout),
		}
	}
	for _, name := range c.WhiteSpace.Preserve {
		if name == "" || strings.ContainsAny(name, " \t<>/") {
			return &ValidationError{
				Path:    "whitespace.preserve",
				Message: fmt.Sprintf("%q is not an element name", name),
			}
		}
	}
	return nil
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	l, _ := ParseLevel(c.Log.Level)
	return l
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, &ValidationError{Path: "log.level", Message: fmt.Sprintf("unknown level %q", s)}
}
