// Package config loads the optional .mvref.yaml file from the working root.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is looked up in the working root when no path is given.
const FileName = ".mvref.yaml"

// Config represents the .mvref.yaml configuration file.
type Config struct {
	// ContextRadius is the number of unchanged lines shown around a change.
	ContextRadius int `yaml:"context_radius" validate:"gte=0,lte=1000"`
	// Ignore holds extra gitignore-style patterns.
	Ignore []string `yaml:"ignore"`
	// NoDefaultIgnore drops the built-in ignore patterns.
	NoDefaultIgnore bool `yaml:"no_default_ignore"`
	// Hidden includes dot files and dot directories.
	Hidden bool      `yaml:"hidden"`
	Log    LogConfig `yaml:"log"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	// File, when set, receives the log in addition to stderr.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ContextRadius: 10,
		Log: LogConfig{
			Level:      "warn",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load reads the config file. path may be empty, in which case FileName in
// root is used and a missing file yields Default(). An explicitly named
// file must exist.
func Load(root, path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(root, FileName)
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks value ranges.
func (c Config) Validate() error {
	return validate.Struct(c)
}
