package main

import (
	"errors"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Config holds settings read from the YAML config file.
// Command-line flags take precedence over every field.
type Config struct {
	Exclude     []string      `yaml:"exclude"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	NoTimeout   bool          `yaml:"no_timeout"`
	Budget      time.Duration `yaml:"budget"`
	RPS         float64       `yaml:"rps"`
	CacheDir    string        `yaml:"cache_dir"`
	Output      string        `yaml:"output"`
	DB          string        `yaml:"db"`
	LogFile     string        `yaml:"log_file"`
}

// LoadConfigFile loads settings from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
