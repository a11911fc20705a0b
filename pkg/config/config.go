// Package config loads the optional site defaults file. Command-line
// flags always win over file values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tmkro/check-open-files/pkg/nagios"
)

// DefaultPath is consulted when no --config flag is given.
const DefaultPath = "/etc/check-open-files.yaml"

// Config holds probe defaults loaded from yaml.
type Config struct {
	Command  string `yaml:"command"`  // snapshot command line
	Warning  string `yaml:"warning"`  // default warning range
	Critical string `yaml:"critical"` // default critical range
	Filter   string `yaml:"filter"`   // default key:value filter
	Timeout  string `yaml:"timeout"`  // duration string, e.g. "10s"
	Label    string `yaml:"label"`    // perfdata label
}

// Load reads and parses a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses config yaml.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

// TimeoutDuration parses the timeout field; zero when unset.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	return d, nil
}

// Validate checks the config for structural correctness.
func Validate(c *Config) []error {
	var errs []error

	if d, err := c.TimeoutDuration(); err != nil {
		errs = append(errs, err)
	} else if d < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	if c.Warning != "" {
		if _, err := nagios.ParseRange(c.Warning); err != nil {
			errs = append(errs, fmt.Errorf("warning: %w", err))
		}
	}
	if c.Critical != "" {
		if _, err := nagios.ParseRange(c.Critical); err != nil {
			errs = append(errs, fmt.Errorf("critical: %w", err))
		}
	}
	return errs
}
