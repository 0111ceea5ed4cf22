package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultPort = 8001

// Duration decodes YAML scalars like 10s with time.ParseDuration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Config is the harnessd configuration file. Command line flags override
// file values, and file values override defaults.
type Config struct {
	Port        int      `yaml:"port"`
	ReadTimeout Duration `yaml:"read_timeout"`
	Directories []string `yaml:"directories"`
	Library     string   `yaml:"library"`
	Responses   string   `yaml:"responses"`
}

// NewConfig returns a Config holding the defaults.
func NewConfig() *Config {
	return &Config{
		Port:        defaultPort,
		ReadTimeout: Duration(10 * time.Second),
	}
}

// ReadConfigFile loads path over config, so keys absent from the file keep
// their current values.
func ReadConfigFile(path string, config *Config) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(content, config); err != nil {
		return fmt.Errorf("configuration file %q: %w", path, err)
	}
	return nil
}
