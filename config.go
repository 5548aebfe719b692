package ecs

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config mirrors the scheduler options that can be supplied from a file.
type Config struct {
	AsyncWorkers int               `yaml:"async_workers" json:"async_workers"`
	SyncOrder    []string          `yaml:"sync_order" json:"sync_order"`
	Observation  ObservationConfig `yaml:"observation" json:"observation"`
}

// ObservationConfig toggles the built-in observers from configuration.
type ObservationConfig struct {
	StructuredLogging bool   `yaml:"structured_logging" json:"structured_logging"`
	LogFormat         string `yaml:"log_format" json:"log_format"`
	Metrics           bool   `yaml:"metrics" json:"metrics"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() Config {
	return Config{
		Observation: ObservationConfig{LogFormat: "json"},
	}
}

// LoadConfigYAML decodes a Config from YAML.
func LoadConfigYAML(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("ecs: decode yaml config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigJSON decodes a Config from JSON.
func LoadConfigJSON(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("ecs: decode json config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFile decodes a Config from a YAML or JSON file based on its
// extension.
func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("ecs: open config: %w", err)
	}
	defer f.Close()
	if strings.HasSuffix(path, ".json") {
		return LoadConfigJSON(f)
	}
	return LoadConfigYAML(f)
}

// Validate rejects values that cannot map onto scheduler options.
func (c Config) Validate() error {
	if c.AsyncWorkers < 0 {
		return fmt.Errorf("ecs: async_workers must not be negative, got %d", c.AsyncWorkers)
	}
	switch strings.ToLower(c.Observation.LogFormat) {
	case "", "json", "kv", "keyvalue", "key_value":
	default:
		return fmt.Errorf("ecs: unknown log_format %q", c.Observation.LogFormat)
	}
	return nil
}

// Apply pushes configuration values onto a scheduler builder.
func (c Config) Apply(builder SchedulerBuilder) SchedulerBuilder {
	if c.AsyncWorkers > 0 {
		builder = builder.WithAsyncWorkers(c.AsyncWorkers)
	}
	if len(c.SyncOrder) > 0 {
		order := make([]WorkGroupID, 0, len(c.SyncOrder))
		for _, id := range c.SyncOrder {
			order = append(order, WorkGroupID(id))
		}
		builder = builder.WithSyncOrder(order)
	}
	if c.Observation.StructuredLogging || c.Observation.Metrics {
		builder = builder.WithInstrumentation(InstrumentationConfig{
			Observation: ObservationSettings{
				EnableStructuredLogging: c.Observation.StructuredLogging,
				LoggingFormat:           c.Observation.logFormat(),
				EnableMetrics:           c.Observation.Metrics,
			},
		})
	}
	return builder
}

func (o ObservationConfig) logFormat() ObservationLogFormat {
	switch strings.ToLower(o.LogFormat) {
	case "kv", "keyvalue", "key_value":
		return ObservationLogFormatKeyValue
	default:
		return ObservationLogFormatJSON
	}
}
