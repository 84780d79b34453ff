// Package config provides unified configuration loading for the engine
// and its CLI collaborators. It supports loading from a YAML file and
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EngineConfig contains all engine-level configuration settings.
type EngineConfig struct {
	// BrainFile is the path to the single binary file that is the
	// engine's persistent memory.
	BrainFile string `json:"brain_file" yaml:"brain_file"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Ports contains settings for the port manager's routing table.
	Ports PortsConfig `json:"ports" yaml:"ports"`

	// Seed, when non-nil, overrides the engine's per-call output PRNG seed
	// instead of deriving it from graph state and input bytes — a
	// determinism knob for reproducing a specific run. Optional: nil
	// leaves the engine's own seed derivation untouched.
	Seed *int64 `json:"seed" yaml:"seed"`
}

// LoggingConfig configures the engine's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or
	// "trace". "debug" enables decision logging to <state_dir>/decisions.jsonl.
	Level string `json:"level" yaml:"level"`

	// StateDir is the directory decision logs are written under.
	StateDir string `json:"state_dir" yaml:"state_dir"`
}

// PortsConfig configures the port manager's static routing table.
type PortsConfig struct {
	// RoutingFile is the path to the YAML file mapping input ports to
	// output ports, loaded by internal/portmgr.
	RoutingFile string `json:"routing_file" yaml:"routing_file"`
}

// Default returns an EngineConfig with sensible defaults.
func Default() *EngineConfig {
	return &EngineConfig{
		BrainFile: "melvin.brain",
		Logging: LoggingConfig{
			Level:    "info",
			StateDir: ".melvin",
		},
		Ports: PortsConfig{
			RoutingFile: "",
		},
	}
}

// Load loads configuration from the given path (if it exists) and applies
// environment variable overrides. An empty path skips the file and
// applies defaults plus overrides only.
func Load(path string) (*EngineConfig, error) {
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			fileCfg, err := LoadFromFile(path)
			if err != nil {
				return nil, fmt.Errorf("config: loading file: %w", err)
			}
			cfg = fileCfg
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file, starting
// from the defaults so unset fields keep sensible values.
func LoadFromFile(path string) (*EngineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *EngineConfig) Validate() error {
	if c.BrainFile == "" {
		return fmt.Errorf("brain_file must not be empty")
	}

	validLevels := map[string]bool{"": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *EngineConfig) {
	if v := os.Getenv("MELVIN_BRAIN_FILE"); v != "" {
		cfg.BrainFile = v
	}
	if v := os.Getenv("MELVIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("MELVIN_STATE_DIR"); v != "" {
		cfg.Logging.StateDir = v
	}
	if v := os.Getenv("MELVIN_PORTS_ROUTING_FILE"); v != "" {
		cfg.Ports.RoutingFile = v
	}
	if v := os.Getenv("MELVIN_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = &seed
		}
	}
}
