// Package config provides unified configuration loading for strata.
// It supports loading from YAML files and environment variables. The
// resulting Config is built once at startup and passed explicitly into
// each component; nothing here is ambient global state.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config contains all strata configuration settings.
type Config struct {
	// Store contains settings for the graph store backend.
	Store StoreConfig `json:"store" yaml:"store"`

	// Graph names the relationship kinds and entity vocabulary used in
	// the property graph. These are fixed at startup; changing them on a
	// populated store orphans existing relationships.
	Graph GraphConfig `json:"graph" yaml:"graph"`

	// Logging contains settings for operational and audit logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// StoreConfig configures the graph store backend.
type StoreConfig struct {
	// Dir is the data directory holding the SQLite database and JSONL
	// exchange files. Empty means <root>/.strata.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`
}

// GraphConfig names the graph vocabulary.
type GraphConfig struct {
	// UseCaseToTagEdge is the edge kind linking a use case to its tags.
	UseCaseToTagEdge string `json:"use_case_to_tag_edge" yaml:"use_case_to_tag_edge"`

	// UseCaseToUseCaseEdge is the edge kind forming the use-case tree.
	UseCaseToUseCaseEdge string `json:"use_case_to_use_case_edge" yaml:"use_case_to_use_case_edge"`

	// OperationToSaveEdge is the edge kind linking an operation to its save.
	OperationToSaveEdge string `json:"operation_to_save_edge" yaml:"operation_to_save_edge"`

	// AggregatesEdge is the edge kind from a level to its member objects.
	AggregatesEdge string `json:"aggregates_edge" yaml:"aggregates_edge"`

	// ObjectKind is the node kind of the generic base object entity.
	ObjectKind string `json:"object_kind" yaml:"object_kind"`

	// ObjectFullNameProp is the property holding an object's full name.
	ObjectFullNameProp string `json:"object_full_name_prop" yaml:"object_full_name_prop"`

	// GeneratedLevelPrefix marks system-generated levels: a level whose
	// full name contains a "##<prefix>..." segment was produced by the
	// grouping pipeline and participates in snapshotting.
	GeneratedLevelPrefix string `json:"generated_level_prefix" yaml:"generated_level_prefix"`
}

// LoggingConfig configures strata's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables audit logging to <store dir>/audit.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Dir: "",
		},
		Graph: GraphConfig{
			UseCaseToTagEdge:     "USE_CASE_TO_TAG",
			UseCaseToUseCaseEdge: "USE_CASE_TO_USE_CASE",
			OperationToSaveEdge:  "OPERATION_TO_SAVE",
			AggregatesEdge:       "AGGREGATES",
			ObjectKind:           "object",
			ObjectFullNameProp:   "full_name",
			GeneratedLevelPrefix: "gen",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// ResolveDataDir returns the effective data directory: the configured
// store dir when set, otherwise <root>/.strata.
func (c *Config) ResolveDataDir(root string) string {
	if c.Store.Dir != "" {
		return c.Store.Dir
	}
	return filepath.Join(root, ".strata")
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.strata/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".strata", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Values absent from the file keep their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	vocab := map[string]string{
		"use_case_to_tag_edge":      c.Graph.UseCaseToTagEdge,
		"use_case_to_use_case_edge": c.Graph.UseCaseToUseCaseEdge,
		"operation_to_save_edge":    c.Graph.OperationToSaveEdge,
		"aggregates_edge":           c.Graph.AggregatesEdge,
		"object_kind":               c.Graph.ObjectKind,
		"object_full_name_prop":     c.Graph.ObjectFullNameProp,
		"generated_level_prefix":    c.Graph.GeneratedLevelPrefix,
	}
	for key, value := range vocab {
		if value == "" {
			return fmt.Errorf("graph vocabulary entry %s must not be empty", key)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("STRATA_STORE_DIR"); v != "" {
		config.Store.Dir = v
	}
	if v := os.Getenv("STRATA_GENERATED_PREFIX"); v != "" {
		config.Graph.GeneratedLevelPrefix = v
	}
	if v := os.Getenv("STRATA_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
}
