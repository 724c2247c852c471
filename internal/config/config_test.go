package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Graph.UseCaseToTagEdge != "USE_CASE_TO_TAG" {
		t.Errorf("unexpected use-case-to-tag edge: %s", cfg.Graph.UseCaseToTagEdge)
	}
	if cfg.Graph.GeneratedLevelPrefix != "gen" {
		t.Errorf("unexpected generated prefix: %s", cfg.Graph.GeneratedLevelPrefix)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("unexpected log level: %s", cfg.Logging.Level)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `store:
  dir: /var/lib/strata
graph:
  generated_level_prefix: auto
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if cfg.Store.Dir != "/var/lib/strata" {
		t.Errorf("expected store dir override, got %s", cfg.Store.Dir)
	}
	if cfg.Graph.GeneratedLevelPrefix != "auto" {
		t.Errorf("expected prefix override, got %s", cfg.Graph.GeneratedLevelPrefix)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected level override, got %s", cfg.Logging.Level)
	}
	// Values absent from the file keep defaults
	if cfg.Graph.AggregatesEdge != "AGGREGATES" {
		t.Errorf("expected default aggregates edge, got %s", cfg.Graph.AggregatesEdge)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("graph: [not a map"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty edge kind", func(c *Config) { c.Graph.OperationToSaveEdge = "" }, true},
		{"empty object kind", func(c *Config) { c.Graph.ObjectKind = "" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, true},
		{"empty log level ok", func(c *Config) { c.Logging.Level = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STRATA_STORE_DIR", "/tmp/strata-test")
	t.Setenv("STRATA_GENERATED_PREFIX", "mach")
	t.Setenv("STRATA_LOG_LEVEL", "trace")

	cfg := Default()
	applyEnvOverrides(cfg)

	if cfg.Store.Dir != "/tmp/strata-test" {
		t.Errorf("expected store dir from env, got %s", cfg.Store.Dir)
	}
	if cfg.Graph.GeneratedLevelPrefix != "mach" {
		t.Errorf("expected prefix from env, got %s", cfg.Graph.GeneratedLevelPrefix)
	}
	if cfg.Logging.Level != "trace" {
		t.Errorf("expected level from env, got %s", cfg.Logging.Level)
	}
}

func TestResolveDataDir(t *testing.T) {
	cfg := Default()
	if got := cfg.ResolveDataDir("/proj"); got != filepath.Join("/proj", ".strata") {
		t.Errorf("expected default under root, got %s", got)
	}

	cfg.Store.Dir = "/data/strata"
	if got := cfg.ResolveDataDir("/proj"); got != "/data/strata" {
		t.Errorf("expected configured dir, got %s", got)
	}
}
