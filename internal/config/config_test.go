package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"shelfsync/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shelfsync.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path := writeConfig(t, `
[manager]
minimum_copies = 3
max_concurrency = 2
sort_order = "Folders_First"

[[agents]]
name = " Agent 1 "
hostname = "localhost:3000/"
api_key = "550e8400-e29b-41d4-a716-446655440000"
`)

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != path {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, path)
	}
	if cfg.Manager.MinimumCopies != 3 {
		t.Fatalf("expected minimum copies 3, got %d", cfg.Manager.MinimumCopies)
	}
	if cfg.Manager.AgentTimeoutSeconds != 5 {
		t.Fatalf("expected agent timeout default of 5, got %d", cfg.Manager.AgentTimeoutSeconds)
	}
	if cfg.AgentTimeout() != 5*time.Second {
		t.Fatalf("unexpected agent timeout duration: %s", cfg.AgentTimeout())
	}
	if cfg.Manager.SortOrder != "folders_first" {
		t.Fatalf("expected normalized sort order, got %q", cfg.Manager.SortOrder)
	}
	if len(cfg.Agents) != 1 {
		t.Fatalf("expected one agent, got %d", len(cfg.Agents))
	}
	agent := cfg.Agents[0]
	if agent.Name != "Agent 1" || agent.Hostname != "localhost:3000" {
		t.Fatalf("expected trimmed agent, got %+v", agent)
	}
	if cfg.Paths.StateDir != filepath.Join(tempHome, ".local", "share", "shelfsync") {
		t.Fatalf("unexpected state dir: %q", cfg.Paths.StateDir)
	}
	if !cfg.Journal.Enabled {
		t.Fatal("expected journal enabled by default")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.StateDir); err != nil || !info.IsDir() {
		t.Fatalf("expected state dir to exist: %v", err)
	}
}

func TestLoadWithoutAgentsFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, _, exists, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err == nil {
		t.Fatal("expected error when no agents are configured")
	}
	if exists {
		t.Fatal("expected exists to be false for missing file")
	}
	if !strings.Contains(err.Error(), "agents") {
		t.Fatalf("expected agents hint, got %v", err)
	}
}

func TestAgentKeyFallsBackToEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SHELFSYNC_AGENT_NAS_2_API_KEY", " env-key ")
	t.Setenv("SHELFSYNC_API_TOKEN", "token-1")

	path := writeConfig(t, `
[[agents]]
name = "nas-2"
hostname = "10.0.0.2:3000"

[[agents]]
name = "nas-3"
hostname = "10.0.0.3:3000"
api_key = "file-key"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.Agents[0].APIKey; got != "env-key" {
		t.Fatalf("expected env api key, got %q", got)
	}
	if got := cfg.Agents[1].APIKey; got != "file-key" {
		t.Fatalf("expected file api key to be kept, got %q", got)
	}
	if cfg.Manager.APIToken != "token-1" {
		t.Fatalf("expected api token from env, got %q", cfg.Manager.APIToken)
	}
	if got := cfg.Agents[1].Hostname; got != "10.0.0.3:3000" {
		t.Fatalf("unexpected hostname %q", got)
	}
}

func TestAgentKeyEnv(t *testing.T) {
	t.Parallel()

	if got := config.AgentKeyEnv("nas 1"); got != "SHELFSYNC_AGENT_NAS_1_API_KEY" {
		t.Fatalf("unexpected env name: %q", got)
	}
	if got := config.AgentKeyEnv("Büro-NAS"); got != "SHELFSYNC_AGENT_B_RO_NAS_API_KEY" {
		t.Fatalf("unexpected env name for non-ascii: %q", got)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "replace_with_agent_api_key") {
		t.Fatalf("sample config missing placeholder key: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if len(cfg.Agents) != 2 {
		t.Fatalf("expected two sample agents, got %d", len(cfg.Agents))
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config should validate: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	valid := func() config.Config {
		cfg := config.Default()
		cfg.Agents = []config.Agent{{Name: "a", Hostname: "localhost:3000"}}
		return cfg
	}

	base := valid()
	if err := base.Validate(); err != nil {
		t.Fatalf("expected baseline to validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"zero minimum copies", func(c *config.Config) { c.Manager.MinimumCopies = 0 }},
		{"minimum copies overflow", func(c *config.Config) { c.Manager.MinimumCopies = 256 }},
		{"negative timeout", func(c *config.Config) { c.Manager.AgentTimeoutSeconds = -1 }},
		{"negative concurrency", func(c *config.Config) { c.Manager.MaxConcurrency = -1 }},
		{"unknown sort", func(c *config.Config) { c.Manager.SortOrder = "size" }},
		{"blank agent name", func(c *config.Config) { c.Agents[0].Name = "" }},
		{"blank hostname", func(c *config.Config) { c.Agents[0].Hostname = " " }},
		{"duplicate agent", func(c *config.Config) { c.Agents = append(c.Agents, c.Agents[0]) }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
