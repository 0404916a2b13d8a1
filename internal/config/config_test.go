package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(engineEnv, "")
	t.Setenv(maxRoundsEnv, "")
	t.Setenv(timeoutEnv, "")
	t.Setenv(batchSizeEnv, "")

	cfg := Load()

	if cfg.Debate.MaxRounds != 15 {
		t.Fatalf("expected 15 max rounds, got %d", cfg.Debate.MaxRounds)
	}
	if cfg.Debate.Timeout != 300*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.Debate.Timeout)
	}
	if cfg.Batch.Size != 10 || cfg.Batch.Workers != 1 {
		t.Fatalf("unexpected batch config: %+v", cfg.Batch)
	}
	if !cfg.Debate.Spanish() {
		t.Fatalf("spanish reports should default to on")
	}
	if cfg.Scheduler.Location() == nil {
		t.Fatalf("expected bound scheduler location")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "newsdebate.yaml")
	raw := `
database:
  driver: memory
engine:
  provider: Anthropic
  turnTimeout: 45s
  anthropic:
    model: claude-test
debate:
  maxRounds: 11
  timeout: 2m
  spanishReports: false
  roles:
    Moderator: "Keep it short."
batch:
  workers: 3
scheduler:
  timezone: Europe/Madrid
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(configPathEnv, path)
	t.Setenv(batchSizeEnv, "4")
	t.Setenv(timeoutEnv, "90")
	t.Setenv(databaseDSNEnv, "")
	t.Setenv(engineEnv, "")
	t.Setenv(maxRoundsEnv, "")

	cfg := Load()

	if cfg.Database.Driver != DriverMemory {
		t.Fatalf("expected memory driver, got %q", cfg.Database.Driver)
	}
	if cfg.Engine.Provider != ProviderAnthropic || cfg.Engine.Anthropic.Model != "claude-test" {
		t.Fatalf("unexpected engine config: %+v", cfg.Engine)
	}
	if cfg.Engine.TurnTimeout != 45*time.Second {
		t.Fatalf("unexpected turn timeout: %s", cfg.Engine.TurnTimeout)
	}
	if cfg.Engine.OpenAI.Model != "gpt-4o-mini" {
		t.Fatalf("untouched sections should keep defaults, got %q", cfg.Engine.OpenAI.Model)
	}
	if cfg.Debate.MaxRounds != 11 {
		t.Fatalf("unexpected max rounds: %d", cfg.Debate.MaxRounds)
	}
	if cfg.Debate.Timeout != 90*time.Second {
		t.Fatalf("env should win over file, got %s", cfg.Debate.Timeout)
	}
	if cfg.Debate.Spanish() {
		t.Fatalf("spanish reports should be disabled")
	}
	if cfg.Debate.Roles["Moderator"] != "Keep it short." {
		t.Fatalf("role override not loaded: %+v", cfg.Debate.Roles)
	}
	if cfg.Batch.Size != 4 || cfg.Batch.Workers != 3 {
		t.Fatalf("unexpected batch config: %+v", cfg.Batch)
	}
	if cfg.Scheduler.Location().String() != "Europe/Madrid" {
		t.Fatalf("unexpected location: %s", cfg.Scheduler.Location())
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.Engine.Provider = "gemini" }},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mongo" }},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }},
		{"zero rounds", func(c *Config) { c.Debate.MaxRounds = 0 }},
		{"zero timeout", func(c *Config) { c.Debate.Timeout = 0 }},
		{"zero batch", func(c *Config) { c.Batch.Size = 0 }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}
