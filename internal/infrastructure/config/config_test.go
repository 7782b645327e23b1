package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/eslsoft/wordladder/internal/entity"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wordladder.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	path := writeConfig(t, `
database:
  driver: PostgreSQL
  dsn: postgres://localhost/words
learning:
  hour_offset: -4
  new_target: 5
  ladder:
    - {wait_days: 0, required_count: 2, reveal_prompt: true}
    - {wait_days: 3, required_count: 1}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver() != "postgres" {
		t.Fatalf("expected normalized postgres driver, got %q", cfg.DatabaseDriver())
	}
	want := entity.Ladder{entity.ShowRung(0, 2), entity.GuessRung(3, 1)}
	if len(cfg.Learning.Ladder) != 2 || cfg.Learning.Ladder[0] != want[0] || cfg.Learning.Ladder[1] != want[1] {
		t.Fatalf("unexpected ladder %v", cfg.Learning.Ladder)
	}
	if cfg.DayOffset() != -4*time.Hour {
		t.Fatalf("unexpected day offset %v", cfg.DayOffset())
	}
	if cfg.Learning.NewTarget != 5 || cfg.Learning.RepeatTarget != 30 {
		t.Fatalf("unexpected targets %+v", cfg.Learning)
	}
	if cfg.HTTPAddr() != "localhost:8080" {
		t.Fatalf("unexpected addr %q", cfg.HTTPAddr())
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver() != "sqlite3" || cfg.Database.DSN != "wordladder.db" {
		t.Fatalf("unexpected database defaults %+v", cfg.Database)
	}
	if len(cfg.Learning.Ladder) != len(entity.DefaultLadder()) {
		t.Fatalf("expected default ladder, got %v", cfg.Learning.Ladder)
	}
	if !cfg.Snapshot.Enabled || cfg.Snapshot.Cron == "" {
		t.Fatalf("unexpected snapshot defaults %+v", cfg.Snapshot)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("WORDLADDER_DATABASE_DRIVER", "sqlite")
	path := writeConfig(t, "log:\n  level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseDriver() != "sqlite" || cfg.Log.Level != "debug" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestValidateRejects(t *testing.T) {
	base := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: "sqlite3", DSN: "x.db"},
			Learning: LearningConfig{Ladder: entity.DefaultLadder()},
			Server:   ServerConfig{HTTPPort: 8080},
		}
	}
	cases := map[string]func(*Config){
		"driver":       func(c *Config) { c.Database.Driver = "oracle" },
		"dsn":          func(c *Config) { c.Database.DSN = " " },
		"empty ladder": func(c *Config) { c.Learning.Ladder = entity.Ladder{} },
		"zero count":   func(c *Config) { c.Learning.Ladder = entity.Ladder{entity.GuessRung(1, 0)} },
		"offset":       func(c *Config) { c.Learning.HourOffset = 30 },
		"port":         func(c *Config) { c.Server.HTTPPort = 70000 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}
}
