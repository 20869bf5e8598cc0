package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `environment: development
server:
  port: 9090
rcon:
  host: mc.example.net
  port: 25580
  password: hunter2
  timeout: 2s
  commands:
    withdraw: "money take {player} {amount}"
site:
  password: letmein
shop:
  skills:
    mining: 2
    fishing: 1.5
    alchemy: "0.25"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.RCON.Addr() != "mc.example.net:25580" {
		t.Errorf("Expected rcon addr mc.example.net:25580, got %s", cfg.RCON.Addr())
	}
	if cfg.RCON.Timeout != 2*time.Second {
		t.Errorf("Expected rcon timeout 2s, got %s", cfg.RCON.Timeout)
	}
	if cfg.RCON.Commands.Withdraw != "money take {player} {amount}" {
		t.Errorf("Unexpected withdraw command %q", cfg.RCON.Commands.Withdraw)
	}
	if cfg.RCON.Commands.Deposit != "eco give {player} {amount}" {
		t.Errorf("Expected default deposit command, got %q", cfg.RCON.Commands.Deposit)
	}

	wantRates := map[string]string{"mining": "2", "fishing": "1.5", "alchemy": "0.25"}
	if len(cfg.Shop.Skills) != len(wantRates) {
		t.Fatalf("Expected %d skills, got %d", len(wantRates), len(cfg.Shop.Skills))
	}
	for skill, want := range wantRates {
		got, ok := cfg.Shop.Skills[skill]
		if !ok {
			t.Errorf("Missing skill %s", skill)
			continue
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("Skill %s: expected rate %s, got %s", skill, want, got)
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected valid config, got %v", err)
	}
	if !cfg.IsDevelopment() {
		t.Error("Expected development environment")
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "rcon:\n  password: x\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.RCON.Addr() != "localhost:25575" {
		t.Errorf("Expected default rcon addr, got %s", cfg.RCON.Addr())
	}
	if cfg.RCON.Timeout != 5*time.Second {
		t.Errorf("Expected default rcon timeout 5s, got %s", cfg.RCON.Timeout)
	}
	if len(cfg.Shop.Skills) != len(DefaultSkills) {
		t.Errorf("Expected default catalog of %d skills, got %d", len(DefaultSkills), len(cfg.Shop.Skills))
	}
	if cfg.RCON.Commands.Exists != "bal {player}" {
		t.Errorf("Expected exists command to default to balance command, got %q", cfg.RCON.Commands.Exists)
	}
	if cfg.Site.SessionSecret == "" {
		t.Error("Expected generated session secret")
	}
	if cfg.TokenStore.Driver != "memory" {
		t.Errorf("Expected memory token store, got %s", cfg.TokenStore.Driver)
	}
	if cfg.Kafka.AuditTopic() != "xpshop.purchases" {
		t.Errorf("Unexpected audit topic %s", cfg.Kafka.AuditTopic())
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RCON_PASSWORD", "from-env")
	t.Setenv("RCON_HOST", "10.0.0.5")
	t.Setenv("SITE_PASSWORD", "env-pass")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.RCON.Password != "from-env" {
		t.Errorf("Expected rcon password from env, got %q", cfg.RCON.Password)
	}
	if cfg.RCON.Host != "10.0.0.5" {
		t.Errorf("Expected rcon host from env, got %q", cfg.RCON.Host)
	}
	if cfg.Site.Password != "env-pass" {
		t.Errorf("Expected site password from env, got %q", cfg.Site.Password)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing rcon password", mutate: func(c *Config) { c.RCON.Password = "" }, wantErr: true},
		{name: "missing site password", mutate: func(c *Config) { c.Site.Password = "" }, wantErr: true},
		{name: "hash only", mutate: func(c *Config) { c.Site.Password = ""; c.Site.PasswordHash = "$2a$10$x" }, wantErr: false},
		{name: "redis without addr", mutate: func(c *Config) { c.TokenStore.Driver = "redis" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.TokenStore.Driver = "etcd" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.RCON.Password = "secret"
			cfg.Site.Password = "pass"
			if err := cfg.setDefaults(); err != nil {
				t.Fatalf("setDefaults failed: %v", err)
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error but got none")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
