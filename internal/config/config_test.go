package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clientmanagement.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// TestPurpose: Validates the defaults < YAML < ENV hierarchy.
// Scope: Unit Test
// Expected: YAML overrides defaults, environment overrides YAML, untouched keys keep defaults.
// Test Case ID: CFG-01
func TestLoadFrom_Overlay(t *testing.T) {
	path := writeYAML(t, `
environment: development
server:
  port: "9090"
database:
  password: from-yaml
  max_open_conns: 7
nats:
  url: nats://yaml:4222
identity:
  cache_ttl: 2m
clients:
  strict_identifiers: true
`)
	t.Setenv("NATS_URL", "nats://env:4222")
	t.Setenv("RATELIMIT_RPS", "2.5")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "from-yaml", cfg.Database.Password)
	assert.Equal(t, 7, cfg.Database.MaxOpenConns)
	assert.Equal(t, "nats://env:4222", cfg.NATS.URL)
	assert.Equal(t, 2*time.Minute, cfg.Identity.CacheTTL)
	assert.True(t, cfg.Clients.StrictIdentifiers)
	assert.InDelta(t, 2.5, cfg.RateLimit.RequestsPerSecond, 0.001)
	assert.Equal(t, "default-tenant", cfg.Tenancy.DefaultTenant)
	assert.Equal(t, "dev-user", cfg.Tenancy.DefaultUser)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.True(t, cfg.IsDevelopment())
}

// TestPurpose: Validates that a missing YAML file is not an error.
// Scope: Unit Test
// Expected: Defaults plus environment are loaded.
// Test Case ID: CFG-02
func TestLoadFrom_MissingFile(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")

	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, "8080", cfg.Server.Port)
}

// TestPurpose: Validates configuration rules.
// Scope: Unit Test
// Security: Production must not run with development fallbacks
// Expected: Each broken configuration is rejected.
// Test Case ID: CFG-03
func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg := Defaults()
		cfg.Database.Password = "secret"
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid development", func(*Config) {}, ""},
		{"postgres without password", func(c *Config) { c.Database.Password = "" }, "DB_PASSWORD"},
		{"unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "DB_DRIVER"},
		{"unknown environment", func(c *Config) { c.Environment = "staging" }, "APP_ENV"},
		{"memory in production", func(c *Config) {
			c.Environment = EnvProduction
			c.Database.Driver = DriverMemory
		}, "memory driver"},
		{"production without nats", func(c *Config) {
			c.Environment = EnvProduction
			c.Auth.JWTSecret = "k"
		}, "NATS_URL"},
		{"production without jwt secret", func(c *Config) {
			c.Environment = EnvProduction
			c.NATS.URL = "nats://localhost:4222"
		}, "JWT_SECRET"},
		{"production complete", func(c *Config) {
			c.Environment = " Production "
			c.NATS.URL = "nats://localhost:4222"
			c.Auth.JWTSecret = "k"
		}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoadFrom_BadYAML(t *testing.T) {
	path := writeYAML(t, "server: [unterminated")
	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "config yaml")
}
