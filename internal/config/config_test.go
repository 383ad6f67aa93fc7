package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, BackendMemory, c.Backend)
	assert.Equal(t, "default-app", c.AppID)
	assert.Equal(t, "127.0.0.1:6379", c.RedisAddr)
	assert.Equal(t, 15*time.Minute, c.IdleTimeout)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, BackendMemory, cfg.Backend)
	assert.Equal(t, 15*time.Minute, cfg.IdleTimeout)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.LoadDefaults()
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{name: "redis backend with addr", mutate: func(c *Config) { c.Backend = BackendRedis }},
		{name: "redis backend without addr", mutate: func(c *Config) { c.Backend = BackendRedis; c.RedisAddr = "" }, wantErr: true},
		{name: "postgres backend without dsn", mutate: func(c *Config) { c.Backend = BackendPostgres; c.DatabaseDSN = "" }, wantErr: true},
		{name: "unknown backend", mutate: func(c *Config) { c.Backend = "mongo" }, wantErr: true},
		{name: "empty app id", mutate: func(c *Config) { c.AppID = "" }, wantErr: true},
		{name: "auth endpoint without key", mutate: func(c *Config) { c.AuthEndpoint = "https://auth.example" }, wantErr: true},
		{name: "auth endpoint with key", mutate: func(c *Config) { c.AuthEndpoint = "https://auth.example"; c.AuthAPIKey = "k" }},
		{name: "non-positive idle timeout", mutate: func(c *Config) { c.IdleTimeout = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
