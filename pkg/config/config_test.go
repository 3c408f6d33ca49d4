package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:           "8080",
		Env:            "development",
		JWTSecret:      defaultJWTSecret,
		JWTTTL:         time.Hour,
		RealtimeDriver: RealtimeMemory,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are fine in development", func(*Config) {}, ""},
		{"missing port", func(c *Config) { c.Port = "" }, "PORT"},
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"redis without url", func(c *Config) { c.RealtimeDriver = RealtimeRedis }, "REDIS_URL"},
		{"redis with url", func(c *Config) { c.RealtimeDriver = RealtimeRedis; c.RedisURL = "redis://localhost:6379" }, ""},
		{"unknown driver", func(c *Config) { c.RealtimeDriver = "kafka" }, "REALTIME_DRIVER"},
		{"default secret in production", func(c *Config) { c.Env = "production" }, "default"},
		{"short secret in production", func(c *Config) { c.Env = "prod"; c.JWTSecret = "short" }, "32"},
		{"strong secret in production", func(c *Config) { c.Env = "production"; c.JWTSecret = strings.Repeat("k", 32) }, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("S3_BUCKET", "media")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Origins())
	assert.Equal(t, "media", cfg.S3.Bucket)
	assert.Equal(t, RealtimeMemory, cfg.RealtimeDriver)
	assert.False(t, cfg.IsProduction())
}
