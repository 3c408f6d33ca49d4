package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anonto42/instaclone/backend/pkg/logger"
	"github.com/anonto42/instaclone/backend/pkg/storage"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "supersecretjwtkey"

// Realtime drivers.
const (
	RealtimeMemory = "memory"
	RealtimeRedis  = "redis"
)

type Config struct {
	Port                    string        `mapstructure:"PORT"`
	Env                     string        `mapstructure:"APP_ENV"`
	FirebaseCredentialsPath string        `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	PostgresURL             string        `mapstructure:"POSTGRES_CONN_STR"`
	MongoURI                string        `mapstructure:"MONGO_URI"`
	MongoDatabase           string        `mapstructure:"MONGO_DATABASE"`
	MetricsPort             string        `mapstructure:"METRICS_PORT"`
	JWTSecret               string        `mapstructure:"JWT_SECRET"`
	JWTTTL                  time.Duration `mapstructure:"JWT_TTL"`
	SessionCookie           string        `mapstructure:"SESSION_COOKIE"`
	AllowedOrigins          string        `mapstructure:"ALLOWED_ORIGINS"`
	RedisURL                string        `mapstructure:"REDIS_URL"`
	RealtimeDriver          string        `mapstructure:"REALTIME_DRIVER"`
	StorySweepInterval      time.Duration `mapstructure:"STORY_SWEEP_INTERVAL"`
	ReconcileInterval       time.Duration `mapstructure:"RECONCILE_INTERVAL"`
	MaxUploadBytes          int64         `mapstructure:"MAX_UPLOAD_BYTES"`

	S3  storage.S3Config `mapstructure:",squash"`
	Log logger.Config    `mapstructure:",squash"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "")
	v.SetDefault("POSTGRES_CONN_STR", "host=localhost user=postgres password=postgres dbname=instaclone port=5432 sslmode=disable")
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DATABASE", "instaclone")
	v.SetDefault("METRICS_PORT", "9090")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_TTL", 72*time.Hour)
	v.SetDefault("SESSION_COOKIE", "session")
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REALTIME_DRIVER", RealtimeMemory)
	v.SetDefault("STORY_SWEEP_INTERVAL", time.Hour)
	v.SetDefault("RECONCILE_INTERVAL", time.Hour)
	v.SetDefault("MAX_UPLOAD_BYTES", 20<<20)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_USE_PATH_STYLE", false)
	v.SetDefault("S3_PUBLIC_URL", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("SERVICE_NAME", "instaclone-api")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Origins splits ALLOWED_ORIGINS on commas.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.RealtimeDriver {
	case RealtimeMemory:
	case RealtimeRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when REALTIME_DRIVER=redis")
		}
	default:
		return fmt.Errorf("unknown REALTIME_DRIVER %q", c.RealtimeDriver)
	}
	if c.IsProduction() {
		if c.JWTSecret == defaultJWTSecret {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
	}
	return nil
}
