package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/arnavshah/housekeeping-api-go/pkg/allocator"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the service configuration read from the environment
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"8000"`
		GinMode         string `env:"GIN_MODE"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"30"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		URL  string `env:"URL"`                          // postgres DSN; empty means sqlite
		Path string `env:"PATH" envDefault:"api_keys.db"` // sqlite file
	} `envPrefix:"DATABASE_"`
	Auth struct {
		JWTSecret     string `env:"JWT_SECRET"`
		MasterSecret  string `env:"MASTER_SECRET"`
		AdminUsername string `env:"ADMIN_USERNAME" envDefault:"admin"`
		AdminPassword string `env:"ADMIN_PASSWORD" envDefault:"admin123"`
		TokenTTL      int    `env:"TOKEN_TTL" envDefault:"86400"` // seconds
		BcryptCost    int    `env:"BCRYPT_COST" envDefault:"14"`
	} `envPrefix:"AUTH_"`
	Redis struct {
		Addr     string `env:"ADDR"` // empty disables the daily limiter
		Password string `env:"PASSWORD"`
		DB       int    `env:"DB" envDefault:"0"`
	} `envPrefix:"REDIS_"`
	Log struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Format string `env:"FORMAT" envDefault:"json"`
	} `envPrefix:"LOG_"`
	Engine struct {
		PolicyFile string `env:"POLICY_FILE"`
		Attempts   int    `env:"ATTEMPTS" envDefault:"24"`
		Timeout    int    `env:"TIMEOUT" envDefault:"10"` // seconds per search
		Workers    int    `env:"WORKERS" envDefault:"0"`
	} `envPrefix:"ENGINE_"`
}

// SearchTimeout is the per-request budget for the allocation search
func (c *Config) SearchTimeout() time.Duration {
	return time.Duration(c.Engine.Timeout) * time.Second
}

// TokenTTL is how long an admin token stays valid
func (c *Config) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTL) * time.Second
}

// LoadDotEnv loads the first .env file found in the working directory or
// one of its parents.
func LoadDotEnv() {
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads .env (if any) and then the process environment
func Load() (*Config, error) {
	LoadDotEnv()
	return Parse()
}

// Parse reads the process environment only
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// the first error keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// LoadPolicy overlays a YAML policy file on the default tolerances. An
// empty path returns the defaults.
func LoadPolicy(path string) (allocator.Policy, error) {
	policy := allocator.DefaultPolicy()
	if path == "" {
		return policy, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("read policy file: %w", err)
	}
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return policy, fmt.Errorf("parse policy file %s: %w", path, err)
	}
	if err := CheckPolicy(policy); err != nil {
		return policy, fmt.Errorf("policy file %s: %w", path, err)
	}
	return policy, nil
}

// CheckPolicy rejects tolerances the engine cannot work with
func CheckPolicy(p allocator.Policy) error {
	switch {
	case p.BathFloorCeiling < 1:
		return errors.New("bath_floor_ceiling must be at least 1")
	case p.TwinSpreadTarget < 0 || p.ZeroTwinMax < 0 || p.TwinSpreadLimit < 0:
		return errors.New("twin tolerances must not be negative")
	case p.SevereTwinSpread <= p.TwinSpreadTarget:
		return errors.New("severe_twin_spread must exceed twin_spread_target")
	case p.RelaxedFloorSpan < 1:
		return errors.New("relaxed_floor_span must be at least 1")
	case p.EcoSpreadLimit < 0 || p.FinishTimeTarget < 0:
		return errors.New("eco and finish targets must not be negative")
	case p.MaxTwinIterations < 1 || p.MaxFloorIterations < 1 || p.MaxFinishIterations < 1:
		return errors.New("iteration caps must be positive")
	}
	return nil
}
