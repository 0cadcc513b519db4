package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration shared by the CLI and the servers.
type Config struct {
	Log      LogConfig
	HTTPAddr string `env:"MONTYHALL_HTTP_ADDR" envDefault:":8080"`
	GRPCAddr string `env:"MONTYHALL_GRPC_ADDR" envDefault:":9090"`
	// DBPath enables result history when set; ":memory:" is accepted.
	DBPath      string `env:"MONTYHALL_DB_PATH"`
	ScenarioDir string `env:"MONTYHALL_SCENARIO_DIR"`
	Profile     string `env:"MONTYHALL_PROFILE"`
	// WatchInterval is how often scenario files are polled; 0 disables watching.
	WatchInterval time.Duration `env:"MONTYHALL_WATCH_INTERVAL" envDefault:"5s"`
	RatePerSec    float64       `env:"MONTYHALL_RATE_PER_SEC" envDefault:"20"`
	RateBurst     int           `env:"MONTYHALL_RATE_BURST" envDefault:"40"`
	MaxTrials     int           `env:"MONTYHALL_MAX_TRIALS" envDefault:"1000000"`
}

// LogConfig controls the format and level of logging.
type LogConfig struct {
	Level  string `env:"MONTYHALL_LOG_LEVEL" envDefault:"info"`  // debug | info | warn | error
	Format string `env:"MONTYHALL_LOG_FORMAT" envDefault:"text"` // text | json
}

// Load reads a .env file when present, then the environment.
// Variables already set in the environment win over the .env file.
func Load(dotenvFiles ...string) (Config, error) {
	// missing .env files are not an error
	_ = godotenv.Load(dotenvFiles...)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings no component can run with.
func (c Config) Validate() error {
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("config: log format %q must be text or json", c.Log.Format)
	}
	if c.MaxTrials < 1 {
		return fmt.Errorf("config: max trials must be >= 1, got %d", c.MaxTrials)
	}
	if c.RatePerSec < 0 || c.RateBurst < 0 {
		return fmt.Errorf("config: rate limit must not be negative")
	}
	return nil
}
