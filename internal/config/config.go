package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/caarlos0/env/v11"
	_ "github.com/joho/godotenv/autoload"
)

// Config holds every tunable of the tavern server. Values come from the
// environment (and a .env file when present).
type Config struct {
	Host string `env:"HOST"`
	Port int    `env:"PORT" envDefault:"3000"`

	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	SendQueueSize   int           `env:"SEND_QUEUE_SIZE"   envDefault:"256"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT"     envDefault:"10s"`
	PingInterval    time.Duration `env:"PING_INTERVAL"     envDefault:"25s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT"      envDefault:"2m"`
	MaxMessageBytes int64         `env:"MAX_MESSAGE_BYTES" envDefault:"65536"`

	RateLimitMessages int           `env:"RATE_LIMIT_MESSAGES" envDefault:"120"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW"   envDefault:"1s"`

	// Zero disables the server-side deadline; clients then own duel timeouts.
	DuelChoiceTimeout time.Duration `env:"DUEL_CHOICE_TIMEOUT" envDefault:"30s"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	var cfg Config
	// Defaults only; parsing an empty environment cannot fail.
	_ = env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}})
	return cfg
}

func (c Config) Validate() error {
	var errs []error
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	if c.SendQueueSize <= 0 {
		errs = append(errs, fmt.Errorf("SEND_QUEUE_SIZE must be positive: %d", c.SendQueueSize))
	}
	if c.RateLimitMessages <= 0 || c.RateLimitWindow <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MESSAGES and RATE_LIMIT_WINDOW must be positive"))
	}
	if c.WriteTimeout <= 0 {
		errs = append(errs, fmt.Errorf("WRITE_TIMEOUT must be positive: %s", c.WriteTimeout))
	}
	if c.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_MESSAGE_BYTES must be positive: %d", c.MaxMessageBytes))
	}
	for name, d := range map[string]time.Duration{
		"WRITE_TIMEOUT":       c.WriteTimeout,
		"PING_INTERVAL":       c.PingInterval,
		"IDLE_TIMEOUT":        c.IdleTimeout,
		"DUEL_CHOICE_TIMEOUT": c.DuelChoiceTimeout,
		"SHUTDOWN_TIMEOUT":    c.ShutdownTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative: %s", name, d))
		}
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be console or json: %q", c.LogFormat))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Addr is the listen address. An empty host binds every interface.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
