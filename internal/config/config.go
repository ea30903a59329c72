package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN             string        `env:"DB_DSN"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"30m"`

	JWTSecret string `env:"JWT_SECRET"`
	Port      string `env:"PORT" envDefault:"8080"`
	GRPCAddr  string `env:"GRPC_ADDR" envDefault:":8085"`

	AMQPURL        string `env:"AMQP_URL"`
	EventsExchange string `env:"EVENTS_EXCHANGE" envDefault:"app.events"`
	LogsExchange   string `env:"LOGS_EXCHANGE" envDefault:"logs.events"`

	ServiceName string `env:"SERVICE_NAME" envDefault:"relation-service"`
	Environment string `env:"ENVIRONMENT" envDefault:"local"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	SensitiveWordsFile string  `env:"SENSITIVE_WORDS_FILE"`
	SendRatePerSec     float64 `env:"SEND_RATE_PER_SEC" envDefault:"5"`
	SendRateBurst      int     `env:"SEND_RATE_BURST" envDefault:"10"`
}

// Load reads an optional .env file and then parses the environment.
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var missing []string
	if c.DBDSN == "" {
		missing = append(missing, "DB_DSN")
	}
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s environment variables must be set", strings.Join(missing, ", "))
	}
	if c.SendRatePerSec <= 0 || c.SendRateBurst <= 0 {
		return errors.New("SEND_RATE_PER_SEC and SEND_RATE_BURST must be positive")
	}
	return nil
}

func (c Config) IsLocal() bool {
	return c.Environment == "local"
}
