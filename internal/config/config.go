package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	HTTPAddr      string        `yaml:"http-addr" env:"HTTP_ADDR" env-default:":8080"`
	LogLevel      string        `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	OpponentDelay time.Duration `yaml:"opponent-delay" env:"OPPONENT_DELAY" env-default:"500ms"`
	Redis         Redis         `yaml:"redis"`
	History       History       `yaml:"history"`
	Telemetry     Telemetry     `yaml:"telemetry"`
}

// Redis is optional. Without an address human wins are not published.
type Redis struct {
	Addr string `yaml:"addr" env:"REDIS_ADDR"`
}

type History struct {
	DSN string `yaml:"dsn" env:"HISTORY_DSN" env-default:":memory:"`
}

// Telemetry is optional. Without an endpoint no OTLP exporter is started.
type Telemetry struct {
	Endpoint       string `yaml:"endpoint" env:"OTEL_ENDPOINT"`
	ServiceName    string `yaml:"service-name" env:"OTEL_SERVICE_NAME" env-default:"solo-tic-tac-toe"`
	ServiceVersion string `yaml:"service-version" env:"OTEL_SERVICE_VERSION" env-default:"v0.1.0"`
}

// Load reads the YAML file at path, if any, then applies the environment.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("unable to read config from environment: %w", err)
		}
		return cfg, nil
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}
	return cfg, nil
}

// MustLoad is Load that panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// SlogLevel parses LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
