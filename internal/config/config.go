package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root YAML document. Environment variables override the file
// so container deployments can skip mounting one entirely.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Quiz     QuizConfig     `yaml:"quiz"`
	Room     RoomConfig     `yaml:"room"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// RedisConfig configures the optional Redis layer. An empty Addr disables it
// and the server falls back to in-process storage.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

// LivenessTTL is how long a room liveness key survives without refresh.
func (c RedisConfig) LivenessTTL() time.Duration {
	return durationOr(c.TTL, 10*time.Minute)
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type QuizConfig struct {
	TTL string `yaml:"ttl"`
}

// CacheTTL is how long loaded quiz documents stay cached.
func (c QuizConfig) CacheTTL() time.Duration {
	return durationOr(c.TTL, 10*time.Minute)
}

// RoomConfig tunes live-room gameplay defaults.
type RoomConfig struct {
	DefaultAutoTime  string `yaml:"default_auto_time"`
	PointsPerCorrect int    `yaml:"points_per_correct"`
}

// AutoTime returns the configured per-question countdown, or fallback when
// the field is empty or malformed.
func (c RoomConfig) AutoTime(fallback time.Duration) time.Duration {
	return durationOr(c.DefaultAutoTime, fallback)
}

// Load reads the YAML file at path and applies environment overrides.
// A missing file is an error; use LoadOrDefault when the file is optional.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	return cfg, nil
}

// LoadOrDefault behaves like Load but treats a missing file as an empty
// config, still honoring environment overrides.
func LoadOrDefault(path string) (Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		empty := Config{}
		empty.applyEnv()
		return empty, nil
	}
	return cfg, err
}

func (c *Config) applyEnv() {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Postgres.URL = v
	}
}

func durationOr(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
