package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the YAML-backed service configuration. Every section is
// optional: an empty config runs a memory-only instance on the default port.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Quiz     QuizConfig     `yaml:"quiz"`
	Game     GameConfig     `yaml:"game"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

// RedisConfig enables the Redis-backed registry markers and quiz cache when
// an address is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      string `yaml:"ttl"`
}

type PostgresConfig struct {
	URL string `yaml:"url"`
}

type QuizConfig struct {
	TTL string `yaml:"ttl"`
}

// GameConfig tunes session behavior.
type GameConfig struct {
	// DefaultTimeLimit applies to questions that carry no explicit limit
	// of their own, e.g. "20s".
	DefaultTimeLimit string `yaml:"defaultTimeLimit"`
}

// Load reads YAML config from path.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Duration parses a duration string, returning the fallback when the value
// is empty or malformed.
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
