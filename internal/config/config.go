package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. QUIZ_REDIS_ADDR.
const EnvPrefix = "QUIZ_"

type Config struct {
	Server   Server   `yaml:"server" envPrefix:"SERVER_"`
	Redis    Redis    `yaml:"redis" envPrefix:"REDIS_"`
	Postgres Postgres `yaml:"postgres" envPrefix:"POSTGRES_"`
	Quiz     Quiz     `yaml:"quiz" envPrefix:"QUIZ_"`
	Log      Log      `yaml:"log" envPrefix:"LOG_"`
	// Games are created at startup.
	Games []Game `yaml:"games"`
}

type Server struct {
	Host string `yaml:"host" env:"HOST"`
	Port string `yaml:"port" env:"PORT"`
	// PublicURL is encoded in the join QR code, e.g. https://quiz.example.org
	PublicURL string `yaml:"public_url" env:"PUBLIC_URL"`
}

type Redis struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	TTL      string `yaml:"ttl" env:"TTL"`
}

type Postgres struct {
	URL string `yaml:"url" env:"URL"`
}

type Quiz struct {
	TTL string `yaml:"ttl" env:"TTL"`
	// Dir is searched for definition files when Postgres is not configured.
	Dir string `yaml:"dir" env:"DIR"`
}

type Log struct {
	Level       string `yaml:"level" env:"LEVEL"`
	Development bool   `yaml:"development" env:"DEVELOPMENT"`
}

type Game struct {
	Key      string `yaml:"key"`
	Quiz     string `yaml:"quiz"`
	Password string `yaml:"password"`
}

// Load reads YAML config from path, then applies QUIZ_ environment overrides.
// A missing file yields the zero config.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("config env: %w", err)
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
