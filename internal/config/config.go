package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs to start. Sensitive values can be
// overridden through environment variables after the file is loaded.
type Config struct {
	Fix struct {
		Addr string `yaml:"addr"`
	} `yaml:"fix"`

	HTTP struct {
		Addr      string        `yaml:"addr"`
		RateLimit time.Duration `yaml:"rate_limit"`
	} `yaml:"http"`

	Postgres struct {
		Enabled bool   `yaml:"enabled"`
		DSN     string `yaml:"dsn"`
	} `yaml:"postgres"`

	Redis struct {
		Enabled  bool          `yaml:"enabled"`
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`

	Kafka struct {
		Enabled bool     `yaml:"enabled"`
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic"`
	} `yaml:"kafka"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

// Default returns a config that runs fully in memory on localhost ports.
func Default() *Config {
	cfg := &Config{}
	cfg.Fix.Addr = ":9878"
	cfg.HTTP.Addr = ":8080"
	cfg.HTTP.RateLimit = 100 * time.Millisecond
	cfg.Redis.TTL = 5 * time.Minute
	cfg.Kafka.Topic = "executions"
	cfg.Logging.Level = "info"
	return cfg
}

// Load reads the yaml file at path over the defaults, then applies env
// overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("EXCHANGE_PG_DSN"); v != "" {
		c.Postgres.DSN = v
	}
	if v := os.Getenv("EXCHANGE_REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("EXCHANGE_REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
}
