package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Redis    Redis
	Resolver Resolver
	API      API
	Log      Log
}

type Redis struct {
	URL         string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	StreamKey   string        `env:"REDIS_STREAM_KEY" envDefault:"jobmonitor:stream"`
	Group       string        `env:"REDIS_GROUP" envDefault:"workers"`
	KeyPrefix   string        `env:"REDIS_KEY_PREFIX" envDefault:"jobmonitor"`
	JobTTL      time.Duration `env:"REDIS_JOB_TTL" envDefault:"500s"`
	DialTimeout time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
}

type Resolver struct {
	Prefix string   `env:"RESOLVER_PREFIX" envDefault:"tasks."`
	Tasks  []string `env:"RESOLVER_TASKS" envSeparator:","`
}

type API struct {
	PublicURL string `env:"PUBLIC_URL"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY"`
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over the file.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var c Config
	if err := env.Parse(&c); err != nil {
		return nil, err
	}
	return &c, nil
}
