// Package config loads the CLI configuration from a yaml file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
type Config struct {
	// PokeAPI contains the upstream API and fan-out settings
	PokeAPI struct {
		// BaseURL is the API root the list and detail URLs hang off
		BaseURL string `env:"POKEDEX_BASE_URL" env-default:"https://pokeapi.co/api/v2" yaml:"baseURL"`
		// Limit is the catalog size requested from the list endpoint
		Limit int `env:"POKEDEX_LIMIT" env-default:"150" yaml:"limit"`
		// RequestTimeout bounds each individual GET
		RequestTimeout time.Duration `env:"POKEDEX_REQUEST_TIMEOUT" env-default:"10s" yaml:"requestTimeout"`
		// MaxConcurrency caps in-flight detail requests, 0 means unbounded
		MaxConcurrency int `env:"POKEDEX_MAX_CONCURRENCY" env-default:"0" yaml:"maxConcurrency"`
		// UserAgent is sent with every request
		UserAgent string `env:"POKEDEX_USER_AGENT" env-default:"pokedex-client/0.1.0" yaml:"userAgent"`
	} `yaml:"pokeapi"`

	// Log contains the logger settings
	Log struct {
		// Level is one of debug, info, warn, error, disabled
		Level string `env:"LOG_LEVEL" env-default:"warn" yaml:"level"`
		// Pretty switches to human readable console output
		Pretty bool `env:"LOG_PRETTY" env-default:"false" yaml:"pretty"`
	} `yaml:"log"`

	// Cache contains the optional Redis response cache settings
	Cache struct {
		// RedisAddr enables the cache when set
		RedisAddr string `env:"REDIS_ADDR" env-default:"" yaml:"redisAddr"`
		// RedisDB selects the Redis database
		RedisDB int `env:"REDIS_DB" env-default:"0" yaml:"redisDB"`
		// TTL applies when the API sends no freshness headers
		TTL time.Duration `env:"CACHE_TTL" env-default:"24h" yaml:"ttl"`
	} `yaml:"cache"`
}

// CacheEnabled reports whether a Redis address is configured.
func (c *Config) CacheEnabled() bool {
	return c.Cache.RedisAddr != ""
}

// Load reads the yaml file at configPath when it exists, otherwise the
// environment only. Environment variables override file values.
func Load(configPath string) (*Config, error) {
	var cfg Config

	var err error
	if fileExists(configPath) {
		err = cleanenv.ReadConfig(configPath, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks value ranges that env-default cannot express.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.PokeAPI.BaseURL) == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if c.PokeAPI.Limit < 1 {
		errs = append(errs, fmt.Errorf("limit must be >= 1 (got %d)", c.PokeAPI.Limit))
	}
	if c.PokeAPI.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request timeout must be > 0 (got %s)", c.PokeAPI.RequestTimeout))
	}
	if c.PokeAPI.MaxConcurrency < 0 {
		errs = append(errs, fmt.Errorf("max concurrency must be >= 0 (got %d)", c.PokeAPI.MaxConcurrency))
	}
	if c.CacheEnabled() && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache ttl must be > 0 (got %s)", c.Cache.TTL))
	}

	return errors.Join(errs...)
}

// Usage returns the environment variable help text.
func Usage() string {
	var cfg Config
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return desc
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
