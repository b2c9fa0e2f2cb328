// Package config содержит логику чтения конфигурации сервиса BookHeaven.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	defaultRunAddress  = "localhost:8080"
	defaultDatabaseURI = "memory://"
	defaultCORSOrigin  = "http://localhost:5173"
	defaultCacheTTL    = time.Minute
	defaultTokenTTL    = 30 * 24 * time.Hour
)

// Config содержит параметры конфигурации сервиса BookHeaven.
type Config struct {
	RunAddress  string        `env:"RUN_ADDRESS"`
	DatabaseURI string        `env:"DATABASE_URI"`
	JWTSecret   string        `env:"JWT_SECRET"`
	RedisAddr   string        `env:"REDIS_ADDR"`
	CORSOrigin  string        `env:"CORS_ORIGIN"`
	CacheTTL    time.Duration `env:"CACHE_TTL"`
	TokenTTL    time.Duration `env:"TOKEN_TTL"`
}

// Parse считывает конфигурацию из файла .env, переменных окружения и аргументов командной строки.
// Переменные окружения имеют приоритет над флагами.
func Parse(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	envCfg := *cfg

	fset := flag.NewFlagSet("bookheaven", flag.ContinueOnError)
	fset.StringVar(&cfg.RunAddress, "a", defaultRunAddress, "address and port for HTTP server")
	fset.StringVar(&cfg.DatabaseURI, "d", defaultDatabaseURI, "database URI (postgres://, mongodb:// or memory://)")
	fset.StringVar(&cfg.JWTSecret, "s", "", "secret used to sign access tokens (random per process if empty)")
	fset.StringVar(&cfg.RedisAddr, "r", "", "redis address for the catalog cache")
	fset.StringVar(&cfg.CORSOrigin, "c", defaultCORSOrigin, "allowed CORS origin")
	fset.DurationVar(&cfg.CacheTTL, "cache-ttl", defaultCacheTTL, "catalog cache TTL")
	fset.DurationVar(&cfg.TokenTTL, "token-ttl", defaultTokenTTL, "access token lifetime")

	if err := fset.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	if envCfg.RunAddress != "" {
		cfg.RunAddress = envCfg.RunAddress
	}
	if envCfg.DatabaseURI != "" {
		cfg.DatabaseURI = envCfg.DatabaseURI
	}
	if envCfg.JWTSecret != "" {
		cfg.JWTSecret = envCfg.JWTSecret
	}
	if envCfg.RedisAddr != "" {
		cfg.RedisAddr = envCfg.RedisAddr
	}
	if envCfg.CORSOrigin != "" {
		cfg.CORSOrigin = envCfg.CORSOrigin
	}
	if envCfg.CacheTTL > 0 {
		cfg.CacheTTL = envCfg.CacheTTL
	}
	if envCfg.TokenTTL > 0 {
		cfg.TokenTTL = envCfg.TokenTTL
	}

	if cfg.RunAddress == "" {
		cfg.RunAddress = defaultRunAddress
	}
	if cfg.DatabaseURI == "" {
		cfg.DatabaseURI = defaultDatabaseURI
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = defaultTokenTTL
	}

	return cfg, nil
}
