// Copyright 2021 The nrequest Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "NREQ"

// DefaultName is the base name of the config file searched for when no
// explicit file is given.
const DefaultName = "nreq"

// keys lists every scalar setting that may come from the environment.
var keys = []string{
	"log.level",
	"log.format",
	"log.output",
	"log.exchanges",
	"http.timeout",
	"http.max_idle_conns",
	"http.idle_conn_timeout",
	"cache.enabled",
	"cache.policy",
	"cache.storage",
	"cache.redis.addr",
	"cache.redis.prefix",
	"cache.redis.ttl",
	"request.timeout",
	"request.logging",
	"request.request_id_header",
	"request.bearer_token",
	"telemetry.tracing",
	"telemetry.metrics",
}

// LoaderConfig holds optional file overrides.
type LoaderConfig struct {
	ConfigFile string // Explicit config file, must exist if set
	EnvFile    string // Explicit .env file, must exist if set
	SearchDirs []string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithConfigFile sets an explicit config file path.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithSearchDirs replaces the directories searched for DefaultName
// config files and the .env file. The default is the working directory
// and its config subdirectory.
func WithSearchDirs(dirs ...string) LoaderOption {
	return func(lc *LoaderConfig) { lc.SearchDirs = dirs }
}

// Load reads the configuration, applies defaults and validates it.
//
// Sources in increasing priority: the config file, the .env file, the
// process environment. A .env file never overrides a variable already
// set in the process environment.
func Load(opts ...LoaderOption) (*Config, error) {
	lc := LoaderConfig{SearchDirs: []string{".", "./config"}}
	for _, opt := range opts {
		opt(&lc)
	}

	if err := loadEnvFile(lc); err != nil {
		return nil, err
	}

	v := viper.New()
	if lc.ConfigFile != "" {
		v.SetConfigFile(lc.ConfigFile)
	} else {
		v.SetConfigName(DefaultName)
		for _, dir := range lc.SearchDirs {
			v.AddConfigPath(dir)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if lc.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("nrequest/config: read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("nrequest/config: bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("nrequest/config: unmarshal: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadEnvFile(lc LoaderConfig) error {
	if lc.EnvFile != "" {
		if err := godotenv.Load(lc.EnvFile); err != nil {
			return fmt.Errorf("nrequest/config: load env file: %w", err)
		}
		return nil
	}
	for _, dir := range lc.SearchDirs {
		path := dir + "/.env"
		if _, err := os.Stat(path); err == nil {
			if err = godotenv.Load(path); err != nil {
				return fmt.Errorf("nrequest/config: load env file: %w", err)
			}
			return nil
		}
	}
	return nil
}
