// Package config loads process configuration and dependency definitions.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no configuration file is given.
const DefaultPath = "transit.yaml"

const envPrefix = "TRANSIT_"

// Config is the process configuration of the transit command.
type Config struct {
	// Definitions is the path of the dependency definitions file.
	Definitions string `yaml:"definitions"`
	LogLevel    string `yaml:"log_level"`
	// JournalDir holds the file journals of past imports.
	JournalDir string      `yaml:"journal_dir"`
	Listen     string      `yaml:"listen"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig configures the Redis mapping store, journal and locker.
// Redis is disabled when Addr is empty.
type RedisConfig struct {
	Addr       string        `yaml:"addr"`
	Password   string        `yaml:"password"`
	DB         int           `yaml:"db"`
	Prefix     string        `yaml:"prefix"`
	MappingTTL time.Duration `yaml:"mapping_ttl"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Definitions: "definitions.yaml",
		LogLevel:    "info",
		JournalDir:  ".transit/journals",
		Listen:      ":8080",
		Redis: RedisConfig{
			Prefix:     "transit:",
			MappingTTL: 24 * time.Hour,
		},
	}
}

// Load reads the configuration at path over the defaults, then applies
// TRANSIT_* environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return cfg, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"DEFINITIONS":    &c.Definitions,
		"LOG_LEVEL":      &c.LogLevel,
		"JOURNAL_DIR":    &c.JournalDir,
		"LISTEN":         &c.Listen,
		"REDIS_ADDR":     &c.Redis.Addr,
		"REDIS_PASSWORD": &c.Redis.Password,
		"REDIS_PREFIX":   &c.Redis.Prefix,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}

	if v, ok := lookup(envPrefix + "REDIS_DB"); ok {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sREDIS_DB %q: %w", envPrefix, v, err)
		}
		c.Redis.DB = db
	}
	if v, ok := lookup(envPrefix + "REDIS_MAPPING_TTL"); ok {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sREDIS_MAPPING_TTL %q: %w", envPrefix, v, err)
		}
		c.Redis.MappingTTL = ttl
	}
	return nil
}
