package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds all application configuration
type Config struct {
	Environment string          `koanf:"environment"`
	Discord     DiscordConfig   `koanf:"discord"`
	Database    DatabaseConfig  `koanf:"database"`
	Index       IndexConfig     `koanf:"index"`
	Game        GameConfig      `koanf:"game"`
	UserCache   UserCacheConfig `koanf:"user_cache"`
}

// DiscordConfig holds Discord gateway configuration
type DiscordConfig struct {
	Token   string `koanf:"token"`
	GuildID string `koanf:"guild_id"`
}

// DatabaseConfig holds SQLite database configuration
type DatabaseConfig struct {
	Path string `koanf:"path"`
}

// IndexConfig holds mod-index API configuration
type IndexConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

// GameConfig holds quote-guessing game configuration
type GameConfig struct {
	Options      int           `koanf:"options"`       // total choices per round, correct author included
	RoundTimeout time.Duration `koanf:"round_timeout"` // how long a round waits for a guess
}

// UserCacheConfig holds display-name cache configuration
type UserCacheConfig struct {
	MaxEntries    int           `koanf:"max_entries"`
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// Load loads configuration from environment variables and config files
func Load(environment string) (*Config, error) {
	k := koanf.New(".")
	// Load defaults first (lowest priority)
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("error loading defaults: %w", err)
	}

	// Load from config file based on environment
	configFile := fmt.Sprintf("config/%s.yaml", environment)
	if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		// Config file is optional, log but don't fail
		fmt.Printf("Warning: could not load config file %s: %v\n", configFile, err)
	}

	// Load from environment variables with GEODE_ prefix
	// Environment variables override config file values
	if err := k.Load(env.ProviderWithValue("GEODE_", "__", func(key string, value string) (string, interface{}) {
		finalKey := strings.TrimPrefix(strings.ToLower(key), "geode_")

		// Check if the existing config has this key as a slice
		switch k.Get(finalKey).(type) {
		case []interface{}, []string, []int64:
			// It's a slice, split by comma
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			return finalKey, parts
		}

		return finalKey, value
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	cfg.Environment = environment

	return &cfg, nil
}

// defaultConfig returns the default configuration values
func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Path: "geode.db",
		},
		Index: IndexConfig{
			BaseURL: "https://api.geode-sdk.org",
			Timeout: 30 * time.Second,
		},
		Game: GameConfig{
			Options:      5,
			RoundTimeout: 60 * time.Second,
		},
		UserCache: UserCacheConfig{
			MaxEntries:    1024,
			TTL:           time.Hour,
			SweepInterval: 10 * time.Minute,
		},
	}
}
