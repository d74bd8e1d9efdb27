package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/steviee/cdl/internal/curseforge"
	"gopkg.in/yaml.v3"
)

// Config represents the user configuration for cdl. Every field can be
// overridden per invocation by a flag or a CDL_* environment variable.
type Config struct {
	GameVersion  string               `yaml:"game_version"`
	ModLoader    curseforge.ModLoader `yaml:"mod_loader"`
	SortType     curseforge.SortType  `yaml:"sort_type"`
	Amount       int                  `yaml:"amount"`
	DownloadDir  string               `yaml:"download_dir"`
	RepoCacheDir string               `yaml:"repo_cache_dir"`
}

// ConfigKeys lists the settable keys in file order.
var ConfigKeys = []string{
	"game_version",
	"mod_loader",
	"sort_type",
	"amount",
	"download_dir",
	"repo_cache_dir",
}

// DefaultConfig returns a Config with the default values.
func DefaultConfig() *Config {
	return &Config{
		GameVersion:  "1.16.4",
		ModLoader:    curseforge.Forge,
		SortType:     curseforge.Popularity,
		Amount:       curseforge.DefaultPageSize,
		DownloadDir:  ".",
		RepoCacheDir: DefaultRepoCacheDir(),
	}
}

// LoadConfig loads the configuration from the default config path.
func LoadConfig(ctx context.Context) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}
	return LoadConfigFrom(ctx, configPath)
}

// LoadConfigFrom loads the configuration from configPath.
// If the file doesn't exist, it creates one with defaults.
// If the file cannot be parsed, it is moved aside to configPath.corrupted
// and replaced with defaults.
func LoadConfigFrom(ctx context.Context, configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		cfg := DefaultConfig()
		if err := SaveConfigTo(ctx, configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to save default config: %w", err)
		}
		slog.Debug("created default config", "path", configPath)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		backupPath := configPath + corruptSuffix
		if backupErr := os.Rename(configPath, backupPath); backupErr != nil {
			return nil, fmt.Errorf("config file is corrupted and failed to create backup: %w (original error: %v)", backupErr, err)
		}

		slog.Warn("config file is corrupted, using defaults",
			"path", configPath,
			"backup", backupPath,
			"error", err)

		fresh := DefaultConfig()
		if saveErr := SaveConfigTo(ctx, configPath, fresh); saveErr != nil {
			return nil, fmt.Errorf("config file was corrupted (backed up to %s), failed to save fresh config: %w (original error: %v)", backupPath, saveErr, err)
		}
		return fresh, nil
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to the default config path.
func SaveConfig(ctx context.Context, cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	return SaveConfigTo(ctx, configPath, cfg)
}

// SaveConfigTo validates cfg and writes it atomically to configPath.
func SaveConfigTo(ctx context.Context, configPath string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := AtomicWrite(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// UpdateConfig applies fn to the config at configPath and saves the result.
// The read-modify-write cycle holds an exclusive lock next to the file so
// concurrent invocations don't lose each other's changes.
func UpdateConfig(ctx context.Context, configPath string, fn func(*Config) error) (*Config, error) {
	if err := EnsureDir(filepath.Dir(configPath)); err != nil {
		return nil, err
	}

	lock, err := LockFile(configPath + lockSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to lock config: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	cfg, err := LoadConfigFrom(ctx, configPath)
	if err != nil {
		return nil, err
	}

	if err := fn(cfg); err != nil {
		return nil, err
	}

	if err := SaveConfigTo(ctx, configPath, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ResetConfig overwrites the config at configPath with defaults.
func ResetConfig(ctx context.Context, configPath string) (*Config, error) {
	return UpdateConfig(ctx, configPath, func(cfg *Config) error {
		*cfg = *DefaultConfig()
		return nil
	})
}

// Set parses value and assigns it to the setting named key.
// The result is not validated; call ValidateConfig afterwards.
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "game_version":
		c.GameVersion = value
	case "mod_loader":
		loader, err := curseforge.ParseModLoader(value)
		if err != nil {
			return err
		}
		c.ModLoader = loader
	case "sort_type":
		sort, err := curseforge.ParseSortType(value)
		if err != nil {
			return err
		}
		c.SortType = sort
	case "amount":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("amount must be a number: %q", value)
		}
		c.Amount = n
	case "download_dir":
		c.DownloadDir = value
	case "repo_cache_dir":
		c.RepoCacheDir = value
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ConfigKeys, ", "))
	}
	return nil
}

// Get returns the setting named key in the form Set accepts.
func (c *Config) Get(key string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "game_version":
		return c.GameVersion, nil
	case "mod_loader":
		return c.ModLoader.Key(), nil
	case "sort_type":
		return c.SortType.Key(), nil
	case "amount":
		return strconv.Itoa(c.Amount), nil
	case "download_dir":
		return c.DownloadDir, nil
	case "repo_cache_dir":
		return c.RepoCacheDir, nil
	default:
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ConfigKeys, ", "))
	}
}

// ValidateConfig validates the configuration.
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := ValidateGameVersion(cfg.GameVersion); err != nil {
		return err
	}

	if err := ValidateModLoader(cfg.ModLoader); err != nil {
		return err
	}

	if err := ValidateSortType(cfg.SortType); err != nil {
		return err
	}

	if err := ValidateAmount(cfg.Amount); err != nil {
		return err
	}

	if err := ValidateDir(cfg.DownloadDir); err != nil {
		return fmt.Errorf("invalid download dir: %w", err)
	}

	if err := ValidateDir(cfg.RepoCacheDir); err != nil {
		return fmt.Errorf("invalid repo cache dir: %w", err)
	}

	return nil
}
