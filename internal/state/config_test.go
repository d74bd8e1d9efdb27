package state

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/steviee/cdl/internal/curseforge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupConfigHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	return filepath.Join(tmpDir, ConfigDirName, ConfigFileName)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "1.16.4", cfg.GameVersion)
	assert.Equal(t, curseforge.Forge, cfg.ModLoader)
	assert.Equal(t, curseforge.Popularity, cfg.SortType)
	assert.Equal(t, 9, cfg.Amount)
	assert.Equal(t, ".", cfg.DownloadDir)
	assert.Equal(t, filepath.Join(os.TempDir(), "cdl"), cfg.RepoCacheDir)
	assert.NoError(t, ValidateConfig(cfg))
}

func TestLoadConfig_CreatesDefaultIfMissing(t *testing.T) {
	configPath := setupConfigHome(t)

	cfg, err := LoadConfig(context.Background())
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, DefaultConfig(), cfg)

	_, err = os.Stat(configPath)
	require.NoError(t, err, "config file should be created on first run")
}

func TestLoadConfig_LoadsExisting(t *testing.T) {
	setupConfigHome(t)
	ctx := context.Background()

	custom := DefaultConfig()
	custom.GameVersion = "1.20.1"
	custom.ModLoader = curseforge.Fabric
	custom.SortType = curseforge.LastUpdated
	custom.Amount = 20
	require.NoError(t, SaveConfig(ctx, custom))

	loaded, err := LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, custom, loaded)
}

func TestLoadConfigFrom_FileFormat(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(strings.Join([]string{
		"game_version: 1.12.2",
		"mod_loader: both",
		"sort_type: downloads",
		"amount: 3",
		"download_dir: mods",
		"repo_cache_dir: /var/cache/cdl",
	}, "\n")), 0644))

	cfg, err := LoadConfigFrom(context.Background(), configPath)
	require.NoError(t, err)

	assert.Equal(t, &Config{
		GameVersion:  "1.12.2",
		ModLoader:    curseforge.Both,
		SortType:     curseforge.TotalDownloads,
		Amount:       3,
		DownloadDir:  "mods",
		RepoCacheDir: "/var/cache/cdl",
	}, cfg)
}

func TestLoadConfigFrom_MissingKeysUseDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("mod_loader: fabric\n"), 0644))

	cfg, err := LoadConfigFrom(context.Background(), configPath)
	require.NoError(t, err)

	assert.Equal(t, curseforge.Fabric, cfg.ModLoader)
	assert.Equal(t, "1.16.4", cfg.GameVersion)
	assert.Equal(t, 9, cfg.Amount)
}

func TestLoadConfig_RecoversFromCorruption(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "invalid yaml", data: "this is not valid YAML: {[}]"},
		{name: "unknown mod loader", data: "mod_loader: quilt\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := setupConfigHome(t)
			require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
			require.NoError(t, os.WriteFile(configPath, []byte(tt.data), 0644))

			cfg, err := LoadConfig(context.Background())
			require.NoError(t, err)
			assert.Equal(t, DefaultConfig(), cfg)

			backup, err := os.ReadFile(configPath + ".corrupted")
			require.NoError(t, err)
			assert.Equal(t, tt.data, string(backup))
		})
	}
}

func TestLoadConfig_RejectsInvalidValues(t *testing.T) {
	configPath := setupConfigHome(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(configPath), 0755))
	require.NoError(t, os.WriteFile(configPath, []byte("amount: 500\n"), 0644))

	_, err := LoadConfig(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be between 1 and 50")
}

func TestSaveConfig_NilConfig(t *testing.T) {
	err := SaveConfig(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config cannot be nil")
}

func TestSaveConfig_RejectsInvalid(t *testing.T) {
	configPath := setupConfigHome(t)

	cfg := DefaultConfig()
	cfg.GameVersion = "latest"

	err := SaveConfig(context.Background(), cfg)
	require.Error(t, err)

	_, statErr := os.Stat(configPath)
	assert.True(t, os.IsNotExist(statErr), "invalid config must not be written")
}

func TestUpdateConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "cdl", "config.yaml")
	ctx := context.Background()

	cfg, err := UpdateConfig(ctx, configPath, func(cfg *Config) error {
		return cfg.Set("mod_loader", "fabric")
	})
	require.NoError(t, err)
	assert.Equal(t, curseforge.Fabric, cfg.ModLoader)

	loaded, err := LoadConfigFrom(ctx, configPath)
	require.NoError(t, err)
	assert.Equal(t, curseforge.Fabric, loaded.ModLoader)
}

func TestUpdateConfig_InvalidResultNotSaved(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	ctx := context.Background()

	_, err := UpdateConfig(ctx, configPath, func(cfg *Config) error {
		return cfg.Set("amount", "0")
	})
	require.Error(t, err)

	loaded, err := LoadConfigFrom(ctx, configPath)
	require.NoError(t, err)
	assert.Equal(t, 9, loaded.Amount)
}

func TestUpdateConfig_Concurrent(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	ctx := context.Background()

	_, err := LoadConfigFrom(ctx, configPath)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := UpdateConfig(ctx, configPath, func(cfg *Config) error {
				cfg.Amount++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	loaded, err := LoadConfigFrom(ctx, configPath)
	require.NoError(t, err)
	assert.Equal(t, 19, loaded.Amount, "no update may be lost")
}

func TestResetConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	ctx := context.Background()

	custom := DefaultConfig()
	custom.GameVersion = "1.20.1"
	require.NoError(t, SaveConfigTo(ctx, configPath, custom))

	cfg, err := ResetConfig(ctx, configPath)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestConfig_Set(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, cfg *Config)
		wantErr string
	}{
		{
			name:  "game version",
			key:   "game_version",
			value: "1.20.1",
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, "1.20.1", cfg.GameVersion) },
		},
		{
			name:  "mod loader case insensitive",
			key:   "mod_loader",
			value: "Both",
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, curseforge.Both, cfg.ModLoader) },
		},
		{
			name:  "sort type",
			key:   "sort_type",
			value: "name",
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, curseforge.Name, cfg.SortType) },
		},
		{
			name:  "amount",
			key:   "amount",
			value: "25",
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, 25, cfg.Amount) },
		},
		{
			name:  "download dir",
			key:   "download_dir",
			value: "mods",
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, "mods", cfg.DownloadDir) },
		},
		{
			name:  "repo cache dir",
			key:   "repo_cache_dir",
			value: "/srv/cache",
			check: func(t *testing.T, cfg *Config) { assert.Equal(t, "/srv/cache", cfg.RepoCacheDir) },
		},
		{name: "bad mod loader", key: "mod_loader", value: "quilt", wantErr: "not a valid mod loader"},
		{name: "bad sort type", key: "sort_type", value: "random", wantErr: "not a valid sort type"},
		{name: "bad amount", key: "amount", value: "many", wantErr: "amount must be a number"},
		{name: "unknown key", key: "colour", value: "red", wantErr: "unknown config key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			err := cfg.Set(tt.key, tt.value)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestConfig_GetRoundTripsSet(t *testing.T) {
	cfg := DefaultConfig()

	for _, key := range ConfigKeys {
		value, err := cfg.Get(key)
		require.NoError(t, err, key)

		other := &Config{}
		require.NoError(t, other.Set(key, value), key)

		again, err := other.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, again, key)
	}

	got, err := cfg.Get("mod_loader")
	require.NoError(t, err)
	assert.Equal(t, "forge", got)

	_, err = cfg.Get("colour")
	assert.ErrorContains(t, err, "unknown config key")
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{name: "valid config", modify: func(*Config) {}},
		{name: "empty game version", modify: func(c *Config) { c.GameVersion = "" }, errMsg: "game version cannot be empty"},
		{name: "bad game version", modify: func(c *Config) { c.GameVersion = "one" }, errMsg: "invalid game version"},
		{name: "out of range loader", modify: func(c *Config) { c.ModLoader = 7 }, errMsg: "invalid mod loader"},
		{name: "out of range sort", modify: func(c *Config) { c.SortType = -1 }, errMsg: "invalid sort type"},
		{name: "zero amount", modify: func(c *Config) { c.Amount = 0 }, errMsg: "amount must be between"},
		{name: "too large amount", modify: func(c *Config) { c.Amount = 51 }, errMsg: "amount must be between"},
		{name: "empty download dir", modify: func(c *Config) { c.DownloadDir = " " }, errMsg: "invalid download dir"},
		{name: "empty cache dir", modify: func(c *Config) { c.RepoCacheDir = "" }, errMsg: "invalid repo cache dir"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)

			err := ValidateConfig(cfg)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}

	t.Run("nil config", func(t *testing.T) {
		assert.EqualError(t, ValidateConfig(nil), "config cannot be nil")
	})
}
