package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the optional safetrix configuration file.
type Config struct {
	Store    StoreConfig    `toml:"store"`
	Transfer TransferConfig `toml:"transfer"`
	Theme    ThemeConfig    `toml:"theme"`
}

// StoreConfig locates the task store file and the run journal.
type StoreConfig struct {
	Path     *string `toml:"path"`
	MaxTasks *int    `toml:"max_tasks"`
	Journal  *string `toml:"journal"` // "" disables the journal
}

// TransferConfig holds engine defaults. Sizes accept ParseSize syntax.
type TransferConfig struct {
	Password      *string `toml:"password"`
	ChunkSize     *string `toml:"chunk_size"`
	SyncThreshold *string `toml:"sync_threshold"`
	BWLimit       *string `toml:"bwlimit"`
	Preallocate   *bool   `toml:"preallocate"`
}

// ThemeConfig holds optional color overrides for the TUI.
type ThemeConfig struct {
	Green  *string `toml:"green"`
	Blue   *string `toml:"blue"`
	Yellow *string `toml:"yellow"`
	Red    *string `toml:"red"`
	Muted  *string `toml:"muted"`
	Bright *string `toml:"bright"`
}

// Path returns the resolved path to the config file.
func Path() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "safetrix", "config.toml")
}

// Load reads the config file from the XDG path. Returns a zero Config
// (no error) if the file does not exist. Config is always optional.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config file at path with the same missing-file rule
// as Load.
func LoadFile(path string) (Config, error) {
	if path == "" {
		return Config{}, nil
	}

	var cfg Config
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}
		return Config{}, err
	}
	return cfg, nil
}
