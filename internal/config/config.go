// Package config loads settings from a TOML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config holds the application configuration
type Config struct {
	Storage StorageConfig `toml:"storage"`
	Log     LogConfig     `toml:"log"`
	// Categories offered for new tasks. Independent of the categories
	// actually in use, which the store derives from the tasks.
	Categories []string `toml:"categories"`
}

// StorageConfig selects the repository.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
	// Format overrides the file encoding derived from the path extension.
	Format string `toml:"format"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
	File   string `toml:"file"`   // empty means stderr
}

// Default returns the default configuration
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Path:    filepath.Join(homeDir, ".mktodo", "tasks.json"),
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Categories: []string{"Work", "Personal", "Shopping", "Other"},
	}
}

// DefaultPath is where Load looks for the config file.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}
	return filepath.Join(homeDir, ".config", "mktodo", "config.toml"), nil
}

// Load loads configuration from the standard location
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads configuration from a specific path. A missing file is not an
// error; defaults and environment overrides still apply.
func LoadFrom(configPath string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()
	cfg.applyEnv()

	cfg.Storage.Path = expandPath(cfg.Storage.Path)
	cfg.Log.File = expandPath(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Storage.Path = getEnv("MKTODO_DATA", c.Storage.Path)
	c.Storage.Backend = getEnv("MKTODO_BACKEND", c.Storage.Backend)
	c.Storage.Format = getEnv("MKTODO_FORMAT", c.Storage.Format)
	c.Log.Level = getEnv("MKTODO_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("MKTODO_LOG_FORMAT", c.Log.Format)
}

// Validate checks the settings that have a fixed set of values.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend != BackendMemory && c.Storage.Path == "" {
		return fmt.Errorf("storage path is required for the %s backend", c.Storage.Backend)
	}
	return nil
}

// SaveTo writes the configuration to a specific path
func (c *Config) SaveTo(configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
