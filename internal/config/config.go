// Package config loads dialogtree settings from a TOML file and DIALOGTREE_*
// environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. Command-line flags are applied on top by the CLI.
//
// TOML format:
//
//	history_limit = 500
//
//	[store]
//	backend = "sqlite"
//	sqlite_path = "/home/me/.local/share/dialogtree/dialogtree.db"
//
//	[server]
//	addr = "127.0.0.1:8080"
//	cors_origins = ["http://localhost:5173"]
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/dialogtree/pkg/store"
)

// DefaultAddr is the API server listen address.
const DefaultAddr = "127.0.0.1:8080"

// Config holds all settings.
type Config struct {
	HistoryLimit int    `toml:"history_limit"`
	Store        Store  `toml:"store"`
	Server       Server `toml:"server"`
}

// Store selects the persistence backend.
type Store struct {
	Backend    string `toml:"backend"`
	Path       string `toml:"path"`
	SQLitePath string `toml:"sqlite_path"`
	RedisURL   string `toml:"redis_url"`
	MongoURI   string `toml:"mongo_uri"`
	MongoDB    string `toml:"mongo_db"`
}

// Server configures the HTTP API.
type Server struct {
	Addr        string   `toml:"addr"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Default returns the built-in settings: a file store at its default path,
// unbounded history, and the API on DefaultAddr.
func Default() *Config {
	return &Config{
		Store:  Store{Backend: store.BackendFile},
		Server: Server{Addr: DefaultAddr},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/dialogtree/config.toml, falling back
// to ~/.config/dialogtree/config.toml.
func DefaultPath() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "dialogtree", "config.toml")
}

// Load reads the config file at path and applies environment overrides.
// A missing file is not an error; an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load config file %q: %w", path, err)
		}
	}
	cfg.applyEnv()
	if cfg.HistoryLimit < 0 {
		return nil, fmt.Errorf("history_limit must not be negative, got %d", cfg.HistoryLimit)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.HistoryLimit = getEnvAsInt("DIALOGTREE_HISTORY_LIMIT", c.HistoryLimit)
	c.Store.Backend = getEnv("DIALOGTREE_STORE", c.Store.Backend)
	c.Store.Path = getEnv("DIALOGTREE_STORE_PATH", c.Store.Path)
	c.Store.SQLitePath = getEnv("DIALOGTREE_SQLITE_PATH", c.Store.SQLitePath)
	c.Store.RedisURL = getEnv("DIALOGTREE_REDIS_URL", c.Store.RedisURL)
	c.Store.MongoURI = getEnv("DIALOGTREE_MONGO_URI", c.Store.MongoURI)
	c.Store.MongoDB = getEnv("DIALOGTREE_MONGO_DB", c.Store.MongoDB)
	c.Server.Addr = getEnv("DIALOGTREE_ADDR", c.Server.Addr)
	if origins := getEnv("DIALOGTREE_CORS_ORIGINS", ""); origins != "" {
		c.Server.CORSOrigins = strings.Split(origins, ",")
	}
}

// StoreOptions converts the store section for store.Open.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Backend:    c.Store.Backend,
		Path:       c.Store.Path,
		SQLitePath: c.Store.SQLitePath,
		RedisURL:   c.Store.RedisURL,
		MongoURI:   c.Store.MongoURI,
		MongoDB:    c.Store.MongoDB,
	}
}

// Encode renders c as TOML.
func (c *Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	return buf.Bytes(), nil
}

// Write saves c to path, creating parent directories.
func (c *Config) Write(path string) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

func getEnv(key, defaultValue string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
