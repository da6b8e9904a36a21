package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAddr             = ":8080"
	DefaultStorage          = StorageMemory
	DefaultSQLitePath       = "data/huddle.db"
	DefaultLogLevel         = "info"
	DefaultPreviewTimeout   = 5 * time.Second
	DefaultPreviewCacheSize = 512
	DefaultShutdownTimeout  = 5 * time.Second
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config holds server configuration.
type Config struct {
	Addr             string
	StaticDir        string
	AllowedOrigins   []string
	Storage          string
	SQLitePath       string
	LogLevel         string
	LogPretty        bool
	PreviewTimeout   time.Duration
	PreviewCacheSize int
	ShutdownTimeout  time.Duration
}

// Options carries values from command line flags. Zero values mean "not
// set".
type Options struct {
	EnvFile    string
	Addr       string
	StaticDir  string
	Storage    string
	SQLitePath string
	LogLevel   string
}

// Load reads configuration with the following priority:
// 1. CLI flags (passed via Options)
// 2. Environment variables, including those from an optional .env file
// 3. Defaults
func Load(opts Options) (*Config, error) {
	envFile := first(opts.EnvFile, ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg := &Config{
		Addr:       first(opts.Addr, os.Getenv("HUDDLE_ADDR"), DefaultAddr),
		StaticDir:  first(opts.StaticDir, os.Getenv("HUDDLE_STATIC_DIR")),
		Storage:    strings.ToLower(first(opts.Storage, os.Getenv("HUDDLE_STORAGE"), DefaultStorage)),
		SQLitePath: first(opts.SQLitePath, os.Getenv("HUDDLE_SQLITE_PATH"), DefaultSQLitePath),
		LogLevel:   strings.ToLower(first(opts.LogLevel, os.Getenv("LOG_LEVEL"), DefaultLogLevel)),
	}

	if origins := os.Getenv("HUDDLE_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	var err error
	if cfg.LogPretty, err = envBool("LOG_PRETTY", true); err != nil {
		return nil, err
	}
	if cfg.PreviewTimeout, err = envDuration("HUDDLE_PREVIEW_TIMEOUT", DefaultPreviewTimeout); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = envDuration("HUDDLE_SHUTDOWN_TIMEOUT", DefaultShutdownTimeout); err != nil {
		return nil, err
	}
	if cfg.PreviewCacheSize, err = envInt("HUDDLE_PREVIEW_CACHE_SIZE", DefaultPreviewCacheSize); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StorageMemory, StorageSQLite:
	default:
		return fmt.Errorf("unknown storage %q (want %s or %s)", c.Storage, StorageMemory, StorageSQLite)
	}
	if c.Storage == StorageSQLite && c.SQLitePath == "" {
		return errors.New("sqlite storage needs a database path")
	}
	if c.PreviewTimeout <= 0 {
		return errors.New("preview timeout must be positive")
	}
	if c.PreviewCacheSize <= 0 {
		return errors.New("preview cache size must be positive")
	}
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func envInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
