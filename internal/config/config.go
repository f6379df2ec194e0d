package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jgivc/darkhammer/internal/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"

	// StorageKey is the single key the state snapshot is persisted under.
	StorageKey = "dark-hammer-storage"

	EnvListen        = "DARKHAMMER_LISTEN"
	EnvRedisURL      = "DARKHAMMER_REDIS_URL"
	EnvYouTubeAPIKey = "DARKHAMMER_YOUTUBE_API_KEY"
	EnvLogLevel      = "DARKHAMMER_LOG_LEVEL"

	defaultListen        = ":8080"
	defaultURL           = "http://localhost:8080"
	defaultDataDir       = "data"
	defaultSQLitePath    = "data/darkhammer.db"
	defaultRedisURL      = "redis://localhost:6379/0"
	defaultSaveTimeout   = 2 * time.Second
	defaultMockDelay     = 500 * time.Millisecond
	defaultStaleTime     = 5 * time.Minute
	defaultImportWorkers = 4
	defaultImportExt     = ".md"
	defaultImportDir     = "templates"
	defaultDumpFileName  = "snapshot.yml"
)

type StorageConfig struct {
	Backend     string        `yaml:"backend"`
	Key         string        `yaml:"key"`
	DataDir     string        `yaml:"data_dir"`
	SQLitePath  string        `yaml:"sqlite_path"`
	RedisURL    string        `yaml:"redis_url"`
	SaveTimeout time.Duration `yaml:"save_timeout"`
}

type MockConfig struct {
	Delay        time.Duration `yaml:"delay"`
	StaleTime    time.Duration `yaml:"stale_time"`
	FixturesFile string        `yaml:"fixtures_file"`
}

type ImportConfig struct {
	WorkDir   string   `yaml:"work_dir"`
	Workers   int      `yaml:"workers"`
	Extension string   `yaml:"extension"`
	SkipFiles []string `yaml:"skip_files"`
}

type HandlerConfig struct {
	URL string `yaml:"url"`
}

type Config struct {
	Listen        string        `yaml:"listen"`
	LogLevel      string        `yaml:"log_level"`
	YouTubeAPIKey string        `yaml:"youtube_api_key"`
	DumpFileName  string        `yaml:"dump_filename"`
	StorageConfig StorageConfig `yaml:"storage"`
	MockConfig    MockConfig    `yaml:"mock"`
	ImportConfig  ImportConfig  `yaml:"import"`
	HandlerConfig HandlerConfig `yaml:"handler"`
}

func (c *Config) SetDefaults() {
	c.Listen = defaultListen
	c.LogLevel = LogLevelInfo
	c.DumpFileName = defaultDumpFileName

	c.StorageConfig = StorageConfig{
		Backend:     BackendFile,
		Key:         StorageKey,
		DataDir:     defaultDataDir,
		SQLitePath:  defaultSQLitePath,
		RedisURL:    defaultRedisURL,
		SaveTimeout: defaultSaveTimeout,
	}

	c.MockConfig = MockConfig{
		Delay:     defaultMockDelay,
		StaleTime: defaultStaleTime,
	}

	c.ImportConfig = ImportConfig{
		WorkDir:   defaultImportDir,
		Workers:   defaultImportWorkers,
		Extension: defaultImportExt,
	}

	c.HandlerConfig = HandlerConfig{
		URL: defaultURL,
	}
}

// Load reads path over the defaults and applies environment overrides.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.SetDefaults()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("cannot load .env file: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(EnvRedisURL); v != "" {
		c.StorageConfig.RedisURL = v
	}
	if v := os.Getenv(EnvYouTubeAPIKey); v != "" {
		c.YouTubeAPIKey = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}

	switch c.StorageConfig.Backend {
	case BackendFile, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", common.ErrUnknownStorageBackendError, c.StorageConfig.Backend)
	}

	if c.StorageConfig.Key == "" {
		return fmt.Errorf("storage key must not be empty")
	}

	if c.ImportConfig.Workers < 1 {
		c.ImportConfig.Workers = 1
	}

	return nil
}
