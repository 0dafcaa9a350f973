package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv  = "PROXYPOOL_CONFIG"
	databaseDSNEnv = "PROXYPOOL_DSN"

	defaultTable = "proxies"
)

// identifierExpr restricts table names to a letter followed by letters,
// digits, or underscores. Anything else is rejected at startup.
var identifierExpr = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Verify    VerifyConfig    `yaml:"verify"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
	Sources   []SourceConfig  `yaml:"sources"`
}

// DatabaseConfig selects a storage driver and its connection details.
type DatabaseConfig struct {
	Driver         string `yaml:"driver"`
	DSN            string `yaml:"dsn"`
	Table          string `yaml:"table"`
	MaxConnections int    `yaml:"maxConnections"`
}

// VerifyLevel selects a preset triple of (test count, retries, timeout).
type VerifyLevel string

const (
	LevelFast     VerifyLevel = "fast"
	LevelStandard VerifyLevel = "standard"
	LevelDetailed VerifyLevel = "detailed"
)

// VerifyConfig drives the verification pipeline.
type VerifyConfig struct {
	Concurrency     int         `yaml:"concurrency"`
	TimeoutSeconds  int         `yaml:"timeoutSeconds"`
	Level           VerifyLevel `yaml:"level"`
	TestURLs        []string    `yaml:"testUrls"`
	WeightSpeed     float64     `yaml:"weightSpeed"`
	WeightSuccess   float64     `yaml:"weightSuccess"`
	WeightStability float64     `yaml:"weightStability"`
}

// SchedulerConfig defines how often stored proxies are re-verified.
type SchedulerConfig struct {
	IntervalMinutes int `yaml:"intervalMinutes"`
}

// Interval resolves the re-verification period.
func (s SchedulerConfig) Interval() time.Duration {
	if s.IntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.IntervalMinutes) * time.Minute
}

// LoggingConfig controls console output.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SourceConfig describes a single candidate provider with its fetcher strategy.
type SourceConfig struct {
	Name     string `yaml:"name"`
	Fetcher  string `yaml:"fetcher"`
	URL      string `yaml:"url"`
	Pages    int    `yaml:"pages"`
	Protocol string `yaml:"protocol"`
}

// Presets resolves the verify level to (testCount, maxRetries, timeout).
// The configured timeout feeds the standard level; fast pins 3s and detailed
// doubles the configured value, matching the service's historical behavior.
func (v VerifyConfig) Presets() (int, int, time.Duration) {
	timeout := time.Duration(v.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	switch v.Level {
	case LevelFast:
		return 1, 0, 3 * time.Second
	case LevelDetailed:
		return 5, 5, timeout * 2
	default:
		return 3, 3, timeout
	}
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() (Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		var fileCfg Config
		if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
		cfg = mergeConfig(cfg, fileCfg)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate rejects configurations that must not reach the verification stage.
func (c Config) Validate() error {
	if !identifierExpr.MatchString(c.Database.Table) {
		return fmt.Errorf("config: invalid table name %q: must start with a letter and contain only letters, digits, or underscores", c.Database.Table)
	}

	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("config: unsupported storage driver %q", c.Database.Driver)
	}

	switch c.Verify.Level {
	case LevelFast, LevelStandard, LevelDetailed, "":
	default:
		return fmt.Errorf("config: unknown verify level %q", c.Verify.Level)
	}

	if c.Verify.Concurrency <= 0 {
		return fmt.Errorf("config: verify concurrency must be positive, got %d", c.Verify.Concurrency)
	}

	if len(c.Verify.TestURLs) == 0 {
		return fmt.Errorf("config: at least one test URL is required")
	}

	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}
	if override.Database.Table != "" {
		base.Database.Table = override.Database.Table
	}
	if override.Database.MaxConnections > 0 {
		base.Database.MaxConnections = override.Database.MaxConnections
	}

	if override.Verify.Concurrency > 0 {
		base.Verify.Concurrency = override.Verify.Concurrency
	}
	if override.Verify.TimeoutSeconds > 0 {
		base.Verify.TimeoutSeconds = override.Verify.TimeoutSeconds
	}
	if override.Verify.Level != "" {
		base.Verify.Level = override.Verify.Level
	}
	if len(override.Verify.TestURLs) > 0 {
		base.Verify.TestURLs = override.Verify.TestURLs
	}
	if override.Verify.WeightSpeed > 0 {
		base.Verify.WeightSpeed = override.Verify.WeightSpeed
	}
	if override.Verify.WeightSuccess > 0 {
		base.Verify.WeightSuccess = override.Verify.WeightSuccess
	}
	if override.Verify.WeightStability > 0 {
		base.Verify.WeightStability = override.Verify.WeightStability
	}

	if override.Scheduler.IntervalMinutes > 0 {
		base.Scheduler.IntervalMinutes = override.Scheduler.IntervalMinutes
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:         "sqlite",
			DSN:            "proxy.db",
			Table:          defaultTable,
			MaxConnections: 5,
		},
		Verify: VerifyConfig{
			Concurrency:     20,
			TimeoutSeconds:  5,
			Level:           LevelStandard,
			TestURLs:        []string{"https://cip.cc"},
			WeightSpeed:     0.4,
			WeightSuccess:   0.3,
			WeightStability: 0.3,
		},
		Scheduler: SchedulerConfig{IntervalMinutes: 60},
		Logging:   LoggingConfig{Level: "info"},
		Sources: []SourceConfig{
			{
				Name:    "bfbke",
				Fetcher: "plaintext",
				URL:     "https://www.bfbke.com/proxy.txt",
			},
			{
				Name:    "lumiproxy",
				Fetcher: "jsonapi",
				URL:     "https://api.lumiproxy.com/web_v1/free-proxy/list?page_size=60&protocol=1&page=%d",
				Pages:   5,
			},
		},
	}
}
