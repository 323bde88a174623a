package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Nomadcxx/stampwatch/internal/paths"
	"github.com/Nomadcxx/stampwatch/internal/timestamp"
	"github.com/spf13/viper"
)

type Config struct {
	Detection DetectionConfig `mapstructure:"detection"`
	Rename    RenameConfig    `mapstructure:"rename"`
	Watch     WatchConfig     `mapstructure:"watch"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DetectionConfig tunes timestamp detection and batch resolution.
type DetectionConfig struct {
	// DateFormat is the fallback for ambiguous dates: "dmy" or "mdy".
	DateFormat string `mapstructure:"date_format"`
	// AutoResolveThreshold is the batch confidence needed to apply a
	// recommendation without asking.
	AutoResolveThreshold float64 `mapstructure:"auto_resolve_threshold"`
	Workers              int     `mapstructure:"workers"`
	CacheEnabled         bool    `mapstructure:"cache_enabled"`
}

// RenameConfig controls rename plans.
type RenameConfig struct {
	// Template is a Go time layout plus {name} and {ext}.
	Template     string `mapstructure:"template"`
	KeepOriginal bool   `mapstructure:"keep_original"`
}

// WatchConfig contains directories to watch
type WatchConfig struct {
	Directories []string `mapstructure:"directories"`
	Recursive   bool     `mapstructure:"recursive"`

	// ScanInterval re-scans the directories to catch missed events. Zero disables it.
	ScanInterval time.Duration `mapstructure:"scan_interval"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	APIToken       string   `mapstructure:"api_token"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
}

// DefaultTemplate renames to "2006-01-02_150405_original.ext".
const DefaultTemplate = "2006-01-02_150405_{name}{ext}"

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Detection: DetectionConfig{
			DateFormat:           string(timestamp.DMY),
			AutoResolveThreshold: timestamp.DefaultAutoResolveThreshold,
			Workers:              4,
			CacheEnabled:         true,
		},
		Rename: RenameConfig{
			Template:     DefaultTemplate,
			KeepOriginal: true,
		},
		Watch: WatchConfig{
			Directories:  []string{},
			Recursive:    true,
			ScanInterval: time.Hour,
		},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8687",
			AllowedOrigins: []string{"http://localhost:*"},
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSizeMB:  10,
			MaxBackups: 5,
		},
	}
}

// Load loads configuration from the default path or returns defaults
func Load() (*Config, error) {
	configPath, err := paths.ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("unable to get config path: %w", err)
	}
	return LoadFrom(configPath)
}

// LoadFrom reads configPath over the defaults. A missing file is not an
// error. STAMPWATCH_* environment variables override file values.
func LoadFrom(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	v.SetEnvPrefix("stampwatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("unable to read config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}

	return cfg, nil
}

// bindEnv registers the keys that may come from the environment alone;
// viper only consults AutomaticEnv for keys it already knows.
func bindEnv(v *viper.Viper) {
	for _, key := range []string{
		"detection.date_format",
		"detection.auto_resolve_threshold",
		"detection.workers",
		"server.addr",
		"server.api_token",
		"database.path",
		"logging.level",
	} {
		_ = v.BindEnv(key)
	}
}

// Validate checks values the rest of the program relies on.
func (c *Config) Validate() error {
	if _, err := timestamp.ParseConvention(c.Detection.DateFormat); err != nil {
		return err
	}
	if t := c.Detection.AutoResolveThreshold; t < 0 || t > 1 {
		return fmt.Errorf("auto_resolve_threshold %.2f outside [0,1]", t)
	}
	if c.Detection.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Detection.Workers)
	}
	if c.Watch.ScanInterval < 0 {
		return fmt.Errorf("scan_interval must not be negative, got %s", c.Watch.ScanInterval)
	}
	if !strings.Contains(c.Rename.Template, "{name}") && !strings.Contains(c.Rename.Template, "2006") {
		return fmt.Errorf("rename template %q has neither a date layout nor {name}", c.Rename.Template)
	}
	return nil
}

// DateConvention returns the configured fallback convention.
func (c *Config) DateConvention() timestamp.Convention {
	conv, err := timestamp.ParseConvention(c.Detection.DateFormat)
	if err != nil || conv == "" {
		return timestamp.DMY
	}
	return conv
}

// DatabasePath returns the configured database path or the default.
func (c *Config) DatabasePath() (string, error) {
	if c.Database.Path != "" {
		return c.Database.Path, nil
	}
	return paths.DatabasePath()
}

// Save saves configuration to the default path
func (c *Config) Save() error {
	configFile, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configFile)
}

// SaveTo writes the commented TOML form of c to path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("unable to create config dir: %w", err)
	}
	return os.WriteFile(path, []byte(c.ToTOML()), 0600)
}

func ConfigPath() (string, error) {
	return paths.ConfigPath()
}

func ConfigExists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (c *Config) ToTOML() string {
	return fmt.Sprintf(`# stampwatch configuration
# Generated by: stampwatch config init

# ============================================================================
# DETECTION
# ============================================================================
[detection]
# Reading for dates like 05-06-2024 when a folder gives no hint: "dmy" or "mdy"
date_format = %q

# Apply a folder's inferred day/month order without asking at this confidence
auto_resolve_threshold = %.2f

# Parallel detection workers during scans
workers = %d

# Remember detections in the database
cache_enabled = %v

# ============================================================================
# RENAME PLANS
# Template: Go time layout plus {name} (original name) and {ext}
# ============================================================================
[rename]
template = %q
keep_original = %v

# ============================================================================
# WATCH DIRECTORIES
# Folders stampwatchd watches for new files
# ============================================================================
[watch]
directories = %s
recursive = %v
# Full re-scan interval, e.g. "30m". "0s" disables it
scan_interval = %q

# ============================================================================
# HTTP API (stampwatchd / stampwatch serve)
# ============================================================================
[server]
addr = %q
allowed_origins = %s
# Bearer token required by the API when set
api_token = %q

# ============================================================================
# DATABASE
# Empty means ~/.config/stampwatch/stampwatch.db
# ============================================================================
[database]
path = %q

# ============================================================================
# LOGGING
# ============================================================================
[logging]
level = %q
file = %q
max_size_mb = %d
max_backups = %d
`,
		c.Detection.DateFormat,
		c.Detection.AutoResolveThreshold,
		c.Detection.Workers,
		c.Detection.CacheEnabled,
		c.Rename.Template,
		c.Rename.KeepOriginal,
		formatStringSlice(c.Watch.Directories),
		c.Watch.Recursive,
		c.Watch.ScanInterval.String(),
		c.Server.Addr,
		formatStringSlice(c.Server.AllowedOrigins),
		c.Server.APIToken,
		c.Database.Path,
		c.Logging.Level,
		c.Logging.File,
		c.Logging.MaxSizeMB,
		c.Logging.MaxBackups,
	)
}

func formatStringSlice(s []string) string {
	if len(s) == 0 {
		return "[]"
	}
	quoted := make([]string, len(s))
	for i, v := range s {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
