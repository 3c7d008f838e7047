package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Database backends.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	// Model is the Gemini model used for generation
	Model string `json:"model,omitempty" env:"RUMORS_MODEL"`

	// APIKey authenticates against the Gemini API.
	// Usually supplied through the environment rather than the config file.
	APIKey string `json:"api_key,omitempty" env:"GEMINI_API_KEY"`

	// DefaultClassification is the marking applied when a request omits one.
	DefaultClassification string `json:"default_classification,omitempty" env:"RUMORS_DEFAULT_CLASSIFICATION"`

	// TrendingWindowDays is the trailing window for the trending read.
	TrendingWindowDays int `json:"trending_window_days,omitempty" env:"RUMORS_TRENDING_WINDOW_DAYS"`

	// DefaultListLimit and MaxListLimit bound every list read.
	DefaultListLimit int `json:"default_list_limit,omitempty" env:"RUMORS_DEFAULT_LIST_LIMIT"`
	MaxListLimit     int `json:"max_list_limit,omitempty" env:"RUMORS_MAX_LIST_LIMIT"`

	// MaxBatchSize caps concurrent generations in one batch request.
	MaxBatchSize int `json:"max_batch_size,omitempty" env:"RUMORS_MAX_BATCH_SIZE"`

	// SitemapLimit caps the number of theory URLs in the sitemap.
	SitemapLimit int `json:"sitemap_limit,omitempty" env:"RUMORS_SITEMAP_LIMIT"`

	// SiteURL is the public origin used for sitemap and share links.
	SiteURL string `json:"site_url,omitempty" env:"RUMORS_SITE_URL"`

	// DBBackend selects the store: "sqlite" (default, file under the base
	// directory) or "postgres" (hosted, requires DatabaseURL).
	DBBackend string `json:"db_backend,omitempty" env:"RUMORS_DB_BACKEND"`

	// DatabaseURL is the PostgreSQL connection string.
	DatabaseURL string `json:"database_url,omitempty" env:"RUMORS_DATABASE_URL"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use the driver default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty" env:"RUMORS_DB_MAX_OPEN_CONNS"`

	// DBMaxIdleConns limits idle SQLite connections; for PostgreSQL it is the pool minimum.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty" env:"RUMORS_DB_MAX_IDLE_CONNS"`

	// Bind and Port are the web server listen address.
	Bind string `json:"bind,omitempty" env:"RUMORS_BIND"`
	Port int    `json:"port,omitempty" env:"RUMORS_PORT"`

	// ReadTimeoutSeconds and WriteTimeoutSeconds bound HTTP requests.
	// The write timeout must cover a full generation round trip.
	ReadTimeoutSeconds  int `json:"read_timeout_seconds,omitempty" env:"RUMORS_READ_TIMEOUT_SECONDS"`
	WriteTimeoutSeconds int `json:"write_timeout_seconds,omitempty" env:"RUMORS_WRITE_TIMEOUT_SECONDS"`

	// LogMode is "dev" or "prod"; LogLevel overrides the mode's default level.
	LogMode  string `json:"log_mode,omitempty" env:"RUMORS_LOG_MODE"`
	LogLevel string `json:"log_level,omitempty" env:"RUMORS_LOG_LEVEL"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty" env:"RUMORS_DISABLED_TOOLS" env-separator:","`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Model:                 "gemini-2.5-flash",
		DefaultClassification: "TOP SECRET",
		TrendingWindowDays:    7,
		DefaultListLimit:      10,
		MaxListLimit:          100,
		MaxBatchSize:          5,
		SitemapLimit:          1000,
		SiteURL:               "https://ridiculousrumors.com",
		DBBackend:             BackendSQLite,
		Bind:                  "127.0.0.1",
		Port:                  8080,
		ReadTimeoutSeconds:    10,
		WriteTimeoutSeconds:   60,
		LogMode:               "dev",
	}
}

// Load loads configuration from baseDir/config.json and overlays
// environment variables. Missing file means defaults plus environment.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.rumors.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}

	env, err := loadEnv()
	if err != nil {
		return nil, err
	}

	cfg = Merge(cfg, env)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnv reads only the variables that are set; unset fields stay zero so
// Merge keeps the file or default value.
func loadEnv() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{
		Model:                 pickString(overlay.Model, base.Model),
		APIKey:                pickString(overlay.APIKey, base.APIKey),
		DefaultClassification: pickString(overlay.DefaultClassification, base.DefaultClassification),
		TrendingWindowDays:    pickInt(overlay.TrendingWindowDays, base.TrendingWindowDays),
		DefaultListLimit:      pickInt(overlay.DefaultListLimit, base.DefaultListLimit),
		MaxListLimit:          pickInt(overlay.MaxListLimit, base.MaxListLimit),
		MaxBatchSize:          pickInt(overlay.MaxBatchSize, base.MaxBatchSize),
		SitemapLimit:          pickInt(overlay.SitemapLimit, base.SitemapLimit),
		SiteURL:               strings.TrimRight(pickString(overlay.SiteURL, base.SiteURL), "/"),
		DBBackend:             pickString(overlay.DBBackend, base.DBBackend),
		DatabaseURL:           pickString(overlay.DatabaseURL, base.DatabaseURL),
		DBMaxOpenConns:        pickInt(overlay.DBMaxOpenConns, base.DBMaxOpenConns),
		DBMaxIdleConns:        pickInt(overlay.DBMaxIdleConns, base.DBMaxIdleConns),
		Bind:                  pickString(overlay.Bind, base.Bind),
		Port:                  pickInt(overlay.Port, base.Port),
		ReadTimeoutSeconds:    pickInt(overlay.ReadTimeoutSeconds, base.ReadTimeoutSeconds),
		WriteTimeoutSeconds:   pickInt(overlay.WriteTimeoutSeconds, base.WriteTimeoutSeconds),
		LogMode:               pickString(overlay.LogMode, base.LogMode),
		LogLevel:              pickString(overlay.LogLevel, base.LogLevel),
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// Validate checks cross-field constraints after merging.
func (c *Config) Validate() error {
	switch c.DBBackend {
	case BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return errors.New("config: database_url is required for the postgres backend")
		}
	default:
		return fmt.Errorf("config: unknown db_backend %q (want sqlite or postgres)", c.DBBackend)
	}

	switch c.DefaultClassification {
	case "TOP SECRET", "SECRET", "CONFIDENTIAL":
	default:
		return fmt.Errorf("config: unknown default_classification %q", c.DefaultClassification)
	}

	if c.TrendingWindowDays <= 0 {
		return errors.New("config: trending_window_days must be positive")
	}
	if c.DefaultListLimit <= 0 || c.MaxListLimit < c.DefaultListLimit {
		return errors.New("config: list limits must satisfy 0 < default_list_limit <= max_list_limit")
	}
	if c.MaxBatchSize <= 0 {
		return errors.New("config: max_batch_size must be positive")
	}
	return nil
}

// TrendingWindow returns the trending window as a duration.
func (c *Config) TrendingWindow() time.Duration {
	return time.Duration(c.TrendingWindowDays) * 24 * time.Hour
}

// ReadTimeout returns the HTTP read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the HTTP write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}

// TheoryURL is the public dossier URL for a theory.
func (c *Config) TheoryURL(id string) string {
	return strings.TrimRight(c.SiteURL, "/") + "/theories/" + id
}

func pickString(overlay, base string) string {
	if strings.TrimSpace(overlay) != "" {
		return overlay
	}
	return base
}

func pickInt(overlay, base int) int {
	if overlay != 0 {
		return overlay
	}
	return base
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range append(append([]string{}, a...), b...) {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
