// Package config handles configuration loading for NewsPulse.
// It supports YAML config files, a .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. NEWSPULSE_NEWS_QUERY.
const EnvPrefix = "NEWSPULSE"

// DefaultQuery is the search query used when none is configured.
const DefaultQuery = `"IIT Mandi" OR "Mandi Himachal Pradesh"`

// Config represents the complete application configuration.
type Config struct {
	News     NewsConfig     `mapstructure:"news"     yaml:"news" json:"news"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis" json:"analysis"`
	Report   ReportConfig   `mapstructure:"report"   yaml:"report" json:"report"`
	API      APIConfig      `mapstructure:"api"      yaml:"api" json:"api"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging" json:"logging"`
}

// NewsConfig holds article source settings.
type NewsConfig struct {
	Provider       string       `mapstructure:"provider"         yaml:"provider" json:"provider"` // "newsapi", "rss", "all"
	NewsAPIKey     string       `mapstructure:"newsapi_key"      yaml:"newsapi_key" json:"-"`
	NewsAPIURL     string       `mapstructure:"newsapi_url"      yaml:"newsapi_url" json:"newsapi_url"`
	Query          string       `mapstructure:"query"            yaml:"query" json:"query"`
	SortBy         string       `mapstructure:"sort_by"          yaml:"sort_by" json:"sort_by"` // "relevancy", "popularity", "publishedAt"
	Language       string       `mapstructure:"language"         yaml:"language" json:"language"`
	PageSize       int          `mapstructure:"page_size"        yaml:"page_size" json:"page_size"`
	TimeoutSec     int          `mapstructure:"timeout_sec"      yaml:"timeout_sec" json:"timeout_sec"`
	RequestsPerSec float64      `mapstructure:"requests_per_sec" yaml:"requests_per_sec" json:"requests_per_sec"`
	CacheTTL       int          `mapstructure:"cache_ttl"        yaml:"cache_ttl" json:"cache_ttl"` // seconds
	Feeds          []FeedConfig `mapstructure:"feeds"            yaml:"feeds" json:"feeds"`
}

// FeedConfig names one RSS or Atom feed.
type FeedConfig struct {
	Name string `mapstructure:"name" yaml:"name" json:"name"`
	URL  string `mapstructure:"url"  yaml:"url" json:"url"`
}

// Timeout returns the HTTP timeout as a duration.
func (n NewsConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSec) * time.Second
}

// CacheDuration returns the cache TTL as a duration.
func (n NewsConfig) CacheDuration() time.Duration {
	return time.Duration(n.CacheTTL) * time.Second
}

// AnalysisConfig holds scoring engine settings.
type AnalysisConfig struct {
	Workers     int    `mapstructure:"workers"      yaml:"workers" json:"workers"`      // 0 = runtime.NumCPU()
	LexiconPath string `mapstructure:"lexicon_path" yaml:"lexicon_path" json:"lexicon_path"` // "" = built-in lexicon
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	Format   string `mapstructure:"format"    yaml:"format" json:"format"` // "text", "markdown", "json"
	TopTerms int    `mapstructure:"top_terms" yaml:"top_terms" json:"top_terms"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host" json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port" json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level" json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newspulse/config.yaml (home directory)
//  3. /etc/newspulse/config.yaml (system)
//
// A .env file in the working directory is loaded first if present.
// Environment variables override config file values.
// Format: NEWSPULSE_<SECTION>_<KEY>, e.g., NEWSPULSE_NEWS_NEWSAPI_KEY
func Load() (*Config, error) {
	loadDotEnv(".env")

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newspulse"))
	v.AddConfigPath("/etc/newspulse")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path. A .env file
// next to it is loaded first if present.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv(filepath.Join(filepath.Dir(path), ".env"))

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.News.Provider {
	case "newsapi", "rss", "all":
	default:
		return fmt.Errorf("config: unknown news provider %q", c.News.Provider)
	}
	switch c.Report.Format {
	case "text", "markdown", "json", "html":
	default:
		return fmt.Errorf("config: unknown report format %q", c.Report.Format)
	}
	if c.News.PageSize < 1 || c.News.PageSize > 100 {
		return fmt.Errorf("config: news.page_size must be between 1 and 100, got %d", c.News.PageSize)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News defaults
	v.SetDefault("news.provider", "newsapi")
	v.SetDefault("news.newsapi_url", "https://newsapi.org/v2/everything")
	v.SetDefault("news.query", DefaultQuery)
	v.SetDefault("news.sort_by", "relevancy")
	v.SetDefault("news.language", "en")
	v.SetDefault("news.page_size", 100)
	v.SetDefault("news.timeout_sec", 30)
	v.SetDefault("news.requests_per_sec", 2.0)
	v.SetDefault("news.cache_ttl", 600) // 10 minutes

	// Analysis defaults
	v.SetDefault("analysis.workers", 0)
	v.SetDefault("analysis.lexicon_path", "")

	// Report defaults
	v.SetDefault("report.format", "text")
	v.SetDefault("report.top_terms", 5)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
// NEWSAPI_KEY is honoured as a fallback for the prefixed variable.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv("NEWSPULSE_NEWS_NEWSAPI_KEY"); key != "" {
		cfg.News.NewsAPIKey = key
	} else if key := os.Getenv("NEWSAPI_KEY"); key != "" && cfg.News.NewsAPIKey == "" {
		cfg.News.NewsAPIKey = key
	}
}

// loadDotEnv loads variables from path without overriding ones already set.
// A missing file is not an error.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	_ = godotenv.Load(path)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
