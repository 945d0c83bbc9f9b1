package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name of the optional configuration file
	ConfigFileName = "grant-scraper"

	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "GRANT"

	// Default values
	DefaultListingURL          = "https://www.dcgrant.sa.gov.au/page.aspx?u=1178"
	DefaultLinkSelector        = `a[href$=".pdf"]`
	DefaultCommentURL          = "mailto:info@dcgrant.sa.gov.au"
	DefaultDatabasePath        = "data.sqlite"
	DefaultLayout              = "auto"
	DefaultRequestDelay        = 2 * time.Second
	DefaultRequestTimeout      = 60 * time.Second
	DefaultMaxRetries          = 3
	DefaultMaxFileSize         = 100 * 1024 * 1024 // 100MB
	DefaultUserAgent           = "grant-scraper/1.0 (+https://www.planningalerts.org.au)"
	DefaultLogLevel            = "info"
	DefaultLogFormat           = "text"
	DefaultStreetThresholdBase = 7
	DefaultSuburbThreshold     = 2
	DefaultMemoryThresholdMB   = 512
	DefaultServerName          = "grant-scraper"
)

// Configuration keys, also used as flag names
const (
	KeyListingURL          = "listing-url"
	KeyLinkSelector        = "link-selector"
	KeyCommentURL          = "comment-url"
	KeyDatabasePath        = "database"
	KeyGazetteerDir        = "gazetteer-dir"
	KeyDocumentDir         = "document-dir"
	KeyLayout              = "layout"
	KeyRequestDelay        = "request-delay"
	KeyRequestTimeout      = "request-timeout"
	KeyMaxRetries          = "max-retries"
	KeyMaxDocuments        = "max-documents"
	KeyMaxFileSize         = "max-file-size"
	KeyUserAgent           = "user-agent"
	KeyLogLevel            = "log-level"
	KeyLogFormat           = "log-format"
	KeyMetricsAddr         = "metrics-addr"
	KeyStreetThresholdBase = "street-threshold"
	KeySuburbThreshold     = "suburb-threshold"
	KeyMemoryThresholdMB   = "memory-threshold-mb"
)

// Config holds all configuration for the scraper
type Config struct {
	// Source configuration
	ListingURL   string
	LinkSelector string
	CommentURL   string
	MaxDocuments int // 0 processes every document

	// Fetch configuration
	RequestDelay   time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	MaxFileSize    int64 // Maximum PDF file size in bytes
	UserAgent      string

	// Parsing configuration
	Layout              string // "auto", "v1", "v2" or "v3"
	GazetteerDir        string // empty uses the embedded gazetteer
	StreetThresholdBase int
	SuburbThreshold     int

	// Storage and local documents
	DatabasePath string
	DocumentDir  string

	// Application configuration
	Version           string
	ServerName        string
	LogLevel          string
	LogFormat         string
	MetricsAddr       string
	MemoryThresholdMB int
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ListingURL:          DefaultListingURL,
		LinkSelector:        DefaultLinkSelector,
		CommentURL:          DefaultCommentURL,
		RequestDelay:        DefaultRequestDelay,
		RequestTimeout:      DefaultRequestTimeout,
		MaxRetries:          DefaultMaxRetries,
		MaxFileSize:         DefaultMaxFileSize,
		UserAgent:           DefaultUserAgent,
		Layout:              DefaultLayout,
		StreetThresholdBase: DefaultStreetThresholdBase,
		SuburbThreshold:     DefaultSuburbThreshold,
		DatabasePath:        DefaultDatabasePath,
		DocumentDir:         ".",
		Version:             "1.0.0",
		ServerName:          DefaultServerName,
		LogLevel:            DefaultLogLevel,
		LogFormat:           DefaultLogFormat,
		MemoryThresholdMB:   DefaultMemoryThresholdMB,
	}
}

// Loader reads configuration from flags, GRANT_ environment variables and
// an optional grant-scraper.yaml file, in that order of precedence
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader with the defaults set
func NewLoader() *Loader {
	l := &Loader{v: viper.New()}
	l.setupEnvironment()
	l.setDefaults(DefaultConfig())
	return l
}

func (l *Loader) setupEnvironment() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	l.v.AutomaticEnv()
}

func (l *Loader) setDefaults(cfg *Config) {
	l.v.SetDefault(KeyListingURL, cfg.ListingURL)
	l.v.SetDefault(KeyLinkSelector, cfg.LinkSelector)
	l.v.SetDefault(KeyCommentURL, cfg.CommentURL)
	l.v.SetDefault(KeyDatabasePath, cfg.DatabasePath)
	l.v.SetDefault(KeyGazetteerDir, cfg.GazetteerDir)
	l.v.SetDefault(KeyDocumentDir, cfg.DocumentDir)
	l.v.SetDefault(KeyLayout, cfg.Layout)
	l.v.SetDefault(KeyRequestDelay, cfg.RequestDelay)
	l.v.SetDefault(KeyRequestTimeout, cfg.RequestTimeout)
	l.v.SetDefault(KeyMaxRetries, cfg.MaxRetries)
	l.v.SetDefault(KeyMaxDocuments, cfg.MaxDocuments)
	l.v.SetDefault(KeyMaxFileSize, cfg.MaxFileSize)
	l.v.SetDefault(KeyUserAgent, cfg.UserAgent)
	l.v.SetDefault(KeyLogLevel, cfg.LogLevel)
	l.v.SetDefault(KeyLogFormat, cfg.LogFormat)
	l.v.SetDefault(KeyMetricsAddr, cfg.MetricsAddr)
	l.v.SetDefault(KeyStreetThresholdBase, cfg.StreetThresholdBase)
	l.v.SetDefault(KeySuburbThreshold, cfg.SuburbThreshold)
	l.v.SetDefault(KeyMemoryThresholdMB, cfg.MemoryThresholdMB)
}

// BindFlags defines the configuration flags on fs and binds them to the
// loader
func (l *Loader) BindFlags(fs *pflag.FlagSet) error {
	cfg := DefaultConfig()

	fs.String(KeyListingURL, cfg.ListingURL, "URL of the page listing the register documents")
	fs.String(KeyLinkSelector, cfg.LinkSelector, "CSS selector matching document links on the listing page")
	fs.String(KeyCommentURL, cfg.CommentURL, "comment URL stored with every application")
	fs.String(KeyDatabasePath, cfg.DatabasePath, "SQLite database path")
	fs.String(KeyGazetteerDir, cfg.GazetteerDir, "directory with streetnames.txt, streetsuffixes.yaml and suburbnames.txt (default: embedded sample covering a few streets)")
	fs.String(KeyDocumentDir, cfg.DocumentDir, "directory local documents may be read from")
	fs.String(KeyLayout, cfg.Layout, "register layout: auto, v1, v2 or v3")
	fs.Duration(KeyRequestDelay, cfg.RequestDelay, "pause between document downloads")
	fs.Duration(KeyRequestTimeout, cfg.RequestTimeout, "timeout of one HTTP request")
	fs.Int(KeyMaxRetries, cfg.MaxRetries, "retries of a failed download")
	fs.Int(KeyMaxDocuments, cfg.MaxDocuments, "documents to process per run, the latest plus a random sample (0 for all)")
	fs.Int64(KeyMaxFileSize, cfg.MaxFileSize, "maximum PDF file size in bytes")
	fs.String(KeyUserAgent, cfg.UserAgent, "HTTP user agent")
	fs.String(KeyLogLevel, cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.String(KeyLogFormat, cfg.LogFormat, "log format (text, json)")
	fs.String(KeyMetricsAddr, cfg.MetricsAddr, "address serving prometheus metrics during a scrape (disabled when empty)")
	fs.Int(KeyStreetThresholdBase, cfg.StreetThresholdBase, "street fuzzy match edits, less the street's word count")
	fs.Int(KeySuburbThreshold, cfg.SuburbThreshold, "suburb and hundred fuzzy match edits")
	fs.Int(KeyMemoryThresholdMB, cfg.MemoryThresholdMB, "heap size in MB above which memory is released between documents (0 disables)")

	var errs []error
	fs.VisitAll(func(f *pflag.Flag) {
		if isKey(f.Name) {
			errs = append(errs, l.v.BindPFlag(f.Name, f))
		}
	})
	return errors.Join(errs...)
}

func isKey(name string) bool {
	switch name {
	case KeyListingURL, KeyLinkSelector, KeyCommentURL, KeyDatabasePath, KeyGazetteerDir,
		KeyDocumentDir, KeyLayout, KeyRequestDelay, KeyRequestTimeout, KeyMaxRetries,
		KeyMaxDocuments, KeyMaxFileSize, KeyUserAgent, KeyLogLevel, KeyLogFormat,
		KeyMetricsAddr, KeyStreetThresholdBase, KeySuburbThreshold, KeyMemoryThresholdMB:
		return true
	}
	return false
}

// Load reads the configuration. An empty configFile searches for
// grant-scraper.yaml in the working directory and $HOME/.config/grant-scraper;
// a missing file is not an error.
func (l *Loader) Load(configFile string) (*Config, error) {
	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.v.AddConfigPath(".")
		l.v.AddConfigPath("$HOME/.config/grant-scraper")
	}

	if err := l.v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := DefaultConfig()
	l.populate(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ConfigFileUsed returns the path of the configuration file read, if any
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// populate fills the config struct with values from viper
func (l *Loader) populate(cfg *Config) {
	cfg.ListingURL = l.v.GetString(KeyListingURL)
	cfg.LinkSelector = l.v.GetString(KeyLinkSelector)
	cfg.CommentURL = l.v.GetString(KeyCommentURL)
	cfg.DatabasePath = l.v.GetString(KeyDatabasePath)
	cfg.GazetteerDir = l.v.GetString(KeyGazetteerDir)
	cfg.DocumentDir = l.v.GetString(KeyDocumentDir)
	cfg.Layout = strings.ToLower(l.v.GetString(KeyLayout))
	cfg.RequestDelay = l.v.GetDuration(KeyRequestDelay)
	cfg.RequestTimeout = l.v.GetDuration(KeyRequestTimeout)
	cfg.MaxRetries = l.v.GetInt(KeyMaxRetries)
	cfg.MaxDocuments = l.v.GetInt(KeyMaxDocuments)
	cfg.MaxFileSize = l.v.GetInt64(KeyMaxFileSize)
	cfg.UserAgent = l.v.GetString(KeyUserAgent)
	cfg.LogLevel = strings.ToLower(l.v.GetString(KeyLogLevel))
	cfg.LogFormat = strings.ToLower(l.v.GetString(KeyLogFormat))
	cfg.MetricsAddr = l.v.GetString(KeyMetricsAddr)
	cfg.StreetThresholdBase = l.v.GetInt(KeyStreetThresholdBase)
	cfg.SuburbThreshold = l.v.GetInt(KeySuburbThreshold)
	cfg.MemoryThresholdMB = l.v.GetInt(KeyMemoryThresholdMB)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	u, err := url.Parse(c.ListingURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("listing URL must be an absolute http(s) URL: %q", c.ListingURL)
	}

	if strings.TrimSpace(c.LinkSelector) == "" {
		return errors.New("link selector cannot be empty")
	}

	if c.DatabasePath == "" {
		return errors.New("database path cannot be empty")
	}

	validLayouts := map[string]bool{"auto": true, "v1": true, "v2": true, "v3": true}
	if !validLayouts[c.Layout] {
		return fmt.Errorf("invalid layout: %s (must be one of: auto, v1, v2, v3)", c.Layout)
	}

	if c.RequestDelay < 0 {
		return errors.New("request delay cannot be negative")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return errors.New("max retries cannot be negative")
	}
	if c.MaxDocuments < 0 {
		return errors.New("max documents cannot be negative")
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.StreetThresholdBase < 0 || c.SuburbThreshold < 0 {
		return errors.New("fuzzy match thresholds cannot be negative")
	}
	if c.MemoryThresholdMB < 0 {
		return errors.New("memory threshold cannot be negative")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be text or json)", c.LogFormat)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// SlogLevel returns the configured log level
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{ListingURL: %s, Layout: %s, DatabasePath: %s, GazetteerDir: %s, "+
		"RequestDelay: %s, MaxDocuments: %d, MaxFileSize: %d, LogLevel: %s}",
		c.ListingURL, c.Layout, c.DatabasePath, c.GazetteerDir,
		c.RequestDelay, c.MaxDocuments, c.MaxFileSize, c.LogLevel)
}
