// Package config provides configuration loading and management for the catalog sync engine.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/labcatalog/catalog-sync/internal/telemetry"
)

// EnvPrefix is the prefix of every environment variable read by the application
const EnvPrefix = "CATALOG_SYNC"

// Environment variables holding credentials when no file is configured
const (
	EnvAcademySession   = EnvPrefix + "_ACADEMY_SESSION"
	EnvLabsToken        = EnvPrefix + "_LABS_TOKEN"
	EnvDatabasePassword = EnvPrefix + "_DATABASE_PASSWORD"
)

const (
	defaultRequestDelay   = time.Second
	defaultRequestTimeout = 30 * time.Second
	defaultSyncInterval   = 24 * time.Hour
	defaultStatusDir      = "./data"
	defaultModuleCeiling  = 500
)

// StorageType is the kind of catalog storage backing a run
type StorageType string

const (
	// StorageTypeDatabase persists the catalog in PostgreSQL
	StorageTypeDatabase StorageType = "database"

	// StorageTypeMemory keeps the catalog in process memory (dry runs)
	StorageTypeMemory StorageType = "memory"
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks to prevent symlink attacks.
		// Note that this calls filepath.Clean internally.
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) {
			if !filepath.IsLocal(realPath) {
				return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
			}
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	Academy   ServiceConfig     `yaml:"academy"`
	Labs      ServiceConfig     `yaml:"labs"`
	Sync      SyncConfig        `yaml:"sync"`
	Storage   StorageConfig     `yaml:"storage,omitempty"`
	Database  *DatabaseConfig   `yaml:"database,omitempty"`
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// ServiceConfig describes one remote catalog service
type ServiceConfig struct {
	// BaseURL is the API root every request path is appended to
	BaseURL string `yaml:"baseURL"`

	// WebURL is the public site root used to build canonical entity URLs.
	// Defaults to the scheme and host of BaseURL.
	WebURL string `yaml:"webURL,omitempty"`

	// CredentialFile is the path to a file holding the session cookie (academy)
	// or bearer token (labs). When empty the service's environment variable is used.
	CredentialFile string `yaml:"credentialFile,omitempty"`

	// RequestDelay is the minimum spacing between two requests to this service (e.g. "1s")
	RequestDelay string `yaml:"requestDelay,omitempty"`
}

// SyncConfig defines sweep behaviour
type SyncConfig struct {
	// ModuleCeiling is the highest module id probed by the module sweep
	ModuleCeiling int `yaml:"moduleCeiling"`

	// BackfillVulnerabilities enables the vulnerability back-fill phase
	BackfillVulnerabilities bool `yaml:"backfillVulnerabilities"`

	// FetchMachineTags controls whether machine tag sets are fetched after a machine upsert
	FetchMachineTags *bool `yaml:"fetchMachineTags,omitempty"`

	// ConcurrentLanes runs machine resolution on its own lane alongside the academy phases
	ConcurrentLanes bool `yaml:"concurrentLanes,omitempty"`

	// ResumeFromCheckpoint restarts the module sweep after the last id of a cancelled run
	ResumeFromCheckpoint bool `yaml:"resumeFromCheckpoint,omitempty"`

	// Interval is the time between two sweeps in serve mode (e.g. "24h")
	Interval string `yaml:"interval,omitempty"`

	// RequestTimeout bounds a single remote request (e.g. "30s")
	RequestTimeout string `yaml:"requestTimeout,omitempty"`
}

// StorageConfig defines where run state lives
type StorageConfig struct {
	// StatusDir is where run snapshots are written when no database is configured
	StatusDir string `yaml:"statusDir,omitempty"`
}

// DatabaseConfig defines database connection settings
type DatabaseConfig struct {
	// Host is the database server hostname or IP address
	Host string `yaml:"host"`

	// Port is the database server port
	Port int `yaml:"port"`

	// User is the database username
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the database password
	// The file should contain only the password with optional trailing whitespace
	PasswordFile string `yaml:"passwordFile,omitempty"`

	// Database is the database name
	Database string `yaml:"database"`

	// SSLMode is the SSL mode for the connection (disable, require, verify-ca, verify-full)
	SSLMode string `yaml:"sslMode,omitempty"`

	// MaxOpenConns is the maximum number of open connections to the database
	MaxOpenConns int32 `yaml:"maxOpenConns,omitempty"`

	// ConnMaxLifetime is the maximum lifetime of a connection (e.g., "1h", "30m")
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// GetPassword returns the database password using the following priority:
// 1. Read from PasswordFile if specified
// 2. Read from CATALOG_SYNC_DATABASE_PASSWORD environment variable
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		return readSecretFile(d.PasswordFile)
	}

	if envPassword := os.Getenv(EnvDatabasePassword); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf(
		"no database password configured: set passwordFile or %s environment variable", EnvDatabasePassword,
	)
}

// GetConnectionString builds a PostgreSQL connection string with proper password handling.
// The password is URL-escaped to handle special characters safely.
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "require"
	}

	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	)

	return connString, nil
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetStorageType returns database storage when a database is configured, memory otherwise
func (c *Config) GetStorageType() StorageType {
	if c.Database != nil {
		return StorageTypeDatabase
	}
	return StorageTypeMemory
}

// GetStatusDir returns the directory for file-based run snapshots
func (c *Config) GetStatusDir() string {
	if c.Storage.StatusDir == "" {
		return defaultStatusDir
	}
	return c.Storage.StatusDir
}

// GetModuleCeiling returns the highest module id to probe
func (s *SyncConfig) GetModuleCeiling() int {
	if s.ModuleCeiling <= 0 {
		return defaultModuleCeiling
	}
	return s.ModuleCeiling
}

// GetFetchMachineTags reports whether machine tags are fetched, defaulting to true
func (s *SyncConfig) GetFetchMachineTags() bool {
	if s.FetchMachineTags == nil {
		return true
	}
	return *s.FetchMachineTags
}

// GetInterval returns the serve-mode sweep interval
func (s *SyncConfig) GetInterval() time.Duration {
	return parseDurationOr(s.Interval, defaultSyncInterval)
}

// GetRequestTimeout returns the per-request network timeout
func (s *SyncConfig) GetRequestTimeout() time.Duration {
	return parseDurationOr(s.RequestTimeout, defaultRequestTimeout)
}

// GetRequestDelay returns the minimum spacing between requests to the service
func (s *ServiceConfig) GetRequestDelay() time.Duration {
	return parseDurationOr(s.RequestDelay, defaultRequestDelay)
}

// GetWebURL returns the public site root of the service, without trailing slash
func (s *ServiceConfig) GetWebURL() string {
	if s.WebURL != "" {
		return strings.TrimSuffix(s.WebURL, "/")
	}
	u, err := url.Parse(s.BaseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// GetCredential returns the service credential using the following priority:
// 1. Read from CredentialFile if specified
// 2. Read from the given environment variable
func (s *ServiceConfig) GetCredential(envVar string) (string, error) {
	if s.CredentialFile != "" {
		return readSecretFile(s.CredentialFile)
	}
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("no credential configured: set credentialFile or %s environment variable", envVar)
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateService(&c.Academy, "academy"); err != nil {
		return err
	}
	if err := validateService(&c.Labs, "labs"); err != nil {
		return err
	}
	if err := validateSync(&c.Sync); err != nil {
		return err
	}
	if c.Database != nil {
		if err := validateDatabase(c.Database); err != nil {
			return err
		}
	}
	if c.Telemetry != nil {
		if err := c.Telemetry.Validate(); err != nil {
			return fmt.Errorf("telemetry: %w", err)
		}
	}

	return nil
}

// validateService validates one remote service block
func validateService(svc *ServiceConfig, prefix string) error {
	if svc.BaseURL == "" {
		return fmt.Errorf("%s: baseURL is required", prefix)
	}
	u, err := url.Parse(svc.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s: baseURL must be an absolute URL, got %q", prefix, svc.BaseURL)
	}
	if svc.RequestDelay != "" {
		d, err := time.ParseDuration(svc.RequestDelay)
		if err != nil {
			return fmt.Errorf("%s: requestDelay must be a valid duration (e.g., '500ms', '1s'): %w", prefix, err)
		}
		if d < 0 {
			return fmt.Errorf("%s: requestDelay cannot be negative", prefix)
		}
	}
	return nil
}

// validateSync validates the sweep settings
func validateSync(s *SyncConfig) error {
	if s.ModuleCeiling < 0 {
		return fmt.Errorf("sync: moduleCeiling cannot be negative")
	}
	if s.Interval != "" {
		if _, err := time.ParseDuration(s.Interval); err != nil {
			return fmt.Errorf("sync: interval must be a valid duration (e.g., '30m', '24h'): %w", err)
		}
	}
	if s.RequestTimeout != "" {
		if _, err := time.ParseDuration(s.RequestTimeout); err != nil {
			return fmt.Errorf("sync: requestTimeout must be a valid duration (e.g., '30s'): %w", err)
		}
	}
	return nil
}

// validateDatabase validates the database block
func validateDatabase(d *DatabaseConfig) error {
	if d.Host == "" {
		return fmt.Errorf("database: host is required")
	}
	if d.Port == 0 {
		return fmt.Errorf("database: port is required")
	}
	if d.User == "" {
		return fmt.Errorf("database: user is required")
	}
	if d.Database == "" {
		return fmt.Errorf("database: database is required")
	}
	if d.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(d.ConnMaxLifetime); err != nil {
			return fmt.Errorf("database: connMaxLifetime must be a valid duration: %w", err)
		}
	}
	return nil
}

func readSecretFile(path string) (string, error) {
	cleanPath := filepath.Clean(path)

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret from file %s: %w", path, err)
	}

	return strings.TrimSpace(string(data)), nil
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
