package contract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/hotmap/core/match"
	"github.com/huangsam/hotmap/schema"
)

// Default values for configuration.
const (
	DefaultResultLimit = 10
	MaxResultLimit     = 1000
	DefaultPrecision   = 4
	MaxPrecision       = 4
	DefaultPort        = 8080
	DefaultOutputDir   = "hotspot_output"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration for the analysis.
// This struct is the "final, validated" config.
type Config struct {
	RepoPath string
	Since    string // SinceLayout timestamp or empty for all history

	// SinceInput is the bound as the user wrote it. It keys the cache so a
	// relative bound like "6 months ago" maps to one entry across runs.
	SinceInput string

	OutputDir string
	Port      int
	NoOpen    bool
	NoServe   bool

	Excludes          []string // effective exclusion set
	ExtraExcludes     []string // user-provided additions
	NoDefaultExcludes bool

	UseCache   bool
	ClearCache bool

	ResultLimit int
	Workers     int
	Precision   int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool

	CacheDir       string
	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	AnalysisBackend   schema.DatabaseBackend
	AnalysisDBConnect string // Please use env var as this is plaintext
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	Since             string   `mapstructure:"since"`
	OutputDir         string   `mapstructure:"output-dir"`
	Port              int      `mapstructure:"port"`
	NoOpen            bool     `mapstructure:"no-open"`
	NoServe           bool     `mapstructure:"no-serve"`
	Exclude           []string `mapstructure:"exclude"`
	NoDefaultExcludes bool     `mapstructure:"no-default-excludes"`
	Cache             bool     `mapstructure:"cache"`
	NoCache           bool     `mapstructure:"no-cache"`
	ClearCache        bool     `mapstructure:"clear-cache"`
	Limit             int      `mapstructure:"limit"`
	Workers           int      `mapstructure:"workers"`
	Precision         int      `mapstructure:"precision"`
	Format            string   `mapstructure:"format"`
	OutputFile        string   `mapstructure:"output-file"`
	Width             int      `mapstructure:"width"`
	Color             string   `mapstructure:"color"`
	CacheDir          string   `mapstructure:"cache-dir"`
	CacheBackend      string   `mapstructure:"cache-backend"`
	CacheDBConnect    string   `mapstructure:"cache-db-connect"`
	AnalysisBackend   string   `mapstructure:"analysis-backend"`
	AnalysisDBConnect string   `mapstructure:"analysis-db-connect"`
}

// CacheSince is the since value used in cache keys.
func (c *Config) CacheSince() string {
	if c.SinceInput != "" {
		return c.SinceInput
	}
	return c.Since
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Excludes = slices.Clone(c.Excludes)
	clone.ExtraExcludes = slices.Clone(c.ExtraExcludes)
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processSince(cfg, input, time.Now()); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	processExclusions(cfg, input)
	return resolveGitPath(ctx, cfg, client, input)
}

// ProcessStoreConfig validates only the storage settings. Subcommands that
// manage the cache or analysis stores use it without needing a repository.
func ProcessStoreConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.CacheDir = input.CacheDir
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir()
	}
	return validateBackendConfigs(cfg, input)
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' with host:port")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateBackendConfigs validates cache and analysis backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return fmt.Errorf("cache-db-connect: %w", err)
	}

	// --- Analysis Backend Validation ---
	cfg.AnalysisBackend = schema.DatabaseBackend(strings.ToLower(input.AnalysisBackend))
	if cfg.AnalysisBackend == "" {
		return nil
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.AnalysisBackend]; !ok {
		return fmt.Errorf("invalid analysis backend '%s'. must be sqlite, mysql, postgresql, none", input.AnalysisBackend)
	}
	cfg.AnalysisDBConnect = input.AnalysisDBConnect
	if err := ValidateDatabaseConnectionString(cfg.AnalysisBackend, cfg.AnalysisDBConnect); err != nil {
		return fmt.Errorf("analysis-db-connect: %w", err)
	}

	// For SQLite, resolve to actual file paths to catch default path conflicts
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.AnalysisBackend == schema.SQLiteBackend {
		cacheDBPath := cfg.CacheDBConnect
		if cacheDBPath == "" {
			cacheDBPath = CacheDBFilePath(cfg.CacheDir)
		}
		analysisDBPath := cfg.AnalysisDBConnect
		if analysisDBPath == "" {
			analysisDBPath = AnalysisDBFilePath(cfg.CacheDir)
		}
		if cacheDBPath == analysisDBPath {
			return fmt.Errorf("cache and analysis storage must use different SQLite database files. Both resolve to %q", cacheDBPath)
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.NoOpen = input.NoOpen
	cfg.NoServe = input.NoServe
	cfg.NoDefaultExcludes = input.NoDefaultExcludes
	cfg.UseCache = input.Cache && !input.NoCache
	cfg.ClearCache = input.ClearCache
	cfg.Width = input.Width

	cfg.OutputDir = input.OutputDir
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	cfg.CacheDir = input.CacheDir
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir()
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Numeric Validation ---
	if input.Limit <= 0 || input.Limit > MaxResultLimit {
		return fmt.Errorf("limit must be greater than 0 and cannot exceed %d (received %d)", MaxResultLimit, input.Limit)
	}
	cfg.ResultLimit = input.Limit

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Port <= 0 || input.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (received %d)", input.Port)
	}
	cfg.Port = input.Port

	if input.Precision < 1 || input.Precision > MaxPrecision {
		return fmt.Errorf("precision must be between 1 and %d (received %d)", MaxPrecision, input.Precision)
	}
	cfg.Precision = input.Precision

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Format))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Format)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	return nil
}

// processSince normalizes the since bound.
func processSince(cfg *Config, input *ConfigRawInput, now time.Time) error {
	since, err := NormalizeSince(input.Since, now)
	if err != nil {
		return err
	}
	cfg.Since = since
	cfg.SinceInput = strings.TrimSpace(input.Since)
	return nil
}

// processExclusions builds the effective exclusion set.
func processExclusions(cfg *Config, input *ConfigRawInput) {
	cfg.ExtraExcludes = nil
	for _, p := range input.Exclude {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.ExtraExcludes = append(cfg.ExtraExcludes, trimmed)
		}
	}
	cfg.Excludes = match.BuildExclusions(cfg.ExtraExcludes, cfg.NoDefaultExcludes)
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// resolveGitPath checks the target directory and resolves its repository root.
func resolveGitPath(ctx context.Context, cfg *Config, client GitClient, input *ConfigRawInput) error {
	searchPath := input.RepoPathStr
	if searchPath == "" {
		searchPath = "."
	}
	absSearchPath, err := filepath.Abs(searchPath)
	if err != nil {
		return err
	}
	absSearchPath = filepath.Clean(absSearchPath)

	info, err := os.Stat(absSearchPath)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%q is not a valid directory", absSearchPath)
	}

	gitRoot, err := client.GetRepoRoot(ctx, absSearchPath)
	if err != nil {
		return err
	}
	cfg.RepoPath = gitRoot
	return nil
}
