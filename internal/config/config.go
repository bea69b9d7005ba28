// Package config loads run settings from the environment and an optional
// YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tyler180/nfl-archetypes/internal/features"
	"github.com/tyler180/nfl-archetypes/internal/pfr"
)

// MaxFetchAttempts bounds fetch.max_attempts.
const MaxFetchAttempts = 10

// Configuration validation errors.
var (
	ErrInvalidSeason       = errors.New("season must be between 1920 and next year")
	ErrInvalidThreshold    = errors.New("thresholds must be non-negative")
	ErrInvalidLogLevel     = errors.New("log.level must be one of: trace, debug, info, warn, error")
	ErrInvalidLogFormat    = errors.New("log.format must be 'text' or 'json'")
	ErrInvalidMaxAttempts  = errors.New("fetch.max_attempts must be between 1 and 10")
	ErrInvalidDelay        = errors.New("fetch.delay_ms must be non-negative")
	ErrInvalidTimeout      = errors.New("fetch.timeout_ms must be at least 1")
	ErrAthenaWithoutBucket = errors.New("aws.athena_db requires aws.s3_bucket")
)

const DefaultSeason = 2023

type Config struct {
	Season int `yaml:"season"`

	// OutDir receives the CSV files; empty disables the local sink.
	OutDir string `yaml:"out_dir"`

	// HTMLDir, when set, reads saved pages instead of fetching.
	HTMLDir string `yaml:"html_dir"`

	Log        LogConfig           `yaml:"log"`
	Fetch      FetchConfig         `yaml:"fetch"`
	Thresholds features.Thresholds `yaml:"thresholds"`
	AWS        AWSConfig           `yaml:"aws"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type FetchConfig struct {
	DelayMs     int `yaml:"delay_ms"`
	MaxAttempts int `yaml:"max_attempts"`
	TimeoutMs   int `yaml:"timeout_ms"`
}

// AWSConfig enables the cloud sinks. Each is off while its name is empty.
type AWSConfig struct {
	TableName       string `yaml:"table_name"`
	S3Bucket        string `yaml:"s3_bucket"`
	S3Prefix        string `yaml:"s3_prefix"`
	AthenaDB        string `yaml:"athena_db"`
	AthenaWorkgroup string `yaml:"athena_workgroup"`
	AthenaOutput    string `yaml:"athena_output"`
}

func Default() *Config {
	return &Config{
		Season:     DefaultSeason,
		OutDir:     ".",
		Log:        LogConfig{Level: "info", Format: "text"},
		Fetch:      FetchConfig{DelayMs: 2000, MaxAttempts: 3, TimeoutMs: 30000},
		Thresholds: features.DefaultThresholds(),
		AWS:        AWSConfig{S3Prefix: "nfl_archetypes", AthenaWorkgroup: "primary"},
	}
}

// Load builds the configuration: defaults, then environment, then the YAML
// file at path when path is not empty. The result is not validated.
func Load(path string) (*Config, error) {
	cfg := Default()
	cfg.ApplyEnv()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields whose variable is set.
func (c *Config) ApplyEnv() {
	c.Season = envInt("SEASON", c.Season)
	c.OutDir = envStr("OUT_DIR", c.OutDir)
	c.HTMLDir = envStr("HTML_DIR", c.HTMLDir)

	c.Log.Level = envStr("LOG_LEVEL", c.Log.Level)
	c.Log.Format = envStr("LOG_FORMAT", c.Log.Format)

	c.Fetch.DelayMs = envInt("FETCH_DELAY_MS", c.Fetch.DelayMs)
	c.Fetch.MaxAttempts = envInt("HTTP_MAX_ATTEMPTS", c.Fetch.MaxAttempts)
	c.Fetch.TimeoutMs = envInt("HTTP_TIMEOUT_MS", c.Fetch.TimeoutMs)

	c.Thresholds.QBMinAtt = envFloat("QB_MIN_ATT", c.Thresholds.QBMinAtt)
	c.Thresholds.RBMinAtt = envFloat("RB_MIN_ATT", c.Thresholds.RBMinAtt)
	c.Thresholds.WRMinTgt = envFloat("WR_MIN_TGT", c.Thresholds.WRMinTgt)
	c.Thresholds.DefMinComb = envFloat("DEF_MIN_COMB", c.Thresholds.DefMinComb)

	c.AWS.TableName = envStr("TABLE_NAME", c.AWS.TableName)
	c.AWS.S3Bucket = envStr("S3_BUCKET", c.AWS.S3Bucket)
	c.AWS.S3Prefix = envStr("S3_PREFIX", c.AWS.S3Prefix)
	c.AWS.AthenaDB = envStr("ATHENA_DB", c.AWS.AthenaDB)
	c.AWS.AthenaWorkgroup = envStr("ATHENA_WORKGROUP", c.AWS.AthenaWorkgroup)
	c.AWS.AthenaOutput = envStr("ATHENA_OUTPUT", c.AWS.AthenaOutput)
}

func (c *Config) Validate() error {
	if c.Season < 1920 || c.Season > time.Now().Year()+1 {
		return fmt.Errorf("%w: %d", ErrInvalidSeason, c.Season)
	}
	th := c.Thresholds
	if th.QBMinAtt < 0 || th.RBMinAtt < 0 || th.WRMinTgt < 0 || th.DefMinComb < 0 {
		return ErrInvalidThreshold
	}
	switch strings.ToLower(c.Log.Level) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}
	if c.Fetch.MaxAttempts < 1 || c.Fetch.MaxAttempts > MaxFetchAttempts {
		return ErrInvalidMaxAttempts
	}
	if c.Fetch.DelayMs < 0 {
		return ErrInvalidDelay
	}
	if c.Fetch.TimeoutMs < 1 {
		return ErrInvalidTimeout
	}
	if c.AWS.AthenaDB != "" && c.AWS.S3Bucket == "" {
		return ErrAthenaWithoutBucket
	}
	return nil
}

// PFR converts the fetch settings into the fetcher's config.
func (c *Config) PFR() pfr.Config {
	cfg := pfr.DefaultConfig()
	cfg.Delay = time.Duration(c.Fetch.DelayMs) * time.Millisecond
	cfg.MaxAttempts = c.Fetch.MaxAttempts
	cfg.Timeout = time.Duration(c.Fetch.TimeoutMs) * time.Millisecond
	return cfg
}

// -------------------- env helpers --------------------

func envStr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return v
	}
	return def
}

func envFloat(key string, def float64) float64 {
	if v, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64); err == nil {
		return v
	}
	return def
}
