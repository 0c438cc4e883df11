package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration. Values come from defaults,
// then an optional YAML file, then STASH_* environment overrides.
type Config struct {
	Addr     string   `yaml:"addr"`
	DBPath   string   `yaml:"db_path"`
	LogLevel string   `yaml:"log_level"`
	Metadata Metadata `yaml:"metadata"`
	Limits   Limits   `yaml:"limits"`
	Backup   Backup   `yaml:"backup"`
}

type Metadata struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Limits bounds user-supplied field sizes. Enforced at validation time
// before any persistence call.
type Limits struct {
	MaxTitleLen       int `yaml:"max_title_len"`
	MaxContentLen     int `yaml:"max_content_len"`
	MaxDescriptionLen int `yaml:"max_description_len"`
	MaxURLLen         int `yaml:"max_url_len"`
	MaxTags           int `yaml:"max_tags"`
	MaxTagLen         int `yaml:"max_tag_len"`
}

type Backup struct {
	Enabled       bool   `yaml:"enabled"`
	IntervalHours int    `yaml:"interval_hours"`
	Passphrase    string `yaml:"passphrase"`
	S3Endpoint    string `yaml:"s3_endpoint"`
	S3Region      string `yaml:"s3_region"`
	S3Bucket      string `yaml:"s3_bucket"`
	S3AccessKey   string `yaml:"s3_access_key"`
	S3SecretKey   string `yaml:"s3_secret_key"`
}

func Default() *Config {
	return &Config{
		Addr:     ":8080",
		DBPath:   "stash.db",
		LogLevel: "info",
		Metadata: Metadata{TimeoutSeconds: 10},
		Limits: Limits{
			MaxTitleLen:       200,
			MaxContentLen:     100 * 1024,
			MaxDescriptionLen: 2000,
			MaxURLLen:         2048,
			MaxTags:           32,
			MaxTagLen:         64,
		},
		Backup: Backup{IntervalHours: 24},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and environment variables apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)

	if cfg.Metadata.TimeoutSeconds <= 0 {
		cfg.Metadata.TimeoutSeconds = 10
	}
	if cfg.Backup.IntervalHours <= 0 {
		cfg.Backup.IntervalHours = 24
	}
	return cfg, nil
}

func (c *Config) MetadataTimeout() time.Duration {
	return time.Duration(c.Metadata.TimeoutSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func applyEnv(cfg *Config) {
	setString(&cfg.Addr, "STASH_ADDR")
	setString(&cfg.DBPath, "STASH_DB_PATH")
	setString(&cfg.LogLevel, "STASH_LOG_LEVEL")
	setInt(&cfg.Metadata.TimeoutSeconds, "STASH_METADATA_TIMEOUT")
	setBool(&cfg.Backup.Enabled, "STASH_BACKUP_ENABLED")
	setInt(&cfg.Backup.IntervalHours, "STASH_BACKUP_INTERVAL_HOURS")
	setString(&cfg.Backup.Passphrase, "STASH_BACKUP_PASSPHRASE")
	setString(&cfg.Backup.S3Endpoint, "STASH_BACKUP_S3_ENDPOINT")
	setString(&cfg.Backup.S3Region, "STASH_BACKUP_S3_REGION")
	setString(&cfg.Backup.S3Bucket, "STASH_BACKUP_S3_BUCKET")
	setString(&cfg.Backup.S3AccessKey, "STASH_BACKUP_S3_ACCESS_KEY")
	setString(&cfg.Backup.S3SecretKey, "STASH_BACKUP_S3_SECRET_KEY")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
