package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig locates the SQLite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// IngestConfig tunes the ingestion driver.
type IngestConfig struct {
	// BatchSize is the number of messages processed between commits.
	BatchSize int `mapstructure:"batch_size" yaml:"batch_size"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // console or json
}

// IMAPConfig describes a mailbox that can be read as an archive.
// The password is never kept in the config file.
type IMAPConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     string `mapstructure:"port" yaml:"port"`
	Username string `mapstructure:"username" yaml:"username"`
	TLS      bool   `mapstructure:"tls" yaml:"tls"`
	Mailbox  string `mapstructure:"mailbox" yaml:"mailbox"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Ingest   IngestConfig   `mapstructure:"ingest" yaml:"ingest"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	IMAP     IMAPConfig     `mapstructure:"imap" yaml:"imap"`
}

// EnvPrefix is prepended to every environment override, e.g.
// BUGRECOVER_DATABASE_PATH.
const EnvPrefix = "BUGRECOVER"

// DefaultBatchSize is the commit interval used when none is configured.
const DefaultBatchSize = 100

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/bugrecover/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "bugrecover", "config.yaml")
}

// NewViper returns a viper instance with defaults and environment
// bindings applied. Callers may bind flags onto it before LoadConfig.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("database.path", "data.db")
	v.SetDefault("ingest.batch_size", DefaultBatchSize)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("imap.host", "")
	v.SetDefault("imap.port", "993")
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.tls", true)
	v.SetDefault("imap.mailbox", "INBOX")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads configuration from the given YAML file path into v.
// A missing file is not an error; defaults and environment still apply.
func LoadConfig(v *viper.Viper, path string) (*AppConfig, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			var pathErr *os.PathError
			if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Ingest.BatchSize < 1 {
		cfg.Ingest.BatchSize = DefaultBatchSize
	}

	return cfg, nil
}

// Validate reports configuration that cannot work for IMAP ingestion.
func (c IMAPConfig) Validate() error {
	var missing []string
	if c.Host == "" {
		missing = append(missing, "imap.host")
	}
	if c.Username == "" {
		missing = append(missing, "imap.username")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required imap settings: %v", missing)
	}
	return nil
}
