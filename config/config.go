package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/ini.v1"
)

// Config holds the bulk insert service configuration
type Config struct {
	BulkInsert BulkInsertConfig
	Database   DatabaseConfig
	Log        LogConfig
	Metrics    MetricsConfig
	Relay      RelayConfig
}

// BulkInsertConfig holds the buffering and flush tunables
type BulkInsertConfig struct {
	MaxRecords     int           // Buffered records across all kinds before a forced flush
	FlushInterval  time.Duration // Wall-clock interval between flushes
	CheckInterval  time.Duration // How often the flush loop checks whether a flush is due
	UseTransaction bool          // Execute each flush in one transaction
}

// DatabaseConfig holds the sink connection settings
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level       string
	Development bool
}

// MetricsConfig holds the metrics endpoint settings
type MetricsConfig struct {
	Listen string
}

// RelayConfig holds the pass-through statement listener settings
type RelayConfig struct {
	Listen string // Empty disables the listener
}

// Load reads configuration from an INI file with environment variable overrides
func Load(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return parse(cfg)
}

// LoadBytes reads configuration from INI text with environment variable overrides
func LoadBytes(data []byte) (*Config, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, err
	}
	return parse(cfg)
}

func parse(cfg *ini.File) (*Config, error) {
	bulk := cfg.Section("bulkinsert")
	db := cfg.Section("database")
	logSec := cfg.Section("log")

	config := &Config{
		BulkInsert: BulkInsertConfig{
			MaxRecords:     bulk.Key("max_records").MustInt(1000),
			FlushInterval:  bulk.Key("flush_interval").MustDuration(5 * time.Second),
			CheckInterval:  bulk.Key("check_interval").MustDuration(time.Second),
			UseTransaction: bulk.Key("use_transaction").MustBool(true),
		},
		Database: DatabaseConfig{
			Driver: db.Key("driver").MustString("mysql"),
			DSN:    db.Key("dsn").MustString("root@tcp(127.0.0.1:3306)/quarm"),
		},
		Log: LogConfig{
			Level:       logSec.Key("level").MustString("info"),
			Development: logSec.Key("development").MustBool(false),
		},
		Metrics: MetricsConfig{
			Listen: cfg.Section("metrics").Key("listen").MustString(":9090"),
		},
		Relay: RelayConfig{
			Listen: cfg.Section("relay").Key("listen").String(),
		},
	}

	if err := applyEnv(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// applyEnv applies QSBULK_* environment variable overrides
func applyEnv(config *Config) error {
	if v := os.Getenv("QSBULK_MAX_RECORDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("QSBULK_MAX_RECORDS: %w", err)
		}
		config.BulkInsert.MaxRecords = n
	}
	if v := os.Getenv("QSBULK_FLUSH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("QSBULK_FLUSH_INTERVAL: %w", err)
		}
		config.BulkInsert.FlushInterval = d
	}
	if v := os.Getenv("QSBULK_DATABASE_DSN"); v != "" {
		config.Database.DSN = v
	}
	if v := os.Getenv("QSBULK_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("QSBULK_METRICS_LISTEN"); v != "" {
		config.Metrics.Listen = v
	}
	if v := os.Getenv("QSBULK_RELAY_LISTEN"); v != "" {
		config.Relay.Listen = v
	}
	return nil
}

// Validate checks the configuration for values the service cannot run with
func (c *Config) Validate() error {
	if c.BulkInsert.MaxRecords <= 0 {
		return fmt.Errorf("bulkinsert.max_records must be positive, got %d", c.BulkInsert.MaxRecords)
	}
	if c.BulkInsert.FlushInterval <= 0 {
		return fmt.Errorf("bulkinsert.flush_interval must be positive, got %s", c.BulkInsert.FlushInterval)
	}
	if c.BulkInsert.CheckInterval <= 0 {
		return fmt.Errorf("bulkinsert.check_interval must be positive, got %s", c.BulkInsert.CheckInterval)
	}
	if c.Database.Driver == "mysql" {
		if _, err := mysql.ParseDSN(c.Database.DSN); err != nil {
			return fmt.Errorf("database.dsn: %w", err)
		}
	}
	return nil
}
