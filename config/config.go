// Package config reads process settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/Skryldev/employee-payroll/db"
)

type Config struct {
	DB DBConfig

	HTTPAddr    string
	LogLevel    string
	LogFilePath string
	// PolicyFile points to a YAML payroll policy. Empty means defaults.
	PolicyFile string
}

type DBConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	// Name is the database name, or the file path for sqlite3.
	Name    string
	SSLMode string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	QueryTimeout    time.Duration
	SlowQuery       time.Duration
	LogArgs         bool
	ConnectRetries  int
}

// Load reads .env from the working directory, if it exists, then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	return LoadFiles()
}

// LoadFiles is Load with explicit .env paths. Missing files are skipped.
func LoadFiles(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	cfg := &Config{
		DB: DBConfig{
			Driver:          getEnvString("DB_DRIVER", "sqlite3"),
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 0),
			User:            getEnvString("DB_USER", ""),
			Password:        getEnvString("DB_PASSWORD", ""),
			Name:            getEnvString("DB_NAME", "ems.db"),
			SSLMode:         getEnvString("DB_SSL_MODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
			QueryTimeout:    getEnvDuration("DB_QUERY_TIMEOUT", 10*time.Second),
			SlowQuery:       getEnvDuration("DB_SLOW_QUERY", 200*time.Millisecond),
			LogArgs:         getEnvBool("DB_LOG_ARGS", false),
			ConnectRetries:  getEnvInt("DB_CONNECT_RETRIES", 3),
		},
		HTTPAddr:    getEnvString("HTTP_ADDR", ":8080"),
		LogLevel:    getEnvString("LOG_LEVEL", "info"),
		LogFilePath: getEnvString("LOG_FILE_PATH", ""),
		PolicyFile:  getEnvString("PAYROLL_POLICY_FILE", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite3", "postgres", "mysql":
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DB.Driver)
	}
	if c.DB.Name == "" {
		return errors.New("config: DB_NAME is required")
	}
	if c.DB.ConnectRetries < 1 {
		c.DB.ConnectRetries = 1
	}
	return nil
}

// DriverOptions converts the settings for db.OpenWithDriver.
func (c DBConfig) DriverOptions() db.DriverOptions {
	opts := db.DriverOptions{
		Host:     c.Host,
		Port:     c.Port,
		User:     c.User,
		Password: c.Password,
		Database: c.Name,
		SSLMode:  c.SSLMode,
	}
	if c.Driver == "sqlite3" {
		// The CLI and a running server may share the file.
		opts.Extra = map[string]string{"_foreign_keys": "on", "_busy_timeout": "5000"}
	}
	return opts
}

// PoolConfig fills the connection pool part of db.Config.
func (c DBConfig) PoolConfig() db.Config {
	return db.Config{
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime,
		DefaultTimeout:  c.QueryTimeout,
	}
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("5s") or plain seconds ("5").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
