package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Port        string
	Environment string
	// Storage
	DBDriver    string // "sqlite" or "postgres"
	DatabaseURL string
	SQLitePath  string
	TablePrefix string
	UploadRoot  string
	// Upload size limit in bytes
	MaxUploadBytes int64
	// HTTP
	CORSOrigins    string
	RateLimitRPS   float64
	RateLimitBurst int
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

// fileConfig mirrors the keys accepted in the optional YAML file named by CONFIG_FILE.
// Empty values leave the environment-derived setting untouched.
type fileConfig struct {
	Port           string  `yaml:"port"`
	Environment    string  `yaml:"environment"`
	DBDriver       string  `yaml:"db_driver"`
	DatabaseURL    string  `yaml:"database_url"`
	SQLitePath     string  `yaml:"sqlite_path"`
	TablePrefix    string  `yaml:"table_prefix"`
	UploadRoot     string  `yaml:"upload_root"`
	MaxUploadMB    int64   `yaml:"max_upload_mb"`
	CORSOrigins    string  `yaml:"cors_origins"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
	LogDir         string  `yaml:"log_dir"`
	LogMaxFiles    int     `yaml:"log_max_files"`
}

func Load() (*Config, error) {
	env := getEnv("ENVIRONMENT", "dev")

	maxUploadMB, err := getEnvInt("MAX_UPLOAD_MB", 50)
	if err != nil {
		return nil, err
	}
	rps, err := getEnvFloat("RATE_LIMIT_RPS", 20)
	if err != nil {
		return nil, err
	}
	burst, err := getEnvInt("RATE_LIMIT_BURST", 40)
	if err != nil {
		return nil, err
	}
	logMaxFiles, err := getEnvInt("LOG_MAX_FILES", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    env,
		DBDriver:       getEnv("DB_DRIVER", DriverSQLite),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "data/pdfshelf.db"),
		TablePrefix:    getTablePrefix(env),
		UploadRoot:     getEnv("UPLOAD_ROOT", "uploads"),
		MaxUploadBytes: int64(maxUploadMB) << 20,
		CORSOrigins:    getEnv("CORS_ORIGINS", "http://localhost:3000"),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		LogDir:         getEnv("LOG_DIR", ""),
		LogMaxFiles:    logMaxFiles,
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (supported: sqlite, postgres)", c.DBDriver)
	}
	if c.UploadRoot == "" {
		return fmt.Errorf("UPLOAD_ROOT cannot be empty")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

// applyFile overlays non-empty values from a YAML config file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	overlay(&c.Port, fc.Port)
	if fc.Environment != "" {
		c.Environment = fc.Environment
		if os.Getenv("TABLE_PREFIX") == "" {
			c.TablePrefix = prefixForEnvironment(fc.Environment)
		}
	}
	overlay(&c.DBDriver, fc.DBDriver)
	overlay(&c.DatabaseURL, fc.DatabaseURL)
	overlay(&c.SQLitePath, fc.SQLitePath)
	overlay(&c.TablePrefix, fc.TablePrefix)
	overlay(&c.UploadRoot, fc.UploadRoot)
	overlay(&c.CORSOrigins, fc.CORSOrigins)
	overlay(&c.LogDir, fc.LogDir)
	if fc.MaxUploadMB > 0 {
		c.MaxUploadBytes = fc.MaxUploadMB << 20
	}
	if fc.RateLimitRPS > 0 {
		c.RateLimitRPS = fc.RateLimitRPS
	}
	if fc.RateLimitBurst > 0 {
		c.RateLimitBurst = fc.RateLimitBurst
	}
	if fc.LogMaxFiles > 0 {
		c.LogMaxFiles = fc.LogMaxFiles
	}
	return nil
}

func overlay(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}
	return prefixForEnvironment(env)
}

func prefixForEnvironment(env string) string {
	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return value, nil
}
