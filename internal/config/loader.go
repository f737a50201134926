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
	"gopkg.in/yaml.v3"

	"github.com/example/club-scheduler/internal/persistence/sqlstore/migration"
)

// Config captures configuration values for the club scheduler service.
type Config struct {
	HTTPPort        int
	DBDriver        migration.Driver
	DBDSN           string
	LogLevel        string
	LogFormat       string
	TxMaxRetries    int
	ShutdownTimeout time.Duration
}

// fileConfig mirrors the optional YAML file named by CLUB_CONFIG_FILE.
type fileConfig struct {
	HTTP struct {
		Port            int    `yaml:"port"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"http"`
	Database struct {
		Driver     string `yaml:"driver"`
		DSN        string `yaml:"dsn"`
		MaxRetries *int   `yaml:"max_retries"`
	} `yaml:"database"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
}

const defaultSQLiteDSN = "club.db"

// Load builds the configuration from defaults, the optional YAML file named by
// CLUB_CONFIG_FILE, an optional .env file (CLUB_ENV_FILE, default ".env") and
// finally the process environment. Later sources win.
//
// Every missing or invalid value is reported in a single error.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:        8080,
		DBDriver:        migration.DriverSQLite,
		LogLevel:        "info",
		LogFormat:       "json",
		TxMaxRetries:    3,
		ShutdownTimeout: 10 * time.Second,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 2)

	if path := strings.TrimSpace(os.Getenv("CLUB_CONFIG_FILE")); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	envFile := strings.TrimSpace(os.Getenv("CLUB_ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	if portValue := strings.TrimSpace(os.Getenv("CLUB_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "CLUB_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if driverValue := strings.TrimSpace(os.Getenv("CLUB_DB_DRIVER")); driverValue != "" {
		driver, err := migration.ParseDriver(driverValue)
		if err != nil {
			invalid = append(invalid, "CLUB_DB_DRIVER")
		} else {
			cfg.DBDriver = driver
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("CLUB_DB_DSN")); dsn != "" {
		cfg.DBDSN = dsn
	}
	if cfg.DBDSN == "" {
		if cfg.DBDriver == migration.DriverPostgres {
			missing = append(missing, "CLUB_DB_DSN")
		} else {
			cfg.DBDSN = defaultSQLiteDSN
		}
	}

	if level := strings.TrimSpace(os.Getenv("CLUB_LOG_LEVEL")); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, "CLUB_LOG_LEVEL")
	}

	if format := strings.TrimSpace(os.Getenv("CLUB_LOG_FORMAT")); format != "" {
		cfg.LogFormat = strings.ToLower(format)
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		invalid = append(invalid, "CLUB_LOG_FORMAT")
	}

	if retriesValue := strings.TrimSpace(os.Getenv("CLUB_TX_MAX_RETRIES")); retriesValue != "" {
		retries, err := strconv.Atoi(retriesValue)
		if err != nil || retries < 0 {
			invalid = append(invalid, "CLUB_TX_MAX_RETRIES")
		} else {
			cfg.TxMaxRetries = retries
		}
	}

	if timeoutValue := strings.TrimSpace(os.Getenv("CLUB_SHUTDOWN_TIMEOUT")); timeoutValue != "" {
		timeout, err := time.ParseDuration(timeoutValue)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "CLUB_SHUTDOWN_TIMEOUT")
		} else {
			cfg.ShutdownTimeout = timeout
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("required configuration is missing: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file fileConfig
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.HTTP.Port != 0 {
		cfg.HTTPPort = file.HTTP.Port
	}
	if file.HTTP.ShutdownTimeout != "" {
		timeout, err := time.ParseDuration(file.HTTP.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("config file %s: http.shutdown_timeout: %w", path, err)
		}
		cfg.ShutdownTimeout = timeout
	}
	if file.Database.Driver != "" {
		driver, err := migration.ParseDriver(file.Database.Driver)
		if err != nil {
			return fmt.Errorf("config file %s: database.driver: %w", path, err)
		}
		cfg.DBDriver = driver
	}
	if file.Database.DSN != "" {
		cfg.DBDSN = file.Database.DSN
	}
	if file.Database.MaxRetries != nil {
		cfg.TxMaxRetries = *file.Database.MaxRetries
	}
	if file.Log.Level != "" {
		cfg.LogLevel = strings.ToLower(file.Log.Level)
	}
	if file.Log.Format != "" {
		cfg.LogFormat = strings.ToLower(file.Log.Format)
	}
	return nil
}
