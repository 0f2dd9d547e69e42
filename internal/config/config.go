package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string     `validate:"oneof=dev prod"`
	LogLevel slog.Level

	// DataPath is the climate CSV, optionally zstd-compressed (*.zst).
	DataPath string `validate:"required"`

	// Year range used by the minimum temperature averages.
	AvgStartYear int `validate:"gte=1961,lte=2016"`
	AvgEndYear   int `validate:"gte=1961,lte=2016,gtefield=AvgStartYear"`

	ChartWidth    int `validate:"gte=10,lte=200"`
	ChartHTMLPath string

	// The SQLite mirror is enabled when SQLitePath or SQLiteDSN is set.
	SQLiteDriver          string `validate:"required"`
	SQLiteDSN             string
	SQLitePath            string
	SQLiteLogSQL          bool
	SQLiteMaxOpenConns    int `validate:"gte=0"`
	SQLiteMaxIdleConns    int `validate:"gte=0"`
	SQLiteConnMaxLifetime time.Duration
}

// MirrorEnabled reports whether the dataset should be copied into SQLite.
func (c Config) MirrorEnabled() bool {
	return c.SQLitePath != "" || c.SQLiteDSN != ""
}

// LoadFromEnv reads the configuration from the environment. A .env file in
// the working directory is loaded first; it never overrides variables that
// are already set.
func LoadFromEnv() (Config, error) {
	_ = godotenv.Load()

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	dataPath := strings.TrimSpace(os.Getenv("DATA_PATH"))
	if dataPath == "" {
		dataPath = "data/climate.csv"
	}

	avgStartYear, err := intFromEnv("AVG_START_YEAR", 2006)
	if err != nil {
		return Config{}, err
	}
	avgEndYear, err := intFromEnv("AVG_END_YEAR", 2016)
	if err != nil {
		return Config{}, err
	}
	chartWidth, err := intFromEnv("CHART_WIDTH", 50)
	if err != nil {
		return Config{}, err
	}

	driver := strings.TrimSpace(os.Getenv("SQLITE_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}

	logSQLStr := strings.TrimSpace(os.Getenv("SQLITE_LOG_SQL"))
	logSQL := false
	if logSQLStr != "" {
		logSQL, err = strconv.ParseBool(logSQLStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid SQLITE_LOG_SQL %q: %w", logSQLStr, err)
		}
	}

	maxOpenConns, err := intFromEnv("SQLITE_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := intFromEnv("SQLITE_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}

	connMaxLifetimeStr := strings.TrimSpace(os.Getenv("SQLITE_CONN_MAX_LIFETIME"))
	if connMaxLifetimeStr == "" {
		connMaxLifetimeStr = "0s"
	}
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SQLITE_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	cfg := Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		DataPath:              dataPath,
		AvgStartYear:          avgStartYear,
		AvgEndYear:            avgEndYear,
		ChartWidth:            chartWidth,
		ChartHTMLPath:         strings.TrimSpace(os.Getenv("CHART_HTML_PATH")),
		SQLiteDriver:          driver,
		SQLiteDSN:             strings.TrimSpace(os.Getenv("SQLITE_DSN")),
		SQLitePath:            strings.TrimSpace(os.Getenv("SQLITE_PATH")),
		SQLiteLogSQL:          logSQL,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func intFromEnv(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
