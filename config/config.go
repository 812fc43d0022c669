// Package config reads server settings from the environment, after loading
// an optional .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/warp/shift-pay/factory"
	"github.com/warp/shift-pay/pay"
	"github.com/warp/shift-pay/session"
	"github.com/warp/shift-pay/sheet"
)

// Config holds every setting of the server and CLI.
type Config struct {
	Port           string
	DBPath         string
	SessionTTL     time.Duration
	SweepInterval  time.Duration
	MaxUploadBytes int64
	RatesFile      string
	Workers        int
	CORSOrigins    []string

	StrictShiftTypes bool
	StrictTimes      bool

	LogLevel  string
	LogFormat string
}

// Default returns the settings used when nothing is set.
func Default() *Config {
	return &Config{
		Port:             "8080",
		DBPath:           ":memory:",
		SessionTTL:       session.DefaultTTL,
		SweepInterval:    time.Minute,
		MaxUploadBytes:   8 << 20,
		Workers:          runtime.NumCPU(),
		CORSOrigins:      []string{"*"},
		StrictShiftTypes: true,
		StrictTimes:      false,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. A missing .env file is not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from environment variables over Default().
func FromEnv() *Config {
	cfg := Default()
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	cfg.SessionTTL = getEnvAsDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.SweepInterval = getEnvAsDuration("SWEEP_INTERVAL", cfg.SweepInterval)
	cfg.MaxUploadBytes = getEnvAsInt("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)
	cfg.RatesFile = getEnv("RATES_FILE", cfg.RatesFile)
	cfg.Workers = int(getEnvAsInt("WORKERS", int64(cfg.Workers)))
	cfg.CORSOrigins = getEnvAsList("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.StrictShiftTypes = getEnvAsBool("STRICT_SHIFT_TYPES", cfg.StrictShiftTypes)
	cfg.StrictTimes = getEnvAsBool("STRICT_TIMES", cfg.StrictTimes)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	return cfg
}

// SheetOptions returns the row validation settings.
func (c *Config) SheetOptions() sheet.Options {
	return sheet.Options{StrictShiftTypes: c.StrictShiftTypes, StrictTimes: c.StrictTimes}
}

// SessionConfig returns the session service settings.
func (c *Config) SessionConfig() session.Config {
	return session.Config{TTL: c.SessionTTL, Workers: c.Workers, Sheet: c.SheetOptions()}
}

// Rates loads RatesFile, or returns the default table when it is unset.
func (c *Config) Rates() (pay.Rates, error) {
	if c.RatesFile == "" {
		return pay.DefaultRates(), nil
	}
	return factory.NewRatesFactory().LoadFile(c.RatesFile)
}

// SetupLogging configures the global logrus logger.
func (c *Config) SetupLogging() {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logrus.WithField("level", c.LogLevel).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// =============================================================================
// ENV HELPERS
// =============================================================================

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}
	logrus.WithField(name, valStr).Warn("invalid boolean, using default")
	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}
	logrus.WithField(name, valStr).Warn("invalid integer, using default")
	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}
	if val, err := time.ParseDuration(valStr); err == nil {
		return val
	}
	logrus.WithField(name, valStr).Warn("invalid duration, using default")
	return defaultVal
}

func getEnvAsList(name string, defaultVal []string) []string {
	valStr := getEnv(name, "")
	if valStr == "" {
		return defaultVal
	}
	var out []string
	for _, v := range strings.Split(valStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
