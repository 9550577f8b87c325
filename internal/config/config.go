package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pet-care-reminders/internal/platform/logger"
)

type Driver string

const (
	DriverMemory   Driver = "memory"
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// Config es la configuración del proceso, leída de .env + variables de entorno.
type Config struct {
	Port string

	DBDriver   Driver
	DBDSN      string
	SQLitePath string

	NotifyBaseURL string
	NotifyAPIKey  string
	NotifySubject string
	NotifyTimeout time.Duration

	AuthVerifyURL string
	AuthAPIKey    string

	LocalTimezone    *time.Location
	UpcomingLimit    int
	ResyncAfterWrite bool

	LogLevel  logger.Level
	LogFormat logger.Format
	AppName   string

	// Warnings son valores inválidos que se reemplazaron por el default.
	// main los loguea apenas tiene logger.
	Warnings []string
}

// Load lee .env (si existe) y luego el entorno.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv arma la config desde una función de lookup (os.Getenv en producción).
func FromEnv(getenv func(string) string) (*Config, error) {
	e := env{get: getenv}

	cfg := &Config{
		Port:          e.str("PORT", "8080"),
		DBDSN:         e.str("DB_DSN", ""),
		SQLitePath:    e.str("SQLITE_PATH", "reminders.db"),
		NotifyBaseURL: e.str("NOTIFY_BASE_URL", ""),
		NotifyAPIKey:  e.str("NOTIFY_API_KEY", ""),
		NotifySubject: e.str("NOTIFY_SUBJECT", "Dog360 - Pet Reminder"),
		NotifyTimeout: e.duration("NOTIFY_TIMEOUT", 10*time.Second),
		AuthVerifyURL: e.str("AUTH_VERIFY_URL", ""),
		AuthAPIKey:    e.str("AUTH_API_KEY", ""),
		UpcomingLimit: e.integer("UPCOMING_LIMIT", 5),

		ResyncAfterWrite: e.boolean("RESYNC_AFTER_WRITE", true),

		LogLevel:  logger.ParseLevel(e.str("LOG_LEVEL", "info")),
		LogFormat: logger.ParseFormat(e.str("LOG_FORMAT", "text")),
		AppName:   e.str("APP_NAME", "pet-care-reminders"),
	}

	// Sin DB_DRIVER: postgres si hay DB_DSN, si no memoria.
	def := string(DriverMemory)
	if cfg.DBDSN != "" {
		def = string(DriverPostgres)
	}
	switch d := Driver(strings.ToLower(e.str("DB_DRIVER", def))); d {
	case DriverMemory, DriverSQLite:
		cfg.DBDriver = d
	case DriverPostgres:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("config: DB_DRIVER=postgres requires DB_DSN")
		}
		cfg.DBDriver = d
	default:
		return nil, fmt.Errorf("config: unknown DB_DRIVER %q", d)
	}

	tz := e.str("LOCAL_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		e.warn("invalid LOCAL_TIMEZONE %q, using UTC: %v", tz, err)
		loc = time.UTC
	}
	cfg.LocalTimezone = loc

	if cfg.UpcomingLimit <= 0 {
		e.warn("UPCOMING_LIMIT must be positive, using 5")
		cfg.UpcomingLimit = 5
	}

	cfg.Warnings = e.warnings
	return cfg, nil
}

func (c *Config) Addr() string { return ":" + c.Port }

type env struct {
	get      func(string) string
	warnings []string
}

func (e *env) warn(format string, args ...any) {
	e.warnings = append(e.warnings, fmt.Sprintf(format, args...))
}

func (e *env) str(key, def string) string {
	v := strings.TrimSpace(e.get(key))
	if v == "" {
		return def
	}
	return v
}

func (e *env) integer(key string, def int) int {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		e.warn("unable to parse %s=%q as int: %v", key, raw, err)
		return def
	}
	return n
}

func (e *env) boolean(key string, def bool) bool {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		e.warn("unable to parse %s=%q as bool: %v", key, raw, err)
		return def
	}
	return b
}

// duration acepta "5s" o segundos enteros ("5").
func (e *env) duration(key string, def time.Duration) time.Duration {
	raw := e.str(key, "")
	if raw == "" {
		return def
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second
	}
	e.warn("unable to parse %s=%q as duration", key, raw)
	return def
}
