package config

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	logrus "github.com/sirupsen/logrus"
)

const (
	EnvDev = "dev"

	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	devCompanySecret = "dev-change-me"
	devStaffSecret   = "dev-change-me-staff"
)

type Config struct {
	Env      string
	HTTPAddr string

	DB  DBConfig
	Log LogConfig

	CompanySecret string
	StaffSecret   string
	TokenTTL      time.Duration

	CORSOrigins    []string
	ConflictStatus int

	RedisURL        string
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type DBConfig struct {
	Driver       string
	URL          string
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	SSLMode      string
	TimeZone     string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type LogConfig struct {
	Level string
	File  string
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("No .env file found, relying on env vars")
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (Config, error) {
	var errs []error

	env := getEnv("APP_ENV", EnvDev)
	cfg := Config{
		Env:      env,
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		DB: DBConfig{
			Driver:       strings.ToLower(getEnv("DB_DRIVER", DriverPgx)),
			URL:          getEnv("DATABASE_URL", ""),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "password"),
			Name:         getEnv("DB_NAME", "driver_rating"),
			SSLMode:      getEnv("DB_SSLMODE", ""),
			TimeZone:     getEnv("DB_TIMEZONE", "UTC"),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 15, &errs),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5, &errs),
			AutoMigrate:  getBool("DB_AUTO_MIGRATE", true, &errs),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "./logs/app.log"),
		},
		CompanySecret:   getEnv("SECRET_KEY", ""),
		StaffSecret:     getEnv("STAFF_SECRET_KEY", ""),
		TokenTTL:        time.Duration(getInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60, &errs)) * time.Minute,
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		ConflictStatus:  getInt("CONFLICT_STATUS", http.StatusBadRequest, &errs),
		RedisURL:        getEnv("REDIS_URL", ""),
		LoginRateLimit:  getInt("LOGIN_RATE_LIMIT", 20, &errs),
		LoginRateWindow: getDuration("LOGIN_RATE_WINDOW", time.Minute, &errs),
	}

	if cfg.CompanySecret == "" && cfg.StaffSecret == "" && env == EnvDev {
		cfg.CompanySecret = devCompanySecret
		cfg.StaffSecret = devStaffSecret
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
		if env != EnvDev {
			cfg.DB.SSLMode = "require"
		}
	}

	errs = append(errs, cfg.validate()...)
	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	return cfg, nil
}

func (c Config) validate() []error {
	var errs []error
	if c.CompanySecret == "" || c.StaffSecret == "" {
		errs = append(errs, errors.New("SECRET_KEY and STAFF_SECRET_KEY must both be set"))
	} else if c.CompanySecret == c.StaffSecret {
		errs = append(errs, errors.New("SECRET_KEY and STAFF_SECRET_KEY must differ"))
	}
	if c.Env != EnvDev && (c.CompanySecret == devCompanySecret || c.StaffSecret == devStaffSecret) {
		errs = append(errs, fmt.Errorf("development secrets are not allowed with APP_ENV=%s", c.Env))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.ConflictStatus != http.StatusBadRequest && c.ConflictStatus != http.StatusConflict {
		errs = append(errs, fmt.Errorf("CONFLICT_STATUS must be 400 or 409, got %d", c.ConflictStatus))
	}
	switch c.DB.Driver {
	case DriverPgx, DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver))
	}
	if c.LoginRateLimit < 0 {
		errs = append(errs, errors.New("LOGIN_RATE_LIMIT must not be negative"))
	}
	return errs
}

// DSN returns DATABASE_URL when set, otherwise a key/value DSN built from the
// DB_* variables. Outside dev a URL without sslmode gets sslmode=require.
func (d DBConfig) DSN(env string) string {
	if d.URL != "" {
		if env != EnvDev && !strings.Contains(d.URL, "sslmode") {
			sep := "?"
			if strings.Contains(d.URL, "?") {
				sep = "&"
			}
			return d.URL + sep + "sslmode=require"
		}
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	)
}

// getEnv reads an environment variable or returns the provided default
func getEnv(key, defaultValue string) string {
	if v, exists := os.LookupEnv(key); exists && v != "" {
		return v
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]error) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return n
}

func getBool(key string, defaultValue bool, errs *[]error) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return b
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
