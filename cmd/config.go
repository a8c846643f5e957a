package cmd

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dispatch/internal/adapters/out/postgres"
	"dispatch/internal/core/application/broadcast"
	"dispatch/internal/core/application/reporting"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort string
	AppEnv   string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	SQLitePath string

	// RedisAddr empty keeps the snapshot bus and partner presence in-process.
	RedisAddr string

	// KafkaBrokers empty disables the order change log.
	KafkaBrokers           []string
	KafkaOrderChangedTopic string

	JWTSecret string

	PollInterval       time.Duration
	SimulationTick     time.Duration
	// SimulationLegSteps splits each simulated route leg into this many moves.
	SimulationLegSteps int
	SimulationEnabled  bool
	StaleAfter         time.Duration
	StaleCheckSchedule string
	LocationRatePerSec float64
}

// LoadConfig reads the environment, loading files first when they exist.
// Variables already set in the environment take precedence over the files.
func LoadConfig(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var errList []error
	cfg := Config{
		HTTPPort: env("HTTP_PORT", "8080"),
		AppEnv:   env("APP_ENV", "development"),

		DBDriver:   env("DB_DRIVER", postgres.DriverPostgres),
		DBHost:     env("DB_HOST", "localhost"),
		DBPort:     env("DB_PORT", "5432"),
		DBUser:     env("DB_USER", "postgres"),
		DBPassword: env("DB_PASSWORD", ""),
		DBName:     env("DB_NAME", "dispatch"),
		DBSslMode:  env("DB_SSLMODE", "disable"),
		SQLitePath: env("SQLITE_PATH", "dispatch.db"),

		RedisAddr: env("REDIS_ADDR", ""),

		KafkaBrokers:           list(env("KAFKA_BROKERS", "")),
		KafkaOrderChangedTopic: env("KAFKA_ORDER_CHANGED_TOPIC", "orders.changed"),

		JWTSecret: env("JWT_SECRET", ""),

		PollInterval:       duration("POLL_INTERVAL", broadcast.DefaultPollInterval, &errList),
		SimulationTick:     duration("SIMULATION_TICK", reporting.DefaultTick, &errList),
		SimulationLegSteps: integer("SIMULATION_LEG_STEPS", 1, &errList),
		SimulationEnabled:  boolean("SIMULATION_ENABLED", false, &errList),
		StaleAfter:         duration("STALE_AFTER", 2*time.Minute, &errList),
		StaleCheckSchedule: env("STALE_CHECK_SCHEDULE", jobs.DefaultStaleCheckSchedule),
		LocationRatePerSec: float("LOCATION_RATE_PER_SEC", 1, &errList),
	}

	if cfg.JWTSecret == "" {
		errList = append(errList, errors.New("JWT_SECRET is required"))
	}
	switch cfg.DBDriver {
	case postgres.DriverPostgres, postgres.DriverSQLite:
	default:
		errList = append(errList, fmt.Errorf("DB_DRIVER: unsupported driver %q", cfg.DBDriver))
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaOrderChangedTopic == "" {
		errList = append(errList, errors.New("KAFKA_ORDER_CHANGED_TOPIC is required with KAFKA_BROKERS"))
	}

	if err := errors.Join(errList...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// DatabaseOptions maps the DB_* settings onto the store options.
func (c Config) DatabaseOptions() postgres.Options {
	return postgres.Options{
		Driver:     c.DBDriver,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		Name:       c.DBName,
		SSLMode:    c.DBSslMode,
		SQLitePath: c.SQLitePath,
	}
}

func env(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func list(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func duration(key string, fallback time.Duration, errList *[]error) time.Duration {
	raw := env(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*errList = append(*errList, fmt.Errorf("%s: invalid duration %q", key, raw))
		return fallback
	}
	return d
}

func integer(key string, fallback int, errList *[]error) int {
	raw := env(key, "")
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		*errList = append(*errList, fmt.Errorf("%s: invalid step count %q", key, raw))
		return fallback
	}
	return n
}

func boolean(key string, fallback bool, errList *[]error) bool {
	raw := env(key, "")
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		*errList = append(*errList, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}

func float(key string, fallback float64, errList *[]error) float64 {
	raw := env(key, "")
	if raw == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f < 0 {
		*errList = append(*errList, fmt.Errorf("%s: invalid rate %q", key, raw))
		return fallback
	}
	return f
}
