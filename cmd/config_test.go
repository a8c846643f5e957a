package cmd_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"dispatch/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_PORT", "APP_ENV", "DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME",
	"DB_SSLMODE", "SQLITE_PATH", "REDIS_ADDR", "KAFKA_BROKERS", "KAFKA_ORDER_CHANGED_TOPIC", "JWT_SECRET",
	"POLL_INTERVAL", "SIMULATION_TICK", "SIMULATION_LEG_STEPS", "SIMULATION_ENABLED", "STALE_AFTER", "STALE_CHECK_SCHEDULE",
	"LOCATION_RATE_PER_SEC",
}

// clearEnv blanks every setting; empty values fall back to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func missingFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := cmd.LoadConfig(missingFile(t))

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 10*time.Second, cfg.PollInterval)
	assert.Equal(t, 2*time.Second, cfg.SimulationTick)
	assert.False(t, cfg.SimulationEnabled)
	assert.Equal(t, 1, cfg.SimulationLegSteps)
	assert.Equal(t, 2*time.Minute, cfg.StaleAfter)
	assert.Equal(t, "@every 30s", cfg.StaleCheckSchedule)
	assert.InDelta(t, 1, cfg.LocationRatePerSec, 0)
}

func TestLoadConfig_FromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("POLL_INTERVAL", "3s")
	t.Setenv("SIMULATION_ENABLED", "true")
	t.Setenv("SIMULATION_LEG_STEPS", "4")
	t.Setenv("LOCATION_RATE_PER_SEC", "2.5")

	cfg, err := cmd.LoadConfig(missingFile(t))

	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.PollInterval)
	assert.True(t, cfg.SimulationEnabled)
	assert.Equal(t, 4, cfg.SimulationLegSteps)
	assert.InDelta(t, 2.5, cfg.LocationRatePerSec, 0)

	opts := cfg.DatabaseOptions()
	assert.Equal(t, "sqlite", opts.Driver)
	assert.Equal(t, ":memory:", opts.SQLitePath)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9000")
	// godotenv only fills variables that are not set at all.
	require.NoError(t, os.Unsetenv("JWT_SECRET"))

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("JWT_SECRET=from-file\nHTTP_PORT=7000\n"), 0o600))

	cfg, err := cmd.LoadConfig(file)

	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, "9000", cfg.HTTPPort, "environment wins over the file")
}

func TestLoadConfig_Invalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_DRIVER", "oracle")
	t.Setenv("POLL_INTERVAL", "soon")
	t.Setenv("SIMULATION_ENABLED", "maybe")
	t.Setenv("LOCATION_RATE_PER_SEC", "-1")
	t.Setenv("SIMULATION_LEG_STEPS", "0")

	_, err := cmd.LoadConfig(missingFile(t))

	require.Error(t, err)
	for _, want := range []string{"JWT_SECRET", "DB_DRIVER", "POLL_INTERVAL", "SIMULATION_ENABLED", "LOCATION_RATE_PER_SEC",
		"SIMULATION_LEG_STEPS"} {
		assert.Contains(t, err.Error(), want)
	}
}
