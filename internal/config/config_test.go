package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
[database]
dbname = "smc"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 30, cfg.Scheduling.SlotStepMinutes)
	assert.Equal(t, 3, cfg.Scheduling.TxMaxAttempts)
	assert.True(t, cfg.Scheduling.DefaultHours.Enabled)
	assert.Equal(t, "08:00", cfg.Scheduling.DefaultHours.Open)
	assert.Equal(t, "20:00", cfg.Scheduling.DefaultHours.Close)
	assert.Equal(t, 3*time.Second, cfg.Scheduling.CreateTimeout())
	assert.Contains(t, cfg.Database.DSN(), "dbname=smc")
	assert.Contains(t, cfg.Database.DSN(), "sslmode=disable")
}

func TestLoad_ExpandsEnvAndOverrides(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret")
	t.Setenv("SCHEDULING_KAFKA_BROKERS", "k1:9092,k2:9092")

	path := writeConfig(t, `
[database]
password = "${TEST_DB_PASSWORD}"

[kafka]
enabled = true
topic = "events"

[scheduling.default_hours]
enabled = false
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Scheduling.DefaultHours.Enabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "step too large", body: "[scheduling]\nslot_step_minutes = 90\n"},
		{name: "no attempts", body: "[scheduling]\ntx_max_attempts = 0\n"},
		{name: "default hours reversed", body: "[scheduling.default_hours]\nopen = \"20:00\"\nclose = \"08:00\"\n"},
		{name: "default hours malformed", body: "[scheduling.default_hours]\nopen = \"8am\"\n"},
		{name: "redis without address", body: "[redis]\nenabled = true\naddress = \"\"\n"},
		{name: "rate limit without rps", body: "[rate_limit]\nenabled = true\nrps = 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}
