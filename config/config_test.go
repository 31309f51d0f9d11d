package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "none", cfg.Events.Broker)
	assert.Equal(t, 15, cfg.Booking.CutoffHour)
	assert.Equal(t, 40, cfg.Booking.DesignatedSeats)
	assert.Equal(t, 10, cfg.Booking.FloaterSeats)
	assert.Equal(t, 2*time.Second, cfg.Booking.LockWait())

	epoch, err := cfg.Booking.Epoch()
	require.NoError(t, err)
	assert.Equal(t, time.Monday, epoch.Weekday())
}

func TestParse_Schedule(t *testing.T) {
	cfg, err := Parse([]byte(`
booking:
  timezone: Europe/Berlin
  cutoff_hour: 14
  cutoff_minute: 30
  schedule:
    Batch 1:
      week1: [Mon, Tue, Wed]
      week2: [Thu, Fri]
    Batch 2:
      week1: [Thu, Fri]
      week2: [Mon, Tue, Wed]
`))
	require.NoError(t, err)
	assert.Equal(t, 14, cfg.Booking.CutoffHour)
	assert.Equal(t, 30, cfg.Booking.CutoffMinute)

	loc, err := cfg.Booking.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", loc.String())

	schedule, err := cfg.Booking.BatchSchedule()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultBatchSchedule(), schedule)
}

func TestParse_Cutoff(t *testing.T) {
	cfg, err := Parse([]byte("booking:\n  cutoff_hour: 0\n  cutoff_minute: 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Booking.CutoffHour)
	assert.Equal(t, 0, cfg.Booking.CutoffMinute)

	cfg, err = Parse([]byte("booking:\n  timezone: UTC\n"))
	require.NoError(t, err)
	assert.Equal(t, 15, cfg.Booking.CutoffHour)

	tests := map[string]string{
		"hour too large":   "booking:\n  cutoff_hour: 24\n",
		"negative hour":    "booking:\n  cutoff_hour: -1\n",
		"minute too large": "booking:\n  cutoff_minute: 60\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.ErrorContains(t, err, "out of range")
		})
	}
}

func TestParse_InvalidSchedule(t *testing.T) {
	tests := map[string]string{
		"unknown batch":  "booking:\n  schedule:\n    Batch 3:\n      week1: [Mon]\n",
		"unknown parity": "booking:\n  schedule:\n    Batch 1:\n      week3: [Mon]\n",
		"unknown day":    "booking:\n  schedule:\n    Batch 1:\n      week1: [Someday]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg, err := Parse([]byte(doc))
			require.NoError(t, err)
			_, err = cfg.Booking.BatchSchedule()
			assert.Error(t, err)
		})
	}
}

func TestEpoch_MustBeMonday(t *testing.T) {
	cfg := Default()
	cfg.Booking.ScheduleEpoch = "2025-01-07"

	_, err := cfg.Booking.Epoch()
	assert.ErrorContains(t, err, "not a Monday")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: postgres\n  host: db\n  port: 5432\n"), 0o600))

	t.Setenv("DB_HOST", "pg.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_PASSWORD", "s3cret")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "pg.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Contains(t, cfg.Database.DSN(), "password=s3cret")
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.Brokers)
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}
