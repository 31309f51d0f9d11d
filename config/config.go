package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Events   EventsConfig   `yaml:"events"`
	Booking  BookingConfig  `yaml:"booking"`
	Log      LogConfig      `yaml:"log"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	// Address is optional; the gRPC server is not started when empty.
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	// Driver is "memory" or "postgres".
	Driver        string `yaml:"driver"`
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Name          string `yaml:"name"`
	SSLMode       string `yaml:"ssl_mode"`
	RunMigrations bool   `yaml:"run_migrations"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	// Addr is optional; seat caching and distributed locking are disabled when empty.
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type EventsConfig struct {
	// Broker is "kafka", "rabbitmq" or "none".
	Broker             string   `yaml:"broker"`
	Brokers            []string `yaml:"brokers"`
	RabbitURL          string   `yaml:"rabbitmq_url"`
	SeatEventsTopic    string   `yaml:"seat_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	Timezone        string `yaml:"timezone"`
	CutoffHour      int    `yaml:"cutoff_hour"`
	CutoffMinute    int    `yaml:"cutoff_minute"`
	DesignatedSeats int    `yaml:"designated_seats"`
	FloaterSeats    int    `yaml:"floater_seats"`
	// ScheduleEpoch is a Monday (YYYY-MM-DD) that starts a week1 week.
	ScheduleEpoch        string                         `yaml:"schedule_epoch"`
	Schedule             map[string]map[string][]string `yaml:"schedule"`
	LockWaitMillis       int                            `yaml:"lock_wait_ms"`
	LockTTLSeconds       int                            `yaml:"lock_ttl_seconds"`
	SeatsCacheTTLSeconds int                            `yaml:"seats_cache_ttl_seconds"`
}

// Location loads the configured time zone.
func (b BookingConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", b.Timezone, err)
	}
	return loc, nil
}

func (b BookingConfig) Epoch() (time.Time, error) {
	epoch, err := domain.ParseDay(b.ScheduleEpoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule epoch: %w", err)
	}
	if epoch.Weekday() != time.Monday {
		return time.Time{}, fmt.Errorf("schedule epoch %s is not a Monday", b.ScheduleEpoch)
	}
	return epoch, nil
}

// BatchSchedule converts the YAML schedule, falling back to the default pattern when none is set.
func (b BookingConfig) BatchSchedule() (domain.BatchSchedule, error) {
	if len(b.Schedule) == 0 {
		return domain.DefaultBatchSchedule(), nil
	}

	schedule := make(domain.BatchSchedule, len(b.Schedule))
	for rawBatch, weeks := range b.Schedule {
		batch, err := domain.ParseBatch(rawBatch)
		if err != nil {
			return nil, err
		}
		schedule[batch] = make(map[domain.WeekParity][]time.Weekday, len(weeks))
		for rawParity, days := range weeks {
			parity := domain.WeekParity(rawParity)
			if parity != domain.Week1 && parity != domain.Week2 {
				return nil, fmt.Errorf("batch %s: unknown week parity %q", batch, rawParity)
			}
			for _, rawDay := range days {
				day, err := domain.ParseWeekday(rawDay)
				if err != nil {
					return nil, fmt.Errorf("batch %s %s: %w", batch, parity, err)
				}
				schedule[batch][parity] = append(schedule[batch][parity], day)
			}
		}
	}
	if err := schedule.Validate(); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (b BookingConfig) LockWait() time.Duration {
	return time.Duration(b.LockWaitMillis) * time.Millisecond
}

func (b BookingConfig) LockTTL() time.Duration {
	return time.Duration(b.LockTTLSeconds) * time.Second
}

func (b BookingConfig) SeatsCacheTTL() time.Duration {
	return time.Duration(b.SeatsCacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	ReportIntervalMinutes int `yaml:"report_interval_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	return cfg, nil
}

// ApplyEnv overrides addresses and secrets from the environment, so the YAML
// file can be shared between deployments.
func (c *Config) ApplyEnv() {
	setString(&c.HTTP.Address, "HTTP_ADDR")
	setString(&c.GRPC.Address, "GRPC_ADDR")
	setString(&c.Database.Driver, "DB_DRIVER")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Database.Port = port
		}
	}
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	setString(&c.Events.Broker, "EVENTS_BROKER")
	setString(&c.Events.RabbitURL, "RABBITMQ_URL")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Brokers = strings.Split(v, ",")
	}
	setString(&c.Log.Level, "LOG_LEVEL")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

// Parse decodes YAML config and fills in defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Booking.validateCutoff(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Default returns the built-in configuration. The cutoff is preset here rather
// than in applyDefaults so an explicit 00:00 in YAML survives.
func Default() *Config {
	cfg := &Config{Booking: BookingConfig{CutoffHour: 15}}
	cfg.applyDefaults()
	return cfg
}

func (b BookingConfig) validateCutoff() error {
	if b.CutoffHour < 0 || b.CutoffHour > 23 {
		return fmt.Errorf("booking.cutoff_hour %d out of range 0-23", b.CutoffHour)
	}
	if b.CutoffMinute < 0 || b.CutoffMinute > 59 {
		return fmt.Errorf("booking.cutoff_minute %d out of range 0-59", b.CutoffMinute)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "memory"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Events.Broker == "" {
		c.Events.Broker = "none"
	}
	if c.Events.SeatEventsTopic == "" {
		c.Events.SeatEventsTopic = "seat-events"
	}
	if c.Events.GroupID == "" {
		c.Events.GroupID = "officeseats-worker"
	}

	b := &c.Booking
	if b.Timezone == "" {
		b.Timezone = "UTC"
	}
	if b.DesignatedSeats == 0 {
		b.DesignatedSeats = 40
	}
	if b.FloaterSeats == 0 {
		b.FloaterSeats = 10
	}
	if b.ScheduleEpoch == "" {
		b.ScheduleEpoch = "2025-01-06"
	}
	if b.LockWaitMillis == 0 {
		b.LockWaitMillis = 2000
	}
	if b.LockTTLSeconds == 0 {
		b.LockTTLSeconds = 10
	}
	if b.SeatsCacheTTLSeconds == 0 {
		b.SeatsCacheTTLSeconds = 300
	}

	if c.Worker.ReportIntervalMinutes <= 0 {
		c.Worker.ReportIntervalMinutes = 60
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
}
