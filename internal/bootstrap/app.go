package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/officeseats/config"
	"github.com/Domenick1991/officeseats/internal/cache"
	"github.com/Domenick1991/officeseats/internal/kafka"
	"github.com/Domenick1991/officeseats/internal/lock"
	"github.com/Domenick1991/officeseats/internal/rabbitmq"
	"github.com/Domenick1991/officeseats/internal/repository"
	"github.com/Domenick1991/officeseats/internal/service/eligibility"
	"github.com/Domenick1991/officeseats/internal/service/ledger"
	"github.com/Domenick1991/officeseats/internal/service/report"
	"github.com/Domenick1991/officeseats/internal/service/schedule"
	"github.com/Domenick1991/officeseats/internal/service/seats"
	"github.com/Domenick1991/officeseats/internal/service/users"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type publisher interface {
	Publish(ctx context.Context, topic, key string, payload interface{}) error
}

type storage struct {
	seats       repository.SeatRepository
	assignments repository.AssignmentRepository
	users       repository.UserRepository
	schedule    repository.ScheduleRepository
}

// App holds the wired services shared by the API server and the worker.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Location  *time.Location
	UserRepo  repository.UserRepository
	Seats     *seats.SeatService
	Ledger    *ledger.LedgerService
	Users     *users.UserService
	Schedule  *schedule.Resolver
	Evaluator *eligibility.Evaluator
	Export    *report.ExportService

	checks  map[string]func(context.Context) error
	closers []func() error
}

// NewApp connects storage, locking and the event broker, provisions the floor
// and wires the services.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
		checks: make(map[string]func(context.Context) error),
	}
	if err := app.build(ctx); err != nil {
		_ = app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	cfg := a.Config

	loc, err := cfg.Booking.Location()
	if err != nil {
		return err
	}
	a.Location = loc
	epoch, err := cfg.Booking.Epoch()
	if err != nil {
		return err
	}
	fallback, err := cfg.Booking.BatchSchedule()
	if err != nil {
		return err
	}

	store, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	a.UserRepo = store.users

	var locker ledger.KeyLocker = lock.NewKeyed(cfg.Booking.LockWait())
	var seatOpts []seats.SeatServiceOption
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking)
		if err := redisCache.Ping(ctx); err != nil {
			_ = redisCache.Close()
			return fmt.Errorf("connect redis: %w", err)
		}
		a.closers = append(a.closers, redisCache.Close)
		a.checks["redis"] = redisCache.Ping
		locker = redisCache
		seatOpts = append(seatOpts, seats.WithCache(redisCache))
	}

	pub, err := a.openPublisher()
	if err != nil {
		return err
	}
	ledgerOpts := []ledger.LedgerServiceOption{ledger.WithLogger(a.Logger.Named("ledger"))}
	if pub != nil {
		seatOpts = append(seatOpts, seats.WithProducer(pub, cfg.Events.SeatEventsTopic))
		ledgerOpts = append(ledgerOpts,
			ledger.WithProducer(pub, cfg.Events.SeatEventsTopic),
			ledger.WithNotificationsTopic(cfg.Events.NotificationsTopic),
		)
	}

	a.Seats = seats.NewSeatService(store.seats, a.Logger, seatOpts...)
	if err := a.Seats.Provision(ctx, cfg.Booking.DesignatedSeats, cfg.Booking.FloaterSeats); err != nil {
		return fmt.Errorf("provision seats: %w", err)
	}

	a.Schedule, err = schedule.Load(ctx, store.schedule, epoch, fallback)
	if err != nil {
		return fmt.Errorf("load batch schedule: %w", err)
	}

	a.Evaluator = eligibility.NewEvaluator(a.Schedule.Schedule(),
		eligibility.WithLocation(loc),
		eligibility.WithCutoff(cfg.Booking.CutoffHour, cfg.Booking.CutoffMinute),
	)

	a.Ledger = ledger.NewLedgerService(
		a.Seats,
		store.assignments,
		locker,
		users.NewBatchDirectory(store.users),
		a.Schedule,
		a.Evaluator,
		ledgerOpts...,
	)

	a.Users = users.NewUserService(store.users, a.Seats, a.Schedule, a.Logger,
		users.WithBookings(a.Ledger),
		users.WithLocation(loc),
	)
	a.Export = report.NewExportService(a.Ledger, a.Logger)

	a.Logger.Info("application wired",
		zap.String("driver", cfg.Database.Driver),
		zap.String("broker", cfg.Events.Broker),
		zap.Bool("redis", cfg.Redis.Addr != ""),
		zap.String("timezone", loc.String()),
	)
	return nil
}

func (a *App) openStorage(ctx context.Context) (storage, error) {
	cfg := a.Config.Database

	switch cfg.Driver {
	case "memory":
		return storage{
			seats:       repository.NewMemorySeatRepository(),
			assignments: repository.NewMemoryAssignmentRepository(),
			users:       repository.NewMemoryUserRepository(),
			schedule:    repository.NewMemoryScheduleRepository(),
		}, nil
	case "postgres":
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return storage{}, fmt.Errorf("connect postgres: %w", err)
		}
		a.closers = append(a.closers, func() error { pool.Close(); return nil })
		if err := pool.Ping(ctx); err != nil {
			return storage{}, fmt.Errorf("ping postgres: %w", err)
		}
		a.checks["postgres"] = pool.Ping
		if cfg.RunMigrations {
			if err := repository.RunMigrations(pool, a.Logger); err != nil {
				return storage{}, err
			}
		}
		return storage{
			seats:       repository.NewSeatRepository(pool),
			assignments: repository.NewAssignmentRepository(pool),
			users:       repository.NewUserRepository(pool),
			schedule:    repository.NewScheduleRepository(pool),
		}, nil
	default:
		return storage{}, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// openPublisher returns nil when events are disabled.
func (a *App) openPublisher() (publisher, error) {
	cfg := a.Config.Events

	switch cfg.Broker {
	case "none":
		return nil, nil
	case "kafka":
		producer := kafka.NewProducer(cfg.Brokers, a.Logger)
		a.closers = append(a.closers, producer.Close)
		a.checks["kafka"] = producer.CheckConnection
		return producer, nil
	case "rabbitmq":
		pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("connect rabbitmq: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		return pub, nil
	default:
		return nil, fmt.Errorf("unknown event broker %q", cfg.Broker)
	}
}

// Check runs every dependency check and returns the failures by name.
func (a *App) Check(ctx context.Context) map[string]string {
	failed := make(map[string]string)
	for name, check := range a.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	return failed
}

// Close releases connections in reverse order of opening.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
