package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/officeseats/config"
	"github.com/Domenick1991/officeseats/internal/bootstrap"
	"github.com/Domenick1991/officeseats/internal/domain"
	"github.com/Domenick1991/officeseats/internal/email"
	"github.com/Domenick1991/officeseats/internal/kafka"
	"github.com/Domenick1991/officeseats/internal/logger"
	"github.com/Domenick1991/officeseats/internal/rabbitmq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	zl = zl.Named("worker")

	if cfg.Events.NotificationsTopic == "" {
		zl.Fatal("events.notifications_topic is required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.NewApp(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("init application", zap.Error(err))
	}
	defer func() { _ = app.Close() }()

	sender := email.NewSender(app.UserRepo, zl)

	go func() {
		var err error
		switch cfg.Events.Broker {
		case "kafka":
			err = consumeKafka(ctx, cfg, sender, zl)
		case "rabbitmq":
			err = rabbitmq.Consume(ctx, cfg.Events.RabbitURL, cfg.Events.NotificationsTopic, zl, func(ctx context.Context, body []byte) error {
				var event domain.SeatEvent
				if err := json.Unmarshal(body, &event); err != nil {
					zl.Warn("drop undecodable event", zap.Error(err))
					return nil
				}
				return sender.Send(ctx, event)
			})
		default:
			zl.Warn("no event broker configured, notifications disabled", zap.String("broker", cfg.Events.Broker))
			return
		}
		if err != nil && ctx.Err() == nil {
			zl.Error("consumer stopped", zap.Error(err))
		}
	}()

	reportTicker := time.NewTicker(time.Duration(cfg.Worker.ReportIntervalMinutes) * time.Minute)
	defer reportTicker.Stop()

	for {
		select {
		case <-reportTicker.C:
			days, err := app.Ledger.WeeklyOccupancy(ctx, domain.Day(time.Now(), app.Location))
			if err != nil {
				zl.Error("occupancy report failed", zap.Error(err))
				continue
			}
			for _, d := range days {
				zl.Info("occupancy",
					zap.String("date", domain.FormatDay(d.Date)),
					zap.Int("occupied", d.Occupied),
					zap.Int("capacity", d.Capacity),
				)
			}
		case <-ctx.Done():
			zl.Info("shutting down")
			return
		}
	}
}

func consumeKafka(ctx context.Context, cfg *config.Config, sender *email.Sender, zl *zap.Logger) error {
	consumer := kafka.NewSeatEventConsumer(cfg.Events.Brokers, cfg.Events.GroupID, cfg.Events.NotificationsTopic, zl.Named("kafka"))
	defer consumer.Close()

	return consumer.Run(ctx, sender.Send)
}
