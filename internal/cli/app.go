package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/config"
	"github.com/fekuna/omnipos-salesinsight-service/internal/action"
	"github.com/fekuna/omnipos-salesinsight-service/internal/action/listener"
	actionRepoPkg "github.com/fekuna/omnipos-salesinsight-service/internal/action/repository"
	actionUCPkg "github.com/fekuna/omnipos-salesinsight-service/internal/action/usecase"
	"github.com/fekuna/omnipos-salesinsight-service/internal/broker"
	"github.com/fekuna/omnipos-salesinsight-service/internal/database"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/source"
	salesUCPkg "github.com/fekuna/omnipos-salesinsight-service/internal/sales/usecase"
	"github.com/fekuna/omnipos-salesinsight-service/internal/scoring"
	"github.com/joho/godotenv"
)

// EventStream is a closable reader over the action event topic.
type EventStream interface {
	listener.MessageReader
	Close() error
}

// App is everything a command needs. OpenEvents is nil when no action topic is configured.
type App struct {
	Sales           sales.UseCase
	Actions         action.UseCase
	OpenEvents      func() EventStream
	Logger          logger.ZapLogger
	RefreshInterval time.Duration

	closers []func() error
}

func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Builder constructs the App once per invocation, after flags are parsed.
type Builder func(ctx context.Context, verbose bool) (*App, error)

// BuildFromEnv wires the App from .env and the environment, the same way the
// gRPC server does.
func BuildFromEnv(ctx context.Context, verbose bool) (*App, error) {
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log := logger.NewNop()
	if verbose {
		log = logger.NewZapLogger(&logger.ZapLoggerConfig{
			IsDevelopment: true,
			Encoding:      "console",
			Level:         cfg.Logger.Level,
			DisableCaller: true,
		})
	}

	app := &App{Logger: log, RefreshInterval: cfg.Report.RefreshIntervalDuration()}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	src, err := source.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	app.closers = append(app.closers, src.Close)

	weights := scoring.Weights{
		Absolute:   cfg.Scoring.WeightAbsolute,
		Percentage: cfg.Scoring.WeightPercentage,
		Strategic:  cfg.Scoring.WeightStrategic,
	}
	app.Sales, err = salesUCPkg.NewSalesUseCase(src, weights, cfg.Report.Limit, log)
	if err != nil {
		return nil, err
	}

	var repo action.Repository
	if cfg.Actions.Store == config.StorePostgres {
		db, err := database.NewPostgres(&database.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("action store: %w", err)
		}
		app.closers = append(app.closers, db.Close)
		repo = actionRepoPkg.NewPGRepository(db)
	} else {
		repo = actionRepoPkg.NewMemoryRepository()
	}

	var publisher action.EventPublisher
	if cfg.Kafka.ActionsTopic != "" {
		producer := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers, Topic: cfg.Kafka.ActionsTopic})
		app.closers = append(app.closers, producer.Close)
		publisher = producer

		app.OpenEvents = func() EventStream {
			return broker.NewConsumer(&broker.Config{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.ActionsTopic,
				GroupID: "salesinsight-cli",
			})
		}
	}
	app.Actions = actionUCPkg.NewActionUseCase(repo, publisher, cfg.Actions.ReviewWeeks, log)

	ok = true
	return app, nil
}
