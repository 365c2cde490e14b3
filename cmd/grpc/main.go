package main

import (
	"context"
	"errors"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-salesinsight-service/config"
	"github.com/fekuna/omnipos-salesinsight-service/internal/action"
	"github.com/fekuna/omnipos-salesinsight-service/internal/broker"
	"github.com/fekuna/omnipos-salesinsight-service/internal/database"
	"github.com/fekuna/omnipos-salesinsight-service/internal/logger"
	"github.com/fekuna/omnipos-salesinsight-service/internal/sales/source"
	"github.com/fekuna/omnipos-salesinsight-service/internal/scoring"

	actionH "github.com/fekuna/omnipos-salesinsight-service/internal/action/handler"
	actionRepoPkg "github.com/fekuna/omnipos-salesinsight-service/internal/action/repository"
	actionUCPkg "github.com/fekuna/omnipos-salesinsight-service/internal/action/usecase"

	salesH "github.com/fekuna/omnipos-salesinsight-service/internal/sales/handler"
	salesUCPkg "github.com/fekuna/omnipos-salesinsight-service/internal/sales/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Open the sales source
	src, err := source.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Could not open sales source", zap.String("mode", cfg.Source.Mode), zap.Error(err))
	}
	defer src.Close()
	appLogger.Info("Sales source ready", zap.String("source", src.Name()))

	// 4. Initialize the sales usecase
	weights := scoring.Weights{
		Absolute:   cfg.Scoring.WeightAbsolute,
		Percentage: cfg.Scoring.WeightPercentage,
		Strategic:  cfg.Scoring.WeightStrategic,
	}
	salesUC, err := salesUCPkg.NewSalesUseCase(src, weights, cfg.Report.Limit, appLogger)
	if err != nil {
		appLogger.Fatal("Could not build sales usecase", zap.Error(err))
	}

	// 5. Initialize the action repository
	var actionRepo action.Repository
	switch cfg.Actions.Store {
	case config.StorePostgres:
		db, err := database.NewPostgres(&database.Config{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to database", zap.Error(err))
		}
		defer db.Close()
		appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))
		actionRepo = actionRepoPkg.NewPGRepository(db)
	default:
		actionRepo = actionRepoPkg.NewMemoryRepository()
		appLogger.Info("Using in-memory action store")
	}

	// 6. Initialize the Kafka producer for action events
	var publisher action.EventPublisher
	if cfg.Kafka.ActionsTopic != "" {
		producer := broker.NewProducer(&broker.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.ActionsTopic,
		})
		defer producer.Close()
		publisher = producer
		appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.ActionsTopic))
	}

	actionUC := actionUCPkg.NewActionUseCase(actionRepo, publisher, cfg.Actions.ReviewWeeks, appLogger)

	// 7. Initialize Handlers
	salesHandler := salesH.NewSalesHandler(salesUC, appLogger)
	actionHandler := actionH.NewActionHandler(actionUC, appLogger)

	// 8. Start gRPC Server
	port := cfg.Server.GRPCPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	lis, err := net.Listen("tcp", port)
	if err != nil {
		log.Fatalf("failed to listen: %v", err)
	}

	grpcServer := newGRPCServer(appLogger, salesHandler, actionHandler)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	go func() {
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	cancel()
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}
