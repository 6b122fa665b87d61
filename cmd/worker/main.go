package main

import (
	"time"

	"go.uber.org/zap"

	"mailsweep/config"
	"mailsweep/internal/db"
	"mailsweep/internal/mq"
	"mailsweep/internal/mqhandler"
	redisclient "mailsweep/internal/redis"
	"mailsweep/internal/repository"
	"mailsweep/internal/service"
	"mailsweep/internal/triage"
	"mailsweep/internal/util"
	"mailsweep/pkg/logger"
)

func main() {
	// Load config
	cfg := config.Load()

	logger := logger.NewLogger()
	defer logger.Sync()

	logger.Info("Starting worker...")

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	deduper := util.NewDeduper(rdb, time.Hour, logger)
	retryCounter := util.NewRetryCounter(rdb, time.Hour)

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	logger.Info("Database connection established")

	// Init RabbitMQ Producer (事件发布 + DLQ)
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		logger.Fatal("failed to init producer", zap.Error(err))
	}
	defer producer.Close()

	// Init Repositories
	tokenCipher, err := util.NewTokenCipher(cfg.Google.TokenKey)
	if err != nil {
		logger.Fatal("invalid token key", zap.Error(err))
	}
	userRepo := repository.NewUserRepository(dbConn, tokenCipher)
	emailRepo := repository.NewEmailRepository(dbConn)
	usageRepo := repository.NewUsageRepository(dbConn)

	// Init Services
	engine := triage.NewEngine(nil, logger)
	sweepService := service.NewSweepService(emailRepo, userRepo, usageRepo, producer, engine, cfg.Google, cfg.Scan, logger)
	unsubService := service.NewUnsubscribeService(emailRepo, userRepo, usageRepo, producer, cfg.Google, cfg.Scan, cfg.Unsubscribe, logger)

	// Init Handlers
	scanHandler := mqhandler.NewScanRequestedHandler(sweepService, producer, retryCounter, deduper, logger)
	unsubHandler := mqhandler.NewUnsubscribeRequestedHandler(unsubService, producer, retryCounter, deduper, logger)

	// (1) Consumer for scan requests
	logger.Info("Initializing scan consumer", zap.String("queue", "scan.requested.q"))
	consumerScan, err := mq.NewConsumer(cfg.MQ.URL, mq.RoutingKeyScanRequested, logger)
	if err != nil {
		logger.Fatal("failed to init scan consumer", zap.Error(err))
	}
	consumerScan.SetHandler(scanHandler.Handle)
	go func() {
		logger.Info("Starting scan consumer")
		if err := consumerScan.StartConsuming(); err != nil {
			logger.Fatal("scan consumer failed", zap.Error(err))
		}
	}()
	defer consumerScan.Close()

	// (2) Consumer for unsubscribe requests
	logger.Info("Initializing unsubscribe consumer", zap.String("queue", "unsubscribe.requested.q"))
	consumerUnsub, err := mq.NewConsumer(cfg.MQ.URL, mq.RoutingKeyUnsubscribeRequested, logger)
	if err != nil {
		logger.Fatal("failed to init unsubscribe consumer", zap.Error(err))
	}
	consumerUnsub.SetHandler(unsubHandler.Handle)
	go func() {
		logger.Info("Starting unsubscribe consumer")
		if err := consumerUnsub.StartConsuming(); err != nil {
			logger.Fatal("unsubscribe consumer failed", zap.Error(err))
		}
	}()
	defer consumerUnsub.Close()

	logger.Info("All consumers started, worker is ready to process messages")

	// Keep worker running
	select {}
}
