package main

import (
	"log"
	"time"

	"go.uber.org/zap"

	"mailsweep/config"
	"mailsweep/internal/api"
	"mailsweep/internal/db"
	"mailsweep/internal/httpserver"
	"mailsweep/internal/mq"
	redisclient "mailsweep/internal/redis"
	"mailsweep/internal/repository"
	"mailsweep/internal/service"
	"mailsweep/internal/triage"
	"mailsweep/internal/util"
	"mailsweep/pkg/logger"
	"mailsweep/pkg/ratelimit"
)

func main() {
	// Load config
	cfg := config.Load()

	logger := logger.NewLogger()
	defer logger.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, logger)
	if err != nil {
		logger.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis
	rdb := redisclient.NewClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ Producer
	producer, err := mq.NewProducer(cfg.MQ.URL)
	if err != nil {
		log.Fatalf("failed to init producer: %v", err)
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
	ruleRepo := repository.NewRuleRepository(dbConn)

	// Init Services
	engine := triage.NewEngine(nil, logger)
	authService := service.NewAuthService(userRepo, cfg.Google, cfg.Scan, cfg.JWT.Secret, logger)
	sweepService := service.NewSweepService(emailRepo, userRepo, usageRepo, producer, engine, cfg.Google, cfg.Scan, logger)
	unsubService := service.NewUnsubscribeService(emailRepo, userRepo, usageRepo, producer, cfg.Google, cfg.Scan, cfg.Unsubscribe, logger)

	// Init Handlers
	authHandler := api.NewAuthHandler(authService)
	scanHandler := api.NewScanHandler(sweepService)
	emailHandler := api.NewEmailHandler(emailRepo, usageRepo, sweepService, unsubService)
	ruleHandler := api.NewRuleHandler(ruleRepo)

	// Per-user rate limit
	limiter := ratelimit.New(rdb, cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSeconds)*time.Second)

	// Router
	router := httpserver.NewRouter(authHandler, scanHandler, emailHandler, ruleHandler, limiter, cfg.JWT.Secret, dbConn, producer)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		logger.Fatal("server start failed", zap.Error(err))
	}
}
