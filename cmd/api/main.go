package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"thrivingcare-api/internal/config"
	"thrivingcare-api/internal/db"
	"thrivingcare-api/internal/email"
	apihttp "thrivingcare-api/internal/http"
	"thrivingcare-api/internal/llm"
	"thrivingcare-api/internal/repository"
	"thrivingcare-api/internal/service"
	"thrivingcare-api/internal/sms"
	"thrivingcare-api/internal/storage"
)

var allowedOrigins = []string{
	"https://thrivingcarestaffing.com",
	"https://www.thrivingcarestaffing.com",
	"http://localhost:3000",
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool); err != nil {
		logger.Fatal("db ping", zap.Error(err))
	}

	candidateRepo := repository.NewPgCandidateRepository(pool)
	jobRepo := repository.NewPgJobRepository(pool)
	applicationRepo := repository.NewPgApplicationRepository(pool)
	vettingLogRepo := repository.NewPgVettingLogRepository(pool)

	var messenger sms.Messenger = sms.NewDisabledMessenger("sms messenger not configured")
	if cfg.TwilioAccountSID != "" {
		messenger = sms.NewTwilioMessenger(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhone, logger)
	}

	var llmClient llm.Client
	if cfg.LLMAPIKey != "" {
		llmClient = llm.NewHTTPClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	} else {
		logger.Warn("llm not configured, assisted replies will use the static fallback")
	}

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	var (
		deduper       service.MessageDeduper
		signupLimiter service.RateLimiter = service.NewMemoryRateLimiter(time.Hour, 5)
	)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			deduper = service.NewRedisMessageDeduper(redisClient, 24*time.Hour)
			signupLimiter = service.NewRedisRateLimiter(redisClient, time.Hour, 5)
		}
		cancel()
	}

	store, err := storage.NewLocalStore(cfg.ResumeDir, cfg.PublicBaseURL)
	if err != nil {
		logger.Fatal("resume store init", zap.Error(err))
	}

	questions := service.DefaultQuestions()
	notifier := service.NewRecruiterNotifier(logger, emailSender, cfg.RecruiterEmail)
	engine := service.NewVettingEngine(questions, service.NewKeywordClassifier())
	engagementSvc := service.NewEngagementService(logger, llmClient, jobRepo)
	vettingSvc := service.NewVettingService(logger, candidateRepo, applicationRepo, vettingLogRepo, engine, engagementSvc, notifier, deduper)
	intakeSvc := service.NewIntakeService(logger, candidateRepo, applicationRepo, jobRepo, messenger, notifier, questions)
	analyticsSvc := service.NewAnalyticsService(candidateRepo, applicationRepo, jobRepo)

	webhookHandler := apihttp.NewWebhookHandler(logger, vettingSvc, messenger)
	chatHandler := apihttp.NewChatHandler(logger, vettingSvc)
	candidateHandler := apihttp.NewCandidateHandler(logger, intakeSvc, candidateRepo, store, signupLimiter)
	jobHandler := apihttp.NewJobHandler(logger, jobRepo)
	adminHandler := apihttp.NewAdminHandler(logger, jobRepo, candidateRepo, applicationRepo, analyticsSvc)

	router := apihttp.NewRouter(logger, cfg.AdminAPIToken, allowedOrigins, webhookHandler, chatHandler, candidateHandler, jobHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
