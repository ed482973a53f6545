package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"auth-api/internal/config"
	"auth-api/internal/db"
	"auth-api/internal/email"
	apihttp "auth-api/internal/http"
	"auth-api/internal/repository"
	"auth-api/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

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

	userRepo := repository.NewPgUserRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SenderEmail, cfg.SenderName, cfg.SMTPUseTLS)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}

	// La cola de correo desacopla la mutación de estado del envío: primero
	// se persiste, después se entrega con reintentos. Con Redis disponible
	// la cola sobrevive reinicios; si no, se usa la cola en memoria.
	var mailQueue email.Dispatcher
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := redisClient.Ping(ctxPing).Err()
		cancel()
		if err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			queue := email.NewRedisQueue(logger, emailSender, redisClient)
			queue.Start(ctx)
			mailQueue = queue
		}
	}
	if mailQueue == nil {
		queue := email.NewMemoryQueue(logger, emailSender, 64)
		queue.Start(ctx)
		mailQueue = queue
	}

	tokenSvc := service.NewTokenService(cfg.JWTSecret)
	otpEngine := service.NewOTPEngine(logger, userRepo, mailQueue)
	authSvc := service.NewAuthService(logger, userRepo, otpEngine, mailQueue)

	cookies := apihttp.NewCookieManager(cfg.IsProduction())
	authHandler := apihttp.NewAuthHandler(logger, authSvc, tokenSvc, cookies)
	userHandler := apihttp.NewUserHandler(logger, authSvc)
	router := apihttp.NewRouter(logger, tokenSvc, authHandler, userHandler, cfg.FrontendOrigins)

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
