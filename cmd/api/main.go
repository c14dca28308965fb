package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"weather-app/internal/config"
	"weather-app/internal/db"
	apihttp "weather-app/internal/http"
	"weather-app/internal/repository"
	"weather-app/internal/service"
	"weather-app/internal/weather"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

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

	userRepo := repository.NewPgUserRepository(pool)

	var (
		sessionStore service.SessionStore = repository.NewPgSessionRepository(pool)
		loginLimiter service.LoginRateLimiter
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
			sessionStore = service.NewRedisSessionStore(redisClient)
			loginLimiter = service.NewRedisLoginRateLimiter(redisClient, 10*time.Minute, 10)
		}
		cancel()
	}
	if loginLimiter == nil {
		loginLimiter = service.NewLoginRateLimiter(10*time.Minute, 10)
	}

	sessionMgr := service.NewSessionManager(sessionStore)
	authSvc := service.NewAuthService(logger, userRepo, sessionMgr, loginLimiter)
	favoritesSvc := service.NewFavoritesService(logger, userRepo)
	weatherClient := weather.NewHTTPClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, logger)

	authMW := apihttp.NewAuthMiddleware(logger, sessionMgr, userRepo)
	searchHandler := apihttp.NewSearchHandler(logger, weatherClient)
	authHandler := apihttp.NewAuthHandler(logger, authSvc, sessionMgr)
	favoritesHandler := apihttp.NewFavoritesHandler(logger, favoritesSvc)
	router := apihttp.NewRouter(logger, authMW, searchHandler, authHandler, favoritesHandler, apihttp.RouterOptions{
		TemplateGlob: cfg.TemplateGlob,
		StaticDir:    cfg.StaticDir,
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("port", cfg.HTTPPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}
