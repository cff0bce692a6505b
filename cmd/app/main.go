package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"entangle_backend/internal/config"
	"entangle_backend/internal/db"
	httpServer "entangle_backend/internal/http"
	"entangle_backend/internal/http/middleware"
	"entangle_backend/internal/logger"
	"entangle_backend/internal/repository"
	"entangle_backend/internal/service"
	"entangle_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var version = "dev"

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	sessionRepo := repository.NewSessionRepository(dbPool)
	seatRepo := repository.NewSeatRepository(dbPool)
	intentRepo := repository.NewIntentRepository(dbPool)
	profileRepo := repository.NewProfileRepository(dbPool)
	waitingRepo := repository.NewWaitingRepository(dbPool)

	hub := ws.NewHub()
	scheduler := service.NewTimerScheduler()
	locks := service.NewSessionLocks()

	sessions := service.NewSessionService(sessionRepo, seatRepo, intentRepo, profileRepo, scheduler, hub, locks)
	games := service.NewGameService(sessionRepo, seatRepo, intentRepo, profileRepo, scheduler, hub,
		time.Duration(cfg.RoundDurationSeconds)*time.Second, locks)
	queue := service.NewQueueService(waitingRepo, sessions, 5)
	cleanup := service.NewCleanupService(sessionRepo, seatRepo, intentRepo,
		time.Duration(cfg.CleanupGraceSeconds)*time.Second)

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go cleanup.Run(cleanupCtx, time.Duration(cfg.CleanupIntervalSeconds)*time.Second)

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, os.Getenv("REDIS_PASSWORD"), 0)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, dbPool, hub, sessions, games, queue, version, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopCleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
