package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"chatapp/internal/app"
	"chatapp/internal/config"
	"chatapp/internal/events"
	"chatapp/internal/ratelimit"
	"chatapp/internal/server"
	"chatapp/internal/store"
	"chatapp/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		util.Fatal("failed to init store", "err", err)
	}

	var publisher *events.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = events.NewPublisher(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			util.Fatal("failed to init event publisher", "err", err)
		}
		defer publisher.Close()
	}

	appCfg := app.Config{Store: dataStore}
	if publisher != nil {
		appCfg.Events = publisher
	}
	appCore, err := app.New(appCfg)
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	serverCfg := server.Config{App: appCore}
	if cfg.RedisAddr != "" {
		serverCfg.CreateUserLimiter = mustLimiter("create-user", cfg, cfg.CreateUserRateLimitPerMinute, 10)
		serverCfg.ChatMessageLimiter = mustLimiter("chat-message", cfg, cfg.ChatMessageRateLimitPerMinute, 60)
	}
	httpServer := server.New(serverCfg)

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      util.WithRequestID(util.WithRequestLog(httpServer.Router())),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("chat server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}

func mustLimiter(name string, cfg config.FileConfig, limit, fallback int) *ratelimit.FixedWindowLimiter {
	if limit <= 0 {
		limit = fallback
	}
	prefix := "chatapp:ratelimit:" + name
	limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, time.Minute)
	if err != nil {
		util.Fatal("failed to init rate limiter", "name", name, "err", err)
	}
	return limiter
}
