package main

import (
	"context"

	"github.com/dkazlou/flint/internal/app"
	"github.com/dkazlou/flint/internal/auth"
	"github.com/dkazlou/flint/internal/cache"
	"github.com/dkazlou/flint/internal/config"
	"github.com/dkazlou/flint/internal/db"
	"github.com/dkazlou/flint/internal/logger"
	"github.com/dkazlou/flint/internal/server"
	"github.com/dkazlou/flint/internal/service/account"
	"github.com/dkazlou/flint/internal/service/chat"
	"github.com/dkazlou/flint/internal/service/discovery"
	"github.com/dkazlou/flint/internal/service/swipe"
)

func main() {
	cfg := config.New()

	// Init logger (global singleton)
	logger.InitFromConfig(cfg)
	log := logger.L()

	// Init DB
	database, err := db.NewDB(cfg)
	if err != nil {
		log.Error("failed to init db", "err", err)
		return
	}

	// Init Redis
	redisCache := cache.NewRedisCache(cfg)
	if err := redisCache.Ping(context.Background()); err != nil {
		log.Error("failed to connect to redis", "err", err)
		return
	}

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	appCtx := app.New(database, redisCache, log, jwtManager, cfg)

	registrars := []server.Registrar{
		account.NewRegistrar(appCtx),
		discovery.NewRegistrar(appCtx),
		swipe.NewRegistrar(appCtx),
		chat.NewRegistrar(appCtx),
	}

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Info("starting HTTP server", "addr", addr)

	if err := server.StartHTTPServer(cfg, registrars...); err != nil {
		log.Error("failed to start HTTP server", "err", err)
	}
}
