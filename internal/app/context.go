package app

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/dkazlou/flint/internal/auth"
	"github.com/dkazlou/flint/internal/cache"
	"github.com/dkazlou/flint/internal/config"
)

// AppContext holds shared dependencies (DB, Redis, Logger, JWT, config).
type AppContext struct {
	DB         *gorm.DB
	RedisCache *cache.RedisCache
	Logger     *slog.Logger
	JWT        *auth.JWTManager
	Cfg        *config.Config
}

// New creates a new AppContext
func New(db *gorm.DB, rdb *cache.RedisCache, logger *slog.Logger, jwt *auth.JWTManager, cfg *config.Config) *AppContext {
	return &AppContext{
		DB:         db,
		RedisCache: rdb,
		Logger:     logger,
		JWT:        jwt,
		Cfg:        cfg,
	}
}
