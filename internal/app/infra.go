package app

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/adhocteam/va-mobile-sampleweb/internal/auth"
	"github.com/adhocteam/va-mobile-sampleweb/internal/config"
	"github.com/adhocteam/va-mobile-sampleweb/internal/db"
	"github.com/adhocteam/va-mobile-sampleweb/internal/logger"
	"github.com/adhocteam/va-mobile-sampleweb/internal/redis"
)

type Infra struct {
	DB    *db.DB
	Redis *redis.Client
}

func setupInfra(ctx context.Context, cfg config.Config) (*Infra, error) {
	if cfg.DatabaseDSN == "" {
		return nil, &auth.ConfigError{Field: "DATABASE_DSN"}
	}

	sqlDB, err := sql.Open("postgres", cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := db.RunTokensMigration(ctx, sqlDB); err != nil {
		return nil, err
	}

	logger.Info("database ready")

	redisClient, err := redis.New(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		return nil, err
	}

	logger.Info("redis ready")

	return &Infra{
		DB:    &db.DB{DB: sqlDB},
		Redis: redisClient,
	}, nil
}
