package database

import (
	"context"
	"time"

	"clinical-records-backend/internal/config"
	"clinical-records-backend/internal/logger"

	"github.com/redis/go-redis/v9"
)

// ConnectRedis returns a Redis client, or nil when no address is
// configured. Callers treat a nil client as "revocation runs in-process".
func ConnectRedis(cfg *config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.WithError(err).Error("Failed to connect to Redis")
	} else {
		logger.Log.Info("Connected to Redis")
	}

	return client
}
