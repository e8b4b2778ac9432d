package infrastructure

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"user-account-service/internal/config"
	redisclient "user-account-service/pkg/redis"
)

// NewRedisClient connects the profile cache backend.
// With REDIS_ENABLED=false it returns a nil client and the service reads straight from the database.
func NewRedisClient(ctx context.Context, cfg *config.Config, l *zap.Logger) (*redisclient.Client, error) {
	if !cfg.Redis.Enabled {
		l.Info("profile cache disabled")
		return nil, nil
	}

	rc := cfg.Redis
	client, err := redisclient.NewClient(ctx, redisclient.Config{
		Host:        rc.Host,
		Port:        rc.Port,
		Password:    rc.Password,
		DB:          rc.DB,
		MaxRetries:  rc.MaxRetries,
		PoolSize:    rc.PoolSize,
		MinIdleConn: rc.MinIdleConn,
	}, l)
	if err != nil {
		return nil, fmt.Errorf("profile cache: %w", err)
	}

	l.Info("profile cache enabled", zap.Duration("ttl", rc.CacheTTL))
	return client, nil
}
