package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-account-service/cmd/api/infrastructure"
	"user-account-service/internal/adapter/cache"
	"user-account-service/internal/adapter/db/postgres"
	ginhandler "user-account-service/internal/adapter/gin/handler"
	"user-account-service/internal/adapter/gin/router"
	"user-account-service/internal/adapter/mail"
	"user-account-service/internal/adapter/repository/cached"
	"user-account-service/internal/config"
	"user-account-service/internal/usecase/user"
	redisclient "user-account-service/pkg/redis"
	"user-account-service/pkg/token"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	Tokens      token.Helper
	Mailer      *mail.Dispatcher
	Registry    *prometheus.Registry
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	// Initialize database
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	if cfg.DB.AutoMigrate {
		if err := infrastructure.MigrateDatabase(ctx, db, l); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	// Initialize Redis client; nil when the cache is disabled
	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	// Initialize repository
	var repo user.Repository = postgres.NewUserRepoPG(db, l)
	if rdb != nil {
		userCache := cache.NewRedisUserCache(rdb.Client, cfg.Redis.CacheTTL, l)
		repo = cached.NewCachedUserRepository(repo, userCache, l)
	}

	// Initialize use case
	c.UserUC = user.New(repo, l)

	tokens, err := token.NewHelper(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to initialize token helper: %w", err)
	}
	c.Tokens = tokens

	c.Mailer = mail.NewDispatcher(infrastructure.NewMailSender(cfg, l), cfg.Mail.SendTimeout, l)

	c.Registry = prometheus.NewRegistry()
	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize Gin handler
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, tokens, mail.NewComposer(cfg.App.URLScheme), c.Mailer, l)

	return c, nil
}

// RouterDeps returns what the HTTP router needs from the container
func (c *Container) RouterDeps() router.Deps {
	checks := map[string]router.HealthCheck{
		"database": infrastructure.PingDatabase(c.DB),
	}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient.Ping
	}

	return router.Deps{
		UserHandler:  c.GinHandler,
		Tokens:       c.Tokens,
		Registry:     c.Registry,
		HealthChecks: checks,
		ServiceName:  c.Config.Logger.ServiceName,
		Log:          c.Logger,
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Let queued verification mails finish before tearing down
	if c.Mailer != nil {
		c.Mailer.Wait()
	}

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %w", errors.Join(errs...))
	}

	return nil
}
