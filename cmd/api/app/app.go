package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"go.uber.org/zap"

	"user-account-service/cmd/api/di"
	"user-account-service/cmd/api/server"
	"user-account-service/internal/config"
	"user-account-service/pkg/logger"
)

// App owns the process lifecycle: wiring, serving and ordered shutdown.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container
}

// New wires dependencies and the HTTP server without starting anything.
func New(ctx context.Context, cfg *config.Config, l *zap.Logger) (*App, error) {
	container, err := di.NewContainer(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Server:    server.New(cfg, l, container.RouterDeps()),
		Container: container,
	}, nil
}

// Run serves until ctx is cancelled or the listener fails, then shuts down.
func (a *App) Run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.Logger.Error("application panic", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("application panic: %v", r)
		}
	}()

	a.Logger.Info("user account service starting",
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", a.Config.App.Env),
		zap.Bool("profile_cache", a.Config.Redis.Enabled),
		zap.Bool("mail", a.Config.Mail.Enabled),
	)

	serveErr := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				serveErr <- fmt.Errorf("server panic: %v", r)
			}
		}()
		serveErr <- a.Server.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		a.Logger.Info("stop requested", zap.NamedError("cause", context.Cause(ctx)))
		return a.shutdown()
	case err := <-serveErr:
		if err != nil {
			err = fmt.Errorf("server error: %w", err)
		}
		return errors.Join(err, a.shutdown())
	}
}

// shutdown stops intake first, then drains background mail, then releases storage.
func (a *App) shutdown() error {
	timeout := a.Config.App.ShutdownTimeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	a.Logger.Info("graceful shutdown started", zap.Duration("timeout", timeout))

	steps := []struct {
		name string
		run  func() error
	}{
		{"http server", func() error { return a.Server.Shutdown(ctx) }},
		{"container", a.Container.Close},
	}

	var errs []error
	for _, step := range steps {
		if err := step.run(); err != nil {
			a.Logger.Error("shutdown step failed", zap.String("step", step.name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}

	a.Logger.Info("graceful shutdown finished", zap.Int("failed_steps", len(errs)))
	if err := SyncLogger(a.Logger); err != nil {
		errs = append(errs, fmt.Errorf("logger sync: %w", err))
	}
	return errors.Join(errs...)
}

// LoadConfig loads application configuration from CONFIG_PATH, defaulting to the working directory
func LoadConfig() (*config.Config, error) {
	return config.LoadConfig(getConfigPath())
}

// NewLogger initializes the application logger
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	loggerCfg := logger.Config{
		Level:            cfg.Logger.Level,
		Format:           cfg.Logger.Format,
		OutputPath:       cfg.Logger.OutputPath,
		SlowQuerySeconds: cfg.Logger.SlowQuerySeconds,
		GormLevel:        cfg.Logger.GormLevel,
		EnableSampling:   cfg.Logger.EnableSampling,
		ServiceName:      cfg.Logger.ServiceName,
		ServiceVersion:   cfg.Logger.ServiceVersion,
		Environment:      cfg.App.Env,
	}

	return logger.NewWithConfig(loggerCfg)
}

// SyncLogger flushes l, ignoring the error terminals return for stdout and stderr
func SyncLogger(l *zap.Logger) error {
	err := l.Sync()
	if err == nil || errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}

// getConfigPath returns the configuration path
func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "."
}
