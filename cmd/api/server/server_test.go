package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-account-service/internal/adapter/gin/handler"
	ginrouter "user-account-service/internal/adapter/gin/router"
	"user-account-service/internal/config"
)

func TestServer_StartAndShutdown(t *testing.T) {
	log := zaptest.NewLogger(t)
	cfg := &config.Config{App: config.AppConfig{HTTPPort: "0", Env: "test"}}

	srv := New(cfg, log, ginrouter.Deps{
		UserHandler: &handler.UserHandler{},
		ServiceName: "user-account-service",
		Log:         log,
	})
	srv.HTTP.Addr = "127.0.0.1:0"

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(context.Background()) }()

	// Serve is running once Shutdown can close the listener
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))
	assert.NoError(t, <-errCh)
}

func TestServer_ServesHealth(t *testing.T) {
	log := zaptest.NewLogger(t)
	srv := New(&config.Config{App: config.AppConfig{HTTPPort: "0"}}, log, ginrouter.Deps{
		UserHandler: &handler.UserHandler{},
		Log:         log,
	})

	w := httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWithSignal_CancelsOnSignal(t *testing.T) {
	ctx, stop := WithSignal(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not cancelled by SIGTERM")
	}

	var sigErr *SignalError
	require.ErrorAs(t, context.Cause(ctx), &sigErr)
	assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
}

func TestWithSignal_StopCancels(t *testing.T) {
	ctx, stop := WithSignal(context.Background())
	stop()

	<-ctx.Done()
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}
